package view

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/arti-ci/sygfp/internal/importjob"
)

// JobsModel lists the recent import jobs with their final counts.
type JobsModel struct {
	CommonModel
	jobs importjob.Repository

	list    list.Model
	loaded  bool
	loadErr error
}

func NewJobsModel(jobs importjob.Repository) JobsModel {
	l := list.New(nil, jobDelegate{}, 100, 20)
	l.Title = "Historique des imports"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return JobsModel{jobs: jobs, list: l}
}

func (m JobsModel) Title() string { return "Historique des imports" }

func (m JobsModel) ShortHelp() string { return "Esc: retour" }

func (m JobsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m JobsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}

	case jobsLoadedMsg:
		m.loaded = true
		m.loadErr = msg.err

		items := make([]list.Item, len(msg.jobs))
		for i, job := range msg.jobs {
			items[i] = jobItem{job: job}
		}

		return m, m.list.SetItems(items)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)

	return m, cmd
}

func (m JobsModel) View() string {
	if !m.loaded {
		return lipgloss.NewStyle().Padding(2).Render("Chargement...")
	}

	if m.loadErr != nil {
		return lipgloss.NewStyle().Padding(2).Render(errStyle.Render(fmt.Sprintf("Erreur: %v", m.loadErr)))
	}

	return lipgloss.NewStyle().Padding(1).Render(m.list.View())
}

type jobsLoadedMsg struct {
	jobs []*importjob.Job
	err  error
}

func (m JobsModel) loadCmd() tea.Cmd {
	repo := m.jobs

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		jobs, err := repo.ListJobs(ctx, 0)

		return jobsLoadedMsg{jobs: jobs, err: err}
	}
}

type jobItem struct {
	job *importjob.Job
}

func (i jobItem) Title() string       { return "" }
func (i jobItem) Description() string { return "" }
func (i jobItem) FilterValue() string { return "" }

type jobDelegate struct{}

func (d jobDelegate) Height() int                             { return 2 }
func (d jobDelegate) Spacing() int                            { return 0 }
func (d jobDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d jobDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(jobItem)
	if !ok {
		return
	}

	job := item.job

	cursor := "  "
	if index == m.Index() {
		cursor = "> "
	}

	status := string(job.Status)

	switch job.Status {
	case importjob.StatusCompleted:
		status = okStyle.Render(status)
	case importjob.StatusCompletedWithErrors:
		status = warnStyle.Render(status)
	case importjob.StatusFailed:
		status = errStyle.Render(status)
	}

	line1 := fmt.Sprintf("%s%s  %d  %s  %s",
		cursor,
		FormatDate(job.CreatedAt),
		job.Exercice,
		job.Filename,
		status,
	)

	summary := job.Summary
	if summary == "" {
		summary = "-"
	}

	line2 := "      " + faintStyle.Render(summary)

	fmt.Fprintf(w, "%s\n%s\n", line1, strings.TrimRight(line2, "\n"))
}
