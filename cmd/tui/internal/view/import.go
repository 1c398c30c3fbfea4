package view

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/arti-ci/sygfp/internal/importer"
	"github.com/arti-ci/sygfp/internal/importjob"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateSetup importState = iota
	importStateFilePick
	importStateParsing
	importStatePreview
	importStateExecuting
	importStateResult
)

var (
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	faintStyle = lipgloss.NewStyle().Faint(true)
)

type ImportModel struct {
	CommonModel
	importService *importer.Service
	executor      *importer.Executor
	jobs          importjob.Repository

	state      importState
	form       *huh.Form
	filePicker filepicker.Model
	spin       spinner.Model

	modeStr  string
	exercice int

	job     *importjob.Job
	preview *importer.ParseResult
	result  *importer.Result

	status string
	err    error
}

func NewImportModel(importSvc *importer.Service, executor *importer.Executor, jobs importjob.Repository) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.AllowedTypes = []string{".xlsx", ".xlsm", ".csv", ".tsv", ".txt"}
	fp.SetHeight(15)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := ImportModel{
		importService: importSvc,
		executor:      executor,
		jobs:          jobs,
		filePicker:    fp,
		spin:          sp,
		modeStr:       string(importer.ModeSafe),
	}
	m.form = m.newSetupForm()

	return m
}

func (m ImportModel) newSetupForm() *huh.Form {
	exercice := strconv.Itoa(time.Now().Year())
	mode := string(importer.ModeSafe)

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("exercice").
				Title("Exercice budgétaire").
				Value(&exercice).
				Validate(func(s string) error {
					year, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil || year < 2000 || year > 2100 {
						return fmt.Errorf("année invalide")
					}

					return nil
				}),
			huh.NewSelect[string]().
				Key("mode").
				Title("Mode d'import").
				Options(
					huh.NewOption("Sans risque (ignorer les lignes existantes)", string(importer.ModeSafe)),
					huh.NewOption("Mettre à jour les montants uniquement", string(importer.ModeSafeUpdateAmount)),
					huh.NewOption("Remplacer les lignes existantes", string(importer.ModeReplace)),
				).
				Value(&mode),
		),
	)
}

func (m ImportModel) Title() string { return "Import budget ARTI" }

func (m ImportModel) ShortHelp() string {
	switch m.state {
	case importStatePreview:
		return "Entrée: importer | Esc: annuler"
	case importStateResult:
		return "Esc: retour"
	}

	return "Esc: retour | Entrée: valider"
}

func (m ImportModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		if m.state == importStatePreview && msg.Type == tea.KeyEnter {
			m.state = importStateExecuting
			m.status = "Import en cours..."

			return m, tea.Batch(m.spin.Tick, m.executeCmd())
		}

	case parseResultMsg:
		m.job = msg.job

		if msg.err != nil {
			m.state = importStateResult
			m.err = msg.err
			m.status = fmt.Sprintf("Erreur: %v", msg.err)

			return m, nil
		}

		m.preview = msg.result
		m.state = importStatePreview

		return m, nil

	case executeResultMsg:
		m.state = importStateResult

		if msg.err != nil {
			m.err = msg.err
			m.status = fmt.Sprintf("Erreur: %v", msg.err)

			return m, nil
		}

		m.result = msg.result
		m.status = m.job.Summary

		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)

		return m, cmd
	}

	switch m.state {
	case importStateSetup:
		form, cmd := m.form.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			m.form = f
		}

		if m.form.State == huh.StateCompleted {
			m.exercice, _ = strconv.Atoi(strings.TrimSpace(m.form.GetString("exercice")))
			m.modeStr = m.form.GetString("mode")
			m.state = importStateFilePick

			return m, m.filePicker.Init()
		}

		return m, cmd

	case importStateFilePick:
		var cmd tea.Cmd
		m.filePicker, cmd = m.filePicker.Update(msg)

		if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
			m.state = importStateParsing
			m.status = fmt.Sprintf("Analyse de %s...", filepath.Base(path))

			return m, tea.Batch(m.spin.Tick, m.parseCmd(path))
		}

		return m, cmd
	}

	return m, nil
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStateFilePick:
		m.state = importStateSetup
		m.form = m.newSetupForm()

		return m, m.form.Init()
	case importStatePreview:
		job := m.job
		jobs := m.jobs

		m.reset()

		return m, func() tea.Msg {
			ctx, cancel := DbCtx()
			defer cancel()

			_ = jobs.MarkJobFailed(ctx, job.ID, "annulé par l'opérateur")

			return nil
		}
	case importStateResult:
		m.reset()

		return m, m.form.Init()
	}

	return m, Back
}

func (m *ImportModel) reset() {
	m.state = importStateSetup
	m.form = m.newSetupForm()
	m.job = nil
	m.preview = nil
	m.result = nil
	m.err = nil
	m.status = ""
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateSetup:
		return lipgloss.NewStyle().Padding(1).Render(m.form.View())
	case importStateFilePick:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("Fichier à importer (exercice %d):\n\n%s", m.exercice, m.filePicker.View()),
		)
	case importStateParsing, importStateExecuting:
		return lipgloss.NewStyle().Padding(2).Render(m.spin.View() + " " + m.status)
	case importStatePreview:
		return m.viewPreview()
	case importStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ImportModel) viewPreview() string {
	p := m.preview
	s := &strings.Builder{}

	fmt.Fprintf(s, "Onglet: %s\n", p.SheetUsed)
	fmt.Fprintf(s, "%s\n\n", faintStyle.Render(p.SheetReason))

	fmt.Fprintf(s, "%d lignes détectées\n", p.Stats.Total)
	fmt.Fprintf(s, "  %s\n", okStyle.Render(fmt.Sprintf("%d valides", p.Stats.OK)))
	fmt.Fprintf(s, "  %s\n", warnStyle.Render(fmt.Sprintf("%d avec avertissements", p.Stats.Warning)))
	fmt.Fprintf(s, "  %s\n\n", errStyle.Render(fmt.Sprintf("%d en erreur", p.Stats.Error)))

	var total float64

	for _, row := range p.Rows {
		if row.Normalized != nil {
			total += row.Normalized.DotationInitiale
		}
	}

	fmt.Fprintf(s, "Décisions: %d nouvelles lignes, %d mises à jour\n", p.Stats.New, p.Stats.Update)
	fmt.Fprintf(s, "Montant total: %s\n", FormatMontant(total))

	shown := 0

	for _, row := range p.Rows {
		if row.IsValid || shown >= 5 {
			continue
		}

		fmt.Fprintf(s, "\n%s", errStyle.Render(
			fmt.Sprintf("Ligne %d: %s", row.RowIndex, strings.Join(row.Errors, "; "))))

		shown++
	}

	if p.Stats.Error > shown {
		fmt.Fprintf(s, "\n%s", faintStyle.Render(fmt.Sprintf("... et %d autres erreurs", p.Stats.Error-shown)))
	}

	return lipgloss.NewStyle().Padding(1).Render(s.String())
}

func (m ImportModel) viewResult() string {
	style := lipgloss.NewStyle().Padding(2)

	if m.err != nil {
		return style.Render(errStyle.Render(m.status) + "\n\n(Esc pour revenir)")
	}

	s := okStyle.Render(m.status)

	if m.result != nil && len(m.result.ErrorDetails) > 0 {
		s += "\n"

		for i, detail := range m.result.ErrorDetails {
			if i >= 5 {
				s += "\n" + faintStyle.Render(fmt.Sprintf("... et %d autres erreurs", len(m.result.ErrorDetails)-i))
				break
			}

			s += "\n" + errStyle.Render(detail)
		}
	}

	return style.Render(s + "\n\n(Esc pour revenir)")
}

// Messages

type parseResultMsg struct {
	job    *importjob.Job
	result *importer.ParseResult
	err    error
}

type executeResultMsg struct {
	result *importer.Result
	err    error
}

func (m ImportModel) parseCmd(path string) tea.Cmd {
	exercice := m.exercice
	svc := m.importService
	jobs := m.jobs

	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return parseResultMsg{err: err}
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return parseResultMsg{err: err}
		}

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		job := &importjob.Job{
			ID:       uuid.New(),
			Exercice: exercice,
			Filename: filepath.Base(path),
			FileSize: info.Size(),
			Status:   importjob.StatusRunning,
		}

		if err := jobs.CreateJob(ctx, job); err != nil {
			return parseResultMsg{err: err}
		}

		result, err := svc.Parse(ctx, f, filepath.Base(path), exercice)
		if err != nil {
			_ = jobs.MarkJobFailed(ctx, job.ID, err.Error())

			return parseResultMsg{job: job, err: err}
		}

		return parseResultMsg{job: job, result: result}
	}
}

func (m ImportModel) executeCmd() tea.Cmd {
	rows := m.preview.Rows
	exercice := m.exercice
	job := m.job
	mode := importer.Mode(m.modeStr)
	executor := m.executor

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		result, err := executor.Execute(ctx, rows, exercice, job, importer.Options{Mode: mode})
		if err != nil {
			return executeResultMsg{err: err}
		}

		return executeResultMsg{result: result}
	}
}
