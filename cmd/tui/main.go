package main

import (
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/arti-ci/sygfp/cmd/tui/internal/view"
	budgetStore "github.com/arti-ci/sygfp/internal/budget/store"
	"github.com/arti-ci/sygfp/internal/config"
	"github.com/arti-ci/sygfp/internal/database"
	"github.com/arti-ci/sygfp/internal/importer"
	"github.com/arti-ci/sygfp/internal/importjob"
	importjobStore "github.com/arti-ci/sygfp/internal/importjob/store"
	refdataStore "github.com/arti-ci/sygfp/internal/refdata/store"
)

type model struct {
	importService *importer.Service
	executor      *importer.Executor
	jobRepo       importjob.Repository

	currentView View

	importView view.ImportModel
	jobsView   view.JobsModel
}

type View int

const (
	ViewMenu   View = 0
	ViewImport View = 1
	ViewJobs   View = 2
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	lineRepo := budgetStore.New(db)
	jobRepo := importjobStore.New(db)
	refRepo := refdataStore.New(db)

	importSvc := importer.NewService(refRepo)
	executor := importer.NewExecutor(lineRepo, jobRepo, slog.Default())

	return model{
		importService: importSvc,
		executor:      executor,
		jobRepo:       jobRepo,
		currentView:   ViewMenu,
		importView:    view.NewImportModel(importSvc, executor, jobRepo),
		jobsView:      view.NewJobsModel(jobRepo),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewImport
				m.importView = view.NewImportModel(m.importService, m.executor, m.jobRepo)

				return m, m.importView.Init()
			case "2":
				m.currentView = ViewJobs
				m.jobsView = view.NewJobsModel(m.jobRepo)

				return m, m.jobsView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	case ViewJobs:
		var newModel tea.Model
		newModel, cmd = m.jobsView.Update(msg)
		m.jobsView = newModel.(view.JobsModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"SYGFP\n\n" +
				"1. Importer un budget ARTI\n" +
				"2. Historique des imports\n\n" +
				"q. Quitter",
		)
	case ViewImport:
		return m.importView.View()
	case ViewJobs:
		return m.jobsView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
