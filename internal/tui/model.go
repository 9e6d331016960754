package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rgehrsitz/withholding/internal/calculation"
	"github.com/rgehrsitz/withholding/internal/config"
	"github.com/rgehrsitz/withholding/internal/domain"
	"github.com/rgehrsitz/withholding/internal/tui/scenes"
)

// Model represents the entire application state
type Model struct {
	// Navigation
	currentScene  Scene
	previousScene Scene

	// Terminal dimensions
	width  int
	height int

	rulesPath   string
	rulesSource string
	rules       *domain.RuleTable

	// Calculations run compute-only; the TUI never writes audit records.
	engine *calculation.CalculationEngine

	jurisdictionsModel *scenes.JurisdictionsModel
	calculatorModel    *scenes.CalculatorModel

	err error

	loading        bool
	loadingMessage string
}

// NewModel creates a model for the rule table at rulesPath; an empty path
// browses the embedded defaults.
func NewModel(rulesPath string) Model {
	return Model{
		currentScene:       SceneHome,
		rulesPath:          rulesPath,
		jurisdictionsModel: scenes.NewJurisdictionsModel(),
		calculatorModel:    scenes.NewCalculatorModel(),
		width:              100,
		height:             30,
		loading:            true,
		loadingMessage:     "Loading rules...",
	}
}

// Init initializes the model (required by tea.Model interface)
func (m Model) Init() tea.Cmd {
	return loadRulesCmd(m.rulesPath)
}

// loadRulesCmd returns a command that loads the rule table
func loadRulesCmd(path string) tea.Cmd {
	return func() tea.Msg {
		rules, err := config.NewRulesLoader().Load(path)
		if err != nil {
			return ErrorMsg{Err: err}
		}
		source := path
		if source == "" {
			source = "embedded defaults"
		}
		return RulesLoadedMsg{Rules: rules, Source: source}
	}
}

// calculateCmd returns a command that computes one request
func calculateCmd(engine *calculation.CalculationEngine, req domain.TaxCalculationRequest) tea.Cmd {
	return func() tea.Msg {
		result, err := engine.Compute(req)
		return CalculationCompleteMsg{Result: result, Err: err}
	}
}

// CurrentScene reports the active scene.
func (m Model) CurrentScene() Scene {
	return m.currentScene
}

// Rules returns the loaded rule table, nil until loading finishes.
func (m Model) Rules() *domain.RuleTable {
	return m.rules
}

// String returns a human-readable name for a scene
func (s Scene) String() string {
	switch s {
	case SceneHome:
		return "Home"
	case SceneJurisdictions:
		return "Jurisdictions"
	case SceneCalculator:
		return "Calculator"
	case SceneHelp:
		return "Help"
	default:
		return "Unknown"
	}
}
