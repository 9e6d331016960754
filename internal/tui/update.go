package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rgehrsitz/withholding/internal/calculation"
)

// Update handles all messages and updates the model state
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.jurisdictionsModel.SetSize(msg.Width, msg.Height)
		m.calculatorModel.SetSize(msg.Width, msg.Height)
		return m, nil

	case NavigateMsg:
		m.previousScene = m.currentScene
		m.currentScene = msg.Scene
		return m, nil

	case ErrorMsg:
		m.loading = false
		m.err = msg.Err
		return m, nil

	case RulesLoadedMsg:
		m.loading = false
		m.rules = msg.Rules
		m.rulesSource = msg.Source
		m.engine = calculation.NewCalculationEngine(msg.Rules, nil)
		m.jurisdictionsModel.SetRules(msg.Rules)
		return m, nil

	case JurisdictionSelectedMsg:
		m.calculatorModel.SetWorkState(msg.Code)
		m.previousScene = m.currentScene
		m.currentScene = SceneCalculator
		return m, nil

	case CalculationRequestedMsg:
		if m.engine == nil {
			return m, nil
		}
		return m, calculateCmd(m.engine, msg.Request)

	case CalculationCompleteMsg:
		m.calculatorModel.SetResult(msg.Result, msg.Err)
		return m, nil
	}

	return m.updateCurrentScene(msg)
}

// handleKeyPress processes keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.err != nil {
		// Any key dismisses an error; ctrl+c still quits.
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		m.err = nil
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		if m.currentScene != SceneHome {
			return m, navigate(SceneHome)
		}
		return m, nil
	}

	// The calculator owns every other key so typing is not hijacked.
	if m.currentScene == SceneCalculator {
		return m.updateCurrentScene(msg)
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "?":
		return m, navigate(SceneHelp)
	case "h":
		if m.currentScene != SceneHome {
			return m, navigate(SceneHome)
		}
	case "b":
		if m.currentScene != SceneJurisdictions {
			return m, navigate(SceneJurisdictions)
		}
	case "c":
		return m, navigate(SceneCalculator)
	}

	return m.updateCurrentScene(msg)
}

func navigate(scene Scene) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{Scene: scene} }
}

// updateCurrentScene delegates updates to the current scene's model
func (m Model) updateCurrentScene(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.currentScene {
	case SceneJurisdictions:
		m.jurisdictionsModel, cmd = m.jurisdictionsModel.Update(msg)
	case SceneCalculator:
		m.calculatorModel, cmd = m.calculatorModel.Update(msg)
	}
	return m, cmd
}
