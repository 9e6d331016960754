package tui

import (
	"github.com/rgehrsitz/withholding/internal/tui/tuimsg"
)

// Scene represents different screens in the TUI
type Scene int

const (
	SceneHome Scene = iota
	SceneJurisdictions
	SceneCalculator
	SceneHelp
)

// NavigateMsg switches to a different scene
type NavigateMsg struct {
	Scene Scene
}

// Messages shared with the scenes.
type (
	RulesLoadedMsg          = tuimsg.RulesLoadedMsg
	ErrorMsg                = tuimsg.ErrorMsg
	JurisdictionSelectedMsg = tuimsg.JurisdictionSelectedMsg
	CalculationRequestedMsg = tuimsg.CalculationRequestedMsg
	CalculationCompleteMsg  = tuimsg.CalculationCompleteMsg
)
