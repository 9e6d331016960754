package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgehrsitz/withholding/internal/tui/scenes"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// step applies msg and then feeds every resulting message back in until no
// command remains.
func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	for i := 0; msg != nil && i < 10; i++ {
		next, cmd := m.Update(msg)
		m = next.(Model)
		if cmd == nil {
			return m
		}
		msg = cmd()
	}
	return m
}

func loadedModel(t *testing.T) Model {
	t.Helper()
	m := NewModel("")
	msg := m.Init()()
	loaded, ok := msg.(RulesLoadedMsg)
	require.True(t, ok, "expected RulesLoadedMsg, got %T", msg)
	assert.Equal(t, "embedded defaults", loaded.Source)
	return step(t, m, msg)
}

func TestModelLoadsRules(t *testing.T) {
	m := loadedModel(t)
	require.NotNil(t, m.Rules())
	assert.Equal(t, SceneHome, m.CurrentScene())

	view := m.View()
	assert.Contains(t, view, "Rule table 2024.1")
	assert.Contains(t, view, "embedded defaults")
	assert.Contains(t, view, "FL, TX, WA")
}

func TestModelLoadError(t *testing.T) {
	m := NewModel("/does/not/exist.yaml")
	m = step(t, m, m.Init()())
	assert.Nil(t, m.Rules())
	assert.Contains(t, m.View(), "failed to read rules file")

	// Any key dismisses the error.
	m = step(t, m, runes("x"))
	assert.NotContains(t, m.View(), "Error:")
}

func TestModelNavigation(t *testing.T) {
	m := loadedModel(t)

	m = step(t, m, runes("b"))
	assert.Equal(t, SceneJurisdictions, m.CurrentScene())
	assert.Contains(t, m.View(), "California")

	m = step(t, m, runes("?"))
	assert.Equal(t, SceneHelp, m.CurrentScene())

	m = step(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, SceneHome, m.CurrentScene())

	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestBrowseThenCalculate(t *testing.T) {
	m := loadedModel(t)
	m = step(t, m, runes("b"))

	// Codes are sorted; TX is tenth.
	for i := 0; i < 9; i++ {
		m = step(t, m, tea.KeyMsg{Type: tea.KeyDown})
	}
	m = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, SceneCalculator, m.CurrentScene())

	m.calculatorModel.SetValue(scenes.FieldGrossPay, "2000")
	m = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	view := m.View()
	assert.Contains(t, view, "$1847.00")
	assert.Contains(t, view, "$124.00")
	assert.Contains(t, view, "$29.00")
}

func TestCalculatorKeepsLetterKeys(t *testing.T) {
	m := loadedModel(t)
	m = step(t, m, runes("c"))
	require.Equal(t, SceneCalculator, m.CurrentScene())

	// "q" and "b" are typed into the form instead of quitting or navigating.
	m = step(t, m, runes("q"))
	m = step(t, m, runes("b"))
	assert.Equal(t, SceneCalculator, m.CurrentScene())
}

func TestCalculationErrorShownInCalculator(t *testing.T) {
	m := loadedModel(t)
	m = step(t, m, runes("c"))
	m = step(t, m, CalculationCompleteMsg{Err: errors.New("Missing required fields")})
	assert.Contains(t, m.View(), "Missing required fields")
}

func TestSceneString(t *testing.T) {
	assert.Equal(t, "Jurisdictions", SceneJurisdictions.String())
	assert.Equal(t, "Unknown", Scene(99).String())
}
