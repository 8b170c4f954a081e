package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	tio "github.com/matzehuels/tipscan/pkg/io"
)

func testDocument() *tio.Document {
	return &tio.Document{
		Plot: tio.Plot{Title: "Transmission vs Vg at E = -3.8", YLim: [2]float64{tio.YMin, tio.YMax}},
		Series: []tio.Series{
			{Label: "tc = 1.0", Variable: "Vg", X: []float64{-1, 0, 1}, T: []float64{0, 1, 0.5}, Complete: true},
			{Label: "tc = 0.5", Variable: "Vg", X: []float64{-1}, T: []float64{0.25}, Error: "solver diverged"},
		},
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(m viewModel, keys ...string) viewModel {
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(viewModel)
	}
	return m
}

func TestViewModelNavigation(t *testing.T) {
	m := newViewModel(testDocument())

	m = update(m, "down", "down")
	if m.cursor != 1 {
		t.Errorf("cursor = %d, want clamped at 1", m.cursor)
	}
	m = update(m, "k")
	if m.cursor != 0 {
		t.Errorf("cursor = %d after k, want 0", m.cursor)
	}

	m = update(m, "enter")
	if !m.detail {
		t.Fatal("enter should open the points view")
	}
	m = update(m, "esc")
	if m.detail {
		t.Error("esc should return to the series list")
	}
}

func TestViewModelQuit(t *testing.T) {
	m := newViewModel(testDocument())
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestViewModelViews(t *testing.T) {
	m := newViewModel(testDocument())
	list := m.View()
	for _, want := range []string{"Transmission vs Vg", "tc = 1.0", "tc = 0.5", "partial"} {
		if !strings.Contains(list, want) {
			t.Errorf("list view lacks %q", want)
		}
	}

	m = update(m, "down", "enter")
	points := m.View()
	if !strings.Contains(points, "solver diverged") {
		t.Error("points view should show the series error")
	}
	if !strings.Contains(points, "[1-1/1]") {
		t.Errorf("points view lacks the position footer:\n%s", points)
	}
}

func TestViewModelScrollBounds(t *testing.T) {
	m := newViewModel(testDocument())
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 10})
	m = next.(viewModel)
	if m.height != 5 {
		t.Fatalf("height = %d, want floor of 5", m.height)
	}
	m = update(m, "enter", "down", "down", "up", "up", "up")
	if m.offset != 0 {
		t.Errorf("offset = %d, want 0 for a series shorter than the window", m.offset)
	}
}
