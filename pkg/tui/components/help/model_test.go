package help

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea/v2"
)

func TestViewShowsKeys(t *testing.T) {
	m := New(100, 80)
	view := m.View()
	for _, want := range []string{"Entries", "Batch mode", "Sync symbols"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in help view:\n%s", want, view)
		}
	}
}

func TestScrollsWhenShort(t *testing.T) {
	m := New(60, 8)
	if m.AtBottom() {
		t.Fatalf("expected the help not to fit in 8 lines")
	}
	first := m.View()
	m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if m.View() == first {
		t.Fatalf("expected scrolling to change the view")
	}
}

func TestMinimumSize(t *testing.T) {
	m := New(1, 1)
	if m.width != 32 || m.height != 8 {
		t.Fatalf("expected the minimum size, got %dx%d", m.width, m.height)
	}
}
