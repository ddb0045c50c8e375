package cli

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/imagepack/pkg/defs"
)

func testAtlas(frames ...int) *defs.Atlas {
	a := &defs.Atlas{}
	for i, n := range frames {
		sh := defs.Sheet{Image: fmt.Sprintf("atlas%d.png", i), Width: 64, Height: 64}
		for j := range n {
			sh.Frames = append(sh.Frames, defs.Frame{
				Name: fmt.Sprintf("s%d-f%d.png", i, j),
				X:    j * 8, W: 8, H: 8,
			})
		}
		a.Sheets = append(a.Sheets, sh)
	}
	return a
}

func key(s string) tea.KeyMsg {
	switch s {
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "end":
		return tea.KeyMsg{Type: tea.KeyEnd}
	case "home":
		return tea.KeyMsg{Type: tea.KeyHome}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestFrameRows(t *testing.T) {
	rows := frameRows(testAtlas(2, 3))
	if len(rows) != 5 {
		t.Fatalf("len(rows) = %d, want 5", len(rows))
	}
	if rows[2].sheet != 1 || rows[2].frame.Name != "s1-f0.png" {
		t.Errorf("rows[2] = %+v", rows[2])
	}
	if got := rows[1].cells(); got[2] != "8,0 8x8" {
		t.Errorf("rect cell = %q, want \"8,0 8x8\"", got[2])
	}
}

func TestFrameListNavigation(t *testing.T) {
	var m tea.Model = NewFrameListModel(testAtlas(10, 10), "atlas.json")
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 15})

	tests := []struct {
		key        string
		wantCursor int
	}{
		{"down", 1},
		{"j", 2},
		{"up", 1},
		{"end", 19},
		{"down", 19},
		{"home", 0},
		{"up", 0},
	}

	for _, tt := range tests {
		m, _ = m.Update(key(tt.key))
		fm := m.(FrameListModel)
		if fm.Cursor != tt.wantCursor {
			t.Fatalf("after %q cursor = %d, want %d", tt.key, fm.Cursor, tt.wantCursor)
		}
		if fm.Cursor < fm.Offset || fm.Cursor >= fm.Offset+fm.Height {
			t.Fatalf("after %q cursor %d outside window [%d, %d)", tt.key, fm.Cursor, fm.Offset, fm.Offset+fm.Height)
		}
	}
}

func TestFrameListQuit(t *testing.T) {
	m := NewFrameListModel(testAtlas(1), "atlas.json")
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestFrameListView(t *testing.T) {
	m := NewFrameListModel(testAtlas(2), "out/atlas.json")
	m.move(1)
	view := m.View()

	for _, want := range []string{"atlas.json", "2 frames on 1 sheets", "s0-f0.png", "s0-f1.png", "on atlas0.png (64x64)", "[2/2]"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q:\n%s", want, view)
		}
	}

	empty := NewFrameListModel(&defs.Atlas{}, "empty.json").View()
	if !strings.Contains(empty, "No frames") {
		t.Errorf("empty View() = %q", empty)
	}
}

func TestPrintFrames(t *testing.T) {
	var buf bytes.Buffer
	if err := printFrames(&buf, testAtlas(1, 2)); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"sheet 0", "sheet 1", "s1-f1.png", "Rect"} {
		if !strings.Contains(out, want) {
			t.Errorf("printFrames() missing %q:\n%s", want, out)
		}
	}
}
