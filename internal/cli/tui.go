package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/imagepack/pkg/defs"
)

// List styles
var (
	listDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	listHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// frameRow is one frame with the sheet it sits on.
type frameRow struct {
	sheet int
	image string
	frame defs.Frame
}

// frameRows flattens the frames of every sheet in sheet order.
func frameRows(a *defs.Atlas) []frameRow {
	var rows []frameRow
	for i, sh := range a.Sheets {
		for _, f := range sh.Frames {
			rows = append(rows, frameRow{sheet: i, image: sh.Image, frame: f})
		}
	}
	return rows
}

// cells renders r as table cells.
func (r frameRow) cells() []string {
	f := r.frame
	return []string{
		f.Name,
		fmt.Sprintf("%d", r.sheet),
		fmt.Sprintf("%d,%d %dx%d", f.X, f.Y, f.W, f.H),
		fmt.Sprintf("%.4f %.4f", f.S0, f.S1),
		fmt.Sprintf("%.4f %.4f", f.T0, f.T1),
	}
}

// frameTable builds the table for rows[start:end], highlighting cursor.
func frameTable(rows []frameRow, start, end, cursor int) *table.Table {
	data := make([][]string, 0, end-start)
	for i := start; i < end; i++ {
		data = append(data, rows[i].cells())
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Name", "Sheet", "Rect", "S", "T").
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return listHeaderStyle
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			if start+row == cursor {
				return base.Foreground(colorCyan).Bold(true)
			}
			if col == 0 {
				return base.Foreground(colorWhite)
			}
			return base.Foreground(colorGray)
		})
}

// =============================================================================
// FrameListModel - Interactive frame browser
// =============================================================================

// FrameListModel is the bubbletea model for browsing a definitions file.
type FrameListModel struct {
	Atlas  *defs.Atlas
	Source string
	Rows   []frameRow
	Cursor int
	Height int
	Offset int
}

// NewFrameListModel creates a frame list model for a.
func NewFrameListModel(a *defs.Atlas, source string) FrameListModel {
	return FrameListModel{
		Atlas:  a,
		Source: source,
		Rows:   frameRows(a),
		Height: 15,
	}
}

func (m FrameListModel) Init() tea.Cmd {
	return nil
}

func (m FrameListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "pgup":
			m.move(-m.Height)
		case "pgdown", " ":
			m.move(m.Height)
		case "home", "g":
			m.move(-len(m.Rows))
		case "end", "G":
			m.move(len(m.Rows))
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-10, 5)
		m.move(0)
	}
	return m, nil
}

// move shifts the cursor by delta and keeps it inside the visible window.
func (m *FrameListModel) move(delta int) {
	if len(m.Rows) == 0 {
		return
	}
	m.Cursor = min(max(m.Cursor+delta, 0), len(m.Rows)-1)
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m FrameListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(filepath.Base(m.Source)))
	b.WriteString(" ")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("%d frames on %d sheets", len(m.Rows), len(m.Atlas.Sheets))))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  pgup/pgdn page  q quit"))
	b.WriteString("\n\n")

	if len(m.Rows) == 0 {
		b.WriteString(StyleWarning.Render("No frames"))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Rows))
	b.WriteString(frameTable(m.Rows, m.Offset, end, m.Cursor).Render())
	b.WriteString("\n\n")

	cur := m.Rows[m.Cursor]
	sh := m.Atlas.Sheets[cur.sheet]
	b.WriteString(StyleHighlight.Render(cur.frame.Name))
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  on %s (%dx%d)", sheetLabel(cur), sh.Width, sh.Height)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Rows))))

	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

// sheetLabel names the sheet of r by file, or by index when it has none.
func sheetLabel(r frameRow) string {
	if r.image != "" {
		return r.image
	}
	return fmt.Sprintf("sheet %d", r.sheet)
}
