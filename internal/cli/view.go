package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	tio "github.com/matzehuels/tipscan/pkg/io"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	barStyle          = lipgloss.NewStyle().Foreground(colorCyan)
)

// barWidth is the width of a transmission bar at the upper y limit.
const barWidth = 40

func (c *CLI) viewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "view <result.json>",
		Short: "Browse a sweep result in the terminal",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: fileArg("json"),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := tio.ImportJSON(args[0])
			if err != nil {
				return err
			}
			if len(doc.Series) == 0 {
				printInfo("No series in %s", args[0])
				return nil
			}
			_, err = tea.NewProgram(newViewModel(doc), tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
}

// viewModel lists the series of a document. Enter opens the points of the
// selected series, esc goes back.
type viewModel struct {
	doc    *tio.Document
	cursor int
	detail bool
	offset int
	height int
}

func newViewModel(doc *tio.Document) viewModel {
	return viewModel{doc: doc, height: 20}
}

func (m viewModel) Init() tea.Cmd { return nil }

func (m viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc", "backspace":
			if !m.detail {
				return m, tea.Quit
			}
			m.detail = false
		case "enter":
			m.detail, m.offset = true, 0
		case "up", "k":
			if m.detail {
				m.offset = max(m.offset-1, 0)
			} else if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.detail {
				m.offset = min(m.offset+1, max(len(m.series().X)-m.height, 0))
			} else if m.cursor < len(m.doc.Series)-1 {
				m.cursor++
			}
		}
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-8, 5)
	}
	return m, nil
}

func (m viewModel) series() tio.Series { return m.doc.Series[m.cursor] }

func (m viewModel) View() string {
	if m.detail {
		return m.pointsView()
	}
	var b strings.Builder
	b.WriteString(StyleTitle.Render(m.doc.Plot.Title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ points  q quit"))
	b.WriteString("\n\n")

	rows := make([][]string, len(m.doc.Series))
	for i, s := range m.doc.Series {
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		status := "complete"
		if !s.Complete {
			status = "partial"
		}
		rows[i] = []string{cursor, s.Label, s.Variable, strconv.Itoa(len(s.X)), status}
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers("", "Series", "Variable", "Points", "Status").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return styleHeader
			case row == m.cursor:
				return listSelectedStyle.Padding(0, 1)
			}
			return styleCell
		})
	b.WriteString(t.Render())
	return b.String()
}

func (m viewModel) pointsView() string {
	s := m.series()
	ymax := m.doc.Plot.YLim[1]
	if ymax <= 0 {
		ymax = tio.YMax
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render(s.Label))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ scroll  esc back  q quit"))
	b.WriteString("\n\n")

	end := min(m.offset+m.height, len(s.X))
	for i := m.offset; i < end; i++ {
		n := int(s.T[i] / ymax * barWidth)
		n = min(max(n, 0), barWidth)
		fmt.Fprintf(&b, "%12.5g  %8.5f  %s\n", s.X[i], s.T[i], barStyle.Render(strings.Repeat("█", n)))
	}
	if s.Error != "" {
		b.WriteString("\n" + StyleWarning.Render(s.Error) + "\n")
	}
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d-%d/%d]", m.offset+1, end, len(s.X))))
	return b.String()
}
