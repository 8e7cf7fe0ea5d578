package cli

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/flowatlas/flowatlas/pkg/binner"
	"github.com/flowatlas/flowatlas/pkg/flow"
	"github.com/flowatlas/flowatlas/pkg/pipeline"
	"github.com/flowatlas/flowatlas/pkg/timelapse"
)

// Player styles
var (
	playerYearStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)
	playerCurrentStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	playerDimStyle     = lipgloss.NewStyle().Foreground(colorDim)
	playerHeaderStyle  = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

const (
	defaultPlayerRows = 15
	playerBarWidth    = 30
)

// =============================================================================
// playerModel - Interactive timelapse
// =============================================================================

// frameMsg carries one redraw from the sequencer goroutine.
type frameMsg struct {
	cmd pipeline.MapCommand
}

// playerModel is the bubbletea model for the terminal timelapse. Sequencer
// calls that may block on a redraw run as commands, never inside Update:
// the redraw sends a message to this program and would deadlock.
type playerModel struct {
	ctx    context.Context
	seq    *timelapse.Sequencer
	years  []string
	legend binner.Legend

	frame *pipeline.MapCommand
	rows  int
}

func newPlayerModel(ctx context.Context, seq *timelapse.Sequencer, legend binner.Legend) playerModel {
	return playerModel{
		ctx:    ctx,
		seq:    seq,
		years:  seq.Years(),
		legend: legend,
		rows:   defaultPlayerRows,
	}
}

// Init draws the first year and starts playing.
func (m playerModel) Init() tea.Cmd {
	first := m.years[0]
	return func() tea.Msg {
		m.seq.Override(first)
		m.seq.Start(m.ctx)
		return nil
	}
}

func (m playerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		m.frame = &msg.cmd
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ", "p":
			return m, func() tea.Msg {
				m.seq.Toggle(m.ctx)
				return nil
			}
		case "left", "h":
			return m, m.jump(-1)
		case "right", "l":
			return m, m.jump(1)
		case "home", "g":
			return m, m.show(m.years[0])
		case "end", "G":
			return m, m.show(m.years[len(m.years)-1])
		case "r":
			return m, func() tea.Msg {
				m.seq.Reset()
				return nil
			}
		}
	case tea.WindowSizeMsg:
		m.rows = max(msg.Height-14, 5)
	}
	return m, nil
}

// jump shows the year delta steps from the current frame, clamped to the
// year list.
func (m playerModel) jump(delta int) tea.Cmd {
	i := 0
	if m.frame != nil {
		i = slices.Index(m.years, m.frame.Year) + delta
	}
	i = min(max(i, 0), len(m.years)-1)
	return m.show(m.years[i])
}

func (m playerModel) show(year string) tea.Cmd {
	return func() tea.Msg {
		m.seq.Override(year)
		return nil
	}
}

func (m playerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Refugees by country of origin"))
	b.WriteString("  ")
	b.WriteString(m.stateLabel())
	b.WriteString("\n\n")
	b.WriteString(m.timeline())
	b.WriteString("\n\n")

	if m.frame == nil {
		b.WriteString(playerDimStyle.Render("  loading..."))
		b.WriteString("\n")
	} else {
		b.WriteString(m.table())
		b.WriteString("\n")
		known := len(m.frame.Fills) - len(m.frame.Unknown)
		b.WriteString(playerDimStyle.Render(fmt.Sprintf("  %d regions with data · %d without", known, len(m.frame.Unknown))))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.legendLine())
	b.WriteString("\n")
	b.WriteString(playerDimStyle.Render("space play/pause  ←/→ year  home/end first/last  r rewind  q quit"))
	return b.String()
}

func (m playerModel) stateLabel() string {
	mode := m.seq.Mode().String()
	if m.seq.State() == timelapse.Running {
		return StyleSuccess.Render("▶ playing") + playerDimStyle.Render(" ("+mode+")")
	}
	return StyleWarning.Render("❚❚ paused") + playerDimStyle.Render(" ("+mode+")")
}

// timeline renders the year list with the current year highlighted.
func (m playerModel) timeline() string {
	parts := make([]string, len(m.years))
	for i, y := range m.years {
		if m.frame != nil && y == m.frame.Year {
			parts[i] = playerCurrentStyle.Render("[" + y + "]")
			continue
		}
		parts[i] = playerDimStyle.Render(y)
	}
	return "  " + strings.Join(parts, " ")
}

type playerRow struct {
	name  string
	value float64
	color binner.Color
}

// topRows returns the regions with data, largest first.
func (m playerModel) topRows() []playerRow {
	var rows []playerRow
	for name, c := range m.frame.Fills {
		if c.NoData {
			continue
		}
		if v, ok := m.frame.Values[name]; ok {
			rows = append(rows, playerRow{name: name, value: v, color: c})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].value != rows[j].value {
			return rows[i].value > rows[j].value
		}
		return rows[i].name < rows[j].name
	})
	if len(rows) > m.rows {
		rows = rows[:m.rows]
	}
	return rows
}

func (m playerModel) table() string {
	rows := m.topRows()
	peak := 0.0
	if len(rows) > 0 {
		peak = rows[0].value
	}

	data := make([][]string, len(rows))
	for i, r := range rows {
		width := 1
		if peak > 0 {
			width = max(1, int(r.value/peak*playerBarWidth))
		}
		bar := lipgloss.NewStyle().Foreground(lipgloss.Color(r.color.Hex())).Render(strings.Repeat("█", width))
		data[i] = []string{fmt.Sprintf("%d", i+1), flow.Label(r.name), bar, flow.FormatValue(r.value)}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "Region", "", "Refugees").
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return playerHeaderStyle
			case col == 0:
				return playerDimStyle
			case col == 3:
				return StyleNumber
			}
			return lipgloss.NewStyle()
		})

	year := playerYearStyle.Render("  " + m.frame.Year)
	return year + "\n" + t.Render()
}

// legendLine renders the legend swatches on one line.
func (m playerModel) legendLine() string {
	parts := make([]string, 0, len(m.legend.Entries))
	for _, e := range m.legend.Entries {
		sw := lipgloss.NewStyle().Foreground(lipgloss.Color(e.Color.Hex())).Render("■")
		parts = append(parts, sw+" "+playerDimStyle.Render(e.Label))
	}
	return "  " + strings.Join(parts, "  ")
}
