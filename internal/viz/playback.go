package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/kinsim/internal/plot"
	"github.com/san-kum/kinsim/internal/sim"
)

const (
	frameRate  = time.Second / 30
	minSpeed   = 1
	maxSpeed   = 512
	chartWidth = 70
	chartRows  = 14
	sparkWidth = 40
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Playback steps through the samples of a trajectory. Speed is the number
// of samples advanced per tick.
type Playback struct {
	name    string
	traj    *sim.Trajectory
	units   plot.Options
	frame   int
	speed   int
	running bool
	width   int
	height  int
}

// NewPlayback starts at the second sample. Only the units of opts are
// used, for the chart caption.
func NewPlayback(name string, traj *sim.Trajectory, opts plot.Options) Playback {
	return Playback{
		name:    name,
		traj:    traj,
		units:   opts,
		frame:   1,
		speed:   max(1, traj.Len()/300),
		running: true,
		width:   chartWidth,
		height:  chartRows,
	}
}

// Frame is the index of the last sample on screen.
func (m Playback) Frame() int    { return m.frame }
func (m Playback) Speed() int    { return m.speed }
func (m Playback) Running() bool { return m.running }

func (m Playback) Init() tea.Cmd { return tick() }

func (m Playback) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	last := m.traj.Len() - 1
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.running = !m.running
			if m.running && m.frame >= last {
				m.frame = 1
			}
		case "+", "=":
			m.speed = min(m.speed*2, maxSpeed)
		case "-", "_":
			m.speed = max(m.speed/2, minSpeed)
		case "[":
			m.running = false
			m.frame = max(m.frame-1, 1)
		case "]":
			m.running = false
			m.frame = min(m.frame+1, last)
		case "r":
			m.frame = 1
			m.running = true
		}
	case tea.WindowSizeMsg:
		m.width = max(20, min(msg.Width-16, 160))
		m.height = max(6, min(msg.Height-12-len(m.traj.Species), 40))
	case TickMsg:
		if m.running {
			m.frame = min(m.frame+m.speed, last)
			if m.frame == last {
				m.running = false
			}
		}
		return m, tick()
	}
	return m, nil
}

// visible returns the samples up to and including the playhead.
func (m Playback) visible() *sim.Trajectory {
	n := min(m.frame+1, m.traj.Len())
	return &sim.Trajectory{
		Times:          m.traj.Times[:n],
		Concentrations: m.traj.Concentrations[:n],
		Species:        m.traj.Species,
		Stats:          m.traj.Stats,
	}
}

func (m Playback) View() string {
	if m.traj.Len() < 2 {
		return "nothing to replay\n"
	}

	var s strings.Builder
	s.WriteString(HeaderStyle.Render(Title.Render(strings.ToUpper(m.name))) + "\n")

	status := StatusRunning.Render("PLAYING")
	if !m.running {
		status = StatusPaused.Render("PAUSED")
	}
	last := m.traj.Len() - 1
	fmt.Fprintf(&s, "%s  t = %s  %s  x%d\n\n",
		status,
		MetricValue.Render(fmt.Sprintf("%.4g", m.traj.Times[m.frame])),
		ProgressBar(float64(m.frame)/float64(last), 30),
		m.speed)

	vis := m.visible()
	if chart := plot.ASCII(vis, m.width, m.height, m.units); chart != "" {
		s.WriteString(Panel.Render(chart) + "\n")
	}

	row := m.traj.Concentrations[m.frame]
	for j, name := range m.traj.Species {
		series, _ := vis.Series(name)
		line := lipgloss.JoinHorizontal(lipgloss.Top,
			MetricLabel.Render(name),
			MetricValue.Render(fmt.Sprintf("%-12.5g", row[j])),
			Sparkline(series, sparkWidth))
		s.WriteString(line + "\n")
	}

	s.WriteString("\n" + KeyHint.Render("space pause  +/- speed  [/] step  r restart  q quit") + "\n")
	return s.String()
}

// Play runs the playback on the terminal until the user quits.
func Play(name string, traj *sim.Trajectory, opts plot.Options) error {
	if traj == nil || traj.Len() < 2 {
		return fmt.Errorf("viz: trajectory needs at least two samples")
	}
	_, err := tea.NewProgram(NewPlayback(name, traj, opts), tea.WithAltScreen()).Run()
	return err
}
