package viz

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/experiment"
)

var presetInfo = map[string]string{
	"cube/small": "32 random bodies at rest", "cube/bench": "250 bodies, benchmark set", "cube/dense": "1000 random bodies",
	"ring/stable": "rotating ring of 12", "ring/collapse": "ring of 24 at rest",
	"binary/unit": "two unit masses", "binary/infall": "two heavy masses falling in",
}

const (
	stateMenu = iota
	stateConfig
	stateSim
)

// param is one editable field of the selected preset.
type param struct {
	name string
	get  func(*config.Config) float64
	set  func(*config.Config, float64)
}

var params = []param{
	{"bodies", func(c *config.Config) float64 { return float64(c.Init.NumBodies) }, func(c *config.Config, v float64) { c.Init.NumBodies = int(v) }},
	{"dt", func(c *config.Config) float64 { return c.Dt }, func(c *config.Config, v float64) { c.Dt = v }},
	{"lanes", func(c *config.Config) float64 { return float64(c.Lanes) }, func(c *config.Config, v float64) { c.Lanes = int(v) }},
	{"seed", func(c *config.Config) float64 { return float64(c.Seed) }, func(c *config.Config, v float64) { c.Seed = int64(v) }},
	{"steps/frame", nil, nil},
}

// App walks through preset selection and parameter editing before handing
// over to the live Model.
type App struct {
	registry     *experiment.Registry
	state        int
	cursor       int
	presets      []string
	cfg          *config.Config
	paramCursor  int
	editing      bool
	editBuf      string
	stepsPerTick int
	err          error
	liveModel    Model
}

func NewApp(registry *experiment.Registry) *App {
	presets := make([]string, 0)
	for dist := range config.Presets {
		for _, name := range config.ListPresets(dist) {
			presets = append(presets, dist+"/"+name)
		}
	}
	sort.Strings(presets)

	return &App{
		registry:     registry,
		state:        stateMenu,
		presets:      presets,
		stepsPerTick: 1,
	}
}

func (m App) Init() tea.Cmd { return nil }

func (m App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		if m.state == stateSim {
			newLive, cmd := m.liveModel.Update(msg)
			m.liveModel = newLive.(Model)
			return m, cmd
		}
	}
	return m, nil
}

func (m App) handleKey(msg tea.KeyMsg) (App, tea.Cmd) {
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateConfig:
		return m.configKey(msg)
	case stateSim:
		newLive, cmd := m.liveModel.Update(msg)
		m.liveModel = newLive.(Model)
		return m, cmd
	}
	return m, nil
}

func (m App) menuKey(msg tea.KeyMsg) (App, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		dist, name, _ := strings.Cut(m.presets[m.cursor], "/")
		m.cfg = config.GetPreset(dist, name)
		m.state, m.paramCursor, m.err = stateConfig, 0, nil
	}
	return m, nil
}

func (m App) value(i int) float64 {
	if params[i].get == nil {
		return float64(m.stepsPerTick)
	}
	return params[i].get(m.cfg)
}

func (m *App) setValue(i int, v float64) {
	if params[i].set == nil {
		m.stepsPerTick = max(1, int(v))
		return
	}
	params[i].set(m.cfg, v)
}

func (m App) configKey(msg tea.KeyMsg) (App, tea.Cmd) {
	if m.editing {
		switch msg.String() {
		case "enter":
			var val float64
			if _, err := fmt.Sscanf(m.editBuf, "%g", &val); err == nil {
				m.setValue(m.paramCursor, val)
			}
			m.editing, m.editBuf = false, ""
		case "esc":
			m.editing, m.editBuf = false, ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if len(msg.String()) == 1 {
				c := msg.String()[0]
				if (c >= '0' && c <= '9') || c == '.' || c == '-' || c == 'e' {
					m.editBuf += string(c)
				}
			}
		}
		return m, nil
	}
	switch msg.String() {
	case "q", "esc":
		m.state = stateMenu
	case "up", "k":
		if m.paramCursor > 0 {
			m.paramCursor--
		}
	case "down", "j":
		if m.paramCursor < len(params)-1 {
			m.paramCursor++
		}
	case "enter", " ":
		m.editing, m.editBuf = true, fmt.Sprintf("%g", m.value(m.paramCursor))
	case "s":
		cmd := m.start()
		return m, cmd
	case "left", "h":
		m.setValue(m.paramCursor, m.value(m.paramCursor)/2)
	case "right", "l":
		m.setValue(m.paramCursor, m.value(m.paramCursor)*2)
	}
	return m, nil
}

func (m *App) start() tea.Cmd {
	exp, err := experiment.Build(m.registry, m.cfg)
	if err != nil {
		m.err = err
		return nil
	}
	m.liveModel = NewModel(exp.Ensemble(), m.cfg.Dt, m.presets[m.cursor]+" ("+m.cfg.Strategy+")").WithStepsPerTick(m.stepsPerTick)
	m.state = stateSim
	return m.liveModel.Init()
}

func (m App) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateConfig:
		return m.viewConfig()
	case stateSim:
		return m.liveModel.View()
	}
	return ""
}

func (m App) viewMenu() string {
	t := CurrentTheme
	h, sub := lipgloss.NewStyle().Foreground(t.Primary).Bold(true), lipgloss.NewStyle().Foreground(t.Muted)
	sel, desc := lipgloss.NewStyle().Foreground(t.Text).Bold(true), lipgloss.NewStyle().Foreground(t.Accent)

	var b strings.Builder
	b.WriteString("\n\n    " + h.Render("GRAVSIM") + "\n    " + sub.Render("all-pairs gravity") + "\n    " + sub.Render(separator(25)) + "\n\n")
	for i, name := range m.presets {
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", h.Render("▸"), sel.Render(fmt.Sprintf("%-16s", name)), desc.Render(presetInfo[name])))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", sub.Render(fmt.Sprintf("  %-16s", name)), sub.Render(presetInfo[name])))
		}
	}
	b.WriteString("\n    " + h.Render("j/k") + sub.Render(" navigate  ") + h.Render("enter") + sub.Render(" select  ") + h.Render("q") + sub.Render(" quit") + "\n")
	return b.String()
}

func (m App) viewConfig() string {
	t := CurrentTheme
	h, sub := lipgloss.NewStyle().Foreground(t.Primary).Bold(true), lipgloss.NewStyle().Foreground(t.Muted)
	sel, val := lipgloss.NewStyle().Foreground(t.Text).Bold(true), lipgloss.NewStyle().Foreground(t.Accent).Bold(true)

	name := m.presets[m.cursor]
	var b strings.Builder
	b.WriteString("\n\n    " + h.Render(strings.ToUpper(name)) + "\n    " + sub.Render(presetInfo[name]) + "\n    " + sub.Render(separator(25)) + "\n\n")
	for i, p := range params {
		valStr := fmt.Sprintf("%10g", m.value(i))
		if m.editing && i == m.paramCursor {
			valStr = fmt.Sprintf("%10s", m.editBuf+"_")
		}
		if i == m.paramCursor {
			b.WriteString(fmt.Sprintf("    %s %s %s\n", h.Render("▸"), sel.Render(fmt.Sprintf("%-12s", p.name)), val.Render(valStr)))
		} else {
			b.WriteString(fmt.Sprintf("    %s %s\n", sub.Render(fmt.Sprintf("  %-12s", p.name)), sub.Render(valStr)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + lipgloss.NewStyle().Foreground(t.Error).Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + h.Render("j/k") + sub.Render(" select  ") + h.Render("h/l") + sub.Render(" halve/double  ") + h.Render("s") + sub.Render(" start  ") + h.Render("esc") + sub.Render(" back") + "\n")
	return b.String()
}

// RunInteractive starts the preset picker.
func RunInteractive(registry *experiment.Registry) error {
	_, err := tea.NewProgram(NewApp(registry), tea.WithAltScreen()).Run()
	return err
}
