package viz

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"math"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600
	trailCapacity   = 2000
	maxStepsPerTick = 1 << 12
	gifPath         = "gravsim.gif"
)

// frame is one replayable point in the live history.
type frame struct {
	bodies []dynamo.Body
	t      float64
	drift  float64
}

type point struct{ x, y int }

type TickMsg time.Time

// Model steps an ensemble on every tick and renders it as a braille
// projection next to an energy drift chart.
type Model struct {
	ens          dynamo.Ensemble
	sim          *dynamo.Simulator
	initial      []dynamo.Body
	name         string
	dt, t        float64
	steps        int
	stepsPerTick int

	width, height int
	canvas        *Canvas
	camera        *Camera
	maxMass       float64
	trail         []point
	showTrail     bool
	showBox       bool

	running    bool
	err        error
	energy0    float64
	driftHist  []float64
	momentum0  dynamo.Vec3
	history    []frame
	playHead   int
	recording  bool
	frames     []*image.Paletted
	showHelp   bool
	tickPeriod time.Duration
}

// NewModel builds a live view of ens. The current state of ens becomes the
// reset point.
func NewModel(ens dynamo.Ensemble, dt float64, name string) Model {
	initial := dynamo.Bodies(ens)
	center, extent := Frame(initial)

	maxMass := 0.0
	for _, b := range initial {
		maxMass = math.Max(maxMass, b.Mass)
	}

	return Model{
		ens:          ens,
		sim:          dynamo.New(),
		initial:      initial,
		name:         name,
		dt:           dt,
		stepsPerTick: 1,
		width:        width,
		height:       height,
		canvas:       NewCanvas(width, height),
		camera:       NewCamera(center, extent),
		maxMass:      maxMass,
		trail:        make([]point, 0, trailCapacity),
		showTrail:    true,
		running:      true,
		energy0:      physics.TotalEnergy(ens),
		momentum0:    physics.Momentum(ens),
		driftHist:    make([]float64, 0, historyCapacity),
		history:      make([]frame, 0, historyCapacity),
		playHead:     -1,
		tickPeriod:   time.Second / 30,
	}
}

// WithStepsPerTick returns a copy of m that advances n steps per frame.
func (m Model) WithStepsPerTick(n int) Model {
	m.stepsPerTick = max(1, min(n, maxStepsPerTick))
	return m
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.tickPeriod, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "[":
			m.scrub(-1)
		case "]":
			m.scrub(1)
		case ".", ">":
			m.stepsPerTick = min(m.stepsPerTick*2, maxStepsPerTick)
		case ",", "<":
			m.stepsPerTick = max(m.stepsPerTick/2, 1)
		case "c":
			m.showTrail = !m.showTrail
			m.trail = m.trail[:0]
		case "b":
			m.showBox = !m.showBox
		case "g":
			if m.recording {
				m.saveGIF()
				m.recording = false
				m.frames = nil
			} else {
				m.recording = true
				m.frames = make([]*image.Paletted, 0)
			}
		case "?":
			m.showHelp = !m.showHelp
		case "t":
			NextTheme()
		case "x":
			m.camera.RotateX(0.1)
		case "X":
			m.camera.RotateX(-0.1)
		case "y":
			m.camera.RotateY(0.1)
		case "Y":
			m.camera.RotateY(-0.1)
		case "z":
			m.camera.RotateZ(0.1)
		case "Z":
			m.camera.RotateZ(-0.1)
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		}
	case TickMsg:
		if m.running {
			if m.playHead == -1 {
				m.step()
			} else {
				m.playHead++
				if m.playHead >= len(m.history) {
					m.playHead = -1
				}
			}
		}
		m.draw()
		if m.recording {
			m.captureFrame()
		}
		return m, m.tick()
	}
	return m, nil
}

// step advances the ensemble by stepsPerTick fixed steps and records the
// result. A non-finite state pauses the view.
func (m *Model) step() {
	if m.err != nil {
		return
	}
	base := m.steps
	cfg := dynamo.Config{Dt: m.dt, Steps: m.stepsPerTick, ValidateState: true}
	err := m.sim.RunWithCallback(context.Background(), m.ens, cfg, func(_ dynamo.Ensemble, i int, _ float64) bool {
		m.steps = base + i + 1
		return true
	})
	m.t = float64(m.steps) * m.dt

	if err != nil {
		var simErr *dynamo.SimulationError
		if errors.As(err, &simErr) {
			err = &dynamo.SimulationError{Step: m.steps, Time: m.t, Wrapped: simErr.Wrapped}
		}
		m.err = err
		m.running = false
		return
	}

	drift := m.drift(physics.TotalEnergy(m.ens))
	m.driftHist = append(m.driftHist, drift)
	if len(m.driftHist) > historyCapacity {
		m.driftHist = m.driftHist[1:]
	}

	m.history = append(m.history, frame{bodies: dynamo.Bodies(m.ens), t: m.t, drift: drift})
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
	}
}

func (m *Model) drift(e float64) float64 {
	if m.energy0 == 0 {
		return e
	}
	return (e - m.energy0) / math.Abs(m.energy0)
}

// scrub changes the playback position in history.
func (m *Model) scrub(dir int) {
	if m.playHead == -1 {
		if len(m.history) == 0 {
			return
		}
		m.playHead = len(m.history) - 1
		m.running = false
	}
	m.playHead += dir
	if m.playHead < 0 {
		m.playHead = 0
	}
	if m.playHead >= len(m.history) {
		m.playHead = -1
	}
}

// reset restores every body to its initial state.
func (m *Model) reset() {
	for i, b := range m.initial {
		m.ens.SetBody(i, b)
	}
	m.t, m.steps, m.err = 0, 0, nil
	m.trail = m.trail[:0]
	m.driftHist = m.driftHist[:0]
	m.history = m.history[:0]
	m.playHead = -1
	m.running = true
}

// current returns the bodies and time on screen, which differ from the live
// ensemble while replaying.
func (m *Model) current() ([]dynamo.Body, float64) {
	if m.playHead >= 0 && m.playHead < len(m.history) {
		f := m.history[m.playHead]
		return f.bodies, f.t
	}
	return dynamo.Bodies(m.ens), m.t
}

func (m *Model) draw() {
	m.canvas.Clear()
	sw, sh := m.width*2, m.height*4

	if m.showBox {
		Render3D(m.canvas, BoxWireframe(m.camera.Center, m.camera.Extent), m.camera)
	} else {
		Render3D(m.canvas, AxesWireframe(m.camera.Center, m.camera.Extent/4), m.camera)
	}

	bodies, _ := m.current()
	for _, b := range bodies {
		x, y, _, ok := m.camera.Project(b.Position, sw, sh)
		if !ok {
			continue
		}
		m.canvas.Disc(x, y, m.markerRadius(b.Mass))
		if m.showTrail && m.playHead == -1 {
			m.trail = append(m.trail, point{x, y})
		}
	}

	if len(m.trail) > trailCapacity {
		m.trail = m.trail[len(m.trail)-trailCapacity:]
	}
	for _, p := range m.trail {
		m.canvas.Set(p.x, p.y)
	}
}

// markerRadius scales the marker with the cube root of the mass ratio.
func (m *Model) markerRadius(mass float64) int {
	if m.maxMass <= 0 || mass <= 0 {
		return 0
	}
	return int(math.Round(2 * math.Cbrt(mass/m.maxMass)))
}

// View renders the TUI interface.
func (m Model) View() string {
	st := themed(CurrentTheme)
	bodies, t := m.current()

	canvasView := st.canvas.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(st.header.Render(strings.ToUpper(m.name)) + "\n")

	status := st.running.Render("RUNNING")
	switch {
	case m.err != nil:
		status = st.failed.Render("HALTED: " + m.err.Error())
	case m.playHead != -1:
		back := m.history[m.playHead].t - m.history[len(m.history)-1].t
		status = st.paused.Render(fmt.Sprintf("REPLAY (%.2fs)", back))
	case !m.running:
		status = st.paused.Render("PAUSED")
	}
	if m.recording {
		status += " " + st.failed.Render("REC")
	}
	s.WriteString(status + "\n\n")

	if len(m.driftHist) > 1 {
		chart := asciigraph.Plot(m.driftHist, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy drift"))
		s.WriteString(st.graph.Render(chart) + "\n\n")
	}

	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.3fs", t))
	row("Steps", fmt.Sprintf("%d (x%d/frame)", m.steps, m.stepsPerTick))
	row("Bodies", fmt.Sprintf("%d", len(bodies)))
	row("dt", fmt.Sprintf("%g", m.dt))
	if len(m.driftHist) > 0 {
		row("Drift", fmt.Sprintf("%.3e", m.driftHist[len(m.driftHist)-1]))
	}
	row("|P-P0|", fmt.Sprintf("%.3e", physics.Momentum(m.ens).Sub(m.momentum0).Norm()))
	if p, ok := m.ens.(interface{ Lanes() int }); ok {
		row("Lanes", fmt.Sprintf("%d", p.Lanes()))
	}
	row("Theme", CurrentTheme.Name)

	if len(m.driftHist) > 0 {
		s.WriteString("\n" + st.Sparkline(m.driftHist, 30) + "\n")
	}

	s.WriteString(st.help.Render("\n" + separator(21) + "\nSP:Pause R:Reset Q:Quit\n,/.:Speed G:Record ?:Help\n[ ]:Time-Travel xyz:Rotate"))
	statsView := st.stats.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		return helpText + "\n\n" + mainView
	}
	return mainView
}

const helpText = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  R        - Reset to initial bodies  ║
║  Q        - Quit                     ║
║  . / ,    - Double/halve steps/frame ║
║  x y z    - Rotate view (shift: back)║
║  + / -    - Zoom in/out              ║
║  C        - Toggle trails            ║
║  B        - Toggle bounding box      ║
║  [ / ]    - Rewind/forward history   ║
║  G        - Toggle GIF recording     ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝`

func (m *Model) captureFrame() {
	charW, charH := 8, 16
	imgW, imgH := m.width*charW, m.height*charH
	img := image.NewPaletted(image.Rect(0, 0, imgW, imgH), color.Palette{color.Black, color.White})
	dotW, dotH := charW/2, charH/4
	for y := 0; y < m.height*4; y++ {
		for x := 0; x < m.width*2; x++ {
			if !m.canvas.IsSet(x, y) {
				continue
			}
			for py := 0; py < dotH; py++ {
				for px := 0; px < dotW; px++ {
					img.SetColorIndex(x*dotW+px, y*dotH+py, 1)
				}
			}
		}
	}
	m.frames = append(m.frames, img)
}

func (m *Model) saveGIF() {
	if len(m.frames) == 0 {
		return
	}
	anim := gif.GIF{LoopCount: 0}
	for _, f := range m.frames {
		anim.Image = append(anim.Image, f)
		anim.Delay = append(anim.Delay, int(m.tickPeriod/(10*time.Millisecond)))
	}
	f, err := os.Create(gifPath)
	if err != nil {
		return
	}
	defer f.Close()
	gif.EncodeAll(f, &anim)
}

// Run shows the live view until the user quits.
func Run(ens dynamo.Ensemble, dt float64, name string, stepsPerTick int) error {
	_, err := tea.NewProgram(NewModel(ens, dt, name).WithStepsPerTick(stepsPerTick), tea.WithAltScreen()).Run()
	return err
}
