package tui

import (
	"sort"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/zonetile/internal/config"
	"github.com/1broseidon/zonetile/internal/ipc"
	"github.com/1broseidon/zonetile/internal/zone"
)

// model is the root bubbletea model for the layout browser.
type model struct {
	configPath string
	client     *ipc.Client

	// Daemon state
	connected bool
	layouts   []zone.Layout
	selected  int
	lastError string

	// Generator overlay
	form *GeneratorForm

	// Terminal dimensions
	width  int
	height int
}

func newModel(configPath string) model {
	m := model{
		configPath: configPath,
		client:     ipc.NewClient(),
	}
	m.refresh()
	return m
}

// refresh reloads the layout list, preferring the running daemon and
// falling back to the config file when it is not reachable.
func (m *model) refresh() {
	prev := m.selectedID()

	layouts, err := m.client.ListLayouts()
	if err == nil {
		m.connected = true
	} else {
		m.connected = false
		var cfg *config.Config
		if m.configPath != "" {
			cfg, err = config.LoadFromPath(m.configPath)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			m.lastError = err.Error()
			return
		}
		layouts = cfg.AllLayouts()
	}

	sort.Slice(layouts, func(i, j int) bool { return layouts[i].ID < layouts[j].ID })
	m.layouts = layouts

	m.selected = 0
	for i, l := range layouts {
		if l.ID == prev {
			m.selected = i
			break
		}
	}
}

func (m *model) selectedID() string {
	if m.selected < 0 || m.selected >= len(m.layouts) {
		return ""
	}
	return m.layouts[m.selected].ID
}

func (m *model) selectedLayout() *zone.Layout {
	if m.selected < 0 || m.selected >= len(m.layouts) {
		return nil
	}
	return &m.layouts[m.selected]
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Generator form captures all input when active
	if m.form != nil {
		switch msg := msg.(type) {
		case tea.KeyMsg:
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			if msg.String() == "esc" {
				m.form = nil
				return m, nil
			}
		case tea.WindowSizeMsg:
			m.width = msg.Width
			m.height = msg.Height
		}

		form, cmd := m.form.Update(msg)
		m.form = form
		if m.form != nil && m.form.Done() {
			payload, err := m.form.Payload()
			m.form = nil
			if err != nil {
				m.lastError = err.Error()
				return m, nil
			}
			if _, err := m.client.GenerateLayout(payload); err != nil {
				m.lastError = err.Error()
			} else {
				m.lastError = ""
				m.refresh()
			}
		}
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
		case "down", "j":
			if m.selected < len(m.layouts)-1 {
				m.selected++
			}
		case "r":
			m.lastError = ""
			m.refresh()
		case "g":
			if !m.connected {
				m.lastError = "generator needs a running daemon"
				return m, nil
			}
			f := NewGeneratorForm()
			m.form = f
			return m, f.Init()
		case "d":
			if !m.connected {
				m.lastError = "delete needs a running daemon"
				return m, nil
			}
			if id := m.selectedID(); id != "" {
				if err := m.client.DeleteLayout(id); err != nil {
					m.lastError = err.Error()
				} else {
					m.lastError = ""
					m.refresh()
				}
			}
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}
	return m, nil
}

var (
	selectedItemStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("62")).
				Padding(0, 1)

	itemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")).
			Padding(0, 1)

	listStyle = lipgloss.NewStyle().
			MarginRight(2)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")).
			Padding(0, 1)
)

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 {
		return "loading..."
	}

	if m.form != nil {
		return lipgloss.JoinVertical(lipgloss.Left,
			renderStatusBar(m.connected, len(m.layouts), m.width),
			m.form.View(),
		)
	}

	contentH := m.height - 3
	if contentH < 3 {
		contentH = 3
	}

	var items []string
	for i, l := range m.layouts {
		label := l.ID
		if l.Name != "" && l.Name != l.ID {
			label += "  (" + l.Name + ")"
		}
		if i == m.selected {
			items = append(items, selectedItemStyle.Render(label))
		} else {
			items = append(items, itemStyle.Render(label))
		}
	}
	list := listStyle.Height(contentH).Render(lipgloss.JoinVertical(lipgloss.Left, items...))

	previewW := m.width - lipgloss.Width(list) - 2
	if previewW < 12 {
		previewW = 12
	}
	previewH := contentH
	if previewH > previewW/2 {
		previewH = previewW / 2
	}
	preview := renderZonePreview(m.selectedLayout(), previewW, previewH)

	content := lipgloss.JoinHorizontal(lipgloss.Top, list,
		lipgloss.JoinVertical(lipgloss.Left, preview...))

	parts := []string{
		renderStatusBar(m.connected, len(m.layouts), m.width),
		content,
	}
	if m.lastError != "" {
		parts = append(parts, errorStyle.Render("error: "+m.lastError))
	}
	parts = append(parts, renderHelpBar(m.width))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderStatusBar(connected bool, layoutCount int, width int) string {
	var status string
	if connected {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("●")
		status = dot + " daemon connected"
	} else {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("●")
		status = dot + " daemon not running (showing config layouts)"
	}
	style := lipgloss.NewStyle().
		Width(width).
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("250")).
		Padding(0, 1)
	return style.Render(status)
}

func renderHelpBar(width int) string {
	help := "up/down: select  g: generate  d: delete  r: refresh  q: quit"
	style := lipgloss.NewStyle().
		Width(width).
		Foreground(lipgloss.Color("241")).
		Padding(0, 1)
	return style.Render(help)
}
