package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	mixdto "soundblanket/internal/modules/mixer/dto"
	apperrors "soundblanket/internal/platform/errors"
	"soundblanket/internal/ui/components"
	"soundblanket/internal/ui/theme"
	mixesview "soundblanket/internal/ui/views/mixes"
	soundsview "soundblanket/internal/ui/views/sounds"
)

// ─── ports ───────────────────────────────────────────────────────────────────
// Each port is the minimal interface that this orchestration layer requires.
// Sub-view ports are defined in their own packages and narrowed further.

type mixerPort interface {
	Channels(ctx context.Context) ([]mixdto.ChannelOutput, error)
	Toggle(ctx context.Context, channelID string) (mixdto.ChannelOutput, error)
	SetVolume(ctx context.Context, channelID string, volume float64) (mixdto.ChannelOutput, error)
	StopAll(ctx context.Context) error
	Mixes(ctx context.Context) ([]string, error)
	Mix(ctx context.Context, name string) (mixdto.MixOutput, error)
	ActiveMix(ctx context.Context) (string, error)
	SaveMix(ctx context.Context, name string) (mixdto.MixOutput, error)
	LoadMix(ctx context.Context, name string) (mixdto.MixOutput, error)
	DeleteMix(ctx context.Context, name string) error
}

type lifecyclePort interface {
	Suspend(ctx context.Context)
	Resume(ctx context.Context)
	Terminate(ctx context.Context)
}

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabSounds tabID = iota
	tabMixes
	tabCount
)

var tabLabels = [tabCount]string{
	"Sounds", "Mixes",
}

// ─── async messages ───────────────────────────────────────────────────────────

type activeLoadedMsg struct {
	name string
	err  error
}

type mixSavedMsg struct {
	mix mixdto.MixOutput
	err error
}

type stoppedAllMsg struct{ err error }

type resumedMsg struct{}

// ChannelUpdate wraps a pushed channel change so it can be delivered with
// tea.Program.Send.
func ChannelUpdate(c mixdto.ChannelOutput) tea.Msg {
	return soundsview.ChannelUpdatedMsg{Channel: c}
}

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Tab     key.Binding
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
	Toggle  key.Binding
	Volume  key.Binding
	Save    key.Binding
	StopAll key.Binding
	Load    key.Binding
	Delete  key.Binding
	Suspend key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		Toggle:  key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "play/stop sound")),
		Volume:  key.NewBinding(key.WithKeys("+", "-"), key.WithHelp("+/-", "volume")),
		Save:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save mix")),
		StopAll: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "stop all")),
		Load:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "load mix")),
		Delete:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d d", "delete mix")),
		Suspend: key.NewBinding(key.WithKeys("ctrl+z"), key.WithHelp("ctrl+z", "suspend")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Help, k.Save, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.Toggle, k.Volume, k.StopAll},
		{k.Save, k.Load, k.Delete},
		{k.Help, k.Palette, k.Suspend, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It owns tab routing, the active mix
// marker, the global help overlay, and the command palette. All business
// logic is delegated to port interfaces; all rendering is delegated to
// sub-views.
type Model struct {
	mixer     mixerPort
	lifecycle lifecyclePort

	soundsView soundsview.Model
	mixesView  mixesview.Model

	activeTab tabID
	keys      keyMap
	help      help.Model
	showHelp  bool
	palette   components.Palette
	activeMix string
	status    string
	width     int
	height    int
}

// ─── constructor ─────────────────────────────────────────────────────────────

func NewModel(mixer mixerPort, lifecycle lifecyclePort) Model {
	return Model{
		mixer:      mixer,
		lifecycle:  lifecycle,
		soundsView: soundsview.New(mixer),
		mixesView:  mixesview.New(mixer),
		activeTab:  tabSounds,
		keys:       defaultKeys(),
		help:       help.New(),
		palette:    components.NewPalette(),
		status:     "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.soundsView.Init(),
		m.mixesView.Init(),
		m.loadActiveCmd(),
	)
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// Pushed channel changes must reach the sounds view even while the
	// palette is open.
	if msg, ok := msg.(soundsview.ChannelUpdatedMsg); ok {
		if msg.Err != nil {
			m.status = "could not change sound: " + msg.Err.Error()
		}
		var cmd tea.Cmd
		m.soundsView, cmd = m.soundsView.Update(msg)
		return m, cmd
	}

	// The palette intercepts all input while open.
	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()
		return m, nil

	case activeLoadedMsg:
		if msg.err != nil {
			m.status = "active mix check: " + msg.err.Error()
			return m, nil
		}
		m.activeMix = msg.name
		cmd := m.mixesView.SetActive(msg.name)
		return m, cmd

	case mixSavedMsg:
		if msg.err != nil {
			m.status = "could not save: " + msg.err.Error()
			return m, nil
		}
		m.activeMix = msg.mix.Name
		m.status = fmt.Sprintf("saved %s (%d sounds)", msg.mix.Name, len(msg.mix.Sounds))
		cmd := m.mixesView.SetActive(msg.mix.Name)
		return m, tea.Batch(m.mixesView.Reload(), cmd)

	case mixesview.MixAppliedMsg:
		if msg.Err != nil {
			m.status = "could not load: " + reason(msg.Err)
			return m, nil
		}
		m.activeMix = msg.Mix.Name
		m.status = "loaded " + msg.Mix.Name
		cmd := m.mixesView.SetActive(msg.Mix.Name)
		return m, tea.Batch(cmd, m.soundsView.Reload())

	case mixesview.MixDeletedMsg:
		if msg.Err != nil {
			m.status = "could not delete: " + reason(msg.Err)
			return m, nil
		}
		if msg.Name == m.activeMix {
			m.activeMix = ""
		}
		m.status = "deleted " + msg.Name
		var cmd tea.Cmd
		m.mixesView, cmd = m.mixesView.Update(msg)
		return m, cmd

	case mixesview.MixesLoadedMsg, mixesview.DetailLoadedMsg:
		var cmd tea.Cmd
		m.mixesView, cmd = m.mixesView.Update(msg)
		return m, cmd

	case soundsview.ChannelsLoadedMsg:
		var cmd tea.Cmd
		m.soundsView, cmd = m.soundsView.Update(msg)
		return m, cmd

	case stoppedAllMsg:
		if msg.err != nil {
			m.status = "could not stop: " + msg.err.Error()
			return m, nil
		}
		m.status = "all sounds stopped"
		return m, m.soundsView.Reload()

	case resumedMsg:
		m.status = "resumed"
		return m, m.soundsView.Reload()

	case tea.ResumeMsg:
		return m, m.resumeCmd()

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"
		return m, nil

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}

		// Yield to sub-view when its search filter is active.
		if m.subViewFiltering() {
			break
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, m.quitCmd()
		case "ctrl+z":
			return m, m.suspendCmd()
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
			return m, nil
		case "?":
			m.showHelp = !m.showHelp
			return m, nil
		case ":":
			cmds = append(cmds, m.palette.Open())
			return m, tea.Batch(cmds...)
		case "s":
			cmds = append(cmds, m.palette.OpenWith("mix:save "+m.activeMix))
			return m, tea.Batch(cmds...)
		case "x":
			return m, m.stopAllCmd()
		}
	}

	// Propagate the message to the active tab's sub-view.
	var tabCmd tea.Cmd
	switch m.activeTab {
	case tabSounds:
		m.soundsView, tabCmd = m.soundsView.Update(msg)
	case tabMixes:
		m.mixesView, tabCmd = m.mixesView.Update(msg)
	}
	cmds = append(cmds, tabCmd)

	return m, tea.Batch(cmds...)
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	tabBarH := lipgloss.Height(tabBar)
	statusBarH := lipgloss.Height(statusBar)

	contentH := m.height - tabBarH - statusBarH
	if contentH < 1 {
		contentH = 1
	}

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.palette.View())
	default:
		content = m.activeView()
	}

	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) activeView() string {
	switch m.activeTab {
	case tabSounds:
		return m.soundsView.View()
	case tabMixes:
		return m.mixesView.View()
	}
	return ""
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		label := tabLabels[i]
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + label + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + label + " ")
		}
	}
	sep := theme.Muted.Render(" │ ")
	bar := "soundblanket  " + strings.Join(parts, sep)
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	if m.activeMix != "" {
		left = theme.Hot.Render("● "+m.activeMix) + "  " + left
	}
	if n := m.soundsView.Playing(); n > 0 {
		left = theme.Muted.Render(fmt.Sprintf("♪%d", n)) + "  " + left
	}
	right := theme.Muted.Render("?:help  tab:switch  s:save  x:stop  q:quit")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ────────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	if strings.TrimSpace(input) == "" {
		return m, nil
	}
	parts := strings.Fields(input)
	arg := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(input), parts[0]))

	switch parts[0] {
	case "mix:save":
		if arg == "" {
			m.status = "usage: mix:save <name>"
			return m, nil
		}
		return m, m.saveCmd(arg)

	case "mix:load":
		if arg == "" {
			m.status = "usage: mix:load <name>"
			return m, nil
		}
		return m, m.loadCmd(arg)

	case "mix:delete":
		if arg == "" {
			m.status = "usage: mix:delete <name>"
			return m, nil
		}
		return m, m.deleteCmd(arg)

	case "sound:stop-all":
		return m, m.stopAllCmd()

	default:
		m.status = "unknown command: " + parts[0]
	}
	return m, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

// subViewFiltering reports whether the active tab's list filter is open,
// in which case global key bindings must yield to allow free typing.
func (m Model) subViewFiltering() bool {
	switch m.activeTab {
	case tabSounds:
		return m.soundsView.Filtering()
	case tabMixes:
		return m.mixesView.Filtering()
	}
	return false
}

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	m.soundsView, _ = m.soundsView.Update(sz)
	m.mixesView, _ = m.mixesView.Update(sz)
}

func reason(err error) string {
	if errors.Is(err, apperrors.ErrNotFound) {
		return "no such mix"
	}
	return err.Error()
}

// ─── async commands ───────────────────────────────────────────────────────────

func (m Model) loadActiveCmd() tea.Cmd {
	return func() tea.Msg {
		name, err := m.mixer.ActiveMix(context.Background())
		return activeLoadedMsg{name: name, err: err}
	}
}

func (m Model) saveCmd(name string) tea.Cmd {
	return func() tea.Msg {
		mix, err := m.mixer.SaveMix(context.Background(), name)
		return mixSavedMsg{mix: mix, err: err}
	}
}

func (m Model) loadCmd(name string) tea.Cmd {
	return func() tea.Msg {
		mix, err := m.mixer.LoadMix(context.Background(), name)
		return mixesview.MixAppliedMsg{Name: name, Mix: mix, Err: err}
	}
}

func (m Model) deleteCmd(name string) tea.Cmd {
	return func() tea.Msg {
		err := m.mixer.DeleteMix(context.Background(), name)
		return mixesview.MixDeletedMsg{Name: name, Err: err}
	}
}

func (m Model) stopAllCmd() tea.Cmd {
	return func() tea.Msg {
		return stoppedAllMsg{err: m.mixer.StopAll(context.Background())}
	}
}

// suspendCmd auto-saves before handing the terminal back to the shell.
func (m Model) suspendCmd() tea.Cmd {
	return func() tea.Msg {
		m.lifecycle.Suspend(context.Background())
		return tea.Suspend()
	}
}

func (m Model) resumeCmd() tea.Cmd {
	return func() tea.Msg {
		m.lifecycle.Resume(context.Background())
		return resumedMsg{}
	}
}

func (m Model) quitCmd() tea.Cmd {
	return func() tea.Msg {
		m.lifecycle.Terminate(context.Background())
		return tea.Quit()
	}
}
