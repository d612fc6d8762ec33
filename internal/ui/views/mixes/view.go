package mixes

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	mixdto "soundblanket/internal/modules/mixer/dto"
	"soundblanket/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type MixesPort interface {
	Mixes(ctx context.Context) ([]string, error)
	Mix(ctx context.Context, name string) (mixdto.MixOutput, error)
	LoadMix(ctx context.Context, name string) (mixdto.MixOutput, error)
	DeleteMix(ctx context.Context, name string) error
}

// ─── messages ────────────────────────────────────────────────────────────────

type MixesLoadedMsg struct {
	Names []string
	Err   error
}

type DetailLoadedMsg struct {
	Mix mixdto.MixOutput
	Err error
}

// MixAppliedMsg reports the outcome of loading a mix onto the channels.
type MixAppliedMsg struct {
	Name string
	Mix  mixdto.MixOutput
	Err  error
}

type MixDeletedMsg struct {
	Name string
	Err  error
}

// ─── list item ───────────────────────────────────────────────────────────────

type mixItem struct {
	name   string
	active bool
}

func (i mixItem) Title() string {
	if i.active {
		return "● " + i.name
	}
	return "  " + i.name
}
func (i mixItem) Description() string {
	if i.active {
		return "active"
	}
	return "saved mix"
}
func (i mixItem) FilterValue() string { return i.name }

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port    MixesPort
	list    list.Model
	detail  viewport.Model
	mix     mixdto.MixOutput
	active  string
	pending string
	width   int
	height  int
}

func New(port MixesPort) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Green).BorderForeground(theme.Green)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Green)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Mixes"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().
		Background(theme.Mantle).
		Foreground(theme.Text).
		Padding(1)

	return Model{
		port:   port,
		list:   l,
		detail: vp,
	}
}

func (m Model) Init() tea.Cmd {
	return m.loadMixesCmd()
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case MixesLoadedMsg:
		if msg.Err != nil {
			m.list.Title = "Mixes: " + msg.Err.Error()
			return m, nil
		}
		m.list.Title = "Mixes"
		items := make([]list.Item, len(msg.Names))
		for i, name := range msg.Names {
			items[i] = mixItem{name: name, active: name == m.active}
		}
		cmds = append(cmds, m.list.SetItems(items))
		if name, ok := m.SelectedName(); ok {
			cmds = append(cmds, m.loadDetailCmd(name))
		} else {
			m.mix = mixdto.MixOutput{}
			m.detail.SetContent(m.renderDetail())
		}
		return m, tea.Batch(cmds...)

	case DetailLoadedMsg:
		if msg.Err == nil {
			m.mix = msg.Mix
			m.detail.SetContent(m.renderDetail())
		}
		return m, nil

	case MixDeletedMsg:
		if msg.Err == nil {
			if msg.Name == m.active {
				m.active = ""
			}
			return m, m.loadMixesCmd()
		}
		return m, nil

	case tea.KeyMsg:
		if m.Filtering() {
			break
		}
		name, ok := m.SelectedName()
		switch msg.String() {
		case "enter":
			if ok {
				m.pending = ""
				return m, m.applyCmd(name)
			}
		case "d":
			if !ok {
				break
			}
			if m.pending == name {
				m.pending = ""
				return m, m.deleteCmd(name)
			}
			m.pending = name
			m.detail.SetContent(m.renderDetail())
			return m, nil
		default:
			if m.pending != "" {
				m.pending = ""
				m.detail.SetContent(m.renderDetail())
			}
		}
	}

	var lCmd tea.Cmd
	prevIdx := m.list.Index()
	m.list, lCmd = m.list.Update(msg)
	cmds = append(cmds, lCmd)
	if m.list.Index() != prevIdx {
		if name, ok := m.SelectedName(); ok {
			cmds = append(cmds, m.loadDetailCmd(name))
		}
	}

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	listW := m.width * 4 / 10
	detailW := m.width - listW

	listPane := lipgloss.NewStyle().
		Width(listW).
		Height(m.height).
		Render(m.list.View())

	detailPane := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Surface1).
		Background(theme.Mantle).
		Width(detailW - 2).
		Height(m.height - 2).
		Render(m.detail.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

// SelectedName returns the highlighted mix, if any.
func (m Model) SelectedName() (string, bool) {
	if item, ok := m.list.SelectedItem().(mixItem); ok {
		return item.name, true
	}
	return "", false
}

// SetActive marks name as the active mix; an empty name clears the marker.
func (m *Model) SetActive(name string) tea.Cmd {
	m.active = name
	var cmds []tea.Cmd
	for i, it := range m.list.Items() {
		if item, ok := it.(mixItem); ok {
			cmds = append(cmds, m.list.SetItem(i, mixItem{name: item.name, active: item.name == name}))
		}
	}
	m.detail.SetContent(m.renderDetail())
	return tea.Batch(cmds...)
}

// Filtering reports whether the list's search filter is currently active.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// Reload fetches the stored names again, used after a save.
func (m Model) Reload() tea.Cmd {
	return m.loadMixesCmd()
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m *Model) resize() {
	listW := m.width * 4 / 10
	detailW := m.width - listW
	m.list.SetSize(listW, m.height)
	m.detail.Width = detailW - 4
	m.detail.Height = m.height - 4
}

func (m Model) renderDetail() string {
	mix := m.mix
	if mix.Name == "" {
		return theme.Muted.Render("No saved mixes yet. Press s to save the current one.")
	}
	var sb strings.Builder
	title := mix.Name
	if mix.Name == m.active {
		title += "  " + theme.Hot.Render("active")
	}
	sb.WriteString(theme.Title.Render(title) + "\n\n")
	if !mix.SavedAt.IsZero() {
		sb.WriteString(theme.Muted.Render("saved: ") + mix.SavedAt.Local().Format("2006-01-02 15:04") + "\n\n")
	}
	for _, s := range mix.Sounds {
		mark := "  "
		if s.Playing {
			mark = "♪ "
		}
		vol := theme.Muted.Render("  -")
		if s.HasVolume {
			vol = fmt.Sprintf("%3.0f%%", s.Volume*100)
		}
		sb.WriteString(fmt.Sprintf("%s%-20s %s\n", mark, s.Name, vol))
	}
	if m.pending == mix.Name {
		sb.WriteString("\n" + theme.Hot.Render("press d again to delete "+mix.Name))
	} else {
		sb.WriteString("\n" + theme.Muted.Render("enter: load  d: delete"))
	}
	return sb.String()
}

func (m Model) loadMixesCmd() tea.Cmd {
	return func() tea.Msg {
		names, err := m.port.Mixes(context.Background())
		return MixesLoadedMsg{Names: names, Err: err}
	}
}

func (m Model) loadDetailCmd(name string) tea.Cmd {
	return func() tea.Msg {
		mix, err := m.port.Mix(context.Background(), name)
		return DetailLoadedMsg{Mix: mix, Err: err}
	}
}

func (m Model) applyCmd(name string) tea.Cmd {
	return func() tea.Msg {
		mix, err := m.port.LoadMix(context.Background(), name)
		return MixAppliedMsg{Name: name, Mix: mix, Err: err}
	}
}

func (m Model) deleteCmd(name string) tea.Cmd {
	return func() tea.Msg {
		err := m.port.DeleteMix(context.Background(), name)
		return MixDeletedMsg{Name: name, Err: err}
	}
}
