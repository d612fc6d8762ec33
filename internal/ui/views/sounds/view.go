package sounds

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	mixdto "soundblanket/internal/modules/mixer/dto"
	"soundblanket/internal/ui/theme"
)

// VolumeStep is the change applied by one volume key press.
const VolumeStep = 0.05

const barCells = 20

// ─── port ────────────────────────────────────────────────────────────────────

type SoundsPort interface {
	Channels(ctx context.Context) ([]mixdto.ChannelOutput, error)
	Toggle(ctx context.Context, channelID string) (mixdto.ChannelOutput, error)
	SetVolume(ctx context.Context, channelID string, volume float64) (mixdto.ChannelOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type ChannelsLoadedMsg struct {
	Channels []mixdto.ChannelOutput
	Err      error
}

// ChannelUpdatedMsg carries a fresh channel state, either as the reply to a
// key press or pushed from a mixer subscription.
type ChannelUpdatedMsg struct {
	Channel mixdto.ChannelOutput
	Err     error
}

// ─── list item ───────────────────────────────────────────────────────────────

type channelItem struct {
	channel mixdto.ChannelOutput
}

func (i channelItem) Title() string {
	if i.channel.Playing {
		return "♪ " + i.channel.ID
	}
	return "  " + i.channel.ID
}
func (i channelItem) Description() string {
	return fmt.Sprintf("%s %3.0f%%  %s", volumeBar(i.channel.Volume, 10), i.channel.Volume*100, i.channel.Status)
}
func (i channelItem) FilterValue() string { return i.channel.ID }

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port    SoundsPort
	list    list.Model
	detail  viewport.Model
	spinner spinner.Model
	loading bool
	width   int
	height  int
}

func New(port SoundsPort) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Sounds"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().
		Background(theme.Mantle).
		Foreground(theme.Text).
		Padding(1)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{
		port:    port,
		list:    l,
		detail:  vp,
		spinner: sp,
		loading: true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadChannelsCmd(), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case ChannelsLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.list.Title = "Sounds: " + msg.Err.Error()
			return m, nil
		}
		items := make([]list.Item, len(msg.Channels))
		for i, c := range msg.Channels {
			items[i] = channelItem{channel: c}
		}
		cmds = append(cmds, m.list.SetItems(items))
		m.detail.SetContent(m.renderDetail())
		return m, tea.Batch(cmds...)

	case ChannelUpdatedMsg:
		if msg.Err == nil {
			cmds = append(cmds, m.replace(msg.Channel))
			m.detail.SetContent(m.renderDetail())
		}
		return m, tea.Batch(cmds...)

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.loading || m.Filtering() {
			break
		}
		if c, ok := m.Selected(); ok {
			switch msg.String() {
			case "enter", " ":
				return m, m.toggleCmd(c.ID)
			case "+", "=", "l":
				return m, m.volumeCmd(c.ID, c.Volume+VolumeStep)
			case "-", "_", "h":
				return m, m.volumeCmd(c.ID, c.Volume-VolumeStep)
			}
		}
	}

	if !m.loading {
		var lCmd tea.Cmd
		prevIdx := m.list.Index()
		m.list, lCmd = m.list.Update(msg)
		cmds = append(cmds, lCmd)
		if m.list.Index() != prevIdx {
			m.detail.SetContent(m.renderDetail())
		}
	}

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading sounds…")
	}

	listW := m.width * 5 / 10
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

// Selected returns the highlighted channel, if any.
func (m Model) Selected() (mixdto.ChannelOutput, bool) {
	if item, ok := m.list.SelectedItem().(channelItem); ok {
		return item.channel, true
	}
	return mixdto.ChannelOutput{}, false
}

// Playing counts the channels currently audible.
func (m Model) Playing() int {
	n := 0
	for _, it := range m.list.Items() {
		if item, ok := it.(channelItem); ok && item.channel.Playing {
			n++
		}
	}
	return n
}

// Filtering reports whether the list's search filter is currently active.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// Reload fetches every channel again, used after a mix was applied.
func (m Model) Reload() tea.Cmd {
	return m.loadChannelsCmd()
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m *Model) resize() {
	listW := m.width * 5 / 10
	detailW := m.width - listW
	m.list.SetSize(listW, m.height)
	m.detail.Width = detailW - 4
	m.detail.Height = m.height - 4
}

func (m *Model) replace(c mixdto.ChannelOutput) tea.Cmd {
	for i, it := range m.list.Items() {
		if item, ok := it.(channelItem); ok && item.channel.ID == c.ID {
			return m.list.SetItem(i, channelItem{channel: c})
		}
	}
	return nil
}

func (m Model) renderDetail() string {
	c, ok := m.Selected()
	if !ok {
		return theme.Muted.Render("No sounds found in the library")
	}
	state := "stopped"
	if c.Playing {
		state = theme.Hot.Render("playing")
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(c.ID) + "\n\n")
	sb.WriteString(theme.Muted.Render("state:  ") + state + "\n")
	sb.WriteString(theme.Muted.Render("status: ") + theme.Status(c.Status) + "\n")
	bar := volumeBar(c.Volume, barCells)
	filled := strings.Count(bar, "█")
	meter := theme.Meter.Render(strings.Repeat("█", filled)) + theme.Track.Render(strings.Repeat("░", barCells-filled))
	sb.WriteString(fmt.Sprintf("%s%s %.0f%%\n", theme.Muted.Render("volume: "), meter, c.Volume*100))
	sb.WriteString("\n" + theme.Muted.Render("enter: play/stop  +/-: volume"))
	return sb.String()
}

func volumeBar(v float64, cells int) string {
	filled := int(v*float64(cells) + 0.5)
	if filled < 0 {
		filled = 0
	}
	if filled > cells {
		filled = cells
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", cells-filled)
}

func (m Model) loadChannelsCmd() tea.Cmd {
	return func() tea.Msg {
		channels, err := m.port.Channels(context.Background())
		return ChannelsLoadedMsg{Channels: channels, Err: err}
	}
}

func (m Model) toggleCmd(id string) tea.Cmd {
	return func() tea.Msg {
		c, err := m.port.Toggle(context.Background(), id)
		return ChannelUpdatedMsg{Channel: c, Err: err}
	}
}

func (m Model) volumeCmd(id string, v float64) tea.Cmd {
	return func() tea.Msg {
		c, err := m.port.SetVolume(context.Background(), id, math.Round(v*100)/100)
		return ChannelUpdatedMsg{Channel: c, Err: err}
	}
}
