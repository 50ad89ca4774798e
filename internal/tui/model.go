// Package tui is the interactive editor: a bubbletea program hosting one
// text view, its completion popup and a status line.
package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/v2/help"
	"github.com/charmbracelet/bubbles/v2/key"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/billie-coop/locomplete/internal/completion/broker"
	"github.com/billie-coop/locomplete/internal/completion/commands"
	"github.com/billie-coop/locomplete/internal/events"
	"github.com/billie-coop/locomplete/internal/text"
	"github.com/billie-coop/locomplete/internal/tui/components/editor"
	"github.com/billie-coop/locomplete/internal/tui/components/popup"
	"github.com/billie-coop/locomplete/internal/tui/components/status"
	"github.com/billie-coop/locomplete/internal/tui/styles"
)

// Options wires the editor.
type Options struct {
	Title      string
	View       *text.View
	Broker     *broker.Broker
	Router     *commands.Router
	Popup      *popup.Popup
	Dispatcher *Dispatcher
	Events     *events.Broker
	Keys       editor.KeyMap
	Logger     *zap.Logger
}

// Model is the root bubbletea model.
type Model struct {
	title      string
	view       *text.View
	broker     *broker.Broker
	router     *commands.Router
	dispatcher *Dispatcher
	events     *events.Broker
	keys       editor.KeyMap
	logger     *zap.Logger

	editor *editor.Editor
	popup  *popup.Popup
	status *status.Component
	help   help.Model

	eventSub <-chan events.Event
	items    int

	width  int
	height int
}

// New creates the root model. It subscribes to opts.Events right away so no
// event published before the program starts is lost.
func New(opts Options) *Model {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Popup == nil {
		opts.Popup = popup.New()
	}
	if opts.Dispatcher == nil {
		opts.Dispatcher = NewDispatcher()
	}
	m := &Model{
		title:      opts.Title,
		view:       opts.View,
		broker:     opts.Broker,
		router:     opts.Router,
		dispatcher: opts.Dispatcher,
		events:     opts.Events,
		keys:       opts.Keys,
		logger:     opts.Logger.Named("tui"),
		popup:      opts.Popup,
		status:     status.New(),
		help:       help.New(),
	}
	m.editor = editor.New(opts.View, opts.Router, opts.Keys, opts.Logger)
	m.editor.SetSpanFunc(m.completionSpan)

	st := styles.CurrentTheme().S()
	m.help.Styles.ShortKey = st.Title
	m.help.Styles.ShortDesc = st.Muted
	m.help.Styles.ShortSeparator = st.Subtle
	m.help.Styles.FullKey = st.Title
	m.help.Styles.FullDesc = st.Muted
	m.help.Styles.FullSeparator = st.Subtle

	if m.events != nil {
		m.eventSub = m.events.Subscribe(
			events.ItemsUpdatedEvent,
			events.ItemCommittedEvent,
			events.DismissedEvent,
			events.SessionFaultEvent,
			events.ConfigReloadedEvent,
		)
	}
	return m
}

// Editor returns the editor component.
func (m *Model) Editor() *editor.Editor { return m.editor }

func (m *Model) Init() tea.Cmd {
	m.refreshSegments()
	return tea.Batch(
		m.editor.Init(),
		m.listenForEvents(),
		m.status.ShowInfo("ctrl+space to complete, f1 for help"),
	)
}

// Update runs with the dispatcher marked as owner, so completion sessions
// accept calls made from here.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	defer m.dispatcher.enter()()

	var cmd tea.Cmd
	switch msg := msg.(type) {
	case drainMsg:
		m.dispatcher.drain()

	case events.Event:
		return m, tea.Batch(m.handleEvent(msg), m.listenForEvents())

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		// title line and status line
		m.editor.SetSize(m.width, max(m.height-2, 3))
		m.status.SetSize(m.width, 1)

	case tea.KeyPressMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.router.Close()
			if m.eventSub != nil {
				m.events.Unsubscribe(m.eventSub)
				m.eventSub = nil
			}
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			m.popup.Dismiss()
		case m.popup.HandleMsg(msg):
		default:
			_, cmd = m.editor.Update(msg)
		}

	case tea.MouseClickMsg:
		m.popup.HandleMsg(msg)

	default:
		_, cmd = m.status.Update(msg)
	}

	m.refreshSegments()
	m.placePopup()
	return m, cmd
}

// listenForEvents creates a command that waits for events
func (m *Model) listenForEvents() tea.Cmd {
	sub := m.eventSub
	if sub == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-sub
		if !ok {
			return nil
		}
		return event
	}
}

func (m *Model) handleEvent(event events.Event) tea.Cmd {
	switch payload := event.Payload.(type) {
	case events.ItemsUpdatedPayload:
		if payload.ViewID == m.view.ID() {
			m.items = len(payload.Items.Items)
		}
	case events.DismissedPayload:
		if payload.ViewID == m.view.ID() {
			m.items = 0
		}
	case events.ItemCommittedPayload:
		if payload.ViewID == m.view.ID() && payload.Item != nil {
			return m.status.ShowSuccess("inserted " + payload.Item.DisplayText())
		}
	case events.FaultPayload:
		m.logger.Warn("completion fault", zap.String("operation", payload.Operation), zap.Error(payload.Err))
		return m.status.ShowError(fmt.Sprintf("%s: %v", payload.Operation, payload.Err))
	case events.ConfigReloadedPayload:
		return m.status.ShowInfo("reloaded " + payload.Path)
	}
	return nil
}

func (m *Model) completionSpan() (text.Span, bool) {
	s := m.broker.GetSession(m.view)
	if s == nil {
		return text.Span{}, false
	}
	return s.ApplicableSpan(), true
}

func (m *Model) refreshSegments() {
	mode := "complete"
	if m.router.SuggestionMode(m.view) {
		mode = "suggest"
	}
	segments := []string{m.view.ContentType(), mode}
	if s := m.broker.GetSession(m.view); s != nil {
		segments = append(segments, fmt.Sprintf("%s (%d)", s.State(), m.items))
	}
	m.status.SetSegments(segments...)
}

func (m *Model) placePopup() {
	if !m.popup.IsOpen() {
		return
	}
	cx, cy := m.editor.CaretCell()
	w, h := lipgloss.Size(m.popup.View())
	// the editor starts below the title line
	x, y := placePopup(cx, cy+1, w, h, m.width, m.height-1)
	m.popup.SetPosition(x, y)
}

func (m *Model) View() tea.View {
	return tea.NewView(m.render())
}

func (m *Model) render() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}
	st := styles.CurrentTheme().S()

	title := styles.RenderThemeGradient(" locomplete ", true) + " " + st.Muted.Render(m.title)
	body := lipgloss.JoinVertical(lipgloss.Left, title, m.editor.View())
	if m.popup.IsOpen() {
		x, y := m.popup.Position()
		body = overlay(body, m.popup.View(), x, y)
	}

	footer := m.status.View()
	if m.help.ShowAll {
		footer = m.help.View(m.keys)
		body = clipLines(body, m.height-lipgloss.Height(footer))
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, footer)
}
