package status

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/billie-coop/locomplete/internal/tui/components/core"
	"github.com/billie-coop/locomplete/internal/tui/styles"
)

// MessageType represents the type of status message
type MessageType int

const (
	Info MessageType = iota
	Warning
	Error
	Success
)

// StatusMessage represents a status bar message
type StatusMessage struct {
	Content   string
	Type      MessageType
	Timestamp time.Time
}

// Component is a one line status bar: segments on the left, a temporary
// message on the right.
type Component struct {
	message  *StatusMessage
	segments []string
	width    int

	clearAfter time.Duration
	now        func() time.Time
}

var (
	_ core.Component = (*Component)(nil)
	_ core.Sizeable  = (*Component)(nil)
)

// New creates a new status bar component
func New() *Component {
	return &Component{
		clearAfter: 4 * time.Second,
		now:        time.Now,
	}
}

// SetMessage shows content until the returned command clears it.
func (c *Component) SetMessage(content string, msgType MessageType) tea.Cmd {
	msg := &StatusMessage{
		Content:   content,
		Type:      msgType,
		Timestamp: c.now(),
	}
	c.message = msg
	return tea.Tick(c.clearAfter, func(time.Time) tea.Msg {
		return clearMessageMsg{timestamp: msg.Timestamp}
	})
}

func (c *Component) ShowInfo(message string) tea.Cmd    { return c.SetMessage(message, Info) }
func (c *Component) ShowWarning(message string) tea.Cmd { return c.SetMessage(message, Warning) }
func (c *Component) ShowError(message string) tea.Cmd   { return c.SetMessage(message, Error) }
func (c *Component) ShowSuccess(message string) tea.Cmd { return c.SetMessage(message, Success) }

// Message returns the message on display, if any.
func (c *Component) Message() *StatusMessage { return c.message }

// SetSegments replaces the left hand segments, e.g. content type and mode.
func (c *Component) SetSegments(segments ...string) {
	c.segments = segments
}

// Segments returns the left hand segments.
func (c *Component) Segments() []string { return c.segments }

func (c *Component) SetSize(width, height int) tea.Cmd {
	c.width = width
	return nil
}

// clearMessageMsg is sent when a status message should be cleared
type clearMessageMsg struct {
	timestamp time.Time
}

func (c *Component) Init() tea.Cmd {
	return nil
}

func (c *Component) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(clearMessageMsg); ok {
		// Only clear if this is for the current message
		if c.message != nil && msg.timestamp.Equal(c.message.Timestamp) {
			c.message = nil
		}
	}
	return c, nil
}

func (c *Component) View() string {
	if c.width == 0 {
		return ""
	}
	st := styles.CurrentTheme().S()
	available := c.width - 2

	left := strings.Join(c.segments, " · ")
	right := c.formatMessage(st)

	rw := ansi.StringWidth(right)
	if rw > available/2 {
		right = ansi.Truncate(right, available/2, "…")
		rw = ansi.StringWidth(right)
	}
	left = ansi.Truncate(left, max(available-rw-1, 0), "…")

	content := left
	if right != "" {
		gap := max(available-ansi.StringWidth(left)-rw, 1)
		content += strings.Repeat(" ", gap) + right
	}
	return st.Status.Width(c.width).Render(content)
}

func (c *Component) formatMessage(st *styles.Styles) string {
	if c.message == nil {
		return ""
	}
	switch c.message.Type {
	case Success:
		return st.Success.Render(styles.CheckIcon + " " + c.message.Content)
	case Warning:
		return st.Warning.Render(styles.WarningIcon + " " + c.message.Content)
	case Error:
		return st.Error.Render(styles.ErrorIcon + " " + c.message.Content)
	default:
		return st.Info.Render(c.message.Content)
	}
}
