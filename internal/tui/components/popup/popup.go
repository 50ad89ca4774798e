// Package popup draws the completion list under the caret. It implements
// completion.Presenter; sessions drive it from the program's Update loop.
package popup

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"go.uber.org/zap"

	"github.com/billie-coop/locomplete/internal/completion"
	"github.com/billie-coop/locomplete/internal/tui/components/core"
	"github.com/billie-coop/locomplete/internal/tui/styles"
)

const (
	// DefaultRows is the number of items shown at once.
	DefaultRows = 8

	maxItemWidth        = 60
	descriptionWidth    = 40
	maxDescriptionLines = 12
)

// Describer returns markdown describing item. An empty result hides the
// description box.
type Describer func(item *completion.Item) string

// Popup is the completion list.
type Popup struct {
	logger   *zap.Logger
	describe Describer
	rows     int

	open     bool
	vm       completion.ViewModel
	observer completion.PresenterObserver
	// gen identifies the current Open call; stale subscriptions compare it.
	gen int

	offset int
	x, y   int

	described   *completion.Item
	description string
}

var (
	_ completion.Presenter = (*Popup)(nil)
	_ core.Overlay         = (*Popup)(nil)
)

// Option configures a Popup.
type Option func(*Popup)

// WithRows sets how many items are visible at once.
func WithRows(n int) Option {
	return func(p *Popup) {
		if n > 0 {
			p.rows = n
		}
	}
}

// WithDescriber shows the selected item's description next to the list.
func WithDescriber(fn Describer) Option {
	return func(p *Popup) { p.describe = fn }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Popup) { p.logger = logger.Named("popup") }
}

// New creates a closed popup.
func New(opts ...Option) *Popup {
	p := &Popup{logger: zap.NewNop(), rows: DefaultRows}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type subscription struct {
	p   *Popup
	gen int
}

func (s subscription) Unsubscribe() {
	if s.p.gen == s.gen {
		s.p.observer = nil
	}
}

// Open shows vm and reports gestures to observer.
func (p *Popup) Open(vm completion.ViewModel, observer completion.PresenterObserver) completion.Subscription {
	p.gen++
	p.open = true
	p.observer = observer
	p.offset = 0
	p.set(vm)
	p.logger.Debug("opened", zap.Int("items", len(vm.Items)))
	return subscription{p: p, gen: p.gen}
}

// Update replaces the shown list.
func (p *Popup) Update(vm completion.ViewModel) {
	if !p.open {
		return
	}
	p.set(vm)
}

// Close hides the list. The observer is not told; the session asked for it.
func (p *Popup) Close() {
	if !p.open {
		return
	}
	p.open = false
	p.vm = completion.ViewModel{}
	p.described, p.description = nil, ""
	p.logger.Debug("closed")
}

func (p *Popup) ResultsPerPage() int { return p.rows }

func (p *Popup) IsOpen() bool { return p.open }

// SetPosition anchors the popup's top left corner.
func (p *Popup) SetPosition(x, y int) {
	p.x, p.y = x, y
}

func (p *Popup) Position() (int, int) { return p.x, p.y }

// Dismiss closes the list on the user's behalf and tells the session.
func (p *Popup) Dismiss() {
	if !p.open {
		return
	}
	observer := p.observer
	p.Close()
	if observer != nil {
		observer.Closed()
	}
}

func (p *Popup) set(vm completion.ViewModel) {
	p.vm = vm
	p.scrollToSelection()
	p.refreshDescription()
}

func (p *Popup) scrollToSelection() {
	sel := p.vm.SelectedIndex
	if sel < 0 || p.vm.SelectSuggestionItem {
		return
	}
	switch {
	case sel < p.offset:
		p.offset = sel
	case sel >= p.offset+p.rows:
		p.offset = sel - p.rows + 1
	}
	p.offset = max(min(p.offset, len(p.vm.Items)-p.rows), 0)
}

func (p *Popup) selected() *completion.Item {
	if p.vm.SelectSuggestionItem {
		return p.vm.SuggestionItem
	}
	if i := p.vm.SelectedIndex; i >= 0 && i < len(p.vm.Items) {
		return p.vm.Items[i].Item
	}
	return nil
}

func (p *Popup) refreshDescription() {
	item := p.selected()
	if item == p.described {
		return
	}
	p.described, p.description = item, ""
	if item != nil && p.describe != nil {
		p.description = p.describe(item)
	}
}

// HandleMsg handles the gestures the popup owns: toggling filters with
// alt+<access key> and mouse clicks on rows. Editing keys go to the editor.
func (p *Popup) HandleMsg(msg tea.Msg) bool {
	if !p.open || p.observer == nil {
		return false
	}
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		k := msg.Key()
		if k.Mod != tea.ModAlt || k.Text == "" && k.Code == 0 {
			return false
		}
		ch := k.Text
		if ch == "" {
			ch = string(k.Code)
		}
		return p.toggleFilter(ch)
	case tea.MouseClickMsg:
		m := msg.Mouse()
		if m.Button != tea.MouseLeft {
			return false
		}
		return p.click(m.X, m.Y)
	}
	return false
}

func (p *Popup) toggleFilter(accessKey string) bool {
	for i, f := range p.vm.Filters {
		if !strings.EqualFold(f.Filter.AccessKey, accessKey) {
			continue
		}
		filters := append([]completion.FilterState(nil), p.vm.Filters...)
		filters[i].Selected = !filters[i].Selected
		p.observer.FiltersChanged(filters)
		return true
	}
	return false
}

// click selects the clicked row. Clicking the selected row commits it.
func (p *Popup) click(x, y int) bool {
	w, h := lipgloss.Size(p.renderList())
	if x < p.x || x >= p.x+w || y <= p.y || y >= p.y+h-1 {
		return false
	}
	row := y - p.y - 1

	if p.showSuggestion() {
		if row == 0 {
			p.choose(p.vm.SuggestionItem, true)
			return true
		}
		row--
	}
	i := p.offset + row
	if i < p.offset || i >= min(p.offset+p.rows, len(p.vm.Items)) {
		return true
	}
	p.choose(p.vm.Items[i].Item, false)
	return true
}

func (p *Popup) choose(item *completion.Item, suggestion bool) {
	if item == p.selected() {
		p.observer.CommitRequested(item)
		return
	}
	p.observer.ItemSelected(item, suggestion)
}

func (p *Popup) showSuggestion() bool {
	return p.vm.DisplaySuggestionItem && p.vm.SuggestionItem != nil
}

// View renders the list with its description box to the right.
func (p *Popup) View() string {
	if !p.open || len(p.vm.Items) == 0 && !p.showSuggestion() {
		return ""
	}
	list := p.renderList()
	if p.description == "" {
		return list
	}
	st := styles.CurrentTheme().S()
	desc := styles.RenderMarkdown(p.description, descriptionWidth)
	if lines := strings.Split(desc, "\n"); len(lines) > maxDescriptionLines {
		desc = strings.Join(lines[:maxDescriptionLines], "\n")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, list, st.Description.Render(desc))
}

func (p *Popup) renderList() string {
	st := styles.CurrentTheme().S()
	width := p.contentWidth()

	var rows []string
	if p.showSuggestion() {
		rows = append(rows, p.renderSuggestion(st, width))
	}
	end := min(p.offset+p.rows, len(p.vm.Items))
	for i := p.offset; i < end; i++ {
		rows = append(rows, p.renderItem(st, p.vm.Items[i], i, width))
	}
	if footer := p.renderFooter(st, width); footer != "" {
		rows = append(rows, footer)
	}
	return st.Popup.Render(strings.Join(rows, "\n"))
}

func (p *Popup) contentWidth() int {
	width := 16
	for _, it := range p.vm.Items {
		w := ansi.StringWidth(it.Item.Icon()) + ansi.StringWidth(it.Item.DisplayText()) + ansi.StringWidth(it.Item.Suffix()) + 4
		width = max(width, w)
	}
	return min(width, maxItemWidth)
}

func (p *Popup) renderSuggestion(st *styles.Styles, width int) string {
	label := p.vm.SuggestionItem.DisplayText()
	if label == "" {
		label = p.vm.SuggestionDescription
	}
	style := st.Muted.Italic(true)
	if p.vm.SelectSuggestionItem {
		style = st.ItemSelected
	}
	return style.Width(width).Render(ansi.Truncate(styles.SuggestionIcon+" "+label, width-1, "…"))
}

func (p *Popup) renderItem(st *styles.Styles, it completion.ItemWithHighlight, i, width int) string {
	style := st.Item
	selected := i == p.vm.SelectedIndex && !p.vm.SelectSuggestionItem
	if selected {
		style = st.ItemSelected
		if p.vm.UseSoftSelection {
			style = st.ItemSoftSelected
		}
	}

	icon := it.Item.Icon()
	if icon == "" {
		icon = " "
	}
	label := highlight(it.Item.DisplayText(), it.Highlights, st.ItemMatch.Inherit(style))
	suffix := it.Item.Suffix()

	line := icon + " " + label
	if suffix != "" {
		gap := width - 1 - ansi.StringWidth(line) - ansi.StringWidth(suffix)
		if gap > 0 {
			line += strings.Repeat(" ", gap) + st.ItemSuffix.Inherit(style).Render(suffix)
		}
	}
	return style.Width(width).Render(ansi.Truncate(line, width-1, "…"))
}

// renderFooter shows the filter buttons and the scroll position.
func (p *Popup) renderFooter(st *styles.Styles, width int) string {
	var parts []string
	for _, f := range p.vm.Filters {
		label := fmt.Sprintf("%s%s", f.Filter.Icon, f.Filter.AccessKey)
		switch {
		case !f.Available:
			parts = append(parts, st.FilterGone.Render(label))
		case f.Selected:
			parts = append(parts, st.FilterOn.Render(styles.FilterOnIcon+label))
		default:
			parts = append(parts, st.FilterOff.Render(styles.FilterOffIcon+label))
		}
	}
	n := len(p.vm.Items)
	if n > p.rows {
		pos := fmt.Sprintf("%d/%d", min(max(p.vm.SelectedIndex+1, 1), n), n)
		if p.offset > 0 {
			pos = styles.ScrollUpIcon + pos
		}
		if p.offset+p.rows < n {
			pos += styles.ScrollDownIcon
		}
		parts = append(parts, st.Subtle.Render(pos))
	}
	if len(parts) == 0 {
		return ""
	}
	return ansi.Truncate(strings.Join(parts, " "), width, "…")
}

// highlight renders the matched byte ranges of s with match.
func highlight(s string, hs []completion.Highlight, match lipgloss.Style) string {
	if len(hs) == 0 {
		return s
	}
	var b strings.Builder
	last := 0
	for _, h := range hs {
		start, end := max(h.Start, last), min(h.End, len(s))
		if start >= end {
			continue
		}
		b.WriteString(s[last:start])
		b.WriteString(match.Render(s[start:end]))
		last = end
	}
	b.WriteString(s[last:])
	return b.String()
}
