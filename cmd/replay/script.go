package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/billie-coop/locomplete/internal/app"
	"github.com/billie-coop/locomplete/internal/text"
	"github.com/billie-coop/locomplete/internal/uithread"
)

// Script is a buffer and the editor commands to replay against it.
type Script struct {
	ContentType string `yaml:"content_type"`
	Text        string `yaml:"text"`
	// Caret defaults to the end of Text.
	Caret *int     `yaml:"caret"`
	Steps []string `yaml:"steps"`
}

// Result is what the session looked like after the last step.
type Result struct {
	Text               string   `json:"text"`
	Caret              int      `json:"caret"`
	Active             bool     `json:"active"`
	State              string   `json:"state,omitempty"`
	Items              []string `json:"items,omitempty"`
	Selected           string   `json:"selected,omitempty"`
	Suggestion         string   `json:"suggestion,omitempty"`
	SuggestionSelected bool     `json:"suggestion_selected,omitempty"`
	SoftSelection      bool     `json:"soft_selection,omitempty"`
}

// ParseScript decodes a YAML script.
func ParseScript(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}
	if s.ContentType == "" {
		s.ContentType = "text"
	}
	if s.Caret != nil && (*s.Caret < 0 || *s.Caret > len(s.Text)) {
		return nil, fmt.Errorf("caret %d outside the text (0..%d)", *s.Caret, len(s.Text))
	}
	for i, step := range s.Steps {
		name, _, _ := strings.Cut(step, " ")
		if _, ok := stepNames[name]; !ok {
			return nil, fmt.Errorf("step %d: unknown command %q", i+1, name)
		}
	}
	return &s, nil
}

// LoadScript reads and parses a script file.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return ParseScript(data)
}

var stepNames = map[string]struct{}{
	"type": {}, "invoke": {}, "commit-unique": {}, "toggle-suggestion": {},
	"up": {}, "down": {}, "pageup": {}, "pagedown": {},
	"tab": {}, "return": {}, "escape": {},
	"backspace": {}, "delete": {}, "left": {}, "right": {},
}

// Replayer runs scripts on a headless UI loop.
type Replayer struct {
	app  *app.App
	loop *uithread.Loop
}

func NewReplayer(a *app.App, loop *uithread.Loop) *Replayer {
	return &Replayer{app: a, loop: loop}
}

// Run replays s on a fresh view. Every step runs on the loop, and the
// session's computations settle before the next step.
func (r *Replayer) Run(ctx context.Context, s *Script) (*Result, error) {
	view := text.NewView("replay", text.NewBuffer(s.ContentType, s.Text))
	if s.Caret != nil {
		if err := r.loop.Do(ctx, func() { view.Caret().MoveTo(*s.Caret) }); err != nil {
			return nil, err
		}
	}

	for i, step := range s.Steps {
		var err error
		if doErr := r.loop.Do(ctx, func() { err = r.step(view, step) }); doErr != nil {
			return nil, doErr
		}
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i+1, step, err)
		}
		if err := r.settle(ctx, view); err != nil {
			return nil, err
		}
	}

	var res *Result
	err := r.loop.Do(ctx, func() { res = r.result(view) })
	return res, err
}

func (r *Replayer) step(view *text.View, step string) error {
	rt := r.app.Router
	name, arg, _ := strings.Cut(step, " ")

	insert := func(s string) func() {
		return func() {
			pos := view.CaretPosition().Position
			_ = view.Replace(text.Span{Start: pos, End: pos}, s)
		}
	}
	caret := func() (string, int) {
		return view.Snapshot().Text(), view.CaretPosition().Position
	}

	switch name {
	case "type":
		if arg == "" {
			return fmt.Errorf("nothing to type")
		}
		for _, ch := range arg {
			rt.TypeChar(view, ch, insert(string(ch)))
		}
	case "invoke":
		rt.Invoke(view)
	case "commit-unique":
		rt.CommitUnique(view)
	case "toggle-suggestion":
		rt.ToggleSuggestionMode(view)
	case "up":
		rt.Up(view)
	case "down":
		rt.Down(view)
	case "pageup":
		rt.PageUp(view)
	case "pagedown":
		rt.PageDown(view)
	case "tab":
		if !rt.Tab(view) {
			insert("\t")()
		}
	case "return":
		if !rt.Return(view) {
			insert("\n")()
		}
	case "escape":
		rt.Escape(view)
	case "backspace":
		rt.Backspace(view, func() {
			if src, pos := caret(); pos > 0 {
				_, size := utf8.DecodeLastRuneInString(src[:pos])
				_ = view.Replace(text.Span{Start: pos - size, End: pos}, "")
			}
		})
	case "delete":
		rt.Delete(view, func() {
			if src, pos := caret(); pos < len(src) {
				_, size := utf8.DecodeRuneInString(src[pos:])
				_ = view.Replace(text.Span{Start: pos, End: pos + size}, "")
			}
		})
	case "left":
		if src, pos := caret(); pos > 0 {
			_, size := utf8.DecodeLastRuneInString(src[:pos])
			view.Caret().MoveTo(pos - size)
		}
	case "right":
		if src, pos := caret(); pos < len(src) {
			_, size := utf8.DecodeRuneInString(src[pos:])
			view.Caret().MoveTo(pos + size)
		}
	default:
		return fmt.Errorf("unknown command %q", name)
	}
	return nil
}

// settle waits off the loop for the session's background work, then lets
// the loop run whatever that work posted.
func (r *Replayer) settle(ctx context.Context, view *text.View) error {
	if s := r.app.Broker.GetSession(view); s != nil {
		s.Wait()
	}
	return r.loop.Do(ctx, func() {})
}

func (r *Replayer) result(view *text.View) *Result {
	res := &Result{
		Text:  view.Snapshot().Text(),
		Caret: view.CaretPosition().Position,
	}
	s := r.app.Broker.GetSession(view)
	if s == nil {
		return res
	}
	res.Active = true
	res.State = s.State().String()

	computed := s.ComputedItems()
	for _, item := range computed.Items {
		res.Items = append(res.Items, item.DisplayText())
	}
	if computed.SelectedItem != nil {
		res.Selected = computed.SelectedItem.DisplayText()
	}
	if computed.SuggestionItem != nil {
		res.Suggestion = computed.SuggestionItem.DisplayText()
	}
	res.SuggestionSelected = computed.SuggestionItemSelected
	res.SoftSelection = computed.UsesSoftSelection
	return res
}
