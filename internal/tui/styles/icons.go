package styles

const (
	CheckIcon   string = "✓"
	ErrorIcon   string = "✗"
	WarningIcon string = "⚠"

	// Completion list
	SuggestionIcon string = "✎"
	ScrollUpIcon   string = "▲"
	ScrollDownIcon string = "▼"
	FilterOnIcon   string = "●"
	FilterOffIcon  string = "○"
)
