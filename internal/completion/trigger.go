package completion

// TriggerReason says why completion was requested.
type TriggerReason int

const (
	// TriggerInvoke is an explicit request, e.g. ctrl+space.
	TriggerInvoke TriggerReason = iota
	// TriggerInvokeAndCommitIfUnique commits immediately when only one item fits.
	TriggerInvokeAndCommitIfUnique
	// TriggerInsertion is typing a character.
	TriggerInsertion
	// TriggerDeletion is backspace or delete.
	TriggerDeletion
)

func (r TriggerReason) String() string {
	switch r {
	case TriggerInvoke:
		return "invoke"
	case TriggerInvokeAndCommitIfUnique:
		return "invoke_and_commit_if_unique"
	case TriggerInsertion:
		return "insertion"
	case TriggerDeletion:
		return "deletion"
	default:
		return "unknown"
	}
}

// FilterReason tells the ItemManager what prompted a refilter.
type FilterReason int

const (
	FilterInitial FilterReason = iota
	FilterInsertion
	FilterDeletion
	FilterChange
)

func (r FilterReason) String() string {
	switch r {
	case FilterInitial:
		return "initial"
	case FilterInsertion:
		return "insertion"
	case FilterDeletion:
		return "deletion"
	case FilterChange:
		return "filter_change"
	default:
		return "unknown"
	}
}

// FilterReason maps a trigger onto the refilter it causes. Explicit invocation
// refilters as if the session just started.
func (r TriggerReason) FilterReason() FilterReason {
	switch r {
	case TriggerInsertion:
		return FilterInsertion
	case TriggerDeletion:
		return FilterDeletion
	default:
		return FilterInitial
	}
}

// Trigger is the event that opened or updated a session. Char is zero unless
// the reason is an insertion or deletion of a known character.
type Trigger struct {
	Reason TriggerReason
	Char   rune
}
