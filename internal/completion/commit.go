package completion

// CommitBehavior tells the editor what to do with the keystroke that caused
// a commit.
type CommitBehavior uint8

const (
	BehaviorNone CommitBehavior = 0
	// SuppressFurtherTypeCharHandlers swallows the typed commit character.
	SuppressFurtherTypeCharHandlers CommitBehavior = 1 << 0
	// RaiseFurtherReturnTabHandlers lets return/tab continue to the editor.
	RaiseFurtherReturnTabHandlers CommitBehavior = 1 << 1
)

// Has reports whether all flags in f are set.
func (b CommitBehavior) Has(f CommitBehavior) bool { return b&f == f }

func (b CommitBehavior) String() string {
	switch b {
	case BehaviorNone:
		return "none"
	case SuppressFurtherTypeCharHandlers:
		return "suppress_type_char"
	case RaiseFurtherReturnTabHandlers:
		return "raise_return_tab"
	case SuppressFurtherTypeCharHandlers | RaiseFurtherReturnTabHandlers:
		return "suppress_type_char|raise_return_tab"
	default:
		return "unknown"
	}
}

// CommitResult is returned by CommitManager.TryCommit.
type CommitResult struct {
	Handled  bool
	Behavior CommitBehavior
}

// Unhandled lets the next commit manager, or the plain-text fallback, commit.
var Unhandled = CommitResult{}
