// Package completion holds the data types and collaborator contracts shared by
// the completion engine.
//
// # Overview
//
// A completion session gathers Items from every Source registered for the
// view's content type, hands them to an ItemManager for sorting and
// filtering, shows them through a Presenter and finally commits one through
// the CommitManagers, falling back to a plain replacement of the applicable
// span.
//
// # Collaborators
//
//   - Source produces items, tooltips and the applicable span.
//   - ItemManager sorts once and refilters on every keystroke.
//   - CommitManager inserts an item and reports the editor behavior to apply.
//   - Presenter renders a ViewModel and reports user gestures back through a
//     PresenterObserver.
//   - View is the host editor surface.
//
// The session engine itself lives in the session, model and pipeline
// subpackages; this package has no dependencies on them.
package completion
