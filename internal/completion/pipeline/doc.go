// Package pipeline runs a chain of state transformations for one completion
// session.
//
// # Overview
//
// Every keystroke, scroll or filter toggle becomes a Transformation that maps
// the previous session state to the next one. Transformations may call slow
// collaborators, so they run off the UI goroutine, yet they must observe a
// single ordered history. The pipeline provides:
//   - Strict submission order (each unit waits for its predecessor)
//   - Cheap preemption (only the newest unit renders)
//   - Shared cancellation (one context per session)
//   - Blocking reads for commit (WaitAndGetResult)
//
// # Architecture
//
//   - unit: one enqueued transformation with its own id and done channel
//   - Pipeline: links units, records the most recent result, reports faults
//   - Handler: the session, which renders results and dismisses on failure
//
// There is no queue and no worker pool. The chain of done channels is the
// only synchronization between units.
//
// # Example
//
//	p := pipeline.New(ctx, gatherInitialModel, session,
//	    pipeline.WithLogger(logger),
//	    pipeline.WithFaultReporter(faults))
//
//	// From the UI goroutine
//	p.Enqueue(func(ctx context.Context, m *model.Model) (*model.Model, error) {
//	    return m.MoveSelection(1), nil
//	}, true)
//
//	// Commit path
//	m, ok := p.WaitAndGetResult(ctx, true)
package pipeline
