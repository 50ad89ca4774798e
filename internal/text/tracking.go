package text

// TrackingSpan follows a span across buffer edits. Both edges are inclusive:
// text typed at either end of the span becomes part of it.
type TrackingSpan struct {
	origin *Snapshot
	span   Span
}

// NewTrackingSpan anchors span to snapshot.
func NewTrackingSpan(snapshot *Snapshot, span Span) *TrackingSpan {
	return &TrackingSpan{origin: snapshot, span: span}
}

// Origin returns the snapshot the span was created against.
func (t *TrackingSpan) Origin() *Snapshot { return t.origin }

// SpanIn returns the span mapped onto target. Snapshots older than the origin
// get the original span clamped to their length.
func (t *TrackingSpan) SpanIn(target *Snapshot) Span {
	changes, err := changesBetween(t.origin, target)
	if err != nil {
		start := clamp(t.span.Start, 0, target.Len())
		return Span{Start: start, End: clamp(t.span.End, start, target.Len())}
	}
	start, end := t.span.Start, t.span.End
	for _, c := range changes {
		start = c.mapStart(start)
		end = c.mapEnd(end)
		if end < start {
			end = start
		}
	}
	return Span{Start: start, End: end}
}

// TextIn returns the tracked text in target.
func (t *TrackingSpan) TextIn(target *Snapshot) string {
	return target.Slice(t.SpanIn(target))
}
