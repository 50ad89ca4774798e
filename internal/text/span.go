package text

import "fmt"

// Span is the half-open byte range [Start, End).
type Span struct {
	Start int
	End   int
}

// NewSpan returns the span starting at start with the given length.
func NewSpan(start, length int) Span {
	return Span{Start: start, End: start + length}
}

// Len returns the number of bytes covered.
func (s Span) Len() int { return s.End - s.Start }

// IsEmpty reports whether the span covers no bytes.
func (s Span) IsEmpty() bool { return s.End <= s.Start }

// Touches reports whether pos lies inside the span or on either edge of it.
// A caret sitting right after the last character still belongs to the word.
func (s Span) Touches(pos int) bool {
	return pos >= s.Start && pos <= s.End
}

func (s Span) String() string {
	return fmt.Sprintf("[%d..%d)", s.Start, s.End)
}

// Point is a position inside a particular snapshot.
type Point struct {
	Snapshot *Snapshot
	Position int
}

// TranslateTo maps the point forward onto a later snapshot of the same buffer.
func (p Point) TranslateTo(target *Snapshot) (Point, error) {
	if p.Snapshot == nil {
		return Point{}, fmt.Errorf("point has no snapshot")
	}
	changes, err := changesBetween(p.Snapshot, target)
	if err != nil {
		return Point{}, err
	}
	pos := p.Position
	for _, c := range changes {
		pos = c.mapEnd(pos)
	}
	return Point{Snapshot: target, Position: pos}, nil
}
