package completion

// Item is a completion candidate. Items are compared by pointer and never
// change after construction.
type Item struct {
	displayText string
	insertText  string
	sortText    string
	filterText  string
	suffix      string
	icon        string
	filters     []*Filter
	source      Source
	properties  map[string]any
}

// ItemOption configures an Item.
type ItemOption func(*Item)

// NewItem creates an item owned by source. Insert, sort and filter text
// default to the display text.
func NewItem(displayText string, source Source, opts ...ItemOption) *Item {
	item := &Item{
		displayText: displayText,
		insertText:  displayText,
		sortText:    displayText,
		filterText:  displayText,
		source:      source,
	}
	for _, opt := range opts {
		opt(item)
	}
	return item
}

// WithInsertText sets the text written into the buffer on commit.
func WithInsertText(s string) ItemOption {
	return func(i *Item) { i.insertText = s }
}

// WithSortText sets the key used for the initial ordering.
func WithSortText(s string) ItemOption {
	return func(i *Item) { i.sortText = s }
}

// WithFilterText sets the text matched against what the user typed.
func WithFilterText(s string) ItemOption {
	return func(i *Item) { i.filterText = s }
}

// WithSuffix sets trailing detail shown after the display text.
func WithSuffix(s string) ItemOption {
	return func(i *Item) { i.suffix = s }
}

// WithIcon sets a short glyph shown before the display text.
func WithIcon(s string) ItemOption {
	return func(i *Item) { i.icon = s }
}

// WithFilters tags the item.
func WithFilters(filters ...*Filter) ItemOption {
	return func(i *Item) { i.filters = append(i.filters, filters...) }
}

// WithProperty attaches source-private data, read back with Property.
func WithProperty(key string, value any) ItemOption {
	return func(i *Item) {
		if i.properties == nil {
			i.properties = make(map[string]any)
		}
		i.properties[key] = value
	}
}

func (i *Item) DisplayText() string { return i.displayText }
func (i *Item) InsertText() string  { return i.insertText }
func (i *Item) SortText() string    { return i.sortText }
func (i *Item) FilterText() string  { return i.filterText }
func (i *Item) Suffix() string      { return i.suffix }
func (i *Item) Icon() string        { return i.icon }
func (i *Item) Source() Source      { return i.source }

// Filters returns the item's tags. The slice must not be modified.
func (i *Item) Filters() []*Filter { return i.filters }

// HasFilter reports whether the item carries f.
func (i *Item) HasFilter(f *Filter) bool {
	for _, own := range i.filters {
		if own == f {
			return true
		}
	}
	return false
}

// Property returns data attached with WithProperty.
func (i *Item) Property(key string) (any, bool) {
	v, ok := i.properties[key]
	return v, ok
}

func (i *Item) String() string { return i.displayText }

// ItemWithHighlight pairs an item with the spans of its display text that
// matched the typed text.
type ItemWithHighlight struct {
	Item       *Item
	Highlights []Highlight
}

// Highlight is a byte range [Start, End) of an item's display text.
type Highlight struct {
	Start int
	End   int
}
