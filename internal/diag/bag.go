package diag

import "sort"

// Bag is the append-only DiagnosticCollector of spec.md §4.A. Emit
// records a diagnostic; Extend bulk-appends. Iteration order is
// insertion order; ToList(true) returns the stable total sort order
// defined in spec.md §3. No Diagnostic is ever mutated after Emit.
type Bag struct {
	items []Diagnostic
}

// NewBag returns an empty Bag.
func NewBag() *Bag {
	return &Bag{}
}

// Emit appends d, preserving insertion order.
func (b *Bag) Emit(d Diagnostic) {
	b.items = append(b.items, d)
}

// Extend bulk-appends a sequence of diagnostics in order.
func (b *Bag) Extend(ds []Diagnostic) {
	b.items = append(b.items, ds...)
}

// Len reports the number of diagnostics recorded.
func (b *Bag) Len() int {
	return len(b.items)
}

// Items returns diagnostics in insertion order. The returned slice must
// not be mutated.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// HasSeverity reports whether any diagnostic is at least as severe as
// threshold.
func (b *Bag) HasSeverity(threshold Severity) bool {
	for _, d := range b.items {
		if d.Severity.AtLeastAsSevereAs(threshold) {
			return true
		}
	}
	return false
}

// HasErrors reports whether any diagnostic has severity error or fatal.
func (b *Bag) HasErrors() bool {
	return b.HasSeverity(SevError)
}

// HasWarnings reports whether any diagnostic has severity warning or
// more severe.
func (b *Bag) HasWarnings() bool {
	return b.HasSeverity(SevWarning)
}

// ToList returns a copy of the recorded diagnostics. When ordered is
// true the copy is sorted per the stable total order of spec.md §3;
// otherwise it preserves insertion order.
func (b *Bag) ToList(ordered bool) []Diagnostic {
	out := make([]Diagnostic, len(b.items))
	copy(out, b.items)
	if ordered {
		sortStable(out)
	}
	return out
}

// Merge appends every diagnostic from other onto b, in other's
// insertion order.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	b.Extend(other.items)
}

// sortKey projects the fields used by the stable total order:
// (has-file, file, has-span, start-line, start-col, severity-rank,
// code, message).
type sortKey struct {
	hasFile  bool
	file     string
	hasSpan  bool
	line     uint32
	col      uint32
	sevRank  int
	code     Code
	message  string
}

func keyOf(d Diagnostic) sortKey {
	k := sortKey{sevRank: d.Severity.rank(), code: d.Code, message: d.Message}
	if d.Primary != nil {
		k.hasSpan = true
		k.hasFile = d.Primary.HasFile()
		k.file = d.Primary.File
		k.line = d.Primary.Start.Line
		k.col = d.Primary.Start.Col
	}
	return k
}

func sortStable(items []Diagnostic) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := keyOf(items[i]), keyOf(items[j])
		if a.hasFile != b.hasFile {
			return a.hasFile && !b.hasFile
		}
		if a.file != b.file {
			return a.file < b.file
		}
		if a.hasSpan != b.hasSpan {
			return a.hasSpan && !b.hasSpan
		}
		if a.line != b.line {
			return a.line < b.line
		}
		if a.col != b.col {
			return a.col < b.col
		}
		if a.sevRank != b.sevRank {
			return a.sevRank < b.sevRank
		}
		if a.code != b.code {
			return a.code < b.code
		}
		return a.message < b.message
	})
}
