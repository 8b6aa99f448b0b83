package diag

// Reporter accepts diagnostics from compiler stages. BagReporter is the
// implementation the pipeline uses; it exists as an interface so pattern,
// ast, resolve, and netlist code can be unit-tested against a stub that
// records calls without a real Bag.
type Reporter interface {
	Report(d Diagnostic)
}

// BagReporter adapts a Bag to the Reporter interface.
type BagReporter struct {
	Bag *Bag
}

// NewBagReporter returns a Reporter that emits into bag.
func NewBagReporter(bag *Bag) *BagReporter {
	return &BagReporter{Bag: bag}
}

func (r *BagReporter) Report(d Diagnostic) {
	r.Bag.Emit(d)
}

// DedupReporter wraps a Reporter and suppresses diagnostics that are
// identical in (code, severity, primary span, message) to one already
// reported. It suits a stage that may otherwise re-derive the same
// diagnostic from multiple broadcast paths; no stage in this repository
// currently wraps its reporter in one.
type DedupReporter struct {
	inner Reporter
	seen  map[string]bool
}

// NewDedupReporter wraps inner with duplicate suppression.
func NewDedupReporter(inner Reporter) *DedupReporter {
	return &DedupReporter{inner: inner, seen: make(map[string]bool)}
}

func (r *DedupReporter) Report(d Diagnostic) {
	key := dedupKey(d)
	if r.seen[key] {
		return
	}
	r.seen[key] = true
	r.inner.Report(d)
}

func dedupKey(d Diagnostic) string {
	key := string(d.Code) + "\x00" + d.Severity.String() + "\x00" + d.Message + "\x00"
	if d.Primary != nil {
		key += d.Primary.File + "\x00" +
			itoa(d.Primary.Start.Line) + "\x00" + itoa(d.Primary.Start.Col) + "\x00" +
			itoa(d.Primary.End.Line) + "\x00" + itoa(d.Primary.End.Col)
	}
	return key
}

func itoa(n uint32) string {
	if n == 0 {
		return "0"
	}
	var buf [10]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
