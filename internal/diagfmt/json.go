package diagfmt

import (
	"encoding/json"
	"io"

	"asdl/internal/diag"
	"asdl/internal/source"
)

// SpanJSON is the wire form of a source.Span (spec.md §3, §6).
type SpanJSON struct {
	File      string     `json:"file"`
	Start     PosJSON    `json:"start"`
	End       PosJSON    `json:"end"`
	ByteStart *uint32    `json:"byte_start,omitempty"`
	ByteEnd   *uint32    `json:"byte_end,omitempty"`
}

// PosJSON is the wire form of a source.Position.
type PosJSON struct {
	Line uint32 `json:"line"`
	Col  uint32 `json:"col"`
}

// LabelJSON is the wire form of a diag.Label.
type LabelJSON struct {
	Span    SpanJSON `json:"span"`
	Message string   `json:"message"`
}

// FixitJSON is the wire form of a diag.Fixit.
type FixitJSON struct {
	Span        SpanJSON `json:"span"`
	Replacement string   `json:"replacement"`
	Message     string   `json:"message,omitempty"`
}

// DiagnosticJSON is one record of the flat diagnostics array described
// in spec.md §4.A / §6.
type DiagnosticJSON struct {
	Code        diag.Code   `json:"code"`
	Severity    string      `json:"severity"`
	Message     string      `json:"message"`
	PrimarySpan *SpanJSON   `json:"primary_span,omitempty"`
	Labels      []LabelJSON `json:"labels,omitempty"`
	Notes       []string    `json:"notes,omitempty"`
	Help        string      `json:"help,omitempty"`
	Fixits      []FixitJSON `json:"fixits,omitempty"`
	Source      diag.Stage  `json:"source"`
}

func spanJSON(s source.Span) SpanJSON {
	return SpanJSON{
		File:      s.File,
		Start:     PosJSON{Line: s.Start.Line, Col: s.Start.Col},
		End:       PosJSON{Line: s.End.Line, Col: s.End.Col},
		ByteStart: s.StartByte,
		ByteEnd:   s.EndByte,
	}
}

func diagnosticJSON(d diag.Diagnostic) DiagnosticJSON {
	out := DiagnosticJSON{
		Code:     d.Code,
		Severity: d.Severity.String(),
		Message:  d.Message,
		Notes:    d.Notes,
		Help:     d.Help,
		Source:   d.Source,
	}
	if d.Primary != nil {
		span := spanJSON(*d.Primary)
		out.PrimarySpan = &span
	}
	for _, l := range d.Labels {
		out.Labels = append(out.Labels, LabelJSON{Span: spanJSON(l.Span), Message: l.Message})
	}
	for _, f := range d.Fixits {
		out.Fixits = append(out.Fixits, FixitJSON{Span: spanJSON(f.Span), Replacement: f.Replacement, Message: f.Message})
	}
	return out
}

// BuildRecords converts a Bag into its JSON-ready flat array, honoring
// opts.Max and ordering per opts.Ordered.
func BuildRecords(bag *diag.Bag, opts JSONOpts) []DiagnosticJSON {
	items := bag.ToList(opts.Ordered)
	if opts.Max > 0 && opts.Max < len(items) {
		items = items[:opts.Max]
	}
	records := make([]DiagnosticJSON, 0, len(items))
	for _, d := range items {
		records = append(records, diagnosticJSON(d))
	}
	return records
}

// JSON writes bag as the flat diagnostics array described in spec.md §6,
// two-space indented.
func JSON(w io.Writer, bag *diag.Bag, opts JSONOpts) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildRecords(bag, opts))
}
