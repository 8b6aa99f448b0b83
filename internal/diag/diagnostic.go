package diag

import "asdl/internal/source"

// Stage tags which pipeline component emitted a Diagnostic.
type Stage string

const (
	StageParse    Stage = "parse"
	StagePattern  Stage = "pattern"
	StageResolve  Stage = "resolve"
	StageLower    Stage = "lower"
	StageAtomize  Stage = "atomize"
	StageEmit     Stage = "emit"
	StageValidate Stage = "validate"
	StageTool     Stage = "tool"
)

// noSpanNote is appended to any diagnostic constructed without a primary
// span, per spec.md §3.
const noSpanNote = "No source span available."

// Label points at a secondary location relevant to a Diagnostic, distinct
// from a free-text Note.
type Label struct {
	Span    source.Span
	Message string
}

// Fixit is a suggested textual replacement at a span.
type Fixit struct {
	Span        source.Span
	Replacement string
	Message     string
}

// Diagnostic is an immutable record of one compiler message. Diagnostics
// are never mutated after construction; a Builder is used to assemble
// one and Build freezes it.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  *source.Span
	Labels   []Label
	Notes    []string
	Help     string
	Fixits   []Fixit
	Source   Stage
}

// HasSpan reports whether the diagnostic carries a primary span.
func (d Diagnostic) HasSpan() bool {
	return d.Primary != nil
}

// Builder assembles a Diagnostic through chainable calls, mirroring the
// construct-then-freeze pattern used across the pipeline's reporters.
type Builder struct {
	d   Diagnostic
	err error
}

// NewBuilder starts building a Diagnostic with the given core fields.
func NewBuilder(sev Severity, code Code, message string, stage Stage) *Builder {
	return &Builder{d: Diagnostic{Severity: sev, Code: code, Message: message, Source: stage}}
}

// Errorf, Warningf, Infof, and Fatalf are shorthand builders for the four
// severities.
func Errorf(code Code, stage Stage, message string) *Builder {
	return NewBuilder(SevError, code, message, stage)
}

func Warningf(code Code, stage Stage, message string) *Builder {
	return NewBuilder(SevWarning, code, message, stage)
}

func Infof(code Code, stage Stage, message string) *Builder {
	return NewBuilder(SevInfo, code, message, stage)
}

func Fatalf(code Code, stage Stage, message string) *Builder {
	return NewBuilder(SevFatal, code, message, stage)
}

// At sets the primary span.
func (b *Builder) At(span source.Span) *Builder {
	if err := span.Validate(); err != nil && b.err == nil {
		b.err = err
	}
	b.d.Primary = &span
	return b
}

// WithLabel appends a secondary (span, message) label.
func (b *Builder) WithLabel(span source.Span, message string) *Builder {
	b.d.Labels = append(b.d.Labels, Label{Span: span, Message: message})
	return b
}

// WithNote appends a free-text note.
func (b *Builder) WithNote(note string) *Builder {
	b.d.Notes = append(b.d.Notes, note)
	return b
}

// WithHelp sets the single help string.
func (b *Builder) WithHelp(help string) *Builder {
	b.d.Help = help
	return b
}

// WithFixit appends a suggested replacement.
func (b *Builder) WithFixit(span source.Span, replacement, message string) *Builder {
	b.d.Fixits = append(b.d.Fixits, Fixit{Span: span, Replacement: replacement, Message: message})
	return b
}

// Build freezes the Diagnostic, enforcing the "no span implies a
// no-span note" invariant, and reports InvalidSpan if At was given a
// malformed span.
func (b *Builder) Build() (Diagnostic, error) {
	if b.err != nil {
		return Diagnostic{}, b.err
	}
	if !b.d.HasSpan() {
		hasNote := false
		for _, n := range b.d.Notes {
			if n == noSpanNote {
				hasNote = true
				break
			}
		}
		if !hasNote {
			b.d.Notes = append(b.d.Notes, noSpanNote)
		}
	}
	return b.d, nil
}

// MustBuild panics on error; it is intended for call sites where the
// span has already been validated upstream.
func (b *Builder) MustBuild() Diagnostic {
	d, err := b.Build()
	if err != nil {
		panic(err)
	}
	return d
}
