package diag

import (
	"fmt"

	"fortio.org/safecast"
)

// Domain groups diagnostic codes by the pipeline stage that owns them.
type Domain string

const (
	DomainParse Domain = "PARSE"
	DomainAST   Domain = "AST"
	DomainIR    Domain = "IR"
	DomainPass  Domain = "PASS"
	DomainEmit  Domain = "EMIT"
	DomainLint  Domain = "LINT"
	DomainTool  Domain = "TOOL"
)

var validDomains = map[Domain]bool{
	DomainParse: true,
	DomainAST:   true,
	DomainIR:    true,
	DomainPass:  true,
	DomainEmit:  true,
	DomainLint:  true,
	DomainTool:  true,
}

// Code is a short diagnostic identifier, either the
// `<DOMAIN>-<NNN>` form produced by FormatCode or a legacy `PXXYY` parser
// code (see the literal constants below).
type Code string

// FormatCode validates domain against the fixed domain set, zero-pads
// number to three digits, and returns the composed code. It rejects
// domains outside the fixed set and numbers outside [0, 999].
func FormatCode(domain Domain, number int) (Code, error) {
	if !validDomains[domain] {
		return "", fmt.Errorf("diag: unknown domain %q", domain)
	}
	n, err := safecast.Convert[uint16](number)
	if err != nil || n > 999 {
		return "", fmt.Errorf("diag: code number %d out of range [0,999]", number)
	}
	return Code(fmt.Sprintf("%s-%03d", domain, n)), nil
}

// Legacy parser codes (PXXYY form, spec.md §4.C / §7 "PARSE (P01xx-P07xx)").
const (
	CodeYAMLSyntaxError      Code = "P0100"
	CodeDuplicateYAMLKey     Code = "P0101"
	CodeMergeKeyRejected     Code = "P0101"
	CodeEmptyFileInfo        Code = "P0103"
	CodeMissingFileInfo      Code = "P0201"
	CodeWrongSectionType     Code = "P0202"
	CodeSpiceXorInstances    Code = "P0230"
	CodeSpiceNeitherInstances Code = "P0231"
	CodeMissingPortDir       Code = "P0240"
	CodeMissingInstanceModel Code = "P0250"
	CodeImportNotString      Code = "P0501"
	CodeImportBadExtension   Code = "P0502"
	CodeModelAliasFormat     Code = "P0503"
	CodeInvalidPortDir       Code = "P0511"
	CodeInvalidPortType      Code = "P0512"
	CodeDuplicateParamsField Code = "P0601"
	CodeDuplicateVarsField   Code = "P0602"
	CodeUnknownTopLevelKey   Code = "P0701"
	CodeUnknownNestedKey     Code = "P0702"
)

// Import resolution / symbol lookup codes (spec.md §4.D, §4.E).
const (
	CodeImportCycle               Code = "IR-001"
	CodeUnresolvedEndpointInstance Code = "IR-002"
	CodeUnresolvedQualifiedModel   Code = "IR-010"
	CodeUnresolvedUnqualifiedModel Code = "IR-011"
	CodeInvalidPatternDef          Code = "IR-012"
	CodeUndefinedNamedPattern      Code = "IR-013"
	CodeAmbiguousModelRef          Code = "IR-014"
	CodeImportFileNotFound         Code = "IR-015"
)

// Pattern expansion codes (spec.md §4.B).
const (
	CodeRangeMalformed       Code = "PASS-101"
	CodeEmptyEnum            Code = "PASS-102"
	CodeEmptySpliceSegment   Code = "PASS-103"
	CodeDuplicateAtom        Code = "PASS-104"
	CodeExpansionCapExceeded Code = "PASS-105"
	CodeMalformedDelimiter   Code = "PASS-106"
	CodeBindingIncompatible  Code = "PASS-107"
	CodeParamLengthMismatch  Code = "PASS-108"
)

// Emission codes (spec.md §4.G).
const (
	CodeUnconnectedPort           Code = "G0201"
	CodeInvalidModuleKind         Code = "G0301"
	CodeUnknownModelRef           Code = "G0401"
	CodeMissingTopModule          Code = "G0102"
	CodeTemplatePlaceholderMissing Code = "G0501"
)

// Lint codes (spec.md §7 "LINT"). LINT-001..003 are always warnings; the
// supplemented post-emission sanity pass codes LINT-004/005 are reported
// as errors by netlist.Lint.
const (
	CodeUnusedImport          Code = "LINT-001"
	CodeDefaultBindingOverride Code = "LINT-002"
	CodeUnusedModule          Code = "LINT-003"
	CodeUnbalancedSubckt      Code = "LINT-004"
	CodeUnresolvedPlaceholder Code = "LINT-005"
)

// AST-level validator codes (spec.md §4.H).
const (
	CodeHierModuleHasParameters    Code = "V0201"
	CodeInstanceMappingOnPortless  Code = "V0301"
	CodeInstanceMappingUnknownPort Code = "V0302"
	CodeInstanceParamOnHierTarget  Code = "V0303"
	CodeInstanceParamShadowsVar    Code = "V0304"
	CodeInstanceParamUnknown       Code = "V0305"
	CodeMappingUnknownNet          Code = "V0401"
	CodeModuleNeverInstantiated    Code = "V0601"
)

// CodeInternal is the pipeline boundary's catch-all for unexpected
// internal conditions (spec.md §7 "Propagation policy").
const CodeInternal Code = "TOOL-999"
