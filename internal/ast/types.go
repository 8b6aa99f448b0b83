// Package ast defines the AsdlDocument AST (spec.md §3) and the YAML
// loader that builds one from a source file, tracking per-key spans and
// enforcing the parser's structural rules (spec.md §4.C).
package ast

import "asdl/internal/source"

// Locatable is embedded by every AST node that carries a source span.
type Locatable struct {
	Span source.Span
}

// Direction is a port's signal direction.
type Direction string

const (
	DirIn    Direction = "in"
	DirOut   Direction = "out"
	DirInOut Direction = "in_out"
)

// PortKind classifies a port's electrical role.
type PortKind string

const (
	PortSignal  PortKind = "signal"
	PortPower   PortKind = "power"
	PortGround  PortKind = "ground"
	PortBias    PortKind = "bias"
	PortControl PortKind = "control"
)

// Port is one entry of a module's ordered port list.
type Port struct {
	Locatable
	Name     string
	Dir      Direction
	Kind     PortKind
	Metadata map[string]any
}

// Instance is one entry of a hierarchical module's `instances` mapping.
type Instance struct {
	Locatable
	Name       string
	Model      string
	Mappings   map[string]string // port name -> net-name pattern expr
	Parameters map[string]string // param name -> value pattern expr
	Doc        string
	Metadata   map[string]any
}

// Endpoint is one entry of a net's endpoint list: "instance.pin",
// optionally prefixed with `!` to suppress a default binding.
type Endpoint struct {
	Locatable
	Raw        string
	Suppressed bool
}

// GroupSlice annotates a net's endpoint list with the start index and
// count of a nested YAML sublist, recorded by the loader and used
// during lowering (spec.md §4.E step 5).
type GroupSlice struct {
	Start int
	Count int
}

// Net is one entry of a module's `nets` mapping.
type Net struct {
	Locatable
	NameExpr    string // raw pattern expr with any leading '$' removed (see IsPortNet)
	IsPortNet   bool
	Endpoints   []Endpoint
	GroupSlices []GroupSlice
}

// ModuleDecl is either a primitive module (SpiceTemplate set) or a
// hierarchical module (Instances set) — never both, never neither.
type ModuleDecl struct {
	Locatable
	Name             string
	Doc              string
	SpiceTemplate    string
	IsPrimitive      bool
	Ports            []Port
	PortOrder        []string // raw pattern expressions, declared order
	Parameters       map[string]string
	Variables        map[string]string
	InternalNets     []string
	Instances        map[string]*Instance
	InstanceOrder    []string
	Nets             map[string]*Net
	NetOrder         []string
	Patterns         map[string]string // alias -> raw group token
	InstanceDefaults map[string]map[string]string
	PDK              string
	Metadata         map[string]any
}

// DeviceDecl is a backend/PDK descriptor, optional in minimal
// compilations.
type DeviceDecl struct {
	Locatable
	Name     string
	Metadata map[string]any
}

// FileInfo is the document's required metadata record.
type FileInfo struct {
	Locatable
	TopModule string
	Doc       string
	Author    string
	Date      string
	Revision  string
	Metadata  map[string]any
}

// AsdlDocument is the parsed form of one ASDL source file.
type AsdlDocument struct {
	Path         string
	FileInfo     *FileInfo
	Imports      map[string]string // alias -> relative path, ends ".asdl"
	ModelAlias   map[string]string // local name -> "import-alias.module-name"
	Modules      map[string]*ModuleDecl
	ModuleOrder  []string
	Devices      map[string]*DeviceDecl
}
