// Package netlist converts an AtomizedGraph into SPICE text (spec.md
// §4.G): dependency-ordered module emission, inline primitive template
// substitution, and a post-emission sanity pass.
package netlist

import "asdl/internal/ast"

// TopStyle controls how the top module is wrapped in the output.
type TopStyle string

const (
	TopStyleSubckt TopStyle = "subckt"
	TopStyleFlat   TopStyle = "flat"
)

// Options configures emission.
type Options struct {
	TopModule string
	TopStyle  TopStyle
}

// Design is the emitted SPICE text plus the header metadata it was
// built from.
type Design struct {
	Name      string
	TopModule string
	Text      string
}

// pdkIncludes maps a PDK identifier to its model-include path. Table
// entries are added as PDKs are supported; an unlisted PDK string is
// included verbatim as a comment instead of a `.include` line.
var pdkIncludes = map[string]string{
	"gf180mcu": "gf180mcu_fd_pr/models/ngspice/design.ngspice",
	"sky130":   "sky130_fd_pr/models/sky130.lib.spice",
}

func headerFileInfo(fi *ast.FileInfo) (author, date, revision string) {
	if fi == nil {
		return "", "", ""
	}
	return fi.Author, fi.Date, fi.Revision
}
