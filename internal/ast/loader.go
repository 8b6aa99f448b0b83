package ast

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"asdl/internal/diag"
	"asdl/internal/source"
)

var modelAliasPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*\.[A-Za-z_][A-Za-z0-9_]*$`)

var moduleAllowedKeys = map[string]bool{
	"doc": true, "ports": true, "internal_nets": true,
	"parameters": true, "params": true, "variables": true, "vars": true,
	"spice_template": true, "instances": true, "pdk": true, "metadata": true,
	"nets": true, "patterns": true, "instance_defaults": true,
}

var topAllowedKeys = map[string]bool{
	"file_info": true, "imports": true, "model_alias": true,
	"modules": true, "devices": true, "metadata": true,
}

var portAllowedKeys = map[string]bool{"dir": true, "type": true, "metadata": true}

var instanceAllowedKeys = map[string]bool{
	"model": true, "mappings": true, "doc": true,
	"parameters": true, "params": true, "metadata": true,
}

// Load reads path through reg, parses it as YAML, and builds an
// AsdlDocument. ok is false when the file cannot be read or parsed, or
// a required section is missing or mistyped. doc is nil when the file cannot be read or parsed as a
// YAML mapping, and on a genuinely empty document, where ok stays true
// (spec.md §4.C "Empty file handling"); section-level errors such as a
// missing file_info return a non-nil doc with ok false.
func Load(path string, reg *source.Registry, reporter diag.Reporter) (*AsdlDocument, bool) {
	f, err := reg.Load(path)
	if err != nil {
		reporter.Report(diag.Errorf(diag.CodeInternal, diag.StageParse, err.Error()).MustBuild())
		return nil, false
	}

	var root yaml.Node
	if uerr := yaml.Unmarshal(f.Content, &root); uerr != nil {
		reporter.Report(diag.Errorf(diag.CodeYAMLSyntaxError, diag.StageParse, uerr.Error()).
			At(f.Span(0, 0)).MustBuild())
		return nil, false
	}

	if len(root.Content) == 0 {
		reporter.Report(diag.Infof(diag.CodeEmptyFileInfo, diag.StageParse, "document is empty").
			At(f.Span(0, 0)).MustBuild())
		return nil, true
	}

	docNode := root.Content[0]
	if !checkDuplicatesAndMergeKeys(docNode, reporter, f) {
		return nil, false
	}
	if docNode.Kind != yaml.MappingNode {
		reporter.Report(diag.Errorf(diag.CodeWrongSectionType, diag.StageParse, "document root must be a mapping").
			At(nodeSpan(f, docNode)).MustBuild())
		return nil, false
	}

	out := &AsdlDocument{
		Path:       f.Path,
		Imports:    map[string]string{},
		ModelAlias: map[string]string{},
		Modules:    map[string]*ModuleDecl{},
		Devices:    map[string]*DeviceDecl{},
	}
	ok := true

	for _, k := range mappingKeyNodes(docNode) {
		if !topAllowedKeys[k.Value] {
			reporter.Report(diag.Warningf(diag.CodeUnknownTopLevelKey, diag.StageParse,
				fmt.Sprintf("unknown top-level key %q", k.Value)).At(nodeSpan(f, k)).MustBuild())
		}
	}

	fileInfoNode := mappingGet(docNode, "file_info")
	switch {
	case fileInfoNode == nil:
		reporter.Report(diag.Errorf(diag.CodeMissingFileInfo, diag.StageParse,
			"missing required section 'file_info'").At(nodeSpan(f, docNode)).MustBuild())
		ok = false
	case fileInfoNode.Kind != yaml.MappingNode:
		reporter.Report(diag.Errorf(diag.CodeWrongSectionType, diag.StageParse,
			"'file_info' must be a mapping").At(nodeSpan(f, fileInfoNode)).MustBuild())
		ok = false
	default:
		out.FileInfo = buildFileInfo(f, fileInfoNode)
	}

	if importsNode := mappingGet(docNode, "imports"); importsNode != nil {
		buildImports(f, importsNode, out, reporter)
	}
	if aliasNode := mappingGet(docNode, "model_alias"); aliasNode != nil {
		buildModelAlias(f, aliasNode, out, reporter)
	}

	if modulesNode := mappingGet(docNode, "modules"); modulesNode != nil {
		if modulesNode.Kind != yaml.MappingNode {
			reporter.Report(diag.Errorf(diag.CodeWrongSectionType, diag.StageParse,
				"'modules' must be a mapping").At(nodeSpan(f, modulesNode)).MustBuild())
			ok = false
		} else {
			for i := 0; i+1 < len(modulesNode.Content); i += 2 {
				name := modulesNode.Content[i].Value
				mod := buildModule(f, name, modulesNode.Content[i+1], reporter)
				if mod != nil {
					out.Modules[name] = mod
					out.ModuleOrder = append(out.ModuleOrder, name)
				}
			}
		}
	}

	if devicesNode := mappingGet(docNode, "devices"); devicesNode != nil && devicesNode.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(devicesNode.Content); i += 2 {
			name := devicesNode.Content[i].Value
			out.Devices[name] = &DeviceDecl{
				Locatable: Locatable{Span: nodeSpan(f, devicesNode.Content[i+1])},
				Name:      name,
				Metadata:  nodeToMetadata(devicesNode.Content[i+1]),
			}
		}
	}

	return out, ok
}

func buildFileInfo(f *source.File, n *yaml.Node) *FileInfo {
	fi := &FileInfo{Locatable: Locatable{Span: nodeSpan(f, n)}}
	fi.TopModule = scalarOr(mappingGet(n, "top_module"), "")
	fi.Doc = scalarOr(mappingGet(n, "doc"), "")
	fi.Author = scalarOr(mappingGet(n, "author"), "")
	fi.Date = scalarOr(mappingGet(n, "date"), "")
	fi.Revision = scalarOr(mappingGet(n, "revision"), "")
	fi.Metadata = nodeToMetadata(mappingGet(n, "metadata"))
	return fi
}

func buildImports(f *source.File, n *yaml.Node, out *AsdlDocument, reporter diag.Reporter) {
	if n.Kind != yaml.MappingNode {
		reporter.Report(diag.Errorf(diag.CodeWrongSectionType, diag.StageParse,
			"'imports' must be a mapping").At(nodeSpan(f, n)).MustBuild())
		return
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		alias := n.Content[i].Value
		valNode := n.Content[i+1]
		if valNode.Kind != yaml.ScalarNode {
			reporter.Report(diag.Errorf(diag.CodeImportNotString, diag.StageParse,
				fmt.Sprintf("import %q must be a string path", alias)).At(nodeSpan(f, valNode)).MustBuild())
			continue
		}
		if !strings.HasSuffix(valNode.Value, ".asdl") {
			reporter.Report(diag.Errorf(diag.CodeImportBadExtension, diag.StageParse,
				fmt.Sprintf("import path %q must end in \".asdl\"", valNode.Value)).At(nodeSpan(f, valNode)).MustBuild())
			continue
		}
		out.Imports[alias] = valNode.Value
	}
}

func buildModelAlias(f *source.File, n *yaml.Node, out *AsdlDocument, reporter diag.Reporter) {
	if n.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		localName := n.Content[i].Value
		valNode := n.Content[i+1]
		if valNode.Kind != yaml.ScalarNode || !modelAliasPattern.MatchString(valNode.Value) {
			reporter.Report(diag.Errorf(diag.CodeModelAliasFormat, diag.StageParse,
				fmt.Sprintf("model_alias %q must match alias.module-name", localName)).
				At(nodeSpan(f, valNode)).MustBuild())
			continue
		}
		out.ModelAlias[localName] = valNode.Value
	}
}

func buildModule(f *source.File, name string, n *yaml.Node, reporter diag.Reporter) *ModuleDecl {
	if n.Kind != yaml.MappingNode {
		reporter.Report(diag.Errorf(diag.CodeWrongSectionType, diag.StageParse,
			fmt.Sprintf("module %q must be a mapping", name)).At(nodeSpan(f, n)).MustBuild())
		return nil
	}

	for _, k := range mappingKeyNodes(n) {
		if !moduleAllowedKeys[k.Value] {
			reporter.Report(diag.Warningf(diag.CodeUnknownNestedKey, diag.StageParse,
				fmt.Sprintf("unknown key %q in module %q", k.Value, name)).At(nodeSpan(f, k)).MustBuild())
		}
	}

	mod := &ModuleDecl{
		Locatable:        Locatable{Span: nodeSpan(f, n)},
		Name:             name,
		Instances:        map[string]*Instance{},
		Nets:             map[string]*Net{},
		Patterns:         map[string]string{},
		InstanceDefaults: map[string]map[string]string{},
	}
	mod.Doc = scalarOr(mappingGet(n, "doc"), "")
	mod.PDK = scalarOr(mappingGet(n, "pdk"), "")
	mod.Metadata = nodeToMetadata(mappingGet(n, "metadata"))

	templateNode := mappingGet(n, "spice_template")
	instancesNode := mappingGet(n, "instances")
	switch {
	case templateNode != nil && instancesNode != nil:
		reporter.Report(diag.Errorf(diag.CodeSpiceXorInstances, diag.StageParse,
			fmt.Sprintf("module %q has both spice_template and instances", name)).At(nodeSpan(f, n)).MustBuild())
	case templateNode == nil && instancesNode == nil:
		reporter.Report(diag.Errorf(diag.CodeSpiceNeitherInstances, diag.StageParse,
			fmt.Sprintf("module %q has neither spice_template nor instances", name)).At(nodeSpan(f, n)).MustBuild())
	case templateNode != nil:
		mod.IsPrimitive = true
		mod.SpiceTemplate = scalarOr(templateNode, "")
	default:
		for i := 0; i+1 < len(instancesNode.Content); i += 2 {
			instName := instancesNode.Content[i].Value
			inst := buildInstance(f, instName, instancesNode.Content[i+1], reporter)
			if inst != nil {
				mod.Instances[instName] = inst
				mod.InstanceOrder = append(mod.InstanceOrder, instName)
			}
		}
	}

	mod.Parameters = canonicalPairField(f, n, "parameters", "params", diag.CodeDuplicateParamsField, reporter)
	mod.Variables = canonicalPairField(f, n, "variables", "vars", diag.CodeDuplicateVarsField, reporter)

	if portsNode := mappingGet(n, "ports"); portsNode != nil && portsNode.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(portsNode.Content); i += 2 {
			portName := portsNode.Content[i].Value
			port := buildPort(f, portName, portsNode.Content[i+1], reporter)
			mod.Ports = append(mod.Ports, port)
			mod.PortOrder = append(mod.PortOrder, portName)
		}
	}

	if internalNode := mappingGet(n, "internal_nets"); internalNode != nil {
		for _, item := range internalNode.Content {
			mod.InternalNets = append(mod.InternalNets, item.Value)
		}
	}

	if patternsNode := mappingGet(n, "patterns"); patternsNode != nil && patternsNode.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(patternsNode.Content); i += 2 {
			mod.Patterns[patternsNode.Content[i].Value] = patternsNode.Content[i+1].Value
		}
	}

	if netsNode := mappingGet(n, "nets"); netsNode != nil && netsNode.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(netsNode.Content); i += 2 {
			nameExpr := netsNode.Content[i].Value
			net := buildNet(f, nameExpr, netsNode.Content[i+1], reporter)
			mod.Nets[nameExpr] = net
			mod.NetOrder = append(mod.NetOrder, nameExpr)
		}
	}

	if defaultsNode := mappingGet(n, "instance_defaults"); defaultsNode != nil && defaultsNode.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(defaultsNode.Content); i += 2 {
			instPattern := defaultsNode.Content[i].Value
			bindings := map[string]string{}
			bindingsNode := defaultsNode.Content[i+1]
			if bindingsNode.Kind == yaml.MappingNode {
				for j := 0; j+1 < len(bindingsNode.Content); j += 2 {
					bindings[bindingsNode.Content[j].Value] = bindingsNode.Content[j+1].Value
				}
			}
			mod.InstanceDefaults[instPattern] = bindings
		}
	}

	return mod
}

func buildPort(f *source.File, name string, n *yaml.Node, reporter diag.Reporter) Port {
	p := Port{Locatable: Locatable{Span: nodeSpan(f, n)}, Name: name, Kind: PortSignal}
	if n.Kind != yaml.MappingNode {
		reporter.Report(diag.Errorf(diag.CodeMissingPortDir, diag.StageParse,
			fmt.Sprintf("port %q must be a mapping with a 'dir' key", name)).At(nodeSpan(f, n)).MustBuild())
		return p
	}
	for _, k := range mappingKeyNodes(n) {
		if !portAllowedKeys[k.Value] {
			reporter.Report(diag.Warningf(diag.CodeUnknownNestedKey, diag.StageParse,
				fmt.Sprintf("unknown key %q on port %q", k.Value, name)).At(nodeSpan(f, k)).MustBuild())
		}
	}

	dirNode := mappingGet(n, "dir")
	if dirNode == nil {
		reporter.Report(diag.Errorf(diag.CodeMissingPortDir, diag.StageParse,
			fmt.Sprintf("port %q is missing required key 'dir'", name)).At(nodeSpan(f, n)).MustBuild())
	} else {
		switch Direction(dirNode.Value) {
		case DirIn, DirOut, DirInOut:
			p.Dir = Direction(dirNode.Value)
		default:
			reporter.Report(diag.Errorf(diag.CodeInvalidPortDir, diag.StageParse,
				fmt.Sprintf("port %q has invalid dir %q", name, dirNode.Value)).At(nodeSpan(f, dirNode)).MustBuild())
		}
	}

	if typeNode := mappingGet(n, "type"); typeNode != nil {
		switch PortKind(typeNode.Value) {
		case PortSignal, PortPower, PortGround, PortBias, PortControl:
			p.Kind = PortKind(typeNode.Value)
		default:
			reporter.Report(diag.Errorf(diag.CodeInvalidPortType, diag.StageParse,
				fmt.Sprintf("port %q has invalid type %q", name, typeNode.Value)).At(nodeSpan(f, typeNode)).MustBuild())
		}
	}

	p.Metadata = nodeToMetadata(mappingGet(n, "metadata"))
	return p
}

func buildInstance(f *source.File, name string, n *yaml.Node, reporter diag.Reporter) *Instance {
	if n.Kind != yaml.MappingNode {
		reporter.Report(diag.Errorf(diag.CodeMissingInstanceModel, diag.StageParse,
			fmt.Sprintf("instance %q must be a mapping", name)).At(nodeSpan(f, n)).MustBuild())
		return nil
	}
	for _, k := range mappingKeyNodes(n) {
		if !instanceAllowedKeys[k.Value] {
			reporter.Report(diag.Warningf(diag.CodeUnknownNestedKey, diag.StageParse,
				fmt.Sprintf("unknown key %q on instance %q", k.Value, name)).At(nodeSpan(f, k)).MustBuild())
		}
	}

	inst := &Instance{
		Locatable:  Locatable{Span: nodeSpan(f, n)},
		Name:       name,
		Mappings:   map[string]string{},
		Parameters: map[string]string{},
	}

	modelNode := mappingGet(n, "model")
	if modelNode == nil {
		reporter.Report(diag.Errorf(diag.CodeMissingInstanceModel, diag.StageParse,
			fmt.Sprintf("instance %q is missing required key 'model'", name)).At(nodeSpan(f, n)).MustBuild())
	} else {
		inst.Model = modelNode.Value
	}

	if mappingsNode := mappingGet(n, "mappings"); mappingsNode != nil && mappingsNode.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(mappingsNode.Content); i += 2 {
			inst.Mappings[mappingsNode.Content[i].Value] = mappingsNode.Content[i+1].Value
		}
	}

	inst.Parameters = canonicalPairField(f, n, "parameters", "params", diag.CodeDuplicateParamsField, reporter)
	inst.Doc = scalarOr(mappingGet(n, "doc"), "")
	inst.Metadata = nodeToMetadata(mappingGet(n, "metadata"))
	return inst
}

func buildNet(f *source.File, nameExpr string, n *yaml.Node, reporter diag.Reporter) *Net {
	net := &Net{
		Locatable: Locatable{Span: nodeSpan(f, n)},
		NameExpr:  strings.TrimPrefix(nameExpr, "$"),
		IsPortNet: strings.HasPrefix(nameExpr, "$"),
	}
	if n.Kind != yaml.SequenceNode {
		return net
	}
	idx := 0
	for _, item := range n.Content {
		if item.Kind == yaml.SequenceNode {
			start := idx
			for _, sub := range item.Content {
				net.Endpoints = append(net.Endpoints, parseEndpoint(f, sub))
				idx++
			}
			net.GroupSlices = append(net.GroupSlices, GroupSlice{Start: start, Count: len(item.Content)})
			continue
		}
		net.Endpoints = append(net.Endpoints, parseEndpoint(f, item))
		idx++
	}
	return net
}

func parseEndpoint(f *source.File, n *yaml.Node) Endpoint {
	raw := n.Value
	suppressed := strings.HasPrefix(raw, "!")
	return Endpoint{
		Locatable:  Locatable{Span: nodeSpan(f, n)},
		Raw:        strings.TrimPrefix(raw, "!"),
		Suppressed: suppressed,
	}
}

// canonicalPairField resolves a canonical/abbreviated field pair
// ("parameters"/"params", "variables"/"vars"): the canonical name wins
// when both are present, and a warning is emitted (spec.md §4.C).
func canonicalPairField(f *source.File, n *yaml.Node, canonical, abbrev string, dupCode diag.Code, reporter diag.Reporter) map[string]string {
	canonNode := mappingGet(n, canonical)
	abbrevNode := mappingGet(n, abbrev)
	if canonNode != nil && abbrevNode != nil {
		reporter.Report(diag.Warningf(dupCode, diag.StageParse,
			fmt.Sprintf("both %q and %q present; %q takes precedence", canonical, abbrev, canonical)).
			At(nodeSpan(f, abbrevNode)).MustBuild())
	}
	src := canonNode
	if src == nil {
		src = abbrevNode
	}
	out := map[string]string{}
	if src != nil && src.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(src.Content); i += 2 {
			out[src.Content[i].Value] = src.Content[i+1].Value
		}
	}
	return out
}

func nodeToMetadata(n *yaml.Node) map[string]any {
	if n == nil {
		return nil
	}
	var out map[string]any
	_ = n.Decode(&out)
	return out
}

func scalarOr(n *yaml.Node, fallback string) string {
	if n == nil || n.Kind != yaml.ScalarNode {
		return fallback
	}
	return n.Value
}

func mappingGet(m *yaml.Node, key string) *yaml.Node {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func mappingKeyNodes(m *yaml.Node) []*yaml.Node {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	out := make([]*yaml.Node, 0, len(m.Content)/2)
	for i := 0; i+1 < len(m.Content); i += 2 {
		out = append(out, m.Content[i])
	}
	return out
}

func nodeSpan(f *source.File, n *yaml.Node) source.Span {
	if n == nil {
		return source.Span{File: f.Path}
	}
	start := source.Position{Line: uint32(n.Line), Col: uint32(n.Column)}
	end := start
	if n.Kind == yaml.ScalarNode {
		end.Col += uint32(len(n.Value))
	}
	return source.NewSpan(f.Path, start, end)
}

// checkDuplicatesAndMergeKeys recursively walks every mapping node in
// the document, rejecting duplicate keys and YAML merge keys (`<<: *x`)
// anywhere, per spec.md §4.C.
func checkDuplicatesAndMergeKeys(n *yaml.Node, reporter diag.Reporter, f *source.File) bool {
	ok := true
	switch n.Kind {
	case yaml.MappingNode:
		seen := map[string]bool{}
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i]
			if key.Value == "<<" {
				reporter.Report(diag.Errorf(diag.CodeMergeKeyRejected, diag.StageParse,
					"YAML merge keys are not supported").At(nodeSpan(f, key)).MustBuild())
				ok = false
				continue
			}
			if seen[key.Value] {
				reporter.Report(diag.Errorf(diag.CodeDuplicateYAMLKey, diag.StageParse,
					fmt.Sprintf("duplicate key %q", key.Value)).At(nodeSpan(f, key)).MustBuild())
				ok = false
				continue
			}
			seen[key.Value] = true
			if !checkDuplicatesAndMergeKeys(n.Content[i+1], reporter, f) {
				ok = false
			}
		}
	case yaml.SequenceNode:
		for _, item := range n.Content {
			if !checkDuplicatesAndMergeKeys(item, reporter, f) {
				ok = false
			}
		}
	}
	return ok
}
