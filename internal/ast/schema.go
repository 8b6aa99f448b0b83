package ast

// Schema returns a JSON Schema (draft 2020-12 subset) describing the
// ASDL YAML document shape, for the supplemented `asdl schema` CLI
// subcommand. It mirrors the allowlists enforced by the loader rather
// than being generated from them, so the two must be kept in sync by
// hand when the grammar changes.
func Schema() map[string]any {
	return map[string]any{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"title":   "ASDL document",
		"type":    "object",
		"required": []string{"file_info"},
		"properties": map[string]any{
			"file_info": map[string]any{
				"type":     "object",
				"required": []string{},
				"properties": map[string]any{
					"top_module": map[string]any{"type": "string"},
					"doc":        map[string]any{"type": "string"},
					"author":     map[string]any{"type": "string"},
					"date":       map[string]any{"type": "string"},
					"revision":   map[string]any{"type": "string"},
					"metadata":   map[string]any{"type": "object"},
				},
			},
			"imports": map[string]any{
				"type":                 "object",
				"additionalProperties": map[string]any{"type": "string", "pattern": `\.asdl$`},
			},
			"model_alias": map[string]any{
				"type": "object",
				"additionalProperties": map[string]any{
					"type":    "string",
					"pattern": `^[A-Za-z_][A-Za-z0-9_]*\.[A-Za-z_][A-Za-z0-9_]*$`,
				},
			},
			"modules": map[string]any{
				"type":                 "object",
				"additionalProperties": moduleSchema(),
			},
			"devices": map[string]any{
				"type":                 "object",
				"additionalProperties": map[string]any{"type": "object"},
			},
		},
	}
}

func moduleSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"doc":            map[string]any{"type": "string"},
			"pdk":            map[string]any{"type": "string"},
			"spice_template": map[string]any{"type": "string"},
			"ports": map[string]any{
				"type": "object",
				"additionalProperties": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"dir":  map[string]any{"enum": []string{"in", "out", "in_out"}},
						"type": map[string]any{"enum": []string{"signal", "power", "ground", "bias", "control"}},
					},
					"required": []string{"dir"},
				},
			},
			"internal_nets":     map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"parameters":        map[string]any{"type": "object"},
			"params":            map[string]any{"type": "object"},
			"variables":         map[string]any{"type": "object"},
			"vars":              map[string]any{"type": "object"},
			"patterns":          map[string]any{"type": "object"},
			"instance_defaults": map[string]any{"type": "object"},
			"instances": map[string]any{
				"type": "object",
				"additionalProperties": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"model":    map[string]any{"type": "string"},
						"mappings": map[string]any{"type": "object"},
						"doc":      map[string]any{"type": "string"},
					},
					"required": []string{"model"},
				},
			},
			"nets": map[string]any{
				"type": "object",
				"additionalProperties": map[string]any{
					"type": "array",
				},
			},
		},
	}
}
