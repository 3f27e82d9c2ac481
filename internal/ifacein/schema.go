// Package ifacein is the "stated interface" of §6: Go types for the parser
// interface and trace-producer interface payloads, decoded from JSON and
// validated against a JSON Schema before being turned into trace.Trace
// values and program grammar facts. It does not implement the parser or the
// trace producer themselves — those remain external to this engine.
//
// Grounded on core/types/validation.go's jsonschema/v5 compiler wiring
// (Draft2020, a custom format registered alongside the standard ones,
// AddResource + Compile against an in-memory schema) and its
// engineVersion-as-semver format checker.
package ifacein

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/mod/semver"
)

// SourceLinePayload mirrors §6's SourceLine wire shape.
type SourceLinePayload struct {
	Text            string `json:"text"`
	Kind            string `json:"kind"` // "guard" | "statement"
	StartLine       int    `json:"start_line"`
	AdditionalGuard string `json:"additional_guard,omitempty"`
	TypeFlags       int    `json:"type_flags,omitempty"`
}

// ParamPayload mirrors one entry of §6's signature.params.
type ParamPayload struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Decl string `json:"decl"`
}

// SignaturePayload mirrors §6's signature block.
type SignaturePayload struct {
	Name       string         `json:"name"`
	ReturnType string         `json:"return_type"`
	Params     []ParamPayload `json:"params"`
}

// StatsPayload mirrors §6's reported static statistics.
type StatsPayload struct {
	NumLOC    int `json:"num_loc"`
	NumIf     int `json:"num_if"`
	NumWhile  int `json:"num_while"`
	NumSwitch int `json:"num_switch"`
	NumCase   int `json:"num_case"`
}

// ParserPayload is the full §6 parser-interface response for one source
// file: sources keyed by line number, the three per-statement variable-use
// maps, function and switch/case tables, the recovered signature, and
// static statistics, tagged with the producing engine's version.
type ParserPayload struct {
	EngineVersion     string                         `json:"engineVersion"`
	Sources           map[string]SourceLinePayload    `json:"sources"`
	UsedVars          map[string][]string             `json:"used_vars"`
	WrittenVars       map[string][]string             `json:"written_vars"`
	DeclaredVars      map[string][]string             `json:"declared_vars"`
	Functions         map[string]string               `json:"functions"`
	SwitchCaseGuards  map[string][]string              `json:"switch_case_guards"`
	Signature         SignaturePayload                `json:"signature"`
	Stats             StatsPayload                     `json:"stats"`
}

// TraceSamplePayload mirrors one §6 trace-producer sample:
// (function, line_no, state).
type TraceSamplePayload struct {
	Function string            `json:"function"`
	LineNo   int               `json:"line_no"`
	State    map[string]string `json:"state"`
	// GuardVal is the observed truth value, populated only when the sampled
	// line is a guard (§3: "a guard occurrence carries its evaluated truth
	// value" in a trace).
	GuardVal *bool `json:"guard_val,omitempty"`
}

// InputSpecPayload mirrors §6's trace-producer input spec:
// {args, array_size_map}.
type InputSpecPayload struct {
	Args         []string          `json:"args"`
	ArraySizeMap map[string]string `json:"array_size_map"`
}

// TracePayload is the full §6 trace-producer response for one input.
type TracePayload struct {
	EngineVersion string               `json:"engineVersion"`
	Input         InputSpecPayload     `json:"input"`
	Samples       []TraceSamplePayload `json:"samples"`
	RetVal        string               `json:"ret_val"`
}

const parserSchemaJSON = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["engineVersion", "sources", "signature"],
	"properties": {
		"engineVersion": {"type": "string", "format": "semver"},
		"sources": {"type": "object"},
		"used_vars": {"type": "object"},
		"written_vars": {"type": "object"},
		"declared_vars": {"type": "object"},
		"functions": {"type": "object"},
		"switch_case_guards": {"type": "object"},
		"signature": {
			"type": "object",
			"required": ["name", "return_type", "params"]
		},
		"stats": {"type": "object"}
	}
}`

const traceSchemaJSON = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["engineVersion", "input", "samples"],
	"properties": {
		"engineVersion": {"type": "string", "format": "semver"},
		"input": {
			"type": "object",
			"required": ["args"]
		},
		"samples": {"type": "array"},
		"ret_val": {"type": "string"}
	}
}`

// Validator compiles and caches the two §6 payload schemas, extending the
// jsonschema/v5 compiler's standard formats with a semver checker for the
// engineVersion field every payload carries.
type Validator struct {
	parserSchema *jsonschema.Schema
	traceSchema  *jsonschema.Schema
}

// NewValidator compiles both schemas once; subsequent Validate calls reuse
// the compiled form.
func NewValidator() (*Validator, error) {
	parserSchema, err := compile("schema://parser.json", parserSchemaJSON)
	if err != nil {
		return nil, fmt.Errorf("compiling parser-interface schema: %w", err)
	}
	traceSchema, err := compile("schema://trace.json", traceSchemaJSON)
	if err != nil {
		return nil, fmt.Errorf("compiling trace-producer schema: %w", err)
	}
	return &Validator{parserSchema: parserSchema, traceSchema: traceSchema}, nil
}

func compile(url, schemaJSON string) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true

	if compiler.Formats == nil {
		compiler.Formats = make(map[string]func(interface{}) bool)
	}
	compiler.Formats["semver"] = semverFormat

	if err := compiler.AddResource(url, strings.NewReader(schemaJSON)); err != nil {
		return nil, err
	}
	return compiler.Compile(url)
}

// semverFormat accepts engineVersion values with or without the "v" prefix
// golang.org/x/mod/semver requires.
func semverFormat(v interface{}) bool {
	s, ok := v.(string)
	if !ok {
		return true
	}
	if !strings.HasPrefix(s, "v") {
		s = "v" + s
	}
	return semver.IsValid(s)
}

// ValidateParser decodes and schema-validates a parser-interface payload.
func (val *Validator) ValidateParser(raw []byte) (*ParserPayload, error) {
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decoding parser payload: %w", err)
	}
	if err := val.parserSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("validating parser payload: %w", err)
	}
	var out ParserPayload
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decoding parser payload: %w", err)
	}
	return &out, nil
}

// ValidateTrace decodes and schema-validates a trace-producer payload.
func (val *Validator) ValidateTrace(raw []byte) (*TracePayload, error) {
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decoding trace payload: %w", err)
	}
	if err := val.traceSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("validating trace payload: %w", err)
	}
	var out TracePayload
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decoding trace payload: %w", err)
	}
	return &out, nil
}
