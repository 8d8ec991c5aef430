package jit

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/vmihailenco/msgpack"
)

// stringify is the wire-encoding hook spec.md §6 describes: func(interface{}) ([]byte, error).
// jsoniter satisfies it directly; so does vmihailenco/msgpack. Picking between them is a single
// field comparison on CompileOptions rather than a type switch at every call site.
type stringify func(interface{}) ([]byte, error)

var defaultJSONAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// fastJSONAPI trades strict encoding/json compatibility (HTML escaping, map key sorting) for
// throughput; selected by CompileOptions.CustomJSONSerializer.
var fastJSONAPI = jsoniter.Config{
	EscapeHTML:             false,
	SortMapKeys:            false,
	ValidateJsonRawMessage: true,
}.Froze()

func stringifyFor(options *CompileOptions) stringify {
	if options != nil {
		switch options.WireFormat {
		case WireFormatMsgpack:
			return msgpack.Marshal
		}
		if options.CustomJSONSerializer {
			return fastJSONAPI.Marshal
		}
	}
	return defaultJSONAPI.Marshal
}

// wireResult is the GraphQL response envelope: "data" alongside "errors", each omitted when empty
// per the wire formats both jsoniter and msgpack agree on via struct tags.
type wireResult struct {
	Data   interface{}  `json:"data,omitempty" msgpack:"data,omitempty"`
	Errors []wireError  `json:"errors,omitempty" msgpack:"errors,omitempty"`
}

type wireError struct {
	Message   string        `json:"message" msgpack:"message"`
	Locations []Location    `json:"locations,omitempty" msgpack:"locations,omitempty"`
	Path      []interface{} `json:"path,omitempty" msgpack:"path,omitempty"`
}

// Stringify renders result into the wire format selected at compile time (JSON, optionally with
// CustomJSONSerializer's faster config, or msgpack for WireFormatMsgpack).
func (q *CompiledQuery) Stringify(result *ExecutionResult) ([]byte, error) {
	return stringifyFor(q.options)(wireResult{
		Data:   result.Data,
		Errors: stringifyErrors(result.Errors),
	})
}

func stringifyErrors(errs []*Error) []wireError {
	if len(errs) == 0 {
		return nil
	}
	out := make([]wireError, len(errs))
	for i, e := range errs {
		out[i] = wireError{Message: e.Message, Locations: e.Locations, Path: e.Path}
	}
	return out
}
