package jit

// WireFormat selects the on-the-wire encoding a CompiledQuery's Stringify hook produces.
type WireFormat int

const (
	// WireFormatJSON stringifies execution results with jsoniter, matching the default GraphQL
	// transport.
	WireFormatJSON WireFormat = iota
	// WireFormatMsgpack stringifies execution results with msgpack, for transports that have
	// already negotiated a binary encoding.
	WireFormatMsgpack
)

// CompileOptions configures a single Compile call. The zero value is the default: standard scalar
// serialization, JSON wire format, stack-capturing resolver errors, no info enrichment.
type CompileOptions struct {
	// DisableLeafSerialization skips Serialize for the standard scalars (Int, Float, String,
	// Boolean, ID) and for enums, passing a resolver's return value straight through to the
	// response. Custom scalars are unaffected.
	DisableLeafSerialization bool

	// CustomSerializers overrides the Serialize step for specific named types by name, taking
	// precedence over both the type's own Serialize and DisableLeafSerialization.
	CustomSerializers map[string]func(interface{}) (interface{}, error)

	// ResolverInfoEnricher, if set, is invoked before every resolver call to compute that call's
	// ResolveInfo.Enriched contribution. The fieldExpansion key is set by the engine itself,
	// whether or not an enricher is configured.
	ResolverInfoEnricher ResolverInfoEnricher

	// DisableCapturingStackErrors skips wrapping resolver errors with github.com/pkg/errors'
	// stack-capturing Error.Stack, trading debuggability for allocation cost on the happy path.
	DisableCapturingStackErrors bool

	// WireFormat selects the encoding CompiledQuery.Stringify produces.
	WireFormat WireFormat

	// CustomJSONSerializer swaps the default jsoniter.ConfigCompatibleWithStandardLibrary for a
	// faster, non-standard-library-compatible jsoniter configuration (no HTML escaping, no map key
	// sorting). Ignored when WireFormat is WireFormatMsgpack.
	CustomJSONSerializer bool
}

func (o *CompileOptions) customSerializers() map[string]func(interface{}) (interface{}, error) {
	if o == nil {
		return nil
	}
	return o.CustomSerializers
}

func (o *CompileOptions) disableLeafSerialization() bool {
	return o != nil && o.DisableLeafSerialization
}

func (o *CompileOptions) infoEnricher() ResolverInfoEnricher {
	if o == nil {
		return nil
	}
	return o.ResolverInfoEnricher
}
