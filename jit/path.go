package jit

// PathKind distinguishes the three kinds of segment a response path can carry.
type PathKind int

const (
	// PathKindLiteral segments appear in client-visible error paths and the response structure.
	PathKindLiteral PathKind = iota
	// PathKindVariable segments are resolved at runtime to list indices.
	PathKindVariable
	// PathKindMeta segments exist only to give abstract-type branches unique names and are
	// stripped from any client-visible path.
	PathKindMeta
)

// Path is a persistent cons-list node in a response path. A nil *Path is the empty path (root).
type Path struct {
	Prev *Path
	Key  interface{}
	Kind PathKind
}

// WithKey returns a new path with key appended, sharing the tail with p.
func (p *Path) WithKey(key interface{}, kind PathKind) *Path {
	return &Path{Prev: p, Key: key, Kind: kind}
}

// pathSegment is one flattened entry of a Path, leaf to root or root to leaf depending on caller.
type pathSegment struct {
	Key  interface{}
	Kind PathKind
}

// Flatten yields the path's segments from leaf to root.
func (p *Path) Flatten() []pathSegment {
	var segments []pathSegment
	for n := p; n != nil; n = n.Prev {
		segments = append(segments, pathSegment{Key: n.Key, Kind: n.Kind})
	}
	return segments
}

// AsArray renders the path in root-to-leaf order as a slice suitable for an Error.Path, omitting
// meta segments.
func (p *Path) AsArray() []interface{} {
	segments := p.Flatten()
	out := make([]interface{}, 0, len(segments))
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i].Kind == PathKindMeta {
			continue
		}
		out = append(out, segments[i].Key)
	}
	return out
}

// SkipIncludeKey renders the path's literal segments only, dot-joined root to leaf, for use as the
// key under which per-path skip/include predicates are stored.
func (p *Path) SkipIncludeKey() string {
	segments := p.Flatten()
	parts := make([]string, 0, len(segments))
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i].Kind != PathKindLiteral {
			continue
		}
		if s, ok := segments[i].Key.(string); ok {
			parts = append(parts, s)
		}
	}
	joined := ""
	for i, s := range parts {
		if i > 0 {
			joined += "."
		}
		joined += s
	}
	return joined
}
