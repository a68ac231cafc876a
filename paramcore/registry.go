package paramcore

// Phase is the pass a tag handler runs in. The interpreter scans a
// prompt-like string three times per field, once per phase, in the order
// Basic, Main, Post.
type Phase int

const (
	PhaseBasic Phase = iota
	PhaseMain
	PhasePost
)

// TagFunc is a tag handler. prefix is the lowercased tag prefix, predata is
// the optional bracketed segment before the colon, data is everything
// after the colon (empty for Basic tags). matched=false leaves the
// original "<...>" text in the output unchanged.
type TagFunc func(prefix, predata, data string, ctx *ParseContext) (text string, matched bool)

// LengthEstimatorFunc estimates the worst-case textual length a tag could
// contribute, with no side effects and no session/RNG access.
type LengthEstimatorFunc func(prefix, predata, data string, est *LengthEstimator) int

type registeredHandler struct {
	phase Phase
	fn    TagFunc
}

// TagRegistry is the three-phase handler table plus the parallel
// length-estimator table. It is read-only after construction: callers
// build one with NewTagRegistry/DefaultTagRegistry at startup and never
// mutate it from request-processing goroutines, so no locking is needed.
type TagRegistry struct {
	handlers   map[string]registeredHandler
	estimators map[string]LengthEstimatorFunc
}

// NewTagRegistry creates an empty registry. Use this to assemble a custom
// set of tag handlers.
func NewTagRegistry() *TagRegistry {
	return &TagRegistry{
		handlers:   make(map[string]registeredHandler),
		estimators: make(map[string]LengthEstimatorFunc),
	}
}

// Register adds a handler for prefix in the given phase. prefix is
// lowercased on registration; lookups lowercase the tag's prefix too.
func (r *TagRegistry) Register(prefix string, phase Phase, fn TagFunc) {
	r.handlers[lowerASCII(prefix)] = registeredHandler{phase: phase, fn: fn}
}

// RegisterLengthEstimator adds a length estimator for prefix.
func (r *TagRegistry) RegisterLengthEstimator(prefix string, fn LengthEstimatorFunc) {
	r.estimators[lowerASCII(prefix)] = fn
}

// lookup returns the handler registered for prefix, and whether it runs in
// phase. A handler registered for a different phase is reported as not
// found so the scanner leaves the tag untouched until its own phase.
func (r *TagRegistry) lookup(prefix string, phase Phase) (TagFunc, bool) {
	h, ok := r.handlers[lowerASCII(prefix)]
	if !ok || h.phase != phase {
		return nil, false
	}
	return h.fn, true
}

func (r *TagRegistry) lengthEstimator(prefix string) (LengthEstimatorFunc, bool) {
	fn, ok := r.estimators[lowerASCII(prefix)]
	return fn, ok
}

func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// DefaultTagRegistry builds the registry with every built-in tag handler
// registered, assigned to its three-phase pass.
func DefaultTagRegistry() *TagRegistry {
	r := NewTagRegistry()
	registerBasicTags(r)
	registerMainTags(r)
	registerPostTags(r)
	registerLengthEstimators(r)
	return r
}
