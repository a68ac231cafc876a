package paramcore

import (
	"strconv"
	"strings"
)

// maxParseDepth caps recursive tag expansion: on entering Parse with depth
// already past this, the interpreter records at most one warning per
// recursion chain and returns the input unchanged.
const maxParseDepth = 1000

// ParseContext carries the per-field state threaded through one
// prompt-like parameter's recursive expansion: the owning Input, the
// param id being parsed, lazily resolved name candidate lists, local
// variables, section numbering for LoRA confinement, the recursion depth
// counter, and the preset-splice/trigger-phrase accumulators. A fresh
// ParseContext is created per prompt-like field; nothing on it survives
// across fields.
type ParseContext struct {
	Input *Input
	Param string

	Registry *TagRegistry

	Variables map[string]string
	SectionID int

	depth       int
	depthWarned bool

	PreData       string
	RawCurrentTag string

	AddBefore          strings.Builder
	AddAfter           strings.Builder
	TriggerPhraseExtra strings.Builder

	embeddingNames []string
	embeddingsInit bool
	loraNamesCache []string
	loraNamesInit  bool
}

// NewParseContext creates the per-field context used to expand one
// prompt-like parameter's value.
func NewParseContext(input *Input, param string, registry *TagRegistry) *ParseContext {
	return &ParseContext{
		Input:     input,
		Param:     param,
		Registry:  registry,
		Variables: make(map[string]string),
	}
}

// EmbeddingNames lazily resolves and caches the embedding candidate pool
// for fuzzy matching, pulled from the model registry.
func (c *ParseContext) EmbeddingNames() []string {
	if !c.embeddingsInit {
		c.embeddingsInit = true
		if c.Input.ModelRegistry != nil {
			c.embeddingNames = c.Input.ModelRegistry.ListNames(c.Input.Session())
		}
	}
	return c.embeddingNames
}

// LoraNames lazily resolves and caches the LoRA candidate pool.
func (c *ParseContext) LoraNames() []string {
	if !c.loraNamesInit {
		c.loraNamesInit = true
		if c.Input.ModelRegistry != nil {
			c.loraNamesCache = c.Input.ModelRegistry.ListNames(c.Input.Session())
		}
	}
	return c.loraNamesCache
}

// Warn records a soft, user-facing warning: appended to
// extra_meta["parser_warnings"] and logged. The interpreter always
// continues after a warning.
func (c *ParseContext) Warn(msg string) {
	c.Input.addParserWarning(msg)
}

// Parse recursively expands every tag in s, running the three-phase
// pipeline (basic, main, post) once per call. Handlers that need to
// recurse into nested data MUST call ctx.Parse so the depth cap applies
// uniformly.
func (c *ParseContext) Parse(s string) string {
	c.depth++
	defer func() { c.depth-- }()

	if c.depth > maxParseDepth {
		if !c.depthWarned {
			c.depthWarned = true
			c.Warn("recursive prompt tags exceeded the depth cap; remaining tags left unexpanded")
		}
		return s
	}

	out := c.dispatchPhase(s, PhaseBasic)
	out = c.dispatchPhase(out, PhaseMain)
	out = c.dispatchPhase(out, PhasePost)
	return out
}

// dispatchPhase runs a single left-to-right scan of s, replacing every tag
// whose registered handler matches phase and leaving every other tag
// (wrong phase, or unknown prefix) as literal text for a later pass.
func (c *ParseContext) dispatchPhase(s string, phase Phase) string {
	var out strings.Builder
	i := 0
	for i < len(s) {
		lt := strings.IndexByte(s[i:], '<')
		if lt < 0 {
			out.WriteString(s[i:])
			break
		}
		lt += i
		out.WriteString(s[i:lt])

		end, interior, ok := findTagSpan(s, lt)
		if !ok {
			out.WriteByte('<')
			i = lt + 1
			continue
		}

		prefix, predata, data, hasColon := splitTagInterior(interior)
		fn, found := c.Registry.lookup(prefix, phase)
		if found {
			c.PreData = predata
			c.RawCurrentTag = s[lt : end+1]
			if text, matched := fn(prefix, predata, dataOrEmpty(hasColon, data), c); matched {
				out.WriteString(text)
				i = end + 1
				continue
			}
		}
		out.WriteString(s[lt : end+1])
		i = end + 1
	}
	return out.String()
}

func dataOrEmpty(hasColon bool, data string) string {
	if !hasColon {
		return ""
	}
	return data
}

// findTagSpan locates the '>' that balances the '<' at position start,
// tracking nested "<...>" depth, and returns the index of that '>' plus
// the interior text between them.
func findTagSpan(s string, start int) (end int, interior string, ok bool) {
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			depth--
			if depth == 0 {
				return i, s[start+1 : i], true
			}
		}
	}
	return 0, "", false
}

// splitTagInterior parses "prefix[predata]:data" into its parts. The
// colon that separates prefix/predata from data is the first one found at
// bracket depth 0 (so nested tags in data may contain their own colons).
func splitTagInterior(interior string) (prefix, predata, data string, hasColon bool) {
	depth := 0
	colonIdx := -1
	for i := 0; i < len(interior); i++ {
		switch interior[i] {
		case '<':
			depth++
		case '>':
			if depth > 0 {
				depth--
			}
		case ':':
			if depth == 0 && colonIdx < 0 {
				colonIdx = i
			}
		}
	}

	var head string
	if colonIdx >= 0 {
		head = interior[:colonIdx]
		data = interior[colonIdx+1:]
		hasColon = true
	} else {
		head = interior
	}

	if lb := strings.IndexByte(head, '['); lb >= 0 {
		if rb := strings.LastIndexByte(head, ']'); rb > lb {
			predata = head[lb+1 : rb]
			prefix = head[:lb]
		} else {
			prefix = head
		}
	} else {
		prefix = head
	}
	prefix = lowerASCII(strings.TrimSpace(prefix))
	return prefix, predata, data, hasColon
}

// parseNumericRange parses "lo-hi" as either an integer or decimal range,
// trying integer first and falling back to decimal.
func parseNumericRange(s string) (loInt, hiInt int64, loF, hiF float64, isFloat, ok bool) {
	idx := strings.IndexByte(s, '-')
	if idx <= 0 || idx == len(s)-1 {
		return 0, 0, 0, 0, false, false
	}
	loStr, hiStr := s[:idx], s[idx+1:]

	if lo, err1 := strconv.ParseInt(loStr, 10, 64); err1 == nil {
		if hi, err2 := strconv.ParseInt(hiStr, 10, 64); err2 == nil {
			return lo, hi, 0, 0, false, true
		}
	}
	if lo, err1 := strconv.ParseFloat(loStr, 64); err1 == nil {
		if hi, err2 := strconv.ParseFloat(hiStr, 64); err2 == nil {
			return 0, 0, lo, hi, true, true
		}
	}
	return 0, 0, 0, 0, false, false
}
