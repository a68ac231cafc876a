package paramcore

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
)

// Input is the typed parameter map for one generation request: the
// dictionary of id to typed value, ancillary metadata, the feature-flag
// set accumulated as parameters are assigned, and the external
// collaborators the prompt interpreter needs (model/wildcard/preset
// stores, the sequence store, and the tag registry).
type Input struct {
	values      map[string]Value
	descriptors map[string]*ParamDescriptor

	extraMeta      map[string]any
	requiredFlags  map[string]struct{}
	refusalReasons map[string]struct{}

	rawOriginalSeed *int64
	wildcardRandom  RNG

	session Session

	ModelRegistry ModelRegistry
	WildcardStore WildcardStore
	PresetStore   PresetStore
	Sequences     *SequenceStore
	Registry      *TagRegistry
}

// NewInput creates an empty Input bound to session, wired to the given
// external collaborators. sequences and registry are typically shared
// across many requests; session and the rest are per-request.
func NewInput(session Session, modelRegistry ModelRegistry, wildcardStore WildcardStore, presetStore PresetStore, sequences *SequenceStore, registry *TagRegistry) *Input {
	return &Input{
		values:         make(map[string]Value),
		descriptors:    make(map[string]*ParamDescriptor),
		extraMeta:      make(map[string]any),
		requiredFlags:  make(map[string]struct{}),
		refusalReasons: make(map[string]struct{}),
		session:        session,
		ModelRegistry:  modelRegistry,
		WildcardStore:  wildcardStore,
		PresetStore:    presetStore,
		Sequences:      sequences,
		Registry:       registry,
	}
}

// Session returns the session this Input is bound to.
func (in *Input) Session() Session { return in.session }

func (in *Input) addParserWarning(msg string) {
	list, _ := in.extraMeta["parser_warnings"].([]string)
	in.extraMeta["parser_warnings"] = append(list, msg)
	logWarning(msg)
}

func (in *Input) addUsedWildcard(name string) {
	in.appendUniqueMeta("used_wildcards", name)
}

func (in *Input) addUsedEmbedding(name string) {
	in.appendUniqueMeta("used_embeddings", name)
}

func (in *Input) appendUniqueMeta(key, value string) {
	list, _ := in.extraMeta[key].([]string)
	for _, v := range list {
		if v == value {
			return
		}
	}
	in.extraMeta[key] = append(list, value)
}

// SetRaw parses text according to desc.DataType, routing it through
// desc.Clean first when present. If the cleaned text equals desc.IgnoreIf,
// the parameter is removed instead of stored.
func (in *Input) SetRaw(desc *ParamDescriptor, text string) error {
	if desc.Clean != nil {
		prev, _ := in.TryGet(desc)
		var prevText *string
		if prev != nil {
			s := prev.String()
			prevText = &s
		}
		text = desc.Clean(prevText, text)
	}
	if desc.IgnoreIf != nil && text == *desc.IgnoreIf {
		in.Remove(desc)
		return nil
	}

	v, err := parseValue(desc, text, in)
	if err != nil {
		return fmt.Errorf("set_raw %s: %w", desc.ID, err)
	}
	in.store(desc, v)
	return nil
}

// SetTyped stores v directly, unless desc declares a Clean hook, in which
// case the stringified value is routed back through SetRaw so Clean always
// sees a consistent textual form.
func (in *Input) SetTyped(desc *ParamDescriptor, v Value) error {
	if desc.Clean != nil {
		return in.SetRaw(desc, v.String())
	}
	in.store(desc, v)
	return nil
}

func (in *Input) store(desc *ParamDescriptor, v Value) {
	in.values[desc.ID] = v
	in.descriptors[desc.ID] = desc
	if desc.FeatureFlag != nil {
		in.requiredFlags[*desc.FeatureFlag] = struct{}{}
	}
}

// Get returns the stored value for desc, narrowing 64-bit numerics to the
// descriptor's declared width on read. If missing and def is non-empty,
// def is parsed, stored, read back, then removed again, leaving the
// returned value as if it had always been a default rather than stored
// state.
func (in *Input) Get(desc *ParamDescriptor, def string) (Value, error) {
	if v, ok := in.values[desc.ID]; ok {
		return narrow(desc, v), nil
	}
	if def == "" {
		return nil, nil
	}
	if err := in.SetRaw(desc, def); err != nil {
		return nil, fmt.Errorf("get %s default: %w", desc.ID, err)
	}
	v, ok := in.values[desc.ID]
	in.Remove(desc)
	if !ok {
		return nil, nil
	}
	return narrow(desc, v), nil
}

// TryGet returns the stored value for desc without falling back to any
// default.
func (in *Input) TryGet(desc *ParamDescriptor) (Value, bool) {
	v, ok := in.values[desc.ID]
	if !ok {
		return nil, false
	}
	return narrow(desc, v), true
}

// Remove deletes desc's entry. required_flags is left untouched: it is
// monotone for the life of the request.
func (in *Input) Remove(desc *ParamDescriptor) {
	delete(in.values, desc.ID)
}

// Clone duplicates this Input: list-valued entries and extra_meta are
// deep-copied, required_flags is copied, and the session handle plus
// external collaborators are shared.
func (in *Input) Clone() *Input {
	out := &Input{
		values:         make(map[string]Value, len(in.values)),
		descriptors:    make(map[string]*ParamDescriptor, len(in.descriptors)),
		extraMeta:      make(map[string]any, len(in.extraMeta)),
		requiredFlags:  make(map[string]struct{}, len(in.requiredFlags)),
		refusalReasons: make(map[string]struct{}, len(in.refusalReasons)),
		session:        in.session,
		ModelRegistry:  in.ModelRegistry,
		WildcardStore:  in.WildcardStore,
		PresetStore:    in.PresetStore,
		Sequences:      in.Sequences,
		Registry:       in.Registry,
		wildcardRandom: in.wildcardRandom,
	}
	for k, v := range in.values {
		out.values[k] = cloneValue(v)
	}
	for k, d := range in.descriptors {
		out.descriptors[k] = d
	}
	for k, v := range in.extraMeta {
		if list, ok := v.([]string); ok {
			cp := make([]string, len(list))
			copy(cp, list)
			out.extraMeta[k] = cp
			continue
		}
		out.extraMeta[k] = v
	}
	for k := range in.requiredFlags {
		out.requiredFlags[k] = struct{}{}
	}
	if in.rawOriginalSeed != nil {
		seed := *in.rawOriginalSeed
		out.rawOriginalSeed = &seed
	}
	return out
}

// GetImageWidth decodes raw_resolution ("WxH") if present, else falls
// back to the width parameter, defaulting to 512.
func (in *Input) GetImageWidth() int32 {
	w, _ := in.resolutionOrFallback(DescWidth)
	return w
}

// GetImageHeight mirrors GetImageWidth for the vertical dimension,
// applying alt_resolution_height_mult to the raw-resolution height when
// both are present.
func (in *Input) GetImageHeight() int32 {
	_, h := in.resolutionOrFallback(DescHeight)
	return h
}

func (in *Input) resolutionOrFallback(fallbackDesc *ParamDescriptor) (int32, int32) {
	if raw, ok := in.TryGet(DescRawResolution); ok {
		if w, h, ok := parseWxH(raw.String()); ok {
			if mult, ok := in.TryGet(DescAltResolutionHeightMult); ok {
				if f, ok := AsFloat64(mult); ok {
					h = int32(float64(h) * f)
				}
			}
			return w, h
		}
	}
	v, ok := in.TryGet(fallbackDesc)
	if !ok {
		return 512, 512
	}
	n, _ := AsInt32(v)
	if n == 0 {
		return 512, 512
	}
	return n, n
}

func parseWxH(s string) (int32, int32, bool) {
	idx := strings.IndexByte(s, 'x')
	if idx < 0 {
		idx = strings.IndexByte(s, 'X')
	}
	if idx <= 0 || idx == len(s)-1 {
		return 0, 0, false
	}
	w, err1 := strconv.ParseInt(s[:idx], 10, 32)
	h, err2 := strconv.ParseInt(s[idx+1:], 10, 32)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return int32(w), int32(h), true
}

func narrow(desc *ParamDescriptor, v Value) Value {
	switch desc.DataType {
	case Integer:
		if desc.NumericWidth == Width32 {
			if n, ok := AsInt32(v); ok {
				return Int32Value(n)
			}
		} else if n, ok := AsInt64(v); ok {
			return Int64Value(n)
		}
	case Decimal:
		if desc.NumericWidth == Width32 {
			if f, ok := AsFloat32(v); ok {
				return Float32Value(f)
			}
		} else if f, ok := AsFloat64(v); ok {
			return Float64Value(f)
		}
	}
	return v
}

func parseValue(desc *ParamDescriptor, text string, in *Input) (Value, error) {
	switch desc.DataType {
	case Integer:
		n, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q: %w", text, err)
		}
		if desc.NumericWidth == Width32 {
			return Int32Value(int32(n)), nil
		}
		return Int64Value(n), nil
	case Decimal:
		f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid decimal %q: %w", text, err)
		}
		if desc.NumericWidth == Width32 {
			return Float32Value(float32(f)), nil
		}
		return Float64Value(f), nil
	case Boolean:
		b, err := strconv.ParseBool(strings.TrimSpace(text))
		if err != nil {
			return nil, fmt.Errorf("invalid boolean %q: %w", text, err)
		}
		return BoolValue(b), nil
	case Text, Dropdown:
		return StringValue(text), nil
	case Image:
		return ImageValue{Ref: text}, nil
	case ImageList:
		var blobs ImageListValue
		for _, part := range strings.Split(text, "|") {
			if part == "" {
				continue
			}
			blobs = append(blobs, ImageBlob{Ref: part})
		}
		return blobs, nil
	case List:
		var items StringListValue
		for _, part := range strings.Split(text, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			items = append(items, part)
		}
		return items, nil
	case Model:
		if in.ModelRegistry == nil {
			return nil, fmt.Errorf("no model registry configured for %s", desc.ID)
		}
		candidates := in.ModelRegistry.ListNames(in.session)
		canonical, ok := in.ModelRegistry.BestMatch(text, candidates)
		if !ok {
			return nil, fmt.Errorf("no model match for %q", text)
		}
		return ModelValue{Canonical: canonical, Subtype: desc.Subtype}, nil
	default:
		return StringValue(text), nil
	}
}

// seededRNG wraps math/rand.Rand to satisfy the RNG interface with a
// deterministic seed derived per request.
type seededRNG struct{ r *rand.Rand }

func NewSeededRNG(seed int64) RNG {
	return &seededRNG{r: rand.New(rand.NewSource(seed))}
}

func (s *seededRNG) Intn(n int) int  { return s.r.Intn(n) }
func (s *seededRNG) Int31() int32    { return s.r.Int31() }

// WildcardRandom lazily derives and caches the request-scoped RNG used by
// wildcard/random draws: seeded from wildcard_seed when set, else from
// seed+variationseed+17, capped to 31 bits.
func (in *Input) WildcardRandom() RNG {
	if in.wildcardRandom != nil {
		return in.wildcardRandom
	}
	var seed int64
	if ws, ok := in.TryGet(DescWildcardSeed); ok {
		if n, ok := AsInt64(ws); ok && n != 0 {
			seed = n
		}
	}
	if seed == 0 {
		var s, vs int64
		if v, ok := in.TryGet(DescSeed); ok {
			s, _ = AsInt64(v)
		}
		if v, ok := in.TryGet(DescVariationSeed); ok {
			vs, _ = AsInt64(v)
		}
		seed = (s + vs + 17) & 0x7fffffff
	}
	in.wildcardRandom = NewSeededRNG(seed)
	return in.wildcardRandom
}
