package paramcore

import (
	"context"
	"strconv"
	"strings"
)

func registerMainTags(r *TagRegistry) {
	r.Register("random", PhaseMain, tagRandom)
	r.Register("alternate", PhaseMain, tagAlternate)
	r.Register("alt", PhaseMain, tagAlternate)
	r.Register("fromto", PhaseMain, tagFromTo)
	r.Register("wildcard", PhaseMain, tagWildcard)
	r.Register("wc", PhaseMain, tagWildcard)
	r.Register("repeat", PhaseMain, tagRepeat)
	r.Register("preset", PhaseMain, tagPreset)
	r.Register("p", PhaseMain, tagPreset)
	r.Register("embed", PhaseMain, tagEmbed)
	r.Register("embedding", PhaseMain, tagEmbed)
	r.Register("setvar", PhaseMain, tagSetVar)
	r.Register("var", PhaseMain, tagVar)
	r.Register("seq", PhaseMain, tagSeq)
	r.Register("wildcardseq", PhaseMain, tagWildcardSeq)
	r.Register("wcs", PhaseMain, tagWildcardSeq)
}

// parseRandomPredata splits predata into the draw count (default 1) and
// whether the part separator is ", " (predata ends with a comma) or " ".
func parseRandomPredata(predata string) (n int, sep string) {
	n = 1
	sep = " "
	predata = strings.TrimSpace(predata)
	if predata == "" {
		return n, sep
	}
	if strings.HasSuffix(predata, ",") {
		sep = ", "
		predata = strings.TrimSuffix(predata, ",")
	}
	if v, err := strconv.Atoi(strings.TrimSpace(predata)); err == nil && v > 0 {
		n = v
	}
	return n, sep
}

// drawWithoutReplacement draws n items from parts, reshuffling and
// continuing once the pool is exhausted so the same option can repeat
// across refills but never twice within one unexhausted pass.
func drawWithoutReplacement(rng RNG, parts []string, n int) []string {
	if len(parts) == 0 {
		return nil
	}
	pool := shuffled(rng, parts)
	result := make([]string, 0, n)
	for len(result) < n {
		if len(pool) == 0 {
			pool = shuffled(rng, parts)
		}
		result = append(result, pool[0])
		pool = pool[1:]
	}
	return result
}

func shuffled(rng RNG, in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	for i := len(out) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func tagRandom(prefix, predata, data string, ctx *ParseContext) (string, bool) {
	n, sep := parseRandomPredata(predata)
	parts := SplitSmartNonEmpty(data)
	if len(parts) == 0 {
		ctx.Warn("<random> had no options")
		return "", false
	}
	rng := ctx.Input.WildcardRandom()
	chosen := drawWithoutReplacement(rng, parts, n)

	if lo, hi, loF, hiF, isFloat, ok := parseNumericRange(chosen[0]); ok {
		if isFloat {
			ratio := float64(rng.Int31()&0x7fffffff) / float64(1<<31)
			return strconv.FormatFloat(loF+ratio*(hiF-loF), 'g', -1, 64), true
		}
		span := hi - lo + 1
		if span <= 0 {
			span = 1
		}
		v := lo + int64(rng.Intn(int(span)))
		return strconv.FormatInt(v, 10), true
	}

	parsed := make([]string, len(chosen))
	for i, c := range chosen {
		parsed[i] = ctx.Parse(c)
	}
	return strings.Join(parsed, sep), true
}

func tagAlternate(prefix, predata, data string, ctx *ParseContext) (string, bool) {
	parts := SplitSmart(data)
	parsed := make([]string, len(parts))
	for i, p := range parts {
		parsed[i] = ctx.Parse(p)
	}
	return "[" + strings.Join(parsed, "|") + "]", true
}

func tagFromTo(prefix, predata, data string, ctx *ParseContext) (string, bool) {
	parts := SplitSmart(data)
	if len(parts) != 2 {
		ctx.Warn("<fromto> requires exactly two parts")
		return "", false
	}
	if _, err := strconv.ParseFloat(strings.TrimSpace(predata), 64); err != nil {
		ctx.Warn("<fromto> requires a numeric step in its predata")
		return "", false
	}
	a := ctx.Parse(parts[0])
	b := ctx.Parse(parts[1])
	return "[" + a + ":" + b + ":" + predata + "]", true
}

func tagWildcard(prefix, predata, data string, ctx *ParseContext) (string, bool) {
	name := strings.TrimSpace(data)
	if ctx.Input.WildcardStore == nil {
		ctx.Warn("no wildcard store configured")
		return "", false
	}
	files, err := ctx.Input.WildcardStore.ListFiles(context.Background())
	if err != nil {
		ctx.Warn("listing wildcard files: " + err.Error())
		return "", false
	}
	canonical, ok := fuzzyBestMatch(name, files)
	if !ok {
		ctx.Warn("unknown wildcard: " + name)
		return "", false
	}
	file, err := ctx.Input.WildcardStore.Get(context.Background(), canonical)
	if err != nil || len(file.Options) == 0 {
		ctx.Warn("wildcard file had no options: " + canonical)
		return "", false
	}

	ctx.Input.addUsedWildcard(canonical)

	n, sep := parseRandomPredata(predata)
	chosen := drawWithoutReplacement(ctx.Input.WildcardRandom(), file.Options, n)
	parsed := make([]string, len(chosen))
	for i, c := range chosen {
		parsed[i] = ctx.Parse(c)
	}
	return strings.Join(parsed, sep), true
}

func tagRepeat(prefix, predata, data string, ctx *ParseContext) (string, bool) {
	idx := strings.IndexByte(data, ',')
	if idx < 0 {
		ctx.Warn("<repeat> requires a count and text separated by a comma")
		return "", false
	}
	countStr := strings.TrimSpace(data[:idx])
	text := data[idx+1:]

	countF, err := strconv.ParseFloat(countStr, 64)
	if err != nil {
		ctx.Warn("<repeat> count was not numeric: " + countStr)
		return "", false
	}
	count := int(countF)

	var parts []string
	for i := 0; i < count; i++ {
		parts = append(parts, ctx.Parse(text))
	}
	return strings.TrimSpace(strings.Join(parts, " ")), true
}

func tagPreset(prefix, predata, data string, ctx *ParseContext) (string, bool) {
	name := strings.TrimSpace(data)
	if ctx.Input.PresetStore == nil {
		ctx.Warn("no preset store configured")
		return "", false
	}
	names := ctx.Input.PresetStore.ListNames()
	canonical, ok := fuzzyBestMatch(name, names)
	if !ok {
		ctx.Warn("unknown preset: " + name)
		return "", false
	}
	preset, ok := ctx.Input.PresetStore.GetPreset(canonical)
	if !ok {
		ctx.Warn("unknown preset: " + name)
		return "", false
	}
	if preset.ApplyTo != nil {
		preset.ApplyTo(ctx.Input)
	}

	template, ok := preset.ParamMap[ctx.Param]
	if !ok {
		return "", true
	}
	before, after, hasValue := strings.Cut(template, "{value}")
	if hasValue {
		ctx.AddBefore.WriteString(before)
		ctx.AddAfter.WriteString(after)
	} else {
		ctx.AddBefore.WriteString(template)
	}
	return "", true
}

func tagEmbed(prefix, predata, data string, ctx *ParseContext) (string, bool) {
	name := strings.TrimSpace(data)
	names := ctx.EmbeddingNames()
	canonical, ok := fuzzyBestMatch(name, names)
	if !ok {
		ctx.Warn("unknown embedding: " + name)
		return "", true
	}
	if strings.Contains(canonical, " ") {
		ctx.Warn("embedding name contains a space: " + canonical)
	}
	ctx.Input.addUsedEmbedding(canonical)
	return "\x00swarmembed:" + canonical + "\x00end", true
}

func tagSetVar(prefix, predata, data string, ctx *ParseContext) (string, bool) {
	name := strings.TrimSpace(predata)
	if name == "" {
		ctx.Warn("<setvar> requires a variable name in its predata")
		return "", false
	}
	parsed := ctx.Parse(data)
	ctx.Variables[name] = parsed
	return parsed, true
}

func tagVar(prefix, predata, data string, ctx *ParseContext) (string, bool) {
	name := strings.TrimSpace(data)
	v, ok := ctx.Variables[name]
	if !ok {
		ctx.Warn("variable not set: " + name)
		return "", true
	}
	return v, true
}

func tagSeq(prefix, predata, data string, ctx *ParseContext) (string, bool) {
	key := SeqKey(data)
	ctx.Input.Sequences.EnsureInitialized(key, SplitSmartNonEmpty(data))
	v, ok := ctx.Input.Sequences.Advance(key)
	if !ok {
		ctx.Warn("<seq> had no options")
		return "", false
	}
	return v, true
}

func tagWildcardSeq(prefix, predata, data string, ctx *ParseContext) (string, bool) {
	name := strings.TrimSpace(data)
	if ctx.Input.WildcardStore == nil {
		ctx.Warn("no wildcard store configured")
		return "", false
	}
	files, err := ctx.Input.WildcardStore.ListFiles(context.Background())
	if err != nil {
		ctx.Warn("listing wildcard files: " + err.Error())
		return "", false
	}
	canonical, ok := fuzzyBestMatch(name, files)
	if !ok {
		ctx.Warn("unknown wildcard: " + name)
		return "", false
	}
	file, err := ctx.Input.WildcardStore.Get(context.Background(), canonical)
	if err != nil || len(file.Options) == 0 {
		ctx.Warn("wildcard file had no options: " + canonical)
		return "", false
	}

	ctx.Input.addUsedWildcard(canonical)

	key := WildcardSeqKey(canonical, file.Options)
	ctx.Input.Sequences.EnsureInitialized(key, file.Options)
	v, ok := ctx.Input.Sequences.Advance(key)
	if !ok {
		ctx.Warn("<wildcardseq> had no options")
		return "", false
	}
	return ctx.Parse(v), true
}
