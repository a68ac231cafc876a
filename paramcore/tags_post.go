package paramcore

import (
	"regexp"
	"strconv"
	"strings"
)

func registerPostTags(r *TagRegistry) {
	r.Register("lora", PhasePost, tagLora)
	r.Register("segment", PhasePost, tagSection)
	r.Register("object", PhasePost, tagSection)
	r.Register("region", PhasePost, tagSection)
}

func tagLora(prefix, predata, data string, ctx *ParseContext) (string, bool) {
	name := data
	strength := "1"
	if idx := strings.LastIndexByte(data, ':'); idx >= 0 {
		if _, err := strconv.ParseFloat(strings.TrimSpace(data[idx+1:]), 64); err == nil {
			name = data[:idx]
			strength = strings.TrimSpace(data[idx+1:])
		}
	}
	name = strings.TrimSpace(name)

	canonical, ok := fuzzyBestMatch(name, ctx.LoraNames())
	if !ok {
		ctx.Warn("unknown lora: " + name)
		return "", false
	}

	var loras []string
	if v, ok := ctx.Input.TryGet(DescLoras); ok {
		loras, _ = AsStringList(v)
	}
	var weights []string
	if v, ok := ctx.Input.TryGet(DescLoraWeights); ok {
		weights, _ = AsStringList(v)
	}
	var confinement []string
	hadConfinement := false
	if v, ok := ctx.Input.TryGet(DescLoraSectionConfinement); ok {
		confinement, _ = AsStringList(v)
		hadConfinement = true
	}
	if !hadConfinement {
		for range loras {
			confinement = append(confinement, "-1")
		}
	}

	loras = append(loras, canonical)
	weights = append(weights, strength)
	confinement = append(confinement, strconv.Itoa(ctx.SectionID))

	_ = ctx.Input.SetTyped(DescLoras, StringListValue(loras))
	_ = ctx.Input.SetTyped(DescLoraWeights, StringListValue(weights))
	_ = ctx.Input.SetTyped(DescLoraSectionConfinement, StringListValue(confinement))

	if ctx.Input.ModelRegistry != nil {
		if meta, ok := ctx.Input.ModelRegistry.Get(canonical); ok && meta.TriggerPhrase != "" {
			ctx.TriggerPhraseExtra.WriteString(meta.TriggerPhrase)
			ctx.TriggerPhraseExtra.WriteString(", ")
		}
	}
	return "", true
}

var cidSuffixPattern = regexp.MustCompile(`//cid=-?\d+\s*$`)

// tagSection handles segment/object/region: it assigns the tag a fresh
// section id and re-emits it verbatim with a "//cid=N" suffix so a
// downstream region-aware sampler can tie a LoRA's confinement back to
// this tag's placement.
func tagSection(prefix, predata, data string, ctx *ParseContext) (string, bool) {
	ctx.SectionID++
	body := cidSuffixPattern.ReplaceAllString(ctx.RawCurrentTag, "")
	body = strings.TrimSuffix(body, ">")
	return body + "//cid=" + strconv.Itoa(ctx.SectionID) + ">", true
}
