package paramcore

import (
	"regexp"
	"strings"
)

// ApplySpecialLogic runs the ordered normalization passes once per
// request, before the prompt is dispatched: seed materialization,
// variation-seed materialization, raw-resolution splitting, LoRA/weight
// alignment, and early preset extraction.
func (in *Input) ApplySpecialLogic(rng RNG) {
	in.materializeSeed(rng)
	in.materializeVariationSeed(rng)
	in.splitRawResolution()
	in.alignLoraWeights()
	in.extractEarlyPresets()
}

func (in *Input) materializeSeed(rng RNG) {
	cur, hasSeed := in.TryGet(DescSeed)
	curSeed := int64(-1)
	if hasSeed {
		curSeed, _ = AsInt64(cur)
	}
	if in.rawOriginalSeed == nil {
		snap := curSeed
		in.rawOriginalSeed = &snap
	}
	if !hasSeed || curSeed == -1 {
		in.store(DescSeed, Int64Value(int64(rng.Int31())&0x7fffffff))
	}
}

func (in *Input) materializeVariationSeed(rng RNG) {
	v, ok := in.TryGet(DescVariationSeed)
	if !ok {
		return
	}
	n, _ := AsInt64(v)
	if n == -1 {
		in.store(DescVariationSeed, Int64Value(int64(rng.Int31())&0x7fffffff))
	}
}

func (in *Input) splitRawResolution() {
	raw, ok := in.TryGet(DescRawResolution)
	if !ok {
		return
	}
	w, h, ok := parseWxH(raw.String())
	if !ok {
		return
	}
	in.store(DescWidth, Int32Value(w))
	in.store(DescHeight, Int32Value(h))
	in.Remove(DescAltResolutionHeightMult)
}

func (in *Input) alignLoraWeights() {
	lorasVal, ok := in.TryGet(DescLoras)
	if !ok {
		return
	}
	loras, _ := AsStringList(lorasVal)
	var weights []string
	if wv, ok := in.TryGet(DescLoraWeights); ok {
		weights, _ = AsStringList(wv)
	}
	if len(weights) != len(loras) {
		in.addParserWarning("lora_weights length did not match loras; aligning")
		if len(weights) > len(loras) {
			weights = weights[:len(loras)]
		} else {
			for len(weights) < len(loras) {
				weights = append(weights, "1")
			}
		}
		in.store(DescLoraWeights, StringListValue(weights))
	}

	var confinement []string
	if cv, ok := in.TryGet(DescLoraSectionConfinement); ok {
		confinement, _ = AsStringList(cv)
	}
	if len(confinement) != 0 && len(confinement) != len(loras) {
		in.Remove(DescLoraSectionConfinement)
	}
}

var earlyPresetTagPattern = regexp.MustCompile(`<preset\[?[^:>]*\]?:([^>]+)>`)

// extractEarlyPresets scans the prompt for <preset:name> tags without
// running the full interpreter, and applies only the must-load-early
// parameters (model, images, internalbackendtype, exactbackendid) from
// any preset it resolves, so backend selection happens before dispatch.
// The preset name is fuzzy-resolved the same way tagPreset resolves it
// (tags_main.go), rather than requiring an exact PresetStore match.
func (in *Input) extractEarlyPresets() {
	if in.PresetStore == nil {
		return
	}
	prompt, ok := in.TryGet(DescPrompt)
	if !ok {
		return
	}
	names := in.PresetStore.ListNames()
	for _, m := range earlyPresetTagPattern.FindAllStringSubmatch(prompt.String(), -1) {
		name := strings.TrimSpace(m[1])
		canonical, ok := fuzzyBestMatch(name, names)
		if !ok {
			continue
		}
		preset, ok := in.PresetStore.GetPreset(canonical)
		if !ok {
			continue
		}
		for id, text := range preset.ParamMap {
			if !mustLoadEarlyIDs[id] {
				continue
			}
			if desc := in.lookupBuiltin(id); desc != nil {
				in.assignEarlyValue(desc, text)
			}
		}
	}
}

// assignEarlyValue assigns text to desc ahead of the normal dispatch pass.
// A must-load-early preset's "model" value is authored directly against
// the registry's canonical names, not typed by a user, so it is stored as
// already-canonical rather than routed through the fuzzy BestMatch a
// user-facing SetRaw of a MODEL parameter requires. Early extraction must
// not depend on a configured ModelRegistry.
func (in *Input) assignEarlyValue(desc *ParamDescriptor, text string) {
	if desc.DataType == Model {
		in.store(desc, ModelValue{Canonical: text, Subtype: desc.Subtype})
		return
	}
	_ = in.SetRaw(desc, text)
}

func (in *Input) lookupBuiltin(id string) *ParamDescriptor {
	for _, d := range BuiltinDescriptors() {
		if d.ID == id {
			return d
		}
	}
	return nil
}
