package paramcore

import "testing"

func TestApplySpecialLogicMaterializesSeed(t *testing.T) {
	in := newTestInput(nil, nil, nil)
	in.ApplySpecialLogic(NewSeededRNG(1))

	seed, ok := in.TryGet(DescSeed)
	if !ok {
		t.Fatal("expected a materialized seed")
	}
	n, _ := AsInt64(seed)
	if n < 0 || n >= (1<<31) {
		t.Errorf("seed = %d, want a 31-bit non-negative value", n)
	}

	if in.rawOriginalSeed == nil {
		t.Fatal("expected raw_original_seed to be recorded")
	}
	if *in.rawOriginalSeed != -1 {
		t.Errorf("raw_original_seed = %d, want -1 (the pre-materialization default)", *in.rawOriginalSeed)
	}
}

func TestApplySpecialLogicPreservesExplicitSeed(t *testing.T) {
	in := newTestInput(nil, nil, nil)
	mustSetRaw(t, in, DescSeed, "12345")
	in.ApplySpecialLogic(NewSeededRNG(1))

	seed, _ := in.TryGet(DescSeed)
	n, _ := AsInt64(seed)
	if n != 12345 {
		t.Errorf("seed = %d, want 12345 unchanged", n)
	}
	if *in.rawOriginalSeed != 12345 {
		t.Errorf("raw_original_seed = %d, want 12345", *in.rawOriginalSeed)
	}
}

func TestApplySpecialLogicMaterializesVariationSeed(t *testing.T) {
	in := newTestInput(nil, nil, nil)
	mustSetRaw(t, in, DescVariationSeed, "-1")
	in.ApplySpecialLogic(NewSeededRNG(1))

	vs, ok := in.TryGet(DescVariationSeed)
	if !ok {
		t.Fatal("expected variation seed to remain set")
	}
	n, _ := AsInt64(vs)
	if n == -1 {
		t.Error("variation seed was not materialized")
	}
}

func TestApplySpecialLogicSplitsRawResolution(t *testing.T) {
	in := newTestInput(nil, nil, nil)
	mustSetRaw(t, in, DescRawResolution, "832x1216")
	mustSetRaw(t, in, DescAltResolutionHeightMult, "1.5")
	in.ApplySpecialLogic(NewSeededRNG(1))

	w, _ := in.TryGet(DescWidth)
	h, _ := in.TryGet(DescHeight)
	if wv, _ := AsInt32(w); wv != 832 {
		t.Errorf("width = %v, want 832", wv)
	}
	if hv, _ := AsInt32(h); hv != 1216 {
		t.Errorf("height = %v, want 1216", hv)
	}
	if _, ok := in.TryGet(DescAltResolutionHeightMult); ok {
		t.Error("expected alt_resolution_height_mult to be removed after splitting raw_resolution")
	}
}

func TestApplySpecialLogicAlignsLoraWeights(t *testing.T) {
	in := newTestInput(nil, nil, nil)
	mustSetRaw(t, in, DescLoras, "a,b,c")
	mustSetRaw(t, in, DescLoraWeights, "0.5")
	in.ApplySpecialLogic(NewSeededRNG(1))

	weights, _ := in.TryGet(DescLoraWeights)
	wlist, _ := AsStringList(weights)
	if len(wlist) != 3 {
		t.Fatalf("lora_weights = %#v, want 3 entries", wlist)
	}
	if wlist[0] != "0.5" || wlist[1] != "1" || wlist[2] != "1" {
		t.Errorf("lora_weights = %#v, want [0.5 1 1]", wlist)
	}

	warnings, _ := in.extraMeta["parser_warnings"].([]string)
	if len(warnings) == 0 {
		t.Error("expected a mismatch warning")
	}
}

func TestApplySpecialLogicTruncatesExtraLoraWeights(t *testing.T) {
	in := newTestInput(nil, nil, nil)
	mustSetRaw(t, in, DescLoras, "a,b")
	mustSetRaw(t, in, DescLoraWeights, "0.1,0.2,0.3")
	in.ApplySpecialLogic(NewSeededRNG(1))

	weights, _ := in.TryGet(DescLoraWeights)
	wlist, _ := AsStringList(weights)
	if len(wlist) != 2 || wlist[0] != "0.1" || wlist[1] != "0.2" {
		t.Errorf("lora_weights = %#v, want [0.1 0.2]", wlist)
	}
}

func TestApplySpecialLogicDropsShortConfinement(t *testing.T) {
	in := newTestInput(nil, nil, nil)
	mustSetRaw(t, in, DescLoras, "a,b")
	mustSetRaw(t, in, DescLoraWeights, "1,1")
	mustSetRaw(t, in, DescLoraSectionConfinement, "-1")
	in.ApplySpecialLogic(NewSeededRNG(1))

	if _, ok := in.TryGet(DescLoraSectionConfinement); ok {
		t.Error("expected a too-short confinement list to be discarded")
	}
}

func TestApplySpecialLogicEarlyPresetExtraction(t *testing.T) {
	ps := newFakePresetStore()
	ps.add("fast", Preset{ParamMap: map[string]string{
		"model":               "flux-fast",
		"internalbackendtype": "comfy",
		"steps":               "4",
	}})
	in := newTestInput(nil, nil, ps)
	mustSetRaw(t, in, DescPrompt, "<preset:fast> a cat")
	in.ApplySpecialLogic(NewSeededRNG(1))

	model, ok := in.TryGet(DescModel)
	if !ok {
		t.Fatal("expected model to be assigned early from the preset")
	}
	if model.String() != "flux-fast" {
		t.Errorf("model = %q, want %q", model.String(), "flux-fast")
	}
	backend, ok := in.TryGet(DescInternalBackendType)
	if !ok || backend.String() != "comfy" {
		t.Errorf("internalbackendtype = %q,%v, want %q,true", backend, ok, "comfy")
	}
	if _, ok := in.values["steps"]; ok {
		t.Error("expected a non-early-allowlisted id to NOT be assigned by early extraction")
	}
}
