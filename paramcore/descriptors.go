package paramcore

// The descriptors below are the well-known parameter ids the core itself
// reads or writes directly: seed materialization, resolution splitting,
// LoRA alignment, and prompt-like fields. Everything else is supplied by
// the caller's own descriptor set (component B) and is opaque to this
// package beyond its DataType/NumericWidth.

var DescSeed = &ParamDescriptor{ID: "seed", DataType: Integer, NumericWidth: Width64}
var DescVariationSeed = &ParamDescriptor{ID: "variationseed", DataType: Integer, NumericWidth: Width64}
var DescWildcardSeed = &ParamDescriptor{ID: "wildcardseed", DataType: Integer, NumericWidth: Width64}

var DescRawResolution = &ParamDescriptor{ID: "rawresolution", DataType: Text}
var DescWidth = &ParamDescriptor{ID: "width", DataType: Integer, NumericWidth: Width32}
var DescHeight = &ParamDescriptor{ID: "height", DataType: Integer, NumericWidth: Width32}
var DescAltResolutionHeightMult = &ParamDescriptor{ID: "altresolutionheightmult", DataType: Decimal, NumericWidth: Width64}

var DescLoras = &ParamDescriptor{ID: "loras", DataType: List}
var DescLoraWeights = &ParamDescriptor{ID: "loraweights", DataType: List}
var DescLoraSectionConfinement = &ParamDescriptor{ID: "lorasectionconfinement", DataType: List}

var DescPrompt = &ParamDescriptor{ID: "prompt", DataType: Text}
var DescNegativePrompt = &ParamDescriptor{ID: "negativeprompt", DataType: Text}
var DescOriginalPrompt = &ParamDescriptor{ID: "originalprompt", DataType: Text}
var DescOriginalNegativePrompt = &ParamDescriptor{ID: "originalnegativeprompt", DataType: Text}

var DescModel = &ParamDescriptor{ID: "model", DataType: Model, Subtype: "model"}
var DescImages = &ParamDescriptor{ID: "images", DataType: ImageList}
var DescInternalBackendType = &ParamDescriptor{ID: "internalbackendtype", DataType: Text}
var DescExactBackendID = &ParamDescriptor{ID: "exactbackendid", DataType: Text}

// mustLoadEarlyIDs is the allowlist early preset extraction applies to:
// only these ids from a preset's param_map are assigned before the main
// dispatch pass runs.
var mustLoadEarlyIDs = map[string]bool{
	"model":               true,
	"images":              true,
	"internalbackendtype": true,
	"exactbackendid":      true,
}

// BuiltinDescriptors returns the descriptor set above, for callers that
// want to seed an Input's lookup table without hand-listing every id.
func BuiltinDescriptors() []*ParamDescriptor {
	return []*ParamDescriptor{
		DescSeed, DescVariationSeed, DescWildcardSeed,
		DescRawResolution, DescWidth, DescHeight, DescAltResolutionHeightMult,
		DescLoras, DescLoraWeights, DescLoraSectionConfinement,
		DescPrompt, DescNegativePrompt, DescOriginalPrompt, DescOriginalNegativePrompt,
		DescModel, DescImages, DescInternalBackendType, DescExactBackendID,
	}
}
