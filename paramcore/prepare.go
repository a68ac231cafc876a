package paramcore

// PreparsePrompts expands every prompt-like field for this request: the
// prompt, then the negative prompt, in that order, so a <seq>/<wcs>
// reference in the negative prompt observes cursor advances the prompt
// already made. Sequence staleness is cleared first and collected after,
// so a sequence referenced by neither field this request is forgotten.
func (in *Input) PreparsePrompts() {
	in.Sequences.ClearRanFlags()
	in.parsePromptLikeField(DescPrompt)
	in.parsePromptLikeField(DescNegativePrompt)
	in.Sequences.GCStale()
}

func (in *Input) parsePromptLikeField(desc *ParamDescriptor) {
	v, ok := in.TryGet(desc)
	if !ok {
		return
	}
	ctx := NewParseContext(in, desc.ID, in.Registry)
	result := ctx.Parse(v.String())
	result = ctx.AddBefore.String() + result + ctx.AddAfter.String()
	result = finalizeTriggerPhrase(result, ctx)
	_ = in.SetTyped(desc, StringValue(result))
}
