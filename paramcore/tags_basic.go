package paramcore

import "strings"

// triggerExtraSentinel marks where the trigger tag's output should be
// completed once post-phase LoRA and preset side effects have finished
// contributing to ctx.TriggerPhraseExtra.
const triggerExtraSentinel = "\x00triggerextra"

func registerBasicTags(r *TagRegistry) {
	r.Register("break", PhaseBasic, func(prefix, predata, data string, ctx *ParseContext) (string, bool) {
		return "<break>", true
	})

	r.Register("trigger", PhaseBasic, func(prefix, predata, data string, ctx *ParseContext) (string, bool) {
		return ctx.boundTriggerPhrases() + triggerExtraSentinel, true
	})
}

// boundTriggerPhrases joins the trigger phrase of the current model with
// those of any LoRA already bound onto the Input before this tag ran.
func (c *ParseContext) boundTriggerPhrases() string {
	var phrases []string
	if model, ok := c.Input.TryGet(DescModel); ok && c.Input.ModelRegistry != nil {
		if m, ok := AsModel(model); ok {
			if meta, ok := c.Input.ModelRegistry.Get(m.Canonical); ok && meta.TriggerPhrase != "" {
				phrases = append(phrases, meta.TriggerPhrase)
			}
		}
	}
	if lorasVal, ok := c.Input.TryGet(DescLoras); ok {
		loras, _ := AsStringList(lorasVal)
		for _, canonical := range loras {
			if c.Input.ModelRegistry == nil {
				continue
			}
			if meta, ok := c.Input.ModelRegistry.Get(canonical); ok && meta.TriggerPhrase != "" {
				phrases = append(phrases, meta.TriggerPhrase)
			}
		}
	}
	return strings.Join(phrases, ", ")
}

// finalizeTriggerPhrase substitutes every triggerExtraSentinel occurrence
// in s with the post-parse trigger phrase accumulator, after stripping its
// trailing ", ".
func finalizeTriggerPhrase(s string, ctx *ParseContext) string {
	if !strings.Contains(s, triggerExtraSentinel) {
		return s
	}
	extra := strings.TrimSuffix(ctx.TriggerPhraseExtra.String(), ", ")
	return strings.ReplaceAll(s, triggerExtraSentinel, extra)
}
