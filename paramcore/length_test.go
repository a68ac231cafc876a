package paramcore

import "testing"

func TestEstimateLengthPlainText(t *testing.T) {
	r := DefaultTagRegistry()
	got := EstimateLength("a cat sitting", r, nil)
	if got != len("a cat sitting") {
		t.Errorf("EstimateLength = %d, want %d", got, len("a cat sitting"))
	}
}

func TestEstimateLengthRandomTakesLongestOption(t *testing.T) {
	r := DefaultTagRegistry()
	got := EstimateLength("<random:a|bb|ccc>", r, nil)
	if got != 3 {
		t.Errorf("EstimateLength = %d, want 3 (longest of a/bb/ccc)", got)
	}
}

func TestEstimateLengthAlternateSumsAllOptions(t *testing.T) {
	r := DefaultTagRegistry()
	got := EstimateLength("<alternate:aa|bb|cc>", r, nil)
	want := (2 + 1) * 3
	if got != want {
		t.Errorf("EstimateLength = %d, want %d", got, want)
	}
}

func TestEstimateLengthRepeatMultipliesByCount(t *testing.T) {
	r := DefaultTagRegistry()
	got := EstimateLength("<repeat:3,abcd>", r, nil)
	if got != 12 {
		t.Errorf("EstimateLength = %d, want 12", got)
	}
}

func TestEstimateLengthWildcardFallsBackWithoutHook(t *testing.T) {
	r := DefaultTagRegistry()
	got := EstimateLength("<wildcard:colors>", r, nil)
	if got != fallbackWildcardLen {
		t.Errorf("EstimateLength = %d, want the fallback %d", got, fallbackWildcardLen)
	}
}

func TestEstimateLengthUnknownTagCountsItsOwnLiteral(t *testing.T) {
	r := DefaultTagRegistry()
	tag := "<notatag:abc>"
	got := EstimateLength(tag, r, nil)
	if got != len(tag) {
		t.Errorf("EstimateLength = %d, want %d (literal unknown tag)", got, len(tag))
	}
}

func TestEstimateLengthTriggerAndLoraContributeNothing(t *testing.T) {
	r := DefaultTagRegistry()
	got := EstimateLength("<trigger><lora:x:1>", r, nil)
	if got != 0 {
		t.Errorf("EstimateLength = %d, want 0", got)
	}
}

func TestEstimateLengthDoesNotAdvanceSequenceCursor(t *testing.T) {
	s := NewSequenceStore()
	key := SeqKey("a|b|c")
	s.EnsureInitialized(key, []string{"a", "b", "c"})

	r := DefaultTagRegistry()
	for i := 0; i < 5; i++ {
		EstimateLength("<seq:a|b|c>", r, s)
	}

	v, ok := s.Advance(key)
	if !ok || v != "a" {
		t.Errorf("first real Advance after repeated estimation = %q,%v, want \"a\",true (estimation must not consume the cursor)", v, ok)
	}
}

func TestEstimateFieldLengthUsesStoredValue(t *testing.T) {
	in := newTestInput(nil, nil, nil)
	mustSetRaw(t, in, DescPrompt, "<random:a|bb|ccc> rest")

	got := in.EstimateFieldLength(DescPrompt)
	want := 3 + len(" rest")
	if got != want {
		t.Errorf("EstimateFieldLength = %d, want %d", got, want)
	}
}

func TestEstimateFieldLengthMissingFieldIsZero(t *testing.T) {
	in := newTestInput(nil, nil, nil)
	if got := in.EstimateFieldLength(DescPrompt); got != 0 {
		t.Errorf("EstimateFieldLength = %d, want 0 for an unset field", got)
	}
}
