package paramcore

import "testing"

func TestSequenceAdvanceWraps(t *testing.T) {
	s := NewSequenceStore()
	key := SeqKey("a|b|c")
	s.EnsureInitialized(key, []string{"a", "b", "c"})

	want := []string{"a", "b", "c", "a"}
	for i, w := range want {
		got, ok := s.Advance(key)
		if !ok {
			t.Fatalf("Advance #%d: not ok", i)
		}
		if got != w {
			t.Errorf("Advance #%d = %q, want %q", i, got, w)
		}
	}
}

func TestSequencePeekDoesNotAdvance(t *testing.T) {
	s := NewSequenceStore()
	key := SeqKey("a|b")
	s.EnsureInitialized(key, []string{"a", "b"})

	for i := 0; i < 3; i++ {
		v, ok := s.Peek(key)
		if !ok || v != "a" {
			t.Fatalf("Peek #%d = %q,%v, want \"a\",true", i, v, ok)
		}
	}
	v, _ := s.Advance(key)
	if v != "a" {
		t.Errorf("first Advance after repeated Peek = %q, want %q", v, "a")
	}
}

func TestSequenceViaFullPromptRoundThreeTimes(t *testing.T) {
	in := newTestInput(nil, nil, nil)
	mustSetRaw(t, in, DescPrompt, "<seq:a|b|c>")
	mustSetRaw(t, in, DescSeed, "1")

	want := []string{"a", "b", "c", "a"}
	for i, w := range want {
		in.PreparsePrompts()
		got, _ := in.TryGet(DescPrompt)
		if got.String() != w {
			t.Errorf("round %d: prompt = %q, want %q", i, got.String(), w)
		}
		mustSetRaw(t, in, DescPrompt, "<seq:a|b|c>")
	}
}

func TestGCStaleForgetsUnreferencedSequences(t *testing.T) {
	in := newTestInput(nil, nil, nil)
	mustSetRaw(t, in, DescPrompt, "<seq:a|b>")
	mustSetRaw(t, in, DescSeed, "1")
	in.PreparsePrompts()

	key := SeqKey("a|b")
	if _, ok := in.Sequences.Peek(key); !ok {
		t.Fatal("expected the sequence cursor to exist after the first preparse")
	}

	mustSetRaw(t, in, DescPrompt, "a prompt with no sequence tag")
	in.PreparsePrompts()

	if _, ok := in.Sequences.Peek(key); ok {
		t.Error("expected the sequence cursor to be garbage-collected once unreferenced")
	}
}

func TestWildcardSeqKeyChangesWithOptions(t *testing.T) {
	k1 := WildcardSeqKey("colors", []string{"red", "blue"})
	k2 := WildcardSeqKey("colors", []string{"red", "blue", "green"})
	if k1 == k2 {
		t.Error("expected different option sets to produce different sequence keys")
	}
	k3 := WildcardSeqKey("colors", []string{"red", "blue"})
	if k1 != k3 {
		t.Error("expected identical option sets to produce the same sequence key")
	}
}
