package paramcore

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// SequenceKey identifies one sequence cursor: a tag kind ("seq" or "wc")
// plus a discriminant (the raw option list for "seq", or the canonical
// wildcard name + options hash for "wc").
type SequenceKey struct {
	Kind         string
	Discriminant string
}

// SequenceCursor is the per-key position into a sequence's option list.
type SequenceCursor struct {
	Values    []string
	NextIndex int
	JustRan   bool
}

// SequenceStore is process-wide shared mutable state guarded by a single
// coarse mutex. Tests and callers should hold their own *SequenceStore
// instance rather than relying on a package-level global, since a sequence
// cursor's position is meaningful only relative to one running server.
type SequenceStore struct {
	mu      sync.Mutex
	cursors map[SequenceKey]*SequenceCursor
}

// NewSequenceStore creates an empty sequence store.
func NewSequenceStore() *SequenceStore {
	return &SequenceStore{cursors: make(map[SequenceKey]*SequenceCursor)}
}

// EnsureInitialized lazily populates the cursor for key with values the
// first time it is referenced, leaving an already-initialized cursor
// untouched. It does not advance or peek.
func (s *SequenceStore) EnsureInitialized(key SequenceKey, values []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cursors[key]; ok {
		return
	}
	s.cursors[key] = &SequenceCursor{Values: values}
}

// Peek returns the value the next Advance call would return, without
// advancing the cursor or marking it as run. false is returned if key was
// never initialized or has no values.
func (s *SequenceStore) Peek(key SequenceKey) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cursors[key]
	if !ok || len(c.Values) == 0 {
		return "", false
	}
	return c.Values[c.NextIndex%len(c.Values)], true
}

// Advance returns the next value for key and moves the cursor forward,
// wrapping at the end of the list. It marks the cursor as referenced by
// the current request so GCStale will not reap it.
func (s *SequenceStore) Advance(key SequenceKey) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cursors[key]
	if !ok || len(c.Values) == 0 {
		return "", false
	}
	v := c.Values[c.NextIndex%len(c.Values)]
	c.NextIndex++
	c.JustRan = true
	return v, true
}

// ClearRanFlags resets every cursor's JustRan flag to false. Called at the
// start of each preparse_prompts() so that GCStale can tell which
// sequences the current request actually touched.
func (s *SequenceStore) ClearRanFlags() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.cursors {
		c.JustRan = false
	}
}

// GCStale removes every cursor whose JustRan flag is still false, i.e. one
// not referenced by any prompt-like field in the request that just ran.
// Called at the end of preparse_prompts().
func (s *SequenceStore) GCStale() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, c := range s.cursors {
		if !c.JustRan {
			delete(s.cursors, k)
		}
	}
}

// stableHash returns a short, deterministic digest of options, used to key
// wildcardseq cursors so a cursor invalidates when the underlying wildcard
// file's contents change.
func stableHash(options []string) string {
	h := sha256.New()
	for _, o := range options {
		h.Write([]byte(o))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// SeqKey builds the SequenceKey for a "seq" tag over rawData.
func SeqKey(rawData string) SequenceKey {
	return SequenceKey{Kind: "seq", Discriminant: rawData}
}

// WildcardSeqKey builds the SequenceKey for a "wildcardseq"/"wcs" tag,
// namespacing on the canonical wildcard name plus a hash of its current
// options so a changed dictionary file gets a fresh cursor.
func WildcardSeqKey(canonicalName string, options []string) SequenceKey {
	return SequenceKey{Kind: "wc", Discriminant: canonicalName + "_" + stableHash(options)}
}
