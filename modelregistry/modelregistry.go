// Package modelregistry provides an in-memory paramcore.ModelRegistry: a
// fixed catalog of models, LoRAs, and embeddings, each with a canonical
// name, a subtype pool, and an optional trigger phrase, resolved by
// normalized fuzzy match the same way paramcore resolves wildcard and
// preset names.
package modelregistry

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/imagegen/paramweave/paramcore"
)

// Entry is one asset known to the registry.
type Entry struct {
	Canonical     string
	Subtype       string
	TriggerPhrase string
}

// Registry is a static, subtype-partitioned asset catalog.
type Registry struct {
	bySubtype map[string][]Entry
	byName    map[string]Entry
}

var fold = cases.Fold()

// New builds a registry from entries, indexed by subtype and by
// normalized canonical name.
func New(entries []Entry) *Registry {
	r := &Registry{
		bySubtype: make(map[string][]Entry),
		byName:    make(map[string]Entry),
	}
	for _, e := range entries {
		r.bySubtype[e.Subtype] = append(r.bySubtype[e.Subtype], e)
		r.byName[normalize(e.Canonical)] = e
	}
	return r
}

func normalize(s string) string {
	return fold.String(strings.ReplaceAll(s, "\\", "/"))
}

// BestMatch implements paramcore.ModelRegistry. It normalizes query and
// every candidate the same way (lowercase, Unicode case fold, path
// separators to "/") and picks an exact match if one exists, otherwise
// the candidate within a 0.3 normalized edit-distance ratio.
func (r *Registry) BestMatch(query string, candidates []string) (string, bool) {
	if len(candidates) == 0 {
		return "", false
	}
	nq := normalize(query)

	best := ""
	bestDist := -1.0
	for _, c := range candidates {
		nc := normalize(c)
		if nc == nq {
			return c, true
		}
		maxLen := len(nc)
		if len(nq) > maxLen {
			maxLen = len(nq)
		}
		if maxLen == 0 {
			continue
		}
		dist := float64(levenshtein(nq, nc)) / float64(maxLen)
		if bestDist < 0 || dist < bestDist {
			bestDist = dist
			best = c
		}
	}
	if bestDist >= 0 && bestDist < 0.3 {
		return best, true
	}
	return "", false
}

// Get implements paramcore.ModelRegistry.
func (r *Registry) Get(canonical string) (paramcore.ModelMetadata, bool) {
	e, ok := r.byName[normalize(canonical)]
	if !ok {
		return paramcore.ModelMetadata{}, false
	}
	return paramcore.ModelMetadata{TriggerPhrase: e.TriggerPhrase}, true
}

// ListNames implements paramcore.ModelRegistry. The registry is static
// and ignores session entirely; a deployment that scopes the catalog per
// user should wrap Registry rather than modify it.
func (r *Registry) ListNames(_ paramcore.Session) []string {
	names := make([]string, 0, len(r.byName))
	for _, e := range r.byName {
		names = append(names, e.Canonical)
	}
	return names
}

// ListSubtype returns the canonical names of every entry registered under
// subtype (e.g. "lora", "embedding", "model").
func (r *Registry) ListSubtype(subtype string) []string {
	entries := r.bySubtype[subtype]
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Canonical
	}
	return names
}

func levenshtein(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	aRunes := []rune(a)
	bRunes := []rune(b)

	prev := make([]int, len(bRunes)+1)
	curr := make([]int, len(bRunes)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(aRunes); i++ {
		curr[0] = i
		for j := 1; j <= len(bRunes); j++ {
			cost := 1
			if aRunes[i-1] == bRunes[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			curr[j] = min(del, min(ins, sub))
		}
		prev, curr = curr, prev
	}
	return prev[len(bRunes)]
}
