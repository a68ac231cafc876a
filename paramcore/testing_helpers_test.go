package paramcore

import "context"

// fakeModelRegistry is a minimal in-memory ModelRegistry for tests: a fixed
// name list resolved through the package's own fuzzyBestMatch.
type fakeModelRegistry struct {
	names   []string
	trigger map[string]string
}

func newFakeModelRegistry() *fakeModelRegistry {
	return &fakeModelRegistry{trigger: make(map[string]string)}
}

func (r *fakeModelRegistry) add(name, triggerPhrase string) {
	r.names = append(r.names, name)
	if triggerPhrase != "" {
		r.trigger[name] = triggerPhrase
	}
}

func (r *fakeModelRegistry) BestMatch(query string, candidates []string) (string, bool) {
	return fuzzyBestMatch(query, candidates)
}

func (r *fakeModelRegistry) Get(canonical string) (ModelMetadata, bool) {
	phrase, ok := r.trigger[canonical]
	if !ok {
		for _, n := range r.names {
			if n == canonical {
				return ModelMetadata{}, true
			}
		}
		return ModelMetadata{}, false
	}
	return ModelMetadata{TriggerPhrase: phrase}, true
}

func (r *fakeModelRegistry) ListNames(_ Session) []string {
	return r.names
}

// fakeWildcardStore serves a fixed set of option lists.
type fakeWildcardStore struct {
	files map[string][]string
}

func newFakeWildcardStore() *fakeWildcardStore {
	return &fakeWildcardStore{files: make(map[string][]string)}
}

func (s *fakeWildcardStore) add(name string, options ...string) {
	s.files[name] = options
}

func (s *fakeWildcardStore) ListFiles(ctx context.Context) ([]string, error) {
	names := make([]string, 0, len(s.files))
	for n := range s.files {
		names = append(names, n)
	}
	return names, nil
}

func (s *fakeWildcardStore) Get(ctx context.Context, name string) (WildcardFile, error) {
	opts, ok := s.files[name]
	if !ok {
		return WildcardFile{}, errNotFound(name)
	}
	return WildcardFile{Name: name, Options: opts}, nil
}

type notFoundError string

func (e notFoundError) Error() string { return "not found: " + string(e) }

func errNotFound(name string) error { return notFoundError(name) }

// fakePresetStore serves a fixed set of presets.
type fakePresetStore struct {
	presets map[string]Preset
	names   []string
}

func newFakePresetStore() *fakePresetStore {
	return &fakePresetStore{presets: make(map[string]Preset)}
}

func (s *fakePresetStore) add(name string, p Preset) {
	s.presets[name] = p
	s.names = append(s.names, name)
}

func (s *fakePresetStore) GetPreset(name string) (Preset, bool) {
	p, ok := s.presets[name]
	return p, ok
}

func (s *fakePresetStore) ListNames() []string {
	return s.names
}

// newTestInput wires a fresh Input with fresh fakes and the default tag
// registry, ready for a single test's use.
func newTestInput(mr ModelRegistry, ws WildcardStore, ps PresetStore) *Input {
	return NewInput(Session{User: "tester"}, mr, ws, ps, NewSequenceStore(), DefaultTagRegistry())
}
