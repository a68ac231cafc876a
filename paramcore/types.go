// Package paramcore owns the typed parameter map for a single text-to-image
// generation request and the prompt-template interpreter that expands the
// tag language embedded in prompt-like parameter values.
package paramcore

import "context"

// DataType enumerates the kinds a ParamDescriptor can declare. It mirrors
// the generation-service parameter taxonomy: most are plain scalars, but
// MODEL and IMAGE* route through external registries/codecs this package
// never touches directly.
type DataType int

const (
	Integer DataType = iota
	Decimal
	Boolean
	Text
	Dropdown
	Image
	ImageList
	Model
	List
)

// NumericWidth distinguishes the two integer and two decimal widths a
// descriptor can declare.
type NumericWidth int

const (
	Width32 NumericWidth = 32
	Width64 NumericWidth = 64
)

// CleanFunc normalizes raw textual input before it is parsed. prev is the
// previously stored textual form, if any; new is the incoming raw text.
type CleanFunc func(prev *string, new string) string

// MetadataFormatFunc rewrites a value's textual form before it is placed in
// emitted metadata (e.g. trimming an internal prefix from a model name).
type MetadataFormatFunc func(string) string

// ParamDescriptor is the external, per-parameter contract this package
// consumes. Callers construct one ParamDescriptor per parameter id and
// register it wherever they assemble their parameter set (see
// paramcore/descriptors.go for the built-in generation parameters, and
// openapidesc for a schema-driven loader).
type ParamDescriptor struct {
	ID                string
	DataType          DataType
	NumericWidth      NumericWidth
	Default           *string
	Clean             CleanFunc
	IgnoreIf          *string
	FeatureFlag       *string
	Subtype           string
	HideFromMetadata  bool
	MetadataFormat    MetadataFormatFunc
}

// ImageBlob is an opaque reference to image bytes. Decoding/encoding is out
// of scope for this package; callers hand in already-decoded references
// (a cache key, a file path, a data URL — whatever their image I/O layer
// uses) and get the same reference back out.
type ImageBlob struct {
	Ref string
}

// ModelHandle is the canonical, registry-resolved identity of a model,
// LoRA, or embedding asset.
type ModelHandle struct {
	Canonical string
	Subtype   string
}

// ModelRegistry is the external collaborator that resolves user-typed
// names (fuzzy, case- and separator-insensitive) to canonical model
// identities and exposes their trigger phrases.
type ModelRegistry interface {
	// BestMatch fuzzy-matches query against candidates and returns the
	// canonical name, or false if nothing matched well enough.
	BestMatch(query string, candidates []string) (string, bool)
	// Get returns metadata for a canonical name, notably its trigger
	// phrase. ok is false if the name is unknown.
	Get(canonical string) (ModelMetadata, bool)
	// ListNames returns every canonical name the registry knows about
	// for the given session, used as the candidate pool for BestMatch.
	ListNames(session Session) []string
}

// ModelMetadata is the subset of registry-held data the interpreter needs.
type ModelMetadata struct {
	TriggerPhrase string
}

// WildcardStore is the external collaborator holding named option lists
// ("wildcards") that the <wildcard:...> and <wildcardseq:...> tags draw
// from.
type WildcardStore interface {
	ListFiles(ctx context.Context) ([]string, error)
	Get(ctx context.Context, name string) (WildcardFile, error)
}

// WildcardFile is a single resolved wildcard dictionary.
type WildcardFile struct {
	Name    string
	Options []string
}

// Preset is a named bundle of parameter assignments, optionally carrying a
// prompt template containing one "{value}" placeholder.
type Preset struct {
	ParamMap map[string]string
	ApplyTo  func(input *Input)
}

// PresetStore is the external collaborator resolving preset names.
type PresetStore interface {
	GetPreset(name string) (Preset, bool)
	// ListNames returns every preset name known to the store, used as the
	// candidate pool for fuzzy resolution.
	ListNames() []string
}

// Session is an opaque handle identifying the user/request a parameter map
// belongs to. The interpreter never inspects its fields; it is threaded
// through to external collaborators that need it (e.g. ModelRegistry.ListNames).
type Session struct {
	User           string
	InterruptToken InterruptToken
}

// InterruptToken is a cooperative cancellation flag carried from the
// session. The interpreter contains no suspension points of its own; only
// handlers that call external collaborators need to check it.
type InterruptToken interface {
	Fired() bool
}

// RNG is the seedable random source the interpreter needs for <random>,
// <wildcard>, and seed materialization. *rand.Rand (math/rand) satisfies
// this directly.
type RNG interface {
	Intn(n int) int
	Int31() int32
}
