// Package presetstore provides a YAML-backed paramcore.PresetStore: one
// file holding a map of preset name to a bundle of parameter assignments,
// keyed by parameter id. An entry whose id names a prompt-like field (e.g.
// "prompt") doubles as that field's splice template if its text contains
// "{value}".
package presetstore

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/imagegen/paramweave/paramcore"
)

// rawPreset mirrors one entry of the YAML document before it is turned
// into a paramcore.Preset. Params uses `any` the same way docsaf's
// frontmatter parsing does, since a preset's values may be strings,
// numbers, or bools in the source YAML but always end up as the textual
// form SetRaw expects.
type rawPreset struct {
	Params map[string]any `yaml:"params"`
}

// Store is a paramcore.PresetStore loaded from a single YAML file of the
// shape:
//
//	stylize:
//	  params:
//	    steps: 30
//	    cfgscale: 7.5
//	    prompt: "ultra {value} hires"
type Store struct {
	presets map[string]paramcore.Preset
	names   []string
}

// LoadFile reads and parses path as a preset document. descriptors maps
// every parameter id a preset may assign to its ParamDescriptor; an id a
// preset references but descriptors doesn't know is silently skipped when
// the preset is applied, the same way an unrecognized tag is left alone.
func LoadFile(path string, descriptors map[string]*paramcore.ParamDescriptor) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading preset file %s: %w", path, err)
	}
	return Load(data, descriptors)
}

// Load parses data as a preset document.
func Load(data []byte, descriptors map[string]*paramcore.ParamDescriptor) (*Store, error) {
	var raw map[string]rawPreset
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing preset document: %w", err)
	}

	s := &Store{presets: make(map[string]paramcore.Preset, len(raw))}
	for name, rp := range raw {
		s.presets[name] = toPreset(rp, descriptors)
		s.names = append(s.names, name)
	}
	return s, nil
}

func toPreset(rp rawPreset, descriptors map[string]*paramcore.ParamDescriptor) paramcore.Preset {
	params := make(map[string]string, len(rp.Params))
	for k, v := range rp.Params {
		params[k] = formatParamValue(v)
	}
	return paramcore.Preset{
		ParamMap: params,
		ApplyTo: func(input *paramcore.Input) {
			for id, raw := range params {
				desc, ok := descriptors[id]
				if !ok {
					continue
				}
				input.SetRaw(desc, raw)
			}
		},
	}
}

func formatParamValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", t)
	}
}

// GetPreset implements paramcore.PresetStore.
func (s *Store) GetPreset(name string) (paramcore.Preset, bool) {
	p, ok := s.presets[strings.ToLower(name)]
	if ok {
		return p, true
	}
	p, ok = s.presets[name]
	return p, ok
}

// ListNames implements paramcore.PresetStore.
func (s *Store) ListNames() []string {
	return s.names
}
