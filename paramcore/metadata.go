package paramcore

import (
	"encoding/json"
	"fmt"
	"strings"
)

// GenMetadataObject builds the flat key-value object that describes this
// request: every stored parameter plus extra_meta, skipping image blobs
// and descriptors marked hidden, with the embedding sentinel rewritten
// back to its "<embed:name>" textual form and the original_* collapse
// rule applied.
func (in *Input) GenMetadataObject() map[string]any {
	out := make(map[string]any, len(in.values)+len(in.extraMeta))

	for id, v := range in.values {
		if v == nil {
			continue
		}
		if _, isImage := v.(ImageValue); isImage {
			continue
		}
		if _, isImageList := v.(ImageListValue); isImageList {
			continue
		}
		desc := in.descriptors[id]
		if desc != nil && desc.HideFromMetadata {
			continue
		}
		out[id] = formatMetadataValue(desc, v)
	}
	for k, v := range in.extraMeta {
		out[k] = v
	}

	if p, ok := out["prompt"].(string); ok {
		if op, ok := out["originalprompt"].(string); ok && op == p {
			delete(out, "originalprompt")
		}
	}
	if np, ok := out["negativeprompt"].(string); ok {
		if onp, ok := out["originalnegativeprompt"].(string); ok && onp == np {
			delete(out, "originalnegativeprompt")
		}
	}

	return out
}

func formatMetadataValue(desc *ParamDescriptor, v Value) any {
	text := v.String()
	if s, ok := v.(StringValue); ok {
		text = rewriteEmbedSentinel(string(s))
	}
	if desc != nil && desc.MetadataFormat != nil {
		text = desc.MetadataFormat(text)
	}
	switch v.(type) {
	case ModelValue:
		return text
	case StringValue:
		return text
	default:
		return v
	}
}

func rewriteEmbedSentinel(s string) string {
	const prefix = "\x00swarmembed:"
	const suffix = "\x00end"
	for {
		start := strings.Index(s, prefix)
		if start < 0 {
			return s
		}
		end := strings.Index(s[start:], suffix)
		if end < 0 {
			return s
		}
		name := s[start+len(prefix) : start+end]
		s = s[:start] + "<embed:" + name + ">" + s[start+end+len(suffix):]
	}
}

// ToJSON returns the same flat object GenMetadataObject does; it exists as
// the symmetric counterpart that a caller drives back through SetRaw to
// round-trip a request.
func (in *Input) ToJSON() map[string]any {
	return in.GenMetadataObject()
}

// GenRawMetadata serializes GenMetadataObject inside the
// {"sui_image_params": ...} envelope, 2-space indented, with non-ASCII
// characters escaped as \uXXXX and line endings normalized to LF.
func (in *Input) GenRawMetadata() (string, error) {
	envelope := map[string]any{"sui_image_params": in.GenMetadataObject()}
	raw, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal metadata: %w", err)
	}
	escaped := escapeNonASCII(raw)
	return strings.ReplaceAll(string(escaped), "\r\n", "\n"), nil
}

// escapeNonASCII rewrites every non-ASCII rune in a JSON document as a
// \uXXXX escape (with a surrogate pair above the BMP). Structural JSON
// bytes are always ASCII, so this only ever touches string contents.
func escapeNonASCII(b []byte) []byte {
	var out strings.Builder
	out.Grow(len(b))
	for _, r := range string(b) {
		if r < 0x80 {
			out.WriteRune(r)
			continue
		}
		if r > 0xFFFF {
			r1, r2 := utf16Surrogates(r)
			fmt.Fprintf(&out, "\\u%04x\\u%04x", r1, r2)
			continue
		}
		fmt.Fprintf(&out, "\\u%04x", r)
	}
	return []byte(out.String())
}

func utf16Surrogates(r rune) (rune, rune) {
	r -= 0x10000
	return 0xD800 + (r >> 10), 0xDC00 + (r & 0x3FF)
}
