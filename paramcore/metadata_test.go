package paramcore

import (
	"strings"
	"testing"
)

func TestGenMetadataObjectSkipsImagesAndHidden(t *testing.T) {
	in := newTestInput(nil, nil, nil)
	mustSetRaw(t, in, DescPrompt, "a cat")
	if err := in.SetTyped(DescImages, ImageListValue{{Ref: "blob-1"}}); err != nil {
		t.Fatalf("SetTyped images: %v", err)
	}

	hidden := &ParamDescriptor{ID: "internalonly", DataType: Text, HideFromMetadata: true}
	mustSetRaw(t, in, hidden, "secret")

	out := in.GenMetadataObject()
	if _, ok := out["images"]; ok {
		t.Error("expected images to be skipped from metadata")
	}
	if _, ok := out["internalonly"]; ok {
		t.Error("expected a hidden descriptor to be skipped from metadata")
	}
	if out["prompt"] != "a cat" {
		t.Errorf("prompt = %v, want %q", out["prompt"], "a cat")
	}
}

func TestGenMetadataObjectRewritesEmbedSentinel(t *testing.T) {
	in := newTestInput(nil, nil, nil)
	mustSetRaw(t, in, DescPrompt, "a cat \x00swarmembed:goodHands\x00end style")

	out := in.GenMetadataObject()
	got, _ := out["prompt"].(string)
	want := "a cat <embed:goodHands> style"
	if got != want {
		t.Errorf("prompt = %q, want %q", got, want)
	}
}

func TestGenMetadataObjectCollapsesOriginalPromptWhenEqual(t *testing.T) {
	in := newTestInput(nil, nil, nil)
	mustSetRaw(t, in, DescPrompt, "a cat")
	mustSetRaw(t, in, DescOriginalPrompt, "a cat")
	mustSetRaw(t, in, DescNegativePrompt, "blurry")
	mustSetRaw(t, in, DescOriginalNegativePrompt, "blurry, extra")

	out := in.GenMetadataObject()
	if _, ok := out["originalprompt"]; ok {
		t.Error("expected originalprompt to be collapsed when identical to prompt")
	}
	if _, ok := out["originalnegativeprompt"]; !ok {
		t.Error("expected originalnegativeprompt to survive when it differs from negativeprompt")
	}
}

func TestGenRawMetadataEnvelopeAndIndentation(t *testing.T) {
	in := newTestInput(nil, nil, nil)
	mustSetRaw(t, in, DescPrompt, "a cat")

	raw, err := in.GenRawMetadata()
	if err != nil {
		t.Fatalf("GenRawMetadata: %v", err)
	}
	if !strings.HasPrefix(raw, "{\n  \"sui_image_params\": {") {
		t.Errorf("unexpected envelope/indentation:\n%s", raw)
	}
	if strings.Contains(raw, "\r") {
		t.Error("expected CRLF to be normalized to LF")
	}
}

func TestGenRawMetadataEscapesNonASCII(t *testing.T) {
	in := newTestInput(nil, nil, nil)
	mustSetRaw(t, in, DescPrompt, "café")

	raw, err := in.GenRawMetadata()
	if err != nil {
		t.Fatalf("GenRawMetadata: %v", err)
	}
	const escaped = "\\u00e9"
	if !strings.Contains(raw, escaped) {
		t.Errorf("expected %s in the output, got:\n%s", escaped, raw)
	}
	if strings.ContainsRune(raw, 'é') {
		t.Error("expected the non-ASCII rune to be escaped, not emitted literally")
	}
}

func TestGenRawMetadataEscapesAboveBMPAsSurrogatePair(t *testing.T) {
	in := newTestInput(nil, nil, nil)
	mustSetRaw(t, in, DescPrompt, "\U0001F600")

	raw, err := in.GenRawMetadata()
	if err != nil {
		t.Fatalf("GenRawMetadata: %v", err)
	}
	const escaped = "\\ud83d\\ude00"
	if !strings.Contains(raw, escaped) {
		t.Errorf("expected %s (surrogate pair for U+1F600) in the output, got:\n%s", escaped, raw)
	}
}
