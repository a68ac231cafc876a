package paramcore

import (
	"reflect"
	"testing"
)

func TestSplitSmart(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"comma", "a,b,c", []string{"a", "b", "c"}},
		{"comma trims", " a , b ,c ", []string{"a", "b", "c"}},
		{"single pipe wins over comma", "a|b,c", []string{"a", "b,c"}},
		{"double pipe wins over single", "a||b|c", []string{"a", "b|c"}},
		{"nested tags preserved", "<random:a,b>|c", []string{"<random:a,b>", "c"}},
		{"no separator", "onlyone", []string{"onlyone"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitSmart(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitSmart(%q) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSplitSmartNonEmpty(t *testing.T) {
	got := SplitSmartNonEmpty("a,,b,")
	want := []string{"a", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SplitSmartNonEmpty = %#v, want %#v", got, want)
	}
}

func TestFindTagSpan(t *testing.T) {
	s := "x <a:<b:c>> y"
	end, interior, ok := findTagSpan(s, 2)
	if !ok {
		t.Fatal("expected a balanced tag")
	}
	if interior != "a:<b:c>" {
		t.Errorf("interior = %q, want %q", interior, "a:<b:c>")
	}
	if s[end] != '>' {
		t.Errorf("end did not point at '>': %q", s[end])
	}
}

func TestSplitTagInterior(t *testing.T) {
	prefix, predata, data, hasColon := splitTagInterior("Random[2,]:a|b")
	if prefix != "random" {
		t.Errorf("prefix = %q, want %q", prefix, "random")
	}
	if predata != "2," {
		t.Errorf("predata = %q, want %q", predata, "2,")
	}
	if !hasColon || data != "a|b" {
		t.Errorf("data = %q hasColon=%v, want %q true", data, hasColon, "a|b")
	}
}

func TestSplitTagInteriorNoColon(t *testing.T) {
	prefix, _, _, hasColon := splitTagInterior("break")
	if prefix != "break" || hasColon {
		t.Errorf("got prefix=%q hasColon=%v", prefix, hasColon)
	}
}
