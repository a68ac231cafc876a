package wildcardstore

import "testing"

func TestNewWebStoreRequiresStartURL(t *testing.T) {
	if _, err := NewWebStore(WebConfig{}); err == nil {
		t.Fatal("expected an error when StartURL is empty")
	}
}

func TestNewWebStoreDefaults(t *testing.T) {
	s, err := NewWebStore(WebConfig{StartURL: "https://example.com/wildcards/"})
	if err != nil {
		t.Fatalf("NewWebStore: %v", err)
	}
	if len(s.config.AllowedDomains) != 1 || s.config.AllowedDomains[0] != "example.com" {
		t.Errorf("AllowedDomains = %#v, want [example.com]", s.config.AllowedDomains)
	}
	if len(s.config.IncludePatterns) != 1 || s.config.IncludePatterns[0] != "**/*.txt" {
		t.Errorf("IncludePatterns = %#v, want [**/*.txt]", s.config.IncludePatterns)
	}
	if s.config.RequestsPerSecond != 5 {
		t.Errorf("RequestsPerSecond = %v, want 5", s.config.RequestsPerSecond)
	}
	if s.config.UserAgent == "" {
		t.Error("UserAgent should default to a non-empty value")
	}
}

func TestNewWebStoreRespectsExplicitConfig(t *testing.T) {
	s, err := NewWebStore(WebConfig{
		StartURL:          "https://example.com/",
		AllowedDomains:    []string{"cdn.example.com"},
		IncludePatterns:   []string{"**/*.md"},
		RequestsPerSecond: 2,
		UserAgent:         "custom-agent/1.0",
	})
	if err != nil {
		t.Fatalf("NewWebStore: %v", err)
	}
	if len(s.config.AllowedDomains) != 1 || s.config.AllowedDomains[0] != "cdn.example.com" {
		t.Errorf("AllowedDomains = %#v, want [cdn.example.com]", s.config.AllowedDomains)
	}
	if len(s.config.IncludePatterns) != 1 || s.config.IncludePatterns[0] != "**/*.md" {
		t.Errorf("IncludePatterns = %#v, want [**/*.md]", s.config.IncludePatterns)
	}
	if s.config.UserAgent != "custom-agent/1.0" {
		t.Errorf("UserAgent = %q, want custom-agent/1.0", s.config.UserAgent)
	}
}

func TestMatchesAny(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		path     string
		want     bool
	}{
		{"matches nested txt", []string{"**/*.txt"}, "wildcards/colors.txt", true},
		{"matches top-level txt", []string{"**/*.txt"}, "colors.txt", true},
		{"rejects non-matching extension", []string{"**/*.txt"}, "colors.md", false},
		{"rejects with no patterns", nil, "colors.txt", false},
		{"matches any of several patterns", []string{"**/*.md", "**/*.txt"}, "a/b/c.md", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matchesAny(tt.patterns, tt.path); got != tt.want {
				t.Errorf("matchesAny(%v, %q) = %v, want %v", tt.patterns, tt.path, got, tt.want)
			}
		})
	}
}
