// Package wildcardstore provides paramcore.WildcardStore implementations
// backed by a local directory, a web-crawled site, an S3 bucket, or a
// Google Drive folder.
package wildcardstore

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/imagegen/paramweave/paramcore"
)

// FSConfig holds configuration for an FSStore.
type FSConfig struct {
	// BaseDir is the directory holding one ".txt" or ".md" file per
	// wildcard, named after the wildcard (subdirectories become "dir/name").
	BaseDir string

	// ExcludePatterns is a list of doublestar glob patterns to skip.
	// Defaults to excluding ".git/**".
	ExcludePatterns []string
}

// FSStore is a paramcore.WildcardStore backed by a directory of wildcard
// option files: plain-text files (one option per line) or Markdown files
// (one option per top-level bullet-list item).
type FSStore struct {
	config FSConfig
}

// NewFSStore creates a filesystem-backed wildcard store.
func NewFSStore(config FSConfig) *FSStore {
	defaults := []string{".git/**"}
	config.ExcludePatterns = append(defaults, config.ExcludePatterns...)
	return &FSStore{config: config}
}

// ListFiles returns every wildcard name found under BaseDir, as its
// slash-separated path relative to BaseDir with the ".txt" or ".md" suffix
// stripped. A name backed by both a ".txt" and a ".md" file is listed
// once per file.
func (s *FSStore) ListFiles(ctx context.Context) ([]string, error) {
	var names []string
	err := filepath.Walk(s.config.BaseDir, func(path string, info os.FileInfo, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err != nil {
			return err
		}
		relPath, relErr := filepath.Rel(s.config.BaseDir, path)
		if relErr != nil {
			relPath = path
		}
		relPath = filepath.ToSlash(relPath)

		for _, pattern := range s.config.ExcludePatterns {
			matched, merr := doublestar.Match(pattern, relPath)
			if merr != nil {
				log.Printf("Warning: invalid wildcard exclude pattern %s: %v", pattern, merr)
				continue
			}
			if matched {
				if info.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}
		if info.IsDir() {
			return nil
		}
		switch {
		case strings.HasSuffix(relPath, ".txt"):
			names = append(names, strings.TrimSuffix(relPath, ".txt"))
		case strings.HasSuffix(relPath, ".md"):
			names = append(names, strings.TrimSuffix(relPath, ".md"))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing wildcard files under %s: %w", s.config.BaseDir, err)
	}
	return names, nil
}

// Get reads name's backing file and splits it into options: one per
// non-empty trimmed line not starting with "#" for a ".txt" file, or one per top-level
// bullet-list item for a ".md" file (preferred when both exist).
func (s *FSStore) Get(ctx context.Context, name string) (paramcore.WildcardFile, error) {
	select {
	case <-ctx.Done():
		return paramcore.WildcardFile{}, ctx.Err()
	default:
	}
	base := filepath.Join(s.config.BaseDir, filepath.FromSlash(name))
	if content, err := os.ReadFile(base + ".md"); err == nil {
		return paramcore.WildcardFile{Name: name, Options: bulletListOptions(content)}, nil
	}
	content, err := os.ReadFile(base + ".txt")
	if err != nil {
		return paramcore.WildcardFile{}, fmt.Errorf("reading wildcard file %s: %w", name, err)
	}
	return paramcore.WildcardFile{Name: name, Options: splitLines(content)}, nil
}

// bulletListOptions walks a Markdown document's AST and collects the
// rendered text of every top-level bullet-list item, in document order.
func bulletListOptions(content []byte) []string {
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(content))
	var options []string
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if _, ok := n.(*ast.ListItem); !ok {
			return ast.WalkContinue, nil
		}
		opt := extractNodeText(n, content)
		if opt != "" {
			options = append(options, opt)
		}
		return ast.WalkSkipChildren, nil
	})
	return options
}

// extractNodeText concatenates the textual content of n's children, the
// same one-level FirstChild/NextSibling walk docsaf's own heading-text
// extraction uses.
func extractNodeText(n ast.Node, source []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		b.Write(c.Text(source))
	}
	return strings.TrimSpace(b.String())
}

func splitLines(content []byte) []string {
	var out []string
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimRight(line, "\r")
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}
