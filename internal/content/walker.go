package content

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/leaflet-docs/leaflet/internal/markdown"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var stemCaser = cases.Title(language.English)

// Walk recursively enumerates .md files under inputRoot, ignoring
// dot-prefixed entries, and returns one SourcePage per file ordered by
// input-relative path.
func Walk(inputRoot string) ([]SourcePage, error) {
	var pages []SourcePage

	err := filepath.WalkDir(inputRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() != "." && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		if filepath.Ext(path) != ".md" {
			return nil
		}

		rel, err := filepath.Rel(inputRoot, path)
		if err != nil {
			return fmt.Errorf("computing relative path for %s: %w", path, err)
		}
		rel = filepath.ToSlash(rel)

		source, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}

		title, ok := markdown.ExtractTitle(source)
		if !ok || title == "" {
			title = prettifyStem(rel)
		}

		pages = append(pages, SourcePage{
			InputPath:  path,
			OutputPath: strings.TrimSuffix(rel, ".md") + ".html",
			Title:      title,
			Section:    sectionKey(rel),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", inputRoot, err)
	}
	return pages, nil
}

// sectionKey returns the first path component of an input-relative path,
// or "" when the file sits directly under the input root.
func sectionKey(rel string) string {
	idx := strings.Index(rel, "/")
	if idx < 0 {
		return ""
	}
	return rel[:idx]
}

// prettifyStem derives a display title from a file's relative path when
// the document has no level-one heading: the base name without its
// extension, separators replaced with spaces, title-cased.
func prettifyStem(rel string) string {
	stem := strings.TrimSuffix(filepath.Base(rel), filepath.Ext(rel))
	stem = strings.NewReplacer("-", " ", "_", " ").Replace(stem)
	return stemCaser.String(stem)
}
