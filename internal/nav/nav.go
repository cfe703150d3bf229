// Package nav groups the pages discovered by content.Walk into sections
// and derives a linear prev/next ordering, grounded on the section
// grouping and sort rules the teacher applies to Hugo-style content
// (SortByTitle/SortByWeight in internal/content/page.go) and the original
// implementation's BTreeMap<String, Vec<PageInfo>> section grouping.
package nav

import (
	"sort"
	"strings"

	"github.com/leaflet-docs/leaflet/internal/content"
)

// Section groups SourcePages that share a section key.
type Section struct {
	Key   string
	Title string
	Pages []content.SourcePage
}

// Model is the whole navigation: an ordered list of sections plus a flat
// linear ordering used to derive prev/next for each page.
type Model struct {
	Sections []Section
	Linear   []content.SourcePage
}

// RootSectionTitle is shown for pages directly under the input root.
const RootSectionTitle = "Introduction"

// Build groups pages into sections and computes the linear ordering. The
// root section (key "") always sorts first; the rest sort alphabetically
// by key. Within a section, pages sort by output path, case-insensitive,
// with a stem of "index" or "README" pinned first.
func Build(pages []content.SourcePage) Model {
	bySection := make(map[string][]content.SourcePage)
	var keys []string
	seen := make(map[string]bool)

	for _, p := range pages {
		if !seen[p.Section] {
			seen[p.Section] = true
			keys = append(keys, p.Section)
		}
		bySection[p.Section] = append(bySection[p.Section], p)
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i] == "" {
			return true
		}
		if keys[j] == "" {
			return false
		}
		return strings.ToLower(keys[i]) < strings.ToLower(keys[j])
	})

	var model Model
	for _, key := range keys {
		group := bySection[key]
		sort.SliceStable(group, func(i, j int) bool {
			return lessOutputPath(group[i].OutputPath, group[j].OutputPath)
		})
		title := RootSectionTitle
		if key != "" {
			title = prettify(key)
		}
		model.Sections = append(model.Sections, Section{Key: key, Title: title, Pages: group})
		model.Linear = append(model.Linear, group...)
	}
	return model
}

// lessOutputPath implements the intra-section ordering rule: case
// insensitive by path, with an index/README stem sorting first.
func lessOutputPath(a, b string) bool {
	aIndex, bIndex := isIndexStem(a), isIndexStem(b)
	if aIndex != bIndex {
		return aIndex
	}
	return strings.ToLower(a) < strings.ToLower(b)
}

func isIndexStem(outputPath string) bool {
	base := outputPath
	if idx := strings.LastIndex(base, "/"); idx >= 0 {
		base = base[idx+1:]
	}
	stem := strings.TrimSuffix(base, ".html")
	return strings.EqualFold(stem, "index") || strings.EqualFold(stem, "README")
}

func prettify(key string) string {
	replaced := strings.NewReplacer("-", " ", "_", " ").Replace(key)
	if replaced == "" {
		return replaced
	}
	return strings.ToUpper(replaced[:1]) + replaced[1:]
}

// PrevNext returns the previous and next pages relative to outputPath in
// the linear ordering. Either may be nil when outputPath is the first or
// last page: this is a sequence, not a ring, so there is no wrap-around.
func (m Model) PrevNext(outputPath string) (prev, next *content.SourcePage) {
	for i, p := range m.Linear {
		if p.OutputPath != outputPath {
			continue
		}
		if i > 0 {
			prev = &m.Linear[i-1]
		}
		if i < len(m.Linear)-1 {
			next = &m.Linear[i+1]
		}
		return prev, next
	}
	return nil, nil
}
