package build

import (
	"fmt"
	"os"
	"path/filepath"
)

// writeOutputFile writes data to outputRoot/relPath, creating any missing
// parent directories. Unlike a URL-permalink layout, SourcePage.OutputPath
// already names the exact file to write, so no directory-vs-file
// resolution is needed. Existing files are overwritten; nothing under
// outputRoot is ever deleted first, since a partial input tree should not
// clobber output the caller may have staged for deployment alongside it.
func writeOutputFile(outputRoot, relPath string, data []byte) error {
	full := filepath.Join(outputRoot, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("build: creating directory for %s: %w", relPath, err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return fmt.Errorf("build: writing %s: %w", relPath, err)
	}
	return nil
}
