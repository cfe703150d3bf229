// Package assets mirrors the static CSS/JS/image/web-component subtrees
// from a template directory to the output root, falling back to an
// embedded default set when no template directory is configured.
package assets

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

//go:embed embedded/static
var embedded embed.FS

// subtrees are the only directories mirrored from the template directory;
// anything else there is left alone, grounded on the original
// implementation's copy_static_assets copying exactly css/, js/, img/.
var subtrees = []string{"css", "js", "img", "components"}

// Copy mirrors the known static subtrees into outputRoot. When
// templateDir is empty, the embedded default assets are written instead.
// Re-running Copy overwrites existing files; it never deletes anything
// under outputRoot.
func Copy(templateDir, outputRoot string) error {
	if templateDir == "" {
		return copyEmbedded(outputRoot)
	}
	for _, name := range subtrees {
		src := filepath.Join(templateDir, name)
		info, err := os.Stat(src)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("assets: stat %s: %w", src, err)
		}
		if !info.IsDir() {
			continue
		}
		if err := copyDir(src, filepath.Join(outputRoot, name)); err != nil {
			return err
		}
	}
	return nil
}

func copyEmbedded(outputRoot string) error {
	root := "embedded/static"
	return fs.WalkDir(embedded, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		dst := filepath.Join(outputRoot, rel)
		if d.IsDir() {
			return os.MkdirAll(dst, 0o755)
		}
		data, err := embedded.ReadFile(path)
		if err != nil {
			return fmt.Errorf("assets: reading embedded %s: %w", path, err)
		}
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return fmt.Errorf("assets: creating %s: %w", filepath.Dir(dst), err)
		}
		return os.WriteFile(dst, data, 0o644)
	})
}

func copyDir(src, dst string) error {
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return fmt.Errorf("assets: creating %s: %w", dst, err)
	}
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return fmt.Errorf("assets: computing relative path: %w", err)
		}
		dstPath := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(dstPath, 0o755)
		}
		return copyFile(path, dstPath)
	})
}

func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("assets: opening %s: %w", src, err)
	}
	defer srcFile.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("assets: creating %s: %w", filepath.Dir(dst), err)
	}
	dstFile, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("assets: creating %s: %w", dst, err)
	}
	defer dstFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return fmt.Errorf("assets: copying %s to %s: %w", src, dst, err)
	}
	return nil
}
