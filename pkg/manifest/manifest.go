// Package manifest resolves the dependency manifest handed to the
// analysis engine and augments it with a self-referential path
// dependency so documentation snippets can name the documented crate's
// own symbols. Editing is structured parse-modify-serialize, never
// substring insertion.
package manifest

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// OverrideEnv names an explicit manifest path. Without it, DefaultFile
// in the working directory is tried; without either, the engine runs
// with no external dependency context.
const (
	OverrideEnv = "RUSTDOC_TWOSLASH_CARGO_TOML"
	DefaultFile = "Cargo.toml"
)

// Resolved is a manifest located on disk. Path is empty when no
// manifest was found, which is a reduced-context condition, not an
// error.
type Resolved struct {
	Text string
	Path string
}

// Resolve locates the manifest per the override-then-default order.
// Failures are recovered locally and logged; the zero Resolved means
// "analyze without dependency context".
func Resolve(logger *slog.Logger) Resolved {
	if logger == nil {
		logger = slog.Default()
	}

	if path, ok := os.LookupEnv(OverrideEnv); ok {
		content, err := os.ReadFile(path)
		if err == nil {
			logger.Info("using manifest", "path", path)
			return Resolved{Text: string(content), Path: path}
		}
		logger.Warn("manifest override unreadable", "path", path, "err", err)
	}

	if content, err := os.ReadFile(DefaultFile); err == nil {
		logger.Info("using manifest from working directory")
		return Resolved{Text: string(content), Path: DefaultFile}
	}

	logger.Info("no manifest found, externally-defined symbols will have no annotations")
	return Resolved{}
}

// AddSelfDependency gives the manifest a path dependency on its own
// package, rooted at dir. A manifest without a package name, or one
// that already declares a dependency under that name, passes through
// unchanged.
func AddSelfDependency(text, dir string) (string, error) {
	var doc map[string]any
	if _, err := toml.Decode(text, &doc); err != nil {
		return "", fmt.Errorf("parse manifest: %w", err)
	}

	pkg, _ := doc["package"].(map[string]any)
	name, _ := pkg["name"].(string)
	if name == "" {
		return text, nil
	}

	deps, _ := doc["dependencies"].(map[string]any)
	if deps == nil {
		deps = make(map[string]any)
		doc["dependencies"] = deps
	}
	if _, exists := deps[name]; exists {
		return text, nil
	}
	deps[name] = map[string]any{"path": dir}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
		return "", fmt.Errorf("encode manifest: %w", err)
	}
	return buf.String(), nil
}

// EngineText resolves the manifest and augments it for the engine.
// Augmentation failures fall back to the unmodified manifest text.
func EngineText(logger *slog.Logger) string {
	if logger == nil {
		logger = slog.Default()
	}

	r := Resolve(logger)
	if r.Path == "" {
		return ""
	}

	dir, err := filepath.Abs(filepath.Dir(r.Path))
	if err != nil {
		return r.Text
	}
	augmented, err := AddSelfDependency(r.Text, dir)
	if err != nil {
		logger.Warn("manifest augmentation failed", "path", r.Path, "err", err)
		return r.Text
	}
	return augmented
}
