// Package config resolves a BookConfig from CLI flags, environment
// variables, an explicit config file, a default-named config file in the
// input root, and built-in defaults, in that order of precedence.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// EnvPrefix is the environment variable prefix layer 2 reads from, e.g.
// LEAFLET_OUTPUT_HTML_ALLOW_HTML.
const EnvPrefix = "LEAFLET"

// Flavor selects the Markdown dialect used to parse input.
type Flavor string

const (
	FlavorPlain Flavor = "markdown"
	FlavorGFM   Flavor = "gfm"
	FlavorMDX   Flavor = "mdx"
)

// Book holds the book metadata block.
type Book struct {
	Title         string   `mapstructure:"title"`
	Description   string   `mapstructure:"description"`
	Authors       []string `mapstructure:"authors"`
	Language      string   `mapstructure:"language"`
	Logo          string   `mapstructure:"logo"`
	RepositoryURL string   `mapstructure:"repository-url"`
}

// HTMLOutput holds the output.html config block.
type HTMLOutput struct {
	AllowHTML      bool     `mapstructure:"allow-html"`
	AdditionalCSS  []string `mapstructure:"additional-css"`
	AdditionalJS   []string `mapstructure:"additional-js"`
	MathJaxSupport bool     `mapstructure:"mathjax-support"`
}

// Markdown holds the markdown config block.
type Markdown struct {
	Format Flavor `mapstructure:"format"`
}

// Search holds the search config block.
type Search struct {
	Enable         bool `mapstructure:"enable"`
	LimitResults   int  `mapstructure:"limit-results"`
	BoostTitle     int  `mapstructure:"boost-title"`
	BoostHierarchy int  `mapstructure:"boost-hierarchy"`
	BoostParagraph int  `mapstructure:"boost-paragraph"`
	TimeoutSeconds int  `mapstructure:"timeout-seconds"`
}

// Paths holds the paths config block.
type Paths struct {
	Templates string `mapstructure:"templates"`
	Input     string `mapstructure:"-"`
	Output    string `mapstructure:"-"`
}

// BookConfig is the fully resolved, validated configuration for one build.
// It is created once by Resolve and is treated as immutable thereafter.
type BookConfig struct {
	Book     Book       `mapstructure:"book"`
	Output   OutputMeta `mapstructure:"output"`
	Markdown Markdown   `mapstructure:"markdown"`
	Search   Search     `mapstructure:"search"`
	Paths    Paths      `mapstructure:"paths"`
}

// OutputMeta wraps the "output" table so its only child is "html", matching
// the config file's `output.html.*` key shape.
type OutputMeta struct {
	HTML HTMLOutput `mapstructure:"html"`
}

// knownKeys is the set of dotted top-level/nested keys accepted in a config
// file. Anything else trips ConfigError.UnknownField.
var knownKeys = map[string]bool{
	"book":                        true,
	"book.title":                  true,
	"book.description":            true,
	"book.authors":                true,
	"book.language":               true,
	"book.logo":                   true,
	"book.repository-url":         true,
	"output":                      true,
	"output.html":                 true,
	"output.html.allow-html":      true,
	"output.html.additional-css":  true,
	"output.html.additional-js":   true,
	"output.html.mathjax-support": true,
	"markdown":                    true,
	"markdown.format":             true,
	"search":                      true,
	"search.enable":               true,
	"search.limit-results":        true,
	"search.boost-title":          true,
	"search.boost-hierarchy":      true,
	"search.boost-paragraph":      true,
	"search.timeout-seconds":      true,
	"paths":                       true,
	"paths.templates":             true,
}

// ErrKind classifies a ConfigError for errors.Is-style handling.
type ErrKind int

const (
	ErrUnknownField ErrKind = iota
	ErrMultipleConfigs
	ErrInvalidValue
	ErrUnsupportedFormat
)

// ConfigError reports a fatal, startup-time configuration problem.
type ConfigError struct {
	Kind    ErrKind
	Path    string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("config: %s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("config: %s", e.Message)
}

// Is allows errors.Is(err, &config.ConfigError{Kind: ...}) style checks
// against the kind.
func (e *ConfigError) Is(target error) bool {
	other, ok := target.(*ConfigError)
	if !ok {
		return false
	}
	return other.Kind == e.Kind
}

// Default returns the built-in defaults (layer 5).
func Default() *BookConfig {
	return &BookConfig{
		Book: Book{
			Title:    "My Book",
			Language: "en",
		},
		Markdown: Markdown{Format: FlavorGFM},
		Search: Search{
			Enable:         true,
			LimitResults:   20,
			BoostTitle:     2,
			BoostHierarchy: 1,
			BoostParagraph: 1,
			TimeoutSeconds: 60,
		},
	}
}

// Overrides carries the values Resolve receives directly from parsed CLI
// flags (layer 1, highest precedence).
type Overrides struct {
	Input      string
	Output     string
	ConfigPath string
}

// Resolve builds a BookConfig by merging, highest precedence first: CLI
// overrides, LEAFLET_-prefixed environment variables, an explicit config
// file, a default-named book.toml/book.json in the input root, and the
// built-in defaults.
func Resolve(o Overrides) (*BookConfig, error) {
	if o.Input == "" || o.Output == "" {
		return nil, &ConfigError{Kind: ErrInvalidValue, Message: "both --input and --output are required"}
	}
	input, err := expandPath(o.Input)
	if err != nil {
		return nil, &ConfigError{Kind: ErrInvalidValue, Path: o.Input, Message: err.Error()}
	}
	info, err := os.Stat(input)
	if err != nil || !info.IsDir() {
		return nil, &ConfigError{Kind: ErrInvalidValue, Path: input, Message: "input root does not exist or is not a directory"}
	}
	output, err := expandPath(o.Output)
	if err != nil {
		return nil, &ConfigError{Kind: ErrInvalidValue, Path: o.Output, Message: err.Error()}
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	defaults := Default()
	setDefaults(v, defaults)

	// Layer 4: default-named config file in the input root.
	defaultPath, err := findDefaultConfig(input)
	if err != nil {
		return nil, err
	}
	if defaultPath != "" {
		if err := mergeConfigFile(v, defaultPath); err != nil {
			return nil, err
		}
	}

	// Layer 3: explicit --config file, if given.
	if o.ConfigPath != "" {
		explicit, err := expandPath(o.ConfigPath)
		if err != nil {
			return nil, &ConfigError{Kind: ErrInvalidValue, Path: o.ConfigPath, Message: err.Error()}
		}
		if err := mergeConfigFile(v, explicit); err != nil {
			return nil, err
		}
	}

	var cfg BookConfig
	decodeHook := mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToSliceHookFunc(","),
	)
	if err := v.Unmarshal(&cfg, viper.DecodeHook(decodeHook)); err != nil {
		return nil, &ConfigError{Kind: ErrInvalidValue, Message: fmt.Sprintf("decoding merged config: %v", err)}
	}

	// Layer 1: CLI overrides always win outright for path fields, since
	// they are not part of the file/env key namespace.
	cfg.Paths.Input = input
	cfg.Paths.Output = output
	if cfg.Paths.Templates != "" {
		expanded, err := expandPath(cfg.Paths.Templates)
		if err != nil {
			return nil, &ConfigError{Kind: ErrInvalidValue, Path: cfg.Paths.Templates, Message: err.Error()}
		}
		cfg.Paths.Templates = expanded
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *BookConfig) {
	v.SetDefault("book.title", d.Book.Title)
	v.SetDefault("book.language", d.Book.Language)
	v.SetDefault("markdown.format", string(d.Markdown.Format))
	v.SetDefault("search.enable", d.Search.Enable)
	v.SetDefault("search.limit-results", d.Search.LimitResults)
	v.SetDefault("search.boost-title", d.Search.BoostTitle)
	v.SetDefault("search.boost-hierarchy", d.Search.BoostHierarchy)
	v.SetDefault("search.boost-paragraph", d.Search.BoostParagraph)
	v.SetDefault("search.timeout-seconds", d.Search.TimeoutSeconds)
}

// findDefaultConfig looks for book.toml / book.json in root. Both present
// is a ConfigError.MultipleConfigs.
func findDefaultConfig(root string) (string, error) {
	candidates := []string{"book.toml", "book.json"}
	var found []string
	for _, name := range candidates {
		p := filepath.Join(root, name)
		if _, err := os.Stat(p); err == nil {
			found = append(found, p)
		}
	}
	if len(found) > 1 {
		return "", &ConfigError{Kind: ErrMultipleConfigs, Message: fmt.Sprintf("multiple default config files present: %s", strings.Join(found, ", "))}
	}
	if len(found) == 1 {
		return found[0], nil
	}
	return "", nil
}

// mergeConfigFile validates unknown keys and merges the file's contents
// into v, with values from this call overriding any prior merge.
func mergeConfigFile(v *viper.Viper, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return &ConfigError{Kind: ErrInvalidValue, Path: path, Message: err.Error()}
	}

	var m map[string]any
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if err := toml.Unmarshal(raw, &m); err != nil {
			return &ConfigError{Kind: ErrInvalidValue, Path: path, Message: fmt.Sprintf("parsing TOML: %v", err)}
		}
	case ".json":
		if err := json.Unmarshal(raw, &m); err != nil {
			return &ConfigError{Kind: ErrInvalidValue, Path: path, Message: fmt.Sprintf("parsing JSON: %v", err)}
		}
	default:
		return &ConfigError{Kind: ErrUnsupportedFormat, Path: path, Message: fmt.Sprintf("unsupported config extension %q, want .toml or .json", ext)}
	}

	if bad := firstUnknownKey(m, ""); bad != "" {
		return &ConfigError{Kind: ErrUnknownField, Path: path, Message: fmt.Sprintf("unknown field %q", bad)}
	}

	v.SetConfigType(strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."))
	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil {
		return &ConfigError{Kind: ErrInvalidValue, Path: path, Message: err.Error()}
	}
	return nil
}

func firstUnknownKey(m map[string]any, prefix string) string {
	for k, val := range m {
		dotted := k
		if prefix != "" {
			dotted = prefix + "." + k
		}
		if !knownKeys[dotted] {
			return dotted
		}
		if nested, ok := val.(map[string]any); ok {
			if bad := firstUnknownKey(nested, dotted); bad != "" {
				return bad
			}
		}
	}
	return ""
}

func validate(cfg *BookConfig) error {
	if cfg.Book.Title == "" {
		return &ConfigError{Kind: ErrInvalidValue, Message: "book.title must not be empty"}
	}
	switch cfg.Markdown.Format {
	case FlavorPlain, FlavorGFM, FlavorMDX:
	default:
		return &ConfigError{Kind: ErrInvalidValue, Path: "markdown.format", Message: fmt.Sprintf("unknown flavor %q", cfg.Markdown.Format)}
	}
	return nil
}

// expandPath applies shell-style ~ and environment variable expansion.
func expandPath(p string) (string, error) {
	if p == "" {
		return "", nil
	}
	expanded := os.ExpandEnv(p)
	if expanded == "~" || strings.HasPrefix(expanded, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errors.New("cannot expand ~: no home directory")
		}
		expanded = filepath.Join(home, strings.TrimPrefix(expanded, "~"))
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", err
	}
	return abs, nil
}
