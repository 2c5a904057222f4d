package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Config captures all inputs that influence the tables command after merging
// defaults, config file values and CLI overrides.
type Config struct {
	Input                 []string      `koanf:"input"`
	Out                   string        `koanf:"out"`
	Format                string        `koanf:"format"`
	IncludeTags           []string      `koanf:"include-tags"`
	ExcludeTags           []string      `koanf:"exclude-tags"`
	Methods               []string      `koanf:"methods"`
	SamplePrimitiveArrays bool          `koanf:"sample-primitive-arrays"`
	HTTPTimeout           time.Duration `koanf:"http-timeout"`
	MaxRetries            int           `koanf:"max-retries"`
	DryRun                bool          `koanf:"dry-run"`
	Force                 bool          `koanf:"force"`
	Verbose               bool          `koanf:"verbose"`
}

// Keys lists the accepted config keys in their canonical spelling.
var Keys = []string{
	"input", "out", "format", "include-tags", "exclude-tags", "methods",
	"sample-primitive-arrays", "http-timeout", "max-retries", "dry-run",
	"force", "verbose",
}

var validMethods = []string{"get", "post", "put", "delete", "patch", "head", "options", "trace"}

// Defaults returns the configuration used when neither file nor flags set a value.
func Defaults() Config {
	return Config{
		Format:      "json",
		HTTPTimeout: 10 * time.Second,
		MaxRetries:  3,
	}
}

func defaultsMap() map[string]any {
	d := Defaults()
	return map[string]any{
		"format":       d.Format,
		"http-timeout": d.HTTPTimeout.String(),
		"max-retries":  d.MaxRetries,
	}
}

// Load merges defaults, the YAML or JSON file at path (when non-empty) and
// the flags that were explicitly set, in that order of precedence.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaultsMap(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path = strings.TrimSpace(path); path != "" {
		fromFile, err := readFile(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(confmap.Provider(fromFile, "."), nil); err != nil {
			return nil, fmt.Errorf("loading config file %q: %w", path, err)
		}
	}

	if flags != nil {
		if err := k.Load(confmap.Provider(flagsMap(flags), "."), nil); err != nil {
			return nil, fmt.Errorf("loading flags: %w", err)
		}
	}

	var cfg Config
	err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			Result:           &cfg,
			WeaklyTypedInput: true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// readFile loads a config file and rewrites its keys to their canonical
// spelling, so includeTags, include_tags and include-tags are equivalent.
func readFile(path string) (map[string]any, error) {
	fk := koanf.New(".")
	if err := fk.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("reading config file %q: %w", path, err)
	}
	canonical := make(map[string]string, len(Keys))
	for _, key := range Keys {
		canonical[normalizeKey(key)] = key
	}
	out := make(map[string]any, len(fk.Keys()))
	for key, value := range fk.All() {
		name, ok := canonical[normalizeKey(key)]
		if !ok {
			return nil, fmt.Errorf("config file %q: unknown field %q", path, key)
		}
		out[name] = value
	}
	return out, nil
}

// flagsMap collects explicitly set flags that correspond to config keys.
func flagsMap(flags *pflag.FlagSet) map[string]any {
	m := make(map[string]any)
	flags.Visit(func(f *pflag.Flag) {
		if !slices.Contains(Keys, f.Name) {
			return
		}
		switch f.Value.Type() {
		case "stringSlice":
			if v, err := flags.GetStringSlice(f.Name); err == nil {
				m[f.Name] = v
			}
		case "bool":
			if v, err := flags.GetBool(f.Name); err == nil {
				m[f.Name] = v
			}
		case "int":
			if v, err := flags.GetInt(f.Name); err == nil {
				m[f.Name] = v
			}
		case "duration":
			if v, err := flags.GetDuration(f.Name); err == nil {
				m[f.Name] = v.String()
			}
		default:
			m[f.Name] = f.Value.String()
		}
	})
	return m
}

func normalizeKey(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	lowered = strings.ReplaceAll(lowered, "-", "")
	lowered = strings.ReplaceAll(lowered, "_", "")
	return lowered
}

func (c *Config) normalize() {
	c.Input = sanitizeList(c.Input)
	c.Out = strings.TrimSpace(c.Out)
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	c.IncludeTags = sanitizeList(c.IncludeTags)
	c.ExcludeTags = sanitizeList(c.ExcludeTags)
	c.Methods = sanitizeList(c.Methods)
	for i, m := range c.Methods {
		c.Methods[i] = strings.ToLower(m)
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if len(c.Input) == 0 {
		return fmt.Errorf("--input is required (set via flag or config file)")
	}
	switch c.Format {
	case "", "json", "yaml":
	default:
		return fmt.Errorf("unsupported --format %q (allowed: json, yaml)", c.Format)
	}
	for _, m := range c.Methods {
		if !slices.Contains(validMethods, m) {
			return fmt.Errorf("invalid method %q (valid: %s)", m, strings.Join(validMethods, ", "))
		}
	}
	if overlap := intersect(c.IncludeTags, c.ExcludeTags); len(overlap) > 0 {
		return fmt.Errorf("include/exclude tags overlap: %s", strings.Join(overlap, ", "))
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("http-timeout must not be negative")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max-retries must not be negative")
	}
	return nil
}

func sanitizeList(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(items))
	result := make([]string, 0, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func intersect(a, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(a))
	for _, item := range a {
		set[item] = struct{}{}
	}
	var result []string
	for _, item := range b {
		if _, ok := set[item]; ok {
			result = append(result, item)
		}
	}
	return result
}
