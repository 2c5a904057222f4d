package emitter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	genspec "github.com/mark3labs/swagger2doc/internal/spec"
	"gopkg.in/yaml.v3"
)

// Format selects the serialization of emitted tables.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
)

// ParseFormat maps a flag value to a Format; empty means JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	default:
		return "", fmt.Errorf("emitter: unsupported format %q (allowed: json, yaml)", s)
	}
}

// Document is one extracted input destined for its own output file.
type Document struct {
	// Name is the preferred file stem; derived from the result title when empty.
	Name   string
	Result *genspec.Result
}

// Options controls where and how documents are written.
type Options struct {
	OutDir string // required; target directory
	Format Format
	Force  bool // overwrite existing files
	DryRun bool // don't write, only plan
}

// PlannedFile describes a file the emitter intends to write.
type PlannedFile struct {
	RelPath string
	Size    int
	Mode    os.FileMode
	Tables  int
}

// Result returns the planned files in deterministic order.
type Result struct {
	Planned []PlannedFile
}

// Emit renders every document and writes one file per document under
// opts.OutDir. A stem already taken by an earlier document gets -2, -3 and
// so on appended until the file name is unused.
func Emit(ctx context.Context, docs []Document, opts Options) (*Result, error) {
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("emitter: OutDir is required")
	}
	format := opts.Format
	if format == "" {
		format = JSON
	}

	files := map[string][]byte{}
	tables := map[string]int{}
	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if doc.Result == nil {
			return nil, fmt.Errorf("emitter: document %d has no result", i)
		}
		stem := SanitizeName(doc.Name)
		if stem == "" {
			stem = DeriveName(doc.Result.Title())
		}
		if stem == "" {
			stem = "api-" + strconv.Itoa(i+1)
		}
		rel := stem + "." + string(format)
		for n := 2; ; n++ {
			if _, taken := files[rel]; !taken {
				break
			}
			rel = stem + "-" + strconv.Itoa(n) + "." + string(format)
		}
		content, err := Render(doc.Result, format)
		if err != nil {
			return nil, err
		}
		files[rel] = content
		tables[rel] = doc.Result.Len()
	}

	rels := make([]string, 0, len(files))
	for p := range files {
		rels = append(rels, p)
	}
	sort.Strings(rels)

	planned := make([]PlannedFile, 0, len(rels))
	for _, rel := range rels {
		planned = append(planned, PlannedFile{RelPath: rel, Size: len(files[rel]), Mode: 0o644, Tables: tables[rel]})
	}

	if !opts.DryRun {
		if err := writeFiles(opts.OutDir, files, opts.Force); err != nil {
			return nil, err
		}
	}
	return &Result{Planned: planned}, nil
}

// Render serializes a result. JSON is indented with two spaces and leaves
// HTML characters unescaped so embedded examples stay readable.
func Render(res *genspec.Result, format Format) ([]byte, error) {
	switch format {
	case "", JSON:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return nil, fmt.Errorf("emitter: encode json: %w", err)
		}
		return buf.Bytes(), nil
	case YAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(res); err != nil {
			return nil, fmt.Errorf("emitter: encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("emitter: encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("emitter: unsupported format %q", format)
	}
}

func writeFiles(outDir string, files map[string][]byte, force bool) error {
	abs, err := filepath.Abs(outDir)
	if err != nil {
		return fmt.Errorf("resolve out dir: %w", err)
	}
	if !force {
		for rel := range files {
			if _, err := os.Stat(filepath.Join(abs, rel)); err == nil {
				return fmt.Errorf("emitter: output file %q already exists (use --force to overwrite)", filepath.Join(abs, rel))
			}
		}
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	for rel, content := range files {
		p := filepath.Join(abs, rel)
		tmp := p + ".tmp-" + time.Now().Format("20060102150405")
		if err := os.WriteFile(tmp, content, 0o644); err != nil {
			return fmt.Errorf("write temp %s: %w", rel, err)
		}
		if err := os.Rename(tmp, p); err != nil {
			_ = os.Remove(tmp)
			return fmt.Errorf("rename %s: %w", rel, err)
		}
	}
	return nil
}

// SanitizeName lowercases name and keeps only letters, digits, dash and
// underscore, turning spaces and slashes into dashes.
func SanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	name = strings.ReplaceAll(name, " ", "-")
	name = strings.ReplaceAll(name, "/", "-")
	name = strings.ToLower(name)
	b := strings.Builder{}
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "-")
}

// DeriveName turns a document title into a dash-separated file stem.
func DeriveName(title string) string {
	t := strings.ToLower(strings.TrimSpace(title))
	if t == "" {
		return ""
	}
	repl := strings.NewReplacer("/", " ", "_", " ", ".", " ", ",", " ", ":", " ")
	parts := strings.Fields(repl.Replace(t))
	if len(parts) == 0 {
		return ""
	}
	return SanitizeName(strings.Join(parts, "-"))
}
