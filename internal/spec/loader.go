package spec

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

// Settings configures loader behavior.
type Settings struct {
	// HTTPTimeout bounds each HTTP request.
	HTTPTimeout time.Duration
	// MaxRetries for transient HTTP failures (>=500, 429, or network errors).
	MaxRetries int
	// BackoffBase is the base delay for exponential backoff.
	BackoffBase time.Duration
	// AllowFileRefs permits file-based external refs in OpenAPI 3 inputs.
	// Always allowed when the root input is a local file.
	AllowFileRefs bool
	Logger        Logger
}

// DefaultSettings returns recommended defaults.
func DefaultSettings() Settings {
	return Settings{
		HTTPTimeout: 10 * time.Second,
		MaxRetries:  3,
		BackoffBase: 200 * time.Millisecond,
		Logger:      NopLogger{},
	}
}

// Option mutates Settings.
type Option func(*Settings)

func WithHTTPTimeout(d time.Duration) Option { return func(s *Settings) { s.HTTPTimeout = d } }
func WithMaxRetries(n int) Option            { return func(s *Settings) { s.MaxRetries = n } }
func WithBackoffBase(d time.Duration) Option { return func(s *Settings) { s.BackoffBase = d } }
func WithAllowFileRefs(allow bool) Option    { return func(s *Settings) { s.AllowFileRefs = allow } }

// WithLoadLogger sets the logger used for fetch retries and conversion notes.
func WithLoadLogger(l Logger) Option {
	return func(s *Settings) {
		if l != nil {
			s.Logger = l
		}
	}
}

// Load reads a document and returns it as Swagger 2.0 text ready for
// ParseDocument. Swagger 2.0 input is returned unchanged so that key order
// survives; OpenAPI 3 input is down-converted with kin-openapi.
//
// input may be a filesystem path or an http/https URL. file:// URLs are
// blocked.
func Load(ctx context.Context, input string, opts ...Option) ([]byte, error) {
	if strings.TrimSpace(input) == "" {
		return nil, &SpecError{Code: InputError, Message: "spec: input is empty"}
	}

	settings := DefaultSettings()
	for _, opt := range opts {
		opt(&settings)
	}

	raw, location, rootIsFile, err := read(ctx, input, settings)
	if err != nil {
		return nil, err
	}

	switch detectSpecVersion(raw) {
	case 3:
		settings.Logger.Debug("converting OpenAPI 3 document", "location", location.String())
		out, err := convertV3ToV2(raw, location, settings, rootIsFile)
		if err != nil {
			return nil, withLocation(err, input)
		}
		return out, nil
	case 2:
		return raw, nil
	default:
		settings.Logger.Warn("document declares no known version, reading it as swagger 2.0", "location", input)
		return raw, nil
	}
}

func read(ctx context.Context, input string, settings Settings) ([]byte, *url.URL, bool, error) {
	u, uerr := url.Parse(input)
	isURL := uerr == nil && u.Scheme != "" && u.Host != ""
	if uerr == nil && strings.EqualFold(u.Scheme, "file") {
		return nil, nil, false, &SpecError{Code: InputError, Message: "spec: file:// URLs are blocked", Location: input}
	}

	if isURL {
		scheme := strings.ToLower(u.Scheme)
		if scheme != "http" && scheme != "https" {
			return nil, nil, false, &SpecError{Code: InputError, Message: fmt.Sprintf("spec: unsupported URL scheme %q (only http/https allowed)", scheme), Location: input}
		}
		raw, err := fetchWithRetry(ctx, input, settings)
		if err != nil {
			return nil, nil, false, &SpecError{Code: NetworkError, Message: fmt.Sprintf("fetch %s: %v", input, err), Location: input, Cause: err}
		}
		return raw, u, false, nil
	}

	abs, err := filepath.Abs(input)
	if err != nil {
		return nil, nil, false, &SpecError{Code: InputError, Message: fmt.Sprintf("resolve path: %v", err), Location: input, Cause: err}
	}
	raw, err := os.ReadFile(abs)
	if err != nil {
		return nil, nil, false, &SpecError{Code: InputError, Message: fmt.Sprintf("read file %s: %v", abs, err), Location: abs, Cause: err}
	}
	return raw, &url.URL{Path: filepath.ToSlash(abs)}, true, nil
}

// detectSpecVersion returns 3 for OpenAPI v3, 2 for Swagger v2 and 0 when
// neither marker is present or the text does not parse as a mapping.
func detectSpecVersion(data []byte) int {
	var root struct {
		OpenAPI string `yaml:"openapi"`
		Swagger string `yaml:"swagger"`
	}
	if err := yaml.Unmarshal(data, &root); err != nil {
		return 0
	}
	if strings.HasPrefix(strings.TrimSpace(root.OpenAPI), "3.") {
		return 3
	}
	if strings.HasPrefix(strings.TrimSpace(root.Swagger), "2.") {
		return 2
	}
	return 0
}

func convertV3ToV2(raw []byte, location *url.URL, settings Settings, rootIsFile bool) ([]byte, error) {
	loader := newLoader(settings, rootIsFile)
	doc, err := loader.LoadFromDataWithPath(raw, location)
	if err != nil {
		return nil, mapLoadErr(err, location.String())
	}
	if doc.Components == nil {
		doc.Components = &openapi3.Components{}
	}
	if doc.Info == nil {
		doc.Info = &openapi3.Info{}
	}
	v2, err := fromV3(doc)
	if err != nil {
		return nil, &SpecError{Code: ConversionError, Message: fmt.Sprintf("convert v3→v2: %v", err), Cause: err}
	}
	out, err := json.Marshal(v2)
	if err != nil {
		return nil, &SpecError{Code: ConversionError, Message: fmt.Sprintf("encode converted document: %v", err), Cause: err}
	}
	return out, nil
}

// fromV3 runs the down-conversion, reporting a panic on a shape the
// converter does not handle as an error.
func fromV3(doc *openapi3.T) (v2 *openapi2.T, err error) {
	defer func() {
		if r := recover(); r != nil {
			v2, err = nil, fmt.Errorf("converter panic: %v", r)
		}
	}()
	return openapi2conv.FromV3(doc)
}

func newLoader(settings Settings, rootIsFile bool) *openapi3.Loader {
	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = true
	client := &http.Client{Timeout: settings.HTTPTimeout}
	allowFile := settings.AllowFileRefs || rootIsFile
	loader.ReadFromURIFunc = func(l *openapi3.Loader, uri *url.URL) ([]byte, error) {
		switch strings.ToLower(uri.Scheme) {
		case "", "file":
			if !allowFile {
				return nil, fmt.Errorf("blocked file ref: %s", uri.String())
			}
			path := uri.Path
			if path == "" {
				path = uri.Opaque
			}
			return os.ReadFile(filepath.FromSlash(path))
		case "http", "https":
			resp, err := client.Get(uri.String())
			if err != nil {
				return nil, err
			}
			defer resp.Body.Close()
			if resp.StatusCode >= 400 {
				return nil, fmt.Errorf("http %d: %s", resp.StatusCode, uri.String())
			}
			return io.ReadAll(resp.Body)
		default:
			return nil, fmt.Errorf("unsupported ref scheme: %s", uri.Scheme)
		}
	}
	return loader
}

func fetchWithRetry(ctx context.Context, rawURL string, settings Settings) ([]byte, error) {
	client := &http.Client{Timeout: settings.HTTPTimeout}
	var lastErr error
	backoff := settings.BackoffBase
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}
	attempts := settings.MaxRetries
	if attempts <= 0 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		body, retry, err := fetchOnce(ctx, client, rawURL)
		if err == nil {
			return body, nil
		}
		if !retry {
			return nil, err
		}
		lastErr = err
		settings.Logger.Debug("retrying fetch", "url", rawURL, "attempt", i+1, "error", err)
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	if lastErr == nil {
		lastErr = errors.New("fetch failed")
	}
	return nil, lastErr
}

// fetchOnce performs one GET. retry reports whether the failure is transient.
func fetchOnce(ctx context.Context, client *http.Client, rawURL string) (body []byte, retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, false, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, ctx.Err() == nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 300 {
		body, err := io.ReadAll(resp.Body)
		return body, false, err
	}
	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return nil, true, fmt.Errorf("transient http error %d", resp.StatusCode)
	}
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return nil, false, fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
}

func mapLoadErr(err error, location string) error {
	return &SpecError{Code: ParseError, Message: err.Error(), Location: location, JSONPointer: extractJSONPointer(err), Cause: err}
}

var jsonPtrRe = regexp.MustCompile(`#/[^\s'"]+`)

func extractJSONPointer(err error) string {
	if err == nil {
		return ""
	}
	var me openapi3.MultiError
	if errors.As(err, &me) && len(me) > 0 {
		return extractJSONPointer(me[0])
	}
	var se *openapi3.SchemaError
	if errors.As(err, &se) {
		if parts := se.JSONPointer(); len(parts) > 0 {
			return "#/" + strings.Join(parts, "/")
		}
	}
	return jsonPtrRe.FindString(err.Error())
}
