package spec

import (
	"context"
	"fmt"
)

// ExtractBytes parses raw Swagger 2.0 text and extracts its tables. A panic
// raised while resolving a malformed document is returned as an error.
func ExtractBytes(raw []byte, opts ...ExtractOption) (res *Result, err error) {
	doc, err := ParseDocument(raw)
	if err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = &SpecError{Code: ParseError, Message: fmt.Sprintf("extract tables: %v", r)}
		}
	}()
	return Extract(doc, opts...), nil
}

// Generate is the best-effort entry point: any failure is logged and an
// empty Result is returned instead of partial output.
func Generate(ctx context.Context, raw []byte, opts ...ExtractOption) *Result {
	cfg := newExtractConfig(opts)
	if err := ctx.Err(); err != nil {
		cfg.logger.Error("generation cancelled", "error", err)
		return emptyResult()
	}
	res, err := ExtractBytes(raw, opts...)
	if err != nil {
		cfg.logger.Error("generation failed", "error", err)
		return emptyResult()
	}
	return res
}
