package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/swagger2doc/internal/config"
	"github.com/mark3labs/swagger2doc/internal/emitter"
	genspec "github.com/mark3labs/swagger2doc/internal/spec"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentInputs bounds how many documents are loaded and extracted at once.
const maxConcurrentInputs = 4

var tablesRunner = runTables

func newTablesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tables [input...]",
		Short: "Extract per-operation documentation tables from Swagger/OpenAPI documents",
		Long: "Extract per-operation documentation tables from Swagger/OpenAPI documents. " +
			"Each input yields one result grouped by tag. Options can be provided via flags, config files, or defaults.",
		Example: strings.TrimSpace(`  swagger2doc tables --input petstore.json
  swagger2doc tables --input petstore.json --input https://example.com/v2/swagger.json --out ./docs --format yaml
  swagger2doc --config swagger2doc.yaml tables --dry-run`),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, arg := range args {
				if err := cmd.Flags().Set("input", arg); err != nil {
					return newUsageError(fmt.Sprintf("tables: input %q: %v", arg, err))
				}
			}
			configPath, err := cmd.Flags().GetString("config")
			if err != nil {
				return err
			}
			cfg, err := config.Load(configPath, cmd.Flags())
			if err != nil {
				return newUsageError(fmt.Sprintf("tables: %v", err))
			}
			return tablesRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringSlice("input", nil, "Path or URL to a Swagger/OpenAPI document (repeatable)")
	flags.String("out", "", "Output directory; results are printed to stdout when omitted")
	flags.String("format", "", "Output format (json|yaml); defaults to json")
	flags.StringSlice("include-tags", nil, "Only include operations with these tags")
	flags.StringSlice("exclude-tags", nil, "Exclude operations with these tags")
	flags.StringSlice("methods", nil, "Only include operations with these HTTP methods")
	flags.Bool("sample-primitive-arrays", false, "Give arrays of primitives one placeholder element in examples")
	flags.Duration("http-timeout", 0, "Timeout for each HTTP request when fetching remote documents")
	flags.Int("max-retries", 0, "Attempts for transient HTTP failures")
	flags.Bool("dry-run", false, "Preview planned outputs without writing files")
	flags.Bool("force", false, "Overwrite existing output files when set")

	return cmd
}

func runTables(ctx context.Context, cfg *config.Config) error {
	logger := newLogger(os.Stderr, cfg.Verbose)

	format, err := emitter.ParseFormat(cfg.Format)
	if err != nil {
		return newUsageError(err.Error())
	}

	docs, err := extractAll(ctx, cfg, logger)
	if err != nil {
		return err
	}

	if strings.TrimSpace(cfg.Out) == "" {
		return printDocuments(os.Stdout, docs, format)
	}

	absOut := cfg.Out
	if ap, err := filepath.Abs(cfg.Out); err == nil {
		absOut = ap
	}
	res, err := emitter.Emit(ctx, docs, emitter.Options{
		OutDir: cfg.Out,
		Format: format,
		Force:  cfg.Force,
		DryRun: cfg.DryRun,
	})
	if err != nil {
		return wrapOutputError(err, absOut)
	}
	if cfg.DryRun {
		printPlan(absOut, res.Planned)
		return nil
	}
	for _, p := range res.Planned {
		logger.Info("wrote tables", "file", filepath.Join(absOut, p.RelPath), "tables", p.Tables)
	}
	return nil
}

// extractAll loads and extracts every input concurrently. Each document owns
// its registry; results keep input order.
func extractAll(ctx context.Context, cfg *config.Config, logger *slog.Logger) ([]emitter.Document, error) {
	docs := make([]emitter.Document, len(cfg.Input))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentInputs)
	for i, input := range cfg.Input {
		g.Go(func() error {
			doc, err := extractOne(gctx, input, cfg, logger.With("input", input))
			if err != nil {
				return err
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

func extractOne(ctx context.Context, input string, cfg *config.Config, logger *slog.Logger) (emitter.Document, error) {
	adapter := genspec.NewSlogAdapter(logger)

	loadOpts := []genspec.Option{genspec.WithLoadLogger(adapter)}
	if cfg.HTTPTimeout > 0 {
		loadOpts = append(loadOpts, genspec.WithHTTPTimeout(cfg.HTTPTimeout))
	}
	if cfg.MaxRetries > 0 {
		loadOpts = append(loadOpts, genspec.WithMaxRetries(cfg.MaxRetries))
	}
	raw, err := genspec.Load(ctx, input, loadOpts...)
	if err != nil {
		return emitter.Document{}, specUsageError(err)
	}

	methods := make([]genspec.HttpMethod, 0, len(cfg.Methods))
	for _, m := range cfg.Methods {
		methods = append(methods, genspec.HttpMethod(m))
	}
	res := genspec.Generate(ctx, raw,
		genspec.WithIncludeTags(cfg.IncludeTags),
		genspec.WithExcludeTags(cfg.ExcludeTags),
		genspec.WithMethods(methods),
		genspec.WithSamplePrimitiveArrays(cfg.SamplePrimitiveArrays),
		genspec.WithLogger(adapter),
	)
	logger.Debug("extracted document", "title", res.Title(), "groups", len(res.Tables), "tables", res.Len())

	name := emitter.DeriveName(res.Title())
	if name == "" {
		name = emitter.SanitizeName(strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)))
	}
	return emitter.Document{Name: name, Result: res}, nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func printDocuments(w io.Writer, docs []emitter.Document, format emitter.Format) error {
	for i, doc := range docs {
		content, err := emitter.Render(doc.Result, format)
		if err != nil {
			return err
		}
		if i > 0 && format == emitter.YAML {
			if _, err := io.WriteString(w, "---\n"); err != nil {
				return err
			}
		}
		if _, err := w.Write(content); err != nil {
			return err
		}
	}
	return nil
}

func printPlan(outDir string, planned []emitter.PlannedFile) {
	fmt.Fprintf(os.Stdout, "Planned writes to %s (%d files):\n", outDir, len(planned))
	for _, p := range planned {
		fmt.Fprintf(os.Stdout, "- %s (%d tables)\n", p.RelPath, p.Tables)
	}
}

func wrapOutputError(err error, outDir string) error {
	msg := err.Error()
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "permission") || strings.Contains(lower, "read-only") || strings.Contains(lower, "mkdir") || strings.Contains(lower, "rename") || strings.Contains(lower, "already exists") {
		return newUsageError(fmt.Sprintf("output error for %s: %s\nHint: choose a different --out or use --force when appropriate.", outDir, msg))
	}
	return err
}
