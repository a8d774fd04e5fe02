package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqllineage/internal/config"
	"github.com/leapstack-labs/sqllineage/pkg/lineage"
)

// ExtractOptions holds options for the extract command.
type ExtractOptions struct {
	Lines bool
	Watch bool
}

// NewExtractCommand creates the extract command.
func NewExtractCommand() *cobra.Command {
	opts := &ExtractOptions{}

	cmd := &cobra.Command{
		Use:   "extract [file...]",
		Short: "Extract table and column lineage from SQL",
		Long: `Extract table and column lineage from SQL files or standard input.

Every statement yields one lineage record. A statement that fails to parse
is reported on its own and does not stop the others.`,
		Example: `  # Extract lineage from a script
  sqllineage extract --dialect snowflake models/orders.sql

  # Read from stdin
  echo "CREATE VIEW v AS SELECT id FROM t" | sqllineage extract

  # One query per line, extracted in parallel
  sqllineage extract --lines --workers 8 query_log.sql

  # Re-extract whenever the files change
  sqllineage extract --watch -o table models/*.sql`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Lines, "lines", false, "Treat each non-empty line as a separate query")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Re-extract when input files change")

	return cmd
}

func runExtract(cmd *cobra.Command, args []string, opts *ExtractOptions) error {
	ctx := cmd.Context()
	if opts.Watch && (len(args) == 0 || slices.Contains(args, "-")) {
		return errors.New("--watch needs file arguments")
	}

	ex, err := newExtractor(ctx)
	if err != nil {
		return err
	}
	inputs, err := readInputs(cmd, args)
	if err != nil {
		return err
	}

	cfg := config.FromContext(ctx)
	r := newRenderer(cmd.OutOrStdout(), cfg.Output)
	results := extractInputs(ctx, ex, inputs, opts.Lines)
	if err := r.results(results); err != nil {
		return err
	}

	if opts.Watch {
		logger := config.GetLogger(ctx)
		return watchFiles(ctx, args, logger, func(path string) {
			in, err := readInput(nil, path)
			if err != nil {
				logger.Warn("failed to re-read input", slog.String("file", path), slog.Any("error", err))
				return
			}
			if err := r.results(extractInputs(ctx, ex, []input{in}, opts.Lines)); err != nil {
				logger.Warn("failed to render results", slog.Any("error", err))
			}
		})
	}

	if failed := countFailures(results); failed > 0 {
		return fmt.Errorf("%d of %d statements failed", failed, len(results))
	}
	return nil
}

// extractInputs extracts every statement of every input. With lines set,
// each non-empty line is one query and the queries run on the extractor's
// worker pool.
func extractInputs(ctx context.Context, ex *lineage.Extractor, inputs []input, lines bool) []sourcedResult {
	logger := config.GetLogger(ctx)
	if lines {
		return extractLines(ctx, ex, inputs)
	}

	var out []sourcedResult
	for _, in := range inputs {
		results, err := ex.ExtractScript(in.SQL)
		if err != nil {
			out = append(out, sourcedResult{Source: in.Name, Result: lineage.Result{SQL: in.SQL, Err: err}})
			continue
		}
		logger.Debug("input extracted", slog.String("source", in.Name), slog.Int("statements", len(results)))
		for _, res := range results {
			out = append(out, sourcedResult{Source: in.Name, Result: res})
		}
	}
	return out
}

func extractLines(ctx context.Context, ex *lineage.Extractor, inputs []input) []sourcedResult {
	var sources []string
	var queries []string
	for _, in := range inputs {
		for i, line := range strings.Split(in.SQL, "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "--") {
				continue
			}
			sources = append(sources, fmt.Sprintf("%s:%d", in.Name, i+1))
			queries = append(queries, line)
		}
	}

	results := ex.ExtractBatch(ctx, queries)
	out := make([]sourcedResult, len(results))
	for i, res := range results {
		// Each line holds a single statement.
		res.Index = 0
		out[i] = sourcedResult{Source: sources[i], Result: res}
	}
	config.GetLogger(ctx).Debug("batch extracted", slog.Int("queries", len(queries)))
	return out
}

func countFailures(results []sourcedResult) int {
	n := 0
	for _, res := range results {
		if res.Err != nil {
			n++
		}
	}
	return n
}
