// Package commands implements the sqllineage subcommands.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqllineage/internal/catalog"
	"github.com/leapstack-labs/sqllineage/internal/config"
	"github.com/leapstack-labs/sqllineage/pkg/lineage"
)

// stdinName labels SQL read from standard input.
const stdinName = "<stdin>"

// input is one SQL source.
type input struct {
	Name string
	SQL  string
}

// newExtractor builds an extractor from the configuration in ctx, loading
// the schema catalog when one is configured.
func newExtractor(ctx context.Context) (*lineage.Extractor, error) {
	cfg := config.FromContext(ctx)
	logger := config.GetLogger(ctx)

	opts := []lineage.Option{lineage.WithLogger(logger)}
	if cfg.Catalog.Enabled() {
		cat, err := catalog.Load(ctx, cfg.Catalog, logger)
		if err != nil {
			return nil, err
		}
		opts = append(opts, lineage.WithCatalog(cat))
	}
	return lineage.NewExtractor(cfg.LineageOptions(), opts...)
}

// readInputs reads every file argument. No arguments, or "-", reads stdin.
func readInputs(cmd *cobra.Command, args []string) ([]input, error) {
	if len(args) == 0 {
		args = []string{"-"}
	}
	inputs := make([]input, 0, len(args))
	for _, arg := range args {
		in, err := readInput(cmd.InOrStdin(), arg)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}

func readInput(stdin io.Reader, name string) (input, error) {
	if name == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return input{}, fmt.Errorf("failed to read stdin: %w", err)
		}
		return input{Name: stdinName, SQL: string(data)}, nil
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return input{}, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return input{Name: name, SQL: string(data)}, nil
}
