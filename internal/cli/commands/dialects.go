package commands

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqllineage/internal/config"
	"github.com/leapstack-labs/sqllineage/pkg/core"
	"github.com/leapstack-labs/sqllineage/pkg/dialect"
)

// dialectJSON describes a registered dialect.
type dialectJSON struct {
	Name          string `json:"name"`
	Quote         string `json:"quote"`
	Normalization string `json:"normalization"`
	DefaultSchema string `json:"default_schema,omitempty"`
}

// NewDialectsCommand creates the dialects command.
func NewDialectsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dialects",
		Short: "List supported SQL dialects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			names := dialect.List()
			out := make([]dialectJSON, 0, len(names))
			for _, name := range names {
				d, _ := dialect.Get(name)
				out = append(out, dialectJSON{
					Name:          d.Name,
					Quote:         d.Identifiers.Quote + d.Identifiers.QuoteEnd,
					Normalization: normalizationName(d.Identifiers.Normalization),
					DefaultSchema: d.DefaultSchema,
				})
			}

			r := newRenderer(cmd.OutOrStdout(), config.FromContext(cmd.Context()).Output)
			if r.format == config.OutputJSON {
				return r.writeJSON(out)
			}

			t := table.NewWriter()
			t.SetOutputMirror(r.w)
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Dialect", "Quote", "Identifiers", "Default Schema"})
			for _, d := range out {
				t.AppendRow(table.Row{d.Name, d.Quote, d.Normalization, d.DefaultSchema})
			}
			t.Render()
			return nil
		},
	}
}

func normalizationName(n core.NormalizationStrategy) string {
	switch n {
	case core.NormUppercase:
		return "uppercase"
	case core.NormCaseSensitive:
		return "case-sensitive"
	case core.NormCaseInsensitive:
		return "case-insensitive"
	default:
		return "lowercase"
	}
}
