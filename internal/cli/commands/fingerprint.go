package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqllineage/internal/config"
)

// fingerprintJSON is the JSON shape of one fingerprinted statement.
type fingerprintJSON struct {
	Source      string `json:"source"`
	Index       int    `json:"index"`
	Generalized string `json:"generalized_statement,omitempty"`
	Fingerprint string `json:"query_fingerprint,omitempty"`
	Error       string `json:"error,omitempty"`
}

// NewFingerprintCommand creates the fingerprint command.
func NewFingerprintCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint [file...]",
		Short: "Print the generalized form and fingerprint of each statement",
		Long: `Print the generalized form and fingerprint of each statement.

Statements that differ only in literal values or formatting share one
generalized form, and so one fingerprint.`,
		Example: `  sqllineage fingerprint query.sql
  echo "SELECT * FROM t WHERE id = 42" | sqllineage fingerprint -o json`,
		RunE: runFingerprint,
	}
}

func runFingerprint(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	ex, err := newExtractor(ctx)
	if err != nil {
		return err
	}
	inputs, err := readInputs(cmd, args)
	if err != nil {
		return err
	}

	results := extractInputs(ctx, ex, inputs, false)
	out := make([]fingerprintJSON, len(results))
	for i, res := range results {
		out[i] = fingerprintJSON{Source: res.Source, Index: res.Index}
		if res.Err != nil {
			out[i].Error = res.Err.Error()
			continue
		}
		out[i].Generalized = res.Record.DebugInfo.GeneralizedStatement
		out[i].Fingerprint = res.Record.QueryFingerprint
	}

	r := newRenderer(cmd.OutOrStdout(), config.FromContext(ctx).Output)
	if r.format == config.OutputJSON {
		if err := r.writeJSON(out); err != nil {
			return err
		}
	} else {
		for _, fp := range out {
			if fp.Error != "" {
				_, _ = fmt.Fprintf(r.w, "%s #%d  error: %s\n", fp.Source, fp.Index+1, fp.Error)
				continue
			}
			_, _ = fmt.Fprintf(r.w, "%s #%d  %s\n  %s\n", fp.Source, fp.Index+1, fp.Fingerprint, fp.Generalized)
		}
	}

	if failed := countFailures(results); failed > 0 {
		return fmt.Errorf("%d of %d statements failed", failed, len(results))
	}
	return nil
}
