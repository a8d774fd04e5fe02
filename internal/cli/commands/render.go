package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/muesli/termenv"
	"golang.org/x/term"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/sqllineage/internal/config"
	"github.com/leapstack-labs/sqllineage/pkg/lineage"
)

// sourcedResult is an extraction result together with the input it came
// from.
type sourcedResult struct {
	Source string
	lineage.Result
}

// resultJSON is the JSON shape of one statement.
type resultJSON struct {
	Source string          `json:"source"`
	Index  int             `json:"index"`
	Record *lineage.Record `json:"record,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// renderer writes results as JSON or as tables.
type renderer struct {
	w      io.Writer
	format string
	out    *termenv.Output
}

// newRenderer resolves the auto format against w: a terminal gets tables,
// anything else JSON.
func newRenderer(w io.Writer, format string) *renderer {
	if format == "" || format == config.OutputAuto {
		format = config.OutputJSON
		if isTerminal(w) {
			format = config.OutputTable
		}
	}
	return &renderer{w: w, format: format, out: termenv.NewOutput(w)}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (r *renderer) writeJSON(v any) error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// results renders extraction results in input order.
func (r *renderer) results(results []sourcedResult) error {
	if r.format == config.OutputJSON {
		out := make([]resultJSON, len(results))
		for i, res := range results {
			out[i] = resultJSON{Source: res.Source, Index: res.Index, Record: res.Record}
			if res.Err != nil {
				out[i].Error = res.Err.Error()
			}
		}
		return r.writeJSON(out)
	}

	for i, res := range results {
		if i > 0 {
			_, _ = fmt.Fprintln(r.w)
		}
		r.recordTable(res)
	}
	return nil
}

func (r *renderer) recordTable(res sourcedResult) {
	heading := fmt.Sprintf("%s #%d", res.Source, res.Index+1)
	if res.Err != nil {
		_, _ = fmt.Fprintf(r.w, "%s  %s\n", heading, r.out.String("error: "+res.Err.Error()).Foreground(r.out.Color("1")))
		return
	}

	rec := res.Record
	_, _ = fmt.Fprintf(r.w, "%s  %s  confidence %s\n", heading, queryTypeTitle(rec.QueryType), r.confidence(rec.DebugInfo.Confidence))
	for _, in := range rec.InTables {
		_, _ = fmt.Fprintf(r.w, "  in:  %s\n", datasetName(in))
	}
	for _, out := range rec.OutTables {
		_, _ = fmt.Fprintf(r.w, "  out: %s\n", datasetName(out))
	}
	for _, w := range rec.DebugInfo.Warnings {
		_, _ = fmt.Fprintf(r.w, "  %s\n", r.out.String("warning: "+w.String()).Foreground(r.out.Color("3")))
	}
	if len(rec.ColumnLineage) == 0 {
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Column", "Type", "Upstream"})
	for _, edge := range rec.ColumnLineage {
		ups := make([]string, len(edge.Upstreams))
		for i, up := range edge.Upstreams {
			ups[i] = datasetName(up.Table) + "." + up.Column
		}
		if len(ups) == 0 {
			ups = []string{"-"}
		}
		t.AppendRow(table.Row{edge.Downstream.Column, edge.Downstream.ColumnType, strings.Join(ups, "\n")})
	}
	t.Render()
}

// confidence colours a score green, yellow or red. Colours are dropped
// when the output is not a terminal.
func (r *renderer) confidence(score float64) string {
	color := "1"
	switch {
	case score >= 0.9:
		color = "2"
	case score >= 0.5:
		color = "3"
	}
	return r.out.String(fmt.Sprintf("%.2f", score)).Foreground(r.out.Color(color)).String()
}

// queryTypeTitle turns CREATE_TABLE_AS_SELECT into "Create Table As Select".
func queryTypeTitle(qt lineage.QueryType) string {
	return cases.Title(language.English).String(strings.ReplaceAll(strings.ToLower(string(qt)), "_", " "))
}

// datasetName extracts the qualified table name from a dataset URN.
func datasetName(urn string) string {
	first := strings.IndexByte(urn, ',')
	last := strings.LastIndexByte(urn, ',')
	if first < 0 || last <= first {
		return urn
	}
	return urn[first+1 : last]
}
