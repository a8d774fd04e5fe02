package format

import (
	"bytes"
	"strings"

	"github.com/leapstack-labs/sqllineage/pkg/dialect"
	"github.com/leapstack-labs/sqllineage/pkg/token"
)

// Printer accumulates single-line SQL text.
type Printer struct {
	dialect    *dialect.Dialect
	output     *bytes.Buffer
	generalize bool
}

func newPrinter(d *dialect.Dialect, generalize bool) *Printer {
	return &Printer{
		dialect:    d,
		output:     &bytes.Buffer{},
		generalize: generalize,
	}
}

// String returns the rendered text.
func (p *Printer) String() string {
	return strings.TrimSpace(p.output.String())
}

func (p *Printer) write(s string) {
	p.output.WriteString(s)
}

func (p *Printer) space() {
	p.output.WriteByte(' ')
}

// kw prints keywords from their token types, separated by spaces.
func (p *Printer) kw(tokens ...token.TokenType) {
	for i, t := range tokens {
		if i > 0 {
			p.space()
		}
		p.write(t.String())
	}
}

// keyword prints a word that has no builtin token, upper-cased.
func (p *Printer) keyword(s string) {
	p.write(strings.ToUpper(s))
}

// ident prints a normalized identifier, quoting it when the bare form would
// not lex back to the same name.
func (p *Printer) ident(name string) {
	if p.dialect.NeedsQuoting(name) {
		p.write(p.dialect.QuoteIdentifier(name))
		return
	}
	p.write(name)
}

// qualified prints dot-joined identifier parts, skipping empty ones.
func (p *Printer) qualified(parts ...string) {
	first := true
	for _, part := range parts {
		if part == "" {
			continue
		}
		if !first {
			p.write(".")
		}
		p.ident(part)
		first = false
	}
}

// formatList prints count items separated by sep.
func (p *Printer) formatList(count int, format func(i int), sep string) {
	for i := 0; i < count; i++ {
		if i > 0 {
			p.write(sep)
		}
		format(i)
	}
}

func (p *Printer) identList(names []string) {
	p.write("(")
	p.formatList(len(names), func(i int) { p.ident(names[i]) }, ", ")
	p.write(")")
}
