// Package renderer turns ledger views into markdown documents.
package renderer

import (
	"bytes"
	"io"

	"github.com/etnz/finance"
	md "github.com/nao1215/markdown"
)

// Options holds the configuration shared by every renderer.
type Options struct {
	Currency   string // ISO code used to format money, plain decimals when empty
	ShowHidden bool   // Also render hidden category groups and categories.
}

func (o Options) money(m finance.Money) string { return m.Format(o.Currency) }

// signed formats m with an explicit sign, "-" for zero.
func (o Options) signed(m finance.Money) string {
	if m.Round().IsZero() {
		return "-"
	}
	s := o.money(m)
	if m.IsPositive() {
		return "+" + s
	}
	return s
}

// ConditionalBlock let you fully write a block and decide at the end to print it or not.
// If the block function returns true, the content is printed to w, otherwise it is discarded.
func ConditionalBlock(w io.Writer, block func(io.Writer) bool) {
	bw := &bytes.Buffer{}
	if block(bw) {
		io.Copy(w, bw)
	}
}

// newDoc returns a markdown document writing to buf.
func newDoc(buf *bytes.Buffer) *md.Markdown { return md.NewMarkdown(buf) }

// table appends a table after a blank line.
func table(doc *md.Markdown, t md.TableSet) {
	doc.PlainText("")
	doc.Table(t)
}

// leftThenRight aligns the first column left and the n-1 others right.
func leftThenRight(n int) []md.TableAlignment {
	a := make([]md.TableAlignment, n)
	a[0] = md.AlignLeft
	for i := 1; i < n; i++ {
		a[i] = md.AlignRight
	}
	return a
}
