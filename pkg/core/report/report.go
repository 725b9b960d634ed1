// Package report renders model results as Markdown and HTML.
package report

import (
	"bytes"
	"fmt"
	"html"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"finmodel/pkg/core/pipeline"
	"finmodel/pkg/core/store"
)

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Markdown renders a full run: headline values, warnings and every table.
func Markdown(res *pipeline.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title(res.Name))
	fmt.Fprintf(&b, "Run `%s` at %s\n\n", res.RunID, res.CreatedAt.UTC().Format("2006-01-02 15:04 MST"))

	b.WriteString("## Valuation\n\n")
	fmt.Fprintf(&b, "- Enterprise value: %s\n", store.FormatCell(res.EnterpriseValue, store.DefaultPlaces))
	fmt.Fprintf(&b, "- Net present value: %s\n", store.FormatCell(res.NetPresentValue, store.DefaultPlaces))
	fmt.Fprintf(&b, "- Discount rate: %s (%s)\n", store.FormatCell(res.DiscountRate, 4), res.RateSource)
	if res.Balance.AllBalanced {
		b.WriteString("- Balance checks: all years pass\n")
	} else {
		fmt.Fprintf(&b, "- Balance checks: %d violation(s)\n", len(res.Balance.Violations))
	}
	b.WriteString("\n")

	if len(res.Warnings) > 0 || res.BenchmarkError != "" {
		b.WriteString("## Warnings\n\n")
		if res.BenchmarkError != "" {
			fmt.Fprintf(&b, "- benchmark: %s\n", res.BenchmarkError)
		}
		for _, w := range res.Warnings {
			fmt.Fprintf(&b, "- %s\n", w.String())
		}
		b.WriteString("\n")
	}

	for _, t := range pipeline.Tables(res) {
		writeTable(&b, t)
	}
	return b.String()
}

// runMarkdown renders what a table writer sees of a run.
func runMarkdown(run store.Run, tables []store.Table) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title(run.Name))
	fmt.Fprintf(&b, "Run `%s`\n\n", run.ID)

	if len(run.Summary) > 0 {
		keys := make([]string, 0, len(run.Summary))
		for k := range run.Summary {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			places := store.DefaultPlaces
			if k == "discount_rate" {
				places = 4
			}
			fmt.Fprintf(&b, "- %s: %s\n", k, store.FormatCell(run.Summary[k], places))
		}
		b.WriteString("\n")
	}
	for _, t := range tables {
		writeTable(&b, t)
	}
	return b.String()
}

func writeTable(b *strings.Builder, t store.Table) {
	fmt.Fprintf(b, "## %s\n\n", title(t.Name))
	if len(t.Columns) == 0 {
		return
	}
	b.WriteString("| " + strings.Join(escapeCells(t.Columns), " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" ---: |", len(t.Columns)) + "\n")
	for _, row := range t.Strings() {
		b.WriteString("| " + strings.Join(escapeCells(row), " | ") + " |\n")
	}
	b.WriteString("\n")
}

func escapeCells(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.ReplaceAll(c, "|", `\|`)
	}
	return out
}

// title turns a snake_case label into words.
func title(s string) string {
	words := strings.Fields(strings.ReplaceAll(s, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	if len(words) == 0 {
		return "Model"
	}
	return strings.Join(words, " ")
}

// HTML converts Markdown into a standalone HTML page.
func HTML(markdown, pageTitle string) ([]byte, error) {
	var body bytes.Buffer
	if err := md.Convert([]byte(markdown), &body); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	var page bytes.Buffer
	fmt.Fprintf(&page, "<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>%s</title>%s</head><body>\n",
		html.EscapeString(pageTitle), pageStyle)
	page.Write(body.Bytes())
	page.WriteString("</body></html>\n")
	return page.Bytes(), nil
}

// TableCount returns how many tables a Markdown document holds.
func TableCount(markdown string) int {
	doc := md.Parser().Parse(text.NewReader([]byte(markdown)))
	n := 0
	for c := doc.FirstChild(); c != nil; c = c.NextSibling() {
		if c.Kind() == extast.KindTable {
			n++
		}
	}
	return n
}

const pageStyle = `<style>
body{font-family:sans-serif;margin:2em}
table{border-collapse:collapse;margin-bottom:2em}
th,td{border:1px solid #ccc;padding:4px 8px}
</style>`
