package report

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// cssFile is the stylesheet shared by every page of the report.
const cssFile = "report.css"

const reportCSS = `body {
  font-family: "Segoe UI", system-ui, sans-serif;
  margin: 1.5em;
  color: #1f2430;
}
.section-space { height: 1.2em; }
.table-wrap { overflow-x: auto; }
table.report {
  border-collapse: collapse;
  min-width: 40em;
}
table.report caption {
  text-align: left;
  font-weight: 600;
  padding-bottom: 0.4em;
}
table.report th, table.report td {
  border: 1px solid #c8cdd8;
  padding: 0.3em 0.7em;
  text-align: left;
}
table.report th { background: #eef1f6; }
table.report tr:nth-child(even) td { background: #f7f9fc; }
.text-left { text-align: left; }
`

// Builder accumulates the body of one HTML page. It mirrors the shape
// of the report: a sequence of tables and text blocks separated by
// section spacing.
type Builder struct {
	body  strings.Builder
	title string
}

// NewBuilder returns a page builder with the given title.
func NewBuilder(title string) *Builder {
	return &Builder{title: title}
}

// AddText appends a raw HTML block to the page body.
func (b *Builder) AddText(s string) {
	b.body.WriteString(s)
	b.body.WriteString("\n<div class='section-space'></div>\n")
}

// AddTable appends a table. Cells are HTML-escaped except in the
// columns listed in noEscapeCols, which carry pre-built anchors.
func (b *Builder) AddTable(rows [][]string, headers []string, noEscapeCols []int, caption string) {
	skip := make(map[int]bool, len(noEscapeCols))
	for _, c := range noEscapeCols {
		skip[c] = true
	}

	var out strings.Builder
	out.WriteString("<div class='table-wrap'><table class='report'>")
	if caption != "" {
		fmt.Fprintf(&out, "<caption>%s</caption>", html.EscapeString(caption))
	}

	out.WriteString("<thead><tr>")
	for _, h := range headers {
		fmt.Fprintf(&out, "<th>%s</th>", html.EscapeString(h))
	}
	out.WriteString("</tr></thead><tbody>")

	for _, row := range rows {
		out.WriteString("<tr>")
		for i, cell := range row {
			if !skip[i] {
				cell = html.EscapeString(cell)
			}
			fmt.Fprintf(&out, "<td>%s</td>", cell)
		}
		out.WriteString("</tr>")
	}
	out.WriteString("</tbody></table></div>")

	b.AddText(out.String())
}

// HTML assembles the complete page.
func (b *Builder) HTML() string {
	return "<!DOCTYPE html>\n<html>\n<head>\n" +
		"<meta charset='utf-8'>\n" +
		"<meta name='viewport' content='width=device-width,initial-scale=1'>\n" +
		"<link rel='stylesheet' href='" + cssFile + "'>\n" +
		"<title>" + html.EscapeString(b.title) + "</title>\n" +
		"</head>\n<body>\n" +
		b.body.String() +
		"\n</body>\n</html>\n"
}

// Write stores the page in dir under filename and returns filename so
// callers can link to it.
func (b *Builder) Write(dir, filename string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, "create report directory")
	}
	cssPath := filepath.Join(dir, cssFile)
	if _, err := os.Stat(cssPath); os.IsNotExist(err) {
		if err := os.WriteFile(cssPath, []byte(reportCSS), 0o644); err != nil {
			return "", errors.Wrap(err, "write stylesheet")
		}
	}
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, []byte(b.HTML()), 0o644); err != nil {
		return "", errors.Wrap(err, "write report page")
	}
	return filename, nil
}

// link builds the Details anchor used throughout the summary tables.
func link(filename string) string {
	return fmt.Sprintf("<a href=%q>Details</a>", filename)
}
