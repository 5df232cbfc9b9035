package formatter

import (
	"sort"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Background(lipgloss.Color("236"))
	keyStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	separatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

const columnSep = "  "

// TableOptions controls table rendering.
type TableOptions struct {
	NoColor bool
	Width   int
}

// RenderTable renders a list of objects as columns, one row per object, and
// anything else as KEY/VALUE rows.
func RenderTable(v interface{}, opts TableOptions) string {
	if list, ok := v.([]interface{}); ok {
		if cols := objectColumns(list); len(cols) > 0 {
			rows := make([][]string, len(list))
			for i, elem := range list {
				m := elem.(map[string]interface{})
				row := make([]string, len(cols))
				for j, c := range cols {
					row[j] = Stringify(m[c])
				}
				rows[i] = row
			}
			return renderColumns(cols, rows, opts)
		}
	}

	var rows [][]string
	switch t := v.(type) {
	case map[string]interface{}:
		for _, k := range sortedKeys(t) {
			rows = append(rows, []string{k, Stringify(t[k])})
		}
	case []interface{}:
		for i, elem := range t {
			rows = append(rows, []string{formatScalar(float64(i), 0), Stringify(elem)})
		}
	default:
		rows = append(rows, []string{"value", Stringify(t)})
	}
	return renderColumns([]string{"KEY", "VALUE"}, rows, opts)
}

// objectColumns returns the union of keys when every element is an object,
// in first-seen order with refId and title first.
func objectColumns(list []interface{}) []string {
	if len(list) == 0 {
		return nil
	}
	seen := map[string]bool{}
	var cols []string
	for _, elem := range list {
		m, ok := elem.(map[string]interface{})
		if !ok {
			return nil
		}
		for _, k := range sortedKeys(m) {
			if !seen[k] {
				seen[k] = true
				cols = append(cols, k)
			}
		}
	}
	rank := func(c string) int {
		switch c {
		case "refId":
			return 0
		case "title":
			return 1
		}
		return 2
	}
	sort.SliceStable(cols, func(i, j int) bool { return rank(cols[i]) < rank(cols[j]) })
	return cols
}

func renderColumns(cols []string, rows [][]string, opts TableOptions) string {
	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = runewidth.StringWidth(c)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	shrinkToFit(widths, opts.Width)

	var b strings.Builder
	header := make([]string, len(cols))
	total := 0
	for i, c := range cols {
		header[i] = padRight(truncate(strings.ToUpper(c), widths[i]), widths[i])
		if !opts.NoColor {
			header[i] = headerStyle.Render(header[i])
		}
		total += widths[i]
	}
	total += len(columnSep) * (len(cols) - 1)
	b.WriteString(strings.TrimRight(strings.Join(header, columnSep), " ") + "\n")

	sep := strings.Repeat("─", total)
	if !opts.NoColor {
		sep = separatorStyle.Render(sep)
	}
	b.WriteString(sep + "\n")

	for _, row := range rows {
		cells := make([]string, len(cols))
		for i := range cols {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			cells[i] = padRight(truncate(cell, widths[i]), widths[i])
			if i == 0 && !opts.NoColor {
				cells[i] = keyStyle.Render(cells[i])
			}
		}
		b.WriteString(strings.TrimRight(strings.Join(cells, columnSep), " ") + "\n")
	}
	return b.String()
}

// shrinkToFit narrows the widest columns until the table fits width. Columns
// never go below 5 cells.
func shrinkToFit(widths []int, width int) {
	if width <= 0 {
		return
	}
	const minWidth = 5
	total := func() int {
		n := len(columnSep) * (len(widths) - 1)
		for _, w := range widths {
			n += w
		}
		return n
	}
	for total() > width {
		widest := 0
		for i, w := range widths {
			if w > widths[widest] {
				widest = i
			}
		}
		if widths[widest] <= minWidth {
			return
		}
		widths[widest]--
	}
}
