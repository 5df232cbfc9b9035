// Package formatter renders command results as YAML, JSON, TOML, a tree or
// a table.
package formatter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	FormatYAML  = "yaml"
	FormatJSON  = "json"
	FormatTOML  = "toml"
	FormatTree  = "tree"
	FormatTable = "table"
)

// Formats lists the accepted output formats.
var Formats = []string{FormatYAML, FormatJSON, FormatTOML, FormatTree, FormatTable}

// Options controls rendering.
type Options struct {
	Format  string
	NoColor bool
	// Width caps table width; 0 detects the terminal width.
	Width int
}

// ValidateFormat rejects unknown output formats.
func ValidateFormat(format string) error {
	for _, f := range Formats {
		if f == format {
			return nil
		}
	}
	return fmt.Errorf("invalid output format %q: valid values are %s", format, strings.Join(Formats, ", "))
}

// Render writes v, a tree of plain maps, slices and scalars, to w.
func Render(w io.Writer, v interface{}, opts Options) error {
	var (
		out string
		err error
	)
	switch opts.Format {
	case FormatYAML, "":
		out, err = FormatYAMLDoc(v)
	case FormatJSON:
		var b []byte
		b, err = json.MarshalIndent(v, "", "  ")
		out = string(b) + "\n"
	case FormatTOML:
		out, err = formatTOML(v)
	case FormatTree:
		out = FormatAsTree(v, TreeOptions{LabelKeys: DefaultLabelKeys, MaxStringLen: 120})
	case FormatTable:
		width := opts.Width
		if width <= 0 {
			width = terminalWidth()
		}
		out = RenderTable(v, TableOptions{NoColor: opts.NoColor, Width: width})
	default:
		return ValidateFormat(opts.Format)
	}
	if err != nil {
		return fmt.Errorf("render %s: %w", opts.Format, err)
	}
	_, err = io.WriteString(w, out)
	return err
}

// FormatYAMLDoc renders v as YAML with two-space indentation. Multi-line
// strings become literal blocks.
func FormatYAMLDoc(v interface{}) (string, error) {
	var node yaml.Node
	if err := node.Encode(v); err != nil {
		return "", err
	}
	applyLiteralStyle(&node)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func applyLiteralStyle(n *yaml.Node) {
	if n.Kind == yaml.ScalarNode && n.Tag == "!!str" && strings.Contains(n.Value, "\n") {
		n.Style = yaml.LiteralStyle
	}
	for _, c := range n.Content {
		applyLiteralStyle(c)
	}
}

// formatTOML wraps non-table roots under "result"; TOML documents are tables.
func formatTOML(v interface{}) (string, error) {
	if _, ok := v.(map[string]interface{}); !ok {
		v = map[string]interface{}{"result": v}
	}
	b, err := toml.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Stringify returns a single-line representation of a cell value. Objects
// and arrays are compact JSON.
func Stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.ReplaceAll(strings.ReplaceAll(t, "\r\n", "\\n"), "\n", "\\n")
	case float64:
		return formatScalar(t, 0)
	case map[string]interface{}, []interface{}:
		if b, err := json.Marshal(t); err == nil {
			return string(b)
		}
	}
	return fmt.Sprint(v)
}

// truncate cuts s to maxLen display cells, ending with "..." when there is
// room. maxLen <= 0 disables truncation.
func truncate(s string, maxLen int) string {
	if maxLen <= 0 || runewidth.StringWidth(s) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return runewidth.Truncate(s, maxLen, "")
	}
	return runewidth.Truncate(s, maxLen, "...")
}

func padRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 120
	}
	return width
}
