package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/paneledit/pkg/datasource"
	"github.com/oakwood-commons/paneledit/pkg/queryrows"
	"github.com/oakwood-commons/paneledit/pkg/telemetry"
)

const testConfig = `
default_datasource: prom
variables:
  logs: loki
datasources:
  - uid: prom
    type: prometheus
    name: Prometheus
    default_query:
      expr: up
  - uid: prom-2
    type: prometheus
    name: Prometheus 2
  - uid: loki
    type: loki
    name: Loki
    editor: legacy
    default_query:
      queryType: range
    importable_from: [prometheus]
  - uid: graphite
    type: graphite
    editor: none
`

const testQueries = `
- refId: A
  datasource: {type: prometheus, uid: prom}
  expr: up
- refId: B
  datasource: {type: prometheus, uid: prom}
  expr: rate(http_requests_total[5m])
`

const testData = `
state: Done
series:
  - refId: A
    name: up
    meta:
      notices:
        - {severity: warning, text: slow}
        - {severity: warning, text: partial}
        - {severity: warning, text: slow}
  - refId: B
    name: rate
errors:
  - refId: B
    message: bad query
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

type fixture struct {
	dir     string
	config  string
	queries string
	data    string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	return fixture{
		dir:     dir,
		config:  writeFile(t, dir, "config.yaml", testConfig),
		queries: writeFile(t, dir, "queries.yaml", testQueries),
		data:    writeFile(t, dir, "data.yaml", testData),
	}
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func runJSON(t *testing.T, out interface{}, args ...string) {
	t.Helper()
	s, err := runCLI(t, append(args, "-o", "json")...)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(s), out), s)
}

func TestFilterCommand(t *testing.T) {
	f := newFixture(t)

	var view map[string]interface{}
	runJSON(t, &view, "filter", "--data", f.data, "--ref", "A")
	assert.Equal(t, "Done", view["state"])
	require.Len(t, view["series"], 1)
	assert.Nil(t, view["errors"])

	runJSON(t, &view, "filter", "--data", f.data, "--ref", "B")
	assert.Equal(t, "Error", view["state"])
	assert.Equal(t, "bad query", view["error"].(map[string]interface{})["message"])
}

func TestReconcileCommand(t *testing.T) {
	f := newFixture(t)

	var queries []map[string]interface{}
	runJSON(t, &queries, "--config-file", f.config, "reconcile", "--queries", f.queries, "--to", "prom-2", "--from", "prom")
	require.Len(t, queries, 2)
	for _, q := range queries {
		assert.Equal(t, "prom-2", q["datasource"].(map[string]interface{})["uid"])
	}
	assert.Equal(t, "rate(http_requests_total[5m])", queries[1]["expr"])

	runJSON(t, &queries, "--config-file", f.config, "reconcile", "--queries", f.queries, "--to", "graphite", "--from", "prom")
	require.Len(t, queries, 1)
	assert.Equal(t, "A", queries[0]["refId"])
	assert.Equal(t, "graphite", queries[0]["datasource"].(map[string]interface{})["uid"])
	assert.NotContains(t, queries[0], "expr")

	_, err := runCLI(t, "--config-file", f.config, "reconcile", "--queries", f.queries, "--to", "missing")
	assert.True(t, errors.Is(err, datasource.ErrNotFound))
}

func TestSetCommand(t *testing.T) {
	f := newFixture(t)
	doc := writeFile(t, f.dir, "doc.yaml", "a:\n  b: 1\n")

	var out map[string]interface{}
	runJSON(t, &out, "set", "--file", doc, "--path", "a.c[1]", "--value", "5")
	assert.Equal(t, map[string]interface{}{"b": float64(1), "c": []interface{}{nil, float64(5)}}, out["a"])

	runJSON(t, &out, "set", "--file", doc, "--path", `a["b"]`, "--unset")
	assert.Equal(t, map[string]interface{}{}, out["a"])

	_, err := runCLI(t, "set", "--file", doc, "--path", "a[", "--value", "1")
	assert.Error(t, err)

	_, err = runCLI(t, "set", "--file", doc, "--path", "a.b", "--value", "1", "--unset")
	assert.Error(t, err)
}

func TestDefaultsCommand(t *testing.T) {
	f := newFixture(t)
	fc := writeFile(t, f.dir, "fc.yaml", "defaults:\n  unit: ms\n  custom:\n    lineWidth: 1\noverrides: []\n")

	var out map[string]interface{}
	runJSON(t, &out, "defaults", "--file", fc, "--path", "unit")
	assert.Equal(t, map[string]interface{}{"custom": map[string]interface{}{"lineWidth": float64(1)}}, out["defaults"])

	runJSON(t, &out, "defaults", "--file", fc, "--path", "lineWidth", "--value", "2", "--custom")
	defaults := out["defaults"].(map[string]interface{})
	assert.Equal(t, "ms", defaults["unit"])
	assert.Equal(t, map[string]interface{}{"lineWidth": float64(2)}, defaults["custom"])
}

const testOptions = `
- id: panel
  title: Panel options
  items:
    - {id: title, title: Title}
    - {id: description, title: Description, description: Shown in the panel header tooltip}
- id: standard
  title: Standard options
  items:
    - {id: unit, title: Unit}
    - {id: min, title: Min, description: Leave empty to calculate based on all values}
    - {id: max, title: Max}
`

func TestSearchCommand(t *testing.T) {
	f := newFixture(t)
	opts := writeFile(t, f.dir, "options.yaml", testOptions)
	fc := writeFile(t, f.dir, "fc.yaml", `
defaults: {}
overrides:
  - matcher: {id: byName, options: cpu}
    properties:
      - {id: unit, value: percent}
`)

	var view struct {
		TotalCount int `json:"totalCount"`
		Options    []struct {
			Title string `json:"title"`
		} `json:"options"`
		Overrides []struct {
			Title string `json:"title"`
			Items []struct {
				Title string `json:"title"`
			} `json:"items"`
		} `json:"overrides"`
	}
	runJSON(t, &view, "search", "--options", opts, "--fieldconfig", fc, "--query", "unit")
	assert.Equal(t, 5, view.TotalCount)
	require.Len(t, view.Options, 1)
	assert.Equal(t, "Unit", view.Options[0].Title)
	require.Len(t, view.Overrides, 1)
	assert.Equal(t, "Override 1", view.Overrides[0].Title)
	require.Len(t, view.Overrides[0].Items, 2)
	assert.Equal(t, "Fields with name", view.Overrides[0].Items[0].Title)
	assert.Equal(t, "Unit", view.Overrides[0].Items[1].Title)

	runJSON(t, &view, "search", "--options", opts, "--query", "standard", "--limit", "1")
	require.Len(t, view.Options, 1)
	assert.Equal(t, "Unit", view.Options[0].Title)
}

func TestRowsCommand(t *testing.T) {
	f := newFixture(t)
	base := []string{"--config-file", f.config, "rows", "--queries", f.queries}

	tests := []struct {
		name    string
		args    []string
		refIDs  []string
		source  string
		editor  string
		wantErr error
		fails   bool
	}{
		{name: "as loaded", refIDs: []string{"A", "B"}, source: "Prometheus", editor: "native"},
		{name: "duplicate", args: []string{"--op", "duplicate:A"}, refIDs: []string{"A", "B", "A"}, source: "Prometheus", editor: "native"},
		{name: "remove", args: []string{"--op", "remove:A"}, refIDs: []string{"B"}, source: "Prometheus", editor: "native"},
		{name: "move", args: []string{"--op", "move:1:0"}, refIDs: []string{"B", "A"}, source: "Prometheus", editor: "native"},
		{name: "add", args: []string{"--op", "add"}, refIDs: []string{"A", "B", "C"}, source: "Prometheus", editor: "native"},
		{name: "rename", args: []string{"--op", "rename:B:errors"}, refIDs: []string{"A", "errors"}, source: "Prometheus", editor: "native"},
		{name: "group import", args: []string{"--op", "group:loki"}, refIDs: []string{"A", "B"}, source: "Loki", editor: "legacy"},
		{name: "group by variable", args: []string{"--op", "group:${logs}"}, refIDs: []string{"A", "B"}, source: "Loki", editor: "legacy"},
		{name: "group reset", args: []string{"--op", "group:graphite"}, refIDs: []string{"A"}, source: "graphite", editor: "unsupported"},
		{name: "unknown query", args: []string{"--op", "hide:Z"}, wantErr: queryrows.ErrQueryNotFound},
		{name: "rename taken", args: []string{"--op", "rename:B:A"}, fails: true},
		{name: "row data source outside mixed", args: []string{"--op", "datasource:A:loki"}, wantErr: queryrows.ErrNotMixed},
		{name: "bad move", args: []string{"--op", "move:0:9"}, fails: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append(append([]string{}, base...), tt.args...)
			if tt.wantErr != nil || tt.fails {
				_, err := runCLI(t, args...)
				require.Error(t, err)
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
				}
				return
			}
			var rows []rowSummary
			runJSON(t, &rows, args...)
			got := make([]string, len(rows))
			for i, r := range rows {
				got[i] = r.RefID
				assert.Equal(t, tt.source, r.DataSource, r.RefID)
				assert.Equal(t, tt.editor, r.Editor, r.RefID)
			}
			assert.Equal(t, tt.refIDs, got)
		})
	}
}

func TestRowsCommandEvents(t *testing.T) {
	f := newFixture(t)

	var events []eventSummary
	runJSON(t, &events, "--config-file", f.config, "rows", "--queries", f.queries,
		"--op", "duplicate:A", "--op", "move:2:0", "--view", "events")
	require.Len(t, events, 3)
	assert.Equal(t, telemetry.EventQueryDuplicated, events[0].Name)
	assert.Equal(t, "A", events[0].Payload["refId"])
	assert.Equal(t, telemetry.EventReorderStarted, events[1].Name)
	assert.Equal(t, telemetry.EventReorderEnded, events[2].Name)
	assert.EqualValues(t, 2, events[2].Payload["startIndex"])
	assert.EqualValues(t, 0, events[2].Payload["endIndex"])

	_, err := runCLI(t, "--config-file", f.config, "rows", "--queries", f.queries, "--view", "log")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "events")
}

func TestRowsCommandMixedAdd(t *testing.T) {
	f := newFixture(t)

	var queries []map[string]interface{}
	runJSON(t, &queries, "--config-file", f.config, "rows", "--queries", f.queries,
		"--group", "mixed", "--op", "add", "--view", "queries")
	require.Len(t, queries, 3)
	assert.Equal(t, "C", queries[2]["refId"])
	assert.Equal(t, "prom", queries[2]["datasource"].(map[string]interface{})["uid"])
	assert.Equal(t, "up", queries[2]["expr"])
}

func TestRowsCommandMixed(t *testing.T) {
	f := newFixture(t)

	var rows []rowSummary
	runJSON(t, &rows, "--config-file", f.config, "rows", "--queries", f.queries,
		"--group", "mixed", "--op", "datasource:B:loki")
	require.Len(t, rows, 2)
	assert.Equal(t, "Prometheus", rows[0].DataSource)
	assert.Equal(t, "Loki", rows[1].DataSource)
	assert.Equal(t, "legacy", rows[1].Editor)

	var queries []map[string]interface{}
	runJSON(t, &queries, "--config-file", f.config, "rows", "--queries", f.queries,
		"--group", "mixed", "--op", "datasource:B:loki", "--view", "queries")
	require.Len(t, queries, 2)
	assert.Equal(t, "range", queries[1]["queryType"])
	assert.Equal(t, "rate(http_requests_total[5m])", queries[1]["expr"])
}

func TestRowsCommandWithData(t *testing.T) {
	f := newFixture(t)

	var rows []rowSummary
	runJSON(t, &rows, "--config-file", f.config, "rows", "--queries", f.queries, "--data", f.data, "--op", "hide:B")
	require.Len(t, rows, 2)

	assert.Equal(t, "Done", rows[0].State)
	assert.Equal(t, 1, rows[0].Series)
	assert.Equal(t, "2 warnings", rows[0].Warnings)
	assert.Empty(t, rows[0].Error)

	assert.True(t, rows[1].Hidden)
	assert.Equal(t, "Error", rows[1].State)
	assert.Equal(t, "bad query", rows[1].Error)
}

func TestRowsCommandReplace(t *testing.T) {
	f := newFixture(t)
	replacement := writeFile(t, f.dir, "replacement.yaml", "refId: Z\ndatasource: {type: loki, uid: loki}\nexpr: '{job=\"api\"}'\n")

	var queries []map[string]interface{}
	runJSON(t, &queries, "--config-file", f.config, "rows", "--queries", f.queries,
		"--op", "replace:B:"+replacement, "--view", "queries")
	require.Len(t, queries, 2)
	assert.Equal(t, "B", queries[1]["refId"])
	assert.Equal(t, "loki", queries[1]["datasource"].(map[string]interface{})["uid"])
}

func TestRowsCommandTable(t *testing.T) {
	f := newFixture(t)

	out, err := runCLI(t, "--config-file", f.config, "--no-color", "-o", "table", "rows", "--queries", f.queries)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "REFID"), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "─"), lines[1])
	assert.Contains(t, lines[2], "Prometheus")
}

func TestGlobalFlags(t *testing.T) {
	f := newFixture(t)

	out, err := runCLI(t, "--config-file", f.config, "-e", "_.map(r, r.refId)", "-o", "json", "--tail", "1",
		"rows", "--queries", f.queries)
	require.NoError(t, err)
	var refs []string
	require.NoError(t, json.Unmarshal([]byte(out), &refs))
	assert.Equal(t, []string{"B"}, refs)

	_, err = runCLI(t, "-o", "xml", "version")
	assert.ErrorContains(t, err, "invalid output format")

	_, err = runCLI(t, "--limit", "1", "--tail", "1", "version")
	assert.ErrorContains(t, err, "mutually exclusive")

	_, err = runCLI(t, "--config-file", filepath.Join(f.dir, "missing.yaml"), "version")
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	var v map[string]interface{}
	runJSON(t, &v, "version")
	assert.Equal(t, "paneledit", v["name"])
	assert.NotEmpty(t, v["goVersion"])
}
