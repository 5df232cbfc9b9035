package query

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/paneledit/pkg/datasource"
)

func settings(uid, typ string) *datasource.InstanceSettings {
	return &datasource.InstanceSettings{UID: uid, Type: typ, Name: uid, Meta: datasource.PluginMeta{ID: typ}}
}

func TestUpdateQueriesTypeChangeClears(t *testing.T) {
	next := settings("new-uid", "new")
	queries := []*Query{
		{RefID: "A", Datasource: &datasource.Ref{Type: "old", UID: "o"}},
		{RefID: "B", Datasource: &datasource.Ref{Type: "old", UID: "o"}},
	}
	out := UpdateQueries(next, queries, settings("o", "old"))
	require.Len(t, out, 1)
	assert.Equal(t, "A", out[0].RefID)
	assert.Equal(t, &datasource.Ref{Type: "new", UID: "new-uid"}, out[0].Datasource)
	assert.Len(t, queries, 2)
}

func TestUpdateQueriesFirstAssignmentClears(t *testing.T) {
	out := UpdateQueries(settings("p", "prometheus"), []*Query{{RefID: "X"}}, nil)
	require.Len(t, out, 1)
	assert.Equal(t, "A", out[0].RefID)
}

func TestUpdateQueriesMixedPreserves(t *testing.T) {
	queries := []*Query{
		{RefID: "A", Datasource: &datasource.Ref{Type: "old", UID: "o"}},
		{RefID: "B", Datasource: &datasource.Ref{Type: "other", UID: "x"}},
	}
	out := UpdateQueries(datasource.MixedSettings(), queries, settings("o", "old"))
	require.Equal(t, queries, out)
	assert.Same(t, queries[0], out[0])
}

func TestUpdateQueriesSameTypePatches(t *testing.T) {
	a := &Query{RefID: "A", Datasource: &datasource.Ref{Type: "same", UID: "old"}, Fields: map[string]interface{}{"expr": "up"}}
	exprRef := datasource.ExpressionRef
	b := &Query{RefID: "B", Datasource: &exprRef}
	queries := []*Query{a, b}

	out := UpdateQueries(settings("new", "same"), queries, settings("old", "same"))
	require.Len(t, out, 2)
	assert.Equal(t, &datasource.Ref{Type: "same", UID: "new"}, out[0].Datasource)
	assert.Equal(t, "up", out[0].Fields["expr"])
	assert.NotSame(t, a, out[0])
	assert.Equal(t, &datasource.Ref{Type: "same", UID: "old"}, a.Datasource, "input query must not be mutated")
	assert.Same(t, b, out[1])
}

func TestUpdateQueriesSameTypeMixedLeavesQueries(t *testing.T) {
	mixed := datasource.MixedSettings()
	q := &Query{RefID: "A", Datasource: &datasource.Ref{Type: "loki", UID: "l"}}
	out := UpdateQueries(mixed, []*Query{q}, datasource.MixedSettings())
	assert.Same(t, q, out[0])
}

func TestNextRefID(t *testing.T) {
	assert.Equal(t, "A", NextRefID(nil))
	assert.Equal(t, "C", NextRefID([]*Query{{RefID: "A"}, {RefID: "B"}}))
	assert.Equal(t, "B", NextRefID([]*Query{{RefID: "A"}, {RefID: "C"}}))

	full := make([]*Query, 0, 27)
	for i := 0; i < 27; i++ {
		full = append(full, &Query{RefID: refIDAt(i)})
	}
	assert.Equal(t, "Z", full[25].RefID)
	assert.Equal(t, "AA", full[26].RefID)
	assert.Equal(t, "AB", NextRefID(full))
}

func TestValidateRefID(t *testing.T) {
	a := &Query{RefID: "A"}
	b := &Query{RefID: "B"}
	queries := []*Query{a, b}

	assert.True(t, errors.Is(ValidateRefID(queries, a, ""), ErrEmptyRefID))
	assert.True(t, errors.Is(ValidateRefID(queries, a, "  "), ErrEmptyRefID))
	assert.True(t, errors.Is(ValidateRefID(queries, a, "B"), ErrDuplicateRefID))
	assert.NoError(t, ValidateRefID(queries, a, "A"))
	assert.NoError(t, ValidateRefID(queries, a, "C"))
}

func TestCloneIsDeep(t *testing.T) {
	q := &Query{
		RefID:      "A",
		Datasource: &datasource.Ref{Type: "loki", UID: "l"},
		Hide:       true,
		Fields:     map[string]interface{}{"expr": "{job=\"x\"}"},
	}
	c := q.Clone()
	require.NotSame(t, q, c)
	require.Equal(t, q, c)
	c.Fields["expr"] = "changed"
	c.Datasource.UID = "other"
	assert.Equal(t, "{job=\"x\"}", q.Fields["expr"])
	assert.Equal(t, "l", q.Datasource.UID)
}

func TestQueryJSONRoundTripsOpaqueFields(t *testing.T) {
	in := `{"refId":"A","datasource":{"type":"prometheus","uid":"p"},"expr":"up","interval":"1m"}`
	var q Query
	require.NoError(t, json.Unmarshal([]byte(in), &q))
	assert.Equal(t, "A", q.RefID)
	assert.Equal(t, "up", q.Fields["expr"])
	assert.False(t, q.Hide)

	out, err := json.Marshal(q)
	require.NoError(t, err)
	assert.JSONEq(t, in, string(out))
}

func TestQueryYAMLInlineFields(t *testing.T) {
	in := "refId: B\ndatasource: ${ds}\nhide: true\nexpr: rate(x[5m])\n"
	var q Query
	require.NoError(t, yaml.Unmarshal([]byte(in), &q))
	assert.Equal(t, "B", q.RefID)
	assert.Equal(t, &datasource.Ref{UID: "${ds}"}, q.Datasource)
	assert.True(t, q.Hide)
	assert.Equal(t, "rate(x[5m])", q.Fields["expr"])
}

type templated struct {
	datasource.Instance
}

func (templated) DefaultQuery() map[string]interface{} {
	return map[string]interface{}{"editorMode": "builder"}
}

func TestDefaultQuery(t *testing.T) {
	ds := templated{Instance: datasource.Instance{Settings: settings("p", "prometheus")}}
	q := DefaultQuery(ds, "C")
	assert.Equal(t, "C", q.RefID)
	assert.Equal(t, &datasource.Ref{Type: "prometheus", UID: "p"}, q.Datasource)
	assert.Equal(t, "builder", q.Fields["editorMode"])

	plain := DefaultQuery(nil, "A")
	assert.Nil(t, plain.Datasource)
}
