package queryrows

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/oakwood-commons/paneledit/pkg/datasource"
	"github.com/oakwood-commons/paneledit/pkg/query"
)

func settings(uid, typ string) *datasource.InstanceSettings {
	return &datasource.InstanceSettings{UID: uid, Type: typ, Name: strings.ToUpper(uid), Meta: datasource.PluginMeta{ID: typ}}
}

// hookedService wraps a Registry and runs before on every Get.
type hookedService struct {
	*datasource.Registry
	mu     sync.Mutex
	calls  []string
	before func(ref *datasource.Ref)
}

func (h *hookedService) Get(ctx context.Context, ref *datasource.Ref) (datasource.DataSource, error) {
	h.mu.Lock()
	h.calls = append(h.calls, ref.String())
	before := h.before
	h.mu.Unlock()
	if before != nil {
		before(ref)
	}
	return h.Registry.Get(ctx, ref)
}

func newService() *hookedService {
	reg := datasource.NewRegistry()
	prom := settings("prom-1", "prometheus")
	prom.IsDefault = true
	reg.Add(&datasource.Instance{Settings: prom})
	reg.Add(&datasource.Instance{Settings: settings("prom-2", "prometheus")})
	reg.Add(&templatedDS{Instance: datasource.Instance{Settings: settings("loki-1", "loki")}, tmpl: map[string]interface{}{"expr": "{}", "queryType": "range"}})
	return &hookedService{Registry: reg}
}

type templatedDS struct {
	datasource.Instance
	tmpl map[string]interface{}
}

func (t templatedDS) DefaultQuery() map[string]interface{} {
	return t.tmpl
}

// importingDS converts prometheus queries by copying expr into query.
type importingDS struct {
	datasource.Instance
	fail string
}

func (importingDS) CanImportFrom(from *datasource.InstanceSettings) bool {
	return from.Type == "prometheus"
}

func (d importingDS) ImportQuery(_ context.Context, q *query.Query, _ *datasource.InstanceSettings) (*query.Query, error) {
	if q.RefID == d.fail {
		return nil, errors.New("unsupported expression")
	}
	return &query.Query{RefID: q.RefID, Fields: map[string]interface{}{"query": q.Fields["expr"]}}, nil
}

func q(refID, uid string) *query.Query {
	out := &query.Query{RefID: refID, Fields: map[string]interface{}{"expr": "up{job=\"" + refID + "\"}"}}
	if uid != "" {
		out.Datasource = &datasource.Ref{UID: uid}
	}
	return out
}
