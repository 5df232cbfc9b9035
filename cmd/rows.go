package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/oakwood-commons/paneledit/pkg/data"
	"github.com/oakwood-commons/paneledit/pkg/datasource"
	"github.com/oakwood-commons/paneledit/pkg/loader"
	"github.com/oakwood-commons/paneledit/pkg/query"
	"github.com/oakwood-commons/paneledit/pkg/queryrows"
	"github.com/oakwood-commons/paneledit/pkg/stream"
	"github.com/oakwood-commons/paneledit/pkg/telemetry"
)

// Views printed by the rows command.
const (
	viewRows    = "rows"
	viewQueries = "queries"
	viewEvents  = "events"
)

type eventSummary struct {
	Name    string                 `json:"name"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

type rowSummary struct {
	RefID      string `json:"refId"`
	DataSource string `json:"datasource"`
	Type       string `json:"type"`
	Editor     string `json:"editor"`
	Hidden     bool   `json:"hidden"`
	Collapsed  bool   `json:"collapsed,omitempty"`
	State      string `json:"state,omitempty"`
	Series     int    `json:"series"`
	Warnings   string `json:"warnings,omitempty"`
	Infos      string `json:"infos,omitempty"`
	Error      string `json:"error,omitempty"`
}

func newRowsCommand(a *app) *cobra.Command {
	var (
		queriesFile, dataFile, group, view string
		ops                                []string
	)
	c := &cobra.Command{
		Use:   "rows",
		Short: "Apply query row operations to a query set and print the resulting rows",
		Long: `Apply query row operations to a query set and print the resulting rows.

Operations run in order. REF is a refId; when several queries share it the
first one is used.

  add                  append a new query from the group default template
  duplicate:REF        append a copy of REF
  remove:REF           remove REF
  hide:REF             toggle the hide flag of REF
  collapse:REF         toggle the collapsed state of the row
  help:REF             toggle the help panel of the row
  rename:REF:NEW       change the refId of REF
  move:FROM:TO         drag the row at index FROM to index TO
  datasource:REF:UID   change the data source of REF (mixed group only)
  group:UID            change the group data source ("mixed" for mixed)
  replace:REF:FILE     replace REF with the query in FILE`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch view {
			case viewRows, viewQueries, viewEvents:
			default:
				return fmt.Errorf("invalid view %q: valid values are %s, %s, %s", view, viewRows, viewQueries, viewEvents)
			}
			ctx := cmd.Context()
			lgr := a.log(cmd)

			queries, err := loadQueries(queriesFile)
			if err != nil {
				return err
			}
			reg, err := buildRegistry(a.cfg, lgr)
			if err != nil {
				return err
			}
			settings, err := groupSettings(reg, group, queries)
			if err != nil {
				return err
			}

			events := &telemetry.Recorder{}
			rows := queryrows.New(reg, settings, queries,
				queryrows.WithLogger(lgr),
				queryrows.WithReporter(telemetry.Multi{telemetry.NewLogReporter(lgr.V(1)), events}),
				queryrows.WithInterpolator(reg.Interpolator()),
				queryrows.WithLegacyLoader(templateLoader{log: lgr}),
				queryrows.WithCallbacks(queryrows.Callbacks{
					OnRunQueries: func() { lgr.V(1).Info("run queries requested") },
					OnDataSourceChange: func(s *datasource.InstanceSettings) {
						lgr.Info("group data source changed", "uid", s.UID, "type", s.Type)
					},
				}),
			)
			defer rows.Close()

			if dataFile != "" {
				var pd data.PanelData
				if err := loader.DecodeFile(dataFile, &pd); err != nil {
					return err
				}
				subject := stream.NewSubject()
				sub := rows.Subscribe(subject)
				defer sub.Unsubscribe()
				subject.Publish(&pd)
			}

			for _, op := range ops {
				if err := applyOp(ctx, rows, reg, op); err != nil {
					return fmt.Errorf("op %q: %w", op, err)
				}
			}

			switch view {
			case viewQueries:
				return a.emit(cmd, rows.Queries())
			case viewEvents:
				recorded := events.Events()
				out := make([]eventSummary, len(recorded))
				for i, e := range recorded {
					out[i] = eventSummary{Name: e.Name, Payload: e.Payload}
				}
				return a.emit(cmd, out)
			}
			if err := rows.Resolve(ctx); err != nil {
				return err
			}
			return a.emit(cmd, summarize(ctx, rows, lgr))
		},
	}
	c.Flags().StringVar(&queriesFile, "queries", "", "query set file")
	c.Flags().StringVar(&dataFile, "data", "", "panel data snapshot delivered to the rows")
	c.Flags().StringVar(&group, "group", "", "group data source uid or name (default: the shared data source of the queries, else the configured default)")
	c.Flags().StringArrayVar(&ops, "op", nil, "operation to apply, repeatable")
	c.Flags().StringVar(&view, "view", viewRows, "what to print: rows|queries|events")
	_ = c.MarkFlagRequired("queries")
	return c
}

// groupSettings picks the group data source: the flag, else the one data
// source all queries point at (mixed when they disagree), else the default.
func groupSettings(reg *datasource.Registry, group string, queries []*query.Query) (*datasource.InstanceSettings, error) {
	if group != "" {
		return lookupSettings(reg, group)
	}
	var uid string
	for _, q := range queries {
		if q.Datasource == nil || datasource.IsExpressionReference(q.Datasource) {
			continue
		}
		switch {
		case uid == "":
			uid = q.Datasource.UID
		case uid != q.Datasource.UID:
			return datasource.MixedSettings(), nil
		}
	}
	if uid != "" {
		if s := reg.GetInstanceSettings(&datasource.Ref{UID: uid}); s != nil {
			return s, nil
		}
	}
	if s := reg.GetInstanceSettings(nil); s != nil {
		return s, nil
	}
	return nil, fmt.Errorf("no group data source: %w", datasource.ErrNotFound)
}

func applyOp(ctx context.Context, rows *queryrows.Rows, reg *datasource.Registry, op string) error {
	parts := strings.SplitN(op, ":", 3)
	want := func(n int) error {
		if len(parts) != n {
			return fmt.Errorf("expected %d arguments, got %d", n-1, len(parts)-1)
		}
		return nil
	}

	switch parts[0] {
	case "add":
		_, err := rows.AddQuery(ctx, nil)
		return err
	case "group":
		if err := want(2); err != nil {
			return err
		}
		return rows.ChangeDataSource(ctx, parseRef(parts[1]))
	case "move":
		if err := want(3); err != nil {
			return err
		}
		from, err := strconv.Atoi(parts[1])
		if err != nil {
			return fmt.Errorf("from index: %w", err)
		}
		to, err := strconv.Atoi(parts[2])
		if err != nil {
			return fmt.Errorf("to index: %w", err)
		}
		rows.DragStart(from)
		if !rows.DragEnd(from, to) {
			return fmt.Errorf("cannot move row %d to %d", from, to)
		}
		return nil
	}

	if len(parts) < 2 {
		return fmt.Errorf("missing refId")
	}
	q, err := findQuery(rows, parts[1])
	if err != nil {
		return err
	}

	switch parts[0] {
	case "duplicate":
		_, err = rows.Duplicate(q)
	case "remove":
		err = rows.Remove(q)
	case "hide":
		_, err = rows.ToggleHide(q)
	case "collapse":
		rows.Row(q).Dispatch(queryrows.ToggleCollapsed{})
	case "help":
		rows.Row(q).Dispatch(queryrows.ToggleHelp{})
	case "rename":
		if err = want(3); err == nil {
			_, err = rows.RenameRefID(q, parts[2])
		}
	case "datasource":
		if err = want(3); err != nil {
			return err
		}
		var settings *datasource.InstanceSettings
		if settings, err = lookupSettings(reg, parts[2]); err == nil {
			_, err = rows.ChangeRowDataSource(ctx, q, settings)
		}
	case "replace":
		if err = want(3); err != nil {
			return err
		}
		var replacement query.Query
		if err = loader.DecodeFile(parts[2], &replacement); err == nil {
			_, err = rows.Replace(q, &replacement)
		}
	default:
		err = fmt.Errorf("unknown operation %q", parts[0])
	}
	return err
}

func findQuery(rows *queryrows.Rows, refID string) (*query.Query, error) {
	for _, q := range rows.Queries() {
		if q.RefID == refID {
			return q, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", refID, queryrows.ErrQueryNotFound)
}

func summarize(ctx context.Context, rows *queryrows.Rows, lgr logr.Logger) []rowSummary {
	queries := rows.Queries()
	out := make([]rowSummary, 0, len(queries))
	for _, row := range rows.Rows() {
		q := row.Query()
		strategy, renderErr := row.Render(ctx, queries, nil, rows.RunQueries)
		st := row.State()

		s := rowSummary{
			RefID:     q.RefID,
			Editor:    string(strategy),
			Hidden:    q.Hide,
			Collapsed: st.Collapsed,
		}
		if st.DataSource != nil {
			settings := st.DataSource.InstanceSettings()
			s.DataSource = settings.Name
			s.Type = settings.Type
		}
		if st.Data != nil {
			s.State = string(st.Data.State)
			s.Series = len(st.Data.Series)
			s.Error = viewError(st.Data)
		}
		for _, b := range row.Badges() {
			switch b.Severity {
			case data.SeverityWarning:
				s.Warnings = b.Label
			case data.SeverityInfo:
				s.Infos = b.Label
			}
		}
		if renderErr != nil {
			lgr.Error(renderErr, "query editor failed to render", "refId", q.RefID)
			if s.Error == "" {
				s.Error = renderErr.Error()
			}
		}
		out = append(out, s)
	}
	return out
}

func viewError(view *data.PanelData) string {
	if view.Error != nil {
		return view.Error.Message
	}
	if len(view.Errors) > 0 {
		return view.Errors[0].Message
	}
	return ""
}
