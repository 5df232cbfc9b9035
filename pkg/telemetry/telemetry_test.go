package telemetry

import (
	"testing"

	"github.com/go-logr/logr/funcr"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestLogReporterTagsSession(t *testing.T) {
	var lines []string
	lgr := funcr.New(func(prefix, args string) { lines = append(lines, args) }, funcr.Options{})
	r := NewLogReporter(lgr)

	_, err := uuid.Parse(r.Session())
	require.NoError(t, err)

	r.Report(EventReorderEnded, map[string]interface{}{"startIndex": 0})
	require.Len(t, lines, 1)
	require.Contains(t, lines[0], EventReorderEnded)
	require.Contains(t, lines[0], r.Session())
}

func TestRecorderAndMulti(t *testing.T) {
	a, b := &Recorder{}, &Recorder{}
	m := Multi{a, b, Nop{}}
	m.Report("x", nil)
	m.Report("y", map[string]interface{}{"k": 1})
	require.Equal(t, []string{"x", "y"}, a.Names())
	require.Equal(t, a.Events(), b.Events())
}
