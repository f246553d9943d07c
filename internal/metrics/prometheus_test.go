package metrics

import (
	"errors"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"gomemo/internal/memo"
)

func TestCollectors_CountMemoEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollectors(reg)

	errBad := errors.New("bad")
	m := memo.New(func(k string) (string, error) {
		if k == "bad" {
			return "", errBad
		}
		return k, nil
	}, memo.ByArgument[string], memo.Config{Metrics: c.For("words"), Clock: clockwork.NewFakeClock()})

	_, _ = m.Call("a")
	_, _ = m.Call("a")
	_, _ = m.Call("bad")
	require.True(t, m.Forget("a"))

	require.Equal(t, 1.0, testutil.ToFloat64(c.calls.WithLabelValues("words", "hit")))
	require.Equal(t, 2.0, testutil.ToFloat64(c.calls.WithLabelValues("words", "miss")))
	require.Equal(t, 0.0, testutil.ToFloat64(c.calls.WithLabelValues("words", "coalesced")))
	require.Equal(t, 1.0, testutil.ToFloat64(c.failures.WithLabelValues("words")))
	require.Equal(t, 1.0, testutil.ToFloat64(c.evictions.WithLabelValues("words")))
}

func TestCollectors_SeparateLabelsPerMemo(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollectors(reg)

	a := c.For("a")
	b := c.For("b")
	a.RecordHit()
	a.RecordHit()
	b.RecordHit()

	require.Equal(t, 2.0, testutil.ToFloat64(c.calls.WithLabelValues("a", "hit")))
	require.Equal(t, 1.0, testutil.ToFloat64(c.calls.WithLabelValues("b", "hit")))

	// hit, miss and coalesced series for each of the two memos.
	count, err := testutil.GatherAndCount(reg, "gomemo_calls_total")
	require.NoError(t, err)
	require.Equal(t, 6, count)
}

func TestNewCollectors_DoubleRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollectors(reg)
	require.Panics(t, func() { NewCollectors(reg) })
}
