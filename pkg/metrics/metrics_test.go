package metrics

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMetrics(t *testing.T) *Metrics {
	t.Helper()
	return New(prometheus.NewRegistry())
}

func TestRecordPress(t *testing.T) {
	m := newTestMetrics(t)

	m.RecordPress(8, 4)
	m.RecordPress(8, 4)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.PressesTotal))
	assert.Equal(t, 16.0, testutil.ToFloat64(m.PulsesTotal.WithLabelValues("low")))
	assert.Equal(t, 8.0, testutil.ToFloat64(m.PulsesTotal.WithLabelValues("high")))
}

func TestRecordPressConcurrent(t *testing.T) {
	m := newTestMetrics(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.RecordPress(1, 2)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 800.0, testutil.ToFloat64(m.PressesTotal))
	assert.Equal(t, 1600.0, testutil.ToFloat64(m.PulsesTotal.WithLabelValues("high")))
}

func TestRecordPeriodAndRun(t *testing.T) {
	m := newTestMetrics(t)

	m.RecordPeriod("ia", 3)
	m.RecordPeriod("ia", 4)
	m.RecordRun("min-presses", "success")

	assert.Equal(t, 4.0, testutil.ToFloat64(m.Periods.WithLabelValues("ia")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("min-presses", "success")))
}

func TestWriteTextfile(t *testing.T) {
	m := newTestMetrics(t)
	m.RecordPress(3, 1)

	path := filepath.Join(t.TempDir(), "pulse.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "pulse_sim_presses_total 1")
	assert.Contains(t, string(data), `pulse_sim_pulses_total{level="low"} 3`)

	err = m.WriteTextfile(filepath.Join(t.TempDir(), "missing", "dir", "x.prom"))
	require.Error(t, err)
}

func TestNilRegistry(t *testing.T) {
	m := New(nil)
	require.NotNil(t, m.reg)
	m.RecordPress(1, 0)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PressesTotal))
}
