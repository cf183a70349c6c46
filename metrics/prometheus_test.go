// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"io"
	"net/http/httptest"
	"strconv"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gather(t *testing.T, p *prometheusMetrics) map[string]*dto.MetricFamily {
	families, err := p.registry.Gather()
	require.NoError(t, err)

	out := make(map[string]*dto.MetricFamily)
	for _, mf := range families {
		out[mf.GetName()] = mf
	}
	return out
}

func TestPromMetrics(t *testing.T) {
	p := newPrometheusMetrics()

	p.GetOrCreateCountMeter("count1").Add(1)
	for range 5 {
		p.GetOrCreateCountMeter("count2").Add(1)
	}

	hist := p.GetOrCreateHistogramMeter("hist1", Bucket10s)
	histVec := p.GetOrCreateHistogramVecMeter("hist2", []string{"zeroOrOne"}, nil)
	countVec := p.GetOrCreateCountVecMeter("countVec1", []string{"zeroOrOne"})
	gauge := p.GetOrCreateGaugeMeter("gauge1")
	gaugeVec := p.GetOrCreateGaugeVecMeter("gaugeVec1", []string{"zeroOrOne"})

	total := 0
	for i := range 10 {
		labels := map[string]string{"zeroOrOne": strconv.Itoa(i % 2)}
		hist.Observe(int64(i))
		histVec.ObserveWithLabels(int64(i), labels)
		countVec.AddWithLabel(int64(i), labels)
		gaugeVec.AddWithLabel(int64(i), labels)
		gauge.Add(int64(i))
		total += i
	}
	gaugeVec.SetWithLabel(100, map[string]string{"zeroOrOne": "0"})

	families := gather(t, p)

	assert.Equal(t, float64(1), families["ledger_count1"].Metric[0].GetCounter().GetValue())
	assert.Equal(t, float64(5), families["ledger_count2"].Metric[0].GetCounter().GetValue())
	assert.Equal(t, float64(total), families["ledger_hist1"].Metric[0].GetHistogram().GetSampleSum())
	assert.Equal(t, float64(total), families["ledger_gauge1"].Metric[0].GetGauge().GetValue())

	sum := func(name string, value func(*dto.Metric) float64) float64 {
		var s float64
		for _, m := range families[name].Metric {
			s += value(m)
		}
		return s
	}
	assert.Equal(t, float64(total), sum("ledger_hist2", func(m *dto.Metric) float64 { return m.GetHistogram().GetSampleSum() }))
	assert.Equal(t, float64(total), sum("ledger_countVec1", func(m *dto.Metric) float64 { return m.GetCounter().GetValue() }))
	// odd labels add up to 25, the even label was overwritten
	assert.Equal(t, float64(125), sum("ledger_gaugeVec1", func(m *dto.Metric) float64 { return m.GetGauge().GetValue() }))

	// same name returns the same meter
	assert.Same(t, hist, p.GetOrCreateHistogramMeter("hist1", Bucket10s))
}

func TestPromHandler(t *testing.T) {
	p := newPrometheusMetrics()
	p.GetOrCreateCountMeter("scraped").Add(2)

	rec := httptest.NewRecorder()
	p.GetOrCreateHandler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "ledger_scraped 2")
	assert.Contains(t, string(body), "go_goroutines")
}

func TestLazyLoading(t *testing.T) {
	metrics = defaultNoopMetrics()
	t.Cleanup(func() { metrics = defaultNoopMetrics() })

	for _, a := range []any{
		Gauge("noopGauge"),
		GaugeVec("noopGauge", nil),
		Counter("noopCounter"),
		CounterVec("noopCounter", nil),
		Histogram("noopHist", nil),
		HistogramVec("noopHist", nil, nil),
	} {
		require.IsType(t, &noopMeters{}, a)
	}

	lazyGauge := LazyLoadGauge("lazyGauge")
	lazyGaugeVec := LazyLoadGaugeVec("lazyGaugeVec", nil)
	lazyCounter := LazyLoadCounter("lazyCounter")
	lazyCounterVec := LazyLoadCounterVec("lazyCounterVec", nil)
	lazyHistogram := LazyLoadHistogram("lazyHistogram", nil)
	lazyHistogramVec := LazyLoadHistogramVec("lazyHistogramVec", nil, nil)

	// meters created after initialization are prometheus backed
	InitializePrometheusMetrics()

	require.IsType(t, &promGaugeMeter{}, lazyGauge())
	require.IsType(t, &promGaugeVecMeter{}, lazyGaugeVec())
	require.IsType(t, &promCountMeter{}, lazyCounter())
	require.IsType(t, &promCountVecMeter{}, lazyCounterVec())
	require.IsType(t, &promHistogramMeter{}, lazyHistogram())
	require.IsType(t, &promHistogramVecMeter{}, lazyHistogramVec())
}
