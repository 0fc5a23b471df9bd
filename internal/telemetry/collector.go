package telemetry

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	maxResponseTimes   = 1000
	avgResponseWindow  = 100
	metricsTopDiseases = 10
	perfTopDiseases    = 5
)

// DiseaseCount 疾病预测计数
type DiseaseCount struct {
	Disease string `json:"disease"`
	Count   int64  `json:"count"`
}

// Performance is the JSON document served by the performance endpoint and
// published by the Reporter.
type Performance struct {
	TotalPredictions      int64          `json:"total_predictions"`
	SuccessfulPredictions int64          `json:"successful_predictions"`
	FailedPredictions     int64          `json:"failed_predictions"`
	SuccessRate           float64        `json:"success_rate"`
	AverageConfidence     float64        `json:"average_confidence"`
	AverageResponseTimeMS float64        `json:"average_response_time_ms"`
	UptimeSeconds         float64        `json:"uptime_seconds"`
	UptimeHuman           string         `json:"uptime_human"`
	ModelsLoaded          int            `json:"models_loaded"`
	TopDiseases           []DiseaseCount `json:"top_diseases"`
	RequestsPerMinute     float64        `json:"requests_per_minute"`
}

// Collector keeps in-memory prediction statistics.
type Collector struct {
	mu            sync.Mutex
	total         int64
	successful    int64
	failed        int64
	confidenceSum float64
	confidenceN   int64
	diseases      map[string]int64
	responseTimes []time.Duration
	start         time.Time
	now           func() time.Time
}

// NewCollector 创建统计收集器
func NewCollector() *Collector {
	return &Collector{
		diseases: make(map[string]int64),
		start:    time.Now(),
		now:      time.Now,
	}
}

// Observe records e. Successful events without a disease (no viable
// prediction) count as successes but do not move the confidence average.
func (c *Collector) Observe(_ context.Context, e Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.total++
	if e.Success {
		c.successful++
		if e.Disease != "" {
			c.diseases[e.Disease]++
			c.confidenceSum += e.Confidence
			c.confidenceN++
		}
	} else {
		c.failed++
	}

	c.responseTimes = append(c.responseTimes, e.ResponseTime)
	if len(c.responseTimes) > maxResponseTimes {
		c.responseTimes = append([]time.Duration(nil), c.responseTimes[len(c.responseTimes)-maxResponseTimes:]...)
	}
	return nil
}

// HasData reports whether any event was observed.
func (c *Collector) HasData() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total > 0
}

// Snapshot computes the performance document.
func (c *Collector) Snapshot(modelsLoaded int) Performance {
	c.mu.Lock()
	defer c.mu.Unlock()

	uptime := c.now().Sub(c.start).Seconds()
	p := Performance{
		TotalPredictions:      c.total,
		SuccessfulPredictions: c.successful,
		FailedPredictions:     c.failed,
		AverageConfidence:     round2(c.avgConfidence()),
		AverageResponseTimeMS: round2(c.avgResponseTime().Seconds() * 1000),
		UptimeSeconds:         round2(uptime),
		UptimeHuman:           humanUptime(uptime),
		ModelsLoaded:          modelsLoaded,
		TopDiseases:           c.topDiseases(perfTopDiseases),
	}
	if c.total > 0 {
		p.SuccessRate = round2(float64(c.successful) / float64(c.total) * 100)
	}
	if uptime > 0 {
		p.RequestsPerMinute = round2(float64(c.total) / uptime * 60)
	}
	return p
}

// PrometheusText renders the statistics in the Prometheus text format.
func (c *Collector) PrometheusText(modelsLoaded int) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var b strings.Builder
	metric := func(name, help, typ string, value any) {
		fmt.Fprintf(&b, "# HELP disease_detector_%s %s\n", name, help)
		fmt.Fprintf(&b, "# TYPE disease_detector_%s %s\n", name, typ)
		fmt.Fprintf(&b, "disease_detector_%s %v\n\n", name, value)
	}

	metric("total_predictions", "Total number of predictions made", "counter", c.total)
	metric("successful_predictions", "Number of successful predictions", "counter", c.successful)
	metric("failed_predictions", "Number of failed predictions", "counter", c.failed)
	metric("avg_confidence", "Average prediction confidence", "gauge", c.avgConfidence())
	metric("avg_response_time", "Average response time in seconds", "gauge", c.avgResponseTime().Seconds())
	metric("uptime_seconds", "Application uptime in seconds", "gauge", c.now().Sub(c.start).Seconds())
	metric("models_loaded", "Number of ML models loaded", "gauge", modelsLoaded)

	top := c.topDiseases(metricsTopDiseases)
	if len(top) > 0 {
		b.WriteString("# HELP disease_detector_disease_predictions Predictions per disease\n")
		b.WriteString("# TYPE disease_detector_disease_predictions counter\n")
		for _, d := range top {
			fmt.Fprintf(&b, "disease_detector_disease_predictions{disease=%q} %d\n", metricLabel(d.Disease), d.Count)
		}
	}
	return b.String()
}

func (c *Collector) avgConfidence() float64 {
	if c.confidenceN == 0 {
		return 0
	}
	return c.confidenceSum / float64(c.confidenceN)
}

// avgResponseTime averages the most recent responses.
func (c *Collector) avgResponseTime() time.Duration {
	window := c.responseTimes
	if len(window) > avgResponseWindow {
		window = window[len(window)-avgResponseWindow:]
	}
	if len(window) == 0 {
		return 0
	}
	var sum time.Duration
	for _, d := range window {
		sum += d
	}
	return sum / time.Duration(len(window))
}

func (c *Collector) topDiseases(n int) []DiseaseCount {
	out := make([]DiseaseCount, 0, len(c.diseases))
	for d, cnt := range c.diseases {
		out = append(out, DiseaseCount{Disease: d, Count: cnt})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Disease < out[j].Disease
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func metricLabel(disease string) string {
	return strings.ReplaceAll(strings.ToLower(disease), " ", "_")
}

func humanUptime(seconds float64) string {
	s := int64(seconds)
	return fmt.Sprintf("%dh %dm %ds", s/3600, (s%3600)/60, s%60)
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
