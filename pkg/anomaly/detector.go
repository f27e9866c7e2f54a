// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2024-present NetOpsHub authors.

// Package anomaly implements statistical anomaly detection over metric
// streams: z-score, interquartile range, and exponentially weighted moving
// average methods, with maintenance window awareness and cross-device
// correlation.
package anomaly

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/cwccie/netopshub/pkg/model"
)

// MaintenanceWindow defines a period during which detections are suppressed
// for the covered devices. An empty DeviceIDs list covers all devices.
type MaintenanceWindow struct {
	Name      string    `json:"name"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	DeviceIDs []string  `json:"device_ids,omitempty"`
}

// IsActive reports whether the window covers the given instant.
func (w MaintenanceWindow) IsActive(now time.Time) bool {
	return !now.Before(w.Start) && !now.After(w.End)
}

// CoversDevice reports whether the window applies to the device.
func (w MaintenanceWindow) CoversDevice(deviceID string) bool {
	if len(w.DeviceIDs) == 0 {
		return true
	}
	for _, id := range w.DeviceIDs {
		if id == deviceID {
			return true
		}
	}
	return false
}

// Result is one anomaly detection hit.
type Result struct {
	IsAnomaly bool         `json:"is_anomaly"`
	Score     float64      `json:"score"`
	Method    string       `json:"method"`
	Metric    model.Metric `json:"-"`
	Details   string       `json:"details"`
	Timestamp time.Time    `json:"timestamp"`
}

// ToMap renders the result in the wire shape used by the API.
func (r Result) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"is_anomaly":  r.IsAnomaly,
		"score":       math.Round(r.Score*1000) / 1000,
		"method":      r.Method,
		"device_id":   r.Metric.DeviceID,
		"metric_type": string(r.Metric.MetricType),
		"value":       r.Metric.Value,
		"details":     r.Details,
		"timestamp":   r.Timestamp.Format("2006-01-02T15:04:05.999999"),
	}
}

// CorrelationGroup describes anomalies that clustered in time.
type CorrelationGroup struct {
	Size            int      `json:"size"`
	Devices         []string `json:"devices"`
	Metrics         []string `json:"metrics"`
	TimeSpanSeconds float64  `json:"time_span_seconds"`
}

// Options tune the detector.
type Options struct {
	ZScoreThreshold float64
	IQRMultiplier   float64
	EWMAAlpha       float64
	MinSamples      int
	MaxHistory      int
}

func (o *Options) withDefaults() {
	if o.ZScoreThreshold == 0 {
		o.ZScoreThreshold = 3.0
	}
	if o.IQRMultiplier == 0 {
		o.IQRMultiplier = 1.5
	}
	if o.EWMAAlpha == 0 {
		o.EWMAAlpha = 0.3
	}
	if o.MinSamples == 0 {
		o.MinSamples = 10
	}
	if o.MaxHistory == 0 {
		o.MaxHistory = 2000
	}
}

// Detector keeps a value history per device/metric-type series and applies
// the configured detection methods to each new sample.
type Detector struct {
	opts  Options
	clock clock.Clock

	mu        sync.Mutex
	history   map[string][]float64
	ewma      map[string]float64
	ewmaVar   map[string]float64
	windows   []MaintenanceWindow
	anomalies []Result
}

// NewDetector returns a detector. Zero option fields take their defaults.
func NewDetector(opts Options) *Detector {
	opts.withDefaults()
	return &Detector{
		opts:    opts,
		clock:   clock.New(),
		history: make(map[string][]float64),
		ewma:    make(map[string]float64),
		ewmaVar: make(map[string]float64),
	}
}

// SetClock replaces the detector's clock, for tests.
func (d *Detector) SetClock(c clock.Clock) {
	d.clock = c
}

// Detect runs the given methods against one metric. The sample is always
// recorded into history, even during maintenance windows, so the baseline
// keeps tracking reality; only the detection itself is suppressed. A nil
// methods slice runs z_score, iqr, and ewma.
func (d *Detector) Detect(metric model.Metric, methods []string) []Result {
	if methods == nil {
		methods = []string{"z_score", "iqr", "ewma"}
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	key := metric.DeviceID + ":" + string(metric.MetricType)
	d.history[key] = append(d.history[key], metric.Value)
	if len(d.history[key]) > d.opts.MaxHistory {
		d.history[key] = d.history[key][len(d.history[key])-d.opts.MaxHistory:]
	}

	if d.inMaintenance(metric.DeviceID) {
		return nil
	}
	history := d.history[key]
	if len(history) < d.opts.MinSamples {
		return nil
	}

	var results []Result
	for _, method := range methods {
		var r *Result
		switch method {
		case "z_score":
			r = d.zScoreDetect(metric, history)
		case "iqr":
			r = d.iqrDetect(metric, history)
		case "ewma":
			r = d.ewmaDetect(metric, key)
		}
		if r != nil {
			results = append(results, *r)
		}
	}
	d.anomalies = append(d.anomalies, results...)
	return results
}

// DetectBatch runs the default methods against a batch of metrics.
func (d *Detector) DetectBatch(metrics []model.Metric) []Result {
	var all []Result
	for _, m := range metrics {
		all = append(all, d.Detect(m, nil)...)
	}
	return all
}

// AddMaintenanceWindow installs a suppression window.
func (d *Detector) AddMaintenanceWindow(window MaintenanceWindow) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.windows = append(d.windows, window)
}

// GetAnomalies returns detected anomalies with optional filters, oldest
// first, trailing limit entries.
func (d *Detector) GetAnomalies(deviceID string, since time.Time, limit int) []Result {
	if limit <= 0 {
		limit = 100
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []Result
	for _, r := range d.anomalies {
		if deviceID != "" && r.Metric.DeviceID != deviceID {
			continue
		}
		if !since.IsZero() && r.Timestamp.Before(since) {
			continue
		}
		out = append(out, r)
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

// AnomalyCount returns the number of recorded anomalies.
func (d *Detector) AnomalyCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.anomalies)
}

// SeriesLength returns the number of retained samples for a series.
func (d *Detector) SeriesLength(deviceID string, metricType model.MetricType) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.history[deviceID+":"+string(metricType)])
}

// CorrelateAnomalies greedily groups anomalies whose timestamps fall within
// the window of a group seed, returning only groups with more than one
// member.
func (d *Detector) CorrelateAnomalies(window time.Duration) []CorrelationGroup {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.anomalies) == 0 {
		return nil
	}

	used := make(map[int]struct{})
	var groups []CorrelationGroup
	for i, a := range d.anomalies {
		if _, ok := used[i]; ok {
			continue
		}
		group := []Result{a}
		used[i] = struct{}{}
		for j := i + 1; j < len(d.anomalies); j++ {
			if _, ok := used[j]; ok {
				continue
			}
			b := d.anomalies[j]
			diff := a.Timestamp.Sub(b.Timestamp)
			if diff < 0 {
				diff = -diff
			}
			if diff <= window {
				group = append(group, b)
				used[j] = struct{}{}
			}
		}
		if len(group) > 1 {
			groups = append(groups, summarizeGroup(group))
		}
	}
	return groups
}

func summarizeGroup(group []Result) CorrelationGroup {
	devices := make(map[string]struct{})
	metrics := make(map[string]struct{})
	earliest, latest := group[0].Timestamp, group[0].Timestamp
	for _, r := range group {
		devices[r.Metric.DeviceID] = struct{}{}
		metrics[string(r.Metric.MetricType)] = struct{}{}
		if r.Timestamp.Before(earliest) {
			earliest = r.Timestamp
		}
		if r.Timestamp.After(latest) {
			latest = r.Timestamp
		}
	}
	return CorrelationGroup{
		Size:            len(group),
		Devices:         sortedSetKeys(devices),
		Metrics:         sortedSetKeys(metrics),
		TimeSpanSeconds: latest.Sub(earliest).Seconds(),
	}
}

func (d *Detector) zScoreDetect(metric model.Metric, history []float64) *Result {
	m := mean(history)
	std := sampleStddev(history)
	if std == 0 {
		return nil
	}
	z := (metric.Value - m) / std
	if math.Abs(z) > d.opts.ZScoreThreshold {
		return &Result{
			IsAnomaly: true,
			Score:     math.Abs(z),
			Method:    "z_score",
			Metric:    metric,
			Details: fmt.Sprintf("Z-score %.2f exceeds threshold %g (mean=%.2f, std=%.2f)",
				z, d.opts.ZScoreThreshold, m, std),
			Timestamp: d.clock.Now().UTC(),
		}
	}
	return nil
}

func (d *Detector) iqrDetect(metric model.Metric, history []float64) *Result {
	sorted := append([]float64{}, history...)
	sort.Float64s(sorted)
	n := len(sorted)
	q1 := sorted[n/4]
	q3 := sorted[3*n/4]
	iqr := q3 - q1

	lower := q1 - d.opts.IQRMultiplier*iqr
	upper := q3 + d.opts.IQRMultiplier*iqr
	if metric.Value >= lower && metric.Value <= upper {
		return nil
	}

	divisor := iqr
	if divisor <= 0 {
		divisor = 1
	}
	score := math.Max(math.Abs(metric.Value-lower), math.Abs(metric.Value-upper)) / divisor
	return &Result{
		IsAnomaly: true,
		Score:     score,
		Method:    "iqr",
		Metric:    metric,
		Details: fmt.Sprintf("Value %.2f outside IQR bounds [%.2f, %.2f]",
			metric.Value, lower, upper),
		Timestamp: d.clock.Now().UTC(),
	}
}

// ewmaDetect flags samples whose deviation from the previous EWMA exceeds
// the z threshold in EWMA-variance units. The first sample of a series only
// initializes the state.
func (d *Detector) ewmaDetect(metric model.Metric, key string) *Result {
	alpha := d.opts.EWMAAlpha
	prev, ok := d.ewma[key]
	if !ok {
		d.ewma[key] = metric.Value
		d.ewmaVar[key] = 0
		return nil
	}

	d.ewma[key] = alpha*metric.Value + (1-alpha)*prev
	diff := metric.Value - prev
	d.ewmaVar[key] = alpha*diff*diff + (1-alpha)*d.ewmaVar[key]

	if d.ewmaVar[key] <= 0 {
		return nil
	}
	std := math.Sqrt(d.ewmaVar[key])
	z := math.Abs(diff) / std
	if z > d.opts.ZScoreThreshold {
		return &Result{
			IsAnomaly: true,
			Score:     z,
			Method:    "ewma",
			Metric:    metric,
			Details: fmt.Sprintf("EWMA deviation %.2f exceeds threshold (ewma=%.2f, std=%.2f)",
				z, d.ewma[key], std),
			Timestamp: d.clock.Now().UTC(),
		}
	}
	return nil
}

func (d *Detector) inMaintenance(deviceID string) bool {
	now := d.clock.Now().UTC()
	for _, w := range d.windows {
		if w.IsActive(now) && w.CoversDevice(deviceID) {
			return true
		}
	}
	return false
}

func sortedSetKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func sampleStddev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var sum float64
	for _, v := range values {
		sum += (v - m) * (v - m)
	}
	return math.Sqrt(sum / float64(len(values)-1))
}
