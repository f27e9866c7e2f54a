// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2024-present NetOpsHub authors.

// Package forecast predicts capacity exhaustion from metric time series
// using linear regression and simple seasonality detection.
package forecast

import (
	"fmt"
	"math"
	"time"
)

// Result shapes match the forecast API payloads, so values are returned
// as generic maps rather than fixed structs.

// PredictThresholdBreach estimates when a series will cross threshold,
// assuming one sample per intervalSeconds.
func PredictThresholdBreach(values []float64, threshold float64, intervalSeconds int) map[string]interface{} {
	if intervalSeconds <= 0 {
		intervalSeconds = 60
	}
	if len(values) < 3 {
		return map[string]interface{}{
			"prediction": "insufficient_data",
			"message":    "Need at least 3 data points for prediction",
		}
	}

	slope, intercept := linearRegression(values)
	if slope <= 0 {
		trend := "stable"
		if slope < 0 {
			trend = "decreasing"
		}
		return map[string]interface{}{
			"prediction":    "no_breach",
			"slope":         round6(slope),
			"current_value": round2(values[len(values)-1]),
			"threshold":     threshold,
			"trend":         trend,
			"message":       fmt.Sprintf("Metric is %s, no breach predicted", trend),
		}
	}

	current := values[len(values)-1]
	stepsToBreach := (threshold - current) / slope
	secondsToBreach := stepsToBreach * float64(intervalSeconds)
	breachTime := time.Now().UTC().Add(time.Duration(math.Max(0, secondsToBreach)) * time.Second)
	hours := round1(secondsToBreach / 3600)

	return map[string]interface{}{
		"prediction":            "breach_predicted",
		"current_value":         round2(current),
		"threshold":             threshold,
		"slope_per_interval":    round6(slope),
		"estimated_breach_time": breachTime.Format(time.RFC3339),
		"time_to_breach_hours":  hours,
		"confidence":            confidence(values, slope, intercept),
		"message":               fmt.Sprintf("Threshold of %g predicted to be reached in %g hours", threshold, hours),
	}
}

// AnalyzeTrend reports trend direction, dispersion and seasonality.
func AnalyzeTrend(values []float64) map[string]interface{} {
	if len(values) < 3 {
		return map[string]interface{}{
			"trend":   "unknown",
			"message": "Insufficient data",
		}
	}

	slope, _ := linearRegression(values)
	avg := mean(values)
	std := sampleStddev(values)

	trend := "stable"
	switch {
	case math.Abs(slope) < std*0.01:
		trend = "stable"
	case slope > 0:
		trend = "increasing"
	default:
		trend = "decreasing"
	}

	minV, maxV := values[0], values[0]
	for _, v := range values[1:] {
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}

	return map[string]interface{}{
		"trend":           trend,
		"slope":           round6(slope),
		"mean":            round2(avg),
		"std_dev":         round2(std),
		"min":             round2(minV),
		"max":             round2(maxV),
		"has_seasonality": detectSeasonality(values, 10),
		"data_points":     len(values),
	}
}

// linearRegression fits y = slope*x + intercept over x = 0..n-1.
func linearRegression(y []float64) (float64, float64) {
	n := float64(len(y))
	if n == 0 {
		return 0, 0
	}
	var sumX, sumY, sumXY, sumX2 float64
	for i, v := range y {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumX2 += x * x
	}
	denom := n*sumX2 - sumX*sumX
	if denom == 0 {
		return 0, sumY / n
	}
	slope := (n*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / n
	return slope, intercept
}

// confidence is R-squared of the fit, clamped at zero.
func confidence(y []float64, slope, intercept float64) float64 {
	avg := mean(y)
	var ssTot, ssRes float64
	for i, v := range y {
		ssTot += (v - avg) * (v - avg)
		pred := slope*float64(i) + intercept
		ssRes += (v - pred) * (v - pred)
	}
	if ssTot == 0 {
		return 1.0
	}
	return round3(math.Max(0, 1-ssRes/ssTot))
}

// detectSeasonality looks for autocorrelation above 0.5 at any lag in
// [minPeriod, n/2).
func detectSeasonality(values []float64, minPeriod int) bool {
	n := len(values)
	if n < minPeriod*2 {
		return false
	}
	avg := mean(values)
	var variance float64
	for _, v := range values {
		variance += (v - avg) * (v - avg)
	}
	variance /= float64(n)
	if variance == 0 {
		return false
	}
	for lag := minPeriod; lag < n/2; lag++ {
		var autocorr float64
		for i := 0; i < n-lag; i++ {
			autocorr += (values[i] - avg) * (values[i+lag] - avg)
		}
		autocorr /= float64(n-lag) * variance
		if autocorr > 0.5 {
			return true
		}
	}
	return false
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
	avg := mean(values)
	var sum float64
	for _, v := range values {
		sum += (v - avg) * (v - avg)
	}
	return math.Sqrt(sum / float64(len(values)-1))
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
func round6(v float64) float64 { return math.Round(v*1e6) / 1e6 }
