// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2024-present NetOpsHub authors.

package compliance

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cwccie/netopshub/pkg/model"
	"github.com/cwccie/netopshub/pkg/util/log"
)

// RuleFailure describes one failed rule in a device audit.
type RuleFailure struct {
	Rule        string `json:"rule"`
	Remediation string `json:"remediation"`
}

// DeviceAudit is the per-device result of an audit run.
type DeviceAudit struct {
	Compliant    int           `json:"compliant"`
	NonCompliant int           `json:"non_compliant"`
	Total        int           `json:"total"`
	Score        float64       `json:"score"`
	Failures     []RuleFailure `json:"failures"`
}

// AuditSummary aggregates an audit across all devices.
type AuditSummary struct {
	TotalChecks  int     `json:"total_checks"`
	Compliant    int     `json:"compliant"`
	NonCompliant int     `json:"non_compliant"`
	OverallScore float64 `json:"overall_score"`
}

// AuditReport is the full output of AuditAll.
type AuditReport struct {
	Devices map[string]DeviceAudit `json:"devices"`
	Summary AuditSummary           `json:"summary"`
}

// Engine checks device configurations against compliance rules.
type Engine struct {
	mu      sync.RWMutex
	rules   []model.ComplianceRule
	configs map[string]string
	results []model.ComplianceResult
}

// NewEngine returns an engine loaded with the builtin rule set. When
// demoMode is set the demo device configurations are preloaded.
func NewEngine(demoMode bool) *Engine {
	e := &Engine{
		rules:   BuiltinRules(),
		configs: make(map[string]string),
	}
	if demoMode {
		e.configs = DemoConfigs()
	}
	return e
}

// AddRule registers an additional rule.
func (e *Engine) AddRule(rule model.ComplianceRule) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if rule.ID == "" {
		rule.ID = model.NewID()
	}
	e.rules = append(e.rules, rule)
}

// LoadRules merges rules from a YAML file into the engine.
func (e *Engine) LoadRules(path string) error {
	rules, err := LoadRulesFile(path)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.rules = append(e.rules, rules...)
	e.mu.Unlock()
	log.Infof("Loaded %d compliance rules from %s", len(rules), path)
	return nil
}

// Rules returns a copy of the active rule set.
func (e *Engine) Rules() []model.ComplianceRule {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]model.ComplianceRule, len(e.rules))
	copy(out, e.rules)
	return out
}

// SetConfig stores a device configuration for later audits.
func (e *Engine) SetConfig(deviceID, config string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.configs[deviceID] = config
}

// DeviceIDs lists the devices with stored configurations, sorted.
func (e *Engine) DeviceIDs() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ids := make([]string, 0, len(e.configs))
	for id := range e.configs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// CheckCompliance evaluates every rule against one device configuration.
// An empty configuration yields NOT_ASSESSED results. An empty framework
// means all frameworks.
func (e *Engine) CheckCompliance(deviceID, config, framework string) []model.ComplianceResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := time.Now().UTC()
	results := make([]model.ComplianceResult, 0, len(e.rules))
	for _, rule := range e.rules {
		if framework != "" && rule.Framework != framework {
			continue
		}
		res := evaluateRule(rule, deviceID, config, now)
		results = append(results, res)
		e.results = append(e.results, res)
	}
	return results
}

func evaluateRule(rule model.ComplianceRule, deviceID, config string, now time.Time) model.ComplianceResult {
	res := model.ComplianceResult{
		RuleID:    rule.ID,
		DeviceID:  deviceID,
		Framework: rule.Framework,
		ControlID: rule.ControlID,
		CheckedAt: now,
	}
	if strings.TrimSpace(config) == "" {
		res.Status = model.ComplianceNotAssessed
		res.Details = fmt.Sprintf("%s: no configuration available", rule.Name)
		return res
	}

	var passed bool
	switch rule.CheckType {
	case "contains":
		passed = strings.Contains(config, rule.Pattern)
	case "not_contains":
		passed = !strings.Contains(config, rule.Pattern)
	case "regex":
		re, err := regexp.Compile("(?im)" + rule.Pattern)
		if err != nil {
			log.Warnf("Invalid compliance pattern for rule %s: %v", rule.Name, err)
			res.Status = model.ComplianceNotAssessed
			res.Details = fmt.Sprintf("%s: invalid pattern", rule.Name)
			return res
		}
		passed = re.MatchString(config)
	default:
		res.Status = model.ComplianceNotAssessed
		res.Details = fmt.Sprintf("%s: unknown check type %q", rule.Name, rule.CheckType)
		return res
	}

	if passed {
		res.Status = model.ComplianceCompliant
		res.Details = fmt.Sprintf("%s: PASS", rule.Name)
	} else {
		res.Status = model.ComplianceNonCompliant
		res.Details = fmt.Sprintf("%s: FAIL", rule.Name)
		res.Evidence = rule.Remediation
	}
	return res
}

// AuditAll runs the rule set against every stored device configuration,
// optionally restricted to one framework.
func (e *Engine) AuditAll(framework string) AuditReport {
	report := AuditReport{Devices: make(map[string]DeviceAudit)}

	e.mu.RLock()
	configs := make(map[string]string, len(e.configs))
	for id, cfg := range e.configs {
		configs[id] = cfg
	}
	e.mu.RUnlock()

	for deviceID, config := range configs {
		results := e.CheckCompliance(deviceID, config, framework)
		audit := DeviceAudit{Failures: []RuleFailure{}}
		for _, r := range results {
			audit.Total++
			switch r.Status {
			case model.ComplianceCompliant:
				audit.Compliant++
			case model.ComplianceNonCompliant:
				audit.NonCompliant++
				audit.Failures = append(audit.Failures, RuleFailure{
					Rule:        r.Details,
					Remediation: r.Evidence,
				})
			}
		}
		if audit.Total > 0 {
			audit.Score = round1(float64(audit.Compliant) / float64(audit.Total) * 100)
		}
		report.Devices[deviceID] = audit
		report.Summary.TotalChecks += audit.Total
		report.Summary.Compliant += audit.Compliant
		report.Summary.NonCompliant += audit.NonCompliant
	}

	if report.Summary.TotalChecks > 0 {
		report.Summary.OverallScore = round1(
			float64(report.Summary.Compliant) / float64(report.Summary.TotalChecks) * 100)
	}
	log.Infof("Compliance audit complete: %d devices, overall score %.1f%%",
		len(report.Devices), report.Summary.OverallScore)
	return report
}

// FormatAuditSummary renders an audit report as chat-friendly markdown.
func FormatAuditSummary(report AuditReport, framework string) string {
	if framework == "" {
		framework = "All Frameworks"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "**Compliance Audit Results — %s**\n\n", framework)
	fmt.Fprintf(&b, "Overall Score: **%g%%**\n", report.Summary.OverallScore)
	fmt.Fprintf(&b, "Total Checks: %d\n", report.Summary.TotalChecks)
	fmt.Fprintf(&b, "Passed: %d | Failed: %d\n\n", report.Summary.Compliant, report.Summary.NonCompliant)

	deviceIDs := make([]string, 0, len(report.Devices))
	for id := range report.Devices {
		deviceIDs = append(deviceIDs, id)
	}
	sort.Strings(deviceIDs)

	for _, id := range deviceIDs {
		audit := report.Devices[id]
		grade := "FAIL"
		switch {
		case audit.Score >= 80:
			grade = "PASS"
		case audit.Score >= 60:
			grade = "WARN"
		}
		fmt.Fprintf(&b, "**%s**: %g%% [%s]\n", id, audit.Score, grade)
		for i, f := range audit.Failures {
			if i >= 3 {
				break
			}
			fmt.Fprintf(&b, "  - %s\n", f.Rule)
			if f.Remediation != "" {
				fmt.Fprintf(&b, "    Fix: %s\n", f.Remediation)
			}
		}
	}
	return b.String()
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
