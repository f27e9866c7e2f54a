// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2024-present NetOpsHub authors.

// Package compliance evaluates device configurations against security
// framework rules (NIST 800-53, CIS, PCI-DSS) and custom baselines.
package compliance

import (
	"os"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"

	"github.com/cwccie/netopshub/pkg/model"
)

// BuiltinRules are the rules shipped with the product.
func BuiltinRules() []model.ComplianceRule {
	return []model.ComplianceRule{
		{
			ID:          model.NewID(),
			Name:        "SSH v2 Required",
			Description: "SSH version 2 must be configured (v1 is insecure)",
			Framework:   "NIST-800-53",
			ControlID:   "AC-17(2)",
			Severity:    model.SeverityCritical,
			CheckType:   "contains",
			Pattern:     "ip ssh version 2",
			Remediation: "Configure: ip ssh version 2",
		},
		{
			ID:          model.NewID(),
			Name:        "Password Encryption",
			Description: "Service password-encryption must be enabled",
			Framework:   "NIST-800-53",
			ControlID:   "IA-5(1)",
			Severity:    model.SeverityCritical,
			CheckType:   "contains",
			Pattern:     "service password-encryption",
			Remediation: "Configure: service password-encryption",
		},
		{
			ID:          model.NewID(),
			Name:        "Banner Required",
			Description: "Login banner must be configured for legal notice",
			Framework:   "NIST-800-53",
			ControlID:   "AC-8",
			Severity:    model.SeverityWarning,
			CheckType:   "regex",
			Pattern:     `banner\s+(login|motd)\s+`,
			Remediation: "Configure: banner login ^Authorized access only^",
		},
		{
			ID:          model.NewID(),
			Name:        "NTP Configured",
			Description: "NTP must be configured for accurate timestamps",
			Framework:   "NIST-800-53",
			ControlID:   "AU-8",
			Severity:    model.SeverityWarning,
			CheckType:   "regex",
			Pattern:     `ntp server\s+\S+`,
			Remediation: "Configure: ntp server <NTP_SERVER_IP>",
		},
		{
			ID:          model.NewID(),
			Name:        "Logging Configured",
			Description: "Remote syslog must be configured",
			Framework:   "NIST-800-53",
			ControlID:   "AU-6",
			Severity:    model.SeverityCritical,
			CheckType:   "regex",
			Pattern:     `logging host\s+\S+`,
			Remediation: "Configure: logging host <SYSLOG_SERVER_IP>",
		},
		{
			ID:          model.NewID(),
			Name:        "Console Timeout",
			Description: "Console line must have an exec-timeout",
			Framework:   "CIS",
			ControlID:   "CIS-1.1.7",
			Severity:    model.SeverityWarning,
			CheckType:   "regex",
			Pattern:     `line con.*\n.*exec-timeout\s+\d+`,
			Remediation: "Configure under line con 0: exec-timeout 5 0",
		},
		{
			ID:          model.NewID(),
			Name:        "VTY Access Control",
			Description: "VTY lines must have access-class configured",
			Framework:   "CIS",
			ControlID:   "CIS-1.2.2",
			Severity:    model.SeverityCritical,
			CheckType:   "regex",
			Pattern:     `line vty.*\n.*access-class\s+\S+`,
			Remediation: "Configure under line vty 0 15: access-class ACL_VTY in",
		},
		{
			ID:          model.NewID(),
			Name:        "SNMP Community Not Default",
			Description: "Default SNMP communities (public/private) must not be used",
			Framework:   "CIS",
			ControlID:   "CIS-2.1.1",
			Severity:    model.SeverityCritical,
			CheckType:   "not_contains",
			Pattern:     "snmp-server community public",
			Remediation: "Remove: no snmp-server community public",
		},
		{
			ID:          model.NewID(),
			Name:        "Unused Interfaces Shutdown",
			Description: "Unused interfaces should be administratively shut down",
			Framework:   "PCI-DSS",
			ControlID:   "PCI-1.1.6",
			Severity:    model.SeverityWarning,
			CheckType:   "regex",
			Pattern:     `interface.*\n\s+shutdown`,
			Remediation: "Shut down unused interfaces: shutdown",
		},
		{
			ID:          model.NewID(),
			Name:        "AAA Authentication",
			Description: "AAA authentication must be configured",
			Framework:   "NIST-800-53",
			ControlID:   "IA-2",
			Severity:    model.SeverityCritical,
			CheckType:   "contains",
			Pattern:     "aaa authentication login",
			Remediation: "Configure: aaa new-model; aaa authentication login default local",
		},
	}
}

// LoadRulesFile reads additional rules from a YAML file.
func LoadRulesFile(path string) ([]model.ComplianceRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading rules file %s", path)
	}
	var doc struct {
		Rules []model.ComplianceRule `yaml:"rules"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(err, "parsing rules file %s", path)
	}
	for i := range doc.Rules {
		if doc.Rules[i].ID == "" {
			doc.Rules[i].ID = model.NewID()
		}
	}
	return doc.Rules, nil
}

// DemoConfigs returns the demo device configurations keyed by device ID.
func DemoConfigs() map[string]string {
	return map[string]string{
		"router-core-1": `
hostname router-core-1
!
service password-encryption
ip ssh version 2
!
aaa new-model
aaa authentication login default local
!
ntp server 10.0.0.100
logging host 10.0.0.200
!
snmp-server community NetOps$ecure RO
!
banner login ^C
*** AUTHORIZED ACCESS ONLY ***
^C
!
line con 0
 exec-timeout 5 0
line vty 0 15
 access-class ACL_VTY in
 transport input ssh
`,
		"switch-access-1": `
hostname switch-access-1
!
ip ssh version 2
!
snmp-server community public RO
!
ntp server 10.0.0.100
!
line con 0
 no exec-timeout
line vty 0 15
 transport input ssh telnet
`,
		"firewall-edge-1": `
hostname firewall-edge-1
!
service password-encryption
ip ssh version 2
!
aaa authentication login default local
!
ntp server 10.0.0.100
ntp server 10.0.0.101
logging host 10.0.0.200
logging host 10.0.0.201
!
snmp-server community FW$nmp! RO
!
banner login ^C
*** AUTHORIZED ACCESS ONLY - ALL ACTIVITY MONITORED ***
^C
!
line con 0
 exec-timeout 3 0
line vty 0 4
 access-class ACL_MGMT in
 transport input ssh
`,
	}
}
