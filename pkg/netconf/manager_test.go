// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2024-present NetOpsHub authors.

package netconf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseConfig = `hostname router-core-1
ip ssh version 2
ntp server 10.0.0.100
logging host 10.0.0.100
line vty 0 4
 transport input ssh`

func TestBackupConfigDedupByHash(t *testing.T) {
	m := NewManager()

	first := m.BackupConfig("r1", baseConfig, "scheduled", "router-core-1")
	assert.Equal(t, "router-core-1", first.DeviceHostname)
	assert.Equal(t, "scheduled", first.Source)
	assert.NotEmpty(t, first.ConfigHash)

	// Unchanged text returns the existing snapshot, no new version.
	again := m.BackupConfig("r1", baseConfig, "scheduled", "router-core-1")
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, 1, m.TotalSnapshots())

	changed := m.BackupConfig("r1", baseConfig+"\nbanner motd ^ Authorized access only ^", "manual", "")
	assert.NotEqual(t, first.ID, changed.ID)
	assert.Equal(t, 2, m.TotalSnapshots())
	assert.Equal(t, 1, m.DeviceCount())
}

func TestBackupConfigDefaults(t *testing.T) {
	m := NewManager()
	snap := m.BackupConfig("r1", baseConfig, "", "")
	assert.Equal(t, "r1", snap.DeviceHostname)
	assert.Equal(t, "manual", snap.Source)
}

func TestGetLatestAndHistory(t *testing.T) {
	m := NewManager()
	_, ok := m.GetLatest("r1")
	assert.False(t, ok)

	m.BackupConfig("r1", "version 1", "", "")
	m.BackupConfig("r1", "version 2", "", "")
	m.BackupConfig("r1", "version 3", "", "")

	latest, ok := m.GetLatest("r1")
	require.True(t, ok)
	assert.Equal(t, "version 3", latest.ConfigText)

	history := m.GetHistory("r1", 2)
	require.Len(t, history, 2)
	assert.Equal(t, "version 2", history[0].ConfigText)
	assert.Equal(t, "version 3", history[1].ConfigText)
}

func TestDiffLatestVersions(t *testing.T) {
	m := NewManager()
	m.BackupConfig("r1", baseConfig, "", "")
	m.BackupConfig("r1", strings.Replace(baseConfig, "ntp server 10.0.0.100", "ntp server 10.0.0.200\nntp server 10.0.0.201", 1), "", "")

	diff, ok := m.Diff("r1", "", "")
	require.True(t, ok)
	assert.Equal(t, 2, diff.LinesAdded)
	assert.Equal(t, 1, diff.LinesRemoved)
	assert.Equal(t, 1, diff.LinesChanged)
	assert.Contains(t, diff.DiffText, "-ntp server 10.0.0.100")
	assert.Contains(t, diff.DiffText, "+ntp server 10.0.0.200")
	assert.Contains(t, diff.DiffText, "@@")
}

func TestUnifiedDiffFormat(t *testing.T) {
	// Identical texts produce no diff at all.
	assert.Empty(t, unifiedDiff("a\nb", "a\nb", "before", "after"))

	out := unifiedDiff("a\nb\nc", "a\nx\nc", "before", "after")
	assert.True(t, strings.HasPrefix(out, "--- before"))
	assert.Contains(t, out, "+++ after")
	assert.Contains(t, out, "@@ -1,3 +1,3 @@")
	assert.Contains(t, out, "-b")
	assert.Contains(t, out, "+x")
}

func TestDiffRequiresTwoVersions(t *testing.T) {
	m := NewManager()
	m.BackupConfig("r1", baseConfig, "", "")
	_, ok := m.Diff("r1", "", "")
	assert.False(t, ok)
}

func TestDiffUnknownSnapshotID(t *testing.T) {
	m := NewManager()
	m.BackupConfig("r1", "a", "", "")
	m.BackupConfig("r1", "b", "", "")
	_, ok := m.Diff("r1", "no-such-id", "")
	assert.False(t, ok)
}

func TestCompareToGolden(t *testing.T) {
	m := NewManager()
	_, ok := m.CompareToGolden("r1")
	assert.False(t, ok)

	m.SetGoldenConfig("r1", baseConfig)
	m.BackupConfig("r1", baseConfig, "", "")

	result, ok := m.CompareToGolden("r1")
	require.True(t, ok)
	assert.Equal(t, "Configuration matches golden baseline.", result)

	m.BackupConfig("r1", baseConfig+"\nno service password-encryption", "", "")
	result, ok = m.CompareToGolden("r1")
	require.True(t, ok)
	assert.Contains(t, result, "+no service password-encryption")
}

func TestSearchConfigs(t *testing.T) {
	m := NewManager()
	m.BackupConfig("r1", baseConfig, "", "")
	m.BackupConfig("r2", "hostname switch-access-1\nsnmp-server community public RO", "", "")

	hits := m.SearchConfigs("NTP SERVER")
	require.Len(t, hits, 1)
	assert.Equal(t, "r1", hits[0].DeviceID)
	assert.Equal(t, 3, hits[0].LineNumber)
	assert.Equal(t, "ntp server 10.0.0.100", hits[0].Line)

	assert.Len(t, m.SearchConfigs("hostname"), 2)
	assert.Empty(t, m.SearchConfigs("does-not-exist"))
}
