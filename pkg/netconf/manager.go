// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2024-present NetOpsHub authors.

// Package netconf manages device configuration snapshots: backup with
// content hashing, version history, diffs between versions, golden baseline
// comparison, and text search across the estate.
package netconf

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cwccie/netopshub/pkg/model"
	"github.com/cwccie/netopshub/pkg/util/log"
)

// SearchHit is one matching line from a configuration search.
type SearchHit struct {
	DeviceID   string `json:"device_id"`
	LineNumber int    `json:"line_number"`
	Line       string `json:"line"`
}

// Manager owns the configuration snapshot store.
type Manager struct {
	mu            sync.RWMutex
	snapshots     map[string][]model.ConfigSnapshot
	goldenConfigs map[string]string
}

// NewManager returns an empty configuration store.
func NewManager() *Manager {
	return &Manager{
		snapshots:     make(map[string][]model.ConfigSnapshot),
		goldenConfigs: make(map[string]string),
	}
}

// BackupConfig stores a configuration snapshot. When the new text hashes to
// the same value as the latest snapshot, the existing snapshot is returned
// and no new version is created.
func (m *Manager) BackupConfig(deviceID, configText, source, hostname string) model.ConfigSnapshot {
	sum := sha256.Sum256([]byte(configText))
	configHash := hex.EncodeToString(sum[:])

	m.mu.Lock()
	defer m.mu.Unlock()

	existing := m.snapshots[deviceID]
	if len(existing) > 0 && existing[len(existing)-1].ConfigHash == configHash {
		log.Debugf("Config unchanged for %s", deviceID)
		return existing[len(existing)-1]
	}

	if hostname == "" {
		hostname = deviceID
	}
	if source == "" {
		source = "manual"
	}
	snapshot := model.ConfigSnapshot{
		ID:             model.NewID(),
		DeviceID:       deviceID,
		DeviceHostname: hostname,
		ConfigText:     configText,
		ConfigHash:     configHash,
		CapturedAt:     time.Now().UTC(),
		Source:         source,
	}
	m.snapshots[deviceID] = append(m.snapshots[deviceID], snapshot)
	log.Infof("Config backed up for %s (hash: %s)", deviceID, configHash[:12])
	return snapshot
}

// GetLatest returns the newest snapshot for a device.
func (m *Manager) GetLatest(deviceID string) (model.ConfigSnapshot, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snapshots := m.snapshots[deviceID]
	if len(snapshots) == 0 {
		return model.ConfigSnapshot{}, false
	}
	return snapshots[len(snapshots)-1], true
}

// GetHistory returns the trailing version history for a device.
func (m *Manager) GetHistory(deviceID string, limit int) []model.ConfigSnapshot {
	if limit <= 0 {
		limit = 10
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	snapshots := m.snapshots[deviceID]
	if len(snapshots) > limit {
		snapshots = snapshots[len(snapshots)-limit:]
	}
	out := make([]model.ConfigSnapshot, len(snapshots))
	copy(out, snapshots)
	return out
}

// Diff generates a unified diff between two versions. Empty IDs select the
// two most recent snapshots. It returns false when fewer than two versions
// exist or an ID is unknown.
func (m *Manager) Diff(deviceID, beforeID, afterID string) (model.ConfigDiff, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshots := m.snapshots[deviceID]
	if len(snapshots) < 2 {
		return model.ConfigDiff{}, false
	}

	var before, after *model.ConfigSnapshot
	if beforeID != "" {
		before = findSnapshot(snapshots, beforeID)
	} else {
		before = &snapshots[len(snapshots)-2]
	}
	if afterID != "" {
		after = findSnapshot(snapshots, afterID)
	} else {
		after = &snapshots[len(snapshots)-1]
	}
	if before == nil || after == nil {
		return model.ConfigDiff{}, false
	}

	diffText := unifiedDiff(
		before.ConfigText, after.ConfigText,
		fmt.Sprintf("%s (%s)", deviceID, before.CapturedAt.Format(time.RFC3339)),
		fmt.Sprintf("%s (%s)", deviceID, after.CapturedAt.Format(time.RFC3339)),
	)

	added, removed := countChanges(diffText)
	return model.ConfigDiff{
		DeviceID:         deviceID,
		BeforeSnapshotID: before.ID,
		AfterSnapshotID:  after.ID,
		DiffText:         diffText,
		LinesAdded:       added,
		LinesRemoved:     removed,
		LinesChanged:     minInt(added, removed),
		GeneratedAt:      time.Now().UTC(),
	}, true
}

// SetGoldenConfig installs the golden baseline for a device.
func (m *Manager) SetGoldenConfig(deviceID, configText string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.goldenConfigs[deviceID] = configText
}

// CompareToGolden diffs the latest snapshot against the golden baseline. It
// returns false when either is missing.
func (m *Manager) CompareToGolden(deviceID string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	golden, ok := m.goldenConfigs[deviceID]
	if !ok {
		return "", false
	}
	snapshots := m.snapshots[deviceID]
	if len(snapshots) == 0 {
		return "", false
	}
	latest := snapshots[len(snapshots)-1]

	diffText := unifiedDiff(
		golden, latest.ConfigText,
		fmt.Sprintf("%s (golden)", deviceID),
		fmt.Sprintf("%s (current)", deviceID),
	)
	if diffText == "" {
		return "Configuration matches golden baseline.", true
	}
	return diffText, true
}

// SearchConfigs scans the latest snapshot of every device for a
// case-insensitive substring match.
func (m *Manager) SearchConfigs(pattern string) []SearchHit {
	lower := strings.ToLower(pattern)
	m.mu.RLock()
	defer m.mu.RUnlock()

	var hits []SearchHit
	for deviceID, snapshots := range m.snapshots {
		if len(snapshots) == 0 {
			continue
		}
		latest := snapshots[len(snapshots)-1]
		for i, line := range strings.Split(latest.ConfigText, "\n") {
			if strings.Contains(strings.ToLower(line), lower) {
				hits = append(hits, SearchHit{
					DeviceID:   deviceID,
					LineNumber: i + 1,
					Line:       strings.TrimSpace(line),
				})
			}
		}
	}
	return hits
}

// DeviceCount returns the number of devices with snapshots.
func (m *Manager) DeviceCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.snapshots)
}

// TotalSnapshots returns the snapshot count across all devices.
func (m *Manager) TotalSnapshots() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := 0
	for _, s := range m.snapshots {
		total += len(s)
	}
	return total
}

func findSnapshot(snapshots []model.ConfigSnapshot, id string) *model.ConfigSnapshot {
	for i := range snapshots {
		if snapshots[i].ID == id {
			return &snapshots[i]
		}
	}
	return nil
}

// countChanges counts added and removed lines, excluding the file headers.
func countChanges(diffText string) (added, removed int) {
	for _, line := range strings.Split(diffText, "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		case strings.HasPrefix(line, "+"):
			added++
		case strings.HasPrefix(line, "-"):
			removed++
		}
	}
	return added, removed
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
