// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2024-present NetOpsHub authors.

package agents

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/cwccie/netopshub/pkg/model"
)

var wordRe = regexp.MustCompile(`\w+`)

// KnowledgeDoc is one curated document in the vendor knowledge base.
type KnowledgeDoc struct {
	Key     string   `json:"key"`
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Vendor  string   `json:"vendor"`
	Tags    []string `json:"tags"`
}

// SearchResult is a knowledge base hit with its relevance score.
type SearchResult struct {
	KnowledgeDoc
	Score float64 `json:"score"`
}

// DocumentChunk is a slice of ingested documentation prepared for
// embedding and retrieval.
type DocumentChunk struct {
	ChunkID  string                 `json:"chunk_id"`
	Text     string                 `json:"text"`
	Source   string                 `json:"source"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

func vendorKnowledge() []KnowledgeDoc {
	return []KnowledgeDoc{
		{
			Key:   "bgp_flapping",
			Title: "BGP Session Flapping — Root Causes and Resolution",
			Content: "BGP session flapping is typically caused by: (1) Physical link instability — " +
				"check interface error counters and optic levels. (2) MTU mismatch — BGP uses " +
				"TCP, and path MTU issues cause session resets. (3) Hold timer expiry — if the " +
				"peer doesn't send keepalives within the hold time (default 180s), the session " +
				"drops. (4) Route policy changes — aggressive filtering can cause rapid " +
				"withdraw/announce cycles. (5) Memory exhaustion — full tables on low-memory " +
				"platforms cause BGP process restarts.",
			Vendor: "multi-vendor",
			Tags:   []string{"bgp", "flapping", "troubleshooting"},
		},
		{
			Key:   "ospf_adjacency",
			Title: "OSPF Adjacency Formation Failures",
			Content: "OSPF adjacency failures are commonly caused by: (1) Area ID mismatch — both " +
				"sides must be in the same area. (2) Hello/Dead timer mismatch — default 10s/40s " +
				"on broadcast, 30s/120s on NBMA. (3) Authentication mismatch — type and key must " +
				"match. (4) MTU mismatch — OSPF checks MTU in DBD packets (disable with " +
				"'ip ospf mtu-ignore' on Cisco). (5) Network type mismatch — point-to-point vs " +
				"broadcast affects DR/BDR election. (6) Stub area flag mismatch.",
			Vendor: "multi-vendor",
			Tags:   []string{"ospf", "adjacency", "troubleshooting"},
		},
		{
			Key:   "high_cpu_cisco",
			Title: "High CPU Utilization on Cisco IOS/IOS-XE",
			Content: "Common causes of high CPU on Cisco platforms: (1) IP Input process — typically " +
				"caused by process-switched traffic (ACL logging, TTL-exceeded, ARP). Use " +
				"'show processes cpu sorted' and 'show ip cef'. (2) BGP Scanner — normal during " +
				"convergence, but sustained high CPU indicates table churn. (3) SNMP Engine — " +
				"excessive polling or large MIB walks. (4) Memory pressure causing garbage " +
				"collection. (5) Software bug — check Cisco Bug Search for the specific version.",
			Vendor: "cisco",
			Tags:   []string{"cpu", "cisco", "troubleshooting"},
		},
		{
			Key:   "stp_topology_change",
			Title: "Spanning Tree Topology Changes and Their Impact",
			Content: "STP topology changes (TC) cause MAC address table flushing, leading to " +
				"temporary flooding. Frequent TCs indicate: (1) Unstable links — error counters, " +
				"duplex mismatch. (2) Incorrectly placed portfast — server ports without portfast " +
				"cause TC on every link bounce. (3) Unidirectional link — use UDLD. " +
				"(4) Bridge priority misconfiguration — unplanned root bridge changes. " +
				"Mitigation: Enable BPDU Guard on access ports, use Root Guard on distribution " +
				"uplinks, enable portfast on all host-facing ports.",
			Vendor: "multi-vendor",
			Tags:   []string{"stp", "spanning-tree", "topology-change"},
		},
		{
			Key:   "interface_errors",
			Title: "Interface Error Counter Analysis",
			Content: "Interface error types and their meaning: " +
				"CRC errors — usually physical layer: bad cable, optic, or far-end issue. " +
				"Input errors — broad category including CRC, frame, overrun. " +
				"Output drops — QoS queue full, often during micro-bursts. " +
				"Runts — frames smaller than 64 bytes, often collision-related. " +
				"Giants — frames exceeding MTU, check jumbo frame configuration. " +
				"Late collisions — cable too long or duplex mismatch (half vs full). " +
				"Resets — interface flapping, often physical. " +
				"Ignored — input buffer full, may need buffer tuning.",
			Vendor: "multi-vendor",
			Tags:   []string{"interface", "errors", "troubleshooting"},
		},
		{
			Key:   "palo_alto_ha",
			Title: "Palo Alto HA Failover Troubleshooting",
			Content: "Palo Alto HA failover causes: (1) Link monitoring — monitored interface goes " +
				"down. (2) Path monitoring — monitored IP becomes unreachable. (3) HA heartbeat " +
				"loss — HA1 and HA1-backup both fail. (4) Preemption — higher priority peer " +
				"comes back online. Check: 'show high-availability all', verify HA link status, " +
				"check session sync status. Common issue: asymmetric routing post-failover when " +
				"using ECMP — ensure session table is fully synced.",
			Vendor: "palo_alto",
			Tags:   []string{"palo-alto", "ha", "failover"},
		},
	}
}

// KnowledgeAgent answers questions from a curated vendor knowledge base
// using keyword-overlap retrieval, and ingests documents as overlapping
// chunks for later indexing.
type KnowledgeAgent struct {
	baseAgent
	docs   []KnowledgeDoc
	chunks []DocumentChunk
}

func NewKnowledgeAgent() *KnowledgeAgent {
	return &KnowledgeAgent{
		baseAgent: newBaseAgent("knowledge", "RAG over vendor documentation and network knowledge"),
		docs:      vendorKnowledge(),
	}
}

func (a *KnowledgeAgent) Process(_ context.Context, task *model.AgentTask) *model.AgentTask {
	task.Status = model.TaskRunning

	switch task.TaskType {
	case "query":
		query := inputString(task.InputData, "query", "")
		results := a.search(query, 3)
		return a.completeTask(task, map[string]interface{}{
			"query":   query,
			"results": results,
			"sources": len(results),
		})

	case "ingest":
		text := inputString(task.InputData, "text", "")
		source := inputString(task.InputData, "source", "manual")
		chunks := chunkDocument(text, source, 500, 50)
		a.mu.Lock()
		a.chunks = append(a.chunks, chunks...)
		total := len(a.chunks)
		a.mu.Unlock()
		return a.completeTask(task, map[string]interface{}{
			"chunks_created": len(chunks),
			"total_chunks":   total,
		})

	default:
		return a.failTask(task, fmt.Sprintf("Unknown task type: %s", task.TaskType))
	}
}

func (a *KnowledgeAgent) Chat(_ context.Context, message string, _ map[string]interface{}) string {
	a.logMessage("user", message)

	var response string
	results := a.search(message, 3)
	if len(results) > 0 {
		top := results[0]
		response = fmt.Sprintf("**%s**\n\n%s\n\n_Source: %s documentation | Tags: %s | Relevance: %.0f%%_",
			top.Title, top.Content, top.Vendor, strings.Join(top.Tags, ", "), top.Score*100)
		if len(results) > 1 {
			var related []string
			for _, r := range results[1:] {
				related = append(related, r.Title)
			}
			response += fmt.Sprintf("\n\nRelated topics: %s", strings.Join(related, ", "))
		}
	} else {
		response = "I don't have specific documentation on that topic in my knowledge base. " +
			"I can help with: BGP, OSPF, STP, interface errors, Cisco CPU troubleshooting, " +
			"and Palo Alto HA. Try rephrasing your question."
	}

	a.logMessage("assistant", response)
	return response
}

// search scores documents by keyword overlap with the query.
func (a *KnowledgeAgent) search(query string, topK int) []SearchResult {
	queryWords := wordSet(strings.ToLower(query))
	if len(queryWords) == 0 {
		return nil
	}

	var scored []SearchResult
	for _, doc := range a.docs {
		docWords := wordSet(strings.ToLower(doc.Content))
		for _, tag := range doc.Tags {
			docWords[tag] = struct{}{}
		}
		for w := range wordSet(strings.ToLower(doc.Title)) {
			docWords[w] = struct{}{}
		}

		overlap := 0
		for w := range queryWords {
			if _, ok := docWords[w]; ok {
				overlap++
			}
		}
		if overlap == 0 {
			continue
		}
		score := float64(overlap) / float64(len(queryWords))
		if score > 0.1 {
			scored = append(scored, SearchResult{KnowledgeDoc: doc, Score: score})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored
}

func wordSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range wordRe.FindAllString(s, -1) {
		set[w] = struct{}{}
	}
	return set
}

// chunkDocument splits text into overlapping word windows, dropping tiny
// trailing chunks.
func chunkDocument(text, source string, chunkSize, overlap int) []DocumentChunk {
	words := strings.Fields(text)
	var chunks []DocumentChunk
	step := chunkSize - overlap
	if step <= 0 {
		step = chunkSize
	}
	for i := 0; i < len(words); i += step {
		end := i + chunkSize
		if end > len(words) {
			end = len(words)
		}
		chunkWords := words[i:end]
		if len(chunkWords) < 20 {
			continue
		}
		chunkText := strings.Join(chunkWords, " ")
		sum := md5.Sum([]byte(chunkText))
		chunks = append(chunks, DocumentChunk{
			ChunkID: hex.EncodeToString(sum[:])[:12],
			Text:    chunkText,
			Source:  source,
			Metadata: map[string]interface{}{
				"position":    i,
				"total_words": len(words),
			},
		})
	}
	return chunks
}

// KnowledgeCount reports the size of the curated knowledge base.
func (a *KnowledgeAgent) KnowledgeCount() int { return len(a.docs) }

// ChunkCount reports how many ingested chunks are held.
func (a *KnowledgeAgent) ChunkCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.chunks)
}
