// Package server implements the receiving endpoint for agent snapshots.
package server

import (
	"sort"
	"sync"
	"time"

	"sysmon/internal/monitor"
)

// StoredSnapshot is one ingested snapshot together with its provenance.
type StoredSnapshot struct {
	AgentID    string           `json:"agent_id"`
	Hostname   string           `json:"hostname,omitempty"`
	ReceivedAt time.Time        `json:"received_at"`
	Snapshot   monitor.Snapshot `json:"snapshot"`
}

// SnapshotStore keeps only the most recent snapshot per agent. Each ingest
// overwrites the previous value; there is no history.
type SnapshotStore struct {
	mu     sync.RWMutex
	latest map[string]StoredSnapshot
}

func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{latest: make(map[string]StoredSnapshot)}
}

func (s *SnapshotStore) Set(agentID, hostname string, snap monitor.Snapshot) StoredSnapshot {
	stored := StoredSnapshot{
		AgentID:    agentID,
		Hostname:   hostname,
		ReceivedAt: time.Now().UTC(),
		Snapshot:   snap,
	}

	s.mu.Lock()
	s.latest[agentID] = stored
	s.mu.Unlock()

	return stored
}

func (s *SnapshotStore) Get(agentID string) (StoredSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.latest[agentID]
	return stored, ok
}

func (s *SnapshotStore) All() []StoredSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]StoredSnapshot, 0, len(s.latest))
	for _, stored := range s.latest {
		all = append(all, stored)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].AgentID < all[j].AgentID })

	return all
}
