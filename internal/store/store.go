// Package store defines the persistent key/value store contract the core
// depends on (§6) without ever implementing the real on-disk store itself
// — that is an external collaborator. Memory is a correct, mutex-guarded
// in-memory implementation used by tests and as the CLI's default when no
// richer store is wired in.
package store

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ralt/appstream-gen/internal/models"
)

// Store is the persistence contract this core depends on.
type Store interface {
	SetHints(pkid string, blob []byte) error
	GetHints(pkid string) ([]byte, bool)
	GetRepoInfo(suite, section, arch string) (models.RepoInfo, bool)
	SetRepoInfo(suite, section, arch string, info models.RepoInfo) error
	AddStatistics(blob []byte) error
	GetStatistics() (map[int64][]byte, error)
}

// Memory is a Store backed by process memory, safe for concurrent use by
// the worker pool (§5: "the core treats reads and writes as atomic per
// key").
type Memory struct {
	mu         sync.Mutex
	hints      map[string][]byte
	repoInfo   map[string]models.RepoInfo
	statistics map[int64][]byte
	clock      func() int64
}

// NewMemory creates an empty Memory store. clock defaults to a
// monotonically increasing counter when nil, since Date.now()-style wall
// clocks are avoided in code meant to be exercised deterministically by
// tests; callers that want real timestamps should pass one explicitly.
func NewMemory(clock func() int64) *Memory {
	if clock == nil {
		var n int64
		clock = func() int64 {
			n++
			return n
		}
	}
	return &Memory{
		hints:      make(map[string][]byte),
		repoInfo:   make(map[string]models.RepoInfo),
		statistics: make(map[int64][]byte),
		clock:      clock,
	}
}

func repoInfoKey(suite, section, arch string) string {
	return fmt.Sprintf("%s/%s/%s", suite, section, arch)
}

// SetHints persists the raw hints blob for pkid, as written by the driver
// once a package's GeneratorResult is complete, ahead of any
// ReportAggregator run.
func (m *Memory) SetHints(pkid string, blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hints[pkid] = blob
	return nil
}

func (m *Memory) GetHints(pkid string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.hints[pkid]
	return b, ok
}

func (m *Memory) GetRepoInfo(suite, section, arch string) (models.RepoInfo, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	info, ok := m.repoInfo[repoInfoKey(suite, section, arch)]
	return info, ok
}

func (m *Memory) SetRepoInfo(suite, section, arch string, info models.RepoInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.repoInfo[repoInfoKey(suite, section, arch)] = info
	return nil
}

func (m *Memory) AddStatistics(blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statistics[m.clock()] = blob
	return nil
}

func (m *Memory) GetStatistics() (map[int64][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[int64][]byte, len(m.statistics))
	for k, v := range m.statistics {
		out[k] = v
	}
	return out, nil
}

// MarshalRepoInfo and UnmarshalRepoInfo are convenience helpers for stores
// that persist RepoInfo as an opaque JSON blob (the contract only requires
// "an object", not a specific encoding).
func MarshalRepoInfo(info models.RepoInfo) ([]byte, error) {
	return json.Marshal(info)
}

func UnmarshalRepoInfo(data []byte) (models.RepoInfo, error) {
	var info models.RepoInfo
	err := json.Unmarshal(data, &info)
	return info, err
}
