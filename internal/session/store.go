// Package session provides the session-scoped state store shared by all
// analysis operations. It maps topic names ("calculations", "action_items",
// ...) to ordered lists of records appended as analyses run, so the
// orchestrator can refer back to earlier results within one conversation.
// State lives only for the lifetime of the process; nothing is persisted.
package session

import (
	"reflect"
	"sort"
	"sync"
	"time"
)

// Record is one logged entry under a topic. Values are JSON-like
// (strings, numbers, bools, nested maps and slices).
type Record = map[string]interface{}

// State holds all topic lists for one conversation. Append-only per topic,
// except for in-place edits applied through Update (used by the action-item
// ledger). A single State must never be shared across conversations; the
// mutex exists so health and metrics readers can inspect it while a tool
// call is writing.
type State struct {
	mu     sync.RWMutex
	topics map[string][]Record

	CreatedAt time.Time
	updatedAt time.Time
	toolCalls int
}

// New creates an empty session state store
func New() *State {
	now := time.Now()
	return &State{
		topics:    make(map[string][]Record),
		CreatedAt: now,
		updatedAt: now,
	}
}

// Append adds a record to the end of a topic list, creating the topic on
// first use.
func (s *State) Append(topic string, record Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.topics[topic] = append(s.topics[topic], record)
	s.updatedAt = time.Now()
}

// AppendUnique adds a record unless an equal record already exists under
// the topic. Returns true if the record was appended. Used for idempotent
// trace logging (the orchestrator may replay identical calls).
func (s *State) AppendUnique(topic string, record Record) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.topics[topic] {
		if reflect.DeepEqual(existing, record) {
			return false
		}
	}
	s.topics[topic] = append(s.topics[topic], record)
	s.updatedAt = time.Now()
	return true
}

// Records returns a copy of the records under a topic, in insertion order.
// The record maps are shallow-copied so callers cannot mutate stored state.
func (s *State) Records(topic string) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := s.topics[topic]
	out := make([]Record, len(records))
	for i, r := range records {
		cp := make(Record, len(r))
		for k, v := range r {
			cp[k] = v
		}
		out[i] = cp
	}
	return out
}

// Count returns the number of records under a topic
func (s *State) Count(topic string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.topics[topic])
}

// Update applies apply to the first record under topic for which match
// returns true, and reports whether a record matched. This is the only
// mutation path for existing entries.
func (s *State) Update(topic string, match func(Record) bool, apply func(Record)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.topics[topic] {
		if match(r) {
			apply(r)
			s.updatedAt = time.Now()
			return true
		}
	}
	return false
}

// Topics returns the sorted list of topics that have at least one record
func (s *State) Topics() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.topics))
	for name := range s.topics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RecordToolCall increments the session tool-call counter
func (s *State) RecordToolCall() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.toolCalls++
	s.updatedAt = time.Now()
}

// Stats returns session statistics for the session-context tool and the
// health endpoint.
func (s *State) Stats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	topicCounts := make(map[string]int, len(s.topics))
	total := 0
	for name, records := range s.topics {
		topicCounts[name] = len(records)
		total += len(records)
	}

	return map[string]interface{}{
		"created_at":    s.CreatedAt,
		"updated_at":    s.updatedAt,
		"tool_calls":    s.toolCalls,
		"topics":        topicCounts,
		"total_records": total,
		"age_seconds":   time.Since(s.CreatedAt).Seconds(),
	}
}

// Clear resets the session state
func (s *State) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.topics = make(map[string][]Record)
	s.toolCalls = 0
	s.updatedAt = time.Now()
}
