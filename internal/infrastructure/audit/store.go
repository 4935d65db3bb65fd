package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// FileEventStore appends hash-chained events to a JSON Lines file.
type FileEventStore struct {
	mu       sync.Mutex
	path     string
	lastHash string
	loaded   bool
}

// NewFileEventStore creates a store at path. The file and its directory
// are created on first write.
func NewFileEventStore(path string) *FileEventStore {
	return &FileEventStore{path: path}
}

func (s *FileEventStore) Path() string {
	return s.path
}

// Record is a convenience around Append.
func (s *FileEventStore) Record(eventType, host string, success bool, detail map[string]string) error {
	return s.Append(&Event{Type: eventType, Host: host, Success: success, Detail: detail})
}

// Append fills in ID, timestamp and hashes, then writes the event.
func (s *FileEventStore) Append(event *Event) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		evts, err := s.loadEvents()
		if err != nil {
			return err
		}
		if len(evts) > 0 {
			s.lastHash = evts[len(evts)-1].Hash
		}
		s.loaded = true
	}

	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	event.PrevHash = s.lastHash
	event.Hash = event.CalculateHash()

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("open events file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close events file: %w", cerr)
		}
	}()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write event: %w", err)
	}

	s.lastHash = event.Hash
	return nil
}

// LoadAll returns all events in chronological order.
func (s *FileEventStore) LoadAll() ([]*Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadEvents()
}

// LoadByHost returns the events recorded for host.
func (s *FileEventStore) LoadByHost(host string) ([]*Event, error) {
	all, err := s.LoadAll()
	if err != nil {
		return nil, err
	}
	var result []*Event
	for _, e := range all {
		if e.Host == host {
			result = append(result, e)
		}
	}
	return result, nil
}

// Verify checks the hash chain and returns one message per violation.
func (s *FileEventStore) Verify() ([]string, error) {
	evts, err := s.LoadAll()
	if err != nil {
		return nil, err
	}

	var violations []string
	lastHash := ""
	for i, e := range evts {
		if e.PrevHash != lastHash {
			violations = append(violations, fmt.Sprintf("event %d (%s): prev_hash mismatch", i, e.ID))
		}
		if e.Hash != e.CalculateHash() {
			violations = append(violations, fmt.Sprintf("event %d (%s): hash mismatch - possible tampering", i, e.ID))
		}
		lastHash = e.Hash
	}
	return violations, nil
}

func (s *FileEventStore) loadEvents() ([]*Event, error) {
	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open events file: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	var result []*Event
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var event Event
		if err := json.Unmarshal(line, &event); err != nil {
			return nil, fmt.Errorf("unmarshal event: %w", err)
		}
		result = append(result, &event)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan events: %w", err)
	}
	return result, nil
}
