// Package audit keeps a tamper-evident log of actions taken against hosts.
package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"time"
)

const (
	EventWorkspaceInitialized = "workspace.initialized"
	EventHostAdded            = "host.added"
	EventHostRemoved          = "host.removed"
	EventKeyGenerated         = "key.generated"
	EventKeyUploaded          = "key.uploaded"
	EventCommandRun           = "command.run"
	EventDownload             = "transfer.download"
	EventUpload               = "transfer.upload"
	EventScriptSynced         = "script.synced"
)

// Event is one line of events.jsonl.
type Event struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	Host      string            `json:"host,omitempty"`
	Success   bool              `json:"success"`
	Detail    map[string]string `json:"detail,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	PrevHash  string            `json:"prev_hash"`
	Hash      string            `json:"hash"`
}

// CalculateHash returns a deterministic SHA256 over the event and its predecessor.
func (e *Event) CalculateHash() string {
	h := sha256.New()
	h.Write([]byte(e.PrevHash))
	h.Write([]byte(e.ID))
	h.Write([]byte(e.Timestamp.UTC().Format(time.RFC3339Nano)))
	h.Write([]byte(e.Type))
	h.Write([]byte(e.Host))
	if e.Success {
		h.Write([]byte{1})
	} else {
		h.Write([]byte{0})
	}

	keys := make([]string, 0, len(e.Detail))
	for k := range e.Detail {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		h.Write([]byte(k))
		h.Write([]byte{0})
		h.Write([]byte(e.Detail[k]))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
