package store

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnavailable wraps any failure of the backing database. Callers only
// ever branch on this sentinel, never on driver errors.
var ErrUnavailable = errors.New("store unavailable")

const (
	// Root is the logical root holding the box state.
	Root = "medication_box"

	StatusPath = Root + "/system_status"

	// PushRoot holds browser push registrations, one document per uuid.
	PushRoot = "push_subscriptions"
)

func CompartmentKey(id int) string {
	return fmt.Sprintf("compartment_%d", id)
}

func CompartmentPath(id int) string {
	return Root + "/" + CompartmentKey(id)
}

//go:generate mockgen -source=store.go -destination=mocks/store_mock.go -package=mocks

// Store is the document-store boundary: path-addressed JSON documents with
// read, shallow-merge update, full replace, subtree delete and live
// subscription primitives. Paths are "root/child"; subscribing to a root
// delivers the assembled child map.
type Store interface {
	// Once reads the document at path. Absent documents return (nil, nil).
	Once(path string) (json.RawMessage, error)

	// OnceTree reads every child under root, keyed by child name.
	OnceTree(root string) (map[string]json.RawMessage, error)

	// Set replaces the document at path.
	Set(path string, doc json.RawMessage) error

	// SetMulti replaces every given path in a single transaction.
	SetMulti(docs map[string]json.RawMessage) error

	// Update shallow-merges partial into the document at path, creating it
	// when absent. A JSON null value deletes its key.
	Update(path string, partial json.RawMessage) error

	// Remove deletes the document at path, or the whole subtree when path
	// is a root.
	Remove(path string) error

	// Subscribe registers onChange for path. The callback fires once with
	// the value at subscribe time, then with the full current value after
	// every write touching the path, in write order. Removal delivers nil.
	// Every delivery is a snapshot, never a delta. Cancel the handle to
	// stop delivery.
	Subscribe(path string, onChange func(doc json.RawMessage)) (*Subscription, error)
}

func mergeDocs(existing, partial json.RawMessage) (json.RawMessage, error) {
	base := map[string]json.RawMessage{}
	if len(existing) > 0 {
		if err := json.Unmarshal(existing, &base); err != nil {
			return nil, fmt.Errorf("corrupt document: %w", err)
		}
	}

	var patch map[string]json.RawMessage
	if err := json.Unmarshal(partial, &patch); err != nil {
		return nil, fmt.Errorf("partial update is not a JSON object: %w", err)
	}

	for key, value := range patch {
		if string(value) == "null" {
			delete(base, key)
			continue
		}
		base[key] = value
	}

	return json.Marshal(base)
}
