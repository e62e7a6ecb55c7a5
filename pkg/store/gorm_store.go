package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"prabhas.dev/medication-box-service/pkg/db"
	"prabhas.dev/medication-box-service/pkg/models"
)

// gormStore keeps one JSON document per path in a sqlite table and fans out
// change notifications through an in-process hub. Writes are serialized by a
// mutex held through notification, which is what gives subscribers per-path
// write order.
type gormStore struct {
	db  *db.DB
	hub *hub
	mu  sync.Mutex
}

func NewGormStore(database *db.DB) Store {
	return &gormStore{
		db:  database,
		hub: newHub(),
	}
}

func wrapStoreErr(err error) error {
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

func (s *gormStore) Once(path string) (json.RawMessage, error) {
	var doc models.Document
	err := s.db.Conn.First(&doc, "path = ?", path).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return json.RawMessage(doc.Doc), nil
}

func (s *gormStore) OnceTree(root string) (map[string]json.RawMessage, error) {
	var docs []models.Document
	if err := s.db.Conn.Find(&docs, "path LIKE ?", root+"/%").Error; err != nil {
		return nil, wrapStoreErr(err)
	}

	tree := make(map[string]json.RawMessage, len(docs))
	for _, doc := range docs {
		tree[strings.TrimPrefix(doc.Path, root+"/")] = json.RawMessage(doc.Doc)
	}
	return tree, nil
}

func upsertDoc(tx *gorm.DB, path string, doc json.RawMessage) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "path"}},
		UpdateAll: true,
	}).Create(&models.Document{Path: path, Doc: doc}).Error
}

func (s *gormStore) Set(path string, doc json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := upsertDoc(s.db.Conn, path, doc); err != nil {
		return wrapStoreErr(err)
	}

	s.notify(path)
	return nil
}

func (s *gormStore) SetMulti(docs map[string]json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Conn.Transaction(func(tx *gorm.DB) error {
		for path, doc := range docs {
			if err := upsertDoc(tx, path, doc); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return wrapStoreErr(err)
	}

	for path := range docs {
		s.notify(path)
	}
	return nil
}

func (s *gormStore) Update(path string, partial json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Conn.Transaction(func(tx *gorm.DB) error {
		var existing json.RawMessage
		var doc models.Document
		findErr := tx.First(&doc, "path = ?", path).Error
		if findErr != nil && !errors.Is(findErr, gorm.ErrRecordNotFound) {
			return findErr
		}
		if findErr == nil {
			existing = json.RawMessage(doc.Doc)
		}

		merged, mergeErr := mergeDocs(existing, partial)
		if mergeErr != nil {
			return mergeErr
		}

		return upsertDoc(tx, path, merged)
	})
	if err != nil {
		return wrapStoreErr(err)
	}

	s.notify(path)
	return nil
}

func (s *gormStore) Remove(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Conn.
		Where("path = ? OR path LIKE ?", path, path+"/%").
		Delete(&models.Document{}).Error
	if err != nil {
		return wrapStoreErr(err)
	}

	s.notify(path)
	return nil
}

func (s *gormStore) Subscribe(path string, onChange func(doc json.RawMessage)) (*Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, err := s.valueAt(path)
	if err != nil {
		return nil, err
	}

	sub := s.hub.subscribe(path, onChange)
	sub.ch <- value
	return sub, nil
}

// notify delivers the current value of every subscribed path affected by a
// write to path. Must be called with s.mu held.
func (s *gormStore) notify(path string) {
	for _, subscribed := range s.hub.paths() {
		if !touches(subscribed, path) {
			continue
		}
		value, err := s.valueAt(subscribed)
		if err != nil {
			continue
		}
		s.hub.publish(subscribed, value)
	}
}

// touches reports whether a write to written changes the value observed at
// subscribed: the same path, a descendant, or an ancestor.
func touches(subscribed, written string) bool {
	return subscribed == written ||
		strings.HasPrefix(written, subscribed+"/") ||
		strings.HasPrefix(subscribed, written+"/")
}

// valueAt assembles the current value at path: the document itself for a
// leaf, the child map for a root, nil when nothing is there.
func (s *gormStore) valueAt(path string) (json.RawMessage, error) {
	if strings.Contains(path, "/") {
		return s.Once(path)
	}

	tree, err := s.OnceTree(path)
	if err != nil {
		return nil, err
	}
	if len(tree) == 0 {
		return nil, nil
	}
	return json.Marshal(tree)
}
