package corpus

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	apperrors "github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/pkg/errors"
)

// Store persists corpus documents.
type Store interface {
	// List returns every document ordered by creation time and ID.
	List(ctx context.Context) ([]Document, error)
	// Add stores doc and returns it with its assigned ID and timestamp.
	// Documents with identical text are rejected with ErrDocumentExists.
	Add(ctx context.Context, doc Document) (Document, error)
	Count(ctx context.Context) (int, error)
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu     sync.RWMutex
	docs   []Document
	hashes map[string]string
	seq    int
	now    func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		hashes: make(map[string]string),
		now:    time.Now,
	}
}

func (s *MemoryStore) List(ctx context.Context) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]Document, len(s.docs))
	copy(out, s.docs)
	s.mu.RUnlock()
	sortDocuments(out)
	return out, nil
}

func (s *MemoryStore) Add(ctx context.Context, doc Document) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	hash := doc.ContentHash()
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.hashes[hash]; ok {
		return Document{}, apperrors.Newf(apperrors.ErrDocumentExists, http.StatusConflict, "same text as document %s", existing)
	}
	s.seq++
	if doc.ID == "" {
		doc.ID = fmt.Sprintf("doc-%06d", s.seq)
	}
	for _, d := range s.docs {
		if d.ID == doc.ID {
			return Document{}, apperrors.Newf(apperrors.ErrDocumentExists, http.StatusConflict, "id %s already used", doc.ID)
		}
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = s.now().UTC()
	}
	s.docs = append(s.docs, doc)
	s.hashes[hash] = doc.ID
	return doc, nil
}

func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs), nil
}
