package forms

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/guestdesk/backend/internal/models"
	"github.com/guestdesk/backend/pkg/apperr"
)

// memoryStore is an in-memory Store.
type memoryStore struct {
	mu      sync.Mutex
	forms   map[int64]*models.Form
	nextID  int64
	lookups atomic.Int32
	block   chan struct{} // blocks lookups before the row is read
	hold    chan struct{} // blocks lookups after the row is read
}

func newMemoryStore() *memoryStore {
	return &memoryStore{forms: make(map[int64]*models.Form)}
}

func (m *memoryStore) GetByName(ctx context.Context, name string) (*models.Form, error) {
	m.lookups.Add(1)
	if m.block != nil {
		select {
		case <-m.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f, ok := m.find(name)
	if m.hold != nil {
		<-m.hold
	}
	if !ok {
		return nil, apperr.NotFound(NotFoundMessage(name))
	}
	return f, nil
}

func (m *memoryStore) find(name string) (*models.Form, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.forms {
		if f.Name == name {
			cp := *f
			return &cp, true
		}
	}
	return nil, false
}

func (m *memoryStore) List(_ context.Context) ([]models.Form, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Form
	for _, f := range m.forms {
		out = append(out, *f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memoryStore) Create(_ context.Context, name, content string, authorID int64) (*models.Form, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	name = NormalizeName(name)
	for _, f := range m.forms {
		if f.Name == name {
			return nil, apperr.Conflict(fmt.Sprintf("Form with name '%s' already exists.", name))
		}
	}
	m.nextID++
	now := time.Now().UTC()
	f := &models.Form{ID: m.nextID, Name: name, Content: content, CreatedBy: authorID, UpdatedBy: authorID, CreatedAt: now, UpdatedAt: now}
	m.forms[f.ID] = f
	cp := *f
	return &cp, nil
}

func (m *memoryStore) Update(_ context.Context, id int64, content string, editorID int64) (*models.Form, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.forms[id]
	if !ok {
		return nil, apperr.NotFound("Form not found.")
	}
	f.Content, f.UpdatedBy, f.UpdatedAt = content, editorID, time.Now().UTC()
	cp := *f
	return &cp, nil
}

func (m *memoryStore) Delete(_ context.Context, id int64) (*models.Form, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.forms[id]
	if !ok {
		return nil, apperr.NotFound("Form not found.")
	}
	delete(m.forms, id)
	return f, nil
}
