package guestbook

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/guestdesk/backend/internal/document"
	"github.com/guestdesk/backend/internal/models"
	"github.com/guestdesk/backend/pkg/apperr"
)

func signatureURI(t *testing.T) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 24, 12))
	for x := 0; x < 24; x++ {
		img.Set(x, 6, color.NRGBA{A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

type memoryTemplates struct {
	forms   map[string]string
	lookups atomic.Int32
	err     error
}

func (m *memoryTemplates) GetByName(_ context.Context, name string) (*models.Form, error) {
	m.lookups.Add(1)
	if m.err != nil {
		return nil, m.err
	}
	content, ok := m.forms[name]
	if !ok {
		return nil, apperr.NotFound("Form not found.")
	}
	return &models.Form{ID: 1, Name: name, Content: content}, nil
}

// fakeRenderer records its input and returns a fixed document per call.
type fakeRenderer struct {
	mu   sync.Mutex
	last document.Request
	body string
	err  error
}

func (r *fakeRenderer) Render(req document.Request, body string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	r.last, r.body = req, body
	return []byte("%PDF-fake " + req.Visitor.LastName), nil
}

type memoryLedger struct {
	mu      sync.Mutex
	rows    []models.GuestSubmission
	docs    map[int64][]byte
	appends atomic.Int32
	err     error
	now     time.Time
	// appended runs after a successful append, outside the lock.
	appended func()
}

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{docs: make(map[int64][]byte), now: time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)}
}

func (m *memoryLedger) Append(_ context.Context, v models.Visitor, pdf []byte) (*models.GuestSubmission, error) {
	m.appends.Add(1)
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	s := models.GuestSubmission{ID: int64(len(m.rows) + 1), Visitor: v, CreatedAt: m.now.Add(time.Duration(len(m.rows)) * time.Second)}
	m.rows = append(m.rows, s)
	m.docs[s.ID] = append([]byte(nil), pdf...)
	m.mu.Unlock()
	if m.appended != nil {
		m.appended()
	}
	return &s, nil
}

func (m *memoryLedger) List(_ context.Context) ([]models.GuestSubmission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]models.GuestSubmission(nil), m.rows...)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memoryLedger) GetDocument(_ context.Context, id int64) ([]byte, *models.GuestSubmission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.rows {
		if s.ID == id {
			cp := s
			return append([]byte(nil), m.docs[id]...), &cp, nil
		}
	}
	return nil, nil, apperr.NotFound("Guest book entry not found.")
}

// memoryDirectory enforces name uniqueness like the companies unique constraint.
type memoryDirectory struct {
	mu    sync.Mutex
	names map[string]int64
	calls atomic.Int32
	err   error
}

func newMemoryDirectory() *memoryDirectory {
	return &memoryDirectory{names: make(map[string]int64)}
}

func (m *memoryDirectory) Ensure(ctx context.Context, name string) (*models.Company, error) {
	m.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.names[name]
	if !ok {
		id = int64(len(m.names) + 1)
		m.names[name] = id
	}
	return &models.Company{ID: id, Name: name}, nil
}

type fakeArchiver struct {
	mu  sync.Mutex
	ids []int64
	err error
}

func (a *fakeArchiver) EnqueueDocumentArchive(ctx context.Context, id int64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	a.ids = append(a.ids, id)
	return a.err
}

var errBoom = errors.New("boom")

func defaultTemplates() *memoryTemplates {
	return &memoryTemplates{forms: map[string]string{
		"en":      "<p>Safety rules</p>",
		"en_gdpr": "<p>Safety rules and consent</p>",
	}}
}
