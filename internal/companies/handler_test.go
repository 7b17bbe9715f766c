package companies

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guestdesk/backend/internal/models"
	"github.com/guestdesk/backend/pkg/apperr"
	"github.com/guestdesk/backend/pkg/response"
)

type memoryDirectory struct {
	mu     sync.Mutex
	rows   []models.Company
	nextID int64
	err    error
}

func (m *memoryDirectory) Ensure(_ context.Context, name string) (*models.Company, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	name = NormalizeName(name)
	for _, c := range m.rows {
		if c.Name == name {
			return &c, nil
		}
	}
	m.nextID++
	c := models.Company{ID: m.nextID, Name: name, CreatedAt: time.Now()}
	m.rows = append(m.rows, c)
	return &c, nil
}

func (m *memoryDirectory) List(_ context.Context) ([]models.Company, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := append([]models.Company(nil), m.rows...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memoryDirectory) Create(_ context.Context, name string) (*models.Company, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	name = NormalizeName(name)
	for _, c := range m.rows {
		if c.Name == name {
			return nil, apperr.Conflict(fmt.Sprintf("Company with name '%s' already exists.", name))
		}
	}
	m.nextID++
	c := models.Company{ID: m.nextID, Name: name, CreatedAt: time.Now()}
	m.rows = append(m.rows, c)
	return &c, nil
}

func (m *memoryDirectory) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range m.rows {
		if c.ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return apperr.NotFound("Company not found.")
}

func newTestRouter(dir Directory) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(dir, nil)
	r := gin.New()
	r.GET("/companies", h.List)
	r.POST("/companies", h.Create)
	r.DELETE("/companies/:id", h.Delete)
	return r
}

func serve(t *testing.T, r *gin.Engine, method, path string, body interface{}) (int, response.Body) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var out response.Body
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return w.Code, out
}

func TestCreateListDelete(t *testing.T) {
	dir := &memoryDirectory{}
	r := newTestRouter(dir)

	code, _ := serve(t, r, http.MethodPost, "/companies", gin.H{"name": "  Zeta  Corp "})
	assert.Equal(t, http.StatusCreated, code)
	code, _ = serve(t, r, http.MethodPost, "/companies", gin.H{"name": "ACME"})
	assert.Equal(t, http.StatusCreated, code)

	code, body := serve(t, r, http.MethodPost, "/companies", gin.H{"name": "ACME "})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "Company with name 'ACME' already exists.", body.Error)

	code, body = serve(t, r, http.MethodGet, "/companies", nil)
	assert.Equal(t, http.StatusOK, code)
	list := body.Data.([]interface{})
	require.Len(t, list, 2)
	assert.Equal(t, "ACME", list[0].(map[string]interface{})["name"])
	assert.Equal(t, "Zeta Corp", list[1].(map[string]interface{})["name"])

	code, _ = serve(t, r, http.MethodDelete, "/companies/1", nil)
	assert.Equal(t, http.StatusOK, code)
	code, body = serve(t, r, http.MethodDelete, "/companies/1", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Company not found.", body.Error)
	code, _ = serve(t, r, http.MethodDelete, "/companies/x", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestListStorageFailureHidesDetail(t *testing.T) {
	dir := &memoryDirectory{err: apperr.Storage("list companies", errors.New("dial tcp 10.0.0.5:5432: refused"))}
	code, body := serve(t, newTestRouter(dir), http.MethodGet, "/companies", nil)

	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "There is a problem with fetching companies data.", body.Error)
}
