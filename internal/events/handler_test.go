package events

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aura-webinar/liveqa/internal/models"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc, _ := newTestService(t)
	h := NewHandler(svc, zap.NewNop())
	r := gin.New()
	r.GET("/events", h.List)
	r.POST("/events", h.Create)
	r.GET("/events/:id", h.GetByID)
	r.PUT("/events/:id", h.Update)
	r.DELETE("/events/:id", h.Delete)
	r.GET("/event-codes", h.NewCode)
	r.GET("/stats", h.Stats)
	return r
}

func do(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandlerCreateAndConflict(t *testing.T) {
	r := newTestRouter(t)
	body := map[string]interface{}{
		"code": "E1", "title": "Launch", "organizer_name": "Ala", "organizer_email": "ala@example.com",
	}

	w := do(r, http.MethodPost, "/events", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var e models.Event
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
	assert.Equal(t, "active", string(e.Status))

	w = do(r, http.MethodPost, "/events", body)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"error":"Event code already exists"}`, w.Body.String())

	w = do(r, http.MethodPost, "/events", map[string]string{"code": "E2"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Missing required fields"}`, w.Body.String())
}

func TestHandlerUnknownEventIsNotFound(t *testing.T) {
	r := newTestRouter(t)
	for _, id := range []string{uuid.NewString(), "not-a-uuid"} {
		w := do(r, http.MethodGet, "/events/"+id, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error":"Event not found"}`, w.Body.String())
	}
}

func TestHandlerUpdateAndDelete(t *testing.T) {
	r := newTestRouter(t)
	w := do(r, http.MethodPost, "/events", map[string]interface{}{
		"code": "E1", "title": "Launch", "organizer_name": "Ala", "organizer_email": "ala@example.com",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var e models.Event
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))

	// code is not editable, so this patch carries nothing
	w = do(r, http.MethodPut, "/events/"+e.ID.String(), map[string]string{"code": "HACK"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"No fields to update"}`, w.Body.String())

	w = do(r, http.MethodPut, "/events/"+e.ID.String(), map[string]string{"status": "ended"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ended"`)

	w = do(r, http.MethodDelete, "/events/"+e.ID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Event deleted successfully"}`, w.Body.String())

	w = do(r, http.MethodDelete, "/events/"+e.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandlerListEmptyIsArray(t *testing.T) {
	r := newTestRouter(t)
	w := do(r, http.MethodGet, "/events?status=paused", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = do(r, http.MethodGet, "/event-codes", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"code"`)

	w = do(r, http.MethodGet, "/stats", nil)
	assert.JSONEq(t, `{"total":0,"active":0,"paused":0,"ended":0}`, w.Body.String())
}
