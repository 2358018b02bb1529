package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/peerroom-api/internal/middleware"
	"github.com/noah-isme/peerroom-api/internal/models"
	"github.com/noah-isme/peerroom-api/internal/repository"
	"github.com/noah-isme/peerroom-api/internal/service"
)

func newRoomRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := service.NewRoomDraftStore(repository.NewMemoryRoomRepository(), repository.NewMemoryDraftRepository(0),
		nil, nil, nil, nil, service.RoomStoreConfig{PlaceholderImage: "/static/placeholder.png"})
	r := gin.New()
	r.Use(middleware.Session())
	RegisterRoutes(r.Group("/api/v1"), Handlers{
		Rooms:  NewRoomHandler(store, nil, nil),
		Drafts: NewDraftHandler(store, 20),
	})
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path, session, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if session != "" {
		req.Header.Set(middleware.SessionHeader, session)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	envelope := struct {
		Data json.RawMessage `json:"data"`
	}{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, dest))
}

func TestDraftHandlerBuildAndCreateRoom(t *testing.T) {
	r := newRoomRouter(t)
	const session = "tab-1"

	w := doJSON(t, r, http.MethodPut, "/api/v1/rooms/draft/modules-count", session, `{"modules_count":3}`)
	require.Equal(t, http.StatusOK, w.Code)
	var draft models.RoomDraft
	decodeData(t, w, &draft)
	require.Len(t, draft.Modules, 3)
	assert.Equal(t, "Module 2", draft.Modules[1].Name)

	w = doJSON(t, r, http.MethodPatch, "/api/v1/rooms/draft/modules/"+draft.Modules[0].ID, session, `{"field":"name","value":"Intro"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/rooms/draft/create", session, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPut, "/api/v1/rooms/draft", session, `{"name":"Go 101","description":"Learn Go","category":"Technology"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/rooms/draft/create", session, "")
	require.Equal(t, http.StatusCreated, w.Code)
	var room models.Room
	decodeData(t, w, &room)
	assert.Equal(t, "Intro", room.Modules[0].Name)
	assert.Equal(t, "/static/placeholder.png", room.Image)

	w = doJSON(t, r, http.MethodGet, "/api/v1/rooms/"+room.ID, "", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v1/rooms?search=go", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total_count":1`)
}

func TestDraftHandlerUpdateWithoutLoadedRoom(t *testing.T) {
	r := newRoomRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/rooms/draft/update", "tab-2", "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/rooms/draft/load/missing", "tab-2", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDraftHandlerSessionsAreSeparate(t *testing.T) {
	r := newRoomRouter(t)

	w := doJSON(t, r, http.MethodPut, "/api/v1/rooms/draft", "a", `{"name":"Mine"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v1/rooms/draft", "b", "")
	require.Equal(t, http.StatusOK, w.Code)
	var draft models.RoomDraft
	decodeData(t, w, &draft)
	assert.Empty(t, draft.Name)

	w = doJSON(t, r, http.MethodGet, "/api/v1/rooms/draft", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.SessionHeader))
}

func TestDraftHandlerRejectsBadPayloads(t *testing.T) {
	r := newRoomRouter(t)

	w := doJSON(t, r, http.MethodPut, "/api/v1/rooms/draft/modules-count", "a", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPut, "/api/v1/rooms/draft/modules-count", "a", `{"modules_count":-2}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPut, "/api/v1/rooms/draft/modules-count", "a", `{"modules_count":0}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPut, "/api/v1/rooms/draft/modules-count", "a", `{"modules_count":21}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPatch, "/api/v1/rooms/draft/modules/x", "a", `{"field":"title","value":"v"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRoomHandlerListRejectsBadSort(t *testing.T) {
	r := newRoomRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/v1/rooms?sort=popular", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v1/rooms/export.csv", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
