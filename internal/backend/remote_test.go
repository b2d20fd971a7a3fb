// internal/backend/remote_test.go
package backend

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Corphon/DramaForgeMCP/internal/errors"
	"github.com/Corphon/DramaForgeMCP/internal/models"
	"github.com/Corphon/DramaForgeMCP/internal/services"
)

type remoteCapture struct {
	Method string
	Path   string
	Query  string
	Body   string
}

func newRemoteServer(t *testing.T, status int, response string) (*RemoteBackend, *remoteCapture) {
	t.Helper()
	captured := &remoteCapture{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		captured.Method = r.Method
		captured.Path = r.URL.Path
		captured.Query = r.URL.RawQuery
		captured.Body = string(body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(response))
	}))
	t.Cleanup(server.Close)
	return NewRemoteBackend(server.URL + "/"), captured
}

func TestRemoteGetDrama(t *testing.T) {
	backend, captured := newRemoteServer(t, http.StatusOK,
		`{"id": "drama_1", "title": "都市逆袭", "status": "draft"}`)

	drama, err := backend.GetDrama("drama_1")
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, captured.Method)
	assert.Equal(t, "/api/dramas/drama_1", captured.Path)
	assert.Equal(t, "都市逆袭", drama.Title)
}

func TestRemoteListDramasEncodesQuery(t *testing.T) {
	backend, captured := newRemoteServer(t, http.StatusOK,
		`{"items": [], "pagination": {"page": 2, "page_size": 10, "total": 0, "total_pages": 0}}`)

	page, err := backend.ListDramas(&services.DramaListQuery{
		Status:   "draft",
		Keyword:  "逆袭",
		Page:     2,
		PageSize: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Pagination.Page)

	assert.Equal(t, "/api/dramas", captured.Path)
	assert.Contains(t, captured.Query, "status=draft")
	assert.Contains(t, captured.Query, "page=2")
	assert.Contains(t, captured.Query, "page_size=10")
}

func TestRemoteCreateDramaSendsBody(t *testing.T) {
	backend, captured := newRemoteServer(t, http.StatusCreated,
		`{"id": "drama_1", "title": "都市逆袭"}`)

	drama, err := backend.CreateDrama(&services.CreateDramaRequest{Title: "都市逆袭", Genre: "都市"})
	require.NoError(t, err)
	assert.Equal(t, "drama_1", drama.ID)

	assert.Equal(t, http.MethodPost, captured.Method)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(captured.Body), &body))
	assert.Equal(t, "都市逆袭", body["title"])
	assert.Equal(t, "都市", body["genre"])
}

func TestRemoteSaveCharactersWrapsPayload(t *testing.T) {
	backend, captured := newRemoteServer(t, http.StatusOK, `[{"id": 1, "name": "陈默"}]`)

	saved, err := backend.SaveCharacters("drama_1", []models.Character{{Name: "陈默"}})
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, 1, saved[0].ID)

	assert.Equal(t, "/api/dramas/drama_1/characters", captured.Path)
	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(captured.Body), &body))
	assert.Contains(t, body, "characters")
}

func TestRemoteGenerateEpisodes(t *testing.T) {
	backend, captured := newRemoteServer(t, http.StatusOK, `[{"id": "ep_1", "episode_number": 1}]`)

	episodes, err := backend.GenerateEpisodes("drama_1", 3)
	require.NoError(t, err)
	require.Len(t, episodes, 1)

	assert.Equal(t, "/api/dramas/drama_1/episodes/generate", captured.Path)
	assert.JSONEq(t, `{"count": 3}`, captured.Body)
}

func TestRemoteGenerateStoryboardReturnsHandle(t *testing.T) {
	backend, captured := newRemoteServer(t, http.StatusAccepted,
		`{"task_id": "task_1", "status": "pending"}`)

	handle, err := backend.GenerateStoryboard("ep_1")
	require.NoError(t, err)
	assert.Equal(t, "task_1", handle.TaskID)
	assert.Equal(t, "/api/episodes/ep_1/storyboards/generate", captured.Path)
}

func TestRemoteDeleteVideoUsesNumericID(t *testing.T) {
	backend, captured := newRemoteServer(t, http.StatusOK, `{}`)

	require.NoError(t, backend.DeleteVideo(42))
	assert.Equal(t, http.MethodDelete, captured.Method)
	assert.Equal(t, "/api/videos/42", captured.Path)
}

func TestRemoteGenerateVideoFromImage(t *testing.T) {
	backend, captured := newRemoteServer(t, http.StatusCreated, `{"id": 7, "status": "pending"}`)

	record, err := backend.GenerateVideoFromImage(7, "drama_1", "动起来")
	require.NoError(t, err)
	assert.Equal(t, 7, record.ID)

	assert.Equal(t, "/api/images/7/video", captured.Path)
	assert.JSONEq(t, `{"drama_id": "drama_1", "prompt": "动起来"}`, captured.Body)
}

func TestRemoteDecodesErrorEnvelope(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		checker func(error) bool
	}{
		{
			name:    "not_found",
			status:  http.StatusNotFound,
			body:    `{"error": "剧本不存在", "type": "not_found"}`,
			checker: apperrors.IsNotFoundError,
		},
		{
			name:    "validation",
			status:  http.StatusBadRequest,
			body:    `{"error": "参数无效", "type": "validation"}`,
			checker: apperrors.IsValidationError,
		},
		{
			name:    "config_missing",
			status:  http.StatusBadRequest,
			body:    `{"error": "未配置服务", "type": "config_missing"}`,
			checker: apperrors.IsConfigMissingError,
		},
		{
			name:    "timeout",
			status:  http.StatusGatewayTimeout,
			body:    `{"error": "生成超时", "type": "timeout"}`,
			checker: apperrors.IsTimeoutError,
		},
		{
			name:    "unknown_type_maps_to_provider",
			status:  http.StatusBadGateway,
			body:    `{"error": "上游异常", "type": "something_else"}`,
			checker: apperrors.IsProviderError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend, _ := newRemoteServer(t, tt.status, tt.body)
			_, err := backend.GetDrama("drama_1")
			require.Error(t, err)
			assert.True(t, tt.checker(err))
		})
	}
}

func TestRemoteNonJSONErrorBecomesProviderError(t *testing.T) {
	backend, _ := newRemoteServer(t, http.StatusBadGateway, "upstream crashed")

	_, err := backend.GetDrama("drama_1")
	require.Error(t, err)
	assert.True(t, apperrors.IsProviderError(err))
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), "upstream crashed")
}

func TestRemoteFinalizeEpisodeIgnoresBody(t *testing.T) {
	backend, captured := newRemoteServer(t, http.StatusOK, `{"message": "ok"}`)

	require.NoError(t, backend.FinalizeEpisode("ep_1"))
	assert.Equal(t, "/api/episodes/ep_1/finalize", captured.Path)
	assert.Empty(t, captured.Body)
}
