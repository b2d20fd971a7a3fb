// internal/backend/remote.go
package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/Corphon/DramaForgeMCP/internal/errors"
	"github.com/Corphon/DramaForgeMCP/internal/models"
	"github.com/Corphon/DramaForgeMCP/internal/services"
	"github.com/Corphon/DramaForgeMCP/internal/storage"
)

// RemoteBackend 把全部操作转发到另一个实例的 REST 接口。
// 路由路径和错误格式与本地 API 层保持一致。
type RemoteBackend struct {
	baseURL    string
	httpClient *http.Client
}

// NewRemoteBackend 创建远程后端
func NewRemoteBackend(baseURL string) *RemoteBackend {
	return &RemoteBackend{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 2 * time.Minute,
		},
	}
}

// remoteError 远端返回的错误格式
type remoteError struct {
	Error string `json:"error"`
	Type  string `json:"type"`
}

// doJSON 发送请求并把成功响应解码到 out，out 为 nil 时忽略响应体
func (b *RemoteBackend) doJSON(method, path string, query url.Values, body interface{}, out interface{}) error {
	fullURL := b.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("序列化请求失败: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, fullURL, reader)
	if err != nil {
		return fmt.Errorf("创建请求失败: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("远端请求失败: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("读取远端响应失败: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return b.decodeError(resp.StatusCode, data)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("解析远端响应失败: %w", err)
	}
	return nil
}

// decodeError 按远端返回的错误类型还原为对应的应用错误
func (b *RemoteBackend) decodeError(statusCode int, data []byte) error {
	var re remoteError
	if json.Unmarshal(data, &re) == nil && re.Error != "" {
		switch apperrors.ErrorType(re.Type) {
		case apperrors.ErrorTypeNotFound:
			return apperrors.NewNotFoundError(re.Error, nil)
		case apperrors.ErrorTypeConfigMissing:
			return apperrors.NewConfigMissingError(re.Error)
		case apperrors.ErrorTypeValidation:
			return apperrors.NewValidationError(re.Error, nil)
		case apperrors.ErrorTypeTimeout:
			return apperrors.NewTimeoutError(re.Error)
		case apperrors.ErrorTypeParse:
			return apperrors.NewAppError(apperrors.ErrorTypeParse, re.Error, nil)
		default:
			return apperrors.NewAppError(apperrors.ErrorTypeProvider, re.Error, nil)
		}
	}
	return apperrors.NewProviderError(statusCode, string(data))
}

func (b *RemoteBackend) ListDramas(query *services.DramaListQuery) (*storage.Page[models.Drama], error) {
	q := url.Values{}
	if query != nil {
		if query.Status != "" {
			q.Set("status", query.Status)
		}
		if query.Genre != "" {
			q.Set("genre", query.Genre)
		}
		if query.Keyword != "" {
			q.Set("keyword", query.Keyword)
		}
		if query.Page > 0 {
			q.Set("page", strconv.Itoa(query.Page))
		}
		if query.PageSize > 0 {
			q.Set("page_size", strconv.Itoa(query.PageSize))
		}
	}
	var page storage.Page[models.Drama]
	if err := b.doJSON(http.MethodGet, "/api/dramas", q, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (b *RemoteBackend) CreateDrama(req *services.CreateDramaRequest) (*models.Drama, error) {
	var drama models.Drama
	if err := b.doJSON(http.MethodPost, "/api/dramas", nil, req, &drama); err != nil {
		return nil, err
	}
	return &drama, nil
}

func (b *RemoteBackend) GetDrama(id string) (*models.Drama, error) {
	var drama models.Drama
	if err := b.doJSON(http.MethodGet, "/api/dramas/"+url.PathEscape(id), nil, nil, &drama); err != nil {
		return nil, err
	}
	return &drama, nil
}

func (b *RemoteBackend) UpdateDrama(id string, req *services.UpdateDramaRequest) (*models.Drama, error) {
	var drama models.Drama
	if err := b.doJSON(http.MethodPut, "/api/dramas/"+url.PathEscape(id), nil, req, &drama); err != nil {
		return nil, err
	}
	return &drama, nil
}

func (b *RemoteBackend) DeleteDrama(id string) error {
	return b.doJSON(http.MethodDelete, "/api/dramas/"+url.PathEscape(id), nil, nil, nil)
}

func (b *RemoteBackend) DramaStats() (*models.DramaStats, error) {
	var stats models.DramaStats
	if err := b.doJSON(http.MethodGet, "/api/dramas/stats", nil, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (b *RemoteBackend) SaveOutline(id string, req *services.SaveOutlineRequest) (*models.Drama, error) {
	var drama models.Drama
	if err := b.doJSON(http.MethodPost, "/api/dramas/"+url.PathEscape(id)+"/outline", nil, req, &drama); err != nil {
		return nil, err
	}
	return &drama, nil
}

func (b *RemoteBackend) SaveProgress(id string, req *services.SaveProgressRequest) error {
	return b.doJSON(http.MethodPost, "/api/dramas/"+url.PathEscape(id)+"/progress", nil, req, nil)
}

func (b *RemoteBackend) GetCharacters(dramaID string) ([]models.Character, error) {
	var characters []models.Character
	if err := b.doJSON(http.MethodGet, "/api/dramas/"+url.PathEscape(dramaID)+"/characters", nil, nil, &characters); err != nil {
		return nil, err
	}
	return characters, nil
}

func (b *RemoteBackend) SaveCharacters(dramaID string, characters []models.Character) ([]models.Character, error) {
	body := map[string]interface{}{"characters": characters}
	var saved []models.Character
	if err := b.doJSON(http.MethodPost, "/api/dramas/"+url.PathEscape(dramaID)+"/characters", nil, body, &saved); err != nil {
		return nil, err
	}
	return saved, nil
}

func (b *RemoteBackend) GenerateCharacters(req *services.GenerateCharactersRequest) (*models.TaskHandle, error) {
	var handle models.TaskHandle
	path := "/api/dramas/" + url.PathEscape(req.DramaID) + "/characters/generate"
	if err := b.doJSON(http.MethodPost, path, nil, req, &handle); err != nil {
		return nil, err
	}
	return &handle, nil
}

func (b *RemoteBackend) SaveEpisodes(dramaID string, episodes []models.Episode) ([]models.Episode, error) {
	body := map[string]interface{}{"episodes": episodes}
	var saved []models.Episode
	if err := b.doJSON(http.MethodPost, "/api/dramas/"+url.PathEscape(dramaID)+"/episodes", nil, body, &saved); err != nil {
		return nil, err
	}
	return saved, nil
}

func (b *RemoteBackend) GenerateEpisodes(dramaID string, count int) ([]models.Episode, error) {
	body := map[string]interface{}{"count": count}
	var episodes []models.Episode
	path := "/api/dramas/" + url.PathEscape(dramaID) + "/episodes/generate"
	if err := b.doJSON(http.MethodPost, path, nil, body, &episodes); err != nil {
		return nil, err
	}
	return episodes, nil
}

func (b *RemoteBackend) FinalizeEpisode(episodeID string) error {
	return b.doJSON(http.MethodPost, "/api/episodes/"+url.PathEscape(episodeID)+"/finalize", nil, nil, nil)
}

func (b *RemoteBackend) GetStoryboards(episodeID string) ([]services.StoryboardView, error) {
	var views []services.StoryboardView
	if err := b.doJSON(http.MethodGet, "/api/episodes/"+url.PathEscape(episodeID)+"/storyboards", nil, nil, &views); err != nil {
		return nil, err
	}
	return views, nil
}

func (b *RemoteBackend) CreateStoryboard(episodeID string, sb models.Storyboard) (*models.Storyboard, error) {
	var created models.Storyboard
	path := "/api/episodes/" + url.PathEscape(episodeID) + "/storyboards"
	if err := b.doJSON(http.MethodPost, path, nil, sb, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (b *RemoteBackend) UpdateStoryboard(storyboardID string, req *services.UpdateStoryboardRequest) (*models.Storyboard, error) {
	var updated models.Storyboard
	if err := b.doJSON(http.MethodPut, "/api/storyboards/"+url.PathEscape(storyboardID), nil, req, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (b *RemoteBackend) DeleteStoryboard(storyboardID string) error {
	return b.doJSON(http.MethodDelete, "/api/storyboards/"+url.PathEscape(storyboardID), nil, nil, nil)
}

func (b *RemoteBackend) GenerateStoryboard(episodeID string) (*models.TaskHandle, error) {
	var handle models.TaskHandle
	path := "/api/episodes/" + url.PathEscape(episodeID) + "/storyboards/generate"
	if err := b.doJSON(http.MethodPost, path, nil, nil, &handle); err != nil {
		return nil, err
	}
	return &handle, nil
}

func (b *RemoteBackend) ListScenes(dramaID string) ([]models.Scene, error) {
	var scenes []models.Scene
	if err := b.doJSON(http.MethodGet, "/api/dramas/"+url.PathEscape(dramaID)+"/scenes", nil, nil, &scenes); err != nil {
		return nil, err
	}
	return scenes, nil
}

func (b *RemoteBackend) CreateScene(dramaID string, scene models.Scene) (*models.Scene, error) {
	var created models.Scene
	if err := b.doJSON(http.MethodPost, "/api/dramas/"+url.PathEscape(dramaID)+"/scenes", nil, scene, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (b *RemoteBackend) UpdateScene(sceneID string, req *services.UpdateSceneRequest) (*models.Scene, error) {
	var updated models.Scene
	if err := b.doJSON(http.MethodPut, "/api/scenes/"+url.PathEscape(sceneID), nil, req, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (b *RemoteBackend) DeleteScene(sceneID string) error {
	return b.doJSON(http.MethodDelete, "/api/scenes/"+url.PathEscape(sceneID), nil, nil, nil)
}

func (b *RemoteBackend) ExtractBackgrounds(episodeID string) (*models.TaskHandle, error) {
	var handle models.TaskHandle
	path := "/api/episodes/" + url.PathEscape(episodeID) + "/backgrounds/extract"
	if err := b.doJSON(http.MethodPost, path, nil, nil, &handle); err != nil {
		return nil, err
	}
	return &handle, nil
}

func (b *RemoteBackend) GetBackgrounds(episodeID string) ([]models.Scene, error) {
	var scenes []models.Scene
	if err := b.doJSON(http.MethodGet, "/api/episodes/"+url.PathEscape(episodeID)+"/backgrounds", nil, nil, &scenes); err != nil {
		return nil, err
	}
	return scenes, nil
}

func (b *RemoteBackend) GenerateImage(req *services.GenerateImageRequest) (*models.ImageGeneration, error) {
	var record models.ImageGeneration
	if err := b.doJSON(http.MethodPost, "/api/images", nil, req, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (b *RemoteBackend) GenerateSceneImage(sceneID, prompt, model string) (*models.ImageGeneration, error) {
	body := map[string]interface{}{"prompt": prompt, "model": model}
	var record models.ImageGeneration
	if err := b.doJSON(http.MethodPost, "/api/scenes/"+url.PathEscape(sceneID)+"/image", nil, body, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (b *RemoteBackend) GenerateCharacterImage(characterID int, dramaID, prompt string) (*models.ImageGeneration, error) {
	body := map[string]interface{}{
		"character_id": characterID,
		"drama_id":     dramaID,
		"prompt":       prompt,
	}
	var record models.ImageGeneration
	if err := b.doJSON(http.MethodPost, "/api/characters/image", nil, body, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (b *RemoteBackend) BatchGenerateImages(episodeID string) ([]models.ImageGeneration, error) {
	var records []models.ImageGeneration
	path := "/api/episodes/" + url.PathEscape(episodeID) + "/images/batch"
	if err := b.doJSON(http.MethodPost, path, nil, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (b *RemoteBackend) GetImage(id int) (*models.ImageGeneration, error) {
	var record models.ImageGeneration
	if err := b.doJSON(http.MethodGet, "/api/images/"+strconv.Itoa(id), nil, nil, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (b *RemoteBackend) ListImages(query *services.ImageListQuery) (*storage.Page[models.ImageGeneration], error) {
	q := url.Values{}
	if query != nil {
		if query.DramaID != "" {
			q.Set("drama_id", query.DramaID)
		}
		if query.SceneID != "" {
			q.Set("scene_id", query.SceneID)
		}
		if query.StoryboardID != "" {
			q.Set("storyboard_id", query.StoryboardID)
		}
		if query.FrameType != "" {
			q.Set("frame_type", query.FrameType)
		}
		if query.Status != "" {
			q.Set("status", query.Status)
		}
		if query.Page > 0 {
			q.Set("page", strconv.Itoa(query.Page))
		}
		if query.PageSize > 0 {
			q.Set("page_size", strconv.Itoa(query.PageSize))
		}
	}
	var page storage.Page[models.ImageGeneration]
	if err := b.doJSON(http.MethodGet, "/api/images", q, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (b *RemoteBackend) DeleteImage(id int) error {
	return b.doJSON(http.MethodDelete, "/api/images/"+strconv.Itoa(id), nil, nil, nil)
}

func (b *RemoteBackend) GenerateVideo(req *services.GenerateVideoRequest) (*models.VideoGeneration, error) {
	var record models.VideoGeneration
	if err := b.doJSON(http.MethodPost, "/api/videos", nil, req, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (b *RemoteBackend) GenerateVideoFromImage(imageGenID int, dramaID, prompt string) (*models.VideoGeneration, error) {
	body := map[string]interface{}{"drama_id": dramaID, "prompt": prompt}
	var record models.VideoGeneration
	path := "/api/images/" + strconv.Itoa(imageGenID) + "/video"
	if err := b.doJSON(http.MethodPost, path, nil, body, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (b *RemoteBackend) BatchGenerateVideos(episodeID string) ([]models.VideoGeneration, error) {
	var records []models.VideoGeneration
	path := "/api/episodes/" + url.PathEscape(episodeID) + "/videos/batch"
	if err := b.doJSON(http.MethodPost, path, nil, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (b *RemoteBackend) GetVideo(id int) (*models.VideoGeneration, error) {
	var record models.VideoGeneration
	if err := b.doJSON(http.MethodGet, "/api/videos/"+strconv.Itoa(id), nil, nil, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (b *RemoteBackend) ListVideos(query *services.VideoListQuery) (*storage.Page[models.VideoGeneration], error) {
	q := url.Values{}
	if query != nil {
		if query.DramaID != "" {
			q.Set("drama_id", query.DramaID)
		}
		if query.StoryboardID != "" {
			q.Set("storyboard_id", query.StoryboardID)
		}
		if query.Status != "" {
			q.Set("status", query.Status)
		}
		if query.Page > 0 {
			q.Set("page", strconv.Itoa(query.Page))
		}
		if query.PageSize > 0 {
			q.Set("page_size", strconv.Itoa(query.PageSize))
		}
	}
	var page storage.Page[models.VideoGeneration]
	if err := b.doJSON(http.MethodGet, "/api/videos", q, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (b *RemoteBackend) DeleteVideo(id int) error {
	return b.doJSON(http.MethodDelete, "/api/videos/"+strconv.Itoa(id), nil, nil, nil)
}

func (b *RemoteBackend) GetTask(taskID string) (*models.Task, error) {
	var task models.Task
	if err := b.doJSON(http.MethodGet, "/api/tasks/"+url.PathEscape(taskID), nil, nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}
