// internal/services/drama_service_test.go
package services

import (
	"testing"

	apperrors "github.com/Corphon/DramaForgeMCP/internal/errors"
	"github.com/Corphon/DramaForgeMCP/internal/models"
	"github.com/Corphon/DramaForgeMCP/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDramaService(t *testing.T) *DramaService {
	t.Helper()
	return NewDramaService(storage.NewMemoryStore())
}

func createDrama(t *testing.T, s *DramaService) *models.Drama {
	t.Helper()
	drama, err := s.Create(&CreateDramaRequest{Title: "重生之机修大师"})
	require.NoError(t, err)
	return drama
}

func TestDramaCreateDefaults(t *testing.T) {
	s := newTestDramaService(t)

	drama, err := s.Create(&CreateDramaRequest{
		Title: "都市逆袭",
		Genre: "都市",
		Tags:  "逆袭, 爽文 ,",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, drama.ID)
	assert.Equal(t, models.DramaStatusDraft, drama.Status)
	assert.Equal(t, []string{"逆袭", "爽文"}, drama.Tags)
	assert.NotNil(t, drama.Characters)
	assert.NotNil(t, drama.Episodes)
	assert.NotNil(t, drama.Scenes)
}

func TestDramaGetSortsAndRecomputes(t *testing.T) {
	s := newTestDramaService(t)
	drama := createDrama(t, s)

	_, err := s.SaveEpisodes(drama.ID, []models.Episode{
		{Title: "第二集", EpisodeNumber: 2},
		{Title: "第一集", EpisodeNumber: 1},
	})
	require.NoError(t, err)

	_, err = s.SaveCharacters(drama.ID, []models.Character{{Name: "林晚"}})
	require.NoError(t, err)

	got, err := s.Get(drama.ID)
	require.NoError(t, err)

	// 集数按集号排序，统计字段读取时重算
	assert.Equal(t, "第一集", got.Episodes[0].Title)
	assert.Equal(t, "第二集", got.Episodes[1].Title)
	assert.Equal(t, 2, got.TotalEpisodes)

	// 集数副本被剧级权威角色列表覆盖
	require.Len(t, got.Episodes[0].Characters, 1)
	assert.Equal(t, "林晚", got.Episodes[0].Characters[0].Name)
}

func TestDramaGetMissing(t *testing.T) {
	s := newTestDramaService(t)
	_, err := s.Get("drama_missing")
	assert.True(t, apperrors.IsNotFoundError(err))
}

func TestDramaListFilters(t *testing.T) {
	s := newTestDramaService(t)

	d1, err := s.Create(&CreateDramaRequest{Title: "雨夜谜案", Genre: "悬疑"})
	require.NoError(t, err)
	_, err = s.Create(&CreateDramaRequest{Title: "甜蜜办公室", Genre: "恋爱"})
	require.NoError(t, err)

	page, err := s.List(&DramaListQuery{Genre: "悬疑"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, d1.ID, page.Items[0].ID)

	// 关键词匹配标题，大小写不敏感
	page, err = s.List(&DramaListQuery{Keyword: "办公室"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "甜蜜办公室", page.Items[0].Title)

	page, err = s.List(&DramaListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Pagination.Total)
}

func TestDramaStats(t *testing.T) {
	s := newTestDramaService(t)
	createDrama(t, s)
	d2 := createDrama(t, s)

	_, err := s.Update(d2.ID, func(d *models.Drama) {
		d.Status = models.DramaStatusCompleted
	})
	require.NoError(t, err)

	stats, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	require.Len(t, stats.ByStatus, 2)
	assert.Equal(t, models.DramaStatusDraft, stats.ByStatus[0].Status)
	assert.Equal(t, 1, stats.ByStatus[0].Count)
}

func TestSaveProgressWritesMetadata(t *testing.T) {
	s := newTestDramaService(t)
	drama := createDrama(t, s)

	err := s.SaveProgress(drama.ID, "outline", map[string]interface{}{"draft": true})
	require.NoError(t, err)

	got, err := s.Get(drama.ID)
	require.NoError(t, err)
	assert.Equal(t, "outline", got.Metadata["current_step"])
	assert.NotNil(t, got.Metadata["step_data"])
}

func TestSaveCharactersAssignsIDsAndSyncsReplicas(t *testing.T) {
	s := newTestDramaService(t)
	drama := createDrama(t, s)

	_, err := s.SaveEpisodes(drama.ID, []models.Episode{{Title: "第一集"}})
	require.NoError(t, err)

	saved, err := s.SaveCharacters(drama.ID, []models.Character{
		{Name: "陈默"},
		{Name: "苏青", ID: 99},
	})
	require.NoError(t, err)

	// 无 ID 的角色分配数字 ID，已有 ID 保留
	assert.Equal(t, 1, saved[0].ID)
	assert.Equal(t, 99, saved[1].ID)
	assert.Equal(t, drama.ID, saved[0].DramaID)
	assert.Equal(t, 0, saved[0].SortOrder)
	assert.Equal(t, 1, saved[1].SortOrder)

	got, err := s.Get(drama.ID)
	require.NoError(t, err)
	require.Len(t, got.Episodes[0].Characters, 2)
}

func TestMergeCharactersSkipsExistingByName(t *testing.T) {
	s := newTestDramaService(t)
	drama := createDrama(t, s)

	existing, err := s.SaveCharacters(drama.ID, []models.Character{{Name: "陈默"}})
	require.NoError(t, err)

	merged, err := s.MergeCharacters(drama.ID, []models.Character{
		{Name: "陈默", Description: "新描述不应覆盖"},
		{Name: "新角色"},
	})
	require.NoError(t, err)
	require.Len(t, merged, 2)

	// 同名保留原条目
	assert.Equal(t, existing[0].ID, merged[0].ID)
	assert.Empty(t, merged[0].Description)
	assert.NotZero(t, merged[1].ID)

	chars, err := s.GetCharacters(drama.ID)
	require.NoError(t, err)
	assert.Len(t, chars, 2)
}

func TestGenerateEpisodesTemplates(t *testing.T) {
	s := newTestDramaService(t)
	drama := createDrama(t, s)

	episodes, err := s.GenerateEpisodes(drama.ID, 3)
	require.NoError(t, err)
	require.Len(t, episodes, 3)
	assert.Equal(t, "第1集", episodes[0].Title)
	assert.Equal(t, 2, episodes[1].EpisodeNumber)
	assert.Equal(t, models.DramaStatusDraft, episodes[0].Status)

	_, err = s.GenerateEpisodes(drama.ID, 0)
	assert.True(t, apperrors.IsValidationError(err))
}

func TestFinalizeEpisode(t *testing.T) {
	s := newTestDramaService(t)
	drama := createDrama(t, s)

	episodes, err := s.SaveEpisodes(drama.ID, []models.Episode{{Title: "第一集"}})
	require.NoError(t, err)

	require.NoError(t, s.FinalizeEpisode(episodes[0].ID))

	got, err := s.Get(drama.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DramaStatusCompleted, got.Episodes[0].Status)
	assert.Equal(t, models.DramaStatusCompleted, got.Episodes[0].TimelineStatus)

	err = s.FinalizeEpisode("ep_missing")
	assert.True(t, apperrors.IsNotFoundError(err))
}

func TestCreateStoryboardNumbersAndCounts(t *testing.T) {
	s := newTestDramaService(t)
	drama := createDrama(t, s)
	episodes, err := s.SaveEpisodes(drama.ID, []models.Episode{{Title: "第一集"}})
	require.NoError(t, err)
	episodeID := episodes[0].ID

	sb1, err := s.CreateStoryboard(episodeID, models.Storyboard{Title: "开场"})
	require.NoError(t, err)
	assert.Equal(t, 1, sb1.StoryboardNumber)
	assert.Equal(t, 5, sb1.Duration)

	sb2, err := s.CreateStoryboard(episodeID, models.Storyboard{Title: "冲突"})
	require.NoError(t, err)
	assert.Equal(t, 2, sb2.StoryboardNumber)

	got, err := s.Get(drama.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Episodes[0].StoryboardCount)
}

func TestUpdateStoryboardRegeneratesVideoPrompt(t *testing.T) {
	s := newTestDramaService(t)
	drama := createDrama(t, s)
	episodes, err := s.SaveEpisodes(drama.ID, []models.Episode{{Title: "第一集"}})
	require.NoError(t, err)

	sb, err := s.CreateStoryboard(episodes[0].ID, models.Storyboard{
		Action:      "她推开门",
		ImagePrompt: "原有帧图提示词",
	})
	require.NoError(t, err)

	updated, err := s.UpdateStoryboard(sb.ID, func(b *models.Storyboard) {
		b.Action = "她缓缓关上门"
	})
	require.NoError(t, err)
	assert.Contains(t, updated.VideoPrompt, "她缓缓关上门")
	// image_prompt 不自动重生成
	assert.Equal(t, "原有帧图提示词", updated.ImagePrompt)
}

func TestDeleteStoryboardMaintainsCount(t *testing.T) {
	s := newTestDramaService(t)
	drama := createDrama(t, s)
	episodes, err := s.SaveEpisodes(drama.ID, []models.Episode{{Title: "第一集"}})
	require.NoError(t, err)

	sb, err := s.CreateStoryboard(episodes[0].ID, models.Storyboard{})
	require.NoError(t, err)
	_, err = s.CreateStoryboard(episodes[0].ID, models.Storyboard{})
	require.NoError(t, err)

	require.NoError(t, s.DeleteStoryboard(sb.ID))

	got, err := s.Get(drama.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Episodes[0].StoryboardCount)
	assert.Len(t, got.Episodes[0].Storyboards, 1)

	err = s.DeleteStoryboard(sb.ID)
	assert.True(t, apperrors.IsNotFoundError(err))
}

func TestGetStoryboardsResolvesRefs(t *testing.T) {
	s := newTestDramaService(t)
	drama := createDrama(t, s)
	episodes, err := s.SaveEpisodes(drama.ID, []models.Episode{{Title: "第一集"}})
	require.NoError(t, err)
	episodeID := episodes[0].ID

	scene, err := s.CreateScene(drama.ID, models.Scene{Location: "维修店", Time: "白天"})
	require.NoError(t, err)
	chars, err := s.SaveCharacters(drama.ID, []models.Character{{Name: "陈默"}})
	require.NoError(t, err)

	_, err = s.CreateStoryboard(episodeID, models.Storyboard{
		StoryboardNumber: 2,
		SceneID:          scene.ID,
		Characters:       []int{chars[0].ID, 9999},
	})
	require.NoError(t, err)
	_, err = s.CreateStoryboard(episodeID, models.Storyboard{
		StoryboardNumber: 1,
		SceneID:          "scene_dangling",
	})
	require.NoError(t, err)

	views, err := s.GetStoryboards(episodeID)
	require.NoError(t, err)
	require.Len(t, views, 2)

	// 按镜头号排序，悬空引用直接跳过
	assert.Equal(t, 1, views[0].StoryboardNumber)
	assert.Nil(t, views[0].Background)

	require.NotNil(t, views[1].Background)
	assert.Equal(t, "维修店", views[1].Background.Location)
	require.Len(t, views[1].CharacterRefs, 1)
	assert.Equal(t, "陈默", views[1].CharacterRefs[0].Name)
}

func TestReplaceEpisodeScenes(t *testing.T) {
	s := newTestDramaService(t)
	drama := createDrama(t, s)
	episodes, err := s.SaveEpisodes(drama.ID, []models.Episode{{Title: "第一集"}, {Title: "第二集"}})
	require.NoError(t, err)

	// 第二集已有场景，替换第一集时不受影响
	_, err = s.ReplaceEpisodeScenes(episodes[1].ID, []models.Scene{{Location: "天台"}})
	require.NoError(t, err)

	scenes, err := s.ReplaceEpisodeScenes(episodes[0].ID, []models.Scene{
		{Location: "维修店"},
		{Location: "街道"},
	})
	require.NoError(t, err)
	require.Len(t, scenes, 2)
	assert.Equal(t, models.SceneStatusPending, scenes[0].Status)
	assert.Equal(t, episodes[0].ID, scenes[0].EpisodeID)

	got, err := s.Get(drama.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.TotalScenes)
	assert.Len(t, got.Episodes[0].Scenes, 2)
	assert.Len(t, got.Episodes[1].Scenes, 1)

	// 再次替换时旧场景被移除
	_, err = s.ReplaceEpisodeScenes(episodes[0].ID, []models.Scene{{Location: "新场景"}})
	require.NoError(t, err)
	got, err = s.Get(drama.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.TotalScenes)
}

func TestUpdateSceneSyncsReplicas(t *testing.T) {
	s := newTestDramaService(t)
	drama := createDrama(t, s)
	episodes, err := s.SaveEpisodes(drama.ID, []models.Episode{{Title: "第一集"}})
	require.NoError(t, err)

	scenes, err := s.ReplaceEpisodeScenes(episodes[0].ID, []models.Scene{{Location: "维修店"}})
	require.NoError(t, err)

	_, err = s.UpdateScene(scenes[0].ID, func(sc *models.Scene) {
		sc.Location = "维修店二楼"
	})
	require.NoError(t, err)

	got, err := s.Get(drama.ID)
	require.NoError(t, err)
	assert.Equal(t, "维修店二楼", got.Scenes[0].Location)
	assert.Equal(t, "维修店二楼", got.Episodes[0].Scenes[0].Location)
}

func TestUpdateSceneImageKeepsURLOnFailure(t *testing.T) {
	s := newTestDramaService(t)
	drama := createDrama(t, s)

	scene, err := s.CreateScene(drama.ID, models.Scene{Location: "维修店"})
	require.NoError(t, err)

	require.NoError(t, s.UpdateSceneImage(scene.ID, "https://img/1.png", models.SceneStatusGenerated))

	// 失败时传空 URL，已有图片不被清除
	require.NoError(t, s.UpdateSceneImage(scene.ID, "", models.SceneStatusFailed))

	scenes, err := s.ListScenes(drama.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://img/1.png", scenes[0].ImageURL)
	assert.Equal(t, models.SceneStatusFailed, scenes[0].Status)
}

func TestDeleteSceneLeavesDanglingRefs(t *testing.T) {
	s := newTestDramaService(t)
	drama := createDrama(t, s)
	episodes, err := s.SaveEpisodes(drama.ID, []models.Episode{{Title: "第一集"}})
	require.NoError(t, err)

	scene, err := s.CreateScene(drama.ID, models.Scene{Location: "维修店"})
	require.NoError(t, err)
	sb, err := s.CreateStoryboard(episodes[0].ID, models.Storyboard{SceneID: scene.ID})
	require.NoError(t, err)

	require.NoError(t, s.DeleteScene(scene.ID))

	views, err := s.GetStoryboards(episodes[0].ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, sb.ID, views[0].ID)
	// 弱引用悬空，解析为未找到
	assert.Nil(t, views[0].Background)
	assert.Equal(t, scene.ID, views[0].SceneID)
}

func TestUpdateCharacterImageSyncsEpisodes(t *testing.T) {
	s := newTestDramaService(t)
	drama := createDrama(t, s)
	_, err := s.SaveEpisodes(drama.ID, []models.Episode{{Title: "第一集"}})
	require.NoError(t, err)
	chars, err := s.SaveCharacters(drama.ID, []models.Character{{Name: "陈默"}})
	require.NoError(t, err)

	require.NoError(t, s.UpdateCharacterImage(chars[0].ID, "https://img/char.png"))

	// 直接读原始文档，验证集数副本也被同步
	got, found, err := s.dramas.GetByID(drama.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "https://img/char.png", got.Characters[0].ImageURL)
	assert.Equal(t, "https://img/char.png", got.Episodes[0].Characters[0].ImageURL)

	err = s.UpdateCharacterImage(424242, "https://img/none.png")
	assert.True(t, apperrors.IsNotFoundError(err))
}
