// internal/genai/client_test.go
package genai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"
)

func TestJoinURL(t *testing.T) {
	assert.Equal(t, "https://api.example.com/v1/videos", joinURL("https://api.example.com/v1", "/videos"))
	assert.Equal(t, "https://api.example.com/v1/videos", joinURL("https://api.example.com/v1/", "videos"))
	assert.Equal(t, "https://api.example.com/videos", joinURL("https://api.example.com", "videos"))
}

func TestResolveTaskPath(t *testing.T) {
	assert.Equal(t, "/video/task/t-1", resolveTaskPath("/video/task/{taskId}", "t-1"))
	assert.Equal(t, "/query?task_id=t-1", resolveTaskPath("/query?task_id={task_id}", "t-1"))
	assert.Equal(t, "/tasks/t-1", resolveTaskPath("/tasks", "t-1"))
}

func TestFirstString(t *testing.T) {
	data := gjson.Parse(`{"a": "", "b": "hit", "c": "later"}`)
	assert.Equal(t, "hit", firstString(data, "a", "b", "c"))
	assert.Equal(t, "", firstString(data, "x", "y"))
}

func TestFirstInt(t *testing.T) {
	data := gjson.Parse(`{"duration": 6, "data": {"duration": 9}}`)
	assert.Equal(t, 6, firstInt(data, "duration", "data.duration"))
	assert.Equal(t, 9, firstInt(data, "missing", "data.duration"))
	assert.Equal(t, 0, firstInt(data, "missing"))
}

func TestAspectRatioToSize(t *testing.T) {
	assert.Equal(t, "1280x720", aspectRatioToSize(""))
	assert.Equal(t, "1280x720", aspectRatioToSize("16:9"))
	assert.Equal(t, "720x1280", aspectRatioToSize("9:16"))
	assert.Equal(t, "1024x1024", aspectRatioToSize("1024x1024"))
}
