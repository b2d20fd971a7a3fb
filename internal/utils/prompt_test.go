// internal/utils/prompt_test.go
package utils

import (
	"strings"
	"testing"

	"github.com/Corphon/DramaForgeMCP/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestExtractInitialPose(t *testing.T) {
	tests := []struct {
		name   string
		action string
		want   string
	}{
		{
			name:   "截断到第一个过程词",
			action: "她站在窗边，然后转身走向门口",
			want:   "她站在窗边",
		},
		{
			name:   "无过程词保持原样",
			action: "他坐在椅子上",
			want:   "他坐在椅子上",
		},
		{
			name:   "过程词在开头不截断",
			action: "慢慢睁开眼睛",
			want:   "慢慢睁开眼睛",
		},
		{
			name:   "清理末尾标点",
			action: "他握紧拳头。突然挥出一拳",
			want:   "他握紧拳头",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractInitialPose(tt.action))
		})
	}
}

func TestBuildImagePrompt(t *testing.T) {
	sb := &models.Storyboard{
		Location: "维修店内部",
		Time:     "深夜",
		Action:   "他低头检查零件，然后抬起头",
		Emotion:  "专注",
	}

	prompt := BuildImagePrompt(sb)
	assert.Contains(t, prompt, "维修店内部, 深夜")
	assert.Contains(t, prompt, "他低头检查零件")
	assert.NotContains(t, prompt, "抬起头")
	assert.Contains(t, prompt, "专注")
	assert.True(t, strings.HasSuffix(prompt, "anime style, first frame"))
}

func TestBuildImagePromptEmpty(t *testing.T) {
	prompt := BuildImagePrompt(&models.Storyboard{})
	assert.Equal(t, "anime style, first frame", prompt)
}

func TestBuildVideoPrompt(t *testing.T) {
	sb := &models.Storyboard{
		Action:   "他猛地推开门",
		Dialogue: "谁在那里？",
		Movement: "跟镜",
		ShotType: "中景",
		Location: "走廊",
		Time:     "深夜",
		Emotion:  "紧张",
	}

	prompt := BuildVideoPrompt(sb)
	assert.Contains(t, prompt, "Action: 他猛地推开门")
	assert.Contains(t, prompt, "Dialogue: 谁在那里？")
	assert.Contains(t, prompt, "Camera movement: 跟镜")
	assert.Contains(t, prompt, "Shot type: 中景")
	assert.Contains(t, prompt, "Scene: 走廊, 深夜")
	assert.Contains(t, prompt, "Mood: 紧张")
	assert.True(t, strings.HasSuffix(prompt,
		"Style: cinematic anime style, smooth camera motion, natural character movement"))
}

func TestBuildVideoPromptSkipsEmptyFields(t *testing.T) {
	prompt := BuildVideoPrompt(&models.Storyboard{Action: "她回头"})
	assert.NotContains(t, prompt, "Dialogue:")
	assert.NotContains(t, prompt, "Camera movement:")
	assert.Contains(t, prompt, "Action: 她回头")
}
