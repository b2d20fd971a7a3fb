// internal/utils/prompt.go
package utils

import (
	"strings"

	"github.com/Corphon/DramaForgeMCP/internal/models"
)

// 动作过程词：截断到第一个出现的词，只保留起始姿态。
// 顺序是固定的，调整会改变截断结果
var processWords = []string{
	"然后", "接着", "接下来", "随后", "紧接着",
	"向下", "向上", "向前", "向后", "向左", "向右",
	"开始", "继续", "逐渐", "慢慢", "快速", "突然", "猛然",
}

// ExtractInitialPose 提取初始静态姿态（去除动作过程）
func ExtractInitialPose(action string) string {
	result := action
	for _, word := range processWords {
		if idx := strings.Index(result, word); idx > 0 {
			result = result[:idx]
			break
		}
	}

	// 清理末尾标点和空白
	result = strings.TrimRight(result, "，。,. \t\n")
	return strings.TrimSpace(result)
}

// BuildImagePrompt 生成图片提示词（首帧静态画面）。
// 按固定顺序拼接存在的字段，缺失字段跳过，不输出空 token
func BuildImagePrompt(sb *models.Storyboard) string {
	var parts []string

	// 1. 场景背景描述
	if sb.Location != "" {
		locationDesc := sb.Location
		if sb.Time != "" {
			locationDesc += ", " + sb.Time
		}
		parts = append(parts, locationDesc)
	}

	// 2. 角色初始静态姿态
	if sb.Action != "" {
		if pose := ExtractInitialPose(sb.Action); pose != "" {
			parts = append(parts, pose)
		}
	}

	// 3. 情绪氛围
	if sb.Emotion != "" {
		parts = append(parts, sb.Emotion)
	}

	// 4. 风格后缀
	parts = append(parts, "anime style, first frame")

	if len(parts) > 0 {
		return strings.Join(parts, ", ")
	}
	return "anime scene"
}

// BuildVideoPrompt 生成视频提示词，包含运镜和动态元素
func BuildVideoPrompt(sb *models.Storyboard) string {
	var parts []string

	if sb.Action != "" {
		parts = append(parts, "Action: "+sb.Action)
	}
	if sb.Dialogue != "" {
		parts = append(parts, "Dialogue: "+sb.Dialogue)
	}
	if sb.Movement != "" {
		parts = append(parts, "Camera movement: "+sb.Movement)
	}
	if sb.ShotType != "" {
		parts = append(parts, "Shot type: "+sb.ShotType)
	}
	if sb.Angle != "" {
		parts = append(parts, "Camera angle: "+sb.Angle)
	}
	if sb.Location != "" {
		locationDesc := sb.Location
		if sb.Time != "" {
			locationDesc += ", " + sb.Time
		}
		parts = append(parts, "Scene: "+locationDesc)
	}
	if sb.Atmosphere != "" {
		parts = append(parts, "Atmosphere: "+sb.Atmosphere)
	}
	if sb.Emotion != "" {
		parts = append(parts, "Mood: "+sb.Emotion)
	}
	if sb.Result != "" {
		parts = append(parts, "Result: "+sb.Result)
	}
	if sb.Description != "" {
		parts = append(parts, "Description: "+sb.Description)
	}
	if sb.BGMPrompt != "" {
		parts = append(parts, "BGM: "+sb.BGMPrompt)
	}
	if sb.SoundFX != "" {
		parts = append(parts, "Sound effects: "+sb.SoundFX)
	}

	parts = append(parts, "Style: cinematic anime style, smooth camera motion, natural character movement")

	if len(parts) > 0 {
		return strings.Join(parts, ". ")
	}
	return "Anime style video scene"
}
