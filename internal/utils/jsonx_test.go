// internal/utils/jsonx_test.go
package utils

import (
	"testing"

	apperrors "github.com/Corphon/DramaForgeMCP/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONPlain(t *testing.T) {
	var out struct {
		Name string `json:"name"`
	}
	err := ExtractJSON(`{"name": "张三"}`, &out)
	require.NoError(t, err)
	assert.Equal(t, "张三", out.Name)
}

func TestExtractJSONWithCodeFence(t *testing.T) {
	text := "```json\n{\"count\": 5}\n```"

	var out struct {
		Count int `json:"count"`
	}
	err := ExtractJSON(text, &out)
	require.NoError(t, err)
	assert.Equal(t, 5, out.Count)
}

func TestExtractJSONWithSurroundingText(t *testing.T) {
	text := "好的，以下是提取结果：\n{\"characters\": [{\"name\": \"李四\"}]}\n以上就是全部内容。"

	var out struct {
		Characters []struct {
			Name string `json:"name"`
		} `json:"characters"`
	}
	err := ExtractJSON(text, &out)
	require.NoError(t, err)
	require.Len(t, out.Characters, 1)
	assert.Equal(t, "李四", out.Characters[0].Name)
}

func TestExtractJSONInvalid(t *testing.T) {
	var out map[string]interface{}
	err := ExtractJSON("这不是 JSON", &out)
	require.Error(t, err)
	assert.True(t, apperrors.IsParseError(err))
	// 原始文本附在错误信息中
	assert.Contains(t, err.Error(), "这不是 JSON")
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripCodeFence("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripCodeFence(`{"a":1}`))
	assert.Equal(t, `{"a":1}`, StripCodeFence("  {\"a\":1}  "))
}
