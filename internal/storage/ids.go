// internal/storage/ids.go
package storage

import (
	"fmt"
	"math/rand"
	"strconv"
	"time"
)

// GenerateID 生成字符串 ID：前缀 + base36 毫秒时间戳 + 随机后缀
func GenerateID(prefix string) string {
	timestamp := strconv.FormatInt(time.Now().UnixMilli(), 36)
	suffix := randomBase36(6)
	if prefix == "" {
		return timestamp + suffix
	}
	return prefix + "_" + timestamp + suffix
}

func randomBase36(n int) string {
	const chars = "0123456789abcdefghijklmnopqrstuvwxyz"
	b := make([]byte, n)
	for i := range b {
		b[i] = chars[rand.Intn(len(chars))]
	}
	return string(b)
}

// IDGenerator 基于持久化计数器分配自增数字 ID
type IDGenerator struct {
	store Store
}

// NewIDGenerator 创建数字 ID 生成器
func NewIDGenerator(store Store) *IDGenerator {
	return &IDGenerator{store: store}
}

// Next 返回指定计数器的下一个数字 ID，计数器与数据一同持久化
func (g *IDGenerator) Next(counterKey string) (int, error) {
	counters := make(map[string]int)
	if _, err := g.store.Get(KeyIDCounters, &counters); err != nil {
		return 0, fmt.Errorf("读取ID计数器失败: %w", err)
	}

	next := counters[counterKey] + 1
	counters[counterKey] = next

	if err := g.store.Set(KeyIDCounters, counters); err != nil {
		return 0, fmt.Errorf("保存ID计数器失败: %w", err)
	}
	return next, nil
}
