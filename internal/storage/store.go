// internal/storage/store.go

// Package storage 提供基于字符串键值底座的文档存储。
//
// 一致性模型：所有集合操作都是"整集合读-改-写"，没有部分写入的
// 原子性。两个交错的修改落在同一集合上时，后写者以整集合覆盖的
// 粒度获胜。这是既定的弱一致性契约，上层必须通过内容图仓库的
// 变更原语收敛写入，而不是在这里引入事务。
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Store 是持久化键值底座的最小契约：
// 按字符串键同步读写可 JSON 序列化的值，不提供查询能力
type Store interface {
	Get(key string, v interface{}) (bool, error)
	Set(key string, v interface{}) error
	Delete(key string) error
}

// FileStore 把每个键保存为数据目录下的一个 JSON 文件
type FileStore struct {
	BaseDir string

	// 键级别锁，只保护单个文件的物理写入
	keyLocks sync.Map // key -> *sync.RWMutex
}

// NewFileStore 创建文件键值存储
func NewFileStore(baseDir string) (*FileStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("创建存储目录失败: %w", err)
	}
	return &FileStore{BaseDir: baseDir}, nil
}

func (fs *FileStore) getKeyLock(key string) *sync.RWMutex {
	value, _ := fs.keyLocks.LoadOrStore(key, &sync.RWMutex{})
	return value.(*sync.RWMutex)
}

func (fs *FileStore) pathFor(key string) string {
	// 键只允许出现在文件名中，防止路径逃逸
	safe := strings.ReplaceAll(key, string(filepath.Separator), "_")
	return filepath.Join(fs.BaseDir, safe+".json")
}

// Get 读取键对应的值，键不存在时返回 false
func (fs *FileStore) Get(key string, v interface{}) (bool, error) {
	lock := fs.getKeyLock(key)
	lock.RLock()
	defer lock.RUnlock()

	content, err := os.ReadFile(fs.pathFor(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("读取文件失败: %w", err)
	}

	if err := json.Unmarshal(content, v); err != nil {
		return false, fmt.Errorf("解析JSON失败: %w", err)
	}
	return true, nil
}

// Set 写入键对应的值
func (fs *FileStore) Set(key string, v interface{}) error {
	content, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化JSON失败: %w", err)
	}

	lock := fs.getKeyLock(key)
	lock.Lock()
	defer lock.Unlock()

	fullPath := fs.pathFor(key)

	// 原子性文件写入
	tempPath := fullPath + ".tmp"
	if err := os.WriteFile(tempPath, content, 0644); err != nil {
		return fmt.Errorf("保存临时文件失败: %w", err)
	}

	if err := os.Rename(tempPath, fullPath); err != nil {
		if removeErr := os.Remove(tempPath); removeErr != nil {
			fmt.Printf("Warning: failed to clean up temporary file %s after rename failure: %v\n", tempPath, removeErr)
		}
		return fmt.Errorf("保存文件失败: %w", err)
	}

	return nil
}

// Delete 删除键，键不存在时静默成功
func (fs *FileStore) Delete(key string) error {
	lock := fs.getKeyLock(key)
	lock.Lock()
	defer lock.Unlock()

	if err := os.Remove(fs.pathFor(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("删除文件失败: %w", err)
	}
	return nil
}

// MemoryStore 是内存键值底座，主要用于测试
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore 创建内存键值存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (ms *MemoryStore) Get(key string, v interface{}) (bool, error) {
	ms.mu.RLock()
	content, exists := ms.data[key]
	ms.mu.RUnlock()

	if !exists {
		return false, nil
	}
	if err := json.Unmarshal(content, v); err != nil {
		return false, fmt.Errorf("解析JSON失败: %w", err)
	}
	return true, nil
}

func (ms *MemoryStore) Set(key string, v interface{}) error {
	content, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("序列化JSON失败: %w", err)
	}

	ms.mu.Lock()
	ms.data[key] = content
	ms.mu.Unlock()
	return nil
}

func (ms *MemoryStore) Delete(key string) error {
	ms.mu.Lock()
	delete(ms.data, key)
	ms.mu.Unlock()
	return nil
}
