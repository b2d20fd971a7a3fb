// internal/storage/collection.go
package storage

import "fmt"

// 存储键前缀，与远端库的表命名保持一致
const keyPrefix = "drama_"

// 集合键定义
const (
	KeyDramas     = keyPrefix + "dramas"
	KeyAIConfigs  = keyPrefix + "ai_configs"
	KeyImages     = keyPrefix + "images"
	KeyVideos     = keyPrefix + "videos"
	KeyTasks      = keyPrefix + "tasks"
	KeyIDCounters = keyPrefix + "id_counters"
)

// AllCollectionKeys 返回全部集合键，用于备份导出/导入
func AllCollectionKeys() []string {
	return []string{KeyDramas, KeyAIConfigs, KeyImages, KeyVideos, KeyTasks, KeyIDCounters}
}

// Collection 提供命名集合上的通用 CRUD。
// 每个操作都读出整个集合、在内存中修改、再整体写回
type Collection[T any] struct {
	store Store
	key   string
	idOf  func(*T) string
}

// NewCollection 创建集合访问器，idOf 提取元素的标识
func NewCollection[T any](store Store, key string, idOf func(*T) string) *Collection[T] {
	return &Collection[T]{store: store, key: key, idOf: idOf}
}

// GetAll 读取集合全部元素，集合不存在时返回空切片
func (c *Collection[T]) GetAll() ([]T, error) {
	var items []T
	exists, err := c.store.Get(c.key, &items)
	if err != nil {
		return nil, fmt.Errorf("读取集合 %s 失败: %w", c.key, err)
	}
	if !exists || items == nil {
		return []T{}, nil
	}
	return items, nil
}

// SaveAll 整体写回集合
func (c *Collection[T]) SaveAll(items []T) error {
	if err := c.store.Set(c.key, items); err != nil {
		return fmt.Errorf("写入集合 %s 失败: %w", c.key, err)
	}
	return nil
}

// GetByID 按标识查找元素，未找到时第二个返回值为 false
func (c *Collection[T]) GetByID(id string) (*T, bool, error) {
	items, err := c.GetAll()
	if err != nil {
		return nil, false, err
	}
	for i := range items {
		if c.idOf(&items[i]) == id {
			item := items[i]
			return &item, true, nil
		}
	}
	return nil, false, nil
}

// Add 追加元素并写回
func (c *Collection[T]) Add(item T) (*T, error) {
	items, err := c.GetAll()
	if err != nil {
		return nil, err
	}
	items = append(items, item)
	if err := c.SaveAll(items); err != nil {
		return nil, err
	}
	return &item, nil
}

// Update 对指定元素应用修改函数并写回，未找到时返回 false
func (c *Collection[T]) Update(id string, apply func(*T)) (*T, bool, error) {
	items, err := c.GetAll()
	if err != nil {
		return nil, false, err
	}
	for i := range items {
		if c.idOf(&items[i]) == id {
			apply(&items[i])
			if err := c.SaveAll(items); err != nil {
				return nil, false, err
			}
			item := items[i]
			return &item, true, nil
		}
	}
	return nil, false, nil
}

// Delete 删除指定元素，未找到时返回 false
func (c *Collection[T]) Delete(id string) (bool, error) {
	items, err := c.GetAll()
	if err != nil {
		return false, err
	}
	for i := range items {
		if c.idOf(&items[i]) == id {
			items = append(items[:i], items[i+1:]...)
			if err := c.SaveAll(items); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

// Filter 返回满足条件的元素
func (c *Collection[T]) Filter(predicate func(*T) bool) ([]T, error) {
	items, err := c.GetAll()
	if err != nil {
		return nil, err
	}
	result := make([]T, 0, len(items))
	for i := range items {
		if predicate(&items[i]) {
			result = append(result, items[i])
		}
	}
	return result, nil
}

// Count 返回集合元素数量
func (c *Collection[T]) Count() (int, error) {
	items, err := c.GetAll()
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

// Page 分页结果
type Page[T any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// Pagination 分页元信息
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// Paginate 对切片做分页
func Paginate[T any](items []T, page, pageSize int) Page[T] {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	total := len(items)
	totalPages := (total + pageSize - 1) / pageSize

	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return Page[T]{
		Items: items[start:end],
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
		},
	}
}
