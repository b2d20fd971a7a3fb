// internal/services/backup_service.go
package services

import (
	"encoding/json"
	"time"

	apperrors "github.com/Corphon/DramaForgeMCP/internal/errors"
	"github.com/Corphon/DramaForgeMCP/internal/storage"
)

// Backup 全量数据备份
type Backup struct {
	Version    int                        `json:"version"`
	ExportedAt time.Time                  `json:"exported_at"`
	Data       map[string]json.RawMessage `json:"data"`
}

// BackupService 导出和导入全部集合数据
type BackupService struct {
	store storage.Store
}

// NewBackupService 创建备份服务
func NewBackupService(store storage.Store) *BackupService {
	return &BackupService{store: store}
}

// Export 导出所有集合，不存在的集合跳过
func (s *BackupService) Export() (*Backup, error) {
	backup := &Backup{
		Version:    1,
		ExportedAt: time.Now(),
		Data:       make(map[string]json.RawMessage),
	}

	for _, key := range storage.AllCollectionKeys() {
		var raw json.RawMessage
		exists, err := s.store.Get(key, &raw)
		if err != nil {
			return nil, err
		}
		if exists {
			backup.Data[key] = raw
		}
	}
	return backup, nil
}

// Import 导入备份数据，只接受已知的集合键，整集合覆盖写入
func (s *BackupService) Import(backup *Backup) error {
	if backup == nil || len(backup.Data) == 0 {
		return apperrors.NewValidationError("备份数据为空", nil)
	}

	known := make(map[string]bool)
	for _, key := range storage.AllCollectionKeys() {
		known[key] = true
	}

	for key, raw := range backup.Data {
		if !known[key] {
			continue
		}
		if err := s.store.Set(key, raw); err != nil {
			return err
		}
	}
	return nil
}
