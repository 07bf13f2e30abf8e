package storage

import (
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Push logs

func (r *Repository) SavePushLog(log *PushLog) error {
	return r.db.Create(log).Error
}

func (r *Repository) GetRecentPushLogs(limit int) ([]PushLog, error) {
	var logs []PushLog
	err := r.db.Order("created_at DESC, id DESC").Limit(limit).Find(&logs).Error
	return logs, err
}

func (r *Repository) GetLastPush(groupID string) (*PushLog, error) {
	var log PushLog
	err := r.db.Where("group_id = ?", groupID).
		Order("created_at DESC, id DESC").First(&log).Error
	if err != nil {
		return nil, err
	}
	return &log, nil
}
