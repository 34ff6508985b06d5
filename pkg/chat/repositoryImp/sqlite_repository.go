package repositoryImp

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cropdoc/entities"
	"cropdoc/pkg/chat/repository"
)

type sqliteRepo struct{ db *gorm.DB }

func NewSQLite(db *gorm.DB) repository.ChatHistoryRepository { return &sqliteRepo{db: db} }

func (r *sqliteRepo) Load(ctx context.Context, sessionID string) ([]entities.ChatMessage, error) {
	var s entities.ChatSession
	err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.Messages, nil
}

func (r *sqliteRepo) Save(ctx context.Context, sessionID string, msgs []entities.ChatMessage) error {
	s := entities.ChatSession{SessionID: sessionID, Messages: msgs, UpdatedAt: time.Now().UTC()}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"messages", "updated_at"}),
	}).Create(&s).Error
}
