package repositoryImp

import (
	"context"

	"gorm.io/gorm"

	"cropdoc/entities"
	"cropdoc/pkg/diagnosis/repository"
)

type sqliteRepo struct{ db *gorm.DB }

func New(db *gorm.DB) repository.DiagnosisRepository { return &sqliteRepo{db: db} }

func (r *sqliteRepo) Create(ctx context.Context, rec *entities.DiagnosisRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *sqliteRepo) ListByUser(ctx context.Context, userID string, limit int) ([]entities.DiagnosisRecord, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at desc, id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var list []entities.DiagnosisRecord
	return list, q.Find(&list).Error
}

func (r *sqliteRepo) Delete(ctx context.Context, userID, id string) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&entities.DiagnosisRecord{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
