package repository

import (
	"context"
	"errors"

	"cropdoc/entities"
)

var ErrNotFound = errors.New("diagnosis record not found")

type DiagnosisRepository interface {
	Create(ctx context.Context, rec *entities.DiagnosisRecord) error
	// ListByUser returns the newest records first.
	ListByUser(ctx context.Context, userID string, limit int) ([]entities.DiagnosisRecord, error)
	// Delete removes a record owned by userID; ErrNotFound otherwise.
	Delete(ctx context.Context, userID, id string) error
}
