package service

import (
	"context"
	"io"

	"cropdoc/entities"
)

type AnalyzeInput struct {
	// Image is base64, optionally carrying a data-URL prefix.
	Image    string
	CropType string
	// UserID enables history recording when non-empty.
	UserID string
}

type DiagnosisService interface {
	Analyze(ctx context.Context, in AnalyzeInput) (*entities.DiagnosisResult, error)
	History(ctx context.Context, userID string, limit int) ([]entities.DiagnosisRecord, error)
	DeleteHistory(ctx context.Context, userID, id string) error
	// ExportHistory writes the user's history as an xlsx workbook.
	ExportHistory(ctx context.Context, userID string, w io.Writer) error
}
