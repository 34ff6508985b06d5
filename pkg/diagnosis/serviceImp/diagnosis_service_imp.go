package serviceImp

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"cropdoc/entities"
	"cropdoc/pkg/ai"
	"cropdoc/pkg/apperror"
	"cropdoc/pkg/diagnosis/repository"
	"cropdoc/pkg/diagnosis/service"
	"cropdoc/pkg/imagestore"
	kbService "cropdoc/pkg/kb/service"
	"cropdoc/pkg/logger"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100

	msgAnalysisFailed = "Analysis failed. Please try again."
)

type Options struct {
	Model         string
	MaxTokens     int
	MaxImageBytes int
}

type Svc struct {
	kb   kbService.KBService
	llm  ai.Client
	repo repository.DiagnosisRepository
	arch imagestore.Archiver
	opts Options
}

// New builds the diagnosis service. repo and arch may be nil, which turns
// history recording and image archiving off.
func New(kb kbService.KBService, llm ai.Client, repo repository.DiagnosisRepository, arch imagestore.Archiver, opts Options) service.DiagnosisService {
	return &Svc{kb: kb, llm: llm, repo: repo, arch: arch, opts: opts}
}

func (s *Svc) Analyze(ctx context.Context, in service.AnalyzeInput) (*entities.DiagnosisResult, error) {
	crop := strings.ToLower(strings.TrimSpace(in.CropType))
	if strings.TrimSpace(in.Image) == "" || crop == "" {
		return nil, apperror.InvalidInput("Image and crop type are required")
	}
	img, err := decodeImage(in.Image, s.opts.MaxImageBytes)
	if err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx).With("crop", crop)
	names := s.kb.DiseaseNames(crop)
	if names == nil {
		log.Info("[diagnosis] crop not in knowledge base, using generic prompt")
	}

	text, err := s.llm.Complete(ctx, ai.Request{
		Model:  s.opts.Model,
		System: systemPrompt(crop, names),
		Messages: []ai.Message{{
			Role:    ai.RoleUser,
			Content: userPrompt(crop),
			Image:   &ai.Image{MimeType: img.mimeType, Data: img.base64()},
		}},
		MaxTokens: s.opts.MaxTokens,
		JSON:      true,
	})
	if err != nil {
		log.Error("[diagnosis] gateway call failed", "error", err)
		return nil, ai.AsAppError(err, msgAnalysisFailed)
	}

	var res entities.DiagnosisResult
	if reply, ok := parseReply(text); ok {
		res = normalize(s.kb, crop, reply)
	} else {
		log.Warn("[diagnosis] unparseable gateway reply, using fallback", "reply", truncate(text, 200))
		res = fallbackResult()
	}

	s.record(ctx, in.UserID, crop, img, res)
	return &res, nil
}

// record archives the image and writes history. Failures are logged only.
// Images that are not leaves are never archived.
func (s *Svc) record(ctx context.Context, userID, crop string, img leafImage, res entities.DiagnosisResult) {
	log := logger.FromContext(ctx)
	var path string
	if s.arch != nil && !res.IsIrrelevant {
		p, err := s.arch.Archive(ctx, crop, img.mimeType, img.data)
		if err != nil {
			log.Warn("[diagnosis] image archive failed", "error", err)
		} else {
			path = p
		}
	}
	if s.repo == nil || userID == "" {
		return
	}
	rec := &entities.DiagnosisRecord{
		ID:           uuid.NewString(),
		UserID:       userID,
		CropType:     crop,
		Disease:      res.Disease,
		Confidence:   res.Confidence,
		Severity:     res.Severity,
		Symptoms:     res.Symptoms,
		Treatment:    res.Treatment,
		Prevention:   res.Prevention,
		IsIrrelevant: res.IsIrrelevant,
		ImagePath:    path,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		log.Warn("[diagnosis] history write failed", "user", userID, "error", err)
	}
}

func (s *Svc) History(ctx context.Context, userID string, limit int) ([]entities.DiagnosisRecord, error) {
	if s.repo == nil {
		return nil, apperror.NotFound("Diagnosis history is not enabled")
	}
	switch {
	case limit <= 0:
		limit = defaultHistoryLimit
	case limit > maxHistoryLimit:
		limit = maxHistoryLimit
	}
	list, err := s.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, apperror.Internal("Could not load history", err)
	}
	if list == nil {
		list = []entities.DiagnosisRecord{}
	}
	return list, nil
}

func (s *Svc) DeleteHistory(ctx context.Context, userID, id string) error {
	if s.repo == nil {
		return apperror.NotFound("Diagnosis history is not enabled")
	}
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.NotFound("Diagnosis not found")
		}
		return apperror.Internal("Could not delete diagnosis", err)
	}
	return nil
}

func (s *Svc) ExportHistory(ctx context.Context, userID string, w io.Writer) error {
	if s.repo == nil {
		return apperror.NotFound("Diagnosis history is not enabled")
	}
	list, err := s.repo.ListByUser(ctx, userID, 0)
	if err != nil {
		return apperror.Internal("Could not load history", err)
	}
	if err := writeHistoryWorkbook(w, list); err != nil {
		return apperror.Internal("Could not build export", err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
