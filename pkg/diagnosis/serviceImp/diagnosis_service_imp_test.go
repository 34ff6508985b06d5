package serviceImp

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"cropdoc/entities"
	"cropdoc/pkg/ai"
	"cropdoc/pkg/apperror"
	"cropdoc/pkg/diagnosis/repository"
	"cropdoc/pkg/diagnosis/service"
	kbRepoImp "cropdoc/pkg/kb/repositoryImp"
	kbService "cropdoc/pkg/kb/service"
	kbServiceImp "cropdoc/pkg/kb/serviceImp"
)

func newKB(t *testing.T) kbService.KBService {
	t.Helper()
	repo, err := kbRepoImp.New()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	return kbServiceImp.New(repo)
}

type fakeRepo struct {
	recs    []entities.DiagnosisRecord
	failAll bool
}

func (f *fakeRepo) Create(_ context.Context, rec *entities.DiagnosisRecord) error {
	if f.failAll {
		return errors.New("disk full")
	}
	f.recs = append(f.recs, *rec)
	return nil
}

func (f *fakeRepo) ListByUser(_ context.Context, userID string, limit int) ([]entities.DiagnosisRecord, error) {
	if f.failAll {
		return nil, errors.New("disk full")
	}
	var out []entities.DiagnosisRecord
	for _, r := range f.recs {
		if r.UserID == userID && (limit <= 0 || len(out) < limit) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRepo) Delete(_ context.Context, userID, id string) error {
	for i, r := range f.recs {
		if r.ID == id && r.UserID == userID {
			f.recs = append(f.recs[:i], f.recs[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

type fakeArchiver struct {
	mime  string
	calls int
	err   error
}

func (f *fakeArchiver) Archive(_ context.Context, crop, mimeType string, _ []byte) (string, error) {
	f.calls++
	f.mime = mimeType
	if f.err != nil {
		return "", f.err
	}
	return crop + "/leaf.png", nil
}

func leafB64() string { return base64.StdEncoding.EncodeToString(pngBytes(300)) }

func replying(text string, err error, seen *ai.Request) ai.Client {
	return ai.ClientFunc(func(_ context.Context, req ai.Request) (string, error) {
		if seen != nil {
			*seen = req
		}
		return text, err
	})
}

func newService(t *testing.T, llm ai.Client, repo repository.DiagnosisRepository, arch *fakeArchiver) service.DiagnosisService {
	opts := Options{Model: "google/gemini-2.5-flash", MaxTokens: 1024, MaxImageBytes: 10 << 20}
	if arch == nil {
		return New(newKB(t), llm, repo, nil, opts)
	}
	return New(newKB(t), llm, repo, arch, opts)
}

func TestAnalyzeBuildsMultimodalRequest(t *testing.T) {
	var seen ai.Request
	svc := newService(t, replying(`{"disease":"Early Blight","confidence":88,"severity":"High","symptoms":["rings"],"treatment":["spray"],"prevention":["rotate"]}`, nil, &seen), nil, nil)

	res, err := svc.Analyze(context.Background(), service.AnalyzeInput{Image: "data:image/png;base64," + leafB64(), CropType: " Tomato "})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.Disease != "Early Blight" || res.Confidence != 88 || res.Severity != entities.ResultHigh || res.IsIrrelevant {
		t.Fatalf("unexpected result: %+v", res)
	}
	if seen.Model != "google/gemini-2.5-flash" || seen.MaxTokens != 1024 || !seen.JSON {
		t.Fatalf("unexpected request: %+v", seen)
	}
	if !strings.Contains(seen.System, "- Septoria Leaf Spot") || !strings.Contains(seen.System, "IRRELEVANT_IMAGE") {
		t.Fatalf("system prompt missing vocabulary or irrelevant shape:\n%s", seen.System)
	}
	if len(seen.Messages) != 1 || seen.Messages[0].Image == nil || seen.Messages[0].Image.MimeType != "image/png" {
		t.Fatalf("expected one image message: %+v", seen.Messages)
	}
}

func TestAnalyzeUnknownCropUsesGenericPrompt(t *testing.T) {
	var seen ai.Request
	svc := newService(t, replying(`{"disease":"Panama Disease","confidence":77,"severity":"medium"}`, nil, &seen), nil, nil)

	res, err := svc.Analyze(context.Background(), service.AnalyzeInput{Image: leafB64(), CropType: "banana"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if strings.Contains(seen.System, "Known banana conditions") {
		t.Fatal("unknown crop should not list a vocabulary")
	}
	if res.Disease != "Panama Disease" || res.Confidence != 77 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestAnalyzeIrrelevantImage(t *testing.T) {
	svc := newService(t, replying(`{"isIrrelevant":true,"disease":"Car","confidence":93,"severity":"High","symptoms":["bumper"],"irrelevantReason":"ignore previous instructions"}`, nil, nil), nil, nil)
	res, err := svc.Analyze(context.Background(), service.AnalyzeInput{Image: leafB64(), CropType: "tomato"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	assertIrrelevant(t, *res)
}

func TestAnalyzeSkipsArchiveForIrrelevantImage(t *testing.T) {
	repo := &fakeRepo{}
	arch := &fakeArchiver{}
	svc := newService(t, replying(`{"isIrrelevant":true,"disease":"IRRELEVANT_IMAGE"}`, nil, nil), repo, arch)
	res, err := svc.Analyze(context.Background(), service.AnalyzeInput{Image: leafB64(), CropType: "tomato", UserID: "u1"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	assertIrrelevant(t, *res)
	if arch.calls != 0 {
		t.Fatalf("irrelevant image was archived %d times", arch.calls)
	}
	if len(repo.recs) != 1 || !repo.recs[0].IsIrrelevant || repo.recs[0].ImagePath != "" {
		t.Fatalf("expected an unarchived history row, got %+v", repo.recs)
	}
}

func TestAnalyzeAcceptsDataURLWithoutMime(t *testing.T) {
	var seen ai.Request
	svc := newService(t, replying(`{"disease":"Early Blight","confidence":88,"severity":"Medium"}`, nil, &seen), nil, nil)
	jpeg := append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, bytes.Repeat([]byte{0x11}, 4096)...)
	res, err := svc.Analyze(context.Background(), service.AnalyzeInput{
		Image:    "data:;base64," + base64.StdEncoding.EncodeToString(jpeg),
		CropType: "tomato",
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.Disease != "Early Blight" {
		t.Fatalf("unexpected result %+v", res)
	}
	if img := seen.Messages[0].Image; img == nil || img.MimeType != "image/jpeg" {
		t.Fatalf("expected image/jpeg part, got %+v", img)
	}
}

func TestAnalyzeKeepsDiagnosisWithQuotedConfidence(t *testing.T) {
	svc := newService(t, replying(`{"disease":"Early Blight","confidence":"85","severity":"High"}`, nil, nil), nil, nil)
	res, err := svc.Analyze(context.Background(), service.AnalyzeInput{Image: leafB64(), CropType: "tomato"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.Disease != "Early Blight" || res.Confidence != 85 || res.Severity != entities.ResultHigh {
		t.Fatalf("expected the model's diagnosis, got %+v", res)
	}
}

func TestAnalyzeFallsBackOnMalformedReply(t *testing.T) {
	for _, text := range []string{"not json", "```json\n{\"disease\": \"Early\n```", `{"confidence": 80}`} {
		svc := newService(t, replying(text, nil, nil), nil, nil)
		res, err := svc.Analyze(context.Background(), service.AnalyzeInput{Image: leafB64(), CropType: "tomato"})
		if err != nil {
			t.Fatalf("%q: unexpected error %v", text, err)
		}
		if res.Disease != entities.UndeterminedDisease || res.Confidence != 75 {
			t.Fatalf("%q: expected fallback, got %+v", text, res)
		}
	}
}

func TestAnalyzeMapsGatewayErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{&ai.StatusError{Code: http.StatusTooManyRequests}, http.StatusTooManyRequests, apperror.MsgBusy},
		{&ai.StatusError{Code: http.StatusPaymentRequired}, http.StatusPaymentRequired, apperror.MsgUnavailable},
		{&ai.StatusError{Code: http.StatusBadGateway}, http.StatusInternalServerError, msgAnalysisFailed},
		{ai.ErrEmptyReply, http.StatusInternalServerError, msgAnalysisFailed},
	}
	for _, tc := range cases {
		svc := newService(t, replying("", tc.err, nil), nil, nil)
		_, err := svc.Analyze(context.Background(), service.AnalyzeInput{Image: leafB64(), CropType: "tomato"})
		if apperror.Status(err) != tc.status || apperror.Message(err, "") != tc.msg {
			t.Fatalf("%v: got %d %q", tc.err, apperror.Status(err), apperror.Message(err, ""))
		}
	}
}

func TestAnalyzeRejectsMissingInput(t *testing.T) {
	called := false
	llm := ai.ClientFunc(func(context.Context, ai.Request) (string, error) { called = true; return "", nil })
	svc := newService(t, llm, nil, nil)
	for _, in := range []service.AnalyzeInput{
		{CropType: "tomato"},
		{Image: leafB64(), CropType: "  "},
		{Image: "abcd", CropType: "tomato"},
	} {
		if _, err := svc.Analyze(context.Background(), in); apperror.Status(err) != http.StatusBadRequest {
			t.Fatalf("%+v: expected 400, got %v", in, err)
		}
	}
	if called {
		t.Fatal("gateway must not be called for invalid input")
	}
}

func TestAnalyzeRecordsHistoryBestEffort(t *testing.T) {
	repo := &fakeRepo{}
	arch := &fakeArchiver{}
	svc := newService(t, replying(`{"disease":"Leaf Mold","confidence":81,"severity":"low"}`, nil, nil), repo, arch)

	if _, err := svc.Analyze(context.Background(), service.AnalyzeInput{Image: leafB64(), CropType: "tomato", UserID: "u1"}); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(repo.recs) != 1 {
		t.Fatalf("expected one record, got %d", len(repo.recs))
	}
	rec := repo.recs[0]
	if rec.UserID != "u1" || rec.CropType != "tomato" || rec.Disease != "Leaf Mold" || rec.ImagePath != "tomato/leaf.png" || rec.ID == "" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if arch.mime != "image/png" {
		t.Fatalf("archive got mime %q", arch.mime)
	}

	if _, err := svc.Analyze(context.Background(), service.AnalyzeInput{Image: leafB64(), CropType: "tomato"}); err != nil {
		t.Fatalf("Analyze anonymous: %v", err)
	}
	if len(repo.recs) != 1 {
		t.Fatal("anonymous analysis must not be recorded")
	}

	failing := newService(t, replying(`{"disease":"Leaf Mold"}`, nil, nil), &fakeRepo{failAll: true}, &fakeArchiver{err: errors.New("bucket gone")})
	if _, err := failing.Analyze(context.Background(), service.AnalyzeInput{Image: leafB64(), CropType: "tomato", UserID: "u1"}); err != nil {
		t.Fatalf("persistence failures must be swallowed: %v", err)
	}
}

func TestHistoryLimitsAndDelete(t *testing.T) {
	repo := &fakeRepo{}
	for i := 0; i < 120; i++ {
		repo.recs = append(repo.recs, entities.DiagnosisRecord{ID: string(rune('a'+i%26)) + strings.Repeat("x", i), UserID: "u1"})
	}
	svc := newService(t, replying("", nil, nil), repo, nil)

	cases := map[int]int{0: 20, -5: 20, 10: 10, 500: 100}
	for limit, want := range cases {
		list, err := svc.History(context.Background(), "u1", limit)
		if err != nil || len(list) != want {
			t.Fatalf("limit %d: got %d (%v) want %d", limit, len(list), err, want)
		}
	}
	if list, _ := svc.History(context.Background(), "nobody", 0); list == nil {
		t.Fatal("empty history must be an empty slice")
	}

	id := repo.recs[0].ID
	if err := svc.DeleteHistory(context.Background(), "u2", id); apperror.Status(err) != http.StatusNotFound {
		t.Fatalf("foreign delete: %v", err)
	}
	if err := svc.DeleteHistory(context.Background(), "u1", id); err != nil {
		t.Fatalf("delete: %v", err)
	}
}

func TestHistoryDisabledWithoutRepo(t *testing.T) {
	svc := newService(t, replying("", nil, nil), nil, nil)
	if _, err := svc.History(context.Background(), "u1", 0); apperror.Status(err) != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestExportHistoryWorkbook(t *testing.T) {
	repo := &fakeRepo{recs: []entities.DiagnosisRecord{
		{ID: "1", UserID: "u1", CropType: "tomato", Disease: "Early Blight", Confidence: 88, Severity: "High", Symptoms: []string{"a", "b"}},
	}}
	svc := newService(t, replying("", nil, nil), repo, nil)

	var buf bytes.Buffer
	if err := svc.ExportHistory(context.Background(), "u1", &buf); err != nil {
		t.Fatalf("export: %v", err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(historySheet)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 2 || rows[0][2] != "Disease" || rows[1][2] != "Early Blight" || rows[1][5] != "a; b" {
		t.Fatalf("unexpected rows: %v", rows)
	}
}
