package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-analyzer/internal/adapter/dto/common"
	"github.com/johnquangdev/meeting-analyzer/internal/adapter/repository"
	"github.com/johnquangdev/meeting-analyzer/internal/domain/entities"
	"github.com/johnquangdev/meeting-analyzer/internal/infrastructure/cache"
	"github.com/johnquangdev/meeting-analyzer/internal/infrastructure/database"
	httpmw "github.com/johnquangdev/meeting-analyzer/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/meeting-analyzer/internal/usecase/analysis"
	"github.com/johnquangdev/meeting-analyzer/pkg/ai"
	"github.com/johnquangdev/meeting-analyzer/pkg/config"
	"github.com/johnquangdev/meeting-analyzer/pkg/jwt"
	"github.com/johnquangdev/meeting-analyzer/pkg/retry"
	pkgvalidator "github.com/johnquangdev/meeting-analyzer/pkg/validator"
)

const modelAnswer = `{"productivity_score": 8, "summary": "Feature X ships Friday.",` +
	`"decisions": [{"decision": "Ship feature X by Friday", "responsible": "Alice"}],` +
	`"action_items": [{"task": "Deploy feature X", "responsible": "Alice", "priority": "urgent"}]}`

type testServer struct {
	e       *echo.Echo
	db      *gorm.DB
	token   string
	meeting *entities.Meeting
	calls   *int32
}

func newTestServer(t *testing.T, status int) *testServer {
	t.Helper()

	var calls int32
	llm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if status != http.StatusOK {
			w.WriteHeader(status)
			w.Write([]byte(`{"error":{"message":"scripted"}}`))
			return
		}
		content, _ := json.Marshal(modelAnswer)
		fmt.Fprintf(w, `{"choices":[{"message":{"content":%s}}]}`, content)
	}))
	t.Cleanup(llm.Close)

	db, err := database.NewSQLiteDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.CloseDB(db) })

	meetings := repository.NewMeetingRepository(db)
	meeting := &entities.Meeting{
		Title:        "M1",
		OrganizerID:  uuid.New(),
		Participants: []entities.Participant{{Name: "Alice"}},
	}
	require.NoError(t, meetings.Create(context.Background(), meeting))

	store := cache.NewMemoryStore(time.Minute)
	t.Cleanup(store.Close)

	policy := retry.Policy{MaxAttempts: 2, BaseInterval: time.Millisecond, MaxInterval: time.Millisecond}
	chat := ai.NewChatClient(ai.ChatConfig{BaseURL: llm.URL, APIKey: "k", Model: "test-model", Timeout: time.Second})
	svc := analysis.NewService(analysis.Dependencies{
		Meetings:    meetings,
		Transcripts: repository.NewTranscriptRepository(db),
		Analyses:    repository.NewAnalysisRepository(db),
		Extractor:   analysis.NewExtractor(t.TempDir(), 1<<20, nil),
		Requester:   analysis.NewRequester(chat, policy, nil, nil),
		Locker:      cache.NewLocker(store, "lock:"),
		Cache:       cache.NewAnalysisCache(store, time.Minute),
	}, analysis.Options{PersistPolicy: policy})

	manager := jwt.NewManager("secret", "", time.Minute)
	token, err := manager.GenerateAccessToken(uuid.New(), "alice@example.com")
	require.NoError(t, err)

	e := echo.New()
	e.Validator = pkgvalidator.New()
	auth := func(writeError func(c echo.Context, err error) error) echo.MiddlewareFunc {
		return httpmw.EchoAuth(manager, writeError)
	}
	NewRouter(&config.Config{}, NewAnalysisController(svc, nil), auth, nil, nil).Setup(e)

	return &testServer{e: e, db: db, token: token, meeting: meeting, calls: &calls}
}

type filePart struct {
	name        string
	contentType string
	content     []byte
}

func multipartBody(t *testing.T, fields map[string]string, file *filePart) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, file.name))
		h.Set("Content-Type", file.contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(file.content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func (s *testServer) do(t *testing.T, method, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+s.token)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) meetingStatus(t *testing.T) entities.MeetingStatus {
	t.Helper()
	var m entities.Meeting
	require.NoError(t, s.db.First(&m, "id = ?", s.meeting.ID).Error)
	return m.Status
}

func (s *testServer) analysisRows(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, s.db.Model(&entities.AnalysisResult{}).Count(&n).Error)
	return n
}

func TestAnalyze_Success(t *testing.T) {
	s := newTestServer(t, http.StatusOK)
	body, ct := multipartBody(t, map[string]string{
		"meetingId": s.meeting.ID.String(),
		"scopeText": "Team agreed to ship feature X by Friday. Alice owns deployment.",
	}, nil)

	rec := s.do(t, http.MethodPost, "/analyze", body, ct)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, 8.0, resp["score"])
	assert.Equal(t, true, resp["persisted"])
	assert.Equal(t, []interface{}{}, resp["participant_analysis"])
	items := resp["action_items"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "medium", items[0].(map[string]interface{})["priority"])

	assert.Equal(t, entities.MeetingStatusCompleted, s.meetingStatus(t))

	rec = s.do(t, http.MethodGet, "/v1/meetings/"+s.meeting.ID.String()+"/analysis", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Alice")
}

func TestAnalyze_PlainTextFile(t *testing.T) {
	s := newTestServer(t, http.StatusOK)
	body, ct := multipartBody(t, map[string]string{"meetingId": s.meeting.ID.String()},
		&filePart{name: "notes.txt", contentType: "application/octet-stream", content: []byte("Alice owns deployment.")})

	rec := s.do(t, http.MethodPost, "/analyze", body, ct)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, entities.MeetingStatusCompleted, s.meetingStatus(t))
}

func TestAnalyze_UnsupportedFileType(t *testing.T) {
	s := newTestServer(t, http.StatusOK)
	body, ct := multipartBody(t, map[string]string{"meetingId": s.meeting.ID.String()}, &filePart{
		name:        "notes.docx",
		contentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		content:     []byte("PK\x03\x04"),
	})

	rec := s.do(t, http.MethodPost, "/analyze", body, ct)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp common.AnalyzeErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "UNSUPPORTED_FILE_TYPE", resp.Error)
	assert.NotEmpty(t, resp.Detail)

	assert.Equal(t, int32(0), atomic.LoadInt32(s.calls))
	assert.Equal(t, int64(0), s.analysisRows(t))
	assert.Equal(t, entities.MeetingStatusScheduled, s.meetingStatus(t))
}

func TestAnalyze_RateLimited(t *testing.T) {
	s := newTestServer(t, http.StatusTooManyRequests)
	body, ct := multipartBody(t, map[string]string{
		"meetingId": s.meeting.ID.String(),
		"scopeText": "Alice owns deployment.",
	}, nil)

	rec := s.do(t, http.MethodPost, "/analyze", body, ct)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "RATE_LIMITED")
	assert.Equal(t, int32(1), atomic.LoadInt32(s.calls))
	assert.Equal(t, int64(0), s.analysisRows(t))
	assert.Equal(t, entities.MeetingStatusScheduled, s.meetingStatus(t))
}

func TestAnalyze_CreditsExhausted(t *testing.T) {
	s := newTestServer(t, http.StatusPaymentRequired)
	body, ct := multipartBody(t, map[string]string{"scopeText": "Alice owns deployment."}, nil)

	rec := s.do(t, http.MethodPost, "/analyze", body, ct)
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	assert.Contains(t, rec.Body.String(), "CREDITS_EXHAUSTED")
}

func TestAnalyze_ServerErrorIs500(t *testing.T) {
	s := newTestServer(t, http.StatusBadGateway)
	body, ct := multipartBody(t, map[string]string{"scopeText": "Alice owns deployment."}, nil)

	rec := s.do(t, http.MethodPost, "/analyze", body, ct)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "REQUEST_FAILED")
	assert.Equal(t, int32(2), atomic.LoadInt32(s.calls))
}

func TestAnalyze_NoInput(t *testing.T) {
	s := newTestServer(t, http.StatusOK)
	body, ct := multipartBody(t, map[string]string{"meetingId": s.meeting.ID.String()}, nil)

	rec := s.do(t, http.MethodPost, "/analyze", body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_ARGUMENT")
}

func TestAnalyze_InvalidMeetingID(t *testing.T) {
	s := newTestServer(t, http.StatusOK)
	body, ct := multipartBody(t, map[string]string{"meetingId": "M1", "scopeText": "x"}, nil)

	rec := s.do(t, http.MethodPost, "/analyze", body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyze_RequiresAuth(t *testing.T) {
	s := newTestServer(t, http.StatusOK)
	body, ct := multipartBody(t, map[string]string{"scopeText": "x"}, nil)
	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set(echo.HeaderContentType, ct)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "UNAUTHENTICATED", resp["error"])
	assert.NotEmpty(t, resp["detail"])
	assert.NotContains(t, resp, "code")
}

func TestGetAnalysis_RequiresAuthUsesCommonErrorBody(t *testing.T) {
	s := newTestServer(t, http.StatusOK)
	req := httptest.NewRequest(http.MethodGet, "/v1/meetings/"+s.meeting.ID.String()+"/analysis", nil)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "UNAUTHENTICATED", resp["code"])
	assert.NotContains(t, resp, "error")
}

func TestUploadTranscript_LockedAfterAnalysis(t *testing.T) {
	s := newTestServer(t, http.StatusOK)
	path := "/v1/meetings/" + s.meeting.ID.String() + "/transcript"

	body, ct := multipartBody(t, map[string]string{"text": "draft"}, nil)
	rec := s.do(t, http.MethodPut, path, body, ct)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body, ct = multipartBody(t, map[string]string{"meetingId": s.meeting.ID.String(), "scopeText": "final"}, nil)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/analyze", body, ct).Code)

	body, ct = multipartBody(t, map[string]string{"text": "rewrite"}, nil)
	rec = s.do(t, http.MethodPut, path, body, ct)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "TRANSCRIPT_LOCKED")

	body, ct = multipartBody(t, map[string]string{"text": "rewrite"}, nil)
	rec = s.do(t, http.MethodPut, path+"?force=true", body, ct)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetAnalysis_NotFound(t *testing.T) {
	s := newTestServer(t, http.StatusOK)

	rec := s.do(t, http.MethodGet, "/v1/meetings/"+s.meeting.ID.String()+"/analysis", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/v1/meetings/not-a-uuid/analysis", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, http.StatusOK)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
