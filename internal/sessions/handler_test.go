package sessions

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/vstep-portal/backend/internal/drafts"
	"github.com/vstep-portal/backend/internal/registrations"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type HandlerSuite struct {
	suite.Suite
	store  *registrations.Store
	router *gin.Engine
}

func (s *HandlerSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.store = registrations.NewStore()

	mgr := NewManager(drafts.NewDefaults("2024-06-15"))
	h := NewHandler(mgr, s.store, registrations.NewIDGenerator(), 0, zap.NewNop())

	s.router = gin.New()
	s.router.POST("/sessions", h.Create)
	s.router.GET("/sessions/:id", h.Get)
	s.router.PATCH("/sessions/:id/draft", h.PatchDraft)
	s.router.POST("/sessions/:id/draft/images/:slot", h.UploadImage)
	s.router.POST("/sessions/:id/draft/reset", h.ResetDraft)
	s.router.POST("/sessions/:id/submit", h.Submit)
	s.router.POST("/sessions/:id/view", h.Navigate)
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) do(method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func (s *HandlerSuite) createSession() string {
	w, env := s.do(http.MethodPost, "/sessions", nil)
	s.Require().Equal(http.StatusCreated, w.Code)
	var st State
	s.Require().NoError(json.Unmarshal(env.Data, &st))
	return st.ID.String()
}

func (s *HandlerSuite) state(id string) State {
	w, env := s.do(http.MethodGet, "/sessions/"+id, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var st State
	s.Require().NoError(json.Unmarshal(env.Data, &st))
	return st
}

func (s *HandlerSuite) patch(id, field, value string) *httptest.ResponseRecorder {
	w, _ := s.do(http.MethodPatch, "/sessions/"+id+"/draft", PatchRequest{Field: field, Value: value})
	return w
}

func (s *HandlerSuite) upload(id, slot string, content []byte) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "upload.png")
	s.Require().NoError(err)
	_, err = fw.Write(content)
	s.Require().NoError(err)
	s.Require().NoError(mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/sessions/"+id+"/draft/images/"+slot, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *HandlerSuite) fillValidDraft(id string) {
	for field, value := range map[string]string{
		"fullName": "Nguyễn Văn A",
		"dob":      "2002-05-15",
		"pob":      "Hà Nội",
		"idNumber": "001202000123",
		"idDate":   "2020-01-01",
		"idPlace":  "Cục CS QLHC về TTXH",
		"phone":    "0987654321",
		"email":    "nguyenvana@example.com",
	} {
		s.Require().Equal(http.StatusOK, s.patch(id, field, value).Code)
	}
	for _, slot := range []string{"photo", "idFront", "idBack"} {
		s.Require().Equal(http.StatusOK, s.upload(id, slot, pngBytes(s.T())).Code)
	}
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func (s *HandlerSuite) TestSubmitCompleteDraft() {
	id := s.createSession()
	s.fillValidDraft(id)
	before := s.store.Len()

	w, env := s.do(http.MethodPost, "/sessions/"+id+"/submit", nil)
	s.Require().Equal(http.StatusCreated, w.Code)
	s.Contains(string(env.Data), "nguyenvana@example.com")

	s.Equal(before+1, s.store.Len())
	all := s.store.ListAll()
	s.Equal("Nguyễn Văn A", all[len(all)-1].FullName)

	st := s.state(id)
	s.Equal(ViewSuccess, st.View)
	s.Equal(all[len(all)-1].ID, st.LastRecordID)
}

func (s *HandlerSuite) TestSubmitIncompleteDraft() {
	id := s.createSession()
	before := s.store.Len()

	w, env := s.do(http.MethodPost, "/sessions/"+id+"/submit", nil)
	s.Require().Equal(http.StatusBadRequest, w.Code)
	s.Contains(env.Error, "missing required fields")
	s.Contains(env.Error, "fullName")

	// store unchanged, session stays in compose
	s.Equal(before, s.store.Len())
	s.Equal(ViewCompose, s.state(id).View)
}

func (s *HandlerSuite) TestPatchUnknownField() {
	id := s.createSession()
	w := s.patch(id, "favoriteColor", "blue")
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerSuite) TestUploadNonImage() {
	id := s.createSession()

	w := s.upload(id, "photo", []byte("definitely not an image"))
	s.Require().Equal(http.StatusBadRequest, w.Code)

	// photo still counts as missing at submit time
	_, env := s.do(http.MethodPost, "/sessions/"+id+"/submit", nil)
	s.Contains(env.Error, "photo")
}

func (s *HandlerSuite) TestUploadUnknownSlot() {
	id := s.createSession()
	w := s.upload(id, "signature", pngBytes(s.T()))
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerSuite) TestNavigationKeepsDraft() {
	id := s.createSession()
	s.Require().Equal(http.StatusOK, s.patch(id, "fullName", "Trần Thị B").Code)

	w, _ := s.do(http.MethodPost, "/sessions/"+id+"/view", NavigateRequest{View: "admin"})
	s.Require().Equal(http.StatusOK, w.Code)
	w, _ = s.do(http.MethodPost, "/sessions/"+id+"/view", NavigateRequest{View: "compose"})
	s.Require().Equal(http.StatusOK, w.Code)

	s.Equal("Trần Thị B", s.state(id).Draft.FullName)
}

func (s *HandlerSuite) TestNavigateToSuccessWithoutRecord() {
	id := s.createSession()
	w, _ := s.do(http.MethodPost, "/sessions/"+id+"/view", NavigateRequest{View: "success"})
	s.Equal(http.StatusConflict, w.Code)
}

func (s *HandlerSuite) TestResetStartsNewRegistration() {
	id := s.createSession()
	s.fillValidDraft(id)
	w, _ := s.do(http.MethodPost, "/sessions/"+id+"/submit", nil)
	s.Require().Equal(http.StatusCreated, w.Code)

	w, _ = s.do(http.MethodPost, "/sessions/"+id+"/draft/reset", nil)
	s.Require().Equal(http.StatusOK, w.Code)

	st := s.state(id)
	s.Equal(ViewCompose, st.View)
	s.Empty(st.LastRecordID)
	s.Empty(st.Draft.FullName)
	s.Equal("2024-06-15", st.Draft.ExamDate)
}

func (s *HandlerSuite) TestUnknownSession() {
	w, _ := s.do(http.MethodGet, "/sessions/9b8e4c1e-0000-0000-0000-000000000000", nil)
	s.Equal(http.StatusNotFound, w.Code)

	w, _ = s.do(http.MethodGet, "/sessions/not-a-uuid", nil)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerSuite) TestSubmitClientGoneDuringProcessingWindow() {
	mgr := NewManager(drafts.NewDefaults("2024-06-15"))
	h := NewHandler(mgr, s.store, registrations.NewIDGenerator(), 50*time.Millisecond, zap.NewNop())
	router := gin.New()
	router.POST("/sessions/:id/submit", h.Submit)

	sess := mgr.Create()
	before := s.store.Len()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/sessions/"+sess.ID().String()+"/submit", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// explicit client-closed status, nothing stored, session usable again
	s.Equal(499, w.Code)
	s.Equal(before, s.store.Len())
	st := sess.State()
	s.Equal(ViewCompose, st.View)
	s.False(st.Submitting)
	s.Require().NoError(sess.BeginSubmit())
}

func (s *HandlerSuite) TestSecondSubmitAfterSuccessIsRejected() {
	id := s.createSession()
	s.fillValidDraft(id)
	w, _ := s.do(http.MethodPost, "/sessions/"+id+"/submit", nil)
	s.Require().Equal(http.StatusCreated, w.Code)

	w, _ = s.do(http.MethodPost, "/sessions/"+id+"/submit", nil)
	s.Equal(http.StatusConflict, w.Code)
	s.False(strings.Contains(w.Body.String(), "panic"))
}
