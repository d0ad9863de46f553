package sessions

import (
	"errors"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vstep-portal/backend/internal/drafts"
	"github.com/vstep-portal/backend/internal/models"
	"github.com/vstep-portal/backend/internal/registrations"
	"github.com/vstep-portal/backend/pkg/response"
)

// statusClientClosedRequest is the nginx convention for a client that went
// away before the response was written; the request log keeps the real outcome.
const statusClientClosedRequest = 499

// PatchRequest is the body for PATCH /sessions/:id/draft.
type PatchRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

// NavigateRequest is the body for POST /sessions/:id/view.
type NavigateRequest struct {
	View string `json:"view" binding:"required"`
}

// Handler wires session and draft actions to the record store.
type Handler struct {
	mgr         *Manager
	store       *registrations.Store
	ids         drafts.IDSource
	submitDelay time.Duration
	logger      *zap.Logger
}

// NewHandler creates a sessions handler. submitDelay is the simulated
// processing window the original showed as a spinner before confirming.
func NewHandler(mgr *Manager, store *registrations.Store, ids drafts.IDSource, submitDelay time.Duration, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{mgr: mgr, store: store, ids: ids, submitDelay: submitDelay, logger: logger}
}

// Create handles POST /sessions. Every client starts in compose with a fresh
// default draft.
func (h *Handler) Create(c *gin.Context) {
	s := h.mgr.Create()
	response.Created(c, s.State())
}

// Get handles GET /sessions/:id.
func (h *Handler) Get(c *gin.Context) {
	s := h.session(c)
	if s == nil {
		return
	}
	response.OK(c, s.State())
}

// PatchDraft handles PATCH /sessions/:id/draft: one typed field patch.
func (h *Handler) PatchDraft(c *gin.Context) {
	s := h.session(c)
	if s == nil {
		return
	}
	var req PatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if err := s.Builder().UpdateField(models.Field(req.Field), req.Value); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.OK(c, s.State())
}

// UploadImage handles POST /sessions/:id/draft/images/:slot. The file is read
// to completion and decoded before the slot is written; an unreadable upload
// leaves the prior slot value unchanged.
func (h *Handler) UploadImage(c *gin.Context) {
	s := h.session(c)
	if s == nil {
		return
	}
	slot, ok := models.ParseImageSlot(c.Param("slot"))
	if !ok {
		response.BadRequest(c, "unknown image slot: "+c.Param("slot"))
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required")
		return
	}
	f, err := file.Open()
	if err != nil {
		response.BadRequest(c, "cannot read upload")
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		response.BadRequest(c, "cannot read upload")
		return
	}

	if _, err := s.Builder().AttachImage(slot, data); err != nil {
		if errors.Is(err, drafts.ErrNotAnImage) {
			response.BadRequest(c, err.Error())
			return
		}
		h.logger.Error("attach image", zap.String("slot", string(slot)), zap.Error(err))
		response.Internal(c, "failed to attach image")
		return
	}
	response.OK(c, s.State())
}

// ResetDraft handles POST /sessions/:id/draft/reset: new registration from
// any view, fresh default draft.
func (h *Handler) ResetDraft(c *gin.Context) {
	s := h.session(c)
	if s == nil {
		return
	}
	s.Reset()
	response.OK(c, s.State())
}

// Navigate handles POST /sessions/:id/view. Navigation never discards an
// in-progress draft.
func (h *Handler) Navigate(c *gin.Context) {
	s := h.session(c)
	if s == nil {
		return
	}
	var req NavigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	view, ok := ParseView(req.View)
	if !ok {
		response.BadRequest(c, "unknown view: "+req.View)
		return
	}
	if err := s.Navigate(view); err != nil {
		response.Conflict(c, err.Error())
		return
	}
	response.OK(c, s.State())
}

// Submit handles POST /sessions/:id/submit: finalize the draft into an
// immutable record, append it, and move to the success view. All failures
// leave the store unchanged and the session in compose with its draft intact.
func (h *Handler) Submit(c *gin.Context) {
	s := h.session(c)
	if s == nil {
		return
	}
	if err := s.BeginSubmit(); err != nil {
		response.Conflict(c, err.Error())
		return
	}

	// Processing window standing in for the confirmation email round-trip.
	if h.submitDelay > 0 {
		select {
		case <-time.After(h.submitDelay):
		case <-c.Request.Context().Done():
			s.AbortSubmit()
			c.AbortWithStatus(statusClientClosedRequest)
			return
		}
	}

	rec, err := s.Builder().Finalize(h.ids, time.Now())
	if err != nil {
		s.AbortSubmit()
		var verr *drafts.ValidationError
		switch {
		case errors.As(err, &verr):
			response.BadRequest(c, verr.Error())
		case errors.Is(err, drafts.ErrAttachmentPending):
			response.Conflict(c, err.Error())
		default:
			h.logger.Error("finalize draft", zap.Error(err))
			response.Internal(c, "failed to finalize registration")
		}
		return
	}

	if err := h.store.Append(*rec); err != nil {
		s.AbortSubmit()
		h.logger.Error("append record", zap.String("record_id", rec.ID), zap.Error(err))
		response.Internal(c, "failed to store registration")
		return
	}

	s.FinishSubmit(rec.ID)
	h.logger.Info("registration submitted",
		zap.String("record_id", rec.ID),
		zap.String("session_id", s.ID().String()),
	)
	response.Created(c, gin.H{
		"record":             rec,
		"confirmation_email": rec.Email,
		"view":               ViewSuccess,
	})
}

// session resolves the :id path parameter, writing the error response itself
// when the session cannot be found.
func (h *Handler) session(c *gin.Context) *Session {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid session id")
		return nil
	}
	s, err := h.mgr.Get(id)
	if err != nil {
		response.NotFound(c, "session not found")
		return nil
	}
	return s
}
