package registrations

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vstep-portal/backend/internal/document"
	"github.com/vstep-portal/backend/internal/export"
	"github.com/vstep-portal/backend/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ListRow is one line of the admin listing: the columns the admin table
// shows, without the embedded image payloads.
type ListRow struct {
	ID          string    `json:"id"`
	FullName    string    `json:"fullName"`
	Email       string    `json:"email"`
	IDNumber    string    `json:"idNumber"`
	ExamDate    string    `json:"examDate"`
	HasPhoto    bool      `json:"hasPhoto"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// Handler serves the admin listing and the document/export endpoints.
type Handler struct {
	store  *Store
	pdf    *export.PDFExporter
	logger *zap.Logger
}

// NewHandler creates a registrations handler.
func NewHandler(store *Store, pdf *export.PDFExporter, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, pdf: pdf, logger: logger}
}

// List handles GET /registrations: all records in insertion order.
func (h *Handler) List(c *gin.Context) {
	records := h.store.ListAll()
	rows := make([]ListRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, ListRow{
			ID:          rec.ID,
			FullName:    rec.FullName,
			Email:       rec.Email,
			IDNumber:    rec.IDNumber,
			ExamDate:    rec.ExamDate,
			HasPhoto:    rec.Photo != "",
			SubmittedAt: rec.SubmittedAt,
		})
	}
	response.OK(c, gin.H{"registrations": rows, "total": len(rows)})
}

// ExportSpreadsheet handles GET /registrations/export: the full store as one
// xlsx download. An empty store yields a header-only sheet.
func (h *Handler) ExportSpreadsheet(c *gin.Context) {
	data, err := export.Spreadsheet(h.store.ListAll())
	if err != nil {
		h.logger.Error("spreadsheet export", zap.Error(err))
		response.Internal(c, "failed to export registrations")
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.SpreadsheetFileName))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// Document handles GET /registrations/:id/document: the rendered HTML form
// for one record, signature block dated today.
func (h *Handler) Document(c *gin.Context) {
	rec, err := h.store.Get(c.Param("id"))
	if err != nil {
		response.NotFound(c, "registration not found")
		return
	}
	doc, err := document.Render(*rec, time.Now())
	if err != nil {
		h.logger.Error("render document", zap.String("record_id", rec.ID), zap.Error(err))
		response.Internal(c, "failed to render document")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", doc.HTML)
}

// ExportPDF handles GET /registrations/:id/pdf: the record's form as a
// single-page A4 PDF. Rasterization failures are retryable.
func (h *Handler) ExportPDF(c *gin.Context) {
	rec, err := h.store.Get(c.Param("id"))
	if err != nil {
		response.NotFound(c, "registration not found")
		return
	}
	doc, err := document.Render(*rec, time.Now())
	if err != nil {
		h.logger.Error("render document", zap.String("record_id", rec.ID), zap.Error(err))
		response.Internal(c, "failed to render document")
		return
	}
	data, err := h.pdf.PDF(c.Request.Context(), doc)
	if err != nil {
		if errors.Is(err, export.ErrRender) {
			response.ServiceUnavailable(c, "document could not be rasterized, retry the export")
			return
		}
		h.logger.Error("pdf export", zap.String("record_id", rec.ID), zap.Error(err))
		response.Internal(c, "failed to export pdf")
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.PDFFileName(rec.FullName)))
	c.Data(http.StatusOK, "application/pdf", data)
}
