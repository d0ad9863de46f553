// Package export turns rendered documents into PDF files and the record
// store into a spreadsheet file.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"

	"github.com/vstep-portal/backend/internal/document"
)

// ErrRender means the document node could not be rasterized. The condition is
// retryable; the caller re-triggers the export.
var ErrRender = errors.New("document could not be rasterized")

// Raster is a rasterized document node.
type Raster struct {
	PNG    []byte
	Width  int // pixels
	Height int // pixels
}

// Rasterizer captures the document's root node as a PNG at the configured
// oversampling scale.
type Rasterizer interface {
	Rasterize(ctx context.Context, pageHTML []byte, nodeID string) (Raster, error)
}

// PDFExporter assembles a single-page A4 portrait PDF from a rendered
// document: the raster is embedded full-bleed at page width with height
// proportional to its aspect ratio, so tall content scales rather than clips.
type PDFExporter struct {
	ras    Rasterizer
	logger *zap.Logger
}

// NewPDFExporter creates a PDF exporter over the given rasterizer.
func NewPDFExporter(ras Rasterizer, logger *zap.Logger) *PDFExporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PDFExporter{ras: ras, logger: logger}
}

// PDF rasterizes the document and returns the finished PDF bytes.
func (e *PDFExporter) PDF(ctx context.Context, doc *document.Document) ([]byte, error) {
	raster, err := e.ras.Rasterize(ctx, doc.HTML, doc.NodeID)
	if err != nil {
		e.logger.Warn("rasterize failed", zap.String("record_id", doc.RecordID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}
	if raster.Width <= 0 || raster.Height <= 0 {
		return nil, fmt.Errorf("%w: empty raster", ErrRender)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pageWidth, _ := pdf.GetPageSize()

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("document", opts, bytes.NewReader(raster.PNG))
	imageHeight := float64(raster.Height) * pageWidth / float64(raster.Width)
	pdf.ImageOptions("document", 0, 0, pageWidth, imageHeight, false, opts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf for record %s: %w", doc.RecordID, err)
	}
	return buf.Bytes(), nil
}

// PDFFileName returns the download name for a candidate's registration form.
func PDFFileName(fullName string) string {
	return "VSTEP_Registration_" + fullName + ".pdf"
}
