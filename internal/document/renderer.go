// Package document renders a finalized registration record into the
// fixed-layout bilingual application form ("Phiếu đăng ký dự thi").
package document

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/vstep-portal/backend/internal/models"
)

//go:embed document.html.tmpl
var documentTmpl string

var tmpl = template.Must(template.New("document").Parse(documentTmpl))

// Document is the rendered visual form for exactly one record. NodeID
// addresses the document's root node so the exporter can rasterize this
// record's form and nothing else on the page.
type Document struct {
	RecordID string
	NodeID   string
	HTML     []byte
}

// viewModel carries the record's fields formatted for the layout. Image
// values are data URIs produced by the draft builder; template.URL keeps
// html/template from neutering the data: scheme.
type viewModel struct {
	RecordID      string
	FullNameUpper string
	DOB           string
	Gender        string
	PlaceOfBirth  string
	IDNumber      string
	IDIssueDate   string
	IDIssuePlace  string
	Phone         string
	Email         string
	CandidateType string
	ExamDate      string
	Photo         template.URL
	IDFront       template.URL
	IDBack        template.URL
	SignDay       int
	SignMonth     int
	SignYear      int
}

// Render produces the document for a record. It is deterministic in
// (record, renderedAt); the signature block is dated with renderedAt, the
// render date, not the submission date. Absent image slots render as empty
// placeholder boxes.
func Render(rec models.RegistrationRecord, renderedAt time.Time) (*Document, error) {
	vm := viewModel{
		RecordID:      rec.ID,
		FullNameUpper: strings.ToUpper(rec.FullName),
		DOB:           formatDate(rec.DOB),
		Gender:        rec.Gender,
		PlaceOfBirth:  rec.PlaceOfBirth,
		IDNumber:      rec.IDNumber,
		IDIssueDate:   formatDate(rec.IDIssueDate),
		IDIssuePlace:  rec.IDIssuePlace,
		Phone:         rec.Phone,
		Email:         rec.Email,
		CandidateType: rec.CandidateType,
		ExamDate:      formatDate(rec.ExamDate),
		Photo:         template.URL(rec.Photo),
		IDFront:       template.URL(rec.IDFront),
		IDBack:        template.URL(rec.IDBack),
		SignDay:       renderedAt.Day(),
		SignMonth:     int(renderedAt.Month()),
		SignYear:      renderedAt.Year(),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vm); err != nil {
		return nil, fmt.Errorf("render document %s: %w", rec.ID, err)
	}
	return &Document{
		RecordID: rec.ID,
		NodeID:   NodeID(rec.ID),
		HTML:     buf.Bytes(),
	}, nil
}

// NodeID returns the root node id of the rendered document for a record.
func NodeID(recordID string) string {
	return "form-preview-" + recordID
}

// formatDate converts a stored yyyy-mm-dd value to the dd/mm/yyyy form used
// on the printed document. Unparseable values pass through verbatim.
func formatDate(s string) string {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return s
	}
	return t.Format("02/01/2006")
}
