// Package drafts accumulates form edits and uploaded images into a pending
// registration draft and finalizes it into an immutable record.
package drafts

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/vstep-portal/backend/internal/models"
)

var (
	// ErrUnknownField is returned for a patch naming a field outside the
	// recognized set.
	ErrUnknownField = errors.New("unknown draft field")
	// ErrUnknownSlot is returned for an image attach naming an unknown slot.
	ErrUnknownSlot = errors.New("unknown image slot")
	// ErrAttachmentPending is returned by Finalize while an image attach for
	// this draft is still in flight.
	ErrAttachmentPending = errors.New("image attachment still in progress")
)

// ValidationError reports every required field a draft is missing at
// finalize time.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Missing, ", ")
}

// Defaults are the values pre-filled into every fresh draft.
type Defaults struct {
	Gender        string
	CandidateType string
	ExamDate      string
}

// NewDefaults returns the program defaults with the configured exam date.
func NewDefaults(examDate string) Defaults {
	return Defaults{
		Gender:        "Nam",
		CandidateType: "Thí sinh tự do",
		ExamDate:      examDate,
	}
}

// IDSource issues unique record ids at finalize time.
type IDSource interface {
	Next(now time.Time) string
}

// Builder owns the single in-progress draft for one session. All methods are
// safe for concurrent use; Finalize refuses to run while any AttachImage call
// on this builder has not completed.
type Builder struct {
	mu       sync.Mutex
	defaults Defaults
	draft    models.Draft
	dirty    bool
	pending  int
}

// NewBuilder creates a builder holding a fresh defaults-only draft.
func NewBuilder(defaults Defaults) *Builder {
	b := &Builder{defaults: defaults}
	b.draft = b.fresh()
	return b
}

func (b *Builder) fresh() models.Draft {
	return models.Draft{
		Gender:        b.defaults.Gender,
		CandidateType: b.defaults.CandidateType,
		ExamDate:      b.defaults.ExamDate,
	}
}

// Draft returns a copy of the current draft state.
func (b *Builder) Draft() models.Draft {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.draft
}

// Dirty reports whether the draft has been edited since creation or reset.
func (b *Builder) Dirty() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dirty
}

// UpdateField merges one scalar field into the draft. No validation beyond
// the closed field-name set happens here.
func (b *Builder) UpdateField(field models.Field, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch field {
	case models.FieldFullName:
		b.draft.FullName = value
	case models.FieldDOB:
		b.draft.DOB = value
	case models.FieldGender:
		b.draft.Gender = value
	case models.FieldPlaceOfBirth:
		b.draft.PlaceOfBirth = value
	case models.FieldIDNumber:
		b.draft.IDNumber = value
	case models.FieldIDIssueDate:
		b.draft.IDIssueDate = value
	case models.FieldIDIssuePlace:
		b.draft.IDIssuePlace = value
	case models.FieldPhone:
		b.draft.Phone = value
	case models.FieldEmail:
		b.draft.Email = value
	case models.FieldExamDate:
		b.draft.ExamDate = value
	case models.FieldCandidateType:
		b.draft.CandidateType = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	b.dirty = true
	return nil
}

// AttachImage decodes raw uploaded bytes and stores the encoded result under
// the named slot. On unreadable input the prior slot value is left unchanged.
// The draft counts the attach as pending until it completes, so a concurrent
// Finalize cannot observe a half-attached draft.
func (b *Builder) AttachImage(slot models.ImageSlot, data []byte) (string, error) {
	if _, ok := models.ParseImageSlot(string(slot)); !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownSlot, slot)
	}
	b.beginAttach()
	defer b.endAttach()

	encoded, err := encodeImage(data)
	if err != nil {
		return "", err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	switch slot {
	case models.SlotPhoto:
		b.draft.Photo = encoded
	case models.SlotIDFront:
		b.draft.IDFront = encoded
	case models.SlotIDBack:
		b.draft.IDBack = encoded
	}
	b.dirty = true
	return encoded, nil
}

func (b *Builder) beginAttach() {
	b.mu.Lock()
	b.pending++
	b.mu.Unlock()
}

func (b *Builder) endAttach() {
	b.mu.Lock()
	b.pending--
	b.mu.Unlock()
}

// Reset replaces the draft with a fresh one holding only the defaults.
func (b *Builder) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.draft = b.fresh()
	b.dirty = false
}

// requiredFields maps each required field to its reader, in report order.
var requiredFields = []struct {
	name string
	get  func(d models.Draft) string
}{
	{string(models.FieldFullName), func(d models.Draft) string { return d.FullName }},
	{string(models.FieldDOB), func(d models.Draft) string { return d.DOB }},
	{string(models.FieldPlaceOfBirth), func(d models.Draft) string { return d.PlaceOfBirth }},
	{string(models.FieldIDNumber), func(d models.Draft) string { return d.IDNumber }},
	{string(models.FieldIDIssueDate), func(d models.Draft) string { return d.IDIssueDate }},
	{string(models.FieldIDIssuePlace), func(d models.Draft) string { return d.IDIssuePlace }},
	{string(models.FieldPhone), func(d models.Draft) string { return d.Phone }},
	{string(models.FieldEmail), func(d models.Draft) string { return d.Email }},
	{string(models.SlotPhoto), func(d models.Draft) string { return d.Photo }},
	{string(models.SlotIDFront), func(d models.Draft) string { return d.IDFront }},
	{string(models.SlotIDBack), func(d models.Draft) string { return d.IDBack }},
}

// Finalize validates required-field presence and produces a new immutable
// record with a fresh id and submission timestamp. The draft itself is left
// untouched; callers reset it after a successful submission.
func (b *Builder) Finalize(ids IDSource, now time.Time) (*models.RegistrationRecord, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pending > 0 {
		return nil, ErrAttachmentPending
	}

	var missing []string
	for _, f := range requiredFields {
		if strings.TrimSpace(f.get(b.draft)) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Missing: missing}
	}

	d := b.draft
	return &models.RegistrationRecord{
		ID:            ids.Next(now),
		FullName:      d.FullName,
		DOB:           d.DOB,
		Gender:        d.Gender,
		PlaceOfBirth:  d.PlaceOfBirth,
		IDNumber:      d.IDNumber,
		IDIssueDate:   d.IDIssueDate,
		IDIssuePlace:  d.IDIssuePlace,
		Phone:         d.Phone,
		Email:         d.Email,
		ExamDate:      d.ExamDate,
		CandidateType: d.CandidateType,
		Photo:         d.Photo,
		IDFront:       d.IDFront,
		IDBack:        d.IDBack,
		SubmittedAt:   now,
	}, nil
}
