package models

import "time"

// Field names one scalar field of a registration draft. Drafts accept patches
// only for fields in this closed set.
type Field string

const (
	FieldFullName      Field = "fullName"
	FieldDOB           Field = "dob"
	FieldGender        Field = "gender"
	FieldPlaceOfBirth  Field = "pob"
	FieldIDNumber      Field = "idNumber"
	FieldIDIssueDate   Field = "idDate"
	FieldIDIssuePlace  Field = "idPlace"
	FieldPhone         Field = "phone"
	FieldEmail         Field = "email"
	FieldExamDate      Field = "examDate"
	FieldCandidateType Field = "candidateType"
)

// ImageSlot names one of the three image attachment points on a draft.
type ImageSlot string

const (
	SlotPhoto   ImageSlot = "photo"
	SlotIDFront ImageSlot = "idFront"
	SlotIDBack  ImageSlot = "idBack"
)

// ParseImageSlot validates a slot name from a URL parameter.
func ParseImageSlot(s string) (ImageSlot, bool) {
	switch ImageSlot(s) {
	case SlotPhoto, SlotIDFront, SlotIDBack:
		return ImageSlot(s), true
	}
	return "", false
}

// RegistrationRecord is a finalized VSTEP exam registration. Records are
// immutable once appended to the store; rendering and export are pure reads.
// Image fields hold data URIs (base64) or are empty when absent.
type RegistrationRecord struct {
	ID            string    `json:"id"`
	FullName      string    `json:"fullName"`
	DOB           string    `json:"dob"`
	Gender        string    `json:"gender"`
	PlaceOfBirth  string    `json:"pob"`
	IDNumber      string    `json:"idNumber"`
	IDIssueDate   string    `json:"idDate"`
	IDIssuePlace  string    `json:"idPlace"`
	Phone         string    `json:"phone"`
	Email         string    `json:"email"`
	ExamDate      string    `json:"examDate"`
	CandidateType string    `json:"candidateType"`
	Photo         string    `json:"photo,omitempty"`
	IDFront       string    `json:"idFront,omitempty"`
	IDBack        string    `json:"idBack,omitempty"`
	SubmittedAt   time.Time `json:"submittedAt"`
}

// Draft is an in-progress, unvalidated registration. It mirrors
// RegistrationRecord without id or submission time; nothing is required
// until finalize.
type Draft struct {
	FullName      string `json:"fullName,omitempty"`
	DOB           string `json:"dob,omitempty"`
	Gender        string `json:"gender,omitempty"`
	PlaceOfBirth  string `json:"pob,omitempty"`
	IDNumber      string `json:"idNumber,omitempty"`
	IDIssueDate   string `json:"idDate,omitempty"`
	IDIssuePlace  string `json:"idPlace,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Email         string `json:"email,omitempty"`
	ExamDate      string `json:"examDate,omitempty"`
	CandidateType string `json:"candidateType,omitempty"`
	Photo         string `json:"photo,omitempty"`
	IDFront       string `json:"idFront,omitempty"`
	IDBack        string `json:"idBack,omitempty"`
}
