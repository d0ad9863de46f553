package registrations

import (
	"time"

	"github.com/vstep-portal/backend/internal/models"
)

// Seed appends the sample registration shown in the admin list on a fresh
// process, so the list and spreadsheet export are demonstrable before any
// real submission arrives.
func Seed(store *Store) error {
	return store.Append(models.RegistrationRecord{
		ID:            "1715692800000",
		FullName:      "Nguyễn Văn A",
		DOB:           "2002-05-15",
		Gender:        "Nam",
		PlaceOfBirth:  "Hà Nội",
		IDNumber:      "001202000123",
		IDIssueDate:   "2020-01-01",
		IDIssuePlace:  "Cục CS QLHC về TTXH",
		Phone:         "0987654321",
		Email:         "nguyenvana@example.com",
		ExamDate:      "2024-06-15",
		CandidateType: "Sinh viên",
		SubmittedAt:   time.Now(),
	})
}
