package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/vstep-portal/backend/internal/models"
)

// SheetName is the single worksheet in the exported workbook.
const SheetName = "Danh sách đăng ký"

// SpreadsheetFileName is the download name for the registration list export.
const SpreadsheetFileName = "VSTEP_Registrations.xlsx"

// sheetHeader is the fixed header row, in column order.
var sheetHeader = []interface{}{
	"Mã hồ sơ", "Họ và tên", "Ngày sinh", "Giới tính", "SĐT",
	"Email", "Ngày thi", "Đối tượng", "Ngày nộp",
}

// Spreadsheet flattens records into an xlsx workbook: one sheet, the fixed
// header row, one row per record in input order. It succeeds for any input,
// including none (header row only).
func Spreadsheet(records []models.RegistrationRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("name sheet: %w", err)
	}
	if err := f.SetSheetRow(SheetName, "A1", &sheetHeader); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		row := []interface{}{
			rec.ID,
			rec.FullName,
			rec.DOB,
			rec.Gender,
			rec.Phone,
			rec.Email,
			rec.ExamDate,
			rec.CandidateType,
			rec.SubmittedAt.Format("15:04:05 02/01/2006"),
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
