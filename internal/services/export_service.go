package services

import (
	"bytes"
	"fmt"
	"time"

	"github.com/herland/laundry-backend/internal/models"
	"github.com/xuri/excelize/v2"
)

// ExportService builds spreadsheet exports for the admin dashboard
type ExportService struct{}

// NewExportService creates a new export service
func NewExportService() *ExportService {
	return &ExportService{}
}

const bookingsSheet = "Bookings"

var bookingExportHeaders = []string{
	"Reference", "Customer", "Service Type", "Collection Option",
	"Stage", "Current Status", "Amount To Pay", "Payment Method",
	"Payment Status", "Created",
}

// BookingsToExcel renders the booking list as an xlsx workbook and returns
// the file contents plus the suggested filename.
func (s *ExportService) BookingsToExcel(bookings []models.Booking) ([]byte, string, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(bookingsSheet)
	if err != nil {
		return nil, "", fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	for i, header := range bookingExportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(bookingsSheet, cell, header)
		_ = f.SetCellStyle(bookingsSheet, cell, cell, headerStyle)
	}

	for i, booking := range bookings {
		view := booking.View()
		row := i + 2

		_ = f.SetCellValue(bookingsSheet, fmt.Sprintf("A%d", row), view.ID)
		_ = f.SetCellValue(bookingsSheet, fmt.Sprintf("B%d", row), view.CustomerName)
		_ = f.SetCellValue(bookingsSheet, fmt.Sprintf("C%d", row), booking.ServiceType)
		_ = f.SetCellValue(bookingsSheet, fmt.Sprintf("D%d", row), view.CollectionOption)
		_ = f.SetCellValue(bookingsSheet, fmt.Sprintf("E%d", row), view.Stage)
		_ = f.SetCellValue(bookingsSheet, fmt.Sprintf("F%d", row), view.Timeline.CurrentStatus())
		_ = f.SetCellValue(bookingsSheet, fmt.Sprintf("G%d", row), amountToPay(booking.PaymentDetails))
		_ = f.SetCellValue(bookingsSheet, fmt.Sprintf("H%d", row), booking.PaymentDetails.GetString("method"))
		_ = f.SetCellValue(bookingsSheet, fmt.Sprintf("I%d", row), booking.PaymentDetails.GetString("status"))
		_ = f.SetCellValue(bookingsSheet, fmt.Sprintf("J%d", row), booking.CreatedAt.Format("2006-01-02 15:04"))
	}

	_ = f.SetColWidth(bookingsSheet, "A", "B", 22)
	_ = f.SetColWidth(bookingsSheet, "C", "F", 20)
	_ = f.SetColWidth(bookingsSheet, "G", "J", 18)

	_ = f.DeleteSheet("Sheet1")

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", fmt.Errorf("error writing workbook: %w", err)
	}

	fileName := fmt.Sprintf("bookings_export_%s.xlsx", time.Now().Format("2006-01-02_15-04-05"))
	return buf.Bytes(), fileName, nil
}

// amountToPay reads the amount from the payment details blob, tolerating the
// number and string forms the web client has sent over time.
func amountToPay(payment models.JSONMap) interface{} {
	if payment == nil {
		return ""
	}
	switch v := payment["amountToPay"].(type) {
	case float64:
		return v
	case string:
		return v
	default:
		return ""
	}
}
