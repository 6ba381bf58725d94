package worker

import (
	"fmt"
	"io"

	"zapis/internal/models"

	"github.com/xuri/excelize/v2"
)

// WriteBookingsReport renders the bookings into a xlsx workbook for operators.
// Имена мастеров и услуг передаются снаружи, чтобы экспорт не ходил в
// хранилище сам.
func WriteBookingsReport(w io.Writer, bookings []*models.Booking, masters map[int64]string, services map[int64]string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Записи"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headers := []string{
		"ID", "Дата", "Время", "Мастер", "Услуга", "Длительность, мин",
		"Цена", "Статус", "Клиент ID", "Создана",
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, header)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for i, booking := range bookings {
		row := i + 2
		_ = f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), booking.ID)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), booking.Date)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), booking.TimeSlot)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), nameOrID(masters, booking.MasterID))
		_ = f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), nameOrID(services, booking.ServiceID))
		_ = f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), booking.DurationMin)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), booking.TotalPrice)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), statusLabel(booking.Status))
		_ = f.SetCellValue(sheetName, fmt.Sprintf("I%d", row), booking.UserID)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("J%d", row), booking.CreatedAt.Format("02.01.2006 15:04"))
	}

	_ = f.SetColWidth(sheetName, "A", "A", 8)
	_ = f.SetColWidth(sheetName, "B", "C", 12)
	_ = f.SetColWidth(sheetName, "D", "E", 22)
	_ = f.SetColWidth(sheetName, "F", "I", 14)
	_ = f.SetColWidth(sheetName, "J", "J", 18)

	// Удаляем стандартный лист
	_ = f.DeleteSheet("Sheet1")

	return f.Write(w)
}

func nameOrID(names map[int64]string, id int64) string {
	if name, ok := names[id]; ok {
		return name
	}
	return fmt.Sprintf("#%d", id)
}

func statusLabel(status string) string {
	switch status {
	case models.StatusUpcoming:
		return "предстоит"
	case models.StatusCompleted:
		return "завершена"
	case models.StatusCancelled:
		return "отменена"
	default:
		return status
	}
}
