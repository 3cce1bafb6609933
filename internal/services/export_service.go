package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/sjperalta/gymflow-api/internal/models"
	"github.com/sjperalta/gymflow-api/internal/repository"
	"github.com/xuri/excelize/v2"
)

// Export formats
const (
	ExportFormatCSV  = "csv"
	ExportFormatXLSX = "xlsx"
	ExportFormatPDF  = "pdf"
)

// ErrUnsupportedExportFormat is returned for formats other than csv, xlsx and pdf
var ErrUnsupportedExportFormat = &BusinessError{Code: "unsupported_export_format", Message: "formato de exportación no soportado"}

var contractExportHeaders = []string{
	"ID", "Cliente", "Plan", "Inicio", "Fin", "Estado", "Precio Base", "Precio Personalizado", "Descuento %", "Monto Final", "Moneda", "Frecuencia",
}

type ExportService struct {
	querySvc *ContractQueryService
}

func NewExportService(querySvc *ContractQueryService) *ExportService {
	return &ExportService{querySvc: querySvc}
}

// ExportContracts renders the gym's contract listing (without pagination) in the requested format.
// It returns the file content, its filename and its content type.
func (s *ExportService) ExportContracts(ctx context.Context, gymID uint, actor Actor, query *repository.ContractQuery, format string) ([]byte, string, string, error) {
	switch format {
	case ExportFormatCSV, ExportFormatXLSX, ExportFormatPDF:
	default:
		return nil, "", "", ErrUnsupportedExportFormat
	}

	query.PerPage = 0
	query.Offset = 0
	contracts, _, err := s.querySvc.ListByGym(ctx, gymID, actor, query)
	if err != nil {
		return nil, "", "", err
	}
	rows := s.querySvc.PresentAll(contracts)

	var (
		data        []byte
		filename    string
		contentType string
	)
	switch format {
	case ExportFormatCSV:
		data, filename, err = s.ExportCSV(ctx, gymID, rows)
		contentType = "text/csv"
	case ExportFormatXLSX:
		data, filename, err = s.ExportXLSX(ctx, gymID, rows)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ExportFormatPDF:
		data, filename, err = s.ExportPDF(ctx, gymID, rows)
		contentType = "application/pdf"
	}
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to export contracts: %w", err)
	}
	return data, filename, contentType, nil
}

func (s *ExportService) ExportCSV(ctx context.Context, gymID uint, contracts []models.ContractResponse) ([]byte, string, error) {
	buf := new(bytes.Buffer)
	writer := csv.NewWriter(buf)

	_ = writer.Write(contractExportHeaders)
	for _, c := range contracts {
		_ = writer.Write(contractExportRow(c))
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, "", err
	}

	return buf.Bytes(), exportFilename(gymID, ExportFormatCSV), nil
}

func (s *ExportService) ExportXLSX(ctx context.Context, gymID uint, contracts []models.ContractResponse) ([]byte, string, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Contratos"
	_ = f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	for col, header := range contractExportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(sheet, cell, header)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(contractExportHeaders), 1)
	_ = f.SetCellStyle(sheet, "A1", lastHeader, headerStyle)

	for i, c := range contracts {
		row := i + 2
		values := []interface{}{
			c.ID,
			c.ClientName,
			c.MembershipPlanName,
			c.StartDate.Format("2006-01-02"),
			c.EndDate.Format("2006-01-02"),
			statusLabel(c.DisplayStatus),
			c.BasePrice,
			optionalFloat(c.CustomPrice),
			optionalFloat(c.DiscountPercentage),
			c.FinalAmount,
			c.Currency,
			c.PaymentFrequency,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}

	return buf.Bytes(), exportFilename(gymID, ExportFormatXLSX), nil
}

func (s *ExportService) ExportPDF(ctx context.Context, gymID uint, contracts []models.ContractResponse) ([]byte, string, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, tr("Reporte de Contratos"))
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(40, 8, fmt.Sprintf("Generado: %s  -  Total: %d", time.Now().Format("2006-01-02 15:04"), len(contracts)))
	pdf.Ln(10)

	widths := []float64{15, 60, 45, 25, 25, 30, 30, 20}
	headers := []string{"ID", "Cliente", "Plan", "Inicio", "Fin", "Estado", "Monto", "Moneda"}

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(224, 224, 224)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, c := range contracts {
		cells := []string{
			fmt.Sprintf("%d", c.ID),
			tr(c.ClientName),
			tr(c.MembershipPlanName),
			c.StartDate.Format("2006-01-02"),
			c.EndDate.Format("2006-01-02"),
			tr(statusLabel(c.DisplayStatus)),
			fmt.Sprintf("%.2f", c.FinalAmount),
			c.Currency,
		}
		for i, v := range cells {
			align := "L"
			if i == 6 {
				align = "R"
			}
			pdf.CellFormat(widths[i], 6, v, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return nil, "", err
	}

	return buf.Bytes(), exportFilename(gymID, ExportFormatPDF), nil
}

func contractExportRow(c models.ContractResponse) []string {
	return []string{
		fmt.Sprintf("%d", c.ID),
		c.ClientName,
		c.MembershipPlanName,
		c.StartDate.Format("2006-01-02"),
		c.EndDate.Format("2006-01-02"),
		statusLabel(c.DisplayStatus),
		fmt.Sprintf("%.2f", c.BasePrice),
		formatOptionalFloat(c.CustomPrice),
		formatOptionalFloat(c.DiscountPercentage),
		fmt.Sprintf("%.2f", c.FinalAmount),
		c.Currency,
		c.PaymentFrequency,
	}
}

func statusLabel(status string) string {
	switch status {
	case models.ContractStatusActive:
		return "Activo"
	case models.ContractStatusExpiringSoon:
		return "Por vencer"
	case models.ContractStatusExpired:
		return "Vencido"
	case models.ContractStatusCancelled:
		return "Cancelado"
	default:
		return status
	}
}

func optionalFloat(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func formatOptionalFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *v)
}

func exportFilename(gymID uint, format string) string {
	return fmt.Sprintf("contratos_gym_%d_%s.%s", gymID, time.Now().Format("2006-01-02"), format)
}
