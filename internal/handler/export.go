package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"finanz-server/internal/models"
	"finanz-server/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ExportHandler streams the account's transactions as CSV or XLSX.
type ExportHandler struct {
	DB *gorm.DB
}

func NewExportHandler(db *gorm.DB) *ExportHandler {
	return &ExportHandler{DB: db}
}

var exportHeaders = []string{"Date", "Type", "Category", "Value", "Destination", "Description"}

// exportRows loads the transactions with the shared period filter.
func (h *ExportHandler) exportRows(c *gin.Context, accountID string) ([]models.Transaction, bool) {
	base := h.DB.Model(&models.Transaction{}).
		Preload("Category").
		Where("account_id = ?", accountID)

	if startStr := c.Query("start"); startStr != "" {
		start, err := time.Parse("2006-01-02", startStr)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "start must be YYYY-MM-DD")
			return nil, false
		}
		base = base.Where("created_at >= ?", start)
	}
	if endStr := c.Query("end"); endStr != "" {
		end, err := time.Parse("2006-01-02", endStr)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "end must be YYYY-MM-DD")
			return nil, false
		}
		base = base.Where("created_at < ?", end.Add(24*time.Hour))
	}

	var transactions []models.Transaction
	if err := base.Order("created_at DESC").Find(&transactions).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load transactions")
		return nil, false
	}
	return transactions, true
}

// ExportCSV streams the transaction list as a CSV attachment.
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	account := requireAccount(c, h.DB)
	if account == nil {
		return
	}
	transactions, ok := h.exportRows(c, account.ID)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"transactions_%s.csv\"",
		time.Now().Format("20060102")))

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write(exportHeaders)
	for _, t := range transactions {
		writer.Write([]string{
			t.CreatedAt.Format("2006-01-02"),
			t.Type,
			t.Category.Name,
			t.Value.StringFixed(2),
			t.Destination,
			t.Description,
		})
	}
}

// ExportXLSX writes the transaction list as a spreadsheet.
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	account := requireAccount(c, h.DB)
	if account == nil {
		return
	}
	transactions, ok := h.exportRows(c, account.ID)
	if !ok {
		return
	}

	f := excelize.NewFile()
	sheetName := "Transactions"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create sheet")
		return
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for i, header := range exportHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for idx, t := range transactions {
		row := idx + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), t.CreatedAt.Format("2006-01-02"))
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), t.Type)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), t.Category.Name)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), t.Value.StringFixed(2))
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), t.Destination)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), t.Description)
	}

	f.SetColWidth(sheetName, "A", "A", 12)
	f.SetColWidth(sheetName, "B", "B", 10)
	f.SetColWidth(sheetName, "C", "C", 18)
	f.SetColWidth(sheetName, "D", "D", 12)
	f.SetColWidth(sheetName, "E", "E", 20)
	f.SetColWidth(sheetName, "F", "F", 30)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"transactions_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to write spreadsheet")
	}
}
