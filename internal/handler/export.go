package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/richflow/richflow/internal/finance"
)

// ExportXLSX streams the user's full records as an Excel workbook with one
// sheet per category plus a balance-sheet summary.
func (h *Handler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	rec, err := h.loadRecords(r.Context(), userID)
	if err != nil {
		storeError(w, "ExportXLSX", err)
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	writeSheet := func(name string, header []string, rows [][]any) error {
		idx, err := f.NewSheet(name)
		if err != nil {
			return err
		}
		for col, title := range header {
			cell, _ := excelize.CoordinatesToCellName(col+1, 1)
			if err := f.SetCellValue(name, cell, title); err != nil {
				return err
			}
		}
		for i, row := range rows {
			for col, v := range row {
				cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
				if err := f.SetCellValue(name, cell, v); err != nil {
					return err
				}
			}
		}
		f.SetActiveSheet(idx)
		return nil
	}

	incomeRows := make([][]any, 0, len(rec.income))
	for _, it := range rec.income {
		incomeRows = append(incomeRows, []any{it.Name, it.Amount.String(), string(it.Type), string(it.Quadrant)})
	}
	expenseRows := make([][]any, 0, len(rec.expenses))
	for _, it := range rec.expenses {
		expenseRows = append(expenseRows, []any{it.Name, it.Amount.String()})
	}
	assetRows := make([][]any, 0, len(rec.assets))
	for _, it := range rec.assets {
		assetRows = append(assetRows, []any{it.Name, it.Value.String()})
	}
	liabilityRows := make([][]any, 0, len(rec.liabilities))
	for _, it := range rec.liabilities {
		liabilityRows = append(liabilityRows, []any{it.Name, it.Value.String()})
	}
	bs := finance.ComputeBalanceSheet(rec.assets, rec.liabilities, rec.cash)
	summaryRows := [][]any{
		{"Total Assets", bs.TotalAssets.String()},
		{"Total Liabilities", bs.TotalLiabilities.String()},
		{"Cash Savings", bs.CashSavings.String()},
		{"Net Worth", bs.NetWorth.String()},
	}

	sheets := []struct {
		name   string
		header []string
		rows   [][]any
	}{
		{"Income", []string{"Name", "Amount", "Type", "Quadrant"}, incomeRows},
		{"Expenses", []string{"Name", "Amount"}, expenseRows},
		{"Assets", []string{"Name", "Value"}, assetRows},
		{"Liabilities", []string{"Name", "Value"}, liabilityRows},
		{"Balance Sheet", []string{"Item", "Value"}, summaryRows},
	}
	for _, sh := range sheets {
		if err := writeSheet(sh.name, sh.header, sh.rows); err != nil {
			slog.Error("ExportXLSX: sheet write failed", "sheet", sh.name, "error", err)
			respondError(w, http.StatusInternalServerError, "export failed")
			return
		}
	}
	// Drop the default sheet excelize creates.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		slog.Warn("ExportXLSX: failed to remove default sheet", "error", err)
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", "richflow_"+time.Now().Format("20060102")+".xlsx"))
	if err := f.Write(w); err != nil {
		slog.Error("ExportXLSX: write failed", "error", err)
	}
}
