package api

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"

	"ledger/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ExportHandler 导出处理器
type ExportHandler struct {
	store LedgerStore
}

// NewExportHandler 创建导出处理器
func NewExportHandler(store LedgerStore) *ExportHandler {
	return &ExportHandler{store: store}
}

var exportHeaders = []string{"ID", "类型", "金额", "类别", "描述", "日期"}

// exportDateLayout 导出时间为本地时区并带 UTC 偏移
const exportDateLayout = "2006-01-02 15:04:05 -07:00"

// excelDigits Excel 数值单元格的有效位数上限
const excelDigits = 15

// collect 按列表接口的筛选条件读取全部记录
func (h *ExportHandler) collect(c *gin.Context) ([]models.Transaction, string, bool) {
	var req TransactionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return nil, "", false
	}
	q, err := req.query()
	if err != nil {
		BadRequest(c, err.Error())
		return nil, "", false
	}

	var list []models.Transaction
	for t, err := range h.store.Find(c.Request.Context(), q) {
		if err != nil {
			storeError(c, err, "查询数据失败")
			return nil, "", false
		}
		list = append(list, t)
	}

	name := "transactions"
	if req.StartTime != "" || req.EndTime != "" {
		name = fmt.Sprintf("transactions_%s_%s", req.StartTime, req.EndTime)
	}
	return list, name, true
}

func exportRow(t models.Transaction) []string {
	return []string{
		fmt.Sprintf("%d", t.ID),
		string(t.Type),
		t.Amount.String(),
		t.Category,
		t.Description,
		t.Date.Local().Format(exportDateLayout),
	}
}

// ExportCSV 导出收支记录为 CSV
// @Summary 导出收支记录
// @Description 筛选条件与列表接口一致
// @Tags 导出
// @Produce text/csv
// @Param type query string false "类型 income/expense"
// @Param category query string false "类别筛选"
// @Param start_time query string false "开始时间 (2024-01-01)"
// @Param end_time query string false "结束时间 (2024-12-31)"
// @Success 200 {file} file "CSV 文件"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/export/csv [get]
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	list, name, ok := h.collect(c)
	if !ok {
		return
	}

	buf := new(bytes.Buffer)
	if err := WriteCSV(buf, list); err != nil {
		InternalError(c, "生成 CSV 失败")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.csv", name))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// WriteCSV 写出带 BOM 的 CSV，便于 Excel 正确显示中文
func WriteCSV(w io.Writer, list []models.Transaction) error {
	if _, err := io.WriteString(w, "\xEF\xBB\xBF"); err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(exportHeaders); err != nil {
		return err
	}
	for _, t := range list {
		if err := writer.Write(exportRow(t)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ExportExcel 导出收支记录为 Excel
// @Summary 导出收支记录为 Excel
// @Tags 导出
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param type query string false "类型 income/expense"
// @Param category query string false "类别筛选"
// @Param start_time query string false "开始时间 (2024-01-01)"
// @Param end_time query string false "结束时间 (2024-12-31)"
// @Success 200 {file} file "xlsx 文件"
// @Router /api/v1/export/excel [get]
func (h *ExportHandler) ExportExcel(c *gin.Context) {
	list, name, ok := h.collect(c)
	if !ok {
		return
	}

	buf, err := WriteExcel(list)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "生成 Excel 失败"))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.xlsx", name))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// WriteExcel 生成收支记录工作簿
func WriteExcel(list []models.Transaction) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "收支记录"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
	if err != nil {
		return nil, err
	}
	dataStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
	if err != nil {
		return nil, err
	}

	// 设置列宽
	f.SetColWidth(sheetName, "A", "B", 10)
	f.SetColWidth(sheetName, "C", "D", 15)
	f.SetColWidth(sheetName, "E", "E", 30)
	f.SetColWidth(sheetName, "F", "F", 20)

	for i, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}
	f.SetCellStyle(sheetName, "A1", "F1", headerStyle)

	for i, t := range list {
		row := i + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), t.ID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), string(t.Type))
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), excelAmount(t.Amount))
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), t.Category)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), t.Description)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), t.Date.Local().Format(exportDateLayout))
		f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("F%d", row), dataStyle)
	}

	return f.WriteToBuffer()
}

// excelAmount 能被 float64 精确表示的金额写为数值，否则写为文本以免丢失精度
func excelAmount(d decimal.Decimal) interface{} {
	f, _ := d.Float64()
	if d.NumDigits() <= excelDigits && decimal.NewFromFloat(f).Equal(d) {
		return f
	}
	return d.String()
}
