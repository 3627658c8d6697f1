package api

import (
	"bytes"
	"encoding/csv"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ledger/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportHandler_ExportCSV(t *testing.T) {
	store := setupStore(t)
	insert(t, store, models.TypeExpense, 99, "餐饮", time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))
	insert(t, store, models.TypeIncome, 5000, "工资", time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC))

	router := gin.New()
	router.GET("/export/csv", NewExportHandler(store).ExportCSV)

	req := httptest.NewRequest("GET", "/export/csv?start_time=2024-01-01&end_time=2024-01-31", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "transactions_2024-01-01_2024-01-31.csv")
	body := w.Body.String()
	assert.Contains(t, body, "金额")
	assert.Contains(t, body, ",99,")
	assert.Contains(t, body, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC).Local().Format(exportDateLayout))
	assert.NotContains(t, body, "工资")
}

func TestWriteCSV_KeepsAmountAndZone(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	list := []models.Transaction{{
		ID:       1,
		Type:     models.TypeExpense,
		Amount:   decimal.RequireFromString("9.999"),
		Category: "coffee",
		Date:     time.Date(2024, 1, 10, 23, 30, 0, 0, loc),
	}}

	buf := new(bytes.Buffer)
	require.NoError(t, WriteCSV(buf, list))
	body := buf.String()
	assert.Contains(t, body, "9.999")
	assert.NotContains(t, body, "10.00")

	// 日期带偏移，可还原为同一时刻
	records, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(body, "\xEF\xBB\xBF"))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	got, err := time.Parse(exportDateLayout, records[1][5])
	require.NoError(t, err)
	assert.True(t, list[0].Date.Equal(got))
}

func TestWriteExcel_Amounts(t *testing.T) {
	date := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	list := []models.Transaction{
		{ID: 1, Type: models.TypeExpense, Amount: decimal.RequireFromString("19.90"), Category: "a", Date: date},
		{ID: 2, Type: models.TypeExpense, Amount: decimal.RequireFromString("0.30000000000000001"), Category: "b", Date: date},
		{ID: 3, Type: models.TypeIncome, Amount: decimal.RequireFromString("12345678901234567.89"), Category: "c", Date: date},
	}

	buf, err := WriteExcel(list)
	require.NoError(t, err)
	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	typ, err := f.GetCellType("收支记录", "C2")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeSharedString, typ)
	v, err := f.GetCellValue("收支记录", "C2")
	require.NoError(t, err)
	assert.Equal(t, "19.9", v)

	v, err = f.GetCellValue("收支记录", "C3")
	require.NoError(t, err)
	assert.Equal(t, "0.30000000000000001", v)
	v, err = f.GetCellValue("收支记录", "C4")
	require.NoError(t, err)
	assert.Equal(t, "12345678901234567.89", v)

	v, err = f.GetCellValue("收支记录", "F2")
	require.NoError(t, err)
	assert.Equal(t, date.Local().Format(exportDateLayout), v)
}

func TestExportHandler_ExportCSV_BadDate(t *testing.T) {
	store := setupStore(t)
	router := gin.New()
	router.GET("/export/csv", NewExportHandler(store).ExportCSV)

	req := httptest.NewRequest("GET", "/export/csv?start_time=2024/01/01", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
}

func TestExportHandler_ExportExcel(t *testing.T) {
	store := setupStore(t)
	insert(t, store, models.TypeExpense, 12, "transport", time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))
	insert(t, store, models.TypeIncome, 1000, "salary", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	router := gin.New()
	router.GET("/export/excel", NewExportHandler(store).ExportExcel)

	req := httptest.NewRequest("GET", "/export/excel?type=income", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, 200, w.Code)

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("收支记录")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "ID", rows[0][0])
	assert.Equal(t, "2", rows[1][0])
	assert.Equal(t, "income", rows[1][1])
	assert.Equal(t, "salary", rows[1][3])
}
