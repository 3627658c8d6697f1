package api

import (
	"context"
	"slices"

	"ledger/database"
	"ledger/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CategoryTotal 单个类别的合计
type CategoryTotal struct {
	Type     models.TransactionType `json:"type" example:"expense"`
	Category string                 `json:"category" example:"groceries"`
	Total    decimal.Decimal        `json:"total" example:"123.45"`
	Count    int                    `json:"count" example:"3"`
}

// SummaryResponse 收支汇总返回
type SummaryResponse struct {
	TotalIncome  decimal.Decimal `json:"total_income" example:"5000.00"`
	TotalExpense decimal.Decimal `json:"total_expense" example:"123.45"`
	Balance      decimal.Decimal `json:"balance" example:"4876.55"`
	Count        int             `json:"count" example:"12"`
	Categories   []CategoryTotal `json:"categories"`
}

// Summarize 按查询条件汇总收支，类别按类型、合计降序排列
func Summarize(ctx context.Context, store LedgerStore, q database.Query) (SummaryResponse, error) {
	resp := SummaryResponse{
		TotalIncome:  decimal.Zero,
		TotalExpense: decimal.Zero,
		Categories:   []CategoryTotal{},
	}

	type key struct {
		typ      models.TransactionType
		category string
	}
	byCategory := make(map[key]*CategoryTotal)

	for t, err := range store.Find(ctx, q) {
		if err != nil {
			return resp, err
		}
		resp.Count++
		switch t.Type {
		case models.TypeIncome:
			resp.TotalIncome = resp.TotalIncome.Add(t.Amount)
		case models.TypeExpense:
			resp.TotalExpense = resp.TotalExpense.Add(t.Amount)
		}

		k := key{t.Type, t.Category}
		ct, ok := byCategory[k]
		if !ok {
			ct = &CategoryTotal{Type: t.Type, Category: t.Category, Total: decimal.Zero}
			byCategory[k] = ct
		}
		ct.Total = ct.Total.Add(t.Amount)
		ct.Count++
	}

	for _, ct := range byCategory {
		resp.Categories = append(resp.Categories, *ct)
	}
	slices.SortFunc(resp.Categories, func(a, b CategoryTotal) int {
		if a.Type != b.Type {
			if a.Type < b.Type {
				return -1
			}
			return 1
		}
		if c := b.Total.Cmp(a.Total); c != 0 {
			return c
		}
		if a.Category < b.Category {
			return -1
		}
		if a.Category > b.Category {
			return 1
		}
		return 0
	})
	resp.Balance = resp.TotalIncome.Sub(resp.TotalExpense)
	return resp, nil
}

// SummaryHandler 统计处理器
type SummaryHandler struct {
	store LedgerStore
}

// NewSummaryHandler 创建统计处理器
func NewSummaryHandler(store LedgerStore) *SummaryHandler {
	return &SummaryHandler{store: store}
}

// GetSummary 获取收入/支出汇总
// @Summary 获取收入/支出汇总
// @Description 按时间范围、类型、类别统计收入总和、支出总和、结余和各类别合计。不传 start_time/end_time 则统计全部时间。
// @Tags 统计
// @Produce json
// @Param type query string false "类型 income/expense"
// @Param category query string false "类别筛选"
// @Param start_time query string false "开始时间 (YYYY-MM-DD)，例如 2024-01-01"
// @Param end_time query string false "结束时间 (YYYY-MM-DD)，例如 2024-12-31"
// @Success 200 {object} Response{data=SummaryResponse} "获取成功"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/statistics/summary [get]
func (h *SummaryHandler) GetSummary(c *gin.Context) {
	var req TransactionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	q, err := req.query()
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	resp, err := Summarize(c.Request.Context(), h.store, q)
	if err != nil {
		storeError(c, err, "统计失败")
		return
	}

	Success(c, resp)
}
