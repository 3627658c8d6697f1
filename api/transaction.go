package api

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strconv"

	"ledger/database"
	"ledger/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// LedgerStore 处理器依赖的账本存储操作
type LedgerStore interface {
	Insert(ctx context.Context, in models.TransactionInput) (uint, error)
	Get(ctx context.Context, id uint) (models.Transaction, error)
	Update(ctx context.Context, id uint, patch models.TransactionPatch) (models.Transaction, error)
	Delete(ctx context.Context, id uint) error
	Find(ctx context.Context, q database.Query, opts ...database.QueryOption) iter.Seq2[models.Transaction, error]
	Count(ctx context.Context, q database.Query) (int64, error)
	Categories(ctx context.Context, typ *models.TransactionType) ([]string, error)
}

// TransactionHandler 收支记录处理器
type TransactionHandler struct {
	store LedgerStore
}

// NewTransactionHandler 创建收支记录处理器
func NewTransactionHandler(store LedgerStore) *TransactionHandler {
	return &TransactionHandler{store: store}
}

// TransactionRequest 创建/更新收支记录请求
//
// 创建时全部字段必填；更新时只修改出现的字段。
type TransactionRequest struct {
	Type        *string          `json:"type" example:"expense"`
	Amount      *decimal.Decimal `json:"amount" example:"42.50"`
	Category    *string          `json:"category" example:"groceries"`
	Description *string          `json:"description" example:"weekly shop"`
	Date        *string          `json:"date" example:"2024-01-15"`
}

// patch 将请求转换为补丁，未出现的字段保持 nil
func (r TransactionRequest) patch() (models.TransactionPatch, error) {
	var p models.TransactionPatch
	if r.Type != nil {
		typ, err := models.ParseTransactionType(*r.Type)
		if err != nil {
			return p, err
		}
		p.SetType(typ)
	}
	p.Amount = r.Amount
	p.Category = r.Category
	p.Description = r.Description
	if r.Date != nil {
		d, err := models.ParseDate(*r.Date)
		if err != nil {
			return p, err
		}
		p.SetDate(d)
	}
	return p, nil
}

// input 将请求转换为新建输入，缺失字段由存储校验
func (r TransactionRequest) input() (models.TransactionInput, error) {
	p, err := r.patch()
	if err != nil {
		return models.TransactionInput{}, err
	}
	return models.TransactionInput{
		Type:        p.Type,
		Amount:      p.Amount,
		Category:    p.Category,
		Description: p.Description,
		Date:        p.Date,
	}, nil
}

// Create 创建收支记录
// @Summary 创建收支记录
// @Tags 收支记录
// @Accept json
// @Produce json
// @Param request body TransactionRequest true "收支记录"
// @Success 200 {object} Response{data=models.Transaction} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/transactions [post]
func (h *TransactionHandler) Create(c *gin.Context) {
	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	in, err := req.input()
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	id, err := h.store.Insert(ctx, in)
	if err != nil {
		storeError(c, err, "创建收支记录失败")
		return
	}
	t, err := h.store.Get(ctx, id)
	if err != nil {
		storeError(c, err, "创建收支记录失败")
		return
	}

	SuccessWithMessage(c, "创建成功", t)
}

// Get 获取单条收支记录
// @Summary 获取单条收支记录
// @Tags 收支记录
// @Produce json
// @Param id path int true "记录ID"
// @Success 200 {object} Response{data=models.Transaction} "获取成功"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/transactions/{id} [get]
func (h *TransactionHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	t, err := h.store.Get(c.Request.Context(), id)
	if err != nil {
		storeError(c, err, "查询失败")
		return
	}

	Success(c, t)
}

// Update 更新收支记录
// @Summary 更新收支记录
// @Tags 收支记录
// @Accept json
// @Produce json
// @Param id path int true "记录ID"
// @Param request body TransactionRequest true "要修改的字段"
// @Success 200 {object} Response{data=models.Transaction} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/transactions/{id} [put]
func (h *TransactionHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	patch, err := req.patch()
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	t, err := h.store.Update(c.Request.Context(), id, patch)
	if err != nil {
		storeError(c, err, "更新失败")
		return
	}

	SuccessWithMessage(c, "更新成功", t)
}

// Delete 删除收支记录，记录不存在时同样返回成功
// @Summary 删除收支记录
// @Tags 收支记录
// @Produce json
// @Param id path int true "记录ID"
// @Success 200 {object} Response "删除成功"
// @Router /api/v1/transactions/{id} [delete]
func (h *TransactionHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		storeError(c, err, "删除失败")
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}

// TransactionListRequest 收支记录列表请求
type TransactionListRequest struct {
	Page      int    `form:"page" example:"1"`
	PageSize  int    `form:"page_size" example:"10"`
	Type      string `form:"type" example:"expense"`
	Category  string `form:"category" example:"groceries"`
	StartTime string `form:"start_time" example:"2024-01-01"`
	EndTime   string `form:"end_time" example:"2024-12-31"`
}

// query 转换为存储查询条件；结束日期只有日期部分时包含当天
func (r TransactionListRequest) query() (database.Query, error) {
	var q database.Query
	if r.Type != "" {
		typ, err := models.ParseTransactionType(r.Type)
		if err != nil {
			return q, err
		}
		q.Type = &typ
	}
	if r.Category != "" {
		category := r.Category
		q.Category = &category
	}
	if r.StartTime != "" {
		start, err := models.ParseDate(r.StartTime)
		if err != nil {
			return q, fmt.Errorf("开始%w", err)
		}
		q.From = &start
	}
	if r.EndTime != "" {
		end, err := models.ParseRangeEnd(r.EndTime)
		if err != nil {
			return q, fmt.Errorf("结束%w", err)
		}
		q.To = &end
	}
	return q, nil
}

// List 获取收支记录列表
// @Summary 获取收支记录列表
// @Description 按 ID 升序返回，支持分页和按类型、类别、时间范围筛选
// @Tags 收支记录
// @Produce json
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Param type query string false "类型 income/expense"
// @Param category query string false "类别筛选"
// @Param start_time query string false "开始时间 (2024-01-01)"
// @Param end_time query string false "结束时间 (2024-12-31)"
// @Success 200 {object} Response{data=PageResponse{list=[]models.Transaction}} "获取成功"
// @Router /api/v1/transactions [get]
func (h *TransactionHandler) List(c *gin.Context) {
	var req TransactionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	// 默认分页参数
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 10
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	q, err := req.query()
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	total, err := h.store.Count(ctx, q)
	if err != nil {
		storeError(c, err, "查询失败")
		return
	}

	list := make([]models.Transaction, 0, req.PageSize)
	offset := (req.Page - 1) * req.PageSize
	for t, err := range h.store.Find(ctx, q, database.WithOffset(offset), database.WithLimit(req.PageSize)) {
		if err != nil {
			storeError(c, err, "查询失败")
			return
		}
		list = append(list, t)
	}

	Success(c, PageResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		List:     list,
	})
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		BadRequest(c, "无效的ID")
		return 0, false
	}
	return uint(id), true
}

// storeError 按错误类型选择响应码
func storeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, database.ErrValidation):
		BadRequest(c, err.Error())
	case errors.Is(err, database.ErrNotFound):
		NotFound(c, "记录不存在")
	default:
		InternalError(c, SafeErrorMessage(err, fallback))
	}
}
