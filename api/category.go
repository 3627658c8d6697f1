package api

import (
	"ledger/models"

	"github.com/gin-gonic/gin"
)

// CategoryHandler 类别查询
type CategoryHandler struct {
	store LedgerStore
}

func NewCategoryHandler(store LedgerStore) *CategoryHandler {
	return &CategoryHandler{store: store}
}

// List 列出已使用的类别
// @Summary 获取已使用的类别列表
// @Description 返回记录中出现过的类别名称，按名称升序去重。可按类型筛选。
// @Tags 收支记录
// @Produce json
// @Param type query string false "类型 income/expense"
// @Success 200 {object} Response{data=[]string} "获取成功"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	var typ *models.TransactionType
	if s := c.Query("type"); s != "" {
		t, err := models.ParseTransactionType(s)
		if err != nil {
			BadRequest(c, err.Error())
			return
		}
		typ = &t
	}

	list, err := h.store.Categories(c.Request.Context(), typ)
	if err != nil {
		storeError(c, err, "查询失败")
		return
	}
	Success(c, list)
}
