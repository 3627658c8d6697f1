package models

import (
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType 收支类型
type TransactionType string

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

// GetTransactionTypes 获取所有收支类型
func GetTransactionTypes() []TransactionType {
	return []TransactionType{TypeIncome, TypeExpense}
}

// ParseTransactionType 解析收支类型
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(s)
	if !t.Valid() {
		return "", fmt.Errorf("未知的收支类型 %q，应为: %v", s, GetTransactionTypes())
	}
	return t, nil
}

// Valid 是否为已知类型
func (t TransactionType) Valid() bool {
	return slices.Contains(GetTransactionTypes(), t)
}

// Transaction 收支记录模型
//
// ID 由存储在首次写入时分配，删除后不会复用。Date 统一以 UTC 存储。
type Transaction struct {
	ID          uint            `json:"id" gorm:"primaryKey;autoIncrement"`
	Type        TransactionType `json:"type" gorm:"size:16;not null"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:text;not null"`
	Category    string          `json:"category" gorm:"not null"`
	Description string          `json:"description" gorm:"not null"`
	Date        time.Time       `json:"date" gorm:"not null"`
}

// TableName 设置表名
func (Transaction) TableName() string {
	return "transactions"
}

// SameFields 比较除 ID 以外的字段；金额按数值、日期按时刻比较
func (t Transaction) SameFields(o Transaction) bool {
	return t.Type == o.Type &&
		t.Amount.Equal(o.Amount) &&
		t.Category == o.Category &&
		t.Description == o.Description &&
		t.Date.Equal(o.Date)
}

// TransactionInput 新建记录的输入，所有字段必填，nil 表示缺失
//
// 输入类型不含 ID 字段，ID 只能由存储分配。
type TransactionInput struct {
	Type        *TransactionType `json:"type" validate:"required,oneof=income expense"`
	Amount      *decimal.Decimal `json:"amount" validate:"required"`
	Category    *string          `json:"category" validate:"required"`
	Description *string          `json:"description" validate:"required"`
	Date        *time.Time       `json:"date" validate:"required"`
}

// NewTransactionInput 以值构造完整输入
func NewTransactionInput(typ TransactionType, amount decimal.Decimal, category, description string, date time.Time) TransactionInput {
	return TransactionInput{
		Type:        &typ,
		Amount:      &amount,
		Category:    &category,
		Description: &description,
		Date:        &date,
	}
}

// Record 转换为待写入的记录（调用方需先校验）
func (in TransactionInput) Record() Transaction {
	return Transaction{
		Type:        *in.Type,
		Amount:      *in.Amount,
		Category:    *in.Category,
		Description: *in.Description,
		Date:        in.Date.UTC(),
	}
}

// TransactionPatch 更新记录的输入，只应用非 nil 字段
type TransactionPatch struct {
	Type        *TransactionType `json:"type,omitempty" validate:"omitnil,oneof=income expense"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Category    *string          `json:"category,omitempty"`
	Description *string          `json:"description,omitempty"`
	Date        *time.Time       `json:"date,omitempty"`
}

// SetType 设置类型
func (p *TransactionPatch) SetType(t TransactionType) *TransactionPatch {
	p.Type = &t
	return p
}

// SetAmount 设置金额
func (p *TransactionPatch) SetAmount(a decimal.Decimal) *TransactionPatch {
	p.Amount = &a
	return p
}

// SetCategory 设置类别
func (p *TransactionPatch) SetCategory(c string) *TransactionPatch {
	p.Category = &c
	return p
}

// SetDescription 设置描述
func (p *TransactionPatch) SetDescription(d string) *TransactionPatch {
	p.Description = &d
	return p
}

// SetDate 设置日期
func (p *TransactionPatch) SetDate(d time.Time) *TransactionPatch {
	p.Date = &d
	return p
}

// Empty 是否没有任何字段
func (p TransactionPatch) Empty() bool {
	return p.Type == nil && p.Amount == nil && p.Category == nil && p.Description == nil && p.Date == nil
}

// Apply 将补丁应用到记录副本上
func (p TransactionPatch) Apply(t Transaction) Transaction {
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Date != nil {
		t.Date = p.Date.UTC()
	}
	return t
}
