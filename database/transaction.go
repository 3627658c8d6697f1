package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ledger/models"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// transactionColumns 更新时写入的全部字段
var transactionColumns = []string{"type", "amount", "category", "description", "date"}

// Insert 新建记录并返回分配的 ID
func (s *Store) Insert(ctx context.Context, in models.TransactionInput) (uint, error) {
	if err := s.check(in, in.Date); err != nil {
		return 0, err
	}
	db, err := s.conn()
	if err != nil {
		return 0, err
	}

	record := in.Record()
	if err := db.WithContext(ctx).Create(&record).Error; err != nil {
		return 0, writeError("新建记录", err)
	}
	return record.ID, nil
}

// Get 按 ID 获取记录
func (s *Store) Get(ctx context.Context, id uint) (models.Transaction, error) {
	var t models.Transaction
	db, err := s.conn()
	if err != nil {
		return t, err
	}

	if err := db.WithContext(ctx).First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return t, fmt.Errorf("%w: id=%d", ErrNotFound, id)
		}
		return t, fmt.Errorf("查询记录失败: %w", err)
	}
	return t, nil
}

// Update 用补丁中的字段替换记录对应字段，返回更新后的记录
func (s *Store) Update(ctx context.Context, id uint, patch models.TransactionPatch) (models.Transaction, error) {
	var updated models.Transaction
	if err := s.check(patch, patch.Date); err != nil {
		return updated, err
	}
	db, err := s.conn()
	if err != nil {
		return updated, err
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.Transaction
		if err := tx.First(&current, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: id=%d", ErrNotFound, id)
			}
			return err
		}
		updated = patch.Apply(current)
		if patch.Empty() {
			return nil
		}
		result := tx.Model(&models.Transaction{ID: id}).Select(transactionColumns).Updates(&updated)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: id=%d", ErrNotFound, id)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.Transaction{}, err
		}
		return models.Transaction{}, writeError("更新记录", err)
	}
	return updated, nil
}

// Delete 删除记录；记录不存在时同样返回 nil，便于调用方重试
func (s *Store) Delete(ctx context.Context, id uint) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	if err := db.WithContext(ctx).Delete(&models.Transaction{}, id).Error; err != nil {
		return writeError("删除记录", err)
	}
	return nil
}

// check 校验输入结构体；零值日期视为缺失
func (s *Store) check(v any, date *time.Time) error {
	if err := s.validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return &ValidationError{Field: verrs[0].Field(), Reason: reason(verrs[0])}
		}
		return &ValidationError{Reason: err.Error()}
	}
	if date != nil && date.IsZero() {
		return &ValidationError{Field: "date", Reason: "不能为空"}
	}
	return nil
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "不能为空"
	case "oneof":
		return "必须为 " + fe.Param() + " 之一"
	default:
		return "不合法"
	}
}
