package database

import (
	"context"
	"fmt"
	"iter"
	"time"

	"ledger/models"

	"gorm.io/gorm"
)

// Query 组合筛选条件，nil 字段不参与筛选，多个条件之间为 AND
type Query struct {
	Type     *models.TransactionType
	Category *string
	From     *time.Time // 含
	To       *time.Time // 含
}

// QueryOption 分页选项
type QueryOption func(*page)

type page struct {
	limit  int
	offset int
}

// WithLimit 最多返回 n 条，n <= 0 表示不限制
func WithLimit(n int) QueryOption {
	return func(p *page) {
		p.limit = max(n, 0)
	}
}

// WithOffset 跳过前 n 条
func WithOffset(n int) QueryOption {
	return func(p *page) {
		p.offset = max(n, 0)
	}
}

// empty 日期区间为空时无需查询
func (q Query) empty() bool {
	return q.From != nil && q.To != nil && q.From.After(*q.To)
}

func (q Query) validate() error {
	if q.Type != nil && !q.Type.Valid() {
		return &ValidationError{Field: "type", Reason: "必须为 income expense 之一"}
	}
	return nil
}

func (q Query) scope(db *gorm.DB) *gorm.DB {
	if q.Type != nil {
		db = db.Where("type = ?", *q.Type)
	}
	if q.Category != nil {
		db = db.Where("category = ?", *q.Category)
	}
	if q.From != nil {
		db = db.Where("date >= ?", q.From.UTC())
	}
	if q.To != nil {
		db = db.Where("date <= ?", q.To.UTC())
	}
	return db
}

// QueryByType 按收支类型查询
func (s *Store) QueryByType(ctx context.Context, typ models.TransactionType, opts ...QueryOption) iter.Seq2[models.Transaction, error] {
	return s.Find(ctx, Query{Type: &typ}, opts...)
}

// QueryByCategory 按类别查询
func (s *Store) QueryByCategory(ctx context.Context, category string, opts ...QueryOption) iter.Seq2[models.Transaction, error] {
	return s.Find(ctx, Query{Category: &category}, opts...)
}

// QueryByDateRange 查询日期落在 [start, end] 内的记录
func (s *Store) QueryByDateRange(ctx context.Context, start, end time.Time, opts ...QueryOption) iter.Seq2[models.Transaction, error] {
	return s.Find(ctx, Query{From: &start, To: &end}, opts...)
}

// ListAll 全部记录
func (s *Store) ListAll(ctx context.Context, opts ...QueryOption) iter.Seq2[models.Transaction, error] {
	return s.Find(ctx, Query{}, opts...)
}

// Find 按 ID 升序返回满足条件的记录
//
// 序列是惰性的：按 batch_size 分批读取，批与批之间不持有游标，循环体内可以继续读写存储。
// 每次 range 都会重新执行查询。出错时产出一次错误后结束。
func (s *Store) Find(ctx context.Context, q Query, opts ...QueryOption) iter.Seq2[models.Transaction, error] {
	var p page
	for _, opt := range opts {
		opt(&p)
	}

	return func(yield func(models.Transaction, error) bool) {
		db, err := s.conn()
		if err != nil {
			yield(models.Transaction{}, err)
			return
		}
		if err := q.validate(); err != nil {
			yield(models.Transaction{}, err)
			return
		}
		if q.empty() {
			return
		}

		var lastID uint
		offset := p.offset
		remaining := p.limit
		for {
			size := s.cfg.BatchSize
			if p.limit > 0 {
				if remaining == 0 {
					return
				}
				size = min(size, remaining)
			}

			tx := q.scope(db.WithContext(ctx).Model(&models.Transaction{})).
				Where("id > ?", lastID).
				Order("id ASC").
				Limit(size)
			if offset > 0 {
				tx = tx.Offset(offset)
				offset = 0
			}

			var batch []models.Transaction
			if err := tx.Find(&batch).Error; err != nil {
				yield(models.Transaction{}, fmt.Errorf("查询记录失败: %w", err))
				return
			}
			for _, t := range batch {
				if !yield(t, nil) {
					return
				}
			}
			if len(batch) < size {
				return
			}
			lastID = batch[len(batch)-1].ID
			remaining -= len(batch)
		}
	}
}

// Count 满足条件的记录总数，忽略分页
func (s *Store) Count(ctx context.Context, q Query) (int64, error) {
	db, err := s.conn()
	if err != nil {
		return 0, err
	}
	if err := q.validate(); err != nil {
		return 0, err
	}
	if q.empty() {
		return 0, nil
	}
	var total int64
	if err := q.scope(db.WithContext(ctx).Model(&models.Transaction{})).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("统计记录失败: %w", err)
	}
	return total, nil
}

// Collect 将序列收集为切片，遇到错误立即返回
func Collect(seq iter.Seq2[models.Transaction, error]) ([]models.Transaction, error) {
	var list []models.Transaction
	for t, err := range seq {
		if err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, nil
}

// Categories 已使用的类别，按名称升序去重；typ 非空时只统计该类型
func (s *Store) Categories(ctx context.Context, typ *models.TransactionType) ([]string, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	q := Query{Type: typ}
	if err := q.validate(); err != nil {
		return nil, err
	}

	categories := []string{}
	err = q.scope(db.WithContext(ctx).Model(&models.Transaction{})).
		Distinct("category").
		Order("category ASC").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, fmt.Errorf("查询类别失败: %w", err)
	}
	return categories, nil
}
