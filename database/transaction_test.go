package database

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ledger/config"
	"ledger/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestStore_InsertThenGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	in := groceries()
	id, err := s.Insert(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, uint(1), id)

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, models.TypeExpense, got.Type)
	assert.True(t, decimal.RequireFromString("42.5").Equal(got.Amount), "amount %s", got.Amount)
	assert.Equal(t, "groceries", got.Category)
	assert.Equal(t, "weekly shop", got.Description)
	assert.True(t, day(2024, 1, 15).Equal(got.Date))
}

func TestStore_InsertNormalizesDateToUTC(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	loc := time.FixedZone("UTC+8", 8*3600)
	when := time.Date(2024, 3, 1, 8, 30, 0, 0, loc)
	in := models.NewTransactionInput(models.TypeExpense, decimal.NewFromInt(5), "coffee", "", when)

	id, err := s.Insert(ctx, in)
	require.NoError(t, err)
	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, when.Equal(got.Date))
	assert.Equal(t, time.UTC, got.Date.Location())
}

func TestStore_AmountRoundTripsExactly(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	amounts := []string{
		"12345678901234567.89",
		"0.30000000000000001",
		"123456789.123456789",
		"-0.000000000000000001",
	}
	for _, a := range amounts {
		in := models.NewTransactionInput(models.TypeIncome, decimal.RequireFromString(a), "bonus", "", day(2024, 5, 1))
		id, err := s.Insert(ctx, in)
		require.NoError(t, err)

		got, err := s.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, a, got.Amount.String())
		assert.True(t, in.Record().SameFields(got), a)
	}

	patch := (&models.TransactionPatch{}).SetAmount(decimal.RequireFromString("98765432109876543.21"))
	updated, err := s.Update(ctx, 1, *patch)
	require.NoError(t, err)
	got, err := s.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "98765432109876543.21", got.Amount.String())
	assert.True(t, updated.SameFields(got))
}

func TestStore_InsertValidation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	bad := models.TransactionType("transfer")
	cases := []struct {
		name  string
		in    func() models.TransactionInput
		field string
	}{
		{"缺少类型", func() models.TransactionInput { in := groceries(); in.Type = nil; return in }, "type"},
		{"未知类型", func() models.TransactionInput { in := groceries(); in.Type = &bad; return in }, "type"},
		{"缺少金额", func() models.TransactionInput { in := groceries(); in.Amount = nil; return in }, "amount"},
		{"缺少类别", func() models.TransactionInput { in := groceries(); in.Category = nil; return in }, "category"},
		{"缺少描述", func() models.TransactionInput { in := groceries(); in.Description = nil; return in }, "description"},
		{"缺少日期", func() models.TransactionInput { in := groceries(); in.Date = nil; return in }, "date"},
		{"零值日期", func() models.TransactionInput { in := groceries(); in.Date = &time.Time{}; return in }, "date"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := s.Insert(ctx, c.in())
			require.ErrorIs(t, err, ErrValidation)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, c.field, verr.Field)
		})
	}

	// 校验失败不写入任何数据
	all, err := Collect(s.ListAll(ctx))
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestStore_InsertAcceptsEmptyStringsAndNegativeAmounts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	in := models.NewTransactionInput(models.TypeExpense, decimal.NewFromInt(-3), "", "", day(2024, 2, 2))
	id, err := s.Insert(ctx, in)
	require.NoError(t, err)

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, got.SameFields(in.Record()))
}

func TestStore_GetNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Get(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Update(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.Insert(ctx, groceries())
	require.NoError(t, err)

	patch := (&models.TransactionPatch{}).
		SetAmount(decimal.RequireFromString("50.25")).
		SetDescription("big weekly shop")
	updated, err := s.Update(ctx, id, *patch)
	require.NoError(t, err)
	assert.Equal(t, id, updated.ID)

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, updated.SameFields(got))
	assert.True(t, decimal.RequireFromString("50.25").Equal(got.Amount))
	assert.Equal(t, "big weekly shop", got.Description)
	// 未修改的字段保持不变
	assert.Equal(t, models.TypeExpense, got.Type)
	assert.Equal(t, "groceries", got.Category)
	assert.True(t, day(2024, 1, 15).Equal(got.Date))
}

func TestStore_UpdateAllFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.Insert(ctx, groceries())
	require.NoError(t, err)

	want := salary().Record()
	patch := (&models.TransactionPatch{}).
		SetType(want.Type).
		SetAmount(want.Amount).
		SetCategory(want.Category).
		SetDescription(want.Description).
		SetDate(want.Date)
	_, err = s.Update(ctx, id, *patch)
	require.NoError(t, err)

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, want.SameFields(got))
}

func TestStore_UpdateErrors(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Update(ctx, 7, *(&models.TransactionPatch{}).SetCategory("x"))
	assert.ErrorIs(t, err, ErrNotFound)

	// 空补丁只检查记录是否存在
	_, err = s.Update(ctx, 7, models.TransactionPatch{})
	assert.ErrorIs(t, err, ErrNotFound)

	id, err := s.Insert(ctx, groceries())
	require.NoError(t, err)

	_, err = s.Update(ctx, id, *(&models.TransactionPatch{}).SetType("refund"))
	assert.ErrorIs(t, err, ErrValidation)
	_, err = s.Update(ctx, id, *(&models.TransactionPatch{}).SetDate(time.Time{}))
	assert.ErrorIs(t, err, ErrValidation)

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, got.SameFields(groceries().Record()))
}

func TestStore_DeleteIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.Insert(ctx, groceries())
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, id))
	_, err = s.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, s.Delete(ctx, id))
	assert.NoError(t, s.Delete(ctx, 999))
}

func TestStore_IDsAreNeverReused(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id1, err := s.Insert(ctx, groceries())
	require.NoError(t, err)
	id2, err := s.Insert(ctx, salary())
	require.NoError(t, err)
	assert.Equal(t, uint(1), id1)
	assert.Equal(t, uint(2), id2)

	// 先删除最大 ID，AUTOINCREMENT 仍不会复用
	require.NoError(t, s.Delete(ctx, id2))
	require.NoError(t, s.Delete(ctx, id1))

	id3, err := s.Insert(ctx, groceries())
	require.NoError(t, err)
	assert.Equal(t, uint(3), id3)
}

func TestStore_ConcurrentInserts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	const workers, perWorker = 4, 10
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = make(map[uint]bool)
	)
	errs := make(chan error, workers*perWorker)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				id, err := s.Insert(ctx, groceries())
				if err != nil {
					errs <- err
					continue
				}
				mu.Lock()
				ids[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.Len(t, ids, workers*perWorker)

	total, err := s.Count(ctx, Query{})
	require.NoError(t, err)
	assert.Equal(t, int64(workers*perWorker), total)
}

func TestStore_CancelledContext(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Insert(ctx, groceries())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrStorageWrite)
}

// setupMockStore 使用 sqlmock 连接构造已打开的 Store，用于模拟介质写入失败
func setupMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	mock.ExpectQuery("select sqlite_version").
		WillReturnRows(sqlmock.NewRows([]string{"sqlite_version()"}).AddRow("3.30.1"))

	gormDB, err := gorm.Open(sqlite.New(sqlite.Config{Conn: sqlDB}), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)

	s := New(config.DatabaseConfig{BatchSize: 10})
	s.db = gormDB
	t.Cleanup(func() { sqlDB.Close() })
	return s, mock
}

func TestStore_InsertStorageFull(t *testing.T) {
	s, mock := setupMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `transactions`").
		WillReturnError(sqlite3.Error{Code: sqlite3.ErrFull})
	mock.ExpectRollback()

	_, err := s.Insert(context.Background(), groceries())
	require.ErrorIs(t, err, ErrStorageWrite)
	assert.Contains(t, err.Error(), "磁盘空间不足")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_DeleteStorageWriteError(t *testing.T) {
	s, mock := setupMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `transactions`").
		WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	err := s.Delete(context.Background(), 1)
	require.ErrorIs(t, err, ErrStorageWrite)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_InvalidInputNeverReachesMedium(t *testing.T) {
	s, mock := setupMockStore(t)

	in := groceries()
	in.Category = nil
	_, err := s.Insert(context.Background(), in)
	require.ErrorIs(t, err, ErrValidation)
	// 没有任何 SQL 被执行
	require.NoError(t, mock.ExpectationsWereMet())
}
