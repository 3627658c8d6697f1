package database

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ledger/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// rawRow 直接读取磁盘上的原始列值
type rawRow struct {
	ID          int64
	Type        string
	Amount      string
	Category    string
	Description string
	Date        string
}

func rawRows(t *testing.T, s *Store) []rawRow {
	t.Helper()
	db, err := s.conn()
	require.NoError(t, err)
	var rows []rawRow
	require.NoError(t, db.Raw("SELECT id, type, CAST(amount AS TEXT) AS amount, category, description, CAST(date AS TEXT) AS date FROM transactions ORDER BY id").Scan(&rows).Error)
	return rows
}

// schemaV2 在 v1 基础上统一类别为小写并为 description 建立索引
func schemaV2(calls *int) []SchemaVersion {
	versions := DefaultSchema()
	return append(versions, SchemaVersion{
		Version: 2,
		Indexes: []string{"type", "amount", "category", "date", "description"},
		Migrate: func(tx *gorm.DB) error {
			*calls++
			return tx.Exec("UPDATE transactions SET category = LOWER(TRIM(category))").Error
		},
	})
}

func TestMigrate_ReopenAtSameVersionIsNoop(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	calls := 0
	counting := DefaultSchema()
	inner := counting[0].Migrate
	counting[0].Migrate = func(tx *gorm.DB) error {
		calls++
		return inner(tx)
	}

	s := New(testConfig(dir), WithLogger(logger.Discard), WithSchema(counting...))
	require.NoError(t, s.Open(ctx))
	seed(t, s)
	before := rawRows(t, s)
	require.NoError(t, s.Close())
	assert.Equal(t, 1, calls)

	reopened := New(testConfig(dir), WithLogger(logger.Discard), WithSchema(counting...))
	require.NoError(t, reopened.Open(ctx))
	defer reopened.Close()

	assert.Equal(t, 1, calls, "已是目标版本时不执行迁移步骤")
	assert.Equal(t, before, rawRows(t, reopened))
}

func TestMigrate_UpgradeRunsStepsInOrder(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s := New(testConfig(dir), WithLogger(logger.Discard))
	require.NoError(t, s.Open(ctx))
	id, err := s.Insert(ctx, models.NewTransactionInput(models.TypeExpense, groceries().Record().Amount, "  Groceries ", "", day(2024, 1, 5)))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	calls := 0
	upgraded := New(testConfig(dir), WithLogger(logger.Discard), WithSchema(schemaV2(&calls)...), WithTargetVersion(2))
	require.NoError(t, upgraded.Open(ctx))
	defer upgraded.Close()

	assert.Equal(t, 1, calls)
	version, err := upgraded.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, version)

	got, err := upgraded.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "groceries", got.Category)

	fields, err := upgraded.IndexedFields(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"type", "amount", "category", "date", "description"}, fields)
}

func TestMigrate_FreshStoreAppliesAllVersions(t *testing.T) {
	calls := 0
	s := newTestStore(t, WithSchema(schemaV2(&calls)...))

	version, err := s.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, version)
	assert.Equal(t, 1, calls)
}

func TestMigrate_DropsIndexesRemovedFromVersion(t *testing.T) {
	versions := append(DefaultSchema(), SchemaVersion{
		Version: 2,
		Indexes: []string{"type", "category", "date"},
	})
	s := newTestStore(t, WithSchema(versions...))

	fields, err := s.IndexedFields(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"type", "category", "date"}, fields)
}

func TestMigrate_FailedStepLeavesLastGoodVersion(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s := New(testConfig(dir), WithLogger(logger.Discard))
	require.NoError(t, s.Open(ctx))
	seed(t, s)
	before := rawRows(t, s)
	require.NoError(t, s.Close())

	boom := errors.New("boom")
	versions := append(DefaultSchema(),
		SchemaVersion{
			Version: 2,
			Indexes: DefaultSchema()[0].Indexes,
			Migrate: func(tx *gorm.DB) error {
				return tx.Exec("UPDATE transactions SET description = 'v2'").Error
			},
		},
		SchemaVersion{
			Version: 3,
			Indexes: DefaultSchema()[0].Indexes,
			Migrate: func(tx *gorm.DB) error {
				if err := tx.Exec("UPDATE transactions SET category = 'v3'").Error; err != nil {
					return err
				}
				return boom
			},
		},
	)

	failing := New(testConfig(dir), WithLogger(logger.Discard), WithSchema(versions...), WithTargetVersion(3))
	err := failing.Open(ctx)
	require.ErrorIs(t, err, ErrMigration)
	assert.ErrorIs(t, err, boom)
	var merr *MigrationError
	require.True(t, errors.As(err, &merr))
	assert.Equal(t, 3, merr.Version)

	// 迁移失败的 Store 不可用
	_, err = failing.Get(ctx, 1)
	assert.ErrorIs(t, err, ErrStorageUnavailable)

	// 停留在 v2：v2 的改写已提交，v3 的改写已回滚
	atV2 := New(testConfig(dir), WithLogger(logger.Discard), WithSchema(versions[:2]...), WithTargetVersion(2))
	require.NoError(t, atV2.Open(ctx))
	version, err := atV2.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, version)
	after := rawRows(t, atV2)
	require.Len(t, after, len(before))
	for i := range after {
		assert.Equal(t, "v2", after[i].Description)
		assert.Equal(t, before[i].Category, after[i].Category)
	}
	require.NoError(t, atV2.Close())

	// 修复后重试，从 v2 继续
	versions[2].Migrate = func(tx *gorm.DB) error { return nil }
	fixed := New(testConfig(dir), WithLogger(logger.Discard), WithSchema(versions...), WithTargetVersion(3))
	require.NoError(t, fixed.Open(ctx))
	defer fixed.Close()
	version, err = fixed.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, version)
}

func TestMigrate_UnsupportedSchemaVersion(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	calls := 0
	newer := New(testConfig(dir), WithLogger(logger.Discard), WithSchema(schemaV2(&calls)...), WithTargetVersion(2))
	require.NoError(t, newer.Open(ctx))
	require.NoError(t, newer.Close())

	older := New(testConfig(dir), WithLogger(logger.Discard))
	err := older.Open(ctx)
	require.ErrorIs(t, err, ErrUnsupportedSchemaVersion)
	var verr *UnsupportedSchemaVersionError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, 2, verr.Persisted)
	assert.Equal(t, 1, verr.Requested)
}

func TestCheckSchema(t *testing.T) {
	assert.ErrorIs(t, checkSchema(nil, 1), ErrMigration)

	gap := []SchemaVersion{{Version: 1}, {Version: 3}}
	assert.ErrorIs(t, checkSchema(gap, 2), ErrMigration)

	dup := []SchemaVersion{{Version: 1}, {Version: 1}}
	assert.ErrorIs(t, checkSchema(dup, 1), ErrMigration)

	assert.ErrorIs(t, checkSchema(DefaultSchema(), 2), ErrMigration)
	assert.NoError(t, checkSchema(DefaultSchema(), 1))
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, `"idx_transactions_type"`, quoteIdent("idx_transactions_type"))
	assert.True(t, strings.HasPrefix(quoteIdent(`a"b`), `"a""b`))
}
