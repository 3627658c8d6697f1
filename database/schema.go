package database

import (
	"context"
	"fmt"
	"log"
	"maps"
	"slices"
	"strings"
	"time"

	"ledger/models"

	"gorm.io/gorm"
)

// indexPrefix 由 schema 管理的二级索引名前缀，其余索引不受影响
const indexPrefix = "idx_transactions_"

// MigrationFunc 在迁移事务内改写或重建记录
type MigrationFunc func(tx *gorm.DB) error

// SchemaVersion 单个 schema 版本：迁移步骤及该版本的二级索引字段
//
// 主键 id 总是被索引，不需要出现在 Indexes 中。
type SchemaVersion struct {
	Version int
	Indexes []string
	Migrate MigrationFunc
}

// DefaultSchema 当前程序内置的版本表
func DefaultSchema() []SchemaVersion {
	return []SchemaVersion{
		{
			Version: 1,
			Indexes: []string{"type", "amount", "category", "date"},
			Migrate: createTransactionsV1,
		},
	}
}

func createTransactionsV1(tx *gorm.DB) error {
	return tx.Exec(`CREATE TABLE IF NOT EXISTS transactions (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		type        TEXT     NOT NULL,
		amount      TEXT     NOT NULL,
		category    TEXT     NOT NULL,
		description TEXT     NOT NULL,
		date        DATETIME NOT NULL
	)`).Error
}

// checkSchema 版本号必须从 1 开始连续递增，且包含目标版本
func checkSchema(versions []SchemaVersion, target int) error {
	if len(versions) == 0 {
		return fmt.Errorf("%w: 未注册任何 schema 版本", ErrMigration)
	}
	for i, v := range versions {
		if v.Version != i+1 {
			return fmt.Errorf("%w: 第 %d 个版本号应为 %d，实际为 %d", ErrMigration, i+1, i+1, v.Version)
		}
	}
	if target < 1 || target > len(versions) {
		return fmt.Errorf("%w: 目标版本 v%d 未注册", ErrMigration, target)
	}
	return nil
}

// persistedVersion 已持久化的 schema 版本，全新数据库为 0
func persistedVersion(db *gorm.DB) (int, error) {
	var version int
	err := db.Model(&models.SchemaMigration{}).Select("COALESCE(MAX(version), 0)").Scan(&version).Error
	return version, err
}

// migrate 将数据库升级到 target 版本
//
// 每个版本在单独的事务中执行：迁移步骤、索引对齐、记录版本号。
// 任一步骤失败则该事务回滚，持久化版本停留在上一个成功的版本。
func migrate(ctx context.Context, db *gorm.DB, versions []SchemaVersion, target int) error {
	if err := checkSchema(versions, target); err != nil {
		return err
	}
	db = db.WithContext(ctx)

	if err := db.AutoMigrate(&models.SchemaMigration{}); err != nil {
		return &MigrationError{Version: 0, Err: fmt.Errorf("创建版本表失败: %w", err)}
	}

	current, err := persistedVersion(db)
	if err != nil {
		return &MigrationError{Version: 0, Err: fmt.Errorf("读取版本失败: %w", err)}
	}
	switch {
	case current == target:
		return nil
	case current > target:
		return &UnsupportedSchemaVersionError{Persisted: current, Requested: target}
	}

	for _, v := range versions[current:target] {
		err := db.Transaction(func(tx *gorm.DB) error {
			if v.Migrate != nil {
				if err := v.Migrate(tx); err != nil {
					return err
				}
			}
			if err := reindex(tx, v.Indexes); err != nil {
				return fmt.Errorf("重建索引失败: %w", err)
			}
			return tx.Create(&models.SchemaMigration{Version: v.Version, AppliedAt: time.Now().UTC()}).Error
		})
		if err != nil {
			return &MigrationError{Version: v.Version, Err: err}
		}
		log.Printf("schema 已升级到 v%d", v.Version)
	}
	return nil
}

// reindex 使 idx_transactions_* 索引与字段列表一致
func reindex(tx *gorm.DB, fields []string) error {
	existing, err := indexNames(tx)
	if err != nil {
		return err
	}

	want := make(map[string]string, len(fields))
	for _, f := range fields {
		want[indexPrefix+f] = f
	}

	for _, name := range existing {
		if _, ok := want[name]; ok {
			continue
		}
		if err := tx.Exec(fmt.Sprintf("DROP INDEX IF EXISTS %s", quoteIdent(name))).Error; err != nil {
			return err
		}
	}
	for _, name := range slices.Sorted(maps.Keys(want)) {
		stmt := fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON transactions (%s)", quoteIdent(name), quoteIdent(want[name]))
		if err := tx.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

func indexNames(tx *gorm.DB) ([]string, error) {
	var names []string
	err := tx.Raw("SELECT name FROM sqlite_master WHERE type = 'index' AND tbl_name = ? AND name GLOB ? ORDER BY name",
		models.Transaction{}.TableName(), indexPrefix+"*").Scan(&names).Error
	return names, err
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
