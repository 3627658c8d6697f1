package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

var (
	// ErrStorageUnavailable 存储介质不可访问，或存储尚未打开
	ErrStorageUnavailable = errors.New("存储不可用")
	// ErrValidation 输入记录不合法
	ErrValidation = errors.New("参数校验失败")
	// ErrNotFound 指定 ID 的记录不存在
	ErrNotFound = errors.New("记录不存在")
	// ErrStorageWrite 存储介质拒绝写入（如磁盘已满）
	ErrStorageWrite = errors.New("存储写入失败")
	// ErrMigration schema 升级步骤失败
	ErrMigration = errors.New("schema 迁移失败")
	// ErrUnsupportedSchemaVersion 持久化版本高于当前程序支持的版本
	ErrUnsupportedSchemaVersion = errors.New("不支持的 schema 版本")
)

var errNotOpen = fmt.Errorf("%w: 存储未打开", ErrStorageUnavailable)

// ValidationError 字段级校验错误
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%v: %s", ErrValidation, e.Reason)
	}
	return fmt.Sprintf("%v: %s %s", ErrValidation, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// MigrationError 记录失败的目标版本
type MigrationError struct {
	Version int
	Err     error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("%v: v%d: %v", ErrMigration, e.Version, e.Err)
}

func (e *MigrationError) Unwrap() []error { return []error{ErrMigration, e.Err} }

// UnsupportedSchemaVersionError 持久化版本与请求版本不兼容
type UnsupportedSchemaVersionError struct {
	Persisted int
	Requested int
}

func (e *UnsupportedSchemaVersionError) Error() string {
	return fmt.Sprintf("%v: 数据版本 v%d 高于程序版本 v%d", ErrUnsupportedSchemaVersion, e.Persisted, e.Requested)
}

func (e *UnsupportedSchemaVersionError) Unwrap() error { return ErrUnsupportedSchemaVersion }

// writeError 将底层写入失败包装为 ErrStorageWrite；调用方放弃等待时原样返回
func writeError(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	var sqlErr sqlite3.Error
	if errors.As(err, &sqlErr) && sqlErr.Code == sqlite3.ErrFull {
		return fmt.Errorf("%w: %s: 磁盘空间不足: %w", ErrStorageWrite, op, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrStorageWrite, op, err)
}
