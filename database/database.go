package database

import (
	"context"
	"fmt"
	"log"
	"os"
	"reflect"
	"strings"
	"sync"

	"ledger/config"

	"github.com/go-playground/validator/v10"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store 账本存储：单设备、持久化、带二级索引的收支记录表
//
// Store 由应用启动时显式创建并传递给各使用方，测试中每个用例可以使用独立实例。
// 除 Open 外的所有操作都要求 Open 已成功。
type Store struct {
	cfg      config.DatabaseConfig
	schema   []SchemaVersion
	target   int
	logger   logger.Interface
	validate *validator.Validate

	mu sync.RWMutex
	db *gorm.DB
}

// Option 定制 Store
type Option func(*Store)

// WithSchema 替换内置的版本表
func WithSchema(versions ...SchemaVersion) Option {
	return func(s *Store) {
		s.schema = versions
	}
}

// WithTargetVersion 指定 Open 时要求的 schema 版本
func WithTargetVersion(version int) Option {
	return func(s *Store) {
		s.target = version
	}
}

// WithLogger 替换 gorm 日志
func WithLogger(l logger.Interface) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// New 创建未打开的 Store
func New(cfg config.DatabaseConfig, opts ...Option) *Store {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	s := &Store{
		cfg:      cfg,
		schema:   DefaultSchema(),
		target:   cfg.SchemaVersion,
		logger:   logger.Default.LogMode(LogLevel(cfg.LogLevel)),
		validate: newValidator(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.target <= 0 {
		s.target = len(s.schema)
	}
	return s
}

// LogLevel 将配置中的日志级别转换为 gorm 日志级别
func LogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// Open 打开（不存在则创建）数据库并升级 schema
//
// 成功后重复调用直接返回 nil。失败时 Store 保持未打开状态。
func (s *Store) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return nil
	}

	if err := os.MkdirAll(s.cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("%w: 创建数据目录失败: %w", ErrStorageUnavailable, err)
	}

	db, err := gorm.Open(sqlite.Open(s.cfg.DSN()), &gorm.Config{Logger: s.logger})
	if err != nil {
		return fmt.Errorf("%w: 连接数据库失败: %w", ErrStorageUnavailable, err)
	}

	if err := migrate(ctx, db, s.schema, s.target); err != nil {
		closeDB(db)
		return err
	}

	s.db = db
	log.Printf("账本存储已打开: %s (schema v%d)", s.cfg.Path(), s.target)
	return nil
}

// Close 关闭数据库，之后的操作返回 ErrStorageUnavailable
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	s.db = nil
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Version 当前持久化的 schema 版本
func (s *Store) Version(ctx context.Context) (int, error) {
	db, err := s.conn()
	if err != nil {
		return 0, err
	}
	return persistedVersion(db.WithContext(ctx))
}

// IndexedFields 当前已建立二级索引的字段
func (s *Store) IndexedFields(ctx context.Context) ([]string, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	names, err := indexNames(db.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	fields := make([]string, 0, len(names))
	for _, name := range names {
		fields = append(fields, strings.TrimPrefix(name, indexPrefix))
	}
	return fields, nil
}

// conn 获取已打开的连接
func (s *Store) conn() (*gorm.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errNotOpen
	}
	return s.db, nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}

func newValidator() *validator.Validate {
	v := validator.New()
	// 错误信息中使用 json 字段名
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
