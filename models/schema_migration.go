package models

import "time"

// SchemaMigration 已应用的 schema 版本，最大版本号即当前持久化版本
type SchemaMigration struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	AppliedAt time.Time `gorm:"not null"`
}

func (SchemaMigration) TableName() string {
	return "schema_migrations"
}
