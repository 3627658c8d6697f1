package config

import (
	"bytes"
	"fmt"
	"log"
	"net"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
}

// ServerConfig 本地 HTTP 服务配置
type ServerConfig struct {
	Host           string `mapstructure:"host"`
	Port           string `mapstructure:"port"`
	Mode           string `mapstructure:"mode"`
	// WriteRateLimit 每个客户端每分钟允许的写请求数，0 表示不限制
	WriteRateLimit int    `mapstructure:"write_rate_limit"`
}

// Addr 监听地址
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strings.TrimPrefix(s.Port, ":"))
}

// DatabaseConfig 账本存储配置
type DatabaseConfig struct {
	DataDir       string `mapstructure:"data_dir"`
	Name          string `mapstructure:"name"`
	SchemaVersion int    `mapstructure:"schema_version"`
	BatchSize     int    `mapstructure:"batch_size"`
	BusyTimeoutMS int    `mapstructure:"busy_timeout_ms"`
	LogLevel      string `mapstructure:"log_level"`
}

// Path 数据库文件路径，文件名由固定的逻辑库名决定
func (d DatabaseConfig) Path() string {
	return filepath.Join(d.DataDir, d.Name+".db")
}

// DSN SQLite 连接串：WAL 日志、忙等待超时、写事务立即加锁
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_txlock=immediate", d.Path(), d.BusyTimeoutMS)
}

var (
	// GlobalConfig 全局配置实例
	GlobalConfig *Config
)

// LoadConfig 加载配置
// 优先级: 环境变量 > 外部配置文件 > 嵌入的默认配置
// configPath: 可选的外部配置文件路径
func LoadConfig(configPath string) (*Config, error) {
	// .env 只补充尚未设置的环境变量
	if err := godotenv.Load(); err == nil {
		log.Println("已加载 .env 文件")
	}

	v := viper.New()
	v.SetConfigType("yaml")

	// 1. 首先加载嵌入的默认配置
	if err := v.ReadConfig(bytes.NewReader(DefaultConfigYAML)); err != nil {
		return nil, fmt.Errorf("读取内置配置失败: %w", err)
	}

	// 2. 尝试加载外部配置文件（可选，用于覆盖默认配置）
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("读取配置文件 %s 失败: %w", configPath, err)
		}
		log.Printf("已合并外部配置文件: %s", configPath)
	} else {
		externalViper := viper.New()
		externalViper.SetConfigName("config")
		externalViper.SetConfigType("yaml")
		externalViper.AddConfigPath(".")
		externalViper.AddConfigPath("./config")
		externalViper.AddConfigPath("$HOME/.ledger")

		if err := externalViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(externalViper.AllSettings()); err != nil {
				log.Printf("警告: 合并外部配置失败: %v", err)
			} else {
				log.Printf("已合并外部配置文件: %s", externalViper.ConfigFileUsed())
			}
		}
	}

	// 3. 环境变量覆盖，如 LEDGER_DATABASE_DATA_DIR
	v.SetEnvPrefix("LEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}

	GlobalConfig = &cfg

	return &cfg, nil
}

// normalize 补全缺省值并校验
func (c *Config) normalize() error {
	if c.Database.Name == "" {
		c.Database.Name = "ExpenseTracker"
	}
	if c.Database.DataDir == "" {
		c.Database.DataDir = "."
	}
	if c.Database.SchemaVersion <= 0 {
		return fmt.Errorf("无效的 schema_version: %d", c.Database.SchemaVersion)
	}
	if c.Database.BatchSize <= 0 {
		c.Database.BatchSize = 100
	}
	if c.Database.BusyTimeoutMS < 0 {
		c.Database.BusyTimeoutMS = 0
	}
	if c.Server.WriteRateLimit < 0 {
		c.Server.WriteRateLimit = 0
	}
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	return nil
}

// PrintConfig 打印当前配置
func PrintConfig() {
	if GlobalConfig == nil {
		return
	}
	log.Printf("当前配置:")
	log.Printf("  服务器: %s (模式: %s)", GlobalConfig.Server.Addr(), GlobalConfig.Server.Mode)
	log.Printf("  数据库: %s (schema v%d)", GlobalConfig.Database.Path(), GlobalConfig.Database.SchemaVersion)
}

// SafeErrorMessage 生产环境下不向客户端暴露内部错误详情
func SafeErrorMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	if GlobalConfig != nil && GlobalConfig.Server.Mode == "release" {
		return fallback
	}
	return err.Error()
}
