package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path"

	"ledger/cli"
	"ledger/config"
	"ledger/database"

	"github.com/google/subcommands"
)

// @title 记账本 API
// @version 1.0
// @description 本地收支记录存储的 HTTP 接口，支持记录增删改查、筛选、统计和数据导出
// @host localhost:8080
// @BasePath /

var (
	configFile  string
	showVersion bool
)

func init() {
	flag.StringVar(&configFile, "config", "", "外部配置文件路径（可选）")
	flag.StringVar(&configFile, "c", "", "外部配置文件路径（简写）")
	flag.BoolVar(&showVersion, "version", false, "显示版本信息")
	flag.BoolVar(&showVersion, "v", false, "显示版本信息（简写）")
}

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	app := &cli.App{}
	cli.Register(commander, app)

	flag.Parse()

	if showVersion {
		log.Println("记账本 v1.0.0")
		return
	}

	// 加载配置（内置配置 + 可选的外部配置覆盖）
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	app.Config = cfg
	app.Store = database.New(cfg.Database)

	status := commander.Execute(context.Background())
	if err := app.Store.Close(); err != nil {
		log.Printf("关闭数据库失败: %v", err)
	}
	os.Exit(int(status))
}
