package cli

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"ledger/config"
	"ledger/router"

	"github.com/google/subcommands"
)

type serveCmd struct {
	app  *App
	port string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "启动本地 HTTP 服务" }
func (*serveCmd) Usage() string {
	return `serve [-p <port>]

  启动本地 HTTP 服务，默认只监听 127.0.0.1。收到 SIGINT/SIGTERM 后优雅退出。
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.port, "port", "", "监听端口，如: 8080 或 :8080")
	f.StringVar(&c.port, "p", "", "监听端口（简写）")
}

func (c *serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	store, err := c.app.open(ctx)
	if err != nil {
		return c.app.fail("数据库初始化失败: %v", err)
	}

	cfg := *c.app.Config
	// 命令行参数覆盖端口配置
	if c.port != "" {
		cfg.Server.Port = strings.TrimPrefix(c.port, ":")
		log.Printf("命令行指定端口: %s", cfg.Server.Port)
	}
	config.PrintConfig()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupRouter(ctx, &cfg, store),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("服务器关闭失败: %v", err)
		}
	}()

	log.Printf("==========================================")
	log.Printf("  💰 记账服务已启动")
	log.Printf("==========================================")
	log.Printf("  API接口:  http://%s/api/v1/", srv.Addr)
	log.Printf("  健康检查: http://%s/health", srv.Addr)
	log.Printf("  接口文档: http://%s/swagger/index.html", srv.Addr)
	log.Printf("==========================================")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return c.app.fail("服务器启动失败: %v", err)
	}
	log.Println("服务器已停止")
	return subcommands.ExitSuccess
}
