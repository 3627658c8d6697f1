package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"ledger/config"
	"ledger/database"

	"github.com/google/subcommands"
)

// App 命令共享的配置与存储，在 flag 解析之后填充
type App struct {
	Config *config.Config
	Store  *database.Store
	Out    io.Writer
	Err    io.Writer
}

// Register 注册全部子命令
func Register(c *subcommands.Commander, app *App) {
	c.Register(c.HelpCommand(), "")
	c.Register(c.FlagsCommand(), "")
	c.Register(c.CommandsCommand(), "")

	c.Register(&serveCmd{app: app}, "server")

	c.Register(&addCmd{app: app}, "transactions")
	c.Register(&getCmd{app: app}, "transactions")
	c.Register(&updateCmd{app: app}, "transactions")
	c.Register(&rmCmd{app: app}, "transactions")
	c.Register(&listCmd{app: app}, "transactions")

	c.Register(&exportCmd{app: app}, "data")
	c.Register(&schemaCmd{app: app}, "data")
}

// open 打开存储，重复调用无副作用
func (a *App) open(ctx context.Context) (*database.Store, error) {
	if a.Store == nil {
		return nil, fmt.Errorf("%w: 存储未初始化", database.ErrStorageUnavailable)
	}
	if err := a.Store.Open(ctx); err != nil {
		return nil, err
	}
	return a.Store, nil
}

func (a *App) stdout() io.Writer {
	if a.Out != nil {
		return a.Out
	}
	return os.Stdout
}

func (a *App) stderr() io.Writer {
	if a.Err != nil {
		return a.Err
	}
	return os.Stderr
}

// fail 打印错误并返回失败状态
func (a *App) fail(format string, args ...interface{}) subcommands.ExitStatus {
	fmt.Fprintf(a.stderr(), "错误: "+format+"\n", args...)
	return subcommands.ExitFailure
}

// visited 返回命令行中显式设置过的 flag
func visited(f *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	f.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	return set
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("无效的ID: %q", s)
	}
	return uint(id), nil
}
