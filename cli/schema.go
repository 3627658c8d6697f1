package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/google/subcommands"
)

type schemaCmd struct {
	app *App
}

func (*schemaCmd) Name() string     { return "schema" }
func (*schemaCmd) Synopsis() string { return "显示数据库 schema 版本与索引" }
func (*schemaCmd) Usage() string {
	return `schema

  打开存储（必要时执行升级）后，打印持久化的 schema 版本和已建立索引的字段。
`
}

func (*schemaCmd) SetFlags(*flag.FlagSet) {}

func (c *schemaCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	store, err := c.app.open(ctx)
	if err != nil {
		return c.app.fail("%v", err)
	}
	version, err := store.Version(ctx)
	if err != nil {
		return c.app.fail("%v", err)
	}
	fields, err := store.IndexedFields(ctx)
	if err != nil {
		return c.app.fail("%v", err)
	}

	fmt.Fprintf(c.app.stdout(), "version: %d\nindexes: %s\n", version, strings.Join(fields, ", "))
	return subcommands.ExitSuccess
}
