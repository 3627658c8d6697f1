package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"ledger/api"
	"ledger/database"

	"github.com/google/subcommands"
)

type exportCmd struct {
	app *App
	filterFlags
	format string
	output string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "导出收支记录为 CSV 或 Excel" }
func (*exportCmd) Usage() string {
	return `export [-format csv|xlsx] [-o <file>] [-type <t>] [-category <c>] [-from <date>] [-to <date>]

  导出满足条件的记录。未指定 -o 时 CSV 写到标准输出，xlsx 必须指定 -o。
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	c.filterFlags.set(f)
	f.StringVar(&c.format, "format", "csv", "导出格式 csv/xlsx")
	f.StringVar(&c.output, "o", "", "输出文件路径")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.format != "csv" && c.format != "xlsx" {
		fmt.Fprint(c.app.stderr(), c.Usage())
		return subcommands.ExitUsageError
	}
	if c.format == "xlsx" && c.output == "" {
		return c.app.fail("xlsx 导出需要 -o 指定输出文件")
	}
	q, err := c.query(visited(f))
	if err != nil {
		return c.app.fail("%v", err)
	}

	store, err := c.app.open(ctx)
	if err != nil {
		return c.app.fail("%v", err)
	}
	list, err := database.Collect(store.Find(ctx, q))
	if err != nil {
		return c.app.fail("查询数据失败: %v", err)
	}

	var w io.Writer = c.app.stdout()
	if c.output != "" {
		file, err := os.Create(c.output)
		if err != nil {
			return c.app.fail("创建文件失败: %v", err)
		}
		defer file.Close()
		w = file
	}

	switch c.format {
	case "xlsx":
		buf, err := api.WriteExcel(list)
		if err != nil {
			return c.app.fail("生成 Excel 失败: %v", err)
		}
		_, err = buf.WriteTo(w)
		if err != nil {
			return c.app.fail("写入文件失败: %v", err)
		}
	default:
		if err := api.WriteCSV(w, list); err != nil {
			return c.app.fail("生成 CSV 失败: %v", err)
		}
	}

	if c.output != "" {
		fmt.Fprintf(c.app.stderr(), "已导出 %d 条记录到 %s\n", len(list), c.output)
	}
	return subcommands.ExitSuccess
}
