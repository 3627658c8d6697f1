package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"time"

	"ledger/models"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

// recordFlags add/update 共用的字段 flag
type recordFlags struct {
	typ         string
	amount      string
	category    string
	description string
	date        string
}

func (r *recordFlags) set(f *flag.FlagSet) {
	f.StringVar(&r.typ, "type", "", "类型 income/expense")
	f.StringVar(&r.amount, "amount", "", "金额，如 42.50")
	f.StringVar(&r.category, "category", "", "类别")
	f.StringVar(&r.description, "desc", "", "描述，可为空")
	f.StringVar(&r.date, "date", "", "日期 (2006-01-02 或 2006-01-02 15:04:05 或 RFC3339)")
}

// patch 只包含显式设置的字段
func (r *recordFlags) patch(set map[string]bool) (models.TransactionPatch, error) {
	var p models.TransactionPatch
	if set["type"] {
		typ, err := models.ParseTransactionType(r.typ)
		if err != nil {
			return p, err
		}
		p.SetType(typ)
	}
	if set["amount"] {
		amount, err := decimal.NewFromString(r.amount)
		if err != nil {
			return p, fmt.Errorf("无效的金额 %q: %w", r.amount, err)
		}
		p.SetAmount(amount)
	}
	if set["category"] {
		p.SetCategory(r.category)
	}
	if set["desc"] {
		p.SetDescription(r.description)
	}
	if set["date"] {
		d, err := models.ParseDate(r.date)
		if err != nil {
			return p, err
		}
		p.SetDate(d)
	}
	return p, nil
}

func printJSON(app *App, v interface{}) error {
	enc := json.NewEncoder(app.stdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type addCmd struct {
	app *App
	recordFlags
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "新增一条收支记录" }
func (*addCmd) Usage() string {
	return `add -type <income|expense> -amount <n> -category <c> [-desc <d>] [-date <date>]

  新增收支记录并打印分配的 ID。-desc 默认为空，-date 默认为当前时间。
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) { c.recordFlags.set(f) }

func (c *addCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	set := visited(f)
	// 描述允许为空，日期缺省为当前时间
	set["desc"] = true
	if !set["date"] {
		c.date = time.Now().Format(time.RFC3339Nano)
		set["date"] = true
	}
	p, err := c.patch(set)
	if err != nil {
		return c.app.fail("%v", err)
	}

	store, err := c.app.open(ctx)
	if err != nil {
		return c.app.fail("%v", err)
	}
	id, err := store.Insert(ctx, models.TransactionInput{
		Type:        p.Type,
		Amount:      p.Amount,
		Category:    p.Category,
		Description: p.Description,
		Date:        p.Date,
	})
	if err != nil {
		return c.app.fail("创建收支记录失败: %v", err)
	}

	fmt.Fprintln(c.app.stdout(), id)
	return subcommands.ExitSuccess
}

type getCmd struct {
	app *App
}

func (*getCmd) Name() string     { return "get" }
func (*getCmd) Synopsis() string { return "按 ID 查看收支记录" }
func (*getCmd) Usage() string {
	return `get <id>

  以 JSON 格式打印收支记录。
`
}

func (*getCmd) SetFlags(*flag.FlagSet) {}

func (c *getCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprint(c.app.stderr(), c.Usage())
		return subcommands.ExitUsageError
	}
	id, err := parseID(f.Arg(0))
	if err != nil {
		return c.app.fail("%v", err)
	}

	store, err := c.app.open(ctx)
	if err != nil {
		return c.app.fail("%v", err)
	}
	t, err := store.Get(ctx, id)
	if err != nil {
		return c.app.fail("%v", err)
	}
	if err := printJSON(c.app, t); err != nil {
		return c.app.fail("%v", err)
	}
	return subcommands.ExitSuccess
}

type updateCmd struct {
	app *App
	recordFlags
}

func (*updateCmd) Name() string     { return "update" }
func (*updateCmd) Synopsis() string { return "修改收支记录的部分字段" }
func (*updateCmd) Usage() string {
	return `update [-type <t>] [-amount <n>] [-category <c>] [-desc <d>] [-date <date>] <id>

  只修改显式给出的字段，并打印修改后的记录。
`
}

func (c *updateCmd) SetFlags(f *flag.FlagSet) { c.recordFlags.set(f) }

func (c *updateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprint(c.app.stderr(), c.Usage())
		return subcommands.ExitUsageError
	}
	id, err := parseID(f.Arg(0))
	if err != nil {
		return c.app.fail("%v", err)
	}
	p, err := c.patch(visited(f))
	if err != nil {
		return c.app.fail("%v", err)
	}

	store, err := c.app.open(ctx)
	if err != nil {
		return c.app.fail("%v", err)
	}
	t, err := store.Update(ctx, id, p)
	if err != nil {
		return c.app.fail("更新失败: %v", err)
	}
	if err := printJSON(c.app, t); err != nil {
		return c.app.fail("%v", err)
	}
	return subcommands.ExitSuccess
}

type rmCmd struct {
	app *App
}

func (*rmCmd) Name() string     { return "rm" }
func (*rmCmd) Synopsis() string { return "删除收支记录" }
func (*rmCmd) Usage() string {
	return `rm <id> [<id>...]

  删除给定 ID 的记录，记录不存在时不报错。
`
}

func (*rmCmd) SetFlags(*flag.FlagSet) {}

func (c *rmCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprint(c.app.stderr(), c.Usage())
		return subcommands.ExitUsageError
	}
	ids := make([]uint, 0, f.NArg())
	for _, arg := range f.Args() {
		id, err := parseID(arg)
		if err != nil {
			return c.app.fail("%v", err)
		}
		ids = append(ids, id)
	}

	store, err := c.app.open(ctx)
	if err != nil {
		return c.app.fail("%v", err)
	}
	for _, id := range ids {
		if err := store.Delete(ctx, id); err != nil {
			return c.app.fail("删除 %d 失败: %v", id, err)
		}
	}
	return subcommands.ExitSuccess
}
