package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"iter"
	"text/tabwriter"

	"ledger/database"
	"ledger/models"

	"github.com/google/subcommands"
)

// filterFlags list/export 共用的筛选条件
type filterFlags struct {
	typ      string
	category string
	from     string
	to       string
}

func (r *filterFlags) set(f *flag.FlagSet) {
	f.StringVar(&r.typ, "type", "", "只显示该类型 income/expense")
	f.StringVar(&r.category, "category", "", "只显示该类别")
	f.StringVar(&r.from, "from", "", "开始日期（含）")
	f.StringVar(&r.to, "to", "", "结束日期（含），只有日期时包含当天")
}

func (r *filterFlags) query(set map[string]bool) (database.Query, error) {
	var q database.Query
	if set["type"] {
		typ, err := models.ParseTransactionType(r.typ)
		if err != nil {
			return q, err
		}
		q.Type = &typ
	}
	if set["category"] {
		category := r.category
		q.Category = &category
	}
	if set["from"] {
		from, err := models.ParseDate(r.from)
		if err != nil {
			return q, fmt.Errorf("开始%w", err)
		}
		q.From = &from
	}
	if set["to"] {
		to, err := models.ParseRangeEnd(r.to)
		if err != nil {
			return q, fmt.Errorf("结束%w", err)
		}
		q.To = &to
	}
	return q, nil
}

// sequence 单一条件时使用对应的专用查询
func sequence(ctx context.Context, store *database.Store, q database.Query, opts ...database.QueryOption) iter.Seq2[models.Transaction, error] {
	switch {
	case q.Type != nil && q.Category == nil && q.From == nil && q.To == nil:
		return store.QueryByType(ctx, *q.Type, opts...)
	case q.Category != nil && q.Type == nil && q.From == nil && q.To == nil:
		return store.QueryByCategory(ctx, *q.Category, opts...)
	case q.From != nil && q.To != nil && q.Type == nil && q.Category == nil:
		return store.QueryByDateRange(ctx, *q.From, *q.To, opts...)
	case q.Type == nil && q.Category == nil && q.From == nil && q.To == nil:
		return store.ListAll(ctx, opts...)
	default:
		return store.Find(ctx, q, opts...)
	}
}

type listCmd struct {
	app *App
	filterFlags
	limit  int
	offset int
	json   bool
}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "列出收支记录" }
func (*listCmd) Usage() string {
	return `list [-type <t>] [-category <c>] [-from <date>] [-to <date>] [-limit <n>] [-offset <n>] [-json]

  按 ID 升序列出收支记录，筛选条件可组合使用。
`
}

func (c *listCmd) SetFlags(f *flag.FlagSet) {
	c.filterFlags.set(f)
	f.IntVar(&c.limit, "limit", 0, "最多显示 N 条，0 表示不限")
	f.IntVar(&c.offset, "offset", 0, "跳过前 N 条")
	f.BoolVar(&c.json, "json", false, "以 JSON 输出")
}

func (c *listCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.limit < 0 || c.offset < 0 {
		fmt.Fprint(c.app.stderr(), c.Usage())
		return subcommands.ExitUsageError
	}
	q, err := c.query(visited(f))
	if err != nil {
		return c.app.fail("%v", err)
	}

	store, err := c.app.open(ctx)
	if err != nil {
		return c.app.fail("%v", err)
	}
	list, err := database.Collect(sequence(ctx, store, q, database.WithLimit(c.limit), database.WithOffset(c.offset)))
	if err != nil {
		return c.app.fail("查询失败: %v", err)
	}

	if c.json {
		if list == nil {
			list = []models.Transaction{}
		}
		err = printJSON(c.app, list)
	} else {
		err = writeTable(c.app.stdout(), list)
	}
	if err != nil {
		return c.app.fail("%v", err)
	}
	return subcommands.ExitSuccess
}

func writeTable(w io.Writer, list []models.Transaction) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "ID\t类型\t金额\t类别\t日期\t描述\t")
	for _, t := range list {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t\n",
			t.ID, t.Type, t.Amount.String(), t.Category, t.Date.Local().Format("2006-01-02 15:04"), t.Description)
	}
	return tw.Flush()
}
