package render

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/shopspring/decimal"

	"github.com/studyroom/backend/internal/domain/entity"
)

// printableTemplate is the print-ready balance sheet document. Groups appear
// in the summary unconditionally; the per-item detail tables only render for
// groups that currently have loaded items.
var printableTemplate = template.Must(template.New("balance_sheet").Funcs(template.FuncMap{
	"money": formatMoney,
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; width: 100%; margin-bottom: 1.5em; }
th, td { border: 1px solid #ccc; padding: 6px 10px; text-align: left; }
th { background: #f3f4f6; }
td.amount { text-align: right; }
h2 { margin-top: 1.5em; }
.totals td { font-weight: bold; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p>Period: {{.PeriodStart}} &ndash; {{.PeriodEnd}}</p>
<table class="totals">
<tr><td>Total income</td><td class="amount">{{money .TotalIncome}}</td></tr>
<tr><td>Total expenses</td><td class="amount">{{money .TotalExpenses}}</td></tr>
<tr><td>Net</td><td class="amount">{{money .Net}}</td></tr>
</table>
{{range .Sections}}
<h2>{{.Name}}</h2>
<table>
<tr><th>Category/Type</th><th>Amount</th><th>Items</th></tr>
{{range .Groups}}
<tr><td>{{.Label}}</td><td class="amount">{{money .Amount}}</td><td>{{.ItemCount}}</td></tr>
{{end}}
</table>
{{range .Groups}}{{if .Items}}
<h3>{{.Label}}</h3>
<table>
<tr><th>Date</th><th>Details</th><th>Amount</th></tr>
{{range .Items}}
<tr><td>{{.Date}}</td><td>{{.Details}}</td><td class="amount">{{money .Amount}}</td></tr>
{{end}}
</table>
{{end}}{{end}}
{{end}}
</body>
</html>
`))

type printableItem struct {
	Date    string
	Details string
	Amount  decimal.Decimal
}

type printableGroup struct {
	Label     string
	Amount    decimal.Decimal
	ItemCount int
	Items     []printableItem
}

type printableSection struct {
	Name   string
	Groups []printableGroup
}

type printableDoc struct {
	Title         string
	PeriodStart   string
	PeriodEnd     string
	TotalIncome   decimal.Decimal
	TotalExpenses decimal.Decimal
	Net           decimal.Decimal
	Sections      []printableSection
}

// PrintableHTML renders the aggregate as a standalone printable document.
// It performs no I/O and substitutes placeholders for any missing field.
func PrintableHTML(aggregate *entity.Aggregate, title string) (string, error) {
	if title == "" {
		title = "Balance Sheet"
	}

	doc := printableDoc{
		Title:       title,
		PeriodStart: placeholder,
		PeriodEnd:   placeholder,
	}

	if aggregate != nil {
		if aggregate.Period.StartDate != nil {
			doc.PeriodStart = aggregate.Period.StartDate.UTC().Format("2006-01-02")
		}
		if aggregate.Period.EndDate != nil {
			doc.PeriodEnd = aggregate.Period.EndDate.UTC().Format("2006-01-02")
		}
		doc.TotalIncome = aggregate.TotalIncome
		doc.TotalExpenses = aggregate.TotalExpenses
		doc.Net = aggregate.Net
		doc.Sections = []printableSection{
			{Name: sectionIncome, Groups: toPrintableGroups(aggregate.PaymentGroups)},
			{Name: sectionExpenses, Groups: toPrintableGroups(aggregate.ExpenseGroups)},
		}
	}

	var buf bytes.Buffer
	if err := printableTemplate.Execute(&buf, doc); err != nil {
		return "", fmt.Errorf("failed to render printable report: %w", err)
	}
	return buf.String(), nil
}

func toPrintableGroups(groups []entity.Group) []printableGroup {
	out := make([]printableGroup, 0, len(groups))
	for _, g := range groups {
		label := g.Label
		if label == "" {
			label = placeholder
		}

		pg := printableGroup{
			Label:     label,
			Amount:    g.Amount,
			ItemCount: g.ItemCount,
		}
		for _, item := range g.Items {
			date := placeholder
			if !item.OccurredAt.IsZero() {
				date = item.OccurredAt.UTC().Format("2006-01-02")
			}
			pg.Items = append(pg.Items, printableItem{
				Date:    date,
				Details: itemDetails(item),
				Amount:  item.Amount,
			})
		}
		out = append(out, pg)
	}
	return out
}

func formatMoney(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
