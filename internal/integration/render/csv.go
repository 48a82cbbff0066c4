// Package render turns a computed aggregate into text artifacts: CSV rows
// and a print-ready HTML document. All functions are pure and tolerate
// missing or partially loaded data.
package render

import (
	"fmt"
	"strings"

	"github.com/studyroom/backend/internal/domain/entity"
)

// csvHeader is the fixed header row of the balance sheet export.
var csvHeader = []string{"Section", "Category/Type", "Amount", "Details"}

const (
	sectionIncome   = "Income"
	sectionExpenses = "Expenses"

	// placeholder replaces any missing display value so partial data never
	// propagates empty cells where a reader expects content.
	placeholder = "N/A"
)

// CSV renders the aggregate as balance sheet CSV text. Every group gets a
// summary row followed by one detail row per currently loaded item, so the
// export reflects exactly what has been paged in, not the range-wide item
// sets. A truncated aggregate gets a trailing note row. Every cell is
// quoted and embedded quotes are doubled.
func CSV(aggregate *entity.Aggregate) string {
	var b strings.Builder

	writeRow(&b, csvHeader)
	if aggregate == nil {
		return b.String()
	}

	writeSection(&b, sectionIncome, aggregate.PaymentGroups)
	writeSection(&b, sectionExpenses, aggregate.ExpenseGroups)

	if aggregate.Truncated {
		writeRow(&b, []string{"Note", placeholder, placeholder, "Export incomplete: some groups exceeded the item limit"})
	}

	return b.String()
}

// CSVFilename builds the export file name for a period, using 'from' and
// 'to' for open bounds.
func CSVFilename(period entity.ReportPeriod) string {
	start := "from"
	if period.StartDate != nil {
		start = period.StartDate.UTC().Format("2006-01-02")
	}
	end := "to"
	if period.EndDate != nil {
		end = period.EndDate.UTC().Format("2006-01-02")
	}
	return fmt.Sprintf("balance_sheet_%s_%s.csv", start, end)
}

func writeSection(b *strings.Builder, section string, groups []entity.Group) {
	for _, group := range groups {
		label := group.Label
		if label == "" {
			label = placeholder
		}

		writeRow(b, []string{
			section,
			label,
			group.Amount.StringFixed(2),
			fmt.Sprintf("%d items", group.ItemCount),
		})

		for _, item := range group.Items {
			writeRow(b, []string{
				section,
				label,
				item.Amount.StringFixed(2),
				itemDetails(item),
			})
		}
	}
}

// itemDetails renders the free-form details cell for a record.
func itemDetails(item entity.FinancialRecord) string {
	date := placeholder
	if !item.OccurredAt.IsZero() {
		date = item.OccurredAt.UTC().Format("2006-01-02")
	}

	switch item.Kind {
	case entity.RecordKindPayment:
		name := item.StudentName
		if name == "" {
			name = placeholder
		}
		if item.PaymentMode != "" {
			return fmt.Sprintf("%s %s (%s)", date, name, item.PaymentMode)
		}
		return fmt.Sprintf("%s %s", date, name)
	default:
		desc := item.Description
		if desc == "" {
			desc = placeholder
		}
		return fmt.Sprintf("%s %s", date, desc)
	}
}

// writeRow emits one CSV row with every cell quoted. encoding/csv quotes
// only when required, while the export format quotes unconditionally, so
// the escaping is done here.
func writeRow(b *strings.Builder, cells []string) {
	for i, cell := range cells {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(cell, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteByte('\n')
}
