package dto

import (
	"github.com/studyroom/backend/internal/domain/entity"
)

// AggregateResponse represents the response of the finance detail endpoint.
type AggregateResponse struct {
	Data AggregateData `json:"data"`
}

// AggregateData represents the data section of the detail response.
type AggregateData struct {
	Period        PeriodResponse  `json:"period"`
	TotalIncome   float64         `json:"total_income"`
	TotalExpenses float64         `json:"total_expenses"`
	Net           float64         `json:"net"`
	PaymentGroups []GroupResponse `json:"payment_groups"`
	ExpenseGroups []GroupResponse `json:"expense_groups"`
}

// PeriodResponse represents the period information in responses.
type PeriodResponse struct {
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

// GroupResponse represents one category group in the detail response.
type GroupResponse struct {
	Key       string           `json:"key"`
	Label     string           `json:"label"`
	Amount    float64          `json:"amount"`
	ItemCount int              `json:"item_count"`
	Items     []RecordResponse `json:"items"`
}

// MonthlySummaryResponse represents the response of the monthly endpoint.
type MonthlySummaryResponse struct {
	Data MonthlySummaryData `json:"data"`
}

// MonthlySummaryData represents the data section of the monthly response.
type MonthlySummaryData struct {
	Months  []MonthlyBucketResponse `json:"months"`
	HasMore bool                    `json:"has_more"`
}

// MonthlyBucketResponse represents one calendar bucket in the response.
type MonthlyBucketResponse struct {
	Year       int     `json:"year"`
	Month      *int    `json:"month"`
	MonthLabel string  `json:"month_label"`
	Income     float64 `json:"income"`
	Expenses   float64 `json:"expenses"`
	Net        float64 `json:"net"`
}

// ToAggregateResponse converts an Aggregate to an AggregateResponse DTO.
func ToAggregateResponse(aggregate *entity.Aggregate) AggregateResponse {
	totalIncome, _ := aggregate.TotalIncome.Float64()
	totalExpenses, _ := aggregate.TotalExpenses.Float64()
	net, _ := aggregate.Net.Float64()

	period := PeriodResponse{}
	if aggregate.Period.StartDate != nil {
		period.StartDate = aggregate.Period.StartDate.UTC().Format("2006-01-02")
	}
	if aggregate.Period.EndDate != nil {
		period.EndDate = aggregate.Period.EndDate.UTC().Format("2006-01-02")
	}

	return AggregateResponse{
		Data: AggregateData{
			Period:        period,
			TotalIncome:   totalIncome,
			TotalExpenses: totalExpenses,
			Net:           net,
			PaymentGroups: toGroupResponses(aggregate.PaymentGroups),
			ExpenseGroups: toGroupResponses(aggregate.ExpenseGroups),
		},
	}
}

func toGroupResponses(groups []entity.Group) []GroupResponse {
	responses := make([]GroupResponse, len(groups))
	for i, group := range groups {
		amount, _ := group.Amount.Float64()
		items := make([]RecordResponse, len(group.Items))
		for j, item := range group.Items {
			items[j] = ToRecordResponse(item)
		}
		responses[i] = GroupResponse{
			Key:       group.Key,
			Label:     group.Label,
			Amount:    amount,
			ItemCount: group.ItemCount,
			Items:     items,
		}
	}
	return responses
}

// ToMonthlySummaryResponse converts a MonthlySummary to its response DTO.
func ToMonthlySummaryResponse(summary *entity.MonthlySummary) MonthlySummaryResponse {
	months := make([]MonthlyBucketResponse, len(summary.Buckets))
	for i, bucket := range summary.Buckets {
		income, _ := bucket.Income.Float64()
		expenses, _ := bucket.Expenses.Float64()
		net, _ := bucket.Net.Float64()
		months[i] = MonthlyBucketResponse{
			Year:       bucket.Year,
			Month:      bucket.Month,
			MonthLabel: bucket.Label,
			Income:     income,
			Expenses:   expenses,
			Net:        net,
		}
	}
	return MonthlySummaryResponse{
		Data: MonthlySummaryData{
			Months:  months,
			HasMore: summary.HasMore,
		},
	}
}
