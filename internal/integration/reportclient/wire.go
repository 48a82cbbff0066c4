package reportclient

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/studyroom/backend/internal/application/usecase/report"
	"github.com/studyroom/backend/internal/domain/entity"
)

// flexAmount decodes a wire amount defensively: JSON numbers, numeric
// strings and nothing else. A missing or malformed amount decodes to zero
// with Valid=false so the record still counts without corrupting sums.
type flexAmount struct {
	Value decimal.Decimal
	Valid bool
}

func (a *flexAmount) UnmarshalJSON(data []byte) error {
	a.Value = decimal.Zero
	a.Valid = false

	var num json.Number
	if err := json.Unmarshal(data, &num); err == nil {
		a.Value, a.Valid = report.ParseAmount(num.String())
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		a.Value, a.Valid = report.ParseAmount(s)
	}
	// Anything else (null, object, array) stays zero/invalid.
	return nil
}

// flexTime decodes RFC 3339 timestamps or bare calendar dates. Records with
// unparseable timestamps are excluded from aggregation by the caller.
type flexTime struct {
	Value time.Time
	Valid bool
}

var timeLayouts = []string{time.RFC3339Nano, time.RFC3339, report.DateLayout}

func (t *flexTime) UnmarshalJSON(data []byte) error {
	t.Valid = false

	var s string
	if err := json.Unmarshal(data, &s); err != nil || s == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Value = parsed.UTC()
			t.Valid = true
			return nil
		}
	}
	return nil
}

type recordDTO struct {
	ID          string     `json:"id"`
	Kind        string     `json:"kind"`
	Amount      flexAmount `json:"amount"`
	OccurredAt  flexTime   `json:"occurred_at"`
	CategoryKey string     `json:"category_key"`
	StudentID   string     `json:"student_id,omitempty"`
	StudentName string     `json:"student_name,omitempty"`
	PaymentMode string     `json:"payment_mode,omitempty"`
	Description string     `json:"description,omitempty"`
}

type groupDTO struct {
	Key       string      `json:"key"`
	Label     string      `json:"label"`
	Amount    flexAmount  `json:"amount"`
	ItemCount int         `json:"item_count"`
	Items     []recordDTO `json:"items"`
}

type periodDTO struct {
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

type aggregateData struct {
	Period        periodDTO  `json:"period"`
	TotalIncome   flexAmount `json:"total_income"`
	TotalExpenses flexAmount `json:"total_expenses"`
	Net           flexAmount `json:"net"`
	PaymentGroups []groupDTO `json:"payment_groups"`
	ExpenseGroups []groupDTO `json:"expense_groups"`
}

type aggregateResponse struct {
	Data aggregateData `json:"data"`
}

type listData struct {
	Items []recordDTO `json:"items"`
	Total int         `json:"total"`
}

type listResponse struct {
	Data listData `json:"data"`
}

// decodeRecords converts wire records into entities, dropping records whose
// timestamp cannot be resolved; a bad timestamp would corrupt any
// date-bucketed view downstream, while a bad amount only zeroes one cell.
func decodeRecords(dtos []recordDTO, kind entity.RecordKind) []entity.FinancialRecord {
	records := make([]entity.FinancialRecord, 0, len(dtos))
	dropped := 0

	for _, dto := range dtos {
		if !dto.OccurredAt.Valid {
			dropped++
			continue
		}

		rec := entity.FinancialRecord{
			Kind:        kind,
			Amount:      dto.Amount.Value,
			OccurredAt:  dto.OccurredAt.Value,
			CategoryKey: dto.CategoryKey,
			StudentName: dto.StudentName,
			PaymentMode: dto.PaymentMode,
			Description: dto.Description,
		}
		if dto.Kind != "" {
			rec.Kind = entity.RecordKind(dto.Kind)
		}
		if id, err := uuid.Parse(dto.ID); err == nil {
			rec.ID = id
		}
		if sid, err := uuid.Parse(dto.StudentID); err == nil {
			rec.StudentID = &sid
		}
		records = append(records, rec)
	}

	if dropped > 0 {
		slog.Warn("Dropped records with unparseable timestamps", "count", dropped, "kind", kind)
	}
	return records
}

// toEntity converts the detail payload verbatim into the Aggregate.
func (d aggregateData) toEntity(period entity.ReportPeriod) *entity.Aggregate {
	return &entity.Aggregate{
		Period:        period,
		TotalIncome:   d.TotalIncome.Value,
		TotalExpenses: d.TotalExpenses.Value,
		Net:           d.Net.Value,
		PaymentGroups: decodeGroups(d.PaymentGroups, entity.RecordKindPayment),
		ExpenseGroups: decodeGroups(d.ExpenseGroups, entity.RecordKindExpense),
	}
}

func decodeGroups(dtos []groupDTO, kind entity.RecordKind) []entity.Group {
	groups := make([]entity.Group, 0, len(dtos))
	for _, dto := range dtos {
		groups = append(groups, entity.Group{
			Key:       dto.Key,
			Label:     dto.Label,
			Amount:    dto.Amount.Value,
			ItemCount: dto.ItemCount,
			Items:     decodeRecords(dto.Items, kind),
		})
	}
	return groups
}
