package reportclient

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/studyroom/backend/internal/domain/entity"
)

func TestFlexAmount_UnmarshalJSON(t *testing.T) {
	cases := []struct {
		name  string
		json  string
		want  string
		valid bool
	}{
		{"number", `12.5`, "12.5", true},
		{"numeric string", `"99.99"`, "99.99", true},
		{"negative number", `-150`, "-150", true},
		{"malformed string", `"abc"`, "0", false},
		{"null", `null`, "0", false},
		{"object", `{"v": 1}`, "0", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var a flexAmount
			if err := json.Unmarshal([]byte(tc.json), &a); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !a.Value.Equal(decimal.RequireFromString(tc.want)) {
				t.Errorf("expected %s, got %s", tc.want, a.Value)
			}
			if a.Valid != tc.valid {
				t.Errorf("expected valid=%v, got %v", tc.valid, a.Valid)
			}
		})
	}
}

func TestFlexTime_UnmarshalJSON(t *testing.T) {
	t.Run("parses RFC 3339 timestamps", func(t *testing.T) {
		var ft flexTime
		if err := json.Unmarshal([]byte(`"2025-03-05T10:30:00Z"`), &ft); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !ft.Valid {
			t.Fatal("expected valid time")
		}
		if ft.Value.Day() != 5 || ft.Value.Hour() != 10 {
			t.Errorf("unexpected time %v", ft.Value)
		}
	})

	t.Run("parses bare dates", func(t *testing.T) {
		var ft flexTime
		if err := json.Unmarshal([]byte(`"2025-03-05"`), &ft); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !ft.Valid {
			t.Fatal("expected valid time")
		}
	})

	t.Run("flags garbage as invalid", func(t *testing.T) {
		for _, raw := range []string{`"soon"`, `""`, `null`, `42`} {
			var ft flexTime
			if err := json.Unmarshal([]byte(raw), &ft); err != nil {
				t.Fatalf("unexpected error for %s: %v", raw, err)
			}
			if ft.Valid {
				t.Errorf("expected %s to be invalid", raw)
			}
		}
	})
}

func TestDecodeRecords(t *testing.T) {
	t.Run("keeps records with malformed amounts as zero", func(t *testing.T) {
		raw := `[
			{"id": "7a0a3a3e-47c7-4f34-9d8e-111111111111", "amount": "garbage", "occurred_at": "2025-03-05T00:00:00Z", "category_key": "monthly_fee"},
			{"id": "7a0a3a3e-47c7-4f34-9d8e-222222222222", "amount": 500, "occurred_at": "2025-03-06T00:00:00Z", "category_key": "monthly_fee"}
		]`
		var dtos []recordDTO
		if err := json.Unmarshal([]byte(raw), &dtos); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		records := decodeRecords(dtos, entity.RecordKindPayment)
		if len(records) != 2 {
			t.Fatalf("expected 2 records, got %d", len(records))
		}
		if !records[0].Amount.IsZero() {
			t.Errorf("expected zero amount for malformed input, got %s", records[0].Amount)
		}
		if !records[1].Amount.Equal(decimal.RequireFromString("500")) {
			t.Errorf("expected 500, got %s", records[1].Amount)
		}
	})

	t.Run("drops records with unparseable timestamps", func(t *testing.T) {
		raw := `[
			{"id": "7a0a3a3e-47c7-4f34-9d8e-111111111111", "amount": 100, "occurred_at": "not a date", "category_key": "rent"},
			{"id": "7a0a3a3e-47c7-4f34-9d8e-222222222222", "amount": 200, "occurred_at": "2025-03-06", "category_key": "rent"}
		]`
		var dtos []recordDTO
		if err := json.Unmarshal([]byte(raw), &dtos); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		records := decodeRecords(dtos, entity.RecordKindExpense)
		if len(records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(records))
		}
		if !records[0].Amount.Equal(decimal.RequireFromString("200")) {
			t.Errorf("expected the surviving record to carry 200, got %s", records[0].Amount)
		}
	})

	t.Run("defaults the kind when the payload omits it", func(t *testing.T) {
		raw := `[{"amount": 10, "occurred_at": "2025-03-06", "category_key": "rent"}]`
		var dtos []recordDTO
		if err := json.Unmarshal([]byte(raw), &dtos); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		records := decodeRecords(dtos, entity.RecordKindExpense)
		if records[0].Kind != entity.RecordKindExpense {
			t.Errorf("expected expense kind, got %s", records[0].Kind)
		}
	})
}
