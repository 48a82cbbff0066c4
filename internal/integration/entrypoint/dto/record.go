package dto

import (
	"time"

	"github.com/studyroom/backend/internal/domain/entity"
)

// RecordResponse represents a single financial record in responses.
type RecordResponse struct {
	ID          string  `json:"id"`
	Kind        string  `json:"kind"`
	Amount      float64 `json:"amount"`
	OccurredAt  string  `json:"occurred_at"`
	CategoryKey string  `json:"category_key"`
	StudentID   string  `json:"student_id,omitempty"`
	StudentName string  `json:"student_name,omitempty"`
	PaymentMode string  `json:"payment_mode,omitempty"`
	Description string  `json:"description,omitempty"`
}

// RecordListResponse represents the response for record list endpoints.
type RecordListResponse struct {
	Data RecordListData `json:"data"`
}

// RecordListData represents the data section of a record list response.
type RecordListData struct {
	Items []RecordResponse `json:"items"`
	Total int              `json:"total"`
}

// CreatePaymentRequest represents the request body for recording a payment.
type CreatePaymentRequest struct {
	StudentID   string `json:"student_id"`
	StudentName string `json:"student_name"`
	Type        string `json:"type" binding:"required"`
	Mode        string `json:"mode"`
	Amount      string `json:"amount" binding:"required"`
	PaidAt      string `json:"paid_at" binding:"required"`
}

// CreateExpenseRequest represents the request body for recording an expense.
type CreateExpenseRequest struct {
	Category    string `json:"category" binding:"required"`
	Description string `json:"description"`
	Amount      string `json:"amount" binding:"required"`
	SpentAt     string `json:"spent_at" binding:"required"`
}

// ToRecordResponse converts a FinancialRecord to a RecordResponse DTO.
func ToRecordResponse(record entity.FinancialRecord) RecordResponse {
	amount, _ := record.Amount.Float64()

	resp := RecordResponse{
		ID:          record.ID.String(),
		Kind:        string(record.Kind),
		Amount:      amount,
		OccurredAt:  record.OccurredAt.UTC().Format(time.RFC3339),
		CategoryKey: record.CategoryKey,
		StudentName: record.StudentName,
		PaymentMode: record.PaymentMode,
		Description: record.Description,
	}
	if record.StudentID != nil {
		resp.StudentID = record.StudentID.String()
	}
	return resp
}

// ToRecordListResponse converts a page of records to a RecordListResponse.
func ToRecordListResponse(items []entity.FinancialRecord, total int) RecordListResponse {
	records := make([]RecordResponse, len(items))
	for i, item := range items {
		records[i] = ToRecordResponse(item)
	}
	return RecordListResponse{
		Data: RecordListData{
			Items: records,
			Total: total,
		},
	}
}
