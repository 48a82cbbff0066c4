// Package model defines database models for persistence layer.
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/studyroom/backend/internal/domain/entity"
)

// PaymentModel represents the payments table in the database.
type PaymentModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	StudentID   *uuid.UUID      `gorm:"type:uuid;index"`
	StudentName string          `gorm:"type:varchar(255)"`
	Type        string          `gorm:"type:varchar(50);not null;index"`
	Mode        string          `gorm:"type:varchar(50)"`
	Amount      decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	PaidAt      time.Time       `gorm:"not null;index"`
	CreatedAt   time.Time       `gorm:"not null"`
	UpdatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for the PaymentModel.
func (PaymentModel) TableName() string {
	return "payments"
}

// ToEntity converts a PaymentModel to a domain Payment entity.
func (m *PaymentModel) ToEntity() *entity.Payment {
	return &entity.Payment{
		ID:          m.ID,
		StudentID:   m.StudentID,
		StudentName: m.StudentName,
		Type:        m.Type,
		Mode:        m.Mode,
		Amount:      m.Amount,
		PaidAt:      m.PaidAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// PaymentFromEntity creates a PaymentModel from a domain Payment entity.
func PaymentFromEntity(payment *entity.Payment) *PaymentModel {
	return &PaymentModel{
		ID:          payment.ID,
		StudentID:   payment.StudentID,
		StudentName: payment.StudentName,
		Type:        payment.Type,
		Mode:        payment.Mode,
		Amount:      payment.Amount,
		PaidAt:      payment.PaidAt,
		CreatedAt:   payment.CreatedAt,
		UpdatedAt:   payment.UpdatedAt,
	}
}
