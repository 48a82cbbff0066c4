package controller

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/studyroom/backend/internal/application/usecase/payment"
	"github.com/studyroom/backend/internal/application/usecase/report"
	domainerror "github.com/studyroom/backend/internal/domain/error"
	"github.com/studyroom/backend/internal/integration/entrypoint/dto"
)

// PaymentController handles payment record endpoints.
type PaymentController struct {
	listPaymentsUseCase  *payment.ListPaymentsUseCase
	recordPaymentUseCase *payment.RecordPaymentUseCase
}

// NewPaymentController creates a new payment controller instance.
func NewPaymentController(
	listPaymentsUseCase *payment.ListPaymentsUseCase,
	recordPaymentUseCase *payment.RecordPaymentUseCase,
) *PaymentController {
	return &PaymentController{
		listPaymentsUseCase:  listPaymentsUseCase,
		recordPaymentUseCase: recordPaymentUseCase,
	}
}

// List handles GET /payments requests. Records are filtered by the optional
// date range and payment type key, newest first, with a count-backed total.
func (c *PaymentController) List(ctx *gin.Context) {
	period, err := report.ParsePeriod(ctx.Query("start_date"), ctx.Query("end_date"))
	if err != nil {
		handleReportError(ctx, err)
		return
	}

	output, err := c.listPaymentsUseCase.Execute(ctx.Request.Context(), payment.ListPaymentsInput{
		Period:   period,
		Key:      ctx.Query("key"),
		Page:     queryInt(ctx, "page", 1),
		PageSize: queryInt(ctx, "page_size", 0),
	})
	if err != nil {
		handleReportError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToRecordListResponse(output.Items, output.Total))
}

// Create handles POST /payments requests.
func (c *PaymentController) Create(ctx *gin.Context) {
	var req dto.CreatePaymentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid request body: " + err.Error(),
		})
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		handleRecordError(ctx, domainerror.NewRecordError(
			domainerror.ErrCodeInvalidAmount,
			"amount must be a valid decimal number",
			domainerror.ErrInvalidAmount,
		))
		return
	}

	paidAt, err := parseRecordDate(req.PaidAt)
	if err != nil {
		handleRecordError(ctx, domainerror.NewRecordError(
			domainerror.ErrCodeMissingOccurredAt,
			"paid_at must be a valid date",
			domainerror.ErrMissingOccurredAt,
		))
		return
	}

	var studentID *uuid.UUID
	if req.StudentID != "" {
		id, err := uuid.Parse(req.StudentID)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error: "student_id must be a valid UUID",
			})
			return
		}
		studentID = &id
	}

	created, err := c.recordPaymentUseCase.Execute(ctx.Request.Context(), payment.RecordPaymentInput{
		StudentID:   studentID,
		StudentName: req.StudentName,
		Type:        req.Type,
		Mode:        req.Mode,
		Amount:      amount,
		PaidAt:      paidAt,
	})
	if err != nil {
		handleRecordError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.ToRecordResponse(created.Record()))
}

// queryInt reads an integer query parameter, falling back on parse failure.
func queryInt(ctx *gin.Context, name string, fallback int) int {
	raw := ctx.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

// parseRecordDate accepts both RFC3339 timestamps and plain dates.
func parseRecordDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse(report.DateLayout, raw)
}

// handleReportError maps report errors to HTTP responses for record endpoints.
func handleReportError(ctx *gin.Context, err error) {
	var reportErr *domainerror.ReportError
	if errors.As(err, &reportErr) {
		ctx.JSON(statusCodeForReportError(reportErr.Code), dto.ErrorResponse{
			Error: reportErr.Message,
			Code:  string(reportErr.Code),
		})
		return
	}

	ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{
		Error: "An internal error occurred",
		Code:  string(domainerror.ErrCodeReportInternalError),
	})
}

// handleRecordError maps record errors to HTTP responses.
func handleRecordError(ctx *gin.Context, err error) {
	var recordErr *domainerror.RecordError
	if errors.As(err, &recordErr) {
		status := http.StatusBadRequest
		switch recordErr.Code {
		case domainerror.ErrCodeRecordNotFound:
			status = http.StatusNotFound
		case domainerror.ErrCodeRecordInternalError:
			status = http.StatusInternalServerError
		}
		ctx.JSON(status, dto.ErrorResponse{
			Error: recordErr.Message,
			Code:  string(recordErr.Code),
		})
		return
	}

	ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{
		Error: "An internal error occurred",
		Code:  string(domainerror.ErrCodeRecordInternalError),
	})
}
