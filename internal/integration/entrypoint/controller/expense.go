package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/studyroom/backend/internal/application/usecase/expense"
	"github.com/studyroom/backend/internal/application/usecase/report"
	domainerror "github.com/studyroom/backend/internal/domain/error"
	"github.com/studyroom/backend/internal/integration/entrypoint/dto"
)

// ExpenseController handles expense record endpoints.
type ExpenseController struct {
	listExpensesUseCase  *expense.ListExpensesUseCase
	recordExpenseUseCase *expense.RecordExpenseUseCase
}

// NewExpenseController creates a new expense controller instance.
func NewExpenseController(
	listExpensesUseCase *expense.ListExpensesUseCase,
	recordExpenseUseCase *expense.RecordExpenseUseCase,
) *ExpenseController {
	return &ExpenseController{
		listExpensesUseCase:  listExpensesUseCase,
		recordExpenseUseCase: recordExpenseUseCase,
	}
}

// List handles GET /expenses requests. Records are filtered by the optional
// date range and category key, newest first, with a count-backed total.
func (c *ExpenseController) List(ctx *gin.Context) {
	period, err := report.ParsePeriod(ctx.Query("start_date"), ctx.Query("end_date"))
	if err != nil {
		handleReportError(ctx, err)
		return
	}

	output, err := c.listExpensesUseCase.Execute(ctx.Request.Context(), expense.ListExpensesInput{
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

// Create handles POST /expenses requests.
func (c *ExpenseController) Create(ctx *gin.Context) {
	var req dto.CreateExpenseRequest
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

	spentAt, err := parseRecordDate(req.SpentAt)
	if err != nil {
		handleRecordError(ctx, domainerror.NewRecordError(
			domainerror.ErrCodeMissingOccurredAt,
			"spent_at must be a valid date",
			domainerror.ErrMissingOccurredAt,
		))
		return
	}

	created, err := c.recordExpenseUseCase.Execute(ctx.Request.Context(), expense.RecordExpenseInput{
		Category:    req.Category,
		Description: req.Description,
		Amount:      amount,
		SpentAt:     spentAt,
	})
	if err != nil {
		handleRecordError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.ToRecordResponse(created.Record()))
}
