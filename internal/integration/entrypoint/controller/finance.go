package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/studyroom/backend/internal/application/usecase/report"
	domainerror "github.com/studyroom/backend/internal/domain/error"
	"github.com/studyroom/backend/internal/integration/entrypoint/dto"
	"github.com/studyroom/backend/internal/integration/render"
)

// FinanceController handles the finance report endpoints.
type FinanceController struct {
	getBalanceSheetUseCase   *report.GetBalanceSheetUseCase
	getMonthlySummaryUseCase *report.GetMonthlySummaryUseCase
}

// NewFinanceController creates a new finance controller instance.
func NewFinanceController(
	getBalanceSheetUseCase *report.GetBalanceSheetUseCase,
	getMonthlySummaryUseCase *report.GetMonthlySummaryUseCase,
) *FinanceController {
	return &FinanceController{
		getBalanceSheetUseCase:   getBalanceSheetUseCase,
		getMonthlySummaryUseCase: getMonthlySummaryUseCase,
	}
}

// GetDetail handles GET /finance/detail requests: the pre-aggregated
// balance sheet with an initial page of items per group.
func (c *FinanceController) GetDetail(ctx *gin.Context) {
	period, err := report.ParsePeriod(ctx.Query("start_date"), ctx.Query("end_date"))
	if err != nil {
		handleReportError(ctx, err)
		return
	}

	pageSize, err := strconv.Atoi(ctx.DefaultQuery("page_size", "0"))
	if err != nil || pageSize < 0 {
		pageSize = 0
	}

	output, err := c.getBalanceSheetUseCase.Execute(ctx.Request.Context(), report.GetBalanceSheetInput{
		Period:       period,
		PageSizeHint: pageSize,
	})
	if err != nil {
		handleReportError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToAggregateResponse(output))
}

// GetMonthly handles GET /finance/monthly requests: the calendar-bucketed
// overview summary.
func (c *FinanceController) GetMonthly(ctx *gin.Context) {
	months, err := strconv.Atoi(ctx.DefaultQuery("months", "6"))
	if err != nil || months <= 0 {
		months = 6
	}

	offset, err := strconv.Atoi(ctx.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	period := ctx.DefaultQuery("period", string(report.BucketPeriodMonth))

	output, err := c.getMonthlySummaryUseCase.Execute(ctx.Request.Context(), report.GetMonthlySummaryInput{
		Months: months,
		Offset: offset,
		Period: report.BucketPeriod(period),
	})
	if err != nil {
		handleReportError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToMonthlySummaryResponse(output))
}

// ExportCSV handles GET /finance/export requests: the full balance sheet as
// a CSV download covering all items per group, not just the first page.
func (c *FinanceController) ExportCSV(ctx *gin.Context) {
	period, err := report.ParsePeriod(ctx.Query("start_date"), ctx.Query("end_date"))
	if err != nil {
		handleReportError(ctx, err)
		return
	}

	output, err := c.getBalanceSheetUseCase.Execute(ctx.Request.Context(), report.GetBalanceSheetInput{
		Period:   period,
		Complete: true,
	})
	if err != nil {
		handleReportError(ctx, err)
		return
	}

	filename := render.CSVFilename(period)
	ctx.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	ctx.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(render.CSV(output)))
}

// statusCodeForReportError maps report error codes to HTTP status codes.
func statusCodeForReportError(code domainerror.ReportErrorCode) int {
	switch code {
	case domainerror.ErrCodeMissingStartDate,
		domainerror.ErrCodeMissingEndDate,
		domainerror.ErrCodeInvalidDateRange,
		domainerror.ErrCodeInvalidDateFormat,
		domainerror.ErrCodeInvalidPeriodParam:
		return http.StatusBadRequest
	case domainerror.ErrCodeReportUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
