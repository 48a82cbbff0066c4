package report

import (
	"time"

	"github.com/studyroom/backend/internal/domain/entity"
	domainerror "github.com/studyroom/backend/internal/domain/error"
)

// DateLayout is the wire format for period boundaries.
const DateLayout = "2006-01-02"

// ParsePeriod builds a ReportPeriod from optional YYYY-MM-DD boundary
// strings. Empty strings mean unbounded on that side. Dates are interpreted
// as UTC calendar days; the end bound is inclusive through end of day.
func ParsePeriod(startDate, endDate string) (entity.ReportPeriod, error) {
	var period entity.ReportPeriod

	if startDate != "" {
		start, err := time.ParseInLocation(DateLayout, startDate, time.UTC)
		if err != nil {
			return period, domainerror.NewReportError(
				domainerror.ErrCodeInvalidDateFormat,
				"invalid start_date format, expected YYYY-MM-DD",
				domainerror.ErrInvalidDateFormat,
			)
		}
		period.StartDate = &start
	}

	if endDate != "" {
		end, err := time.ParseInLocation(DateLayout, endDate, time.UTC)
		if err != nil {
			return period, domainerror.NewReportError(
				domainerror.ErrCodeInvalidDateFormat,
				"invalid end_date format, expected YYYY-MM-DD",
				domainerror.ErrInvalidDateFormat,
			)
		}
		end = end.Add(24*time.Hour - time.Nanosecond)
		period.EndDate = &end
	}

	if err := ValidatePeriod(period); err != nil {
		return entity.ReportPeriod{}, err
	}

	return period, nil
}

// ValidatePeriod rejects inverted date ranges before any query or network
// call is made.
func ValidatePeriod(period entity.ReportPeriod) error {
	if !period.IsValid() {
		return domainerror.NewReportError(
			domainerror.ErrCodeInvalidDateRange,
			"end_date must not be before start_date",
			domainerror.ErrInvalidDateRange,
		)
	}
	return nil
}

// FormatBound renders a period bound for query strings and file names,
// falling back to the given placeholder when the bound is open.
func FormatBound(bound *time.Time, placeholder string) string {
	if bound == nil {
		return placeholder
	}
	return bound.UTC().Format(DateLayout)
}
