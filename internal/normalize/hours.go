package normalize

import (
	"fmt"

	pkgerrors "github.com/ALBERTOESCALARI/smartcal-frontend-sub001/pkg/errors"
	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/pkg/session"
)

// HourSummary aggregates worked and leave hours per user for a tenant.
// Every numeric field is a finite number after normalization.
type HourSummary struct {
	UserID     string `json:"user_id"`
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	EmployeeID string `json:"employee_id,omitempty"`

	RegularHours  float64 `json:"regular_hours"`
	OvertimeHours float64 `json:"overtime_hours"`
	PTOHours      float64 `json:"pto_hours"`
	SickHours     float64 `json:"sick_hours"`
	VacationHours float64 `json:"vacation_hours"`
	TotalHours    float64 `json:"total_hours"`

	PTOAccrualRate      float64 `json:"pto_accrual_rate"`
	SickAccrualRate     float64 `json:"sick_accrual_rate"`
	VacationAccrualRate float64 `json:"vacation_accrual_rate"`
}

// NormalizeHourEntry builds the canonical summary from a raw payload.
// Malformed or missing numerics coerce to 0, never NaN.
func NormalizeHourEntry(raw Raw) HourSummary {
	if raw == nil {
		raw = Raw{}
	}

	user := raw.nested("user")
	accruals := raw.nested("accruals", "accrual_rates")

	email := firstNonEmpty(raw.stringField("email", "user_email"), user.stringField("email"))
	employeeID := firstNonEmpty(raw.stringField("employee_id"), user.stringField("employee_id"))

	summary := HourSummary{
		UserID:     firstNonEmpty(raw.stringField("user_id", "id"), user.stringField("id")),
		Email:      email,
		EmployeeID: employeeID,
		Name: displayName(
			firstNonEmpty(raw.stringField("name", "user_name", "full_name"), user.stringField("name", "full_name")),
			email,
			employeeID,
		),

		RegularHours:  raw.numberField("regular_hours", "regular", "worked_hours"),
		OvertimeHours: raw.numberField("overtime_hours", "overtime", "ot_hours"),
		PTOHours:      raw.numberField("pto_hours", "pto"),
		SickHours:     raw.numberField("sick_hours", "sick"),
		VacationHours: raw.numberField("vacation_hours", "vacation"),

		PTOAccrualRate:      firstNumber(raw.numberField("pto_accrual_rate", "pto_rate"), accruals.numberField("pto")),
		SickAccrualRate:     firstNumber(raw.numberField("sick_accrual_rate", "sick_rate"), accruals.numberField("sick")),
		VacationAccrualRate: firstNumber(raw.numberField("vacation_accrual_rate", "vacation_rate"), accruals.numberField("vacation")),
	}

	summary.TotalHours = raw.numberField("total_hours", "total")
	if summary.TotalHours == 0 {
		summary.TotalHours = summary.RegularHours + summary.OvertimeHours +
			summary.PTOHours + summary.SickHours + summary.VacationHours
	}
	return summary
}

// ZeroSummaryForUser derives a zero-filled record from the tenant's user
// list, the fallback when the hours endpoint reports not-found.
func ZeroSummaryForUser(user session.User) HourSummary {
	return HourSummary{
		UserID:     user.ID,
		Email:      user.Email,
		EmployeeID: user.EmployeeID,
		Name:       displayName(user.Name, user.Email, user.EmployeeID),
	}
}

// DecodeHourEntry accepts only an object-shaped value.
func DecodeHourEntry(value any) (HourSummary, error) {
	obj, ok := value.(map[string]any)
	if !ok {
		return HourSummary{}, pkgerrors.New(pkgerrors.CodeDecode, fmt.Sprintf("hour payload is %T, want object", value))
	}
	return NormalizeHourEntry(Raw(obj)), nil
}

// DecodeHourEntryList accepts a bare array or a recognized envelope.
func DecodeHourEntryList(value any) ([]HourSummary, error) {
	items, err := listItems(value, "items", "results", "entries", "hours")
	if err != nil {
		return nil, err
	}
	summaries := make([]HourSummary, 0, len(items))
	for _, item := range items {
		summary, err := DecodeHourEntry(item)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func firstNumber(values ...float64) float64 {
	for _, value := range values {
		if value != 0 {
			return value
		}
	}
	return 0
}
