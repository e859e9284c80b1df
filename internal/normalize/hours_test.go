package normalize

import (
	"math"
	"testing"

	pkgerrors "github.com/ALBERTOESCALARI/smartcal-frontend-sub001/pkg/errors"
	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/pkg/session"
)

func assertFinite(t *testing.T, label string, value float64) {
	t.Helper()
	if math.IsNaN(value) || math.IsInf(value, 0) {
		t.Fatalf("%s must be finite, got %f", label, value)
	}
}

func TestNormalizeHourEntryNumericsAlwaysFinite(t *testing.T) {
	payloads := []Raw{
		nil,
		{},
		{"regular_hours": "not a number"},
		{"regular_hours": nil, "overtime_hours": map[string]any{}},
		{"pto_hours": "NaN", "sick_hours": "Inf"},
		{"regular_hours": "38.5", "overtime_hours": 4},
	}

	for i, payload := range payloads {
		summary := NormalizeHourEntry(payload)
		fields := map[string]float64{
			"regular":  summary.RegularHours,
			"overtime": summary.OvertimeHours,
			"pto":      summary.PTOHours,
			"sick":     summary.SickHours,
			"vacation": summary.VacationHours,
			"total":    summary.TotalHours,
		}
		for label, value := range fields {
			assertFinite(t, label, value)
		}
		if summary.Name == "" {
			t.Fatalf("payload %d: name must never be empty", i)
		}
	}
}

func TestNormalizeHourEntryMissingNumbersDefaultToZero(t *testing.T) {
	summary := NormalizeHourEntry(Raw{"user_id": "u1", "name": "Ana"})
	if summary.RegularHours != 0 || summary.OvertimeHours != 0 || summary.PTOHours != 0 ||
		summary.SickHours != 0 || summary.VacationHours != 0 || summary.TotalHours != 0 {
		t.Fatalf("missing numerics must default to 0, got %+v", summary)
	}
}

func TestNormalizeHourEntryCoercionAndTotal(t *testing.T) {
	summary := NormalizeHourEntry(Raw{
		"user_id":        "u1",
		"regular_hours":  "38.5",
		"overtime_hours": float64(4),
		"pto_hours":      "oops",
		"accruals":       map[string]any{"pto": 0.25, "sick": "0.1"},
	})
	if summary.RegularHours != 38.5 {
		t.Fatalf("expected 38.5 regular, got %f", summary.RegularHours)
	}
	if summary.OvertimeHours != 4 {
		t.Fatalf("expected 4 overtime, got %f", summary.OvertimeHours)
	}
	if summary.PTOHours != 0 {
		t.Fatalf("malformed pto must coerce to 0, got %f", summary.PTOHours)
	}
	if summary.TotalHours != 42.5 {
		t.Fatalf("expected derived total 42.5, got %f", summary.TotalHours)
	}
	if summary.PTOAccrualRate != 0.25 {
		t.Fatalf("expected nested pto accrual 0.25, got %f", summary.PTOAccrualRate)
	}
	if summary.SickAccrualRate != 0.1 {
		t.Fatalf("expected nested sick accrual 0.1, got %f", summary.SickAccrualRate)
	}
}

func TestNormalizeHourEntryNameFallbacks(t *testing.T) {
	fromEmail := NormalizeHourEntry(Raw{"email": "kim.soto@ward.example"})
	if fromEmail.Name != "kim.soto" {
		t.Fatalf("expected email local part, got %q", fromEmail.Name)
	}

	fromNested := NormalizeHourEntry(Raw{"user": map[string]any{"full_name": "Kim Soto"}})
	if fromNested.Name != "Kim Soto" {
		t.Fatalf("expected nested name, got %q", fromNested.Name)
	}
}

func TestZeroSummaryForUser(t *testing.T) {
	summary := ZeroSummaryForUser(session.User{ID: "u1", Email: "kim@ward.example", EmployeeID: "E-2"})
	if summary.UserID != "u1" {
		t.Fatalf("expected user id u1, got %q", summary.UserID)
	}
	if summary.Name != "kim" {
		t.Fatalf("expected derived name kim, got %q", summary.Name)
	}
	if summary.TotalHours != 0 || summary.RegularHours != 0 {
		t.Fatalf("fallback summary must be zero filled, got %+v", summary)
	}
}

func TestDecodeHourEntryList(t *testing.T) {
	value := map[string]any{"entries": []any{map[string]any{"user_id": "u1", "regular_hours": 8}}}
	summaries, err := DecodeHourEntryList(value)
	if err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(summaries) != 1 || summaries[0].RegularHours != 8 {
		t.Fatalf("unexpected result %+v", summaries)
	}

	if _, err := DecodeHourEntryList("nope"); !pkgerrors.IsCode(err, pkgerrors.CodeDecode) {
		t.Fatalf("expected decode error, got %v", err)
	}
}
