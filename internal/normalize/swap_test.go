package normalize

import (
	"testing"

	pkgerrors "github.com/ALBERTOESCALARI/smartcal-frontend-sub001/pkg/errors"
)

func TestCanonicalSwapStatus(t *testing.T) {
	cases := map[string]SwapStatus{
		"pending":   SwapPending,
		"APPROVED":  SwapApproved,
		"accepted":  SwapApproved,
		"denied":    SwapDeclined,
		"Declined":  SwapDeclined,
		"rejected":  SwapDeclined,
		"canceled":  SwapCancelled,
		"cancelled": SwapCancelled,
		" denied ":  SwapDeclined,
		"":          SwapPending,
		"bogus":     SwapPending,
	}
	for input, want := range cases {
		if got := CanonicalSwapStatus(input); got != want {
			t.Fatalf("status %q: expected %s, got %s", input, want, got)
		}
	}
}

func TestNormalizeSwapStatusAndNameAreAlwaysSet(t *testing.T) {
	payloads := []Raw{
		nil,
		{},
		{"status": 42, "requester_name": "  "},
		{"status": "denied"},
		{"requester_email": "ana.lopez@ward.example"},
		{"requester": map[string]any{"employee_id": "E-77"}},
		{"id": nil, "shift_id": nil, "notes": 12},
	}
	valid := map[SwapStatus]bool{
		SwapPending: true, SwapApproved: true, SwapDeclined: true, SwapCancelled: true,
	}

	for i, payload := range payloads {
		swap := NormalizeSwap(payload)
		if !valid[swap.Status] {
			t.Fatalf("payload %d: status %q is not canonical", i, swap.Status)
		}
		if swap.FromUserName == "" {
			t.Fatalf("payload %d: requester display name must never be empty", i)
		}
		if swap.ID == "" {
			t.Fatalf("payload %d: id must never be empty", i)
		}
	}
}

func TestNormalizeSwapNamePrecedence(t *testing.T) {
	tests := []struct {
		name string
		raw  Raw
		want string
	}{
		{"explicit name wins", Raw{"requester_name": "Ana Lopez", "requester_email": "x@y.z", "employee_id": "E-1"}, "Ana Lopez"},
		{"email local part next", Raw{"requester_email": "ana.lopez@ward.example", "employee_id": "E-1"}, "ana.lopez"},
		{"employee id next", Raw{"employee_id": "E-1"}, "E-1"},
		{"unknown last", Raw{}, "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeSwap(tt.raw).FromUserName; got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestNormalizeSwapSynonyms(t *testing.T) {
	if got := NormalizeSwap(Raw{"status": "denied"}).Status; got != SwapDeclined {
		t.Fatalf("denied should normalize to declined, got %s", got)
	}
	if got := NormalizeSwap(Raw{"status": "canceled"}).Status; got != SwapCancelled {
		t.Fatalf("canceled should normalize to cancelled, got %s", got)
	}
}

func TestNormalizeSwapDates(t *testing.T) {
	swap := NormalizeSwap(Raw{
		"created_at": "2026-03-01T09:30:00Z",
		"updated_at": "not a date",
		"shift": map[string]any{
			"start": "2026-03-02 07:00:00",
			"end":   "garbage",
			"unit":  "ICU",
		},
	})
	if swap.CreatedAt == nil {
		t.Fatalf("expected created_at to parse")
	}
	if swap.UpdatedAt != nil {
		t.Fatalf("malformed updated_at must normalize to nil, got %v", swap.UpdatedAt)
	}
	if swap.ShiftStart == nil {
		t.Fatalf("expected nested shift start to parse")
	}
	if swap.ShiftEnd != nil {
		t.Fatalf("malformed shift end must normalize to nil")
	}
	if swap.ShiftUnit != "ICU" {
		t.Fatalf("expected unit ICU, got %q", swap.ShiftUnit)
	}
}

func TestNormalizeSwapTargetOptional(t *testing.T) {
	bare := NormalizeSwap(Raw{"requester_name": "Ana"})
	if bare.ToUserName != "" || bare.ToUserID != "" {
		t.Fatalf("absent target must stay empty, got %+v", bare)
	}

	withTarget := NormalizeSwap(Raw{
		"requester_name": "Ana",
		"target":         map[string]any{"id": "u9", "email": "bo@ward.example"},
	})
	if withTarget.ToUserID != "u9" {
		t.Fatalf("expected target id u9, got %q", withTarget.ToUserID)
	}
	if withTarget.ToUserName != "bo" {
		t.Fatalf("expected target name bo, got %q", withTarget.ToUserName)
	}
}

func TestDecodeSwapRejectsNonObjects(t *testing.T) {
	if _, err := DecodeSwap("nope"); !pkgerrors.IsCode(err, pkgerrors.CodeDecode) {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestDecodeSwapListEnvelopes(t *testing.T) {
	bare := []any{map[string]any{"id": "s1", "status": "denied"}}
	swaps, err := DecodeSwapList(bare)
	if err != nil {
		t.Fatalf("bare array: %v", err)
	}
	if len(swaps) != 1 || swaps[0].Status != SwapDeclined {
		t.Fatalf("unexpected result %+v", swaps)
	}

	wrapped := map[string]any{"items": bare}
	swaps, err = DecodeSwapList(wrapped)
	if err != nil {
		t.Fatalf("wrapped envelope: %v", err)
	}
	if len(swaps) != 1 {
		t.Fatalf("expected one swap, got %d", len(swaps))
	}

	if _, err := DecodeSwapList(map[string]any{"unexpected": true}); !pkgerrors.IsCode(err, pkgerrors.CodeDecode) {
		t.Fatalf("expected decode error for unknown envelope, got %v", err)
	}
	if _, err := DecodeSwapList(42); !pkgerrors.IsCode(err, pkgerrors.CodeDecode) {
		t.Fatalf("expected decode error for scalar, got %v", err)
	}
}
