package normalize

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/ALBERTOESCALARI/smartcal-frontend-sub001/pkg/errors"
)

// SwapStatus is always one of the four canonical values after
// normalization, whatever casing or synonym the backend used.
type SwapStatus string

const (
	SwapPending   SwapStatus = "pending"
	SwapApproved  SwapStatus = "approved"
	SwapDeclined  SwapStatus = "declined"
	SwapCancelled SwapStatus = "cancelled"
)

var swapStatusSynonyms = map[string]SwapStatus{
	"pending":   SwapPending,
	"approved":  SwapApproved,
	"accepted":  SwapApproved,
	"declined":  SwapDeclined,
	"denied":    SwapDeclined,
	"rejected":  SwapDeclined,
	"cancelled": SwapCancelled,
	"canceled":  SwapCancelled,
}

// CanonicalSwapStatus collapses synonyms and casing; unknown or missing
// input defaults to pending.
func CanonicalSwapStatus(raw string) SwapStatus {
	if status, ok := swapStatusSynonyms[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return status
	}
	return SwapPending
}

// Swap is the canonical shift-swap record. It is rebuilt from the raw
// payload on every fetch and never mutated in place.
type Swap struct {
	ID       string     `json:"id"`
	ShiftID  string     `json:"shift_id"`
	TenantID string     `json:"tenant_id"`
	Status   SwapStatus `json:"status"`

	FromUserID    string `json:"from_user_id"`
	FromUserName  string `json:"from_user_name"`
	FromUserEmail string `json:"from_user_email,omitempty"`

	ToUserID    string `json:"to_user_id,omitempty"`
	ToUserName  string `json:"to_user_name,omitempty"`
	ToUserEmail string `json:"to_user_email,omitempty"`

	Notes string `json:"notes,omitempty"`

	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`

	ShiftStart *time.Time `json:"shift_start,omitempty"`
	ShiftEnd   *time.Time `json:"shift_end,omitempty"`
	ShiftUnit  string     `json:"shift_unit,omitempty"`
}

// NormalizeSwap builds the canonical record from a raw payload. Total: any input
// yields a record with a canonical status, a non-empty requester display
// name, and a stable id.
func NormalizeSwap(raw Raw) Swap {
	if raw == nil {
		raw = Raw{}
	}

	requester := raw.nested("requester", "from_user")
	target := raw.nested("target", "to_user")
	shift := raw.nested("shift")

	fromID := firstNonEmpty(
		raw.stringField("requester_id", "from_user_id", "user_id"),
		requester.stringField("id"),
	)
	fromEmail := firstNonEmpty(
		raw.stringField("requester_email", "from_user_email", "email"),
		requester.stringField("email"),
	)
	fromEmployee := firstNonEmpty(
		raw.stringField("requester_employee_id", "employee_id"),
		requester.stringField("employee_id"),
	)
	fromName := displayName(
		firstNonEmpty(
			raw.stringField("requester_name", "from_user_name"),
			requester.stringField("name", "full_name"),
		),
		fromEmail,
		fromEmployee,
	)

	toID := firstNonEmpty(
		raw.stringField("target_id", "to_user_id"),
		target.stringField("id"),
	)
	toEmail := firstNonEmpty(
		raw.stringField("target_email", "to_user_email"),
		target.stringField("email"),
	)
	var toName string
	if toID != "" || toEmail != "" || target != nil {
		toName = displayName(
			firstNonEmpty(
				raw.stringField("target_name", "to_user_name"),
				target.stringField("name", "full_name"),
			),
			toEmail,
			firstNonEmpty(raw.stringField("target_employee_id"), target.stringField("employee_id")),
		)
	}

	id := raw.stringField("id", "swap_id", "swap_request_id", "_id", "uuid")
	if id == "" {
		// Only when nothing in the payload identifies the record: a random
		// id keeps per-render keys stable for this build of the record.
		id = firstNonEmpty(raw.stringField("shift_id"), fromID)
		if id == "" {
			id = uuid.NewString()
		}
	}

	return Swap{
		ID:       id,
		ShiftID:  firstNonEmpty(raw.stringField("shift_id", "shiftId"), shift.stringField("id")),
		TenantID: raw.stringField("tenant_id", "tenantId"),
		Status:   CanonicalSwapStatus(raw.stringField("status", "state")),

		FromUserID:    fromID,
		FromUserName:  fromName,
		FromUserEmail: fromEmail,

		ToUserID:    toID,
		ToUserName:  toName,
		ToUserEmail: toEmail,

		Notes: raw.stringField("notes", "note", "reason"),

		CreatedAt: raw.timeField("created_at", "createdAt", "created"),
		UpdatedAt: raw.timeField("updated_at", "updatedAt", "modified"),

		ShiftStart: pickTime(raw.timeField("shift_start", "start_time"), shift.timeField("start", "start_time")),
		ShiftEnd:   pickTime(raw.timeField("shift_end", "end_time"), shift.timeField("end", "end_time")),
		ShiftUnit:  firstNonEmpty(raw.stringField("shift_unit", "unit"), shift.stringField("unit", "unit_name")),
	}
}

// DecodeSwap is the tagged-decoder entry: it accepts only an object-shaped
// value and reports anything else as a decode error instead of inventing a
// record.
func DecodeSwap(value any) (Swap, error) {
	obj, ok := value.(map[string]any)
	if !ok {
		return Swap{}, pkgerrors.New(pkgerrors.CodeDecode, fmt.Sprintf("swap payload is %T, want object", value))
	}
	return NormalizeSwap(Raw(obj)), nil
}

// DecodeSwapList accepts the two historical list envelopes: a bare array or
// an object wrapping one under items/results/swaps.
func DecodeSwapList(value any) ([]Swap, error) {
	items, err := listItems(value, "items", "results", "swaps", "swap_requests")
	if err != nil {
		return nil, err
	}
	swaps := make([]Swap, 0, len(items))
	for _, item := range items {
		swap, err := DecodeSwap(item)
		if err != nil {
			return nil, err
		}
		swaps = append(swaps, swap)
	}
	return swaps, nil
}

func listItems(value any, envelopeKeys ...string) ([]any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []any:
		return v, nil
	case map[string]any:
		for _, key := range envelopeKeys {
			if items, ok := v[key].([]any); ok {
				return items, nil
			}
		}
		return nil, pkgerrors.New(pkgerrors.CodeDecode, "list payload has no recognized envelope")
	default:
		return nil, pkgerrors.New(pkgerrors.CodeDecode, fmt.Sprintf("list payload is %T, want array or envelope", value))
	}
}

func pickTime(first, second *time.Time) *time.Time {
	if first != nil {
		return first
	}
	return second
}
