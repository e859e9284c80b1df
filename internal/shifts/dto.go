package shifts

import "time"

// Shift is one scheduled block of work.
type Shift struct {
	ID       string     `json:"id"`
	TenantID string     `json:"tenant_id,omitempty"`
	UserID   string     `json:"user_id,omitempty"`
	Unit     string     `json:"unit,omitempty"`
	Role     string     `json:"role,omitempty"`
	Start    *time.Time `json:"start_time,omitempty"`
	End      *time.Time `json:"end_time,omitempty"`
	Notes    string     `json:"notes,omitempty"`
}

// CreateShiftInput holds the validated payload to create a shift.
type CreateShiftInput struct {
	UserID string    `json:"user_id,omitempty"`
	Unit   string    `json:"unit,omitempty"`
	Role   string    `json:"role,omitempty"`
	Start  time.Time `json:"start_time" validate:"required"`
	End    time.Time `json:"end_time" validate:"required"`
	Notes  string    `json:"notes,omitempty"`
}

// UpdateShiftInput holds optional mutation values for a shift.
type UpdateShiftInput struct {
	UserID *string    `json:"user_id,omitempty"`
	Unit   *string    `json:"unit,omitempty"`
	Role   *string    `json:"role,omitempty"`
	Start  *time.Time `json:"start_time,omitempty"`
	End    *time.Time `json:"end_time,omitempty"`
	Notes  *string    `json:"notes,omitempty"`
}

// ListShiftsInput narrows a shift listing.
type ListShiftsInput struct {
	UserID string
	Unit   string
	From   *time.Time
	To     *time.Time
}

type shiftListResponse struct {
	Items  []Shift `json:"items"`
	Shifts []Shift `json:"shifts"`
}

func (r shiftListResponse) all() []Shift {
	if len(r.Items) > 0 {
		return r.Items
	}
	return r.Shifts
}
