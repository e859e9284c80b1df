package availability

import "time"

// Status values for a time-off or availability request.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusDenied   = "denied"
	StatusCanceled = "canceled"
)

// Request is one availability or time-off request.
type Request struct {
	ID        string     `json:"id"`
	TenantID  string     `json:"tenant_id,omitempty"`
	UserID    string     `json:"user_id,omitempty"`
	Kind      string     `json:"kind,omitempty"`
	Status    string     `json:"status"`
	Start     *time.Time `json:"start_time,omitempty"`
	End       *time.Time `json:"end_time,omitempty"`
	Reason    string     `json:"reason,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// CreateRequestInput holds the payload to file a request.
type CreateRequestInput struct {
	Kind   string    `json:"kind,omitempty"`
	Start  time.Time `json:"start_time" validate:"required"`
	End    time.Time `json:"end_time" validate:"required"`
	Reason string    `json:"reason,omitempty"`
}

// ListRequestsInput narrows a request listing.
type ListRequestsInput struct {
	UserID string
	Status string
}

type requestListResponse struct {
	Items    []Request `json:"items"`
	Requests []Request `json:"requests"`
}

func (r requestListResponse) all() []Request {
	if len(r.Items) > 0 {
		return r.Items
	}
	return r.Requests
}
