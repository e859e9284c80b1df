package hours

import (
	"context"
	"net/url"

	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/internal/normalize"
	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/pkg/apiclient"
	pkgerrors "github.com/ALBERTOESCALARI/smartcal-frontend-sub001/pkg/errors"
	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/pkg/logger"
	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/pkg/session"
)

// Service exposes worked-hour and accrual summaries. Payloads go through
// normalize so every numeric field is finite and every row has a display name.
type Service struct {
	client *apiclient.Client
	sess   *session.Context
	logg   *logger.Logger
}

type ServiceParams struct {
	Client *apiclient.Client
	Logger *logger.Logger
}

// PatchEntryInput holds optional corrections to one user's hour record.
type PatchEntryInput struct {
	RegularHours  *float64 `json:"regular_hours,omitempty"`
	OvertimeHours *float64 `json:"overtime_hours,omitempty"`
	PTOHours      *float64 `json:"pto_hours,omitempty"`
	SickHours     *float64 `json:"sick_hours,omitempty"`
	VacationHours *float64 `json:"vacation_hours,omitempty"`
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "hours: api client is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "hours: logger is required")
	}
	return &Service{client: params.Client, sess: params.Client.Session(), logg: params.Logger}, nil
}

// ListSummaries fetches hour summaries for every user in the active tenant.
func (s *Service) ListSummaries(ctx context.Context) ([]normalize.HourSummary, error) {
	var payload any
	if err := s.client.GetJSON(ctx, "hours.list", "/hours", nil, &payload); err != nil {
		return nil, err
	}
	return normalize.DecodeHourEntryList(payload)
}

// UserSummary fetches one user's summary. A user with no hour record yet is
// not an error; the caller gets an all-zero summary for the signed-in user
// instead, so first-day accounts render like everyone else.
func (s *Service) UserSummary(ctx context.Context, userID string) (normalize.HourSummary, error) {
	if userID == "" {
		return normalize.HourSummary{}, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	var payload any
	err := s.client.GetJSON(ctx, "hours.user_summary", "/hours/"+url.PathEscape(userID), nil, &payload)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			s.logg.Debug(s.logg.WithUserID(ctx, userID), "no hour record, returning zero summary")
			return s.zeroSummary(ctx, userID), nil
		}
		return normalize.HourSummary{}, err
	}
	return normalize.DecodeHourEntry(payload)
}

// PatchEntry applies corrections to a user's hour record and returns the
// normalized result.
func (s *Service) PatchEntry(ctx context.Context, userID string, input PatchEntryInput) (normalize.HourSummary, error) {
	if userID == "" {
		return normalize.HourSummary{}, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	var payload any
	if err := s.client.PatchJSON(ctx, "hours.patch", "/hours/"+url.PathEscape(userID), input, &payload); err != nil {
		return normalize.HourSummary{}, err
	}
	return normalize.DecodeHourEntry(payload)
}

func (s *Service) zeroSummary(ctx context.Context, userID string) normalize.HourSummary {
	if user, ok := s.sess.User(ctx); ok && user.ID == userID {
		return normalize.ZeroSummaryForUser(*user)
	}
	return normalize.ZeroSummaryForUser(session.User{ID: userID})
}
