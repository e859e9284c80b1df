package shifts

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/pkg/apiclient"
	pkgerrors "github.com/ALBERTOESCALARI/smartcal-frontend-sub001/pkg/errors"
	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/pkg/logger"
)

// Service exposes shift management against the scheduling backend.
type Service struct {
	client *apiclient.Client
	logg   *logger.Logger
}

type ServiceParams struct {
	Client *apiclient.Client
	Logger *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "shifts: api client is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "shifts: logger is required")
	}
	return &Service{client: params.Client, logg: params.Logger}, nil
}

func (s *Service) List(ctx context.Context, input ListShiftsInput) ([]Shift, error) {
	query := url.Values{}
	if input.UserID != "" {
		query.Set("user_id", input.UserID)
	}
	if input.Unit != "" {
		query.Set("unit", input.Unit)
	}
	if input.From != nil {
		query.Set("from", input.From.Format(time.RFC3339))
	}
	if input.To != nil {
		query.Set("to", input.To.Format(time.RFC3339))
	}

	var raw json.RawMessage
	if err := s.client.GetJSON(ctx, "shifts.list", "/shifts", query, &raw); err != nil {
		return nil, err
	}
	return decodeShiftList(raw)
}

func (s *Service) Get(ctx context.Context, shiftID string) (*Shift, error) {
	var shift Shift
	if err := s.client.GetJSON(ctx, "shifts.get", "/shifts/"+url.PathEscape(shiftID), nil, &shift); err != nil {
		return nil, err
	}
	return &shift, nil
}

func (s *Service) Create(ctx context.Context, input CreateShiftInput) (*Shift, error) {
	if !input.End.After(input.Start) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shift end must be after start")
	}
	var shift Shift
	if err := s.client.PostJSON(ctx, "shifts.create", "/shifts", input, &shift); err != nil {
		return nil, err
	}
	return &shift, nil
}

func (s *Service) Update(ctx context.Context, shiftID string, input UpdateShiftInput) (*Shift, error) {
	var shift Shift
	if err := s.client.PatchJSON(ctx, "shifts.update", "/shifts/"+url.PathEscape(shiftID), input, &shift); err != nil {
		return nil, err
	}
	return &shift, nil
}

func (s *Service) Delete(ctx context.Context, shiftID string) error {
	return s.client.Delete(ctx, "shifts.delete", "/shifts/"+url.PathEscape(shiftID))
}

func decodeShiftList(raw json.RawMessage) ([]Shift, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var list []Shift
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var envelope shiftListResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDecode, err, "shift list payload")
	}
	return envelope.all(), nil
}
