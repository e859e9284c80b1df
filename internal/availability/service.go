package availability

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/pkg/apiclient"
	pkgerrors "github.com/ALBERTOESCALARI/smartcal-frontend-sub001/pkg/errors"
	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/pkg/logger"
)

// Service exposes availability and time-off requests.
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
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "availability: api client is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "availability: logger is required")
	}
	return &Service{client: params.Client, logg: params.Logger}, nil
}

func (s *Service) List(ctx context.Context, input ListRequestsInput) ([]Request, error) {
	query := url.Values{}
	if input.UserID != "" {
		query.Set("user_id", input.UserID)
	}
	if input.Status != "" {
		query.Set("status", input.Status)
	}

	var raw json.RawMessage
	if err := s.client.GetJSON(ctx, "availability.list", "/availability", query, &raw); err != nil {
		return nil, err
	}
	return decodeRequestList(raw)
}

func (s *Service) Create(ctx context.Context, input CreateRequestInput) (*Request, error) {
	if !input.End.After(input.Start) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request end must be after start")
	}
	var req Request
	if err := s.client.PostJSON(ctx, "availability.create", "/availability", input, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (s *Service) Approve(ctx context.Context, requestID string) (*Request, error) {
	return s.transition(ctx, "availability.approve", requestID, "approve")
}

func (s *Service) Deny(ctx context.Context, requestID string) (*Request, error) {
	return s.transition(ctx, "availability.deny", requestID, "deny")
}

func (s *Service) Cancel(ctx context.Context, requestID string) (*Request, error) {
	return s.transition(ctx, "availability.cancel", requestID, "cancel")
}

func (s *Service) Delete(ctx context.Context, requestID string) error {
	return s.client.Delete(ctx, "availability.delete", "/availability/"+url.PathEscape(requestID))
}

func (s *Service) transition(ctx context.Context, operation, requestID, action string) (*Request, error) {
	if requestID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id is required")
	}
	var req Request
	path := "/availability/" + url.PathEscape(requestID) + "/" + action
	if err := s.client.PostJSON(ctx, operation, path, nil, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func decodeRequestList(raw json.RawMessage) ([]Request, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var list []Request
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var envelope requestListResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDecode, err, "availability list payload")
	}
	return envelope.all(), nil
}
