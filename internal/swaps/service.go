package swaps

import (
	"context"
	"net/url"

	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/internal/normalize"
	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/pkg/apiclient"
	pkgerrors "github.com/ALBERTOESCALARI/smartcal-frontend-sub001/pkg/errors"
	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/pkg/logger"
)

// Service exposes shift-swap requests. Every payload that reaches a caller
// went through normalize first, so statuses and display names are always
// usable no matter what the backend sent.
type Service struct {
	client *apiclient.Client
	logg   *logger.Logger
}

type ServiceParams struct {
	Client *apiclient.Client
	Logger *logger.Logger
}

// CreateSwapInput holds the payload to request a swap.
type CreateSwapInput struct {
	ShiftID      string `json:"shift_id" validate:"required"`
	TargetUserID string `json:"target_user_id,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "swaps: api client is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "swaps: logger is required")
	}
	return &Service{client: params.Client, logg: params.Logger}, nil
}

// List fetches swap requests, optionally narrowed by status.
func (s *Service) List(ctx context.Context, status normalize.SwapStatus) ([]normalize.Swap, error) {
	query := url.Values{}
	if status != "" {
		query.Set("status", string(status))
	}

	var payload any
	if err := s.client.GetJSON(ctx, "swaps.list", "/swap-requests", query, &payload); err != nil {
		return nil, err
	}
	return normalize.DecodeSwapList(payload)
}

func (s *Service) Get(ctx context.Context, swapID string) (*normalize.Swap, error) {
	var payload any
	if err := s.client.GetJSON(ctx, "swaps.get", "/swap-requests/"+url.PathEscape(swapID), nil, &payload); err != nil {
		return nil, err
	}
	swap, err := normalize.DecodeSwap(payload)
	if err != nil {
		return nil, err
	}
	return &swap, nil
}

func (s *Service) Create(ctx context.Context, input CreateSwapInput) (*normalize.Swap, error) {
	if input.ShiftID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shift id is required")
	}
	var payload any
	if err := s.client.PostJSON(ctx, "swaps.create", "/swap-requests", input, &payload); err != nil {
		return nil, err
	}
	swap, err := normalize.DecodeSwap(payload)
	if err != nil {
		return nil, err
	}
	return &swap, nil
}

func (s *Service) Approve(ctx context.Context, swapID string) (*normalize.Swap, error) {
	return s.transition(ctx, "swaps.approve", swapID, "approve")
}

func (s *Service) Decline(ctx context.Context, swapID string) (*normalize.Swap, error) {
	return s.transition(ctx, "swaps.decline", swapID, "decline")
}

func (s *Service) Cancel(ctx context.Context, swapID string) (*normalize.Swap, error) {
	return s.transition(ctx, "swaps.cancel", swapID, "cancel")
}

func (s *Service) transition(ctx context.Context, operation, swapID, action string) (*normalize.Swap, error) {
	if swapID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "swap id is required")
	}
	var payload any
	path := "/swap-requests/" + url.PathEscape(swapID) + "/" + action
	if err := s.client.PostJSON(ctx, operation, path, nil, &payload); err != nil {
		return nil, err
	}
	swap, err := normalize.DecodeSwap(payload)
	if err != nil {
		return nil, err
	}
	return &swap, nil
}
