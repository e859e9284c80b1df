package tenants

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/shopspring/decimal"

	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/pkg/apiclient"
	pkgerrors "github.com/ALBERTOESCALARI/smartcal-frontend-sub001/pkg/errors"
	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/pkg/logger"
	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/pkg/session"
)

// Service exposes tenant management against the scheduling backend.
type Service struct {
	client *apiclient.Client
	sess   *session.Context
	logg   *logger.Logger
}

// ServiceParams wires the tenant service dependencies.
type ServiceParams struct {
	Client *apiclient.Client
	Logger *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "tenants: api client is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "tenants: logger is required")
	}
	return &Service{client: params.Client, sess: params.Client.Session(), logg: params.Logger}, nil
}

func (s *Service) List(ctx context.Context) ([]Tenant, error) {
	var raw json.RawMessage
	if err := s.client.GetJSON(ctx, "tenants.list", "/tenants", nil, &raw); err != nil {
		return nil, err
	}
	return decodeTenantList(raw)
}

func (s *Service) Get(ctx context.Context, tenantID string) (*Tenant, error) {
	var tenant Tenant
	if err := s.client.GetJSON(ctx, "tenants.get", "/tenants/"+url.PathEscape(tenantID), nil, &tenant); err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (s *Service) Create(ctx context.Context, input CreateTenantInput) (*Tenant, error) {
	var tenant Tenant
	if err := s.client.PostJSON(ctx, "tenants.create", "/tenants", input, &tenant); err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (s *Service) Update(ctx context.Context, tenantID string, input UpdateTenantInput) (*Tenant, error) {
	var tenant Tenant
	if err := s.client.PatchJSON(ctx, "tenants.update", "/tenants/"+url.PathEscape(tenantID), input, &tenant); err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (s *Service) Delete(ctx context.Context, tenantID string) error {
	return s.client.Delete(ctx, "tenants.delete", "/tenants/"+url.PathEscape(tenantID))
}

// HourlyRate reads the tenant's billing rate as an exact decimal so rounding
// artifacts cannot leak into payroll math.
func (s *Service) HourlyRate(ctx context.Context, tenantID string) (decimal.Decimal, error) {
	var resp hourlyRateResponse
	if err := s.client.GetJSON(ctx, "tenants.hourly_rate", "/tenants/"+url.PathEscape(tenantID)+"/hourly-rate", nil, &resp); err != nil {
		return decimal.Zero, err
	}
	return resp.HourlyRate, nil
}

func (s *Service) SetHourlyRate(ctx context.Context, tenantID string, rate decimal.Decimal) error {
	if rate.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "hourly rate cannot be negative")
	}
	body := hourlyRateResponse{HourlyRate: rate}
	return s.client.PatchJSON(ctx, "tenants.set_hourly_rate", "/tenants/"+url.PathEscape(tenantID)+"/hourly-rate", body, nil)
}

// Switch verifies the tenant exists, then persists it as the active tenant.
// The id survives logout so the next session lands in the same tenant.
func (s *Service) Switch(ctx context.Context, tenantID string) (*Tenant, error) {
	tenant, err := s.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if err := s.sess.SetActiveTenantID(ctx, tenant.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist active tenant")
	}
	return tenant, nil
}

// ActAs scopes subsequent requests to another tenant without touching the
// persisted tenant id. ClearActAs reverts to the persisted one.
func (s *Service) ActAs(ctx context.Context, tenantID string) error {
	if tenantID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "tenant id is required")
	}
	return s.sess.SetActAsTenant(ctx, tenantID)
}

func (s *Service) ClearActAs(ctx context.Context) error {
	return s.sess.ClearActAsTenant(ctx)
}

func decodeTenantList(raw json.RawMessage) ([]Tenant, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var list []Tenant
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var envelope tenantListResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDecode, err, "tenant list payload")
	}
	return envelope.all(), nil
}
