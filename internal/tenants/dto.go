package tenants

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tenant is one scheduling organization as the backend reports it.
type Tenant struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Slug       string          `json:"slug,omitempty"`
	Timezone   string          `json:"timezone,omitempty"`
	HourlyRate decimal.Decimal `json:"hourly_rate"`
	CreatedAt  *time.Time      `json:"created_at,omitempty"`
}

// CreateTenantInput holds the validated payload to create a tenant.
type CreateTenantInput struct {
	Name       string          `json:"name" validate:"required"`
	Slug       string          `json:"slug,omitempty"`
	Timezone   string          `json:"timezone,omitempty"`
	HourlyRate decimal.Decimal `json:"hourly_rate,omitempty"`
}

// UpdateTenantInput holds optional mutation values for a tenant.
type UpdateTenantInput struct {
	Name       *string          `json:"name,omitempty"`
	Slug       *string          `json:"slug,omitempty"`
	Timezone   *string          `json:"timezone,omitempty"`
	HourlyRate *decimal.Decimal `json:"hourly_rate,omitempty"`
}

type tenantListResponse struct {
	Items   []Tenant `json:"items"`
	Tenants []Tenant `json:"tenants"`
}

func (r tenantListResponse) all() []Tenant {
	if len(r.Items) > 0 {
		return r.Items
	}
	return r.Tenants
}

type hourlyRateResponse struct {
	HourlyRate decimal.Decimal `json:"hourly_rate"`
}
