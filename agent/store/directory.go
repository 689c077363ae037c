package store

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/sg19chess/mla-voice-saas/agent/contract"
)

// Directory resolves tenants by routing number with the fallbacks a
// single-tenant deployment needs: a configured default routing number,
// then the oldest active tenant.
type Directory struct {
	store          *Store
	defaultRouting string
}

func NewDirectory(st *Store, defaultRouting string) *Directory {
	return &Directory{
		store:          st,
		defaultRouting: strings.TrimSpace(defaultRouting),
	}
}

func (d *Directory) ResolveTenant(ctx context.Context, routingNumber string) (*contractx.Tenant, error) {
	tenant, err := d.store.ResolveTenant(ctx, routingNumber)
	if err == nil {
		return tenant, nil
	}
	if !errors.Is(err, contractx.ErrTenantUnresolved) {
		return nil, err
	}

	if d.defaultRouting != "" && d.defaultRouting != routingNumber {
		if tenant, err := d.store.ResolveTenant(ctx, d.defaultRouting); err == nil {
			return tenant, nil
		}
	}

	tenant, defErr := d.store.DefaultTenant(ctx)
	if defErr != nil {
		return nil, err
	}
	log.Warn().
		Str("routing_number", routingNumber).
		Str("tenant_id", tenant.ID).
		Msg("routing number unmatched, using default tenant")
	return tenant, nil
}
