// Package service computes the per-user dashboard.
package service

import (
	"context"
	"time"

	"crm_backend/internal/dashboard/transport"
	"crm_backend/internal/leads/ports"
	leadtransport "crm_backend/internal/leads/transport"
	"crm_backend/platform/httpkit"
	"crm_backend/platform/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type Leads interface {
	ListVisible(ctx context.Context, actor httpkit.Identity) ([]leadtransport.LeadResponse, error)
}

type Followups interface {
	ListForUser(ctx context.Context, actor httpkit.Identity) ([]leadtransport.FollowupResponse, error)
}

// Cache stores computed dashboards per tenant and user.
type Cache interface {
	Get(ctx context.Context, tenantID, userID uuid.UUID) (transport.DashboardResponse, bool, error)
	Set(ctx context.Context, tenantID, userID uuid.UUID, resp transport.DashboardResponse) error
	InvalidateTenant(ctx context.Context, tenantID uuid.UUID) error
}

type Service struct {
	leads     Leads
	followups Followups
	users     ports.UserLister
	cache     Cache
	log       *logger.Logger
	now       func() time.Time
}

// New creates the service. cache may be nil, in which case every request
// recomputes.
func New(leads Leads, followups Followups, users ports.UserLister, cache Cache, log *logger.Logger) *Service {
	return &Service{
		leads:     leads,
		followups: followups,
		users:     users,
		cache:     cache,
		log:       log,
		now:       time.Now,
	}
}

// Get returns the dashboard of actor: tenant-wide for admins, own leads and
// follow-ups for reps.
func (s *Service) Get(ctx context.Context, actor httpkit.Identity) (transport.DashboardResponse, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, actor.TenantID(), actor.UserID())
		if err != nil {
			s.log.WithContext(ctx).Warn("dashboard cache read failed", "error", err)
		} else if ok {
			return cached, nil
		}
	}

	in, err := s.load(ctx, actor)
	if err != nil {
		return transport.DashboardResponse{}, err
	}
	resp := Compute(in, s.now())

	if s.cache != nil {
		if err := s.cache.Set(ctx, actor.TenantID(), actor.UserID(), resp); err != nil {
			s.log.WithContext(ctx).Warn("dashboard cache write failed", "error", err)
		}
	}
	return resp, nil
}

// Invalidate drops every cached dashboard of the tenant.
func (s *Service) Invalidate(ctx context.Context, tenantID uuid.UUID) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.InvalidateTenant(ctx, tenantID)
}

func (s *Service) load(ctx context.Context, actor httpkit.Identity) (Input, error) {
	var in Input
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		leads, err := s.leads.ListVisible(gctx, actor)
		in.Leads = leads
		return err
	})
	g.Go(func() error {
		followups, err := s.followups.ListForUser(gctx, actor)
		in.Followups = followups
		return err
	})
	if actor.IsAdmin() {
		g.Go(func() error {
			users, err := s.users.ListUsers(gctx, actor.TenantID())
			in.Users = users
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return Input{}, err
	}
	return in, nil
}
