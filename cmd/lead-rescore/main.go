// Command lead-rescore recomputes lead scores for one organization or all of them.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	authadapter "crm_backend/internal/auth/adapter"
	authrepo "crm_backend/internal/auth/repository"
	"crm_backend/internal/events"
	"crm_backend/internal/leads"
	"crm_backend/platform/config"
	"crm_backend/platform/db"
	"crm_backend/platform/logger"
	"crm_backend/platform/retry"
	"crm_backend/platform/validator"

	"github.com/google/uuid"
)

var errUsage = errors.New("usage: lead-rescore -org <uuid> | -all")

// target is what one run rescores: every organization, or just orgID.
type target struct {
	all   bool
	orgID uuid.UUID
}

func parseTarget(org string, all bool) (target, error) {
	if (org == "") == !all {
		return target{}, errUsage
	}
	if all {
		return target{all: true}, nil
	}
	orgID, err := uuid.Parse(org)
	if err != nil {
		return target{}, fmt.Errorf("invalid -org: %w", err)
	}
	if orgID == uuid.Nil {
		return target{}, errors.New("invalid -org: nil organization id")
	}
	return target{orgID: orgID}, nil
}

func main() {
	orgFlag := flag.String("org", "", "organization id to rescore")
	all := flag.Bool("all", false, "rescore every organization")
	flag.Parse()

	tgt, err := parseTarget(*orgFlag, *all)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log, tgt); err != nil {
		log.Error("lead rescore failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger, tgt target) error {
	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := retry.Do(ctx, log, "database ping", 3, time.Second, func() error {
		return pool.Ping(ctx)
	}); err != nil {
		return err
	}

	eventBus := events.NewInMemoryBus(log)
	users := authadapter.NewUserDirectoryAdapter(authrepo.New(pool))
	mgmt := leads.NewModule(pool, users, eventBus, nil, cfg, nil, validator.New(), log).Management()

	start := time.Now()
	var updated int
	if tgt.all {
		updated, err = mgmt.RescoreAllOrganizations(ctx)
	} else {
		updated, err = mgmt.Rescore(ctx, tgt.orgID)
	}
	if err != nil {
		return err
	}

	eventBus.Wait()
	log.Info("lead rescore complete", "all", tgt.all, "organizationId", tgt.orgID, "updated", updated, "duration", time.Since(start))
	return nil
}
