// Package engine orchestrates one collection request end to end: authorize
// the caller, resolve target accounts, broker per-account credentials, fan
// the collector out across account×region tasks, and aggregate the settled
// results. The engine never calls the AWS SDK directly; it delegates to the
// provider, broker, resolver, and collector interfaces.
package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pankaj-dahiya-devops/cloud-inventory/internal/auth"
	"github.com/pankaj-dahiya-devops/cloud-inventory/internal/config"
	"github.com/pankaj-dahiya-devops/cloud-inventory/internal/models"
	"github.com/pankaj-dahiya-devops/cloud-inventory/internal/providers/aws/common"
	"github.com/pankaj-dahiya-devops/cloud-inventory/internal/providers/aws/inventory"
)

// defaultWorkers bounds outbound API concurrency when no pool width is
// configured.
const defaultWorkers = 10

// Engine is the central orchestration interface.
type Engine interface {
	// Collect runs one inventory collection for the caller. A non-nil error
	// means validation, authorization, or an internal failure aborted the
	// whole request; per-task failures never do — they appear in the
	// result's Errors list alongside whatever resources were obtained.
	Collect(ctx context.Context, caller models.AuthContext, req models.CollectionRequest) (*models.CollectionResult, error)

	// Accounts returns the account list the resolver would target when a
	// request names none.
	Accounts(ctx context.Context) ([]models.Account, error)
}

// Options configures a DefaultEngine.
type Options struct {
	Provider common.AWSClientProvider
	Broker   common.CredentialBroker
	Resolver common.AccountResolver
	Registry *inventory.Registry
	Filter   *auth.Filter

	// Regions is the default region set used when a request names none.
	// Empty means config.DefaultRegions.
	Regions []string

	// Workers is the worker-pool width. Zero means defaultWorkers.
	Workers int

	Logger zerolog.Logger
}

// DefaultEngine is the production Engine.
type DefaultEngine struct {
	provider common.AWSClientProvider
	broker   common.CredentialBroker
	resolver common.AccountResolver
	registry *inventory.Registry
	filter   *auth.Filter
	regions  []string
	workers  int
	log      zerolog.Logger
}

// NewDefaultEngine wires a DefaultEngine from its collaborators.
func NewDefaultEngine(opts Options) *DefaultEngine {
	regions := opts.Regions
	if len(regions) == 0 {
		regions = config.DefaultRegions
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &DefaultEngine{
		provider: opts.Provider,
		broker:   opts.Broker,
		resolver: opts.Resolver,
		registry: opts.Registry,
		filter:   opts.Filter,
		regions:  regions,
		workers:  workers,
		log:      opts.Logger,
	}
}

// Collect implements Engine.
//
// The authorization check runs strictly first: an unauthorized request
// performs zero account-resolution and credential-brokering calls.
func (e *DefaultEngine) Collect(
	ctx context.Context,
	caller models.AuthContext,
	req models.CollectionRequest,
) (*models.CollectionResult, error) {
	req.Normalize()

	if err := e.filter.Authorize(caller, req.Service); err != nil {
		e.log.Warn().
			Str("user", caller.Username).
			Str("service", string(req.Service)).
			Msg("request denied by group policy")
		return nil, err
	}

	collector, ok := e.registry.Get(req.Service)
	if !ok {
		return nil, &models.ValidationError{Msg: fmt.Sprintf("no collector for service %q", req.Service)}
	}

	accounts, err := e.resolver.Resolve(ctx, req.Accounts)
	if err != nil {
		return nil, fmt.Errorf("resolve accounts: %w", err)
	}

	regions := e.regionsFor(collector, req.Regions)

	// Broker once per account. A brokering failure settles every task of
	// that account as failed up front; sibling accounts proceed.
	var (
		tasks  []task
		failed []taskResult
	)
	for _, account := range accounts {
		creds, err := e.broker.Assume(ctx, account)
		if err != nil {
			e.log.Warn().
				Str("account", account.AccountID).
				Err(err).
				Msg("credential brokering failed")
			for _, region := range regions {
				failed = append(failed, taskResult{
					account: account,
					region:  region,
					err:     err,
				})
			}
			continue
		}
		for _, region := range regions {
			tasks = append(tasks, task{account: account, region: region, creds: creds})
		}
	}

	e.log.Info().
		Str("service", string(req.Service)).
		Int("accounts", len(accounts)).
		Int("tasks", len(tasks)).
		Int("workers", e.workers).
		Msg("scheduling collection")

	results := e.runTasks(ctx, collector, tasks)
	results = append(results, failed...)

	return e.aggregate(ctx, results), nil
}

// Accounts implements Engine.
func (e *DefaultEngine) Accounts(ctx context.Context) ([]models.Account, error) {
	return e.resolver.Resolve(ctx, nil)
}

// regionsFor resolves the candidate region set for one request. Global
// services collapse to the single "global" pseudo-region regardless of what
// the request asked for.
func (e *DefaultEngine) regionsFor(collector inventory.Collector, requested []string) []string {
	if collector.Global() {
		return []string{models.GlobalRegion}
	}
	if len(requested) > 0 {
		return requested
	}
	return e.regions
}

// runTasks executes tasks on a bounded pool and gathers every settled
// outcome. The group deliberately carries no cancelling context and its
// closures never return an error: a task failure cancels nothing, each
// sibling runs to its own terminal state, and attribution is by the
// account/region carried on the result, never by position.
func (e *DefaultEngine) runTasks(ctx context.Context, collector inventory.Collector, tasks []task) []taskResult {
	var (
		mu      sync.Mutex
		results []taskResult
	)

	var g errgroup.Group
	g.SetLimit(e.workers) // bounds concurrent in-flight provider calls

	for _, t := range tasks {
		t := t
		g.Go(func() error {
			clients := e.provider.ClientsFor(t.region, t.creds)
			resources, err := collector.Collect(ctx, clients, t.region, t.account.AccountID)
			if err != nil {
				e.log.Debug().
					Str("account", t.account.AccountID).
					Str("region", t.region).
					Err(err).
					Msg("collection task failed")
			}

			mu.Lock()
			results = append(results, taskResult{
				account:   t.account,
				region:    t.region,
				resources: resources,
				err:       err,
			})
			mu.Unlock()
			return nil
		})
	}

	// Never returns an error; Wait is the settle-all join point.
	_ = g.Wait()
	return results
}
