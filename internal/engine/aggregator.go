package engine

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/pankaj-dahiya-devops/cloud-inventory/internal/models"
)

// task is one unit of fan-out work: a collector run against one account in
// one region, with that account's brokered credentials. creds is nil for the
// caller's own account, meaning the management identity is used directly.
type task struct {
	account models.Account
	region  string
	creds   *aws.Credentials
}

// taskResult is a task's terminal state: either a resource list or an error.
type taskResult struct {
	account   models.Account
	region    string
	resources []models.Resource
	err       error
}

// aggregate merges settled task results into one CollectionResult. Successful
// tasks' resources are concatenated in completion order; each failed task
// becomes one keyed entry in Errors. The result never carries an
// overall-failure signal — partial data alongside errors is the normal shape.
//
// Resources missing a mandatory field are backfilled from the owning task's
// account and region. The last-resort fallback to the caller's own account
// should be unreachable (tasks always carry an account), but defends against
// a misbehaving collector.
func (e *DefaultEngine) aggregate(ctx context.Context, results []taskResult) *models.CollectionResult {
	out := &models.CollectionResult{
		Resources: []models.Resource{},
		Errors:    []models.CollectionError{},
	}

	callerID := "" // fetched at most once, only if a backfill needs it

	for _, tr := range results {
		if tr.err != nil {
			out.Errors = append(out.Errors, models.CollectionError{
				AccountID: tr.account.AccountID,
				Region:    tr.region,
				Message:   tr.err.Error(),
			})
			continue
		}
		for _, r := range tr.resources {
			if r.AccountID() == "" {
				id := tr.account.AccountID
				if id == "" {
					if callerID == "" {
						callerID = e.callerAccountID(ctx)
					}
					id = callerID
				}
				r[models.FieldAccountID] = id
			}
			if r.Region() == "" {
				r[models.FieldRegion] = tr.region
			}
			out.Resources = append(out.Resources, r)
		}
	}
	return out
}

// callerAccountID looks up the caller's own account for the backfill
// fallback. Failures degrade to an empty ID rather than aborting aggregation.
func (e *DefaultEngine) callerAccountID(ctx context.Context) string {
	caller, err := e.provider.CallerAccount(ctx)
	if err != nil {
		e.log.Warn().Err(err).Msg("caller account lookup for backfill failed")
		return ""
	}
	return caller.AccountID
}
