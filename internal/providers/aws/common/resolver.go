package common

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/organizations"
	orgtypes "github.com/aws/aws-sdk-go-v2/service/organizations/types"

	"github.com/pankaj-dahiya-devops/cloud-inventory/internal/models"
)

// AccountResolver determines the target account list for a request.
type AccountResolver interface {
	Resolve(ctx context.Context, requested []string) ([]models.Account, error)
}

// RankedAccountResolver tries strategies in order and returns the first
// non-empty result:
//
//  1. the caller's explicit account list, taken as-is;
//  2. active accounts from the AWS Organizations directory;
//  3. the statically configured account list;
//  4. the caller's own account, as a single-entry list.
//
// The ranking lets one deployment serve both multi-account organizations and
// standalone accounts without per-request decisions. Directory failures are
// treated as "directory unavailable" and fall through to the next strategy.
type RankedAccountResolver struct {
	provider AWSClientProvider
	roleName string
	static   []string // "id" or "id:name" entries from configuration
}

// NewRankedAccountResolver wires a resolver to the client provider. roleName
// is stamped into each resolved account's role ARN; staticAccounts may be
// nil.
func NewRankedAccountResolver(provider AWSClientProvider, roleName string, staticAccounts []string) *RankedAccountResolver {
	return &RankedAccountResolver{provider: provider, roleName: roleName, static: staticAccounts}
}

// Resolve implements AccountResolver.
func (r *RankedAccountResolver) Resolve(ctx context.Context, requested []string) ([]models.Account, error) {
	if accounts := r.fromRequested(requested); len(accounts) > 0 {
		return accounts, nil
	}
	if accounts := r.fromOrganizations(ctx); len(accounts) > 0 {
		return accounts, nil
	}
	if accounts := r.fromStatic(); len(accounts) > 0 {
		return accounts, nil
	}
	caller, err := r.provider.CallerAccount(ctx)
	if err != nil {
		return nil, err
	}
	return []models.Account{caller}, nil
}

// fromRequested accepts the caller's account IDs without validation beyond a
// non-empty string check; a wrong ID simply fails at assume-role time and is
// reported as that account's error.
func (r *RankedAccountResolver) fromRequested(requested []string) []models.Account {
	var accounts []models.Account
	for _, id := range requested {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		accounts = append(accounts, models.Account{
			AccountID: id,
			RoleARN:   RoleARNFor(id, r.roleName),
		})
	}
	return accounts
}

// fromOrganizations pages through the Organizations account directory,
// keeping only ACTIVE accounts. Any failure (not in an organization, missing
// permission) yields nil so the next strategy runs.
func (r *RankedAccountResolver) fromOrganizations(ctx context.Context) []models.Account {
	client := r.provider.BaseClients().Organizations

	var accounts []models.Account
	paginator := organizations.NewListAccountsPaginator(client, &organizations.ListAccountsInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil
		}
		for _, acct := range page.Accounts {
			if acct.Status != orgtypes.AccountStatusActive {
				continue
			}
			id := aws.ToString(acct.Id)
			if id == "" {
				continue
			}
			accounts = append(accounts, models.Account{
				AccountID:   id,
				AccountName: aws.ToString(acct.Name),
				RoleARN:     RoleARNFor(id, r.roleName),
			})
		}
	}
	return accounts
}

// fromStatic parses the configured account list. Entries are "id" or
// "id:name".
func (r *RankedAccountResolver) fromStatic() []models.Account {
	var accounts []models.Account
	for _, entry := range r.static {
		id, name, _ := strings.Cut(strings.TrimSpace(entry), ":")
		if id == "" {
			continue
		}
		accounts = append(accounts, models.Account{
			AccountID:   id,
			AccountName: name,
			RoleARN:     RoleARNFor(id, r.roleName),
		})
	}
	return accounts
}
