package common

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/organizations"
	orgtypes "github.com/aws/aws-sdk-go-v2/service/organizations/types"

	"github.com/pankaj-dahiya-devops/cloud-inventory/internal/models"
)

// ── test doubles ──────────────────────────────────────────────────────────────

// stubOrgsClient satisfies OrganizationsClient with one canned page.
type stubOrgsClient struct {
	accounts []orgtypes.Account
	err      error
}

func (s *stubOrgsClient) ListAccounts(
	_ context.Context,
	_ *organizations.ListAccountsInput,
	_ ...func(*organizations.Options),
) (*organizations.ListAccountsOutput, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &organizations.ListAccountsOutput{Accounts: s.accounts}, nil
}

// stubProvider satisfies AWSClientProvider with fixed clients and caller.
type stubProvider struct {
	clients   *ClientSet
	caller    models.Account
	callerErr error
}

func (p *stubProvider) BaseClients() *ClientSet { return p.clients }

func (p *stubProvider) CallerAccount(_ context.Context) (models.Account, error) {
	return p.caller, p.callerErr
}

func (p *stubProvider) ClientsFor(_ string, _ *aws.Credentials) *ClientSet { return p.clients }

func orgAccount(id, name string, status orgtypes.AccountStatus) orgtypes.Account {
	return orgtypes.Account{Id: aws.String(id), Name: aws.String(name), Status: status}
}

// ── tests ─────────────────────────────────────────────────────────────────────

func TestResolveRequestedAccountsWin(t *testing.T) {
	provider := &stubProvider{
		clients: &ClientSet{Organizations: &stubOrgsClient{
			accounts: []orgtypes.Account{orgAccount("777788889999", "org", orgtypes.AccountStatusActive)},
		}},
	}
	r := NewRankedAccountResolver(provider, "InventoryRole", []string{"000011112222"})

	got, err := r.Resolve(context.Background(), []string{"111122223333", " ", "444455556666"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("resolved %d accounts, want 2", len(got))
	}
	if got[0].AccountID != "111122223333" || got[1].AccountID != "444455556666" {
		t.Fatalf("accounts = %+v", got)
	}
	if got[0].RoleARN != "arn:aws:iam::111122223333:role/InventoryRole" {
		t.Errorf("role ARN = %q", got[0].RoleARN)
	}
}

func TestResolveUsesOrganizationsDirectory(t *testing.T) {
	provider := &stubProvider{
		clients: &ClientSet{Organizations: &stubOrgsClient{
			accounts: []orgtypes.Account{
				orgAccount("111122223333", "prod", orgtypes.AccountStatusActive),
				orgAccount("444455556666", "closed", orgtypes.AccountStatusSuspended),
				orgAccount("777788889999", "dev", orgtypes.AccountStatusActive),
			},
		}},
	}
	r := NewRankedAccountResolver(provider, "InventoryRole", nil)

	got, err := r.Resolve(context.Background(), nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("resolved %d accounts, want 2 (suspended excluded)", len(got))
	}
	if got[0].AccountName != "prod" || got[1].AccountName != "dev" {
		t.Fatalf("accounts = %+v", got)
	}
}

func TestResolveFallsBackToStaticList(t *testing.T) {
	provider := &stubProvider{
		clients: &ClientSet{Organizations: &stubOrgsClient{err: errors.New("AWSOrganizationsNotInUseException")}},
	}
	r := NewRankedAccountResolver(provider, "InventoryRole", []string{"111122223333:prod", "444455556666"})

	got, err := r.Resolve(context.Background(), nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("resolved %d accounts, want 2", len(got))
	}
	if got[0].AccountName != "prod" || got[1].AccountName != "" {
		t.Fatalf("accounts = %+v", got)
	}
}

func TestResolveFallsBackToCallerAccount(t *testing.T) {
	provider := &stubProvider{
		clients: &ClientSet{Organizations: &stubOrgsClient{err: errors.New("AccessDenied")}},
		caller:  models.Account{AccountID: "111122223333", AccountName: "current account"},
	}
	r := NewRankedAccountResolver(provider, "InventoryRole", nil)

	got, err := r.Resolve(context.Background(), nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(got) != 1 || got[0].AccountName != "current account" {
		t.Fatalf("accounts = %+v, want single current account", got)
	}
	if got[0].RoleARN != "" {
		t.Errorf("current account must carry no role ARN, got %q", got[0].RoleARN)
	}
}
