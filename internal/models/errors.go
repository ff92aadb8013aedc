package models

import "fmt"

// Error taxonomy. Validation and authorization failures abort a request
// before any cross-account call; assume-role and provider failures are
// recorded per task and never abort the request.

// ValidationError reports a malformed request parameter. Its message is
// client-facing.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// AuthorizationError reports that the caller's groups do not allow the
// requested service.
type AuthorizationError struct {
	Username string
	Service  Service
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("user %q is not authorized for service %q", e.Username, e.Service)
}

// AssumeRoleError reports a failed cross-account role assumption for one
// account. Non-fatal: sibling accounts proceed.
type AssumeRoleError struct {
	AccountID string
	RoleARN   string
	Err       error
}

func (e *AssumeRoleError) Error() string {
	return fmt.Sprintf("assume role %s in account %s: %v", e.RoleARN, e.AccountID, e.Err)
}

func (e *AssumeRoleError) Unwrap() error { return e.Err }
