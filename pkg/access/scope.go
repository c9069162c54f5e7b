package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/qahwahub/cafe-ledger/pkg/ledger"
)

var (
	// ErrForbidden is returned when the role's permission does not cover the
	// attempted operation.
	ErrForbidden = errors.New("operation not permitted for role")

	// ErrBranchNotVisible is returned when a user reaches outside its
	// visible branch set.
	ErrBranchNotVisible = errors.New("branch not visible to user")
)

// User is the caller identity access decisions are made for.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`

	// BranchID is the assigned branch; required for managers, ignored for
	// roles that see all branches.
	BranchID string `json:"branchId,omitempty"`
}

// BranchLister is the slice of the event store the resolver needs.
type BranchLister interface {
	Branches(ctx context.Context) ([]ledger.Branch, error)
}

// Resolver answers scope questions for concrete users against the live
// branch set.
type Resolver struct {
	branches BranchLister
}

// NewResolver creates a resolver over a branch source.
func NewResolver(branches BranchLister) *Resolver {
	return &Resolver{branches: branches}
}

// VisibleBranches returns the branch IDs the user may operate in. Managers
// see exactly their assigned branch; every other role sees all branches.
func (r *Resolver) VisibleBranches(ctx context.Context, user User) ([]string, error) {
	if user.Role == RoleManager {
		if user.BranchID == "" {
			return nil, nil
		}
		return []string{user.BranchID}, nil
	}

	branches, err := r.branches.Branches(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve visible branches: %w", err)
	}
	ids := make([]string, 0, len(branches))
	for _, b := range branches {
		ids = append(ids, b.ID)
	}
	return ids, nil
}

// Authorize checks one operation: the role must hold the needed permission
// on the resource, and for branch-scoped resources the branch must be in the
// user's visible set. This is the single gate call sites place in front of
// every event-store access.
func (r *Resolver) Authorize(ctx context.Context, user User, resource Resource, branchID string, write bool) error {
	perm := Can(user.Role, resource)
	if write && !perm.AllowsWrite() {
		return fmt.Errorf("%s may not write %s: %w", user.Role, resource, ErrForbidden)
	}
	if !write && !perm.AllowsRead() {
		return fmt.Errorf("%s may not read %s: %w", user.Role, resource, ErrForbidden)
	}

	if resource.IsGlobal() || branchID == "" {
		return nil
	}

	visible, err := r.VisibleBranches(ctx, user)
	if err != nil {
		return err
	}
	for _, id := range visible {
		if id == branchID {
			return nil
		}
	}
	return fmt.Errorf("branch %s: %w", branchID, ErrBranchNotVisible)
}
