package access

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/qahwahub/cafe-ledger/pkg/ledger"
)

// staticBranches satisfies BranchLister without an event store.
type staticBranches []ledger.Branch

func (s staticBranches) Branches(ctx context.Context) ([]ledger.Branch, error) {
	return s, nil
}

var testBranches = staticBranches{
	{ID: "b1", Name: "Downtown"},
	{ID: "b2", Name: "Harbor"},
}

func TestResolver_VisibleBranches(t *testing.T) {
	r := NewResolver(testBranches)
	ctx := context.Background()

	tests := []struct {
		name string
		user User
		want []string
	}{
		{"owner sees all", User{Role: RoleOwner}, []string{"b1", "b2"}},
		{"accountant sees all", User{Role: RoleAccountant}, []string{"b1", "b2"}},
		{"manager sees assigned", User{Role: RoleManager, BranchID: "b2"}, []string{"b2"}},
		{"manager without branch sees none", User{Role: RoleManager}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.VisibleBranches(ctx, tt.user)
			if err != nil {
				t.Fatalf("VisibleBranches failed: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("VisibleBranches = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolver_Authorize(t *testing.T) {
	r := NewResolver(testBranches)
	ctx := context.Background()

	tests := []struct {
		name     string
		user     User
		resource Resource
		branchID string
		write    bool
		wantErr  error
	}{
		{
			name: "owner writes capital",
			user: User{Role: RoleOwner}, resource: ResourceCapital, write: true,
		},
		{
			name: "manager writes sale in own branch",
			user: User{Role: RoleManager, BranchID: "b1"},
			resource: ResourceSales, branchID: "b1", write: true,
		},
		{
			name: "manager writes sale in foreign branch",
			user: User{Role: RoleManager, BranchID: "b1"},
			resource: ResourceSales, branchID: "b2", write: true,
			wantErr: ErrBranchNotVisible,
		},
		{
			name: "manager reads reports",
			user: User{Role: RoleManager, BranchID: "b1"},
			resource: ResourceReports, branchID: "b1",
			wantErr: ErrForbidden,
		},
		{
			name: "accountant reads sales anywhere",
			user: User{Role: RoleAccountant}, resource: ResourceSales, branchID: "b2",
		},
		{
			name: "accountant writes expense",
			user: User{Role: RoleAccountant},
			resource: ResourceExpenses, branchID: "b1", write: true,
			wantErr: ErrForbidden,
		},
		{
			name: "accountant reads capital",
			user: User{Role: RoleAccountant}, resource: ResourceCapital,
			wantErr: ErrForbidden,
		},
		{
			name: "operational manager reads reports",
			user: User{Role: RoleOperationalManager, BranchID: "b1"},
			resource: ResourceReports, branchID: "b1",
		},
		{
			name: "global resource skips branch check",
			user: User{Role: RoleOwner}, resource: ResourcePartners,
			branchID: "ghost", write: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.Authorize(ctx, tt.user, tt.resource, tt.branchID, tt.write)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Authorize = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Authorize = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
