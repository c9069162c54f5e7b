package access

import (
	"context"
	"errors"
	"testing"

	"github.com/qahwahub/cafe-ledger/pkg/docstore"
	"github.com/qahwahub/cafe-ledger/pkg/ledger"
)

func newTestDirectory(t *testing.T) *Directory {
	t.Helper()
	docs := docstore.NewMemory()
	t.Cleanup(func() { docs.Close() })
	return NewDirectory(docs)
}

func TestDirectory_PutValidation(t *testing.T) {
	d := newTestDirectory(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		user    User
		wantErr error
	}{
		{
			name: "valid owner",
			user: User{Email: "owner@cafe.example", Role: RoleOwner},
		},
		{
			name: "valid manager with branch",
			user: User{Email: "mgr@cafe.example", Role: RoleManager, BranchID: "b1"},
		},
		{
			name:    "missing email",
			user:    User{Role: RoleOwner},
			wantErr: ledger.ErrMissingField,
		},
		{
			name:    "unknown role",
			user:    User{Email: "x@cafe.example", Role: "intern"},
			wantErr: ledger.ErrInvalidKind,
		},
		{
			name:    "manager without branch",
			user:    User{Email: "mgr@cafe.example", Role: RoleManager},
			wantErr: ledger.ErrMissingField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := d.Put(ctx, tt.user)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Put = %v, want nil", err)
				}
				if id == "" {
					t.Error("Put returned empty ID")
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Put = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDirectory_Lifecycle(t *testing.T) {
	d := newTestDirectory(t)
	ctx := context.Background()

	id, err := d.Put(ctx, User{Email: "acct@cafe.example", Role: RoleAccountant})
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	user, err := d.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if user.Email != "acct@cafe.example" || user.Role != RoleAccountant {
		t.Errorf("Get returned %+v", user)
	}

	users, err := d.Users(ctx)
	if err != nil {
		t.Fatalf("Users failed: %v", err)
	}
	if len(users) != 1 {
		t.Errorf("Users returned %d users, want 1", len(users))
	}

	if err := d.Delete(ctx, id); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := d.Get(ctx, id); !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("Get after delete = %v, want ErrNotFound", err)
	}
	if err := d.Delete(ctx, id); !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("Delete again = %v, want ErrNotFound", err)
	}
}
