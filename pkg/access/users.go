package access

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/qahwahub/cafe-ledger/pkg/docstore"
	"github.com/qahwahub/cafe-ledger/pkg/ledger"
)

// Directory stores user records. Provisioning workflows are out of scope;
// the engine only keeps the data they produce.
type Directory struct {
	docs docstore.Store
}

// NewDirectory creates a user directory over the document store.
func NewDirectory(docs docstore.Store) *Directory {
	return &Directory{docs: docs}
}

// Put stores a new user. Managers must carry an assigned branch.
func (d *Directory) Put(ctx context.Context, user User) (string, error) {
	if user.Email == "" {
		return "", &ledger.ValidationError{Field: "email", Reason: ledger.ErrMissingField}
	}
	if !user.Role.IsValid() {
		return "", &ledger.ValidationError{Field: "role", Reason: ledger.ErrInvalidKind}
	}
	if user.Role == RoleManager && user.BranchID == "" {
		return "", &ledger.ValidationError{Field: "branchId", Reason: ledger.ErrMissingField}
	}

	user.ID = uuid.NewString()
	body, err := json.Marshal(&user)
	if err != nil {
		return "", fmt.Errorf("failed to marshal user: %w", err)
	}

	doc := &docstore.Document{
		ID:        user.ID,
		BranchID:  user.BranchID,
		CreatedAt: time.Now().UTC(),
		Body:      body,
	}
	if err := d.docs.Insert(ctx, docstore.CollectionUsers, doc); err != nil {
		return "", fmt.Errorf("failed to store user: %w", err)
	}
	return user.ID, nil
}

// Get retrieves one user by ID.
func (d *Directory) Get(ctx context.Context, id string) (User, error) {
	doc, err := d.docs.Get(ctx, docstore.CollectionUsers, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return User{}, fmt.Errorf("user %s: %w", id, ledger.ErrNotFound)
		}
		return User{}, fmt.Errorf("failed to get user: %w", err)
	}

	var user User
	if err := json.Unmarshal(doc.Body, &user); err != nil {
		return User{}, fmt.Errorf("failed to decode user: %w", err)
	}
	return user, nil
}

// Users returns all users in creation order.
func (d *Directory) Users(ctx context.Context) ([]User, error) {
	docs, err := d.docs.List(ctx, docstore.Query{Collection: docstore.CollectionUsers})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]User, 0, len(docs))
	for _, doc := range docs {
		var user User
		if err := json.Unmarshal(doc.Body, &user); err != nil {
			return nil, fmt.Errorf("failed to decode user %s: %w", doc.ID, err)
		}
		users = append(users, user)
	}
	return users, nil
}

// Delete removes a user record.
func (d *Directory) Delete(ctx context.Context, id string) error {
	if err := d.docs.Delete(ctx, docstore.CollectionUsers, id); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return fmt.Errorf("user %s: %w", id, ledger.ErrNotFound)
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
