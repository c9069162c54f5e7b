package eventstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/qahwahub/cafe-ledger/pkg/docstore"
	"github.com/qahwahub/cafe-ledger/pkg/ledger"
)

// branchScopedCollections lists the collections cascaded on branch deletion.
var branchScopedCollections = []string{
	docstore.CollectionSales,
	docstore.CollectionExpenses,
	docstore.CollectionBankTransactions,
	docstore.CollectionInventory,
	docstore.CollectionEmployees,
}

// CreateBranch creates a new branch. A branch ID may be supplied; when empty
// a new one is generated.
func (s *Store) CreateBranch(ctx context.Context, id, name string) (ledger.Branch, error) {
	if name == "" {
		return ledger.Branch{}, &ledger.ValidationError{Field: "name", Reason: ledger.ErrMissingField}
	}
	if id == "" {
		id = uuid.NewString()
	}

	branch := ledger.Branch{ID: id, Name: name, CreatedAt: s.now().UTC()}
	body, err := json.Marshal(&branch)
	if err != nil {
		return ledger.Branch{}, fmt.Errorf("failed to marshal branch: %w", err)
	}

	doc := &docstore.Document{ID: branch.ID, CreatedAt: branch.CreatedAt, Body: body}
	if err := s.docs.Insert(ctx, docstore.CollectionBranches, doc); err != nil {
		return ledger.Branch{}, fmt.Errorf("failed to create branch: %w", err)
	}

	slog.Info("branch created", "id", branch.ID, "name", branch.Name)
	return branch, nil
}

// Branch retrieves one branch by ID.
func (s *Store) Branch(ctx context.Context, id string) (ledger.Branch, error) {
	doc, err := s.docs.Get(ctx, docstore.CollectionBranches, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return ledger.Branch{}, fmt.Errorf("branch %s: %w", id, ledger.ErrNotFound)
		}
		return ledger.Branch{}, fmt.Errorf("failed to get branch: %w", err)
	}

	var branch ledger.Branch
	if err := json.Unmarshal(doc.Body, &branch); err != nil {
		return ledger.Branch{}, fmt.Errorf("failed to decode branch: %w", err)
	}
	return branch, nil
}

// Branches returns all branches in creation order.
func (s *Store) Branches(ctx context.Context) ([]ledger.Branch, error) {
	docs, err := s.docs.List(ctx, docstore.Query{Collection: docstore.CollectionBranches})
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}

	branches := make([]ledger.Branch, 0, len(docs))
	for _, doc := range docs {
		var branch ledger.Branch
		if err := json.Unmarshal(doc.Body, &branch); err != nil {
			return nil, fmt.Errorf("failed to decode branch %s: %w", doc.ID, err)
		}
		branches = append(branches, branch)
	}
	return branches, nil
}

// DeleteBranch removes the branch and cascades to every branch-scoped record
// (sales, expenses, bank transactions, inventory, employees). Cascade rather
// than orphaning: orphaned events would distort every future report.
func (s *Store) DeleteBranch(ctx context.Context, id string) error {
	if err := s.docs.Delete(ctx, docstore.CollectionBranches, id); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return fmt.Errorf("branch %s: %w", id, ledger.ErrNotFound)
		}
		return fmt.Errorf("failed to delete branch: %w", err)
	}

	for _, collection := range branchScopedCollections {
		n, err := s.docs.DeleteWhere(ctx, collection, id)
		if err != nil {
			return fmt.Errorf("failed to cascade delete %s for branch %s: %w", collection, id, err)
		}
		if n > 0 {
			slog.Info("cascade deleted branch records",
				"branch", id, "collection", collection, "count", n)
		}
	}
	return nil
}

// EnsureDefaultBranch creates the system default branch when no branches
// exist, and returns it. When branches already exist the first one is
// returned unchanged.
func (s *Store) EnsureDefaultBranch(ctx context.Context, name string) (ledger.Branch, error) {
	branches, err := s.Branches(ctx)
	if err != nil {
		return ledger.Branch{}, err
	}
	if len(branches) > 0 {
		return branches[0], nil
	}
	if name == "" {
		name = "Main Branch"
	}
	return s.CreateBranch(ctx, ledger.DefaultBranchID, name)
}
