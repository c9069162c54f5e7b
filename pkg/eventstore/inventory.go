package eventstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/qahwahub/cafe-ledger/pkg/docstore"
	"github.com/qahwahub/cafe-ledger/pkg/ledger"
)

// Inventory models current stock, not history, so unlike ledger events it
// supports in-place edits and deletion.

// InventoryUpdate carries the editable fields of an inventory item. Nil
// fields are left unchanged.
type InventoryUpdate struct {
	Name      *string
	Quantity  *int
	UnitCost  *float64
	UnitPrice *float64
}

// PutInventoryItem validates and stores a new inventory item.
func (s *Store) PutInventoryItem(ctx context.Context, item ledger.InventoryItem) (string, error) {
	if err := item.Validate(); err != nil {
		return "", err
	}
	if _, err := s.Branch(ctx, item.BranchID); err != nil {
		return "", &ledger.ValidationError{Field: "branchId", Reason: ledger.ErrInvalidBranch}
	}

	item.ID = uuid.NewString()
	item.CreatedAt = s.now().UTC()

	body, err := json.Marshal(&item)
	if err != nil {
		return "", fmt.Errorf("failed to marshal inventory item: %w", err)
	}

	doc := &docstore.Document{
		ID:        item.ID,
		BranchID:  item.BranchID,
		CreatedAt: item.CreatedAt,
		Body:      body,
	}
	if err := s.docs.Insert(ctx, docstore.CollectionInventory, doc); err != nil {
		return "", fmt.Errorf("failed to store inventory item: %w", err)
	}
	return item.ID, nil
}

// UpdateInventoryItem applies an in-place edit to an inventory item.
func (s *Store) UpdateInventoryItem(ctx context.Context, id string, update InventoryUpdate) error {
	doc, err := s.docs.Get(ctx, docstore.CollectionInventory, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return fmt.Errorf("inventory item %s: %w", id, ledger.ErrNotFound)
		}
		return fmt.Errorf("failed to get inventory item: %w", err)
	}

	var item ledger.InventoryItem
	if err := json.Unmarshal(doc.Body, &item); err != nil {
		return fmt.Errorf("failed to decode inventory item: %w", err)
	}

	if update.Name != nil {
		item.Name = *update.Name
	}
	if update.Quantity != nil {
		item.Quantity = *update.Quantity
	}
	if update.UnitCost != nil {
		item.UnitCost = *update.UnitCost
	}
	if update.UnitPrice != nil {
		item.UnitPrice = *update.UnitPrice
	}
	if err := item.Validate(); err != nil {
		return err
	}

	body, err := json.Marshal(&item)
	if err != nil {
		return fmt.Errorf("failed to marshal inventory item: %w", err)
	}
	if err := s.docs.Update(ctx, docstore.CollectionInventory, id, body); err != nil {
		return fmt.Errorf("failed to update inventory item: %w", err)
	}
	return nil
}

// DeleteInventoryItem removes an inventory item.
func (s *Store) DeleteInventoryItem(ctx context.Context, id string) error {
	if err := s.docs.Delete(ctx, docstore.CollectionInventory, id); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return fmt.Errorf("inventory item %s: %w", id, ledger.ErrNotFound)
		}
		return fmt.Errorf("failed to delete inventory item: %w", err)
	}
	return nil
}

// InventoryByBranch returns the branch's inventory in creation order.
func (s *Store) InventoryByBranch(ctx context.Context, branchID string) ([]ledger.InventoryItem, error) {
	docs, err := s.docs.List(ctx, docstore.Query{
		Collection: docstore.CollectionInventory,
		BranchID:   branchID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}

	items := make([]ledger.InventoryItem, 0, len(docs))
	for _, doc := range docs {
		var item ledger.InventoryItem
		if err := json.Unmarshal(doc.Body, &item); err != nil {
			return nil, fmt.Errorf("failed to decode inventory item %s: %w", doc.ID, err)
		}
		items = append(items, item)
	}
	return items, nil
}

// PutEmployee validates and stores a new employee record.
func (s *Store) PutEmployee(ctx context.Context, emp ledger.Employee) (string, error) {
	if err := emp.Validate(); err != nil {
		return "", err
	}
	if _, err := s.Branch(ctx, emp.BranchID); err != nil {
		return "", &ledger.ValidationError{Field: "branchId", Reason: ledger.ErrInvalidBranch}
	}

	emp.ID = uuid.NewString()
	emp.CreatedAt = s.now().UTC()

	body, err := json.Marshal(&emp)
	if err != nil {
		return "", fmt.Errorf("failed to marshal employee: %w", err)
	}

	doc := &docstore.Document{
		ID:        emp.ID,
		BranchID:  emp.BranchID,
		CreatedAt: emp.CreatedAt,
		Body:      body,
	}
	if err := s.docs.Insert(ctx, docstore.CollectionEmployees, doc); err != nil {
		return "", fmt.Errorf("failed to store employee: %w", err)
	}
	return emp.ID, nil
}

// EmployeesByBranch returns the branch's employees in creation order.
func (s *Store) EmployeesByBranch(ctx context.Context, branchID string) ([]ledger.Employee, error) {
	docs, err := s.docs.List(ctx, docstore.Query{
		Collection: docstore.CollectionEmployees,
		BranchID:   branchID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}

	employees := make([]ledger.Employee, 0, len(docs))
	for _, doc := range docs {
		var emp ledger.Employee
		if err := json.Unmarshal(doc.Body, &emp); err != nil {
			return nil, fmt.Errorf("failed to decode employee %s: %w", doc.ID, err)
		}
		employees = append(employees, emp)
	}
	return employees, nil
}

// DeleteEmployee removes an employee record.
func (s *Store) DeleteEmployee(ctx context.Context, id string) error {
	if err := s.docs.Delete(ctx, docstore.CollectionEmployees, id); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return fmt.Errorf("employee %s: %w", id, ledger.ErrNotFound)
		}
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	return nil
}
