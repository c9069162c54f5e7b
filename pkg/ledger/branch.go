package ledger

import "time"

// DefaultBranchID is the ID of the system-designated default branch, created
// automatically when no branches exist.
const DefaultBranchID = "main_branch"

// Branch is an independently reported operating location. Immutable once
// created except for deletion, which cascades to all branch-scoped records.
type Branch struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// InventoryItem is a point-in-time stock record for a branch. Unlike ledger
// events it is mutable state: quantity and prices may be edited in place and
// items may be deleted.
type InventoryItem struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
	UnitCost  float64   `json:"unitCost"`
	UnitPrice float64   `json:"unitPrice"`
	BranchID  string    `json:"branchId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Validate checks the inventory item shape.
func (it *InventoryItem) Validate() error {
	if it.Name == "" {
		return invalid("name", ErrMissingField)
	}
	if it.Quantity < 0 {
		return invalid("quantity", ErrInvalidAmount)
	}
	if it.UnitCost < 0 {
		return invalid("unitCost", ErrInvalidAmount)
	}
	if it.UnitPrice < 0 {
		return invalid("unitPrice", ErrInvalidAmount)
	}
	if it.BranchID == "" {
		return invalid("branchId", ErrMissingField)
	}
	return nil
}

// Employee is a branch-scoped staff record. The engine stores employees but
// attaches no financial semantics to them.
type Employee struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Salary    float64   `json:"salary,omitempty"`
	BranchID  string    `json:"branchId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Validate checks the employee shape.
func (e *Employee) Validate() error {
	if e.Name == "" {
		return invalid("name", ErrMissingField)
	}
	if e.BranchID == "" {
		return invalid("branchId", ErrMissingField)
	}
	if e.Salary < 0 {
		return invalid("salary", ErrInvalidAmount)
	}
	return nil
}
