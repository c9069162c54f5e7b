// Package access resolves which branches and operations a user's role
// permits. The role-to-permission mapping is one explicit enumerated matrix,
// consulted uniformly in front of every write path, instead of per-screen
// conditionals.
package access

// Role is the closed set of user roles.
type Role string

const (
	RoleOwner              Role = "owner"
	RoleAccountant         Role = "accountant"
	RoleManager            Role = "manager"
	RoleOperationalManager Role = "operational_manager"
)

// Roles lists every role.
func Roles() []Role {
	return []Role{RoleOwner, RoleAccountant, RoleManager, RoleOperationalManager}
}

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	switch r {
	case RoleOwner, RoleAccountant, RoleManager, RoleOperationalManager:
		return true
	}
	return false
}

// Resource is the closed set of gated resources.
type Resource string

const (
	ResourceDashboard   Resource = "dashboard"
	ResourceCapital     Resource = "capital"
	ResourcePartners    Resource = "partners"
	ResourceProjectCost Resource = "project_cost"
	ResourceSales       Resource = "sales"
	ResourceExpenses    Resource = "expenses"
	ResourceInventory   Resource = "inventory"
	ResourceEmployees   Resource = "employees"
	ResourceBank        Resource = "bank"
	ResourceReports     Resource = "reports"
	ResourceTaxes       Resource = "taxes"
	ResourceBranches    Resource = "branches"
	ResourceUsers       Resource = "users"
)

// Resources lists every gated resource.
func Resources() []Resource {
	return []Resource{
		ResourceDashboard,
		ResourceCapital,
		ResourcePartners,
		ResourceProjectCost,
		ResourceSales,
		ResourceExpenses,
		ResourceInventory,
		ResourceEmployees,
		ResourceBank,
		ResourceReports,
		ResourceTaxes,
		ResourceBranches,
		ResourceUsers,
	}
}

// IsValid reports whether r is a known resource.
func (r Resource) IsValid() bool {
	switch r {
	case ResourceDashboard, ResourceCapital, ResourcePartners, ResourceProjectCost,
		ResourceSales, ResourceExpenses, ResourceInventory, ResourceEmployees,
		ResourceBank, ResourceReports, ResourceTaxes, ResourceBranches, ResourceUsers:
		return true
	}
	return false
}

// IsGlobal reports whether the resource is global rather than branch-scoped.
func (r Resource) IsGlobal() bool {
	switch r {
	case ResourceCapital, ResourcePartners, ResourceProjectCost,
		ResourceTaxes, ResourceBranches, ResourceUsers:
		return true
	}
	return false
}

// Permission is the access level granted on a resource.
type Permission string

const (
	PermNone  Permission = "none"
	PermRead  Permission = "read"
	PermWrite Permission = "write"
)

// AllowsRead reports whether the permission includes reading.
func (p Permission) AllowsRead() bool {
	return p == PermRead || p == PermWrite
}

// AllowsWrite reports whether the permission includes writing.
func (p Permission) AllowsWrite() bool {
	return p == PermWrite
}

// matrix is the full role × resource permission table.
//
// owner: everything. accountant: sees every branch and the tax/report pages
// but its financial entry forms are read-only, and it has none of the
// founding-capital or administration pages. manager: day-to-day operations
// in its single assigned branch, no global entities and no reports.
// operational_manager: day-to-day operations plus report reading, no taxes
// or administration.
var matrix = map[Role]map[Resource]Permission{
	RoleOwner: {
		ResourceDashboard:   PermWrite,
		ResourceCapital:     PermWrite,
		ResourcePartners:    PermWrite,
		ResourceProjectCost: PermWrite,
		ResourceSales:       PermWrite,
		ResourceExpenses:    PermWrite,
		ResourceInventory:   PermWrite,
		ResourceEmployees:   PermWrite,
		ResourceBank:        PermWrite,
		ResourceReports:     PermWrite,
		ResourceTaxes:       PermWrite,
		ResourceBranches:    PermWrite,
		ResourceUsers:       PermWrite,
	},
	RoleAccountant: {
		ResourceDashboard:   PermRead,
		ResourceCapital:     PermNone,
		ResourcePartners:    PermNone,
		ResourceProjectCost: PermNone,
		ResourceSales:       PermRead,
		ResourceExpenses:    PermRead,
		ResourceInventory:   PermRead,
		ResourceEmployees:   PermRead,
		ResourceBank:        PermRead,
		ResourceReports:     PermRead,
		ResourceTaxes:       PermRead,
		ResourceBranches:    PermNone,
		ResourceUsers:       PermNone,
	},
	RoleManager: {
		ResourceDashboard:   PermRead,
		ResourceCapital:     PermNone,
		ResourcePartners:    PermNone,
		ResourceProjectCost: PermNone,
		ResourceSales:       PermWrite,
		ResourceExpenses:    PermWrite,
		ResourceInventory:   PermWrite,
		ResourceEmployees:   PermWrite,
		ResourceBank:        PermWrite,
		ResourceReports:     PermNone,
		ResourceTaxes:       PermNone,
		ResourceBranches:    PermNone,
		ResourceUsers:       PermNone,
	},
	RoleOperationalManager: {
		ResourceDashboard:   PermRead,
		ResourceCapital:     PermNone,
		ResourcePartners:    PermNone,
		ResourceProjectCost: PermNone,
		ResourceSales:       PermWrite,
		ResourceExpenses:    PermWrite,
		ResourceInventory:   PermWrite,
		ResourceEmployees:   PermWrite,
		ResourceBank:        PermWrite,
		ResourceReports:     PermRead,
		ResourceTaxes:       PermNone,
		ResourceBranches:    PermNone,
		ResourceUsers:       PermNone,
	},
}

// Can returns the permission the role has on the resource. Unknown roles or
// resources get PermNone.
func Can(role Role, resource Resource) Permission {
	perms, ok := matrix[role]
	if !ok {
		return PermNone
	}
	perm, ok := perms[resource]
	if !ok {
		return PermNone
	}
	return perm
}

// CanRead reports whether the role may read the resource.
func CanRead(role Role, resource Resource) bool {
	return Can(role, resource).AllowsRead()
}

// CanWrite reports whether the role may write the resource.
func CanWrite(role Role, resource Resource) bool {
	return Can(role, resource).AllowsWrite()
}
