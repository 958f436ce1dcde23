package permission

import (
	"iter"
	"strings"
)

// Module identifies a functional area subject to independent permission grants.
type Module string

// Action identifies a single operation that can be granted on a module.
type Action string

const (
	MemberMaintenance      Module = "member_maintenance"
	UserMaintenance        Module = "user_maintenance"
	RoleMaintenance        Module = "role_maintenance"
	ProductMaintenance     Module = "product_maintenance"
	CurrencyMaintenance    Module = "currency_maintenance"
	SaccoMaintenance       Module = "sacco_maintenance"
	BranchMaintenance      Module = "branch_maintenance"
	ChargesManagement      Module = "charges_management"
	AccountsManagement     Module = "accounts_management"
	TransactionMaintenance Module = "transaction_maintenance"
	LoanCalculator         Module = "loan_calculator"
	LogsMaintenance        Module = "logs_maintenance"
)

const (
	ActionView    Action = "view"
	ActionAdd     Action = "add"
	ActionEdit    Action = "edit"
	ActionDelete  Action = "delete"
	ActionApprove Action = "approve"
)

// moduleOrder is the canonical module ordering. ViewableModules and any
// rendering of the matrix follow this order, not alphabetical.
var moduleOrder = []Module{
	MemberMaintenance,
	UserMaintenance,
	RoleMaintenance,
	ProductMaintenance,
	CurrencyMaintenance,
	SaccoMaintenance,
	BranchMaintenance,
	ChargesManagement,
	AccountsManagement,
	TransactionMaintenance,
	LoanCalculator,
	LogsMaintenance,
}

// Modules returns the closed set of known modules in canonical order.
func Modules() []Module {
	out := make([]Module, len(moduleOrder))
	copy(out, moduleOrder)
	return out
}

// Actions returns the closed set of known actions.
func Actions() []Action {
	return []Action{ActionView, ActionAdd, ActionEdit, ActionDelete, ActionApprove}
}

// Grants is the raw permission grant set stored on a role: module name to a
// mapping of action name (canonical "add" or alias "canAdd") to a value.
// Values are kept loosely typed because grants arrive as JSON; only a literal
// boolean true ever grants anything.
type Grants map[string]map[string]any

// ActionSet holds the resolved booleans for every action on one module.
// Every field is always explicitly set; there is no "missing" state.
type ActionSet struct {
	View    bool `json:"view"`
	Add     bool `json:"add"`
	Edit    bool `json:"edit"`
	Delete  bool `json:"delete"`
	Approve bool `json:"approve"`
}

func (a ActionSet) allows(action Action) bool {
	switch action {
	case ActionView:
		return a.View
	case ActionAdd:
		return a.Add
	case ActionEdit:
		return a.Edit
	case ActionDelete:
		return a.Delete
	case ActionApprove:
		return a.Approve
	}
	return false
}

func (a *ActionSet) set(action Action, allowed bool) {
	switch action {
	case ActionView:
		a.View = allowed
	case ActionAdd:
		a.Add = allowed
	case ActionEdit:
		a.Edit = allowed
	case ActionDelete:
		a.Delete = allowed
	case ActionApprove:
		a.Approve = allowed
	}
}

// Matrix is the resolved module×action authorization table for one session.
// Every known module is present with every action explicitly resolved.
type Matrix map[Module]ActionSet

// normalizeAction strips the "can" alias prefix and lower-cases the remainder,
// so "canAdd" and "add" resolve to the same action key.
func normalizeAction(name string) Action {
	if strings.HasPrefix(name, "can") {
		return Action(strings.ToLower(name[3:]))
	}
	return Action(name)
}

// IsAdminRole reports whether the role name (case-insensitive) carries the
// built-in administrator override.
func IsAdminRole(roleName string) bool {
	return strings.EqualFold(roleName, "admin") || strings.EqualFold(roleName, "super user")
}

func knownAction(a Action) bool {
	switch a {
	case ActionView, ActionAdd, ActionEdit, ActionDelete, ActionApprove:
		return true
	}
	return false
}

// BuildMatrix resolves a role's stored grants into a complete permission
// matrix. Admin and Super User roles (case-insensitive) receive every action
// on every module, except logs which stay view-only. For any other role the
// matrix starts all-false and only recognized module/action keys carrying a
// boolean true flip entries on. Unknown keys are ignored; this function never
// fails and never produces a partial matrix.
func BuildMatrix(roleName string, grants Grants) Matrix {
	if IsAdminRole(roleName) {
		return adminMatrix()
	}

	matrix := make(Matrix, len(moduleOrder))
	for _, m := range moduleOrder {
		matrix[m] = ActionSet{}
	}

	for moduleName, actions := range grants {
		module := Module(moduleName)
		entry, ok := matrix[module]
		if !ok {
			continue
		}
		for actionName, value := range actions {
			action := normalizeAction(actionName)
			if !knownAction(action) {
				continue
			}
			allowed, _ := value.(bool)
			entry.set(action, allowed)
		}
		matrix[module] = entry
	}

	return matrix
}

func adminMatrix() Matrix {
	matrix := make(Matrix, len(moduleOrder))
	for _, m := range moduleOrder {
		if m == LogsMaintenance {
			// Logs are append-only: read access only, even for admins.
			matrix[m] = ActionSet{View: true}
			continue
		}
		matrix[m] = ActionSet{View: true, Add: true, Edit: true, Delete: true, Approve: true}
	}
	return matrix
}

// Can reports whether the matrix grants the action on the module. A nil
// matrix, empty module name, or unknown module resolves to false; access is
// only ever granted by an explicit true entry.
func Can(matrix Matrix, module Module, action Action) bool {
	if matrix == nil || module == "" {
		return false
	}
	entry, ok := matrix[module]
	if !ok {
		return false
	}
	return entry.allows(action)
}

func CanView(matrix Matrix, module Module) bool {
	return Can(matrix, module, ActionView)
}

func CanAdd(matrix Matrix, module Module) bool {
	return Can(matrix, module, ActionAdd)
}

func CanEdit(matrix Matrix, module Module) bool {
	return Can(matrix, module, ActionEdit)
}

func CanDelete(matrix Matrix, module Module) bool {
	return Can(matrix, module, ActionDelete)
}

func CanApprove(matrix Matrix, module Module) bool {
	return Can(matrix, module, ActionApprove)
}

// ViewableModules yields every module the matrix grants view on, in canonical
// module order. The sequence is restartable.
func (m Matrix) ViewableModules() iter.Seq[Module] {
	return func(yield func(Module) bool) {
		for _, module := range moduleOrder {
			if !CanView(m, module) {
				continue
			}
			if !yield(module) {
				return
			}
		}
	}
}
