package permission_test

import (
	"encoding/json"
	"testing"

	"saccosphere/internal/permission"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMatrix_AdminGetsFullAccessExceptLogs(t *testing.T) {
	for _, role := range []string{"admin", "Admin", "ADMIN", "super user", "Super User"} {
		matrix := permission.BuildMatrix(role, nil)

		for _, m := range permission.Modules() {
			if m == permission.LogsMaintenance {
				assert.True(t, permission.CanView(matrix, m), "role %s", role)
				assert.False(t, permission.CanAdd(matrix, m), "role %s", role)
				assert.False(t, permission.CanEdit(matrix, m), "role %s", role)
				assert.False(t, permission.CanDelete(matrix, m), "role %s", role)
				assert.False(t, permission.CanApprove(matrix, m), "role %s", role)
				continue
			}
			for _, a := range permission.Actions() {
				assert.True(t, permission.Can(matrix, m, a), "role %s module %s action %s", role, m, a)
			}
		}
	}
}

func TestBuildMatrix_EmptyGrantsAllFalse(t *testing.T) {
	matrix := permission.BuildMatrix("Teller", permission.Grants{})

	for _, m := range permission.Modules() {
		for _, a := range permission.Actions() {
			assert.False(t, permission.Can(matrix, m, a), "module %s action %s", m, a)
		}
	}
}

func TestBuildMatrix_CoversEveryModule(t *testing.T) {
	matrix := permission.BuildMatrix("Teller", nil)

	require.Len(t, matrix, len(permission.Modules()))
	for _, m := range permission.Modules() {
		_, ok := matrix[m]
		assert.True(t, ok, "module %s missing from matrix", m)
	}
}

func TestBuildMatrix_AppliesGrantedActions(t *testing.T) {
	matrix := permission.BuildMatrix("Teller", permission.Grants{
		"member_maintenance": {"view": true, "edit": true},
	})

	assert.True(t, permission.CanView(matrix, permission.MemberMaintenance))
	assert.True(t, permission.CanEdit(matrix, permission.MemberMaintenance))
	assert.False(t, permission.CanAdd(matrix, permission.MemberMaintenance))
	assert.False(t, permission.CanDelete(matrix, permission.MemberMaintenance))
	assert.False(t, permission.CanApprove(matrix, permission.MemberMaintenance))
}

func TestBuildMatrix_AliasAndCanonicalFormsAreEquivalent(t *testing.T) {
	aliased := permission.BuildMatrix("Teller", permission.Grants{
		"product_maintenance": {"canEdit": true, "canView": true},
	})
	canonical := permission.BuildMatrix("Teller", permission.Grants{
		"product_maintenance": {"edit": true, "view": true},
	})

	assert.Equal(t, canonical, aliased)
}

func TestBuildMatrix_IgnoresUnknownModulesAndActions(t *testing.T) {
	matrix := permission.BuildMatrix("Teller", permission.Grants{
		"payroll_maintenance": {"view": true},
		"member_maintenance":  {"canExport": true, "frobnicate": true},
	})

	require.Len(t, matrix, len(permission.Modules()))
	_, ok := matrix["payroll_maintenance"]
	assert.False(t, ok)
	assert.Equal(t, permission.ActionSet{}, matrix[permission.MemberMaintenance])
}

func TestBuildMatrix_NonBooleanValuesNeverGrant(t *testing.T) {
	matrix := permission.BuildMatrix("Teller", permission.Grants{
		"member_maintenance": {"view": "true", "add": 1, "edit": nil},
	})

	assert.False(t, permission.CanView(matrix, permission.MemberMaintenance))
	assert.False(t, permission.CanAdd(matrix, permission.MemberMaintenance))
	assert.False(t, permission.CanEdit(matrix, permission.MemberMaintenance))
}

func TestBuildMatrix_GrantsDecodedFromJSON(t *testing.T) {
	raw := `{"accounts_management":{"canView":true,"canAdd":true,"canDelete":false}}`
	var grants permission.Grants
	require.NoError(t, json.Unmarshal([]byte(raw), &grants))

	matrix := permission.BuildMatrix("Branch Manager", grants)

	assert.True(t, permission.CanView(matrix, permission.AccountsManagement))
	assert.True(t, permission.CanAdd(matrix, permission.AccountsManagement))
	assert.False(t, permission.CanDelete(matrix, permission.AccountsManagement))
}

func TestCan_DegradesToFalseOnMalformedInput(t *testing.T) {
	matrix := permission.BuildMatrix("Teller", nil)

	assert.False(t, permission.CanApprove(nil, permission.MemberMaintenance))
	assert.False(t, permission.CanApprove(matrix, "nonexistent_module"))
	assert.False(t, permission.Can(matrix, "", permission.ActionView))
	assert.False(t, permission.Can(matrix, permission.MemberMaintenance, "explode"))
}

func TestViewableModules_CanonicalOrderAndRestartable(t *testing.T) {
	matrix := permission.BuildMatrix("Teller", permission.Grants{
		"transaction_maintenance": {"view": true},
		"member_maintenance":      {"view": true},
		"logs_maintenance":        {"view": true},
	})

	var got []permission.Module
	for m := range matrix.ViewableModules() {
		got = append(got, m)
	}
	want := []permission.Module{
		permission.MemberMaintenance,
		permission.TransactionMaintenance,
		permission.LogsMaintenance,
	}
	assert.Equal(t, want, got)

	// Restartable: a second pass yields the same sequence.
	var second []permission.Module
	for m := range matrix.ViewableModules() {
		second = append(second, m)
	}
	assert.Equal(t, got, second)

	// Early break does not panic and stops iteration.
	for range matrix.ViewableModules() {
		break
	}
}

func TestViewableModules_EmptyForNilMatrix(t *testing.T) {
	var matrix permission.Matrix
	count := 0
	for range matrix.ViewableModules() {
		count++
	}
	assert.Zero(t, count)
}
