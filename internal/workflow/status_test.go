package workflow_test

import (
	"testing"

	"saccosphere/internal/workflow"

	"github.com/stretchr/testify/assert"
)

func TestAllowedTargets(t *testing.T) {
	open := []workflow.ApprovalStatus{workflow.StatusApproved, workflow.StatusReturned, workflow.StatusRejected}

	assert.Equal(t, open, workflow.AllowedTargets(workflow.StatusPending))
	assert.Equal(t, open, workflow.AllowedTargets(workflow.StatusReturned))
	assert.Empty(t, workflow.AllowedTargets(workflow.StatusApproved))
	assert.Empty(t, workflow.AllowedTargets(workflow.StatusRejected))
}

func TestCanTransition(t *testing.T) {
	assert.True(t, workflow.CanTransition(workflow.StatusPending, workflow.StatusApproved, false))
	assert.True(t, workflow.CanTransition(workflow.StatusPending, workflow.StatusRejected, false))
	assert.True(t, workflow.CanTransition(workflow.StatusReturned, workflow.StatusApproved, false))

	// Terminal states stay terminal for regular verifiers.
	assert.False(t, workflow.CanTransition(workflow.StatusApproved, workflow.StatusRejected, false))
	assert.False(t, workflow.CanTransition(workflow.StatusRejected, workflow.StatusApproved, false))

	// Administrators may reopen terminal records.
	assert.True(t, workflow.CanTransition(workflow.StatusApproved, workflow.StatusRejected, true))
	assert.True(t, workflow.CanTransition(workflow.StatusRejected, workflow.StatusReturned, true))

	// Pending is never a legal target, override or not.
	assert.False(t, workflow.CanTransition(workflow.StatusReturned, workflow.StatusPending, false))
	assert.False(t, workflow.CanTransition(workflow.StatusApproved, workflow.StatusPending, true))
	assert.False(t, workflow.CanTransition(workflow.StatusPending, "Deleted", true))
}

func TestValidStatus(t *testing.T) {
	assert.True(t, workflow.ValidStatus(workflow.StatusPending))
	assert.True(t, workflow.ValidStatus(workflow.StatusReturned))
	assert.False(t, workflow.ValidStatus("Active"))
	assert.False(t, workflow.ValidStatus(""))
}

func TestValidOperationalStatus(t *testing.T) {
	assert.True(t, workflow.ValidOperationalStatus(workflow.AccountActive))
	assert.True(t, workflow.ValidOperationalStatus(workflow.AccountClosed))
	assert.False(t, workflow.ValidOperationalStatus("Pending"))
}
