package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"saccosphere/internal/apperror"
	"saccosphere/internal/permission"
	"saccosphere/internal/websocket"
	"saccosphere/internal/workflow"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStatusStore tracks per-id state in memory so batch behaviour can be
// exercised without a database.
type fakeStatusStore struct {
	mu     sync.Mutex
	states map[string]workflow.ApprovalStatus
	calls  []string
}

func newFakeStatusStore(states map[string]workflow.ApprovalStatus) *fakeStatusStore {
	return &fakeStatusStore{states: states}
}

func (f *fakeStatusStore) ChangeStatus(_ context.Context, id string, target workflow.ApprovalStatus, _ string, actor Actor) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, id)

	current, ok := f.states[id]
	if !ok {
		return "", apperror.NotFound("record %s not found", id)
	}
	if !workflow.CanTransition(current, target, actor.IsAdmin()) {
		return "", apperror.Conflict("%s cannot move from %s to %s", id, current, target)
	}
	f.states[id] = target
	return id, nil
}

type fakeBroadcaster struct {
	mu     sync.Mutex
	events []any
}

func (f *fakeBroadcaster) Publish(event any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func remarksOf(s string) *string {
	return &s
}

func approverActor() Actor {
	grants := permission.Grants{
		"member_maintenance": {"canView": true, "canApprove": true},
	}
	return Actor{
		UserID:   "9f2c1f9a-8a0f-4f4a-9a43-0a8f6f8e2f11",
		Username: "checker",
		Role:     "Verifier",
		Matrix:   permission.BuildMatrix("Verifier", grants),
	}
}

func TestBatchChangeStatusMixedOutcomes(t *testing.T) {
	store := newFakeStatusStore(map[string]workflow.ApprovalStatus{
		"a": workflow.StatusPending,
		"b": workflow.StatusApproved, // terminal, fails for non-admin
		"c": workflow.StatusReturned,
	})
	hub := &fakeBroadcaster{}
	svc := NewApprovalService(map[permission.Module]StatusStore{
		permission.MemberMaintenance: store,
	}, hub)

	result, err := svc.BatchChangeStatus(context.Background(), permission.MemberMaintenance,
		BatchStatusChangeRequest{IDs: []string{"a", "b", "c"}, Status: "Approved", VerifierRemarks: remarksOf("looks fine")},
		approverActor())
	require.NoError(t, err)

	assert.Equal(t, 3, result.Requested)
	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 1, result.Failed)

	// Outcomes keep request order regardless of completion order.
	require.Len(t, result.Outcomes, 3)
	assert.Equal(t, "a", result.Outcomes[0].ID)
	assert.True(t, result.Outcomes[0].OK)
	assert.Equal(t, "b", result.Outcomes[1].ID)
	assert.False(t, result.Outcomes[1].OK)
	assert.NotEmpty(t, result.Outcomes[1].Error)
	assert.Equal(t, "c", result.Outcomes[2].ID)
	assert.True(t, result.Outcomes[2].OK)

	// Failures never roll back successes.
	assert.Equal(t, workflow.StatusApproved, store.states["a"])
	assert.Equal(t, workflow.StatusApproved, store.states["c"])

	// One event, listing only the changed records.
	require.Len(t, hub.events, 1)
	event, ok := hub.events[0].(websocket.StatusChangeEvent)
	require.True(t, ok)
	assert.Equal(t, "status_change", event.Type)
	assert.Equal(t, "member_maintenance", event.Module)
	assert.Equal(t, "Approved", event.Status)
	assert.ElementsMatch(t, []string{"a", "c"}, event.IDs)
	assert.Equal(t, "checker", event.ChangedBy)
}

func TestBatchChangeStatusRequiresApprovePermission(t *testing.T) {
	store := newFakeStatusStore(map[string]workflow.ApprovalStatus{"a": workflow.StatusPending})
	svc := NewApprovalService(map[permission.Module]StatusStore{
		permission.MemberMaintenance: store,
	}, nil)

	viewer := Actor{
		Username: "viewer",
		Role:     "Clerk",
		Matrix: permission.BuildMatrix("Clerk", permission.Grants{
			"member_maintenance": {"canView": true},
		}),
	}

	_, err := svc.BatchChangeStatus(context.Background(), permission.MemberMaintenance,
		BatchStatusChangeRequest{IDs: []string{"a"}, Status: "Approved", VerifierRemarks: remarksOf("")}, viewer)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrPermissionDenied)
	assert.Empty(t, store.calls)
	assert.Equal(t, workflow.StatusPending, store.states["a"])
}

func TestBatchChangeStatusRejectsInvalidTarget(t *testing.T) {
	svc := NewApprovalService(map[permission.Module]StatusStore{
		permission.MemberMaintenance: newFakeStatusStore(nil),
	}, nil)

	for _, status := range []string{"Pending", "Frozen", ""} {
		_, err := svc.BatchChangeStatus(context.Background(), permission.MemberMaintenance,
			BatchStatusChangeRequest{IDs: []string{"a"}, Status: status, VerifierRemarks: remarksOf("")}, approverActor())
		require.Error(t, err, "status %q", status)
		assert.ErrorIs(t, err, apperror.ErrValidation)
	}
}

func TestBatchChangeStatusRejectsEmptyIDs(t *testing.T) {
	svc := NewApprovalService(map[permission.Module]StatusStore{
		permission.MemberMaintenance: newFakeStatusStore(nil),
	}, nil)

	_, err := svc.BatchChangeStatus(context.Background(), permission.MemberMaintenance,
		BatchStatusChangeRequest{IDs: nil, Status: "Approved", VerifierRemarks: remarksOf("")}, approverActor())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestBatchChangeStatusUnknownModule(t *testing.T) {
	svc := NewApprovalService(map[permission.Module]StatusStore{}, nil)

	admin := Actor{Username: "root", Role: "Admin", Matrix: permission.BuildMatrix("Admin", nil)}
	_, err := svc.BatchChangeStatus(context.Background(), permission.LoanCalculator,
		BatchStatusChangeRequest{IDs: []string{"a"}, Status: "Approved", VerifierRemarks: remarksOf("")}, admin)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestBatchChangeStatusAdminReopensTerminal(t *testing.T) {
	store := newFakeStatusStore(map[string]workflow.ApprovalStatus{
		"x": workflow.StatusApproved,
	})
	svc := NewApprovalService(map[permission.Module]StatusStore{
		permission.MemberMaintenance: store,
	}, nil)

	admin := Actor{Username: "root", Role: "Admin", Matrix: permission.BuildMatrix("Admin", nil)}
	result, err := svc.BatchChangeStatus(context.Background(), permission.MemberMaintenance,
		BatchStatusChangeRequest{IDs: []string{"x"}, Status: "Rejected", VerifierRemarks: remarksOf("approved in error")}, admin)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, workflow.StatusRejected, store.states["x"])
}

func TestBatchChangeStatusRequiresRemarksField(t *testing.T) {
	store := newFakeStatusStore(map[string]workflow.ApprovalStatus{"a": workflow.StatusPending})
	svc := NewApprovalService(map[permission.Module]StatusStore{
		permission.MemberMaintenance: store,
	}, nil)

	_, err := svc.BatchChangeStatus(context.Background(), permission.MemberMaintenance,
		BatchStatusChangeRequest{IDs: []string{"a"}, Status: "Approved"}, approverActor())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrValidation)
	assert.Empty(t, store.calls)

	// Present-but-empty remarks are fine.
	result, err := svc.BatchChangeStatus(context.Background(), permission.MemberMaintenance,
		BatchStatusChangeRequest{IDs: []string{"a"}, Status: "Approved", VerifierRemarks: remarksOf("")},
		approverActor())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Succeeded)
}

func TestStampForRecordsEveryTransition(t *testing.T) {
	actor := approverActor()
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	returned := stampFor(workflow.StatusReturned, actor, now)
	assert.Equal(t, "checker", returned.By)
	require.NotNil(t, returned.At)
	assert.Equal(t, now, *returned.At)
	assert.Empty(t, returned.ApprovedBy)
	assert.Nil(t, returned.ApprovedAt)

	rejected := stampFor(workflow.StatusRejected, actor, now)
	assert.Equal(t, "checker", rejected.By)
	require.NotNil(t, rejected.At)
	assert.Empty(t, rejected.ApprovedBy)

	approved := stampFor(workflow.StatusApproved, actor, now)
	assert.Equal(t, "checker", approved.By)
	assert.Equal(t, "checker", approved.ApprovedBy)
	require.NotNil(t, approved.ApprovedAt)
	assert.Equal(t, now, *approved.ApprovedAt)
}

func TestBatchChangeStatusNoEventWhenAllFail(t *testing.T) {
	store := newFakeStatusStore(map[string]workflow.ApprovalStatus{})
	hub := &fakeBroadcaster{}
	svc := NewApprovalService(map[permission.Module]StatusStore{
		permission.MemberMaintenance: store,
	}, hub)

	result, err := svc.BatchChangeStatus(context.Background(), permission.MemberMaintenance,
		BatchStatusChangeRequest{IDs: []string{"missing-1", "missing-2"}, Status: "Approved", VerifierRemarks: remarksOf("")},
		approverActor())
	require.NoError(t, err)

	assert.Equal(t, 0, result.Succeeded)
	assert.Equal(t, 2, result.Failed)
	assert.Empty(t, hub.events)
}
