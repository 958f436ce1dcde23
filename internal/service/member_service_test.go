package service

import (
	"context"
	"testing"

	"saccosphere/internal/apperror"
	"saccosphere/internal/model"
	"saccosphere/internal/permission"
	"saccosphere/internal/workflow"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingTxManager runs the callback directly and remembers what it
// returned, which is exactly what decides commit versus rollback.
type recordingTxManager struct {
	fnErr error
	calls int
}

func (m *recordingTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	m.calls++
	m.fnErr = fn(ctx)
	return m.fnErr
}

type fakeOnboardingStore struct {
	idTaken      bool
	memberNo     string
	insertErr    error
	openErr      error
	openAccts    []model.Account
	inserted     *model.Member
	auditActions []string
}

func (f *fakeOnboardingStore) identificationTaken(_ context.Context, _ string) (bool, error) {
	return f.idTaken, nil
}

func (f *fakeOnboardingStore) allocateMemberNo(_ context.Context) (string, error) {
	return f.memberNo, nil
}

func (f *fakeOnboardingStore) insertMember(_ context.Context, member *model.Member) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = member
	return nil
}

func (f *fakeOnboardingStore) recordAudit(_ context.Context, _ Actor, action string, _ permission.Module, _, _ string, _ map[string]any) error {
	f.auditActions = append(f.auditActions, action)
	return nil
}

func (f *fakeOnboardingStore) openAccounts(_ context.Context, _ model.Member, _ string, _ Actor) ([]model.Account, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	return f.openAccts, nil
}

func makerActor() Actor {
	return Actor{
		UserID:   "2a7c9d14-5b3e-4f6a-8c1d-9e0f7a6b5c4d",
		Username: "maker",
		Role:     "Clerk",
		Matrix: permission.BuildMatrix("Clerk", permission.Grants{
			"member_maintenance": {"canView": true, "canAdd": true},
		}),
	}
}

func newMemberRequest() CreateMemberRequest {
	return CreateMemberRequest{
		FirstName:            "Achieng",
		LastName:             "Odhiambo",
		IdentificationNumber: "12345678",
	}
}

func TestCreateMemberOpensOnboardingAccounts(t *testing.T) {
	store := &fakeOnboardingStore{
		memberNo:  "M-000007",
		openAccts: []model.Account{{AccountID: "A-123456000007"}},
	}
	tx := &recordingTxManager{}
	svc := &memberService{txManager: tx, store: store}

	result, err := svc.CreateMember(context.Background(), newMemberRequest(), makerActor())
	require.NoError(t, err)

	assert.Equal(t, "M-000007", result.Member.MemberNo)
	assert.Equal(t, workflow.StatusPending, result.Member.Status)
	assert.Equal(t, "maker", result.Member.CreatedBy)
	require.Len(t, result.Accounts, 1)
	assert.Equal(t, "A-123456000007", result.Accounts[0].AccountID)

	require.NotNil(t, store.inserted)
	assert.Contains(t, store.auditActions, model.ActionCreateMember)
	assert.Equal(t, 1, tx.calls)
	assert.NoError(t, tx.fnErr)
}

func TestCreateMemberRollsBackWhenAccountOpeningFails(t *testing.T) {
	store := &fakeOnboardingStore{
		memberNo: "M-000008",
		openErr:  apperror.NotFound("sacco not found"),
	}
	tx := &recordingTxManager{}
	svc := &memberService{txManager: tx, store: store}

	result, err := svc.CreateMember(context.Background(), newMemberRequest(), makerActor())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Nil(t, result)

	// The member insert happened inside the same transaction, and the
	// callback reported the failure, so the whole set is rolled back.
	require.NotNil(t, store.inserted)
	assert.Equal(t, 1, tx.calls)
	assert.Error(t, tx.fnErr)
}

func TestCreateMemberDuplicateIdentification(t *testing.T) {
	store := &fakeOnboardingStore{idTaken: true}
	tx := &recordingTxManager{}
	svc := &memberService{txManager: tx, store: store}

	result, err := svc.CreateMember(context.Background(), newMemberRequest(), makerActor())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrConflict)
	assert.Nil(t, result)
	assert.Nil(t, store.inserted)
}

func TestCreateMemberInsertConflictSurfaces(t *testing.T) {
	store := &fakeOnboardingStore{
		memberNo:  "M-000009",
		insertErr: apperror.Conflict("a member with this identification or member number already exists"),
	}
	tx := &recordingTxManager{}
	svc := &memberService{txManager: tx, store: store}

	_, err := svc.CreateMember(context.Background(), newMemberRequest(), makerActor())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrConflict)
	assert.Empty(t, store.auditActions)
}
