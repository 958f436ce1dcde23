package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"saccosphere/internal/apperror"
	"saccosphere/internal/model"
	"saccosphere/internal/permission"
	"saccosphere/internal/websocket"
	"saccosphere/internal/workflow"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

// BatchStatusChangeRequest carries one verdict for a set of records.
// VerifierRemarks is a pointer because the field must be sent even when the
// verifier has nothing to say; an absent field is rejected, an empty one is
// fine.
type BatchStatusChangeRequest struct {
	IDs             []string `json:"ids" binding:"required,min=1"`
	Status          string   `json:"status" binding:"required"`
	VerifierRemarks *string  `json:"verifier_remarks" binding:"required"`
}

// StatusOutcome is the per-record verdict of a batch run.
type StatusOutcome struct {
	ID    string `json:"id"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type BatchStatusResult struct {
	Requested int             `json:"requested"`
	Succeeded int             `json:"succeeded"`
	Failed    int             `json:"failed"`
	Outcomes  []StatusOutcome `json:"outcomes"`
}

// StatusStore changes the review status of one record of one module. Each
// call is its own database transaction; a batch deliberately does not share
// one, so a bad record never drags down its neighbours.
type StatusStore interface {
	ChangeStatus(ctx context.Context, id string, target workflow.ApprovalStatus, remarks string, actor Actor) (entityRef string, err error)
}

// Broadcaster pushes completed batch events to connected clients.
type Broadcaster interface {
	Publish(event any)
}

// --- Interface ---

type ApprovalService interface {
	BatchChangeStatus(ctx context.Context, module permission.Module, req BatchStatusChangeRequest, actor Actor) (*BatchStatusResult, error)
}

type approvalService struct {
	stores map[permission.Module]StatusStore
	hub    Broadcaster
}

// NewApprovalService wires the reviewable modules to their stores. hub may be
// nil when no client push is wanted.
func NewApprovalService(stores map[permission.Module]StatusStore, hub Broadcaster) ApprovalService {
	return &approvalService{stores: stores, hub: hub}
}

// NewStatusStores builds the database-backed store for every module that
// carries a review status.
func NewStatusStores(db *gorm.DB) map[permission.Module]StatusStore {
	return map[permission.Module]StatusStore{
		permission.MemberMaintenance:      &memberStatusStore{db: db},
		permission.ProductMaintenance:     &productStatusStore{db: db},
		permission.TransactionMaintenance: &transactionStatusStore{db: db},
		permission.SaccoMaintenance:       &saccoStatusStore{db: db},
	}
}

// --- Implementation ---

// BatchChangeStatus moves each requested record to the target status. Records
// are processed concurrently and independently; the result reports a verdict
// per id in request order.
func (s *approvalService) BatchChangeStatus(ctx context.Context, module permission.Module, req BatchStatusChangeRequest, actor Actor) (*BatchStatusResult, error) {
	if !permission.CanApprove(actor.Matrix, module) {
		return nil, apperror.PermissionDenied("you are not allowed to approve %s records", module)
	}

	target := workflow.ApprovalStatus(req.Status)
	if !workflow.ValidTarget(target) {
		return nil, apperror.Validation("'%s' is not a valid review status", req.Status)
	}
	if len(req.IDs) == 0 {
		return nil, apperror.Validation("at least one record id is required")
	}
	if req.VerifierRemarks == nil {
		return nil, apperror.Validation("verifier_remarks must be present, even if empty")
	}
	remarks := *req.VerifierRemarks

	store, ok := s.stores[module]
	if !ok {
		return nil, apperror.Validation("module '%s' does not carry a review status", module)
	}

	outcomes := make([]StatusOutcome, len(req.IDs))
	refs := make([]string, len(req.IDs))

	var wg sync.WaitGroup
	for i, id := range req.IDs {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			ref, err := store.ChangeStatus(ctx, id, target, remarks, actor)
			if err != nil {
				outcomes[i] = StatusOutcome{ID: id, OK: false, Error: err.Error()}
				return
			}
			outcomes[i] = StatusOutcome{ID: id, OK: true}
			refs[i] = ref
		}(i, id)
	}
	wg.Wait()

	result := &BatchStatusResult{Requested: len(req.IDs), Outcomes: outcomes}
	var changed []string
	for i, o := range outcomes {
		if o.OK {
			result.Succeeded++
			changed = append(changed, refs[i])
		} else {
			result.Failed++
		}
	}

	if s.hub != nil && len(changed) > 0 {
		s.hub.Publish(websocket.StatusChangeEvent{
			Type:      "status_change",
			Module:    string(module),
			Status:    string(target),
			IDs:       changed,
			ChangedBy: actor.Username,
			ChangedAt: time.Now(),
		})
	}

	return result, nil
}

// --- Per-module stores ---

func parseRecordID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, apperror.Validation("invalid record id '%s'", id)
	}
	return parsed, nil
}

func transitionError(ref string, from, to workflow.ApprovalStatus) error {
	return apperror.Conflict("%s cannot move from %s to %s", ref, from, to)
}

// reviewStamp is the who/when pair recorded on every status transition. The
// approval pair is filled only when the target is Approved; a Returned or
// Rejected record still carries who moved it and when.
type reviewStamp struct {
	By         string
	At         *time.Time
	ApprovedBy string
	ApprovedAt *time.Time
}

func stampFor(target workflow.ApprovalStatus, actor Actor, now time.Time) reviewStamp {
	stamp := reviewStamp{By: actor.Username, At: &now}
	if target == workflow.StatusApproved {
		stamp.ApprovedBy = actor.Username
		stamp.ApprovedAt = &now
	}
	return stamp
}

type memberStatusStore struct {
	db *gorm.DB
}

func (s *memberStatusStore) ChangeStatus(ctx context.Context, id string, target workflow.ApprovalStatus, remarks string, actor Actor) (string, error) {
	recordID, err := parseRecordID(id)
	if err != nil {
		return "", err
	}

	var ref string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var member model.Member
		if err := tx.Clauses(forUpdate()).First(&member, "id = ? AND is_deleted = ?", recordID, false).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("member %s not found", id)
			}
			return fmt.Errorf("failed to load member: %w", err)
		}
		if !workflow.CanTransition(member.Status, target, actor.IsAdmin()) {
			return transitionError(member.MemberNo, member.Status, target)
		}

		stamp := stampFor(target, actor, time.Now())
		member.Status = target
		member.VerifierRemarks = remarks
		member.StatusChangedBy = stamp.By
		member.StatusChangedAt = stamp.At
		member.ModifiedBy = actor.Username
		if err := tx.Save(&member).Error; err != nil {
			return fmt.Errorf("failed to change member status: %w", err)
		}

		ref = member.MemberNo
		return writeAudit(tx, actor, model.ActionChangeStatus, permission.MemberMaintenance,
			member.ID.String(), member.MemberNo, map[string]any{"status": target})
	})
	return ref, err
}

type productStatusStore struct {
	db *gorm.DB
}

func (s *productStatusStore) ChangeStatus(ctx context.Context, id string, target workflow.ApprovalStatus, remarks string, actor Actor) (string, error) {
	recordID, err := parseRecordID(id)
	if err != nil {
		return "", err
	}

	var ref string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product model.Product
		if err := tx.Clauses(forUpdate()).First(&product, "id = ? AND is_deleted = ?", recordID, false).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("product %s not found", id)
			}
			return fmt.Errorf("failed to load product: %w", err)
		}
		if !workflow.CanTransition(product.Status, target, actor.IsAdmin()) {
			return transitionError(product.ProductID, product.Status, target)
		}

		stamp := stampFor(target, actor, time.Now())
		product.Status = target
		product.VerifierRemarks = remarks
		product.StatusChangedBy = stamp.By
		product.StatusChangedAt = stamp.At
		product.ModifiedBy = actor.Username
		if stamp.ApprovedBy != "" {
			product.ApprovedBy = stamp.ApprovedBy
			product.ApprovedAt = stamp.ApprovedAt
		}
		if err := tx.Save(&product).Error; err != nil {
			return fmt.Errorf("failed to change product status: %w", err)
		}

		ref = product.ProductID
		return writeAudit(tx, actor, model.ActionChangeStatus, permission.ProductMaintenance,
			product.ID.String(), product.ProductID, map[string]any{"status": target})
	})
	return ref, err
}

type transactionStatusStore struct {
	db *gorm.DB
}

func (s *transactionStatusStore) ChangeStatus(ctx context.Context, id string, target workflow.ApprovalStatus, remarks string, actor Actor) (string, error) {
	recordID, err := parseRecordID(id)
	if err != nil {
		return "", err
	}

	var ref string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txn model.Transaction
		if err := tx.Clauses(forUpdate()).First(&txn, "id = ? AND is_deleted = ?", recordID, false).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("transaction %s not found", id)
			}
			return fmt.Errorf("failed to load transaction: %w", err)
		}
		if !workflow.CanTransition(txn.Status, target, actor.IsAdmin()) {
			return transitionError(txn.TransactionID, txn.Status, target)
		}

		stamp := stampFor(target, actor, time.Now())
		txn.Status = target
		txn.VerifierRemarks = remarks
		txn.StatusChangedBy = stamp.By
		txn.StatusChangedAt = stamp.At
		txn.ModifiedBy = actor.Username
		if stamp.ApprovedBy != "" {
			txn.ApprovedBy = stamp.ApprovedBy
			txn.ApprovedAt = stamp.ApprovedAt
			if err := postTransaction(tx, &txn); err != nil {
				return err
			}
		}
		if err := tx.Save(&txn).Error; err != nil {
			return fmt.Errorf("failed to change transaction status: %w", err)
		}

		ref = txn.TransactionID
		return writeAudit(tx, actor, model.ActionChangeStatus, permission.TransactionMaintenance,
			txn.ID.String(), txn.TransactionID, map[string]any{"status": target, "amount": txn.Amount.String()})
	})
	return ref, err
}

// postTransaction moves the amount between the two accounts. It runs inside
// the same transaction as the status flip, so the posting and the approval
// commit together.
func postTransaction(tx *gorm.DB, txn *model.Transaction) error {
	var debit, credit model.Account
	if err := tx.Clauses(forUpdate()).First(&debit, "id = ?", txn.DebitAccountID).Error; err != nil {
		return fmt.Errorf("failed to load debit account: %w", err)
	}
	if err := tx.Clauses(forUpdate()).First(&credit, "id = ?", txn.CreditAccountID).Error; err != nil {
		return fmt.Errorf("failed to load credit account: %w", err)
	}

	if debit.Status != workflow.AccountActive || credit.Status != workflow.AccountActive {
		return apperror.Conflict("transaction %s touches an inactive account", txn.TransactionID)
	}
	if debit.AvailableBalance.LessThan(txn.Amount) {
		return apperror.Conflict("account %s has insufficient funds", debit.AccountID)
	}

	debit.AvailableBalance = debit.AvailableBalance.Sub(txn.Amount)
	credit.AvailableBalance = credit.AvailableBalance.Add(txn.Amount)

	if err := tx.Save(&debit).Error; err != nil {
		return fmt.Errorf("failed to post debit: %w", err)
	}
	if err := tx.Save(&credit).Error; err != nil {
		return fmt.Errorf("failed to post credit: %w", err)
	}
	return nil
}

type saccoStatusStore struct {
	db *gorm.DB
}

func (s *saccoStatusStore) ChangeStatus(ctx context.Context, id string, target workflow.ApprovalStatus, remarks string, actor Actor) (string, error) {
	recordID, err := parseRecordID(id)
	if err != nil {
		return "", err
	}

	var ref string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sacco model.Sacco
		if err := tx.Clauses(forUpdate()).First(&sacco, "id = ? AND is_deleted = ?", recordID, false).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("sacco %s not found", id)
			}
			return fmt.Errorf("failed to load sacco: %w", err)
		}
		if !workflow.CanTransition(sacco.Status, target, actor.IsAdmin()) {
			return transitionError(sacco.SaccoID, sacco.Status, target)
		}

		stamp := stampFor(target, actor, time.Now())
		sacco.Status = target
		sacco.VerifierRemarks = remarks
		sacco.StatusChangedBy = stamp.By
		sacco.StatusChangedAt = stamp.At
		sacco.ModifiedBy = actor.Username
		if stamp.ApprovedBy != "" {
			sacco.ApprovedBy = stamp.ApprovedBy
			sacco.ApprovedAt = stamp.ApprovedAt
		}
		if err := tx.Save(&sacco).Error; err != nil {
			return fmt.Errorf("failed to change sacco status: %w", err)
		}

		ref = sacco.SaccoID
		return writeAudit(tx, actor, model.ActionChangeStatus, permission.SaccoMaintenance,
			sacco.ID.String(), sacco.SaccoID, map[string]any{"status": target})
	})
	return ref, err
}
