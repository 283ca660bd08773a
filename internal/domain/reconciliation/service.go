package reconciliation

import (
	"context"
	"fmt"
	"time"

	"liquorpos/internal/core/apperror"
	"liquorpos/internal/core/appctx"
	"liquorpos/internal/core/id"
	"liquorpos/internal/core/numerator"
	"liquorpos/internal/core/tx"
	"liquorpos/internal/core/types"
	"liquorpos/internal/domain/catalogs/product"
	"liquorpos/internal/domain/ledger"
	"liquorpos/internal/domain/reference"
	"liquorpos/internal/infrastructure/metrics"
	"liquorpos/pkg/logger"
)

// StaleItem flags a session item whose system stock snapshot no longer
// matches the product's live stock at approval time. Counting takes a
// while; the warning lets the approver decide with open eyes. The
// physical count stays authoritative either way.
type StaleItem struct {
	ProductID   id.ID `json:"productId"`
	SystemStock int64 `json:"systemStock"`
	LiveStock   int64 `json:"liveStock"`
}

// ApproveResult reports the approval outcome including staleness
// warnings and, when adjustments were applied in the same call, the
// apply outcome.
type ApproveResult struct {
	Session    *Session     `json:"session"`
	StaleItems []StaleItem  `json:"staleItems,omitempty"`
	Apply      *ApplyResult `json:"apply,omitempty"`
}

// ApplyResult reports a variance application run. Items fail
// individually; a failed item is recorded on the item and does not stop
// the rest.
type ApplyResult struct {
	Applied int                `json:"applied"`
	Skipped int                `json:"skipped"`
	Errors  []ledger.ItemError `json:"errors,omitempty"`
}

// Service drives the reconciliation workflow.
type Service struct {
	sessions Repository
	products product.Repository
	engine   *ledger.Engine
	numbers  numerator.Generator
	txm      tx.Manager
	log      *logger.Logger
}

func NewService(sessions Repository, products product.Repository, engine *ledger.Engine, numbers numerator.Generator, txm tx.Manager, log *logger.Logger) *Service {
	return &Service{
		sessions: sessions,
		products: products,
		engine:   engine,
		numbers:  numbers,
		txm:      txm,
		log:      log.WithComponent("reconciliation"),
	}
}

// Create opens a counting session for the day. Only one active
// session per day is allowed. When productIDs is empty the session
// covers every active product. Each item snapshots the product's system
// stock at creation time: the day's ledger closing stock when an entry
// exists, else the live stock.
func (s *Service) Create(ctx context.Context, day time.Time, notes string, productIDs []id.ID) (*Session, error) {
	day = types.DayOf(day)
	actor := appctx.ActorName(ctx)

	if active, err := s.sessions.GetActiveForDay(ctx, day); err == nil {
		return nil, apperror.NewConflict(fmt.Sprintf("session %s is already active for %s", active.Number, types.FormatDay(day)))
	} else if !apperror.IsNotFound(err) {
		return nil, err
	}

	var prods []product.Product
	if len(productIDs) == 0 {
		var err error
		prods, err = s.products.ListActive(ctx)
		if err != nil {
			return nil, err
		}
	} else {
		for _, pid := range productIDs {
			p, err := s.products.GetByID(ctx, pid)
			if err != nil {
				return nil, err
			}
			prods = append(prods, *p)
		}
	}
	if len(prods) == 0 {
		return nil, apperror.NewValidation("session must cover at least one product")
	}

	number, err := s.numbers.GetNextNumber(ctx, numerator.DailyConfig("REC"), numerator.DefaultOptions(), day)
	if err != nil {
		return nil, err
	}

	session := NewSession(number, day, actor, notes)
	err = s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.sessions.Create(ctx, &session); err != nil {
			return err
		}
		for i := range prods {
			p := &prods[i]
			systemStock := p.CurrentStock
			if en, err := s.engine.GetEntry(ctx, p.ID, day); err == nil {
				systemStock = en.ClosingStock
			} else if !apperror.IsNotFound(err) {
				return err
			}
			item := Item{
				ID:            id.New(),
				SessionID:     session.ID,
				ProductID:     p.ID,
				SystemStock:   systemStock,
				UnitCost:      p.CostPrice,
				VarianceValue: types.ZeroMoney(),
			}
			if err := s.sessions.AddItem(ctx, &item); err != nil {
				return err
			}
			session.Items = append(session.Items, item)
		}
		session.RecalcTotals()
		return s.sessions.Update(ctx, &session)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "reconciliation session created", "number", session.Number, "day", types.FormatDay(day), "items", session.TotalItems)
	return &session, nil
}

// RecordCount records a physical count for one product in an
// in-progress session. The count is also written through to the product's ledger
// entry for the session day, so the ledger carries the physical stock
// and variance even before adjustments are applied.
func (s *Service) RecordCount(ctx context.Context, sessionID, productID id.ID, physical int64) (*Session, error) {
	if physical < 0 {
		return nil, apperror.NewValidation("physical count cannot be negative")
	}
	actor := appctx.ActorName(ctx)

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := session.CanRecordCount(); err != nil {
		return nil, err
	}

	item := session.Item(productID)
	if item == nil {
		return nil, apperror.NewNotFound("session item", productID.String())
	}

	now := time.Now().UTC()
	item.SetCount(physical, actor, now)
	session.RecalcTotals()
	session.UpdatedAt = now

	err = s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.sessions.UpdateItem(ctx, item); err != nil {
			return err
		}
		if err := s.sessions.Update(ctx, session); err != nil {
			return err
		}
		_, err := s.engine.RecordPhysical(ctx, productID, session.Date, physical, actor, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// Submit moves an in-progress session to pending_approval. Unless
// allowPartial is set, every item carrying system stock must have been
// counted; items whose system stock is zero never block submission.
func (s *Service) Submit(ctx context.Context, sessionID id.ID, allowPartial bool) (*Session, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := session.CanSubmit(); err != nil {
		return nil, err
	}
	if !allowPartial {
		uncounted := 0
		for i := range session.Items {
			it := &session.Items[i]
			if !it.Counted() && it.SystemStock != 0 {
				uncounted++
			}
		}
		if uncounted > 0 {
			return nil, apperror.NewBusinessRule(apperror.CodeBusinessRule, fmt.Sprintf("%d stocked items are uncounted; count them or submit with allowPartial", uncounted))
		}
	}

	now := time.Now().UTC()
	session.Status = StatusPendingApproval
	session.SubmittedAt = &now
	session.UpdatedAt = now
	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Approve approves a pending session. The approver must not be the
// session creator. Items whose snapshot has gone stale against live
// stock are reported as warnings. With applyAdjustments set the
// variances are applied in the same call and the session completes.
func (s *Service) Approve(ctx context.Context, sessionID id.ID, applyAdjustments bool) (*ApproveResult, error) {
	actor := appctx.ActorName(ctx)

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := session.CanApprove(); err != nil {
		return nil, err
	}
	if actor == session.CreatedBy {
		return nil, apperror.NewForbidden("session creator cannot approve their own session")
	}

	res := &ApproveResult{Session: session}
	for i := range session.Items {
		it := &session.Items[i]
		if !it.Counted() {
			continue
		}
		p, err := s.products.GetByID(ctx, it.ProductID)
		if err != nil {
			logger.Warn(ctx, "stale check skipped", "product_id", it.ProductID, "error", err)
			continue
		}
		if p.CurrentStock != it.SystemStock {
			res.StaleItems = append(res.StaleItems, StaleItem{
				ProductID:   it.ProductID,
				SystemStock: it.SystemStock,
				LiveStock:   p.CurrentStock,
			})
		}
	}

	now := time.Now().UTC()
	session.Status = StatusApproved
	session.ApprovedBy = actor
	session.ApprovedAt = &now
	session.UpdatedAt = now
	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, err
	}

	logger.Info(ctx, "reconciliation approved", "number", session.Number, "approved_by", actor, "stale_items", len(res.StaleItems))

	if applyAdjustments {
		apply, err := s.ApplyAdjustments(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		res.Apply = apply
		res.Session, err = s.sessions.GetByID(ctx, sessionID)
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Reject terminates a pending session with a reason. Rejected is a
// terminal state; a fresh session must be created to count again.
func (s *Service) Reject(ctx context.Context, sessionID id.ID, reason string) (*Session, error) {
	if reason == "" {
		return nil, apperror.NewValidation("rejection reason is required")
	}
	actor := appctx.ActorName(ctx)

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := session.CanReject(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	session.Status = StatusRejected
	session.RejectedBy = actor
	session.RejectedAt = &now
	session.RejectReason = reason
	session.UpdatedAt = now
	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, err
	}
	metrics.ReconciliationsTotal.WithLabelValues(string(StatusRejected)).Inc()
	return session, nil
}

// ApplyAdjustments makes the physical counts authoritative: every
// counted item goes through the ledger engine, which sets live stock to
// the count, folds the delta into the day's entry so closing equals the
// count, and appends the reconciliation movement and audit record.
// Zero-variance items get an audit record but no movement. Items fail
// individually; the session completes regardless, carrying per-item
// errors.
func (s *Service) ApplyAdjustments(ctx context.Context, sessionID id.ID) (*ApplyResult, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := session.CanApply(); err != nil {
		return nil, err
	}

	ref := reference.New(reference.KindReconciliation, session.ID)
	res := &ApplyResult{}

	for i := range session.Items {
		it := &session.Items[i]
		if !it.Counted() || it.Applied {
			res.Skipped++
			continue
		}
		physical := *it.PhysicalStock

		reason := fmt.Sprintf("reconciliation %s: system %d, counted %d", session.Number, it.SystemStock, physical)
		_, err := s.engine.ApplyReconciliation(ctx, it.ProductID, session.Date, physical, it.UnitCost, ref, reason)
		if err != nil {
			it.ApplyError = err.Error()
			res.Errors = append(res.Errors, ledger.ItemError{ProductID: it.ProductID, Err: err.Error()})
		} else {
			it.Applied = true
			it.ApplyError = ""
			res.Applied++
			metrics.ReconciliationVarianceApplied.Inc()
		}
		if uerr := s.sessions.UpdateItem(ctx, it); uerr != nil && err == nil {
			res.Errors = append(res.Errors, ledger.ItemError{ProductID: it.ProductID, Err: uerr.Error()})
		}
	}

	now := time.Now().UTC()
	session.Status = StatusCompleted
	session.CompletedAt = &now
	session.UpdatedAt = now
	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, err
	}
	metrics.ReconciliationsTotal.WithLabelValues(string(StatusCompleted)).Inc()

	logger.Info(ctx, "reconciliation applied", "number", session.Number, "applied", res.Applied, "errors", len(res.Errors))
	return res, nil
}

func (s *Service) GetByID(ctx context.Context, sessionID id.ID) (*Session, error) {
	return s.sessions.GetByID(ctx, sessionID)
}

// List returns sessions matching the filter, newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Session, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 200 {
		filter.Limit = 200
	}
	return s.sessions.List(ctx, filter)
}
