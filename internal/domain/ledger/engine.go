package ledger

import (
	"context"
	"fmt"
	"time"

	"liquorpos/internal/core/apperror"
	"liquorpos/internal/core/appctx"
	"liquorpos/internal/core/id"
	"liquorpos/internal/core/tx"
	"liquorpos/internal/core/types"
	"liquorpos/internal/domain/audit"
	"liquorpos/internal/domain/catalogs/product"
	"liquorpos/internal/domain/movement"
	"liquorpos/internal/domain/reference"
	"liquorpos/internal/infrastructure/metrics"
	"liquorpos/pkg/logger"
)

// ItemError reports a per-product failure inside a batch operation.
type ItemError struct {
	ProductID id.ID  `json:"productId"`
	Err       string `json:"error"`
}

// BatchResult summarizes a batch engine run. Batch operations apply as
// much as they can; failures are collected, not fatal.
type BatchResult struct {
	Processed int         `json:"processed"`
	Created   int         `json:"created"`
	Updated   int         `json:"updated"`
	Skipped   int         `json:"skipped"`
	Errors    []ItemError `json:"errors,omitempty"`
}

func (r *BatchResult) fail(productID id.ID, err error) {
	r.Errors = append(r.Errors, ItemError{ProductID: productID, Err: err.Error()})
}

// IntegrityIssue describes one entry whose derived fields disagreed
// with a fresh derivation.
type IntegrityIssue struct {
	EntryID       id.ID `json:"entryId"`
	ProductID     id.ID `json:"productId"`
	StoredClosing int64 `json:"storedClosing"`
	WantClosing   int64 `json:"wantClosing"`
	Repaired      bool  `json:"repaired"`
}

// IntegrityResult is the outcome of a ValidateIntegrity run.
type IntegrityResult struct {
	Day     time.Time        `json:"day"`
	Checked int              `json:"checked"`
	Issues  []IntegrityIssue `json:"issues,omitempty"`
	Errors  []ItemError      `json:"errors,omitempty"`
}

// ContinuityBreak is one spot where a product's opening stock does not
// match the previous entry's closing stock, or a day is missing.
type ContinuityBreak struct {
	ProductID   id.ID     `json:"productId"`
	Day         time.Time `json:"day"`
	PrevDay     time.Time `json:"prevDay"`
	PrevClosing int64     `json:"prevClosing"`
	Opening     int64     `json:"opening"`
	MissingDay  bool      `json:"missingDay"`
}

// Engine implements the daily stock lifecycle: get-or-create of daily
// entries, sale/inward application, snapshots, carry-forward, live stock
// sync, integrity validation and continuity reporting.
//
// All multi-write operations run inside an injected transaction manager.
type Engine struct {
	entries   Repository
	products  product.Repository
	movements *movement.Service
	audits    *audit.Service
	txm       tx.Manager
	log       *logger.Logger
}

func NewEngine(entries Repository, products product.Repository, movements *movement.Service, audits *audit.Service, txm tx.Manager, log *logger.Logger) *Engine {
	return &Engine{
		entries:   entries,
		products:  products,
		movements: movements,
		audits:    audits,
		txm:       txm,
		log:       log.WithComponent("ledger.engine"),
	}
}

// GetOrCreate returns the ledger entry for the product and day, creating
// it when missing. Opening stock for a new entry comes from the latest
// earlier entry's closing stock, falling back to the product's live
// stock when no history exists. The bool reports whether an entry was
// created by this call.
//
// On a duplicate-key race with a concurrent creator the existing entry
// is fetched and returned.
func (e *Engine) GetOrCreate(ctx context.Context, productID id.ID, day time.Time) (*Entry, bool, error) {
	day = types.DayOf(day)

	entry, err := e.entries.Get(ctx, productID, day)
	if err == nil {
		return entry, false, nil
	}
	if !apperror.IsNotFound(err) {
		return nil, false, err
	}

	p, err := e.products.GetByID(ctx, productID)
	if err != nil {
		return nil, false, err
	}

	opening := p.CurrentStock
	if prev, err := e.entries.GetLatestBefore(ctx, productID, day); err == nil {
		opening = prev.ClosingStock
	} else if !apperror.IsNotFound(err) {
		return nil, false, err
	}

	fresh := New(productID, day, opening, p.CostPrice)
	if err := e.entries.Create(ctx, &fresh); err != nil {
		if apperror.IsDuplicate(err) {
			existing, gerr := e.entries.Get(ctx, productID, day)
			if gerr != nil {
				return nil, false, gerr
			}
			return existing, false, nil
		}
		return nil, false, err
	}
	metrics.LedgerEntriesCreatedTotal.Inc()
	return &fresh, true, nil
}

// RecordSale applies a sale of qty units to the product's ledger entry
// for the day, decrements live stock and appends a movement and an audit
// record. The ledger increment is a single atomic statement, so
// concurrent sales of the same product never lose updates.
//
// The engine does not check availability: an oversell drives closing
// stock negative and stays visible in the ledger. Availability belongs
// to the sales boundary, which validates before posting.
func (e *Engine) RecordSale(ctx context.Context, productID id.ID, day time.Time, qty int64, unitPrice types.Money, ref reference.Reference) (*Entry, error) {
	if qty <= 0 {
		return nil, apperror.NewValidation("sale quantity must be positive")
	}
	day = types.DayOf(day)
	actor := appctx.ActorName(ctx)

	if _, _, err := e.GetOrCreate(ctx, productID, day); err != nil {
		return nil, err
	}

	var updated *Entry
	err := e.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		updated, err = e.entries.ApplySale(ctx, productID, day, qty)
		if err != nil {
			return err
		}
		newStock, err := e.products.AdjustStock(ctx, productID, -qty)
		if err != nil {
			return err
		}

		if _, err := e.movements.Record(ctx, productID, movement.TypeOut, movement.CategorySale, qty, unitPrice, ref, day, actor); err != nil {
			return err
		}
		_, err = e.audits.Log(ctx, productID, audit.ChangeSale, newStock+qty, newStock, ref, "", actor)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.SalesRecordedTotal.Inc()
	logger.Debug(ctx, "sale recorded", "product_id", productID, "qty", qty, "closing", updated.ClosingStock)
	return updated, nil
}

// RecordInward applies a stock receipt of qty units to the day's entry,
// increments live stock and appends movement and audit records.
func (e *Engine) RecordInward(ctx context.Context, productID id.ID, day time.Time, qty int64, unitCost types.Money, ref reference.Reference) (*Entry, error) {
	if qty <= 0 {
		return nil, apperror.NewValidation("inward quantity must be positive")
	}
	day = types.DayOf(day)
	actor := appctx.ActorName(ctx)

	if _, _, err := e.GetOrCreate(ctx, productID, day); err != nil {
		return nil, err
	}

	var updated *Entry
	err := e.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		updated, err = e.entries.ApplyInward(ctx, productID, day, qty)
		if err != nil {
			return err
		}
		newStock, err := e.products.AdjustStock(ctx, productID, qty)
		if err != nil {
			return err
		}

		if _, err := e.movements.Record(ctx, productID, movement.TypeIn, movement.CategoryStockInward, qty, unitCost, ref, day, actor); err != nil {
			return err
		}
		_, err = e.audits.Log(ctx, productID, audit.ChangeInward, newStock-qty, newStock, ref, "", actor)
		return err
	})
	if err != nil {
		return nil, err
	}
	metrics.InwardRecordedTotal.Inc()
	return updated, nil
}

// SetStock is the manual stock adjustment path: it sets the product's
// live stock to an absolute value and folds the delta into today's
// ledger entry as inward (positive delta) or sold (negative delta), with
// movement and audit trails. A reason is mandatory.
func (e *Engine) SetStock(ctx context.Context, productID id.ID, newStock int64, reason string) (*Entry, error) {
	if newStock < 0 {
		return nil, apperror.NewValidation("stock cannot be negative")
	}
	if reason == "" {
		return nil, apperror.NewValidation("adjustment reason is required")
	}
	day := types.Today()
	actor := appctx.ActorName(ctx)
	ref := reference.Manual()

	if _, _, err := e.GetOrCreate(ctx, productID, day); err != nil {
		return nil, err
	}

	p, err := e.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	var updated *Entry
	err = e.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		oldStock, err := e.products.SetStock(ctx, productID, newStock)
		if err != nil {
			return err
		}
		delta := newStock - oldStock

		switch {
		case delta > 0:
			updated, err = e.entries.ApplyInward(ctx, productID, day, delta)
		case delta < 0:
			updated, err = e.entries.ApplySale(ctx, productID, day, -delta)
		default:
			updated, err = e.entries.Get(ctx, productID, day)
		}
		if err != nil {
			return err
		}

		if delta != 0 {
			mqty := delta
			mtyp := movement.TypeIn
			if mqty < 0 {
				mqty = -mqty
				mtyp = movement.TypeOut
			}
			if _, err := e.movements.Record(ctx, productID, mtyp, movement.CategoryAdjustment, mqty, p.CostPrice, ref, day, actor); err != nil {
				return err
			}
		}
		_, err = e.audits.Log(ctx, productID, audit.ChangeManualAdjustment, oldStock, newStock, ref, reason, actor)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.ManualAdjustmentsTotal.Inc()
	logger.Info(ctx, "manual stock adjustment", "product_id", productID, "new_stock", newStock, "reason", reason)
	return updated, nil
}

// ApplyReconciliation makes a physical count authoritative for the day:
// live stock is set to the counted value and the delta against the
// entry's closing stock is folded into the ledger as inward or sold, so
// closing equals the count afterwards and a later live-stock sync
// cannot undo the adjustment. A reconciliation movement and audit record
// are appended when the count differs.
func (e *Engine) ApplyReconciliation(ctx context.Context, productID id.ID, day time.Time, physical int64, unitCost types.Money, ref reference.Reference, reason string) (*Entry, error) {
	day = types.DayOf(day)
	actor := appctx.ActorName(ctx)

	if _, _, err := e.GetOrCreate(ctx, productID, day); err != nil {
		return nil, err
	}

	var updated *Entry
	err := e.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		oldStock, err := e.products.SetStock(ctx, productID, physical)
		if err != nil {
			return err
		}

		cur, err := e.entries.Get(ctx, productID, day)
		if err != nil {
			return err
		}
		delta := physical - cur.ClosingStock

		switch {
		case delta > 0:
			updated, err = e.entries.ApplyInward(ctx, productID, day, delta)
		case delta < 0:
			updated, err = e.entries.ApplySale(ctx, productID, day, -delta)
		default:
			updated = cur
		}
		if err != nil {
			return err
		}

		if delta != 0 {
			mqty := delta
			mtyp := movement.TypeIn
			if mqty < 0 {
				mqty = -mqty
				mtyp = movement.TypeOut
			}
			if _, err := e.movements.Record(ctx, productID, mtyp, movement.CategoryReconciliation, mqty, unitCost, ref, day, actor); err != nil {
				return err
			}
		}
		_, err = e.audits.Log(ctx, productID, audit.ChangeReconciliation, oldStock, physical, ref, reason, actor)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "reconciliation applied to ledger", "product_id", productID, "day", types.FormatDay(day), "physical", physical, "closing", updated.ClosingStock)
	return updated, nil
}

// CreateDailySnapshots ensures every active product has a ledger entry
// for the day. Existing entries are left untouched.
func (e *Engine) CreateDailySnapshots(ctx context.Context, day time.Time) (*BatchResult, error) {
	day = types.DayOf(day)
	products, err := e.products.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	res := &BatchResult{}
	for i := range products {
		p := &products[i]
		res.Processed++
		_, created, err := e.GetOrCreate(ctx, p.ID, day)
		if err != nil {
			res.fail(p.ID, err)
			continue
		}
		if created {
			res.Created++
		} else {
			res.Skipped++
		}
	}

	logger.Info(ctx, "daily snapshots", "day", types.FormatDay(day), "created", res.Created, "skipped", res.Skipped, "errors", len(res.Errors))
	return res, nil
}

// CarryForwardOpeningStock sets each product's opening stock for the day
// to its latest earlier closing stock. Entries already matching are
// skipped; products with no prior history are skipped.
func (e *Engine) CarryForwardOpeningStock(ctx context.Context, day time.Time) (*BatchResult, error) {
	day = types.DayOf(day)
	entries, err := e.entries.ListByDay(ctx, day)
	if err != nil {
		return nil, err
	}

	res := &BatchResult{}
	for i := range entries {
		en := &entries[i]
		res.Processed++

		prev, err := e.entries.GetLatestBefore(ctx, en.ProductID, day)
		if apperror.IsNotFound(err) {
			res.Skipped++
			continue
		}
		if err != nil {
			res.fail(en.ProductID, err)
			continue
		}
		if en.OpeningStock == prev.ClosingStock {
			res.Skipped++
			continue
		}
		if _, err := e.entries.SetOpening(ctx, en.ProductID, day, prev.ClosingStock); err != nil {
			res.fail(en.ProductID, err)
			continue
		}
		res.Updated++
	}
	return res, nil
}

// SyncLiveStockFromSnapshot overwrites each product's live stock with
// its closing stock from the day's ledger entries, auditing every
// product whose value actually changed.
func (e *Engine) SyncLiveStockFromSnapshot(ctx context.Context, day time.Time) (*BatchResult, error) {
	day = types.DayOf(day)
	entries, err := e.entries.ListByDay(ctx, day)
	if err != nil {
		return nil, err
	}
	actor := appctx.ActorName(ctx)

	res := &BatchResult{}
	for i := range entries {
		en := &entries[i]
		res.Processed++

		err := e.txm.RunInTransaction(ctx, func(ctx context.Context) error {
			old, err := e.products.SetStock(ctx, en.ProductID, en.ClosingStock)
			if err != nil {
				return err
			}
			if old == en.ClosingStock {
				return nil
			}
			ref := reference.New(reference.KindDailyStock, en.ID)
			_, err = e.audits.Log(ctx, en.ProductID, audit.ChangeClosingStock, old, en.ClosingStock, ref, "live stock synced from daily snapshot", actor)
			if err != nil {
				return err
			}
			res.Updated++
			return nil
		})
		if err != nil {
			res.fail(en.ProductID, err)
			continue
		}
	}

	logger.Info(ctx, "live stock sync", "day", types.FormatDay(day), "updated", res.Updated, "errors", len(res.Errors))
	return res, nil
}

// ValidateIntegrity checks every entry of the day against a fresh
// derivation of its closing stock and value. Read-only: mismatches are
// reported for monitoring, never written. RepairIntegrity is the
// explicit repair pass.
func (e *Engine) ValidateIntegrity(ctx context.Context, day time.Time) (*IntegrityResult, error) {
	day = types.DayOf(day)
	entries, err := e.entries.ListByDay(ctx, day)
	if err != nil {
		return nil, err
	}

	res := &IntegrityResult{Day: day}
	for i := range entries {
		en := &entries[i]
		res.Checked++
		if en.Consistent() {
			continue
		}

		issue := IntegrityIssue{
			EntryID:       en.ID,
			ProductID:     en.ProductID,
			StoredClosing: en.ClosingStock,
			WantClosing:   en.OpeningStock + en.InwardQuantity - en.SoldQuantity,
		}
		res.Issues = append(res.Issues, issue)
		metrics.IntegrityIssuesTotal.Inc()

		logger.Warn(ctx, "ledger integrity mismatch",
			"entry_id", en.ID, "product_id", en.ProductID,
			"stored_closing", issue.StoredClosing, "want_closing", issue.WantClosing)
	}
	return res, nil
}

// RepairIntegrity recomputes and persists every inconsistent entry of
// the day. Operator-invoked; the scheduled validation run only reports.
func (e *Engine) RepairIntegrity(ctx context.Context, day time.Time) (*IntegrityResult, error) {
	day = types.DayOf(day)
	entries, err := e.entries.ListByDay(ctx, day)
	if err != nil {
		return nil, err
	}

	res := &IntegrityResult{Day: day}
	for i := range entries {
		en := &entries[i]
		res.Checked++
		if en.Consistent() {
			continue
		}

		issue := IntegrityIssue{
			EntryID:       en.ID,
			ProductID:     en.ProductID,
			StoredClosing: en.ClosingStock,
			WantClosing:   en.OpeningStock + en.InwardQuantity - en.SoldQuantity,
		}
		en.Recompute()
		en.UpdatedAt = time.Now().UTC()
		if err := e.entries.Update(ctx, en); err != nil {
			res.Errors = append(res.Errors, ItemError{ProductID: en.ProductID, Err: err.Error()})
		} else {
			issue.Repaired = true
		}
		res.Issues = append(res.Issues, issue)

		logger.Info(ctx, "ledger entry repaired",
			"entry_id", en.ID, "product_id", en.ProductID,
			"stored_closing", issue.StoredClosing, "want_closing", issue.WantClosing,
			"repaired", issue.Repaired)
	}
	return res, nil
}

// ContinuityReport walks each product's entries in [from, to] and
// reports every day whose opening stock disagrees with the previous
// entry's closing stock. Detection only; repair is the explicit
// carry-forward pass.
func (e *Engine) ContinuityReport(ctx context.Context, from, to time.Time) ([]ContinuityBreak, error) {
	from, to = types.DayOf(from), types.DayOf(to)
	if to.Before(from) {
		return nil, apperror.NewValidation("date range end is before start")
	}

	entries, err := e.entries.ListRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	byProduct := make(map[id.ID][]Entry)
	for _, en := range entries {
		byProduct[en.ProductID] = append(byProduct[en.ProductID], en)
	}

	var breaks []ContinuityBreak
	for pid, list := range byProduct {
		// ListRange returns entries ordered by date per product.
		for i := 1; i < len(list); i++ {
			prev, cur := &list[i-1], &list[i]
			if cur.OpeningStock != prev.ClosingStock {
				breaks = append(breaks, ContinuityBreak{
					ProductID:   pid,
					Day:         cur.Date,
					PrevDay:     prev.Date,
					PrevClosing: prev.ClosingStock,
					Opening:     cur.OpeningStock,
					MissingDay:  !types.SameDay(cur.Date, types.NextDay(prev.Date)),
				})
			}
		}
	}
	return breaks, nil
}

// RecordPhysical writes a physical count onto the product's ledger
// entry for the day, creating the entry first when missing.
func (e *Engine) RecordPhysical(ctx context.Context, productID id.ID, day time.Time, physical int64, countedBy string, at time.Time) (*Entry, error) {
	day = types.DayOf(day)
	if _, _, err := e.GetOrCreate(ctx, productID, day); err != nil {
		return nil, err
	}
	return e.entries.RecordPhysical(ctx, productID, day, physical, countedBy, at)
}

// Entry lookups for handlers and reports.

func (e *Engine) GetEntry(ctx context.Context, productID id.ID, day time.Time) (*Entry, error) {
	return e.entries.Get(ctx, productID, types.DayOf(day))
}

func (e *Engine) ListByDay(ctx context.Context, day time.Time) ([]Entry, error) {
	return e.entries.ListByDay(ctx, types.DayOf(day))
}

func (e *Engine) ListByProduct(ctx context.Context, productID id.ID, from, to time.Time) ([]Entry, error) {
	from, to = types.DayOf(from), types.DayOf(to)
	if to.Before(from) {
		return nil, apperror.NewValidation(fmt.Sprintf("invalid range: %s after %s", types.FormatDay(from), types.FormatDay(to)))
	}
	return e.entries.ListByProduct(ctx, productID, from, to)
}
