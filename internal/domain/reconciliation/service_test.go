package reconciliation_test

import (
	"context"
	"testing"
	"time"

	"liquorpos/internal/core/apperror"
	"liquorpos/internal/core/appctx"
	"liquorpos/internal/core/id"
	"liquorpos/internal/core/numerator"
	"liquorpos/internal/core/types"
	"liquorpos/internal/domain/audit"
	"liquorpos/internal/domain/catalogs/product"
	"liquorpos/internal/domain/ledger"
	"liquorpos/internal/domain/movement"
	"liquorpos/internal/domain/reconciliation"
	"liquorpos/internal/domain/reference"
	"liquorpos/internal/infrastructure/storage/memory"
	"liquorpos/pkg/logger"
)

type fixture struct {
	service   *reconciliation.Service
	engine    *ledger.Engine
	products  *memory.ProductRepo
	movements *memory.MovementRepo
	audits    *memory.AuditRepo
}

func newFixture() *fixture {
	store := memory.NewStore()
	products := memory.NewProductRepo(store)
	movements := memory.NewMovementRepo(store)
	audits := memory.NewAuditRepo(store)
	txm := memory.NewTxManager()
	log := logger.Default()

	movementSvc := movement.NewService(movements)
	auditSvc := audit.NewService(audits)
	engine := ledger.NewEngine(memory.NewLedgerRepo(store), products, movementSvc, auditSvc, txm, log)

	service := reconciliation.NewService(
		memory.NewReconciliationRepo(store),
		products,
		engine,
		numerator.NewMock(),
		txm,
		log,
	)
	return &fixture{service: service, engine: engine, products: products, movements: movements, audits: audits}
}

func (f *fixture) addProduct(t *testing.T, stock int64) *product.Product {
	t.Helper()
	p := product.New("Kingfisher 650ml", "SKU-"+id.New().String(), id.Nil())
	p.CurrentStock = stock
	p.CostPrice = types.MustMoney("120")
	p.SellingPrice = types.MustMoney("180")
	if err := f.products.Create(context.Background(), p); err != nil {
		t.Fatalf("create product: %v", err)
	}
	return p
}

func asUser(name string) context.Context {
	return appctx.WithActor(context.Background(), appctx.Actor{UserID: name, Username: name, Role: "manager"})
}

func testDay() time.Time { return types.DayOf(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) }

func TestCreate_SnapshotsSystemStock(t *testing.T) {
	f := newFixture()
	ctx := asUser("counter1")
	p1 := f.addProduct(t, 40)
	p2 := f.addProduct(t, 12)

	session, err := f.service.Create(ctx, testDay(), "monthly count", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if session.Status != reconciliation.StatusInProgress {
		t.Errorf("status = %s, want in_progress", session.Status)
	}
	if session.Number != "REC-20260301-001" {
		t.Errorf("number = %s, want REC-20260301-001", session.Number)
	}
	if session.CreatedBy != "counter1" {
		t.Errorf("created by = %s", session.CreatedBy)
	}
	if len(session.Items) != 2 {
		t.Fatalf("got %d items, want 2 (all active products)", len(session.Items))
	}

	byProduct := map[id.ID]reconciliation.Item{}
	for _, it := range session.Items {
		byProduct[it.ProductID] = it
	}
	if byProduct[p1.ID].SystemStock != 40 || byProduct[p2.ID].SystemStock != 12 {
		t.Errorf("system stock snapshots wrong: %+v", byProduct)
	}
}

func TestCreate_OneActiveSessionPerDay(t *testing.T) {
	f := newFixture()
	ctx := asUser("counter1")
	f.addProduct(t, 40)

	if _, err := f.service.Create(ctx, testDay(), "", nil); err != nil {
		t.Fatalf("first create: %v", err)
	}

	_, err := f.service.Create(ctx, testDay(), "", nil)
	if err == nil {
		t.Fatal("expected conflict for second session on same day")
	}
	appErr, ok := apperror.AsAppError(err)
	if !ok || appErr.Code != apperror.CodeConflict {
		t.Errorf("got %v, want conflict", err)
	}
}

func TestRecordCount_DerivesVarianceAndWritesThrough(t *testing.T) {
	f := newFixture()
	ctx := asUser("counter1")
	p := f.addProduct(t, 40)

	session, err := f.service.Create(ctx, testDay(), "", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	session, err = f.service.RecordCount(ctx, session.ID, p.ID, 37)
	if err != nil {
		t.Fatalf("record count: %v", err)
	}

	it := session.Item(p.ID)
	if it == nil || !it.Counted() {
		t.Fatal("item not counted")
	}
	if it.Variance != -3 {
		t.Errorf("variance = %d, want -3", it.Variance)
	}
	wantValue := types.MustMoney("120").Mul(types.NewMoney(-3))
	if !it.VarianceValue.Equal(wantValue) {
		t.Errorf("variance value = %s, want %s", it.VarianceValue, wantValue)
	}
	if session.CountedItems != 1 || session.ItemsWithVariance != 1 {
		t.Errorf("totals counted=%d variance=%d, want 1/1", session.CountedItems, session.ItemsWithVariance)
	}

	// The count is also written onto the day's ledger entry.
	entry, err := f.engine.GetEntry(ctx, p.ID, testDay())
	if err != nil {
		t.Fatalf("get entry: %v", err)
	}
	if entry.PhysicalStock == nil || *entry.PhysicalStock != 37 {
		t.Errorf("ledger physical = %v, want 37", entry.PhysicalStock)
	}
}

func TestSubmit_RequiresCountsUnlessPartial(t *testing.T) {
	f := newFixture()
	ctx := asUser("counter1")
	p1 := f.addProduct(t, 40)
	f.addProduct(t, 12)
	f.addProduct(t, 0) // products without stock never block a submit

	session, err := f.service.Create(ctx, testDay(), "", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := f.service.RecordCount(ctx, session.ID, p1.ID, 38); err != nil {
		t.Fatalf("record count: %v", err)
	}

	// One stocked item still uncounted: rejected unless partial is allowed.
	if _, err := f.service.Submit(ctx, session.ID, false); err == nil {
		t.Fatal("expected error submitting partial count without allowPartial")
	}
	session, err = f.service.Submit(ctx, session.ID, true)
	if err != nil {
		t.Fatalf("partial submit: %v", err)
	}
	if session.Status != reconciliation.StatusPendingApproval {
		t.Errorf("status = %s, want pending_approval", session.Status)
	}
}

func TestSubmit_ZeroStockItemsDoNotBlock(t *testing.T) {
	f := newFixture()
	ctx := asUser("counter1")
	p := f.addProduct(t, 40)
	f.addProduct(t, 0)

	session, err := f.service.Create(ctx, testDay(), "", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.service.RecordCount(ctx, session.ID, p.ID, 40); err != nil {
		t.Fatalf("record count: %v", err)
	}

	// The zero-stock product was never counted; the strict submit still passes.
	session, err = f.service.Submit(ctx, session.ID, false)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if session.Status != reconciliation.StatusPendingApproval {
		t.Errorf("status = %s, want pending_approval", session.Status)
	}
}

func TestApprove_RejectsSelfApproval(t *testing.T) {
	f := newFixture()
	creator := asUser("counter1")
	p := f.addProduct(t, 40)

	session, _ := f.service.Create(creator, testDay(), "", nil)
	if _, err := f.service.RecordCount(creator, session.ID, p.ID, 40); err != nil {
		t.Fatalf("record count: %v", err)
	}
	if _, err := f.service.Submit(creator, session.ID, false); err != nil {
		t.Fatalf("submit: %v", err)
	}

	_, err := f.service.Approve(creator, session.ID, false)
	if err == nil {
		t.Fatal("expected forbidden for self-approval")
	}
	appErr, ok := apperror.AsAppError(err)
	if !ok || appErr.Code != apperror.CodeForbidden {
		t.Errorf("got %v, want forbidden", err)
	}

	// Someone else may approve.
	res, err := f.service.Approve(asUser("manager1"), session.ID, false)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if res.Session.Status != reconciliation.StatusApproved {
		t.Errorf("status = %s, want approved", res.Session.Status)
	}
	if res.Session.ApprovedBy != "manager1" {
		t.Errorf("approved by = %s", res.Session.ApprovedBy)
	}
}

func TestApprove_FlagsStaleItems(t *testing.T) {
	f := newFixture()
	creator := asUser("counter1")
	p := f.addProduct(t, 40)

	session, _ := f.service.Create(creator, testDay(), "", nil)
	if _, err := f.service.RecordCount(creator, session.ID, p.ID, 39); err != nil {
		t.Fatalf("record count: %v", err)
	}
	if _, err := f.service.Submit(creator, session.ID, false); err != nil {
		t.Fatalf("submit: %v", err)
	}

	// A sale happens between counting and approval.
	if _, err := f.engine.RecordSale(creator, p.ID, testDay(), 2, types.MustMoney("180"), reference.Manual()); err != nil {
		t.Fatalf("record sale: %v", err)
	}

	res, err := f.service.Approve(asUser("manager1"), session.ID, false)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if len(res.StaleItems) != 1 {
		t.Fatalf("got %d stale items, want 1", len(res.StaleItems))
	}
	st := res.StaleItems[0]
	if st.SystemStock != 40 || st.LiveStock != 38 {
		t.Errorf("stale item %+v, want system 40 live 38", st)
	}
}

func TestApply_PhysicalCountIsAuthoritative(t *testing.T) {
	f := newFixture()
	creator := asUser("counter1")
	approver := asUser("manager1")
	p := f.addProduct(t, 40)

	session, _ := f.service.Create(creator, testDay(), "", nil)
	if _, err := f.service.RecordCount(creator, session.ID, p.ID, 35); err != nil {
		t.Fatalf("record count: %v", err)
	}
	if _, err := f.service.Submit(creator, session.ID, false); err != nil {
		t.Fatalf("submit: %v", err)
	}

	res, err := f.service.Approve(approver, session.ID, true)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if res.Apply == nil || res.Apply.Applied != 1 {
		t.Fatalf("apply result %+v, want 1 applied", res.Apply)
	}
	if res.Session.Status != reconciliation.StatusCompleted {
		t.Errorf("status = %s, want completed", res.Session.Status)
	}

	live, _ := f.products.GetByID(context.Background(), p.ID)
	if live.CurrentStock != 35 {
		t.Errorf("live stock = %d, want 35 (the physical count)", live.CurrentStock)
	}

	// One reconciliation movement for the variance, one audit record.
	moves, _ := f.movements.List(context.Background(), movement.ListFilter{ProductID: &p.ID})
	if len(moves) != 1 || moves[0].Category != movement.CategoryReconciliation {
		t.Fatalf("movements %+v, want one reconciliation movement", moves)
	}
	if moves[0].Quantity != 5 || moves[0].Type != movement.TypeOut {
		t.Errorf("movement qty=%d type=%s, want 5/out", moves[0].Quantity, moves[0].Type)
	}

	trail, _ := f.audits.Trail(context.Background(), audit.TrailFilter{ProductID: &p.ID})
	if len(trail) != 1 || trail[0].ChangeType != audit.ChangeReconciliation {
		t.Fatalf("audit trail %+v, want one reconciliation record", trail)
	}
	if trail[0].OldQuantity != 40 || trail[0].NewQuantity != 35 {
		t.Errorf("audit %d->%d, want 40->35", trail[0].OldQuantity, trail[0].NewQuantity)
	}

	// The adjustment lands on the day's ledger entry, so closing stock
	// agrees with the physical count.
	entry, err := f.engine.GetEntry(context.Background(), p.ID, testDay())
	if err != nil {
		t.Fatalf("get entry: %v", err)
	}
	if entry.ClosingStock != 35 {
		t.Errorf("ledger closing = %d, want 35", entry.ClosingStock)
	}
}

func TestApply_SurvivesLedgerSync(t *testing.T) {
	f := newFixture()
	creator := asUser("counter1")
	p := f.addProduct(t, 50)

	session, _ := f.service.Create(creator, testDay(), "", nil)
	if _, err := f.service.RecordCount(creator, session.ID, p.ID, 47); err != nil {
		t.Fatalf("record count: %v", err)
	}
	if _, err := f.service.Submit(creator, session.ID, false); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := f.service.Approve(asUser("manager1"), session.ID, true); err != nil {
		t.Fatalf("approve: %v", err)
	}

	// Re-deriving live stock from the ledger keeps the counted value.
	if _, err := f.engine.SyncLiveStockFromSnapshot(context.Background(), testDay()); err != nil {
		t.Fatalf("sync: %v", err)
	}
	live, _ := f.products.GetByID(context.Background(), p.ID)
	if live.CurrentStock != 47 {
		t.Errorf("live stock = %d after sync, want 47", live.CurrentStock)
	}
}

func TestCreate_PrefersLedgerClosingStock(t *testing.T) {
	f := newFixture()
	ctx := asUser("counter1")
	p := f.addProduct(t, 40)

	// An entry exists for the day; live stock then drifts away from it.
	if _, _, err := f.engine.GetOrCreate(ctx, p.ID, testDay()); err != nil {
		t.Fatalf("get or create: %v", err)
	}
	if _, err := f.products.SetStock(ctx, p.ID, 45); err != nil {
		t.Fatalf("set stock: %v", err)
	}

	session, err := f.service.Create(ctx, testDay(), "", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	it := session.Item(p.ID)
	if it == nil || it.SystemStock != 40 {
		t.Errorf("system stock = %+v, want ledger closing 40", it)
	}
}

func TestRejectIsTerminal(t *testing.T) {
	f := newFixture()
	creator := asUser("counter1")
	p := f.addProduct(t, 40)

	session, _ := f.service.Create(creator, testDay(), "", nil)
	if _, err := f.service.RecordCount(creator, session.ID, p.ID, 10); err != nil {
		t.Fatalf("record count: %v", err)
	}
	if _, err := f.service.Submit(creator, session.ID, false); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if _, err := f.service.Reject(asUser("manager1"), session.ID, ""); err == nil {
		t.Fatal("expected error for empty rejection reason")
	}

	rejected, err := f.service.Reject(asUser("manager1"), session.ID, "count looks implausible")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != reconciliation.StatusRejected {
		t.Errorf("status = %s, want rejected", rejected.Status)
	}

	if _, err := f.service.Submit(creator, session.ID, false); err == nil {
		t.Error("expected invalid state submitting a rejected session")
	}

	// A rejected session no longer blocks the day; counting restarts
	// with a fresh session.
	fresh, err := f.service.Create(creator, testDay(), "", nil)
	if err != nil {
		t.Fatalf("create after reject: %v", err)
	}
	if fresh.Number == session.Number {
		t.Errorf("fresh session reused number %s", fresh.Number)
	}
}

func TestStateGuards(t *testing.T) {
	f := newFixture()
	creator := asUser("counter1")
	p := f.addProduct(t, 40)

	session, _ := f.service.Create(creator, testDay(), "", nil)

	// An in-progress session cannot be approved or applied.
	if _, err := f.service.Approve(asUser("manager1"), session.ID, false); err == nil {
		t.Error("expected invalid state approving an in-progress session")
	}
	if _, err := f.service.ApplyAdjustments(creator, session.ID); err == nil {
		t.Error("expected invalid state applying an in-progress session")
	}

	if _, err := f.service.RecordCount(creator, session.ID, p.ID, 40); err != nil {
		t.Fatalf("record count: %v", err)
	}
	if _, err := f.service.Submit(creator, session.ID, false); err != nil {
		t.Fatalf("submit: %v", err)
	}

	// Pending sessions refuse further counts.
	if _, err := f.service.RecordCount(creator, session.ID, p.ID, 41); err == nil {
		t.Error("expected invalid state counting a pending session")
	}
}
