package ledger_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"liquorpos/internal/core/id"
	"liquorpos/internal/core/types"
	"liquorpos/internal/domain/audit"
	"liquorpos/internal/domain/catalogs/product"
	"liquorpos/internal/domain/ledger"
	"liquorpos/internal/domain/movement"
	"liquorpos/internal/domain/reference"
	"liquorpos/internal/infrastructure/storage/memory"
	"liquorpos/pkg/logger"
)

type engineFixture struct {
	engine    *ledger.Engine
	products  *memory.ProductRepo
	entries   *memory.LedgerRepo
	movements *memory.MovementRepo
	audits    *memory.AuditRepo
}

func newEngineFixture() *engineFixture {
	store := memory.NewStore()
	products := memory.NewProductRepo(store)
	entries := memory.NewLedgerRepo(store)
	movements := memory.NewMovementRepo(store)
	audits := memory.NewAuditRepo(store)

	engine := ledger.NewEngine(
		entries,
		products,
		movement.NewService(movements),
		audit.NewService(audits),
		memory.NewTxManager(),
		logger.Default(),
	)
	return &engineFixture{
		engine:    engine,
		products:  products,
		entries:   entries,
		movements: movements,
		audits:    audits,
	}
}

func (f *engineFixture) addProduct(t *testing.T, stock int64, cost string) *product.Product {
	t.Helper()
	p := product.New("Old Monk 750ml", "SKU-"+id.New().String(), id.Nil())
	p.CurrentStock = stock
	p.CostPrice = types.MustMoney(cost)
	p.SellingPrice = types.MustMoney(cost).Mul(types.MustMoney("1.5"))
	if err := f.products.Create(context.Background(), p); err != nil {
		t.Fatalf("create product: %v", err)
	}
	return p
}

func day(s string) time.Time {
	d, err := types.ParseDay(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestGetOrCreate_OpeningFromLiveStock(t *testing.T) {
	f := newEngineFixture()
	ctx := context.Background()
	p := f.addProduct(t, 40, "350")

	entry, created, err := f.engine.GetOrCreate(ctx, p.ID, day("2026-03-01"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Error("expected entry to be created")
	}
	if entry.OpeningStock != 40 {
		t.Errorf("opening = %d, want 40 (live stock)", entry.OpeningStock)
	}
	if entry.ClosingStock != 40 {
		t.Errorf("closing = %d, want 40", entry.ClosingStock)
	}

	// Second call returns the same entry without creating.
	again, created, err := f.engine.GetOrCreate(ctx, p.ID, day("2026-03-01"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created {
		t.Error("expected existing entry, got created=true")
	}
	if again.ID != entry.ID {
		t.Errorf("got different entry %s, want %s", again.ID, entry.ID)
	}
}

func TestGetOrCreate_OpeningFromPreviousClosing(t *testing.T) {
	f := newEngineFixture()
	ctx := context.Background()
	p := f.addProduct(t, 40, "350")

	if _, err := f.engine.RecordSale(ctx, p.ID, day("2026-03-01"), 15, types.MustMoney("500"), reference.Manual()); err != nil {
		t.Fatalf("record sale: %v", err)
	}

	// The next day's entry opens with yesterday's closing, not the
	// product's live stock.
	entry, _, err := f.engine.GetOrCreate(ctx, p.ID, day("2026-03-02"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.OpeningStock != 25 {
		t.Errorf("opening = %d, want 25", entry.OpeningStock)
	}
}

func TestRecordSale(t *testing.T) {
	f := newEngineFixture()
	ctx := context.Background()
	p := f.addProduct(t, 40, "350")
	d := day("2026-03-01")

	entry, err := f.engine.RecordSale(ctx, p.ID, d, 5, types.MustMoney("500"), reference.Manual())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if entry.SoldQuantity != 5 {
		t.Errorf("sold = %d, want 5", entry.SoldQuantity)
	}
	if entry.ClosingStock != 35 {
		t.Errorf("closing = %d, want 35", entry.ClosingStock)
	}
	wantValue := types.MustMoney("350").Mul(types.NewMoney(35))
	if !entry.StockValue.Equal(wantValue) {
		t.Errorf("stock value = %s, want %s", entry.StockValue, wantValue)
	}

	// Live stock followed.
	live, err := f.products.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if live.CurrentStock != 35 {
		t.Errorf("live stock = %d, want 35", live.CurrentStock)
	}

	// Movement and audit trail written.
	moves, err := f.movements.List(ctx, movement.ListFilter{ProductID: &p.ID})
	if err != nil {
		t.Fatalf("list movements: %v", err)
	}
	if len(moves) != 1 {
		t.Fatalf("got %d movements, want 1", len(moves))
	}
	if moves[0].Category != movement.CategorySale || moves[0].Type != movement.TypeOut {
		t.Errorf("movement %s/%s, want out/sale", moves[0].Type, moves[0].Category)
	}

	trail, err := f.audits.Trail(ctx, audit.TrailFilter{ProductID: &p.ID})
	if err != nil {
		t.Fatalf("audit trail: %v", err)
	}
	if len(trail) != 1 {
		t.Fatalf("got %d audit records, want 1", len(trail))
	}
	if trail[0].OldQuantity != 40 || trail[0].NewQuantity != 35 {
		t.Errorf("audit %d->%d, want 40->35", trail[0].OldQuantity, trail[0].NewQuantity)
	}
}

func TestRecordSale_OversellGoesNegative(t *testing.T) {
	f := newEngineFixture()
	ctx := context.Background()
	p := f.addProduct(t, 5, "350")
	d := day("2026-03-01")

	// The engine records whatever the documents post; an oversell drives
	// the closing stock negative instead of failing.
	entry, err := f.engine.RecordSale(ctx, p.ID, d, 8, types.MustMoney("500"), reference.Manual())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.SoldQuantity != 8 || entry.ClosingStock != -3 {
		t.Errorf("sold=%d closing=%d, want 8/-3", entry.SoldQuantity, entry.ClosingStock)
	}

	live, _ := f.products.GetByID(ctx, p.ID)
	if live.CurrentStock != -3 {
		t.Errorf("live stock = %d, want -3", live.CurrentStock)
	}

	// Negative closing is still arithmetically consistent.
	res, err := f.engine.ValidateIntegrity(ctx, d)
	if err != nil {
		t.Fatalf("validate integrity: %v", err)
	}
	if len(res.Issues) != 0 {
		t.Errorf("integrity issues = %v, want none", res.Issues)
	}
}

func TestRecordSale_Concurrent(t *testing.T) {
	f := newEngineFixture()
	ctx := context.Background()
	p := f.addProduct(t, 1000, "350")
	d := day("2026-03-01")

	const workers = 20
	const salesEach = 5

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < salesEach; j++ {
				if _, err := f.engine.RecordSale(ctx, p.ID, d, 2, types.MustMoney("500"), reference.Manual()); err != nil {
					t.Errorf("record sale: %v", err)
				}
			}
		}()
	}
	wg.Wait()

	entry, err := f.engine.GetEntry(ctx, p.ID, d)
	if err != nil {
		t.Fatalf("get entry: %v", err)
	}
	wantSold := int64(workers * salesEach * 2)
	if entry.SoldQuantity != wantSold {
		t.Errorf("sold = %d, want %d (lost update)", entry.SoldQuantity, wantSold)
	}
	if entry.ClosingStock != 1000-wantSold {
		t.Errorf("closing = %d, want %d", entry.ClosingStock, 1000-wantSold)
	}

	live, _ := f.products.GetByID(ctx, p.ID)
	if live.CurrentStock != 1000-wantSold {
		t.Errorf("live stock = %d, want %d", live.CurrentStock, 1000-wantSold)
	}
}

func TestRecordInward(t *testing.T) {
	f := newEngineFixture()
	ctx := context.Background()
	p := f.addProduct(t, 10, "350")

	entry, err := f.engine.RecordInward(ctx, p.ID, day("2026-03-01"), 24, types.MustMoney("340"), reference.Manual())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.InwardQuantity != 24 || entry.ClosingStock != 34 {
		t.Errorf("inward=%d closing=%d, want 24/34", entry.InwardQuantity, entry.ClosingStock)
	}

	live, _ := f.products.GetByID(ctx, p.ID)
	if live.CurrentStock != 34 {
		t.Errorf("live stock = %d, want 34", live.CurrentStock)
	}
}

func TestSetStock_FoldsDeltaIntoLedger(t *testing.T) {
	f := newEngineFixture()
	ctx := context.Background()
	p := f.addProduct(t, 50, "350")

	entry, err := f.engine.SetStock(ctx, p.ID, 42, "breakage in store room")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.SoldQuantity != 8 {
		t.Errorf("sold = %d, want 8 (negative delta folds into sold)", entry.SoldQuantity)
	}
	if entry.ClosingStock != 42 {
		t.Errorf("closing = %d, want 42", entry.ClosingStock)
	}

	trail, _ := f.audits.Trail(ctx, audit.TrailFilter{ProductID: &p.ID})
	if len(trail) != 1 {
		t.Fatalf("got %d audit records, want 1", len(trail))
	}
	if trail[0].ChangeType != audit.ChangeManualAdjustment {
		t.Errorf("change type = %s, want manual_adjustment", trail[0].ChangeType)
	}
	if trail[0].Reason != "breakage in store room" {
		t.Errorf("reason = %q", trail[0].Reason)
	}
}

func TestSetStock_RequiresReason(t *testing.T) {
	f := newEngineFixture()
	p := f.addProduct(t, 50, "350")

	if _, err := f.engine.SetStock(context.Background(), p.ID, 42, ""); err == nil {
		t.Fatal("expected validation error for empty reason")
	}
}

func TestCreateDailySnapshots(t *testing.T) {
	f := newEngineFixture()
	ctx := context.Background()
	p1 := f.addProduct(t, 10, "350")
	p2 := f.addProduct(t, 20, "120")
	inactive := f.addProduct(t, 5, "90")
	inactive.Active = false
	if err := f.products.Update(ctx, inactive); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	res, err := f.engine.CreateDailySnapshots(ctx, day("2026-03-01"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Created != 2 {
		t.Errorf("created = %d, want 2 (inactive products are skipped)", res.Created)
	}

	// Idempotent: a second run creates nothing.
	res, err = f.engine.CreateDailySnapshots(ctx, day("2026-03-01"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Created != 0 || res.Skipped != 2 {
		t.Errorf("second run created=%d skipped=%d, want 0/2", res.Created, res.Skipped)
	}

	for _, p := range []id.ID{p1.ID, p2.ID} {
		if _, err := f.engine.GetEntry(ctx, p, day("2026-03-01")); err != nil {
			t.Errorf("missing entry for %s: %v", p, err)
		}
	}
}

func TestCarryForwardOpeningStock(t *testing.T) {
	f := newEngineFixture()
	ctx := context.Background()
	p := f.addProduct(t, 40, "350")

	if _, err := f.engine.RecordSale(ctx, p.ID, day("2026-03-01"), 10, types.MustMoney("500"), reference.Manual()); err != nil {
		t.Fatalf("record sale: %v", err)
	}
	if _, _, err := f.engine.GetOrCreate(ctx, p.ID, day("2026-03-02")); err != nil {
		t.Fatalf("get or create: %v", err)
	}

	// Force a continuity break, then repair it.
	if _, err := f.entries.SetOpening(ctx, p.ID, day("2026-03-02"), 99); err != nil {
		t.Fatalf("set opening: %v", err)
	}

	res, err := f.engine.CarryForwardOpeningStock(ctx, day("2026-03-02"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Updated != 1 {
		t.Errorf("updated = %d, want 1", res.Updated)
	}

	entry, _ := f.engine.GetEntry(ctx, p.ID, day("2026-03-02"))
	if entry.OpeningStock != 30 {
		t.Errorf("opening = %d, want 30 (previous closing)", entry.OpeningStock)
	}
}

func TestSyncLiveStockFromSnapshot(t *testing.T) {
	f := newEngineFixture()
	ctx := context.Background()
	p := f.addProduct(t, 40, "350")
	d := day("2026-03-01")

	if _, _, err := f.engine.GetOrCreate(ctx, p.ID, d); err != nil {
		t.Fatalf("get or create: %v", err)
	}

	// Live stock drifts away from the snapshot (e.g. a write that
	// bypassed the ledger).
	if _, err := f.products.SetStock(ctx, p.ID, 37); err != nil {
		t.Fatalf("set stock: %v", err)
	}

	res, err := f.engine.SyncLiveStockFromSnapshot(ctx, d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Updated != 1 {
		t.Errorf("updated = %d, want 1", res.Updated)
	}

	live, _ := f.products.GetByID(ctx, p.ID)
	if live.CurrentStock != 40 {
		t.Errorf("live stock = %d, want 40 (snapshot closing)", live.CurrentStock)
	}

	// The sync leaves an audit trace.
	trail, _ := f.audits.Trail(ctx, audit.TrailFilter{ProductID: &p.ID})
	if len(trail) != 1 || trail[0].ChangeType != audit.ChangeClosingStock {
		t.Errorf("expected one closing_stock audit record, got %+v", trail)
	}
}

func TestValidateIntegrity_ReportsWithoutWriting(t *testing.T) {
	f := newEngineFixture()
	ctx := context.Background()
	p := f.addProduct(t, 40, "350")
	d := day("2026-03-01")

	entry, _, err := f.engine.GetOrCreate(ctx, p.ID, d)
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}

	// Corrupt the derived fields directly.
	entry.ClosingStock = 999
	entry.StockValue = types.MustMoney("1")
	if err := f.entries.Update(ctx, entry); err != nil {
		t.Fatalf("update: %v", err)
	}

	res, err := f.engine.ValidateIntegrity(ctx, d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Issues) != 1 {
		t.Fatalf("got %d issues, want 1", len(res.Issues))
	}
	if res.Issues[0].StoredClosing != 999 || res.Issues[0].WantClosing != 40 {
		t.Errorf("issue %+v, want stored 999 expected 40", res.Issues[0])
	}

	// Validation is a pure check; the corrupted entry stays as-is.
	stored, _ := f.engine.GetEntry(ctx, p.ID, d)
	if stored.ClosingStock != 999 {
		t.Errorf("closing = %d after validate, want 999 (unchanged)", stored.ClosingStock)
	}
}

func TestRepairIntegrity(t *testing.T) {
	f := newEngineFixture()
	ctx := context.Background()
	p := f.addProduct(t, 40, "350")
	d := day("2026-03-01")

	entry, _, err := f.engine.GetOrCreate(ctx, p.ID, d)
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}
	entry.ClosingStock = 999
	entry.StockValue = types.MustMoney("1")
	if err := f.entries.Update(ctx, entry); err != nil {
		t.Fatalf("update: %v", err)
	}

	res, err := f.engine.RepairIntegrity(ctx, d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Issues) != 1 || !res.Issues[0].Repaired {
		t.Fatalf("issues %+v, want one repaired issue", res.Issues)
	}

	fixed, _ := f.engine.GetEntry(ctx, p.ID, d)
	if fixed.ClosingStock != 40 {
		t.Errorf("closing = %d, want 40 after repair", fixed.ClosingStock)
	}
	wantValue := types.MustMoney("350").Mul(types.NewMoney(40))
	if !fixed.StockValue.Equal(wantValue) {
		t.Errorf("stock value = %s, want %s", fixed.StockValue, wantValue)
	}

	// Clean day reports nothing.
	check, _ := f.engine.ValidateIntegrity(ctx, d)
	if len(check.Issues) != 0 {
		t.Errorf("got %d issues on clean day, want 0", len(check.Issues))
	}
}

func TestContinuityReport(t *testing.T) {
	f := newEngineFixture()
	ctx := context.Background()
	p := f.addProduct(t, 40, "350")

	if _, _, err := f.engine.GetOrCreate(ctx, p.ID, day("2026-03-01")); err != nil {
		t.Fatalf("get or create: %v", err)
	}
	if _, _, err := f.engine.GetOrCreate(ctx, p.ID, day("2026-03-02")); err != nil {
		t.Fatalf("get or create: %v", err)
	}
	// Break the chain.
	if _, err := f.entries.SetOpening(ctx, p.ID, day("2026-03-02"), 25); err != nil {
		t.Fatalf("set opening: %v", err)
	}
	// Day 3 is missing; day 4 exists with an opening that disagrees
	// with day 2's closing.
	if _, _, err := f.engine.GetOrCreate(ctx, p.ID, day("2026-03-04")); err != nil {
		t.Fatalf("get or create: %v", err)
	}
	if _, err := f.entries.SetOpening(ctx, p.ID, day("2026-03-04"), 30); err != nil {
		t.Fatalf("set opening: %v", err)
	}

	breaks, err := f.engine.ContinuityReport(ctx, day("2026-03-01"), day("2026-03-04"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(breaks) != 2 {
		t.Fatalf("got %d breaks, want 2: %+v", len(breaks), breaks)
	}

	if breaks[0].Opening != 25 || breaks[0].PrevClosing != 40 {
		t.Errorf("first break %+v, want opening 25 vs prev closing 40", breaks[0])
	}
	if !breaks[1].MissingDay {
		t.Errorf("second break %+v, want missing day", breaks[1])
	}
}

func TestRecordPhysical(t *testing.T) {
	f := newEngineFixture()
	ctx := context.Background()
	p := f.addProduct(t, 40, "350")
	d := day("2026-03-01")
	at := time.Now().UTC()

	entry, err := f.engine.RecordPhysical(ctx, p.ID, d, 37, "counter1", at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.PhysicalStock == nil || *entry.PhysicalStock != 37 {
		t.Fatalf("physical = %v, want 37", entry.PhysicalStock)
	}
	if entry.VarianceQty == nil || *entry.VarianceQty != -3 {
		t.Errorf("variance = %v, want -3", entry.VarianceQty)
	}
	if entry.CountedBy != "counter1" {
		t.Errorf("counted by = %q", entry.CountedBy)
	}
}

func TestTwoDayFlow(t *testing.T) {
	f := newEngineFixture()
	ctx := context.Background()
	p := f.addProduct(t, 20, "50")
	day1, day2 := day("2026-03-01"), day("2026-03-02")

	entry, err := f.engine.RecordSale(ctx, p.ID, day1, 5, types.MustMoney("75"), reference.Manual())
	if err != nil {
		t.Fatalf("day 1 sale: %v", err)
	}
	if entry.SoldQuantity != 5 || entry.ClosingStock != 15 {
		t.Fatalf("day 1 sold=%d closing=%d, want 5/15", entry.SoldQuantity, entry.ClosingStock)
	}

	batch, err := f.engine.CreateDailySnapshots(ctx, day2)
	if err != nil {
		t.Fatalf("day 2 snapshots: %v", err)
	}
	if batch.Created != 1 {
		t.Fatalf("day 2 created = %d, want 1", batch.Created)
	}
	entry, err = f.engine.GetEntry(ctx, p.ID, day2)
	if err != nil {
		t.Fatalf("day 2 entry: %v", err)
	}
	if entry.OpeningStock != 15 {
		t.Fatalf("day 2 opening = %d, want 15 (day 1 closing)", entry.OpeningStock)
	}

	if _, err := f.engine.RecordInward(ctx, p.ID, day2, 10, types.MustMoney("50"), reference.Manual()); err != nil {
		t.Fatalf("day 2 inward: %v", err)
	}
	entry, err = f.engine.RecordSale(ctx, p.ID, day2, 8, types.MustMoney("75"), reference.Manual())
	if err != nil {
		t.Fatalf("day 2 sale: %v", err)
	}
	if entry.InwardQuantity != 10 || entry.SoldQuantity != 8 || entry.ClosingStock != 17 {
		t.Fatalf("day 2 inward=%d sold=%d closing=%d, want 10/8/17",
			entry.InwardQuantity, entry.SoldQuantity, entry.ClosingStock)
	}
	if !entry.StockValue.Equal(types.MustMoney("850")) {
		t.Errorf("day 2 value = %s, want 850", entry.StockValue)
	}

	integrity, err := f.engine.ValidateIntegrity(ctx, day2)
	if err != nil {
		t.Fatalf("validate integrity: %v", err)
	}
	if len(integrity.Issues) != 0 {
		t.Errorf("integrity issues = %v, want none", integrity.Issues)
	}

	breaks, err := f.engine.ContinuityReport(ctx, day1, day2)
	if err != nil {
		t.Fatalf("continuity report: %v", err)
	}
	if len(breaks) != 0 {
		t.Errorf("continuity breaks = %v, want none", breaks)
	}
}
