package sale

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"MiniPOS/internal/billing"
	"MiniPOS/internal/catalog"
	"MiniPOS/internal/pos"
)

type fixture struct {
	store   *catalog.Store
	backend *catalog.MemBackend
	archive *billing.Archive
	metrics *Metrics
	deps    Deps
}

func newFixture(t *testing.T, seed ...catalog.Product) *fixture {
	t.Helper()

	backend := catalog.NewMemBackend(seed...)
	store := catalog.NewStore(context.Background(), backend, zap.NewNop())
	archive := billing.NewArchive(filepath.Join(t.TempDir(), "bills"),
		billing.WithClock(func() time.Time { return time.UnixMilli(1700000000000) }))
	metrics := NewMetrics(prometheus.NewRegistry())

	return &fixture{
		store:   store,
		backend: backend,
		archive: archive,
		metrics: metrics,
		deps:    Deps{Stock: store, Bills: archive, Log: zap.NewNop(), Metrics: metrics},
	}
}

func (f *fixture) quantity(t *testing.T, id string) int {
	t.Helper()
	p, ok := f.store.Get(id)
	require.True(t, ok)
	return p.Quantity
}

func TestSession_WidgetScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.store.Add(ctx, catalog.Product{ID: "P1", Name: "Widget", Quantity: 10, Price: 2.5}))

	s := NewSession("s1", f.deps)

	added, err := s.AddItem(ctx, "P1", 3)
	require.NoError(t, err)
	assert.Equal(t, billing.Line{Name: "Widget", Qty: 3, Total: 7.5}, added.Line)
	assert.Equal(t, 7.5, added.Total)
	assert.Equal(t, 7, added.Remaining)
	assert.False(t, added.LowStock)
	assert.Equal(t, 7, f.quantity(t, "P1"))

	_, err = s.AddItem(ctx, "P1", 20)
	var ise *pos.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.Equal(t, 7, ise.Available)
	assert.Equal(t, 7, f.quantity(t, "P1"))
	assert.Equal(t, 7.5, s.View().Total)

	bill, err := s.Complete(ctx)
	require.NoError(t, err)
	assert.Equal(t, []billing.Line{{Name: "Widget", Qty: 3, Total: 7.5}}, bill.Lines)
	assert.Equal(t, 7.5, bill.Total)

	raw, err := os.ReadFile(filepath.Join(f.archive.Dir(), bill.File))
	require.NoError(t, err)
	assert.Equal(t, "Bill No: 1700000000000\n"+
		"-------------------------------------\n"+
		"Widget  Qty:3  Price:7.5\n"+
		"-------------------------------------\n"+
		"Total: 7.5\n", string(raw))

	v := s.View()
	assert.Equal(t, Completed, v.State)
	assert.Empty(t, v.Lines, "nothing retained after completion")
	assert.Zero(t, v.Total)
}

func TestSession_UpdatedQuantityScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, catalog.Product{ID: "P1", Name: "Widget", Quantity: 10, Price: 2.5})
	require.NoError(t, f.store.UpdateQuantity(ctx, "P1", 2))

	s := NewSession("s1", f.deps)
	_, err := s.AddItem(ctx, "P1", 3)

	var ise *pos.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.Equal(t, 2, ise.Available)
	assert.Empty(t, s.View().Lines)

	added, err := s.AddItem(ctx, "P1", 1)
	require.NoError(t, err)
	assert.True(t, added.LowStock)
	assert.Equal(t, 1, added.Remaining)
}

func TestSession_TotalIsSumOfLines(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t,
		catalog.Product{ID: "A", Name: "Apple", Quantity: 100, Price: 0.1},
		catalog.Product{ID: "B", Name: "Bread", Quantity: 100, Price: 2.35},
		catalog.Product{ID: "C", Name: "Cheese", Quantity: 100, Price: 7},
	)
	s := NewSession("s1", f.deps)

	items := []struct {
		id  string
		qty int
	}{{"A", 3}, {"B", 2}, {"C", 1}, {"A", 7}}

	var want float64
	for _, it := range items {
		p, _ := f.store.Get(it.id)
		want += float64(it.qty) * p.Price

		_, err := s.AddItem(ctx, it.id, it.qty)
		require.NoError(t, err)
	}

	v := s.View()
	assert.Len(t, v.Lines, 4)
	assert.Equal(t, want, v.Total, "running sum in insertion order")
	assert.Equal(t, 90, f.quantity(t, "A"))
	assert.Equal(t, 13.0, testutil.ToFloat64(f.metrics.ItemsSold))
}

func TestSession_LowStockFiresOnEveryReductionBelowThreshold(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, catalog.Product{ID: "P1", Name: "Widget", Quantity: 7, Price: 1})
	s := NewSession("s1", f.deps)

	var flags []bool
	for range 3 {
		added, err := s.AddItem(ctx, "P1", 2)
		require.NoError(t, err)
		flags = append(flags, added.LowStock)
	}

	// 7 -> 5 -> 3 -> 1
	assert.Equal(t, []bool{false, true, true}, flags)
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.LowStock))
}

func TestSession_AddItemValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, catalog.Product{ID: "P1", Name: "Widget", Quantity: 5, Price: 1})
	s := NewSession("s1", f.deps)

	_, err := s.AddItem(ctx, "P1", 0)
	require.ErrorIs(t, err, pos.ErrInvalidInput)

	_, err = s.AddItem(ctx, "P1", -3)
	require.ErrorIs(t, err, pos.ErrInvalidInput)

	_, err = s.AddItem(ctx, "nope", 1)
	require.ErrorIs(t, err, pos.ErrNotFound)

	assert.Equal(t, 5, f.quantity(t, "P1"))
	assert.Empty(t, s.View().Lines)
}

func TestSession_CompleteEmptySale(t *testing.T) {
	f := newFixture(t)
	s := NewSession("s1", f.deps)

	_, err := s.Complete(context.Background())
	require.ErrorIs(t, err, pos.ErrEmptySale)
	assert.Equal(t, Open, s.View().State)

	_, err = f.archive.ListBills()
	require.ErrorIs(t, err, billing.ErrNoBills, "no bill written")
}

func TestSession_ClosedSessionRejectsWork(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, catalog.Product{ID: "P1", Name: "Widget", Quantity: 5, Price: 1})

	done := NewSession("s1", f.deps)
	_, err := done.AddItem(ctx, "P1", 1)
	require.NoError(t, err)
	_, err = done.Complete(ctx)
	require.NoError(t, err)

	_, err = done.AddItem(ctx, "P1", 1)
	require.ErrorIs(t, err, ErrSessionClosed)
	_, err = done.Complete(ctx)
	require.ErrorIs(t, err, ErrSessionClosed)

	names, err := f.archive.ListBills()
	require.NoError(t, err)
	assert.Len(t, names, 1, "exactly one bill per completed sale")
}

func TestSession_AbandonKeepsStockReduced(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, catalog.Product{ID: "P1", Name: "Widget", Quantity: 5, Price: 1})
	s := NewSession("s1", f.deps)

	_, err := s.AddItem(ctx, "P1", 2)
	require.NoError(t, err)
	s.Abandon()

	assert.Equal(t, Abandoned, s.View().State)
	assert.Equal(t, 3, f.quantity(t, "P1"))
	assert.Equal(t, 3, f.backend.Snapshot()[0].Quantity)

	_, err = s.AddItem(ctx, "P1", 1)
	require.ErrorIs(t, err, ErrSessionClosed)
}

func TestSession_StockPersistFailureDoesNotBlockSale(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, catalog.Product{ID: "P1", Name: "Widget", Quantity: 5, Price: 2})
	f.backend.SaveErr = errors.New("read-only fs")
	s := NewSession("s1", f.deps)

	added, err := s.AddItem(ctx, "P1", 2)
	require.NoError(t, err)
	assert.Equal(t, 4.0, added.Total)
	assert.Equal(t, 3, f.quantity(t, "P1"))
}

type failingBills struct{ calls int }

func (b *failingBills) WriteBill([]billing.Line, float64) (billing.Bill, error) {
	b.calls++
	return billing.Bill{}, pos.ErrPersistence
}

func TestSession_BillWriteFailureLeavesSaleOpen(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, catalog.Product{ID: "P1", Name: "Widget", Quantity: 5, Price: 2})
	bills := &failingBills{}
	f.deps.Bills = bills
	s := NewSession("s1", f.deps)

	_, err := s.AddItem(ctx, "P1", 1)
	require.NoError(t, err)

	_, err = s.Complete(ctx)
	require.ErrorIs(t, err, pos.ErrPersistence)

	v := s.View()
	assert.Equal(t, Open, v.State)
	assert.Len(t, v.Lines, 1)

	s.deps.Bills = f.archive
	bill, err := s.Complete(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2.0, bill.Total)
	assert.Equal(t, 1, bills.calls)
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "3", want: 3},
		{in: " 12 ", want: 12},
		{in: "", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "2.5", wantErr: true},
		{in: "0", wantErr: true},
		{in: "-1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseQuantity(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, pos.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegistry_OpenGetRemove(t *testing.T) {
	f := newFixture(t)
	r := NewRegistry(f.deps)

	s := r.Open()
	assert.Regexp(t, `^s_[0-9a-f-]{36}$`, s.ID())

	got, err := r.Get(s.ID())
	require.NoError(t, err)
	assert.Same(t, s, got)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.OpenSessions))

	r.Remove(s.ID())
	_, err = r.Get(s.ID())
	require.ErrorIs(t, err, pos.ErrNotFound)
	assert.Zero(t, r.Len())
}

func TestRegistry_ExpiresIdleSales(t *testing.T) {
	f := newFixture(t, catalog.Product{ID: "P1", Name: "Pen", Quantity: 10, Price: 1})

	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	r := NewRegistry(f.deps, WithMaxAge(time.Hour), WithRegistryClock(func() time.Time { return now }))

	stale := r.Open()
	_, err := stale.AddItem(context.Background(), "P1", 2)
	require.NoError(t, err)

	now = now.Add(30 * time.Minute)
	young := r.Open()
	assert.Equal(t, 2, r.Len(), "nothing is old enough yet")

	now = now.Add(45 * time.Minute)
	fresh := r.Open()

	_, err = r.Get(stale.ID())
	require.ErrorIs(t, err, pos.ErrNotFound)
	assert.Equal(t, Abandoned, stale.View().State)
	assert.Equal(t, 8, f.quantity(t, "P1"), "expiry does not restore stock")

	_, err = r.Get(young.ID())
	require.NoError(t, err)
	_, err = r.Get(fresh.ID())
	require.NoError(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.OpenSessions))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Abandoned))
}

func TestRegistry_NoMaxAgeKeepsSales(t *testing.T) {
	f := newFixture(t)

	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	r := NewRegistry(f.deps, WithRegistryClock(func() time.Time { return now }))

	s := r.Open()
	now = now.Add(30 * 24 * time.Hour)
	r.Open()

	_, err := r.Get(s.ID())
	require.NoError(t, err)
	assert.Equal(t, 2, r.Len())
}
