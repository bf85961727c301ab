package billing

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MiniPOS/internal/pos"
)

func fixedClock(ms int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(ms) }
}

func TestRender_Format(t *testing.T) {
	got := Render(Bill{
		Number: 1700000000123,
		Lines: []Line{
			{Name: "Widget", Qty: 3, Total: 7.5},
			{Name: "Gadget", Qty: 2, Total: 30},
		},
		Total: 37.5,
	})

	want := "Bill No: 1700000000123\n" +
		"-------------------------------------\n" +
		"Widget  Qty:3  Price:7.5\n" +
		"Gadget  Qty:2  Price:30.0\n" +
		"-------------------------------------\n" +
		"Total: 37.5\n"
	assert.Equal(t, want, got)
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.0"},
		{7.5, "7.5"},
		{15, "15.0"},
		{0.1 + 0.2, "0.30000000000000004"},
		{0.001, "0.001"},
		{0.0005, "5.0E-4"},
		{9999999, "9999999.0"},
		{1e7, "1.0E7"},
		{12345678.5, "1.23456785E7"},
		{-2.5, "-2.5"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAmount(tt.in))
		})
	}
}

func TestArchive_WriteBill(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "bills")
	a := NewArchive(dir, WithClock(fixedClock(1700000000000)))

	bill, err := a.WriteBill([]Line{{Name: "Widget", Qty: 3, Total: 7.5}}, 7.5)
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000000), bill.Number)
	assert.Equal(t, "Bill_1700000000000.txt", bill.File)

	raw, err := os.ReadFile(filepath.Join(dir, bill.File))
	require.NoError(t, err)
	assert.Equal(t, "Bill No: 1700000000000\n"+
		"-------------------------------------\n"+
		"Widget  Qty:3  Price:7.5\n"+
		"-------------------------------------\n"+
		"Total: 7.5\n", string(raw))
}

func TestArchive_SameMillisecondGetsDistinctNumbers(t *testing.T) {
	dir := t.TempDir()
	a := NewArchive(dir, WithClock(fixedClock(1000)))

	first, err := a.WriteBill([]Line{{Name: "A", Qty: 1, Total: 1}}, 1)
	require.NoError(t, err)
	second, err := a.WriteBill([]Line{{Name: "B", Qty: 1, Total: 2}}, 2)
	require.NoError(t, err)

	assert.Equal(t, int64(1000), first.Number)
	assert.Equal(t, int64(1001), second.Number)

	// a second archive on the same dir does not know about the first one's numbers
	other := NewArchive(dir, WithClock(fixedClock(1000)))
	third, err := other.WriteBill([]Line{{Name: "C", Qty: 1, Total: 3}}, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(1002), third.Number)

	names, err := a.ListBills()
	require.NoError(t, err)
	assert.Len(t, names, 3)
}

func TestArchive_ConcurrentWritesDoNotCollide(t *testing.T) {
	a := NewArchive(t.TempDir(), WithClock(fixedClock(5000)))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := a.WriteBill([]Line{{Name: "X", Qty: 1, Total: 1}}, 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	names, err := a.ListBills()
	require.NoError(t, err)
	assert.Len(t, names, 20)
}

func TestArchive_ListBillsEmpty(t *testing.T) {
	missing := NewArchive(filepath.Join(t.TempDir(), "nope"))
	_, err := missing.ListBills()
	require.ErrorIs(t, err, ErrNoBills)

	empty := NewArchive(t.TempDir())
	_, err = empty.ListBills()
	require.ErrorIs(t, err, ErrNoBills)
}

func TestArchive_ReadBill(t *testing.T) {
	dir := t.TempDir()
	a := NewArchive(dir, WithClock(fixedClock(42)))

	bill, err := a.WriteBill([]Line{{Name: "Widget", Qty: 1, Total: 2.5}}, 2.5)
	require.NoError(t, err)

	text, err := a.ReadBill(bill.File)
	require.NoError(t, err)
	assert.Contains(t, text, "Widget  Qty:1  Price:2.5\n")

	_, err = a.ReadBill("Bill_0.txt")
	require.ErrorIs(t, err, pos.ErrNotFound)

	for _, bad := range []string{"", "../secret", "a/b", ".hidden"} {
		_, err = a.ReadBill(bad)
		assert.ErrorIs(t, err, pos.ErrInvalidInput, bad)
	}
}

func TestArchive_WriteFailure(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	_, err := NewArchive(blocker).WriteBill([]Line{{Name: "X", Qty: 1, Total: 1}}, 1)
	require.ErrorIs(t, err, pos.ErrPersistence)
}
