package sale

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"MiniPOS/internal/billing"
	"MiniPOS/internal/catalog"
	"MiniPOS/internal/pos"
	"MiniPOS/pkg/kit"
)

// LowStockThreshold is the stock level below which a reduction raises a
// warning.
const LowStockThreshold = 5

var ErrSessionClosed = errors.New("sale is no longer open")

type State int

const (
	Open State = iota
	Completed
	Abandoned
)

func (s State) String() string {
	switch s {
	case Open:
		return "open"
	case Completed:
		return "completed"
	case Abandoned:
		return "abandoned"
	default:
		return "state(" + strconv.Itoa(int(s)) + ")"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	for _, st := range []State{Open, Completed, Abandoned} {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return pos.Invalid("unknown sale state %q", text)
}

type Stock interface {
	ReduceStock(ctx context.Context, id string, qty int) (catalog.Product, error)
}

type BillWriter interface {
	WriteBill(lines []billing.Line, total float64) (billing.Bill, error)
}

type Deps struct {
	Stock   Stock
	Bills   BillWriter
	Log     *zap.Logger
	Metrics *Metrics
}

// Added describes one accepted line item.
type Added struct {
	Line      billing.Line `json:"line"`
	Total     float64      `json:"total"`
	ProductID string       `json:"product_id"`
	Remaining int          `json:"remaining"`
	LowStock  bool         `json:"low_stock"`
}

type View struct {
	ID        string         `json:"id"`
	State     State          `json:"state"`
	Lines     []billing.Line `json:"lines"`
	Total     float64        `json:"total"`
	CreatedAt time.Time      `json:"created_at"`
}

// Session is one sale in progress. Stock is taken from the catalog as each
// line is added and is not given back if the sale is abandoned.
type Session struct {
	id        string
	createdAt time.Time
	deps      Deps
	log       *zap.Logger

	mu    sync.Mutex
	state State
	lines []billing.Line
	total float64
}

func NewSession(id string, deps Deps) *Session {
	log := kit.OrNop(deps.Log).With(zap.String("sale_id", id))
	return &Session{
		id:        id,
		createdAt: time.Now().UTC(),
		deps:      deps,
		log:       log,
		lines:     []billing.Line{},
	}
}

func (s *Session) ID() string { return s.id }

// ParseQuantity reads a line quantity typed by the cashier.
func ParseQuantity(text string) (int, error) {
	qty, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, pos.Invalid("enter valid quantity: %q", text)
	}
	if qty <= 0 {
		return 0, pos.Invalid("quantity must be positive, got %d", qty)
	}
	return qty, nil
}

func (s *Session) AddItem(ctx context.Context, productID string, qty int) (Added, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Open {
		return Added{}, fmt.Errorf("%w: %s", ErrSessionClosed, s.state)
	}
	if qty <= 0 {
		return Added{}, pos.Invalid("quantity must be positive, got %d", qty)
	}

	p, err := s.deps.Stock.ReduceStock(ctx, productID, qty)
	switch {
	case errors.Is(err, pos.ErrPersistence):
		// stock is reduced in memory; the sale goes on
		s.log.Error("stock reduced but not persisted", zap.String("product_id", productID), zap.Error(err))
	case err != nil:
		return Added{}, err
	}

	line := billing.Line{Name: p.Name, Qty: qty, Total: float64(qty) * p.Price}
	s.lines = append(s.lines, line)
	s.total += line.Total
	s.deps.Metrics.itemAdded(qty)

	added := Added{
		Line:      line,
		Total:     s.total,
		ProductID: productID,
		Remaining: p.Quantity,
		LowStock:  p.Quantity < LowStockThreshold,
	}

	if added.LowStock {
		s.log.Warn("low stock",
			zap.String("product_id", productID),
			zap.String("product", p.Name),
			zap.Int("remaining", p.Quantity),
		)
		s.deps.Metrics.lowStock()
	}

	return added, nil
}

// Complete writes the bill. An empty sale stays open; so does one whose
// bill could not be written, so the caller may try again.
func (s *Session) Complete(_ context.Context) (billing.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Open {
		return billing.Bill{}, fmt.Errorf("%w: %s", ErrSessionClosed, s.state)
	}
	if len(s.lines) == 0 {
		return billing.Bill{}, pos.ErrEmptySale
	}

	bill, err := s.deps.Bills.WriteBill(s.lines, s.total)
	if err != nil {
		s.log.Error("bill write failed", zap.Int("lines", len(s.lines)), zap.Error(err))
		return billing.Bill{}, err
	}

	s.log.Info("sale completed",
		zap.Int64("bill_no", bill.Number),
		zap.Int("lines", len(bill.Lines)),
		zap.Float64("total", bill.Total),
	)
	s.deps.Metrics.completed(bill.Total)

	s.state = Completed
	s.lines = nil
	s.total = 0
	return bill, nil
}

// Abandon discards the sale without a bill.
func (s *Session) Abandon() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Open {
		return
	}
	if len(s.lines) > 0 {
		s.log.Info("sale abandoned with items", zap.Int("lines", len(s.lines)))
	}
	s.state = Abandoned
	s.lines = nil
	s.total = 0
	s.deps.Metrics.abandoned()
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	return View{
		ID:        s.id,
		State:     s.state,
		Lines:     append([]billing.Line{}, s.lines...),
		Total:     s.total,
		CreatedAt: s.createdAt,
	}
}
