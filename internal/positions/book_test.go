package positions

import (
	"context"
	"testing"

	"lv-brokerage/internal/ledger"

	"github.com/shopspring/decimal"
)

func newTestBook() *Book {
	return NewBook(NewMemStore(), ledger.NewAccountLocks())
}

func TestAcquireCreatesPosition(t *testing.T) {
	ctx := context.Background()
	book := newTestBook()

	p, err := book.Apply(ctx, "c1", "AAPL", 10, decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if p == nil {
		t.Fatal("expected a position")
	}
	if p.Quantity != 10 || p.AverageCost.String() != "100" {
		t.Errorf("got qty=%d avg=%s, want 10 @ 100", p.Quantity, p.AverageCost)
	}
}

func TestAcquireAveragesCost(t *testing.T) {
	ctx := context.Background()
	book := newTestBook()

	if _, err := book.Apply(ctx, "c1", "AAPL", 10, decimal.NewFromInt(100)); err != nil {
		t.Fatalf("first buy: %v", err)
	}
	p, err := book.Apply(ctx, "c1", "AAPL", 10, decimal.NewFromInt(200))
	if err != nil {
		t.Fatalf("second buy: %v", err)
	}
	if p.Quantity != 20 || p.AverageCost.String() != "150" {
		t.Errorf("got qty=%d avg=%s, want 20 @ 150", p.Quantity, p.AverageCost)
	}
}

func TestDisposalHoldsCostBasisFlat(t *testing.T) {
	ctx := context.Background()
	book := newTestBook()

	if _, err := book.Apply(ctx, "c1", "AAPL", 20, decimal.NewFromInt(150)); err != nil {
		t.Fatalf("buy: %v", err)
	}
	p, err := book.Apply(ctx, "c1", "AAPL", -5, decimal.NewFromInt(300))
	if err != nil {
		t.Fatalf("sell: %v", err)
	}
	if p.Quantity != 15 || p.AverageCost.String() != "150" {
		t.Errorf("got qty=%d avg=%s, want 15 @ 150 (sale price must not move basis)", p.Quantity, p.AverageCost)
	}
}

func TestFullDisposalDeletesPosition(t *testing.T) {
	ctx := context.Background()
	book := newTestBook()

	if _, err := book.Apply(ctx, "c1", "AAPL", 10, decimal.NewFromInt(100)); err != nil {
		t.Fatalf("buy: %v", err)
	}
	p, err := book.Apply(ctx, "c1", "AAPL", -10, decimal.NewFromInt(120))
	if err != nil {
		t.Fatalf("sell: %v", err)
	}
	if p != nil {
		t.Fatalf("expected position removal, got %+v", p)
	}
	ps, err := book.List(ctx, "c1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ps) != 0 {
		t.Errorf("expected empty book, got %d positions", len(ps))
	}
}

func TestSellOfUnheldSymbolIsNoOp(t *testing.T) {
	ctx := context.Background()
	book := newTestBook()

	p, err := book.Apply(ctx, "c1", "TSLA", -5, decimal.NewFromInt(50))
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if p != nil {
		t.Fatalf("expected nil position, got %+v", p)
	}
	ps, _ := book.List(ctx, "c1")
	if len(ps) != 0 {
		t.Errorf("expected no positions, got %d", len(ps))
	}
}

func TestFractionalAverageCostRounding(t *testing.T) {
	ctx := context.Background()
	book := newTestBook()

	if _, err := book.Apply(ctx, "c1", "AAPL", 3, decimal.NewFromInt(10)); err != nil {
		t.Fatalf("buy: %v", err)
	}
	// (3*10 + 1*11) / 4 = 10.25
	p, err := book.Apply(ctx, "c1", "AAPL", 1, decimal.NewFromInt(11))
	if err != nil {
		t.Fatalf("buy: %v", err)
	}
	if p.AverageCost.String() != "10.25" {
		t.Errorf("avg = %s, want 10.25", p.AverageCost)
	}
}

func TestReplaceAll(t *testing.T) {
	ctx := context.Background()
	book := newTestBook()

	if _, err := book.Apply(ctx, "c1", "AAPL", 10, decimal.NewFromInt(100)); err != nil {
		t.Fatalf("buy: %v", err)
	}
	if err := book.ReplaceAll(ctx, "c1", nil); err != nil {
		t.Fatalf("replace: %v", err)
	}
	ps, _ := book.List(ctx, "c1")
	if len(ps) != 0 {
		t.Errorf("expected cleared book, got %d positions", len(ps))
	}
}
