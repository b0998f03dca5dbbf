package reports

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

// PGRepository loads immutable record snapshots from PostgreSQL. It is the
// data-fetch collaborator in front of the engine; it performs reads only.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewPGRepository constructs a snapshot repository.
func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Snapshot loads all record sets in parallel. The result is a fresh value on
// every call; callers may mutate-free share it across goroutines.
func (r *PGRepository) Snapshot(ctx context.Context) (Snapshot, error) {
	if r == nil || r.pool == nil {
		return Snapshot{}, fmt.Errorf("reports repo not initialised")
	}

	var snap Snapshot
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		orders, err := r.listOrders(ctx)
		if err != nil {
			return fmt.Errorf("load orders: %w", err)
		}
		snap.Orders = orders
		return nil
	})
	g.Go(func() error {
		items, err := r.listLineItems(ctx)
		if err != nil {
			return fmt.Errorf("load line items: %w", err)
		}
		snap.LineItems = items
		return nil
	})
	g.Go(func() error {
		products, err := r.listProducts(ctx)
		if err != nil {
			return fmt.Errorf("load products: %w", err)
		}
		snap.Products = products
		return nil
	})
	g.Go(func() error {
		expenses, err := r.listExpenses(ctx)
		if err != nil {
			return fmt.Errorf("load expenses: %w", err)
		}
		snap.Expenses = expenses
		return nil
	})
	g.Go(func() error {
		customers, err := r.listCustomers(ctx)
		if err != nil {
			return fmt.Errorf("load customers: %w", err)
		}
		snap.Customers = customers
		return nil
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}
