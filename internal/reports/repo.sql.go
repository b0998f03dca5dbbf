package reports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Monetary columns are selected as text and parsed with shopspring/decimal so
// numeric precision survives the round trip.

func (r *PGRepository) listOrders(ctx context.Context) ([]Order, error) {
	const query = `
SELECT id, customer_id, created_at, currency, grand_total::text, status, payment_status
FROM orders
ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		var (
			o        Order
			total    string
			currency string
			status   string
			payment  string
		)
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.CreatedAt, &currency, &total, &status, &payment); err != nil {
			return nil, err
		}
		amount, err := decimal.NewFromString(total)
		if err != nil {
			return nil, err
		}
		o.Currency = CurrencyCode(currency)
		o.GrandTotal = amount
		o.Status = OrderStatus(status)
		o.PaymentStatus = PaymentStatus(payment)
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *PGRepository) listLineItems(ctx context.Context) ([]OrderLineItem, error) {
	const query = `
SELECT order_id, product_id, quantity, line_total::text
FROM order_items`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]OrderLineItem, 0)
	for rows.Next() {
		var (
			item  OrderLineItem
			total string
		)
		if err := rows.Scan(&item.OrderID, &item.ProductID, &item.Quantity, &total); err != nil {
			return nil, err
		}
		amount, err := decimal.NewFromString(total)
		if err != nil {
			return nil, err
		}
		item.LineTotal = amount
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *PGRepository) listProducts(ctx context.Context) ([]Product, error) {
	const query = `
SELECT p.id, p.sku, p.name, p.category_id, COALESCE(c.name, ''),
       p.quantity, p.low_stock_alert, p.low_stock_alert_percent,
       p.min_stock_level, p.max_stock_level,
       p.import_cost::text, p.selling_price::text, p.last_sold_at
FROM products p
LEFT JOIN categories c ON c.id = p.category_id
ORDER BY p.sku`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		var (
			p          Product
			importCost string
			sellPrice  string
			lastSold   *time.Time
		)
		if err := rows.Scan(&p.ID, &p.SKU, &p.Name, &p.CategoryID, &p.CategoryName,
			&p.Quantity, &p.LowStockAlert.Value, &p.LowStockAlert.Percent,
			&p.MinStockLevel, &p.MaxStockLevel,
			&importCost, &sellPrice, &lastSold); err != nil {
			return nil, err
		}
		cost, err := decimal.NewFromString(importCost)
		if err != nil {
			return nil, err
		}
		price, err := decimal.NewFromString(sellPrice)
		if err != nil {
			return nil, err
		}
		p.ImportCostBase = cost
		p.SellingPriceBase = price
		p.LastSoldAt = lastSold
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *PGRepository) listExpenses(ctx context.Context) ([]Expense, error) {
	const query = `
SELECT id, spent_at, currency, amount::text, category
FROM expenses
ORDER BY spent_at`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	expenses := make([]Expense, 0)
	for rows.Next() {
		var (
			e        Expense
			currency string
			amount   string
		)
		if err := rows.Scan(&e.ID, &e.Date, &currency, &amount, &e.Category); err != nil {
			return nil, err
		}
		value, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, err
		}
		e.Currency = CurrencyCode(currency)
		e.Amount = value
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

func (r *PGRepository) listCustomers(ctx context.Context) ([]Customer, error) {
	const query = `
SELECT id, name, created_at
FROM customers
ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := make([]Customer, 0)
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}
