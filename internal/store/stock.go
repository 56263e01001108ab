package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/erazemk/hsetracker/internal/model"
)

// ErrInsufficientStock is returned when an adjustment would take the
// quantity below zero.
var ErrInsufficientStock = errors.New("insufficient stock")

const stockColumns = `id, name, category, quantity, min_stock, supplier, photo_mime, created_at, updated_at, deleted_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStockItem(row rowScanner) (model.StockItem, error) {
	var s model.StockItem
	var supplier, photoMime sql.NullString
	err := row.Scan(&s.ID, &s.Name, &s.Category, &s.Quantity, &s.MinStock, &supplier, &photoMime, &s.CreatedAt, &s.UpdatedAt, &s.DeletedAt)
	s.Supplier = supplier.String
	s.PhotoMime = photoMime.String
	return s, err
}

// CreateStockItem creates a new stock item.
func CreateStockItem(ctx context.Context, db *sql.DB, item model.StockItem) (*model.StockItem, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO stock_items (name, category, quantity, min_stock, supplier) VALUES (?, ?, ?, ?, ?)`,
		item.Name, item.Category, item.Quantity, item.MinStock, nullString(item.Supplier),
	)
	if err != nil {
		return nil, fmt.Errorf("creating stock item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting stock item id: %w", err)
	}

	return GetStockItem(ctx, db, id)
}

// GetStockItem returns a non-deleted stock item by ID.
func GetStockItem(ctx context.Context, db *sql.DB, id int64) (*model.StockItem, error) {
	s, err := scanStockItem(db.QueryRowContext(ctx,
		`SELECT `+stockColumns+` FROM stock_items WHERE id = ? AND deleted_at IS NULL`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting stock item: %w", err)
	}
	return &s, nil
}

// ListStockItems returns all non-deleted stock items, optionally filtered by category.
func ListStockItems(ctx context.Context, db *sql.DB, category string) ([]model.StockItem, error) {
	var rows *sql.Rows
	var err error

	if category != "" {
		rows, err = db.QueryContext(ctx,
			`SELECT `+stockColumns+` FROM stock_items
			 WHERE deleted_at IS NULL AND category = ? ORDER BY name`, category,
		)
	} else {
		rows, err = db.QueryContext(ctx,
			`SELECT `+stockColumns+` FROM stock_items WHERE deleted_at IS NULL ORDER BY name`,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("listing stock items: %w", err)
	}
	defer rows.Close()

	return collectStock(rows)
}

// ListLowStock returns items at or below their minimum stock, emptiest first.
func ListLowStock(ctx context.Context, db *sql.DB) ([]model.StockItem, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+stockColumns+` FROM stock_items
		 WHERE deleted_at IS NULL AND quantity <= min_stock
		 ORDER BY quantity, name`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing low stock: %w", err)
	}
	defer rows.Close()

	return collectStock(rows)
}

func collectStock(rows *sql.Rows) ([]model.StockItem, error) {
	var items []model.StockItem
	for rows.Next() {
		s, err := scanStockItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning stock item: %w", err)
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

// UpdateStockItem updates a stock item's metadata and quantity.
func UpdateStockItem(ctx context.Context, db *sql.DB, item model.StockItem) error {
	result, err := db.ExecContext(ctx,
		`UPDATE stock_items
		 SET name = ?, category = ?, quantity = ?, min_stock = ?, supplier = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL`,
		item.Name, item.Category, item.Quantity, item.MinStock, nullString(item.Supplier), item.ID,
	)
	if err != nil {
		return fmt.Errorf("updating stock item: %w", err)
	}
	return expectAffected(result)
}

// AdjustStock adds delta (which may be negative) to an item's quantity and
// returns the updated item.
func AdjustStock(ctx context.Context, db *sql.DB, id int64, delta int) (*model.StockItem, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var quantity int
	err = tx.QueryRowContext(ctx,
		`SELECT quantity FROM stock_items WHERE id = ? AND deleted_at IS NULL`, id,
	).Scan(&quantity)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("checking stock: %w", err)
	}
	if quantity+delta < 0 {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrInsufficientStock, quantity, -delta)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE stock_items SET quantity = quantity + ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		delta, id,
	)
	if err != nil {
		return nil, fmt.Errorf("adjusting stock: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing stock adjustment: %w", err)
	}
	return GetStockItem(ctx, db, id)
}

// DeleteStockItem soft-deletes a stock item.
func DeleteStockItem(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx,
		`UPDATE stock_items SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("deleting stock item: %w", err)
	}
	return expectAffected(result)
}

// SetStockPhoto sets a stock item's photo data.
func SetStockPhoto(ctx context.Context, db *sql.DB, id int64, photo []byte, mime string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE stock_items SET photo = ?, photo_mime = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL`,
		photo, mime, id,
	)
	if err != nil {
		return fmt.Errorf("setting stock photo: %w", err)
	}
	return expectAffected(result)
}

// GetStockPhoto returns a stock item's photo data and MIME type.
func GetStockPhoto(ctx context.Context, db *sql.DB, id int64) ([]byte, string, error) {
	var photo []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT photo, photo_mime FROM stock_items WHERE id = ? AND deleted_at IS NULL`, id,
	).Scan(&photo, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting stock photo: %w", err)
	}
	return photo, mime.String, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
