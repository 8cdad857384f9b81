package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/Andressalasf/API-Store/internal/model"
)

// ProductRepo persists catalog products.  Every read joins categories so
// responses can carry the category name and image alongside the product.
type ProductRepo struct{ DB *sql.DB }

func NewProductRepo(db *sql.DB) *ProductRepo { return &ProductRepo{DB: db} }

const productSelect = `SELECT p.id, p.title, p.price, p.description, p.category_id, p.images,
		c.name AS category_name, c.image AS category_image
	FROM products p
	LEFT JOIN categories c ON c.id = p.category_id`

// List returns products ordered by id with limit/offset pagination.
func (r *ProductRepo) List(ctx context.Context, limit, offset int) ([]model.Product, error) {
	return r.queryMany(ctx, productSelect+" ORDER BY p.id LIMIT ? OFFSET ?", limit, offset)
}

// GetByID fetches one product, ErrNotFound when absent.
func (r *ProductRepo) GetByID(ctx context.Context, id uint64) (model.Product, error) {
	p, err := scanProduct(r.DB.QueryRowContext(ctx, productSelect+" WHERE p.id=?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Product{}, ErrNotFound
	}
	return p, err
}

// ListByCategory returns the products of one category, paginated.
func (r *ProductRepo) ListByCategory(ctx context.Context, categoryID uint64, limit, offset int) ([]model.Product, error) {
	return r.queryMany(ctx,
		productSelect+" WHERE p.category_id=? ORDER BY p.id LIMIT ? OFFSET ?",
		categoryID, limit, offset)
}

// SearchByTitle returns products whose title contains term
// (case-insensitive), paginated.
func (r *ProductRepo) SearchByTitle(ctx context.Context, term string, limit, offset int) ([]model.Product, error) {
	return r.queryMany(ctx,
		productSelect+" WHERE LOWER(p.title) LIKE LOWER(?) ORDER BY p.id LIMIT ? OFFSET ?",
		"%"+term+"%", limit, offset)
}

// Create inserts a product and returns the stored record.
func (r *ProductRepo) Create(ctx context.Context, p model.Product) (model.Product, error) {
	images, err := json.Marshal(p.Images)
	if err != nil {
		return model.Product{}, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO products (title, price, description, category_id, images) VALUES (?,?,?,?,?)",
		p.Title, p.Price, p.Description, p.CategoryID, images)
	if err != nil {
		return model.Product{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Product{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// ProductUpdate carries the optional fields of a partial product update.
// Nil fields keep their current value (COALESCE semantics).
type ProductUpdate struct {
	Title       *string
	Price       *float64
	Description *string
	CategoryID  *uint64
	Images      []string
}

// Update applies a partial update and returns the resulting record,
// ErrNotFound when the product does not exist.
func (r *ProductRepo) Update(ctx context.Context, id uint64, upd ProductUpdate) (model.Product, error) {
	var images any
	if upd.Images != nil {
		b, err := json.Marshal(upd.Images)
		if err != nil {
			return model.Product{}, err
		}
		images = b
	}
	if _, err := r.DB.ExecContext(ctx,
		`UPDATE products SET
			title = COALESCE(?, title),
			price = COALESCE(?, price),
			description = COALESCE(?, description),
			category_id = COALESCE(?, category_id),
			images = COALESCE(?, images)
		WHERE id=?`,
		upd.Title, upd.Price, upd.Description, upd.CategoryID, images, id); err != nil {
		return model.Product{}, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes a product, ErrNotFound when no row matched.
func (r *ProductRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM products WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ProductRepo) queryMany(ctx context.Context, query string, args ...any) ([]model.Product, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanProduct(s rowScanner) (model.Product, error) {
	var (
		p      model.Product
		images []byte
	)
	if err := s.Scan(&p.ID, &p.Title, &p.Price, &p.Description, &p.CategoryID,
		&images, &p.CategoryName, &p.CategoryImage); err != nil {
		return model.Product{}, err
	}
	// NULL images column -> empty list, never null in JSON responses.
	p.Images = []string{}
	if len(images) > 0 {
		if err := json.Unmarshal(images, &p.Images); err != nil {
			return model.Product{}, err
		}
	}
	return p, nil
}
