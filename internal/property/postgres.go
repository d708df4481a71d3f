package property

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const selectColumns = `id, title, description, price, address, image_url, owner`

// PostgresRepository implements Repository on a pgx connection pool.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a PostgresRepository with the given pool.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Get fetches a property by id.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Property, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	p := &Property{}
	err := r.db.QueryRow(ctx,
		`SELECT `+selectColumns+` FROM properties WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.Title, &p.Description, &p.Price, &p.Address, &p.ImageURL, &p.Owner)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get property: %w", err)
	}
	return p, nil
}

// List returns all properties in creation order.
func (r *PostgresRepository) List(ctx context.Context) ([]*Property, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+selectColumns+` FROM properties ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list properties: %w", err)
	}
	defer rows.Close()

	properties := make([]*Property, 0)
	for rows.Next() {
		p := &Property{}
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.Price, &p.Address, &p.ImageURL, &p.Owner); err != nil {
			return nil, fmt.Errorf("scan property: %w", err)
		}
		properties = append(properties, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list properties: %w", err)
	}
	return properties, nil
}

// Insert persists a new property record in a single statement, so the record
// is either fully visible to other callers or not created at all.
func (r *PostgresRepository) Insert(ctx context.Context, p *Property) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO properties (id, title, description, price, address, image_url, owner)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.Title, p.Description, p.Price, p.Address, p.ImageURL, p.Owner,
	)
	if err != nil {
		return fmt.Errorf("insert property: %w", err)
	}
	return nil
}

// Update applies the patch in a single UPDATE ... RETURNING statement, so a
// partial update cannot interleave with another write to the same record.
func (r *PostgresRepository) Update(ctx context.Context, id string, patch Patch) (*Property, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	if patch.IsEmpty() {
		return r.Get(ctx, id)
	}

	var sets []string
	var args []interface{}
	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Price != nil {
		add("price", *patch.Price)
	}
	if patch.Address != nil {
		add("address", *patch.Address)
	}
	if patch.ImageURL != nil {
		add("image_url", *patch.ImageURL)
	}
	args = append(args, id)

	query := fmt.Sprintf(
		`UPDATE properties SET %s WHERE id = $%d RETURNING `+selectColumns,
		strings.Join(sets, ", "), len(args),
	)

	p := &Property{}
	err := r.db.QueryRow(ctx, query, args...).
		Scan(&p.ID, &p.Title, &p.Description, &p.Price, &p.Address, &p.ImageURL, &p.Owner)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update property: %w", err)
	}
	return p, nil
}

// Delete removes a property record. Returns ErrNotFound when no row matched;
// the service layer decides whether that is an error.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrNotFound
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM properties WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete property: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// validID rejects ids that are not UUIDs before they reach the uuid-typed
// column; a malformed id can never name an existing record.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
