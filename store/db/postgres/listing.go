package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/campusfinds/campusfinds/store"
)

func (d *DB) CreateListing(ctx context.Context, create *store.Listing) (*store.Listing, error) {
	photos, err := json.Marshal(create.Photos)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal photos: %w", err)
	}

	fields := []string{"uid", "seller_id", "title", "description", "price", "category", "subcategory", "campus", "photos"}
	args := []any{
		create.UID, create.SellerID, create.Title, create.Description,
		priceValue(create.Price), create.Category, create.Subcategory, create.Campus, string(photos),
	}

	if create.CreatedTs != 0 {
		fields = append(fields, "created_ts")
		args = append(args, create.CreatedTs)
	}
	if create.UpdatedTs != 0 {
		fields = append(fields, "updated_ts")
		args = append(args, create.UpdatedTs)
	}

	stmt := `INSERT INTO listing (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		RETURNING id, created_ts, updated_ts, row_status`

	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(
		&create.ID,
		&create.CreatedTs,
		&create.UpdatedTs,
		&create.RowStatus,
	); err != nil {
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}

	return create, nil
}

func (d *DB) ListListings(ctx context.Context, find *store.FindListing) ([]*store.Listing, error) {
	where, args := listingWhere(find)

	query := `
		SELECT
			id, uid, seller_id, created_ts, updated_ts, row_status,
			title, description, price, category, subcategory, campus, photos
		FROM listing
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY listing.created_ts DESC`

	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
		if find.Offset != nil {
			query = fmt.Sprintf("%s OFFSET %d", query, *find.Offset)
		}
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query listings: %w", err)
	}
	defer rows.Close()

	list := make([]*store.Listing, 0)
	for rows.Next() {
		var listing store.Listing
		var price sql.NullFloat64
		var photos string

		if err := rows.Scan(
			&listing.ID,
			&listing.UID,
			&listing.SellerID,
			&listing.CreatedTs,
			&listing.UpdatedTs,
			&listing.RowStatus,
			&listing.Title,
			&listing.Description,
			&price,
			&listing.Category,
			&listing.Subcategory,
			&listing.Campus,
			&photos,
		); err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}

		if price.Valid {
			v := price.Float64
			listing.Price = &v
		}
		if err := json.Unmarshal([]byte(photos), &listing.Photos); err != nil {
			listing.Photos = nil
		}
		list = append(list, &listing)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate listings: %w", err)
	}

	return list, nil
}

func (d *DB) UpdateListing(ctx context.Context, update *store.UpdateListing) error {
	set, args := []string{}, []any{}

	if v := update.Title; v != nil {
		set, args = append(set, "title = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Description; v != nil {
		set, args = append(set, "description = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Price; v != nil {
		set, args = append(set, "price = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Campus; v != nil {
		set, args = append(set, "campus = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.RowStatus; v != nil {
		set, args = append(set, "row_status = "+placeholder(len(args)+1)), append(args, v.String())
	}
	if v := update.UpdatedTs; v != nil {
		set, args = append(set, "updated_ts = "+placeholder(len(args)+1)), append(args, *v)
	}
	if len(set) == 0 {
		return nil
	}

	args = append(args, update.ID)
	stmt := `UPDATE listing SET ` + strings.Join(set, ", ") + ` WHERE id = ` + placeholder(len(args))
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("failed to update listing: %w", err)
	}
	return nil
}

func (d *DB) DeleteListing(ctx context.Context, delete *store.DeleteListing) error {
	if _, err := d.db.ExecContext(ctx, "DELETE FROM listing WHERE id = $1", delete.ID); err != nil {
		return fmt.Errorf("failed to delete listing: %w", err)
	}
	return nil
}

func (d *DB) CountListings(ctx context.Context, find *store.FindListing) (int32, error) {
	where, args := listingWhere(find)

	query := `SELECT COUNT(*) FROM listing WHERE ` + strings.Join(where, " AND ")

	var count int32
	if err := d.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count listings: %w", err)
	}
	return count, nil
}

func (d *DB) GetCategoryCounts(ctx context.Context) ([]store.CategoryCount, error) {
	query := `
		SELECT category, COUNT(*) AS count
		FROM listing
		WHERE row_status = 'NORMAL' AND category != ''
		GROUP BY category
		ORDER BY count DESC`

	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query category counts: %w", err)
	}
	defer rows.Close()

	counts := make([]store.CategoryCount, 0)
	for rows.Next() {
		var cc store.CategoryCount
		if err := rows.Scan(&cc.Category, &cc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan category count: %w", err)
		}
		counts = append(counts, cc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate category counts: %w", err)
	}
	return counts, nil
}

func (d *DB) GetCampusCounts(ctx context.Context) ([]store.CampusCount, error) {
	query := `
		SELECT campus, COUNT(*) AS count
		FROM listing
		WHERE row_status = 'NORMAL' AND campus != ''
		GROUP BY campus
		ORDER BY count DESC`

	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query campus counts: %w", err)
	}
	defer rows.Close()

	counts := make([]store.CampusCount, 0)
	for rows.Next() {
		var cc store.CampusCount
		if err := rows.Scan(&cc.Campus, &cc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan campus count: %w", err)
		}
		counts = append(counts, cc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate campus counts: %w", err)
	}
	return counts, nil
}

// listingWhere builds the WHERE clause shared by ListListings and CountListings.
func listingWhere(find *store.FindListing) ([]string, []any) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "listing.id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.UID; v != nil {
		where, args = append(where, "listing.uid = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.SellerID; v != nil {
		where, args = append(where, "listing.seller_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.RowStatus; v != nil {
		where, args = append(where, "listing.row_status = "+placeholder(len(args)+1)), append(args, v.String())
	}
	if v := find.Category; v != nil {
		where, args = append(where, "listing.category = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.Subcategory; v != nil {
		where, args = append(where, "listing.subcategory = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.Campus; v != nil {
		where, args = append(where, "listing.campus = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.MinPrice; v != nil {
		where, args = append(where, "listing.price >= "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.MaxPrice; v != nil {
		where, args = append(where, "listing.price <= "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.Query; v != nil && *v != "" {
		like := "%" + *v + "%"
		where = append(where, `(
			listing.title ILIKE `+placeholder(len(args)+1)+`
			OR listing.description ILIKE `+placeholder(len(args)+2)+`
			OR listing.category ILIKE `+placeholder(len(args)+3)+`
			OR listing.subcategory ILIKE `+placeholder(len(args)+4)+`
			OR listing.campus ILIKE `+placeholder(len(args)+5)+`
		)`)
		args = append(args, like, like, like, like, like)
	}

	return where, args
}

func priceValue(price *float64) any {
	if price == nil {
		return nil
	}
	return *price
}
