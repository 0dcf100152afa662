package repositories

import (
	"context"
	"fmt"

	"urbancabz/internal/db"
	"urbancabz/internal/domain/models"
)

const vehicleColumns = `id, name, seats, base_price_per_km, category,
		description, image_url, is_active, created_at, updated_at`

type VehicleRepository struct {
	DB db.DBTX
}

// List returns fleet vehicles ordered by category.
func (r VehicleRepository) List(ctx context.Context, activeOnly bool) ([]models.FleetVehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM fleet_vehicles`
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY category ASC`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list fleet vehicles: %w", err)
	}
	defer rows.Close()

	var out []models.FleetVehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan fleet vehicle: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r VehicleRepository) GetByID(ctx context.Context, id int64) (models.FleetVehicle, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+vehicleColumns+` FROM fleet_vehicles WHERE id = ?`, id)
	return scanVehicle(row)
}

func (r VehicleRepository) Create(ctx context.Context, v *models.FleetVehicle) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO fleet_vehicles (name, seats, base_price_per_km, category, description, image_url, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		v.Name, v.Seats, v.BasePricePerKm, v.Category, v.Description, v.ImageURL, v.IsActive,
	)
	if err != nil {
		return 0, fmt.Errorf("insert fleet vehicle: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("fleet vehicle insert id: %w", err)
	}
	v.ID = id
	return id, nil
}

func (r VehicleRepository) Update(ctx context.Context, v *models.FleetVehicle) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE fleet_vehicles
		SET name = ?, seats = ?, base_price_per_km = ?, category = ?,
		    description = ?, image_url = ?, is_active = ?
		WHERE id = ?`,
		v.Name, v.Seats, v.BasePricePerKm, v.Category,
		v.Description, v.ImageURL, v.IsActive, v.ID,
	)
	if err != nil {
		return fmt.Errorf("update fleet vehicle: %w", err)
	}
	return nil
}

// Deactivate soft-deletes a vehicle.
func (r VehicleRepository) Deactivate(ctx context.Context, id int64) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE fleet_vehicles SET is_active = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deactivate fleet vehicle: %w", err)
	}
	return nil
}

func scanVehicle(row rowScanner) (models.FleetVehicle, error) {
	var (
		v           models.FleetVehicle
		description *string
		imageURL    *string
	)
	err := row.Scan(
		&v.ID, &v.Name, &v.Seats, &v.BasePricePerKm, &v.Category,
		&description, &imageURL, &v.IsActive, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return models.FleetVehicle{}, err
	}
	v.Description = description
	v.ImageURL = imageURL
	return v, nil
}
