package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"urbancabz/internal/db"
	"urbancabz/internal/domain"
	"urbancabz/internal/domain/models"
	"urbancabz/internal/repositories"
)

// FleetService manages the vehicle catalog. Every mutation writes a FLEET
// audit record in the same transaction.
type FleetService struct {
	DB *sql.DB
}

func NewFleetService(database *sql.DB) *FleetService {
	return &FleetService{DB: database}
}

// List returns the catalog. Customers see active vehicles only; admins pass
// activeOnly=false for the full list.
func (s *FleetService) List(ctx context.Context, activeOnly bool) ([]models.FleetVehicle, error) {
	vehicles := repositories.VehicleRepository{DB: s.DB}
	out, err := vehicles.List(ctx, activeOnly)
	if err != nil {
		return nil, domain.InternalError{Msg: "failed to list vehicles", Err: err}
	}
	return out, nil
}

func (s *FleetService) Get(ctx context.Context, id int64) (models.FleetVehicle, error) {
	vehicles := repositories.VehicleRepository{DB: s.DB}
	v, err := vehicles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.FleetVehicle{}, domain.NotFoundError{Resource: "vehicle"}
		}
		return models.FleetVehicle{}, domain.InternalError{Msg: "failed to fetch vehicle", Err: err}
	}
	return v, nil
}

func (s *FleetService) Create(ctx context.Context, v models.FleetVehicle, adminID int64) (models.FleetVehicle, error) {
	if v.Name == "" {
		return models.FleetVehicle{}, domain.ValidationError{Field: "name", Msg: "is required"}
	}
	if v.Seats <= 0 {
		return models.FleetVehicle{}, domain.ValidationError{Field: "seats", Msg: "must be positive"}
	}
	if v.BasePricePerKm <= 0 {
		return models.FleetVehicle{}, domain.ValidationError{Field: "base_price_per_km", Msg: "must be positive"}
	}
	v.IsActive = true

	err := db.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		vehicles := repositories.VehicleRepository{DB: tx}
		if _, err := vehicles.Create(ctx, &v); err != nil {
			return domain.InternalError{Msg: "failed to create vehicle", Err: err}
		}
		return s.appendFleetAudit(ctx, tx, v.ID, models.AuditActionCreate, adminID,
			"Vehicle added to fleet", nil, v)
	})
	if err != nil {
		return models.FleetVehicle{}, err
	}
	return v, nil
}

func (s *FleetService) Update(ctx context.Context, id int64, patch models.FleetVehicleUpdate, adminID int64) (models.FleetVehicle, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return models.FleetVehicle{}, err
	}

	updated := current
	if patch.Name != nil {
		updated.Name = *patch.Name
	}
	if patch.Seats != nil {
		updated.Seats = *patch.Seats
	}
	if patch.BasePricePerKm != nil {
		updated.BasePricePerKm = *patch.BasePricePerKm
	}
	if patch.Category != nil {
		updated.Category = *patch.Category
	}
	if patch.Description != nil {
		updated.Description = patch.Description
	}
	if patch.ImageURL != nil {
		updated.ImageURL = patch.ImageURL
	}
	if patch.IsActive != nil {
		updated.IsActive = *patch.IsActive
	}

	err = db.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		vehicles := repositories.VehicleRepository{DB: tx}
		if err := vehicles.Update(ctx, &updated); err != nil {
			return domain.InternalError{Msg: "failed to update vehicle", Err: err}
		}
		return s.appendFleetAudit(ctx, tx, id, models.AuditActionUpdate, adminID,
			"Vehicle details updated", current, updated)
	})
	if err != nil {
		return models.FleetVehicle{}, err
	}
	return updated, nil
}

// Deactivate soft-deletes a vehicle from the catalog.
func (s *FleetService) Deactivate(ctx context.Context, id int64, adminID int64) error {
	current, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !current.IsActive {
		return domain.InvalidStateError{State: "inactive", Msg: "vehicle is already deactivated"}
	}

	deactivated := current
	deactivated.IsActive = false

	return db.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		vehicles := repositories.VehicleRepository{DB: tx}
		if err := vehicles.Deactivate(ctx, id); err != nil {
			return domain.InternalError{Msg: "failed to deactivate vehicle", Err: err}
		}
		return s.appendFleetAudit(ctx, tx, id, models.AuditActionDelete, adminID,
			"Vehicle deactivated from fleet", current, deactivated)
	})
}

func (s *FleetService) appendFleetAudit(ctx context.Context, tx *sql.Tx, vehicleID int64, action string, adminID int64, reason string, oldValue, newValue any) error {
	entry := models.AuditLog{
		EntityType: models.AuditEntityFleet,
		EntityID:   vehicleID,
		Action:     action,
		AdminID:    adminID,
		Reason:     reason,
	}
	if oldValue != nil {
		if raw, err := json.Marshal(oldValue); err == nil {
			v := string(raw)
			entry.OldValue = &v
		}
	}
	if newValue != nil {
		if raw, err := json.Marshal(newValue); err == nil {
			v := string(raw)
			entry.NewValue = &v
		}
	}
	audits := repositories.AuditRepository{DB: tx}
	if _, err := audits.Append(ctx, &entry); err != nil {
		return domain.InternalError{Msg: "failed to write audit log", Err: err}
	}
	return nil
}
