package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"zapis/internal/models"
)

// Справочники салонов, мастеров и услуг. В рамках сессии они неизменяемы:
// строки заводятся при старте из конфигурации и читаются движком записи.

func (db *DB) UpsertSalon(ctx context.Context, s *models.Salon) error {
	query := `INSERT INTO salons (id, name, address, phone, working_hours)
              VALUES (?, ?, ?, ?, ?)
              ON CONFLICT(id) DO UPDATE SET
                name = excluded.name,
                address = excluded.address,
                phone = excluded.phone,
                working_hours = excluded.working_hours`
	_, err := db.ExecContext(ctx, query, s.ID, s.Name, s.Address, s.Phone, s.WorkingHours)
	return wrapStoreErr(err, "upsert salon")
}

func (db *DB) UpsertMaster(ctx context.Context, m *models.Master) error {
	query := `INSERT INTO masters (id, salon_id, name, specialization, rating, photo_url)
              VALUES (?, ?, ?, ?, ?, ?)
              ON CONFLICT(id) DO UPDATE SET
                salon_id = excluded.salon_id,
                name = excluded.name,
                specialization = excluded.specialization,
                rating = excluded.rating,
                photo_url = excluded.photo_url`
	_, err := db.ExecContext(ctx, query, m.ID, m.SalonID, m.Name, m.Specialization, m.Rating, m.PhotoURL)
	return wrapStoreErr(err, "upsert master")
}

func (db *DB) UpsertService(ctx context.Context, s *models.Service) error {
	query := `INSERT INTO services (id, name, description, price, duration)
              VALUES (?, ?, ?, ?, ?)
              ON CONFLICT(id) DO UPDATE SET
                name = excluded.name,
                description = excluded.description,
                price = excluded.price,
                duration = excluded.duration`
	_, err := db.ExecContext(ctx, query, s.ID, s.Name, s.Description, s.Price, s.DurationMin)
	return wrapStoreErr(err, "upsert service")
}

func (db *DB) ListSalons(ctx context.Context) ([]models.Salon, error) {
	query := `SELECT id, name, address, phone, working_hours FROM salons ORDER BY id`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, wrapStoreErr(err, "list salons")
	}
	defer rows.Close()

	var salons []models.Salon
	for rows.Next() {
		var s models.Salon
		if err := rows.Scan(&s.ID, &s.Name, &s.Address, &s.Phone, &s.WorkingHours); err != nil {
			return nil, fmt.Errorf("failed to scan salon: %w", err)
		}
		salons = append(salons, s)
	}
	return salons, rows.Err()
}

func (db *DB) GetSalon(ctx context.Context, id int64) (*models.Salon, error) {
	query := `SELECT id, name, address, phone, working_hours FROM salons WHERE id = ?`
	var s models.Salon
	err := db.QueryRowContext(ctx, query, id).Scan(&s.ID, &s.Name, &s.Address, &s.Phone, &s.WorkingHours)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, wrapStoreErr(err, "get salon")
	}
	return &s, nil
}

// ListMasters returns all masters, or the masters of one salon when salonID > 0.
// Сортировка по рейтингу, как в витрине.
func (db *DB) ListMasters(ctx context.Context, salonID int64) ([]models.Master, error) {
	query := `SELECT id, salon_id, name, specialization, rating, COALESCE(photo_url, '')
              FROM masters`
	args := []interface{}{}
	if salonID > 0 {
		query += ` WHERE salon_id = ?`
		args = append(args, salonID)
	}
	query += ` ORDER BY rating DESC, id`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapStoreErr(err, "list masters")
	}
	defer rows.Close()

	var masters []models.Master
	for rows.Next() {
		var m models.Master
		if err := rows.Scan(&m.ID, &m.SalonID, &m.Name, &m.Specialization, &m.Rating, &m.PhotoURL); err != nil {
			return nil, fmt.Errorf("failed to scan master: %w", err)
		}
		masters = append(masters, m)
	}
	return masters, rows.Err()
}

func (db *DB) GetMaster(ctx context.Context, id int64) (*models.Master, error) {
	query := `SELECT id, salon_id, name, specialization, rating, COALESCE(photo_url, '')
              FROM masters WHERE id = ?`
	var m models.Master
	err := db.QueryRowContext(ctx, query, id).Scan(&m.ID, &m.SalonID, &m.Name, &m.Specialization, &m.Rating, &m.PhotoURL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, wrapStoreErr(err, "get master")
	}
	return &m, nil
}

func (db *DB) ListServices(ctx context.Context) ([]models.Service, error) {
	query := `SELECT id, name, COALESCE(description, ''), price, duration FROM services ORDER BY id`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, wrapStoreErr(err, "list services")
	}
	defer rows.Close()

	var services []models.Service
	for rows.Next() {
		var s models.Service
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.Price, &s.DurationMin); err != nil {
			return nil, fmt.Errorf("failed to scan service: %w", err)
		}
		services = append(services, s)
	}
	return services, rows.Err()
}

func (db *DB) GetService(ctx context.Context, id int64) (*models.Service, error) {
	query := `SELECT id, name, COALESCE(description, ''), price, duration FROM services WHERE id = ?`
	var s models.Service
	err := db.QueryRowContext(ctx, query, id).Scan(&s.ID, &s.Name, &s.Description, &s.Price, &s.DurationMin)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUnknownService
	}
	if err != nil {
		return nil, wrapStoreErr(err, "get service")
	}
	return &s, nil
}
