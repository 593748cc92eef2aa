package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/laboserve/laboserve-api/internal/models"
)

// LabRepository provides read access to the laboratory catalog.
type LabRepository struct {
	db *sqlx.DB
}

// NewLabRepository creates a new lab repository.
func NewLabRepository(db *sqlx.DB) *LabRepository {
	return &LabRepository{db: db}
}

const labColumns = "id, name, location, status, image_ref, created_at, updated_at"

// List returns all labs ordered by name.
func (r *LabRepository) List(ctx context.Context) ([]models.Lab, error) {
	query := fmt.Sprintf("SELECT %s FROM labs ORDER BY name ASC", labColumns)
	var labs []models.Lab
	if err := r.db.SelectContext(ctx, &labs, query); err != nil {
		return nil, fmt.Errorf("list labs: %w", err)
	}
	return labs, nil
}

// FindByID loads a lab by id.
func (r *LabRepository) FindByID(ctx context.Context, id string) (*models.Lab, error) {
	query := fmt.Sprintf("SELECT %s FROM labs WHERE id = $1", labColumns)
	var lab models.Lab
	if err := r.db.GetContext(ctx, &lab, query, id); err != nil {
		return nil, err
	}
	return &lab, nil
}

// FindByName loads a lab with an exact name match. Used by the timetable
// importer to resolve column headers to lab ids.
func (r *LabRepository) FindByName(ctx context.Context, name string) (*models.Lab, error) {
	query := fmt.Sprintf("SELECT %s FROM labs WHERE name = $1", labColumns)
	var lab models.Lab
	if err := r.db.GetContext(ctx, &lab, query, name); err != nil {
		return nil, err
	}
	return &lab, nil
}

// UpdateStatus sets the stored status for a lab.
func (r *LabRepository) UpdateStatus(ctx context.Context, id string, status models.LabStatus) error {
	const query = `UPDATE labs SET status = $1, updated_at = NOW() WHERE id = $2`
	if _, err := r.db.ExecContext(ctx, query, status, id); err != nil {
		return fmt.Errorf("update lab status: %w", err)
	}
	return nil
}
