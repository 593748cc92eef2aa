package models

import "time"

// LabStatus is the stored availability state of a laboratory.
type LabStatus string

const (
	LabStatusAvailable   LabStatus = "Tersedia"
	LabStatusUnavailable LabStatus = "Tidak Tersedia"
	LabStatusMaintenance LabStatus = "Maintenance"

	// LabStatusFullToday is a display-only downgrade applied when the daily
	// booking capacity is reached. It is never written to the labs table.
	LabStatusFullToday LabStatus = "Penuh Hari Ini"
)

// Lab represents a bookable laboratory.
type Lab struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Location  string    `db:"location" json:"location"`
	Status    LabStatus `db:"status" json:"status"`
	ImageRef  string    `db:"image_ref" json:"image_ref"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// LabView decorates a lab with its effective status for dashboard display.
type LabView struct {
	Lab
	EffectiveStatus LabStatus `json:"effective_status"`
}
