// Package location provides the geographic catalogs (departments and
// municipalities) used as address references by branches.
package location

import (
	"context"

	"comercio/internal/core/apperror"
	"comercio/internal/core/entity"
)

// Region is the natural region a department belongs to.
type Region string

const (
	RegionAndina    Region = "andina"
	RegionCaribe    Region = "caribe"
	RegionPacifica  Region = "pacifica"
	RegionOrinoquia Region = "orinoquia"
	RegionAmazonia  Region = "amazonia"
	RegionInsular   Region = "insular"
)

// Department is a top-level administrative division.
type Department struct {
	entity.Catalog

	// DANECode is the official statistics department code (unique)
	DANECode string `db:"dane_code" json:"daneCode"`

	// Region groups departments geographically
	Region Region `db:"region" json:"region"`
}

// NewDepartment creates a new Department.
func NewDepartment(name, daneCode string, region Region) *Department {
	return &Department{
		Catalog:  entity.NewCatalog(daneCode, name),
		DANECode: daneCode,
		Region:   region,
	}
}

// Validate implements entity.Validatable interface.
func (d *Department) Validate(ctx context.Context) error {
	if err := d.Catalog.Validate(ctx); err != nil {
		return err
	}

	if d.DANECode == "" {
		return apperror.NewValidation("DANE code is required").
			WithDetail("field", "daneCode")
	}

	if !isValidRegion(d.Region) {
		return apperror.NewValidation("invalid region").
			WithDetail("field", "region").
			WithDetail("value", string(d.Region))
	}

	return nil
}

// Municipality is a town or city within a department.
type Municipality struct {
	entity.Catalog

	// DepartmentID is the owning department (required)
	DepartmentID string `db:"department_id" json:"departmentId"`

	// DANECode is the official statistics municipality code (unique)
	DANECode string `db:"dane_code" json:"daneCode"`
}

// NewMunicipality creates a new Municipality.
func NewMunicipality(departmentID, name, daneCode string) *Municipality {
	return &Municipality{
		Catalog:      entity.NewCatalog(daneCode, name),
		DepartmentID: departmentID,
		DANECode:     daneCode,
	}
}

// Validate implements entity.Validatable interface.
func (m *Municipality) Validate(ctx context.Context) error {
	if err := m.Catalog.Validate(ctx); err != nil {
		return err
	}

	if m.DepartmentID == "" {
		return apperror.NewValidation("department is required").
			WithDetail("field", "departmentId")
	}

	if m.DANECode == "" {
		return apperror.NewValidation("DANE code is required").
			WithDetail("field", "daneCode")
	}

	return nil
}

func isValidRegion(r Region) bool {
	switch r {
	case RegionAndina, RegionCaribe, RegionPacifica, RegionOrinoquia, RegionAmazonia, RegionInsular:
		return true
	}
	return false
}
