package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"comercio/internal/core/entity"
	"comercio/internal/core/id"
)

type MockCatalog struct {
	entity.BaseCatalog
	Code   string  `db:"code" json:"code"`
	Name   string  `db:"name" json:"name"`
	Note   *string `db:"note" json:"note,omitempty"`
	Hidden string  `db:"-" json:"hidden"`
	NoTag  string
}

func TestExtractDBColumns(t *testing.T) {
	cols := ExtractDBColumns[MockCatalog]()

	expectedCols := []string{
		"id", "deletion_mark", "version", "attributes", "created_at", "updated_at", "code", "name", "note",
	}

	for _, expected := range expectedCols {
		assert.Contains(t, cols, expected)
	}

	assert.NotContains(t, cols, "-")
	assert.NotContains(t, cols, "hidden")
}

func TestExtractDBColumns_PointerType(t *testing.T) {
	assert.Equal(t, ExtractDBColumns[MockCatalog](), ExtractDBColumns[*MockCatalog]())
}

func TestStructToMap(t *testing.T) {
	note := "a note"
	cat := MockCatalog{
		BaseCatalog: entity.BaseCatalog{
			BaseEntity: entity.BaseEntity{
				ID:           id.New(),
				DeletionMark: true,
				Version:      5,
			},
		},
		Code:   "TEST",
		Name:   "Test Name",
		Note:   &note,
		Hidden: "not persisted",
	}

	m := StructToMap(cat)

	assert.Equal(t, cat.ID, m["id"])
	assert.Equal(t, true, m["deletion_mark"])
	assert.Equal(t, 5, m["version"])
	assert.Equal(t, "TEST", m["code"])
	assert.Equal(t, "Test Name", m["name"])
	assert.Equal(t, &note, m["note"])

	_, ok := m["hidden"]
	assert.False(t, ok, "db:\"-\" fields must not be mapped")
	_, ok = m["NoTag"]
	assert.False(t, ok, "untagged fields must not be mapped")
}

func TestStructToMap_Pointer(t *testing.T) {
	cat := &MockCatalog{Code: "PTR", Name: "Pointer"}
	m := StructToMap(cat)
	assert.Equal(t, "PTR", m["code"])
}

func TestStructToMap_NonStruct(t *testing.T) {
	assert.Nil(t, StructToMap(42))
	assert.Nil(t, StructToMap("nope"))
}
