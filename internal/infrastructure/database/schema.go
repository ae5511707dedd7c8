package database

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var (
	// PhrasesColumns holds the columns for the "phrases" table.
	PhrasesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "notebook", Type: field.TypeString, Size: 128, Default: ""},
		{Name: "source_text", Type: field.TypeString, Size: 1024},
		{Name: "target_text", Type: field.TypeString, Size: 1024},
		{Name: "source_language", Type: field.TypeString, Size: 8, Default: "en"},
		{Name: "target_language", Type: field.TypeString, Size: 8, Default: "pl"},
		{Name: "difficulty", Type: field.TypeString, Size: 32, Default: ""},
		{Name: "source_audio", Type: field.TypeBool, Default: false},
		{Name: "target_audio", Type: field.TypeBool, Default: false},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// PhrasesTable holds the schema information for the "phrases" table.
	PhrasesTable = &schema.Table{
		Name:       "phrases",
		Columns:    PhrasesColumns,
		PrimaryKey: []*schema.Column{PhrasesColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "phrase_notebook_source_text_target_text",
				Unique:  true,
				Columns: []*schema.Column{PhrasesColumns[1], PhrasesColumns[2], PhrasesColumns[3]},
			},
			{
				Name:    "phrase_created_at",
				Unique:  false,
				Columns: []*schema.Column{PhrasesColumns[9]},
			},
		},
	}
	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{PhrasesTable}
)

// Migrate creates or updates the tables this application owns.
func Migrate(ctx context.Context, drv dialect.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("prepare migration: %w", err)
	}
	if err := m.Create(ctx, Tables...); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}
