package models

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

/*
Column Mismatch Report Usage:

Reports columns that exist in a table but are not mapped by the corresponding
Go model. Run it with:

	blogs migrate --report

Example output:
	--- Table: blogs ---
	Found 1 columns not accounted for in model:
	  - created_at
*/

// All lists every model owned by this service, in migration order.
func All() []any {
	return []any{&Blog{}}
}

// AutoMigrate creates missing tables and columns. It never drops anything.
func AutoMigrate(db *gorm.DB) error {
	migrateDB := db.Session(&gorm.Session{
		SkipDefaultTransaction: true,
		PrepareStmt:            false,
	})
	if err := migrateDB.AutoMigrate(All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	log.Debug().Int("models", len(All())).Msg("Database migration completed")
	return nil
}

// TableReport is the result of comparing one table against its model.
type TableReport struct {
	Table      string
	Exists     bool
	Mismatches []string
}

// GenerateColumnMismatchReport compares the live schema against the models.
func GenerateColumnMismatchReport(db *gorm.DB) ([]TableReport, error) {
	migrator := db.Migrator()

	var reports []TableReport
	for _, model := range All() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, fmt.Errorf("parse model %T: %w", model, err)
		}
		report := TableReport{Table: stmt.Schema.Table}

		if !migrator.HasTable(model) {
			reports = append(reports, report)
			continue
		}
		report.Exists = true

		columnTypes, err := migrator.ColumnTypes(model)
		if err != nil {
			return nil, fmt.Errorf("error querying columns for table %s: %w", report.Table, err)
		}

		dbColumns := make([]string, 0, len(columnTypes))
		for _, ct := range columnTypes {
			dbColumns = append(dbColumns, ct.Name())
		}
		report.Mismatches = findColumnMismatches(dbColumns, stmt.Schema.DBNames)
		reports = append(reports, report)
	}

	return reports, nil
}

// findColumnMismatches finds columns that exist in the database but not in the model
func findColumnMismatches(dbColumns, modelFields []string) []string {
	modelFieldSet := make(map[string]bool, len(modelFields))
	for _, field := range modelFields {
		modelFieldSet[field] = true
	}

	var mismatches []string
	for _, col := range dbColumns {
		if !modelFieldSet[col] {
			mismatches = append(mismatches, col)
		}
	}
	sort.Strings(mismatches)

	return mismatches
}
