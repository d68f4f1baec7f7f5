package models

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gen"
	"gorm.io/gorm"
)

/*
Code generation and column drift report.

`site-backend gen` migrates every model, prints a drift report and writes typed query
helpers to the output directory (default ./generated).

The drift report lists columns that exist in the database but have no field in the
matching model, for example after a column was added from the Supabase dashboard:

	table=contacts extra_columns=[source]
*/

// ColumnDrift lists database columns of Table that no model field maps to.
type ColumnDrift struct {
	Table   string
	Columns []string
}

// Generate migrates the schema, logs the drift report and runs gorm/gen into outPath.
func Generate(db *gorm.DB, outPath string) error {
	if err := db.Exec("SELECT 1").Error; err != nil {
		return errors.Wrap(err, "database not reachable")
	}

	migrateDB := db.Session(&gorm.Session{
		SkipDefaultTransaction: true,
		PrepareStmt:            false,
	})
	if err := migrateDB.AutoMigrate(All()...); err != nil {
		return errors.Wrap(err, "migrating models")
	}

	drift, err := ColumnReport(db)
	if err != nil {
		return err
	}
	for _, d := range drift {
		log.Warn().Str("table", d.Table).Strs("extra_columns", d.Columns).Msg("columns not mapped by model")
	}
	log.Info().Int("tables_with_drift", len(drift)).Msg("column report complete")

	g := gen.NewGenerator(gen.Config{
		OutPath:           outPath,
		Mode:              gen.WithDefaultQuery | gen.WithQueryInterface,
		FieldNullable:     true,
		FieldCoverable:    true,
		FieldWithIndexTag: true,
		FieldWithTypeTag:  true,
	})
	g.UseDB(db)
	g.ApplyBasic(All()...)
	g.Execute()

	log.Info().Str("out", outPath).Msg("query generation complete")
	return nil
}

// ColumnReport compares each model against the live table. Tables that do not exist yet
// are skipped.
func ColumnReport(db *gorm.DB) ([]ColumnDrift, error) {
	migrator := db.Migrator()
	var report []ColumnDrift

	for _, model := range All() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, errors.Wrap(err, "parsing model schema")
		}
		table := stmt.Schema.Table
		if !migrator.HasTable(model) {
			continue
		}

		columnTypes, err := migrator.ColumnTypes(model)
		if err != nil {
			return nil, errors.Wrapf(err, "reading columns of %s", table)
		}

		known := make(map[string]bool, len(stmt.Schema.DBNames))
		for _, name := range stmt.Schema.DBNames {
			known[name] = true
		}

		var extra []string
		for _, col := range columnTypes {
			if !known[col.Name()] {
				extra = append(extra, col.Name())
			}
		}
		if len(extra) > 0 {
			sort.Strings(extra)
			report = append(report, ColumnDrift{Table: table, Columns: extra})
		}
	}
	return report, nil
}
