package database

import (
	"fmt"

	"trading-journal/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Models lists every table the journal owns, parents first.
var Models = []interface{}{&models.Account{}, &models.Trade{}}

// Migrate brings the schema up to date without touching existing data.
// Missing tables are created, missing columns and indexes are added;
// nothing is ever altered or dropped, so running it on every start-up is safe.
func Migrate(db *gorm.DB, log *zap.Logger) error {
	m := db.Migrator()

	for _, model := range Models {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return fmt.Errorf("failed to parse model %T: %w", model, err)
		}
		table := stmt.Schema.Table

		if !m.HasTable(model) {
			if err := m.CreateTable(model); err != nil {
				return fmt.Errorf("failed to create table %s: %w", table, err)
			}
			log.Info("Created table", zap.String("table", table))
			continue
		}

		for _, field := range stmt.Schema.Fields {
			if field.DBName == "" {
				continue
			}
			if m.HasColumn(model, field.DBName) {
				continue
			}
			if err := m.AddColumn(model, field.Name); err != nil {
				return fmt.Errorf("failed to add column %s.%s: %w", table, field.DBName, err)
			}
			log.Info("Added missing column", zap.String("table", table), zap.String("column", field.DBName))
		}

		for _, idx := range stmt.Schema.ParseIndexes() {
			if m.HasIndex(model, idx.Name) {
				continue
			}
			if err := m.CreateIndex(model, idx.Name); err != nil {
				return fmt.Errorf("failed to create index %s: %w", idx.Name, err)
			}
			log.Info("Created missing index", zap.String("table", table), zap.String("index", idx.Name))
		}
	}

	return nil
}
