package database

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// RequiredTables are the tables the sync engine reads or writes.
// Reference tables (leagues, seasons, teams) are seeded elsewhere but must
// exist for the foreign-key resolver to query them.
var RequiredTables = []string{
	"leagues",
	"seasons",
	"teams",
	"fixtures",
	"fixture_audits",
	"batch_runs",
	"batch_items",
}

// VerifySchema checks that every required table exists before a sync run.
// It returns an error naming all missing tables, so operators see the whole
// problem at once instead of one table per run.
func VerifySchema(db *gorm.DB, tables []string) error {
	var missing []string
	for _, table := range tables {
		if !db.Migrator().HasTable(table) {
			missing = append(missing, table)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing tables: %s (run migrations first)", strings.Join(missing, ", "))
	}
	return nil
}
