package conn

import (
	"reflect"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/migrator"
	"gorm.io/gorm/schema"
)

var decimalType = reflect.TypeOf(decimal.Decimal{})

// sqliteDialector stores decimal columns as text.
//
// SQLite gives a numeric(38,18) column NUMERIC affinity and converts decimal strings to REAL,
// which keeps about 15 significant digits. TEXT affinity keeps the string as written.
type sqliteDialector struct {
	*sqlite.Dialector
}

func openSQLite(dsn string) gorm.Dialector {
	return sqliteDialector{Dialector: &sqlite.Dialector{DSN: dsn}}
}

func (d sqliteDialector) DataTypeOf(field *schema.Field) string {
	if field.IndirectFieldType == decimalType {
		return "text"
	}
	return d.Dialector.DataTypeOf(field)
}

// Migrator mirrors sqlite.Dialector.Migrator with d as the dialector, so column types resolve
// through DataTypeOf above.
func (d sqliteDialector) Migrator(db *gorm.DB) gorm.Migrator {
	return sqlite.Migrator{Migrator: migrator.Migrator{Config: migrator.Config{
		DB:                          db,
		Dialector:                   d,
		CreateIndexAfterCreateTable: true,
	}}}
}
