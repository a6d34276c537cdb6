// Package schema compares the gorm models against the live database.
package schema

import (
	"fmt"
	"sync"

	"gorm.io/gorm"
	gormschema "gorm.io/gorm/schema"
)

// Column is one persisted field of a model.
type Column struct {
	*gormschema.Field
}

func (c *Column) Type() string {
	return string(c.DataType)
}

// Table is a parsed model.
type Table struct {
	*gormschema.Schema
	Columns []*Column
}

func (t *Table) TableName() string {
	return t.Table
}

// CreateTableFromModel parses model with the naming strategy of db.
func CreateTableFromModel(db *gorm.DB, model interface{}) (*Table, error) {
	s, err := gormschema.Parse(model, &sync.Map{}, db.NamingStrategy)
	if err != nil {
		return nil, fmt.Errorf("parse %T: %w", model, err)
	}

	columns := make([]*Column, 0, len(s.DBNames))
	for _, name := range s.DBNames {
		columns = append(columns, &Column{Field: s.FieldsByDBName[name]})
	}
	return &Table{Schema: s, Columns: columns}, nil
}

// Drift describes how a table differs from its model.
type Drift struct {
	Table          string
	MissingTable   bool
	MissingColumns []string
}

func (d Drift) Clean() bool {
	return !d.MissingTable && len(d.MissingColumns) == 0
}

// Check reports tables or columns the model expects but the database lacks.
func Check(db *gorm.DB, model interface{}) (Drift, error) {
	t, err := CreateTableFromModel(db, model)
	if err != nil {
		return Drift{}, err
	}

	d := Drift{Table: t.TableName()}
	m := db.Migrator()
	if !m.HasTable(model) {
		d.MissingTable = true
		return d, nil
	}
	for _, c := range t.Columns {
		if !m.HasColumn(model, c.DBName) {
			d.MissingColumns = append(d.MissingColumns, c.DBName)
		}
	}
	return d, nil
}
