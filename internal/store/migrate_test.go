package store

import (
	"fmt"
	"slices"
	"strings"
	"testing"

	"entgo.io/ent"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"

	entschema "github.com/abhisek/sociogram/ent/schema"
)

// The migration tables are written out by hand; the ent schema package is
// the declaration they must agree with.
func TestMigrationTablesMatchEntSchema(t *testing.T) {
	tables := map[string]*schema.Table{"Class": ClassesTable, "Survey": SurveysTable}

	tests := []struct {
		prefix string
		def    ent.Interface
		table  *schema.Table
	}{
		{"class", entschema.Class{}, ClassesTable},
		{"student", entschema.Student{}, StudentsTable},
		{"survey", entschema.Survey{}, SurveysTable},
		{"response", entschema.Response{}, ResponsesTable},
		{"narrative", entschema.Narrative{}, NarrativesTable},
		{"llmevent", entschema.LLMEvent{}, LlmEventsTable},
	}

	for _, tt := range tests {
		t.Run(tt.table.Name, func(t *testing.T) {
			var declared []string
			fields := tt.def.Fields()
			if len(fields) == 0 || fields[0].Descriptor().Name != "id" {
				declared = append(declared, "id int unique=false null=false size=0")
			}
			for _, f := range fields {
				d := f.Descriptor()
				if d.Err != nil {
					t.Fatalf("field %s: %v", d.Name, d.Err)
				}
				declared = append(declared, columnSignature(d.Name, d.Info.Type, d.Unique, d.Optional, d.Size, d.Default))
			}

			var migrated []string
			for _, c := range tt.table.Columns {
				migrated = append(migrated, columnSignature(c.Name, c.Type, c.Unique, c.Nullable, int(c.Size), c.Default))
			}
			if !slices.Equal(declared, migrated) {
				t.Fatalf("columns differ\nent:     %s\nmigrate: %s", strings.Join(declared, ", "), strings.Join(migrated, ", "))
			}

			var fks int
			for _, e := range tt.def.Edges() {
				d := e.Descriptor()
				if !d.Inverse || d.Field == "" {
					continue
				}
				fks++
				if !hasForeignKey(tt.table, d.Field, tables[d.Type]) {
					t.Errorf("no foreign key %s -> %s", d.Field, d.Type)
				}
			}
			if fks != len(tt.table.ForeignKeys) {
				t.Errorf("ent declares %d foreign keys, migration has %d", fks, len(tt.table.ForeignKeys))
			}

			indexes := tt.def.Indexes()
			if len(indexes) != len(tt.table.Indexes) {
				t.Fatalf("ent declares %d indexes, migration has %d", len(indexes), len(tt.table.Indexes))
			}
			for _, idx := range indexes {
				d := idx.Descriptor()
				name := tt.prefix + "_" + strings.Join(d.Fields, "_")
				if !hasIndex(tt.table, name, d.Unique, d.Fields) {
					t.Errorf("missing index %s (unique=%t)", name, d.Unique)
				}
			}
		})
	}
}

func columnSignature(name string, typ field.Type, unique, null bool, size int, def any) string {
	s := fmt.Sprintf("%s %s unique=%t null=%t size=%d", name, typ, unique, null, size)
	if typ == field.TypeString {
		s += fmt.Sprintf(" default=%v", def)
	}
	return s
}

func hasForeignKey(t *schema.Table, column string, ref *schema.Table) bool {
	for _, fk := range t.ForeignKeys {
		if len(fk.Columns) == 1 && fk.Columns[0].Name == column && fk.RefTable == ref {
			return true
		}
	}
	return false
}

func hasIndex(t *schema.Table, name string, unique bool, columns []string) bool {
	for _, idx := range t.Indexes {
		if idx.Name != name || idx.Unique != unique {
			continue
		}
		var got []string
		for _, c := range idx.Columns {
			got = append(got, c.Name)
		}
		return slices.Equal(got, columns)
	}
	return false
}
