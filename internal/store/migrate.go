package store

import (
	"context"

	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table and column definitions for the types in ent/schema, laid out the
// way ent's generated migrate/schema.go declares them.
var (
	ClassesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Unique: true},
		{Name: "name", Type: field.TypeString},
		{Name: "teacher", Type: field.TypeString, Default: ""},
		{Name: "created_at", Type: field.TypeTime},
	}
	ClassesTable = &schema.Table{
		Name:       "classes",
		Columns:    ClassesColumns,
		PrimaryKey: []*schema.Column{ClassesColumns[0]},
	}

	StudentsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Unique: true},
		{Name: "name", Type: field.TypeString},
		{Name: "position", Type: field.TypeInt},
		{Name: "class_id", Type: field.TypeString},
	}
	StudentsTable = &schema.Table{
		Name:       "students",
		Columns:    StudentsColumns,
		PrimaryKey: []*schema.Column{StudentsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "students_classes_students",
				Columns:    []*schema.Column{StudentsColumns[3]},
				RefColumns: []*schema.Column{ClassesColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "student_class_id_position",
				Unique:  false,
				Columns: []*schema.Column{StudentsColumns[3], StudentsColumns[2]},
			},
		},
	}

	SurveysColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Unique: true},
		{Name: "name", Type: field.TypeString},
		{Name: "description", Type: field.TypeString, Default: ""},
		{Name: "state", Type: field.TypeString, Default: "pending"},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "class_id", Type: field.TypeString},
	}
	SurveysTable = &schema.Table{
		Name:       "surveys",
		Columns:    SurveysColumns,
		PrimaryKey: []*schema.Column{SurveysColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "surveys_classes_surveys",
				Columns:    []*schema.Column{SurveysColumns[5]},
				RefColumns: []*schema.Column{ClassesColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
	}

	ResponsesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Unique: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "submitter_id", Type: field.TypeString},
		{Name: "ratings", Type: field.TypeBytes, Nullable: true},
		{Name: "praise_friend", Type: field.TypeString, Default: ""},
		{Name: "difficult_friend", Type: field.TypeString, Default: ""},
		{Name: "concern", Type: field.TypeString, Default: ""},
		{Name: "teacher_message", Type: field.TypeString, Default: ""},
		{Name: "submitted_at", Type: field.TypeTime},
		{Name: "survey_id", Type: field.TypeString},
	}
	ResponsesTable = &schema.Table{
		Name:       "responses",
		Columns:    ResponsesColumns,
		PrimaryKey: []*schema.Column{ResponsesColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "responses_surveys_responses",
				Columns:    []*schema.Column{ResponsesColumns[9]},
				RefColumns: []*schema.Column{SurveysColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "response_survey_id_sequence",
				Unique:  false,
				Columns: []*schema.Column{ResponsesColumns[9], ResponsesColumns[1]},
			},
		},
	}

	NarrativesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "survey_id", Type: field.TypeString},
		{Name: "student_id", Type: field.TypeString, Default: ""},
		{Name: "kind", Type: field.TypeString},
		{Name: "text", Type: field.TypeString, Size: 2147483647},
		{Name: "payload", Type: field.TypeBytes, Nullable: true},
		{Name: "model", Type: field.TypeString, Default: ""},
		{Name: "annotation", Type: field.TypeString, Default: ""},
		{Name: "generated_at", Type: field.TypeTime},
	}
	NarrativesTable = &schema.Table{
		Name:       "narratives",
		Columns:    NarrativesColumns,
		PrimaryKey: []*schema.Column{NarrativesColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "narrative_survey_id_student_id_kind",
				Unique:  true,
				Columns: []*schema.Column{NarrativesColumns[1], NarrativesColumns[2], NarrativesColumns[3]},
			},
		},
	}

	LlmEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt},
		{Name: "output_tokens", Type: field.TypeInt},
		{Name: "latency_ms", Type: field.TypeInt64},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Default: ""},
		{Name: "request_body", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: 2147483647, Default: ""},
	}
	LlmEventsTable = &schema.Table{
		Name:       "llm_events",
		Columns:    LlmEventsColumns,
		PrimaryKey: []*schema.Column{LlmEventsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "llmevent_purpose",
				Unique:  false,
				Columns: []*schema.Column{LlmEventsColumns[5]},
			},
		},
	}

	GlobalSequenceColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Unique: true},
		{Name: "next_val", Type: field.TypeInt64, Default: 1},
	}
	GlobalSequenceTable = &schema.Table{
		Name:       "global_sequence",
		Columns:    GlobalSequenceColumns,
		PrimaryKey: []*schema.Column{GlobalSequenceColumns[0]},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		ClassesTable,
		StudentsTable,
		SurveysTable,
		ResponsesTable,
		NarrativesTable,
		LlmEventsTable,
		GlobalSequenceTable,
	}
)

func init() {
	StudentsTable.ForeignKeys[0].RefTable = ClassesTable
	SurveysTable.ForeignKeys[0].RefTable = ClassesTable
	ResponsesTable.ForeignKeys[0].RefTable = SurveysTable
}

// migrate creates missing tables and columns. It never drops anything.
func migrate(ctx context.Context, drv *entsql.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return err
	}
	return m.Create(ctx, Tables...)
}
