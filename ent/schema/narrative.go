package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Narrative caches generated text for a survey, either for the whole
// class or for one student.
type Narrative struct {
	ent.Schema
}

func (Narrative) Fields() []ent.Field {
	return []ent.Field{
		field.String("survey_id"),
		field.String("student_id").
			Default("").
			Comment("Empty for class-level narratives"),
		field.String("kind").
			Comment("class, student or concerns"),
		field.Text("text"),
		field.Bytes("payload").
			Optional().
			Comment("Structured answer, when the narrative has one"),
		field.String("model").
			Default(""),
		field.String("annotation").
			Default("").
			Comment("Teacher's note; survives regeneration"),
		field.Time("generated_at").
			Default(time.Now),
	}
}

func (Narrative) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("survey_id", "student_id", "kind").
			Unique(),
	}
}
