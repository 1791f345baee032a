package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
)

// Class is a homeroom: a named roster of students that surveys run against.
type Class struct {
	ent.Schema
}

func (Class) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable().
			Comment("Short random identifier shown to the teacher"),
		field.String("name"),
		field.String("teacher").
			Default(""),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
	}
}

func (Class) Edges() []ent.Edge {
	return []ent.Edge{
		edge.To("students", Student.Type),
		edge.To("surveys", Survey.Type),
	}
}
