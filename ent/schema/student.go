package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Student is one seat on a class roster.
type Student struct {
	ent.Schema
}

func (Student) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("name"),
		field.Int("position").
			Comment("Roster order, starting at 0"),
		field.String("class_id"),
	}
}

func (Student) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("class", Class.Type).
			Ref("students").
			Field("class_id").
			Unique().
			Required(),
	}
}

func (Student) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("class_id", "position"),
	}
}
