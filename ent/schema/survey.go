package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
)

// Survey is one round of peer ratings for a class.
type Survey struct {
	ent.Schema
}

func (Survey) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("name"),
		field.String("description").
			Default(""),
		field.String("state").
			Default("pending").
			Comment("pending, ongoing or closed"),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
		field.String("class_id"),
	}
}

func (Survey) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("class", Class.Type).
			Ref("surveys").
			Field("class_id").
			Unique().
			Required(),
		edge.To("responses", Response.Type),
	}
}
