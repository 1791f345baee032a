package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Response is one student's submission to a survey. A later submission
// from the same student supersedes the earlier one by sequence.
type Response struct {
	ent.Schema
}

func (Response) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.Int64("sequence").
			Unique().
			Immutable().
			Comment("Global sequence number shared with the LLM event log"),
		field.String("submitter_id"),
		field.Bytes("ratings").
			Optional().
			Comment("JSON object of ratee id to score"),
		field.String("praise_friend").
			Default(""),
		field.String("difficult_friend").
			Default(""),
		field.String("concern").
			Default(""),
		field.String("teacher_message").
			Default(""),
		field.Time("submitted_at").
			Default(time.Now).
			Immutable(),
		field.String("survey_id"),
	}
}

func (Response) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("survey", Survey.Type).
			Ref("responses").
			Field("survey_id").
			Unique().
			Required(),
	}
}

func (Response) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("survey_id", "sequence"),
	}
}
