package report

import (
	"github.com/abhisek/sociogram/internal/narrative"
)

// Narrative renders one generated narrative under heading.
func Narrative(n *narrative.Narrative, heading string, mode Mode) string {
	w := &writer{mode: mode}
	w.section(heading)

	if n.Text == "" {
		w.hint("(the model returned no text)")
	} else {
		w.line("%s\n", n.Text)
	}

	if len(n.Themes) > 0 {
		w.line("Themes:")
		for _, t := range n.Themes {
			w.line("- %s", t)
		}
		w.line("")
	}

	if len(n.Watch) > 0 {
		t := NewTable(mode)
		t.Header("Student to watch", "Reason")
		for _, e := range n.Watch {
			t.Row(e.Student, e.Reason)
		}
		w.table(t)
	}

	if n.Annotation != "" {
		if mode == Markdown {
			w.line("> Teacher note: %s\n", n.Annotation)
		} else {
			w.line("%s\n", NoteStyle.Render("Teacher note: "+n.Annotation))
		}
	}

	source := "generated by " + n.Model
	if n.Cached {
		source = "cached, " + source
	}
	if !n.GeneratedAt.IsZero() {
		source += " at " + n.GeneratedAt.Local().Format("2006-01-02 15:04")
	}
	w.hint(source)

	return w.String()
}
