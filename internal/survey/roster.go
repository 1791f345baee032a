package survey

// Roster is the ordered set of students in a class at analysis time.
// Order is enrolment order and is used wherever output needs a stable
// ordering of students.
type Roster struct {
	students []Student
	index    map[string]int
}

// NewRoster builds a roster. When the same ID appears more than once the
// first occurrence wins.
func NewRoster(students []Student) *Roster {
	r := &Roster{
		students: make([]Student, 0, len(students)),
		index:    make(map[string]int, len(students)),
	}
	for _, s := range students {
		if _, dup := r.index[s.ID]; dup {
			continue
		}
		r.index[s.ID] = len(r.students)
		r.students = append(r.students, s)
	}
	return r
}

// Len returns the number of students.
func (r *Roster) Len() int { return len(r.students) }

// Students returns a copy of the roster in enrolment order.
func (r *Roster) Students() []Student {
	out := make([]Student, len(r.students))
	copy(out, r.students)
	return out
}

// Contains reports whether id is on the roster.
func (r *Roster) Contains(id string) bool {
	_, ok := r.index[id]
	return ok
}

// Index returns the enrolment position of id.
func (r *Roster) Index(id string) (int, bool) {
	i, ok := r.index[id]
	return i, ok
}

// Name returns the display name for id.
func (r *Roster) Name(id string) (string, bool) {
	i, ok := r.index[id]
	if !ok {
		return "", false
	}
	return r.students[i].Name, true
}

// Lookup finds a student by ID, or failing that by exact display name.
// The CLI uses it so teachers can type names instead of IDs.
func (r *Roster) Lookup(idOrName string) (Student, bool) {
	if i, ok := r.index[idOrName]; ok {
		return r.students[i], true
	}
	for _, s := range r.students {
		if s.Name == idOrName {
			return s, true
		}
	}
	return Student{}, false
}
