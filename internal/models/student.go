package models

// StudentStatus tracks a student's participation state.
type StudentStatus string

const (
	StatusActive   StudentStatus = "Active"
	StatusFrozen   StudentStatus = "Frozen"
	StatusFinished StudentStatus = "Finished"
)

// PaymentStatus marks whether the current package has been paid for.
type PaymentStatus string

const (
	PaymentPaid   PaymentStatus = "Paid"
	PaymentUnpaid PaymentStatus = "Unpaid"
)

// Student is one roster row. The name doubles as the key: the backing
// store has no surrogate ids, and transactions/activity entries reference
// students by name.
type Student struct {
	Name             string        `json:"name"`
	PackageSize      int           `json:"package_size"`
	RemainingLessons int           `json:"remaining_lessons"`
	LastActivity     string        `json:"last_activity"`
	Status           StudentStatus `json:"status"`
	PaymentStatus    PaymentStatus `json:"payment_status"`
	Notes            string        `json:"notes"`
}

// PublicView is the reduced projection shown without coach access.
type PublicView struct {
	Name             string        `json:"name"`
	RemainingLessons int           `json:"remaining_lessons"`
	PaymentStatus    PaymentStatus `json:"payment_status"`
}

// Public returns the reduced projection of the student.
func (s Student) Public() PublicView {
	return PublicView{Name: s.Name, RemainingLessons: s.RemainingLessons, PaymentStatus: s.PaymentStatus}
}

// Roster is an in-memory snapshot of the roster table: an ordered arena of
// students plus a name index, so engine logic stays independent of storage
// row order. Mutations go through the pointer returned by Find and are
// persisted by writing the whole snapshot back.
type Roster struct {
	students []Student
	index    map[string]int
}

// NewRoster builds a roster snapshot from ordered rows. When the backing
// table carries duplicate names (possible through manual edits), the first
// occurrence wins for lookups; rows are preserved as-is for write-back.
func NewRoster(students []Student) *Roster {
	r := &Roster{students: students, index: make(map[string]int, len(students))}
	for i, s := range students {
		if _, ok := r.index[s.Name]; !ok {
			r.index[s.Name] = i
		}
	}
	return r
}

// Len returns the number of roster rows.
func (r *Roster) Len() int {
	return len(r.students)
}

// Students returns the ordered roster rows.
func (r *Roster) Students() []Student {
	return r.students
}

// Find returns a mutable pointer to the student with the given name.
func (r *Roster) Find(name string) (*Student, bool) {
	i, ok := r.index[name]
	if !ok {
		return nil, false
	}
	return &r.students[i], true
}

// Contains reports whether a student with the given name exists.
func (r *Roster) Contains(name string) bool {
	_, ok := r.index[name]
	return ok
}

// Add appends a new student row. The caller must have checked for
// duplicates beforehand; Add reports whether the name was free.
func (r *Roster) Add(s Student) bool {
	if _, ok := r.index[s.Name]; ok {
		return false
	}
	r.students = append(r.students, s)
	r.index[s.Name] = len(r.students) - 1
	return true
}

// Remove deletes the student row with the given name, preserving the order
// of the remaining rows.
func (r *Roster) Remove(name string) bool {
	i, ok := r.index[name]
	if !ok {
		return false
	}
	r.students = append(r.students[:i], r.students[i+1:]...)
	r.index = make(map[string]int, len(r.students))
	for j, s := range r.students {
		if _, exists := r.index[s.Name]; !exists {
			r.index[s.Name] = j
		}
	}
	return true
}
