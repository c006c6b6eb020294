package roster

import (
	"slices"
	"sort"
)

// Appointment is the title shape of one name within a snapshot: either a
// SingleTitle or, when the name is listed under more than one distinct
// title, MultipleTitles. Consumers switch on the concrete type.
type Appointment interface {
	// Titles lists the titles in encounter order.
	Titles() []string
	appointment()
}

// SingleTitle is a name listed under exactly one title.
type SingleTitle string

func (t SingleTitle) Titles() []string { return []string{string(t)} }
func (SingleTitle) appointment()       {}

// MultipleTitles lists the distinct titles of a name listed more than once.
type MultipleTitles []string

func (m MultipleTitles) Titles() []string { return append([]string(nil), m...) }
func (MultipleTitles) appointment()       {}

// NameIndex maps each name of a roster to its appointment.
type NameIndex struct {
	byName map[string]Appointment
	names  []string
}

// NewNameIndex builds the name -> appointment view of r.
func NewNameIndex(r *Roster) *NameIndex {
	x := &NameIndex{byName: make(map[string]Appointment)}
	for _, title := range r.titles {
		for _, name := range r.names[title] {
			x.add(name, title)
		}
	}
	sort.Strings(x.names)
	return x
}

func (x *NameIndex) add(name, title string) {
	cur, ok := x.byName[name]
	if !ok {
		x.byName[name] = SingleTitle(title)
		x.names = append(x.names, name)
		return
	}
	switch a := cur.(type) {
	case SingleTitle:
		if string(a) != title {
			x.byName[name] = MultipleTitles{string(a), title}
		}
	case MultipleTitles:
		if !slices.Contains(a, title) {
			x.byName[name] = append(a, title)
		}
	}
}

// Lookup returns the appointment recorded for name.
func (x *NameIndex) Lookup(name string) (Appointment, bool) {
	a, ok := x.byName[name]
	return a, ok
}

// Names returns the indexed names in lexicographic order.
func (x *NameIndex) Names() []string {
	return append([]string(nil), x.names...)
}

func (x *NameIndex) Len() int {
	return len(x.names)
}
