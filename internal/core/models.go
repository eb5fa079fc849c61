package core

import "sort"

// NameSet is a set of library names
type NameSet map[string]struct{}

// NewNameSet creates a set holding the given names
func NewNameSet(names ...string) NameSet {
	s := make(NameSet, len(names))
	s.Add(names...)
	return s
}

// Has reports whether name is in the set
func (s NameSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Len returns the number of names in the set
func (s NameSet) Len() int {
	return len(s)
}

// Add inserts names and returns how many were new
func (s NameSet) Add(names ...string) int {
	before := len(s)
	for _, name := range names {
		s[name] = struct{}{}
	}
	return len(s) - before
}

// Del removes names and returns how many were present
func (s NameSet) Del(names ...string) int {
	before := len(s)
	for _, name := range names {
		delete(s, name)
	}
	return before - len(s)
}

// Clone returns an independent copy of the set
func (s NameSet) Clone() NameSet {
	c := make(NameSet, len(s))
	for name := range s {
		c[name] = struct{}{}
	}
	return c
}

// Union returns a new set with the names of s and other
func (s NameSet) Union(other NameSet) NameSet {
	u := s.Clone()
	for name := range other {
		u[name] = struct{}{}
	}
	return u
}

// Minus returns a new set with the names of s that are not in other
func (s NameSet) Minus(other NameSet) NameSet {
	d := make(NameSet, len(s))
	for name := range s {
		if !other.Has(name) {
			d[name] = struct{}{}
		}
	}
	return d
}

// Intersects reports whether s and other share at least one name
func (s NameSet) Intersects(other NameSet) bool {
	small, large := s, other
	if len(small) > len(large) {
		small, large = large, small
	}
	for name := range small {
		if large.Has(name) {
			return true
		}
	}
	return false
}

// Equal reports whether both sets hold exactly the same names
func (s NameSet) Equal(other NameSet) bool {
	if len(s) != len(other) {
		return false
	}
	for name := range s {
		if !other.Has(name) {
			return false
		}
	}
	return true
}

// Sorted returns the names in lexical order
func (s NameSet) Sorted() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LibraryRecord holds the metadata the package manager reports for one installed library
type LibraryRecord struct {
	Name       string  `json:"name"`
	Version    string  `json:"version,omitempty"`
	Requires   NameSet `json:"-"`
	RequiredBy NameSet `json:"-"`
}

// EmptyRecord returns the isolated-leaf record used for libraries that are not installed
func EmptyRecord(name string) LibraryRecord {
	return LibraryRecord{
		Name:       name,
		Requires:   NameSet{},
		RequiredBy: NameSet{},
	}
}

// Clone returns a deep copy of the record
func (r LibraryRecord) Clone() LibraryRecord {
	return LibraryRecord{
		Name:       r.Name,
		Version:    r.Version,
		Requires:   r.Requires.Clone(),
		RequiredBy: r.RequiredBy.Clone(),
	}
}

// Lookup is the result of asking the metadata cache about a library.
// Known is false when the library is not part of the installed set; Record
// is then an empty leaf.
type Lookup struct {
	Name   string
	Record LibraryRecord
	Known  bool
}
