package tables

import "strings"

// OrderBy is a single ordering alias: a column name, or "-name" for
// descending order.
type OrderBy string

// Bare returns the alias without its direction prefix.
func (o OrderBy) Bare() string {
	return strings.TrimPrefix(string(o), "-")
}

func (o OrderBy) IsDescending() bool {
	return strings.HasPrefix(string(o), "-")
}

func (o OrderBy) IsAscending() bool {
	return !o.IsDescending()
}

// Opposite returns the alias with its direction flipped.
func (o OrderBy) Opposite() OrderBy {
	if o.IsDescending() {
		return OrderBy(o.Bare())
	}
	return OrderBy("-" + o.Bare())
}

// OrderByTuple is an ordered list of aliases.
type OrderByTuple []OrderBy

// ParseOrderBy builds a tuple from aliases. Each value may hold a comma
// separated list; blanks are dropped.
func ParseOrderBy(values ...string) OrderByTuple {
	out := make(OrderByTuple, 0, len(values))
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			part = strings.TrimSpace(part)
			if part == "" || part == "-" {
				continue
			}
			out = append(out, OrderBy(part))
		}
	}
	return out
}

func (t OrderByTuple) String() string {
	parts := make([]string, len(t))
	for i, o := range t {
		parts[i] = string(o)
	}
	return strings.Join(parts, ",")
}

// Get returns the alias whose bare name is name.
func (t OrderByTuple) Get(name string) (OrderBy, bool) {
	for _, o := range t {
		if o.Bare() == name {
			return o, true
		}
	}
	return "", false
}

func (t OrderByTuple) Contains(name string) bool {
	_, ok := t.Get(name)
	return ok
}

// Opposite flips the direction of every alias.
func (t OrderByTuple) Opposite() OrderByTuple {
	out := make(OrderByTuple, len(t))
	for i, o := range t {
		out[i] = o.Opposite()
	}
	return out
}

// Sort is one resolved sort key handed to the data layer.
type Sort struct {
	Field string
	Desc  bool
}

// Sorts turns the tuple into sort keys, treating each alias as an accessor.
func (t OrderByTuple) Sorts() []Sort {
	out := make([]Sort, len(t))
	for i, o := range t {
		out[i] = Sort{Field: o.Bare(), Desc: o.IsDescending()}
	}
	return out
}
