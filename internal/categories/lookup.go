// Package categories buckets raw categorical crash attributes (primary cause,
// weather condition, trafficway type) into a small fixed set of named
// categories. Every dimension has its own lookup table; a raw value that no
// table entry lists resolves to [Other].
package categories

import (
	"errors"
	"fmt"
)

// Category is a classified bucket name. The zero value is not a valid
// category; classification always returns a declared category or Other.
type Category string

// Other is the fallback bucket for values absent from every category set.
const Other Category = "Other"

func (c Category) IsOther() bool {
	return c == Other
}

func (c Category) String() string {
	return string(c)
}

type Dimension string

const (
	Cause      Dimension = "cause"
	Weather    Dimension = "weather"
	Trafficway Dimension = "trafficway"
)

// Group declares one category and the raw values that belong to it.
type Group struct {
	Name   string   `yaml:"name"`
	Values []string `yaml:"values"`
}

var (
	ErrEmptyCategory    = errors.New("category name is empty")
	ErrReservedCategory = errors.New("category name is reserved for the fallback")
	ErrDuplicateName    = errors.New("category declared twice")
	ErrOverlap          = errors.New("raw value listed under more than one category")
)

// Lookup is a compiled value -> category table for one dimension. It is
// immutable after NewLookup returns and safe for concurrent use.
type Lookup struct {
	dimension Dimension
	order     []Category
	index     map[string]Category
}

// NewLookup compiles groups into a lookup. Category sets must be mutually
// exclusive: a raw value appearing in two groups is rejected.
func NewLookup(dim Dimension, groups []Group) (*Lookup, error) {
	l := &Lookup{
		dimension: dim,
		index:     make(map[string]Category),
	}
	seen := make(map[Category]bool, len(groups))
	for _, g := range groups {
		if g.Name == "" {
			return nil, fmt.Errorf("%s: %w", dim, ErrEmptyCategory)
		}
		cat := Category(g.Name)
		if cat == Other {
			return nil, fmt.Errorf("%s: %q: %w", dim, g.Name, ErrReservedCategory)
		}
		if seen[cat] {
			return nil, fmt.Errorf("%s: %q: %w", dim, g.Name, ErrDuplicateName)
		}
		seen[cat] = true
		l.order = append(l.order, cat)

		for _, v := range g.Values {
			if prev, ok := l.index[v]; ok && prev != cat {
				return nil, fmt.Errorf("%s: %q in %q and %q: %w", dim, v, prev, cat, ErrOverlap)
			}
			l.index[v] = cat
		}
	}
	return l, nil
}

func (l *Lookup) Dimension() Dimension {
	return l.dimension
}

// Classify returns the category whose value set contains raw, or Other.
// Matching is exact: no trimming and no case folding.
func (l *Lookup) Classify(raw string) Category {
	if cat, ok := l.index[raw]; ok {
		return cat
	}
	return Other
}

// Categories returns the declared categories in declaration order. Other is
// not included.
func (l *Lookup) Categories() []Category {
	out := make([]Category, len(l.order))
	copy(out, l.order)
	return out
}

// Ordered returns the declared categories followed by Other.
func (l *Lookup) Ordered() []Category {
	return append(l.Categories(), Other)
}

// Rank returns the display position of c: its declaration index, with Other
// and unknown categories sorted last.
func (l *Lookup) Rank(c Category) int {
	for i, cat := range l.order {
		if cat == c {
			return i
		}
	}
	return len(l.order)
}
