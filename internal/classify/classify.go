// Package classify sorts identifiers by which review sections introduce
// them.
package classify

import (
	"github.com/zjrosen/patchlens/internal/ident"
)

// Class is the category of an identifier that is absent from the original
// section.
type Class int

const (
	DevOnly Class = iota
	SuggOnly
	Both
)

// Classes lists every class in a stable order.
var Classes = []Class{DevOnly, SuggOnly, Both}

func (c Class) String() string {
	switch c {
	case DevOnly:
		return "dev_only"
	case SuggOnly:
		return "sugg_only"
	case Both:
		return "both"
	default:
		return "unknown"
	}
}

// Classification holds three pairwise disjoint identifier sets, none of
// which shares a member with the original section.
type Classification struct {
	DevOnly  ident.Set
	SuggOnly ident.Set
	Both     ident.Set
}

// Classify computes the classification of the developer and suggestion
// identifiers relative to the original ones.
func Classify(orig, sugg, dev ident.Set) Classification {
	return Classification{
		DevOnly:  dev.Minus(orig, sugg),
		SuggOnly: sugg.Minus(orig, dev),
		Both:     dev.Minus(orig).Intersect(sugg),
	}
}

// Set returns the identifiers in class c.
func (c Classification) Set(class Class) ident.Set {
	switch class {
	case DevOnly:
		return c.DevOnly
	case SuggOnly:
		return c.SuggOnly
	case Both:
		return c.Both
	default:
		return nil
	}
}

// Words returns the identifiers in class c, sorted.
func (c Classification) Words(class Class) []string {
	return c.Set(class).Sorted()
}

// ClassOf reports which class id belongs to, if any.
func (c Classification) ClassOf(id string) (Class, bool) {
	for _, class := range Classes {
		if c.Set(class).Has(id) {
			return class, true
		}
	}
	return 0, false
}

// Len returns the number of classified identifiers.
func (c Classification) Len() int {
	return c.DevOnly.Len() + c.SuggOnly.Len() + c.Both.Len()
}
