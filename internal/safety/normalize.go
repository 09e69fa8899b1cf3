package safety

import "strings"

// aliasClass groups differently-spelled labels that denote the same
// underlying limitation. Normalizing any member yields the whole class.
type aliasClass struct {
	canonical string
	aliases   []string
}

// contraindicationClasses is the known equivalence classes, in lookup order.
// Order matters: a label appearing in more than one class (e.g. "high-impact"
// is both an alias of knee-stress and its own canonical id) resolves to the
// first class that contains it.
var contraindicationClasses = []aliasClass{
	{
		canonical: "diastasis-risk",
		aliases:   []string{"diastasis", "diastasis-recti", "core-pressure", "abdominal-separation"},
	},
	{
		canonical: "knee-stress",
		aliases:   []string{"knee", "knee-impact", "high-impact", "knee-pain", "chondromalacia", "knee-chondromalacia"},
	},
	{
		canonical: "back-strain",
		aliases:   []string{"back", "lower-back", "spine-compression"},
	},
	{
		canonical: "high-impact",
		aliases:   []string{"impact", "jumping", "plyometric"},
	},
}

// Normalize expands raw constraint labels into the full set of equivalent
// labels: each input is trimmed and lower-cased, always included itself, and
// if it names or aliases a known class the entire class is unioned in.
//
// Normalization is total and idempotent; unknown labels pass through as
// singletons. The result has set semantics, order is irrelevant.
func Normalize(labels []string) map[string]struct{} {
	normalized := make(map[string]struct{}, len(labels))

	for _, label := range labels {
		trimmed := strings.ToLower(strings.TrimSpace(label))
		if trimmed == "" {
			continue
		}
		normalized[trimmed] = struct{}{}

		if class, ok := lookupClass(trimmed); ok {
			normalized[class.canonical] = struct{}{}
			for _, alias := range class.aliases {
				normalized[alias] = struct{}{}
			}
		}
	}

	return normalized
}

// lookupClass finds the first class whose canonical id or alias list contains
// the given (already trimmed/lower-cased) label.
func lookupClass(label string) (aliasClass, bool) {
	for _, class := range contraindicationClasses {
		if class.canonical == label {
			return class, true
		}
		for _, alias := range class.aliases {
			if alias == label {
				return class, true
			}
		}
	}
	return aliasClass{}, false
}

// intersect returns the members of a that also appear in b, sorted order not
// guaranteed by the map walk, so callers needing determinism sort the result.
func intersect(a, b map[string]struct{}) []string {
	var shared []string
	for label := range a {
		if _, ok := b[label]; ok {
			shared = append(shared, label)
		}
	}
	return shared
}
