package concept

import "fmt"

// Kind is the root category of a schema type.
type Kind int

const (
	KindEntity Kind = iota + 1
	KindRelation
	KindAttribute
)

// Kinds lists every kind in declaration order.
var Kinds = []Kind{KindEntity, KindRelation, KindAttribute}

// String returns the root label of the kind ("entity", "relation", "attribute").
func (k Kind) String() string {
	switch k {
	case KindEntity:
		return "entity"
	case KindRelation:
		return "relation"
	case KindAttribute:
		return "attribute"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// RootLabel is the label of the built-in root type of this kind.
func (k Kind) RootLabel() string {
	return k.String()
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	return k >= KindEntity && k <= KindAttribute
}

// ParseKind converts a root label into a Kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown kind %q: must be one of entity, relation, attribute", s)
}
