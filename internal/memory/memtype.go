package memory

// MemTypeKind is the closed classification of a DIMM's memory type.
type MemTypeKind string

const (
	MemTypeDDR5    MemTypeKind = "DDR5"
	MemTypeDDR4    MemTypeKind = "DDR4"
	MemTypeDDR3    MemTypeKind = "DDR3"
	MemTypeUnknown MemTypeKind = "Unknown"
	MemTypeOther   MemTypeKind = "Other"
)

// MemType classifies a DIMM's raw type string. Raw is populated only for
// the Other kind and carries the unrecognized literal verbatim.
type MemType struct {
	Kind MemTypeKind `json:"kind"`
	Raw  string      `json:"raw,omitempty"`
}

// ClassifyMemType maps a raw type string to its MemType. Matching is
// exact and case-sensitive; every input maps to exactly one variant.
// The literal "Unknown" is the Unknown kind, same as absent data;
// anything else unrecognized is preserved under Other.
func ClassifyMemType(raw string) MemType {
	switch raw {
	case string(MemTypeDDR5):
		return MemType{Kind: MemTypeDDR5}
	case string(MemTypeDDR4):
		return MemType{Kind: MemTypeDDR4}
	case string(MemTypeDDR3):
		return MemType{Kind: MemTypeDDR3}
	case string(MemTypeUnknown):
		return MemType{Kind: MemTypeUnknown}
	default:
		return MemType{Kind: MemTypeOther, Raw: raw}
	}
}

// String renders the type for display: the raw literal for Other, the
// kind name otherwise.
func (t MemType) String() string {
	if t.Kind == MemTypeOther {
		return t.Raw
	}
	if t.Kind == "" {
		return string(MemTypeUnknown)
	}
	return string(t.Kind)
}
