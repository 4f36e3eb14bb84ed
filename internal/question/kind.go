package question

import "fmt"

// Kind is the integer discriminant stored in a record's "type" field.
type Kind int

const (
	KindGeneric        Kind = 0 // abstract, never constructed
	KindSingleChoice   Kind = 1
	KindMultipleChoice Kind = 2
	KindFill           Kind = 3
	KindTrueFalse      Kind = 4
	KindOther          Kind = 5 // reserved
)

// KindTrueFalseLegacy is the discriminant older data used for true/false
// questions. It collides with KindFill and is only honored by Reconstruct
// when WithLegacyTrueFalse is given.
const KindTrueFalseLegacy Kind = 3

func (k Kind) String() string {
	switch k {
	case KindGeneric:
		return "generic"
	case KindSingleChoice:
		return "single_choice"
	case KindMultipleChoice:
		return "multiple_choice"
	case KindFill:
		return "fill"
	case KindTrueFalse:
		return "true_false"
	case KindOther:
		return "other"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}
