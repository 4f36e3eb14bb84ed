package question

// Truth is a tri-state boolean. TruthNull and TruthUndefined never compare
// equal to anything, themselves included.
type Truth int8

const (
	TruthNull Truth = iota
	TruthFalse
	TruthTrue
	// TruthUndefined stands for a stored index that is neither 0, 1 nor
	// empty.
	TruthUndefined
)

// undefinedIndex is what SetInputOption stores for TruthUndefined.
const undefinedIndex = -1

func TruthOf(b bool) Truth {
	if b {
		return TruthTrue
	}
	return TruthFalse
}

// Bool returns the boolean value; ok is false for null and undefined.
func (t Truth) Bool() (v, ok bool) {
	switch t {
	case TruthTrue:
		return true, true
	case TruthFalse:
		return false, true
	default:
		return false, false
	}
}

func (t Truth) String() string {
	switch t {
	case TruthNull:
		return "null"
	case TruthFalse:
		return "false"
	case TruthTrue:
		return "true"
	default:
		return "undefined"
	}
}

func truthOfIndex(i int, ok bool) Truth {
	switch {
	case !ok:
		return TruthNull
	case i == 0:
		return TruthFalse
	case i == 1:
		return TruthTrue
	default:
		return TruthUndefined
	}
}

func (t Truth) indices() []int {
	switch t {
	case TruthNull:
		return nil
	case TruthFalse:
		return []int{0}
	case TruthTrue:
		return []int{1}
	default:
		return []int{undefinedIndex}
	}
}

// TrueFalse is a single choice question with exactly two options: index 0
// holds the false text and index 1 the true text.
type TrueFalse struct {
	SingleChoice
}

func NewTrueFalse(title, trueTitle, falseTitle string, correct Truth, opts ...Option) *TrueFalse {
	return newTrueFalse(title, trueTitle, falseTitle, correct.indices(), opts)
}

func newTrueFalse(title, trueTitle, falseTitle string, correct []int, opts []Option) *TrueFalse {
	sc := newSingleChoice(KindTrueFalse, title, []string{falseTitle, trueTitle}, correct, opts)
	return &TrueFalse{SingleChoice: *sc}
}

func (q *TrueFalse) TrueTitle() string  { return q.choices[1] }
func (q *TrueFalse) FalseTitle() string { return q.choices[0] }

func (q *TrueFalse) CorrectOption() Truth { return truthOfIndex(q.CorrectChoiceIndex()) }
func (q *TrueFalse) InputOption() Truth   { return truthOfIndex(q.InputChoiceIndex()) }

func (q *TrueFalse) SetInputOption(t Truth) { q.input = t.indices() }

func (q *TrueFalse) TestCorrect() bool {
	in, ok := q.InputOption().Bool()
	if !ok {
		return false
	}
	want, ok := q.CorrectOption().Bool()
	return ok && in == want
}
