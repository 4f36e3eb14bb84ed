// Package question models quiz questions, the user's answer to them and the
// rules deciding whether that answer is correct.
package question

// Question is the capability set shared by every question kind.
type Question interface {
	Kind() Kind
	ID() string
	Title() string
	Tag() (string, bool)
	ImageURLs() []string
	Score() (float64, bool)

	// Answer is the canonical, human readable form of the correct answer.
	Answer() string
	// InputAnswer is the canonical form of the user's answer; ok is false
	// while nothing has been entered.
	InputAnswer() (s string, ok bool)
	SetInputAnswer(s string)
	ResetInputAnswer()

	SetUpdateListener(l UpdateListener)
	ClearUpdateListener()

	TestCorrect() bool
	ToRecord() Record
}

// UpdateListener may rewrite an input answer before it is stored. A nil
// pointer means "no answer".
type UpdateListener interface {
	OnUpdate(oldValue, newValue *string) *string
}

// UpdateFunc adapts a plain function to UpdateListener.
type UpdateFunc func(oldValue, newValue *string) *string

func (f UpdateFunc) OnUpdate(oldValue, newValue *string) *string { return f(oldValue, newValue) }

// Option configures the immutable metadata of a question at construction.
type Option func(*base)

func WithID(id string) Option { return func(b *base) { b.id = id } }

func WithTag(tag string) Option {
	return func(b *base) { b.tag = &tag }
}

func WithImageURLs(urls ...string) Option {
	return func(b *base) { b.imageURLs = append([]string(nil), urls...) }
}

func WithScore(score float64) Option {
	return func(b *base) { b.score = &score }
}

// base holds the fields every kind shares.
type base struct {
	kind      Kind
	id        string
	title     string
	tag       *string
	imageURLs []string
	score     *float64

	listener UpdateListener
}

func newBase(kind Kind, title string, opts []Option) base {
	b := base{kind: kind, title: title}
	for _, o := range opts {
		if o != nil {
			o(&b)
		}
	}
	return b
}

func (b *base) Kind() Kind    { return b.kind }
func (b *base) ID() string    { return b.id }
func (b *base) Title() string { return b.title }

func (b *base) ImageURLs() []string {
	if b.imageURLs == nil {
		return nil
	}
	return append([]string(nil), b.imageURLs...)
}

func (b *base) Tag() (string, bool) {
	if b.tag == nil {
		return "", false
	}
	return *b.tag, true
}

func (b *base) Score() (float64, bool) {
	if b.score == nil {
		return 0, false
	}
	return *b.score, true
}

func (b *base) SetUpdateListener(l UpdateListener) { b.listener = l }

// ClearUpdateListener detaches the listener; stored input is left as is.
func (b *base) ClearUpdateListener() { b.listener = nil }

// update runs the listener, if any, over a proposed input value.
func (b *base) update(old, proposed *string) *string {
	if b.listener == nil {
		return proposed
	}
	return b.listener.OnUpdate(old, proposed)
}

func (b *base) record(answer string, input *string) Record {
	return Record{
		Type:        b.kind,
		Title:       strPtr(b.title),
		Answer:      strPtr(answer),
		InputAnswer: input,
		Tag:         cloneStr(b.tag),
	}
}

func strPtr(s string) *string { return &s }

func cloneStr(p *string) *string {
	if p == nil {
		return nil
	}
	s := *p
	return &s
}
