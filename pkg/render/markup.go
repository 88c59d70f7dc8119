package render

// Markup is the result of mounting a node: either a complete string or a
// lazy sequence of further chunks. Exactly one of the two is set.
type Markup struct {
	text string
	seq  *Sequence
}

// Atomic returns markup that needs no further suspension.
func Atomic(s string) Markup {
	return Markup{text: s}
}

// Lazy returns markup whose chunks are produced on demand by seq.
func Lazy(seq *Sequence) Markup {
	return Markup{seq: seq}
}

// IsLazy reports whether chunks are still pending.
func (m Markup) IsLazy() bool {
	return m.seq != nil
}

// String returns the text of atomic markup. It is empty for lazy markup.
func (m Markup) String() string {
	return m.text
}

// Sequence returns the pending chunks of lazy markup, or nil.
func (m Markup) Sequence() *Sequence {
	return m.seq
}

// frame is one level of a lazy sequence. Each step yields a chunk, a nested
// sequence to run before this frame is stepped again, or reports that the
// frame is exhausted.
type frame interface {
	step() (chunk string, sub *Sequence, done bool, err error)
}

// Sequence is a resumable, pull-driven stream of markup chunks.
//
// Nested lazy results are spliced onto a single work stack instead of being
// delegated through, so pulling a chunk costs the same at any tree depth and
// no goroutine or call stack is held between pulls.
type Sequence struct {
	stack []frame
	err   error
}

func newSequence(f frame) *Sequence {
	return &Sequence{stack: []frame{f}}
}

// Next returns the next non-empty chunk. ok is false once the sequence is
// exhausted. After an error the sequence is dead and keeps returning it.
func (s *Sequence) Next() (chunk string, ok bool, err error) {
	if s.err != nil {
		return "", false, s.err
	}
	for len(s.stack) > 0 {
		top := s.stack[len(s.stack)-1]
		chunk, sub, done, err := top.step()
		switch {
		case err != nil:
			s.stack = nil
			s.err = err
			return "", false, err
		case done:
			s.stack[len(s.stack)-1] = nil
			s.stack = s.stack[:len(s.stack)-1]
		case sub != nil:
			s.stack = append(s.stack, sub.stack...)
			sub.stack = nil
		case chunk != "":
			return chunk, true, nil
		}
	}
	return "", false, nil
}

// Done reports whether the sequence has nothing left to produce.
func (s *Sequence) Done() bool {
	return len(s.stack) == 0
}

// drain pulls every remaining chunk into write.
func (s *Sequence) drain(write func(string)) error {
	for {
		chunk, ok, err := s.Next()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		write(chunk)
	}
}

// hostFrame emits an element whose content is still lazy: the open tag with
// its first content chunk, then the rest of the content, then the close tag.
type hostFrame struct {
	state int
	head  string
	body  *Sequence
	tail  string
}

const (
	stateHead = iota
	stateBody
	stateTail
	stateDone
)

func (f *hostFrame) step() (string, *Sequence, bool, error) {
	switch f.state {
	case stateHead:
		f.state = stateBody
		return f.head, nil, false, nil
	case stateBody:
		f.state = stateTail
		body := f.body
		f.body = nil
		return "", body, false, nil
	case stateTail:
		f.state = stateDone
		return f.tail, nil, false, nil
	default:
		return "", nil, true, nil
	}
}
