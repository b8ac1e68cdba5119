package cotask

import "iter"

// A Sequence is a step sequence: a lazy, resumable series of suspension
// points produced by the body of a [Task].
//
// Next advances the sequence by one step and returns the value produced by
// that step. It returns ok == false once the sequence is exhausted.
// A non-nil error fails the step.
//
// Stop releases whatever the sequence holds. A task calls Stop on every
// sequence it stops advancing, whether or not the sequence is exhausted.
//
// The values a sequence produces are interpreted by the task running it:
//   - a [*ParallelHandle] registers a child that runs alongside the task;
//   - a [*Task] (or [*ResultTask]) is waited for, as if by its WaitEnd
//     method with throwIfStopped set;
//   - a Sequence, an [iter.Seq][any] or a func(func(any) bool) is run in
//     place, as if inlined;
//   - anything else is offered to the [Handler]s of the task's [Engine] and,
//     if no handler takes it, handed to the [Host] as a suspension point.
type Sequence interface {
	Next() (v any, ok bool, err error)
	Stop()
}

// SequenceFunc is a func that implements the [Sequence] interface.
// Its Stop method does nothing.
type SequenceFunc func() (v any, ok bool, err error)

// Next implements the [Sequence] interface.
func (f SequenceFunc) Next() (any, bool, error) { return f() }

// Stop implements the [Sequence] interface.
func (f SequenceFunc) Stop() {}

type pullSeq struct {
	seq  iter.Seq2[any, error]
	next func() (any, error, bool)
	stop func()
}

// FromSeq returns a [Sequence] that produces each value of seq.
//
// Caveat: seq runs in a goroutine of its own (see [iter.Pull]), which is
// released when the returned Sequence is exhausted or stopped.
func FromSeq(seq iter.Seq[any]) Sequence {
	if seq == nil {
		panic("cotask: FromSeq(nil)")
	}
	return &pullSeq{seq: func(yield func(any, error) bool) {
		for v := range seq {
			if !yield(v, nil) {
				return
			}
		}
	}}
}

// FromSeq2 is like [FromSeq] but a non-nil error produced by seq fails
// the step that produces it.
func FromSeq2(seq iter.Seq2[any, error]) Sequence {
	if seq == nil {
		panic("cotask: FromSeq2(nil)")
	}
	return &pullSeq{seq: seq}
}

func (s *pullSeq) Next() (any, bool, error) {
	if s.next == nil {
		if s.seq == nil {
			return nil, false, nil
		}
		s.next, s.stop = iter.Pull2(s.seq)
		s.seq = nil
	}
	v, err, ok := s.next()
	if !ok {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (s *pullSeq) Stop() {
	s.seq = nil
	if stop := s.stop; stop != nil {
		stop()
	}
}

// Values returns a [Sequence] that produces each of vs in order.
func Values(vs ...any) Sequence {
	i := 0
	return SequenceFunc(func() (any, bool, error) {
		if i == len(vs) {
			return nil, false, nil
		}
		v := vs[i]
		i++
		return v, true, nil
	})
}

// Ticks returns a [Sequence] that suspends n times, producing nil each time.
func Ticks(n int) Sequence {
	return SequenceFunc(func() (any, bool, error) {
		if n <= 0 {
			return nil, false, nil
		}
		n--
		return nil, true, nil
	})
}

// Do returns a [Sequence] that calls f, and then ends without suspending.
func Do(f func()) Sequence {
	return SequenceFunc(func() (any, bool, error) {
		if f != nil {
			f()
			f = nil
		}
		return nil, false, nil
	})
}

// While returns a [Sequence] that suspends, producing nil, for as long as
// cond reports true.
func While(cond func() bool) Sequence {
	return SequenceFunc(func() (any, bool, error) {
		return nil, cond(), nil
	})
}

// Block returns a [Sequence] that runs each of s in order.
// When one ends, Block runs another.
func Block(s ...Sequence) Sequence {
	vs := make([]any, len(s))
	for i, x := range s {
		if x == nil {
			panic("cotask: nil Sequence")
		}
		vs[i] = x
	}
	return Values(vs...)
}
