package cotask

import (
	"errors"
	"iter"
	"slices"
)

// A routine drives one run of a Task.
//
// Nested sequences are flattened on an explicit stack: the body at
// the bottom, the innermost running sequence at the top. Pausing or
// stopping a task never has to unwind anything but this stack.
// Once the stack is empty the body is exhausted, and the routine joins
// the parallel children of the task one at a time, oldest first.
type routine struct {
	task     *Task
	stack    []Sequence
	stepping bool
	closing  bool
}

func (r *routine) live() bool {
	return r.task.run == r && r.task.status == Running
}

// Step implements the [Routine] interface.
func (r *routine) Step() (v any, ok bool) {
	if r.stepping {
		panic("cotask: routine stepped recursively")
	}
	if !r.live() {
		r.close()
		return nil, false
	}

	r.stepping = true
	v, ok = r.step()
	r.stepping = false

	if !ok || !r.live() || r.closing {
		r.closing = false
		r.close()
		return nil, false
	}

	return v, true
}

// close stops every sequence on the stack, innermost first.
// A routine in the middle of a step closes itself once the step is over.
func (r *routine) close() {
	if r.stepping {
		r.closing = true
		return
	}
	stack := r.stack
	r.stack = nil
	for _, s := range slices.Backward(stack) {
		s.Stop()
	}
}

func (r *routine) push(s Sequence) {
	r.stack = append(r.stack, s)
}

func (r *routine) pop() {
	i := len(r.stack) - 1
	s := r.stack[i]
	r.stack[i] = nil
	r.stack = r.stack[:i]
	s.Stop()
}

func (r *routine) step() (any, bool) {
	t := r.task

	for r.live() {
		if len(r.stack) == 0 {
			if c := t.firstActiveChild(); c != nil {
				r.push(c.WaitEnd(false))
				continue
			}
			if t.stoppedByChild() {
				t.Stop()
				return nil, false
			}
			t.status = Finished
			t.detach()
			t.finish()
			return nil, false
		}

		if t.paused {
			return nil, true
		}

		v, ok, err := tryNext(r.stack[len(r.stack)-1])

		if !r.live() {
			return nil, false
		}

		if err != nil {
			if errors.Is(err, ErrStopped) {
				t.Stop()
			} else {
				t.fail(err)
			}
			return nil, false
		}

		if !ok {
			r.pop()
			continue
		}

		switch x := v.(type) {
		case *ParallelHandle:
			t.addChild(x)
		case interface{ base() *Task }:
			r.push(x.base().WaitEnd(true))
		case Sequence:
			r.push(x)
		case iter.Seq[any]:
			r.push(FromSeq(x))
		case func(func(any) bool):
			r.push(FromSeq(x))
		default:
			h := t.eng().handlerFor(v)
			if h == nil {
				return v, true
			}
			if err := h.Handle(t, v); err != nil {
				t.fail(err)
				return nil, false
			}
			if !r.live() {
				return nil, false
			}
			if v, ok := h.Forward(); ok {
				return v, true
			}
		}
	}

	return nil, false
}
