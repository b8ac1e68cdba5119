package cotask_test

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/gomega"

	"github.com/b97tsk/cotask"
)

func TestLoop(t *testing.T) {
	t.Run("Post", func(t *testing.T) {
		g := NewWithT(t)
		e, loop := newEngine()

		var task *cotask.Task
		loop.Post(func() { task = e.Start(cotask.Ticks(1)) })
		loop.Post(nil)

		g.Expect(task).To(BeNil())

		loop.Tick()
		g.Expect(task).NotTo(BeNil())
		g.Expect(task.Running()).To(BeTrue())

		loop.Tick()
		g.Expect(task.Status()).To(Equal(cotask.Finished))
		g.Expect(loop.Ticks()).To(Equal(uint64(2)))
	})
	t.Run("BeganDuringTick", func(t *testing.T) {
		g := NewWithT(t)
		e, loop := newEngine()

		var late *cotask.Task
		e.Start(cotask.Values(nil, cotask.Do(func() { late = e.Start(cotask.Ticks(1)) })))

		loop.Tick()
		g.Expect(late.Running()).To(BeTrue())
		g.Expect(loop.Len()).To(Equal(1))

		loop.Tick()
		g.Expect(late.Status()).To(Equal(cotask.Finished))
	})
	t.Run("CancelAll", func(t *testing.T) {
		g := NewWithT(t)
		e, loop := newEngine()

		task := e.Start(cotask.Ticks(1))
		loop.CancelAll()
		tick(loop, 2)

		// The task is abandoned, not ended.
		g.Expect(task.Running()).To(BeTrue())
		g.Expect(loop.Len()).To(Equal(0))
	})
	t.Run("Run", func(t *testing.T) {
		g := NewWithT(t)
		e, loop := newEngine()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		var task *cotask.Task
		go loop.Post(func() {
			task = e.Start(cotask.Ticks(3))
			task.OnComplete(cancel)
		})

		err := loop.Run(ctx, time.Millisecond)

		g.Expect(err).To(MatchError(context.Canceled))
		g.Expect(task.Status()).To(Equal(cotask.Finished))
		g.Expect(loop.Ticks()).To(BeNumerically(">=", 4))
	})
}

func TestLoopLenConcurrent(t *testing.T) {
	g := NewWithT(t)
	e, loop := newEngine()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var task *cotask.Task
	loop.Post(func() {
		task = e.Start(cotask.Ticks(20))
		task.OnComplete(cancel)
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for ctx.Err() == nil {
			_ = loop.Len()
		}
	}()

	err := loop.Run(ctx, time.Millisecond)
	<-done

	g.Expect(err).To(MatchError(context.Canceled))
	g.Expect(task.Status()).To(Equal(cotask.Finished))
	g.Expect(loop.Len()).To(Equal(0))
}

func TestListeners(t *testing.T) {
	g := NewWithT(t)

	var l cotask.Listeners[func(int)]
	var got []int

	id1 := l.Add(func(v int) { got = append(got, v) })
	id2 := l.Add(func(v int) { got = append(got, v*10) })
	g.Expect(l.Add(nil)).To(BeZero())
	g.Expect(l.Len()).To(Equal(2))

	g.Expect(l.Remove(id1)).To(BeTrue())
	g.Expect(l.Remove(id1)).To(BeFalse())
	g.Expect(l.Remove(0)).To(BeFalse())
	g.Expect(l.Len()).To(Equal(1))

	id3 := l.Set(func(v int) { got = append(got, -v) })
	g.Expect(id3).NotTo(Equal(id2))
	g.Expect(l.Remove(id2)).To(BeFalse())
	g.Expect(l.Len()).To(Equal(1))

	l.Clear()
	g.Expect(l.Len()).To(Equal(0))
	g.Expect(got).To(BeEmpty())
}

func TestEvents(t *testing.T) {
	t.Run("Set", func(t *testing.T) {
		g := NewWithT(t)
		e, _ := newEngine()

		var got []string
		task := e.NewTask().
			OnComplete(func() { got = append(got, "first") }).
			OnComplete(func() { got = append(got, "second") })
		task.Events().Complete.Set(func() { got = append(got, "only") })

		task.Start(forever()).Stop()

		g.Expect(got).To(Equal([]string{"only"}))
	})
	t.Run("AddedDuringNotification", func(t *testing.T) {
		g := NewWithT(t)
		e, _ := newEngine()

		var got []string
		task := e.NewTask()
		task.OnComplete(func() {
			got = append(got, "outer")
			task.OnComplete(func() { got = append(got, "inner") })
		})

		task.Start(forever()).Stop()
		g.Expect(got).To(Equal([]string{"outer"}))

		task.Start(forever()).Stop()
		g.Expect(got).To(Equal([]string{"outer", "outer", "inner"}))
	})
	t.Run("RemovedDuringNotification", func(t *testing.T) {
		g := NewWithT(t)
		e, _ := newEngine()

		var got []string
		var id cotask.ListenerID
		task := e.NewTask()
		task.OnStopped(func() {
			got = append(got, "first")
			task.Events().Stopped.Remove(id)
		})
		id = task.Events().Stopped.Add(func() { got = append(got, "second") })

		task.Start(forever()).Stop()
		task.Start(forever()).Stop()

		g.Expect(got).To(Equal([]string{"first", "second", "first"}))
	})
}

func TestSequences(t *testing.T) {
	t.Run("While", func(t *testing.T) {
		g := NewWithT(t)
		e, loop := newEngine()

		n := 0
		task := e.Start(cotask.While(func() bool { n++; return n < 3 }))

		loop.Tick()
		g.Expect(task.Running()).To(BeTrue())

		loop.Tick()
		g.Expect(task.Status()).To(Equal(cotask.Finished))
	})
	t.Run("FromSeqStoppedEarly", func(t *testing.T) {
		g := NewWithT(t)
		e, loop := newEngine()

		var cleanedUp bool
		task := e.Start(cotask.FromSeq(func(yield func(any) bool) {
			defer func() { cleanedUp = true }()
			for {
				if !yield(nil) {
					return
				}
			}
		}))

		loop.Tick()
		task.Stop()

		g.Expect(cleanedUp).To(BeTrue())
	})
	t.Run("StoppedInnermostFirst", func(t *testing.T) {
		g := NewWithT(t)
		e, _ := newEngine()

		var order []string
		seq := func(name string, inner any) cotask.Sequence {
			return cotask.FromSeq(func(yield func(any) bool) {
				defer func() { order = append(order, name) }()
				yield(inner)
			})
		}

		task := e.Start(seq("outer", seq("middle", seq("inner", nil))))
		task.Stop()

		g.Expect(order).To(Equal([]string{"inner", "middle", "outer"}))
	})
	t.Run("NilArguments", func(t *testing.T) {
		g := NewWithT(t)
		e, _ := newEngine()

		g.Expect(func() { cotask.FromSeq(nil) }).To(Panic())
		g.Expect(func() { cotask.FromSeq2(nil) }).To(Panic())
		g.Expect(func() { cotask.Block(cotask.Ticks(1), nil) }).To(Panic())
		g.Expect(func() { e.Start(nil) }).To(PanicWith("cotask: Start(nil)"))
	})
}
