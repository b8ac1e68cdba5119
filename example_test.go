package cotask_test

import (
	"fmt"

	"github.com/b97tsk/cotask"
)

func Example() {
	// Create a loop to drive tasks, and an engine to run them on it.
	var loop cotask.Loop
	e := cotask.NewEngine(&loop)

	// A task's body runs up to its first suspension point right away,
	// and then one step further on every tick.
	task := e.Start(cotask.FromSeq(func(yield func(any) bool) {
		for i := 1; i <= 3; i++ {
			fmt.Println("step", i)
			if !yield(nil) {
				return
			}
		}
	}))
	task.OnSuccess(func() { fmt.Println("done at tick", loop.Ticks()) })

	for task.Running() {
		loop.Tick()
	}

	// Output:
	// step 1
	// step 2
	// step 3
	// done at tick 3
}

func Example_nested() {
	var loop cotask.Loop
	e := cotask.NewEngine(&loop)

	say := func(s string) cotask.Sequence {
		return cotask.Do(func() { fmt.Println(s, "at tick", loop.Ticks()) })
	}

	// Nested sequences run one after another, as if inlined.
	task := e.Start(cotask.Block(
		cotask.Block(cotask.Ticks(2), say("A")),
		cotask.Block(cotask.Ticks(3), say("B")),
	))

	for task.Running() {
		loop.Tick()
	}

	// Output:
	// A at tick 2
	// B at tick 5
}

func Example_parallel() {
	var loop cotask.Loop
	e := cotask.NewEngine(&loop)

	worker := func(name string, n int) cotask.Sequence {
		return cotask.Block(cotask.Ticks(n), cotask.Do(func() {
			fmt.Println(name, "done at tick", loop.Ticks())
		}))
	}

	// Parallel children run alongside each other. Their parent ends once
	// its own body and every child are done.
	task := e.Start(cotask.Values(
		e.Parallel(worker("a", 3), false),
		e.Parallel(worker("b", 2), false),
	))
	task.OnSuccess(func() { fmt.Println("all done at tick", loop.Ticks()) })

	for task.Running() {
		loop.Tick()
	}

	// Output:
	// b done at tick 2
	// a done at tick 3
	// all done at tick 3
}

func Example_resultTask() {
	var loop cotask.Loop
	e := cotask.NewEngine(&loop)

	rt := cotask.NewResultTask[int](e).OnResult(func(v int) {
		fmt.Println("result", v, "at tick", loop.Ticks())
	})

	// Producing a result ends the task; what follows never runs.
	rt.Start(cotask.Block(
		cotask.Ticks(2),
		cotask.Values(cotask.Return(123)),
		cotask.Do(func() { fmt.Println("unreachable") }),
	))

	for rt.Running() {
		loop.Tick()
	}

	fmt.Println(rt.Status())

	// Output:
	// result 123 at tick 2
	// finished
}

func Example_timeout() {
	var loop cotask.Loop
	e := cotask.NewEngine(&loop)

	work := e.Start(cotask.Block(cotask.Ticks(10), cotask.Do(func() { fmt.Println("work done") })))
	work.OnStopped(func() { fmt.Println("work stopped at tick", loop.Ticks()) })

	// A timeout is just another task that stops the work after a while.
	timeout := e.Start(cotask.Block(cotask.Ticks(3), cotask.Do(work.Stop)))
	work.OnComplete(timeout.Stop)

	for work.Running() {
		loop.Tick()
	}

	fmt.Println(work.Status(), work.Err())

	// Output:
	// work stopped at tick 3
	// interrupted <nil>
}

type printHandler struct{}

func (printHandler) CanHandle(v any) bool {
	_, ok := v.(string)
	return ok
}

func (printHandler) Handle(t *cotask.Task, v any) error {
	fmt.Println(v)
	return nil
}

func (printHandler) Forward() (any, bool) {
	return nil, true
}

func ExampleEngine_AddHandler() {
	var loop cotask.Loop
	e := cotask.NewEngine(&loop)

	// Strings produced by a body are now printed, one per tick.
	e.AddHandler(printHandler{})

	task := e.Start(cotask.Values("hello", "world"))

	for task.Running() {
		loop.Tick()
	}

	// Output:
	// hello
	// world
}

func ExampleInit() {
	var loop cotask.Loop
	cotask.Init(&loop)

	task := cotask.Start(cotask.Ticks(10))
	loop.Tick()
	fmt.Println(task.Status())

	// Deinit stops every task on the default engine.
	cotask.Deinit()
	fmt.Println(task.Status())

	// Output:
	// running
	// interrupted
}
