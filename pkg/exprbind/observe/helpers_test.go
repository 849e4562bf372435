package observe

import "time"

type testQueue struct {
	tasks []Task
}

func (q *testQueue) QueueMicroTask(t Task) {
	q.tasks = append(q.tasks, t)
}

func (q *testQueue) flush() {
	for len(q.tasks) > 0 {
		t := q.tasks[0]
		q.tasks = q.tasks[1:]
		t.Flush(time.Now())
	}
}

type testFrames struct {
	callbacks []func(time.Time)
}

func (f *testFrames) RequestFrame(cb func(time.Time)) {
	f.callbacks = append(f.callbacks, cb)
}

func (f *testFrames) run(at time.Time) {
	cbs := f.callbacks
	f.callbacks = nil
	for _, cb := range cbs {
		cb(at)
	}
}

type call struct {
	context  string
	newValue any
	oldValue any
}

type recorder struct {
	calls []call
	onCall func()
}

func (r *recorder) Call(context string, newValue, oldValue any) {
	r.calls = append(r.calls, call{context: context, newValue: newValue, oldValue: oldValue})
	if r.onCall != nil {
		r.onCall()
	}
}
