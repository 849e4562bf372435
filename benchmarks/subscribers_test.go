package benchmarks

import (
	"strconv"
	"testing"
	"time"

	"github.com/randalmurphal/exprbind/pkg/exprbind/observe"
)

type queue struct {
	tasks []observe.Task
}

func (q *queue) QueueMicroTask(t observe.Task) { q.tasks = append(q.tasks, t) }

func (q *queue) flush() {
	for len(q.tasks) > 0 {
		t := q.tasks[0]
		q.tasks = q.tasks[1:]
		t.Flush(time.Time{})
	}
}

type sink struct{ n int }

func (s *sink) Call(string, any, any) { s.n++ }

// BenchmarkCallSubscribers measures notification fan-out across the inline
// slots and the overflow snapshot.
func BenchmarkCallSubscribers(b *testing.B) {
	for _, n := range []int{1, 3, 10} {
		var c observe.SubscriberCollection
		c.SetSnapshotPool(observe.NewSnapshotPool())
		for i := 0; i < n; i++ {
			c.AddSubscriber("ctx", &sink{})
		}
		b.Run(strconv.Itoa(n), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				c.CallSubscribers(i, i-1)
			}
		})
	}
}

// BenchmarkSetterObserver_Coalesce measures many writes to one property
// flushed as a single notification.
func BenchmarkSetterObserver_Coalesce(b *testing.B) {
	q := &queue{}
	l := observe.NewObserverLocator(q)
	obj := observe.NewObjectFrom(map[string]any{"v": 0})
	cancel := observe.Watch(l.GetObserver(obj, "v"), func(any, any) {})
	defer cancel()

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		for j := 1; j <= 10; j++ {
			obj.Set("v", i*10+j)
		}
		q.flush()
	}
}
