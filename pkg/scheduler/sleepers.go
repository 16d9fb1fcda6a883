package scheduler

import (
	"container/heap"

	"github.com/henry232323/saffron-lang/pkg/vm"
)

// sleeper is a task parked until its deadline passes.
type sleeper struct {
	task     *vm.Task
	deadline float64
	seq      int
}

// sleeperQueue is a min-heap keyed by deadline. The insertion sequence
// number breaks ties so tasks with identical deadlines wake in insertion
// order.
type sleeperQueue struct {
	items []*sleeper
}

func (q *sleeperQueue) Len() int { return len(q.items) }

func (q *sleeperQueue) Less(i, j int) bool {
	if q.items[i].deadline != q.items[j].deadline {
		return q.items[i].deadline < q.items[j].deadline
	}
	return q.items[i].seq < q.items[j].seq
}

func (q *sleeperQueue) Swap(i, j int) {
	q.items[i], q.items[j] = q.items[j], q.items[i]
}

func (q *sleeperQueue) Push(x interface{}) {
	q.items = append(q.items, x.(*sleeper))
}

func (q *sleeperQueue) Pop() interface{} {
	old := q.items
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	q.items = old[:n-1]
	return item
}

func (q *sleeperQueue) push(item *sleeper) { heap.Push(q, item) }

func (q *sleeperQueue) peek() *sleeper {
	if len(q.items) == 0 {
		return nil
	}
	return q.items[0]
}

func (q *sleeperQueue) pop() *sleeper { return heap.Pop(q).(*sleeper) }
