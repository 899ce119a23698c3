// Kahn's-algorithm scheduler. The ready queue is a container/heap priority
// queue ordering graph nodes by a stable rank (R-nodes before M-nodes, then
// ascending numeric id) so that scheduling output is deterministic across
// runs on the same input.

package engine

import (
	"container/heap"
	"sort"
	"strconv"
)

// nodeRank gives every node a deterministic sort key: R-nodes before
// M-nodes, then ascending numeric id.
func nodeRank(id string) (kind int, num int) {
	if len(id) == 0 {
		return 2, 0
	}
	if id[0] == 'R' {
		kind = 0
	} else if id[0] == 'M' {
		kind = 1
	} else {
		kind = 2
	}
	n, _ := strconv.Atoi(id[1:])
	return kind, n
}

// readyNode is one entry in the scheduler's ready queue.
type readyNode struct {
	id    string
	index int // required by heap.Interface
}

// readyQueue is a min-heap over readyNode ordered by nodeRank, mirroring
// the teacher's EventQueueCore priority-queue shape.
type readyQueue struct {
	items []*readyNode
}

func (q readyQueue) Len() int { return len(q.items) }

func (q readyQueue) Less(i, j int) bool {
	ki, ni := nodeRank(q.items[i].id)
	kj, nj := nodeRank(q.items[j].id)
	if ki != kj {
		return ki < kj
	}
	return ni < nj
}

func (q readyQueue) Swap(i, j int) {
	q.items[i], q.items[j] = q.items[j], q.items[i]
	q.items[i].index = i
	q.items[j].index = j
}

func (q *readyQueue) Push(x interface{}) {
	n := len(q.items)
	item := x.(*readyNode)
	item.index = n
	q.items = append(q.items, item)
}

func (q *readyQueue) Pop() interface{} {
	old := q.items
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	q.items = old[:n-1]
	return item
}

func newReadyQueue() *readyQueue {
	q := &readyQueue{}
	heap.Init(q)
	return q
}

func (q *readyQueue) add(id string) {
	heap.Push(q, &readyNode{id: id})
}

func (q *readyQueue) take() string {
	return heap.Pop(q).(*readyNode).id
}

// kahnSchedule runs Kahn's algorithm over deps, excluding edges internal to
// a single cluster (those are the SHIFT-mediated "cycles" the cluster
// evaluator handles period-by-period, not structural dependencies).
// Returns the scheduling order plus any residual nodes left over from a
// true (non-SHIFT) cycle, which are appended with a warning rather than
// failing the run.
func kahnSchedule(nodeIDs []string, deps map[string]map[string]bool, clusterOf map[string]int) (order []string, residual []string) {
	filtered := map[string]map[string]bool{}
	dependents := map[string][]string{}
	remaining := map[string]int{}

	for _, id := range nodeIDs {
		filtered[id] = map[string]bool{}
	}
	for id, ds := range deps {
		for dep := range ds {
			if c1, ok1 := clusterOf[id]; ok1 {
				if c2, ok2 := clusterOf[dep]; ok2 && c1 == c2 {
					continue // cluster-internal edge, excluded from Kahn's
				}
			}
			filtered[id][dep] = true
		}
	}
	for id := range filtered {
		remaining[id] = len(filtered[id])
		for dep := range filtered[id] {
			dependents[dep] = append(dependents[dep], id)
		}
	}

	q := newReadyQueue()
	for _, id := range nodeIDs {
		if remaining[id] == 0 {
			q.add(id)
		}
	}

	processed := map[string]bool{}
	for q.Len() > 0 {
		id := q.take()
		if processed[id] {
			continue
		}
		processed[id] = true
		order = append(order, id)
		deps := append([]string{}, dependents[id]...)
		sort.Strings(deps)
		for _, dep := range deps {
			remaining[dep]--
			if remaining[dep] == 0 {
				q.add(dep)
			}
		}
	}

	for _, id := range nodeIDs {
		if !processed[id] {
			residual = append(residual, id)
		}
	}
	sort.Strings(residual)
	return order, residual
}
