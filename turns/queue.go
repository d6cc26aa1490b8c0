package turns

import (
	"github.com/emirpasic/gods/queues/priorityqueue"
	"github.com/emirpasic/gods/utils"
)

// entry is a queued node together with the depth it was queued at. The depth
// of a queued node never changes: a node leaves its queue before its link is replaced.
type entry struct {
	depth int
	node  handle
}

func byDepth(a, b interface{}) int {
	x, y := a.(entry), b.(entry)
	if c := utils.IntComparator(x.depth, y.depth); c != 0 {
		return c
	}
	// older nodes first among equals
	return utils.IntComparator(int(x.node), int(y.node))
}

// frontier is a queue of nodes, shallowest first.
type frontier struct {
	q *priorityqueue.Queue
}

func newFrontier() frontier { return frontier{q: priorityqueue.NewWith(byDepth)} }

func (f frontier) push(depth int, h handle) { f.q.Enqueue(entry{depth: depth, node: h}) }

func (f frontier) pop() (entry, bool) {
	v, ok := f.q.Dequeue()
	if !ok {
		return entry{}, false
	}
	return v.(entry), true
}

func (f frontier) peek() (entry, bool) {
	v, ok := f.q.Peek()
	if !ok {
		return entry{}, false
	}
	return v.(entry), true
}

func (f frontier) len() int { return f.q.Size() }

func (f frontier) clear() { f.q.Clear() }

func (f frontier) entries() []entry {
	vals := f.q.Values()
	retVal := make([]entry, 0, len(vals))
	for _, v := range vals {
		retVal = append(retVal, v.(entry))
	}
	return retVal
}
