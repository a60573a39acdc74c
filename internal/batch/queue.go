package batch

import (
	"fmt"
	"sync"

	"github.com/kartikbazzad/coldb/internal/command"
	"github.com/kartikbazzad/coldb/internal/metrics"
)

// Node wraps one pending range select plus the handle its result will be
// published under. Nodes are linked in arrival order behind a sentinel
// head, so head == tail means empty.
type Node struct {
	Op     command.SelectRange
	Handle string
	next   *Node
}

// Queue defers range selects so overlapping ranges on the same column can
// later be coalesced into fewer scans. Today it only appends and drains in
// stable FIFO order; the coalescing pass is future work and the recorded
// range on each node is what it will key on.
//
// An operator is either enqueued or executed, never both: the executor
// enqueues selects while a session is batching and only Drain hands them
// back for execution.
type Queue struct {
	mu     sync.Mutex
	head   *Node // sentinel
	tail   *Node
	length int
}

func New() *Queue {
	sentinel := &Node{}
	return &Queue{
		head: sentinel,
		tail: sentinel,
	}
}

// Enqueue appends in O(1).
func (q *Queue) Enqueue(op command.SelectRange, handle string) {
	node := &Node{Op: op, Handle: handle}

	q.mu.Lock()
	defer q.mu.Unlock()

	q.tail.next = node
	q.tail = node
	q.length++
	metrics.BatchQueueDepth.Set(float64(q.length))
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.length
}

func (q *Queue) IsEmpty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.head == q.tail
}

// Show renders the pending entries for diagnostics, oldest first. It
// snapshots under the lock, so the traversal is finite and restartable.
func (q *Queue) Show() []string {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]string, 0, q.length)
	for node := q.head.next; node != nil; node = node.next {
		out = append(out, fmt.Sprintf("query: %s, %d, %d.", node.Op.Column, node.Op.Low, node.Op.High))
	}
	return out
}

// Drain removes and returns every pending node in arrival order. The
// single draining caller holds the queue's entries exclusively afterward.
func (q *Queue) Drain() []*Node {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]*Node, 0, q.length)
	for node := q.head.next; node != nil; node = node.next {
		out = append(out, node)
	}
	q.head.next = nil
	q.tail = q.head
	q.length = 0
	metrics.BatchQueueDepth.Set(0)
	return out
}
