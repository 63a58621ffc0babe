package dispatch

import "sync"

// QueuedCommand is one deferred command produced by a Command result.
type QueuedCommand struct {
	Name string
	Args []string
}

// CommandQueue holds deferred commands in FIFO order. Commands run
// strictly after the input event that enqueued them has finished its
// handler chain; the event loop drains the queue between events.
type CommandQueue struct {
	mu    sync.Mutex
	items []QueuedCommand
}

// NewCommandQueue creates an empty queue.
func NewCommandQueue() *CommandQueue {
	return &CommandQueue{}
}

// Enqueue appends a command.
func (q *CommandQueue) Enqueue(name string, args []string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, QueuedCommand{Name: name, Args: args})
}

// Len returns the number of pending commands.
func (q *CommandQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Pop removes and returns the oldest command.
func (q *CommandQueue) Pop() (QueuedCommand, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return QueuedCommand{}, false
	}
	cmd := q.items[0]
	q.items = q.items[1:]
	return cmd, true
}

// Drain runs fn for each pending command in FIFO order, including
// commands enqueued by fn itself, until the queue is empty.
func (q *CommandQueue) Drain(fn func(QueuedCommand)) {
	for {
		cmd, ok := q.Pop()
		if !ok {
			return
		}
		fn(cmd)
	}
}
