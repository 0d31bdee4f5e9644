package worker

import "sync"

// job is a single deferred unit of work linked into a jobQueue
type job struct {
	fn   func()
	seq  uint64
	next *job
}

// jobQueue is a mutex-guarded FIFO of pending jobs.
// length always equals the number of jobs reachable from head, and
// head == nil exactly when tail == nil and length == 0.
type jobQueue struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	head     *job
	tail     *job
	length   int
}

func newJobQueue() *jobQueue {
	q := &jobQueue{}
	q.notEmpty = sync.NewCond(&q.mu)
	return q
}

// enqueue appends j at the tail and wakes one waiting worker
func (q *jobQueue) enqueue(j *job) {
	q.mu.Lock()
	defer q.mu.Unlock()

	j.next = nil
	if q.tail == nil {
		q.head = j
	} else {
		q.tail.next = j
	}
	q.tail = j
	q.length++

	q.notEmpty.Signal()
}

// dequeue removes and returns the head job, or nil when the queue is empty.
// If jobs remain another worker is woken so fan-out continues.
func (q *jobQueue) dequeue() *job {
	q.mu.Lock()
	defer q.mu.Unlock()

	j := q.head
	if j == nil {
		return nil
	}

	q.head = j.next
	if q.head == nil {
		q.tail = nil
	}
	q.length--
	j.next = nil

	if q.length > 0 {
		q.notEmpty.Signal()
	}
	return j
}

// clear detaches every pending job without running it and returns how many
// were discarded.
func (q *jobQueue) clear() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	discarded := q.length
	for j := q.head; j != nil; {
		next := j.next
		j.next = nil
		j.fn = nil
		j = next
	}
	q.head = nil
	q.tail = nil
	q.length = 0

	return discarded
}

func (q *jobQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.length
}

// waitForWork blocks until the queue is non-empty or alive reports false.
// It returns false when the caller should stop.
func (q *jobQueue) waitForWork(alive func() bool) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.length == 0 && alive() {
		q.notEmpty.Wait()
	}
	return alive()
}

// closeWith runs stop while holding the queue mutex and then wakes every
// waiting worker. A worker that has checked alive but not yet called Wait
// still holds the mutex, so it cannot miss the broadcast.
func (q *jobQueue) closeWith(stop func()) {
	q.mu.Lock()
	stop()
	q.mu.Unlock()

	q.notEmpty.Broadcast()
}
