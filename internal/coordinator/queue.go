package coordinator

// waitQueue orders participants seeking a partner. Matching is strict FIFO:
// whoever has waited longest is matched first. The queue is owned by the
// hub's run loop and is not safe for concurrent use.
type waitQueue struct {
	ids    []string
	member map[string]struct{}
}

func newWaitQueue() *waitQueue {
	return &waitQueue{member: make(map[string]struct{})}
}

// enqueue appends id unless it is already present. Returns false on a
// duplicate; repeated pairing requests are an idempotent intent signal.
func (q *waitQueue) enqueue(id string) bool {
	if _, ok := q.member[id]; ok {
		return false
	}
	q.ids = append(q.ids, id)
	q.member[id] = struct{}{}
	return true
}

// remove deletes id from the queue if present.
func (q *waitQueue) remove(id string) bool {
	if _, ok := q.member[id]; !ok {
		return false
	}
	delete(q.member, id)
	for i, v := range q.ids {
		if v == id {
			q.ids = append(q.ids[:i], q.ids[i+1:]...)
			break
		}
	}
	return true
}

// dequeueTwo pops the two oldest entries. It only fires when at least two
// participants are waiting; otherwise the queue is left untouched.
func (q *waitQueue) dequeueTwo() (first, second string, ok bool) {
	if len(q.ids) < 2 {
		return "", "", false
	}
	first, second = q.ids[0], q.ids[1]
	q.ids = q.ids[2:]
	delete(q.member, first)
	delete(q.member, second)
	return first, second, true
}

func (q *waitQueue) contains(id string) bool {
	_, ok := q.member[id]
	return ok
}

func (q *waitQueue) len() int {
	return len(q.ids)
}
