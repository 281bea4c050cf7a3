package session

import (
	"container/list"

	"github.com/sandevgo/ceramicsrag/internal/core"
)

// answerCache keeps the last answer of the most recently active sessions.
// Not safe for concurrent use; Manager guards it.
type answerCache struct {
	capacity int
	items    map[string]*list.Element
	order    *list.List
}

type answerEntry struct {
	session string
	answer  *core.Answer
}

func newAnswerCache(capacity int) *answerCache {
	return &answerCache{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		order:    list.New(),
	}
}

func (c *answerCache) get(session string) (*core.Answer, bool) {
	elem, ok := c.items[session]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(elem)
	return elem.Value.(*answerEntry).answer, true
}

func (c *answerCache) put(session string, answer *core.Answer) {
	if elem, ok := c.items[session]; ok {
		elem.Value.(*answerEntry).answer = answer
		c.order.MoveToFront(elem)
		return
	}

	c.items[session] = c.order.PushFront(&answerEntry{session: session, answer: answer})
	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*answerEntry).session)
	}
}

func (c *answerCache) len() int {
	return c.order.Len()
}
