package app

import "sync"

// chatLocks hands out one mutex per chat id, created lazily. Routing runs
// under the chat's mutex so two messages arriving in quick succession for the
// same chat cannot both read "no active session" or both claim the same open
// reminder. Distinct chats stay concurrent.
type chatLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newChatLocks() *chatLocks {
	return &chatLocks{locks: make(map[int64]*sync.Mutex)}
}

func (c *chatLocks) forChat(chatID int64) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.locks[chatID]
	if !ok {
		l = &sync.Mutex{}
		c.locks[chatID] = l
	}
	return l
}
