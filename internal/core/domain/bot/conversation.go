package bot

import (
	"slices"
	"sync"
	"time"

	"messengerbots/internal/core/domain"

	"github.com/rs/zerolog/log"
)

// Conversations keeps the recent chat history of each thread until it has been idle for the configured duration.
type Conversations struct {
	cacheDuration time.Duration

	mu      sync.Mutex
	threads map[string]*conversation
}

type conversation struct {
	messages []domain.Prompt
	timer    *time.Timer
}

func NewConversations(cacheDuration time.Duration) *Conversations {
	return &Conversations{cacheDuration: cacheDuration, threads: make(map[string]*conversation)}
}

// History returns a copy of the thread's conversation.
func (c *Conversations) History(threadID string) []domain.Prompt {
	c.mu.Lock()
	defer c.mu.Unlock()

	convo, ok := c.threads[threadID]
	if !ok {
		return nil
	}

	return slices.Clone(convo.messages)
}

// Append adds prompts to the thread's conversation and restarts its expiry timer.
func (c *Conversations) Append(threadID string, prompts ...domain.Prompt) {
	c.mu.Lock()
	defer c.mu.Unlock()

	convo, ok := c.threads[threadID]
	if !ok {
		log.Trace().Str("threadId", threadID).Msg("new conversation")

		convo = &conversation{}
		convo.timer = time.AfterFunc(c.cacheDuration, func() { c.expire(threadID, convo) })
		c.threads[threadID] = convo
	} else {
		convo.timer.Reset(c.cacheDuration)
	}

	convo.messages = append(convo.messages, prompts...)
}

// Clear drops the thread's conversation and returns how many messages it held.
func (c *Conversations) Clear(threadID string) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	convo, ok := c.threads[threadID]
	if !ok {
		return 0, false
	}

	convo.timer.Stop()
	delete(c.threads, threadID)

	return len(convo.messages), true
}

func (c *Conversations) expire(threadID string, convo *conversation) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.threads[threadID] != convo {
		return
	}

	log.Debug().Str("threadId", threadID).Msg("clearing conversation")
	delete(c.threads, threadID)
}
