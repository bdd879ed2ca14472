package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const defaultPurgeInterval = time.Minute

// CooldownTracker keeps action cooldowns in memory. It is used when no Redis instance is configured.
type CooldownTracker struct {
	until map[string]time.Time
	mutex *sync.Mutex
	now   func() time.Time
}

func NewCooldownTracker(ctx context.Context) *CooldownTracker {
	ct := &CooldownTracker{
		until: make(map[string]time.Time),
		mutex: &sync.Mutex{},
		now:   time.Now,
	}

	interval := viper.GetDuration("cooldown.purge_interval")
	if interval <= 0 {
		interval = defaultPurgeInterval
	}

	go ct.PurgeExpired(ctx, interval)

	return ct
}

func (t *CooldownTracker) Active(_ context.Context, key string) (bool, error) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	until, ok := t.until[key]

	return ok && t.now().Before(until), nil
}

func (t *CooldownTracker) Start(_ context.Context, key string, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	t.mutex.Lock()
	t.until[key] = t.now().Add(d)
	t.mutex.Unlock()

	return nil
}

// PurgeExpired drops elapsed cooldowns every interval until ctx is done.
func (t *CooldownTracker) PurgeExpired(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := t.purge(); n > 0 {
				log.Debug().Int("count", n).Msg("purged expired cooldowns")
			}
		case <-ctx.Done():
			log.Debug().Msg("stopping cooldown purge")
			return
		}
	}
}

func (t *CooldownTracker) purge() int {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	now := t.now()
	purged := 0

	for key, until := range t.until {
		if !now.Before(until) {
			delete(t.until, key)
			purged++
		}
	}

	return purged
}
