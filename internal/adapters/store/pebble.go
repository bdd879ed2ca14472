package store

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"messengerbots/internal/core/domain"

	"github.com/cockroachdb/pebble"
	"github.com/rs/zerolog/log"
)

const (
	threadPrefix      = "thread:"
	providerPrefix    = "provider:"
	participantPrefix = "participant:"
	callPrefix        = "call:"
	messagePrefix     = "message:"
	actionPrefix      = "action:"
)

// Pebble keeps threads, their bot actions and the people and events seen in them in a Pebble database.
type Pebble struct {
	db *pebble.DB
}

func NewPebble(path string) (*Pebble, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("error creating store directory: %w", err)
	}

	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("error opening pebble store at %s: %w", path, err)
	}

	log.Info().Str("path", path).Msg("opened pebble store")

	return &Pebble{db: db}, nil
}

func (s *Pebble) Close() error {
	if s == nil || s.db == nil {
		return nil
	}

	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Pebble) Thread(_ context.Context, threadID string) (*domain.Thread, error) {
	var thread domain.Thread
	found, err := s.get(threadPrefix+threadID, &thread)
	if err != nil || !found {
		return nil, err
	}

	return &thread, nil
}

func (s *Pebble) SaveThread(_ context.Context, thread domain.Thread) error {
	return s.set(threadPrefix+thread.ID, thread)
}

func (s *Pebble) SaveProvider(_ context.Context, provider domain.Provider) error {
	return s.set(providerKey(provider.Ref), provider)
}

func (s *Pebble) SaveParticipant(_ context.Context, participant domain.Participant) error {
	return s.set(participantKey(participant.ThreadID, participant.Owner.Ref), participant)
}

func (s *Pebble) SaveCall(_ context.Context, call domain.Call) error {
	return s.set(callPrefix+call.ThreadID+":"+call.ID, call)
}

func (s *Pebble) SaveMessage(_ context.Context, message domain.Message) error {
	return s.set(messagePrefix+message.ThreadID+":"+message.ID, message)
}

func (s *Pebble) Participant(_ context.Context, threadID string, owner domain.OwnerRef) (*domain.Participant, error) {
	var participant domain.Participant
	found, err := s.get(participantKey(threadID, owner), &participant)
	if err != nil || !found {
		return nil, err
	}

	return &participant, nil
}

func (s *Pebble) Provider(_ context.Context, owner domain.OwnerRef) (*domain.Provider, error) {
	var provider domain.Provider
	found, err := s.get(providerKey(owner), &provider)
	if err != nil || !found {
		return nil, err
	}

	return &provider, nil
}

func (s *Pebble) VideoCall(_ context.Context, threadID, callID string) (*domain.Call, error) {
	var call domain.Call
	found, err := s.get(callPrefix+threadID+":"+callID, &call)
	if err != nil || !found {
		return nil, err
	}

	if !call.Video {
		return nil, nil
	}

	return &call, nil
}

// CallParticipants resolves call participants other than exclude. Participants without a known provider are
// listed as the ghost provider.
func (s *Pebble) CallParticipants(
	ctx context.Context, call domain.Call, exclude domain.OwnerRef, limit int) ([]domain.Provider, error) {
	providers := make([]domain.Provider, 0, min(limit, len(call.Participants)))

	for _, ref := range call.Participants {
		if len(providers) >= limit {
			break
		}

		if ref == exclude {
			continue
		}

		provider, err := s.Provider(ctx, ref)
		if err != nil {
			return nil, err
		}

		if provider == nil {
			providers = append(providers, domain.GhostProvider())
			continue
		}

		providers = append(providers, *provider)
	}

	return providers, nil
}

func (s *Pebble) SaveAction(_ context.Context, action domain.BotAction) error {
	return s.set(actionPrefix+action.ThreadID+":"+action.ID, action)
}

func (s *Pebble) ActionsForThread(_ context.Context, threadID string) ([]domain.BotAction, error) {
	var actions []domain.BotAction
	err := s.scan(actionPrefix+threadID+":", func(value []byte) error {
		var action domain.BotAction
		if err := json.Unmarshal(value, &action); err != nil {
			return fmt.Errorf("error decoding bot action: %w", err)
		}

		actions = append(actions, action)
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(actions, func(a, b domain.BotAction) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.ID, b.ID))
	})

	return actions, nil
}

func (s *Pebble) DeleteAction(_ context.Context, threadID, actionID string) error {
	if s.db == nil {
		return domain.ErrStoreNotOpen
	}

	return s.db.Delete([]byte(actionPrefix+threadID+":"+actionID), pebble.Sync)
}

func providerKey(owner domain.OwnerRef) string {
	return providerPrefix + owner.Type + ":" + owner.ID
}

func participantKey(threadID string, owner domain.OwnerRef) string {
	return participantPrefix + threadID + ":" + owner.Type + ":" + owner.ID
}

func (s *Pebble) set(key string, value any) error {
	if s.db == nil {
		return domain.ErrStoreNotOpen
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("error encoding %s: %w", key, err)
	}

	if err := s.db.Set([]byte(key), data, pebble.Sync); err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to write to store")
		return err
	}

	return nil
}

func (s *Pebble) get(key string, out any) (bool, error) {
	if s.db == nil {
		return false, domain.ErrStoreNotOpen
	}

	value, closer, err := s.db.Get([]byte(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return false, nil
	}

	if err != nil {
		return false, err
	}
	defer closer.Close()

	if err := json.Unmarshal(value, out); err != nil {
		return false, fmt.Errorf("error decoding %s: %w", key, err)
	}

	return true, nil
}

func (s *Pebble) scan(prefix string, fn func(value []byte) error) error {
	if s.db == nil {
		return domain.ErrStoreNotOpen
	}

	lower := []byte(prefix)
	it, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: lower,
		UpperBound: upperBound(lower),
	})
	if err != nil {
		return err
	}
	defer it.Close()

	for ok := it.First(); ok; ok = it.Next() {
		if !bytes.HasPrefix(it.Key(), lower) {
			break
		}

		if err := fn(it.Value()); err != nil {
			return err
		}
	}

	return it.Error()
}

// upperBound returns the smallest key greater than every key starting with prefix.
func upperBound(prefix []byte) []byte {
	end := bytes.Clone(prefix)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}

	return nil
}
