package store

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"messengerbots/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Pebble {
	t.Helper()

	s, err := NewPebble(filepath.Join(t.TempDir(), "db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func action(threadID, id string, created time.Time) domain.BotAction {
	return domain.BotAction{
		ID:        id,
		ThreadID:  threadID,
		CreatedAt: created,
		ResolvedAction: domain.ResolvedAction{
			Handler:  "reply",
			Match:    domain.MatchContains,
			Triggers: "hello|hi",
			Cooldown: 10,
			Enabled:  true,
		},
	}
}

func TestPebble_Actions(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	payload := `{"replies":["hi!"]}`
	second := action("1", "b", base.Add(time.Minute))
	second.Payload = &payload

	require.NoError(t, s.SaveAction(ctx, second))
	require.NoError(t, s.SaveAction(ctx, action("1", "a", base)))
	require.NoError(t, s.SaveAction(ctx, action("10", "c", base)))

	actions, err := s.ActionsForThread(ctx, "1")
	require.NoError(t, err)
	require.Len(t, actions, 2)
	assert.Equal(t, "a", actions[0].ID)
	assert.Equal(t, second, actions[1])

	require.NoError(t, s.DeleteAction(ctx, "1", "a"))
	require.NoError(t, s.DeleteAction(ctx, "1", "missing"))

	actions, err = s.ActionsForThread(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, []domain.BotAction{second}, actions)

	actions, err = s.ActionsForThread(ctx, "2")
	require.NoError(t, err)
	assert.Empty(t, actions)
}

func TestPebble_Threads(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()

	thread, err := s.Thread(ctx, "1")
	require.NoError(t, err)
	assert.Nil(t, thread)

	want := domain.Thread{ID: "1", Subject: "friends", Group: true, ChatBots: true}
	require.NoError(t, s.SaveThread(ctx, want))

	thread, err = s.Thread(ctx, "1")
	require.NoError(t, err)
	require.NotNil(t, thread)
	assert.Equal(t, want, *thread)
}

func TestPebble_Directory(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()

	bob := domain.Provider{Ref: domain.OwnerRef{ID: "200", Type: "user"}, Name: "Bob"}
	alice := domain.Provider{Ref: domain.OwnerRef{ID: "300", Type: "user"}, Name: "Alice"}
	unknown := domain.OwnerRef{ID: "999", Type: "user"}

	require.NoError(t, s.SaveProvider(ctx, bob))
	require.NoError(t, s.SaveProvider(ctx, alice))
	require.NoError(t, s.SaveParticipant(ctx, domain.Participant{ThreadID: "1", Owner: bob, Admin: true}))

	participant, err := s.Participant(ctx, "1", bob.Ref)
	require.NoError(t, err)
	require.NotNil(t, participant)
	assert.True(t, participant.Admin)

	participant, err = s.Participant(ctx, "2", bob.Ref)
	require.NoError(t, err)
	assert.Nil(t, participant)

	provider, err := s.Provider(ctx, alice.Ref)
	require.NoError(t, err)
	assert.Equal(t, &alice, provider)

	provider, err = s.Provider(ctx, domain.OwnerRef{ID: "200", Type: "bot"})
	require.NoError(t, err)
	assert.Nil(t, provider)

	call := domain.Call{
		ID:           "c1",
		ThreadID:     "1",
		Video:        true,
		Participants: []domain.OwnerRef{bob.Ref, alice.Ref, unknown},
	}
	require.NoError(t, s.SaveCall(ctx, call))
	require.NoError(t, s.SaveCall(ctx, domain.Call{ID: "c2", ThreadID: "1"}))

	got, err := s.VideoCall(ctx, "1", "c1")
	require.NoError(t, err)
	assert.Equal(t, &call, got)

	got, err = s.VideoCall(ctx, "1", "c2")
	require.NoError(t, err)
	assert.Nil(t, got, "voice calls are not video calls")

	others, err := s.CallParticipants(ctx, call, bob.Ref, 3)
	require.NoError(t, err)
	assert.Equal(t, []domain.Provider{alice, domain.GhostProvider()}, others)

	others, err = s.CallParticipants(ctx, call, bob.Ref, 1)
	require.NoError(t, err)
	assert.Equal(t, []domain.Provider{alice}, others)
}

func TestPebble_SaveMessage(t *testing.T) {
	s := newTestStore(t)

	message := domain.Message{ID: "5", ThreadID: "1", Type: domain.TypeGroupRenamed, Body: "renamed the group to x"}
	require.NoError(t, s.SaveMessage(t.Context(), message))

	value, closer, err := s.db.Get([]byte("message:1:5"))
	require.NoError(t, err)
	defer closer.Close()

	var stored domain.Message
	require.NoError(t, json.Unmarshal(value, &stored))
	assert.Equal(t, message, stored)
}

func TestPebble_Closed(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Close())

	_, err := s.Thread(t.Context(), "1")
	require.ErrorIs(t, err, domain.ErrStoreNotOpen)
	require.ErrorIs(t, s.SaveAction(t.Context(), action("1", "a", time.Now())), domain.ErrStoreNotOpen)
	_, err = s.ActionsForThread(t.Context(), "1")
	require.ErrorIs(t, err, domain.ErrStoreNotOpen)
	require.ErrorIs(t, s.DeleteAction(t.Context(), "1", "a"), domain.ErrStoreNotOpen)
}

func TestUpperBound(t *testing.T) {
	assert.Equal(t, []byte("action:1;"), upperBound([]byte("action:1:")))
	assert.Equal(t, []byte{0x01}, upperBound([]byte{0x00, 0xff}))
	assert.Nil(t, upperBound([]byte{0xff}))
}
