package subscription

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/kino-bot-go/internal/model"
	"github.com/user/kino-bot-go/internal/store/stubs"
)

// fakeChecker returns canned statuses per channel id; missing entries
// simulate a platform error.
type fakeChecker struct {
	statuses map[string]string
}

func (f *fakeChecker) ChatMemberStatus(ctx context.Context, channelID string, userID int64) (string, error) {
	status, ok := f.statuses[channelID]
	if !ok {
		return "", errors.New("chat not found")
	}
	return status, nil
}

func seedChannels(t *testing.T, s *stubs.StubStore, ids ...string) {
	t.Helper()
	for _, id := range ids {
		err := s.CreateChannel(context.Background(), &model.Channel{ChannelID: id, IsActive: true})
		require.NoError(t, err)
	}
}

func TestCheck_AllJoined(t *testing.T) {
	s := stubs.New()
	_, err := s.UpsertUser(context.Background(), &model.User{TelegramID: 42})
	require.NoError(t, err)
	seedChannels(t, s, "@one", "@two")

	gate := NewGate(s, &fakeChecker{statuses: map[string]string{
		"@one": StatusMember,
		"@two": StatusAdministrator,
	}})

	result, err := gate.Check(context.Background(), 42)
	require.NoError(t, err)
	assert.True(t, result.Subscribed)
	assert.Empty(t, result.MissingChannels)

	// The cached flag is refreshed on the user row.
	user, err := s.GetUserByTelegramID(context.Background(), 42)
	require.NoError(t, err)
	assert.True(t, user.IsSubscribed)
	assert.NotNil(t, user.LastSubscriptionCheck)
}

func TestCheck_LeftChannelReported(t *testing.T) {
	s := stubs.New()
	_, err := s.UpsertUser(context.Background(), &model.User{TelegramID: 42})
	require.NoError(t, err)
	seedChannels(t, s, "@one", "@two")

	gate := NewGate(s, &fakeChecker{statuses: map[string]string{
		"@one": StatusMember,
		"@two": "left",
	}})

	result, err := gate.Check(context.Background(), 42)
	require.NoError(t, err)
	assert.False(t, result.Subscribed)
	require.Len(t, result.MissingChannels, 1)
	assert.Equal(t, "@two", result.MissingChannels[0].ChannelID)

	user, err := s.GetUserByTelegramID(context.Background(), 42)
	require.NoError(t, err)
	assert.False(t, user.IsSubscribed)
}

func TestCheck_FailClosed(t *testing.T) {
	s := stubs.New()
	_, err := s.UpsertUser(context.Background(), &model.User{TelegramID: 42})
	require.NoError(t, err)
	seedChannels(t, s, "@broken")

	// No canned status: the platform query errors.
	gate := NewGate(s, &fakeChecker{statuses: map[string]string{}})

	result, err := gate.Check(context.Background(), 42)
	require.NoError(t, err)
	assert.False(t, result.Subscribed)
	require.Len(t, result.MissingChannels, 1)
	assert.Equal(t, "@broken", result.MissingChannels[0].ChannelID)
}

func TestCheck_InactiveChannelExcluded(t *testing.T) {
	s := stubs.New()
	_, err := s.UpsertUser(context.Background(), &model.User{TelegramID: 42})
	require.NoError(t, err)

	err = s.CreateChannel(context.Background(), &model.Channel{ChannelID: "@off", IsActive: false})
	require.NoError(t, err)

	// The checker would fail for @off, but inactive channels are never
	// consulted.
	gate := NewGate(s, &fakeChecker{statuses: map[string]string{}})

	result, err := gate.Check(context.Background(), 42)
	require.NoError(t, err)
	assert.True(t, result.Subscribed)
	assert.Empty(t, result.MissingChannels)
}

func TestCheck_NoChannelsMeansSubscribed(t *testing.T) {
	s := stubs.New()
	_, err := s.UpsertUser(context.Background(), &model.User{TelegramID: 42})
	require.NoError(t, err)

	gate := NewGate(s, &fakeChecker{statuses: map[string]string{}})

	result, err := gate.Check(context.Background(), 42)
	require.NoError(t, err)
	assert.True(t, result.Subscribed)
}

func TestIsJoined(t *testing.T) {
	assert.True(t, IsJoined(StatusMember))
	assert.True(t, IsJoined(StatusAdministrator))
	assert.True(t, IsJoined(StatusCreator))
	assert.False(t, IsJoined("left"))
	assert.False(t, IsJoined("kicked"))
	assert.False(t, IsJoined("restricted"))
	assert.False(t, IsJoined(""))
}
