// Package subscription decides whether a user may be served movie
// content: every active required channel must report a membership.
package subscription

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/user/kino-bot-go/internal/model"
	"github.com/user/kino-bot-go/internal/store"
)

// Membership statuses that count as joined.
const (
	StatusMember        = "member"
	StatusAdministrator = "administrator"
	StatusCreator       = "creator"
)

// MembershipChecker queries the messaging platform for a user's status
// in a channel.
type MembershipChecker interface {
	ChatMemberStatus(ctx context.Context, channelID string, userID int64) (string, error)
}

// Result is the outcome of one gate check.
type Result struct {
	Subscribed      bool
	MissingChannels []*model.Channel
}

// Gate checks required-channel membership for users.
type Gate struct {
	store   store.Store
	checker MembershipChecker
}

// NewGate creates a subscription gate
func NewGate(s store.Store, checker MembershipChecker) *Gate {
	return &Gate{store: s, checker: checker}
}

// IsJoined reports whether a membership status counts as subscribed.
func IsJoined(status string) bool {
	switch status {
	case StatusMember, StatusAdministrator, StatusCreator:
		return true
	default:
		return false
	}
}

// Check queries membership for every active channel and returns the
// ones the user has not joined. Channels are checked concurrently; the
// result keeps the store's channel order. The check is fail-closed: a
// platform error counts as not joined, never as a pass. The cached
// subscription flag on the user row is refreshed regardless of outcome.
func (g *Gate) Check(ctx context.Context, userID int64) (*Result, error) {
	channels, err := g.store.ListActiveChannels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load active channels: %w", err)
	}

	missing := make([]bool, len(channels))
	var wg sync.WaitGroup
	for i, channel := range channels {
		wg.Add(1)
		go func(i int, channel *model.Channel) {
			defer wg.Done()
			status, err := g.checker.ChatMemberStatus(ctx, channel.ChannelID, userID)
			if err != nil {
				log.Warn().
					Err(err).
					Str("channel", channel.ChannelID).
					Int64("userID", userID).
					Msg("Membership check failed, treating as not joined")
				missing[i] = true
				return
			}
			missing[i] = !IsJoined(status)
		}(i, channel)
	}
	wg.Wait()

	result := &Result{}
	for i, channel := range channels {
		if missing[i] {
			result.MissingChannels = append(result.MissingChannels, channel)
		}
	}
	result.Subscribed = len(result.MissingChannels) == 0

	if err := g.store.SetUserSubscription(ctx, userID, result.Subscribed, time.Now()); err != nil {
		log.Error().Err(err).Int64("userID", userID).Msg("Failed to persist subscription status")
	}

	return result, nil
}
