package services

import (
	"context"
	"errors"
	"sort"

	"skillshare/models"
	"skillshare/store"
)

// ListConversations derives one summary per counterpart from the message
// rows, newest conversation first.
func (s *MessageService) ListConversations(ctx context.Context, userID string) ([]models.ConversationSummary, error) {
	if userID == "" {
		return nil, models.ValidationError("userId is required")
	}

	others, err := s.messages.Counterparts(ctx, userID)
	if err != nil {
		return nil, storeError("list counterparts", err, "")
	}

	summaries := make([]models.ConversationSummary, 0, len(others))
	for _, other := range others {
		last, err := s.latestBetween(ctx, userID, other)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, storeError("load latest message", err, "")
		}

		unread, err := s.messages.CountUnread(ctx, userID, other)
		if err != nil {
			return nil, storeError("count unread", err, "")
		}

		summaries = append(summaries, models.ConversationSummary{
			OtherUserID:     other,
			OtherUserName:   other,
			OtherUserAvatar: models.FallbackAvatar,
			LastMessage:     last.Content,
			LastMessageTime: last.CreatedAt,
			UnreadCount:     unread,
		})
	}

	ids := make([]string, len(summaries))
	for i := range summaries {
		ids[i] = summaries[i].OtherUserID
	}
	users, err := s.users.GetUsers(ctx, ids)
	if err != nil {
		return nil, storeError("load counterparts", err, "")
	}
	for i := range summaries {
		if u, ok := users[summaries[i].OtherUserID]; ok {
			summaries[i].OtherUserName = u.DisplayName()
			summaries[i].OtherUserAvatar = u.AvatarOrFallback()
		}
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].LastMessageTime.After(summaries[j].LastMessageTime)
	})
	return summaries, nil
}

// latestBetween looks at the sent direction first; the received message only
// wins when it is strictly newer.
func (s *MessageService) latestBetween(ctx context.Context, userID, other string) (*models.Message, error) {
	sent, err := s.messages.LatestMessage(ctx, userID, other)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	received, err := s.messages.LatestMessage(ctx, other, userID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	switch {
	case sent == nil && received == nil:
		return nil, store.ErrNotFound
	case sent == nil:
		return received, nil
	case received != nil && received.CreatedAt.After(sent.CreatedAt):
		return received, nil
	}
	return sent, nil
}
