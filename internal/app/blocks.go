package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"mailroom/pkg/domain"
	"mailroom/pkg/events"
)

// BlockUser upserts a block on the user with the given email, setting the
// spam tag from markSpam. The message history is retagged either way so the
// spam folder always agrees with the flag.
func (a *App) BlockUser(ctx context.Context, actor domain.User, email string, markSpam bool) error {
	blocked, err := a.resolveUserByEmail(email)
	if err != nil {
		return err
	}
	if blocked.ID == actor.ID {
		return fmt.Errorf("cannot block yourself: %w", domain.ErrInvalidOperation)
	}
	if markSpam {
		if err := a.store.MarkSenderSpam(actor.ID, blocked.ID); err != nil {
			return fmt.Errorf("save block: %w", err)
		}
		a.publish(ctx, events.MessageSpamMarked, map[string]any{
			"receiverId": actor.ID,
			"senderId":   blocked.ID,
		})
		return nil
	}
	existing, found, err := a.store.GetBlock(actor.ID, blocked.ID)
	if err != nil {
		return fmt.Errorf("fetch block: %w", err)
	}
	block := domain.Block{
		BlockerID: actor.ID,
		BlockedID: blocked.ID,
		CreatedAt: time.Now().UTC(),
	}
	if found {
		block.CreatedAt = existing.CreatedAt
	}
	if err := a.store.UpsertBlock(block); err != nil {
		return fmt.Errorf("save block: %w", err)
	}
	if found && existing.IsSpam {
		if err := a.store.UnmarkSenderSpam(actor.ID, blocked.ID); err != nil {
			return fmt.Errorf("untag sender spam: %w", err)
		}
	}
	return nil
}

// UnblockUser removes a block. Unblocking someone who was never blocked is an
// error.
func (a *App) UnblockUser(actor domain.User, email string) error {
	blocked, err := a.resolveUserByEmail(email)
	if err != nil {
		return err
	}
	removed, err := a.store.DeleteBlock(actor.ID, blocked.ID)
	if err != nil {
		return fmt.Errorf("delete block: %w", err)
	}
	if !removed {
		return fmt.Errorf("user is not blocked: %w", domain.ErrNotFound)
	}
	return nil
}

// ListBlockedUsers returns everyone the actor has blocked.
func (a *App) ListBlockedUsers(actor domain.User) ([]domain.User, error) {
	return a.store.ListBlockedUsers(actor.ID)
}

// MarkSenderSpam blocks the sender with a spam tag and retags their message
// history to the actor in one transaction.
func (a *App) MarkSenderSpam(ctx context.Context, actor domain.User, senderEmail string) error {
	sender, err := a.resolveUserByEmail(senderEmail)
	if err != nil {
		return err
	}
	if sender.ID == actor.ID {
		return fmt.Errorf("cannot mark yourself as spam: %w", domain.ErrInvalidOperation)
	}
	if err := a.store.MarkSenderSpam(actor.ID, sender.ID); err != nil {
		return fmt.Errorf("mark sender spam: %w", err)
	}
	a.publish(ctx, events.MessageSpamMarked, map[string]any{
		"receiverId": actor.ID,
		"senderId":   sender.ID,
	})
	return nil
}

// UnmarkSenderSpam clears the spam tag and untags the message history. The
// block itself remains.
func (a *App) UnmarkSenderSpam(actor domain.User, senderEmail string) error {
	sender, err := a.resolveUserByEmail(senderEmail)
	if err != nil {
		return err
	}
	if sender.ID == actor.ID {
		return fmt.Errorf("cannot unmark yourself: %w", domain.ErrInvalidOperation)
	}
	if err := a.store.UnmarkSenderSpam(actor.ID, sender.ID); err != nil {
		return fmt.Errorf("unmark sender spam: %w", err)
	}
	return nil
}

// isBlocked reports whether blocker refuses messages from sender. The block
// row existing is all that matters; the spam tag does not soften it.
func (a *App) isBlocked(blockerID, senderID string) (bool, error) {
	_, found, err := a.store.GetBlock(blockerID, senderID)
	if err != nil {
		return false, fmt.Errorf("fetch block: %w", err)
	}
	return found, nil
}

func (a *App) resolveUserByEmail(email string) (domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return domain.User{}, fmt.Errorf("email required: %w", domain.ErrValidation)
	}
	user, found, err := a.store.GetUserByEmail(email)
	if err != nil {
		return domain.User{}, fmt.Errorf("fetch user: %w", err)
	}
	if !found {
		return domain.User{}, fmt.Errorf("no user with email %s: %w", email, domain.ErrNotFound)
	}
	return user, nil
}

// publish emits a domain event. Events are best effort; the write has already
// committed by the time this runs.
func (a *App) publish(ctx context.Context, eventType string, payload map[string]any) {
	if err := a.publisher.Publish(ctx, eventType, payload); err != nil {
		slog.Error("failed to publish event", "type", eventType, "err", err)
	}
}
