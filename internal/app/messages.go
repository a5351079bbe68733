package app

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"mailroom/internal/util"
	"mailroom/pkg/domain"
	"mailroom/pkg/events"
	"mailroom/pkg/store"
)

const maxAttachmentBytes = 10 << 20 // 10 MiB

var allowedAttachmentExts = map[string]bool{
	".pdf": true, ".doc": true, ".docx": true, ".txt": true,
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".zip": true, ".rar": true,
}

// AttachmentUpload carries an attachment file during send.
type AttachmentUpload struct {
	Filename string
	Reader   io.Reader
	Size     int64
}

// SendMessageInput describes a message to send. Private messages require a
// receiver; a message that is not private carries no receiver and is readable
// by anyone via its public link.
type SendMessageInput struct {
	IsPrivate     bool
	ReceiverEmail string
	Subject       string
	Body          string
	IsImportant   bool
	Attachment    *AttachmentUpload
}

// SendMessage validates and stores a message with status sent. Sends to a
// user who has blocked the sender fail with Forbidden, spam-tagged or not.
func (a *App) SendMessage(ctx context.Context, sender domain.User, in SendMessageInput) (domain.Message, error) {
	subject := strings.TrimSpace(in.Subject)
	body := strings.TrimSpace(in.Body)
	if subject == "" && body == "" {
		return domain.Message{}, fmt.Errorf("subject or body required: %w", domain.ErrValidation)
	}

	now := time.Now().UTC()
	msg := domain.Message{
		ID:          util.NewID(),
		SenderID:    sender.ID,
		Subject:     subject,
		Body:        body,
		IsImportant: in.IsImportant,
		Status:      domain.StatusSent,
		PublicLink:  uuid.NewString(),
		CreatedAt:   now,
		SentAt:      &now,
		UpdatedAt:   now,
	}

	if in.IsPrivate {
		if strings.TrimSpace(in.ReceiverEmail) == "" {
			return domain.Message{}, fmt.Errorf("receiver email required for private message: %w", domain.ErrValidation)
		}
		receiver, err := a.resolveUserByEmail(in.ReceiverEmail)
		if err != nil {
			return domain.Message{}, err
		}
		blocked, err := a.isBlocked(receiver.ID, sender.ID)
		if err != nil {
			return domain.Message{}, err
		}
		if blocked {
			return domain.Message{}, fmt.Errorf("receiver does not accept your messages: %w", domain.ErrForbidden)
		}
		msg.ReceiverID = receiver.ID
		msg.IsPrivate = true
	}

	if in.Attachment != nil {
		att, err := a.storeAttachment(ctx, msg.ID, in.Attachment)
		if err != nil {
			return domain.Message{}, err
		}
		msg.Attachment = att
	}

	if err := a.store.SaveMessage(msg); err != nil {
		return domain.Message{}, fmt.Errorf("save message: %w", err)
	}
	a.publish(ctx, events.MessageSent, map[string]any{
		"messageId": msg.ID,
		"senderId":  msg.SenderID,
		"private":   msg.IsPrivate,
	})
	return msg, nil
}

func (a *App) storeAttachment(ctx context.Context, messageID string, up *AttachmentUpload) (*domain.Attachment, error) {
	filename := filepath.Base(strings.TrimSpace(up.Filename))
	if filename == "" || filename == "." {
		return nil, fmt.Errorf("attachment filename required: %w", domain.ErrValidation)
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedAttachmentExts[ext] {
		return nil, fmt.Errorf("attachment type %s not allowed: %w", ext, domain.ErrValidation)
	}
	if up.Size <= 0 || up.Size > maxAttachmentBytes {
		return nil, fmt.Errorf("attachment exceeds 10MB limit: %w", domain.ErrValidation)
	}
	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := fmt.Sprintf("attachments/%s/%s", messageID, filename)
	if err := a.objects.Put(ctx, key, io.LimitReader(up.Reader, maxAttachmentBytes), up.Size, contentType); err != nil {
		return nil, fmt.Errorf("store attachment: %w", err)
	}
	return &domain.Attachment{
		Key:         key,
		Filename:    filename,
		ContentType: contentType,
		SizeBytes:   up.Size,
	}, nil
}

// GetMessage returns a message the actor may view. actor is nil for anonymous
// callers, who may only view public messages.
func (a *App) GetMessage(actor *domain.User, id string) (domain.Message, error) {
	msg, err := a.getLiveMessage(id)
	if err != nil {
		return domain.Message{}, err
	}
	if err := domain.CanViewMessage(msg, actor); err != nil {
		return domain.Message{}, fmt.Errorf("view message: %w", err)
	}
	return msg, nil
}

// GetMessageByPublicLink resolves a message by its public link, subject to the
// same visibility rules as GetMessage.
func (a *App) GetMessageByPublicLink(actor *domain.User, link string) (domain.Message, error) {
	msg, found, err := a.store.GetMessageByPublicLink(strings.TrimSpace(link))
	if err != nil {
		return domain.Message{}, fmt.Errorf("fetch message: %w", err)
	}
	if !found || msg.Status == domain.StatusDeleted {
		return domain.Message{}, fmt.Errorf("message: %w", domain.ErrNotFound)
	}
	if err := domain.CanViewMessage(msg, actor); err != nil {
		return domain.Message{}, fmt.Errorf("view message: %w", err)
	}
	return msg, nil
}

// AttachmentURL returns a pre-signed download URL for the message attachment.
func (a *App) AttachmentURL(ctx context.Context, actor *domain.User, id string) (string, error) {
	msg, err := a.GetMessage(actor, id)
	if err != nil {
		return "", err
	}
	if msg.Attachment == nil {
		return "", fmt.Errorf("message has no attachment: %w", domain.ErrNotFound)
	}
	url, err := a.objects.PresignGet(ctx, msg.Attachment.Key, 15*time.Minute)
	if err != nil {
		return "", fmt.Errorf("presign attachment: %w", err)
	}
	return url, nil
}

// MarkAsRead records the read timestamp. Only the receiver may mark a message
// read; repeated calls keep the original timestamp.
func (a *App) MarkAsRead(actor domain.User, id string) (domain.Message, error) {
	msg, err := a.getLiveMessage(id)
	if err != nil {
		return domain.Message{}, err
	}
	if err := domain.CanReceiverAct(msg, actor); err != nil {
		return domain.Message{}, fmt.Errorf("mark read: %w", err)
	}
	if msg.ReadAt != nil {
		return msg, nil
	}
	now := time.Now().UTC()
	msg.ReadAt = &now
	msg.Status = domain.StatusRead
	msg.UpdatedAt = now
	if err := a.store.SaveMessage(msg); err != nil {
		return domain.Message{}, fmt.Errorf("save message: %w", err)
	}
	return msg, nil
}

// ToggleStar flips the star flag for the sender or receiver.
func (a *App) ToggleStar(actor domain.User, id string) (domain.Message, error) {
	msg, err := a.getLiveMessage(id)
	if err != nil {
		return domain.Message{}, err
	}
	if err := domain.CanActOnMessage(msg, actor); err != nil {
		return domain.Message{}, fmt.Errorf("toggle star: %w", err)
	}
	msg.IsStarred = !msg.IsStarred
	msg.UpdatedAt = time.Now().UTC()
	if err := a.store.SaveMessage(msg); err != nil {
		return domain.Message{}, fmt.Errorf("save message: %w", err)
	}
	return msg, nil
}

// Archive moves a message out of the inbox.
func (a *App) Archive(actor domain.User, id string) (domain.Message, error) {
	msg, err := a.getLiveMessage(id)
	if err != nil {
		return domain.Message{}, err
	}
	if err := domain.CanActOnMessage(msg, actor); err != nil {
		return domain.Message{}, fmt.Errorf("archive: %w", err)
	}
	if msg.Status == domain.StatusArchived {
		return msg, nil
	}
	msg.Status = domain.StatusArchived
	msg.UpdatedAt = time.Now().UTC()
	if err := a.store.SaveMessage(msg); err != nil {
		return domain.Message{}, fmt.Errorf("save message: %w", err)
	}
	return msg, nil
}

// Unarchive restores a message to read when it had been read, otherwise back
// to sent. Unarchiving a message that was never archived recomputes the same
// state and is harmless.
func (a *App) Unarchive(actor domain.User, id string) (domain.Message, error) {
	msg, err := a.getLiveMessage(id)
	if err != nil {
		return domain.Message{}, err
	}
	if err := domain.CanActOnMessage(msg, actor); err != nil {
		return domain.Message{}, fmt.Errorf("unarchive: %w", err)
	}
	if msg.ReadAt != nil {
		msg.Status = domain.StatusRead
	} else {
		msg.Status = domain.StatusSent
	}
	msg.UpdatedAt = time.Now().UTC()
	if err := a.store.SaveMessage(msg); err != nil {
		return domain.Message{}, fmt.Errorf("save message: %w", err)
	}
	return msg, nil
}

// DeleteMessage soft-deletes; the row survives but leaves every listing.
func (a *App) DeleteMessage(actor domain.User, id string) error {
	msg, err := a.getLiveMessage(id)
	if err != nil {
		return err
	}
	if err := domain.CanActOnMessage(msg, actor); err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	msg.Status = domain.StatusDeleted
	msg.UpdatedAt = time.Now().UTC()
	if err := a.store.SaveMessage(msg); err != nil {
		return fmt.Errorf("save message: %w", err)
	}
	return nil
}

// ListMessages returns the actor's messages for a folder kind with optional
// search. An empty kind means the inbox.
func (a *App) ListMessages(actor domain.User, kind domain.MessageKind, search string) ([]domain.Message, error) {
	if kind == "" {
		kind = domain.KindInbox
	}
	switch kind {
	case domain.KindAll, domain.KindSent, domain.KindReceived, domain.KindInbox,
		domain.KindStarred, domain.KindSpam, domain.KindArchived:
	default:
		return nil, fmt.Errorf("unknown message kind %q: %w", kind, domain.ErrValidation)
	}
	msgs, err := a.store.ListMessages(store.MessageQuery{
		UserID: actor.ID,
		Kind:   kind,
		Search: strings.TrimSpace(search),
	})
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return msgs, nil
}

// ListContacts returns every user the actor has exchanged messages with.
func (a *App) ListContacts(actor domain.User) ([]domain.User, error) {
	contacts, err := a.store.ListContacts(actor.ID)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	return contacts, nil
}

// getLiveMessage fetches a message, treating deleted ones as absent.
func (a *App) getLiveMessage(id string) (domain.Message, error) {
	msg, found, err := a.store.GetMessage(strings.TrimSpace(id))
	if err != nil {
		return domain.Message{}, fmt.Errorf("fetch message: %w", err)
	}
	if !found || msg.Status == domain.StatusDeleted {
		return domain.Message{}, fmt.Errorf("message: %w", domain.ErrNotFound)
	}
	return msg, nil
}
