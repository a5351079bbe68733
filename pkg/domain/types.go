package domain

import "time"

type MessageStatus string

const (
	StatusDraft     MessageStatus = "draft"
	StatusSent      MessageStatus = "sent"
	StatusDelivered MessageStatus = "delivered"
	StatusRead      MessageStatus = "read"
	StatusArchived  MessageStatus = "archived"
	StatusDeleted   MessageStatus = "deleted"
)

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationRejected InvitationStatus = "rejected"
)

// MessageKind selects a listing predicate.
type MessageKind string

const (
	KindAll      MessageKind = "all"
	KindSent     MessageKind = "sent"
	KindReceived MessageKind = "received"
	KindInbox    MessageKind = "inbox"
	KindStarred  MessageKind = "starred"
	KindSpam     MessageKind = "spam"
	KindArchived MessageKind = "archived"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Attachment describes a stored message attachment. The binary lives in
// object storage under Key; the row only carries this descriptor.
type Attachment struct {
	Key         string `json:"key"`
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	SizeBytes   int64  `json:"sizeBytes"`
}

// Message is a private or public mail-style message.
// IsPrivate implies ReceiverID is set; public messages have no receiver and
// are reachable by anyone through PublicLink.
type Message struct {
	ID          string        `json:"id"`
	SenderID    string        `json:"senderId"`
	ReceiverID  string        `json:"receiverId,omitempty"`
	Subject     string        `json:"subject"`
	Body        string        `json:"body"`
	IsPrivate   bool          `json:"isPrivate"`
	Status      MessageStatus `json:"status"`
	IsStarred   bool          `json:"isStarred"`
	IsImportant bool          `json:"isImportant"`
	IsSpam      bool          `json:"isSpam"`
	PublicLink  string        `json:"publicLink"`
	Attachment  *Attachment   `json:"attachment,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	SentAt      *time.Time    `json:"sentAt,omitempty"`
	DeliveredAt *time.Time    `json:"deliveredAt,omitempty"`
	ReadAt      *time.Time    `json:"readAt,omitempty"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// Block is a directional restriction: Blocker refuses private messages from
// Blocked, optionally tagging their history as spam.
type Block struct {
	BlockerID string    `json:"blockerId"`
	BlockedID string    `json:"blockedId"`
	IsSpam    bool      `json:"isSpam"`
	CreatedAt time.Time `json:"createdAt"`
}

type Song struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Artist     string    `json:"artist,omitempty"`
	Album      string    `json:"album,omitempty"`
	StorageKey string    `json:"-"`
	Filename   string    `json:"filename"`
	UploaderID string    `json:"uploaderId"`
	IsPublic   bool      `json:"isPublic"`
	Duration   int       `json:"duration,omitempty"`
	SizeBytes  int64     `json:"sizeBytes"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Playlist members never redundantly contain the owner; IsMember treats the
// owner as a member regardless.
type Playlist struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"ownerId"`
	MemberIDs []string  `json:"memberIds"`
	SongIDs   []string  `json:"songIds"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type PlaylistInvitation struct {
	ID           string           `json:"id"`
	PlaylistID   string           `json:"playlistId"`
	InviterID    string           `json:"inviterId"`
	InviteeEmail string           `json:"inviteeEmail"`
	InviteeID    string           `json:"inviteeId,omitempty"`
	Status       InvitationStatus `json:"status"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

// PlaybackState remembers the last song and position a user played.
type PlaybackState struct {
	UserID       string    `json:"userId"`
	SongID       string    `json:"songId,omitempty"`
	Position     float64   `json:"position"`
	LastPlayedAt time.Time `json:"lastPlayedAt"`
}

type FavoriteSong struct {
	UserID    string    `json:"userId"`
	SongID    string    `json:"songId"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsMember reports playlist membership; the owner is always a member.
func (p Playlist) IsMember(userID string) bool {
	if p.OwnerID == userID {
		return true
	}
	for _, id := range p.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// HasSong reports whether the playlist already contains the song.
func (p Playlist) HasSong(songID string) bool {
	for _, id := range p.SongIDs {
		if id == songID {
			return true
		}
	}
	return false
}
