package store

import (
	"time"

	"gorm.io/datatypes"
)

// GORM models used for persistence.
type UserModel struct {
	ID           string `gorm:"primaryKey"`
	Email        string `gorm:"uniqueIndex;not null"`
	Username     string `gorm:"index"`
	PasswordHash string `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time
}

type MessageModel struct {
	ID          string  `gorm:"primaryKey"`
	SenderID    string  `gorm:"not null;index:idx_messages_sender_created,priority:1"`
	ReceiverID  *string `gorm:"index:idx_messages_receiver_created,priority:1"`
	Subject     string  `gorm:"not null"`
	Body        string  `gorm:"type:text;not null"`
	IsPrivate   bool    `gorm:"not null"`
	Status      string  `gorm:"not null;index"`
	IsStarred   bool    `gorm:"not null"`
	IsImportant bool    `gorm:"not null"`
	IsSpam      bool    `gorm:"not null;index"`
	PublicLink  string  `gorm:"uniqueIndex;not null"`
	Attachment  datatypes.JSON
	CreatedAt   time.Time `gorm:"not null;index:idx_messages_sender_created,priority:2;index:idx_messages_receiver_created,priority:2"`
	SentAt      *time.Time
	DeliveredAt *time.Time
	ReadAt      *time.Time
	UpdatedAt   time.Time
}

type BlockModel struct {
	BlockerID string    `gorm:"primaryKey"`
	BlockedID string    `gorm:"primaryKey"`
	IsSpam    bool      `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}

type SongModel struct {
	ID         string `gorm:"primaryKey"`
	Title      string `gorm:"not null;index"`
	Artist     string `gorm:"index"`
	Album      string `gorm:"index"`
	StorageKey string `gorm:"not null"`
	Filename   string `gorm:"not null"`
	UploaderID string `gorm:"not null;index"`
	IsPublic   bool   `gorm:"not null;index"`
	Duration   int
	SizeBytes  int64
	CreatedAt  time.Time `gorm:"not null;index"`
	UpdatedAt  time.Time
}

type PlaylistModel struct {
	ID        string    `gorm:"primaryKey"`
	Name      string    `gorm:"not null"`
	OwnerID   string    `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time
}

type PlaylistMemberModel struct {
	PlaylistID string    `gorm:"primaryKey"`
	UserID     string    `gorm:"primaryKey"`
	CreatedAt  time.Time `gorm:"not null"`
}

type PlaylistSongModel struct {
	PlaylistID string    `gorm:"primaryKey"`
	SongID     string    `gorm:"primaryKey"`
	CreatedAt  time.Time `gorm:"not null"`
}

// At most one invitation per (playlist, invitee email, status); the unique
// index is what keeps concurrent invites from creating duplicate pendings.
type PlaylistInvitationModel struct {
	ID           string  `gorm:"primaryKey"`
	PlaylistID   string  `gorm:"not null;uniqueIndex:idx_invitation_unique,priority:1;index"`
	InviterID    string  `gorm:"not null"`
	InviteeEmail string  `gorm:"not null;uniqueIndex:idx_invitation_unique,priority:2;index"`
	InviteeID    *string `gorm:"index"`
	Status       string  `gorm:"not null;uniqueIndex:idx_invitation_unique,priority:3"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time
}

type PlaybackStateModel struct {
	UserID       string  `gorm:"primaryKey"`
	SongID       *string `gorm:"index"`
	Position     float64
	LastPlayedAt time.Time `gorm:"not null"`
}

type FavoriteSongModel struct {
	UserID    string    `gorm:"primaryKey"`
	SongID    string    `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
}
