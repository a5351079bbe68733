package store

import (
	"mailroom/pkg/domain"
)

// MessageQuery selects messages visible to a user, filtered by kind and an
// optional case-insensitive search over subject, body, and the sender/receiver
// identity fields. Results are ordered by created_at descending and never
// include deleted messages.
type MessageQuery struct {
	UserID string
	Kind   domain.MessageKind
	Search string
}

// Store defines persistence operations for users, messages, blocks, songs,
// and playlists. Implementations enforce the uniqueness constraints the
// domain relies on: one Block per (blocker, blocked), one pending invitation
// per (playlist, invitee email), unique message public links, and one
// favorite per (user, song).
type Store interface {
	// users
	SaveUser(domain.User) error
	HasUserEmail(email string) (bool, error)
	GetUserByEmail(email string) (domain.User, bool, error)
	GetUserByID(id string) (domain.User, bool, error)

	// messages
	SaveMessage(domain.Message) error
	GetMessage(id string) (domain.Message, bool, error)
	GetMessageByPublicLink(link string) (domain.Message, bool, error)
	ListMessages(q MessageQuery) ([]domain.Message, error)
	ListContacts(userID string) ([]domain.User, error)

	// blocks
	GetBlock(blockerID, blockedID string) (domain.Block, bool, error)
	UpsertBlock(domain.Block) error
	DeleteBlock(blockerID, blockedID string) (bool, error)
	ListBlockedUsers(blockerID string) ([]domain.User, error)
	// MarkSenderSpam upserts Block(receiver, sender, spam=true) and retags
	// every historical message from sender to receiver in one transaction.
	MarkSenderSpam(receiverID, senderID string) error
	// UnmarkSenderSpam clears the spam flag on an existing block (creating
	// none if absent) and untags the same historical message set.
	UnmarkSenderSpam(receiverID, senderID string) error

	// songs
	SaveSong(domain.Song) error
	GetSong(id string) (domain.Song, bool, error)
	ListSongs(userID string, includePublic bool, search string) ([]domain.Song, error)
	SetSongsPublic(uploaderID string, songIDs []string, public bool) (int64, error)

	// playlists
	SavePlaylist(domain.Playlist) error
	GetPlaylist(id string) (domain.Playlist, bool, error)
	ListPlaylistsForUser(userID string) ([]domain.Playlist, error)
	AddPlaylistSong(playlistID, songID string) error
	RemovePlaylistSong(playlistID, songID string) error
	AddPlaylistMember(playlistID, userID string) error

	// invitations
	SaveInvitation(domain.PlaylistInvitation) error
	GetInvitation(id string) (domain.PlaylistInvitation, bool, error)
	HasPendingInvitation(playlistID, inviteeEmail string) (bool, error)
	ListPendingInvitations(inviteeEmail string) ([]domain.PlaylistInvitation, error)

	// playback & favorites
	SavePlaybackState(domain.PlaybackState) error
	GetPlaybackState(userID string) (domain.PlaybackState, bool, error)
	SaveFavorite(domain.FavoriteSong) error
	DeleteFavorite(userID, songID string) (bool, error)
	ListFavoriteSongs(userID string) ([]domain.Song, error)
}

// SessionStore persists session tokens.
type SessionStore interface {
	NewSession(userID string) (string, error)
	GetUserIDByToken(token string) (string, bool, error)
	DeleteSession(token string) error
}
