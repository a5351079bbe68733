package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"mailroom/pkg/domain"
)

const migrateLockID int64 = 48302215

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations under an advisory lock
// so concurrent instances do not race each other.
func NewGormStore(dsn string) (*GormStore, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := withMigrationLock(db, func(tx *gorm.DB) error {
		return tx.AutoMigrate(
			&UserModel{},
			&MessageModel{},
			&BlockModel{},
			&SongModel{},
			&PlaylistModel{},
			&PlaylistMemberModel{},
			&PlaylistSongModel{},
			&PlaylistInvitationModel{},
			&PlaybackStateModel{},
			&FavoriteSongModel{},
		)
	}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

func withMigrationLock(db *gorm.DB, fn func(*gorm.DB) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("open sql conn: %w", err)
	}
	defer conn.Close()
	if err := execAdvisory(ctx, conn, "SELECT pg_advisory_lock($1)", migrateLockID); err != nil {
		return fmt.Errorf("acquire migrate lock: %w", err)
	}
	defer func() {
		_ = execAdvisory(ctx, conn, "SELECT pg_advisory_unlock($1)", migrateLockID)
	}()
	return fn(db)
}

func execAdvisory(ctx context.Context, conn *sql.Conn, query string, lockID int64) error {
	_, err := conn.ExecContext(ctx, query, lockID)
	return err
}

// SaveUser registers or updates a user.
func (s *GormStore) SaveUser(u domain.User) error {
	model := userToModel(u)
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "username", "password_hash", "updated_at"}),
	}).Create(&model).Error
}

// HasUserEmail checks if email exists.
func (s *GormStore) HasUserEmail(email string) (bool, error) {
	var count int64
	if err := s.db.Model(&UserModel{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetUserByEmail looks up a user by email.
func (s *GormStore) GetUserByEmail(email string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.Where("email = ?", email).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// GetUserByID returns a user by ID.
func (s *GormStore) GetUserByID(id string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// SaveMessage stores or updates a message.
func (s *GormStore) SaveMessage(m domain.Message) error {
	model := messageToModel(m)
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status", "is_starred", "is_important", "is_spam",
			"delivered_at", "read_at", "updated_at",
		}),
	}).Create(&model).Error
}

// GetMessage retrieves a message by ID.
func (s *GormStore) GetMessage(id string) (domain.Message, bool, error) {
	var model MessageModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Message{}, false, nil
		}
		return domain.Message{}, false, err
	}
	return messageFromModel(model), true, nil
}

// GetMessageByPublicLink retrieves a message by its public link token.
func (s *GormStore) GetMessageByPublicLink(link string) (domain.Message, bool, error) {
	var model MessageModel
	if err := s.db.First(&model, "public_link = ?", link).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Message{}, false, nil
		}
		return domain.Message{}, false, err
	}
	return messageFromModel(model), true, nil
}

// ListMessages applies the kind predicate, search filter, and ordering.
// Deleted messages are always excluded.
func (s *GormStore) ListMessages(q MessageQuery) ([]domain.Message, error) {
	tx := s.db.Model(&MessageModel{}).Where("status <> ?", string(domain.StatusDeleted))

	switch q.Kind {
	case domain.KindSent:
		tx = tx.Where("sender_id = ?", q.UserID)
	case domain.KindReceived:
		tx = tx.Where("receiver_id = ?", q.UserID)
	case domain.KindInbox:
		tx = tx.Where("(receiver_id = ? OR is_private = false)", q.UserID).
			Where("is_spam = false").
			Where("status <> ?", string(domain.StatusArchived))
	case domain.KindStarred:
		tx = tx.Where(visibleScope, q.UserID, q.UserID).Where("is_starred = true")
	case domain.KindSpam:
		tx = tx.Where(visibleScope, q.UserID, q.UserID).Where("is_spam = true")
	case domain.KindArchived:
		tx = tx.Where(visibleScope, q.UserID, q.UserID).Where("status = ?", string(domain.StatusArchived))
	default:
		tx = tx.Where(visibleScope, q.UserID, q.UserID)
	}

	if search := strings.TrimSpace(q.Search); search != "" {
		pattern := "%" + search + "%"
		tx = tx.Where(
			`(subject ILIKE ? OR body ILIKE ?
			OR sender_id IN (SELECT id FROM user_models WHERE email ILIKE ? OR username ILIKE ?)
			OR receiver_id IN (SELECT id FROM user_models WHERE email ILIKE ? OR username ILIKE ?))`,
			pattern, pattern, pattern, pattern, pattern, pattern,
		)
	}

	var models []MessageModel
	if err := tx.Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	msgs := make([]domain.Message, 0, len(models))
	for _, m := range models {
		msgs = append(msgs, messageFromModel(m))
	}
	return msgs, nil
}

const visibleScope = "(sender_id = ? OR receiver_id = ? OR is_private = false)"

// ListContacts returns users the given user has exchanged messages with.
// It is a derived view over message history, not a stored relation.
func (s *GormStore) ListContacts(userID string) ([]domain.User, error) {
	var models []UserModel
	err := s.db.Where(`id IN (
		SELECT receiver_id FROM message_models WHERE sender_id = ? AND receiver_id IS NOT NULL
		UNION
		SELECT sender_id FROM message_models WHERE receiver_id = ?
	)`, userID, userID).
		Where("id <> ?", userID).
		Order("email ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	users := make([]domain.User, 0, len(models))
	for _, m := range models {
		users = append(users, userFromModel(m))
	}
	return users, nil
}

// GetBlock returns a block row if present.
func (s *GormStore) GetBlock(blockerID, blockedID string) (domain.Block, bool, error) {
	var model BlockModel
	if err := s.db.First(&model, "blocker_id = ? AND blocked_id = ?", blockerID, blockedID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Block{}, false, nil
		}
		return domain.Block{}, false, err
	}
	return blockFromModel(model), true, nil
}

// UpsertBlock creates or updates the (blocker, blocked) pair.
func (s *GormStore) UpsertBlock(b domain.Block) error {
	model := blockToModel(b)
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "blocker_id"}, {Name: "blocked_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_spam"}),
	}).Create(&model).Error
}

// DeleteBlock removes a block pair; reports whether a row existed.
func (s *GormStore) DeleteBlock(blockerID, blockedID string) (bool, error) {
	res := s.db.Delete(&BlockModel{}, "blocker_id = ? AND blocked_id = ?", blockerID, blockedID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListBlockedUsers returns the users blocked by blockerID.
func (s *GormStore) ListBlockedUsers(blockerID string) ([]domain.User, error) {
	var models []UserModel
	err := s.db.Where("id IN (SELECT blocked_id FROM block_models WHERE blocker_id = ?)", blockerID).
		Order("email ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	users := make([]domain.User, 0, len(models))
	for _, m := range models {
		users = append(users, userFromModel(m))
	}
	return users, nil
}

// MarkSenderSpam upserts the block with is_spam=true and retags the sender's
// historical messages to the receiver in a single UPDATE, all in one
// transaction.
func (s *GormStore) MarkSenderSpam(receiverID, senderID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		model := BlockModel{
			BlockerID: receiverID,
			BlockedID: senderID,
			IsSpam:    true,
			CreatedAt: time.Now().UTC(),
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "blocker_id"}, {Name: "blocked_id"}},
			DoUpdates: clause.Assignments(map[string]any{"is_spam": true}),
		}).Create(&model).Error; err != nil {
			return err
		}
		return tx.Model(&MessageModel{}).
			Where("sender_id = ? AND receiver_id = ?", senderID, receiverID).
			Update("is_spam", true).Error
	})
}

// UnmarkSenderSpam clears the spam flag on an existing block, creating none
// if absent, and untags the matching historical messages.
func (s *GormStore) UnmarkSenderSpam(receiverID, senderID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&BlockModel{}).
			Where("blocker_id = ? AND blocked_id = ?", receiverID, senderID).
			Update("is_spam", false).Error; err != nil {
			return err
		}
		return tx.Model(&MessageModel{}).
			Where("sender_id = ? AND receiver_id = ?", senderID, receiverID).
			Update("is_spam", false).Error
	})
}

// SaveSong stores or updates a song.
func (s *GormStore) SaveSong(song domain.Song) error {
	model := songToModel(song)
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "artist", "album", "is_public", "duration", "size_bytes", "updated_at",
		}),
	}).Create(&model).Error
}

// GetSong retrieves a song by ID.
func (s *GormStore) GetSong(id string) (domain.Song, bool, error) {
	var model SongModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Song{}, false, nil
		}
		return domain.Song{}, false, err
	}
	return songFromModel(model), true, nil
}

// ListSongs returns the user's songs, optionally including public songs from
// other users, optionally filtered by a title/artist/album search.
func (s *GormStore) ListSongs(userID string, includePublic bool, search string) ([]domain.Song, error) {
	tx := s.db.Model(&SongModel{})
	if includePublic {
		tx = tx.Where("(uploader_id = ? OR is_public = true)", userID)
	} else {
		tx = tx.Where("uploader_id = ?", userID)
	}
	if search = strings.TrimSpace(search); search != "" {
		pattern := "%" + search + "%"
		tx = tx.Where("(title ILIKE ? OR artist ILIKE ? OR album ILIKE ?)", pattern, pattern, pattern)
	}
	var models []SongModel
	if err := tx.Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	songs := make([]domain.Song, 0, len(models))
	for _, m := range models {
		songs = append(songs, songFromModel(m))
	}
	return songs, nil
}

// SetSongsPublic bulk-updates visibility of the uploader's own songs.
func (s *GormStore) SetSongsPublic(uploaderID string, songIDs []string, public bool) (int64, error) {
	if len(songIDs) == 0 {
		return 0, nil
	}
	res := s.db.Model(&SongModel{}).
		Where("uploader_id = ? AND id IN ?", uploaderID, songIDs).
		Updates(map[string]any{"is_public": public, "updated_at": time.Now().UTC()})
	return res.RowsAffected, res.Error
}

// SavePlaylist stores or renames a playlist. Members and songs are managed
// through the join-table operations below.
func (s *GormStore) SavePlaylist(p domain.Playlist) error {
	model := playlistToModel(p)
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "updated_at"}),
	}).Create(&model).Error
}

// GetPlaylist retrieves a playlist with its member and song ID sets.
func (s *GormStore) GetPlaylist(id string) (domain.Playlist, bool, error) {
	var model PlaylistModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Playlist{}, false, nil
		}
		return domain.Playlist{}, false, err
	}
	playlist := playlistFromModel(model)
	if err := s.fillPlaylistSets(&playlist); err != nil {
		return domain.Playlist{}, false, err
	}
	return playlist, true, nil
}

// ListPlaylistsForUser returns playlists the user owns or is a member of.
func (s *GormStore) ListPlaylistsForUser(userID string) ([]domain.Playlist, error) {
	var models []PlaylistModel
	err := s.db.Where("owner_id = ? OR id IN (SELECT playlist_id FROM playlist_member_models WHERE user_id = ?)", userID, userID).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	playlists := make([]domain.Playlist, 0, len(models))
	for _, m := range models {
		playlist := playlistFromModel(m)
		if err := s.fillPlaylistSets(&playlist); err != nil {
			return nil, err
		}
		playlists = append(playlists, playlist)
	}
	return playlists, nil
}

func (s *GormStore) fillPlaylistSets(p *domain.Playlist) error {
	var members []PlaylistMemberModel
	if err := s.db.Where("playlist_id = ?", p.ID).Order("created_at ASC").Find(&members).Error; err != nil {
		return err
	}
	for _, m := range members {
		p.MemberIDs = append(p.MemberIDs, m.UserID)
	}
	var songs []PlaylistSongModel
	if err := s.db.Where("playlist_id = ?", p.ID).Order("created_at ASC").Find(&songs).Error; err != nil {
		return err
	}
	for _, m := range songs {
		p.SongIDs = append(p.SongIDs, m.SongID)
	}
	return nil
}

// AddPlaylistSong inserts into the song set; re-adding is a no-op.
func (s *GormStore) AddPlaylistSong(playlistID, songID string) error {
	model := PlaylistSongModel{PlaylistID: playlistID, SongID: songID, CreatedAt: time.Now().UTC()}
	return s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&model).Error
}

// RemovePlaylistSong removes from the song set; removing an absent song is a
// no-op.
func (s *GormStore) RemovePlaylistSong(playlistID, songID string) error {
	return s.db.Delete(&PlaylistSongModel{}, "playlist_id = ? AND song_id = ?", playlistID, songID).Error
}

// AddPlaylistMember inserts into the member set; re-adding is a no-op.
func (s *GormStore) AddPlaylistMember(playlistID, userID string) error {
	model := PlaylistMemberModel{PlaylistID: playlistID, UserID: userID, CreatedAt: time.Now().UTC()}
	return s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&model).Error
}

// SaveInvitation stores or updates an invitation.
func (s *GormStore) SaveInvitation(inv domain.PlaylistInvitation) error {
	model := invitationToModel(inv)
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "invitee_id", "updated_at"}),
	}).Create(&model).Error
}

// GetInvitation retrieves an invitation by ID.
func (s *GormStore) GetInvitation(id string) (domain.PlaylistInvitation, bool, error) {
	var model PlaylistInvitationModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.PlaylistInvitation{}, false, nil
		}
		return domain.PlaylistInvitation{}, false, err
	}
	return invitationFromModel(model), true, nil
}

// HasPendingInvitation checks for an open invitation on the playlist/email pair.
func (s *GormStore) HasPendingInvitation(playlistID, inviteeEmail string) (bool, error) {
	var count int64
	err := s.db.Model(&PlaylistInvitationModel{}).
		Where("playlist_id = ? AND invitee_email = ? AND status = ?", playlistID, inviteeEmail, string(domain.InvitationPending)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListPendingInvitations returns open invitations addressed to an email.
func (s *GormStore) ListPendingInvitations(inviteeEmail string) ([]domain.PlaylistInvitation, error) {
	var models []PlaylistInvitationModel
	err := s.db.Where("invitee_email = ? AND status = ?", inviteeEmail, string(domain.InvitationPending)).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	invs := make([]domain.PlaylistInvitation, 0, len(models))
	for _, m := range models {
		invs = append(invs, invitationFromModel(m))
	}
	return invs, nil
}

// SavePlaybackState upserts the user's last-played song and position.
func (s *GormStore) SavePlaybackState(st domain.PlaybackState) error {
	model := playbackToModel(st)
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"song_id", "position", "last_played_at"}),
	}).Create(&model).Error
}

// GetPlaybackState returns the user's playback state if recorded.
func (s *GormStore) GetPlaybackState(userID string) (domain.PlaybackState, bool, error) {
	var model PlaybackStateModel
	if err := s.db.First(&model, "user_id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.PlaybackState{}, false, nil
		}
		return domain.PlaybackState{}, false, err
	}
	return playbackFromModel(model), true, nil
}

// SaveFavorite records a favorite; re-favoriting is a no-op.
func (s *GormStore) SaveFavorite(f domain.FavoriteSong) error {
	model := FavoriteSongModel{UserID: f.UserID, SongID: f.SongID, CreatedAt: f.CreatedAt}
	return s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&model).Error
}

// DeleteFavorite removes a favorite; reports whether a row existed.
func (s *GormStore) DeleteFavorite(userID, songID string) (bool, error) {
	res := s.db.Delete(&FavoriteSongModel{}, "user_id = ? AND song_id = ?", userID, songID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListFavoriteSongs returns the user's favorite songs, newest favorite first.
func (s *GormStore) ListFavoriteSongs(userID string) ([]domain.Song, error) {
	var models []SongModel
	err := s.db.Where("id IN (SELECT song_id FROM favorite_song_models WHERE user_id = ?)", userID).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	songs := make([]domain.Song, 0, len(models))
	for _, m := range models {
		songs = append(songs, songFromModel(m))
	}
	return songs, nil
}

func userToModel(u domain.User) UserModel {
	return UserModel{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func userFromModel(m UserModel) domain.User {
	return domain.User{
		ID:           m.ID,
		Email:        m.Email,
		Username:     m.Username,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func messageToModel(msg domain.Message) MessageModel {
	var receiverID *string
	if msg.ReceiverID != "" {
		value := msg.ReceiverID
		receiverID = &value
	}
	var attachment []byte
	if msg.Attachment != nil {
		attachment, _ = json.Marshal(msg.Attachment)
	}
	return MessageModel{
		ID:          msg.ID,
		SenderID:    msg.SenderID,
		ReceiverID:  receiverID,
		Subject:     msg.Subject,
		Body:        msg.Body,
		IsPrivate:   msg.IsPrivate,
		Status:      string(msg.Status),
		IsStarred:   msg.IsStarred,
		IsImportant: msg.IsImportant,
		IsSpam:      msg.IsSpam,
		PublicLink:  msg.PublicLink,
		Attachment:  attachment,
		CreatedAt:   msg.CreatedAt,
		SentAt:      msg.SentAt,
		DeliveredAt: msg.DeliveredAt,
		ReadAt:      msg.ReadAt,
		UpdatedAt:   msg.UpdatedAt,
	}
}

func messageFromModel(m MessageModel) domain.Message {
	receiverID := ""
	if m.ReceiverID != nil {
		receiverID = *m.ReceiverID
	}
	var attachment *domain.Attachment
	if len(m.Attachment) > 0 {
		var a domain.Attachment
		if err := json.Unmarshal(m.Attachment, &a); err == nil && a.Key != "" {
			attachment = &a
		}
	}
	return domain.Message{
		ID:          m.ID,
		SenderID:    m.SenderID,
		ReceiverID:  receiverID,
		Subject:     m.Subject,
		Body:        m.Body,
		IsPrivate:   m.IsPrivate,
		Status:      domain.MessageStatus(m.Status),
		IsStarred:   m.IsStarred,
		IsImportant: m.IsImportant,
		IsSpam:      m.IsSpam,
		PublicLink:  m.PublicLink,
		Attachment:  attachment,
		CreatedAt:   m.CreatedAt,
		SentAt:      m.SentAt,
		DeliveredAt: m.DeliveredAt,
		ReadAt:      m.ReadAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func blockToModel(b domain.Block) BlockModel {
	return BlockModel{
		BlockerID: b.BlockerID,
		BlockedID: b.BlockedID,
		IsSpam:    b.IsSpam,
		CreatedAt: b.CreatedAt,
	}
}

func blockFromModel(m BlockModel) domain.Block {
	return domain.Block{
		BlockerID: m.BlockerID,
		BlockedID: m.BlockedID,
		IsSpam:    m.IsSpam,
		CreatedAt: m.CreatedAt,
	}
}

func songToModel(s domain.Song) SongModel {
	return SongModel{
		ID:         s.ID,
		Title:      s.Title,
		Artist:     s.Artist,
		Album:      s.Album,
		StorageKey: s.StorageKey,
		Filename:   s.Filename,
		UploaderID: s.UploaderID,
		IsPublic:   s.IsPublic,
		Duration:   s.Duration,
		SizeBytes:  s.SizeBytes,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
}

func songFromModel(m SongModel) domain.Song {
	return domain.Song{
		ID:         m.ID,
		Title:      m.Title,
		Artist:     m.Artist,
		Album:      m.Album,
		StorageKey: m.StorageKey,
		Filename:   m.Filename,
		UploaderID: m.UploaderID,
		IsPublic:   m.IsPublic,
		Duration:   m.Duration,
		SizeBytes:  m.SizeBytes,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func playlistToModel(p domain.Playlist) PlaylistModel {
	return PlaylistModel{
		ID:        p.ID,
		Name:      p.Name,
		OwnerID:   p.OwnerID,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func playlistFromModel(m PlaylistModel) domain.Playlist {
	return domain.Playlist{
		ID:        m.ID,
		Name:      m.Name,
		OwnerID:   m.OwnerID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func invitationToModel(inv domain.PlaylistInvitation) PlaylistInvitationModel {
	var inviteeID *string
	if inv.InviteeID != "" {
		value := inv.InviteeID
		inviteeID = &value
	}
	return PlaylistInvitationModel{
		ID:           inv.ID,
		PlaylistID:   inv.PlaylistID,
		InviterID:    inv.InviterID,
		InviteeEmail: inv.InviteeEmail,
		InviteeID:    inviteeID,
		Status:       string(inv.Status),
		CreatedAt:    inv.CreatedAt,
		UpdatedAt:    inv.UpdatedAt,
	}
}

func invitationFromModel(m PlaylistInvitationModel) domain.PlaylistInvitation {
	inviteeID := ""
	if m.InviteeID != nil {
		inviteeID = *m.InviteeID
	}
	return domain.PlaylistInvitation{
		ID:           m.ID,
		PlaylistID:   m.PlaylistID,
		InviterID:    m.InviterID,
		InviteeEmail: m.InviteeEmail,
		InviteeID:    inviteeID,
		Status:       domain.InvitationStatus(m.Status),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func playbackToModel(st domain.PlaybackState) PlaybackStateModel {
	var songID *string
	if st.SongID != "" {
		value := st.SongID
		songID = &value
	}
	return PlaybackStateModel{
		UserID:       st.UserID,
		SongID:       songID,
		Position:     st.Position,
		LastPlayedAt: st.LastPlayedAt,
	}
}

func playbackFromModel(m PlaybackStateModel) domain.PlaybackState {
	songID := ""
	if m.SongID != nil {
		songID = *m.SongID
	}
	return domain.PlaybackState{
		UserID:       m.UserID,
		SongID:       songID,
		Position:     m.Position,
		LastPlayedAt: m.LastPlayedAt,
	}
}
