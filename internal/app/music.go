package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"mailroom/internal/util"
	"mailroom/pkg/domain"
	"mailroom/pkg/metadata"
	"mailroom/pkg/queue"
)

const maxSongBytes = 50 << 20 // 50 MiB

var allowedSongExts = map[string]bool{
	".mp3": true, ".wav": true, ".flac": true,
	".m4a": true, ".ogg": true, ".aac": true,
}

// SongUpload carries one audio file during upload.
type SongUpload struct {
	Filename string
	Reader   io.Reader
	Size     int64
}

// UploadSong stores an audio file and registers the song. Tag extraction runs
// in the background when a queue is configured, inline otherwise.
func (a *App) UploadSong(ctx context.Context, uploader domain.User, up SongUpload) (domain.Song, error) {
	filename := filepath.Base(strings.TrimSpace(up.Filename))
	if filename == "" || filename == "." {
		return domain.Song{}, fmt.Errorf("filename required: %w", domain.ErrValidation)
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedSongExts[ext] {
		return domain.Song{}, fmt.Errorf("audio type %s not allowed: %w", ext, domain.ErrValidation)
	}
	if up.Size <= 0 || up.Size > maxSongBytes {
		return domain.Song{}, fmt.Errorf("audio file exceeds 50MB limit: %w", domain.ErrValidation)
	}
	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	id := util.NewID()
	key := fmt.Sprintf("songs/%s/%s", id, filename)
	if err := a.objects.Put(ctx, key, io.LimitReader(up.Reader, maxSongBytes), up.Size, contentType); err != nil {
		return domain.Song{}, fmt.Errorf("store audio file: %w", err)
	}

	now := time.Now().UTC()
	song := domain.Song{
		ID:         id,
		Title:      metadata.Extract(nil, filename).Title,
		StorageKey: key,
		Filename:   filename,
		UploaderID: uploader.ID,
		SizeBytes:  up.Size,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := a.store.SaveSong(song); err != nil {
		return domain.Song{}, fmt.Errorf("save song: %w", err)
	}

	if a.queue != nil {
		if _, err := a.queue.Enqueue(ctx, song.ID, song.StorageKey); err != nil {
			slog.Error("failed to enqueue metadata job", "song_id", song.ID, "err", err)
		}
		return song, nil
	}
	if updated, err := a.extractSongMetadata(ctx, song); err == nil {
		song = updated
	}
	return song, nil
}

// UploadSongs uploads several audio files concurrently. The whole batch fails
// if any file is rejected.
func (a *App) UploadSongs(ctx context.Context, uploader domain.User, uploads []SongUpload) ([]domain.Song, error) {
	if len(uploads) == 0 {
		return nil, fmt.Errorf("no files provided: %w", domain.ErrValidation)
	}
	songs := make([]domain.Song, len(uploads))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, up := range uploads {
		i, up := i, up
		g.Go(func() error {
			song, err := a.UploadSong(gctx, uploader, up)
			if err != nil {
				return fmt.Errorf("%s: %w", up.Filename, err)
			}
			songs[i] = song
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return songs, nil
}

// ListSongs returns the actor's own songs plus everyone's public songs, with
// optional case-insensitive search over title, artist, and album.
func (a *App) ListSongs(actor domain.User, search string) ([]domain.Song, error) {
	songs, err := a.store.ListSongs(actor.ID, true, strings.TrimSpace(search))
	if err != nil {
		return nil, fmt.Errorf("list songs: %w", err)
	}
	return songs, nil
}

// SongURL returns a pre-signed streaming URL for a song the actor may access.
func (a *App) SongURL(ctx context.Context, actor domain.User, songID string) (string, error) {
	song, err := a.getAccessibleSong(actor, songID)
	if err != nil {
		return "", err
	}
	url, err := a.objects.PresignGet(ctx, song.StorageKey, time.Hour)
	if err != nil {
		return "", fmt.Errorf("presign song: %w", err)
	}
	return url, nil
}

// SetSongsPublic flips the public flag on the actor's own songs and returns
// how many rows changed. Songs owned by others are silently skipped.
func (a *App) SetSongsPublic(actor domain.User, songIDs []string, public bool) (int64, error) {
	if len(songIDs) == 0 {
		return 0, fmt.Errorf("song ids required: %w", domain.ErrValidation)
	}
	n, err := a.store.SetSongsPublic(actor.ID, songIDs, public)
	if err != nil {
		return 0, fmt.Errorf("set songs public: %w", err)
	}
	return n, nil
}

// ProcessSongMetadata is the queue worker handler: it re-reads the stored
// audio and fills in embedded tag metadata.
func (a *App) ProcessSongMetadata(ctx context.Context, job queue.JobStatus) error {
	song, found, err := a.store.GetSong(job.SongID)
	if err != nil {
		return fmt.Errorf("fetch song: %w", err)
	}
	if !found {
		return nil // deleted before the job ran
	}
	_, err = a.extractSongMetadata(ctx, song)
	return err
}

func (a *App) extractSongMetadata(ctx context.Context, song domain.Song) (domain.Song, error) {
	obj, err := a.objects.Get(ctx, song.StorageKey)
	if err != nil {
		return song, fmt.Errorf("fetch audio: %w", err)
	}
	defer obj.Close()
	info := metadata.Extract(obj, song.Filename)
	song.Title = info.Title
	song.Artist = info.Artist
	song.Album = info.Album
	song.Duration = info.Duration
	song.UpdatedAt = time.Now().UTC()
	if err := a.store.SaveSong(song); err != nil {
		return song, fmt.Errorf("save song: %w", err)
	}
	return song, nil
}

// SavePlayback remembers the actor's current song and position.
func (a *App) SavePlayback(actor domain.User, songID string, position float64) (domain.PlaybackState, error) {
	if _, err := a.getAccessibleSong(actor, songID); err != nil {
		return domain.PlaybackState{}, err
	}
	if position < 0 {
		position = 0
	}
	state := domain.PlaybackState{
		UserID:       actor.ID,
		SongID:       songID,
		Position:     position,
		LastPlayedAt: time.Now().UTC(),
	}
	if err := a.store.SavePlaybackState(state); err != nil {
		return domain.PlaybackState{}, fmt.Errorf("save playback: %w", err)
	}
	return state, nil
}

// GetPlayback returns the actor's last playback state, or a zero state when
// they have never played anything.
func (a *App) GetPlayback(actor domain.User) (domain.PlaybackState, error) {
	state, found, err := a.store.GetPlaybackState(actor.ID)
	if err != nil {
		return domain.PlaybackState{}, fmt.Errorf("fetch playback: %w", err)
	}
	if !found {
		return domain.PlaybackState{UserID: actor.ID}, nil
	}
	return state, nil
}

// AddFavorite marks a song as a favorite; adding twice is a no-op.
func (a *App) AddFavorite(actor domain.User, songID string) error {
	if _, err := a.getAccessibleSong(actor, songID); err != nil {
		return err
	}
	fav := domain.FavoriteSong{
		UserID:    actor.ID,
		SongID:    songID,
		CreatedAt: time.Now().UTC(),
	}
	if err := a.store.SaveFavorite(fav); err != nil {
		return fmt.Errorf("save favorite: %w", err)
	}
	return nil
}

// RemoveFavorite unmarks a favorite.
func (a *App) RemoveFavorite(actor domain.User, songID string) error {
	removed, err := a.store.DeleteFavorite(actor.ID, strings.TrimSpace(songID))
	if err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}
	if !removed {
		return fmt.Errorf("favorite: %w", domain.ErrNotFound)
	}
	return nil
}

// ListFavorites returns the actor's favorite songs.
func (a *App) ListFavorites(actor domain.User) ([]domain.Song, error) {
	songs, err := a.store.ListFavoriteSongs(actor.ID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	return songs, nil
}

func (a *App) getAccessibleSong(actor domain.User, songID string) (domain.Song, error) {
	song, found, err := a.store.GetSong(strings.TrimSpace(songID))
	if err != nil {
		return domain.Song{}, fmt.Errorf("fetch song: %w", err)
	}
	if !found {
		return domain.Song{}, fmt.Errorf("song: %w", domain.ErrNotFound)
	}
	if err := domain.CanAccessSong(song, actor); err != nil {
		return domain.Song{}, fmt.Errorf("access song: %w", err)
	}
	return song, nil
}
