package app

import (
	"context"
	"strings"
	"testing"

	"mailroom/pkg/domain"
)

func uploadSong(t *testing.T, a *App, uploader domain.User, filename string) domain.Song {
	t.Helper()
	song, err := a.UploadSong(context.Background(), uploader, SongUpload{
		Filename: filename,
		Reader:   strings.NewReader("fake audio bytes"),
		Size:     16,
	})
	if err != nil {
		t.Fatalf("upload %s: %v", filename, err)
	}
	return song
}

func TestUploadSong(t *testing.T) {
	a, _ := newTestApp(t)
	alice := signUp(t, a, "alice@example.com")

	song := uploadSong(t, a, alice, "Midnight_Drive.mp3")
	if song.Title != "Midnight Drive" {
		t.Fatalf("unexpected title: %q", song.Title)
	}
	if song.UploaderID != alice.ID || song.IsPublic {
		t.Fatalf("unexpected song: %+v", song)
	}

	url, err := a.SongURL(context.Background(), alice, song.ID)
	if err != nil {
		t.Fatalf("song url: %v", err)
	}
	if url == "" {
		t.Fatalf("expected presigned url")
	}
}

func TestUploadSongRejectsBadFiles(t *testing.T) {
	a, _ := newTestApp(t)
	alice := signUp(t, a, "alice@example.com")

	cases := []SongUpload{
		{Filename: "notes.txt", Reader: strings.NewReader("x"), Size: 1},
		{Filename: "huge.mp3", Reader: strings.NewReader("x"), Size: maxSongBytes + 1},
		{Filename: "", Reader: strings.NewReader("x"), Size: 1},
	}
	for _, up := range cases {
		if _, err := a.UploadSong(context.Background(), alice, up); !isErr(err, domain.ErrValidation) {
			t.Fatalf("%q: expected validation error, got %v", up.Filename, err)
		}
	}
}

func TestUploadSongsBatch(t *testing.T) {
	a, _ := newTestApp(t)
	alice := signUp(t, a, "alice@example.com")

	songs, err := a.UploadSongs(context.Background(), alice, []SongUpload{
		{Filename: "one.mp3", Reader: strings.NewReader("a"), Size: 1},
		{Filename: "two.flac", Reader: strings.NewReader("b"), Size: 1},
		{Filename: "three.ogg", Reader: strings.NewReader("c"), Size: 1},
	})
	if err != nil {
		t.Fatalf("upload batch: %v", err)
	}
	if len(songs) != 3 {
		t.Fatalf("expected 3 songs, got %d", len(songs))
	}
	for _, s := range songs {
		if s.ID == "" {
			t.Fatalf("song missing id: %+v", s)
		}
	}

	if _, err := a.UploadSongs(context.Background(), alice, nil); !isErr(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for empty batch, got %v", err)
	}
}

func TestSongVisibility(t *testing.T) {
	a, _ := newTestApp(t)
	alice := signUp(t, a, "alice@example.com")
	bob := signUp(t, a, "bob@example.com")

	private := uploadSong(t, a, alice, "private.mp3")
	public := uploadSong(t, a, alice, "public.mp3")
	if _, err := a.SetSongsPublic(alice, []string{public.ID}, true); err != nil {
		t.Fatalf("set public: %v", err)
	}

	// Bob sees only the public song.
	songs, err := a.ListSongs(bob, "")
	if err != nil {
		t.Fatalf("list songs: %v", err)
	}
	if len(songs) != 1 || songs[0].ID != public.ID {
		t.Fatalf("expected only public song, got %+v", songs)
	}

	if _, err := a.SongURL(context.Background(), bob, private.ID); !isErr(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden for private song, got %v", err)
	}
	if _, err := a.SongURL(context.Background(), bob, public.ID); err != nil {
		t.Fatalf("public song url: %v", err)
	}
}

func TestSetSongsPublicSkipsForeignSongs(t *testing.T) {
	a, _ := newTestApp(t)
	alice := signUp(t, a, "alice@example.com")
	bob := signUp(t, a, "bob@example.com")

	mine := uploadSong(t, a, alice, "mine.mp3")
	theirs := uploadSong(t, a, bob, "theirs.mp3")

	n, err := a.SetSongsPublic(alice, []string{mine.ID, theirs.ID}, true)
	if err != nil {
		t.Fatalf("set public: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 row changed, got %d", n)
	}
	got, found, err := a.store.GetSong(theirs.ID)
	if err != nil || !found {
		t.Fatalf("fetch song: %v", err)
	}
	if got.IsPublic {
		t.Fatalf("expected foreign song to stay private")
	}

	if _, err := a.SetSongsPublic(alice, nil, true); !isErr(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for empty ids, got %v", err)
	}
}

func TestSearchSongs(t *testing.T) {
	a, _ := newTestApp(t)
	alice := signUp(t, a, "alice@example.com")

	uploadSong(t, a, alice, "Blue_Train.mp3")
	uploadSong(t, a, alice, "Giant_Steps.mp3")

	hits, err := a.ListSongs(alice, "blue")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 1 || hits[0].Title != "Blue Train" {
		t.Fatalf("unexpected hits: %+v", hits)
	}
}

func TestPlaybackState(t *testing.T) {
	a, _ := newTestApp(t)
	alice := signUp(t, a, "alice@example.com")
	song := uploadSong(t, a, alice, "loop.mp3")

	// Nothing played yet: zero state, not an error.
	state, err := a.GetPlayback(alice)
	if err != nil {
		t.Fatalf("get playback: %v", err)
	}
	if state.SongID != "" {
		t.Fatalf("expected empty playback state, got %+v", state)
	}

	saved, err := a.SavePlayback(alice, song.ID, 42.5)
	if err != nil {
		t.Fatalf("save playback: %v", err)
	}
	if saved.Position != 42.5 {
		t.Fatalf("unexpected position: %v", saved.Position)
	}
	state, err = a.GetPlayback(alice)
	if err != nil {
		t.Fatalf("get playback: %v", err)
	}
	if state.SongID != song.ID || state.Position != 42.5 {
		t.Fatalf("unexpected state: %+v", state)
	}

	if _, err := a.SavePlayback(alice, "missing", 0); !isErr(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for unknown song, got %v", err)
	}
}

func TestFavorites(t *testing.T) {
	a, _ := newTestApp(t)
	alice := signUp(t, a, "alice@example.com")
	song := uploadSong(t, a, alice, "fav.mp3")

	if err := a.AddFavorite(alice, song.ID); err != nil {
		t.Fatalf("add favorite: %v", err)
	}
	// Favoriting twice is a no-op.
	if err := a.AddFavorite(alice, song.ID); err != nil {
		t.Fatalf("re-add favorite: %v", err)
	}
	favs, err := a.ListFavorites(alice)
	if err != nil {
		t.Fatalf("list favorites: %v", err)
	}
	if len(favs) != 1 || favs[0].ID != song.ID {
		t.Fatalf("unexpected favorites: %+v", favs)
	}

	if err := a.RemoveFavorite(alice, song.ID); err != nil {
		t.Fatalf("remove favorite: %v", err)
	}
	if err := a.RemoveFavorite(alice, song.ID); !isErr(err, domain.ErrNotFound) {
		t.Fatalf("expected not found on second remove, got %v", err)
	}
}
