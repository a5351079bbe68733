package domain

import (
	"errors"
	"testing"
)

func TestCanViewMessage(t *testing.T) {
	sender := User{ID: "u1", Email: "a@x"}
	receiver := User{ID: "u2", Email: "b@x"}
	outsider := User{ID: "u3", Email: "c@x"}

	private := Message{ID: "m1", SenderID: sender.ID, ReceiverID: receiver.ID, IsPrivate: true}
	public := Message{ID: "m2", SenderID: sender.ID, IsPrivate: false}

	if err := CanViewMessage(public, nil); err != nil {
		t.Fatalf("public message should be viewable anonymously: %v", err)
	}
	if err := CanViewMessage(private, nil); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized for anonymous private view, got %v", err)
	}
	if err := CanViewMessage(private, &outsider); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden for outsider, got %v", err)
	}
	if err := CanViewMessage(private, &sender); err != nil {
		t.Fatalf("sender should view: %v", err)
	}
	if err := CanViewMessage(private, &receiver); err != nil {
		t.Fatalf("receiver should view: %v", err)
	}
}

func TestCanReceiverAct(t *testing.T) {
	m := Message{SenderID: "u1", ReceiverID: "u2", IsPrivate: true}
	if err := CanReceiverAct(m, User{ID: "u1"}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("sender must not mark own message read, got %v", err)
	}
	if err := CanReceiverAct(m, User{ID: "u2"}); err != nil {
		t.Fatalf("receiver should act: %v", err)
	}
	// public messages have no receiver
	if err := CanReceiverAct(Message{SenderID: "u1"}, User{ID: "u2"}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden on receiverless message, got %v", err)
	}
}

func TestPlaylistMembership(t *testing.T) {
	p := Playlist{ID: "p1", OwnerID: "owner", MemberIDs: []string{"m1"}}
	if !p.IsMember("owner") {
		t.Fatal("owner is implicitly a member")
	}
	if !p.IsMember("m1") {
		t.Fatal("listed member is a member")
	}
	if p.IsMember("stranger") {
		t.Fatal("stranger is not a member")
	}
	if err := CanEditPlaylist(p, User{ID: "m1"}); err != nil {
		t.Fatalf("members have edit rights: %v", err)
	}
	if err := CanEditPlaylist(p, User{ID: "stranger"}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestCanAccessSong(t *testing.T) {
	song := Song{ID: "s1", UploaderID: "u1"}
	if err := CanAccessSong(song, User{ID: "u1"}); err != nil {
		t.Fatalf("uploader should access: %v", err)
	}
	if err := CanAccessSong(song, User{ID: "u2"}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden on private song, got %v", err)
	}
	song.IsPublic = true
	if err := CanAccessSong(song, User{ID: "u2"}); err != nil {
		t.Fatalf("public song should be accessible: %v", err)
	}
}
