package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"mailroom/internal/app"
	"mailroom/pkg/domain"
	"mailroom/pkg/storage"
	"mailroom/pkg/store"
)

const testPassword = "Str0ng#Pass!23"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	a, err := app.New(app.Config{
		Store:    store.NewMemoryStore(),
		Sessions: store.NewMemorySessionStore(),
		Objects:  storage.NewMemoryObjectStore(),
	})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	srv, err := New(Config{App: a})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func doJSON(t *testing.T, method, url, token string, body any) (*http.Response, envelope) {
	t.Helper()
	var buf io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		buf = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil && err != io.EOF {
		t.Fatalf("decode response: %v", err)
	}
	return resp, env
}

func signUpUser(t *testing.T, ts *httptest.Server, email string) (domain.User, string) {
	t.Helper()
	resp, env := doJSON(t, http.MethodPost, ts.URL+"/api/auth/signup", "", map[string]string{
		"email":    email,
		"password": testPassword,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("signup %s: status %d error %q", email, resp.StatusCode, env.Error)
	}
	var auth struct {
		Token string      `json:"token"`
		User  domain.User `json:"user"`
	}
	if err := json.Unmarshal(env.Data, &auth); err != nil {
		t.Fatalf("decode auth data: %v", err)
	}
	return auth.User, auth.Token
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("get healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestSignupLoginMe(t *testing.T) {
	ts := newTestServer(t)
	user, token := signUpUser(t, ts, "alice@example.com")
	if user.Email != "alice@example.com" || token == "" {
		t.Fatalf("unexpected signup result: %+v token=%q", user, token)
	}

	resp, env := doJSON(t, http.MethodGet, ts.URL+"/api/users/me", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me: status %d error %q", resp.StatusCode, env.Error)
	}

	// Wrong password.
	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/api/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong-password",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}

	// Duplicate signup.
	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/api/auth/signup", "", map[string]string{
		"email":    "alice@example.com",
		"password": testPassword,
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}

	// Unauthenticated me.
	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/api/users/me", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestMessageFlowOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	_, aliceTok := signUpUser(t, ts, "alice@example.com")
	_, bobTok := signUpUser(t, ts, "bob@example.com")

	resp, env := doJSON(t, http.MethodPost, ts.URL+"/api/messages/send", aliceTok, map[string]any{
		"isPrivate":     true,
		"receiverEmail": "bob@example.com",
		"subject":       "hello",
		"body":          "over http",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("send: status %d error %q", resp.StatusCode, env.Error)
	}
	var msg domain.Message
	if err := json.Unmarshal(env.Data, &msg); err != nil {
		t.Fatalf("decode message: %v", err)
	}

	// Receiver lists the inbox.
	resp, env = doJSON(t, http.MethodGet, ts.URL+"/api/messages?kind=inbox", bobTok, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list: status %d error %q", resp.StatusCode, env.Error)
	}
	var listing struct {
		Items []domain.Message `json:"items"`
		Count int              `json:"count"`
	}
	if err := json.Unmarshal(env.Data, &listing); err != nil {
		t.Fatalf("decode listing: %v", err)
	}
	if listing.Count != 1 || listing.Items[0].ID != msg.ID {
		t.Fatalf("unexpected listing: %+v", listing)
	}

	// Receiver marks it read.
	resp, env = doJSON(t, http.MethodPost, ts.URL+"/api/messages/"+msg.ID+"/mark-read", bobTok, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("mark-read: status %d error %q", resp.StatusCode, env.Error)
	}

	// Star, archive, and unarchive round trip.
	resp, env = doJSON(t, http.MethodPost, ts.URL+"/api/messages/"+msg.ID+"/toggle-star", bobTok, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("toggle-star: status %d error %q", resp.StatusCode, env.Error)
	}
	var starred domain.Message
	if err := json.Unmarshal(env.Data, &starred); err != nil {
		t.Fatalf("decode starred: %v", err)
	}
	if !starred.IsStarred {
		t.Fatalf("expected starred message, got %+v", starred)
	}
	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/api/messages/"+msg.ID+"/archive", bobTok, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("archive: status %d", resp.StatusCode)
	}
	resp, env = doJSON(t, http.MethodPost, ts.URL+"/api/messages/"+msg.ID+"/unarchive", bobTok, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unarchive: status %d error %q", resp.StatusCode, env.Error)
	}
	var restored domain.Message
	if err := json.Unmarshal(env.Data, &restored); err != nil {
		t.Fatalf("decode restored: %v", err)
	}
	if restored.Status != domain.StatusRead {
		t.Fatalf("expected read status after unarchive, got %s", restored.Status)
	}

	// Sender cannot mark read.
	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/api/messages/"+msg.ID+"/mark-read", aliceTok, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}

	// Delete hides it.
	resp, _ = doJSON(t, http.MethodDelete, ts.URL+"/api/messages/"+msg.ID, bobTok, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete: status %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/api/messages/"+msg.ID, bobTok, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", resp.StatusCode)
	}
}

func TestPublicMessageAnonymousRead(t *testing.T) {
	ts := newTestServer(t)
	_, aliceTok := signUpUser(t, ts, "alice@example.com")

	resp, env := doJSON(t, http.MethodPost, ts.URL+"/api/messages/send", aliceTok, map[string]any{
		"subject": "open letter",
		"body":    "for everyone",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("send: status %d error %q", resp.StatusCode, env.Error)
	}
	var msg domain.Message
	if err := json.Unmarshal(env.Data, &msg); err != nil {
		t.Fatalf("decode message: %v", err)
	}

	// No token at all, via the public link.
	resp, env = doJSON(t, http.MethodGet, ts.URL+"/api/messages/public/"+msg.PublicLink, "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("public read: status %d error %q", resp.StatusCode, env.Error)
	}

	// And via the message id itself.
	resp, env = doJSON(t, http.MethodGet, ts.URL+"/api/messages/"+msg.ID, "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("anonymous read by id: status %d error %q", resp.StatusCode, env.Error)
	}
}

func TestBlockAndSpamOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	_, aliceTok := signUpUser(t, ts, "alice@example.com")
	_, bobTok := signUpUser(t, ts, "bob@example.com")

	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/api/messages/block", bobTok, map[string]string{
		"email": "alice@example.com",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("block: status %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/api/messages/send", aliceTok, map[string]any{
		"isPrivate":     true,
		"receiverEmail": "bob@example.com",
		"body":          "please",
	})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for blocked send, got %d", resp.StatusCode)
	}

	// A block with the spam flag is accepted too.
	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/api/messages/block", bobTok, map[string]any{
		"email":  "alice@example.com",
		"isSpam": true,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("spam block: status %d", resp.StatusCode)
	}

	// Self-block maps to 422.
	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/api/messages/block", bobTok, map[string]string{
		"email": "bob@example.com",
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for self-block, got %d", resp.StatusCode)
	}

	// Unblocking someone never blocked maps to 404.
	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/api/messages/unblock", aliceTok, map[string]string{
		"email": "bob@example.com",
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unblock, got %d", resp.StatusCode)
	}

	resp, env := doJSON(t, http.MethodGet, ts.URL+"/api/messages/blocked", bobTok, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("blocked list: status %d error %q", resp.StatusCode, env.Error)
	}
}

func TestSongUploadOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	_, tok := signUpUser(t, ts, "alice@example.com")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "demo_track.mp3")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write([]byte("fake audio")); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	mw.Close()

	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/api/music/songs/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("upload: status %d body %s", resp.StatusCode, raw)
	}
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	var song domain.Song
	if err := json.Unmarshal(env.Data, &song); err != nil {
		t.Fatalf("decode song: %v", err)
	}
	if song.Title != "demo track" {
		t.Fatalf("unexpected title: %q", song.Title)
	}

	// Streaming URL.
	resp2, env2 := doJSON(t, http.MethodGet, ts.URL+"/api/music/songs/"+song.ID+"/url", tok, nil)
	if resp2.StatusCode != http.StatusOK {
		t.Fatalf("song url: status %d error %q", resp2.StatusCode, env2.Error)
	}
}

func TestPlaylistFlowOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	_, aliceTok := signUpUser(t, ts, "alice@example.com")
	bob, bobTok := signUpUser(t, ts, "bob@example.com")

	resp, env := doJSON(t, http.MethodPost, ts.URL+"/api/music/playlists", aliceTok, map[string]string{
		"name": "Shared",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create playlist: status %d error %q", resp.StatusCode, env.Error)
	}
	var p domain.Playlist
	if err := json.Unmarshal(env.Data, &p); err != nil {
		t.Fatalf("decode playlist: %v", err)
	}

	// Bob cannot see it yet.
	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/api/music/playlists/"+p.ID, bobTok, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}

	resp, env = doJSON(t, http.MethodPost, ts.URL+"/api/music/playlists/"+p.ID+"/invite", aliceTok, map[string]string{
		"email": bob.Email,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("invite: status %d error %q", resp.StatusCode, env.Error)
	}
	var inv domain.PlaylistInvitation
	if err := json.Unmarshal(env.Data, &inv); err != nil {
		t.Fatalf("decode invitation: %v", err)
	}

	resp, env = doJSON(t, http.MethodPost, ts.URL+"/api/music/invitations/"+inv.ID+"/respond", bobTok, map[string]bool{
		"accept": true,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("respond: status %d error %q", resp.StatusCode, env.Error)
	}

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/api/music/playlists/"+p.ID, bobTok, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("member read: status %d", resp.StatusCode)
	}

	// Members may rename.
	resp, env = doJSON(t, http.MethodPost, ts.URL+"/api/music/playlists/"+p.ID+"/rename", bobTok, map[string]string{
		"name": "Shared Mix",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("rename: status %d error %q", resp.StatusCode, env.Error)
	}
	var renamed domain.Playlist
	if err := json.Unmarshal(env.Data, &renamed); err != nil {
		t.Fatalf("decode renamed: %v", err)
	}
	if renamed.Name != "Shared Mix" {
		t.Fatalf("unexpected name: %q", renamed.Name)
	}
}

func TestSignupRateLimit(t *testing.T) {
	redisSrv := miniredis.RunT(t)
	a, err := app.New(app.Config{
		Store:    store.NewMemoryStore(),
		Sessions: store.NewMemorySessionStore(),
		Objects:  storage.NewMemoryObjectStore(),
	})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	srv, err := New(Config{
		App:                      a,
		RedisAddr:                redisSrv.Addr(),
		SignupRateLimitPerMinute: 2,
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	var last int
	for i := 0; i < 3; i++ {
		resp, _ := doJSON(t, http.MethodPost, ts.URL+"/api/auth/signup", "", map[string]string{
			"email":    fmt.Sprintf("user%d@example.com", i),
			"password": testPassword,
		})
		last = resp.StatusCode
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected 429 on third signup, got %d", last)
	}
}

func TestSecurityHeadersPresent(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.Header.Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("expected security headers, got %v", resp.Header)
	}
	if resp.Header.Get("X-Request-Id") == "" {
		t.Fatalf("expected request id header")
	}
}
