package server

import (
	"net/http"
	"strings"

	"mailroom/internal/app"
	"mailroom/pkg/domain"
)

func (s *Server) handleListSongs(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	songs, err := s.app.ListSongs(user, r.URL.Query().Get("q"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, "ok", map[string]any{
		"items": songs,
		"count": len(songs),
	})
}

// handleSongSubtree dispatches everything below /api/music/songs/.
func (s *Server) handleSongSubtree(w http.ResponseWriter, r *http.Request) {
	user, ok := s.authorize(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/music/songs/")

	switch rest {
	case "upload":
		s.handleUploadSong(w, r, user)
		return
	case "upload-multiple":
		s.handleUploadSongs(w, r, user)
		return
	case "public-status":
		s.handlePublicStatus(w, r, user)
		return
	}

	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) == 2 && parts[1] == "url" {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		url, err := s.app.SongURL(r.Context(), user, parts[0])
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeData(w, http.StatusOK, "ok", map[string]string{"url": url})
		return
	}
	http.NotFound(w, r)
}

func (s *Server) handleUploadSong(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, 52<<20)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form data")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required (field: file)")
		return
	}
	defer file.Close()
	song, err := s.app.UploadSong(r.Context(), user, app.SongUpload{
		Filename: header.Filename,
		Reader:   file,
		Size:     header.Size,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusCreated, "song uploaded", song)
}

func (s *Server) handleUploadSongs(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, 256<<20)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form data")
		return
	}
	if r.MultipartForm == nil || len(r.MultipartForm.File["files"]) == 0 {
		writeError(w, http.StatusBadRequest, "files are required (field: files)")
		return
	}
	uploads := make([]app.SongUpload, 0, len(r.MultipartForm.File["files"]))
	for _, header := range r.MultipartForm.File["files"] {
		file, err := header.Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, "unreadable file "+header.Filename)
			return
		}
		defer file.Close()
		uploads = append(uploads, app.SongUpload{
			Filename: header.Filename,
			Reader:   file,
			Size:     header.Size,
		})
	}
	songs, err := s.app.UploadSongs(r.Context(), user, uploads)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusCreated, "songs uploaded", map[string]any{
		"items": songs,
		"count": len(songs),
	})
}

func (s *Server) handlePublicStatus(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req publicStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	n, err := s.app.SetSongsPublic(user, req.SongIDs, req.IsPublic)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, "visibility updated", map[string]int64{"updated": n})
}

func (s *Server) handlePlaylists(w http.ResponseWriter, r *http.Request, user domain.User) {
	switch r.Method {
	case http.MethodGet:
		lists, err := s.app.ListPlaylists(user)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeData(w, http.StatusOK, "ok", map[string]any{
			"items": lists,
			"count": len(lists),
		})
	case http.MethodPost:
		var req playlistRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		p, err := s.app.CreatePlaylist(user, req.Name)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeData(w, http.StatusCreated, "playlist created", p)
	default:
		methodNotAllowed(w)
	}
}

// handlePlaylistSubtree dispatches everything below /api/music/playlists/.
func (s *Server) handlePlaylistSubtree(w http.ResponseWriter, r *http.Request) {
	user, ok := s.authorize(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/music/playlists/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	id := parts[0]
	if id == "" {
		http.NotFound(w, r)
		return
	}
	if len(parts) == 1 {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		p, err := s.app.GetPlaylist(user, id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeData(w, http.StatusOK, "ok", p)
		return
	}
	if len(parts) != 2 {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	switch parts[1] {
	case "rename":
		var req playlistRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		p, err := s.app.RenamePlaylist(user, id, req.Name)
		s.respondPlaylist(w, p, err)
	case "add-song":
		var req songRefRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		p, err := s.app.AddSongToPlaylist(user, id, req.SongID)
		s.respondPlaylist(w, p, err)
	case "remove-song":
		var req songRefRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		p, err := s.app.RemoveSongFromPlaylist(user, id, req.SongID)
		s.respondPlaylist(w, p, err)
	case "invite":
		var req emailRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		inv, err := s.app.InviteToPlaylist(r.Context(), user, id, req.Email)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeData(w, http.StatusCreated, "invitation sent", inv)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) respondPlaylist(w http.ResponseWriter, p domain.Playlist, err error) {
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, "ok", p)
}

func (s *Server) handleListInvitations(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	invs, err := s.app.ListInvitations(user)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, "ok", map[string]any{
		"items": invs,
		"count": len(invs),
	})
}

// handleInvitationSubtree dispatches /api/music/invitations/{id}/respond.
func (s *Server) handleInvitationSubtree(w http.ResponseWriter, r *http.Request) {
	user, ok := s.authorize(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/music/invitations/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) != 2 || parts[1] != "respond" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req respondRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	inv, err := s.app.RespondToInvitation(r.Context(), user, parts[0], req.Accept)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, "invitation updated", inv)
}

func (s *Server) handlePlayback(w http.ResponseWriter, r *http.Request, user domain.User) {
	switch r.Method {
	case http.MethodGet:
		state, err := s.app.GetPlayback(user)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeData(w, http.StatusOK, "ok", state)
	case http.MethodPost:
		var req playbackRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		state, err := s.app.SavePlayback(user, req.SongID, req.Position)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeData(w, http.StatusOK, "playback saved", state)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleFavorites(w http.ResponseWriter, r *http.Request, user domain.User) {
	switch r.Method {
	case http.MethodGet:
		songs, err := s.app.ListFavorites(user)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeData(w, http.StatusOK, "ok", map[string]any{
			"items": songs,
			"count": len(songs),
		})
	case http.MethodPost:
		var req songRefRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if err := s.app.AddFavorite(user, req.SongID); err != nil {
			writeDomainError(w, err)
			return
		}
		writeData(w, http.StatusCreated, "favorite added", nil)
	default:
		methodNotAllowed(w)
	}
}

// handleFavoriteByID handles DELETE /api/music/favorites/{songID}.
func (s *Server) handleFavoriteByID(w http.ResponseWriter, r *http.Request) {
	user, ok := s.authorize(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if r.Method != http.MethodDelete {
		methodNotAllowed(w)
		return
	}
	songID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/music/favorites/"), "/")
	if songID == "" {
		http.NotFound(w, r)
		return
	}
	if err := s.app.RemoveFavorite(user, songID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, "favorite removed", nil)
}

type publicStatusRequest struct {
	SongIDs  []string `json:"songIds"`
	IsPublic bool     `json:"isPublic"`
}

type playlistRequest struct {
	Name string `json:"name"`
}

type songRefRequest struct {
	SongID string `json:"songId"`
}

type respondRequest struct {
	Accept bool `json:"accept"`
}

type playbackRequest struct {
	SongID   string  `json:"songId"`
	Position float64 `json:"position"`
}
