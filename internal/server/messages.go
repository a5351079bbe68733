package server

import (
	"net/http"
	"strings"

	"mailroom/internal/app"
	"mailroom/pkg/domain"
)

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	kind := domain.MessageKind(r.URL.Query().Get("kind"))
	msgs, err := s.app.ListMessages(user, kind, r.URL.Query().Get("q"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, "ok", map[string]any{
		"items": msgs,
		"count": len(msgs),
	})
}

// handleMessageSubtree dispatches everything below /api/messages/.
func (s *Server) handleMessageSubtree(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/messages/")

	// public link reads allow anonymous callers
	if link, ok := strings.CutPrefix(rest, "public/"); ok {
		s.handlePublicMessage(w, r, link)
		return
	}

	switch rest {
	case "send", "contacts", "block", "unblock", "blocked", "spam/mark", "spam/unmark":
		user, ok := s.authorize(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		switch rest {
		case "send":
			s.handleSendMessage(w, r, user)
		case "contacts":
			s.handleContacts(w, r, user)
		case "block":
			s.handleBlock(w, r, user)
		case "unblock":
			s.handleUnblock(w, r, user)
		case "blocked":
			s.handleBlocked(w, r, user)
		case "spam/mark":
			s.handleMarkSpam(w, r, user)
		case "spam/unmark":
			s.handleUnmarkSpam(w, r, user)
		}
		return
	}

	parts := strings.Split(strings.Trim(rest, "/"), "/")
	id := parts[0]
	if id == "" {
		http.NotFound(w, r)
		return
	}

	// Reading a single message works without a token when it is public.
	if len(parts) == 1 && r.Method == http.MethodGet {
		msg, err := s.app.GetMessage(s.actorOrNil(r), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeData(w, http.StatusOK, "ok", msg)
		return
	}

	user, ok := s.authorize(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if len(parts) == 1 {
		s.handleMessageByID(w, r, user, id)
		return
	}
	if len(parts) != 2 {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPost && parts[1] != "attachment" {
		methodNotAllowed(w)
		return
	}
	switch parts[1] {
	case "mark-read":
		msg, err := s.app.MarkAsRead(user, id)
		s.respondMessage(w, msg, err)
	case "toggle-star":
		msg, err := s.app.ToggleStar(user, id)
		s.respondMessage(w, msg, err)
	case "archive":
		msg, err := s.app.Archive(user, id)
		s.respondMessage(w, msg, err)
	case "unarchive":
		msg, err := s.app.Unarchive(user, id)
		s.respondMessage(w, msg, err)
	case "attachment":
		s.handleAttachmentURL(w, r, user, id)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) respondMessage(w http.ResponseWriter, msg domain.Message, err error) {
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, "ok", msg)
}

func (s *Server) handleMessageByID(w http.ResponseWriter, r *http.Request, user domain.User, id string) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w)
		return
	}
	if err := s.app.DeleteMessage(user, id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, "message deleted", nil)
}

func (s *Server) handlePublicMessage(w http.ResponseWriter, r *http.Request, link string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	msg, err := s.app.GetMessageByPublicLink(s.actorOrNil(r), link)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, "ok", msg)
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.sendLimiter, "too many messages") {
		return
	}

	in := app.SendMessageInput{}
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		r.Body = http.MaxBytesReader(w, r.Body, 12<<20)
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			writeError(w, http.StatusBadRequest, "invalid form data")
			return
		}
		in.IsPrivate = r.FormValue("isPrivate") == "true"
		in.ReceiverEmail = r.FormValue("receiverEmail")
		in.Subject = r.FormValue("subject")
		in.Body = r.FormValue("body")
		in.IsImportant = r.FormValue("isImportant") == "true"
		if file, header, err := r.FormFile("attachment"); err == nil {
			defer file.Close()
			in.Attachment = &app.AttachmentUpload{
				Filename: header.Filename,
				Reader:   file,
				Size:     header.Size,
			}
		}
	} else {
		var req sendMessageRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		in.IsPrivate = req.IsPrivate
		in.ReceiverEmail = req.ReceiverEmail
		in.Subject = req.Subject
		in.Body = req.Body
		in.IsImportant = req.IsImportant
	}

	msg, err := s.app.SendMessage(r.Context(), user, in)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusCreated, "message sent", msg)
}

func (s *Server) handleAttachmentURL(w http.ResponseWriter, r *http.Request, user domain.User, id string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	url, err := s.app.AttachmentURL(r.Context(), &user, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, "ok", map[string]string{"url": url})
}

func (s *Server) handleContacts(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	contacts, err := s.app.ListContacts(user)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, "ok", map[string]any{
		"items": contacts,
		"count": len(contacts),
	})
}

func (s *Server) handleBlock(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req blockRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.app.BlockUser(r.Context(), user, req.Email, req.IsSpam); err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, "user blocked", nil)
}

func (s *Server) handleUnblock(w http.ResponseWriter, r *http.Request, user domain.User) {
	s.handleEmailAction(w, r, user, "user unblocked", s.app.UnblockUser)
}

func (s *Server) handleMarkSpam(w http.ResponseWriter, r *http.Request, user domain.User) {
	s.handleEmailAction(w, r, user, "sender marked as spam", func(u domain.User, email string) error {
		return s.app.MarkSenderSpam(r.Context(), u, email)
	})
}

func (s *Server) handleUnmarkSpam(w http.ResponseWriter, r *http.Request, user domain.User) {
	s.handleEmailAction(w, r, user, "sender unmarked as spam", s.app.UnmarkSenderSpam)
}

func (s *Server) handleEmailAction(w http.ResponseWriter, r *http.Request, user domain.User, okMessage string, action func(domain.User, string) error) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req emailRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := action(user, req.Email); err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, okMessage, nil)
}

func (s *Server) handleBlocked(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	blocked, err := s.app.ListBlockedUsers(user)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, "ok", map[string]any{
		"items": blocked,
		"count": len(blocked),
	})
}

type sendMessageRequest struct {
	IsPrivate     bool   `json:"isPrivate"`
	ReceiverEmail string `json:"receiverEmail"`
	Subject       string `json:"subject"`
	Body          string `json:"body"`
	IsImportant   bool   `json:"isImportant"`
}

type blockRequest struct {
	Email  string `json:"email"`
	IsSpam bool   `json:"isSpam"`
}
