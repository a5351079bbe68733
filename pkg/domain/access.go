package domain

// Access rules. Each check returns nil when the actor may proceed and one of
// the error kinds otherwise; callers wrap with context before surfacing.

// CanViewMessage allows anyone (including anonymous callers, actor == nil) to
// view a public message. Private messages require the sender or receiver.
func CanViewMessage(m Message, actor *User) error {
	if !m.IsPrivate {
		return nil
	}
	if actor == nil {
		return ErrUnauthorized
	}
	if m.SenderID != actor.ID && m.ReceiverID != actor.ID {
		return ErrForbidden
	}
	return nil
}

// CanActOnMessage allows the sender or receiver to star, archive, or delete.
func CanActOnMessage(m Message, actor User) error {
	if m.SenderID != actor.ID && m.ReceiverID != actor.ID {
		return ErrForbidden
	}
	return nil
}

// CanReceiverAct allows only the receiver; the sender cannot mark their own
// sent message as read.
func CanReceiverAct(m Message, actor User) error {
	if m.ReceiverID == "" || m.ReceiverID != actor.ID {
		return ErrForbidden
	}
	return nil
}

// CanEditPlaylist allows the owner and every member; there is no read-only role.
func CanEditPlaylist(p Playlist, actor User) error {
	if !p.IsMember(actor.ID) {
		return ErrForbidden
	}
	return nil
}

// CanAccessSong allows the uploader always and anyone else when public.
func CanAccessSong(s Song, actor User) error {
	if s.UploaderID != actor.ID && !s.IsPublic {
		return ErrForbidden
	}
	return nil
}
