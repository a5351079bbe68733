package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mailroom/internal/util"
	"mailroom/pkg/domain"
	"mailroom/pkg/events"
)

// CreatePlaylist creates an empty playlist owned by the actor.
func (a *App) CreatePlaylist(actor domain.User, name string) (domain.Playlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Playlist{}, fmt.Errorf("playlist name required: %w", domain.ErrValidation)
	}
	now := time.Now().UTC()
	p := domain.Playlist{
		ID:        util.NewID(),
		Name:      name,
		OwnerID:   actor.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := a.store.SavePlaylist(p); err != nil {
		return domain.Playlist{}, fmt.Errorf("save playlist: %w", err)
	}
	return p, nil
}

// ListPlaylists returns every playlist the actor owns or is a member of.
func (a *App) ListPlaylists(actor domain.User) ([]domain.Playlist, error) {
	lists, err := a.store.ListPlaylistsForUser(actor.ID)
	if err != nil {
		return nil, fmt.Errorf("list playlists: %w", err)
	}
	return lists, nil
}

// GetPlaylist returns a playlist the actor belongs to.
func (a *App) GetPlaylist(actor domain.User, id string) (domain.Playlist, error) {
	return a.getEditablePlaylist(actor, id)
}

// RenamePlaylist changes the playlist name; any member may rename.
func (a *App) RenamePlaylist(actor domain.User, id, name string) (domain.Playlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Playlist{}, fmt.Errorf("playlist name required: %w", domain.ErrValidation)
	}
	p, err := a.getEditablePlaylist(actor, id)
	if err != nil {
		return domain.Playlist{}, err
	}
	p.Name = name
	p.UpdatedAt = time.Now().UTC()
	if err := a.store.SavePlaylist(p); err != nil {
		return domain.Playlist{}, fmt.Errorf("save playlist: %w", err)
	}
	return p, nil
}

// AddSongToPlaylist adds a song the actor can access. Adding a song already
// present is a no-op; the playlist holds a set.
func (a *App) AddSongToPlaylist(actor domain.User, playlistID, songID string) (domain.Playlist, error) {
	p, err := a.getEditablePlaylist(actor, playlistID)
	if err != nil {
		return domain.Playlist{}, err
	}
	song, err := a.getAccessibleSong(actor, songID)
	if err != nil {
		return domain.Playlist{}, err
	}
	if p.HasSong(song.ID) {
		return p, nil
	}
	if err := a.store.AddPlaylistSong(p.ID, song.ID); err != nil {
		return domain.Playlist{}, fmt.Errorf("add playlist song: %w", err)
	}
	p.SongIDs = append(p.SongIDs, song.ID)
	return p, nil
}

// RemoveSongFromPlaylist removes a song. Removing a song that exists but is
// not in the playlist is a no-op; a song id that matches nothing is an error.
func (a *App) RemoveSongFromPlaylist(actor domain.User, playlistID, songID string) (domain.Playlist, error) {
	p, err := a.getEditablePlaylist(actor, playlistID)
	if err != nil {
		return domain.Playlist{}, err
	}
	songID = strings.TrimSpace(songID)
	if _, found, err := a.store.GetSong(songID); err != nil {
		return domain.Playlist{}, fmt.Errorf("fetch song: %w", err)
	} else if !found {
		return domain.Playlist{}, fmt.Errorf("song: %w", domain.ErrNotFound)
	}
	if !p.HasSong(songID) {
		return p, nil
	}
	if err := a.store.RemovePlaylistSong(p.ID, songID); err != nil {
		return domain.Playlist{}, fmt.Errorf("remove playlist song: %w", err)
	}
	kept := p.SongIDs[:0]
	for _, id := range p.SongIDs {
		if id != songID {
			kept = append(kept, id)
		}
	}
	p.SongIDs = kept
	return p, nil
}

// InviteToPlaylist invites a registered user by email. Existing members cannot
// be invited, and only one pending invitation per (playlist, email) may exist.
func (a *App) InviteToPlaylist(ctx context.Context, actor domain.User, playlistID, email string) (domain.PlaylistInvitation, error) {
	p, err := a.getEditablePlaylist(actor, playlistID)
	if err != nil {
		return domain.PlaylistInvitation{}, err
	}
	invitee, err := a.resolveUserByEmail(email)
	if err != nil {
		return domain.PlaylistInvitation{}, err
	}
	if p.IsMember(invitee.ID) {
		return domain.PlaylistInvitation{}, fmt.Errorf("user is already a member: %w", domain.ErrInvalidOperation)
	}
	pending, err := a.store.HasPendingInvitation(p.ID, invitee.Email)
	if err != nil {
		return domain.PlaylistInvitation{}, fmt.Errorf("check invitation: %w", err)
	}
	if pending {
		return domain.PlaylistInvitation{}, fmt.Errorf("invitation already pending: %w", domain.ErrConflict)
	}
	now := time.Now().UTC()
	inv := domain.PlaylistInvitation{
		ID:           util.NewID(),
		PlaylistID:   p.ID,
		InviterID:    actor.ID,
		InviteeEmail: invitee.Email,
		Status:       domain.InvitationPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := a.store.SaveInvitation(inv); err != nil {
		return domain.PlaylistInvitation{}, fmt.Errorf("save invitation: %w", err)
	}
	a.publish(ctx, events.PlaylistInvited, map[string]any{
		"invitationId": inv.ID,
		"playlistId":   p.ID,
		"inviterId":    actor.ID,
		"inviteeEmail": inv.InviteeEmail,
	})
	return inv, nil
}

// ListInvitations returns the actor's pending invitations.
func (a *App) ListInvitations(actor domain.User) ([]domain.PlaylistInvitation, error) {
	invs, err := a.store.ListPendingInvitations(actor.Email)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	return invs, nil
}

// RespondToInvitation accepts or rejects a pending invitation addressed to
// the actor. Accepting adds them as a playlist member.
func (a *App) RespondToInvitation(ctx context.Context, actor domain.User, invitationID string, accept bool) (domain.PlaylistInvitation, error) {
	inv, found, err := a.store.GetInvitation(strings.TrimSpace(invitationID))
	if err != nil {
		return domain.PlaylistInvitation{}, fmt.Errorf("fetch invitation: %w", err)
	}
	if !found {
		return domain.PlaylistInvitation{}, fmt.Errorf("invitation: %w", domain.ErrNotFound)
	}
	if !strings.EqualFold(inv.InviteeEmail, actor.Email) {
		return domain.PlaylistInvitation{}, fmt.Errorf("invitation belongs to another user: %w", domain.ErrForbidden)
	}
	if inv.Status != domain.InvitationPending {
		return domain.PlaylistInvitation{}, fmt.Errorf("invitation already %s: %w", inv.Status, domain.ErrInvalidOperation)
	}

	inv.InviteeID = actor.ID
	inv.UpdatedAt = time.Now().UTC()
	if accept {
		inv.Status = domain.InvitationAccepted
		if err := a.store.AddPlaylistMember(inv.PlaylistID, actor.ID); err != nil {
			return domain.PlaylistInvitation{}, fmt.Errorf("add playlist member: %w", err)
		}
	} else {
		inv.Status = domain.InvitationRejected
	}
	if err := a.store.SaveInvitation(inv); err != nil {
		return domain.PlaylistInvitation{}, fmt.Errorf("save invitation: %w", err)
	}
	a.publish(ctx, events.InvitationResponded, map[string]any{
		"invitationId": inv.ID,
		"playlistId":   inv.PlaylistID,
		"inviteeId":    actor.ID,
		"accepted":     accept,
	})
	return inv, nil
}

func (a *App) getEditablePlaylist(actor domain.User, id string) (domain.Playlist, error) {
	p, found, err := a.store.GetPlaylist(strings.TrimSpace(id))
	if err != nil {
		return domain.Playlist{}, fmt.Errorf("fetch playlist: %w", err)
	}
	if !found {
		return domain.Playlist{}, fmt.Errorf("playlist: %w", domain.ErrNotFound)
	}
	if err := domain.CanEditPlaylist(p, actor); err != nil {
		return domain.Playlist{}, fmt.Errorf("access playlist: %w", err)
	}
	return p, nil
}
