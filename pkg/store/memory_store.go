package store

import (
	"sort"
	"strings"
	"sync"
	"time"

	"mailroom/pkg/domain"
)

// MemoryStore keeps everything in-process. It mirrors GormStore semantics
// closely enough to back the service-layer tests.
type MemoryStore struct {
	mu          sync.RWMutex
	users       map[string]domain.User // key: user ID
	email       map[string]string      // email -> user ID
	messages    map[string]domain.Message
	msgOrder    []string
	blocks      map[[2]string]domain.Block // key: blocker, blocked
	songs       map[string]domain.Song
	songOrder   []string
	playlists   map[string]domain.Playlist
	plOrder     []string
	invitations map[string]domain.PlaylistInvitation
	invOrder    []string
	playback    map[string]domain.PlaybackState
	favorites   map[[2]string]domain.FavoriteSong // key: user, song
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:       make(map[string]domain.User),
		email:       make(map[string]string),
		messages:    make(map[string]domain.Message),
		blocks:      make(map[[2]string]domain.Block),
		songs:       make(map[string]domain.Song),
		playlists:   make(map[string]domain.Playlist),
		invitations: make(map[string]domain.PlaylistInvitation),
		playback:    make(map[string]domain.PlaybackState),
		favorites:   make(map[[2]string]domain.FavoriteSong),
	}
}

func (m *MemoryStore) SaveUser(u domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
	m.email[u.Email] = u.ID
	return nil
}

func (m *MemoryStore) HasUserEmail(email string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.email[email]
	return ok, nil
}

func (m *MemoryStore) GetUserByEmail(email string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id, ok := m.email[email]; ok {
		u, exists := m.users[id]
		return u, exists, nil
	}
	return domain.User{}, false, nil
}

func (m *MemoryStore) GetUserByID(id string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	return u, ok, nil
}

func (m *MemoryStore) SaveMessage(msg domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.messages[msg.ID]; !exists {
		m.msgOrder = append(m.msgOrder, msg.ID)
	}
	m.messages[msg.ID] = msg
	return nil
}

func (m *MemoryStore) GetMessage(id string) (domain.Message, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	msg, ok := m.messages[id]
	return msg, ok, nil
}

func (m *MemoryStore) GetMessageByPublicLink(link string) (domain.Message, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, msg := range m.messages {
		if msg.PublicLink == link {
			return msg, true, nil
		}
	}
	return domain.Message{}, false, nil
}

func (m *MemoryStore) ListMessages(q MessageQuery) ([]domain.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	visible := func(msg domain.Message) bool {
		return msg.SenderID == q.UserID || msg.ReceiverID == q.UserID || !msg.IsPrivate
	}
	match := func(msg domain.Message) bool {
		switch q.Kind {
		case domain.KindSent:
			return msg.SenderID == q.UserID
		case domain.KindReceived:
			return msg.ReceiverID == q.UserID
		case domain.KindInbox:
			return (msg.ReceiverID == q.UserID || !msg.IsPrivate) &&
				!msg.IsSpam && msg.Status != domain.StatusArchived
		case domain.KindStarred:
			return visible(msg) && msg.IsStarred
		case domain.KindSpam:
			return visible(msg) && msg.IsSpam
		case domain.KindArchived:
			return visible(msg) && msg.Status == domain.StatusArchived
		default:
			return visible(msg)
		}
	}
	search := strings.ToLower(strings.TrimSpace(q.Search))
	matchesSearch := func(msg domain.Message) bool {
		if search == "" {
			return true
		}
		if strings.Contains(strings.ToLower(msg.Subject), search) ||
			strings.Contains(strings.ToLower(msg.Body), search) {
			return true
		}
		for _, id := range []string{msg.SenderID, msg.ReceiverID} {
			if u, ok := m.users[id]; ok {
				if strings.Contains(strings.ToLower(u.Email), search) ||
					strings.Contains(strings.ToLower(u.Username), search) {
					return true
				}
			}
		}
		return false
	}
	var res []domain.Message
	for _, id := range m.msgOrder {
		msg := m.messages[id]
		if msg.Status == domain.StatusDeleted {
			continue
		}
		if match(msg) && matchesSearch(msg) {
			res = append(res, msg)
		}
	}
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].CreatedAt.After(res[j].CreatedAt)
	})
	return res, nil
}

func (m *MemoryStore) ListContacts(userID string) ([]domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := make(map[string]struct{})
	var res []domain.User
	add := func(id string) {
		if id == "" || id == userID {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		if u, exists := m.users[id]; exists {
			seen[id] = struct{}{}
			res = append(res, u)
		}
	}
	for _, msg := range m.messages {
		if msg.SenderID == userID {
			add(msg.ReceiverID)
		}
		if msg.ReceiverID == userID {
			add(msg.SenderID)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Email < res[j].Email })
	return res, nil
}

func (m *MemoryStore) GetBlock(blockerID, blockedID string) (domain.Block, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.blocks[[2]string{blockerID, blockedID}]
	return b, ok, nil
}

func (m *MemoryStore) UpsertBlock(b domain.Block) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := [2]string{b.BlockerID, b.BlockedID}
	if existing, ok := m.blocks[key]; ok {
		existing.IsSpam = b.IsSpam
		m.blocks[key] = existing
		return nil
	}
	m.blocks[key] = b
	return nil
}

func (m *MemoryStore) DeleteBlock(blockerID, blockedID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := [2]string{blockerID, blockedID}
	if _, ok := m.blocks[key]; !ok {
		return false, nil
	}
	delete(m.blocks, key)
	return true, nil
}

func (m *MemoryStore) ListBlockedUsers(blockerID string) ([]domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var res []domain.User
	for key, b := range m.blocks {
		if key[0] != blockerID {
			continue
		}
		if u, ok := m.users[b.BlockedID]; ok {
			res = append(res, u)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Email < res[j].Email })
	return res, nil
}

func (m *MemoryStore) MarkSenderSpam(receiverID, senderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := [2]string{receiverID, senderID}
	block, ok := m.blocks[key]
	if !ok {
		block = domain.Block{BlockerID: receiverID, BlockedID: senderID, CreatedAt: time.Now().UTC()}
	}
	block.IsSpam = true
	m.blocks[key] = block
	m.retagHistory(senderID, receiverID, true)
	return nil
}

func (m *MemoryStore) UnmarkSenderSpam(receiverID, senderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := [2]string{receiverID, senderID}
	if block, ok := m.blocks[key]; ok {
		block.IsSpam = false
		m.blocks[key] = block
	}
	m.retagHistory(senderID, receiverID, false)
	return nil
}

func (m *MemoryStore) retagHistory(senderID, receiverID string, spam bool) {
	for id, msg := range m.messages {
		if msg.SenderID == senderID && msg.ReceiverID == receiverID {
			msg.IsSpam = spam
			m.messages[id] = msg
		}
	}
}

func (m *MemoryStore) SaveSong(s domain.Song) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.songs[s.ID]; !exists {
		m.songOrder = append(m.songOrder, s.ID)
	}
	m.songs[s.ID] = s
	return nil
}

func (m *MemoryStore) GetSong(id string) (domain.Song, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.songs[id]
	return s, ok, nil
}

func (m *MemoryStore) ListSongs(userID string, includePublic bool, search string) ([]domain.Song, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	search = strings.ToLower(strings.TrimSpace(search))
	var res []domain.Song
	for i := len(m.songOrder) - 1; i >= 0; i-- {
		s := m.songs[m.songOrder[i]]
		if s.UploaderID != userID && !(includePublic && s.IsPublic) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(s.Title), search) &&
			!strings.Contains(strings.ToLower(s.Artist), search) &&
			!strings.Contains(strings.ToLower(s.Album), search) {
			continue
		}
		res = append(res, s)
	}
	return res, nil
}

func (m *MemoryStore) SetSongsPublic(uploaderID string, songIDs []string, public bool) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var updated int64
	for _, id := range songIDs {
		s, ok := m.songs[id]
		if !ok || s.UploaderID != uploaderID {
			continue
		}
		s.IsPublic = public
		s.UpdatedAt = time.Now().UTC()
		m.songs[id] = s
		updated++
	}
	return updated, nil
}

func (m *MemoryStore) SavePlaylist(p domain.Playlist) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.playlists[p.ID]; ok {
		existing.Name = p.Name
		existing.UpdatedAt = p.UpdatedAt
		m.playlists[p.ID] = existing
		return nil
	}
	m.plOrder = append(m.plOrder, p.ID)
	m.playlists[p.ID] = p
	return nil
}

func (m *MemoryStore) GetPlaylist(id string) (domain.Playlist, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.playlists[id]
	return p, ok, nil
}

func (m *MemoryStore) ListPlaylistsForUser(userID string) ([]domain.Playlist, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var res []domain.Playlist
	for i := len(m.plOrder) - 1; i >= 0; i-- {
		p := m.playlists[m.plOrder[i]]
		if p.IsMember(userID) {
			res = append(res, p)
		}
	}
	return res, nil
}

func (m *MemoryStore) AddPlaylistSong(playlistID, songID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.playlists[playlistID]
	if !ok {
		return nil
	}
	if !p.HasSong(songID) {
		p.SongIDs = append(p.SongIDs, songID)
		m.playlists[playlistID] = p
	}
	return nil
}

func (m *MemoryStore) RemovePlaylistSong(playlistID, songID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.playlists[playlistID]
	if !ok {
		return nil
	}
	filtered := p.SongIDs[:0]
	for _, id := range p.SongIDs {
		if id != songID {
			filtered = append(filtered, id)
		}
	}
	p.SongIDs = filtered
	m.playlists[playlistID] = p
	return nil
}

func (m *MemoryStore) AddPlaylistMember(playlistID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.playlists[playlistID]
	if !ok {
		return nil
	}
	for _, id := range p.MemberIDs {
		if id == userID {
			return nil
		}
	}
	p.MemberIDs = append(p.MemberIDs, userID)
	m.playlists[playlistID] = p
	return nil
}

func (m *MemoryStore) SaveInvitation(inv domain.PlaylistInvitation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.invitations[inv.ID]; !exists {
		m.invOrder = append(m.invOrder, inv.ID)
	}
	m.invitations[inv.ID] = inv
	return nil
}

func (m *MemoryStore) GetInvitation(id string) (domain.PlaylistInvitation, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	inv, ok := m.invitations[id]
	return inv, ok, nil
}

func (m *MemoryStore) HasPendingInvitation(playlistID, inviteeEmail string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, inv := range m.invitations {
		if inv.PlaylistID == playlistID && inv.InviteeEmail == inviteeEmail && inv.Status == domain.InvitationPending {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryStore) ListPendingInvitations(inviteeEmail string) ([]domain.PlaylistInvitation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var res []domain.PlaylistInvitation
	for i := len(m.invOrder) - 1; i >= 0; i-- {
		inv := m.invitations[m.invOrder[i]]
		if inv.InviteeEmail == inviteeEmail && inv.Status == domain.InvitationPending {
			res = append(res, inv)
		}
	}
	return res, nil
}

func (m *MemoryStore) SavePlaybackState(st domain.PlaybackState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playback[st.UserID] = st
	return nil
}

func (m *MemoryStore) GetPlaybackState(userID string) (domain.PlaybackState, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.playback[userID]
	return st, ok, nil
}

func (m *MemoryStore) SaveFavorite(f domain.FavoriteSong) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := [2]string{f.UserID, f.SongID}
	if _, ok := m.favorites[key]; !ok {
		m.favorites[key] = f
	}
	return nil
}

func (m *MemoryStore) DeleteFavorite(userID, songID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := [2]string{userID, songID}
	if _, ok := m.favorites[key]; !ok {
		return false, nil
	}
	delete(m.favorites, key)
	return true, nil
}

func (m *MemoryStore) ListFavoriteSongs(userID string) ([]domain.Song, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var favs []domain.FavoriteSong
	for key, f := range m.favorites {
		if key[0] == userID {
			favs = append(favs, f)
		}
	}
	sort.Slice(favs, func(i, j int) bool { return favs[i].CreatedAt.After(favs[j].CreatedAt) })
	var res []domain.Song
	for _, f := range favs {
		if s, ok := m.songs[f.SongID]; ok {
			res = append(res, s)
		}
	}
	return res, nil
}
