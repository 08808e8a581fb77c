package clients

import (
	"context"
	"sort"
	"sync"
	"time"

	"cockpityara/internal/domain/project"
	"cockpityara/internal/repository"
)

// SyncState is the per-session availability of the remote store
type SyncState string

const (
	StateOffline        SyncState = "offline"
	StateAuthenticating SyncState = "authenticating"
	StateOnline         SyncState = "online"
)

// StoredIn reports which store ended up owning a freshly added record
type StoredIn string

const (
	StoredRemote StoredIn = "remote"
	StoredLocal  StoredIn = "local"
)

// Service is the sync orchestrator. It presents one unified client list
// regardless of remote availability and routes every write to the correct
// backing store, with local durability guaranteed.
//
// State machine per session: Offline when no remote store is configured or
// its session could not be established; Online after a successful initial
// remote read. The resolution is final; there is no retry loop.
type Service struct {
	local   LocalStore
	remote  RemoteStore
	feed    ChangeFeed
	hub     Broadcaster
	loggerf func(format string, args ...interface{})

	mu             sync.RWMutex
	state          SyncState
	remoteSnapshot []project.Project
	activeID       string
	docCancel      func()
	feedCancel     func()
}

// NewService builds the orchestrator. remote and feed may be nil, which
// fixes the session in Offline mode. hub may be nil in tests.
func NewService(local LocalStore, remote RemoteStore, feed ChangeFeed, hub Broadcaster, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{
		local:   local,
		remote:  remote,
		feed:    feed,
		hub:     hub,
		loggerf: loggerf,
		state:   StateOffline,
	}
}

// Start resolves the session state. With a remote store configured it runs
// the authenticating step (an initial remote read standing in for the
// anonymous session handshake); failure degrades to Offline for the rest of
// the session.
func (s *Service) Start(ctx context.Context) {
	if s.remote == nil {
		s.loggerf("level=info msg=sync started mode=local-only")
		s.broadcastState()
		return
	}

	s.mu.Lock()
	s.state = StateAuthenticating
	s.mu.Unlock()

	recs, err := s.remote.List(ctx)
	if err != nil {
		s.mu.Lock()
		s.state = StateOffline
		s.mu.Unlock()
		s.loggerf("level=warn msg=remote session failed, staying offline err=%v", err)
		s.broadcastState()
		return
	}

	s.mu.Lock()
	s.state = StateOnline
	s.remoteSnapshot = recs
	s.mu.Unlock()
	s.loggerf("level=info msg=sync online remote_records=%d", len(recs))

	if s.feed != nil {
		ch, cancel := s.feed.Subscribe()
		s.mu.Lock()
		s.feedCancel = cancel
		s.mu.Unlock()
		go s.snapshotLoop(ch)
	}

	s.broadcastState()
	s.publish(context.Background())
}

// broadcastState announces the current sync-state resolution to every tab.
func (s *Service) broadcastState() {
	if s.hub != nil {
		s.hub.BroadcastState(s.State())
	}
}

// Stop tears down the remote subscriptions.
func (s *Service) Stop() {
	s.mu.Lock()
	feedCancel, docCancel := s.feedCancel, s.docCancel
	s.feedCancel, s.docCancel = nil, nil
	s.mu.Unlock()

	if docCancel != nil {
		docCancel()
	}
	if feedCancel != nil {
		feedCancel()
	}
}

// snapshotLoop reloads the remote collection on every change tick and
// republishes the unified list.
func (s *Service) snapshotLoop(ticks <-chan struct{}) {
	for range ticks {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		recs, err := s.remote.List(ctx)
		cancel()
		if err != nil {
			s.loggerf("level=warn msg=remote snapshot reload failed err=%v", err)
			continue
		}

		s.mu.Lock()
		s.remoteSnapshot = recs
		s.mu.Unlock()

		s.publish(context.Background())
	}
}

// State returns the session sync state.
func (s *Service) State() SyncState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// UnifiedList merges local-only and remote records, sorted by updated_at
// descending. The merge is deterministic per snapshot regardless of which
// side a record arrived from.
func (s *Service) UnifiedList(ctx context.Context) ([]project.Project, error) {
	localRecs, err := s.local.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	merged := make([]project.Project, 0, len(localRecs)+len(s.remoteSnapshot))
	merged = append(merged, localRecs...)
	if s.state == StateOnline {
		merged = append(merged, s.remoteSnapshot...)
	}
	s.mu.RUnlock()

	sortByUpdatedAt(merged)
	return merged, nil
}

func sortByUpdatedAt(recs []project.Project) {
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].UpdatedAt.Equal(recs[j].UpdatedAt) {
			return recs[i].ID < recs[j].ID
		}
		return recs[i].UpdatedAt.After(recs[j].UpdatedAt)
	})
}

// AddClient creates a new record with status Lead, zero estimated value and
// a single welcome message. Online sessions try the remote store first and
// fall back to a local insert; the operation never fails from the user's
// perspective as long as the local store is alive.
func (s *Service) AddClient(ctx context.Context, name, phone string) (*project.Project, StoredIn, error) {
	if name == "" {
		return nil, "", ErrValidation
	}

	rec := project.Project{
		Name:           name,
		Phone:          phone,
		Status:         project.StatusLead,
		EstimatedValue: 0,
		Messages: project.MessageList{
			project.NewMessage(project.FromAssistant, project.MessageText, project.WelcomeText, ""),
		},
	}

	if s.State() == StateOnline {
		id, err := s.remote.Insert(ctx, &rec)
		if err == nil {
			s.setActive(id)
			s.refreshRemote(ctx)
			return &rec, StoredRemote, nil
		}
		s.loggerf("level=warn msg=remote insert failed, falling back to local store err=%v", err)
	}

	if _, err := s.local.Add(ctx, &rec); err != nil {
		return nil, "", err
	}
	s.setActive(rec.ID)
	s.publish(ctx)
	return &rec, StoredLocal, nil
}

// GetClient reads a record, routed by its id namespace.
func (s *Service) GetClient(ctx context.Context, id string) (*project.Project, error) {
	if project.IsLocalID(id) {
		rec, err := s.local.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			return nil, ErrNotFound
		}
		return rec, nil
	}

	if s.State() != StateOnline {
		return nil, ErrNotFound
	}
	rec, err := s.remote.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNotFound
	}
	return rec, nil
}

// UpdateClient merges partial fields into a record, routed by namespace.
func (s *Service) UpdateClient(ctx context.Context, id string, fields repository.PartialUpdate) (*project.Project, error) {
	if project.IsLocalID(id) {
		rec, err := s.local.Update(ctx, id, fields)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			return nil, ErrNotFound
		}
		s.publish(ctx)
		return rec, nil
	}

	if s.State() != StateOnline {
		return nil, ErrNotFound
	}
	rec, err := s.remote.Update(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNotFound
	}
	s.refreshRemote(ctx)
	return rec, nil
}

// RemoveClient deletes a local-only record. Remote records have no delete
// affordance in the product flows and are rejected.
func (s *Service) RemoveClient(ctx context.Context, id string) ([]project.Project, error) {
	if !project.IsLocalID(id) {
		return nil, ErrUpdateFailed
	}
	if _, err := s.local.Remove(ctx, id); err != nil {
		return nil, err
	}
	s.publish(ctx)
	return s.UnifiedList(ctx)
}

// AppendExchange appends one chat round-trip to a record. Messages are
// append-only: prior entries are never removed or reordered.
//
// Local records persist synchronously: the local store is their system of
// record and an optimistic-only append would lose the chat on reload.
// Remote records are optimistic: the append is published immediately and the
// remote write is best-effort, its failure logged and swallowed.
func (s *Service) AppendExchange(ctx context.Context, id string, msgs ...project.Message) (*project.Project, error) {
	if len(msgs) == 0 {
		return s.GetClient(ctx, id)
	}

	rec, err := s.GetClient(ctx, id)
	if err != nil {
		return nil, err
	}

	appended := make(project.MessageList, 0, len(rec.Messages)+len(msgs))
	appended = append(appended, rec.Messages...)
	appended = append(appended, msgs...)
	now := time.Now()

	if project.IsLocalID(id) {
		updated, err := s.local.Update(ctx, id, repository.PartialUpdate{Messages: &appended})
		if err != nil {
			return nil, err
		}
		if updated == nil {
			return nil, ErrNotFound
		}
		s.publish(ctx)
		return updated, nil
	}

	rec.Messages = appended
	rec.UpdatedAt = now
	s.patchSnapshot(rec)
	s.publish(ctx)

	if err := s.remote.UpdateMessages(ctx, id, appended, now); err != nil {
		s.loggerf("level=warn msg=remote message sync failed, keeping optimistic state client_id=%s err=%v", id, err)
	}
	return rec, nil
}

// patchSnapshot applies an optimistic write to the in-memory remote snapshot
// so readers see it before the next remote round-trip.
func (s *Service) patchSnapshot(rec *project.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.remoteSnapshot {
		if s.remoteSnapshot[i].ID == rec.ID {
			s.remoteSnapshot[i] = *rec
			return
		}
	}
	s.remoteSnapshot = append(s.remoteSnapshot, *rec)
}

// SelectActive switches the active record. The previous per-document
// subscription is torn down first; local ids get no subscription at all.
func (s *Service) SelectActive(ctx context.Context, id string) (*project.Project, error) {
	rec, err := s.GetClient(ctx, id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	prevCancel := s.docCancel
	s.docCancel = nil
	s.activeID = id
	s.mu.Unlock()

	if prevCancel != nil {
		prevCancel()
	}

	if !project.IsLocalID(id) && s.feed != nil && s.State() == StateOnline {
		ch, cancel := s.feed.Subscribe()
		s.mu.Lock()
		s.docCancel = cancel
		s.mu.Unlock()
		go s.docLoop(id, ch)
	}

	return rec, nil
}

// docLoop pushes fresh copies of the active remote document on every change
// tick, until the subscription is cancelled.
func (s *Service) docLoop(id string, ticks <-chan struct{}) {
	for range ticks {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		rec, err := s.remote.Get(ctx, id)
		cancel()
		if err != nil || rec == nil {
			continue
		}
		if !s.StillActive(id) {
			return
		}
		if s.hub != nil {
			s.hub.BroadcastDoc(rec)
		}
	}
}

// ActiveID returns the currently selected record id.
func (s *Service) ActiveID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeID
}

// StillActive reports whether id is still the active selection. Assistant
// round-trips capture the active id at dispatch and discard their result
// when it no longer matches.
func (s *Service) StillActive(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeID == id
}

func (s *Service) setActive(id string) {
	s.mu.Lock()
	prevCancel := s.docCancel
	s.docCancel = nil
	s.activeID = id
	s.mu.Unlock()
	if prevCancel != nil {
		prevCancel()
	}
}

// Stats are derived, never stored: recomputed from the unified list.
type Stats struct {
	TotalRevenue   float64 `json:"total_revenue"`
	ActiveProjects int     `json:"active_projects"`
	TotalClients   int     `json:"total_clients"`
}

// ComputeStats aggregates the current unified list.
func (s *Service) ComputeStats(ctx context.Context) (*Stats, error) {
	list, err := s.UnifiedList(ctx)
	if err != nil {
		return nil, err
	}
	return computeStats(list), nil
}

func computeStats(list []project.Project) *Stats {
	st := &Stats{TotalClients: len(list)}
	for i := range list {
		st.TotalRevenue += list[i].EstimatedValue
		if list[i].Status.IsActive() {
			st.ActiveProjects++
		}
	}
	return st
}

// refreshRemote reloads the remote snapshot after a write by this process
// and republishes. Best effort, the change feed delivers it again anyway.
func (s *Service) refreshRemote(ctx context.Context) {
	recs, err := s.remote.List(ctx)
	if err != nil {
		s.loggerf("level=warn msg=remote refresh failed err=%v", err)
		return
	}
	s.mu.Lock()
	s.remoteSnapshot = recs
	s.mu.Unlock()
	s.publish(ctx)
}

// publish pushes the current unified list to connected UIs.
func (s *Service) publish(ctx context.Context) {
	if s.hub == nil {
		return
	}
	list, err := s.UnifiedList(ctx)
	if err != nil {
		s.loggerf("level=warn msg=unified list publish failed err=%v", err)
		return
	}
	s.hub.BroadcastList(list, s.State())
}
