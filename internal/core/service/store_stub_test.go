package service

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/99minutos/user-admin/internal/core/domain"
	"github.com/99minutos/user-admin/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub store. A transaction holds the store lock from Begin until
// Commit/Rollback and works on a private copy of the state, so a rollback
// discards every write made through it.
// ---------------------------------------------------------------------------

var errTxDone = errors.New("transaction already committed or rolled back")

type memState struct {
	nextID    int64
	users     map[int64]domain.User
	userRoles map[int64][]string
}

func (st *memState) clone() *memState {
	c := &memState{
		nextID:    st.nextID,
		users:     make(map[int64]domain.User, len(st.users)),
		userRoles: make(map[int64][]string, len(st.userRoles)),
	}
	for id, u := range st.users {
		c.users[id] = u
	}
	for id, r := range st.userRoles {
		c.userRoles[id] = slices.Clone(r)
	}
	return c
}

type memStore struct {
	mu        sync.Mutex
	state     *memState
	roleNames []string

	createErr error // returned by Users().Create
	updateErr error // returned by Users().Update
	tokenErr  error // returned by Users().UpdateAPIToken
	beginErr  error // returned by Begin
	commitErr error // returned by Tx.Commit

	syncCalls int
	commits   int
	rollbacks int
}

func newMemStore() *memStore {
	return &memStore{
		state: &memState{
			users:     make(map[int64]domain.User),
			userRoles: make(map[int64][]string),
		},
		roleNames: []string{
			domain.RoleAdmin, domain.RoleAPIUser, domain.RoleManager, domain.RoleStaff, domain.RoleSuperAdmin,
		},
	}
}

func (s *memStore) Begin(context.Context) (ports.Tx, error) {
	if s.beginErr != nil {
		return nil, s.beginErr
	}
	s.mu.Lock()
	return &memTx{store: s, state: s.state.clone()}, nil
}

func (s *memStore) Users() ports.UserRepository { return &memUsers{store: s} }
func (s *memStore) Roles() ports.RoleRepository { return &memRoles{store: s} }

// seed inserts a user directly, bypassing the services.
func (s *memStore) seed(u domain.User, roles ...string) *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.nextID++
	u.ID = s.state.nextID
	s.state.users[u.ID] = u
	s.state.userRoles[u.ID] = domain.NormalizeRoles(roles)
	u.Roles = s.state.userRoles[u.ID]
	return &u
}

func (s *memStore) userCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.users)
}

type memTx struct {
	store *memStore
	state *memState
	done  bool
}

func (t *memTx) Users() ports.UserRepository { return &memUsers{store: t.store, state: t.state} }
func (t *memTx) Roles() ports.RoleRepository { return &memRoles{store: t.store, state: t.state} }

func (t *memTx) Commit() error {
	if t.done {
		return errTxDone
	}
	t.done = true
	defer t.store.mu.Unlock()
	if t.store.commitErr != nil {
		t.store.rollbacks++
		return t.store.commitErr
	}
	t.store.state = t.state
	t.store.commits++
	return nil
}

func (t *memTx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	t.store.rollbacks++
	t.store.mu.Unlock()
	return nil
}

// with runs fn against the transaction state, or against the committed state
// under the store lock when the repository is not bound to a transaction.
func with(store *memStore, state *memState, fn func(st *memState) error) error {
	if state != nil {
		return fn(state)
	}
	store.mu.Lock()
	defer store.mu.Unlock()
	return fn(store.state)
}

type memUsers struct {
	store *memStore
	state *memState
}

func (r *memUsers) unique(st *memState, u *domain.User) error {
	for id, other := range st.users {
		if id == u.ID {
			continue
		}
		switch {
		case other.Username == u.Username:
			return domain.ErrUsernameTaken
		case other.Email == u.Email:
			return domain.ErrEmailTaken
		case other.APIToken == u.APIToken:
			return domain.ErrAPITokenTaken
		}
	}
	return nil
}

func (r *memUsers) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	var out *domain.User
	err := with(r.store, r.state, func(st *memState) error {
		if r.store.createErr != nil {
			return r.store.createErr
		}
		if err := r.unique(st, u); err != nil {
			return err
		}
		st.nextID++
		row := *u
		row.ID = st.nextID
		row.Roles = nil
		row.CreatedAt = time.Now().UTC()
		row.UpdatedAt = row.CreatedAt
		st.users[row.ID] = row
		out = &row
		return nil
	})
	return out, err
}

func (r *memUsers) Update(_ context.Context, u *domain.User) error {
	return with(r.store, r.state, func(st *memState) error {
		if r.store.updateErr != nil {
			return r.store.updateErr
		}
		if _, ok := st.users[u.ID]; !ok {
			return domain.ErrUserNotFound
		}
		if err := r.unique(st, u); err != nil {
			return err
		}
		row := *u
		row.Roles = nil
		row.UpdatedAt = time.Now().UTC()
		st.users[u.ID] = row
		return nil
	})
}

func (r *memUsers) UpdateAPIToken(_ context.Context, userID int64, token string) error {
	return with(r.store, r.state, func(st *memState) error {
		if r.store.tokenErr != nil {
			return r.store.tokenErr
		}
		row, ok := st.users[userID]
		if !ok {
			return domain.ErrUserNotFound
		}
		row.APIToken = token
		if err := r.unique(st, &row); err != nil {
			return err
		}
		st.users[userID] = row
		return nil
	})
}

func (r *memUsers) Delete(_ context.Context, userID int64) error {
	return with(r.store, r.state, func(st *memState) error {
		if _, ok := st.users[userID]; !ok {
			return domain.ErrUserNotFound
		}
		delete(st.users, userID)
		delete(st.userRoles, userID)
		return nil
	})
}

func (r *memUsers) find(match func(domain.User) bool) (*domain.User, error) {
	var out *domain.User
	err := with(r.store, r.state, func(st *memState) error {
		for id, u := range st.users {
			if match(u) {
				u.Roles = slices.Clone(st.userRoles[id])
				out = &u
				return nil
			}
		}
		return domain.ErrUserNotFound
	})
	return out, err
}

func (r *memUsers) FindByID(_ context.Context, userID int64) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.ID == userID })
}

func (r *memUsers) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.Username == username })
}

func (r *memUsers) FindByAPIToken(_ context.Context, token string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.APIToken == token })
}

func (r *memUsers) List(context.Context) ([]*domain.User, error) {
	var out []*domain.User
	err := with(r.store, r.state, func(st *memState) error {
		for id, u := range st.users {
			u := u
			u.Roles = slices.Clone(st.userRoles[id])
			out = append(out, &u)
		}
		slices.SortFunc(out, func(a, b *domain.User) int { return int(a.ID - b.ID) })
		return nil
	})
	return out, err
}

type memRoles struct {
	store *memStore
	state *memState
}

func (r *memRoles) known(names []string) error {
	for _, n := range names {
		if !slices.Contains(r.store.roleNames, n) {
			return domain.ErrRoleNotFound
		}
	}
	return nil
}

func (r *memRoles) Assign(_ context.Context, userID int64, names []string) error {
	return with(r.store, r.state, func(st *memState) error {
		if err := r.known(names); err != nil {
			return err
		}
		st.userRoles[userID] = domain.NormalizeRoles(append(slices.Clone(st.userRoles[userID]), names...))
		return nil
	})
}

func (r *memRoles) Sync(_ context.Context, userID int64, names []string) error {
	return with(r.store, r.state, func(st *memState) error {
		r.store.syncCalls++
		if err := r.known(names); err != nil {
			return err
		}
		st.userRoles[userID] = domain.NormalizeRoles(names)
		return nil
	})
}

func (r *memRoles) NamesForUser(_ context.Context, userID int64) ([]string, error) {
	var out []string
	err := with(r.store, r.state, func(st *memState) error {
		out = slices.Clone(st.userRoles[userID])
		return nil
	})
	return out, err
}

func (r *memRoles) ListNames(context.Context) ([]string, error) {
	return slices.Clone(r.store.roleNames), nil
}

// ---------------------------------------------------------------------------
// Side-effect recorders
// ---------------------------------------------------------------------------

type recordingAudit struct {
	mu     sync.Mutex
	events []domain.AuditEvent
}

func (a *recordingAudit) Record(e domain.AuditEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e)
}

func (a *recordingAudit) actions() []domain.AuditAction {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.AuditAction, 0, len(a.events))
	for _, e := range a.events {
		out = append(out, e.Action)
	}
	return out
}

// memListingCache keeps one listing tagged with the generation it was stored
// under, mirroring the Redis cache.
type memListingCache struct {
	mu          sync.Mutex
	items       []ports.UserListItem
	itemsGen    int64
	generation  int64
	warm        bool
	sets        int
	invalidates int
}

func (c *memListingCache) Get(context.Context) ([]ports.UserListItem, int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items, c.generation, c.warm && c.itemsGen == c.generation
}

func (c *memListingCache) Set(_ context.Context, generation int64, items []ports.UserListItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items, c.itemsGen, c.warm = items, generation, true
	c.sets++
}

func (c *memListingCache) Invalidate(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.invalidates++
}

// stallingStore parks the first non-transactional List after it has read the
// rows, until release is closed.
type stallingStore struct {
	*memStore
	listed  chan struct{}
	release chan struct{}
	once    sync.Once
}

func newStallingStore(inner *memStore) *stallingStore {
	return &stallingStore{memStore: inner, listed: make(chan struct{}), release: make(chan struct{})}
}

func (s *stallingStore) Users() ports.UserRepository {
	return &stallingUsers{UserRepository: s.memStore.Users(), store: s}
}

type stallingUsers struct {
	ports.UserRepository
	store *stallingStore
}

func (u *stallingUsers) List(ctx context.Context) ([]*domain.User, error) {
	users, err := u.UserRepository.List(ctx)
	u.store.once.Do(func() {
		close(u.store.listed)
		<-u.store.release
	})
	return users, err
}
