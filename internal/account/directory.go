package account

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/jon4hz/bixblion/internal/reactive"
	"github.com/jon4hz/bixblion/internal/storage"
	"github.com/samber/lo"
)

// DemoAccount is the account seeded into an empty directory.
var DemoAccount = Account{
	ID:     "u-local-1",
	Name:   "Lettore Demo",
	Email:  "demo@bixblion.app",
	Secret: "demo12345",
}

// Directory owns the account collection and the single active session.
// All state lives in the store; the in-memory session mirrors the persisted one.
type Directory struct {
	mu      sync.Mutex
	store   storage.Store
	seed    *Account
	newID   func() string
	current *reactive.Value[*Identity]

	// notifications of session changes made under mu, run by unlock
	pending []func()
}

// Option configures a Directory.
type Option func(*Directory)

// WithSeed replaces the demo account seeded by Bootstrap.
func WithSeed(seed Account) Option {
	return func(d *Directory) {
		seed.Email = NormalizeEmail(seed.Email)
		seed.Name = strings.TrimSpace(seed.Name)
		d.seed = &seed
	}
}

// WithoutSeed disables seeding of an empty directory.
func WithoutSeed() Option {
	return func(d *Directory) {
		d.seed = nil
	}
}

// WithIDGenerator sets the function used to allocate account ids.
func WithIDGenerator(fn func() string) Option {
	return func(d *Directory) {
		d.newID = fn
	}
}

// NewDirectory creates a directory backed by store. It starts anonymous.
func NewDirectory(store storage.Store, opts ...Option) *Directory {
	seed := DemoAccount
	d := &Directory{
		store:   store,
		seed:    &seed,
		newID:   func() string { return "u-" + uuid.NewString() },
		current: reactive.NewValue[*Identity](nil),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Init seeds the directory and restores the persisted session.
func (d *Directory) Init(ctx context.Context) error {
	if err := d.Bootstrap(ctx); err != nil {
		return err
	}
	d.RestoreSession(ctx)
	return nil
}

// Close detaches all session subscribers.
func (d *Directory) Close() {
	d.current.Close()
}

// Bootstrap seeds the demo account when the account collection is empty or unreadable.
func (d *Directory) Bootstrap(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.seed == nil {
		return nil
	}

	accounts, err := d.loadAccounts(ctx)
	if err != nil {
		return err
	}
	if len(accounts) > 0 {
		return nil
	}

	log.Info("Seeding demo account", "email", d.seed.Email)
	return d.saveAccounts(ctx, []Account{*d.seed})
}

// RestoreSession adopts the persisted session if it is readable.
// An unreadable session is discarded. Store failures are logged, never returned.
func (d *Directory) RestoreSession(ctx context.Context) {
	d.mu.Lock()
	defer d.unlock()

	identity, err := storage.GetJSON[Identity](ctx, d.store, storage.KeySession)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return
	case storage.IsCorrupt(err):
		log.Warn("Discarding unreadable session", "error", err)
		if err := d.store.Delete(ctx, storage.KeySession); err != nil {
			log.Error("Failed to delete unreadable session", "error", err)
		}
		return
	case err != nil:
		log.Error("Failed to restore session", "error", err)
		return
	}

	if identity.Email == "" {
		log.Debug("Ignoring persisted session without email")
		return
	}

	log.Debug("Restored session", "id", identity.ID, "email", identity.Email)
	d.publish(&identity)
}

// Login authenticates against the account collection and starts a session.
func (d *Directory) Login(ctx context.Context, email, secret string) (Identity, error) {
	d.mu.Lock()
	defer d.unlock()

	accounts, err := d.loadAccounts(ctx)
	if err != nil {
		return Identity{}, err
	}

	normalized := NormalizeEmail(email)
	acc, found := lo.Find(accounts, func(a Account) bool {
		return NormalizeEmail(a.Email) == normalized
	})
	if !found || subtle.ConstantTimeCompare([]byte(acc.Secret), []byte(secret)) != 1 {
		log.Debug("Login rejected", "email", normalized)
		return Identity{}, ErrInvalidCredentials
	}

	identity := acc.Identity()
	if err := d.setSession(ctx, identity); err != nil {
		return Identity{}, err
	}
	log.Info("Logged in", "id", identity.ID, "email", identity.Email)
	return identity, nil
}

// Register creates a new account and starts a session for it.
func (d *Directory) Register(ctx context.Context, in RegisterInput) (Identity, error) {
	if err := in.Validate(); err != nil {
		return Identity{}, err
	}

	d.mu.Lock()
	defer d.unlock()

	accounts, err := d.loadAccounts(ctx)
	if err != nil {
		return Identity{}, err
	}

	email := NormalizeEmail(in.Email)
	if lo.ContainsBy(accounts, func(a Account) bool { return NormalizeEmail(a.Email) == email }) {
		return Identity{}, ErrEmailRegistered
	}

	acc := Account{
		ID:     d.newID(),
		Name:   strings.TrimSpace(in.Name),
		Email:  email,
		Secret: in.Secret,
	}
	if err := d.saveAccounts(ctx, append(accounts, acc)); err != nil {
		return Identity{}, err
	}

	identity := acc.Identity()
	if err := d.setSession(ctx, identity); err != nil {
		return Identity{}, err
	}
	log.Info("Registered account", "id", identity.ID, "email", identity.Email)
	return identity, nil
}

// UpdateProfile changes the name and email of the current account.
func (d *Directory) UpdateProfile(ctx context.Context, in ProfileInput) (Identity, error) {
	d.mu.Lock()
	defer d.unlock()

	current := d.current.Get()
	if current == nil {
		return Identity{}, ErrNotAuthenticated
	}
	if err := in.Validate(); err != nil {
		return Identity{}, err
	}

	accounts, err := d.loadAccounts(ctx)
	if err != nil {
		return Identity{}, err
	}

	email := NormalizeEmail(in.Email)
	taken := lo.ContainsBy(accounts, func(a Account) bool {
		return a.ID != current.ID && NormalizeEmail(a.Email) == email
	})
	if taken {
		return Identity{}, ErrEmailInUse
	}

	name := strings.TrimSpace(in.Name)
	if _, idx, found := lo.FindIndexOf(accounts, func(a Account) bool { return a.ID == current.ID }); found {
		accounts[idx].Name = name
		accounts[idx].Email = email
	} else {
		log.Warn("Current account missing from directory, updating session only", "id", current.ID)
	}
	if err := d.saveAccounts(ctx, accounts); err != nil {
		return Identity{}, err
	}

	identity := Identity{ID: current.ID, Name: name, Email: email}
	if err := d.setSession(ctx, identity); err != nil {
		return Identity{}, err
	}
	log.Info("Updated profile", "id", identity.ID, "email", identity.Email)
	return identity, nil
}

// Logout ends the current session. Logging out while anonymous is a no-op.
func (d *Directory) Logout(ctx context.Context) error {
	d.mu.Lock()
	defer d.unlock()

	if err := d.store.Delete(ctx, storage.KeySession); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if d.current.Get() != nil {
		log.Info("Logged out")
	}
	d.publish(nil)
	return nil
}

// CurrentSession returns a copy of the current identity, or nil when anonymous.
func (d *Directory) CurrentSession() *Identity {
	current := d.current.Get()
	if current == nil {
		return nil
	}
	identity := *current
	return &identity
}

// Accounts lists the sanitized identities of all accounts in insertion order.
func (d *Directory) Accounts(ctx context.Context) ([]Identity, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	accounts, err := d.loadAccounts(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Map(accounts, func(a Account, _ int) Identity {
		return a.Identity()
	}), nil
}

// Subscribe registers fn to be called whenever the session changes.
// fn receives nil on logout.
func (d *Directory) Subscribe(fn func(*Identity)) (unsubscribe func()) {
	return d.current.Subscribe(func(identity *Identity) {
		if identity == nil {
			fn(nil)
			return
		}
		cp := *identity
		fn(&cp)
	})
}

// loadAccounts reads the account collection. A missing or unreadable
// collection reads as empty.
func (d *Directory) loadAccounts(ctx context.Context) ([]Account, error) {
	accounts, err := storage.GetJSON[[]Account](ctx, d.store, storage.KeyAccounts)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return nil, nil
	case storage.IsCorrupt(err):
		log.Warn("Account collection is unreadable, treating as empty", "error", err)
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}
	return accounts, nil
}

func (d *Directory) saveAccounts(ctx context.Context, accounts []Account) error {
	if err := storage.SetJSON(ctx, d.store, storage.KeyAccounts, accounts); err != nil {
		return fmt.Errorf("failed to save accounts: %w", err)
	}
	return nil
}

// setSession persists identity and then makes it current.
func (d *Directory) setSession(ctx context.Context, identity Identity) error {
	if err := storage.SetJSON(ctx, d.store, storage.KeySession, identity); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	d.publish(&identity)
	return nil
}

// publish makes identity current; subscribers are notified by unlock.
func (d *Directory) publish(identity *Identity) {
	d.pending = append(d.pending, d.current.Store(identity))
}

// unlock releases mu and then notifies the subscribers of every session
// change made while it was held.
func (d *Directory) unlock() {
	pending := d.pending
	d.pending = nil
	d.mu.Unlock()

	for _, notify := range pending {
		notify()
	}
}
