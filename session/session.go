// Package session holds the per-client state of the portal: the loaded nation
// document, the authenticated identity and every operation that reads or
// mutates them.
package session

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"nationportal/config"
	"nationportal/models"
	"nationportal/utils"
)

// Store persists the nation document. *database.DocumentService satisfies it.
type Store interface {
	Load() (*models.NationDocument, error)
	Save(doc *models.NationDocument) error
	Reset() error
	Backup() (string, error)
}

// errNoChange aborts a mutation without persisting.
var errNoChange = errors.New("no change")

// Session is one client's view of the portal. All methods are safe for
// concurrent use; operations on one session run one at a time.
type Session struct {
	id          string
	store       Store
	adminDigest string
	now         func() time.Time
	logger      *slog.Logger

	mu       sync.Mutex
	doc      *models.NationDocument
	loadErr  error
	identity models.Identity
}

type Option func(s *Session)

// WithClock replaces the time source used for timestamps and post ids.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// WithAdminDigest overrides the reference digest admin codes are checked against.
func WithAdminDigest(digest string) Option {
	return func(s *Session) {
		s.adminDigest = digest
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// New starts an anonymous session and loads the document from store. A load
// failure does not fail construction: the session stays usable for admin
// login and factory reset, and every other operation reports the error.
func New(id string, store Store, opts ...Option) *Session {
	s := &Session{
		id:          id,
		store:       store,
		adminDigest: config.AdminCodeDigest,
		now:         utils.GetTime,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.mu.Lock()
	s.loadLocked()
	s.mu.Unlock()
	return s
}

func (s *Session) ID() string { return s.id }

// Identity returns the current identity.
func (s *Session) Identity() models.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// Document returns a snapshot of the loaded document.
func (s *Session) Document() (*models.NationDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	return s.doc.Clone(), nil
}

// Reload discards the in-memory document and reads it again from the store.
func (s *Session) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = nil
	return s.loadLocked()
}

// LoginAdmin switches to Admin when the digest of code matches the reference.
// On failure the identity is left as it was.
func (s *Session) LoginAdmin(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	digest := utils.HashSecret(code)
	if subtle.ConstantTimeCompare([]byte(digest), []byte(s.adminDigest)) != 1 {
		return models.ErrAuthFailure
	}
	s.identity = models.Admin()
	s.logger.Info("Admin logged in", "session", s.id)
	return nil
}

// LoginCitizen switches to the first stored citizen whose username and
// password both equal the supplied values.
func (s *Session) LoginCitizen(username, password string) (models.Citizen, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(); err != nil {
		return models.Citizen{}, err
	}
	for _, u := range s.doc.Users {
		if u.Username == username && u.Password == password {
			s.identity = models.CitizenIdentity(u)
			s.logger.Info("Citizen logged in", "session", s.id, "username", u.Username)
			return u, nil
		}
	}
	return models.Citizen{}, models.ErrAuthFailure
}

// Logout returns the session to Anonymous.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = models.Anonymous()
}

// ChangePassword overwrites the logged-in citizen's stored password and then
// logs the session out so the new password has to be used.
func (s *Session) ChangePassword(newPassword string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	me, ok := s.identity.Citizen()
	if !ok {
		return models.ErrUnauthorized
	}
	err := s.mutate(func(doc *models.NationDocument) error {
		for i := range doc.Users {
			if doc.Users[i].Username == me.Username {
				doc.Users[i].Password = newPassword
				return nil
			}
		}
		return fmt.Errorf("%w: citizen %q no longer exists", models.ErrAuthFailure, me.Username)
	})
	if err != nil {
		if errors.Is(err, models.ErrAuthFailure) {
			s.identity = models.Anonymous()
		}
		return err
	}
	s.identity = models.Anonymous()
	s.logger.Info("Citizen changed password", "session", s.id, "username", me.Username)
	return nil
}

// loadLocked reads the document from the store. Callers hold s.mu.
func (s *Session) loadLocked() error {
	doc, err := s.store.Load()
	if err != nil {
		s.doc, s.loadErr = nil, err
		s.logger.Error("Failed to load nation document", "session", s.id, "error", err)
		return err
	}
	s.doc, s.loadErr = doc, nil
	return nil
}

// ensureLoaded loads the document if it was dropped or failed to load before.
func (s *Session) ensureLoaded() error {
	if s.doc != nil {
		return nil
	}
	return s.loadLocked()
}

// mutate applies fn to a copy of the document, saves the copy and only then
// swaps it in. If fn returns errNoChange nothing is saved. Callers hold s.mu.
func (s *Session) mutate(fn func(doc *models.NationDocument) error) error {
	if err := s.ensureLoaded(); err != nil {
		return err
	}
	next := s.doc.Clone()
	if err := fn(next); err != nil {
		if errors.Is(err, errNoChange) {
			return nil
		}
		return err
	}
	if err := s.store.Save(next); err != nil {
		if !errors.Is(err, models.ErrPersistence) {
			err = fmt.Errorf("%w: %v", models.ErrPersistence, err)
		}
		return err
	}
	s.doc = next
	return nil
}

func (s *Session) requireAdmin() error {
	if !s.identity.IsAdmin() {
		return models.ErrUnauthorized
	}
	return nil
}
