// Package gcal owns the external calendar lifecycle: OAuth client loading,
// stored-token checks, interactive consent, periodic full resync of every
// subscribed calendar into the encrypted local mirror, and disconnect.
package gcal

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"tableflip.dev/agenda/pkg/store"
)

// State names the lifecycle stage the manager is in.
type State string

const (
	StateUninitialized       State = "uninitialized"
	StateClientLoading       State = "client_loading"
	StateClientReady         State = "client_ready"
	StateCheckingStoredToken State = "checking_stored_token"
	StateSignedOut           State = "signed_out"
	StateSignedIn            State = "signed_in"
	StateSyncing             State = "syncing"
)

// Status is a point-in-time snapshot of the sync session, safe to hand to
// UI code.
type Status struct {
	State       State
	ClientReady bool
	SignedIn    bool
	Syncing     bool
	LastError   error
	Calendars   []string
}

// Manager drives the calendar sync state machine. All operations record
// failures on the status instead of leaving the machine in a broken state:
// a failed token check or consent flow lands in SignedOut, and a partial
// sync failure stays a non-fatal error signal.
type Manager struct {
	// guarded by the store/feed side; Manager itself is single-goroutine
	// reentrant via the syncing flag.
	mirror    *Mirror
	calendars *CalendarList

	state       State
	clientReady bool
	signedIn    bool
	syncing     bool
	lastErr     error

	oauthCfg *oauth2.Config
	srv      *calendar.Service

	// fetch retrieves the upcoming events for one calendar id. Swapped out
	// in tests; defaults to the Google Calendar API.
	fetch func(ctx context.Context, calendarID string) ([]Event, error)

	// OnChange, when set, is invoked after every state transition.
	OnChange func(Status)
}

// NewManager wires the manager to the encrypted mirror and the persisted
// calendar-id list.
func NewManager(p store.Persistence, calendars *CalendarList) *Manager {
	m := &Manager{
		mirror:    NewMirror(p),
		calendars: calendars,
		state:     StateUninitialized,
	}
	m.fetch = m.fetchGoogle
	return m
}

// Status returns the current session snapshot.
func (m *Manager) Status() Status {
	return Status{
		State:       m.state,
		ClientReady: m.clientReady,
		SignedIn:    m.signedIn,
		Syncing:     m.syncing,
		LastError:   m.lastErr,
		Calendars:   m.calendars.IDs(),
	}
}

func (m *Manager) transition(state State) {
	m.state = state
	if m.OnChange != nil {
		m.OnChange(m.Status())
	}
}

// Initialize loads the OAuth client configuration. Failure is recorded on
// the status, never raised: the caller observes ClientReady (or not)
// through Status/OnChange.
func (m *Manager) Initialize(ctx context.Context) {
	m.transition(StateClientLoading)
	cfg, err := loadOAuthConfig()
	if err != nil {
		m.lastErr = err
		m.transition(StateUninitialized)
		return
	}
	m.oauthCfg = cfg
	m.clientReady = true
	m.transition(StateClientReady)
}

// CheckStoredToken attempts silent re-authentication from the cached token.
// Any failure (missing file, revoked grant, dead refresh token) resolves
// to SignedOut; it is a normal startup outcome, not an error. A successful
// check signs in and kicks off a full resync.
func (m *Manager) CheckStoredToken(ctx context.Context) {
	if !m.clientReady {
		return
	}
	m.transition(StateCheckingStoredToken)

	path, err := tokenPath()
	if err != nil {
		m.signOutLocked(err)
		return
	}
	tok, err := tokenFromFile(path)
	if err != nil {
		m.signOutLocked(nil)
		return
	}

	// Token() refreshes an expired access token when a refresh token is
	// present, which is the silent part of silent re-auth.
	source := m.oauthCfg.TokenSource(ctx, tok)
	fresh, err := source.Token()
	if err != nil {
		m.signOutLocked(nil)
		return
	}
	if fresh.AccessToken != tok.AccessToken || fresh.RefreshToken != tok.RefreshToken {
		if err := saveToken(path, fresh); err != nil {
			fmt.Fprintf(os.Stderr, "gcal: re-save refreshed token: %v\n", err)
		}
	}
	if err := m.signIn(ctx, fresh); err != nil {
		m.signOutLocked(err)
		return
	}
	m.Sync(ctx, m.calendars.IDs())
}

// RequestAccessToken runs interactive consent. User cancellation or any
// flow failure resolves to SignedOut with the cause recorded and returned;
// success signs in, caches the token, and triggers a full resync.
func (m *Manager) RequestAccessToken(ctx context.Context) error {
	if !m.clientReady {
		return fmt.Errorf("gcal: client not ready")
	}
	tok, err := tokenFromWeb(ctx, m.oauthCfg)
	if err != nil {
		m.signOutLocked(err)
		return err
	}
	path, err := tokenPath()
	if err == nil {
		err = saveToken(path, tok)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "gcal: cache token: %v\n", err)
	}
	if err := m.signIn(ctx, tok); err != nil {
		m.signOutLocked(err)
		return err
	}
	m.Sync(ctx, m.calendars.IDs())
	return nil
}

// Disconnect clears the stored token and signs out. The mirror keeps its
// already-fetched events until the next successful sync or an explicit
// cache clear; the subscribed calendar list is left untouched.
func (m *Manager) Disconnect() error {
	path, err := tokenPath()
	if err == nil {
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			err = rmErr
		}
	}
	m.srv = nil
	m.signOutLocked(nil)
	return err
}

// AddCalendar subscribes a calendar id and, when signed in, resyncs all
// subscribed calendars. Any change to the id list triggers a full resync;
// redundant fetches are an accepted cost at personal data volumes.
func (m *Manager) AddCalendar(ctx context.Context, id string) error {
	changed, err := m.calendars.Add(id)
	if err != nil {
		return err
	}
	if changed && m.signedIn {
		m.Sync(ctx, m.calendars.IDs())
	}
	return nil
}

// RemoveCalendar unsubscribes a calendar id, drops its slice of the mirror,
// and resyncs the remainder when signed in.
func (m *Manager) RemoveCalendar(ctx context.Context, id string) error {
	changed, err := m.calendars.Remove(id)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	if err := m.mirror.Clear(ctx, id); err != nil {
		return err
	}
	if m.signedIn {
		m.Sync(ctx, m.calendars.IDs())
	}
	return nil
}

func (m *Manager) signIn(ctx context.Context, tok *oauth2.Token) error {
	client := m.oauthCfg.Client(ctx, tok)
	srv, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return fmt.Errorf("gcal: calendar service: %w", err)
	}
	m.srv = srv
	m.signedIn = true
	m.lastErr = nil
	m.transition(StateSignedIn)
	return nil
}

func (m *Manager) signOutLocked(cause error) {
	m.signedIn = false
	m.lastErr = cause
	m.transition(StateSignedOut)
}
