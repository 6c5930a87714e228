package console

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"spacerh.dev/internal/client"
)

// ErrLoginInProgress is returned when a submit overlaps a running one.
var ErrLoginInProgress = errors.New("login already in progress")

// ErrLoginFailed wraps transport and server failures that are not a
// credentials problem. The UI shows a generic message for these.
var ErrLoginFailed = errors.New("login failed")

// CredentialsError carries the server's own message for a rejected
// login, shown to the user verbatim.
type CredentialsError struct {
	Detail string
}

func (e *CredentialsError) Error() string {
	if e.Detail == "" {
		return "incorrect username or password"
	}
	return e.Detail
}

// LoginFunc performs the actual credential exchange, normally
// session.Store.Login.
type LoginFunc func(ctx context.Context, username, password string) error

// Flow serialises login submissions: while one is in flight, further
// submits are refused instead of queued.
type Flow struct {
	login LoginFunc

	mu   sync.Mutex
	busy bool
}

// NewFlow wraps a login function.
func NewFlow(login LoginFunc) *Flow {
	return &Flow{login: login}
}

// Busy reports whether a submission is in flight.
func (f *Flow) Busy() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.busy
}

// Submit runs one login attempt. A 400 from the server is a
// credentials problem and surfaces the server detail; anything else is
// wrapped as a generic failure.
func (f *Flow) Submit(ctx context.Context, username, password string) error {
	f.mu.Lock()
	if f.busy {
		f.mu.Unlock()
		return ErrLoginInProgress
	}
	f.busy = true
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.busy = false
		f.mu.Unlock()
	}()

	err := f.login(ctx, username, password)
	if err == nil {
		return nil
	}

	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusBadRequest {
		return &CredentialsError{Detail: apiErr.Detail}
	}
	return fmt.Errorf("%w: %v", ErrLoginFailed, err)
}
