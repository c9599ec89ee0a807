package formsync

import (
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-entityform/pkg/store"
)

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithNavigator receives the navigation intent issued after a successful
// submit or a cancel.
func WithNavigator(n Navigator) Option {
	return func(s *Synchronizer) {
		if n != nil {
			s.navigator = n
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Synchronizer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the clock used for create-mode defaults.
func WithClock(now func() time.Time) Option {
	return func(s *Synchronizer) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocation sets the location editable date-times are expressed in.
func WithLocation(loc *time.Location) Option {
	return func(s *Synchronizer) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithPageParams sets the paging used for reference collection listings.
func WithPageParams(page store.PageParams) Option {
	return func(s *Synchronizer) {
		s.page = page
	}
}

// WithChangeListener is called with a fresh snapshot after every state
// transition while the form is mounted. It runs without internal locks held.
func WithChangeListener(fn func(Snapshot)) Option {
	return func(s *Synchronizer) {
		s.onChange = fn
	}
}
