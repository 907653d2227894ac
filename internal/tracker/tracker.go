// Package tracker implements the create, edit and delete operations behind
// the CLI, including the validation rules of the entry, project and tag
// forms and the running-indicator notifications.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Tiliavir/trackmytime/internal/activity"
	"github.com/Tiliavir/trackmytime/internal/model"
	"github.com/Tiliavir/trackmytime/internal/storage"
)

var (
	ErrNameRequired    = errors.New("name required")
	ErrNoProjects      = errors.New("no projects yet: create a project before adding entries")
	ErrProjectRequired = errors.New("please select a project")
	ErrUnknownProject  = errors.New("unknown project")
	ErrUnknownTag      = errors.New("unknown tag")
	ErrEndBeforeStart  = errors.New("end date must be after start date")
	ErrNotRunning      = errors.New("entry is not running")
	ErrNoRunningEntry  = errors.New("no running entry")
	ErrSameProject     = errors.New("cannot reassign entries to the project being deleted")
	ErrInvalidColor    = errors.New("color must be a hex value like #FF3B30")
)

// Clock abstracts time to keep the service deterministic in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the local wall clock, truncated to whole seconds.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().Truncate(time.Second)
}

// Service applies user operations to a repository.
type Service struct {
	repo     storage.Repository
	notifier activity.Notifier
	clock    Clock
	newID    func() string
	logger   *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

func WithNotifier(n activity.Notifier) Option { return func(s *Service) { s.notifier = n } }
func WithClock(c Clock) Option                { return func(s *Service) { s.clock = c } }
func WithIDs(fn func() string) Option         { return func(s *Service) { s.newID = fn } }
func WithLogger(l *slog.Logger) Option        { return func(s *Service) { s.logger = l } }

// New returns a Service over repo. Without options it uses the system
// clock, random UUIDs and no indicator.
func New(repo storage.Repository, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		notifier: activity.Nop{},
		clock:    SystemClock{},
		newID:    func() string { return uuid.New().String() },
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the service clock's current time.
func (s *Service) Now() time.Time {
	return s.clock.Now()
}

// Snapshot is a consistent read of every collection, handed to the pure
// filter and aggregation engines by the caller.
type Snapshot struct {
	Entries  []model.Entry
	Projects []model.Project
	Tags     []model.Tag
}

// Snapshot reads all entries, projects and tags.
func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	entries, err := s.repo.Entries().List(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("listing entries: %w", err)
	}
	projects, err := s.repo.Projects().List(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("listing projects: %w", err)
	}
	tags, err := s.repo.Tags().List(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("listing tags: %w", err)
	}
	return Snapshot{Entries: entries, Projects: projects, Tags: tags}, nil
}
