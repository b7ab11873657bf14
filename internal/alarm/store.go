package alarm

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jwulff/glucose-go/internal/logging"
)

// ErrClosed is returned by a Store after Close.
var ErrClosed = errors.New("alarm store closed")

// Persister loads and saves settings. ok is false when nothing is stored yet.
type Persister interface {
	LoadSettings(ctx context.Context) (settings Settings, ok bool, err error)
	SaveSettings(ctx context.Context, settings Settings) error
	ClearSettings(ctx context.Context) error
}

// SoundTester previews a sound after it has been selected.
type SoundTester func(sound Sound)

// Event is published after every applied action.
type Event struct {
	Action Action
	State  Settings
}

// Options configure a Store.
type Options struct {
	Persister   Persister
	SoundTester SoundTester
	// Defaults replaces DefaultSettings when nothing is persisted.
	Defaults *Settings
	// EventBuffer is the buffer size of subscriber channels.
	EventBuffer int
}

type commandKind int

const (
	cmdDispatch commandKind = iota
	cmdState
	cmdSubscribe
	cmdReload
)

type command struct {
	kind   commandKind
	ctx    context.Context
	action Action
	reply  chan reply
}

type reply struct {
	state  Settings
	events <-chan Event
	err    error
}

// Store is the single owner of the alarm settings. Every change is sent to
// its goroutine as a command, applied with Reduce, persisted, and then
// published to subscribers.
type Store struct {
	opts     Options
	defaults Settings
	logger   zerolog.Logger
	commands chan command
	quit     chan struct{}
	done     chan struct{}
	once     sync.Once
}

// NewStore loads persisted settings, falling back to the defaults when
// nothing valid is stored, and starts the owner goroutine.
func NewStore(ctx context.Context, opts Options, logger zerolog.Logger) (*Store, error) {
	if opts.EventBuffer <= 0 {
		opts.EventBuffer = 16
	}

	defaults := DefaultSettings()
	if opts.Defaults != nil {
		if err := opts.Defaults.Validate(); err != nil {
			return nil, fmt.Errorf("default alarm settings: %w", err)
		}
		defaults = *opts.Defaults
	}

	s := &Store{
		opts:     opts,
		defaults: defaults,
		logger:   logging.Component(logger, "alarm_store"),
		commands: make(chan command),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	state, err := s.load(ctx, defaults)
	if err != nil {
		return nil, err
	}
	go s.run(state)
	return s, nil
}

// load reads the persisted settings. Invalid settings are logged and current
// is kept.
func (s *Store) load(ctx context.Context, current Settings) (Settings, error) {
	if s.opts.Persister == nil {
		return current, nil
	}
	loaded, ok, err := s.opts.Persister.LoadSettings(ctx)
	if err != nil {
		return current, fmt.Errorf("load alarm settings: %w", err)
	}
	if !ok {
		return s.defaults, nil
	}
	if err := loaded.Validate(); err != nil {
		s.logger.Warn().Err(err).Msg("ignoring invalid stored alarm settings")
		return current, nil
	}
	return loaded, nil
}

func (s *Store) run(state Settings) {
	defer close(s.done)

	var subscribers []chan Event
	defer func() {
		for _, sub := range subscribers {
			close(sub)
		}
	}()

	for {
		select {
		case <-s.quit:
			return
		case cmd := <-s.commands:
			switch cmd.kind {
			case cmdState:
				cmd.reply <- reply{state: state}
			case cmdSubscribe:
				sub := make(chan Event, s.opts.EventBuffer)
				subscribers = append(subscribers, sub)
				cmd.reply <- reply{state: state, events: sub}
			case cmdReload:
				next, err := s.load(cmd.ctx, state)
				if err != nil {
					cmd.reply <- reply{state: state, err: err}
					continue
				}
				if next != state {
					s.logger.Info().Msg("alarm settings reloaded")
					s.publish(subscribers, Event{Action: Replace{Settings: next}, State: next})
				}
				state = next
				cmd.reply <- reply{state: state}
			case cmdDispatch:
				next, err := s.apply(cmd.ctx, state, cmd.action)
				if err != nil {
					cmd.reply <- reply{state: state, err: err}
					continue
				}
				state = next
				s.publish(subscribers, Event{Action: cmd.action, State: state})
				cmd.reply <- reply{state: state}
			}
		}
	}
}

func (s *Store) apply(ctx context.Context, state Settings, action Action) (Settings, error) {
	next, err := Reduce(state, action)
	if err != nil {
		return state, err
	}

	if s.opts.Persister != nil {
		if _, reset := action.(Reset); reset {
			err = s.opts.Persister.ClearSettings(ctx)
		} else {
			err = s.opts.Persister.SaveSettings(ctx, next)
		}
		if err != nil {
			return state, fmt.Errorf("save alarm settings: %w", err)
		}
	}

	s.logger.Info().Str("action", action.Name()).Msg("alarm settings changed")

	if sound, ok := chosenSound(action); ok && s.opts.SoundTester != nil {
		s.opts.SoundTester(sound)
	}
	return next, nil
}

func (s *Store) publish(subscribers []chan Event, ev Event) {
	for _, sub := range subscribers {
		select {
		case sub <- ev:
		default:
			s.logger.Warn().Str("action", ev.Action.Name()).Msg("subscriber full, event dropped")
		}
	}
}

func (s *Store) send(ctx context.Context, cmd command) (reply, error) {
	if err := ctx.Err(); err != nil {
		return reply{}, err
	}
	cmd.reply = make(chan reply, 1)
	cmd.ctx = ctx

	select {
	case s.commands <- cmd:
	case <-s.done:
		return reply{}, ErrClosed
	case <-ctx.Done():
		return reply{}, ctx.Err()
	}

	select {
	case r := <-cmd.reply:
		return r, nil
	case <-ctx.Done():
		return reply{}, ctx.Err()
	}
}

// Dispatch applies action and returns the resulting settings.
func (s *Store) Dispatch(ctx context.Context, action Action) (Settings, error) {
	r, err := s.send(ctx, command{kind: cmdDispatch, action: action})
	if err != nil {
		return Settings{}, err
	}
	return r.state, r.err
}

// State returns a snapshot of the current settings.
func (s *Store) State(ctx context.Context) (Settings, error) {
	r, err := s.send(ctx, command{kind: cmdState})
	return r.state, err
}

// Reset restores the defaults and clears the persisted settings.
func (s *Store) Reset(ctx context.Context) (Settings, error) {
	return s.Dispatch(ctx, Reset{Defaults: s.defaults})
}

// Reload picks up settings persisted by someone else, for example another
// process sharing the database. Subscribers see a Replace event when the
// settings changed.
func (s *Store) Reload(ctx context.Context) (Settings, error) {
	r, err := s.send(ctx, command{kind: cmdReload})
	if err != nil {
		return Settings{}, err
	}
	return r.state, r.err
}

// Subscribe returns a channel receiving an Event after each applied action.
// The channel is closed when the store closes.
func (s *Store) Subscribe(ctx context.Context) (<-chan Event, error) {
	r, err := s.send(ctx, command{kind: cmdSubscribe})
	return r.events, err
}

// Close stops the owner goroutine.
func (s *Store) Close() {
	s.once.Do(func() { close(s.quit) })
	<-s.done
}
