package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"kilometers.ai/loader/internal/core/domain/extension"
	"kilometers.ai/loader/internal/core/poll"
	"kilometers.ai/loader/internal/core/ports"
)

// DefaultAnchorInterval is the wait between two settings anchor checks
const DefaultAnchorInterval = 100 * time.Millisecond

// ErrHostNotReady is returned when the host has no navigator yet
var ErrHostNotReady = errors.New("host navigator not available")

// ComposerState tracks the settings section lifecycle
type ComposerState int

const (
	// StateUnmounted means no settings session is armed
	StateUnmounted ComposerState = iota
	// StateWaitingForPreferences means the section shows once preferences open
	StateWaitingForPreferences
	// StateMounted means the section is rendered on the preferences view
	StateMounted
)

func (s ComposerState) String() string {
	switch s {
	case StateUnmounted:
		return "unmounted"
	case StateWaitingForPreferences:
		return "waiting-for-preferences"
	case StateMounted:
		return "mounted"
	default:
		return "unknown"
	}
}

// ComposerOptions configures a SettingsComposer
type ComposerOptions struct {
	SectionID      string
	Title          string
	AnchorInterval time.Duration
}

// SettingsComposer renders the loader's settings section whenever the host
// shows its preferences view and hides it when the host navigates away.
type SettingsComposer struct {
	host   ports.Host
	opts   ComposerOptions
	logger ports.Logger

	mu         sync.Mutex
	state      ComposerState
	model      *extension.SettingsModel
	section    ports.SettingsSection
	parent     context.Context
	stopListen func()
	cancelWait context.CancelFunc
	generation uint64
}

// NewSettingsComposer creates an unmounted composer
func NewSettingsComposer(host ports.Host, opts ComposerOptions, logger ports.Logger) *SettingsComposer {
	if opts.AnchorInterval <= 0 {
		opts.AnchorInterval = DefaultAnchorInterval
	}
	return &SettingsComposer{host: host, opts: opts, logger: logger, state: StateUnmounted}
}

// BuildAndShow derives a fresh settings model from descriptors and arms the
// navigation listener. A previous model and listener are replaced.
func (c *SettingsComposer) BuildAndShow(ctx context.Context, descriptors []extension.Descriptor, working *extension.WorkingCopy, onCommit func(extension.EnablementMap) error) error {
	nav, ok := c.host.Navigator()
	if !ok {
		return ErrHostNotReady
	}

	model := extension.BuildSettingsModel(c.opts.SectionID, c.opts.Title, descriptors, working, onCommit)

	c.mu.Lock()
	if c.stopListen != nil {
		c.stopListen()
		c.stopListen = nil
	}
	c.abortWaitLocked()
	c.model = model
	c.parent = ctx
	c.state = StateWaitingForPreferences
	c.mu.Unlock()

	stop := nav.Listen(func(path string) {
		c.onNavigate(nav, path)
	})

	c.mu.Lock()
	c.stopListen = stop
	c.mu.Unlock()

	c.logger.Debug("settings armed", "section", c.opts.SectionID, "toggles", len(model.Toggles))

	if loc := nav.Location(); loc == ports.PreferencesPath {
		c.onNavigate(nav, loc)
	}
	return nil
}

// State returns the current lifecycle state
func (c *SettingsComposer) State() ComposerState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Model returns the model of the current session
func (c *SettingsComposer) Model() *extension.SettingsModel {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.model
}

// Stop detaches from the navigator and hides the section
func (c *SettingsComposer) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopListen != nil {
		c.stopListen()
		c.stopListen = nil
	}
	c.abortWaitLocked()
	if c.section != nil {
		c.section.Hide()
	}
	c.state = StateUnmounted
}

func (c *SettingsComposer) onNavigate(nav ports.Navigator, path string) {
	if path != ports.PreferencesPath {
		c.unmount()
		return
	}

	c.mu.Lock()
	c.abortWaitLocked()
	gen := c.generation
	c.mu.Unlock()

	if c.host.Surface().AnchorReady() {
		c.mount(gen)
		return
	}

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return
	}
	waitCtx, cancel := context.WithCancel(c.parent)
	c.cancelWait = cancel
	c.mu.Unlock()

	go c.awaitAnchor(waitCtx, cancel, nav, gen)
}

// awaitAnchor polls for the anchor and gives up once the host leaves the
// preferences view.
func (c *SettingsComposer) awaitAnchor(ctx context.Context, cancel context.CancelFunc, nav ports.Navigator, gen uint64) {
	defer cancel()

	left := false
	_, err := poll.Until(ctx, poll.Every(c.opts.AnchorInterval), func() bool {
		if nav.Location() != ports.PreferencesPath {
			left = true
			return true
		}
		return c.host.Surface().AnchorReady()
	})
	if err != nil || left {
		return
	}
	c.mount(gen)
}

func (c *SettingsComposer) mount(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation || c.model == nil {
		return
	}

	surface := c.host.Surface()
	section, ok := surface.Section(c.opts.SectionID)
	if !ok {
		var err error
		section, err = surface.CreateSection(c.opts.SectionID)
		if err != nil {
			c.logger.Warn("failed to create settings section", "section", c.opts.SectionID, "error", err)
			return
		}
	}
	c.section = section

	c.model.Refresh()
	if err := section.Render(c.model); err != nil {
		c.logger.Warn("failed to render settings", "section", c.opts.SectionID, "error", err)
		return
	}
	c.state = StateMounted
}

func (c *SettingsComposer) unmount() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.abortWaitLocked()
	if c.state == StateMounted && c.section != nil {
		c.section.Hide()
	}
	if c.state != StateUnmounted {
		c.state = StateWaitingForPreferences
	}
}

// abortWaitLocked cancels a pending anchor wait and invalidates queued mounts
func (c *SettingsComposer) abortWaitLocked() {
	c.generation++
	if c.cancelWait != nil {
		c.cancelWait()
		c.cancelWait = nil
	}
}
