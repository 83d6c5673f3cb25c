// Package profile is the entry point hosts use to put a profile-page editor
// on screen: it wires the editor state, the interaction surface and the
// persistence bridge together.
package profile

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"pagesmith/internal/component"
	"pagesmith/internal/editor"
	"pagesmith/internal/persist"
	"pagesmith/internal/surface"
)

type config struct {
	logger       *zap.Logger
	historyLimit int
	confirm      func(string, func())
	bridge       *persist.Bridge
	username     string
}

type Option func(*config)

func WithLogger(l *zap.Logger) Option {
	return func(c *config) { c.logger = l }
}

func WithHistoryLimit(n int) Option {
	return func(c *config) { c.historyLimit = n }
}

// WithConfirm installs the prompt used before destructive actions.
func WithConfirm(fn func(prompt string, proceed func())) Option {
	return func(c *config) { c.confirm = fn }
}

// WithBridge makes the save button persist the document for username.
func WithBridge(b *persist.Bridge, username string) Option {
	return func(c *config) {
		c.bridge = b
		c.username = username
	}
}

// Editor is one profile page editor mounted into a host container.
type Editor struct {
	state    *editor.Editor
	surface  *surface.Surface
	logger   *zap.Logger
	bridge   *persist.Bridge
	username string
}

// New mounts an editor into container. editable grants the owner's right
// to enter edit mode.
func New(container *html.Node, editable bool, opts ...Option) (*Editor, error) {
	cfg := config{logger: zap.NewNop(), historyLimit: editor.DefaultHistoryLimit}
	for _, opt := range opts {
		opt(&cfg)
	}
	state := editor.New(editor.WithLogger(cfg.logger), editor.WithHistoryLimit(cfg.historyLimit))
	p := &Editor{
		state:    state,
		logger:   cfg.logger,
		bridge:   cfg.bridge,
		username: cfg.username,
	}
	sopts := surface.Options{Logger: cfg.logger, Confirm: cfg.confirm}
	if cfg.bridge != nil {
		sopts.Saver = p.save
	}
	s, err := surface.New(container, state, sopts)
	if err != nil {
		return nil, fmt.Errorf("mount profile editor: %w", err)
	}
	p.surface = s
	s.SetEditable(editable)
	return p, nil
}

func (p *Editor) State() *editor.Editor     { return p.state }
func (p *Editor) Surface() *surface.Surface { return p.surface }
func (p *Editor) Username() string          { return p.username }

// SetMode switches between the owner's view (editable) and a visitor's.
func (p *Editor) SetMode(editable bool) {
	p.surface.SetEditable(editable)
}

// InitDefaultContent seeds the page shown when a user has no saved
// document.
func (p *Editor) InitDefaultContent() error {
	card, err := component.New(component.KindCard, DefaultCard())
	if err != nil {
		return err
	}
	return p.state.NewComponent(card)
}

// DefaultCard is the starter card placed on empty profiles.
func DefaultCard() component.Patch {
	return component.Patch{
		Left:    component.Ptr(100.0),
		Top:     component.Ptr(100.0),
		Width:   component.Ptr(200.0),
		Height:  component.Ptr(300.0),
		Title:   component.Ptr("My Card"),
		Content: component.Ptr("This is a custom card."),
	}
}

// Apply replaces the page with doc, or with the default content when doc
// is nil.
func (p *Editor) Apply(doc *editor.Document) error {
	if doc == nil || doc.Len() == 0 {
		p.state.Reset()
		return p.InitDefaultContent()
	}
	p.state.LoadDocument(doc)
	if !p.surface.Editable() {
		p.state.SetEditMode(false)
	}
	return nil
}

// Load fetches the user's saved page through the bridge. Any failure falls
// back to the default content; the error is still returned so hosts can
// tell the user.
func (p *Editor) Load(ctx context.Context) (persist.Source, error) {
	if p.bridge == nil {
		return persist.SourceNone, p.Apply(nil)
	}
	doc, src, err := p.bridge.Load(ctx, p.username)
	if err != nil {
		p.logger.Warn("load profile, using default content",
			zap.String("user", p.username), zap.Error(err))
		return persist.SourceNone, errors.Join(err, p.Apply(nil))
	}
	return src, p.Apply(doc)
}

// Save persists the current page. The toolbar notice reflects the outcome.
func (p *Editor) Save(ctx context.Context) error {
	return p.surface.Save(ctx)
}

func (p *Editor) save(ctx context.Context, doc *editor.Document) error {
	saved, err := p.bridge.Save(ctx, p.username, doc)
	if err != nil {
		return err
	}
	if !saved {
		p.logger.Debug("profile unchanged, save skipped", zap.String("user", p.username))
	}
	return nil
}

// Close detaches the surface from the editor state.
func (p *Editor) Close() {
	p.surface.Close()
}
