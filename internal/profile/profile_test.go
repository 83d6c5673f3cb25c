package profile

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagesmith/internal/component"
	"pagesmith/internal/dom"
	"pagesmith/internal/editor"
	"pagesmith/internal/persist"
)

func mount(t *testing.T, editable bool, opts ...Option) *Editor {
	t.Helper()
	p, err := New(dom.Element("div", "id", "profile-editor"), editable, opts...)
	require.NoError(t, err)
	t.Cleanup(p.Close)
	return p
}

func TestNewWithoutContainer(t *testing.T) {
	_, err := New(nil, true)
	assert.Error(t, err)
}

func TestDefaultContent(t *testing.T) {
	p := mount(t, true)
	require.NoError(t, p.InitDefaultContent())

	comps := p.State().Components()
	require.Len(t, comps, 1)
	snap := comps[0].Snapshot()
	assert.Equal(t, component.KindCard, snap.Type)
	assert.Equal(t, 100.0, snap.Left)
	assert.Equal(t, 100.0, snap.Top)
	assert.Equal(t, 200.0, snap.Width)
	assert.Equal(t, 300.0, snap.Height)
	assert.Equal(t, "My Card", snap.Title)
	assert.Equal(t, "This is a custom card.", snap.Content)
	assert.Same(t, p.Surface().Canvas(), comps[0].Node().Parent)
}

func TestSetMode(t *testing.T) {
	p := mount(t, true)
	assert.True(t, p.Surface().ToggleEditMode())
	assert.True(t, p.State().EditMode())

	p.SetMode(false)
	assert.False(t, p.State().EditMode())
	assert.False(t, p.Surface().ToggleEditMode())
	assert.False(t, p.State().EditMode())

	p.SetMode(true)
	assert.True(t, p.Surface().ToggleEditMode())
}

func TestLoadWithoutBridgeUsesDefaults(t *testing.T) {
	p := mount(t, false)
	src, err := p.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, persist.SourceNone, src)
	assert.Equal(t, 1, p.State().Len())
}

func savedPage() *editor.Document {
	img := component.Defaults(component.KindImage)
	img.ID = "logo"
	img.Src = "https://example.com/logo.png"
	return &editor.Document{
		Components:  map[string]component.Snapshot{"logo": img},
		SelectedIDs: []string{"logo"},
		EditMode:    true,
	}
}

func TestLoadSavedPage(t *testing.T) {
	ctx := context.Background()
	remote := persist.NewMemoryStore()
	require.NoError(t, remote.Save(ctx, "alice", savedPage()))

	p := mount(t, true, WithBridge(persist.NewBridge(remote, nil, nil), "alice"))
	src, err := p.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, persist.SourceRemote, src)
	c, ok := p.State().Component("logo")
	require.True(t, ok)
	assert.Equal(t, "https://example.com/logo.png", c.Snapshot().Src)
	assert.True(t, p.State().EditMode())
	assert.Equal(t, []string{"logo"}, p.State().Selected())
}

func TestLoadForVisitorStaysInViewMode(t *testing.T) {
	ctx := context.Background()
	remote := persist.NewMemoryStore()
	require.NoError(t, remote.Save(ctx, "alice", savedPage()))

	p := mount(t, false, WithBridge(persist.NewBridge(remote, nil, nil), "alice"))
	_, err := p.Load(ctx)
	require.NoError(t, err)
	assert.False(t, p.State().EditMode())
}

type downStore struct{}

func (downStore) Load(context.Context, string) (*editor.Document, error) {
	return nil, errors.New("connection refused")
}

func (downStore) Save(context.Context, string, *editor.Document) error {
	return errors.New("connection refused")
}

func TestLoadFailureFallsBackToDefaults(t *testing.T) {
	p := mount(t, true, WithBridge(persist.NewBridge(downStore{}, nil, nil), "bob"))
	src, err := p.Load(context.Background())
	assert.ErrorIs(t, err, persist.ErrPersistence)
	assert.Equal(t, persist.SourceNone, src)
	require.Equal(t, 1, p.State().Len())
	assert.Equal(t, "My Card", p.State().Components()[0].Snapshot().Title)
}

func TestSaveThroughBridge(t *testing.T) {
	ctx := context.Background()
	remote := persist.NewMemoryStore()
	p := mount(t, true, WithBridge(persist.NewBridge(remote, nil, nil), "carol"))
	_, err := p.Load(ctx)
	require.NoError(t, err)

	require.NoError(t, p.Save(ctx))
	assert.Equal(t, "Saved", p.Surface().NoticeText())
	doc, err := remote.Load(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Len())

	require.NoError(t, p.Save(ctx))
}

func TestSaveFailureShowsNotice(t *testing.T) {
	p := mount(t, true, WithBridge(persist.NewBridge(downStore{}, nil, nil), "dan"))
	assert.Error(t, p.Save(context.Background()))
	assert.Equal(t, "Save failed", p.Surface().NoticeText())
}

func TestSaveWithoutBridge(t *testing.T) {
	p := mount(t, true)
	assert.Error(t, p.Save(context.Background()))
	assert.Equal(t, "Save failed", p.Surface().NoticeText())
}
