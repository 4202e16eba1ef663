package workspace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/patchlens/internal/highlight"
	"github.com/zjrosen/patchlens/internal/pubsub"
	"github.com/zjrosen/patchlens/internal/surface"
)

const review = "h\nfoo\n----\nfoo bar\n----\nbar baz\n----\n<BUGS>"

func newDispatcher(ws *Workspace) (*Dispatcher, *surface.Store) {
	store := surface.NewStore()
	return NewDispatcher(ws, highlight.NewEngine(highlight.DefaultOptions()), store), store
}

func event(t pubsub.EventType, id string) pubsub.Event[Event] {
	return pubsub.Event[Event]{Type: t, Payload: Event{SurfaceID: id}}
}

func TestDispatcher_ActivatedWithoutSurface(t *testing.T) {
	d, _ := newDispatcher(New())
	_, ok := d.Handle(context.Background(), event(Activated, ""))
	require.False(t, ok)
}

func TestDispatcher_ActivatedRefreshesActive(t *testing.T) {
	ws := New()
	s := ws.OpenUntitled("r", review, "")
	d, store := newDispatcher(ws)

	got, ok := d.Handle(context.Background(), event(Activated, s.ID))
	require.True(t, ok)
	require.Equal(t, s.ID, got.SurfaceID)
	require.True(t, got.Result.Structured)

	ranges, applied := store.Ranges(s.ID, highlight.StyleBoth)
	require.True(t, applied)
	require.Len(t, ranges, 2)
}

func TestDispatcher_ActiveSurfaceChanged(t *testing.T) {
	ws := New()
	s := ws.OpenUntitled("r", review, "")
	d, store := newDispatcher(ws)

	_, ok := d.Handle(context.Background(), event(ActiveSurfaceChanged, ""))
	require.False(t, ok, "no surface means nothing to refresh")

	_, ok = d.Handle(context.Background(), event(ActiveSurfaceChanged, s.ID))
	require.True(t, ok)
	require.Len(t, store.Snapshot(s.ID), len(highlight.AllStyles))
}

func TestDispatcher_DocumentChangedOnlyForActive(t *testing.T) {
	ws := New()
	active, err := ws.Open(writeDoc(t, "a.txt", review))
	require.NoError(t, err)
	other, err := ws.Open(writeDoc(t, "b.txt", review))
	require.NoError(t, err)
	require.NoError(t, ws.SetActive(active.ID))
	d, store := newDispatcher(ws)

	_, ok := d.Handle(context.Background(), event(DocumentChanged, other.ID))
	require.False(t, ok)
	require.Empty(t, store.Snapshot(other.ID))

	require.NoError(t, ws.Update(active.ID, "h\n<BUGS><BUGS>"))
	got, ok := d.Handle(context.Background(), event(DocumentChanged, active.ID))
	require.True(t, ok)
	require.False(t, got.Result.Structured)

	ranges, _ := store.Ranges(active.ID, highlight.StyleBugStart)
	require.Len(t, ranges, 2)
	cleared, _ := store.Ranges(active.ID, highlight.StyleBoth)
	require.Empty(t, cleared)
}

func TestDispatcher_SurfaceClosedForgetsRanges(t *testing.T) {
	ws := New()
	s := ws.OpenUntitled("r", review, "")
	d, store := newDispatcher(ws)

	_, ok := d.Refresh(context.Background(), s.ID)
	require.True(t, ok)
	require.NotEmpty(t, store.Snapshot(s.ID))

	require.NoError(t, ws.CloseSurface(s.ID))
	_, ok = d.Handle(context.Background(), event(SurfaceClosed, s.ID))
	require.False(t, ok)
	require.Empty(t, store.Snapshot(s.ID))
}

func TestDispatcher_RefreshUnknownSurface(t *testing.T) {
	d, _ := newDispatcher(New())
	_, ok := d.Refresh(context.Background(), "gone")
	require.False(t, ok)
}

func TestDispatcher_DrivenByBroker(t *testing.T) {
	ws := New()
	events := subscribe(t, ws)
	d, store := newDispatcher(ws)

	s := ws.OpenUntitled("r", review, "")
	require.NoError(t, ws.SetActive(s.ID))

	// Serial consumption, the way the viewer's update loop drains events.
	for i := 0; i < 2; i++ {
		d.Handle(context.Background(), next(t, events))
	}
	require.Len(t, store.Snapshot(s.ID), len(highlight.AllStyles))
}
