package workspace

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/patchlens/internal/pubsub"
)

func writeDoc(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func subscribe(t *testing.T, ws *Workspace) <-chan pubsub.Event[Event] {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ws.Broker().Subscribe(ctx)
}

func next(t *testing.T, ch <-chan pubsub.Event[Event]) pubsub.Event[Event] {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return pubsub.Event[Event]{}
	}
}

func requireNoEvent(t *testing.T, ch <-chan pubsub.Event[Event]) {
	t.Helper()
	select {
	case ev := <-ch:
		t.Fatalf("unexpected event %+v", ev)
	default:
	}
}

func TestLanguageFor(t *testing.T) {
	require.Equal(t, "c", LanguageFor("patch.c"))
	require.Equal(t, "cpp", LanguageFor("/x/y/Patch.CPP"))
	require.Equal(t, "go", LanguageFor("main.go"))
	require.Equal(t, PlainText, LanguageFor("review"))
	require.Equal(t, PlainText, LanguageFor("review.unknown"))
}

func TestOpen(t *testing.T) {
	ws := New()
	events := subscribe(t, ws)
	path := writeDoc(t, "fix.c", "int a;")

	s, err := ws.Open(path)
	require.NoError(t, err)
	require.Equal(t, "fix.c", s.Title)
	require.Equal(t, "c", s.Language)
	require.False(t, s.ReadOnly)
	require.False(t, s.Untitled())
	require.Equal(t, "int a;", s.Document().Text())

	ev := next(t, events)
	require.Equal(t, SurfaceOpened, ev.Type)
	require.Equal(t, s.ID, ev.Payload.SurfaceID)

	again, err := ws.Open(path)
	require.NoError(t, err)
	require.Equal(t, s.ID, again.ID, "opening twice returns the same surface")
	require.Len(t, ws.Surfaces(), 1)
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := New().Open(filepath.Join(t.TempDir(), "nope.txt"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestGet_Unknown(t *testing.T) {
	_, err := New().Get("missing")
	var notFound *SurfaceNotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, "missing", notFound.ID)
	require.Equal(t, "surface missing not found", err.Error())
}

func TestSetActive(t *testing.T) {
	ws := New()
	s := ws.OpenUntitled("scratch", "x", "")
	events := subscribe(t, ws)

	require.NoError(t, ws.SetActive(s.ID))
	ev := next(t, events)
	require.Equal(t, ActiveSurfaceChanged, ev.Type)
	require.Equal(t, s.ID, ev.Payload.SurfaceID)

	active, ok := ws.Active()
	require.True(t, ok)
	require.Equal(t, s.ID, active.ID)

	require.NoError(t, ws.SetActive(""))
	ev = next(t, events)
	require.Equal(t, "", ev.Payload.SurfaceID)
	_, ok = ws.Active()
	require.False(t, ok)

	err := ws.SetActive("bogus")
	var notFound *SurfaceNotFoundError
	require.ErrorAs(t, err, &notFound)
	requireNoEvent(t, events)
}

func TestActivate(t *testing.T) {
	ws := New()
	events := subscribe(t, ws)

	ws.Activate()
	ev := next(t, events)
	require.Equal(t, Activated, ev.Type)
	require.Equal(t, "", ev.Payload.SurfaceID)
}

func TestUpdate(t *testing.T) {
	ws := New()
	s, err := ws.Open(writeDoc(t, "a.txt", "one"))
	require.NoError(t, err)
	events := subscribe(t, ws)

	require.NoError(t, ws.Update(s.ID, "two"))
	require.Equal(t, "two", s.Document().Text())
	ev := next(t, events)
	require.Equal(t, DocumentChanged, ev.Type)

	require.NoError(t, ws.Update(s.ID, "two"))
	requireNoEvent(t, events)

	ro := ws.OpenUntitled("ro", "x", "c")
	next(t, events)
	require.ErrorIs(t, ws.Update(ro.ID, "y"), ErrReadOnly)
}

func TestReload(t *testing.T) {
	ws := New()
	path := writeDoc(t, "a.txt", "one")
	s, err := ws.Open(path)
	require.NoError(t, err)
	events := subscribe(t, ws)

	changed, err := ws.Reload(path)
	require.NoError(t, err)
	require.False(t, changed)
	requireNoEvent(t, events)

	require.NoError(t, os.WriteFile(path, []byte("two"), 0644))
	changed, err = ws.Reload(path)
	require.NoError(t, err)
	require.True(t, changed)
	require.Equal(t, "two", s.Document().Text())
	require.Equal(t, DocumentChanged, next(t, events).Type)

	_, err = ws.Reload(filepath.Join(t.TempDir(), "other.txt"))
	var notFound *SurfaceNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestCloseSurface(t *testing.T) {
	ws := New()
	a := ws.OpenUntitled("a", "", "")
	b := ws.OpenUntitled("b", "", "")
	require.NoError(t, ws.SetActive(a.ID))
	events := subscribe(t, ws)

	require.NoError(t, ws.CloseSurface(a.ID))
	require.Equal(t, SurfaceClosed, next(t, events).Type)
	ev := next(t, events)
	require.Equal(t, ActiveSurfaceChanged, ev.Type)
	require.Equal(t, "", ev.Payload.SurfaceID)

	require.Len(t, ws.Surfaces(), 1)
	require.Equal(t, b.ID, ws.Surfaces()[0].ID)

	var notFound *SurfaceNotFoundError
	require.ErrorAs(t, ws.CloseSurface(a.ID), &notFound)
}

func TestNormalizeActive_NoActiveSurface(t *testing.T) {
	ws := New()
	ws.OpenUntitled("a", "x<BUGS>", "")

	out, err := ws.NormalizeActive(context.Background())
	require.Nil(t, out)
	require.True(t, errors.Is(err, ErrNoActiveSurface))
	require.Len(t, ws.Surfaces(), 1, "no surface is created on error")
}

func TestNormalizeActive(t *testing.T) {
	ws := New()
	src, err := ws.Open(writeDoc(t, "fix.c", "a<BUGS>b<BUGE>c"))
	require.NoError(t, err)
	require.NoError(t, ws.SetActive(src.ID))

	out, err := ws.NormalizeActive(context.Background())
	require.NoError(t, err)
	require.True(t, out.ReadOnly)
	require.True(t, out.Untitled())
	require.Equal(t, "c", out.Language)
	require.Equal(t, "Normalized: fix.c", out.Title)
	require.Equal(t, "a\n<BUGS>\nb\n<BUGE>\nc\n", out.Document().Text())

	active, ok := ws.Active()
	require.True(t, ok)
	require.Equal(t, out.ID, active.ID)
	require.Equal(t, "a<BUGS>b<BUGE>c", src.Document().Text(), "source is untouched")
}

func TestNormalizeActive_PlainTextFallback(t *testing.T) {
	ws := New()
	src := ws.OpenUntitled("scratch", "<FIXS>x", "")
	require.NoError(t, ws.SetActive(src.ID))

	out, err := ws.NormalizeActive(context.Background())
	require.NoError(t, err)
	require.Equal(t, PlainText, out.Language)
}
