// Package workspace hosts the open document surfaces, tracks which one is
// active, and publishes lifecycle events that drive highlight refreshes.
package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/zjrosen/patchlens/internal/log"
	"github.com/zjrosen/patchlens/internal/normalize"
	"github.com/zjrosen/patchlens/internal/pubsub"
	"github.com/zjrosen/patchlens/internal/tracing"
)

// Event types published by a Workspace.
const (
	Activated            pubsub.EventType = "activated"
	ActiveSurfaceChanged pubsub.EventType = "active_surface_changed"
	DocumentChanged      pubsub.EventType = "document_changed"
	SurfaceOpened        pubsub.EventType = "surface_opened"
	SurfaceClosed        pubsub.EventType = "surface_closed"
)

// Event is the payload of workspace events. SurfaceID is empty when an
// ActiveSurfaceChanged or Activated event carries no surface.
type Event struct {
	SurfaceID string
}

// Workspace owns the open surfaces.
type Workspace struct {
	mu       sync.RWMutex
	surfaces map[string]*Surface
	order    []string
	active   string
	broker   *pubsub.Broker[Event]
}

func New() *Workspace {
	return &Workspace{
		surfaces: make(map[string]*Surface),
		broker:   pubsub.NewBroker[Event](),
	}
}

// Broker returns the broker events are published on.
func (w *Workspace) Broker() *pubsub.Broker[Event] {
	return w.broker
}

// Shutdown closes the event broker.
func (w *Workspace) Shutdown() {
	w.broker.Close()
}

// Open reads path into a new surface. Opening a path that is already open
// returns the existing surface.
func (w *Workspace) Open(path string) (*Surface, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	if s, ok := w.FindByPath(abs); ok {
		return s, nil
	}

	data, err := os.ReadFile(abs) // #nosec G304 -- user-supplied document path
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	s := newSurface(uuid.NewString(), abs, filepath.Base(abs), LanguageFor(abs), false, string(data))
	w.add(s)
	log.Info(log.CatWorkspace, "Opened document", "path", abs, "surface", s.ID, "language", s.Language)
	return s, nil
}

// OpenUntitled creates a read-only surface holding text. An empty language
// becomes PlainText.
func (w *Workspace) OpenUntitled(title, text, language string) *Surface {
	if language == "" {
		language = PlainText
	}
	s := newSurface(uuid.NewString(), "", title, language, true, text)
	w.add(s)
	log.Debug(log.CatWorkspace, "Opened untitled document", "surface", s.ID, "title", title)
	return s
}

func (w *Workspace) add(s *Surface) {
	w.mu.Lock()
	w.surfaces[s.ID] = s
	w.order = append(w.order, s.ID)
	w.mu.Unlock()

	w.broker.Publish(SurfaceOpened, Event{SurfaceID: s.ID})
}

// Get returns the surface with id.
func (w *Workspace) Get(id string) (*Surface, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	s, ok := w.surfaces[id]
	if !ok {
		return nil, &SurfaceNotFoundError{ID: id}
	}
	return s, nil
}

// Surfaces returns the open surfaces in the order they were opened.
func (w *Workspace) Surfaces() []*Surface {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]*Surface, 0, len(w.order))
	for _, id := range w.order {
		out = append(out, w.surfaces[id])
	}
	return out
}

// FindByPath returns the surface backed by path.
func (w *Workspace) FindByPath(path string) (*Surface, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, false
	}

	w.mu.RLock()
	defer w.mu.RUnlock()

	for _, id := range w.order {
		if s := w.surfaces[id]; s.Path == abs {
			return s, true
		}
	}
	return nil, false
}

// Active returns the active surface, if any.
func (w *Workspace) Active() (*Surface, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.active == "" {
		return nil, false
	}
	s, ok := w.surfaces[w.active]
	return s, ok
}

// SetActive makes id the active surface. An empty id clears it.
func (w *Workspace) SetActive(id string) error {
	w.mu.Lock()
	if id != "" {
		if _, ok := w.surfaces[id]; !ok {
			w.mu.Unlock()
			return &SurfaceNotFoundError{ID: id}
		}
	}
	w.active = id
	w.mu.Unlock()

	w.broker.Publish(ActiveSurfaceChanged, Event{SurfaceID: id})
	return nil
}

// Activate announces the workspace as started, carrying the active surface.
func (w *Workspace) Activate() {
	w.mu.RLock()
	active := w.active
	w.mu.RUnlock()

	w.broker.Publish(Activated, Event{SurfaceID: active})
}

// Update replaces the text of a writable surface.
func (w *Workspace) Update(id, text string) error {
	s, err := w.Get(id)
	if err != nil {
		return err
	}
	if s.ReadOnly {
		return ErrReadOnly
	}
	if s.setText(text) {
		w.broker.Publish(DocumentChanged, Event{SurfaceID: id})
	}
	return nil
}

// Reload re-reads the file behind path. It reports whether the text changed.
func (w *Workspace) Reload(path string) (bool, error) {
	s, ok := w.FindByPath(path)
	if !ok {
		return false, &SurfaceNotFoundError{ID: path}
	}

	data, err := os.ReadFile(s.Path) // #nosec G304 -- path of an open document
	if err != nil {
		return false, fmt.Errorf("reloading %s: %w", s.Path, err)
	}
	if !s.setText(string(data)) {
		return false, nil
	}

	log.Debug(log.CatWorkspace, "Reloaded document", "path", s.Path, "bytes", len(data))
	w.broker.Publish(DocumentChanged, Event{SurfaceID: s.ID})
	return true, nil
}

// CloseSurface removes a surface. Closing the active surface clears the
// active surface.
func (w *Workspace) CloseSurface(id string) error {
	w.mu.Lock()
	if _, ok := w.surfaces[id]; !ok {
		w.mu.Unlock()
		return &SurfaceNotFoundError{ID: id}
	}
	delete(w.surfaces, id)
	for i, oid := range w.order {
		if oid == id {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	wasActive := w.active == id
	if wasActive {
		w.active = ""
	}
	w.mu.Unlock()

	w.broker.Publish(SurfaceClosed, Event{SurfaceID: id})
	if wasActive {
		w.broker.Publish(ActiveSurfaceChanged, Event{})
	}
	return nil
}

// NormalizeActive opens a read-only surface with the active document's
// text normalized, inheriting its language, and makes it active.
func (w *Workspace) NormalizeActive(ctx context.Context) (*Surface, error) {
	_, span := otel.Tracer("github.com/zjrosen/patchlens/internal/workspace").Start(ctx, tracing.SpanNormalize)
	defer span.End()

	src, ok := w.Active()
	if !ok {
		span.SetAttributes(attribute.String(tracing.AttrErrorMessage, ErrNoActiveSurface.Error()))
		return nil, ErrNoActiveSurface
	}
	span.SetAttributes(attribute.String(tracing.AttrSurfaceID, src.ID))

	out := w.OpenUntitled("Normalized: "+src.Title, normalize.Normalize(src.Document().Text()), src.Language)
	if err := w.SetActive(out.ID); err != nil {
		return nil, err
	}
	return out, nil
}
