package workspace

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/patchlens/internal/highlight"
	"github.com/zjrosen/patchlens/internal/log"
	"github.com/zjrosen/patchlens/internal/pubsub"
	"github.com/zjrosen/patchlens/internal/surface"
	"github.com/zjrosen/patchlens/internal/tracing"
)

// Refreshed describes a refresh performed by the dispatcher.
type Refreshed struct {
	SurfaceID string
	Result    highlight.Result
}

// Dispatcher turns workspace events into highlight refreshes. Handle must be
// called from a single goroutine.
type Dispatcher struct {
	ws     *Workspace
	engine *highlight.Engine
	store  *surface.Store
}

func NewDispatcher(ws *Workspace, engine *highlight.Engine, store *surface.Store) *Dispatcher {
	return &Dispatcher{ws: ws, engine: engine, store: store}
}

// Handle routes ev:
//   - Activated and ActiveSurfaceChanged refresh the surface they carry.
//   - DocumentChanged refreshes only when the changed surface is active.
//   - SurfaceClosed drops the surface's stored ranges.
//
// ok is false when nothing was refreshed.
func (d *Dispatcher) Handle(ctx context.Context, ev pubsub.Event[Event]) (Refreshed, bool) {
	id := ev.Payload.SurfaceID
	trace.SpanFromContext(ctx).SetAttributes(attribute.String(tracing.AttrEventKind, string(ev.Type)))

	switch ev.Type {
	case Activated, ActiveSurfaceChanged:
		if id == "" {
			return Refreshed{}, false
		}
		return d.Refresh(ctx, id)

	case DocumentChanged:
		active, ok := d.ws.Active()
		if !ok || active.ID != id {
			return Refreshed{}, false
		}
		return d.Refresh(ctx, id)

	case SurfaceClosed:
		d.store.Forget(id)
	}
	return Refreshed{}, false
}

// Refresh recomputes the highlights of surface id unconditionally.
func (d *Dispatcher) Refresh(ctx context.Context, id string) (Refreshed, bool) {
	s, err := d.ws.Get(id)
	if err != nil {
		// The surface closed before its event was handled.
		log.Debug(log.CatWorkspace, "Skip refresh", "surface", id, "error", err)
		return Refreshed{}, false
	}

	res := d.engine.Refresh(ctx, s.Document(), d.store.Surface(id))
	log.Debug(log.CatWorkspace, "Refreshed surface", "surface", id, "structured", res.Structured)
	return Refreshed{SurfaceID: id, Result: res}, true
}
