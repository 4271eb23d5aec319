package chat

import (
	"log/slog"

	"order_bot/internal/domain"
	"order_bot/internal/engine"
	"order_bot/internal/event"
	"order_bot/internal/infra"
	"order_bot/internal/infra/storage"
)

// Responder turns committed dispatcher outcomes into platform effects:
// redrawing the order message, persisting the snapshot, pinning,
// posting settlement text and rejection notices. Everything here is
// best-effort: the core has already committed, and in particular a
// failed unpin or post never rolls back a settlement.
type Responder struct {
	poster    *Poster
	snapshots *storage.Store
	images    *infra.ImageCache // nil when thumbnail caching is disabled
}

// NewResponder wires the outbound side of the gateway.
func NewResponder(poster *Poster, snapshots *storage.Store, images *infra.ImageCache) *Responder {
	return &Responder{poster: poster, snapshots: snapshots, images: images}
}

// Handle publishes one outcome. Runs on the dispatcher's per-event
// task, after the order's lock has been released.
func (r *Responder) Handle(out *engine.Outcome) {
	if out.Err != nil {
		r.handleFailure(out)
		return
	}

	switch {
	case out.Close != nil:
		r.handleClose(out)
	default:
		if out.View == nil {
			return
		}
		r.redraw(out)
	}
}

func (r *Responder) handleFailure(out *engine.Outcome) {
	if !domain.IsUserFacing(out.Err) {
		// Corruption and conflicts are logged by the dispatcher and
		// abandoned; nothing useful to tell the channel.
		return
	}
	notice := RenderRejection(out.Err, out.Actor)
	if err := r.poster.PostThreadReply(out.ChannelID, out.OrderID, notice); err != nil {
		slog.Warn("Failed to post rejection notice", slog.Any("error", err))
	}
}

func (r *Responder) redraw(out *engine.Outcome) {
	view := out.View
	r.persist(out.OrderID, view.Snapshot)

	text := RenderOrderMessage(view)
	if err := r.poster.UpdateOrderMessage(out.ChannelID, out.OrderID, text, view.Snapshot); err != nil {
		slog.Warn("Failed to update order message", slog.String("order", string(out.OrderID)), slog.Any("error", err))
	}

	if out.Op == event.OpOpenOrder {
		if err := r.poster.Pin(out.ChannelID, out.OrderID); err != nil {
			slog.Warn("Failed to pin order message", slog.Any("error", err))
		}
	}

	if out.Edit != nil && out.Edit.CreatorChanged {
		notice := RenderHandover(out.Edit.PreviousCreator, view.Order.Creator)
		if err := r.poster.PostThreadReply(out.ChannelID, out.OrderID, notice); err != nil {
			slog.Warn("Failed to post handover notice", slog.Any("error", err))
		}
	}

	r.cacheThumbnail(view.Order.ImageURL)
}

func (r *Responder) handleClose(out *engine.Outcome) {
	// The final snapshot is the only remaining record of the closed
	// order; persist it before any of the fallible platform calls.
	r.persist(out.OrderID, out.Close.Snapshot)

	summary := RenderSettlement(out.Close.Entries)
	if err := r.poster.PostThreadReply(out.ChannelID, out.OrderID, summary); err != nil {
		slog.Warn("Failed to post settlement", slog.String("order", string(out.OrderID)), slog.Any("error", err))
	}

	text := RenderOrderMessage(out.Close.View)
	if err := r.poster.UpdateOrderMessage(out.ChannelID, out.OrderID, text, out.Close.Snapshot); err != nil {
		slog.Warn("Failed to update closed order message", slog.Any("error", err))
	} else {
		// The closed message now carries the snapshot; the local copy
		// only exists to fill in events that arrive without one.
		if err := r.snapshots.DeleteSnapshot(out.OrderID); err != nil {
			slog.Warn("Failed to drop local snapshot", slog.String("order", string(out.OrderID)), slog.Any("error", err))
		}
	}

	if err := r.poster.Unpin(out.ChannelID, out.OrderID); err != nil {
		slog.Warn("Failed to unpin order message", slog.Any("error", err))
	}
}

func (r *Responder) persist(id domain.OrderID, snap *domain.Snapshot) {
	if snap == nil {
		return
	}
	if err := r.snapshots.SaveSnapshot(id, snap); err != nil {
		slog.Error("Failed to persist snapshot", slog.String("order", string(id)), slog.Any("error", err))
		infra.GlobalMetrics.RecordError()
	}
}

func (r *Responder) cacheThumbnail(url string) {
	if r.images == nil || url == "" {
		return
	}
	go func() {
		if _, err := r.images.Fetch(url); err != nil {
			slog.Debug("Thumbnail fetch failed", slog.String("url", url), slog.Any("error", err))
		}
	}()
}
