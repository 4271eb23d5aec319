package engine

import (
	"context"
	"log/slog"
	"time"

	"order_bot/internal/domain"
	"order_bot/internal/event"
	"order_bot/internal/infra"
	"order_bot/internal/service"
)

// Outcome is the committed result of one dispatched command, handed to
// the gateway after the order's lock has been released. Slow or
// failing outbound calls therefore never block concurrent edits.
type Outcome struct {
	Op        event.Op
	OrderID   domain.OrderID
	ChannelID string
	Actor     string

	View   *service.OrderView
	Upsert *service.UpsertResult
	Edit   *service.EditResult
	Close  *service.CloseResult
	Err    error
}

// Dispatcher drains the gateway inbox and runs each command as an
// independent task. Cross-command ordering is not guaranteed here;
// same-order commands serialize inside the service's per-order lock
// table, commands for different orders run in parallel.
type Dispatcher struct {
	inbox chan *event.Command
	svc   *service.OrderService

	defaultImageURL string

	// Boundary: notifies the gateway of committed state changes.
	onOutcome func(*Outcome)
}

// NewDispatcher creates a dispatcher over the given service.
func NewDispatcher(inboxSize int, svc *service.OrderService, defaultImageURL string, onOutcome func(*Outcome)) *Dispatcher {
	return &Dispatcher{
		inbox:           make(chan *event.Command, inboxSize),
		svc:             svc,
		defaultImageURL: defaultImageURL,
		onOutcome:       onOutcome,
	}
}

// Inbox returns the command channel. Gateway workers send here.
func (d *Dispatcher) Inbox() chan<- *event.Command {
	return d.inbox
}

// Run drains the inbox until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	slog.Info("Dispatcher started")
	for {
		select {
		case <-ctx.Done():
			slog.Info("Dispatcher stopping...")
			return
		case cmd := <-d.inbox:
			go d.handle(cmd)
		}
	}
}

func (d *Dispatcher) handle(cmd *event.Command) {
	defer event.ReleaseCommand(cmd)
	defer func() {
		if r := recover(); r != nil {
			slog.Error("PANIC_IN_HANDLER", slog.Any("panic", r), slog.String("op", string(cmd.Op)))
			infra.GlobalMetrics.RecordError()
		}
	}()

	start := time.Now()
	out := d.apply(cmd)
	infra.GlobalMetrics.RecordEvent(time.Since(start).Nanoseconds())

	if out.Err != nil {
		if domain.IsUserFacing(out.Err) {
			infra.GlobalMetrics.RecordRejected()
		} else {
			infra.GlobalMetrics.RecordError()
			slog.Error("Operation failed",
				slog.String("op", string(cmd.Op)),
				slog.String("order", string(cmd.OrderID)),
				slog.Any("error", out.Err))
		}
	}

	if d.onOutcome != nil {
		d.onOutcome(out)
	}
}

// apply maps one command onto the core operation surface. All parsing
// of user-entered amounts happens here so rejects surface as typed
// validation errors, never as partial state.
func (d *Dispatcher) apply(cmd *event.Command) *Outcome {
	out := &Outcome{
		Op:        cmd.Op,
		OrderID:   cmd.OrderID,
		ChannelID: cmd.ChannelID,
		Actor:     cmd.Actor,
	}

	switch cmd.Op {
	case event.OpOpenOrder:
		img := cmd.OrderImg
		if img == "" {
			img = d.defaultImageURL
		}
		view, err := d.svc.CreateOrder(cmd.OrderID, cmd.OrderName, cmd.Actor, cmd.OrderInfo, img)
		out.View, out.Err = view, err
		if err == nil {
			infra.GlobalMetrics.RecordOrderOpened()
		}

	case event.OpShowOrder:
		out.View, out.Err = d.svc.GetOrderView(cmd.OrderID, cmd.Snapshot)

	case event.OpUpsertItem:
		edits, price, err := buildEdits(cmd)
		if err != nil {
			out.Err = err
			return out
		}
		res, err := d.svc.UpsertItemQuantities(cmd.OrderID, cmd.Snapshot, cmd.Actor, cmd.ItemName, price, edits)
		out.Err = err
		if res != nil {
			out.Upsert = res
			out.View = res.View
			infra.GlobalMetrics.RecordItemEdit()
		}

	case event.OpSetPrice:
		price, err := domain.ParsePrice(cmd.Price)
		if err != nil {
			out.Err = err
			return out
		}
		out.View, out.Err = d.svc.SetItemPrice(cmd.OrderID, cmd.Snapshot, cmd.Actor, cmd.ItemName, price)
		if out.Err == nil {
			infra.GlobalMetrics.RecordItemEdit()
		}

	case event.OpEditInfo:
		img := cmd.OrderImg
		if img == "" {
			img = d.defaultImageURL
		}
		res, err := d.svc.EditOrderInfo(cmd.OrderID, cmd.Snapshot, cmd.Actor, service.OrderEdit{
			Name:       cmd.OrderName,
			Info:       cmd.OrderInfo,
			ImageURL:   img,
			State:      cmd.OrderState,
			NewCreator: cmd.NewCreator,
		})
		out.Err = err
		if res != nil {
			out.Edit = res
			out.View = res.View
		}

	case event.OpCloseOrder:
		res, err := d.svc.CloseOrder(cmd.OrderID, cmd.Snapshot, cmd.Actor)
		out.Err = err
		if res != nil {
			out.Close = res
			out.View = res.View
			infra.GlobalMetrics.RecordOrderClosed()
		}

	default:
		slog.Warn("Unknown op", slog.String("op", string(cmd.Op)))
	}
	return out
}

// buildEdits expands the form payload into a participant edit map: the
// single entered quantity applies to every named participant, zero
// meaning removal. The form requires at least one participant.
func buildEdits(cmd *event.Command) (map[domain.Participant]int64, int64, error) {
	price, err := domain.ParsePrice(cmd.Price)
	if err != nil {
		return nil, 0, err
	}
	qty, err := domain.ParseQuantity(cmd.Quantity)
	if err != nil {
		return nil, 0, err
	}
	if len(cmd.PlatformUsers) == 0 && len(cmd.FreeformUsers) == 0 {
		return nil, 0, &domain.ValidationError{Field: "participants", Rule: "at least one participant is required"}
	}

	edits := make(map[domain.Participant]int64, len(cmd.PlatformUsers)+len(cmd.FreeformUsers))
	for _, id := range cmd.PlatformUsers {
		edits[domain.PlatformParticipant(id)] = qty
	}
	for _, name := range cmd.FreeformUsers {
		edits[domain.FreeformParticipant(name)] = qty
	}
	return edits, price, nil
}
