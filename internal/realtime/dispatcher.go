package realtime

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/igaue-takahiko/food-delivery-app/internal/metrics"
	"github.com/igaue-takahiko/food-delivery-app/internal/model"
)

const (
	ActionCreate = "create"
	ActionUpdate = "update"

	// OrdersEvent is the frame event name clients subscribe to.
	OrdersEvent = "orders"
)

// Transport delivers encoded frames to websocket sessions.
type Transport interface {
	Send(sessionID string, frame []byte) error
	Broadcast(frame []byte) int
}

type SessionLookup interface {
	Lookup(participantID string) (string, bool)
}

// Frame is the envelope of every server -> client message.
type Frame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type OrderEvent struct {
	Action string      `json:"action"`
	Order  model.Order `json:"order"`
}

// Dispatcher queues order events and delivers them from its own goroutine, so
// callers never wait on or see delivery failures. Delivery is at most once.
type Dispatcher struct {
	sessions  SessionLookup
	transport Transport
	events    chan OrderEvent
	log       *zap.Logger
	metrics   *metrics.Metrics
}

func NewDispatcher(sessions SessionLookup, transport Transport, buffer int, log *zap.Logger, m *metrics.Metrics) *Dispatcher {
	return &Dispatcher{
		sessions:  sessions,
		transport: transport,
		events:    make(chan OrderEvent, buffer),
		log:       log,
		metrics:   m,
	}
}

// NotifyCreate tells the order's seller, if connected, about a new order.
func (d *Dispatcher) NotifyCreate(order model.Order) {
	d.enqueue(OrderEvent{Action: ActionCreate, Order: order})
}

// NotifyUpdate broadcasts a status change to every open session.
func (d *Dispatcher) NotifyUpdate(order model.Order) {
	d.enqueue(OrderEvent{Action: ActionUpdate, Order: order})
}

func (d *Dispatcher) enqueue(ev OrderEvent) {
	select {
	case d.events <- ev:
	default:
		d.metrics.Notification(ev.Action, "dropped")
		d.log.Warn("notification queue full, dropping event",
			zap.String("action", ev.Action),
			zap.String("order_id", ev.Order.ID),
		)
	}
}

// Run delivers queued events until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-d.events:
			d.deliver(ev)
		}
	}
}

func (d *Dispatcher) deliver(ev OrderEvent) {
	defer func() {
		if r := recover(); r != nil {
			d.metrics.Notification(ev.Action, "failed")
			d.log.Error("notification panicked", zap.Any("panic", r), zap.String("order_id", ev.Order.ID))
		}
	}()

	frame, err := json.Marshal(Frame{Event: OrdersEvent, Data: ev})
	if err != nil {
		d.metrics.Notification(ev.Action, "failed")
		d.log.Error("failed to encode order event", zap.Error(err), zap.String("order_id", ev.Order.ID))
		return
	}

	switch ev.Action {
	case ActionCreate:
		sellerID := ev.Order.Seller.SellerID
		sessionID, ok := d.sessions.Lookup(sellerID)
		if !ok {
			d.metrics.Notification(ev.Action, "no_session")
			d.log.Debug("seller not connected", zap.String("seller_id", sellerID), zap.String("order_id", ev.Order.ID))
			return
		}
		if err := d.transport.Send(sessionID, frame); err != nil {
			d.metrics.Notification(ev.Action, "failed")
			d.log.Warn("failed to push order", zap.Error(err), zap.String("seller_id", sellerID), zap.String("order_id", ev.Order.ID))
			return
		}
		d.metrics.Notification(ev.Action, "delivered")

	case ActionUpdate:
		n := d.transport.Broadcast(frame)
		d.metrics.Notification(ev.Action, "delivered")
		d.log.Debug("order update broadcast", zap.String("order_id", ev.Order.ID), zap.Int("sessions", n))

	default:
		d.metrics.Notification(ev.Action, "failed")
		d.log.Error("unknown order action", zap.String("action", ev.Action))
	}
}
