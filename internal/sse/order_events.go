package sse

import (
	"context"
	"sync"

	"kafila-ticketing/internal/models"
)

const clientBuffer = 4

// OrderStatusEmitter fans order status changes out to SSE clients waiting on
// a specific order, typically the checkout success page.
type OrderStatusEmitter struct {
	clients map[string][]chan models.LifecycleEvent
	mu      sync.RWMutex
}

func NewOrderStatusEmitter() *OrderStatusEmitter {
	return &OrderStatusEmitter{
		clients: make(map[string][]chan models.LifecycleEvent),
	}
}

// Subscribe registers a client for orderID. The channel is closed once ctx
// is done.
func (e *OrderStatusEmitter) Subscribe(ctx context.Context, orderID string) <-chan models.LifecycleEvent {
	clientChan := make(chan models.LifecycleEvent, clientBuffer)

	e.mu.Lock()
	e.clients[orderID] = append(e.clients[orderID], clientChan)
	e.mu.Unlock()

	go func() {
		<-ctx.Done()
		e.remove(orderID, clientChan)
	}()

	return clientChan
}

// Emit delivers ev to every subscriber of its order. Slow clients whose
// buffer is full miss the event rather than blocking the caller.
func (e *OrderStatusEmitter) Emit(ev models.LifecycleEvent) {
	// held for the sends so remove can't close a channel mid-send
	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, clientChan := range e.clients[ev.OrderID] {
		select {
		case clientChan <- ev:
		default:
		}
	}
}

func (e *OrderStatusEmitter) remove(orderID string, clientChan chan models.LifecycleEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()

	clients := e.clients[orderID]
	for i, ch := range clients {
		if ch == clientChan {
			e.clients[orderID] = append(clients[:i], clients[i+1:]...)
			close(clientChan)
			break
		}
	}

	if len(e.clients[orderID]) == 0 {
		delete(e.clients, orderID)
	}
}

// ClientCount returns the number of clients currently subscribed to an order
func (e *OrderStatusEmitter) ClientCount(orderID string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.clients[orderID])
}
