package event

import "reflect"

type queued struct {
	typ reflect.Type
	ev  any
}

// Bus is a double-buffered event bus. Events emitted in tick N are delivered
// in tick N+1, in emission order across all types. SwapBuffers is called at
// tick start by the event dispatch system. A Bus belongs to the
// simulation goroutine and is not safe for concurrent use.
type Bus struct {
	front    []queued
	back     []queued
	handlers map[reflect.Type][]func(any)
}

func NewBus() *Bus {
	return &Bus{
		front:    make([]queued, 0, 64),
		back:     make([]queued, 0, 64),
		handlers: make(map[reflect.Type][]func(any)),
	}
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Emit queues an event into the back buffer.
func Emit[T any](b *Bus, event T) {
	b.back = append(b.back, queued{typ: typeOf[T](), ev: event})
}

// Subscribe registers a typed handler for events of type T.
func Subscribe[T any](b *Bus, fn func(T)) {
	t := typeOf[T]()
	b.handlers[t] = append(b.handlers[t], func(ev any) { fn(ev.(T)) })
}

// SwapBuffers rotates back to front and clears the new back buffer.
func (b *Bus) SwapBuffers() {
	b.front, b.back = b.back, b.front[:0]
}

// Pending returns the number of events waiting for the next swap.
func (b *Bus) Pending() int { return len(b.back) }

// DispatchAll delivers the front buffer to subscribed handlers. Events
// emitted by handlers land in the back buffer.
func (b *Bus) DispatchAll() int {
	for _, q := range b.front {
		for _, h := range b.handlers[q.typ] {
			h(q.ev)
		}
	}
	return len(b.front)
}
