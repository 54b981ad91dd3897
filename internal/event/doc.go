// Package event provides the synchronous publish/subscribe bus that carries
// window notifications (closed, new window requested, theme changed) from
// window implementations to the coordinator.
//
// Topics are dot separated ("window.closed"). Subscription patterns may use
// "*" to match exactly one segment and "**" to match zero or more trailing
// segments:
//
//	bus.SubscribeFunc("window.*", handler)
//
// Delivery happens in the publisher's goroutine, ordered by priority and then
// by subscription order. A subscription cancelled while an event is being
// delivered receives no further events, including the one in flight.
package event
