// Package broadcast provides type-safe in-process fan-out of messages.
//
// It carries configuration changes from the optimization managers to any
// number of listeners, such as server-sent event streams:
//
//	b := broadcast.NewMemoryBroadcaster[optimize.Config](1)
//	defer b.Close()
//
//	sub := b.Subscribe(ctx)
//	defer sub.Close()
//
//	for msg := range sub.Receive(ctx) {
//		render(msg.Data)
//	}
//
// Broadcast never blocks. When a subscriber's buffer is full the oldest
// pending message is dropped, so with a buffer of one a subscriber always
// observes the latest value. Subscribers are removed when their context is
// cancelled, when they are closed, or when the broadcaster is closed.
package broadcast
