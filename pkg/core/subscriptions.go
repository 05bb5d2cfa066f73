package core

import (
	"github.com/nspcc-dev/neo-vesting/pkg/core/state"
)

// notificationBufSize is the size of the queue between ledger operations
// and notification dispatcher.
const notificationBufSize = 64

// SubscribeForNotifications adds given channel to notification event
// broadcasting, so when an operation is committed you'll receive all of its
// events via this channel in their emission order. Subscription is only
// possible after Run.
func (l *Ledger) SubscribeForNotifications(ch chan<- *state.NotificationEvent) {
	if l.running.Load() {
		l.subCh <- ch
	}
}

// UnsubscribeFromNotifications unsubscribes given channel from new
// notifications, you can close it afterwards. Passing non-subscribed channel
// is a no-op.
func (l *Ledger) UnsubscribeFromNotifications(ch chan<- *state.NotificationEvent) {
	if l.running.Load() {
		l.unsubCh <- ch
	}
}

// notificationDispatcher manages subscription to events and broadcasts new
// events.
func (l *Ledger) notificationDispatcher() {
	// Just a set of subscribers.
	feed := make(map[chan<- *state.NotificationEvent]bool)
	defer close(l.dispatcherDone)
	for {
		select {
		case <-l.stopCh:
			return
		case sub := <-l.subCh:
			feed[sub] = true
		case unsub := <-l.unsubCh:
			delete(feed, unsub)
		case events := <-l.events:
			for i := range events {
				for ch := range feed {
					ch <- &events[i]
				}
			}
		}
	}
}
