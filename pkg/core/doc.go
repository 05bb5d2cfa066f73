/*
Package core implements the vesting ledger. It's built around the Ledger
structure that executes operations of built-in contracts over the storage.

# Operations

Every operation is executed in a separate storage layer, all of its changes
(grants, balances and notifications) are persisted together when it succeeds
and dropped completely when it fails. Operations are serialized, read methods
can run concurrently with each other.

# Events

Notifications emitted by successful operations can be received with
SubscribeForNotifications after Run. Channels are never closed by Ledger,
you can close them after unsubscription. Failing to read from these channels
delays other subscribers, but never blocks operations.
*/
package core
