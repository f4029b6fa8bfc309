// Package notifications implements board notifications with long-poll
// delivery.
//
// # Architecture
//
//   - Storage: persistence of notifications (memory, pgstore, mongostore)
//   - UserDirectory: existence lookup for users owned by another system
//   - Registry: in-memory table of parked long-poll waiters, per-user locked
//   - Poller: check-then-wait coordinator behind the long-poll endpoint
//   - Service: create/list/read/delete API; wakes pollers through a Deliverer
//
// # Basic Usage
//
//	storage := notifications.NewMemoryStorage()
//	users := notifications.NewMemoryDirectory(42)
//	registry := notifications.NewRegistry()
//	defer registry.Close()
//
//	svc := notifications.NewService(storage, users, registry)
//	poller := notifications.NewPoller(storage, users, registry, notifications.DefaultConfig())
//
//	go func() {
//	    ns, err := poller.Poll(ctx, 42, nil, 30*time.Second)
//	    // ns holds the notification created below
//	}()
//
//	_, err := svc.NotifyUser(ctx, 42, 7, 13, "someone replied to your post")
//
// # Delivery semantics
//
// Checking for unseen notifications and registering a waiter happen under
// the same per-user lock as Registry.Notify, so a notification created in
// between is never missed. A waiter is resolved exactly once: by an event,
// by its deadline, by cancellation, or by Registry.Close. On an event the
// poller re-reads everything after its cursor, so older unseen
// notifications are returned together with the one that woke it.
//
// Several instances can share one store by putting redisrelay.Relay next
// to the Registry in a MultiDeliverer.
package notifications
