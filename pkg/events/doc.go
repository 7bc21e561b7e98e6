/*
Package events provides an in-process publish/subscribe broker for controller
events.

The scheduler publishes one event per desired count update
(service.scaled), per failed service evaluation (service.failed) and per
cycle (cycle.completed or cycle.failed). Subscribers receive events on a
buffered channel; a full subscriber drops events instead of slowing down the
reconciliation loop.

	broker := events.NewBroker()
	broker.Start()
	defer broker.Stop()

	sub := broker.Subscribe()
	go func() {
		for ev := range sub {
			fmt.Println(ev.Type, ev.Metadata["service"])
		}
	}()

Events are not persisted. They only describe actions taken by this process.
*/
package events
