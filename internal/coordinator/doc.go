// Package coordinator implements the dispatch loop that pairs pending tasks
// with idle overseers.
//
// A [Coordinator] owns four containers: the pending queue, the in-progress
// index, the completed queue and the overseer pool. It is driven entirely by
// messages arriving at its mailbox and handles them one at a time on a single
// goroutine, so the ready queue and the lifecycle state need no locking. The
// pending and completed queues and the in-progress index are safe for
// concurrent use because the owning executor touches them from its own
// goroutines.
//
// # Lifecycle
//
// A coordinator is created in justCreated. Initialized moves it to paused,
// Run moves it to running and starts dispatch, Pause moves it back to paused
// without recalling in-flight work. A control message the current state does
// not permit is a protocol violation and stops the loop with a
// *errors.ProtocolError. Terminate is the only clean way out.
//
// # Usage
//
//	c, err := coordinator.New[Params, Result](runtime, executor,
//	    coordinator.WithLogger(logger),
//	    coordinator.WithBus(bus),
//	)
//	if err != nil {
//	    return err
//	}
//	if err := c.Start(ctx); err != nil {
//	    return err
//	}
//	c.Initialize()
//	c.Resume()
//	for _, p := range params {
//	    c.Enqueue(p)
//	}
//	...
//	c.Terminate()
//	return c.Wait()
package coordinator
