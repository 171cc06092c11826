// Package loopback is an in-process implementation of cluster.Runtime.
//
// Every node is simulated inside the current process. Actors are
// goroutines with their own mailbox; message delivery is a direct append to
// the target mailbox, so it is reliable and ordered per sender. Behaviors
// are registered by role with [Runtime.Handle] before they are spawned.
//
// An actor whose behavior returns an error, panics, or is stopped with
// [Runtime.Kill] is reported to its monitors as a cluster.Down.
//
//	rt, err := loopback.New([]loopback.Node{{Processors: 4}, {Processors: 8, Workers: 2}})
//	if err != nil {
//	    return err
//	}
//	defer rt.Shutdown()
//	rt.Handle(overseer.Role, supervisor.Behavior())
package loopback
