// Package scheduler runs two gardeners over one grid until both are done.
//
// # Run
//
// Each gardener gets its own goroutine. A third, read-only goroutine takes a
// Frame every interval (the grid snapshot plus both gardener statuses) and
// publishes it to an optional Broadcaster:
//
//	b := scheduler.NewBroadcaster(logger)
//	frames, _ := b.Subscribe(ctx)
//	s, _ := scheduler.New(grid, first, second, scheduler.WithBroadcaster(b))
//	err := s.Run(ctx)
//
// Run returns after both gardeners have finished and every goroutine has been
// joined. The only error it returns is the context's.
//
// # Broadcaster
//
// Frames fan out to any number of subscribers. Publish never blocks; a
// subscriber that falls behind misses frames. The final frame should be
// read with Scheduler.Frame after Run returns.
package scheduler
