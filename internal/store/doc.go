// Package store keeps the history of garden runs in SQLite.
//
// # Data Models
//
//   - Run: one simulation, with grid size, obstacle seed, status and timing
//   - GardenerResult: a gardener's route, speed and final counts
//   - CellResult: the state of one cell when the run ended
//
// A run is written in a single transaction so a stored run is always
// complete. SQLiteStore is backed by modernc.org/sqlite (no cgo), MemoryStore
// keeps runs in memory for tests.
//
// # Usage
//
//	s, err := store.NewSQLiteStore(path)
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	err = s.SaveRun(ctx, run)
//	runs, err := s.ListRuns(ctx, 10)
package store
