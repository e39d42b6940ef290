// Package garden holds the shared grid that gardeners tend.
//
// # Cells
//
// Every square of the garden is in one of five states:
//
//	Untended     not yet tended, may be claimed
//	BeingTended  claimed by exactly one gardener
//	Tended       done
//	Rock, Pond   obstacles, fixed before the simulation starts
//
// The only legal path for a tendable cell is Untended -> BeingTended -> Tended.
//
// # Locking
//
// A Grid owns a single mutex. Every read and write of cell state goes through
// it, including the waits gardeners perform before stepping onto a square:
//
//	if grid.TryClaim(pos) {
//	    // tend for a while, the lock is not held
//	    grid.FinishTending(pos)
//	}
//
// WaitUntilFree blocks on a notification channel that FinishTending closes,
// so waiting gardeners do not spin.
//
// # Obstacles
//
// PlaceObstacle and Apply are setup operations and must complete before any
// gardener starts. RandomLayout builds a layout from a caller supplied
// *rand.Rand so runs can be reproduced from a seed.
package garden
