// Package game implements the Reversi rule engine.
//
// The engine is pure: it performs no I/O and owns its GameState outright.
// Callers mutate the board only through ApplyMove/TryMove (validated
// placement plus flips) or through whole-state replacement with LoadState.
//
// TURN ADVANCEMENT:
//
// After player P moves against opponent O:
//  1. O has a legal move: O becomes the active player.
//  2. Otherwise P has a legal move: P moves again (forced extra turn).
//  3. Otherwise neither can move: the game ends and the winner is tallied.
//  4. A board with no empty cells always ends the game, overriding 1-2.
//
// WIRE FORMAT:
//
// GameState encodes to JSON as
//
//	{"board":[[0,0,...],...],"currentPlayer":1,"winner":null,"gameOver":false}
//
// with cells 0=empty, 1=black, 2=white and winner 1|2|"draw"|null.
package game
