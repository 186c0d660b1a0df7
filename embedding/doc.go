// SPDX-License-Identifier: EPL-2.0

// Package embedding implements the contract between a sonified track and
// the acoustic analysis that runs on it.
//
// An external model turns the track into one fixed-dimension vector per
// analysis window. Windows are FrameS long and start every HopS, so a cell
// of d seconds owns floor((d-FrameS)/HopS)+1 of them, consumed in file
// order. Assign, Aggregate and ScoreCells map window results back to the
// geometry index; FlaggedCells turns scored cells into an overlay trigger.
package embedding
