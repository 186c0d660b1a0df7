// SPDX-License-Identifier: EPL-2.0

// Package track assembles rendered cell segments into one mono 16-bit PCM
// track per transect and writes the matching geometry index.
//
// Segments are appended in traversal order by an Assembler, which streams
// them to a raw WAV file and records one Geometry per cell with contiguous
// millisecond offsets. A Normalizer then rescales the raw file in two
// block-wise passes so the peak lands on a fixed ceiling. Neither step
// holds more than one block of samples in memory.
package track
