// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes integer PCM AIFF files into audio.Source using
// github.com/go-audio/aiff. Samples are scaled to [-1, 1) by the file's
// bit depth. Inputs that cannot seek are buffered in memory.
package aiff
