// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MPEG-1/2 Layer III streams into audio.Source using
// github.com/hajimehoshi/go-mp3. Output is always stereo; mono files are
// duplicated onto both channels by the decoder.
package mp3
