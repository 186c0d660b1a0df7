// SPDX-License-Identifier: EPL-2.0

// Package wav reads and writes 16-bit PCM WAV streams on top of
// github.com/go-audio/wav.
//
// Writer streams interleaved int16 samples into a seekable target and
// patches the RIFF sizes on Close. Tracks are assembled block by block, so
// nothing requires the full signal in memory:
//
//	w, err := wav.Create("track.wav", 44100, 1)
//	if err != nil {
//	    return err
//	}
//	defer w.Close()
//	err = w.WriteInt16(block)
//
// Reader is the block-wise counterpart and returns io.EOF once the data
// chunk is exhausted. Decoder wraps a Reader as an audio.Source for the
// decoder registry.
package wav
