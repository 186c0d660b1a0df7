// SPDX-License-Identifier: EPL-2.0

// Package audio holds the streaming PCM primitives used to read tracks and
// reference clips back for analysis.
//
// A Source yields interleaved float32 samples in [-1, 1] and ends with
// io.EOF. Resampler and MonoMixer wrap a Source and are themselves Sources,
// so they chain:
//
//	src, err := reg.Open("track.wav")
//	if err != nil {
//	    return err
//	}
//	mono := audio.NewMonoMixer(audio.NewResampler(src, 16000))
//
// Registry maps file extensions to Decoders; the formats package fills one
// with every supported container.
package audio
