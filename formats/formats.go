// SPDX-License-Identifier: EPL-2.0

// Package formats wires every supported container into an audio.Registry.
package formats

import (
	"github.com/ik5/geosonify/audio"
	"github.com/ik5/geosonify/formats/aiff"
	"github.com/ik5/geosonify/formats/mp3"
	"github.com/ik5/geosonify/formats/vorbis"
	"github.com/ik5/geosonify/formats/wav"
)

// NewRegistry returns a registry keyed by file extension.
func NewRegistry() *audio.Registry {
	reg := audio.NewRegistry()
	reg.Register("wav", wav.Decoder{})
	reg.Register("aif", aiff.Decoder{})
	reg.Register("aiff", aiff.Decoder{})
	reg.Register("mp3", mp3.Decoder{})
	reg.Register("ogg", vorbis.Decoder{})
	reg.Register("oga", vorbis.Decoder{})
	return reg
}
