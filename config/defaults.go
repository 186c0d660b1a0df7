// SPDX-License-Identifier: EPL-2.0

package config

import "math"

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Audio: Audio{
			SampleRate:     11025,
			CellDurationS:  6.0,
			BlockSize:      4096,
			Ceiling:        0.95,
			SilenceEpsilon: 1e-6,
			Seed:           42,
		},
		Grid: Grid{CellSizeM: 50},
		Mapping: Mapping{
			PitchLowMIDI:   Range{30, 45},
			PitchHighMIDI:  Range{70, 85},
			FilterLowHz:    Range{30, 2000},
			FilterHighHz:   Range{500, 15000},
			HydroLowHz:     Range{30, 100},
			HydroHighHz:    Range{100, 300},
			MajorScale:     []int{60, 62, 64, 65, 67, 69, 71, 72},
			MinorScale:     []int{60, 63, 65, 67, 70, 72},
			NDVIClip:       Range{-0.2, 0.8},
			ScaleThreshold: 0.5,
			ElevationM:     Range{0, 500},
			SlopeDeg:       Range{0, 45},
			PulseBPM:       Range{60, 180},
			PulseAmp:       Range{0, 0.4},
			Roughness:      Range{0, 10},
			ElevStdM:       Range{0, 20},
			LFODepth:       Range{0, 0.2},
			NoiseAmp:       Range{0, 0.4},
			EVIDensity:     Range{0, 0.8},
			ChordNDVI:      Range{0, 0.8},
			ChordAmp:       Range{0.3, 0.6},
			FlowMax:        1e5,
			HydroDEMM:      Range{0, 200},
			HydroAmp:       0.6,
			Overlay: OverlayVoicing{
				ArchGlissMIDI:   Range{48, 108},
				ArchGlissAmp:    0.9,
				ArchNoiseAmp:    0.8,
				ArchNoiseHz:     15000,
				ArchSubHz:       30,
				ArchSubAmp:      0.7,
				PingMIDI:        96,
				PingDurationS:   0.5,
				PingAmp:         1.0,
				JungleGlissMIDI: Range{36, 48},
				JungleGlissAmp:  0.7,
			},
		},
		Mix: Mix{
			Default:               Gains{Topography: -6, Percussion: -12, Texture: -9, Melody: -4, Hydro: -5},
			Water:                 Gains{Topography: -15, Percussion: -15, Texture: -15, Melody: -15, Hydro: 5},
			WaterThreshold:        0.2,
			ArchaeologicalOverlay: -3,
			JungleOverlay:         -6,
		},
		Bands: Bands{
			Blue: 0, Green: 1, Red: 3, NIR: 7, SWIR1: 9, MinBands: 11,
			NDWIGreen: 2, NDWINIR: 6, NDWIMinBands: 8,
		},
		Embedding: Embedding{SampleRate: 16000, FrameS: 0.96, HopS: 0.5},
		Run: Run{
			OutputDir:       "data/sonified_outputs",
			TransectWorkers: 1,
			CellWorkers:     4,
		},
		DefaultSites: true,
	}
}

// LogFlowMax is log1p of the flow ceiling used by the hydro curve.
func (m Mapping) LogFlowMax() float64 {
	return math.Log1p(m.FlowMax)
}
