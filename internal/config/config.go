package config

import (
	"os"
	"strconv"
	"time"
)

const (
	WindowWidth  = 1024
	WindowHeight = 600

	MeterRingSize   = 8192
	MeterWindow     = 2048
	MeterBands      = 64
	SmoothingFactor = 0.6

	// Button dimensions
	ButtonWidth  = 120
	ButtonHeight = 32
	ButtonX      = 20
	ButtonY      = 40
	ButtonGap    = 8

	// Stage
	StageCenterY = 330
	SpriteWidth  = 60
	ShortHeight  = 110
	TallHeight   = 150

	MaxPerRow = 4
)

// Config holds runtime settings, loaded from environment variables.
type Config struct {
	// Audio assets
	SingerSample   string
	LoopMelody     string
	ElevatedMelody string

	SampleRate    int
	Latency       time.Duration
	MelodyVolume  float64
	ElevatedCount int // singers required for the elevated melody; 0 means any

	// Interaction
	NudgeStep int

	// Sharing
	ShareBaseURL string

	// Seed for randomized formations and pitch jitter; 0 picks one at startup.
	Seed uint64
}

// Load reads configuration from environment variables with sane defaults.
func Load() Config {
	return Config{
		SingerSample:   envStr("CHOIR_SINGER_SAMPLE", "assets/architect mel single note.wav"),
		LoopMelody:     envStr("CHOIR_LOOP_MELODY", "assets/architect mel front row only loop.wav"),
		ElevatedMelody: envStr("CHOIR_ELEVATED_MELODY", "assets/architect mel sequence all join in 2d.wav"),

		SampleRate:    envInt("CHOIR_SAMPLE_RATE", 44100),
		Latency:       time.Duration(envInt("CHOIR_LATENCY_MS", 50)) * time.Millisecond,
		MelodyVolume:  envFloat("CHOIR_MELODY_VOLUME", 0.7),
		ElevatedCount: envInt("CHOIR_ELEVATED_COUNT", 7),

		NudgeStep: envInt("CHOIR_NUDGE_STEP", 10),

		ShareBaseURL: envStr("CHOIR_SHARE_URL", "https://cogchoir.local/"),

		Seed: uint64(envInt("CHOIR_SEED", 0)),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
