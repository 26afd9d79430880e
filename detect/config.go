package detect

// Config tunes acoustic detection. Thresholds are expressed as clip-
// relative percentiles and ratios, never absolute levels, so they hold
// across recording loudness and microphone conditions.
type Config struct {
	FrameLengthMs int `mapstructure:"frame_length_ms"` // analysis window
	HopLengthMs   int `mapstructure:"hop_length_ms"`   // frame hop

	// QuietPercentile and LoudPercentile bracket the RMS distribution of
	// the clip; the open/closed cut sits OpenRatio of the way between them.
	QuietPercentile float64 `mapstructure:"quiet_percentile"`
	LoudPercentile  float64 `mapstructure:"loud_percentile"`
	OpenRatio       float64 `mapstructure:"open_ratio"`

	// SupportRatio scales the clip-relative centroid/voicing requirement
	// for an OPEN frame.
	SupportRatio float64 `mapstructure:"support_ratio"`

	// SilenceFloor is the RMS level below which the whole clip counts as
	// silent regardless of its internal distribution.
	SilenceFloor float64 `mapstructure:"silence_floor"`

	// MinRunMs is the shortest run kept as its own segment; shorter runs
	// are absorbed into a neighbor to stop single-frame viseme flicker.
	MinRunMs int `mapstructure:"min_run_ms"`

	// MaxSnapMs caps how far the text-alignment refiner may move a segment
	// boundary.
	MaxSnapMs int `mapstructure:"max_snap_ms"`

	// RelabelConfidence is the confidence below which the refiner may flip
	// a segment's shape when the transcript expectation disagrees.
	RelabelConfidence float64 `mapstructure:"relabel_confidence"`
}

// DefaultConfig returns detection defaults tuned for synthesized speech.
func DefaultConfig() Config {
	return Config{
		FrameLengthMs:     40,
		HopLengthMs:       20,
		QuietPercentile:   20,
		LoudPercentile:    80,
		OpenRatio:         0.35,
		SupportRatio:      0.5,
		SilenceFloor:      1e-4,
		MinRunMs:          90,
		MaxSnapMs:         60,
		RelabelConfidence: 0.75,
	}
}

// sanitized fills zero values with defaults so a partially populated
// Config behaves.
func (c Config) sanitized() Config {
	def := DefaultConfig()
	if c.FrameLengthMs <= 0 {
		c.FrameLengthMs = def.FrameLengthMs
	}
	if c.HopLengthMs <= 0 {
		c.HopLengthMs = def.HopLengthMs
	}
	if c.QuietPercentile <= 0 || c.QuietPercentile >= 100 {
		c.QuietPercentile = def.QuietPercentile
	}
	if c.LoudPercentile <= 0 || c.LoudPercentile >= 100 {
		c.LoudPercentile = def.LoudPercentile
	}
	if c.LoudPercentile <= c.QuietPercentile {
		c.QuietPercentile = def.QuietPercentile
		c.LoudPercentile = def.LoudPercentile
	}
	if c.OpenRatio <= 0 || c.OpenRatio >= 1 {
		c.OpenRatio = def.OpenRatio
	}
	if c.SupportRatio < 0 || c.SupportRatio >= 1 {
		c.SupportRatio = def.SupportRatio
	}
	if c.SilenceFloor <= 0 {
		c.SilenceFloor = def.SilenceFloor
	}
	if c.MinRunMs <= 0 {
		c.MinRunMs = def.MinRunMs
	}
	if c.MaxSnapMs <= 0 {
		c.MaxSnapMs = def.MaxSnapMs
	}
	if c.RelabelConfidence <= 0 || c.RelabelConfidence > 1 {
		c.RelabelConfidence = def.RelabelConfidence
	}
	return c
}
