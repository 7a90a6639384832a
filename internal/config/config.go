// Package config handles pipeline configuration: node-builder tuning,
// blockmap/reject policy, GL node output, and lightmap bake settings. It
// follows defaults-then-file-then-flags precedence, with the config file
// and flags both optional, the way the reference tool's own config
// package layered game settings.
package config

// BuildConfig holds every knob the CLI exposes.
type BuildConfig struct {
	Nodes    NodesConfig    `yaml:"nodes"`
	Blockmap BlockmapConfig `yaml:"blockmap"`
	Reject   RejectConfig   `yaml:"reject"`
	Prune    PruneConfig    `yaml:"prune"`
	Lightmap LightmapConfig `yaml:"lightmap"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// NodesConfig controls the BSP node builder and its output format.
type NodesConfig struct {
	Disable           bool `yaml:"disable"`             // -N
	BuildGL           bool `yaml:"build_gl"`            // -g
	BuildGLIfMissing  bool `yaml:"build_gl_if_missing"` // -G
	SplitCost         int  `yaml:"split_cost"`          // -s, default 8
	AAPreference      int  `yaml:"aa_preference"`       // -d, default 16
	MaxSegs           int  `yaml:"max_segs"`            // -p, default 64
	CompressGL        bool `yaml:"compress_gl"`         // -z
	CompressClassic   bool `yaml:"compress_classic"`    // -Z
	ExtendedFormat    bool `yaml:"extended_format"`     // -X
	GLOnly            bool `yaml:"gl_only"`             // -x
	V5                bool `yaml:"v5"`                  // -5
	WriteUDMFComments bool `yaml:"write_udmf_comments"` // -c
}

// BlockmapConfig controls the uniform-grid blockmap builder.
type BlockmapConfig struct {
	EmptyOnly bool `yaml:"empty_only"` // -b
	Packed    bool `yaml:"packed"`     // CreatePackedBlockmap, optional
}

// RejectConfig controls how the REJECT lump is regenerated or passed through.
type RejectConfig struct {
	Empty   bool `yaml:"empty"`    // -r
	Zero    bool `yaml:"zero"`     // -R
	Full    bool `yaml:"full"`     // -e
	NoTouch bool `yaml:"no_touch"` // -E
}

// PruneConfig controls level-loader pruning.
type PruneConfig struct {
	Disable        bool `yaml:"disable"`         // -q
	DisablePolyobj bool `yaml:"disable_polyobj"` // -P
}

// LightmapConfig controls the lightmap builder and path tracers.
type LightmapConfig struct {
	NumThreads         int  `yaml:"num_threads"`          // -j, 0 = hardware concurrency
	SampleCount        int  `yaml:"sample_count"`         // -Q, default 256 (coverage pass)
	BounceCount        int  `yaml:"bounce_count"`         // default 2048 (bounce pass)
	AtlasSize          int  `yaml:"atlas_size"`           // -S, default 2048
	LightBounces       int  `yaml:"light_bounces"`        // default 0
	UseGPU             bool `yaml:"use_gpu"`              // select tracer/gpu over tracer/cpu
	MaxUpdatesPerBatch int  `yaml:"max_updates_per_batch"` // default 128
}

// LoggingConfig mirrors the reference tool's logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a BuildConfig populated with the reference tool's
// documented defaults (SplitCost=8, AAPreference=16, MaxSegs=64,
// coverageSampleCount=256, bounceSampleCount=2048).
func Default() *BuildConfig {
	return &BuildConfig{
		Nodes: NodesConfig{
			SplitCost:    8,
			AAPreference: 16,
			MaxSegs:      64,
		},
		Lightmap: LightmapConfig{
			SampleCount:        256,
			BounceCount:        2048,
			AtlasSize:          2048,
			MaxUpdatesPerBatch: 128,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
