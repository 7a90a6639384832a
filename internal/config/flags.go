package config

import "flag"

// Flags binds the CLI's flag surface to a *flag.FlagSet so cmd/zdray
// can parse os.Args once and hand back a populated BuildConfig plus the
// positional input WAD path.
type Flags struct {
	fs *flag.FlagSet

	MapName  *string
	Output   *string
	BuildGL  *bool
	GLIfNone *bool
	NoNodes  *bool

	BlockmapEmpty *bool
	RejectEmpty   *bool
	RejectZero    *bool
	RejectFull    *bool
	RejectNoTouch *bool

	SplitSearchSize *int
	SplitCost       *int
	AxialCost       *int

	NoPolyobj *bool
	NoPrune   *bool

	CompressGL      *bool
	CompressClassic *bool
	ExtendedFormat  *bool
	GLOnly          *bool
	V5              *bool
	UDMFComments    *bool

	NumThreads   *int
	LightSamples *int
	AtlasSize    *int
	UseGPU       *bool

	ConfigPath *string
	Debug      *bool
}

// NewFlags registers every supported CLI flag onto a fresh FlagSet.
func NewFlags() *Flags {
	fs := flag.NewFlagSet("zdray", flag.ExitOnError)
	return &Flags{
		fs:       fs,
		MapName:  fs.String("m", "", "restrict to one map"),
		Output:   fs.String("o", "", "output WAD path"),
		BuildGL:  fs.Bool("g", false, "build GL nodes"),
		GLIfNone: fs.Bool("G", false, "build GL nodes only when input has none"),
		NoNodes:  fs.Bool("N", false, "disable node build"),

		BlockmapEmpty: fs.Bool("b", false, "blockmap empty"),
		RejectEmpty:   fs.Bool("r", false, "reject empty"),
		RejectZero:    fs.Bool("R", false, "reject zero"),
		RejectFull:    fs.Bool("e", false, "reject full"),
		RejectNoTouch: fs.Bool("E", false, "reject no-touch"),

		SplitSearchSize: fs.Int("p", 64, "splitter-search size"),
		SplitCost:       fs.Int("s", 8, "split cost"),
		AxialCost:       fs.Int("d", 16, "axial cost"),

		NoPolyobj: fs.Bool("P", false, "disable polyobj spot collection"),
		NoPrune:   fs.Bool("q", false, "no pruning"),

		CompressGL:      fs.Bool("z", false, "compress GL nodes"),
		CompressClassic: fs.Bool("Z", false, "compress classic nodes"),
		ExtendedFormat:  fs.Bool("X", false, "emit extended nodes"),
		GLOnly:          fs.Bool("x", false, "emit GL-only nodes"),
		V5:              fs.Bool("5", false, "V5 GL nodes"),
		UDMFComments:    fs.Bool("c", false, "write UDMF comments"),

		NumThreads:   fs.Int("j", 0, "thread count"),
		LightSamples: fs.Int("Q", 256, "lightmap samples"),
		AtlasSize:    fs.Int("S", 2048, "lightmap atlas size"),
		UseGPU:       fs.Bool("gpu", false, "use the GPU path tracer"),

		ConfigPath: fs.String("config", "", "path to config file"),
		Debug:      fs.Bool("debug", false, "enable debug logging"),
	}
}

// Parse parses args (typically os.Args[1:]) and returns the remaining
// positional arguments (the input WAD path).
func (f *Flags) Parse(args []string) ([]string, error) {
	if err := f.fs.Parse(args); err != nil {
		return nil, err
	}
	return f.fs.Args(), nil
}

// Apply overlays flag values (highest precedence) onto cfg.
func (f *Flags) Apply(cfg *BuildConfig) {
	cfg.Nodes.Disable = *f.NoNodes
	cfg.Nodes.BuildGL = *f.BuildGL
	cfg.Nodes.BuildGLIfMissing = *f.GLIfNone
	cfg.Nodes.SplitCost = *f.SplitCost
	cfg.Nodes.AAPreference = *f.AxialCost
	cfg.Nodes.MaxSegs = *f.SplitSearchSize
	cfg.Nodes.CompressGL = *f.CompressGL
	cfg.Nodes.CompressClassic = *f.CompressClassic
	cfg.Nodes.ExtendedFormat = *f.ExtendedFormat
	cfg.Nodes.GLOnly = *f.GLOnly
	cfg.Nodes.V5 = *f.V5
	cfg.Nodes.WriteUDMFComments = *f.UDMFComments

	cfg.Blockmap.EmptyOnly = *f.BlockmapEmpty

	cfg.Reject.Empty = *f.RejectEmpty
	cfg.Reject.Zero = *f.RejectZero
	cfg.Reject.Full = *f.RejectFull
	cfg.Reject.NoTouch = *f.RejectNoTouch

	cfg.Prune.Disable = *f.NoPrune
	cfg.Prune.DisablePolyobj = *f.NoPolyobj

	if *f.NumThreads > 0 {
		cfg.Lightmap.NumThreads = *f.NumThreads
	}
	if *f.LightSamples > 0 {
		cfg.Lightmap.SampleCount = *f.LightSamples
	}
	if *f.AtlasSize > 0 {
		cfg.Lightmap.AtlasSize = *f.AtlasSize
	}
	cfg.Lightmap.UseGPU = *f.UseGPU

	if *f.Debug {
		cfg.Logging.Level = "debug"
	}
}
