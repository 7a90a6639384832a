// zdray preprocesses Doom-engine map lumps: it builds BSP nodes, a
// blockmap, and REJECT table, then lightmaps the level and writes
// everything back into an output WAD.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/zdray-go/zdray/internal/config"
	"github.com/zdray-go/zdray/internal/level"
	"github.com/zdray-go/zdray/internal/logger"
	"github.com/zdray-go/zdray/internal/pipeline"
	"github.com/zdray-go/zdray/internal/wad"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := config.NewFlags()
	positional, err := flags.Parse(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "zdray: %v\n", err)
		return 20
	}
	if len(positional) < 1 {
		fmt.Fprintln(os.Stderr, "usage: zdray [options] input.wad")
		return 20
	}
	inputPath := positional[0]

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "zdray: %v\n", err)
		return 20
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "zdray: initializing logger: %v\n", err)
		return 20
	}
	defer logger.Sync()
	log := logger.Log

	archive, err := wad.Open(inputPath)
	if err != nil {
		log.Error("opening input wad", zap.Error(err))
		return 20
	}
	defer archive.Close()

	mapNames := []string{*flags.MapName}
	if *flags.MapName == "" {
		mapNames = level.DetectMaps(archive)
	}
	if len(mapNames) == 0 {
		log.Error("no maps found in input wad", zap.String("path", inputPath))
		return 20
	}

	outputPath := *flags.Output
	if outputPath == "" {
		outputPath = defaultOutputPath(inputPath)
	}

	builder := wad.NewBuilder()
	builder.IsIWAD = archive.IsIWAD()

	ctx := context.Background()
	for _, mapName := range mapNames {
		result, err := pipeline.Run(ctx, archive, mapName, *cfg, builder, log)
		if err != nil {
			logPipelineFailure(log, mapName, err)
			return 20
		}
		log.Info("map processed", zap.String("map", mapName), zap.Int("surfaces", len(result.Mesh.Surfaces)))
	}

	if err := builder.Save(outputPath); err != nil {
		log.Error("writing output wad", zap.Error(err))
		return 20
	}

	log.Info("wrote output wad", zap.String("path", outputPath))
	return 0
}

// logPipelineFailure picks a message tailored to the failing stage's
// Kind; the exit code is uniformly 20 regardless of which branch logs.
func logPipelineFailure(log *zap.Logger, mapName string, err error) {
	var pipelineErr *pipeline.Error
	if pe, ok := err.(*pipeline.Error); ok {
		pipelineErr = pe
	}
	if pipelineErr == nil {
		log.Error("pipeline failed", zap.String("map", mapName), zap.Error(err))
		return
	}

	switch pipelineErr.Kind {
	case pipeline.KindIOFailure:
		log.Error("i/o failure", zap.String("map", mapName), zap.Error(pipelineErr.Err))
	case pipeline.KindMalformedMap:
		log.Error("malformed map", zap.String("map", mapName), zap.Error(pipelineErr.Err))
	case pipeline.KindNodeBuildFailed:
		log.Error("node build failed", zap.String("map", mapName), zap.Error(pipelineErr.Err))
	case pipeline.KindBlockmapTooLarge:
		log.Error("blockmap too large", zap.String("map", mapName), zap.Error(pipelineErr.Err))
	case pipeline.KindBakeOverflow:
		log.Error("lightmap bake overflow", zap.String("map", mapName), zap.Error(pipelineErr.Err))
	case pipeline.KindShaderCompileFailed:
		log.Error("shader compile failed", zap.String("map", mapName), zap.Error(pipelineErr.Err))
	case pipeline.KindOutOfMemory:
		log.Error("out of memory", zap.String("map", mapName), zap.Error(pipelineErr.Err))
	default:
		log.Error("pipeline failed", zap.String("map", mapName), zap.String("kind", string(pipelineErr.Kind)), zap.Error(pipelineErr.Err))
	}
}

func defaultOutputPath(inputPath string) string {
	ext := filepath.Ext(inputPath)
	return strings.TrimSuffix(inputPath, ext) + "_zdray.wad"
}
