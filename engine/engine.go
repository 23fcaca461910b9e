// Package engine produces price and Greek surfaces around a base record,
// writes them as CSV and as a compressed archive, and forwards them to sinks.
package engine

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/souvik131/optionlab/config"
	"github.com/souvik131/optionlab/option"
)

var dateFormatConcise = "20060102"

// SurfaceMeasures are generated on every run, in this order.
var SurfaceMeasures = []string{"price", "delta", "gamma"}

type Engine struct {
	cfg   *config.Config
	sinks []Sink
	now   func() time.Time
}

func New(cfg *config.Config, sinks ...Sink) *Engine {
	return &Engine{cfg: cfg, sinks: sinks, now: time.Now}
}

// Specs returns the surfaces of one run: every measure over the asset price
// and exercise time bands around the configured base.
func (e *Engine) Specs() []SurfaceSpec {
	base := e.cfg.Base
	x := BandAxis(option.AssetPriceField, base.AssetPrice, e.cfg.SurfacePoints)
	y := BandAxis(option.ExerciseTimeField, base.ExerciseTime, e.cfg.SurfacePoints)

	specs := make([]SurfaceSpec, len(SurfaceMeasures))
	for i, m := range SurfaceMeasures {
		specs[i] = SurfaceSpec{Base: base, X: x, Y: y, Measure: m}
	}
	return specs
}

// ArchivePath is the archive file a run on day t appends to.
func (e *Engine) ArchivePath(t time.Time) string {
	return filepath.Join(e.cfg.OutputDir, "surfaces_"+t.Format(dateFormatConcise)+".bin.zst")
}

// Run generates every surface, writes <measure>_surface.csv files and the
// archive into the output directory, then hands the files to each sink.
// A sink failure is logged and does not fail the run.
func (e *Engine) Run(ctx context.Context) ([]Artifact, error) {
	start := e.now()
	if err := os.MkdirAll(e.cfg.OutputDir, 0755); err != nil {
		return nil, err
	}

	var (
		artifacts []Artifact
		surfaces  []*Surface
	)
	for _, spec := range e.Specs() {
		s, err := Generate(ctx, spec, e.cfg.Workers)
		if err != nil {
			return nil, err
		}
		path := filepath.Join(e.cfg.OutputDir, spec.Measure+"_surface.csv")
		if err := s.SaveCSV(path); err != nil {
			return nil, err
		}
		artifacts = append(artifacts, Artifact{Path: path, Surface: s})
		surfaces = append(surfaces, s)
	}

	archive := e.ArchivePath(start)
	if err := AppendArchive(archive, surfaces...); err != nil {
		return nil, err
	}
	log.Printf("Surfaces written to %s in %v (%d x %d cells each)",
		e.cfg.OutputDir, e.now().Sub(start), surfaces[0].Values.Rows(), surfaces[0].Values.Cols())

	for _, sink := range e.sinks {
		if err := sink.Publish(ctx, artifacts); err != nil {
			log.Printf("%T: %v", sink, err)
		}
	}
	return artifacts, nil
}

// Serve runs once and then, when a schedule is configured, keeps re-running
// on it until ctx is done.
func (e *Engine) Serve(ctx context.Context) error {
	if _, err := e.Run(ctx); err != nil {
		return fmt.Errorf("initial surface run: %w", err)
	}
	if e.cfg.Schedule == "" {
		return nil
	}

	s, err := NewScheduler(ctx, e.cfg.Schedule, func(ctx context.Context) error {
		_, err := e.Run(ctx)
		return err
	})
	if err != nil {
		return err
	}
	s.Run(ctx)
	return nil
}

// SinksFromConfig builds the sinks enabled in cfg. Sinks that cannot be
// created are logged and left out.
func SinksFromConfig(cfg *config.Config) []Sink {
	var sinks []Sink
	if cfg.S3Bucket != "" {
		s, err := NewS3Sink(cfg.S3Bucket, cfg.S3Region, cfg.S3Prefix)
		if err != nil {
			log.Printf("%v", err)
		} else {
			sinks = append(sinks, s)
		}
	}
	if cfg.NATSURL != "" {
		s, err := NewNATSSink(cfg.NATSURL, cfg.NATSSubject)
		if err != nil {
			log.Printf("%v", err)
		} else {
			sinks = append(sinks, s)
		}
	}
	if cfg.TelegramToken != "" {
		s, err := NewTelegramSink(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			log.Printf("%v", err)
		} else {
			sinks = append(sinks, s)
		}
	}
	return sinks
}
