// Package evbrun drives the per-run pipeline end to end: unpack a run's
// archive, partition its staged files into scalers and data sources,
// merge-build-format-accumulate every hit, and flush the result.
package evbrun

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"sync"

	"github.com/alitto/pond"

	"compassevb/archive"
	"compassevb/channelmap"
	"compassevb/decode"
	"compassevb/fragment"
	"compassevb/physics"
	"compassevb/pipeline"
	"compassevb/scaler"
	"compassevb/shiftmap"
	"compassevb/weights"
)

// ProcessParams configures a multi-run job.
type ProcessParams struct {
	ArchiveDir    string
	UnpackDir     string
	OutputDir     string
	ChannelMap    string
	ShiftMap      string
	ScalerList    string // optional; empty disables scaler partitioning
	Window        float64
	MaxFragment   int64
	RunMin, RunMax int
}

// ProcessRuns loads ChannelMap and ShiftMap once, then processes
// run_min..run_max with a single-worker pond pool -- a pool capped at
// exactly one worker so "one worker thread per run, runs processed
// sequentially" is enforced by the scheduler itself, not merely by
// convention. A run whose archive is missing is logged and skipped
// without being reported as an error; any
// other run-level error is logged and the driver advances to the next
// run number.
func ProcessRuns(ctx context.Context, params ProcessParams, wp weights.Provider, progress *Progress) error {
	chmap, err := channelmap.New(params.ChannelMap)
	if err != nil {
		return fmt.Errorf("evbrun: load channel map: %w", err)
	}
	shmap, err := shiftmap.New(params.ShiftMap)
	if err != nil {
		return fmt.Errorf("evbrun: load shift map: %w", err)
	}

	pool := pond.New(1, params.RunMax-params.RunMin+1, pond.MinWorkers(1), pond.Context(ctx))
	defer pool.StopAndWait()

	var mu sync.Mutex
	var runErrors []error

	for run := params.RunMin; run <= params.RunMax; run++ {
		run := run
		pool.Submit(func() {
			if err := processRun(ctx, params, run, chmap, shmap, wp, progress); err != nil {
				if errors.Is(err, archive.ErrMissingArchive) {
					log.Printf("evbrun: run %d: no archive, skipping", run)
					return
				}
				log.Printf("evbrun: run %d failed: %v", run, err)
				mu.Lock()
				runErrors = append(runErrors, fmt.Errorf("run %d: %w", run, err))
				mu.Unlock()
			}
		})
	}

	pool.StopAndWait()

	if len(runErrors) > 0 {
		return errors.Join(runErrors...)
	}
	return nil
}

func processRun(ctx context.Context, params ProcessParams, run int, chmap *channelmap.Map, shmap *shiftmap.Map, wp weights.Provider, progress *Progress) error {
	if err := archive.Clean(params.UnpackDir); err != nil {
		return err
	}

	archivePath := archive.ArchivePath(params.ArchiveDir, run)
	if err := archive.Unpack(archivePath, params.UnpackDir); err != nil {
		return err
	}

	var scalers *scaler.List
	if params.ScalerList != "" {
		var err error
		scalers, err = scaler.New(params.ScalerList)
		if err != nil {
			return err
		}
	}

	staged, err := archive.StagedFiles(params.UnpackDir)
	if err != nil {
		return err
	}

	var sources []*decode.Source
	defer func() {
		for _, s := range sources {
			s.Close()
		}
	}()

	for _, path := range staged {
		if scalers != nil && scalers.ReadScaler(path) {
			continue
		}
		src, err := decode.Open(path, shmap.Lookup(), decode.NewDefaultRng(int64(run)))
		if err != nil {
			return fmt.Errorf("evbrun: open %s: %w", path, err)
		}
		sources = append(sources, src)
	}

	totalHits := uint64(0)
	for _, s := range sources {
		totalHits += s.TotalHits()
	}

	w, haveWeight, err := wp.Weights(run)
	if err != nil {
		return fmt.Errorf("evbrun: weights for run %d: %w", run, err)
	}

	formatter := physics.NewEventFormatter(w.W1, w.W2, haveWeight)
	builder := pipeline.NewEventBuilder(params.Window)
	merger := pipeline.NewMergerFromSources(sources)

	target, err := fragment.NewFileTarget(params.OutputDir)
	if err != nil {
		return err
	}
	writer := fragment.NewWriter(target)
	acc := fragment.NewAccumulator()

	maxBytes := params.MaxFragment
	if maxBytes == 0 {
		maxBytes = fragment.MaxAccumulatorBytes
	}

	nextFragment := 0
	fragmented := false
	hitsConsumed := uint64(0)
	nextDecile := uint64(1)

	for {
		hit, ok, err := merger.Next()
		if err != nil {
			return fmt.Errorf("evbrun: decode run %d: %w", run, err)
		}
		if !ok {
			break
		}
		hitsConsumed++

		builder.Push(hit)
		for builder.Ready() {
			event := builder.Take()
			row := acc.Reserve()
			for _, h := range event {
				data := chmap.Get(h.UUID)
				formatter.Visit(row, data.Role, h, data.LocalChannel, data.LocalDetID)
			}
			formatter.Close(row)

			if acc.ShouldFlush(maxBytes) {
				if err := acc.Flush(writer, run, nextFragment, true); err != nil {
					return err
				}
				fragmented = true
				nextFragment++
			}
		}

		if totalHits > 0 {
			decile := hitsConsumed * 10 / totalHits
			if decile >= nextDecile {
				if err := progress.Set(ctx, float64(hitsConsumed)/float64(totalHits)); err != nil {
					return err
				}
				nextDecile = decile + 1
			}
		}
	}

	if err := acc.Flush(writer, run, nextFragment, fragmented); err != nil {
		return err
	}

	if scalers != nil {
		summaryPath := filepath.Join(params.OutputDir, fmt.Sprintf("run_%d_scalers.txt", run))
		if err := scalers.WriteSummary(summaryPath); err != nil {
			return err
		}
	}

	for _, s := range sources {
		s.Close()
	}
	sources = nil

	return archive.Clean(params.UnpackDir)
}
