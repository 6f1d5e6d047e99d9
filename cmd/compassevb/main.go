package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"

	"github.com/urfave/cli/v2"

	"compassevb/evbrun"
	"compassevb/weights"
)

func runRange(cCtx *cli.Context) error {
	runMin := cCtx.Int("run-min")
	runMax := cCtx.Int("run-max")
	if runMax == 0 {
		runMax = runMin
	}

	params := evbrun.ProcessParams{
		ArchiveDir:  cCtx.String("archive-dir"),
		UnpackDir:   cCtx.String("unpack-dir"),
		OutputDir:   cCtx.String("outdir"),
		ChannelMap:  cCtx.String("channel-map"),
		ShiftMap:    cCtx.String("shift-map"),
		ScalerList:  cCtx.String("scaler-list"),
		Window:      cCtx.Float64("window"),
		MaxFragment: cCtx.Int64("max-fragment-bytes"),
		RunMin:      runMin,
		RunMax:      runMax,
	}

	wp, err := weightsProvider(cCtx.String("weights"))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	progress := evbrun.NewProgress()
	return evbrun.ProcessRuns(ctx, params, wp, progress)
}

// weightsProvider turns the --weights flag into a weights.Provider. An
// empty value disables weighting; "w1,w2" fixes every run to that pair.
func weightsProvider(spec string) (weights.Provider, error) {
	if spec == "" {
		return weights.None{}, nil
	}

	var w1, w2 string
	for i, r := range spec {
		if r == ',' {
			w1, w2 = spec[:i], spec[i+1:]
			break
		}
	}
	if w1 == "" || w2 == "" {
		return nil, cli.Exit("weights must be given as \"w1,w2\"", 1)
	}

	f1, err := strconv.ParseFloat(w1, 64)
	if err != nil {
		return nil, err
	}
	f2, err := strconv.ParseFloat(w2, 64)
	if err != nil {
		return nil, err
	}
	return weights.NewFixed(f1, f2), nil
}

func runFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "archive-dir", Required: true, Usage: "Directory holding run_{N}.tar.gz archives."},
		&cli.StringFlag{Name: "unpack-dir", Required: true, Usage: "Scratch directory used to stage an archive's contents."},
		&cli.StringFlag{Name: "outdir", Required: true, Usage: "Directory to write run_{N}[_{K}].parquet fragments and scaler summaries."},
		&cli.StringFlag{Name: "channel-map", Required: true, Usage: "Pathname to the board/channel-to-role map."},
		&cli.StringFlag{Name: "shift-map", Required: true, Usage: "Pathname to the per-channel timestamp shift map."},
		&cli.StringFlag{Name: "scaler-list", Usage: "Pathname listing scaler files to exclude from event building."},
		&cli.Float64Flag{Name: "window", Value: 3000, Usage: "Coincidence window width, in the same units as event timestamps."},
		&cli.Int64Flag{Name: "max-fragment-bytes", Usage: "Flush a fragment once its estimated size exceeds this many bytes. 0 uses the built-in default."},
		&cli.StringFlag{Name: "weights", Usage: "Fixed W1,W2 kinematics weights applied to every run, e.g. \"0.5,0.5\". Omit to leave Xavg unset."},
	}
}

func main() {
	app := &cli.App{
		Name:  "compassevb",
		Usage: "build coincidence events from CoMPASS run archives",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "process a single run number",
				Flags: append(runFlags(), &cli.IntFlag{Name: "run-min", Required: true, Usage: "Run number to process."}),
				Action: func(cCtx *cli.Context) error {
					return runRange(cCtx)
				},
			},
			{
				Name:  "run-range",
				Usage: "process an inclusive range of run numbers, one at a time",
				Flags: append(runFlags(),
					&cli.IntFlag{Name: "run-min", Required: true, Usage: "First run number to process."},
					&cli.IntFlag{Name: "run-max", Required: true, Usage: "Last run number to process, inclusive."},
				),
				Action: func(cCtx *cli.Context) error {
					return runRange(cCtx)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
