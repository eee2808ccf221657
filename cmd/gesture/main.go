package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"runtime"

	"gioui.org/app"

	"github.com/esimov/gesture"
	"github.com/esimov/gesture/preview"
	"github.com/esimov/gesture/utils"
)

const HelpBanner = `
┌─┐┌─┐┌─┐┌┬┐┬ ┬┬─┐┌─┐
│ ┬├┤ └─┐ │ │ │├┬┘├┤
└─┘└─┘└─┘ ┴ └─┘┴└─└─┘

Single finger touch gesture recognizer.
    Version: %s

`

// pipeName is the file name that indicates stdin/stdout is being used.
const pipeName = "-"

// Version indicates the current build version.
var Version string

var (
	// Flags
	source      = flag.String("in", pipeName, "Source trace file, directory or URL")
	destination = flag.String("out", pipeName, "Destination report file or directory")
	workers     = flag.Int("conc", runtime.NumCPU(), "Number of traces to replay concurrently")
	showPreview = flag.Bool("preview", false, "Open a window classifying live pointer input")
	debug       = flag.Bool("debug", false, "Log the classifier decisions")
	doubleTap   = flag.Duration("dbtap", gesture.DoubleTapTimeout, "Double tap timeout")
	longTap     = flag.Duration("longtap", gesture.LongTapTimeout, "Long tap timeout")
	tapTimeout  = flag.Duration("tap", gesture.TapTimeout, "Tap timeout")
	threshold   = flag.Float64("threshold", gesture.MoveThreshold, "Move threshold in pixels")
	resetCancel = flag.Bool("reset-on-cancel", false, "Reset the pending gesture on a cancelled touch")
)

func main() {
	log.SetFlags(0)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, HelpBanner, Version)
		flag.PrintDefaults()
	}
	flag.Parse()

	opts := []gesture.Option{
		gesture.WithConfig(gesture.Config{
			DoubleTapTimeout: *doubleTap,
			LongTapTimeout:   *longTap,
			TapTimeout:       *tapTimeout,
			MoveThreshold:    float32(*threshold),
			ResetOnCancel:    *resetCancel,
		}),
	}
	if *debug {
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		opts = append(opts, gesture.WithLogger(logger))
	}

	if *showPreview {
		go func() {
			err := preview.Run(preview.Config{
				Title:   "Gesture preview",
				Width:   480,
				Height:  640,
				Options: opts,
			})
			if err != nil {
				log.Fatalf("%s", utils.DecorateText(fmt.Sprintf("Preview error: %v", err), utils.ErrorMessage))
			}
			os.Exit(0)
		}()
		app.Main()
		return
	}

	op := &gesture.Ops{
		Src:      *source,
		Dst:      *destination,
		PipeName: pipeName,
		Workers:  *workers,
		Options:  opts,
	}
	if err := op.Execute(); err != nil {
		log.Fatalf("%s%s",
			utils.DecorateText(fmt.Sprintf("\n%v", err), utils.ErrorMessage),
			utils.DefaultColor,
		)
	}
}
