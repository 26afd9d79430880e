// Command mouthmap runs mouth-shape detection on a WAV file and prints
// the resulting event list as JSON. Offline inspection tool for tuning
// detection parameters.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/pwninator/lipsync/detect"
	"github.com/pwninator/lipsync/internal/config"
	"github.com/pwninator/lipsync/internal/logging"
)

func main() {
	var (
		configPath = flag.String("config", "", "optional YAML config file")
		modeName   = flag.String("mode", "", "detection mode: timing, tts_timing, librosa, parselmouth (overrides config)")
		transcript = flag.String("transcript", "", "optional transcript for boundary refinement")
		timingPath = flag.String("timing", "", "optional provider timing JSON (required by timing mode)")
		asTimeline = flag.Bool("segments", false, "print timeline segments instead of raw events")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log := logging.New(cfg.Logging.Level, cfg.Logging.Console)

	if *modeName == "" {
		*modeName = cfg.Mode
	}
	mode, err := detect.ParseMode(*modeName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: mouthmap [flags] <audio.wav>")
		flag.PrintDefaults()
		os.Exit(2)
	}
	audioBytes, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "read audio: %v\n", err)
		os.Exit(1)
	}

	var timing *detect.TtsTiming
	if *timingPath != "" {
		raw, err := os.ReadFile(*timingPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "read timing: %v\n", err)
			os.Exit(1)
		}
		timing = &detect.TtsTiming{}
		if err := json.Unmarshal(raw, timing); err != nil {
			fmt.Fprintf(os.Stderr, "parse timing: %v\n", err)
			os.Exit(1)
		}
	}

	detector := detect.NewDetector(cfg.Detection, detect.WithLogger(logging.Component(log, "detect")))
	events, err := detector.MouthEvents(audioBytes, mode, *transcript, timing)
	if err != nil {
		log.Error().Err(err).Msg("detection failed")
		os.Exit(1)
	}
	log.Info().Int("events", len(events)).Str("mode", mode.String()).Msg("detection complete")

	var out any = events
	if *asTimeline {
		tl, err := detect.ToTimeline(events)
		if err != nil {
			log.Error().Err(err).Msg("build timeline")
			os.Exit(1)
		}
		out = tl.Segments()
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(os.Stderr, "encode output: %v\n", err)
		os.Exit(1)
	}
}
