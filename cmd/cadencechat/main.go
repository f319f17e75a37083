package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"Cadence/internal/affect"
	"Cadence/internal/articulation"
	"Cadence/internal/config"
	"Cadence/internal/infrastructure/console"
	"Cadence/internal/infrastructure/llm"
	"Cadence/internal/infrastructure/markup"
	"Cadence/internal/logging"
	"Cadence/internal/session"
	"Cadence/internal/usecase"
	"Cadence/pkg/logger"
)

// cadencechat is a terminal REPL against the articulation pipeline: replies
// arrive paced the way a chat channel would see them. With timing disabled
// in the engine config it prints an annotated transcript instead.
func main() {
	cfg := config.Load()
	slogger := logging.New(cfg.Logging.Level)
	replLog := logger.New("cadencechat")

	segCfg := articulation.DefaultSegmentationConfig()
	segCfg.MinSegmentLength = cfg.Engine.MinSegmentLength
	segCfg.MaxSegmentLength = cfg.Engine.MaxSegmentLength

	rhythmCfg := articulation.RhythmConfig{
		BaseWordsPerMinute:   cfg.Engine.BaseWordsPerMinute,
		HesitationBase:       cfg.Engine.HesitationBase,
		HesitationMultiplier: cfg.Engine.HesitationMultiplier,
	}

	articulator, err := articulation.New(segCfg, rhythmCfg)
	if err != nil {
		replLog.Printf("engine config rejected: %v", err)
		os.Exit(1)
	}

	registry := llm.NewRegistry()
	registry.Register(llm.NewMockResponder())
	registry.Register(llm.NewOpenAIResponder(cfg.LLM))

	responder, err := registry.Resolve(cfg.LLM.Provider)
	if err != nil {
		replLog.Printf("provider selection failed: %v", err)
		os.Exit(1)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Sessions:      session.NewManager(cfg.Session.HistoryLimit),
		Appraiser:     affect.NewKeywordAppraiser(nil),
		Responder:     responder,
		Flattener:     markup.New(),
		Articulator:   articulator,
		Logger:        slogger.With("component", "pipeline"),
		EnableTiming:  !cfg.Engine.DisableTiming,
		LogDeliveries: cfg.Engine.LogDeliveries,
	})

	sink := console.New(os.Stdout, cfg.Engine.DisableTiming)

	replLog.Printf("chatting via %s provider; /quit or Ctrl-D exits", cfg.LLM.Provider)

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "/quit" {
			break
		}
		if line == "" {
			fmt.Print("> ")
			continue
		}

		result, err := pipeline.ProcessTurn(context.Background(), "console", line, sink)
		if err != nil {
			replLog.Printf("turn failed: %v", err)
		} else if result.Execution.State != articulation.StateCompleted {
			replLog.Printf("playback ended %s after %d actions", result.Execution.State, result.Execution.Delivered)
		}
		fmt.Print("> ")
	}

	if err := scanner.Err(); err != nil {
		replLog.Printf("stdin error: %v", err)
		os.Exit(1)
	}
	fmt.Println()
}
