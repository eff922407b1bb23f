// Command aurora runs the perpetual orchestrator loop with an interactive
// console on stdin.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"aurora/internal/config"
	"aurora/internal/llm"
	"aurora/internal/memory"
	"aurora/internal/narrative"
	"aurora/internal/orchestrator"
	"aurora/internal/providers"
	"aurora/internal/registry"
	"aurora/internal/search"
)

var version = "0.1.0"

var (
	flagConfig  string
	flagVerbose bool
)

const longHelp = `Aurora runs a perpetual cycle: reload capabilities, think, learn,
apply dynamic code updates, research and evolve a personality.
Type a question at the prompt to query it, /status for loop state,
/reset to wipe its memory, /quit to stop.`

func main() {
	root := &cobra.Command{
		Use:     "aurora",
		Short:   "Aurora is a self-reconfiguring autonomous agent loop",
		Long:    longHelp,
		Version: version,
		RunE:    run,
	}
	root.Flags().StringVarP(&flagConfig, "config", "c", "", "config file (default .aurora/config.yaml)")
	root.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	path := flagConfig
	if path == "" {
		path = config.DefaultPath(".")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err := buildLogger(cfg.Logging.Level, flagVerbose)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	narr := narrative.New(cfg.Identity.Name, cfg.Identity.Backstory, cfg.Identity.Mission)

	store, err := memory.Open(cfg.Memory.DatabasePath)
	if err != nil {
		return fmt.Errorf("open memory store: %w", err)
	}
	defer store.Close()
	narr.AttachMemory(store)

	client, err := buildLLMClient(ctx, cfg, logger)
	if err != nil {
		return err
	}

	searcher := search.NewClient(search.Config{
		APIKey:   cfg.Search.APIKey,
		EngineID: cfg.Search.EngineID,
		Timeout:  cfg.SearchTimeout(),
	})
	if !searcher.Configured() {
		logger.Warn("search credentials missing, research will fail until configured")
	}

	reg := registry.New(logger)

	updater, err := providers.NewCodeUpdater(cfg.CodeGen.CapabilityDir, reg, logger)
	if err != nil {
		return fmt.Errorf("code updater: %w", err)
	}
	defer updater.Close()

	bindCapabilities(reg, narr, store, client, searcher, updater, logger)

	orch := orchestrator.New(reg, narr, orchestrator.Config{
		BaseCycle:   cfg.BaseCycle(),
		FloorWait:   cfg.FloorWait(),
		Damping:     cfg.Orchestrator.Damping,
		TaskTimeout: cfg.TaskTimeout(),
	}, logger)

	logger.Info("aurora starting",
		zap.String("identity", cfg.Identity.Name),
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.String("version", version))

	bridge := orchestrator.NewQueryBridge(orch, 4)
	defer bridge.Close()

	done := make(chan error, 1)
	go func() {
		done <- orch.Run(ctx)
	}()

	console(ctx, stop, orch, bridge, logger)

	err = <-done
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	logger.Info("aurora stopped")
	return err
}

// bindCapabilities installs the loader for every core capability. Loaders
// close over long-lived collaborators, so a reload hands out a fresh
// handle without reopening databases or watchers.
func bindCapabilities(
	reg *registry.Registry,
	narr *narrative.Store,
	store *memory.SQLiteStore,
	client llm.Client,
	searcher *search.Client,
	updater *providers.CodeUpdater,
	logger *zap.Logger,
) {
	var cognition any
	if client != nil {
		cognition = providers.NewLLMCognition(client, logger)
	} else {
		cognition = providers.NewSimulatedCognition(time.Now().UnixNano())
	}
	reg.Bind(registry.NameCognition, func() (any, error) { return cognition, nil })

	learning := providers.NewSimulatedLearning(logger)
	reg.Bind(registry.NameLearning, func() (any, error) { return learning, nil })

	reg.Bind(registry.NameMemory, func() (any, error) { return store, nil })
	reg.Bind(registry.NameCodeGen, func() (any, error) { return updater, nil })

	research := providers.NewWebResearch(searcher, client, logger)
	reg.Bind(registry.NameResearch, func() (any, error) { return research, nil })

	var personality any
	if client != nil {
		personality = providers.NewLLMPersonality(client, logger)
	} else {
		personality = providers.NewSimulatedPersonality()
	}
	reg.Bind(registry.NamePersonality, func() (any, error) { return personality, nil })
}

// buildLLMClient selects the LLM backend. A missing key is not fatal:
// Aurora falls back to simulated cognition and personality, and research
// degrades to its fallback topic.
func buildLLMClient(ctx context.Context, cfg *config.Config, logger *zap.Logger) (llm.Client, error) {
	switch cfg.LLM.Provider {
	case "openai":
		if cfg.LLM.APIKey == "" {
			logger.Warn("no OpenAI API key, running with simulated providers")
			return nil, nil
		}
		return llm.NewOpenAIClient(llm.OpenAIConfig{
			APIKey:  cfg.LLM.APIKey,
			BaseURL: cfg.LLM.BaseURL,
			Model:   cfg.LLM.Model,
			Timeout: cfg.LLMTimeout(),
		}), nil
	case "gemini":
		if cfg.LLM.APIKey == "" {
			logger.Warn("no Gemini API key, running with simulated providers")
			return nil, nil
		}
		return llm.NewGeminiClient(ctx, cfg.LLM.APIKey, cfg.LLM.Model)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
}

func buildLogger(level string, verbose bool) (*zap.Logger, error) {
	zcfg := zap.NewDevelopmentConfig()
	zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	lvl := zapcore.InfoLevel
	if level != "" {
		if err := lvl.Set(level); err != nil {
			return nil, err
		}
	}
	if verbose {
		lvl = zapcore.DebugLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}

// console reads queries and slash commands from stdin until EOF, /quit or
// cancellation. Free-text lines go through the query bridge.
func console(ctx context.Context, stop func(), orch *orchestrator.Orchestrator, bridge *orchestrator.QueryBridge, logger *zap.Logger) {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("aurora console ready: ask anything, /status, /reset, /quit")

	lines := make(chan string)
	go func() {
		defer close(lines)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				stop()
				return
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}
			switch text {
			case "/quit", "/exit":
				stop()
				return
			case "/status":
				st := orch.Status()
				fmt.Printf("cycles=%d personality=%q last_cycle=%.3fs capabilities=%v\n",
					st.Cycles, st.Personality, st.LastCycleDuration, st.Capabilities)
			case "/reset":
				if err := orch.Reset(ctx); err != nil {
					fmt.Println("reset failed:", err)
				} else {
					fmt.Println("memory wiped, personality reset")
				}
			default:
				if _, err := bridge.Submit(ctx, text); err != nil {
					fmt.Println("query failed:", err)
					continue
				}
				select {
				case q := <-bridge.Responses():
					if q.Err != nil {
						logger.Warn("query degraded", zap.String("query", q.ID), zap.Error(q.Err))
					}
					fmt.Println(q.Answer)
				case <-ctx.Done():
					return
				}
			}
		}
	}
}
