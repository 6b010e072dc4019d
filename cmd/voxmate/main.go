package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"voxmate/internal/broker"
	"voxmate/internal/command"
	"voxmate/internal/config"
	"voxmate/internal/logging"
)

var (
	// Global flags
	verbose    bool
	apiKey     string
	workspace  string
	configPath string
	timeout    time.Duration

	// Loaded in PersistentPreRunE
	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "voxmate",
	Short: "VoxMate - voice-driven page reader, translator, and Q&A assistant",
	Long: `VoxMate drives a Chrome page over the DevTools protocol and makes it
accessible by voice: it reads pages aloud with live highlighting, translates
them in place, summarizes them, and answers questions about their content.

Commands are resolved locally through per-language phrase tables first; only
unmatched utterances fall back to the AI classifier.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zapCfg := zap.NewProductionConfig()
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		if workspace == "" {
			workspace, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("resolve workspace: %w", err)
			}
		}

		if configPath == "" {
			configPath = filepath.Join(workspace, ".voxmate", "voxmate.yaml")
		}
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if apiKey != "" {
			cfg.Model.APIKey = apiKey
		}
		if verbose {
			cfg.Logging.DebugMode = true
			cfg.Logging.Level = "debug"
		}

		if err := logging.Initialize(workspace, logging.Options{
			DebugMode:  cfg.Logging.DebugMode,
			Categories: cfg.Logging.Categories,
			Level:      cfg.Logging.Level,
		}); err != nil {
			return fmt.Errorf("initialize logging: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// runCmd starts the continuous voice assistant on a page
var runCmd = &cobra.Command{
	Use:   "run [url]",
	Short: "Open a page and drive it by voice",
	Long: `Opens the page and starts continuous voice capture. Say 'read' to start
reading aloud, 'pause', 'stop', 'translate', 'show commands', or ask any
question about the page. Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runAssistant,
}

// sayCmd resolves and executes a single utterance
var sayCmd = &cobra.Command{
	Use:   "say [url] [utterance...]",
	Short: "Execute one spoken-style command against a page",
	Long: `Resolves the utterance exactly as the voice pipeline would (phrase
matcher first, AI classifier fallback) and executes the resulting command.

Examples:
  voxmate say https://example.com read
  voxmate say https://example.com "what is this page about?"
  voxmate say https://example.com traducir`,
	Args: cobra.MinimumNArgs(2),
	RunE: sayUtterance,
}

// checkCmd verifies the model is reachable and ready
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check model availability and readiness",
	RunE:  checkModel,
}

// commandsCmd prints the localized command card
var commandsCmd = &cobra.Command{
	Use:   "commands [lang]",
	Short: "Print the voice command reference",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lang := cfg.Language.Default
		if len(args) > 0 {
			lang = args[0]
		}
		card := command.CommandsCard(lang)
		fmt.Println(card.Title)
		for _, line := range card.Commands {
			fmt.Println("  " + line)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "Gemini API key (or set GEMINI_API_KEY)")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: current)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (default: .voxmate/voxmate.yaml)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "Operation timeout")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(sayCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(commandsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runAssistant opens the page and captures voice until interrupted.
func runAssistant(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("Received shutdown signal")
		cancel()
	}()

	app, err := newApp(ctx, cfg, workspace, args[0])
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.WatchConfig(ctx, configPath); err != nil {
		logger.Warn("Config watching disabled", zap.Error(err))
	}

	app.Voice.Enable()
	_ = app.Store.SetVoiceMode(true)
	logger.Info("Voice capture running", zap.String("url", args[0]))

	<-ctx.Done()
	app.Voice.Disable()
	return nil
}

// sayUtterance resolves one utterance and dispatches it.
func sayUtterance(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	app, err := newApp(ctx, cfg, workspace, args[0])
	if err != nil {
		return err
	}
	defer app.Close()

	utterance := strings.Join(args[1:], " ")
	lang := app.Store.UserLanguage()
	for _, resolved := range app.Resolver.Resolve(ctx, utterance, lang) {
		if resolved.Kind == command.KindUnknown {
			fmt.Printf("Did not understand %q\n", resolved.Raw)
			continue
		}
		fmt.Printf("-> %s\n", resolved.Kind)
		app.Dispatcher.Dispatch(ctx, resolved)
	}
	return nil
}

// checkModel reports readiness the way the voice pipeline probes it.
func checkModel(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := cfg.Validate(); err != nil {
		return err
	}

	app, err := newHeadlessApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	res := app.Broker.Send(ctx, broker.KindCheckModel, broker.Payload{})
	if !res.Success {
		return fmt.Errorf("model check failed: %s (%s)", res.Reason, res.Error)
	}
	fmt.Printf("Model ready (availability: %s)\n", res.Availability)
	return nil
}
