package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/pavelanni/examprep/internal/generator"
	"github.com/pavelanni/examprep/internal/handler"
	appI18n "github.com/pavelanni/examprep/internal/i18n"
	"github.com/pavelanni/examprep/internal/llm"
	"github.com/pavelanni/examprep/internal/llm/prompts"
	"github.com/pavelanni/examprep/internal/model"
	"github.com/pavelanni/examprep/internal/store"
	"github.com/pavelanni/examprep/internal/syllabus"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "examprep",
		Short: "KPSS practice exams generated by an LLM",
	}

	serve := serveCmd()
	root.AddCommand(serve, generateCmd(), historyCmd(), keyCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `examprep --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func addLogFlags(f *pflag.FlagSet) {
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
}

func addStoreFlags(f *pflag.FlagSet) {
	f.String("store", "sqlite", "Storage backend (sqlite, redis, memory)")
	f.String("db", "examprep.db", "SQLite database path")
	f.String("redis-addr", "localhost:6379", "Redis address")
	f.String("redis-password", "", "Redis password")
	f.Int("redis-db", 0, "Redis database number")
}

func addLLMFlags(f *pflag.FlagSet) {
	f.String("llm-provider", llm.ProviderHuggingFace, "Inference backend (huggingface, openai)")
	f.String("llm-url", "", "Inference base URL (defaults to the Hugging Face inference API)")
	f.String("llm-model", llm.DefaultModel, "Model name")
	f.String("llm-key", "", "API key, used when none is stored")
	f.Duration("llm-timeout", llm.DefaultTimeout, "Per-request timeout")
	f.Int("max-attempts", llm.DefaultMaxAttempts, "Attempts per batch before it is skipped")
	f.Int("batch-size", generator.DefaultBatchSize, "Questions requested per model call")
	f.Duration("batch-delay", generator.DefaultBatchDelay, "Pause after every batch")
	f.String("question-lang", prompts.DefaultLanguage, "Language the questions are written in")
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP exam server",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.StringP("lang", "l", "tr", "Default UI language (en, tr)")
	addStoreFlags(f)
	addLLMFlags(f)
	addLogFlags(f)
	return cmd
}

func generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a question set and write it as JSON",
		RunE:  runGenerate,
	}
	f := cmd.Flags()
	f.StringP("exam-type", "e", string(model.ExamGKGY), "Exam type (GK-GY, A-GRUBU)")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	addStoreFlags(f)
	addLLMFlags(f)
	addLogFlags(f)
	return cmd
}

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show, export or clear past results",
		RunE:  runHistory,
	}
	f := cmd.Flags()
	f.Bool("json", false, "Print a JSON export instead of a table")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	f.Bool("clear", false, "Delete all stored results")
	addStoreFlags(f)
	addLogFlags(f)
	return cmd
}

func keyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage the stored inference API key",
	}
	set := &cobra.Command{
		Use:   "set KEY",
		Short: "Store an API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCredentials(cmd, func(ctx context.Context, c *store.Credentials) error {
				if err := c.Save(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "API key saved.")
				return nil
			})
		},
	}
	show := &cobra.Command{
		Use:   "show",
		Short: "Print the stored API key, masked",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCredentials(cmd, func(ctx context.Context, c *store.Credentials) error {
				key, err := c.Get(ctx)
				if err != nil {
					return err
				}
				if key == "" {
					fmt.Fprintln(cmd.OutOrStdout(), "No API key stored.")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), store.Mask(key))
				return nil
			})
		},
	}
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored API key",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCredentials(cmd, func(ctx context.Context, c *store.Credentials) error {
				if err := c.Clear(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "API key removed.")
				return nil
			})
		},
	}
	for _, sub := range []*cobra.Command{set, show, clearCmd} {
		addStoreFlags(sub.Flags())
		addLogFlags(sub.Flags())
	}
	cmd.AddCommand(set, show, clearCmd)
	return cmd
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("EXAMPREP")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("examprep")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/examprep")
	v.AddConfigPath("/etc/examprep")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Debug("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

// openStore returns the configured key-value backend and a function that
// releases it.
func openStore(v *viper.Viper) (store.KV, func() error, error) {
	switch strings.ToLower(v.GetString("store")) {
	case "", "sqlite":
		db, err := store.New(v.GetString("db"))
		if err != nil {
			return nil, nil, fmt.Errorf("open database: %w", err)
		}
		return db, db.Close, nil
	case "redis":
		r, err := store.NewRedis(v.GetString("redis-addr"), v.GetString("redis-password"), v.GetInt("redis-db"), store.DefaultRedisPrefix)
		if err != nil {
			return nil, nil, err
		}
		return r, r.Close, nil
	case "memory":
		slog.Warn("using in-memory store, nothing will be persisted")
		return store.NewMemory(), func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q", v.GetString("store"))
	}
}

func llmConfig(v *viper.Viper) llm.Config {
	return llm.Config{
		Provider:    v.GetString("llm-provider"),
		BaseURL:     v.GetString("llm-url"),
		Model:       v.GetString("llm-model"),
		APIKey:      v.GetString("llm-key"),
		Timeout:     v.GetDuration("llm-timeout"),
		MaxAttempts: v.GetInt("max-attempts"),
	}
}

func examConfig(v *viper.Viper) model.ExamConfig {
	return model.ExamConfig{
		BatchSize:    v.GetInt("batch-size"),
		BatchDelay:   v.GetDuration("batch-delay"),
		QuestionLang: v.GetString("question-lang"),
	}
}

func withCredentials(cmd *cobra.Command, fn func(ctx context.Context, c *store.Credentials) error) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)
	kv, closeStore, err := openStore(v)
	if err != nil {
		return err
	}
	defer closeStore()
	return fn(cmd.Context(), store.NewCredentials(kv))
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	kv, closeStore, err := openStore(v)
	if err != nil {
		return err
	}
	defer closeStore()

	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	baseLLM := llmConfig(v)
	examCfg := examConfig(v)
	newSource := func(apiKey string) (generator.Source, error) {
		cfg := baseLLM
		cfg.APIKey = apiKey
		return llm.New(cfg)
	}

	h := handler.New(kv, newSource, examCfg)
	h.SetFallbackKey(baseLLM.APIKey)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(appI18n.Middleware)
	h.Routes(r)

	addr := v.GetString("addr")
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("starting server",
		"addr", addr,
		"store", v.GetString("store"),
		"llm_provider", baseLLM.Provider,
		"model", baseLLM.Model,
		"lang", lang,
		"question_lang", examCfg.QuestionLang,
		"batch_size", examCfg.BatchSize,
		"batch_delay", examCfg.BatchDelay.String(),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		h.Close()
		return err
	})
	return g.Wait()
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	examType, err := syllabus.ParseExamType(v.GetString("exam-type"))
	if err != nil {
		return err
	}

	kv, closeStore, err := openStore(v)
	if err != nil {
		return err
	}
	defer closeStore()

	cfg := llmConfig(v)
	stored, err := store.NewCredentials(kv).Get(cmd.Context())
	if err != nil {
		return err
	}
	if stored != "" {
		cfg.APIKey = stored
	}
	if cfg.APIKey, err = store.ValidateCredential(cfg.APIKey); err != nil {
		return fmt.Errorf("no usable API key: %w", err)
	}
	client, err := llm.New(cfg)
	if err != nil {
		return fmt.Errorf("create LLM client: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	progress := make(chan model.Progress)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for p := range progress {
			slog.Info("progress", "percent", p.Percent, "subject", p.Subject, "message", p.Message)
		}
	}()

	questions, err := generator.New(client, examConfig(v)).Generate(ctx, examType, progress)
	<-done
	if err != nil {
		return err
	}

	return writeJSON(v.GetString("output"), questions)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	kv, closeStore, err := openStore(v)
	if err != nil {
		return err
	}
	defer closeStore()
	history := store.NewHistory(kv)

	if v.GetBool("clear") {
		if err := history.Clear(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
		return nil
	}

	if v.GetBool("json") {
		export, err := history.Export(cmd.Context())
		if err != nil {
			return err
		}
		return writeJSON(v.GetString("output"), export)
	}

	items, err := history.List(cmd.Context())
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No results yet.")
		return nil
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tEXAM\tDURATION\tCORRECT\tINCORRECT\tEMPTY\tNET")
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%.2f\n",
			it.Timestamp.Local().Format("2006-01-02 15:04"),
			it.ExamType,
			it.Duration().Round(time.Second),
			it.Correct, it.Incorrect, it.Empty, it.Net,
		)
	}
	return tw.Flush()
}

func writeJSON(outPath string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}

	var w io.Writer
	if outPath == "" || outPath == "-" {
		w = os.Stdout
	} else {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	// Ensure trailing newline.
	_, _ = fmt.Fprintln(w)
	return nil
}
