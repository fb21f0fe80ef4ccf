package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/ekisa-team/lingua/internal/audio"
	"github.com/ekisa-team/lingua/internal/backend"
	"github.com/ekisa-team/lingua/internal/backend/triton"
	"github.com/ekisa-team/lingua/internal/config"
	"github.com/ekisa-team/lingua/internal/env"
	"github.com/ekisa-team/lingua/internal/envvar"
	"github.com/ekisa-team/lingua/internal/logger"
	"github.com/ekisa-team/lingua/internal/pipeline"
	"github.com/ekisa-team/lingua/internal/registry"
	"github.com/ekisa-team/lingua/internal/registry/postgres"
	httpserver "github.com/ekisa-team/lingua/internal/server/http"
	"github.com/ekisa-team/lingua/internal/service"
	"github.com/ekisa-team/lingua/internal/usage"
)

func main() {
	var (
		flagHTTPPort   = flag.Int("http-port", config.DefaultHTTPPort(), "HTTP port to listen on")
		flagConfigPath = flag.String("config", path.Join(config.DefaultConfigPath(), "lingua.yaml"), "Path to config file")
		flagSchemaPath = flag.String("schema", path.Join(config.DefaultConfigPath(), "lingua.v1.schema.json"), "Path to schema file")
	)
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
	}

	environment := env.FromEnv()

	logFile := "logs/lingua.log"
	if p := os.Getenv(envvar.LinguaLogFile); p != "" {
		logFile = p
	}
	slog.SetDefault(
		logger.New(environment,
			logger.WithLogToFile(true),
			logger.WithLogFile(logFile),
		),
	)

	if err := run(*flagConfigPath, *flagSchemaPath, *flagHTTPPort); err != nil {
		slog.Error("Lingua exited with error", "error", err)
		os.Exit(1)
	}
}

func run(configPath, schemaPath string, httpPort int) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		static   atomic.Pointer[registry.StaticSource]
		selector atomic.Pointer[pipeline.Selector]
	)

	watcher, err := config.NewWatcher(configPath, schemaPath, func(cfg *config.Config, err error) {
		if err != nil {
			slog.Error("Failed to reload config", "error", err)
			return
		}

		if s := static.Load(); s != nil {
			if err := s.Load(cfg.Registry); err != nil {
				slog.Error("Failed to reload registry", "error", err)
				return
			}
		}
		if sel := selector.Load(); sel != nil {
			sel.Update(cfg.Pipeline.AutoSelect)
		}

		slog.Info("Config reloaded", "config", configPath)
	})
	if err != nil {
		return fmt.Errorf("create config watcher: %w", err)
	}
	defer watcher.Close()

	cfg := watcher.Snapshot()
	if httpPortSet() {
		cfg.Server.Port = httpPort
	}

	slog.Info("Config loaded successfully", "config", configPath, "schema", schemaPath)

	var source registry.Source
	switch cfg.Registry.Source {
	case config.SourceTypePostgres:
		pg, err := postgres.New(ctx, cfg.Registry.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connect registry database: %w", err)
		}
		defer pg.Close()

		if err := pg.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate registry database: %w", err)
		}
		source = pg
	default:
		s, err := registry.NewStaticSource(cfg.Registry)
		if err != nil {
			return fmt.Errorf("load static registry: %w", err)
		}
		static.Store(s)
		source = s
	}

	cache := registry.NewCache(source,
		registry.NewStore[*registry.ServiceDescriptor](),
		registry.NewStore[*registry.ModelDescriptor](),
	)

	client := triton.NewClient(
		triton.WithMaxMessageSize(cfg.Backend.MaxMessageSize),
		triton.WithConnectTimeout(cfg.Backend.DialTimeout),
	)
	defer func() {
		if err := client.Close(); err != nil {
			slog.Warn("Failed to close backend connections", "error", err)
		}
	}()

	var transcoder *audio.Transcoder
	if exec, err := backend.NewExecutor(cfg.Audio.FFmpegPath, time.Minute); err != nil {
		slog.Warn("ffmpeg not available, compressed audio formats are disabled", "path", cfg.Audio.FFmpegPath, "error", err)
	} else {
		transcoder = audio.NewTranscoder(exec)
	}

	vad := cfg.Audio.VAD
	preprocessorOpts := []audio.PreprocessorOption{audio.WithTargetPeak(cfg.Audio.TargetPeak)}
	serviceOpts := []service.Option{service.WithChunking(cfg.Audio), service.WithTTS(cfg.TTS)}
	if transcoder != nil {
		preprocessorOpts = append(preprocessorOpts, audio.WithTranscoder(transcoder))
		serviceOpts = append(serviceOpts, service.WithTranscoder(transcoder))
	}

	preprocessor := audio.NewPreprocessor(
		audio.NewPool(cfg.Audio.Workers),
		cfg.Audio.SampleRate,
		audio.VADParams{
			FrameMs:      vad.FrameMs,
			Threshold:    vad.Threshold,
			MinSilenceMs: vad.MinSilenceMs,
			SpeechPadMs:  vad.SpeechPadMs,
			MinSpeechMs:  vad.MinSpeechMs,
		},
		preprocessorOpts...,
	)

	svc := service.New(cache, client, preprocessor, serviceOpts...)

	sink, err := usage.NewSink(cfg.Usage)
	if err != nil {
		return fmt.Errorf("create usage sink: %w", err)
	}
	queue := usage.NewQueue(sink, cfg.Usage.QueueSize)

	sel := pipeline.NewSelector(cfg.Pipeline.AutoSelect)
	selector.Store(sel)
	orchestrator := pipeline.New(svc, sel, queue,
		pipeline.WithStrictValidation(cfg.Pipeline.StrictValidation),
	)

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)

	api := humachi.New(router, huma.DefaultConfig("Lingua API", "1.0.0"))
	httpserver.UseCaller(api)
	httpserver.NewHealthHandler(api)
	httpserver.NewInferenceHandler(api, svc, queue)
	httpserver.NewPipelineHandler(api, orchestrator)

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server started", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		slog.Info("Received shutdown signal")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP shutdown failed", "error", err)
	}
	if err := queue.Close(shutdownCtx); err != nil {
		slog.Warn("Usage queue did not drain", "error", err)
	}

	return nil
}

// httpPortSet reports whether -http-port was passed explicitly.
func httpPortSet() bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "http-port" {
			set = true
		}
	})

	return set
}
