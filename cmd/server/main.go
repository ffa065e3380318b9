package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"github.com/clickforge/clicker-core/internal/clock"
	"github.com/clickforge/clicker-core/internal/config"
	"github.com/clickforge/clicker-core/internal/game"
	"github.com/clickforge/clicker-core/internal/rpc"
	"github.com/clickforge/clicker-core/internal/save"
)

var (
	httpAddr  = flag.String("http", ":8080", "HTTP listen address")
	grpcAddr  = flag.String("grpc", ":9090", "gRPC listen address")
	tickEvery = flag.Duration("tick", 100*time.Millisecond, "simulation tick interval")
	savePath  = flag.String("save", "", "save file (overrides autosave.path)")
	debug     = flag.Bool("debug", false, "debug logging")
)

func main() {
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(log); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	dir, profile := os.Getenv(config.EnvConfigDir), os.Getenv(config.EnvProfile)
	bal := config.Default()
	var loader *config.Loader
	if dir != "" {
		loader = config.NewLoader(dir)
		b, err := loader.Load(profile)
		if err != nil {
			return err
		}
		bal = b
	}
	log.Info("balance loaded", "version", bal.Version, "profile", profile)

	sess, err := game.NewSession(bal, clock.RealClock{}, game.WithLogger(log))
	if err != nil {
		return err
	}

	path := bal.Autosave.Path
	if *savePath != "" {
		path = *savePath
	}
	store := save.NewStore(path)
	if snap, ok, err := store.Load(); err != nil {
		log.Warn("save unreadable, starting fresh", "path", path, "err", err)
	} else if ok {
		sess.Restore(snap)
	}

	saver := save.NewAutosaver(store, sess, bal.Autosave.Interval, log)
	saver.Start()
	defer func() {
		if err := saver.Stop(); err != nil {
			log.Error("final save failed", "err", err)
		}
	}()

	a := newAPI(sess, log)
	if loader != nil {
		w := config.NewWatcher(loader, profile, 2*time.Second, a.onReload)
		w.Start()
		defer w.Stop()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go tickLoop(ctx, sess, *tickEvery)

	gs := grpc.NewServer(grpc.UnaryInterceptor(rpc.UnaryLogger(log)))
	rpc.Register(gs, rpc.NewServer(sess, log))
	lis, err := net.Listen("tcp", *grpcAddr)
	if err != nil {
		return err
	}
	go func() {
		log.Info("gRPC listening", "addr", *grpcAddr)
		if err := gs.Serve(lis); err != nil {
			log.Error("gRPC serve", "err", err)
		}
	}()

	hs := &http.Server{Addr: *httpAddr, Handler: a.routes(), ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP listening", "addr", *httpAddr)
		errCh <- hs.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			gs.Stop()
			return err
		}
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	gs.GracefulStop()
	return hs.Shutdown(shutdownCtx)
}

func tickLoop(ctx context.Context, sess *game.Session, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			sess.Tick()
		case <-ctx.Done():
			return
		}
	}
}
