package main

import (
	"log"
	"os"

	"github.com/foldlab/foldd/internal/api"
	"github.com/foldlab/foldd/internal/config"
	"github.com/foldlab/foldd/internal/dispatch"
	"github.com/foldlab/foldd/internal/engine"
	"github.com/foldlab/foldd/internal/engine/lattice"
	"github.com/foldlab/foldd/internal/service"
	"github.com/foldlab/foldd/internal/sink"
	"github.com/foldlab/foldd/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	logger := config.NewLogger(os.Stdout, cfg.LogLevel)

	logger.Info("foldd: starting",
		"listen_addr", cfg.ListenAddr,
		"data_dir", cfg.DataDir,
		"engine", cfg.Engine,
		"max_workers", cfg.MaxWorkers,
	)

	st, err := store.NewFSStore(cfg.DataDir)
	if err != nil {
		log.Fatalf("failed to open job store: %v", err)
	}

	reg := engine.NewRegistry(cfg.Engine, engine.StubName)
	reg.Register(lattice.Name, lattice.New(logger))
	reg.Register(engine.StubName, engine.NewStub(engine.DefaultStubDelay))

	d := dispatch.NewDispatcher(st, reg, logger, cfg.MaxWorkers, cfg.QueueDepth)
	d.Start()

	resultSink, err := openSink(cfg)
	if err != nil {
		log.Fatalf("failed to open result sink: %v", err)
	}

	var fwd *sink.Forwarder
	if resultSink != nil {
		fwd = sink.NewForwarder(resultSink, logger)
		events, _ := d.Broker().Subscribe()
		fwd.Start(events)
	}

	svc := service.New(st, d, logger)
	srv := api.NewServer(cfg.ListenAddr, svc, reg, logger)

	runErr := srv.Run()

	// Shutdown order matters: stopping the dispatcher closes the broker,
	// which ends the forwarder's event stream; then the sink can close.
	d.Stop()
	if fwd != nil {
		fwd.Wait()
	}
	if resultSink != nil {
		if err := resultSink.Close(); err != nil {
			logger.Error("failed to close result sink", "error", err)
		}
	}

	if runErr != nil {
		log.Fatalf("server error: %v", runErr)
	}
}

// openSink selects the result sink: Postgres when a DSN is configured,
// otherwise the embedded SQLite database, otherwise none.
func openSink(cfg config.Config) (sink.Sink, error) {
	if cfg.SinkDSN != "" {
		return sink.NewPostgresSink(cfg.SinkDSN)
	}
	if cfg.SinkPath != "" {
		return sink.NewSQLiteSink(cfg.SinkPath)
	}
	return nil, nil
}
