// Command qcore runs a single-instance combined 5G RAN CU (CU-CP + CU-UP)
// and minimal 5G-Core (AMF + SMF + UPF), terminating F1 from one gNB-DU and
// carrying one attached UE through registration and PDU session
// establishment, per spec.md. Grounded on nf/amf/cmd/main.go's logger/
// metrics-server/signal-handling shape and original_source/qcore/src/main.rs's
// flag set and startup sequence.
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/qcore-go/qcore/internal/config"
	"github.com/qcore-go/qcore/internal/f1ap"
	"github.com/qcore-go/qcore/internal/metrics"
	"github.com/qcore-go/qcore/internal/simtable"
	"github.com/qcore-go/qcore/internal/ue"
	"github.com/qcore-go/qcore/internal/userplane"
)

func main() {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := createLogger(cfg.Observability.Logging.Level)
	defer logger.Sync()

	logger.Info("starting qcore",
		zap.String("ip", cfg.IPAddr.String()),
		zap.String("mcc", cfg.MCC), zap.String("mnc", cfg.MNC),
		zap.String("serving_network_name", cfg.ServingNetworkName()),
	)

	sims, err := simtable.Load(cfg.SIMFile)
	if err != nil {
		logger.Fatal("failed to load sim table", zap.Error(err))
	}
	logger.Info("sim table loaded", zap.Int("entries", len(sims)))

	tun, err := userplane.OpenTUN(cfg.TUNName)
	if err != nil {
		logger.Fatal("failed to open tun device", zap.String("name", cfg.TUNName), zap.Error(err))
	}
	defer tun.Close()

	socket, err := net.ListenUDP("udp4", &net.UDPAddr{IP: cfg.IPAddr, Port: userplane.GTPUPort})
	if err != nil {
		logger.Fatal("failed to open f1-u socket", zap.Error(err))
	}
	defer socket.Close()

	engine := userplane.NewEngine(cfg.UESubnet)
	stats := &userplane.Stats{}

	downlink := &userplane.DownlinkPipeline{TUN: tun, Socket: socket, Engine: engine, Log: logger.Named("downlink"), Stats: stats}
	uplink := &userplane.UplinkPipeline{Socket: socket, TUN: tun, Engine: engine, Log: logger.Named("uplink"), Stats: stats}
	go downlink.Run()
	go uplink.Run()

	registry := ue.NewRegistry(nil, logger.Named("registry"))
	deps := ue.Deps{
		Config:   cfg,
		SIMs:     ue.NewSIMLookup(sims),
		Engine:   engine,
		RRCCodec: rrcCodec{},
		NASCodec: nasCodec{},
		Registry: registry,
		Log:      logger.Named("ue"),
	}

	global := &f1ap.Handler{
		Log:      logger.Named("f1ap"),
		CUName:   "QCore",
		Teardown: registry.CloseAssociation,
	}
	router := &f1ap.Router{Log: logger.Named("f1ap"), Global: global, Registry: registry, Tracer: otel.Tracer("qcore-f1ap")}

	metricsServer := metrics.NewServer(cfg.Observability.Metrics.Addr, logger.Named("metrics"))
	if cfg.Observability.Metrics.Enabled {
		go func() {
			if err := metricsServer.Start(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server error", zap.Error(err))
			}
		}()
	}
	metrics.ServiceUp.Set(1)

	statsCtx, statsCancel := context.WithCancel(context.Background())
	go metrics.RunStatsDumper(statsCtx, stats, logger.Named("stats"))
	go reportActiveUEs(statsCtx, registry)

	listener, err := f1ap.Listen(cfg.IPAddr)
	if err != nil {
		logger.Fatal("failed to listen for f1-c associations", zap.Error(err))
	}
	defer listener.Close()
	logger.Info("listening for f1-c associations", zap.String("addr", cfg.IPAddr.String()), zap.Int("port", f1ap.Port))

	go acceptLoop(listener, router, deps, logger.Named("f1ap"))

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	sig := <-shutdown
	logger.Info("shutdown signal received", zap.String("signal", sig.String()))

	statsCancel()
	metrics.ServiceUp.Set(0)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := metricsServer.Stop(shutdownCtx); err != nil {
		logger.Error("failed to gracefully stop metrics server", zap.Error(err))
	}
	logger.Info("qcore shutdown complete")
}

// acceptLoop accepts F1-C associations one at a time and serves each to
// completion before accepting the next, matching spec.md's single-DU scope:
// only one association, and so only one Sender, is ever live at a time.
func acceptLoop(listener *f1ap.Listener, router *f1ap.Router, deps ue.Deps, log *zap.Logger) {
	for {
		assoc, err := listener.Accept()
		if err != nil {
			log.Error("accept failed", zap.Error(err))
			return
		}
		log.Info("du associated", zap.String("assoc", assoc.ID))
		serveAssociation(assoc, router, deps, log)
	}
}

func serveAssociation(assoc *f1ap.Association, router *f1ap.Router, deps ue.Deps, log *zap.Logger) {
	codec := f1apCodec{}
	sender := &ue.F1APSender{Assoc: assoc, Codec: codec}
	deps.Registry.SetSpawn(ue.Spawn(deps, sender))

	buf := make([]byte, 65536)
	for {
		n, err := assoc.Recv(buf)
		if err != nil {
			log.Warn("association closed", zap.String("assoc", assoc.ID), zap.Error(err))
			deps.Registry.CloseAssociation(assoc.ID)
			return
		}
		pdu, err := codec.Decode(buf[:n])
		if err != nil {
			log.Warn("failed to decode f1ap pdu", zap.String("assoc", assoc.ID), zap.Error(err))
			continue
		}
		if err := router.Dispatch(assoc, codec, pdu); err != nil {
			log.Warn("failed to dispatch f1ap pdu", zap.String("assoc", assoc.ID), zap.Error(err))
		}
	}
}

// reportActiveUEs refreshes the active-UE gauge every five seconds until
// ctx is cancelled.
func reportActiveUEs(ctx context.Context, registry *ue.Registry) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.ActiveUEs.Set(float64(registry.Count()))
		}
	}
}

// createLogger builds a zap production logger with ISO8601 timestamps,
// following nf/amf/cmd/main.go's createLogger.
func createLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to create logger: %v", err))
	}
	return logger
}
