// cmd/ledger-grpc/main.go
package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	gp "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/example/asaas-gateway/internal/config"
	"github.com/example/asaas-gateway/internal/grpcserver"
	"github.com/example/asaas-gateway/internal/store"
	"github.com/example/asaas-gateway/pkg/logging"
)

const serviceName = "ledger-grpc"

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[%s] config: %v", serviceName, err)
	}
	logger, err := logging.New(serviceName, cfg.LogLevel)
	if err != nil {
		log.Fatalf("[%s] logger: %v", serviceName, err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stores, err := store.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("[%s] open %s store: %v", serviceName, cfg.StoreDriver, err)
	}
	defer stores.Close()

	grpcServer := grpc.NewServer(
		grpc.UnaryInterceptor(gp.UnaryServerInterceptor),
		grpc.StreamInterceptor(gp.StreamServerInterceptor),
	)
	grpcserver.RegisterLedgerServer(grpcServer, &grpcserver.LedgerServer{Store: stores.Ledger, Logger: logger})
	gp.Register(grpcServer)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Fatalf("[%s] listen %s: %v", serviceName, cfg.GRPCAddr, err)
	}
	go func() {
		logger.Info("serving gRPC", zap.String("addr", cfg.GRPCAddr))
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatalf("[%s] grpc serve: %v", serviceName, err)
		}
	}()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	metricsSrv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
	go func() {
		logger.Info("serving metrics", zap.String("addr", cfg.MetricsAddr))
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[%s] metrics serve: %v", serviceName, err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	grpcServer.GracefulStop()
	sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	_ = metricsSrv.Shutdown(sctx)
	logger.Info("bye")
}
