package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"k8s.io/klog/v2"
)

func main() {
	ctx := context.Background()
	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	grpcAddr := os.Getenv("IR_GRPC_ADDR")
	if grpcAddr == "" {
		grpcAddr = ":9877"
	}
	metricsAddr := os.Getenv("IR_METRICS_ADDR")
	if metricsAddr == "" {
		metricsAddr = ":9878"
	}

	flag.StringVar(&grpcAddr, "grpc-addr", grpcAddr, "address the graph-service health endpoint listens on")
	flag.StringVar(&metricsAddr, "metrics-addr", metricsAddr, "address the Prometheus /metrics endpoint listens on")
	klog.InitFlags(nil)
	flag.Parse()

	log := klog.FromContext(ctx)

	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		return fmt.Errorf("listening on %q: %w", grpcAddr, err)
	}

	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	reflection.Register(grpcServer)

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		log.Info("serving metrics", "addr", metricsAddr)
		if err := http.ListenAndServe(metricsAddr, mux); err != nil {
			log.Error(err, "metrics server exited")
		}
	}()

	log.Info("starting irserver", "grpcAddr", grpcAddr, "metricsAddr", metricsAddr)
	if err := grpcServer.Serve(lis); err != nil {
		return fmt.Errorf("serving GRPC: %w", err)
	}
	return nil
}
