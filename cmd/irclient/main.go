package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
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
	serverAddr := os.Getenv("IR_GRPC_ADDR")
	if serverAddr == "" {
		serverAddr = "127.0.0.1:9877"
	}
	flag.StringVar(&serverAddr, "server-addr", serverAddr, "irserver grpc address to probe")

	klog.InitFlags(nil)
	flag.Parse()

	log := klog.FromContext(ctx)

	conn, err := grpc.NewClient(serverAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("failed to connect to server %q: %w", serverAddr, err)
	}
	defer conn.Close()

	client := healthpb.NewHealthClient(conn)
	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{})
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	log.Info("irserver health", "server", serverAddr, "status", resp.GetStatus())
	return nil
}
