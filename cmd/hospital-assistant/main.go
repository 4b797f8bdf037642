package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	assistant "github.com/medops/hospital-assistant"
	"github.com/medops/hospital-assistant/common/logger"
	"github.com/medops/hospital-assistant/config"
	"github.com/medops/hospital-assistant/httpapi"
	"github.com/medops/hospital-assistant/mcpserver"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to the YAML configuration file")
		mcpMode    = flag.Bool("mcp", false, "serve the MCP protocol on stdio instead of HTTP")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Errorf("load configuration: %v", err)
		os.Exit(1)
	}

	client, err := assistant.NewClient(cfg)
	if err != nil {
		logger.Errorf("initialize assistant: %v", err)
		os.Exit(1)
	}

	if *mcpMode {
		if err := mcpserver.New(client).ServeStdio(); err != nil {
			logger.Errorf("mcp server: %v", err)
			os.Exit(1)
		}
		return
	}

	srv := httpapi.NewServer(client, cfg.Server)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-stop
		logger.Infof("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Errorf("shutdown: %v", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil {
		logger.Errorf("http server: %v", err)
		os.Exit(1)
	}
}
