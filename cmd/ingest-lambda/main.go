// Command ingest-lambda serves the order ingestion routes behind an API
// Gateway HTTP API.
package main

import (
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	appkg "github.com/xenking/order-ingest/internal/app"
)

func main() {
	lg, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = lg.Sync() }()

	cfg, err := appkg.LoadConfig()
	if err != nil {
		lg.Error("Load config", zap.Error(err))
		os.Exit(1)
	}

	// Built once per cold start and reused across invocations.
	c, err := appkg.NewComponents(cfg, otel.GetTracerProvider(), otel.GetMeterProvider())
	if err != nil {
		lg.Error("Initialize", zap.Error(err))
		os.Exit(1)
	}

	lambda.Start(appkg.LambdaHandler(lg, c.Handler))
}
