package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/honeycombio/otel-config-go/otelconfig"

	"github.com/ethereum-optimism/optimism/op-service/ctxinterrupt"

	"github.com/ethereum-optimism/infra/op-suite/app"
)

var (
	Version   = "v0.1.0"
	GitCommit = ""
	GitDate   = ""
)

func main() {
	cliApp := app.NewCLI("op-suite", fmt.Sprintf("%s-%s-%s", Version, GitCommit, GitDate), Suites()...)

	shutdown, err := otelconfig.ConfigureOpenTelemetry(
		otelconfig.WithServiceName(cliApp.Name),
		otelconfig.WithServiceVersion(cliApp.Version),
	)
	if err != nil {
		log.Crit("Failed to setup open telemetry", "message", err)
	}
	defer shutdown()

	ctx := ctxinterrupt.WithSignalWaiterMain(context.Background())
	if err := cliApp.RunContext(ctx, os.Args); err != nil {
		log.Crit("Application failed", "message", err)
	}
}
