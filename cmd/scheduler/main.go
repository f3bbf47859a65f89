// Command scheduler runs one pass of due recurring transactions. It is meant
// to be invoked by cron; the exit code is 1 when the pass could not run and 2
// when some rules failed.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"finman/internal/client"
	"finman/internal/logger"
	"finman/internal/scheduler"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return 1
	}

	logger.Init(cfg.Env)
	defer logger.Sync()
	log := logger.Get()

	httpClient := &http.Client{Timeout: cfg.RequestTimeout}
	apiClient := client.NewClient(cfg.APIURL, cfg.PipelineAPIKey, httpClient)

	result, err := scheduler.New(apiClient, log).Run(context.Background())
	if err != nil {
		log.Errorw("scheduler run failed", "error", err)
		return 1
	}

	log.Infow("scheduler run completed",
		"executed", result.Executed,
		"skipped", result.Skipped,
		"failed", len(result.Failures),
		"duration", result.Duration.String(),
	)
	for _, f := range result.Failures {
		log.Warnw("recurring execution failed",
			"recurring_id", f.RecurringID,
			"user_id", f.UserID,
			"error", f.Error,
		)
	}

	if len(result.Failures) > 0 {
		return 2
	}
	return 0
}
