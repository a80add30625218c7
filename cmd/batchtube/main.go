// Package main is the entrypoint of batchtube.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"batchtube/internal/cfg"
	"batchtube/internal/data/database"
	"batchtube/internal/data/repo"
	"batchtube/internal/domain/paths"
	"batchtube/internal/utils/logging"
)

// init runs before the program begins.
func init() {
	if err := paths.InitProgFilesDirs(); err != nil {
		fmt.Printf("batchtube exiting with error: %v\n", err)
		os.Exit(1)
	}
}

// main is the main entrypoint of the program (duh!).
func main() {
	startTime := time.Now()

	if err := logging.SetupLogging(paths.LogFilePath); err != nil {
		fmt.Printf("Notice: log file was not created: %v\n", err)
	}
	defer logging.Close()

	db, err := database.InitDB(paths.DBFilePath)
	if err != nil {
		logging.E("Error initializing batchtube database: %v", err)
		os.Exit(1)
	}
	defer db.Close()

	store := repo.GetHistoryStore(db.DB)

	// Cancellable context for shutdown.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT)
	defer cancel()

	logging.D(1, "batchtube (PID: %d) started at: %v",
		os.Getpid(), startTime.Format("2006-01-02 15:04:05.00 MST"))

	if err := cfg.InitCommands(ctx, store); err != nil {
		logging.E("Error: %v", err)
		os.Exit(1)
	}

	if err := cfg.Execute(ctx); err != nil {
		logging.E("Error: %v", err)
		cancel()
		os.Exit(1)
	}

	logging.D(1, "batchtube finished in %s", time.Since(startTime).Round(time.Millisecond))
}
