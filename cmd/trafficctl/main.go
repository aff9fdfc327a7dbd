// Command trafficctl builds the traffic volume dataset offline and prints,
// queries or exports it without starting the dashboard.
//
// Usage:
//
//	trafficctl summary --data Automated_Traffic_Volume_Counts.csv
//	trafficctl cells --year 2019 --hour 8 --json
//	trafficctl export --out cells.parquet
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
