package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/timesheet-ledger/internal/remote"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Submit every customer to the configured customer service",
	Args:  cobra.NoArgs,
	RunE:  runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	e := openEnv()
	defer e.close()

	rc := e.cfg.Remote
	if rc.Endpoint == "" {
		fail(1, fmt.Errorf("no remote endpoint configured; set remote.endpoint in %s/config.json", e.base))
	}

	ctx := context.Background()
	client, err := remote.NewClient(ctx, remote.Options{
		Endpoint:     rc.Endpoint,
		TokenURL:     rc.TokenURL,
		ClientID:     rc.ClientID,
		ClientSecret: rc.ClientSecret,
		Scopes:       rc.Scopes,
		Timeout:      rc.Timeout(),
	})
	if err != nil {
		fail(2, err)
	}

	customers := e.sess.Customers()
	fmt.Printf("Syncing %d customers to %s...\n", len(customers), rc.Endpoint)
	fmt.Println()

	result := e.sess.SyncCustomers(ctx, client)
	for _, f := range result.Failures {
		fmt.Printf("  ! %s: %v\n", f.Customer, f.Err)
	}

	fmt.Println()
	fmt.Println("Summary:")
	fmt.Printf("  %d succeeded\n", result.Succeeded)
	if result.Failed > 0 {
		fmt.Printf("  %d failed\n", result.Failed)
		os.Exit(2)
	}
	return nil
}
