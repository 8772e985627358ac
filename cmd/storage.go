package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/timesheet-ledger/internal/kvstore"
)

var storageDir string

var storageCmd = &cobra.Command{
	Use:   "storage",
	Short: "Manage local storage",
}

var storageMigrateCmd = &cobra.Command{
	Use:   "migrate <backend>",
	Short: "Copy all snapshots into another backend (file or sqlite)",
	Long: `Copies the ledger, directory and report counters from the configured
backend into <backend>. Update storage.backend in config.json afterwards to
switch over. The sqlite backend receives all snapshots in one transaction.`,
	Args: cobra.ExactArgs(1),
	RunE: runStorageMigrate,
}

func init() {
	storageMigrateCmd.Flags().StringVar(&storageDir, "dir", "", "Target data directory (default: the configured one)")
	storageCmd.AddCommand(storageMigrateCmd)
}

func runStorageMigrate(cmd *cobra.Command, args []string) error {
	e := openEnv()
	defer e.close()

	target := args[0]
	dir := storageDir
	if dir == "" {
		dir = e.cfg.DataDir(e.base)
	}
	if target == e.cfg.Storage.Backend && dir == e.cfg.DataDir(e.base) {
		fail(1, fmt.Errorf("storage is already %s in %s", target, dir))
	}

	dst, err := kvstore.Open(target, dir)
	if err != nil {
		fail(1, err)
	}
	defer closeStore(dst)

	n, err := kvstore.Copy(dst, e.store, kvstore.KeyEntries, kvstore.KeyCustomer, kvstore.KeyCounters)
	if err != nil {
		fail(2, err)
	}
	fmt.Printf("Copied %d snapshots to %s storage in %s\n", n, target, dir)
	return nil
}
