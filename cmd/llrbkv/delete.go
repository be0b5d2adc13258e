package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kvforge/llrbkv/pkg/kv"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <key>",
	Short: "Remove a key",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	deleteCmd.Flags().Bool("commit", false, "Publish the delete immediately")
}

func runDelete(cmd *cobra.Command, args []string) error {
	db, err := kv.Connect(dbPath(cmd))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Delete([]byte(args[0])); err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return fmt.Errorf("key %q not found", args[0])
		}
		return fmt.Errorf("delete %q: %w", args[0], err)
	}

	commit, _ := cmd.Flags().GetBool("commit")
	if commit {
		if err := db.Commit(); err != nil {
			return fmt.Errorf("commit: %w", err)
		}
		fmt.Printf("✓ deleted %s (committed)\n", args[0])
	} else {
		fmt.Printf("✓ deleted %s (uncommitted)\n", args[0])
	}
	return nil
}
