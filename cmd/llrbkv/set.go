package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kvforge/llrbkv/pkg/kv"
)

var setCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Bind a key to a value",
	Args:  cobra.ExactArgs(2),
	RunE:  runSet,
}

func init() {
	setCmd.Flags().Bool("commit", false, "Publish the write immediately")
}

func runSet(cmd *cobra.Command, args []string) error {
	db, err := kv.Connect(dbPath(cmd))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Set([]byte(args[0]), []byte(args[1])); err != nil {
		return fmt.Errorf("set %q: %w", args[0], err)
	}

	commit, _ := cmd.Flags().GetBool("commit")
	if commit {
		if err := db.Commit(); err != nil {
			return fmt.Errorf("commit: %w", err)
		}
		fmt.Printf("✓ %s=%s (committed)\n", args[0], args[1])
	} else {
		fmt.Printf("✓ %s=%s (uncommitted)\n", args[0], args[1])
	}
	return nil
}
