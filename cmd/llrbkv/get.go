package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kvforge/llrbkv/pkg/kv"
)

var getCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print the value bound to a key",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	db, err := kv.Connect(dbPath(cmd))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	value, err := db.Get([]byte(args[0]))
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return fmt.Errorf("key %q not found", args[0])
		}
		return err
	}

	fmt.Println(string(value))
	return nil
}
