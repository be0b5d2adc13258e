package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kvforge/llrbkv/pkg/kv"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print database size and tree depth",
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	db, err := kv.Connect(dbPath(cmd))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	stats := db.Stats()
	fmt.Printf("file size: %d bytes\n", stats.FileSizeBytes)
	fmt.Printf("tree depth: %d\n", stats.TreeDepth)

	rootKey, err := db.RootKey()
	switch {
	case err == nil:
		fmt.Printf("root key: %s\n", rootKey)
	case errors.Is(err, kv.ErrEmpty):
		fmt.Println("root key: (empty tree)")
	default:
		return err
	}
	return nil
}
