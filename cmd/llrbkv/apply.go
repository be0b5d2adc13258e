package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kvforge/llrbkv/pkg/kv"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply a batch of sets and deletes from a YAML file",
	Long: `Apply reads a YAML document describing a batch of writes and applies
them to the database in order, committing once at the end.

Example:

  ops:
    - op: set
      key: rahul
      value: aged
    - op: set
      key: pavlos
      value: aged
    - op: delete
      key: kobe
`,
	RunE: runApply,
}

func init() {
	applyCmd.Flags().StringP("file", "f", "", "YAML file describing the batch (required)")
	_ = applyCmd.MarkFlagRequired("file")
}

// batchFile is the shape of an apply YAML document: an ordered list of
// set/delete operations applied in one uncommitted batch, then committed
// together.
type batchFile struct {
	Ops []batchOp `yaml:"ops"`
}

type batchOp struct {
	Op    string `yaml:"op"`
	Key   string `yaml:"key"`
	Value string `yaml:"value,omitempty"`
}

func runApply(cmd *cobra.Command, args []string) error {
	filename, _ := cmd.Flags().GetString("file")

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("read %s: %w", filename, err)
	}

	var batch batchFile
	if err := yaml.Unmarshal(data, &batch); err != nil {
		return fmt.Errorf("parse %s: %w", filename, err)
	}

	db, err := kv.Connect(dbPath(cmd))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	for i, op := range batch.Ops {
		if err := applyOp(db, op); err != nil {
			return fmt.Errorf("op %d (%s %s): %w", i, op.Op, op.Key, err)
		}
	}

	if err := db.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	fmt.Printf("✓ applied %d operations\n", len(batch.Ops))
	return nil
}

func applyOp(db *kv.DB, op batchOp) error {
	switch op.Op {
	case "set":
		return db.Set([]byte(op.Key), []byte(op.Value))
	case "delete":
		return db.Delete([]byte(op.Key))
	default:
		return fmt.Errorf("unsupported op %q (want set or delete)", op.Op)
	}
}
