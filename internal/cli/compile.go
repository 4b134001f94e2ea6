package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cathedral-dev/codexc/internal/bundle"
	"github.com/cathedral-dev/codexc/internal/canon"
	"github.com/cathedral-dev/codexc/internal/config"
	"github.com/cathedral-dev/codexc/internal/fileutil"
	"github.com/cathedral-dev/codexc/internal/source"
)

func RunCompile(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	res, err := assemble(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}

	summary, err := bundle.WriteOutputs(cfg, res)
	if err != nil {
		return err
	}

	if OptionalBoolFlag(cmd, "json") {
		return fileutil.PrintJSON(summary)
	}

	fmt.Printf("codex compiled: %d nodes, %d spine entries, %d halls, %d flow steps\n",
		summary.Nodes, summary.Spine, summary.Halls, summary.FlowSteps)
	if len(summary.Written) == 0 {
		fmt.Println("outputs unchanged")
	} else {
		fmt.Printf("wrote %s\n", strings.Join(summary.Written, ", "))
	}
	if summary.Placeholders > 0 {
		fmt.Printf("%d placeholder reference(s) created under %s\n", summary.Placeholders, cfg.ReferencesDir)
	}
	fmt.Printf("sync event %s queued\n", summary.EventID)
	return nil
}

func RunValidate(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	res, err := assemble(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}

	b := res.Bundle
	fmt.Printf("bundle valid: %d nodes, %d spine entries, %d halls, %d flow steps\n",
		len(b.Nodes), len(b.Spine), len(b.Halls), len(b.Flow))
	return nil
}

func RunIDs(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	res, err := assemble(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	return fileutil.PrintJSON(bundle.Registry(res.Bundle))
}

// assemble runs everything a compile does short of writing: load, merge,
// allocate, validate. Every invariant failure surfaces here, before any
// output file is touched.
func assemble(ctx context.Context, cfg config.Config, log *zap.SugaredLogger) (*bundle.Result, error) {
	in, err := source.Load(ctx, cfg)
	if err != nil {
		return nil, err
	}
	log.Debugw("sources loaded",
		"nodes", len(in.Nodes),
		"spine", len(in.Spine),
	)

	res, err := bundle.Assemble(in, canon.NewContext(), time.Now().UTC())
	if err != nil {
		return nil, err
	}
	for _, alloc := range res.Allocations {
		log.Infow("sandbox id allocated", "id", alloc.ID, "name", alloc.Name)
	}
	for _, ref := range res.PendingRefs {
		log.Debugw("pending reference", "ref", ref)
	}

	if err := bundle.Validate(res.Bundle); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return res, nil
}
