package main

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Faultbox/palshade/internal/logger"
	"github.com/Faultbox/palshade/pkg/grf"
)

var grfCmd = &cobra.Command{
	Use:   "grf",
	Short: "Browse GRF archives for palettes and sprites",
	Long: `GRF archives hold the game's sprites and palettes. Any archive can also be
used as an asset source with --grf.

Subcommands:
  list    - List files, optionally filtered by a base name pattern
  extract - Copy matching files out of an archive`,
}

var grfListCmd = &cobra.Command{
	Use:   "list <file.grf> [pattern]",
	Short: "List archive files",
	Example: `  paltool grf list data.grf "*.pal"
  paltool grf list data.grf -n 20`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runGRFList,
}

var grfExtractCmd = &cobra.Command{
	Use:     "extract <file.grf> <pattern>",
	Short:   "Extract files whose base name matches pattern",
	Example: `  paltool grf extract data.grf "poring*.pal" -o palettes`,
	Args:    cobra.ExactArgs(2),
	RunE:    runGRFExtract,
}

var (
	listLimit  int
	extractOut string
)

func init() {
	grfListCmd.Flags().IntVarP(&listLimit, "limit", "n", 0, "limit output to N files (0 = all)")
	grfExtractCmd.Flags().StringVarP(&extractOut, "out", "o", ".", "output directory")

	grfCmd.AddCommand(grfListCmd, grfExtractCmd)
}

func runGRFList(cmd *cobra.Command, args []string) error {
	archive, err := grf.Open(args[0])
	if err != nil {
		return err
	}
	defer archive.Close()

	files := archive.List()
	if len(args) > 1 {
		files = archive.Glob(args[1])
	}

	out := cmd.OutOrStdout()
	for i, f := range files {
		if listLimit > 0 && i >= listLimit {
			break
		}
		fmt.Fprintln(out, f)
	}
	logger.Debug("listed archive", zap.String("path", args[0]), zap.Int("files", len(files)))
	return nil
}

func runGRFExtract(cmd *cobra.Command, args []string) error {
	archive, err := grf.Open(args[0])
	if err != nil {
		return err
	}
	defer archive.Close()

	files := archive.Glob(args[1])
	if len(files) == 0 {
		return fmt.Errorf("%w: no files match %q", grf.ErrNotFound, args[1])
	}
	if err := os.MkdirAll(extractOut, 0755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	// Extracted files are flattened; later duplicates of a base name win.
	sort.Strings(files)
	extracted := 0
	for _, f := range files {
		data, err := archive.Read(f)
		if err != nil {
			logger.Warn("skipping archive file", zap.String("file", f), zap.Error(err))
			continue
		}
		dst := filepath.Join(extractOut, path.Base(f))
		if err := os.WriteFile(dst, data, 0644); err != nil {
			return fmt.Errorf("writing %s: %w", dst, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", f, dst)
		extracted++
	}
	if extracted == 0 {
		return fmt.Errorf("no readable files match %q", args[1])
	}
	return nil
}
