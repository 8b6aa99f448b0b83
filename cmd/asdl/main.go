// Command asdl compiles ASDL circuit descriptions to SPICE netlists.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"asdl/internal/cache"
	"asdl/internal/config"
	"asdl/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "asdl",
	Short: "ASDL compiler: YAML circuit descriptions to SPICE netlists",
}

var (
	timeoutCancel context.CancelFunc
	compilerCtx   *config.CompilerContext
	designCache   *cache.Store
)

func main() {
	rootCmd.Version = version.VersionString()
	rootCmd.PersistentPreRunE = setupRun
	rootCmd.PersistentPostRun = cleanupTimeout

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(elaborateCmd)
	rootCmd.AddCommand(netlistCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize diagnostics (auto|on|off)")
	rootCmd.PersistentFlags().Bool("json", false, "emit diagnostics as a flat JSON array instead of text")
	rootCmd.PersistentFlags().Int("max-diagnostics", 0, "maximum number of diagnostics to print (0 = unlimited)")
	rootCmd.PersistentFlags().Int("timeout", 30, "command timeout in seconds")
	rootCmd.PersistentFlags().Bool("cache", true, "cache compiled netlists on disk, keyed by input content hash")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCLIMisuse)
	}
}

func setupRun(cmd *cobra.Command, args []string) error {
	cctx, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	compilerCtx = cctx

	if useCache, _ := cmd.Root().PersistentFlags().GetBool("cache"); useCache {
		if store, err := cache.OpenDefault(); err == nil {
			designCache = store
		} else {
			compilerCtx.Logger.WithError(err).Debug("disabling design cache: could not open cache directory")
		}
	}

	return applyTimeout(cmd, args)
}

func applyTimeout(cmd *cobra.Command, _ []string) error {
	secs, err := cmd.Root().PersistentFlags().GetInt("timeout")
	if err != nil {
		return fmt.Errorf("failed to read timeout flag: %w", err)
	}
	if secs <= 0 {
		return fmt.Errorf("timeout must be greater than zero")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(secs)*time.Second)
	timeoutCancel = cancel
	cmd.SetContext(ctx)
	cmd.Root().SetContext(ctx)
	return nil
}

func cleanupTimeout(*cobra.Command, []string) {
	if timeoutCancel != nil {
		timeoutCancel()
		timeoutCancel = nil
	}
}
