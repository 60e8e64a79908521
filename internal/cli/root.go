package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "shp2pg",
	Short: "Load a directory tree of shapefiles into PostGIS",
	Long: `shp2pg walks a directory tree, finds every shapefile and loads each one
into its own PostGIS table, keeping the file's native spatial reference.

Tables are named after the file and fully replaced on every run. A file that
fails to load never stops the others; the run ends with a report of what
succeeded and what failed.

Exit Codes:
  0  - Run completed and a report was produced (even with failed files)
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration
  11 - Database unreachable, credentials rejected or PostGIS missing
  12 - Root directory not found
  13 - Run interrupted before every file was processed
  14 - At least one file failed and --fail-on-error was set`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo()
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().Bool("help", false, "Help for shp2pg")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}
