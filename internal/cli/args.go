package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RequireRootDir validates that exactly one root directory argument is provided.
func RequireRootDir(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf(`missing required argument: <root_dir>

Usage: %s

Example:
  %s ./data -d gis`, cmd.UseLine(), cmd.CommandPath())
	}
	if len(args) > 1 {
		return fmt.Errorf("accepts 1 arg(s), received %d", len(args))
	}
	return nil
}
