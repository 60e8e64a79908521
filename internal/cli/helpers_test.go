package cli

import (
	"testing"

	"github.com/spf13/cobra"
)

// clearConnectionEnv unsets every variable the connection resolver reads.
func clearConnectionEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"PGHOST", "PGPORT", "PGUSER", "PGPASSWORD", "PGDATABASE", "PGSSLMODE",
		"DATABASE_URL", "SHP2PG_CONNECTION_STRING",
		"AZURE_TENANT_ID", "AZURE_CLIENT_ID", "AZURE_CLIENT_SECRET", "AWS_REGION",
		"NO_COLOR", "CI",
	} {
		t.Setenv(name, "")
	}
}

// newTestLoadCmd returns a load command with its own flag values, parsed from args.
func newTestLoadCmd(t *testing.T, args ...string) (*cobra.Command, *loadFlagValues) {
	t.Helper()
	cmd := &cobra.Command{Use: "load <root_dir>"}
	cmd.Flags().BoolP("verbose", "v", false, "")
	var f loadFlagValues
	registerLoadFlags(cmd, &f)
	if err := cmd.Flags().Parse(args); err != nil {
		t.Fatalf("Parse(%v) error = %v", args, err)
	}
	return cmd, &f
}
