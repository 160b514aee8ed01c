package cli

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/corpus-cli/internal/adapters/driving/mcp"
)

var versionShort bool

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Show build information",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipServicesAnnotation: "true"},
	Run: func(cmd *cobra.Command, _ []string) {
		if versionShort {
			cmd.Println(version)
			return
		}
		cmd.Printf("corpus version %s\n", version)
		cmd.Printf("  go:  %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		cmd.Printf("  mcp: %s\n", mcp.Version)
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "print only the version string")
	rootCmd.AddCommand(versionCmd)
}
