package commands

import (
	"github.com/spf13/cobra"

	"github.com/spetersoncode/chatter/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the file tools over MCP stdio",
	Long: `Expose the guarded file tools as an MCP server on stdin/stdout.
Path permissions from the agent configuration apply to every call.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		guard, err := buildGuard(cfg)
		if err != nil {
			return err
		}
		guard.SetEnabled(true)
		registry, _, err := buildRegistry(cfg, guard)
		if err != nil {
			return err
		}
		return mcp.ServeStdio(registry,
			mcp.WithName("chatter-tools"),
			mcp.WithVersion(Version),
		)
	},
}
