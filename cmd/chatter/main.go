// Command chatter is an interactive terminal client for LLM chat with
// permission-guarded file tools.
package main

import (
	"os"

	"github.com/spetersoncode/chatter/cmd/chatter/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
