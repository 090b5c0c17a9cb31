package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/inkwell-ai/inkwell/internal/tool"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the built-in tool catalog",
	Run: func(cmd *cobra.Command, args []string) {
		for _, t := range tool.DefaultRegistry().List() {
			confirm := ""
			if t.RequiresConfirmation() {
				confirm = " (requires confirmation)"
			}
			summary := strings.SplitN(t.Description(), "\n", 2)[0]
			fmt.Printf("%-14s %-13s %s%s\n", t.Name(), t.Category(), summary, confirm)
		}
	},
}
