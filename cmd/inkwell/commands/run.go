package commands

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/inkwell-ai/inkwell/internal/session"
	"github.com/inkwell-ai/inkwell/internal/tool"
	"github.com/inkwell-ai/inkwell/pkg/types"
)

var (
	runSession   string
	runConfirmed bool
)

var runCmd = &cobra.Command{
	Use:   "run <tool> [json-input]",
	Short: "Run one tool call through the execution engine",
	Long: `Run a single tool call with the full gate sequence: capability
check, confirmation check and loop detection all apply, exactly as they
would for a model-initiated call.

Examples:
  inkwell run list_notes
  inkwell run read_note '{"path":"projects/plan.md"}'
  inkwell run delete_note '{"path":"old.md"}' --confirmed`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, v, err := setup()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		store := session.NewStore(v, cfg)
		engine := tool.NewEngine(v, cfg, tool.DefaultRegistry())
		engine.SetRecorder(store)

		var sess *types.ChatSession
		if runSession != "" {
			sess, err = store.FindSession(ctx, runSession)
			if err != nil {
				return err
			}
		} else {
			sess = store.CreateSession(ctx, types.AgentSession, "", nil)
		}

		input := json.RawMessage(`{}`)
		if len(args) == 2 {
			input = json.RawMessage(args[1])
		}

		outcome := engine.Invoke(ctx, sess, tool.Call{
			Tool:      args[0],
			Input:     input,
			Confirmed: runConfirmed,
		})

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(outcome); err != nil {
			return err
		}
		if outcome.Status != tool.StatusSucceeded {
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVarP(&runSession, "session", "s", "", "Session ID to run the call in")
	runCmd.Flags().BoolVar(&runConfirmed, "confirmed", false, "Mark the call as already confirmed")
}
