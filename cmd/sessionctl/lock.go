package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var lockCmd = &cobra.Command{
	Use:   "lock",
	Short: "Inspect and break session claim keys",
}

var lockStatusCmd = &cobra.Command{
	Use:   "status <session-id>...",
	Short: "Show whether the claim key of each session is held",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openApp(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		for _, id := range args {
			st, err := rt.sync.LockStatus(cmd.Context(), id)
			if err != nil {
				return err
			}
			if st.Held {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s (expires in %s)\n", st.Key, status("held", false), st.TTL)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", st.Key, status("free", true))
			}
		}
		return nil
	},
}

var lockBreakCmd = &cobra.Command{
	Use:   "break <session-id>",
	Short: "Delete a stuck claim key",
	Long: `Deletes the claim key of a session regardless of who holds it. The holder's
critical section is no longer exclusive afterwards; use only for crashed holders
whose hold timeout is too long to wait out.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openApp(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		if err := rt.sync.BreakLock(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Broke lock of session '%s'\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lockCmd)
	lockCmd.AddCommand(lockStatusCmd, lockBreakCmd)
}
