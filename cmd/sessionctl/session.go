package main

import (
	"errors"
	"fmt"

	"github.com/aretw0/sessionlock/pkg/codec"
	"github.com/spf13/cobra"
)

var errSessionLocked = errors.New("session is locked by another holder")

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspect and operate on sessions",
	Long:  `Create, read, refresh and remove sessions stored under the configured key prefix.`,
}

var sessionCreateCmd = &cobra.Command{
	Use:   "create <session-id>",
	Short: "Create an uninitialized session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		timeout, _ := cmd.Flags().GetInt("timeout")
		rt, err := openApp(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		if err := rt.sync.CreateUninitialized(cmd.Context(), args[0], timeout); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created session '%s' (%d min)\n", args[0], timeout)
		return nil
	},
}

var sessionGetCmd = &cobra.Command{
	Use:   "get <session-id>",
	Short: "Read a session through the synchronizer",
	Long: `Reads a session. With --exclusive the session stays locked under the printed
lock_id until it is released or the holder's lock is removed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		exclusive, _ := cmd.Flags().GetBool("exclusive")
		rt, err := openApp(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		get := rt.sync.GetItem
		if exclusive {
			get = rt.sync.GetItemExclusive
		}
		res, err := get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		r, err := redactor(cmd)
		if err != nil {
			return err
		}
		return printValue(cmd, resultView(rt.sync.Key(args[0]), res, r))
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Decode the stored record without taking its lock",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openApp(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		snap, err := rt.sync.Inspect(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		r, err := redactor(cmd)
		if err != nil {
			return err
		}
		return printValue(cmd, snapshotView(snap, r))
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <session-id>...",
	Short: "Remove one or more sessions",
	Long: `Removes sessions. Without --lock-id each session is first taken exclusively,
so sessions locked by another holder are left in place.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lockID, _ := cmd.Flags().GetInt64("lock-id")
		rt, err := openApp(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		ctx := cmd.Context()
		var failed []error
		for _, id := range args {
			token := lockID
			if !cmd.Flags().Changed("lock-id") {
				res, err := rt.sync.GetItemExclusive(ctx, id)
				switch {
				case err != nil:
					failed = append(failed, fmt.Errorf("%s: %w", id, err))
					continue
				case !res.Found:
					fmt.Fprintf(cmd.OutOrStdout(), "Session '%s' not found\n", id)
					continue
				case res.Locked:
					failed = append(failed, fmt.Errorf("%s: %w (lock_id %d, held %s)", id, errSessionLocked, res.LockID, res.LockAge))
					continue
				}
				token = res.LockID
			}

			if err := rt.sync.RemoveItem(ctx, id, token); err != nil {
				failed = append(failed, fmt.Errorf("%s: %w", id, err))
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed session '%s'\n", id)
		}
		return errors.Join(failed...)
	},
}

var sessionTouchCmd = &cobra.Command{
	Use:   "touch <session-id>",
	Short: "Refresh the expiry of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		timeout, _ := cmd.Flags().GetInt("timeout")
		rt, err := openApp(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		if err := rt.sync.ResetItemTimeout(cmd.Context(), args[0], timeout); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Session '%s' expires in %d min\n", args[0], timeout)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionCreateCmd, sessionGetCmd, sessionInspectCmd, sessionRmCmd, sessionTouchCmd)

	sessionCmd.PersistentFlags().StringP("output", "o", formatAuto, "Output format (auto, json, yaml)")
	sessionCmd.PersistentFlags().StringSlice("redact", codec.DefaultRedactPatterns, "Regular expressions of item keys whose values are masked")
	sessionCmd.PersistentFlags().Bool("reveal", false, "Print item values unmasked")
	sessionCreateCmd.Flags().IntP("timeout", "t", 20, "Session timeout in minutes")
	sessionTouchCmd.Flags().IntP("timeout", "t", 20, "Session timeout in minutes")
	sessionGetCmd.Flags().BoolP("exclusive", "x", false, "Take exclusive access")
	sessionRmCmd.Flags().Int64("lock-id", 0, "Lock token the session is held under")
}
