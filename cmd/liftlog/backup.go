package main

import (
	"fmt"
	"os"
	"time"

	"github.com/liftlog/liftlog/internal/backup"
	"github.com/spf13/cobra"
)

const passwordEnv = "LIFTLOG_BACKUP_PASSWORD"

func backupPassword(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if v := os.Getenv(passwordEnv); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("a backup password is required (--password or %s)", passwordEnv)
}

func newBackupCmd(a *app) *cobra.Command {
	var output, password string
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write an encrypted backup of all data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := backupPassword(password)
			if err != nil {
				return err
			}
			data, err := backup.Create(cmd.Context(), a.db, pw)
			if err != nil {
				return err
			}

			path := output
			if path == "" {
				path, err = backup.WriteFile(a.cfg.Backup.Dir, data, time.Now())
			} else {
				err = os.WriteFile(path, data, 0o600)
			}
			if err != nil {
				return fmt.Errorf("writing backup: %w", err)
			}
			a.log.Info("backup written", "path", path, "bytes", len(data))
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "backup file (default: dated file in backup.dir)")
	cmd.Flags().StringVar(&password, "password", "", "encryption password (or "+passwordEnv+")")
	return cmd
}

func newRestoreCmd(a *app) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "restore FILE",
		Short: "Replace all data with the contents of a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := backupPassword(password)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			if err := backup.Restore(cmd.Context(), a.db, data, pw); err != nil {
				return fmt.Errorf("restoring %s: %w", args[0], err)
			}
			a.log.Info("backup restored", "path", args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "restored %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "encryption password (or "+passwordEnv+")")
	return cmd
}
