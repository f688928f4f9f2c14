package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/closer/internal/app"
	"github.com/MrJamesThe3rd/closer/internal/auth"
	"github.com/MrJamesThe3rd/closer/internal/backup"
	"github.com/MrJamesThe3rd/closer/internal/backup/s3"
	"github.com/MrJamesThe3rd/closer/internal/config"
)

func init() {
	rootCmd.AddCommand(backupCmd)
	backupCmd.AddCommand(backupCreateCmd)
	backupCmd.AddCommand(backupListCmd)
	backupCmd.AddCommand(backupRestoreCmd)

	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().String("subject", "agent", "Subject recorded in the token")
	tokenCmd.Flags().Duration("ttl", 30*24*time.Hour, "Token lifetime")
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Manage snapshots in the backup bucket",
}

var backupCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Upload a snapshot of every record and the settings",
	Args:  cobra.NoArgs,
	RunE: withBackups(func(cmd *cobra.Command, _ []string, svc *backup.Service) error {
		key, err := svc.Backup(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), key)

		return nil
	}),
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List snapshots, newest first",
	Args:  cobra.NoArgs,
	RunE: withBackups(func(cmd *cobra.Command, _ []string, svc *backup.Service) error {
		keys, err := svc.List(cmd.Context())
		if err != nil {
			return err
		}

		for _, k := range keys {
			fmt.Fprintln(cmd.OutOrStdout(), k)
		}

		return nil
	}),
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore KEY",
	Short: "Replace every record and the settings with a snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: withBackups(func(cmd *cobra.Command, args []string, svc *backup.Service) error {
		if err := svc.Restore(cmd.Context(), args[0]); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Restored %s\n", args[0])

		return nil
	}),
}

func withBackups(fn func(cmd *cobra.Command, args []string, svc *backup.Service) error) func(*cobra.Command, []string) error {
	return runWithApp(func(cmd *cobra.Command, args []string, a *app.App) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		if !cfg.BackupsEnabled() {
			return errors.New("BACKUP_S3_BUCKET is not set")
		}

		store, err := s3.New(cmd.Context(), s3.Config{
			Bucket:          cfg.Backup.Bucket,
			Region:          cfg.Backup.Region,
			Endpoint:        cfg.Backup.Endpoint,
			AccessKeyID:     cfg.Backup.AccessKeyID,
			SecretAccessKey: cfg.Backup.SecretAccessKey,
			PathStyle:       cfg.Backup.PathStyle,
		})
		if err != nil {
			return err
		}

		return fn(cmd, args, backup.NewService(store, a.Tracker, a.Settings, time.Now))
	})
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an API bearer token signed with AUTH_SECRET",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		if cfg.Auth.Secret == "" {
			return errors.New("AUTH_SECRET is not set")
		}

		a, err := auth.New(cfg.Auth.Secret, time.Now)
		if err != nil {
			return err
		}

		subject, _ := cmd.Flags().GetString("subject")
		ttl, _ := cmd.Flags().GetDuration("ttl")

		token, err := a.Issue(subject, ttl)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), token)

		return nil
	},
}
