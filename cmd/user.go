package cmd

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"stock-journal/database"
	"stock-journal/models"
	"stock-journal/report"
	"stock-journal/session"
)

func NewUserCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage journal users",
	}
	cmd.AddCommand(newUserDeleteCommand())
	return cmd
}

func newUserDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete USERNAME",
		Short: "Delete a user together with all of their trades and reflections",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, closeDB, err := openStore(cmd, cfg)
			if err != nil {
				return err
			}
			defer closeDB()

			cache, registry, closeShared, err := openShared(cmd, cfg)
			if err != nil {
				return err
			}
			defer closeShared()

			u, err := deleteUser(cmd.Context(), store, cache, registry, args[0])
			if err != nil {
				return err
			}
			log.WithFields(log.Fields{"username": u.Username, "user_id": u.ID}).Info("user deleted")
			return nil
		},
	}
}

// deleteUser removes the user and everything they own, then ends their
// sessions and drops their cached reports. cache and registry may be nil.
func deleteUser(ctx context.Context, store *database.Store, cache report.Cache, registry session.Registry, username string) (*models.User, error) {
	u, err := store.FindUserByName(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("user %q: %w", username, err)
	}
	if err := store.DeleteUser(ctx, u.ID); err != nil {
		return nil, err
	}

	fields := log.Fields{"user_id": u.ID}
	if registry != nil {
		if err := registry.DeleteUser(ctx, u.ID); err != nil {
			log.WithFields(fields).WithError(err).Warn("failed to end sessions of deleted user")
		}
	}
	if cache != nil {
		if err := cache.Invalidate(ctx, u.ID); err != nil {
			log.WithFields(fields).WithError(err).Warn("report cache invalidation failed")
		}
	}
	return u, nil
}
