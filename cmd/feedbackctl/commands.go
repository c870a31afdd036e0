package main

import (
	"context"
	"fmt"
	"time"

	"github.com/raushankrgupta/club-feedback/logger"
	"github.com/raushankrgupta/club-feedback/store"
	"github.com/raushankrgupta/club-feedback/utils"
	"github.com/spf13/cobra"
)

func newProvisionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "provision",
		Short: "Create the feedback collection, its schema validator and access roles",
		Long: "Creates the feedback collection with a $jsonSchema validator, the feedback_submitter\n" +
			"(insert only) and feedback_admin (read, update, delete) roles, and the created_at index.\n" +
			"Run once with an admin-scoped MONGO_URI before the first deployment.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			s, err := store.Connect(ctx, cfg.MongoURI, cfg.DBName, cfg.CollectionName)
			if err != nil {
				return err
			}
			defer s.Close(context.Background())

			if err := s.Ping(ctx); err != nil {
				return err
			}
			return store.Provision(ctx, s.Client().Database(cfg.DBName), cfg.CollectionName, logger.GetLogger())
		},
	}
}

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Upload every stored entry to S3 as JSON and print a presigned link",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			s, err := store.Connect(ctx, cfg.MongoURI, cfg.DBName, cfg.CollectionName)
			if err != nil {
				return err
			}
			defer s.Close(context.Background())

			entries, err := s.ListFeedback(ctx, 0)
			if err != nil {
				return err
			}

			exporter, err := utils.NewExporter(ctx, cfg.AWSRegion, cfg.AWSBucketName)
			if err != nil {
				return err
			}

			key := utils.ExportKey(time.Now())
			url, err := exporter.Export(ctx, key, entries)
			if err != nil {
				return err
			}

			logger.GetLogger().Infow("Export uploaded", "entries", len(entries), "key", key)
			fmt.Fprintln(cmd.OutOrStdout(), url)
			return nil
		},
	}
}

func newTokenCmd() *cobra.Command {
	var subject string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an admin token for the /admin/feedback endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := utils.GenerateAdminToken(cfg.JWTSecret, subject, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "admin", "subject claim of the token")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "how long the token stays valid")
	return cmd
}
