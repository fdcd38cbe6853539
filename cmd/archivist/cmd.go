package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/archivista/archivist"
)

func newCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "archivist",
		Short:        "Knowledge ingestion and retrieval service",
		SilenceUsage: true,
	}

	cmd.AddCommand(
		newIngestCmd(),
		newAskCmd(),
	)

	return cmd
}

func newIngestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <dir-or-url-list> [...<dir-or-url-list>]",
		Short: "Ingest directory trees and URL list files into the knowledge base",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			app, err := archivist.NewArchivist(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			for _, arg := range args {
				stat, err := os.Stat(arg)
				if os.IsNotExist(err) {
					return errors.Wrapf(err, "%s does not exist", arg)
				} else if err != nil {
					return errors.WithStack(err)
				}

				if stat.IsDir() {
					if err := app.IngestDirectory(ctx, arg); err != nil {
						return err
					}
					continue
				}

				if strings.HasSuffix(filepath.Base(arg), "url.txt") {
					content, err := os.ReadFile(arg)
					if err != nil {
						return errors.Wrapf(err, "failed to read url list %s", arg)
					}
					queued := app.IngestURLList(string(content))
					fmt.Fprintf(cmd.OutOrStdout(), "queued %d urls from %s\n", queued, arg)
					continue
				}

				if err := app.IngestFile(ctx, arg); err != nil {
					return err
				}
			}

			// Close drains the lanes, so queued work finishes before exit.
			return nil
		},
	}
}

func newAskCmd() *cobra.Command {
	params := &struct {
		UserID  string
		Timeout time.Duration
	}{}

	cmd := &cobra.Command{
		Use:   "ask <query...>",
		Short: "Query the knowledge base",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			app, err := archivist.NewArchivist(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			queryCtx := ctx
			if params.Timeout > 0 {
				var cancelQuery context.CancelFunc
				queryCtx, cancelQuery = context.WithTimeout(ctx, params.Timeout)
				defer cancelQuery()
			}

			answer, err := app.Answer(queryCtx, params.UserID, strings.Join(args, " "))
			if err != nil {
				return err
			}
			if answer == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "no answer")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), answer)

			return nil
		},
	}

	cmd.Flags().StringVar(&params.UserID, "user", "cli", "user id for context-aware retrieval")
	cmd.Flags().DurationVar(&params.Timeout, "timeout", 30*time.Second, "query timeout")

	return cmd
}
