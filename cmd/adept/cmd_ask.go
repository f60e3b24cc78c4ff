package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newSummarizeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "summarize <project-id>",
		Short: "Summarize a project's progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(func(ctx context.Context, a *app) error {
				snapshot, err := a.store.Snapshot(ctx, args[0])
				if err != nil {
					return err
				}
				summary, err := a.orch.SummarizeProject(ctx, snapshot)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderMarkdown(summary, opts.raw))
				return nil
			})
		},
	}
}

func newAskCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <project-id> <question>",
		Short: "Ask a question about a project",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(func(ctx context.Context, a *app) error {
				snapshot, err := a.store.Snapshot(ctx, args[0])
				if err != nil {
					return err
				}
				answer, err := a.orch.AnswerQuestion(ctx, snapshot, strings.Join(args[1:], " "))
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderMarkdown(answer, opts.raw))
				return nil
			})
		},
	}
}
