package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"adept/internal/generation"
)

func newProjectCmd(opts *options) *cobra.Command {
	projectCmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}

	var description string
	createCmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a project",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(func(ctx context.Context, a *app) error {
				p, err := a.store.CreateProject(ctx, strings.Join(args, " "), description)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created project %s: %s\n", p.ID, p.Name)
				return nil
			})
		},
	}
	createCmd.Flags().StringVarP(&description, "description", "d", "", "Project description")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(func(ctx context.Context, a *app) error {
				projects, err := a.store.ListProjects(ctx)
				if err != nil {
					return err
				}
				if len(projects) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No projects.")
				}
				for _, p := range projects {
					fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", p.ID, p.Name)
				}
				return nil
			})
		},
	}

	projectCmd.AddCommand(createCmd, listCmd)
	return projectCmd
}

func newTasksCmd(opts *options) *cobra.Command {
	tasksCmd := &cobra.Command{
		Use:   "tasks",
		Short: "List, generate and assign tasks",
	}

	var search string
	listCmd := &cobra.Command{
		Use:   "list <project-id>",
		Short: "List the tasks of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(func(ctx context.Context, a *app) error {
				if _, err := a.store.GetProject(ctx, args[0]); err != nil {
					return err
				}
				tasks, err := a.store.ListTasks(ctx, args[0], search)
				if err != nil {
					return err
				}
				printTasks(cmd.OutOrStdout(), tasks)
				return nil
			})
		},
	}
	listCmd.Flags().StringVarP(&search, "search", "s", "", "Only tasks whose title or description contains this text")

	var assignee, due string
	generateCmd := &cobra.Command{
		Use:   "generate <project-id> <objective>",
		Short: "Generate tasks for an objective",
		Long: `Asks the configured model to break the objective into tasks.
The tasks are saved to the project and indexed so later prompts can see them.

Example:
  adept tasks generate 3f2c... "Launch the marketing site" --due 2026-03-01T00:00:00Z`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var dueDate *time.Time
			if due != "" {
				d, err := time.Parse(time.RFC3339, due)
				if err != nil {
					return fmt.Errorf("--due must be RFC 3339: %w", err)
				}
				dueDate = &d
			}

			return opts.withApp(func(ctx context.Context, a *app) error {
				if _, err := a.store.GetProject(ctx, args[0]); err != nil {
					return err
				}
				tasks, err := a.orch.GenerateTasks(ctx, generation.TaskRequest{
					ProjectID:  args[0],
					Objective:  strings.Join(args[1:], " "),
					AssigneeID: assignee,
					DueDate:    dueDate,
				})
				if err != nil {
					return err
				}
				a.orch.IngestTasks(ctx, tasks)
				printTasks(cmd.OutOrStdout(), tasks)
				return nil
			})
		},
	}
	generateCmd.Flags().StringVar(&assignee, "assignee", "", "Assign every generated task to this user")
	generateCmd.Flags().StringVar(&due, "due", "", "Due date for every generated task (RFC 3339)")

	assignCmd := &cobra.Command{
		Use:   "assign <project-id> <task-id> [user-id]",
		Short: "Assign a task to a user (no user unassigns)",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			user := ""
			if len(args) == 3 {
				user = args[2]
			}
			return opts.withApp(func(ctx context.Context, a *app) error {
				if err := a.store.AssignTask(ctx, args[0], args[1], user); err != nil {
					return err
				}
				if user == "" {
					fmt.Fprintf(cmd.OutOrStdout(), "Unassigned %s\n", args[1])
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Assigned %s to %s\n", args[1], user)
				}
				return nil
			})
		},
	}

	tasksCmd.AddCommand(listCmd, generateCmd, assignCmd)
	return tasksCmd
}

func newSubtasksCmd(opts *options) *cobra.Command {
	subtasksCmd := &cobra.Command{
		Use:   "subtasks",
		Short: "List and generate subtasks",
	}

	listCmd := &cobra.Command{
		Use:   "list <project-id> <task-id>",
		Short: "List the subtasks of a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(func(ctx context.Context, a *app) error {
				if _, err := a.store.GetTask(ctx, args[0], args[1]); err != nil {
					return err
				}
				subtasks, err := a.store.ListSubtasks(ctx, args[1])
				if err != nil {
					return err
				}
				printSubtasks(cmd.OutOrStdout(), subtasks)
				return nil
			})
		},
	}

	generateCmd := &cobra.Command{
		Use:   "generate <project-id> <task-id> <objective>",
		Short: "Generate subtasks of an existing task",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(func(ctx context.Context, a *app) error {
				parent, err := a.store.GetTask(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				subtasks, err := a.orch.GenerateSubtasks(ctx, generation.SubtaskRequest{
					ProjectID: args[0],
					Parent: generation.ParentTask{
						ID:          parent.ID,
						Title:       parent.Title,
						Description: parent.Description,
					},
					Objective: strings.Join(args[2:], " "),
				})
				if err != nil {
					return err
				}
				a.orch.IngestSubtasks(ctx, args[0], subtasks)
				printSubtasks(cmd.OutOrStdout(), subtasks)
				return nil
			})
		},
	}

	subtasksCmd.AddCommand(listCmd, generateCmd)
	return subtasksCmd
}
