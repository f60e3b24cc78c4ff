package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"adept/internal/retrieval"
)

func newIngestCmd(opts *options) *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "ingest <file>...",
		Short: "Add documents to the retrieval index",
		Long: `Reads each file and adds it to the retrieval index. HTML files are reduced
to their visible text. The file path is the document id, so ingesting a
file again replaces it.

With --watch the files (or directories) are watched and re-ingested on
every change until interrupted. Watching only makes sense with the
sqlite retrieval index, since the memory index lives as long as the process.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !watch {
				return opts.withApp(func(ctx context.Context, a *app) error {
					return ingestFiles(ctx, cmd, a, args)
				})
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, opts.cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := ingestFiles(ctx, cmd, a, filesOnly(args)); err != nil {
				return err
			}

			w, err := retrieval.NewWatcher(a.orch.IngestDocument, args...)
			if err != nil {
				return fmt.Errorf("watch: %w", err)
			}
			w.Start(ctx)
			fmt.Fprintln(cmd.OutOrStdout(), "Watching for changes (Ctrl+C to stop)...")
			<-ctx.Done()
			w.Stop()
			fmt.Fprintf(cmd.OutOrStdout(), "Re-ingested %d files.\n", w.Ingested())
			return nil
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Re-ingest files when they change")
	return cmd
}

func ingestFiles(ctx context.Context, cmd *cobra.Command, a *app, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	docs := make([]retrieval.Document, 0, len(paths))
	for _, p := range paths {
		doc, err := retrieval.LoadFile(p)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
	}
	if err := a.retrieval.IngestBatch(ctx, docs); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Ingested %d documents.\n", len(docs))
	return nil
}

// filesOnly drops directories; they are watched, not ingested up front.
func filesOnly(paths []string) []string {
	var files []string
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			files = append(files, p)
		}
	}
	return files
}

func newQueryCmd(opts *options) *cobra.Command {
	var topK int
	cmd := &cobra.Command{
		Use:   "query <text>",
		Short: "Show the indexed documents most similar to a text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(func(ctx context.Context, a *app) error {
				docs, err := a.orch.QueryContext(ctx, strings.Join(args, " "), topK)
				if err != nil {
					return err
				}
				if len(docs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No documents found.")
					return nil
				}
				for i, d := range docs {
					fmt.Fprintf(cmd.OutOrStdout(), "%d. %s (score %.3f)\n", i+1, d.Source(), d.Score)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&topK, "top-k", "k", 0, "Max documents (default from retrieval.top_k)")
	return cmd
}
