package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/creditrag/internal/cli"
	"github.com/Veraticus/creditrag/internal/common"
	"github.com/Veraticus/creditrag/internal/model"
	"github.com/Veraticus/creditrag/internal/regindex"
)

func ingestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <namespace>=<file> [<namespace>=<file>...]",
		Short: "Embed regulation documents into the index",
		Long: `Split regulation documents into overlapping chunks, embed them and store
them under a namespace. Pages in the input are separated by form feeds.

Namespaces ingest concurrently; batches within a namespace run sequentially.

Examples:
  creditrag ingest FCRA=regs/fcra.txt FDCPA=regs/fdcpa.txt
  creditrag ingest --replace METRO2=regs/metro2.md`,
		Args: cobra.MinimumNArgs(1),
		RunE: runIngest,
	}

	cmd.Flags().Int("chunk-size", 1000, "maximum characters per chunk")
	cmd.Flags().Int("chunk-overlap", 100, "characters shared by consecutive chunks")
	cmd.Flags().Bool("replace", false, "delete each namespace before ingesting")

	return cmd
}

// parseCorpusArgs turns ns=path arguments into namespace -> paths.
func parseCorpusArgs(args []string) (map[string][]string, error) {
	corpora := make(map[string][]string)
	for _, arg := range args {
		ns, path, ok := strings.Cut(arg, "=")
		ns, path = strings.TrimSpace(ns), strings.TrimSpace(path)
		if !ok || ns == "" || path == "" {
			return nil, common.NewInputValidationError("corpus", fmt.Sprintf("expected <namespace>=<file>, got %q", arg))
		}
		corpora[ns] = append(corpora[ns], path)
	}
	return corpora, nil
}

func runIngest(cmd *cobra.Command, args []string) error {
	chunkSize, _ := cmd.Flags().GetInt("chunk-size")
	overlap, _ := cmd.Flags().GetInt("chunk-overlap")
	replace, _ := cmd.Flags().GetBool("replace")

	corpora, err := parseCorpusArgs(args)
	if err != nil {
		return err
	}

	splitter := regindex.NewSplitter()
	splitter.ChunkSize = chunkSize
	splitter.ChunkOverlap = overlap
	if err := splitter.Validate(); err != nil {
		return err
	}

	chunks := make(map[string][]model.RegulationChunk, len(corpora))
	total := 0
	for ns, paths := range corpora {
		for _, path := range paths {
			docChunks, err := regindex.LoadDocument(path, ns, splitter)
			if err != nil {
				return err
			}
			chunks[ns] = append(chunks[ns], docChunks...)
			total += len(docChunks)
		}
		slog.Info("Prepared regulation corpus", "namespace", ns, "files", len(paths), "chunks", len(chunks[ns]))
	}

	handler := cli.NewInterruptHandler(cmd.ErrOrStderr(),
		"Batches already committed stay in the index. Re-run with --replace to start over.")
	ctx, stop := handler.HandleInterrupts(cmd.Context())
	defer stop()

	store, err := openStorage(ctx)
	if err != nil {
		return err
	}
	a := &app{store: store, closers: []io.Closer{store}}
	defer a.Close()

	progress := cli.NewIngestProgress(cmd.ErrOrStderr(), total)
	index, err := a.buildIndex(ctx, progress.OnBatch)
	if err != nil {
		return err
	}

	if replace {
		for ns := range chunks {
			if err := index.DeleteNamespace(ctx, ns); err != nil {
				return err
			}
		}
	}

	counts, err := index.IngestCorpora(ctx, chunks)
	return reportIngest(cmd.OutOrStdout(), ingestOutcome{
		counts:      counts,
		chunks:      chunks,
		committed:   progress.Committed(),
		total:       total,
		interrupted: handler.WasInterrupted(),
	}, err)
}

type ingestOutcome struct {
	counts      map[string]int
	chunks      map[string][]model.RegulationChunk
	committed   int
	total       int
	interrupted bool
}

// reportIngest prints per-namespace counts and explains how the run ended.
func reportIngest(out io.Writer, res ingestOutcome, err error) error {
	counts, chunks := res.counts, res.chunks
	names := make([]string, 0, len(counts))
	for ns := range counts {
		names = append(names, ns)
	}
	sort.Strings(names)
	for _, ns := range names {
		fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("%s: %d/%d chunks stored", ns, counts[ns], len(chunks[ns]))))
	}

	if res.interrupted {
		fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("Interrupted: %d of %d chunks committed", res.committed, res.total)))
		return common.NewUserError("ingestion interrupted; committed batches were kept", err)
	}

	if err != nil {
		var batchErr *common.BatchIngestionError
		if errors.As(err, &batchErr) {
			fmt.Fprintln(out, cli.FormatError(fmt.Sprintf("%s stopped at batch %d", batchErr.Namespace, batchErr.Batch)))
		}
		return err
	}

	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Ingested %d chunks into %d namespaces", res.committed, len(counts))))
	return nil
}
