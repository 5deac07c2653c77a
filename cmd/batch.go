package main

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/eol-research/internal/model"
	"github.com/sells-group/eol-research/internal/research"
)

var (
	batchFile string
	batchOut  string
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Research lifecycle milestones for a CSV of products",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		queries, err := readProductCSV(batchFile)
		if err != nil {
			return err
		}
		if len(queries) == 0 {
			zap.L().Info("no products in input file")
			return nil
		}

		eng, err := initEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		results, err := eng.Orchestrator.ResearchBatch(ctx, queries, cfg.Research.Concurrency, func(p research.Progress) {
			zap.L().Info("batch progress",
				zap.Int("processed", p.Processed),
				zap.Int("total", p.Total),
				zap.String("product_id", p.CurrentProductID),
				zap.Int("dates_found", p.DatesFound),
			)
		})
		if err != nil {
			return err
		}

		out := os.Stdout
		if batchOut != "" {
			f, err := os.Create(batchOut)
			if err != nil {
				return eris.Wrap(err, "create output file")
			}
			defer func() { _ = f.Close() }()
			out = f
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchFile, "file", "", "input CSV (productId,manufacturer,category,type,description)")
	batchCmd.Flags().StringVar(&batchOut, "out", "", "output JSON file (default stdout)")
	_ = batchCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(batchCmd)
}

// readProductCSV loads product queries from a CSV. The header row maps
// columns by name; only productId is required.
func readProductCSV(path string) ([]model.ProductQuery, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "open input file")
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, eris.Wrap(err, "read csv header")
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	idCol, ok := col["productid"]
	if !ok {
		return nil, eris.New("input csv has no productId column")
	}

	field := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var queries []model.ProductQuery
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "read csv row")
		}
		if idCol >= len(rec) || strings.TrimSpace(rec[idCol]) == "" {
			continue
		}
		queries = append(queries, model.ProductQuery{
			ProductID:    strings.TrimSpace(rec[idCol]),
			Manufacturer: field(rec, "manufacturer"),
			Category:     field(rec, "category"),
			Type:         field(rec, "type"),
			Description:  field(rec, "description"),
		})
	}
	return queries, nil
}
