package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/alexivanou/ddigeo/internal/config"
	"github.com/alexivanou/ddigeo/internal/database"
	"github.com/alexivanou/ddigeo/internal/stats"
	"go.uber.org/zap"
)

func main() {
	defaultFormat := os.Getenv("OUTPUT_FORMAT")
	if defaultFormat == "" {
		defaultFormat = "json"
	}
	format := flag.String("format", defaultFormat, "Output format: json or text")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	ctx := context.Background()
	db, err := database.Connect(ctx, cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Collecting statistics...", zap.String("db_type", string(cfg.DB.Type)))

	statistics, err := stats.NewCollector(db, cfg.DB).Collect(ctx)
	if err != nil {
		logger.Fatal("Failed to collect statistics", zap.Error(err))
	}

	switch *format {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(statistics); err != nil {
			logger.Fatal("Failed to encode statistics", zap.Error(err))
		}
	case "text", "human":
		printText(statistics)
	default:
		logger.Fatal("Unknown output format", zap.String("format", *format))
	}
}

func printText(s *stats.Stats) {
	fmt.Printf("=== Geocoder Statistics (%s) ===\n\n", s.Timestamp.Format("2006-01-02 15:04:05"))

	fmt.Println("--- Location Cache ---")
	fmt.Printf("Locations:   %d\n", s.Locations.Total)
	fmt.Printf("Countries:   %d\n", s.Locations.Countries)
	fmt.Printf("Continents:  %d\n", s.Locations.Continents)
	printCounts("By feature code:", s.Locations.ByFeatureCode)
	printCounts("By continent:", s.Locations.ByContinent)
	fmt.Println()

	fmt.Printf("--- Database (%s, %s) ---\n", s.Database.Type, formatBytes(uint64(s.Database.SizeBytes)))
	for _, ts := range s.Database.TableStats {
		fmt.Printf("  %-22s %10d rows", ts.Name, ts.RowCount)
		if ts.SizeBytes > 0 {
			fmt.Printf(" (%s)", formatBytes(uint64(ts.SizeBytes)))
		}
		fmt.Println()
	}
	fmt.Println()

	fmt.Println("--- Runtime ---")
	fmt.Printf("Allocated:   %s\n", formatBytes(s.Memory.Alloc))
	fmt.Printf("Goroutines:  %d\n", s.Runtime.NumGoroutines)
}

func printCounts(title string, counts map[string]int64) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Println(title)
	for _, k := range keys {
		label := k
		if label == "" {
			label = "(none)"
		}
		fmt.Printf("  %-8s %10d\n", label, counts[k])
	}
}

func formatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
