package stats

import (
	"context"
	"database/sql"
	"fmt"
	"runtime"
	"time"

	"github.com/alexivanou/ddigeo/internal/config"
	"github.com/jmoiron/sqlx"
	"github.com/patrickmn/go-cache"
)

// Stats is the payload of GET /api/v1/stats
type Stats struct {
	Timestamp time.Time     `json:"timestamp"`
	Memory    MemoryStats   `json:"memory"`
	Database  DatabaseStats `json:"database"`
	Locations LocationStats `json:"locations"`
	Runtime   RuntimeStats  `json:"runtime"`
}

type MemoryStats struct {
	Alloc      uint64 `json:"alloc"`
	TotalAlloc uint64 `json:"total_alloc"`
	Sys        uint64 `json:"sys"`
	NumGC      uint32 `json:"num_gc"`
	HeapInuse  uint64 `json:"heap_inuse"`
}

type DatabaseStats struct {
	Type         string      `json:"type"`
	TotalRecords int64       `json:"total_records"`
	SizeBytes    int64       `json:"size_bytes"`
	TableStats   []TableStat `json:"table_stats"`
}

type TableStat struct {
	Name      string `json:"name"`
	RowCount  int64  `json:"row_count"`
	SizeBytes int64  `json:"size_bytes,omitempty"`
}

// LocationStats describes the resolved location cache
type LocationStats struct {
	Total      int64 `json:"total"`
	Countries  int   `json:"countries"`
	Continents int   `json:"continents"`
	// ByFeatureCode counts cached locations per GeoNames feature code
	ByFeatureCode map[string]int64 `json:"by_feature_code"`
	// ByContinent counts cached locations per continent code; rows without
	// a continent are counted under ""
	ByContinent map[string]int64 `json:"by_continent"`
}

type RuntimeStats struct {
	NumGoroutines int   `json:"num_goroutines"`
	NumCPU        int   `json:"num_cpu"`
	UptimeSeconds int64 `json:"uptime_seconds"`
}

// tables reported in DatabaseStats, in display order
var tables = []string{"locations", "geonames_countries", "geonames_continents", "state_codes"}

const memStatsKey = "memory"

var memStatsCacheDuration = 5 * time.Second

type Collector struct {
	db        *sqlx.DB
	config    config.DBConfig
	startTime time.Time
	// memory readings are reused for memStatsCacheDuration
	memCache *cache.Cache
}

func NewCollector(db *sqlx.DB, cfg config.DBConfig) *Collector {
	return &Collector{
		db:        db,
		config:    cfg,
		startTime: time.Now(),
		memCache:  cache.New(memStatsCacheDuration, 2*memStatsCacheDuration),
	}
}

func (c *Collector) Collect(ctx context.Context) (*Stats, error) {
	dbStats, err := c.collectDatabaseStats(ctx)
	if err != nil {
		return nil, err
	}

	locStats, err := c.collectLocationStats(ctx)
	if err != nil {
		return nil, err
	}

	return &Stats{
		Timestamp: time.Now(),
		Memory:    c.collectMemoryStats(),
		Database:  *dbStats,
		Locations: *locStats,
		Runtime:   c.collectRuntimeStats(),
	}, nil
}

func (c *Collector) collectMemoryStats() MemoryStats {
	if cached, found := c.memCache.Get(memStatsKey); found {
		return cached.(MemoryStats)
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	mem := MemoryStats{
		Alloc:      m.Alloc,
		TotalAlloc: m.TotalAlloc,
		Sys:        m.Sys,
		NumGC:      m.NumGC,
		HeapInuse:  m.HeapInuse,
	}
	c.memCache.SetDefault(memStatsKey, mem)
	return mem
}

func (c *Collector) collectDatabaseStats(ctx context.Context) (*DatabaseStats, error) {
	stats := &DatabaseStats{
		Type:       string(c.config.Type),
		TableStats: make([]TableStat, 0, len(tables)),
	}

	// size is best effort
	if size, err := c.databaseSize(ctx); err == nil {
		stats.SizeBytes = size
	}

	for _, table := range tables {
		var count int64
		if err := c.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM "+table); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		stats.TableStats = append(stats.TableStats, TableStat{
			Name:      table,
			RowCount:  count,
			SizeBytes: c.tableSize(ctx, table),
		})
		stats.TotalRecords += count
	}

	return stats, nil
}

func (c *Collector) databaseSize(ctx context.Context) (int64, error) {
	query := "SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()"
	if c.config.Type == config.DBTypePostgreSQL {
		query = "SELECT pg_database_size(current_database())"
	}

	var size int64
	if err := c.db.GetContext(ctx, &size, query); err != nil {
		return 0, err
	}
	return size, nil
}

func (c *Collector) tableSize(ctx context.Context, table string) int64 {
	var (
		size sql.NullInt64
		err  error
	)
	if c.config.Type == config.DBTypePostgreSQL {
		err = c.db.GetContext(ctx, &size, `SELECT COALESCE(pg_total_relation_size($1::regclass), 0)`, table)
	} else {
		// dbstat is not compiled into every sqlite build
		err = c.db.GetContext(ctx, &size, `SELECT SUM(pgsize) FROM dbstat WHERE name = ?`, table)
	}
	if err != nil {
		return 0
	}
	return size.Int64
}

type groupCount struct {
	Key   *string `db:"k"`
	Count int64   `db:"n"`
}

func (c *Collector) collectLocationStats(ctx context.Context) (*LocationStats, error) {
	stats := &LocationStats{}

	err := c.db.GetContext(ctx, &stats.Countries, "SELECT COUNT(DISTINCT country_code) FROM locations")
	if err != nil {
		return nil, fmt.Errorf("failed to count resolved countries: %w", err)
	}

	if stats.ByFeatureCode, err = c.groupCounts(ctx, "feature_code"); err != nil {
		return nil, err
	}
	if stats.ByContinent, err = c.groupCounts(ctx, "continent_code"); err != nil {
		return nil, err
	}

	for code, n := range stats.ByContinent {
		stats.Total += n
		if code != "" {
			stats.Continents++
		}
	}
	return stats, nil
}

func (c *Collector) groupCounts(ctx context.Context, column string) (map[string]int64, error) {
	var rows []groupCount
	query := fmt.Sprintf("SELECT %[1]s AS k, COUNT(*) AS n FROM locations GROUP BY %[1]s", column)
	if err := c.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to count locations by %s: %w", column, err)
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		key := ""
		if r.Key != nil {
			key = *r.Key
		}
		counts[key] += r.Count
	}
	return counts, nil
}

func (c *Collector) collectRuntimeStats() RuntimeStats {
	return RuntimeStats{
		NumGoroutines: runtime.NumGoroutine(),
		NumCPU:        runtime.NumCPU(),
		UptimeSeconds: int64(time.Since(c.startTime).Seconds()),
	}
}
