// api/store/clickhouse_sink.go
package store

import (
	"context"
	"fmt"
	"time"

	"codingcats/api/database"
	"codingcats/api/models"
	"codingcats/api/utils"

	"github.com/rs/zerolog/log"
)

const visitEventsSchema = `
	CREATE TABLE IF NOT EXISTS visit_events (
		session_id        String,
		pseudo_user_id    String,
		timestamp         DateTime64(3, 'UTC'),
		path              String,
		referrer          String,
		device_class      LowCardinality(String),
		browser_name      LowCardinality(String),
		operating_system  LowCardinality(String),
		screen_resolution String,
		language          String,
		country           LowCardinality(String)
	) ENGINE = MergeTree
	ORDER BY (timestamp, pseudo_user_id)
`

// ClickHouseSink mirrors every visit into ClickHouse and serves the time-bucketed stats the
// key/value log cannot answer cheaply.
type ClickHouseSink struct {
	DB *database.ClickHouseClient
}

func NewClickHouseSink(chClient *database.ClickHouseClient) *ClickHouseSink {
	return &ClickHouseSink{DB: chClient}
}

func (s *ClickHouseSink) EnsureSchema(ctx context.Context) error {
	if err := s.DB.Conn.Exec(ctx, visitEventsSchema); err != nil {
		return fmt.Errorf("failed to create visit_events table: %w", err)
	}
	return nil
}

func (s *ClickHouseSink) InsertVisits(ctx context.Context, visits []models.VisitRecord) error {
	if len(visits) == 0 {
		return nil
	}

	batch, err := s.DB.Conn.PrepareBatch(ctx, `
		INSERT INTO visit_events (
			session_id, pseudo_user_id, timestamp, path, referrer, device_class,
			browser_name, operating_system, screen_resolution, language, country
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare batch insert: %w", err)
	}

	for _, v := range visits {
		err := batch.Append(
			v.SessionID,
			v.PseudoUserID,
			v.Timestamp,
			v.Path,
			v.Referrer,
			string(v.DeviceClass),
			string(v.BrowserName),
			string(v.OperatingSystem),
			v.ScreenResolution,
			v.Language,
			v.Country,
		)
		if err != nil {
			log.Error().Err(err).Str("session_id", v.SessionID).Msg("Error appending visit to batch")
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}

	log.Debug().Int("count", len(visits)).Msg("Inserted visit events into ClickHouse")
	return nil
}

func (s *ClickHouseSink) GetUniqueVisitorsOverTime(ctx context.Context, interval string, start, end time.Time) ([]models.CountByTime, error) {
	return s.countOverTime(ctx, "uniq(pseudo_user_id)", interval, start, end)
}

func (s *ClickHouseSink) GetPageViewsOverTime(ctx context.Context, interval string, start, end time.Time) ([]models.CountByTime, error) {
	return s.countOverTime(ctx, "count()", interval, start, end)
}

func (s *ClickHouseSink) countOverTime(ctx context.Context, aggregate, interval string, start, end time.Time) ([]models.CountByTime, error) {
	query, err := overTimeQuery(aggregate, interval)
	if err != nil {
		return nil, err
	}

	rows, err := s.DB.Conn.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s over time: %w", aggregate, err)
	}
	defer rows.Close()

	results := []models.CountByTime{}
	for rows.Next() {
		var bucket time.Time
		var count uint64
		if err := rows.Scan(&bucket, &count); err != nil {
			log.Error().Err(err).Msg("Error scanning time bucket row")
			continue
		}
		results = append(results, models.CountByTime{Time: bucket, Count: count})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating time bucket rows: %w", err)
	}
	return results, nil
}

// overTimeQuery builds the bucketed query. interval is spliced into the SQL, so only the
// names IsValidInterval accepts get through.
func overTimeQuery(aggregate, interval string) (string, error) {
	if !utils.IsValidInterval(interval) {
		return "", fmt.Errorf("invalid interval: %s", interval)
	}
	return fmt.Sprintf(`
		SELECT toStartOf%s(timestamp) AS time_bucket, %s AS total
		FROM visit_events
		WHERE timestamp >= ? AND timestamp <= ?
		GROUP BY time_bucket
		ORDER BY time_bucket ASC
	`, interval, aggregate), nil
}

func (s *ClickHouseSink) GetTopPagePaths(ctx context.Context, start, end time.Time, limit uint64) ([]models.TopPathResult, error) {
	if limit == 0 {
		limit = 10
	}

	rows, err := s.DB.Conn.Query(ctx, `
		SELECT path, count() AS view_count
		FROM visit_events
		WHERE timestamp >= ? AND timestamp <= ?
		GROUP BY path
		ORDER BY view_count DESC
		LIMIT ?
	`, start, end, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top page paths: %w", err)
	}
	defer rows.Close()

	results := []models.TopPathResult{}
	for rows.Next() {
		var path string
		var count uint64
		if err := rows.Scan(&path, &count); err != nil {
			log.Error().Err(err).Msg("Error scanning row for top page paths")
			continue
		}
		results = append(results, models.TopPathResult{PagePath: path, Count: count})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows for top page paths: %w", err)
	}
	return results, nil
}
