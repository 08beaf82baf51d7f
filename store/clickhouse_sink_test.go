package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"codingcats/api/database"
	"codingcats/api/models"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConn records queries and serves canned rows. Methods the sink never calls are left
// to the embedded nil interface.
type fakeConn struct {
	driver.Conn
	queries  []string
	args     [][]any
	rows     [][]any
	queryErr error
	batch    *fakeBatch
}

func (c *fakeConn) Query(_ context.Context, query string, args ...any) (driver.Rows, error) {
	c.queries = append(c.queries, query)
	c.args = append(c.args, args)
	if c.queryErr != nil {
		return nil, c.queryErr
	}
	return &fakeRows{rows: c.rows, pos: -1}, nil
}

func (c *fakeConn) PrepareBatch(_ context.Context, query string, _ ...driver.PrepareBatchOption) (driver.Batch, error) {
	c.queries = append(c.queries, query)
	c.batch = &fakeBatch{}
	return c.batch, nil
}

type fakeRows struct {
	driver.Rows
	rows [][]any
	pos  int
}

func (r *fakeRows) Next() bool {
	r.pos++
	return r.pos < len(r.rows)
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.rows[r.pos]
	if len(dest) != len(row) {
		return fmt.Errorf("scan: want %d columns, got %d", len(row), len(dest))
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *time.Time:
			*p = row[i].(time.Time)
		case *uint64:
			*p = row[i].(uint64)
		case *string:
			*p = row[i].(string)
		default:
			return fmt.Errorf("scan: unsupported destination %T", d)
		}
	}
	return nil
}

func (r *fakeRows) Err() error   { return nil }
func (r *fakeRows) Close() error { return nil }

type fakeBatch struct {
	driver.Batch
	appended [][]any
	sent     bool
}

func (b *fakeBatch) Append(v ...any) error {
	b.appended = append(b.appended, v)
	return nil
}

func (b *fakeBatch) Send() error {
	b.sent = true
	return nil
}

func newFakeSink(conn *fakeConn) *ClickHouseSink {
	return NewClickHouseSink(&database.ClickHouseClient{Conn: conn})
}

func TestOverTimeQuery(t *testing.T) {
	query, err := overTimeQuery("uniq(pseudo_user_id)", "Day")
	require.NoError(t, err)
	assert.Contains(t, query, "toStartOfDay(timestamp) AS time_bucket")
	assert.Contains(t, query, "uniq(pseudo_user_id) AS total")
	assert.Contains(t, query, "WHERE timestamp >= ? AND timestamp <= ?")

	for _, bad := range []string{"", "day", "Day(timestamp)); DROP TABLE visit_events; --"} {
		_, err := overTimeQuery("count()", bad)
		assert.Error(t, err, bad)
	}
}

func TestClickHouseSink_CountOverTime(t *testing.T) {
	bucket := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	conn := &fakeConn{rows: [][]any{{bucket, uint64(4)}, {bucket.Add(time.Hour), uint64(1)}}}
	sink := newFakeSink(conn)
	start, end := bucket, bucket.Add(24*time.Hour)

	got, err := sink.GetPageViewsOverTime(context.Background(), "Hour", start, end)
	require.NoError(t, err)
	assert.Equal(t, []models.CountByTime{
		{Time: bucket, Count: 4},
		{Time: bucket.Add(time.Hour), Count: 1},
	}, got)

	require.Len(t, conn.queries, 1)
	assert.Contains(t, conn.queries[0], "toStartOfHour(timestamp)")
	assert.Contains(t, conn.queries[0], "count() AS total")
	assert.Equal(t, []any{start, end}, conn.args[0])
}

func TestClickHouseSink_InvalidIntervalNeverQueries(t *testing.T) {
	conn := &fakeConn{}
	sink := newFakeSink(conn)

	_, err := sink.GetUniqueVisitorsOverTime(context.Background(), "Fortnight", time.Now(), time.Now())
	assert.Error(t, err)
	assert.Empty(t, conn.queries)
}

func TestClickHouseSink_QueryError(t *testing.T) {
	boom := errors.New("code: 60, table does not exist")
	sink := newFakeSink(&fakeConn{queryErr: boom})

	_, err := sink.GetTopPagePaths(context.Background(), time.Now().Add(-time.Hour), time.Now(), 5)
	assert.ErrorIs(t, err, boom)
}

func TestClickHouseSink_TopPagePathsDefaultsLimit(t *testing.T) {
	conn := &fakeConn{rows: [][]any{{"/", uint64(9)}, {"/blog", uint64(2)}}}
	sink := newFakeSink(conn)

	got, err := sink.GetTopPagePaths(context.Background(), time.Now().Add(-time.Hour), time.Now(), 0)
	require.NoError(t, err)
	assert.Equal(t, []models.TopPathResult{{PagePath: "/", Count: 9}, {PagePath: "/blog", Count: 2}}, got)
	require.Len(t, conn.args, 1)
	assert.Equal(t, uint64(10), conn.args[0][2])
}

func TestClickHouseSink_InsertVisits(t *testing.T) {
	conn := &fakeConn{}
	sink := newFakeSink(conn)
	ts := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

	require.NoError(t, sink.InsertVisits(context.Background(), nil))
	assert.Nil(t, conn.batch)

	err := sink.InsertVisits(context.Background(), []models.VisitRecord{{
		SessionID:        "s1",
		PseudoUserID:     "u1",
		Timestamp:        ts,
		Path:             "/about",
		Referrer:         models.DirectReferrer,
		DeviceClass:      models.DeviceMobile,
		BrowserName:      models.BrowserSafari,
		OperatingSystem:  models.OSIOS,
		ScreenResolution: "390x844",
		Language:         "en-GB",
	}})
	require.NoError(t, err)
	require.NotNil(t, conn.batch)
	assert.True(t, conn.batch.sent)
	assert.True(t, strings.Contains(conn.queries[0], "INSERT INTO visit_events"))
	assert.Equal(t, [][]any{{"s1", "u1", ts, "/about", "direct", "mobile", "Safari", "iOS", "390x844", "en-GB", ""}}, conn.batch.appended)
}
