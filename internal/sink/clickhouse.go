package sink

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/rs/zerolog/log"

	"github.com/upliftapps/pulse/internal/config"
	"github.com/upliftapps/pulse/internal/schema"
)

// eventRow is the flattened ClickHouse representation of an event.
type eventRow struct {
	EventID   string
	Kind      string
	Category  string
	Mode      string
	Value     float64
	Timestamp time.Time
	Platform  string
	Topic     string
	ContentID string
	ProductID string
	Screen    string
	LinkID    string
	GroupID   string
	ErrorCode string
	Label     string
	Tags      string
}

// Archiver batches events into ClickHouse. Rows buffer in memory and flush
// when the batch fills or the flush interval elapses; Stop drains the
// remainder.
type Archiver struct {
	conn     driver.Conn
	batchCfg config.BatchConfig

	mu     sync.Mutex
	buffer []eventRow

	ticker *time.Ticker
	done   chan struct{}
}

// NewArchiver connects to ClickHouse and starts the flush loop.
func NewArchiver(cfg config.ClickHouseConfig, batchCfg config.BatchConfig) (*Archiver, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.Addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		MaxOpenConns: cfg.MaxOpenConns,
		MaxIdleConns: cfg.MaxIdleConns,
	})
	if err != nil {
		return nil, err
	}
	if err := conn.Ping(context.Background()); err != nil {
		return nil, err
	}

	a := &Archiver{
		conn:     conn,
		batchCfg: batchCfg,
		buffer:   make([]eventRow, 0, batchCfg.Size),
		ticker:   time.NewTicker(batchCfg.FlushInterval),
		done:     make(chan struct{}),
	}
	go a.flushLoop()
	return a, nil
}

// Forward buffers one event for the next batch insert.
func (a *Archiver) Forward(_ context.Context, e schema.Event) error {
	row := eventRow{
		EventID:   e.ID,
		Kind:      string(e.Kind),
		Category:  string(e.Category),
		Mode:      string(e.Props.Mode),
		Value:     e.Value,
		Timestamp: e.Timestamp,
		Platform:  e.Props.Platform,
		Topic:     e.Props.Topic,
		ContentID: e.Props.ContentID,
		ProductID: e.Props.ProductID,
		Screen:    e.Props.ScreenName,
		LinkID:    e.Props.LinkID,
		GroupID:   e.Props.GroupID,
		ErrorCode: e.Props.ErrorCode,
		Label:     e.Props.Label,
		Tags:      strings.Join(e.Props.Tags, ","),
	}

	a.mu.Lock()
	a.buffer = append(a.buffer, row)
	shouldFlush := len(a.buffer) >= a.batchCfg.Size
	a.mu.Unlock()

	if shouldFlush {
		a.Flush()
	}
	return nil
}

func (a *Archiver) flushLoop() {
	for {
		select {
		case <-a.done:
			return
		case <-a.ticker.C:
			a.Flush()
		}
	}
}

// Flush writes the buffered rows to ClickHouse.
func (a *Archiver) Flush() {
	a.mu.Lock()
	if len(a.buffer) == 0 {
		a.mu.Unlock()
		return
	}
	rows := a.buffer
	a.buffer = make([]eventRow, 0, a.batchCfg.Size)
	a.mu.Unlock()

	ctx := context.Background()
	start := time.Now()

	if err := a.insert(ctx, rows); err != nil {
		log.Error().Err(err).Int("count", len(rows)).Msg("Failed to archive events")
		return
	}
	log.Debug().
		Int("count", len(rows)).
		Dur("duration", time.Since(start)).
		Msg("Archived events to ClickHouse")
}

func (a *Archiver) insert(ctx context.Context, rows []eventRow) error {
	batch, err := a.conn.PrepareBatch(ctx, `
		INSERT INTO events (
			event_id, kind, category, mode, value, timestamp,
			platform, topic, content_id, product_id, screen,
			link_id, group_id, error_code, label, tags
		)
	`)
	if err != nil {
		return err
	}

	for _, r := range rows {
		err := batch.Append(
			r.EventID, r.Kind, r.Category, r.Mode, r.Value, r.Timestamp,
			r.Platform, r.Topic, r.ContentID, r.ProductID, r.Screen,
			r.LinkID, r.GroupID, r.ErrorCode, r.Label, r.Tags,
		)
		if err != nil {
			return err
		}
	}

	return batch.Send()
}

// Stop halts the flush loop, drains the buffer, and closes the connection.
func (a *Archiver) Stop() {
	a.ticker.Stop()
	close(a.done)
	a.Flush()
	a.conn.Close()
}
