// Package eventlog is the append-only click and query-history log, backed by
// LevelDB. Appends are fire-and-forget at the call sites: a failed append is
// logged and never fails the search or click request that triggered it.
package eventlog

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

const (
	queryPrefix = "query:"
	clickPrefix = "click:"
)

// QueryEvent records one processed search query.
type QueryEvent struct {
	ID          string    `json:"id"`
	Query       string    `json:"query"`
	ResultCount int       `json:"result_count"`
	Timestamp   time.Time `json:"timestamp"`
}

// ClickEvent records one click on a search result.
type ClickEvent struct {
	ID         string    `json:"id"`
	DocumentID int64     `json:"doc_id"`
	Timestamp  time.Time `json:"timestamp"`
}

type Log struct {
	db *leveldb.DB
}

// Open opens or creates the event log at the given directory.
func Open(path string) (*Log, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open event log: %w", err)
	}
	return &Log{db: db}, nil
}

func (l *Log) Close() error {
	return l.db.Close()
}

// Keys are prefix:nanotimestamp:uuid so that iteration over a prefix yields
// events in append order.
func makeKey(prefix string) []byte {
	return []byte(fmt.Sprintf("%s%020d:%s", prefix, time.Now().UnixNano(), uuid.NewString()))
}

// RecordQuery appends a query-history event.
func (l *Log) RecordQuery(query string, resultCount int) error {
	event := QueryEvent{
		ID:          uuid.NewString(),
		Query:       query,
		ResultCount: resultCount,
		Timestamp:   time.Now().UTC(),
	}
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode query event: %w", err)
	}
	if err := l.db.Put(makeKey(queryPrefix), value, nil); err != nil {
		return fmt.Errorf("failed to append query event: %w", err)
	}
	return nil
}

// RecordClick appends a click event.
func (l *Log) RecordClick(docID int64) error {
	event := ClickEvent{
		ID:         uuid.NewString(),
		DocumentID: docID,
		Timestamp:  time.Now().UTC(),
	}
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode click event: %w", err)
	}
	if err := l.db.Put(makeKey(clickPrefix), value, nil); err != nil {
		return fmt.Errorf("failed to append click event: %w", err)
	}
	return nil
}

// Queries returns all recorded query events in append order.
func (l *Log) Queries() ([]QueryEvent, error) {
	var events []QueryEvent
	iter := l.db.NewIterator(util.BytesPrefix([]byte(queryPrefix)), nil)
	defer iter.Release()
	for iter.Next() {
		var event QueryEvent
		if err := json.Unmarshal(iter.Value(), &event); err != nil {
			return nil, fmt.Errorf("failed to decode query event: %w", err)
		}
		events = append(events, event)
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("failed to iterate query events: %w", err)
	}
	return events, nil
}

// Clicks returns all recorded click events in append order.
func (l *Log) Clicks() ([]ClickEvent, error) {
	var events []ClickEvent
	iter := l.db.NewIterator(util.BytesPrefix([]byte(clickPrefix)), nil)
	defer iter.Release()
	for iter.Next() {
		var event ClickEvent
		if err := json.Unmarshal(iter.Value(), &event); err != nil {
			return nil, fmt.Errorf("failed to decode click event: %w", err)
		}
		events = append(events, event)
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("failed to iterate click events: %w", err)
	}
	return events, nil
}
