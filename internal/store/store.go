// Package store keeps the connector list: the work queue of pages to
// generate and the record of which ones are done.
package store

import (
	"context"
	"errors"

	"ruh-integration-pages/internal/models"
)

var ErrNotFound = errors.New("store: connector not found")

// Store is the connector ledger. Implementations assume a single writer.
type Store interface {
	// LoadAll returns every connector in list order.
	LoadAll(ctx context.Context) ([]models.Connector, error)
	// MarkPublished flags the named connector as done and persists the change.
	MarkPublished(ctx context.Context, name string) error
	Close() error
}

// Open returns the store selected by driver: "json" uses path directly,
// "sqlite" keeps the ledger in sqlitePath, seeded from path on first use.
func Open(ctx context.Context, driver, path, sqlitePath string) (Store, error) {
	switch driver {
	case "", "json":
		s, err := OpenJSONFile(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "sqlite":
		s, err := OpenSQLite(ctx, sqlitePath, path)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, errors.New("store: unknown driver " + driver)
	}
}

// NextPending returns the first connector not yet published.
func NextPending(list []models.Connector) (models.Connector, bool) {
	for _, c := range list {
		if !c.Published {
			return c, true
		}
	}
	return models.Connector{}, false
}

// Summarize counts published and pending connectors. Next is "None" when
// nothing is pending.
func Summarize(list []models.Connector) models.Status {
	st := models.Status{Total: len(list), Next: "None"}
	for _, c := range list {
		if c.Published {
			st.Published++
		}
	}
	st.Unpublished = st.Total - st.Published
	if c, ok := NextPending(list); ok {
		st.Next = c.Name
	}
	return st
}
