// Package sources defines the interface for remote 3GPP document sources
// and a registry of available implementations.
package sources

import (
	"context"
	"errors"
	"time"
)

// Meeting is one TSG-RAN meeting folder on the remote server.
type Meeting struct {
	// Name is the folder name, e.g. "TSGR_106".
	Name string
	// URL is the absolute URL of the meeting folder.
	URL string
	// ModifiedAt is the folder's last-modified timestamp from the listing.
	ModifiedAt time.Time
}

// ErrNoCRPackList is returned when a meeting's Docs folder contains no
// CR pack list workbook.
var ErrNoCRPackList = errors.New("no CR pack list found in Docs folder")

// A Source navigates a remote spec archive. Implementations must be safe for
// concurrent use.
type Source interface {
	// ID returns the unique identifier of the source, e.g. "tsgran".
	ID() string

	// ListMeetings returns all meeting folders sorted by modification date,
	// newest first.
	ListMeetings(ctx context.Context) ([]Meeting, error)

	// FetchCRPackList downloads the first .xlsx workbook found in the
	// meeting's Docs folder. Returns ErrNoCRPackList when the folder has
	// no workbook.
	FetchCRPackList(ctx context.Context, m Meeting) ([]byte, error)

	// FetchArchive downloads Docs/<rpNumber>.zip from the meeting folder.
	FetchArchive(ctx context.Context, m Meeting, rpNumber string) ([]byte, error)
}
