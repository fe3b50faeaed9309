// Package tsgran implements a source for the 3GPP TSG-RAN FTP mirror at
// https://www.3gpp.org/ftp/tsg_ran/TSG_RAN. The mirror serves plain HTML
// directory listings: a table whose rows hold a folder link and, in the
// sibling cell, a modification timestamp like "2025/08/10 22:07".
package tsgran

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/spectrack/spectrack-go/internal/tracker/sources"
)

const listingTimeFormat = "2006/01/02 15:04"

// Source navigates the TSG-RAN directory listings.
type Source struct {
	baseURL   string
	userAgent string
	client    *http.Client
	dlClient  *http.Client
}

// New creates a TSG-RAN source rooted at baseURL. The archive download
// client gets its own, longer timeout since RP zip files run to tens of
// megabytes.
func New(baseURL, userAgent string, timeout, archiveTimeout time.Duration) *Source {
	return &Source{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		client:    &http.Client{Timeout: timeout},
		dlClient:  &http.Client{Timeout: archiveTimeout},
	}
}

func (s *Source) ID() string { return "tsgran" }

// ListMeetings fetches the root listing and returns all TSGR_* folders,
// newest first.
func (s *Source) ListMeetings(ctx context.Context) ([]sources.Meeting, error) {
	doc, err := s.fetchDocument(ctx, s.baseURL)
	if err != nil {
		return nil, fmt.Errorf("tsgran: failed to fetch meeting list: %w", err)
	}

	var meetings []sources.Meeting
	doc.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
		link := row.Find("a").First()
		if link.Length() == 0 {
			return
		}
		name := strings.TrimSpace(link.Text())
		if !strings.HasPrefix(name, "TSGR_") {
			return
		}
		// Listing decorations (parent-directory links etc) carry a class.
		if _, decorated := link.Attr("class"); decorated {
			return
		}
		href, ok := link.Attr("href")
		if !ok || href == "" {
			return
		}

		// The modification date sits in the cell following the link's cell.
		dateText := strings.TrimSpace(link.Parent().Next().Text())
		modTime, err := time.Parse(listingTimeFormat, dateText)
		if err != nil {
			return
		}

		meetings = append(meetings, sources.Meeting{
			Name:       name,
			URL:        s.resolve(href),
			ModifiedAt: modTime,
		})
	})

	sort.Slice(meetings, func(i, j int) bool {
		return meetings[i].ModifiedAt.After(meetings[j].ModifiedAt)
	})
	return meetings, nil
}

// FetchCRPackList finds the first .xlsx link in the meeting's Docs folder
// and downloads it.
func (s *Source) FetchCRPackList(ctx context.Context, m sources.Meeting) ([]byte, error) {
	docsURL := m.URL + "/Docs/"
	doc, err := s.fetchDocument(ctx, docsURL)
	if err != nil {
		return nil, fmt.Errorf("tsgran: failed to fetch Docs listing for %s: %w", m.Name, err)
	}

	var workbookHref string
	doc.Find("a").EachWithBreak(func(_ int, link *goquery.Selection) bool {
		href, ok := link.Attr("href")
		if ok && strings.HasSuffix(href, ".xlsx") {
			workbookHref = href
			return false
		}
		return true
	})
	if workbookHref == "" {
		return nil, sources.ErrNoCRPackList
	}

	return s.download(ctx, s.client, joinURL(docsURL, workbookHref))
}

// FetchArchive downloads Docs/<rpNumber>.zip from the meeting folder.
func (s *Source) FetchArchive(ctx context.Context, m sources.Meeting, rpNumber string) ([]byte, error) {
	archiveURL := m.URL + "/Docs/" + rpNumber + ".zip"
	data, err := s.download(ctx, s.dlClient, archiveURL)
	if err != nil {
		return nil, fmt.Errorf("tsgran: failed to download archive %s: %w", archiveURL, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("tsgran: downloaded archive is empty: %s", archiveURL)
	}
	return data, nil
}

func (s *Source) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, pageURL)
	}
	return goquery.NewDocumentFromReader(resp.Body)
}

func (s *Source) download(ctx context.Context, client *http.Client, fileURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", fileURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, fileURL)
	}
	return io.ReadAll(resp.Body)
}

// resolve turns a listing href, which may be absolute or relative, into an
// absolute URL without a trailing slash.
func (s *Source) resolve(href string) string {
	return strings.TrimRight(joinURL(s.baseURL+"/", href), "/")
}

func joinURL(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}
