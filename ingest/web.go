package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"github.com/archivista/archivist/errors"
)

// maxFilenameLength caps cache filenames so long URLs stay storable.
const maxFilenameLength = 100

// fetchFunc performs the actual HTTP GET. Swappable in tests so the
// denylist can be verified to short-circuit before any I/O.
type fetchFunc func(ctx context.Context, rawURL string) ([]byte, error)

// Fetcher downloads pages for the network lane: denylist check first,
// then fetch, then a collision-safe save into the page cache.
type Fetcher struct {
	deniedHosts []string
	cacheDir    string
	fetch       fetchFunc
	logger      *slog.Logger
}

func NewFetcher(deniedHosts []string, cacheDir string, timeout time.Duration, logger *slog.Logger) *Fetcher {
	client := &http.Client{Timeout: timeout}

	return &Fetcher{
		deniedHosts: deniedHosts,
		cacheDir:    cacheDir,
		fetch:       httpFetch(client),
		logger:      logger,
	}
}

func httpFetch(client *http.Client) fetchFunc {
	return func(ctx context.Context, rawURL string) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to build request for %s", rawURL)
		}

		res, err := client.Do(req)
		if err != nil {
			return nil, errors.Wrapf(err, "fetch failed for %s", rawURL)
		}
		defer res.Body.Close()

		if res.StatusCode < 200 || res.StatusCode >= 300 {
			return nil, errors.Wrapf(errors.ErrInternal, "fetch of %s returned status %d", rawURL, res.StatusCode)
		}

		body, err := io.ReadAll(res.Body)

		return body, errors.Wrapf(err, "failed to read body of %s", rawURL)
	}
}

// Denied reports whether the URL's host is on the denylist, matching
// exact hosts and their subdomains.
func (f *Fetcher) Denied(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return true
	}

	host := strings.ToLower(parsed.Hostname())
	for _, denied := range f.deniedHosts {
		if host == denied || strings.HasSuffix(host, "."+denied) {
			return true
		}
	}

	return false
}

// Fetch downloads a URL and saves the raw body into the page cache. A
// denylisted host fails before any network I/O. The returned path is
// where the body was saved.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	if f.Denied(rawURL) {
		return nil, "", errors.Wrapf(errors.ErrDeniedHost, "refusing to fetch %s", rawURL)
	}

	body, err := f.fetch(ctx, rawURL)
	if err != nil {
		return nil, "", err
	}

	path, err := f.save(rawURL, body)
	if err != nil {
		return nil, "", err
	}

	return body, path, nil
}

// save writes the body under a name derived from the URL. On a name
// clash an incrementing numeric suffix goes before the extension; an
// existing file is never overwritten.
func (f *Fetcher) save(rawURL string, body []byte) (string, error) {
	if err := os.MkdirAll(f.cacheDir, 0o755); err != nil {
		return "", errors.Wrapf(err, "failed to create page cache dir")
	}

	name := cacheFilename(rawURL)
	base := strings.TrimSuffix(name, filepath.Ext(name))
	ext := filepath.Ext(name)

	for attempt := 0; ; attempt++ {
		candidate := name
		if attempt > 0 {
			candidate = fmt.Sprintf("%s_%d%s", base, attempt, ext)
		}
		path := filepath.Join(f.cacheDir, candidate)

		file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if os.IsExist(err) {
			continue
		} else if err != nil {
			return "", errors.Wrapf(err, "failed to create cache file %s", path)
		}

		_, werr := file.Write(body)
		cerr := file.Close()
		if werr != nil {
			return "", errors.Wrapf(werr, "failed to write cache file %s", path)
		}

		return path, errors.WithStack(cerr)
	}
}

// cacheFilename flattens a URL into a safe filename: forbidden
// characters become underscores and the total length is capped.
func cacheFilename(rawURL string) string {
	name := strings.TrimPrefix(rawURL, "https://")
	name = strings.TrimPrefix(name, "http://")
	name = strings.ReplaceAll(name, "/", "_")

	sanitized := strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', ':', '"', '|', '?', '*', '\\':
			return '_'
		}
		return r
	}, name)

	if len(sanitized) > maxFilenameLength {
		ext := filepath.Ext(sanitized)
		if len(ext) > 10 {
			ext = ""
		}
		sanitized = sanitized[:maxFilenameLength-len(ext)] + ext
	}
	if sanitized == "" {
		sanitized = "page-" + uuid.NewString()
	}

	return sanitized
}

// SubResources lists the same-page resource URLs (scripts, stylesheets,
// images) of an HTML body, resolved against the page URL. Each is
// fetched and decoded separately; there is no recursive crawl beyond
// this single level.
func SubResources(pageURL string, body []byte) ([]string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid page url %s", pageURL)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse page %s", pageURL)
	}

	var resources []string
	seen := make(map[string]struct{})
	add := func(ref string) {
		if ref == "" {
			return
		}
		resolved, err := base.Parse(ref)
		if err != nil || (resolved.Scheme != "http" && resolved.Scheme != "https") {
			return
		}
		abs := resolved.String()
		if _, ok := seen[abs]; ok {
			return
		}
		seen[abs] = struct{}{}
		resources = append(resources, abs)
	}

	doc.Find("script[src]").Each(func(_ int, s *goquery.Selection) {
		add(s.AttrOr("src", ""))
	})
	doc.Find("link[rel=stylesheet]").Each(func(_ int, s *goquery.Selection) {
		add(s.AttrOr("href", ""))
	})
	doc.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
		add(s.AttrOr("src", ""))
	})

	return resources, nil
}
