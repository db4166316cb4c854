package res

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned when a resource cannot be located
	ErrNotFound = errors.New("resource not found")
	// ErrUnexpectedType is returned when a resource is not of the requested kind
	ErrUnexpectedType = errors.New("unexpected resource type")
)

// ResourceType represents the type of resource
type ResourceType int

const (
	// ResourceTypeUnknown is an unknown resource type
	ResourceTypeUnknown ResourceType = iota
	// ResourceTypeImage is an image resource
	ResourceTypeImage
	// ResourceTypeCSS is a stylesheet
	ResourceTypeCSS
	// ResourceTypeHTML is an HTML document
	ResourceTypeHTML
	// ResourceTypeOther is any other resource
	ResourceTypeOther
)

// Resource represents a loaded resource
type Resource struct {
	URL      string
	Type     ResourceType
	Data     []byte
	MimeType string
}

// Loader resolves and loads documents, stylesheets and images referenced by a
// document. Loaded resources are cached by their reference.
type Loader struct {
	// Base URL or file path for resolving relative URLs
	BaseURL string

	log *zap.Logger

	cache     map[string]*Resource
	cacheLock sync.RWMutex

	searchPaths []string

	client *http.Client
}

// NewLoader creates a new resource loader
func NewLoader(baseURL string, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{
		BaseURL: baseURL,
		log:     log.Named("loader"),
		cache:   make(map[string]*Resource),
		client:  &http.Client{},
	}
}

// AddSearchPath adds a directory to search for local resources
func (l *Loader) AddSearchPath(path string) {
	l.searchPaths = append(l.searchPaths, path)
}

// Load loads a resource from a URL, data URL or file path
func (l *Loader) Load(ref string) (*Resource, error) {
	l.cacheLock.RLock()
	if res, ok := l.cache[ref]; ok {
		l.cacheLock.RUnlock()
		return res, nil
	}
	l.cacheLock.RUnlock()

	var (
		res *Resource
		err error
	)
	if strings.HasPrefix(ref, "data:") {
		res, err = parseDataURL(ref)
	} else {
		var resolved string
		if resolved, err = l.resolveURL(ref); err == nil {
			if isRemote(resolved) {
				res, err = l.loadRemote(resolved)
			} else {
				res, err = l.loadLocal(resolved)
			}
		}
	}
	if err != nil {
		return nil, err
	}

	l.log.Debug("Loaded resource",
		zap.String("ref", truncate(ref, 64)),
		zap.String("mime", res.MimeType),
		zap.Int("bytes", len(res.Data)))

	l.cacheLock.Lock()
	l.cache[ref] = res
	l.cacheLock.Unlock()

	return res, nil
}

func isRemote(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// parseDataURL parses a data URL (RFC 2397) and returns a Resource.
// Examples:
//
//	data:image/png;base64,<base64>
//	data:text/plain,Hello%20World
func parseDataURL(u string) (*Resource, error) {
	meta, dataPart, ok := strings.Cut(strings.TrimPrefix(u, "data:"), ",")
	if !ok {
		return nil, errors.New("invalid data URL")
	}

	mime := ""
	isBase64 := false
	comps := strings.Split(meta, ";")
	if comps[0] != "" {
		mime = comps[0]
	}
	for _, c := range comps[1:] {
		if strings.EqualFold(strings.TrimSpace(c), "base64") {
			isBase64 = true
		}
	}

	var data []byte
	if isBase64 {
		d, err := base64.StdEncoding.DecodeString(dataPart)
		if err != nil {
			return nil, fmt.Errorf("invalid base64 data URL: %w", err)
		}
		data = d
	} else if d, err := url.PathUnescape(dataPart); err == nil {
		data = []byte(d)
	} else {
		data = []byte(dataPart)
	}

	if mime == "" {
		mime = sniffMime(data)
	}
	return &Resource{
		URL:      u,
		Data:     data,
		MimeType: mime,
		Type:     determineResourceType(mime, ""),
	}, nil
}

// resolveURL resolves a URL relative to the base URL
func (l *Loader) resolveURL(ref string) (string, error) {
	if isRemote(ref) {
		return ref, nil
	}
	if strings.HasPrefix(ref, "file://") {
		return strings.TrimPrefix(ref, "file://"), nil
	}

	if !isRemote(l.BaseURL) {
		if filepath.IsAbs(ref) || l.BaseURL == "" {
			return ref, nil
		}
		return filepath.Join(filepath.Dir(l.BaseURL), ref), nil
	}

	base, err := url.Parse(l.BaseURL)
	if err != nil {
		return "", err
	}
	rel, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(rel).String(), nil
}

// loadRemote loads a resource from a remote URL
func (l *Loader) loadRemote(u string) (*Resource, error) {
	resp, err := l.client.Get(u)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, u)
		}
		return nil, fmt.Errorf("HTTP error: %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	mime := resp.Header.Get("Content-Type")
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	if mime == "" || mime == "application/octet-stream" {
		mime = sniffMime(data)
	}
	return &Resource{
		URL:      u,
		Data:     data,
		MimeType: mime,
		Type:     determineResourceType(mime, u),
	}, nil
}

// loadLocal loads a resource from a local file, falling back to the search paths
func (l *Loader) loadLocal(path string) (*Resource, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return l.loadFromSearchPaths(path)
	}
	if err != nil {
		return nil, err
	}
	return newLocalResource(path, data), nil
}

// loadFromSearchPaths tries to load a resource from the search paths
func (l *Loader) loadFromSearchPaths(filename string) (*Resource, error) {
	base := filepath.Base(filename)
	for _, dir := range l.searchPaths {
		path := filepath.Join(dir, base)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		return newLocalResource(path, data), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, filename)
}

func newLocalResource(path string, data []byte) *Resource {
	mime := determineMimeType(path)
	if mime == "" {
		mime = sniffMime(data)
	}
	return &Resource{
		URL:      path,
		Data:     data,
		MimeType: mime,
		Type:     determineResourceType(mime, path),
	}
}

// determineMimeType determines the MIME type of a file from its extension.
// It returns "" when the extension is not known.
func determineMimeType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".tiff", ".tif":
		return "image/tiff"
	case ".bmp":
		return "image/bmp"
	case ".svg":
		return "image/svg+xml"
	case ".css":
		return "text/css"
	case ".html", ".htm", ".xhtml":
		return "text/html"
	}
	return ""
}

// determineResourceType determines the type of a resource
func determineResourceType(mimeType, path string) ResourceType {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return ResourceTypeImage
	case mimeType == "text/css":
		return ResourceTypeCSS
	case mimeType == "text/html" || mimeType == "application/xhtml+xml":
		return ResourceTypeHTML
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".svg", ".webp", ".tiff", ".tif", ".bmp":
		return ResourceTypeImage
	case ".css":
		return ResourceTypeCSS
	case ".html", ".htm", ".xhtml":
		return ResourceTypeHTML
	}

	return ResourceTypeOther
}

// LoadImage loads an image resource
func (l *Loader) LoadImage(ref string) (*Resource, error) {
	return l.loadTyped(ref, ResourceTypeImage)
}

// LoadCSS loads a stylesheet
func (l *Loader) LoadCSS(ref string) (*Resource, error) {
	return l.loadTyped(ref, ResourceTypeCSS)
}

// LoadHTML loads an HTML document. Any text resource is accepted.
func (l *Loader) LoadHTML(ref string) (*Resource, error) {
	return l.Load(ref)
}

func (l *Loader) loadTyped(ref string, want ResourceType) (*Resource, error) {
	res, err := l.Load(ref)
	if err != nil {
		return nil, err
	}
	if res.Type != want {
		return nil, fmt.Errorf("%w: %s is %s", ErrUnexpectedType, truncate(ref, 64), res.MimeType)
	}
	return res, nil
}

// GetReader returns a reader for a resource
func (r *Resource) GetReader() *bytes.Reader {
	return bytes.NewReader(r.Data)
}

// GetString returns the resource data as a string
func (r *Resource) GetString() string {
	return string(r.Data)
}

// sniffMime detects the media type from content, without parameters
func sniffMime(data []byte) string {
	mime, _, _ := strings.Cut(mimetype.Detect(data).String(), ";")
	return mime
}
