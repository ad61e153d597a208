package loader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"

	lserrors "github.com/YuminosukeSato/linscore/pkg/errors"
)

// Source yields a model document as a byte stream.
type Source interface {
	// Open returns the document and its size in bytes, or -1 when the size is
	// not known in advance. The caller closes the reader.
	Open(ctx context.Context) (io.ReadCloser, int64, error)

	// String identifies the source in errors and logs.
	String() string
}

// FileSource reads a document from the local file system.
type FileSource string

// Open implements Source.
func (p FileSource) Open(ctx context.Context) (io.ReadCloser, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	info, err := os.Stat(string(p))
	if err != nil {
		return nil, 0, lserrors.NewModelNotFoundError(p.String(), err)
	}
	if info.IsDir() {
		return nil, 0, lserrors.NewModelNotFoundError(p.String(), lserrors.Newf("%s is a directory", string(p)))
	}
	f, err := os.Open(string(p))
	if err != nil {
		return nil, 0, lserrors.NewModelNotFoundError(p.String(), err)
	}
	return f, info.Size(), nil
}

func (p FileSource) String() string { return string(p) }

// BytesSource is an in-memory document.
type BytesSource struct {
	Name string
	Data []byte
}

// StringSource returns an in-memory source over doc.
func StringSource(name, doc string) BytesSource {
	return BytesSource{Name: name, Data: []byte(doc)}
}

// Open implements Source.
func (b BytesSource) Open(ctx context.Context) (io.ReadCloser, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	return io.NopCloser(bytes.NewReader(b.Data)), int64(len(b.Data)), nil
}

func (b BytesSource) String() string {
	if b.Name == "" {
		return "inline"
	}
	return b.Name
}

// HTTPSource fetches a document with a GET request.
type HTTPSource struct {
	URL    string
	Client *http.Client // nil means http.DefaultClient
}

// Open implements Source. 404 and 410 responses, like any other non-2xx
// status, are reported as ModelNotFound. The size is the Content-Length, when
// the server sends one.
func (h HTTPSource) Open(ctx context.Context) (io.ReadCloser, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
	if err != nil {
		return nil, 0, lserrors.NewModelNotFoundError(h.String(), err)
	}
	req.Header.Set("Accept", "application/json")

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, 0, ctx.Err()
		}
		return nil, 0, lserrors.NewModelNotFoundError(h.String(), err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, 0, lserrors.NewModelNotFoundError(h.String(), lserrors.Newf("unexpected status %s", resp.Status))
	}
	return resp.Body, resp.ContentLength, nil
}

func (h HTTPSource) String() string { return h.URL }

// RedisClient is the subset of the go-redis API RedisSource uses.
// *redis.Client, *redis.Ring and *redis.ClusterClient implement it.
type RedisClient interface {
	StrLen(ctx context.Context, key string) *redis.IntCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// RedisSource reads a document stored as a string value. STRLEN is issued
// first so that an oversized value is rejected before it is transferred.
type RedisSource struct {
	Client RedisClient
	Key    string
}

// Open implements Source. GET is deferred until the first Read.
func (r RedisSource) Open(ctx context.Context) (io.ReadCloser, int64, error) {
	size, err := r.Client.StrLen(ctx, r.Key).Result()
	if err != nil {
		return nil, 0, r.classify(ctx, err)
	}
	if size == 0 {
		// STRLEN reports 0 for a missing key; GET tells the two apart.
		size = -1
	}
	return &lazyReader{fetch: func() (io.Reader, error) {
		val, err := r.Client.Get(ctx, r.Key).Result()
		if err != nil {
			return nil, r.classify(ctx, err)
		}
		return strings.NewReader(val), nil
	}}, size, nil
}

func (r RedisSource) classify(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err == redis.Nil {
		return lserrors.NewModelNotFoundError(r.String(), lserrors.Newf("key %q does not exist", r.Key))
	}
	return lserrors.NewModelNotFoundError(r.String(), err)
}

func (r RedisSource) String() string { return fmt.Sprintf("redis://%s", r.Key) }

type lazyReader struct {
	fetch func() (io.Reader, error)
	r     io.Reader
	err   error
}

func (l *lazyReader) Read(p []byte) (int, error) {
	if l.r == nil && l.err == nil {
		l.r, l.err = l.fetch()
	}
	if l.err != nil {
		return 0, l.err
	}
	return l.r.Read(p)
}

func (l *lazyReader) Close() error { return nil }

// DummyDocument returns the synthetic document of the dummy model.
func DummyDocument() []byte {
	return []byte(`{"modelType":"dummy","param":{"vector":{}}}`)
}
