package resolver_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"cdmeta/internal/cddb"
	"cdmeta/internal/config"
	"cdmeta/internal/disc"
	"cdmeta/internal/disc/discid"
	"cdmeta/internal/resolver"
	"cdmeta/internal/xmcdcache"
)

const xmcdPayload = "# xmcd\r\n#\r\nDISCID=0800f802\r\nDTITLE=Artist / Album\r\nTTITLE0=One\r\nTTITLE1=Two\r\n"

var sampleTOC = disc.TOC{
	Tracks:  []disc.TrackOffset{{Minute: 0, Second: 2, Frame: 0}, {Minute: 0, Second: 42, Frame: 30}},
	LeadOut: disc.TrackOffset{Minute: 4, Second: 10, Frame: 0},
}

// fakeServer answers by command and records every request.
type fakeServer struct {
	mu       sync.Mutex
	requests []string
	replies  map[string]string
	status   map[string]int
	err      map[string]error
}

func (f *fakeServer) Get(_ context.Context, url string) (*cddb.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, url)
	for prefix, err := range f.err {
		if strings.Contains(url, "cmd="+prefix) {
			return nil, err
		}
	}
	for prefix, code := range f.status {
		if strings.Contains(url, "cmd="+prefix) {
			return &cddb.Response{StatusCode: code}, nil
		}
	}
	for prefix, body := range f.replies {
		if strings.Contains(url, "cmd="+prefix) {
			return &cddb.Response{StatusCode: 200, Body: []byte(body)}, nil
		}
	}
	return &cddb.Response{StatusCode: 200, Body: []byte("500 Unrecognized command\r\n")}, nil
}

func (f *fakeServer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Cache.Dir = t.TempDir()
	cfg.CDDB.Negotiate = false
	cfg.CDDB.User = "tester"
	cfg.CDDB.Host = "example"
	return &cfg
}

func newResolver(t *testing.T, cfg *config.Config, server *fakeServer, opts ...resolver.Option) *resolver.Resolver {
	t.Helper()
	opts = append([]resolver.Option{resolver.WithTransport(server)}, opts...)
	res, err := resolver.New(cfg, opts...)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return res
}

func TestResolveEndToEnd(t *testing.T) {
	cfg := testConfig(t)
	server := &fakeServer{replies: map[string]string{
		"cddb+query": "200 rock 0800f802 Artist / Album\r\n",
		"cddb+read":  "210 rock 0800f802 CD database entry follows (until terminating `.')\r\n" + xmcdPayload + ".\r\n",
	}}
	res := newResolver(t, cfg, server)

	result, err := res.ResolveTOC(context.Background(), sampleTOC)
	if err != nil {
		t.Fatalf("ResolveTOC returned error: %v", err)
	}
	if result.DiscID != 0x0800f802 {
		t.Fatalf("disc id = %s, want 0800f802", result.DiscID)
	}
	if result.State != resolver.StateDone || result.FromCache {
		t.Fatalf("unexpected result: %+v", result)
	}
	if string(result.Record.Data) != xmcdPayload {
		t.Fatalf("record = %q", result.Record.Data)
	}
	if result.CorrelationID == "" {
		t.Fatal("expected correlation id")
	}
	if server.count() != 2 {
		t.Fatalf("requests = %d, want 2", server.count())
	}

	data, err := os.ReadFile(filepath.Join(cfg.Cache.Dir, "0800f802"))
	if err != nil {
		t.Fatalf("read cache file: %v", err)
	}
	if string(data) != xmcdPayload {
		t.Fatalf("cache file = %q, want payload", data)
	}

	again, err := res.ResolveTOC(context.Background(), sampleTOC)
	if err != nil {
		t.Fatalf("second ResolveTOC returned error: %v", err)
	}
	if !again.FromCache || string(again.Record.Data) != xmcdPayload {
		t.Fatalf("second result not from cache: %+v", again)
	}
	if server.count() != 2 {
		t.Fatalf("cache hit touched the network: %d requests", server.count())
	}
}

func TestResolveRefreshBypassesCache(t *testing.T) {
	cfg := testConfig(t)
	cache := xmcdcache.NewCache(cfg.Cache.Dir, nil)
	if err := cache.Store(0x0800f802, cddb.Record{Data: []byte("# xmcd\nstale\n")}); err != nil {
		t.Fatalf("Store: %v", err)
	}
	server := &fakeServer{replies: map[string]string{
		"cddb+query": "200 rock 0800f802 Artist / Album\r\n",
		"cddb+read":  "210 rock 0800f802 entry follows\r\n" + xmcdPayload + ".\r\n",
	}}
	res := newResolver(t, cfg, server, resolver.WithRefresh(true))

	result, err := res.ResolveTOC(context.Background(), sampleTOC)
	if err != nil {
		t.Fatalf("ResolveTOC returned error: %v", err)
	}
	if result.FromCache {
		t.Fatal("refresh must not use the cache")
	}
	rec, ok := cache.Lookup(0x0800f802)
	if !ok || string(rec.Data) != xmcdPayload {
		t.Fatalf("cache not refreshed: %q", rec.Data)
	}
}

func TestResolveNoMatchStops(t *testing.T) {
	cfg := testConfig(t)
	server := &fakeServer{replies: map[string]string{
		"cddb+query": "202 No match for disc ID 0800f802.\r\n",
	}}
	res := newResolver(t, cfg, server)

	result, err := res.ResolveTOC(context.Background(), sampleTOC)
	if err != nil {
		t.Fatalf("ResolveTOC returned error: %v", err)
	}
	if result.State != resolver.StateStopped || result.Record.Len() != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if server.count() != 1 {
		t.Fatalf("requests = %d, want 1 (no read)", server.count())
	}
	if _, err := os.Stat(filepath.Join(cfg.Cache.Dir, "0800f802")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("cache file should not exist: %v", err)
	}
}

func TestResolveQueryNotFoundStops(t *testing.T) {
	cfg := testConfig(t)
	server := &fakeServer{status: map[string]int{"cddb+query": 400}}
	result, err := newResolver(t, cfg, server).ResolveTOC(context.Background(), sampleTOC)
	if err != nil {
		t.Fatalf("ResolveTOC returned error: %v", err)
	}
	if result.State != resolver.StateStopped || result.Record.Len() != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if server.count() != 1 {
		t.Fatalf("requests = %d, want 1 (no read)", server.count())
	}
	if _, err := os.Stat(filepath.Join(cfg.Cache.Dir, "0800f802")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("cache file should not exist: %v", err)
	}
}

func TestResolveReadNotFoundStops(t *testing.T) {
	cfg := testConfig(t)
	server := &fakeServer{replies: map[string]string{
		"cddb+query": "200 rock 0800f802 Artist / Album\r\n",
		"cddb+read":  "400 rock/0800f802 not found\r\n",
	}}
	result, err := newResolver(t, cfg, server).ResolveTOC(context.Background(), sampleTOC)
	if err != nil {
		t.Fatalf("ResolveTOC returned error: %v", err)
	}
	if result.State != resolver.StateStopped {
		t.Fatalf("state = %s, want stopped", result.State)
	}
}

func TestResolveNegotiation(t *testing.T) {
	t.Run("level adopted", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.CDDB.Negotiate = true
		server := &fakeServer{replies: map[string]string{
			"stat":       "210 OK, status information follows\r\nmax proto: 5\r\n.\r\n",
			"cddb+query": "202 No match\r\n",
		}}
		result, err := newResolver(t, cfg, server).ResolveTOC(context.Background(), sampleTOC)
		if err != nil {
			t.Fatalf("ResolveTOC returned error: %v", err)
		}
		if result.ProtoLevel != 5 {
			t.Fatalf("proto level = %d, want 5", result.ProtoLevel)
		}
	})
	t.Run("malformed stat keeps level", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.CDDB.Negotiate = true
		server := &fakeServer{replies: map[string]string{
			"stat":       "210 OK\r\nnothing useful\r\n.\r\n",
			"cddb+query": "200 rock 0800f802 Artist / Album\r\n",
			"cddb+read":  "210 rock 0800f802 entry\r\n" + xmcdPayload + ".\r\n",
		}}
		result, err := newResolver(t, cfg, server).ResolveTOC(context.Background(), sampleTOC)
		if err != nil {
			t.Fatalf("ResolveTOC returned error: %v", err)
		}
		if result.ProtoLevel != 1 || result.State != resolver.StateDone {
			t.Fatalf("unexpected result: %+v", result)
		}
	})
	t.Run("transport failure is fatal", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.CDDB.Negotiate = true
		server := &fakeServer{err: map[string]error{"stat": errors.New("dial tcp: connection refused")}}
		_, err := newResolver(t, cfg, server).ResolveTOC(context.Background(), sampleTOC)
		if !cddb.IsTransport(err) {
			t.Fatalf("error = %v, want transport error", err)
		}
		if server.count() != 1 {
			t.Fatalf("requests = %d, want 1", server.count())
		}
	})
}

func TestResolveServerErrorFails(t *testing.T) {
	cfg := testConfig(t)
	server := &fakeServer{replies: map[string]string{
		"cddb+query": "403 Database entry is corrupt\r\n",
	}}
	_, err := newResolver(t, cfg, server).ResolveTOC(context.Background(), sampleTOC)
	var se *cddb.ServerError
	if !errors.As(err, &se) || se.Code != 403 {
		t.Fatalf("error = %v, want ServerError 403", err)
	}
}

func TestResolveCacheWriteFailureIsNonFatal(t *testing.T) {
	cfg := testConfig(t)
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg.Cache.Dir = filepath.Join(blocker, "cddb")
	server := &fakeServer{replies: map[string]string{
		"cddb+query": "200 rock 0800f802 Artist / Album\r\n",
		"cddb+read":  "210 rock 0800f802 entry\r\n" + xmcdPayload + ".\r\n",
	}}
	result, err := newResolver(t, cfg, server).ResolveTOC(context.Background(), sampleTOC)
	if err != nil {
		t.Fatalf("ResolveTOC returned error: %v", err)
	}
	if string(result.Record.Data) != xmcdPayload {
		t.Fatalf("record = %q", result.Record.Data)
	}
}

func TestResolveCacheKeyedByLocalID(t *testing.T) {
	cfg := testConfig(t)
	server := &fakeServer{replies: map[string]string{
		"cddb+query": "200 misc 1234abcd Artist / Album\r\n",
		"cddb+read":  "210 misc 1234abcd entry\r\n" + xmcdPayload + ".\r\n",
	}}
	if _, err := newResolver(t, cfg, server).ResolveTOC(context.Background(), sampleTOC); err != nil {
		t.Fatalf("ResolveTOC returned error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.Cache.Dir, "0800f802")); err != nil {
		t.Fatalf("expected cache under local id: %v", err)
	}
}

func TestResolveReadsDevice(t *testing.T) {
	cfg := testConfig(t)
	cfg.Drive.Device = "/dev/sr7"
	var gotDevice string
	reader := disc.TOCReaderFunc(func(_ context.Context, device string) (disc.TOC, error) {
		gotDevice = device
		return sampleTOC, nil
	})
	server := &fakeServer{replies: map[string]string{"cddb+query": "202 No match\r\n"}}
	res := newResolver(t, cfg, server, resolver.WithTOCReader(reader), resolver.WithCache(nil))

	result, err := res.Resolve(context.Background(), "")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if gotDevice != "/dev/sr7" {
		t.Fatalf("device = %q, want configured drive", gotDevice)
	}
	if result.DiscID != discid.ID(0x0800f802) {
		t.Fatalf("disc id = %s", result.DiscID)
	}
}

func TestResolveTOCReaderError(t *testing.T) {
	cfg := testConfig(t)
	reader := disc.TOCReaderFunc(func(context.Context, string) (disc.TOC, error) {
		return disc.TOC{}, disc.ErrUnsupported
	})
	res := newResolver(t, cfg, &fakeServer{}, resolver.WithTOCReader(reader))
	if _, err := res.Resolve(context.Background(), "/dev/sr0"); !errors.Is(err, disc.ErrUnsupported) {
		t.Fatalf("error = %v, want ErrUnsupported", err)
	}
}

func TestResolveRejectsInvalidTOC(t *testing.T) {
	res := newResolver(t, testConfig(t), &fakeServer{})
	if _, err := res.ResolveTOC(context.Background(), disc.TOC{}); err == nil {
		t.Fatal("expected error for empty toc")
	}
}
