package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/goleak"

	"github.com/jonaycp/my-timesheet/internal/service/excel"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

type memCache struct {
	link  string
	saves int
}

func (c *memCache) LastLink() (string, error) { return c.link, nil }
func (c *memCache) SaveLink(link string) error {
	c.link = link
	c.saves++
	return nil
}
func (c *memCache) ClearLink() error {
	c.link = ""
	return nil
}

func xlsxBytes(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetCellValue("Sheet1", "A1", "Směny"); err != nil {
		t.Fatalf("SetCellValue: %v", err)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}
	return buf.Bytes()
}

func newTestResolver(srv *httptest.Server, cache LinkCache) *Resolver {
	return NewResolver(Options{
		Client:        srv.Client(),
		Attempts:      3,
		RatePerSecond: 1000,
		MaxBytes:      1 << 20,
		Cache:         cache,
	})
}

func TestFetch_RetriesServerErrorsThenSucceeds(t *testing.T) {
	data := xlsxBytes(t)
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Disposition", `attachment; filename="roster.xlsx"`)
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	cache := &memCache{}
	src, err := newTestResolver(srv, cache).Fetch(context.Background(), srv.URL+"/download")
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, "roster.xlsx", src.Name)
	assert.Equal(t, excel.FormatXLSX, src.Format)
	assert.Equal(t, data, src.Data)
	assert.Equal(t, srv.URL+"/download", cache.link)
	assert.Equal(t, 1, cache.saves)

	wb, err := src.Open()
	require.NoError(t, err)
	defer wb.Close()
	assert.Equal(t, []string{"Sheet1"}, wb.SheetNames())
}

func TestFetch_ClientErrorIsNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	cache := &memCache{link: "https://previous.example/x.xlsx"}
	_, err := newTestResolver(srv, cache).Fetch(context.Background(), srv.URL+"/private.xlsx")

	var fe *FetchError
	require.True(t, errors.As(err, &fe), "expected FetchError, got %v", err)
	assert.Equal(t, http.StatusForbidden, fe.Status)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, "https://previous.example/x.xlsx", cache.link, "failed fetch must not touch the cache")
}

func TestFetch_HTMLPageIsRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html>sign in</html>"))
	}))
	defer srv.Close()

	_, err := newTestResolver(srv, nil).Fetch(context.Background(), srv.URL+"/sheet.xlsx")
	require.Error(t, err)
	assert.ErrorIs(t, err, errNotSpreadsheet)
}

func TestFetch_TooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(make([]byte, 2048))
	}))
	defer srv.Close()

	r := NewResolver(Options{Client: srv.Client(), MaxBytes: 1024, RatePerSecond: 1000})
	_, err := r.Fetch(context.Background(), srv.URL+"/big.xlsx")
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestFetch_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestResolver(srv, nil).Fetch(ctx, srv.URL+"/x.xlsx")
	var fe *FetchError
	assert.True(t, errors.As(err, &fe))
}

func TestNormalizeLink(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"https://docs.google.com/spreadsheets/d/abc_123-X/edit#gid=0": "https://docs.google.com/spreadsheets/d/abc_123-X/export?format=xlsx",
		"https://drive.google.com/file/d/FILEID/view?usp=sharing":     "https://drive.google.com/uc?export=download&id=FILEID",
		"https://www.dropbox.com/s/xyz/roster.xlsx?dl=0":              "https://www.dropbox.com/s/xyz/roster.xlsx?dl=1",
		" https://example.com/roster.xlsx ":                           "https://example.com/roster.xlsx",
	}
	for in, want := range cases {
		got, err := NormalizeLink(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"", "ftp://example.com/x.xlsx", "not a url", "https://"} {
		_, err := NormalizeLink(bad)
		assert.ErrorIs(t, err, ErrInvalidLink, bad)
	}
}

func TestFromUpload(t *testing.T) {
	t.Parallel()

	_, err := FromUpload("roster.xlsx", nil, 0)
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, err = FromUpload("roster.xlsx", []byte("PK\x03\x04rest"), 3)
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = FromUpload("notes.txt", []byte("plain"), 0)
	assert.ErrorIs(t, err, excel.ErrUnsupportedFormat)

	src, err := FromUpload("roster.xls", []byte{0xD0, 0xCF}, 0)
	require.NoError(t, err)
	assert.Equal(t, excel.FormatXLS, src.Format)
}
