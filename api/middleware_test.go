package api

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func echoBodyHandler(c echo.Context) error {
	data, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return err
	}
	return c.String(http.StatusOK, string(data))
}

func TestDecompressRequestsInflatesGzipBody(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(`{"name":"Sprint"}`)); err != nil {
		t.Fatalf("write gzip: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close gzip: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/boards", &buf)
	req.Header.Set(echo.HeaderContentEncoding, "gzip")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := DecompressRequests()(echoBodyHandler)(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}
	if rec.Body.String() != `{"name":"Sprint"}` {
		t.Fatalf("unexpected body: %q", rec.Body.String())
	}
	if c.Request().Header.Get(echo.HeaderContentEncoding) != "" {
		t.Fatal("expected content-encoding header to be dropped")
	}
}

func TestDecompressRequestsRejectsBadGzip(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/boards", bytes.NewBufferString("not gzip"))
	req.Header.Set(echo.HeaderContentEncoding, "gzip")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := DecompressRequests()(echoBodyHandler)(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestDecompressRequestsPassthrough(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/boards", bytes.NewBufferString("plain"))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := DecompressRequests()(echoBodyHandler)(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	if rec.Body.String() != "plain" {
		t.Fatalf("unexpected body: %q", rec.Body.String())
	}
}
