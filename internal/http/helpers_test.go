package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Clark-Hu/gamestore-catalogue/internal/catalogue"
	"github.com/Clark-Hu/gamestore-catalogue/internal/config"
	"github.com/Clark-Hu/gamestore-catalogue/internal/metrics"
	"github.com/Clark-Hu/gamestore-catalogue/internal/pkg/clock"
	"github.com/Clark-Hu/gamestore-catalogue/internal/repository"
	"github.com/Clark-Hu/gamestore-catalogue/internal/repository/memory"
)

type unhealthy struct{}

func (unhealthy) HealthCheck(context.Context) error { return errors.New("down") }

type brokenFactory struct{}

func (brokenFactory) Begin(context.Context) (repository.UnitOfWork, error) {
	return nil, errors.New("connection refused")
}

func testConfig() config.Config {
	return config.Config{
		Port:               "0",
		CORSAllowedOrigins: []string{"http://localhost:4200"},
		ReadTimeoutSecs:    15,
		WriteTimeoutSecs:   15,
		IdleTimeoutSecs:    60,
	}
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func buildTestServer(tb testing.TB) *Server {
	tb.Helper()
	st := memory.NewStore()
	logger := quietLogger()
	svc := catalogue.NewService(st, clock.NewFake(time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)), logger)
	return New(testConfig(), svc, st, metrics.New(), logger)
}

func do(tb testing.TB, srv *Server, method, target, body string) *httptest.ResponseRecorder {
	tb.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](tb testing.TB, rec *httptest.ResponseRecorder) T {
	tb.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		tb.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

const eldenRing = `{"title":"Elden Ring","genre":"Action RPG","platform":"Multi-platform","releaseYear":2022,"price":59.99,"description":"A dark fantasy action RPG.","imageUrl":"https://placehold.co/400x300"}`

func mustCreate(tb testing.TB, srv *Server, body string) map[string]any {
	tb.Helper()
	rec := do(tb, srv, http.MethodPost, "/api/videogames", body)
	if rec.Code != http.StatusCreated {
		tb.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	return decode[map[string]any](tb, rec)
}
