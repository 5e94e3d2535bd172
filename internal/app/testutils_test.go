package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/lmcalvo/cine-checkout/internal/mocks"
	"github.com/lmcalvo/cine-checkout/internal/occupancy"
	"github.com/lmcalvo/cine-checkout/internal/selection"
	appvalidator "github.com/lmcalvo/cine-checkout/internal/validator"
)

func newTestApplication(opts ...func(*application)) *application {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store := mocks.NewMockOccupancyStore()
	bookingClient := &mocks.MockBookingClient{
		GetOccupiedSeatsFunc: func(ctx context.Context, showtimeID int) ([]string, error) {
			return nil, nil
		},
	}

	app := &application{
		logger:           logger,
		validator:        appvalidator.NewValidator(),
		sessionManager:   scs.New(),
		bookingClient:    bookingClient,
		occupancyStore:   store,
		occupancyManager: occupancy.NewManager("ws://127.0.0.1:1/occupancy", store, logger),
		occupancyPoller:  occupancy.NewPoller(bookingClient, store, logger, time.Minute),
		selections:       selection.NewRegistry(),
	}

	for _, opt := range opts {
		opt(app)
	}

	return app
}

func executeRequest(t *testing.T, method, url string, body any) (*httptest.ResponseRecorder, *http.Request) {
	t.Helper()

	jsonData, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}

	r := httptest.NewRequest(method, url, bytes.NewReader(jsonData))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	return w, r
}

// seedSession creates a committed session, seeded through put, and returns its
// token so later requests can act as the same user.
func seedSession(t *testing.T, app *application, put func(ctx context.Context)) string {
	t.Helper()

	ctx, err := app.sessionManager.Load(context.Background(), "")
	if err != nil {
		t.Fatalf("Failed to load session: %v", err)
	}

	if put != nil {
		put(ctx)
	} else {
		app.sessionManager.Put(ctx, SessionKeyGuest.String(), true)
	}

	token, _, err := app.sessionManager.Commit(ctx)
	if err != nil {
		t.Fatalf("Failed to commit session: %v", err)
	}

	return token
}

func withSession(t *testing.T, app *application, r *http.Request, token string) *http.Request {
	t.Helper()

	ctx, err := app.sessionManager.Load(r.Context(), token)
	if err != nil {
		t.Fatalf("Failed to load session: %v", err)
	}

	return r.WithContext(ctx)
}

func withShowtimeParam(r *http.Request, showtimeID string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("showtimeID", showtimeID)

	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
