package app

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/lmcalvo/cine-checkout/api"
	"github.com/lmcalvo/cine-checkout/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validMovieSelection() api.MovieSelectionRequest {
	return api.MovieSelectionRequest{
		MovieTitle: "Interstellar",
		Day:        "2026-09-05",
		Time:       "21:30",
		Format:     "IMAX",
		CinemaName: "Cine Centro",
		TheaterId:  3,
		ShowtimeId: 42,
	}
}

func TestPutMovieSelectionHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		wantStatus int
	}{
		{
			name:       "stores a valid movie selection",
			body:       validMovieSelection(),
			wantStatus: http.StatusNoContent,
		},
		{
			name: "rejects a selection with missing fields",
			body: api.MovieSelectionRequest{
				MovieTitle: "Interstellar",
			},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "rejects a non-positive showtime",
			body: func() api.MovieSelectionRequest {
				sel := validMovieSelection()
				sel.ShowtimeId = 0
				return sel
			}(),
			wantStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApplication()
			token := seedSession(t, app, nil)

			w, r := executeRequest(t, http.MethodPut, "/checkout/movie-selection", tt.body)
			r = withSession(t, app, r, token)

			app.PutMovieSelectionHandler(w, r)

			assert.Equal(t, tt.wantStatus, w.Code)

			if tt.wantStatus == http.StatusNoContent {
				var stored domain.MovieSelection
				require.True(t, app.getSessionJSON(r.Context(), SessionKeyMovieSelection, &stored))
				assert.Equal(t, 42, stored.ShowtimeID)
				assert.Equal(t, "Interstellar", stored.MovieTitle)
			}
		})
	}
}

func TestPutMovieSelectionHandlerRejectsMalformedJSON(t *testing.T) {
	app := newTestApplication()
	token := seedSession(t, app, nil)

	w, r := executeRequest(t, http.MethodPut, "/checkout/movie-selection", nil)
	r = withSession(t, app, r, token)

	app.PutMovieSelectionHandler(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPutTicketsHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       api.TicketsRequest
		wantStatus int
	}{
		{
			name: "stores ticket lines",
			body: api.TicketsRequest{
				Tickets: []api.TicketLine{
					{Id: "adult", Name: "Adult", Price: decimal.NewFromFloat(9.5), Quantity: 2},
					{Id: "child", Name: "Child", Price: decimal.NewFromFloat(5), Quantity: 1},
				},
			},
			wantStatus: http.StatusNoContent,
		},
		{
			name:       "rejects an empty ticket list",
			body:       api.TicketsRequest{},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "rejects a zero quantity line",
			body: api.TicketsRequest{
				Tickets: []api.TicketLine{
					{Id: "adult", Name: "Adult", Quantity: 0},
				},
			},
			wantStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApplication()
			token := seedSession(t, app, nil)

			w, r := executeRequest(t, http.MethodPut, "/checkout/tickets", tt.body)
			r = withSession(t, app, r, token)

			app.PutTicketsHandler(w, r)

			assert.Equal(t, tt.wantStatus, w.Code)

			if tt.wantStatus == http.StatusNoContent {
				var stored []domain.TicketLine
				require.True(t, app.getSessionJSON(r.Context(), SessionKeyTickets, &stored))
				assert.Equal(t, 3, domain.RequiredSeats(stored))
			}
		})
	}
}

func TestSessionTicketsMissing(t *testing.T) {
	app := newTestApplication()
	token := seedSession(t, app, nil)

	_, r := executeRequest(t, http.MethodGet, "/", nil)
	r = withSession(t, app, r, token)

	_, err := app.sessionTickets(r)
	assert.ErrorIs(t, err, domain.ErrNoTickets)

	_, err = app.sessionMovieSelection(r)
	assert.ErrorIs(t, err, domain.ErrNoMovieSelection)
}

func TestGetHealth(t *testing.T) {
	app := newTestApplication()
	app.config.env = "test"

	w, r := executeRequest(t, http.MethodGet, "/health", nil)

	app.GetHealth(w, r)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp api.HealthcheckResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "UP", resp.Status)
	assert.Equal(t, "test", resp.SystemInfo.Environment)
}
