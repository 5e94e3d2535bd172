package app

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/lmcalvo/cine-checkout/internal/domain"
)

type sessionKey string

// Session keys under which the checkout steps hand state to each other: the
// movie/showtime choice and ticket lines are written by the previous steps and
// read here; the confirmed seats are written here for the next step.
const (
	SessionKeyGuest          = sessionKey("guest")
	SessionKeyMovieSelection = sessionKey("checkoutMovieSelection")
	SessionKeyTickets        = sessionKey("checkoutTickets")
	SessionKeySelectedSeats  = sessionKey("checkoutSelectedSeats")
)

func (s sessionKey) String() string {
	return string(s)
}

func (app *application) putSessionJSON(ctx context.Context, key sessionKey, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	app.sessionManager.Put(ctx, key.String(), data)

	return nil
}

func (app *application) getSessionJSON(ctx context.Context, key sessionKey, dst any) bool {
	data := app.sessionManager.GetBytes(ctx, key.String())
	if len(data) == 0 {
		return false
	}

	return json.Unmarshal(data, dst) == nil
}

func (app *application) sessionMovieSelection(r *http.Request) (domain.MovieSelection, error) {
	var sel domain.MovieSelection
	if !app.getSessionJSON(r.Context(), SessionKeyMovieSelection, &sel) {
		return domain.MovieSelection{}, domain.ErrNoMovieSelection
	}

	return sel, nil
}

func (app *application) sessionTickets(r *http.Request) ([]domain.TicketLine, error) {
	var tickets []domain.TicketLine
	if !app.getSessionJSON(r.Context(), SessionKeyTickets, &tickets) || len(tickets) == 0 {
		return nil, domain.ErrNoTickets
	}

	return tickets, nil
}
