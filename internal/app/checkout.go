package app

import (
	"net/http"

	"github.com/lmcalvo/cine-checkout/api"
	"github.com/lmcalvo/cine-checkout/internal/domain"
)

// PutMovieSelectionHandler stores the movie/showtime choice made in the
// previous checkout step into the session.
func (app *application) PutMovieSelectionHandler(w http.ResponseWriter, r *http.Request) {
	var input api.MovieSelectionRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	selection := domain.MovieSelection{
		MovieTitle: input.MovieTitle,
		Day:        input.Day,
		Time:       input.Time,
		Format:     input.Format,
		CinemaName: input.CinemaName,
		TheaterID:  input.TheaterId,
		ShowtimeID: input.ShowtimeId,
	}

	err = app.putSessionJSON(r.Context(), SessionKeyMovieSelection, selection)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// PutTicketsHandler stores the ticket lines picked in the previous checkout
// step; their quantities determine how many seats must be selected.
func (app *application) PutTicketsHandler(w http.ResponseWriter, r *http.Request) {
	var input api.TicketsRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	tickets := make([]domain.TicketLine, len(input.Tickets))
	for i, t := range input.Tickets {
		tickets[i] = domain.TicketLine{
			ID:       t.Id,
			Name:     t.Name,
			Price:    t.Price,
			Quantity: t.Quantity,
		}
	}

	err = app.putSessionJSON(r.Context(), SessionKeyTickets, tickets)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
