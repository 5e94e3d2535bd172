package app

import (
	"errors"
	"net/http"
	"time"

	"github.com/lmcalvo/cine-checkout/api"
	"github.com/lmcalvo/cine-checkout/internal/domain"
	"github.com/lmcalvo/cine-checkout/internal/selection"
)

// StartSelectionHandler opens the seat-selection step for a showtime. It
// requires a movie selection and ticket lines from the previous checkout
// steps; without them the page cannot be entered at all, which is surfaced as
// a conflict before any seat matrix exists.
func (app *application) StartSelectionHandler(w http.ResponseWriter, r *http.Request) {
	logger := app.logger

	showtimeID, err := app.readShowtimeID(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	movieSelection, err := app.sessionMovieSelection(r)
	if err != nil {
		app.conflictResponse(w, r, err)
		return
	}

	tickets, err := app.sessionTickets(r)
	if err != nil {
		app.conflictResponse(w, r, err)
		return
	}

	if movieSelection.ShowtimeID != showtimeID {
		app.badRequestResponse(w, r, errors.New("showtime does not match the current movie selection"))
		return
	}

	requiredCount := domain.RequiredSeats(tickets)

	sess := selection.NewSession(r.Context(), app.bookingClient, app.logger, showtimeID, requiredCount)

	if codes, ok := app.occupancyPoller.Snapshot(r.Context(), showtimeID); ok {
		sess.ApplyOccupancy(domain.OccupancySnapshot{
			ShowtimeID: showtimeID,
			Codes:      codes,
			Live:       true,
			At:         time.Now(),
		})
	}

	token := app.sessionManager.Token(r.Context())
	unsubscribe := app.occupancyManager.Subscribe(showtimeID, sess.ApplyOccupancy)

	app.selections.Put(token, sess, unsubscribe)

	logger.Info("seat selection started",
		"showtime_id", showtimeID, "required_count", requiredCount, "selection_id", sess.ID)

	err = app.writeJSON(w, http.StatusCreated, toSeatMapResponse(showtimeID, sess.View()), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) GetSelectionHandler(w http.ResponseWriter, r *http.Request) {
	showtimeID, err := app.readShowtimeID(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	sess, err := app.selections.Get(app.sessionManager.Token(r.Context()), showtimeID)
	if err != nil {
		app.conflictResponse(w, r, err)
		return
	}

	// Self-heal from the cache even if the push channel is silently broken.
	if codes, ok := app.occupancyPoller.Snapshot(r.Context(), showtimeID); ok {
		sess.ApplyOccupancy(domain.OccupancySnapshot{
			ShowtimeID: showtimeID,
			Codes:      codes,
			Live:       true,
			At:         time.Now(),
		})
	}

	err = app.writeJSON(w, http.StatusOK, toSeatMapResponse(showtimeID, sess.View()), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// ToggleSeatHandler selects or deselects one seat. Business conflicts come
// back as 409 with an inline message; the matrix stays interactive and the
// user recovers by toggling again.
func (app *application) ToggleSeatHandler(w http.ResponseWriter, r *http.Request) {
	showtimeID, err := app.readShowtimeID(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input api.ToggleSeatRequest

	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	sess, err := app.selections.Get(app.sessionManager.Token(r.Context()), showtimeID)
	if err != nil {
		app.conflictResponse(w, r, err)
		return
	}

	err = sess.Toggle(r.Context(), input.SeatId)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrSeatNotFound):
		app.notFoundResponse(w, r)
		return
	default:
		app.conflictResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, toSeatMapResponse(showtimeID, sess.View()), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// CompleteSelectionHandler closes the selection once exactly the required
// number of seats is held, persists the confirmed seats for the next checkout
// step, and tears down the occupancy subscription.
func (app *application) CompleteSelectionHandler(w http.ResponseWriter, r *http.Request) {
	showtimeID, err := app.readShowtimeID(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	token := app.sessionManager.Token(r.Context())

	sess, err := app.selections.Get(token, showtimeID)
	if err != nil {
		app.conflictResponse(w, r, err)
		return
	}

	selected, err := sess.Complete()
	if err != nil {
		app.conflictResponse(w, r, err)
		return
	}

	err = app.putSessionJSON(r.Context(), SessionKeySelectedSeats, selected)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.selections.Remove(token)

	app.logger.Info("seat selection completed",
		"showtime_id", showtimeID, "seat_codes", selected.SeatCodes)

	resp := api.CompleteSelectionResponse{
		ShowtimeId: selected.ShowtimeID,
		SeatIds:    selected.SeatIDs,
		SeatCodes:  selected.SeatCodes,
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// AbandonSelectionHandler is the navigation-away hook: it drops the session
// and its occupancy subscription. Held seats are not released here; their
// holds expire on the booking backend.
func (app *application) AbandonSelectionHandler(w http.ResponseWriter, r *http.Request) {
	if _, err := app.readShowtimeID(r); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	app.selections.Remove(app.sessionManager.Token(r.Context()))

	w.WriteHeader(http.StatusNoContent)
}

func toSeatMapResponse(showtimeID int, view selection.View) api.SeatMapResponse {
	return api.SeatMapResponse{
		ShowtimeId:      showtimeID,
		Rows:            view.Layout.Rows,
		Columns:         view.Layout.Columns,
		State:           string(view.State),
		RequiredCount:   view.RequiredCount,
		SelectedSeatIds: view.SelectedSeatIDs,
		LiveUpdates:     view.LiveUpdates,
		SeatRows:        toSeatRows(view.Matrix),
	}
}

func toSeatRows(matrix []domain.Seat) []api.SeatRow {
	// The matrix is dense and row-major, so rows can be cut in a single pass.

	if len(matrix) == 0 {
		return nil
	}

	var seatRows []api.SeatRow
	currentRow := api.SeatRow{Row: matrix[0].Row}

	for _, seat := range matrix {
		if seat.Row != currentRow.Row {
			seatRows = append(seatRows, currentRow)
			currentRow = api.SeatRow{Row: seat.Row}
		}

		apiSeat := api.Seat{
			Code:      seat.Code(),
			Row:       seat.Row,
			Column:    seat.Column,
			Status:    string(seat.Status),
			Available: seat.Available(),
		}

		if rec := seat.Record; rec != nil {
			id := rec.ID
			apiSeat.Id = &id
			apiSeat.Type = rec.Type
			apiSeat.Price = rec.Price
		}

		currentRow.Seats = append(currentRow.Seats, apiSeat)
	}

	seatRows = append(seatRows, currentRow)

	return seatRows
}
