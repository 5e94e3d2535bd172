// Package booking is the HTTP client of the booking backend, which owns seat
// records and temporary holds.
package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/lmcalvo/cine-checkout/internal/domain"
	"github.com/shopspring/decimal"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

type layoutResponse struct {
	Rows    int `json:"rows"`
	Columns int `json:"columns"`
}

type seatResponse struct {
	ID          int             `json:"id"`
	Row         string          `json:"row"`
	Column      int             `json:"column"`
	Type        string          `json:"type"`
	TheaterID   int             `json:"theaterId"`
	Price       decimal.Decimal `json:"price"`
	IsAvailable bool            `json:"isAvailable"`
	IsReserved  bool            `json:"isReserved"`
}

type showtimeSeatsResponse struct {
	Layout layoutResponse `json:"layout"`
	Seats  []seatResponse `json:"seats"`
}

type seatIDsRequest struct {
	Seats []int `json:"seats"`
}

type validateSeatsResponse struct {
	Valid bool `json:"valid"`
}

// GetTheaterLayout fetches the venue geometry for a theater. Failures degrade
// to a zero layout, which renders as "nothing to draw" rather than an error.
func (c *Client) GetTheaterLayout(ctx context.Context, theaterID int) domain.Layout {
	var resp layoutResponse

	err := c.getJSON(ctx, fmt.Sprintf("/theaters/%d/layout", theaterID), &resp)
	if err != nil {
		c.logger.Error("failed to fetch theater layout", "theater_id", theaterID, "error", err)
		return domain.Layout{}
	}

	return domain.Layout{Rows: resp.Rows, Columns: resp.Columns}
}

// GetSeatsByShowtime fetches the layout and the sparse seat records for a
// showtime. Failures degrade to a zero layout with no records.
func (c *Client) GetSeatsByShowtime(ctx context.Context, showtimeID int) (domain.Layout, []domain.SeatRecord) {
	var resp showtimeSeatsResponse

	err := c.getJSON(ctx, fmt.Sprintf("/showtimes/%d/seats", showtimeID), &resp)
	if err != nil {
		c.logger.Error("failed to fetch showtime seats", "showtime_id", showtimeID, "error", err)
		return domain.Layout{}, nil
	}

	layout := domain.Layout{Rows: resp.Layout.Rows, Columns: resp.Layout.Columns}

	records := make([]domain.SeatRecord, len(resp.Seats))
	for i, s := range resp.Seats {
		records[i] = domain.SeatRecord{
			ID:        s.ID,
			Row:       s.Row,
			Column:    s.Column,
			Type:      s.Type,
			TheaterID: s.TheaterID,
			Price:     s.Price,
			Available: s.IsAvailable,
			Reserved:  s.IsReserved,
		}
	}

	return layout, records
}

// ValidateSeats reports whether every seat in the set is still biddable.
// Must be called before attempting a hold. Any failure reads as invalid.
func (c *Client) ValidateSeats(ctx context.Context, showtimeID int, seatIDs []int) bool {
	var resp validateSeatsResponse

	err := c.postJSON(ctx, fmt.Sprintf("/showtimes/%d/validate-seats", showtimeID), seatIDsRequest{Seats: seatIDs}, &resp)
	if err != nil {
		c.logger.Error("failed to validate seats", "showtime_id", showtimeID, "seat_ids", seatIDs, "error", err)
		return false
	}

	return resp.Valid
}

// ReserveSeats places a temporary hold on the seats. Re-reserving a still-valid
// set only re-affirms the hold.
func (c *Client) ReserveSeats(ctx context.Context, showtimeID int, seatIDs []int) bool {
	err := c.postJSON(ctx, fmt.Sprintf("/showtimes/%d/reserve-seats", showtimeID), seatIDsRequest{Seats: seatIDs}, nil)
	if err != nil {
		c.logger.Error("failed to reserve seats", "showtime_id", showtimeID, "seat_ids", seatIDs, "error", err)
		return false
	}

	return true
}

// ReleaseSeats releases a previously placed hold. Releasing seats that were
// never held is a no-op on the backend.
func (c *Client) ReleaseSeats(ctx context.Context, showtimeID int, seatIDs []int) bool {
	err := c.postJSON(ctx, fmt.Sprintf("/showtimes/%d/release-seats", showtimeID), seatIDsRequest{Seats: seatIDs}, nil)
	if err != nil {
		c.logger.Error("failed to release seats", "showtime_id", showtimeID, "seat_ids", seatIDs, "error", err)
		return false
	}

	return true
}

// GetOccupiedSeats returns the codes of seats currently held or sold for a
// showtime. Unlike the hold protocol this reports errors, so the occupancy
// poller can decide whether to keep the cached snapshot.
func (c *Client) GetOccupiedSeats(ctx context.Context, showtimeID int) ([]string, error) {
	var resp showtimeSeatsResponse

	err := c.getJSON(ctx, fmt.Sprintf("/showtimes/%d/seats", showtimeID), &resp)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch occupied seats: %w", err)
	}

	codes := make([]string, 0, len(resp.Seats))
	for _, s := range resp.Seats {
		if !s.IsAvailable || s.IsReserved {
			codes = append(codes, domain.SeatCode(s.Row, s.Column))
		}
	}

	return codes, nil
}

func (c *Client) getJSON(ctx context.Context, path string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	return c.do(req, dst)
}

func (c *Client) postJSON(ctx context.Context, path string, body, dst any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	return c.do(req, dst)
}

func (c *Client) do(req *http.Request, dst any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, req.URL.Path)
	}

	if dst == nil {
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(dst)
}
