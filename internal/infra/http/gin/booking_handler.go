package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	bookingapp "staybook/internal/app/handlers/booking"
	"staybook/internal/app/queries"
)

type BookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type createBookingRequest struct {
	PropertyID string `json:"property_id"`
	GuestID    string `json:"guest_id"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	GuestCount int    `json:"guest_count"`
}

func (h BookingHandler) Create(c *gin.Context) {
	var req createBookingRequest
	if err := bindJSON(c, &req); err != nil {
		handleError(c, h.Logger, err)
		return
	}
	start, err := parseDate("start_date", req.StartDate)
	if err != nil {
		handleError(c, h.Logger, err)
		return
	}
	end, err := parseDate("end_date", req.EndDate)
	if err != nil {
		handleError(c, h.Logger, err)
		return
	}
	cmd := bookingapp.CreateBookingCommand{
		PropertyID:      req.PropertyID,
		GuestID:         req.GuestID,
		StartDate:       start,
		EndDate:         end,
		Guests:          req.GuestCount,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[bookingapp.CreateBookingCommand, *bookingapp.CreateBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		handleError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result.Booking)
}

func (h BookingHandler) Get(c *gin.Context) {
	result, err := queries.Ask[bookingapp.GetBookingQuery, *dto.Booking](c.Request.Context(), h.Queries, bookingapp.GetBookingQuery{BookingID: c.Param("id")})
	if err != nil {
		handleError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) Cancel(c *gin.Context) {
	cmd := bookingapp.CancelBookingCommand{BookingID: c.Param("id")}
	result, err := commands.Dispatch[bookingapp.CancelBookingCommand, *bookingapp.CancelBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		handleError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) RefundQuote(c *gin.Context) {
	result, err := queries.Ask[bookingapp.RefundQuoteQuery, *dto.RefundQuote](c.Request.Context(), h.Queries, bookingapp.RefundQuoteQuery{BookingID: c.Param("id")})
	if err != nil {
		handleError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ BookingHTTP = BookingHandler{}
