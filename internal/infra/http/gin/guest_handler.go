package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	bookingapp "staybook/internal/app/handlers/booking"
	guestapp "staybook/internal/app/handlers/guest"
	"staybook/internal/app/queries"
)

type GuestHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type registerGuestRequest struct {
	Name string `json:"name"`
}

func (h GuestHandler) Register(c *gin.Context) {
	var req registerGuestRequest
	if err := bindJSON(c, &req); err != nil {
		handleError(c, h.Logger, err)
		return
	}
	result, err := commands.Dispatch[guestapp.RegisterGuestCommand, *dto.Guest](c.Request.Context(), h.Commands, guestapp.RegisterGuestCommand{Name: req.Name})
	if err != nil {
		handleError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h GuestHandler) Get(c *gin.Context) {
	result, err := queries.Ask[guestapp.GetGuestQuery, *dto.Guest](c.Request.Context(), h.Queries, guestapp.GetGuestQuery{GuestID: c.Param("id")})
	if err != nil {
		handleError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h GuestHandler) Bookings(c *gin.Context) {
	q := bookingapp.ListGuestBookingsQuery{GuestID: c.Param("id")}
	result, err := queries.Ask[bookingapp.ListGuestBookingsQuery, *dto.BookingCollection](c.Request.Context(), h.Queries, q)
	if err != nil {
		handleError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ GuestHTTP = GuestHandler{}
