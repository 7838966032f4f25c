package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	bookingapp "staybook/internal/app/handlers/booking"
	propertyapp "staybook/internal/app/handlers/property"
	"staybook/internal/app/queries"
)

type PropertyHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type createPropertyRequest struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	MaxGuests   int       `json:"max_guests"`
	NightlyRate dto.Money `json:"nightly_rate"`
}

func (h PropertyHandler) Create(c *gin.Context) {
	var req createPropertyRequest
	if err := bindJSON(c, &req); err != nil {
		handleError(c, h.Logger, err)
		return
	}
	cmd := propertyapp.CreatePropertyCommand{
		Name:             req.Name,
		Description:      req.Description,
		MaxGuests:        req.MaxGuests,
		NightlyRateCents: req.NightlyRate.Amount,
		Currency:         req.NightlyRate.Currency,
	}
	result, err := commands.Dispatch[propertyapp.CreatePropertyCommand, *dto.Property](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		handleError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h PropertyHandler) Get(c *gin.Context) {
	result, err := queries.Ask[propertyapp.GetPropertyQuery, *dto.Property](c.Request.Context(), h.Queries, propertyapp.GetPropertyQuery{PropertyID: c.Param("id")})
	if err != nil {
		handleError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h PropertyHandler) Bookings(c *gin.Context) {
	q := bookingapp.ListPropertyBookingsQuery{PropertyID: c.Param("id")}
	result, err := queries.Ask[bookingapp.ListPropertyBookingsQuery, *dto.BookingCollection](c.Request.Context(), h.Queries, q)
	if err != nil {
		handleError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ PropertyHTTP = PropertyHandler{}
