package api

import (
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"os"
	"storefront-service/internal/auth"
	"storefront-service/internal/service"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

type AddressHandler struct {
	addressService service.AddressService
}

func NewAddressHandler(addressService service.AddressService) *AddressHandler {
	return &AddressHandler{addressService: addressService}
}

// GetAddress serves the caller's shipping address --> GET /profile/address
// Absent session, no known address, and a storage failure all render as
// a null address; the profile page stays available either way.
func (h *AddressHandler) GetAddress(c echo.Context) error {
	userID, _, ok := auth.ResolveSession(c)
	if !ok {
		return c.JSON(200, map[string]interface{}{"address": nil})
	}

	address, err := h.addressService.GetAddressForUser(c.Request().Context(), userID)
	if err != nil {
		logger.Error().Err(err).Msgf("Serving absent address to user %d after storage failure", userID)
		return c.JSON(200, map[string]interface{}{"address": nil})
	}
	if address == nil {
		return c.JSON(200, map[string]interface{}{"address": nil})
	}

	return c.JSON(200, map[string]interface{}{"address": address})
}
