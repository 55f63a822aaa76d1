package api

import (
	"github.com/labstack/echo/v4"
	"net/http"
	"storefront-service/internal/service"
	"strings"
)

// SkipGatewayCallbacks exempts the gateway callback routes from rate
// limiting. The gateway retries from a handful of egress IPs and must
// always receive a terminal 303, never a 429 body.
func SkipGatewayCallbacks(c echo.Context) bool {
	return strings.HasPrefix(c.Path(), "/payment/callback/")
}

type PaymentHandler struct {
	paymentService service.PaymentService
}

func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// The gateway always gets a 303 back, even for a body we cannot parse.
// An error status here would make it retry against a dead end.

// Success handles the gateway success callback --> POST /payment/callback/success
func (h *PaymentHandler) Success(c echo.Context) error {
	form, err := c.FormParams()
	if err != nil {
		return c.Redirect(http.StatusSeeOther, h.paymentService.ProcessingErrorRedirect())
	}
	return c.Redirect(http.StatusSeeOther, h.paymentService.HandleSuccessCallback(c.Request().Context(), form))
}

// Fail handles the gateway failure callback --> POST /payment/callback/fail
func (h *PaymentHandler) Fail(c echo.Context) error {
	form, err := c.FormParams()
	if err != nil {
		return c.Redirect(http.StatusSeeOther, h.paymentService.ProcessingErrorRedirect())
	}
	return c.Redirect(http.StatusSeeOther, h.paymentService.HandleFailCallback(c.Request().Context(), form))
}

// Cancel handles the gateway cancel callback --> POST /payment/callback/cancel
func (h *PaymentHandler) Cancel(c echo.Context) error {
	form, err := c.FormParams()
	if err != nil {
		return c.Redirect(http.StatusSeeOther, h.paymentService.ProcessingErrorRedirect())
	}
	return c.Redirect(http.StatusSeeOther, h.paymentService.HandleCancelCallback(c.Request().Context(), form))
}
