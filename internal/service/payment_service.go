package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/go-redis/redis/v8"
	"github.com/segmentio/kafka-go"
	"net/url"
	"os"
	"storefront-service/internal/entity"
	"storefront-service/internal/repository"
	"strconv"
	"strings"
	"time"
)

// Redirect reason codes sent back to the client status page.
const (
	ReasonMissingOrderID   = "missing_order_id"
	ReasonProcessingError  = "processing_error"
	ReasonInvalidSignature = "invalid_signature"
	ReasonCancelledByUser  = "Payment cancelled by user"
)

type RedirectKind int

const (
	RedirectSuccess RedirectKind = iota
	RedirectFailure
)

// RedirectFields carries the query parameters of a terminal redirect.
// Empty fields are omitted from the URL entirely.
type RedirectFields struct {
	OrderID string
	TranID  string
	Status  string
	Reason  string
}

// BuildRedirect builds the client-facing redirect URL for a gateway
// callback outcome. Pure: no network or storage access.
func BuildRedirect(baseURL string, kind RedirectKind, fields RedirectFields) string {
	if kind == RedirectSuccess {
		return fmt.Sprintf("%s/checkout/payment/success?orderId=%s", baseURL, queryEscape(fields.OrderID))
	}

	var params []string
	if fields.OrderID != "" {
		params = append(params, "id="+queryEscape(fields.OrderID))
	}
	if fields.TranID != "" {
		params = append(params, "tran_id="+queryEscape(fields.TranID))
	}
	if fields.Status != "" {
		params = append(params, "status="+queryEscape(fields.Status))
	}
	if fields.Reason != "" {
		params = append(params, "reason="+queryEscape(fields.Reason))
	}

	u := baseURL + "/checkout/payment/failed"
	if len(params) > 0 {
		u += "?" + strings.Join(params, "&")
	}
	return u
}

// queryEscape encodes like url.QueryEscape but keeps spaces as %20, the
// form the client status pages expect.
func queryEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// PaymentService reconciles inbound gateway callbacks into payment status
// transitions and terminal client redirects.
type PaymentService struct {
	paymentRepo   repository.PaymentRepository
	clientBaseURL string
	gatewaySecret string
	kafkaWriter   *kafka.Writer
	rdb           *redis.Client
}

// NewPaymentService creates a new instance of PaymentService. gatewaySecret
// may be empty, which disables callback signature verification.
func NewPaymentService(paymentRepo repository.PaymentRepository, clientBaseURL, gatewaySecret string, kafkaWriter *kafka.Writer, rdb *redis.Client) *PaymentService {
	return &PaymentService{
		paymentRepo:   paymentRepo,
		clientBaseURL: clientBaseURL,
		gatewaySecret: gatewaySecret,
		kafkaWriter:   kafkaWriter,
		rdb:           rdb,
	}
}

// HandleSuccessCallback processes the gateway's success callback and
// returns the redirect URL. The pending->success transition is persisted
// idempotently; a retried callback changes nothing.
func (s *PaymentService) HandleSuccessCallback(ctx context.Context, form url.Values) string {
	if !s.verifySignature(form) {
		return BuildRedirect(s.clientBaseURL, RedirectFailure, RedirectFields{Reason: ReasonInvalidSignature})
	}

	orderID := form.Get("value_a")
	if orderID == "" {
		return BuildRedirect(s.clientBaseURL, RedirectFailure, RedirectFields{Reason: ReasonMissingOrderID})
	}

	tranID := form.Get("tran_id")
	s.applyTransition(ctx, orderID, tranID, entity.PaymentStatusSuccess)

	return BuildRedirect(s.clientBaseURL, RedirectSuccess, RedirectFields{OrderID: orderID})
}

// HandleFailCallback copies whichever of the gateway's fields were present
// onto the failure redirect, unmodified.
func (s *PaymentService) HandleFailCallback(ctx context.Context, form url.Values) string {
	if !s.verifySignature(form) {
		return BuildRedirect(s.clientBaseURL, RedirectFailure, RedirectFields{Reason: ReasonInvalidSignature})
	}

	orderID := form.Get("value_a")
	tranID := form.Get("tran_id")

	if orderID != "" {
		s.applyTransition(ctx, orderID, tranID, entity.PaymentStatusFailed)
	}

	return BuildRedirect(s.clientBaseURL, RedirectFailure, RedirectFields{
		OrderID: orderID,
		TranID:  tranID,
		Status:  form.Get("status"),
		Reason:  form.Get("error"),
	})
}

// HandleCancelCallback forces status=CANCELLED and the fixed reason,
// whatever the gateway sent.
func (s *PaymentService) HandleCancelCallback(ctx context.Context, form url.Values) string {
	if !s.verifySignature(form) {
		return BuildRedirect(s.clientBaseURL, RedirectFailure, RedirectFields{Reason: ReasonInvalidSignature})
	}

	orderID := form.Get("value_a")
	tranID := form.Get("tran_id")

	if orderID != "" {
		s.applyTransition(ctx, orderID, tranID, entity.PaymentStatusCancelled)
	}

	return BuildRedirect(s.clientBaseURL, RedirectFailure, RedirectFields{
		OrderID: orderID,
		TranID:  tranID,
		Status:  "CANCELLED",
		Reason:  ReasonCancelledByUser,
	})
}

// ProcessingErrorRedirect is the degraded redirect for a callback body
// that could not be parsed at all. Still a 303 target, never an error
// body, so the gateway stops retrying.
func (s *PaymentService) ProcessingErrorRedirect() string {
	return BuildRedirect(s.clientBaseURL, RedirectFailure, RedirectFields{Reason: ReasonProcessingError})
}

// applyTransition persists a guarded status transition and publishes the
// matching payment event once per transaction id. Storage failures are
// logged, never surfaced: the gateway must still get its redirect.
func (s *PaymentService) applyTransition(ctx context.Context, rawOrderID, tranID, newStatus string) {
	orderID, err := strconv.Atoi(rawOrderID)
	if err != nil {
		logger.Warn().Msgf("Callback carried non-numeric order id %q, skipping status update", rawOrderID)
		return
	}

	outcome, err := s.paymentRepo.TransitionStatus(ctx, orderID, tranID, newStatus)
	if err != nil {
		logger.Error().Err(err).Msgf("Error transitioning payment for order %d to %s", orderID, newStatus)
		return
	}

	switch outcome {
	case repository.TransitionRepeated:
		logger.Info().Msgf("Duplicate %s callback for order %d, no-op", newStatus, orderID)
		return
	case repository.TransitionRefused:
		logger.Warn().Msgf("Refused %s callback for order %d: payment already terminal", newStatus, orderID)
		return
	}

	if s.shouldPublish(ctx, tranID) {
		err = s.publishPaymentEvent(ctx, orderID, tranID, newStatus)
		if err != nil {
			logger.Error().Err(err).Msgf("Error publishing payment event for order %d", orderID)
		}
	}
}

// shouldPublish dedupes event publication by gateway transaction id so a
// retried callback does not double-publish.
func (s *PaymentService) shouldPublish(ctx context.Context, tranID string) bool {
	if os.Getenv("ENV") == "test" {
		return false
	}
	if tranID == "" {
		return true
	}

	redisKey := fmt.Sprintf("payment-tran:%s", tranID)
	val, err := s.rdb.Get(ctx, redisKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		logger.Error().Err(err).Msgf("Error checking transaction key %s", tranID)
		return true
	}
	if val != "" {
		return false
	}

	err = s.rdb.Set(ctx, redisKey, "seen", 24*time.Hour).Err()
	if err != nil {
		logger.Error().Err(err).Msgf("Error storing transaction key %s", tranID)
	}
	return true
}

func (s *PaymentService) publishPaymentEvent(ctx context.Context, orderID int, tranID, status string) error {
	payload, err := json.Marshal(map[string]interface{}{
		"order_id":       orderID,
		"transaction_id": tranID,
		"status":         status,
	})
	if err != nil {
		return err
	}

	// payment-success-42 or payment-failed-42
	msg := kafka.Message{
		Key:   []byte(fmt.Sprintf("payment-%s-%d", status, orderID)),
		Value: payload,
	}

	return s.kafkaWriter.WriteMessages(ctx, msg)
}

// verifySignature checks the optional shared-secret HMAC over the callback
// body. With no secret configured the check is skipped, matching the
// gateway's manual-confirmation flow.
func (s *PaymentService) verifySignature(form url.Values) bool {
	if s.gatewaySecret == "" {
		return true
	}

	mac := hmac.New(sha256.New, []byte(s.gatewaySecret))
	mac.Write([]byte(form.Get("value_a") + "|" + form.Get("tran_id")))
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(form.Get("signature")))
}
