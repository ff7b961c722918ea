// ABOUTME: Error handling utilities for API handlers
// ABOUTME: Converts domain errors to appropriate HTTP responses

package handlers

import (
	stderrors "errors"
	"time"

	"blogforge-app-api/core/errors"
	"github.com/danielgtaylor/huma/v2"
)

// balanceErrorModel carries the balance fields clients need to render an
// upsell or refill prompt alongside the 402.
type balanceErrorModel struct {
	RequiredBalance float64    `json:"required_balance"`
	CurrentBalance  float64    `json:"current_balance"`
	Shortfall       float64    `json:"shortfall"`
	NextRefillTime  *time.Time `json:"next_refill_time,omitempty"`
}

func (m *balanceErrorModel) Error() string {
	return "insufficient balance"
}

// ErrorDetail implements huma.ErrorDetailer so the fields land in the
// response body's details array.
func (m *balanceErrorModel) ErrorDetail() *huma.ErrorDetail {
	return &huma.ErrorDetail{
		Message:  "insufficient balance",
		Location: "balance",
		Value:    m,
	}
}

// toHumaError converts domain errors to appropriate Huma HTTP errors
func toHumaError(err error) error {
	if err == nil {
		return nil
	}

	if errors.IsInsufficientBalance(err) {
		var balErr *errors.InsufficientBalanceError
		if stderrors.As(err, &balErr) {
			return huma.NewError(402, balErr.Error(), &balanceErrorModel{
				RequiredBalance: balErr.RequiredBalance,
				CurrentBalance:  balErr.CurrentBalance,
				Shortfall:       balErr.Shortfall(),
				NextRefillTime:  balErr.NextRefillTime,
			})
		}
		return huma.NewError(402, err.Error())
	}

	if errors.IsAccessDenied(err) {
		return huma.Error403Forbidden(err.Error())
	}

	if errors.IsNotFound(err) {
		return huma.Error404NotFound(err.Error())
	}

	if errors.IsValidation(err) {
		return huma.Error400BadRequest(err.Error())
	}

	if errors.IsExternalAPI(err) {
		var apiErr *errors.ExternalAPIError
		if stderrors.As(err, &apiErr) {
			switch {
			case apiErr.StatusCode >= 500:
				return huma.Error503ServiceUnavailable("External service error", err)
			case apiErr.StatusCode == 429:
				return huma.Error429TooManyRequests("Rate limited by external service")
			case apiErr.StatusCode >= 400:
				return huma.Error400BadRequest("External service request error", err)
			default:
				return huma.Error500InternalServerError("Unexpected external service response", err)
			}
		}
	}

	return huma.Error500InternalServerError("Internal server error", err)
}
