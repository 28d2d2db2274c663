package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/Checker-Finance/onramp/pkg/model"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	Field string `json:"field,omitempty"`
}

// CountryResponse is the body of GET /api/v1/country.
type CountryResponse struct {
	CountryCode string `json:"countryCode"`
	Known       bool   `json:"known"`
}

// writeError maps BadRequest to 400 and everything else, SigningFailure included, to 500.
func writeError(c *fiber.Ctx, err error) error {
	var re *model.RequestError
	if !errors.As(err, &re) {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "internal error"})
	}
	if re.Kind == model.BadRequest {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: re.Message, Kind: string(re.Kind), Field: re.Field})
	}
	// Signing internals stay out of the response.
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: re.Message, Kind: string(re.Kind)})
}
