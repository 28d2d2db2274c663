package api

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Checker-Finance/onramp/onramp-gateway/internal/eligibility"
	"github.com/Checker-Finance/onramp/onramp-gateway/internal/onramp"
	"github.com/Checker-Finance/onramp/pkg/model"
	"github.com/Checker-Finance/onramp/pkg/utils"
)

// OnrampService defines the operations used by the handler.
type OnrampService interface {
	CountryFor(ctx context.Context, ip string) string
	GetQuotes(ctx context.Context, req model.QuoteRequest) (model.AggregateResult, error)
	GetRedirect(ctx context.Context, req model.RedirectRequest) (*model.RedirectTarget, error)
	Sign(msg string) (string, error)
	Onboard(ctx context.Context, ip string) onramp.OnboardResult
}

// Handler serves the on-ramp HTTP API.
type Handler struct {
	logger     *zap.Logger
	service    OnrampService
	registered func(model.ProviderID) bool
}

// NewHandler creates a Handler. registered reports which provider IDs the schema accepts.
func NewHandler(logger *zap.Logger, service OnrampService, registered func(model.ProviderID) bool) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{logger: logger, service: service, registered: registered}
}

// Quote handles POST /api/v1/quote.
func (h *Handler) Quote(c *fiber.Ctx) error {
	var body QuoteBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}
	if err := body.Validate(h.registered); err != nil {
		return writeError(c, err)
	}

	cc := h.service.CountryFor(c.UserContext(), c.IP())
	res, err := h.service.GetQuotes(c.UserContext(), toQuoteRequest(body, cc))
	if err != nil {
		h.logger.Warn("api.quote.rejected", zap.String("country", cc), zap.Error(err))
		return writeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(res)
}

// Init handles POST /api/v1/init and returns the signed provider redirect.
func (h *Handler) Init(c *fiber.Ctx) error {
	var body RedirectBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}
	if err := body.Validate(h.registered); err != nil {
		return writeError(c, err)
	}

	target, err := h.service.GetRedirect(c.UserContext(), toRedirectRequest(body))
	if err != nil {
		if model.IsBadRequest(err) {
			h.logger.Info("api.init.rejected", zap.String("provider", body.Provider), zap.Error(err))
		} else {
			h.logger.Error("api.init.failed", zap.String("provider", body.Provider), zap.Error(err))
		}
		return writeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(target)
}

// Sign handles POST /api/v1/sign. The response body is the bare base64 signature.
func (h *Handler) Sign(c *fiber.Ctx) error {
	var body SignBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}
	if err := body.Validate(); err != nil {
		return writeError(c, err)
	}

	sig, err := h.service.Sign(*body.StringToSign)
	if err != nil {
		h.logger.Error("api.sign.failed", zap.Error(err))
		return writeError(c, err)
	}
	return c.Status(fiber.StatusOK).SendString(sig)
}

// Onboard handles GET /api/v1/onboard.
func (h *Handler) Onboard(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(h.service.Onboard(c.UserContext(), c.IP()))
}

// Country handles GET /api/v1/country.
func (h *Handler) Country(c *fiber.Ctx) error {
	cc := h.service.CountryFor(c.UserContext(), c.IP())
	h.logger.Debug("api.country", zap.String("ip", utils.MaskIP(c.IP())), zap.String("country", cc))
	return c.Status(fiber.StatusOK).JSON(CountryResponse{CountryCode: cc, Known: eligibility.Known(cc)})
}
