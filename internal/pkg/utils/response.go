package utils

import (
	stderrors "errors"

	"github.com/gofiber/fiber/v2"
	"github.com/lpt-gateway/internal/pkg/errors"
	"github.com/lpt-gateway/internal/pkg/validator"
)

type SuccessResponse struct {
	Data interface{} `json:"data"`
	Meta *Meta       `json:"meta,omitempty"`
}

type ErrorResponse struct {
	Error *errors.AppError `json:"error"`
}

type Meta struct {
	Total    int     `json:"total,omitempty"`
	TimeMSec float64 `json:"time_ms,omitempty"`
}

func SendSuccess(c *fiber.Ctx, data interface{}, meta *Meta) error {
	return c.JSON(SuccessResponse{
		Data: data,
		Meta: meta,
	})
}

// SendNegotiated writes data as XML when the client prefers it, JSON otherwise.
func SendNegotiated(c *fiber.Ctx, data interface{}) error {
	switch c.Accepts(fiber.MIMEApplicationJSON, fiber.MIMEApplicationXML, fiber.MIMETextXML) {
	case fiber.MIMEApplicationXML, fiber.MIMETextXML:
		return c.XML(data)
	default:
		return c.JSON(data)
	}
}

func SendError(c *fiber.Ctx, err error) error {
	if fields := validator.FieldErrors(err); fields != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: errors.ErrInvalidRequest.WithDetails(fields),
		})
	}

	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return c.Status(appErr.StatusCode).JSON(ErrorResponse{
			Error: appErr,
		})
	}

	// Unknown error - return 500
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error: errors.ErrInternalServer,
	})
}
