package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/lpt-gateway/internal/domain"
	"github.com/lpt-gateway/internal/pkg/errors"
	"github.com/lpt-gateway/internal/pkg/utils"
	"github.com/lpt-gateway/internal/pkg/validator"
	"github.com/lpt-gateway/internal/usecase"
	"github.com/lpt-gateway/internal/usecase/dto"
	"go.uber.org/zap"
)

// DeparturesHandler - обработчик запросов отправлений
type DeparturesHandler struct {
	departuresUC *usecase.DeparturesUseCase
	logger       *zap.Logger
}

// NewDeparturesHandler - создание нового DeparturesHandler
func NewDeparturesHandler(departuresUC *usecase.DeparturesUseCase, logger *zap.Logger) *DeparturesHandler {
	return &DeparturesHandler{
		departuresUC: departuresUC,
		logger:       logger,
	}
}

// GetDepartures godoc
// @Summary Отправления для адреса или координат
// @Description Определяет провайдера по почтовому индексу (или использует провайдер по умолчанию для координат) и возвращает ближайшие остановки с отправлениями. Ответ в XML при Accept: application/xml.
// @Tags Departures
// @Accept json
// @Produce json,xml
// @Param request body dto.DeparturesRequest true "Адрес, ID адреса, текст или координаты"
// @Success 200 {object} dto.DeparturesResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/departures [post]
func (h *DeparturesHandler) GetDepartures(c *fiber.Ctx) error {
	var req dto.DeparturesRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.WithDetail("body", "invalid request body"))
	}

	return h.respond(c, req)
}

// SearchDepartures godoc
// @Summary Отправления по тексту или координатам
// @Description Свободный текст должен содержать пятизначный почтовый индекс.
// @Tags Departures
// @Produce json,xml
// @Param q query string false "Адрес в свободной форме, например 'Alexanderplatz 1, 10178 Berlin'"
// @Param lat query number false "Широта"
// @Param lon query number false "Долгота"
// @Param stops query int false "Максимум остановок" default(3)
// @Param departures query int false "Максимум отправлений на остановку" default(3)
// @Success 200 {object} dto.DeparturesResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/departures [get]
func (h *DeparturesHandler) SearchDepartures(c *fiber.Ctx) error {
	req := dto.DeparturesRequest{Text: c.Query("q")}

	var err error
	if req.Lat, err = queryFloat(c, "lat"); err != nil {
		return utils.SendError(c, err)
	}
	if req.Lon, err = queryFloat(c, "lon"); err != nil {
		return utils.SendError(c, err)
	}
	if req.Stops, err = queryInt(c, "stops"); err != nil {
		return utils.SendError(c, err)
	}
	if req.Departures, err = queryInt(c, "departures"); err != nil {
		return utils.SendError(c, err)
	}

	return h.respond(c, req)
}

// ListProviders godoc
// @Summary Загруженные провайдеры
// @Tags Departures
// @Produce json,xml
// @Success 200 {object} dto.ProvidersResponse
// @Router /api/v1/providers [get]
func (h *DeparturesHandler) ListProviders(c *fiber.Ctx) error {
	return utils.SendNegotiated(c, h.departuresUC.Providers(c.UserContext()))
}

func (h *DeparturesHandler) respond(c *fiber.Ctx, req dto.DeparturesRequest) error {
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	var (
		result *domain.DeparturesResult
		err    error
	)
	if req.HasAddressID() {
		result, err = h.departuresUC.GetDeparturesForAddressID(c.UserContext(), *req.Address, req.Stops, req.Departures)
	} else {
		target, terr := req.Target()
		if terr != nil {
			return utils.SendError(c, terr)
		}
		result, err = h.departuresUC.GetDepartures(c.UserContext(), target, req.Stops, req.Departures)
	}
	if err != nil {
		h.logger.Debug("Departures request failed", zap.Error(err))
		return utils.SendError(c, err)
	}

	return utils.SendNegotiated(c, dto.NewDeparturesResponse(result))
}

func queryFloat(c *fiber.Ctx, key string) (*float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, errors.ErrInvalidRequest.WithDetail(key, "must be a number")
	}
	return &v, nil
}

func queryInt(c *fiber.Ctx, key string) (*int, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, errors.ErrInvalidRequest.WithDetail(key, "must be an integer")
	}
	return &v, nil
}
