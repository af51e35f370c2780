package fiber

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"kpi-service/internal/metrics/core/domain"
	"kpi-service/internal/metrics/core/usecase"
	"kpi-service/internal/platform/logger"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type GetMetricUseCase interface {
	Execute(ctx context.Context, in usecase.GetMetricInput) domain.MetricResult
	Catalogue() []domain.MetricDefinition
}

type MetricsHandler struct {
	uc       GetMetricUseCase
	validate *validator.Validate
	log      logger.Logger
}

func NewMetricsHandler(uc GetMetricUseCase, log logger.Logger) *MetricsHandler {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report query parameter names instead of struct fields
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if tag := fld.Tag.Get("query"); tag != "" && tag != "-" {
			return tag
		}
		return fld.Name
	})
	return &MetricsHandler{uc: uc, validate: v, log: log}
}

// GetMetric godoc
// @Summary Query a KPI
// @Description Returns one metric per entity and platform, ranked by value
// @Tags KPI
// @Produce json
// @Param metric query string false "Metric key or alias (defaults to offtake)"
// @Param platform query string false "Platform, All for every platform"
// @Param brand query string false "Brand (substring match)"
// @Param category query string false "Category"
// @Param location query string false "Location / city"
// @Param from query string false "Start date YYYY-MM-DD"
// @Param to query string false "End date YYYY-MM-DD"
// @Success 200 {object} MetricResponse
// @Failure 400 {object} ErrorResponse
// @Router /kpi [get]
func (h *MetricsHandler) GetMetric(c *fiber.Ctx) error {
	var q MetricQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_query",
			Message: err.Error(),
		})
	}

	if err := h.validate.Struct(q); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
				Error:   "invalid_query",
				Message: err.Error(),
			})
		}
		// oversized parameters are treated as absent
		log := logger.C(c.UserContext(), h.log)
		for _, fe := range fieldErrs {
			q.drop(fe.Field())
			log.Warn().Str("param", fe.Field()).Msg(fieldMessage(fe))
		}
	}

	res := h.uc.Execute(c.UserContext(), usecase.GetMetricInput{
		Metric:  q.Metric,
		Filters: q.rawFilter(),
	})

	return c.Status(http.StatusOK).JSON(toMetricResponse(res))
}

// ListMetrics godoc
// @Summary List metrics
// @Description Returns every registered metric definition
// @Tags KPI
// @Produce json
// @Success 200 {array} MetricDefinitionResponse
// @Router /kpi/metrics [get]
func (h *MetricsHandler) ListMetrics(c *fiber.Ctx) error {
	defs := h.uc.Catalogue()
	resp := make([]MetricDefinitionResponse, 0, len(defs))
	for _, d := range defs {
		resp = append(resp, MetricDefinitionResponse{
			Key:      d.Key,
			Label:    d.Label,
			Strategy: d.StrategyName(),
			Display:  string(d.Display),
		})
	}
	return c.Status(http.StatusOK).JSON(resp)
}

// Health godoc
// @Summary Liveness check
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /healthz [get]
func (h *MetricsHandler) Health(c *fiber.Ctx) error {
	return c.Status(http.StatusOK).JSON(HealthResponse{Status: "ok"})
}

// rawFilter keeps only the parameters the caller actually sent.
func (q MetricQuery) rawFilter() domain.RawFilter {
	raw := domain.RawFilter{}
	for k, v := range map[string]string{
		"platform": q.Platform,
		"brand":    q.Brand,
		"category": q.Category,
		"location": q.Location,
		"dateFrom": q.From,
		"dateTo":   q.To,
	} {
		if strings.TrimSpace(v) != "" {
			raw[k] = v
		}
	}
	return raw
}

// drop clears the parameter with the given query name.
func (q *MetricQuery) drop(name string) {
	switch name {
	case "metric":
		q.Metric = ""
	case "platform":
		q.Platform = ""
	case "brand":
		q.Brand = ""
	case "category":
		q.Category = ""
	case "location":
		q.Location = ""
	case "from":
		q.From = ""
	case "to":
		q.To = ""
	}
}

func fieldMessage(fe validator.FieldError) string {
	if fe.Tag() == "max" {
		return fmt.Sprintf("%s longer than %s characters, ignored", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s is invalid, ignored", fe.Field())
}

func toMetricResponse(res domain.MetricResult) MetricResponse {
	resp := MetricResponse{
		Metric:    res.Metric.Key,
		Label:     res.Metric.Label,
		Display:   string(res.Metric.Display),
		Defaulted: res.Defaulted,
		Records:   make([]RecordResponse, 0, len(res.Records)),
	}
	for _, rec := range res.Records {
		out := RecordResponse{
			Name:      rec.Name,
			Category:  rec.Category,
			Platforms: make(map[string]PlatformValueResponse, len(rec.Platforms)),
		}
		for pk, pv := range rec.Platforms {
			out.Platforms[string(pk)] = PlatformValueResponse{
				Value: pv.Value,
				Delta: pv.Delta,
				Raw:   pv.Raw,
			}
		}
		resp.Records = append(resp.Records, out)
	}
	return resp
}
