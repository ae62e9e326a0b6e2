package handlers

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/anamaak-service/internal/api/dto"
	"github.com/spec-kit/anamaak-service/internal/auth"
	"github.com/spec-kit/anamaak-service/internal/domain"
	"github.com/spec-kit/anamaak-service/internal/service"
	"github.com/spec-kit/anamaak-service/internal/upload"
	"github.com/spec-kit/anamaak-service/pkg/util"
)

// trackingCodePattern matches the public tracking codes, e.g. SIG-2026-0042.
var trackingCodePattern = regexp.MustCompile(`^SIG-\d{4}-\d{4}$`)

// filterWildcard is the query value meaning "no filter" on list endpoints.
const filterWildcard = "tous"

// ReportsHandler manages the signalement endpoints.
type ReportsHandler struct {
	service *service.ReportService
	storage *upload.Storage
}

// NewReportsHandler constructs handler.
func NewReportsHandler(reportService *service.ReportService, storage *upload.Storage) *ReportsHandler {
	return &ReportsHandler{service: reportService, storage: storage}
}

// Create POST /api/signalements. Authentication is optional; anonymous
// submissions are accepted but earn no points.
func (h *ReportsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("Données invalides", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	input := service.CreateReportInput{
		Type:         req.Type,
		OtherType:    req.AutreType,
		Description:  req.Description,
		Location:     req.Localisation,
		Neighborhood: req.Quartier,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
	}

	if file, err := c.FormFile("photo"); err == nil && file != nil {
		path, err := h.storage.Save(file)
		if err != nil {
			return err
		}
		input.PhotoPath = &path
	}

	if user, ok := auth.UserFromContext(c); ok {
		input.UserID = &user.ID
	}

	report, err := h.service.Create(c.Context(), input)
	if err != nil {
		// Do not keep the photo of a submission that never made it.
		if input.PhotoPath != nil {
			_ = h.storage.Remove(*input.PhotoPath)
		}
		return err
	}
	return respond(c, fiber.StatusCreated,
		"Signalement créé avec succès. Conservez votre code de suivi.", fiber.Map{
			"signalement": dto.NewReportResponse(report),
			"code_suivi":  report.TrackingCode,
		})
}

// List GET /api/signalements.
func (h *ReportsHandler) List(c *fiber.Ctx) error {
	filter, err := parseListQuery(c)
	if err != nil {
		return err
	}
	if filter.UserOnly {
		if user, ok := auth.UserFromContext(c); ok {
			filter.UserID = &user.ID
		} else {
			// Anonymous callers asking for their own reports get the
			// public list, the filter is simply ignored.
			filter.UserOnly = false
		}
	}

	reports, pagination, err := h.service.List(c.Context(), filter)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "", fiber.Map{
		"signalements": dto.NewReportResponses(reports),
		"pagination": dto.PaginationResponse{
			CurrentPage:  pagination.CurrentPage,
			TotalPages:   pagination.TotalPages,
			TotalItems:   pagination.TotalItems,
			ItemsPerPage: pagination.ItemsPerPage,
		},
	})
}

// Statistics GET /api/signalements/statistiques.
func (h *ReportsHandler) Statistics(c *fiber.Ctx) error {
	stats, err := h.service.Statistics(c.Context())
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "", dto.NewStatisticsResponse(stats))
}

// GetByCode GET /api/signalements/code/:code.
func (h *ReportsHandler) GetByCode(c *fiber.Ctx) error {
	code := strings.ToUpper(strings.TrimSpace(c.Params("code")))
	if !trackingCodePattern.MatchString(code) {
		return util.NewValidationError("Format de code invalide. Utilisez le format SIG-YYYY-XXXX", nil)
	}

	report, history, err := h.service.GetByCode(c.Context(), code)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "", fiber.Map{
		"signalement": dto.NewReportResponse(report),
		"historique":  dto.NewHistoryResponses(history),
	})
}

// GetByID GET /api/signalements/:id, admin only.
func (h *ReportsHandler) GetByID(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	report, history, err := h.service.GetByID(c.Context(), id)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "", fiber.Map{
		"signalement": dto.NewReportResponse(report),
		"historique":  dto.NewHistoryResponses(history),
	})
}

// UpdateStatus PUT /api/signalements/:id/statut, admin only.
func (h *ReportsHandler) UpdateStatus(c *fiber.Ctx) error {
	admin, ok := auth.UserFromContext(c)
	if !ok {
		return util.NewUnauthorized("Token d'accès requis")
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("Données invalides", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	comment := ""
	if req.Commentaire != nil {
		comment = *req.Commentaire
	}
	report, err := h.service.UpdateStatus(c.Context(), admin, id, domain.ReportStatus(req.Statut), comment)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Statut mis à jour avec succès", fiber.Map{
		"signalement": dto.NewReportResponse(report),
	})
}

// Hide DELETE /api/signalements/:id, admin only. The report stays in the
// database, it just disappears from public views.
func (h *ReportsHandler) Hide(c *fiber.Ctx) error {
	admin, ok := auth.UserFromContext(c)
	if !ok {
		return util.NewUnauthorized("Token d'accès requis")
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.service.Hide(c.Context(), admin, id); err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Signalement masqué avec succès", nil)
}

// Restore POST /api/signalements/:id/restaurer, admin only.
func (h *ReportsHandler) Restore(c *fiber.Ctx) error {
	admin, ok := auth.UserFromContext(c)
	if !ok {
		return util.NewUnauthorized("Token d'accès requis")
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.service.Restore(c.Context(), admin, id); err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Signalement restauré avec succès", nil)
}

func parseID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, util.NewValidationError("Identifiant invalide", nil)
	}
	return id, nil
}

func parseListQuery(c *fiber.Ctx) (service.ListFilter, error) {
	filter := service.ListFilter{
		Page:  parseInt(c.Query("page"), 1),
		Limit: parseInt(c.Query("limit"), 20),
	}

	if raw := strings.TrimSpace(c.Query("statut")); raw != "" && raw != filterWildcard {
		status := domain.ReportStatus(raw)
		if !status.Valid() {
			return filter, util.NewValidationError("Statut invalide. Valeurs autorisées: soumise, en_traitement, resolu", nil)
		}
		filter.Status = &status
	}
	if raw := strings.TrimSpace(c.Query("type")); raw != "" && raw != filterWildcard {
		filter.Type = &raw
	}
	if raw := strings.TrimSpace(c.Query("quartier")); raw != "" && raw != filterWildcard {
		filter.Neighborhood = &raw
	}
	if raw := strings.TrimSpace(c.Query("search")); raw != "" {
		filter.Search = &raw
	}
	filter.UserOnly = c.Query("user_only") == "true"

	if filter.Limit > 100 {
		filter.Limit = 100
	}
	return filter, nil
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
