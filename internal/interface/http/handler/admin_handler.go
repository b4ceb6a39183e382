package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Studio-Zurich/fix-app-sub000/internal/interface/http/dto"
	"github.com/Studio-Zurich/fix-app-sub000/internal/interface/http/response"
	"github.com/Studio-Zurich/fix-app-sub000/internal/service"
)

// AdminHandler обслуживает панель сотрудников: вход, сообщения, статистику и справочник.
type AdminHandler struct {
	auth     *service.AuthService
	reports  *service.ReportService
	taxonomy *service.TaxonomyService
}

func NewAdminHandler(auth *service.AuthService, reports *service.ReportService, taxonomy *service.TaxonomyService) *AdminHandler {
	return &AdminHandler{auth: auth, reports: reports, taxonomy: taxonomy}
}

func (h *AdminHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "email и пароль обязательны")
		return
	}

	res, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToLoginResponse(res))
}

func (h *AdminHandler) ListReports(c *gin.Context) {
	page, err := h.reports.List(c.Request.Context(), service.ReportListInput{
		Status:         c.Query("status"),
		IncidentTypeID: c.Query("incident_type_id"),
		Limit:          parseIntQuery(c, "limit", 20),
		Offset:         parseIntQuery(c, "offset", 0),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, dto.ToReportResponses(page.Reports, h.reports.PublicURL), page.Total, page.Limit, page.Offset)
}

func (h *AdminHandler) GetReport(c *gin.Context) {
	reportID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "некорректный ID сообщения")
		return
	}

	details, err := h.reports.Get(c.Request.Context(), reportID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToReportDetailsResponse(details, h.reports.PublicURL))
}

func (h *AdminHandler) ChangeStatus(c *gin.Context) {
	adminID, err := getAdminID(c)
	if err != nil {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	reportID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "некорректный ID сообщения")
		return
	}

	var req dto.StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "статус обязателен")
		return
	}

	report, err := h.reports.ChangeStatus(c.Request.Context(), reportID, req.Status, adminID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToReportResponse(report, h.reports.PublicURL))
}

func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.reports.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, stats)
}

func (h *AdminHandler) ListIncidentTypes(c *gin.Context) {
	types, err := h.taxonomy.ListAllTypes(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToIncidentTypeResponses(types))
}

func (h *AdminHandler) CreateIncidentType(c *gin.Context) {
	var req dto.TaxonomyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}

	t, err := h.taxonomy.CreateType(c.Request.Context(), req.ToInput())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.ToIncidentTypeResponse(t))
}

func (h *AdminHandler) UpdateIncidentType(c *gin.Context) {
	typeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "некорректный ID типа")
		return
	}

	var req dto.TaxonomyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}

	t, err := h.taxonomy.UpdateType(c.Request.Context(), typeID, req.ToInput())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToIncidentTypeResponse(t))
}

func (h *AdminHandler) ListIncidentSubtypes(c *gin.Context) {
	typeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "некорректный ID типа")
		return
	}

	subtypes, err := h.taxonomy.ListAllSubtypes(c.Request.Context(), typeID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToIncidentSubtypeResponses(subtypes))
}

func (h *AdminHandler) CreateIncidentSubtype(c *gin.Context) {
	var req dto.CreateSubtypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}
	typeID, err := uuid.Parse(req.TypeID)
	if err != nil {
		response.BadRequest(c, "некорректный ID типа")
		return
	}

	st, err := h.taxonomy.CreateSubtype(c.Request.Context(), typeID, req.ToInput())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.ToIncidentSubtypeResponse(st))
}

func (h *AdminHandler) UpdateIncidentSubtype(c *gin.Context) {
	subtypeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "некорректный ID подтипа")
		return
	}

	var req dto.TaxonomyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}

	st, err := h.taxonomy.UpdateSubtype(c.Request.Context(), subtypeID, req.ToInput())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToIncidentSubtypeResponse(st))
}
