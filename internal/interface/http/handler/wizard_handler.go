package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Studio-Zurich/fix-app-sub000/internal/domain/valueobject"
	"github.com/Studio-Zurich/fix-app-sub000/internal/http/middleware"
	"github.com/Studio-Zurich/fix-app-sub000/internal/interface/http/dto"
	"github.com/Studio-Zurich/fix-app-sub000/internal/interface/http/response"
	"github.com/Studio-Zurich/fix-app-sub000/internal/service"
	"github.com/Studio-Zurich/fix-app-sub000/internal/wizard"
)

type WizardHandler struct {
	wizard *service.WizardService
}

func NewWizardHandler(wizard *service.WizardService) *WizardHandler {
	return &WizardHandler{wizard: wizard}
}

// Start обрабатывает POST /api/wizard.
func (h *WizardHandler) Start(c *gin.Context) {
	response.Created(c, h.wizard.Start(middleware.LocaleFromContext(c)))
}

func (h *WizardHandler) Get(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	state, err := h.wizard.State(id)
	respondState(c, state, err)
}

func (h *WizardHandler) Abandon(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	if err := h.wizard.Abandon(id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func (h *WizardHandler) SetLocale(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	var req dto.LocaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}
	locale, valid := valueobject.ParseLocale(req.Locale)
	if !valid {
		response.BadRequest(c, "поддерживаются только de и en")
		return
	}
	state, err := h.wizard.SetLocale(id, locale)
	respondState(c, state, err)
}

// UploadImage обрабатывает multipart поле file.
func (h *WizardHandler) UploadImage(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "файл изображения обязателен")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, "не удалось прочитать файл")
		return
	}
	defer file.Close()

	state, err := h.wizard.UploadImage(c.Request.Context(), id, fileHeader.Filename, file)
	respondState(c, state, err)
}

func (h *WizardHandler) ClearImage(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	state, err := h.wizard.ClearImage(id)
	respondState(c, state, err)
}

func (h *WizardHandler) SetLocation(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	var req dto.LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "широта и долгота обязательны")
		return
	}
	state, err := h.wizard.SetLocation(id, req.ToLocation())
	respondState(c, state, err)
}

func (h *WizardHandler) UseImageLocation(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	state, err := h.wizard.UseImageLocation(id)
	respondState(c, state, err)
}

func (h *WizardHandler) SearchAddress(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	places, err := h.wizard.SearchAddress(c.Request.Context(), id, c.Query("q"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToPlaceResponses(places))
}

func (h *WizardHandler) ReverseGeocode(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	var q dto.ReverseQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "параметры lat и lng должны быть корректными координатами")
		return
	}
	place, err := h.wizard.ReverseGeocode(c.Request.Context(), id, *q.Latitude, *q.Longitude)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.PlaceResponse(*place))
}

func (h *WizardHandler) ListIncidentTypes(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	options, err := h.wizard.ListTypes(c.Request.Context(), id, c.Query("q"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, options)
}

func (h *WizardHandler) SelectIncidentType(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	typeID, ok := bindSelection(c)
	if !ok {
		return
	}
	state, err := h.wizard.SelectType(c.Request.Context(), id, typeID)
	respondState(c, state, err)
}

func (h *WizardHandler) ListIncidentSubtypes(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	options, err := h.wizard.ListSubtypes(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, options)
}

func (h *WizardHandler) SelectIncidentSubtype(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	subtypeID, ok := bindSelection(c)
	if !ok {
		return
	}
	state, err := h.wizard.SelectSubtype(c.Request.Context(), id, subtypeID)
	respondState(c, state, err)
}

func (h *WizardHandler) SetDescription(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	var req dto.DescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}
	state, err := h.wizard.SetDescription(id, req.Description)
	respondState(c, state, err)
}

func (h *WizardHandler) SetContact(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	var req dto.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}
	state, err := h.wizard.SetContact(id, req.ToReporter())
	respondState(c, state, err)
}

func (h *WizardHandler) Advance(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	state, err := h.wizard.Advance(id)
	respondState(c, state, err)
}

func (h *WizardHandler) Back(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	state, err := h.wizard.Back(id)
	respondState(c, state, err)
}

// GoTo обрабатывает переход к шагу по ссылке "изменить" из сводки.
func (h *WizardHandler) GoTo(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	step, valid := wizard.ParseStep(c.Param("step"))
	if !valid {
		response.BadRequest(c, "неизвестный шаг")
		return
	}
	state, err := h.wizard.GoTo(id, step)
	respondState(c, state, err)
}

func (h *WizardHandler) Submit(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	state, result, err := h.wizard.Submit(c.Request.Context(), id)
	if err != nil {
		respondState(c, state, err)
		return
	}
	response.Success(c, dto.SubmitResponse{ReportID: result.ReportID, State: state})
}

// Confirmation обрабатывает GET /api/reports/:id/confirmation.
func (h *WizardHandler) Confirmation(c *gin.Context) {
	reportID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "некорректный ID сообщения")
		return
	}
	view, err := h.wizard.Confirmation(c.Request.Context(), reportID, middleware.LocaleFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, view)
}

func sessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "некорректный ID сессии")
		return uuid.Nil, false
	}
	return id, true
}

func bindSelection(c *gin.Context) (uuid.UUID, bool) {
	var req dto.SelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		response.BadRequest(c, "некорректный ID")
		return uuid.Nil, false
	}
	return id, true
}

// respondState отдаёт шаг мастера; при ошибке шаг идёт вместе с ошибкой, чтобы клиент показал её на месте.
func respondState(c *gin.Context, state *service.WizardState, err error) {
	if err != nil {
		_ = c.Error(err)
		if state != nil {
			response.ErrorWithData(c, err, state)
			return
		}
		response.Error(c, err)
		return
	}
	response.Success(c, state)
}
