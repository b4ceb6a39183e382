package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/Studio-Zurich/fix-app-sub000/internal/domain/entity"
	"github.com/Studio-Zurich/fix-app-sub000/internal/service"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AdminResponse struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	DisplayName string     `json:"display_name"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

type LoginResponse struct {
	AccessToken string        `json:"access_token"`
	ExpiresAt   time.Time     `json:"expires_at"`
	Admin       AdminResponse `json:"admin"`
}

func ToLoginResponse(res *service.LoginResult) LoginResponse {
	return LoginResponse{
		AccessToken: res.Token.Token,
		ExpiresAt:   res.Token.ExpiresAt,
		Admin: AdminResponse{
			ID:          res.Admin.ID,
			Email:       res.Admin.Email,
			DisplayName: res.Admin.DisplayName,
			LastLoginAt: res.Admin.LastLoginAt,
		},
	}
}

type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type ReportImageResponse struct {
	ID          uuid.UUID `json:"id"`
	URL         string    `json:"url"`
	PreviewURL  string    `json:"preview_url,omitempty"`
	ContentType string    `json:"content_type"`
}

type ReportResponse struct {
	ID                uuid.UUID             `json:"id"`
	Status            string                `json:"status"`
	FirstName         string                `json:"first_name"`
	LastName          string                `json:"last_name"`
	Email             string                `json:"email"`
	Phone             *string               `json:"phone,omitempty"`
	IncidentTypeID    uuid.UUID             `json:"incident_type_id"`
	IncidentSubtypeID *uuid.UUID            `json:"incident_subtype_id,omitempty"`
	Description       *string               `json:"description,omitempty"`
	Latitude          float64               `json:"latitude"`
	Longitude         float64               `json:"longitude"`
	Address           string                `json:"address"`
	Locale            string                `json:"locale"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
	Images            []ReportImageResponse `json:"images,omitempty"`
}

type ReportDetailsResponse struct {
	ReportResponse
	Files []service.FileLink `json:"files"`
}

// ToReportResponse строит ответ; publicURL превращает путь объекта в ссылку.
func ToReportResponse(r *entity.Report, publicURL func(string) string) ReportResponse {
	resp := ReportResponse{
		ID:                r.ID,
		Status:            string(r.Status),
		FirstName:         r.FirstName,
		LastName:          r.LastName,
		Email:             r.Email,
		Phone:             r.Phone,
		IncidentTypeID:    r.IncidentTypeID,
		IncidentSubtypeID: r.IncidentSubtypeID,
		Description:       r.Description,
		Latitude:          r.Location.Latitude,
		Longitude:         r.Location.Longitude,
		Address:           r.Address,
		Locale:            string(r.Locale),
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
	for _, img := range r.Images {
		ir := ReportImageResponse{
			ID:          img.ID,
			URL:         publicURL(img.FilePath),
			ContentType: img.ContentType,
		}
		if img.PreviewPath != nil {
			ir.PreviewURL = publicURL(*img.PreviewPath)
		}
		resp.Images = append(resp.Images, ir)
	}
	return resp
}

func ToReportResponses(reports []*entity.Report, publicURL func(string) string) []ReportResponse {
	out := make([]ReportResponse, 0, len(reports))
	for _, r := range reports {
		out = append(out, ToReportResponse(r, publicURL))
	}
	return out
}

func ToReportDetailsResponse(d *service.ReportDetails, publicURL func(string) string) ReportDetailsResponse {
	files := d.Files
	if files == nil {
		files = []service.FileLink{}
	}
	return ReportDetailsResponse{ReportResponse: ToReportResponse(d.Report, publicURL), Files: files}
}

type TaxonomyRequest struct {
	Slug          string  `json:"slug"`
	NameDE        string  `json:"name_de"`
	NameEN        string  `json:"name_en"`
	DescriptionDE *string `json:"description_de"`
	DescriptionEN *string `json:"description_en"`
	SortOrder     *int    `json:"sort_order"`
	Active        *bool   `json:"active"`
}

func (r TaxonomyRequest) ToInput() service.TaxonomyInput {
	return service.TaxonomyInput{
		Slug:          r.Slug,
		NameDE:        r.NameDE,
		NameEN:        r.NameEN,
		DescriptionDE: r.DescriptionDE,
		DescriptionEN: r.DescriptionEN,
		SortOrder:     r.SortOrder,
		Active:        r.Active,
	}
}

type CreateSubtypeRequest struct {
	TypeID string `json:"type_id" binding:"required,uuid"`
	TaxonomyRequest
}

type IncidentTypeResponse struct {
	ID            uuid.UUID `json:"id"`
	Slug          string    `json:"slug"`
	NameDE        string    `json:"name_de"`
	NameEN        string    `json:"name_en"`
	DescriptionDE string    `json:"description_de,omitempty"`
	DescriptionEN string    `json:"description_en,omitempty"`
	Active        bool      `json:"active"`
	SortOrder     int       `json:"sort_order"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type IncidentSubtypeResponse struct {
	IncidentTypeResponse
	TypeID uuid.UUID `json:"type_id"`
}

func ToIncidentTypeResponse(t *entity.IncidentType) IncidentTypeResponse {
	return IncidentTypeResponse{
		ID:            t.ID,
		Slug:          t.Slug,
		NameDE:        t.NameDE,
		NameEN:        t.NameEN,
		DescriptionDE: t.DescriptionDE,
		DescriptionEN: t.DescriptionEN,
		Active:        t.Active,
		SortOrder:     t.SortOrder,
		UpdatedAt:     t.UpdatedAt,
	}
}

func ToIncidentTypeResponses(types []*entity.IncidentType) []IncidentTypeResponse {
	out := make([]IncidentTypeResponse, 0, len(types))
	for _, t := range types {
		out = append(out, ToIncidentTypeResponse(t))
	}
	return out
}

func ToIncidentSubtypeResponse(s *entity.IncidentSubtype) IncidentSubtypeResponse {
	return IncidentSubtypeResponse{
		IncidentTypeResponse: IncidentTypeResponse{
			ID:            s.ID,
			Slug:          s.Slug,
			NameDE:        s.NameDE,
			NameEN:        s.NameEN,
			DescriptionDE: s.DescriptionDE,
			DescriptionEN: s.DescriptionEN,
			Active:        s.Active,
			SortOrder:     s.SortOrder,
			UpdatedAt:     s.UpdatedAt,
		},
		TypeID: s.TypeID,
	}
}

func ToIncidentSubtypeResponses(subtypes []*entity.IncidentSubtype) []IncidentSubtypeResponse {
	out := make([]IncidentSubtypeResponse, 0, len(subtypes))
	for _, s := range subtypes {
		out = append(out, ToIncidentSubtypeResponse(s))
	}
	return out
}
