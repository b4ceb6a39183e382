package dto

import (
	"github.com/google/uuid"

	"github.com/Studio-Zurich/fix-app-sub000/internal/geocoding"
	"github.com/Studio-Zurich/fix-app-sub000/internal/service"
	"github.com/Studio-Zurich/fix-app-sub000/internal/wizard"
)

type LocationRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
	Address   string   `json:"address"`
}

func (r LocationRequest) ToLocation() wizard.Location {
	return wizard.Location{Latitude: *r.Latitude, Longitude: *r.Longitude, Address: r.Address}
}

// ReverseQuery: координаты обратного геокодирования из строки запроса.
type ReverseQuery struct {
	Latitude  *float64 `form:"lat" binding:"required,gte=-90,lte=90"`
	Longitude *float64 `form:"lng" binding:"required,gte=-180,lte=180"`
}

type SelectRequest struct {
	ID string `json:"id" binding:"required,uuid"`
}

type DescriptionRequest struct {
	Description string `json:"description"`
}

type ContactRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

func (r ContactRequest) ToReporter() wizard.Reporter {
	return wizard.Reporter{FirstName: r.FirstName, LastName: r.LastName, Email: r.Email, Phone: r.Phone}
}

type LocaleRequest struct {
	Locale string `json:"locale" binding:"required"`
}

type PlaceResponse struct {
	DisplayName string  `json:"display_name"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

func ToPlaceResponses(places []geocoding.Place) []PlaceResponse {
	out := make([]PlaceResponse, 0, len(places))
	for _, p := range places {
		out = append(out, PlaceResponse(p))
	}
	return out
}

// SubmitResponse: ответ на успешную отправку: id сообщения и экран подтверждения.
type SubmitResponse struct {
	ReportID uuid.UUID            `json:"report_id"`
	State    *service.WizardState `json:"state"`
}
