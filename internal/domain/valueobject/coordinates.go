package valueobject

import (
	"fmt"
	"math"

	"github.com/Studio-Zurich/fix-app-sub000/internal/pkg/apperror"
)

type Coordinates struct {
	Latitude  float64
	Longitude float64
}

func NewCoordinates(lat, lng float64) (Coordinates, error) {
	if math.IsNaN(lat) || math.IsNaN(lng) {
		return Coordinates{}, apperror.New(apperror.ErrCodeValidation, "координаты не заданы")
	}
	if lat < -90 || lat > 90 {
		return Coordinates{}, apperror.New(apperror.ErrCodeValidation, "широта должна быть в диапазоне от -90 до 90")
	}
	if lng < -180 || lng > 180 {
		return Coordinates{}, apperror.New(apperror.ErrCodeValidation, "долгота должна быть в диапазоне от -180 до 180")
	}
	return Coordinates{Latitude: lat, Longitude: lng}, nil
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%.6f, %.6f", c.Latitude, c.Longitude)
}
