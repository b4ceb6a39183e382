// Package geocoding содержит клиент Nominatim-совместимого геокодера.
package geocoding

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Studio-Zurich/fix-app-sub000/internal/domain/valueobject"
	"github.com/Studio-Zurich/fix-app-sub000/internal/httpclient"
	"github.com/Studio-Zurich/fix-app-sub000/internal/logger"
)

var (
	// ErrNotFound: геокодер ответил, но ничего не нашёл.
	ErrNotFound = errors.New("geocoding: адрес не найден")
	// ErrUnavailable: геокодер недоступен или ответил ошибкой.
	ErrUnavailable = errors.New("geocoding: сервис недоступен")
)

const defaultLimit = 5

type Place struct {
	DisplayName string  `json:"display_name"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

type Config struct {
	BaseURL      string
	UserAgent    string
	CountryCodes string
	Timeout      time.Duration
}

type Client struct {
	httpc        *resty.Client
	countryCodes string
}

func New(cfg Config) *Client {
	httpc := httpclient.New(logger.Component("geocoding"), httpclient.Options{
		BaseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		Timeout:      cfg.Timeout,
		UserAgent:    cfg.UserAgent,
		RetryCount:   2,
		RetryWait:    300 * time.Millisecond,
		RetryMaxWait: 2 * time.Second,
	})
	return &Client{httpc: httpc, countryCodes: cfg.CountryCodes}
}

type nominatimPlace struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	Error       string `json:"error"`
}

func (p nominatimPlace) toPlace() (Place, error) {
	lat, err := strconv.ParseFloat(p.Lat, 64)
	if err != nil {
		return Place{}, fmt.Errorf("geocoding: некорректная широта %q: %w", p.Lat, err)
	}
	lon, err := strconv.ParseFloat(p.Lon, 64)
	if err != nil {
		return Place{}, fmt.Errorf("geocoding: некорректная долгота %q: %w", p.Lon, err)
	}
	return Place{DisplayName: p.DisplayName, Latitude: lat, Longitude: lon}, nil
}

// Search ищет адрес по строке; результаты упорядочены геокодером по релевантности.
func (c *Client) Search(ctx context.Context, query string, locale valueobject.Locale) ([]Place, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrNotFound
	}

	params := map[string]string{
		"q":               query,
		"format":          "jsonv2",
		"limit":           strconv.Itoa(defaultLimit),
		"accept-language": string(locale),
	}
	if c.countryCodes != "" {
		params["countrycodes"] = c.countryCodes
	}

	var raw []nominatimPlace
	resp, err := c.httpc.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&raw).
		Get("/search")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: статус %d", ErrUnavailable, resp.StatusCode())
	}

	places := make([]Place, 0, len(raw))
	for _, p := range raw {
		place, err := p.toPlace()
		if err != nil {
			logger.Component("geocoding").WithError(err).Warn("пропускаем результат поиска")
			continue
		}
		places = append(places, place)
	}
	if len(places) == 0 {
		return nil, ErrNotFound
	}
	return places, nil
}

// Reverse возвращает ближайший адрес для координат.
func (c *Client) Reverse(ctx context.Context, lat, lng float64, locale valueobject.Locale) (Place, error) {
	var raw nominatimPlace
	resp, err := c.httpc.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"lat":             strconv.FormatFloat(lat, 'f', 7, 64),
			"lon":             strconv.FormatFloat(lng, 'f', 7, 64),
			"format":          "jsonv2",
			"accept-language": string(locale),
		}).
		SetResult(&raw).
		Get("/reverse")
	if err != nil {
		return Place{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.IsError() {
		return Place{}, fmt.Errorf("%w: статус %d", ErrUnavailable, resp.StatusCode())
	}
	if raw.Error != "" || raw.DisplayName == "" {
		return Place{}, ErrNotFound
	}

	place, err := raw.toPlace()
	if err != nil {
		return Place{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return place, nil
}
