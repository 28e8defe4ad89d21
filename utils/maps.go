package utils

import (
	"regexp"
	"strconv"
)

// mapsCoordsRe ловит "@lat,lng" в ссылках Google Maps.
var mapsCoordsRe = regexp.MustCompile(`@(-?\d+\.?\d*),(-?\d+\.?\d*)`)

// ParseMapsURL извлекает координаты из ссылки на карты.
// Если ссылка не содержит "@lat,lng", возвращает (nil, nil) — площадка
// остаётся без координат, это не ошибка.
func ParseMapsURL(url string) (lat, lng *float64) {
	matches := mapsCoordsRe.FindStringSubmatch(url)
	if len(matches) != 3 {
		return nil, nil
	}

	latVal, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return nil, nil
	}
	lngVal, err := strconv.ParseFloat(matches[2], 64)
	if err != nil {
		return nil, nil
	}
	return &latVal, &lngVal
}
