package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// MovieRef is the minimal identifying record of a catalog item
type MovieRef struct {
	ID   int
	Name string
	Img  string // Filename of the image hosted by the catalog
}

// Movie is a catalog item as served by the catalog API
type Movie struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Img         string   `json:"img"`
	Description string   `json:"description"`
	Rate        Rating   `json:"rate"`
	Length      string   `json:"length"`
	Genres      []string `json:"genres"`
}

// Ref returns the identifying part of the movie
func (m Movie) Ref() MovieRef {
	return MovieRef{
		ID:   m.ID,
		Name: m.Name,
		Img:  m.Img,
	}
}

// IsFanFavorite is true for movies rated 7 or more
func (m Movie) IsFanFavorite() bool {
	return m.Rate >= 7
}

// Relevance is the rate expressed as a rounded percentage
func (m Movie) Relevance() int {
	return int(float64(m.Rate)*10 + 0.5)
}

// Stars returns 5 booleans, true for every full star of the rate (out of 10)
func (m Movie) Stars() []bool {
	full := int(float64(m.Rate)+0.5) / 2
	stars := make([]bool, 5)
	for i := range stars {
		stars[i] = i < full
	}
	return stars
}

// Rating is a 0-10 rate. The catalog sends it either as a number or as a numeric string
type Rating float64

func (r *Rating) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*r = 0
			return nil
		}
		data = []byte(s)
	}
	value, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid rate %q: %w", data, err)
	}
	*r = Rating(value)
	return nil
}

func (r Rating) String() string {
	return strconv.FormatFloat(float64(r), 'f', -1, 64)
}
