package domain

import (
	"encoding/base64"
	"fmt"
	"strings"
)

type Category string

const (
	CategoryShirt     Category = "Shirt"
	CategorySweater   Category = "Sweater"
	CategoryBottom    Category = "Bottom"
	CategorySkirt     Category = "Skirt"
	CategoryDress     Category = "Dress"
	CategoryOuterwear Category = "Outerwear"
	CategoryShoes     Category = "Shoes"
	CategoryHat       Category = "Hat"
	CategoryAccessory Category = "Accessory"

	// CategoryTop is only ever read from previously persisted closets.
	CategoryTop Category = "Top"
)

// Categories lists every category a classification may return, in picker order.
var Categories = []Category{
	CategoryShirt,
	CategorySweater,
	CategoryBottom,
	CategorySkirt,
	CategoryDress,
	CategoryOuterwear,
	CategoryShoes,
	CategoryHat,
	CategoryAccessory,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Normalize maps legacy values onto the current enumeration.
func (c Category) Normalize() Category {
	if c == CategoryTop {
		return CategoryShirt
	}
	return c
}

func (c Category) IsUpperBody() bool {
	return c == CategoryShirt || c == CategorySweater
}

func (c Category) IsLowerBody() bool {
	return c == CategoryBottom || c == CategorySkirt
}

func (c Category) IsFullBody() bool {
	return c == CategoryDress
}

// ParseCategory accepts any casing of a known category, including the legacy Top.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, string(CategoryTop)) {
		return CategoryShirt, nil
	}
	for _, c := range Categories {
		if strings.EqualFold(s, string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

type ClothingItem struct {
	ID          string   `json:"id"`
	URL         string   `json:"url"`
	Category    Category `json:"category"`
	Description string   `json:"description"`
	Color       string   `json:"color,omitempty"`
}

type Gender string

const (
	GenderGirl Gender = "girl"
	GenderBoy  Gender = "boy"
)

func (g Gender) Valid() bool {
	return g == GenderGirl || g == GenderBoy
}

// Weather is a single condition token. WeatherRandom means any weather.
type Weather string

const (
	WeatherRandom Weather = "Random"
	WeatherSunny  Weather = "Sunny"
	WeatherRainy  Weather = "Rainy"
	WeatherSnowy  Weather = "Snowy"
	WeatherCloudy Weather = "Cloudy"
	WeatherWindy  Weather = "Windy"
)

var Conditions = []Weather{WeatherRandom, WeatherSunny, WeatherRainy, WeatherSnowy, WeatherCloudy, WeatherWindy}

func (w Weather) Valid() bool {
	for _, c := range Conditions {
		if w == c {
			return true
		}
	}
	return false
}

type IllustrationStyle string

const (
	StyleHandDrawn IllustrationStyle = "hand-drawn"
	StyleRealistic IllustrationStyle = "realistic"
	StyleCartoon   IllustrationStyle = "cartoon"
)

func (s IllustrationStyle) Valid() bool {
	return s == StyleHandDrawn || s == StyleRealistic || s == StyleCartoon
}

// Outfit is derived from the inventory on demand and never persisted. Items are
// a snapshot taken at selection time.
type Outfit struct {
	Items           []ClothingItem    `json:"items"`
	StylistNote     string            `json:"stylistNote"`
	IllustrationURL string            `json:"illustrationUrl,omitempty"`
	Style           IllustrationStyle `json:"style"`
}

// Clone returns a deep copy safe to hand out of a lock.
func (o *Outfit) Clone() *Outfit {
	if o == nil {
		return nil
	}
	c := *o
	c.Items = append([]ClothingItem(nil), o.Items...)
	return &c
}

func (o *Outfit) ItemIDs() []string {
	if o == nil {
		return nil
	}
	ids := make([]string, 0, len(o.Items))
	for _, it := range o.Items {
		ids = append(ids, it.ID)
	}
	return ids
}

// Image is an encoded raster image with its media type.
type Image struct {
	Data     []byte
	MimeType string
}

// DataURL renders the image as a self-contained data: URL.
func (img Image) DataURL() string {
	return "data:" + img.MimeType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}
