package gateway

import (
	"fmt"
	"strings"

	"github.com/vbonduro/closet/internal/domain"
)

// ClassifyPrompt is shared by every backend that classifies photos.
var ClassifyPrompt = fmt.Sprintf(`Analyze this clothing item. Identify its category (%s), provide a short specific description, and its primary color.
Respond with JSON only: {"category": "...", "description": "...", "color": "..."}`, categoryList())

var stylePresets = map[domain.IllustrationStyle]string{
	domain.StyleHandDrawn: "A charming, hand-drawn colored illustration. Minimalist and clean, with soft watercolor-like colors and clean line art. High quality artistic sketch.",
	domain.StyleRealistic: "A realistic full-body fashion photograph. Natural soft lighting, true-to-life fabric textures and proportions, editorial e-commerce look.",
	domain.StyleCartoon:   "A playful cartoon illustration. Bold outlines, flat vibrant colors, friendly rounded shapes, sticker-like finish.",
}

// StylePreset returns the prompt fragment for s, falling back to hand-drawn.
func StylePreset(s domain.IllustrationStyle) string {
	if p, ok := stylePresets[s]; ok {
		return p
	}
	return stylePresets[domain.StyleHandDrawn]
}

func categoryList() string {
	names := make([]string, len(domain.Categories))
	for i, c := range domain.Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

func weatherPhrase(w domain.Weather) string {
	if w == "" || w == domain.WeatherRandom {
		return "any weather (pick something versatile)"
	}
	return string(w)
}

// SelectionPrompt lists the inventory in the order given; callers shuffle it.
func SelectionPrompt(req SelectionRequest) string {
	var b strings.Builder
	b.WriteString("You are a professional fashion stylist.\n")
	fmt.Fprintf(&b, "User Info:\n- Gender: %s\n- Weather: %s\n\n", req.Gender, weatherPhrase(req.Weather))

	b.WriteString("My Closet Items:\n")
	for _, it := range req.Inventory {
		fmt.Fprintf(&b, "ID: %s, Cat: %s, Desc: %s, Color: %s\n", it.ID, it.Category, it.Description, it.Color)
	}

	b.WriteString(`
Instructions:
Select exactly one pair of Shoes.
Select exactly one upper-body item (Shirt or Sweater) and one lower-body item (Bottom or Skirt), OR exactly one Dress instead. If you choose a Dress, do not select any Shirt, Sweater, Bottom or Skirt.
Optionally add one Outerwear, one Hat and one Accessory if they fit the weather.
The outfit must be stylish, color-coordinated, and practical for the weather.
`)
	if len(req.ExcludedIDs) > 0 {
		fmt.Fprintf(&b, "Avoid these item IDs so the look feels new: %s\n", strings.Join(req.ExcludedIDs, ", "))
	}
	b.WriteString(`Return the IDs of the selected items and a VERY CONCISE, punchy "stylist note" (maximum 10 words) explaining the vibe.
Respond with JSON only: {"selectedIds": ["..."], "stylistNote": "..."}`)
	return b.String()
}

// IllustrationPrompt describes the avatar; item photos travel as attachments.
func IllustrationPrompt(req IllustrationRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", StylePreset(req.Style))
	fmt.Fprintf(&b, "Subject: a cute %s avatar, full body portrait, standing, simple light background.\n", req.Gender)
	fmt.Fprintf(&b, "Weather: %s.\n", weatherPhrase(req.Weather))
	b.WriteString("The avatar wears exactly these clothes (reference photos attached):\n")
	for _, it := range req.Items {
		fmt.Fprintf(&b, "- %s: %s\n", it.Category, strings.TrimSpace(it.Color+" "+it.Description))
	}
	b.WriteString("Square 1:1 composition.")
	return b.String()
}

// GarmentPrompt asks for a single product shot of a new garment.
func GarmentPrompt(category domain.Category, gender domain.Gender) string {
	return fmt.Sprintf(`A single %s for a %s's wardrobe, photographed flat on a plain white background.
Product catalogue style, whole garment visible, no person, no text. Invent a fun, wearable design.`,
		strings.ToLower(string(category)), gender)
}
