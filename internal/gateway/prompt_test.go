package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vbonduro/closet/internal/domain"
)

func TestClassifyPromptListsCategories(t *testing.T) {
	for _, c := range domain.Categories {
		assert.Contains(t, ClassifyPrompt, string(c))
	}
}

func TestSelectionPrompt(t *testing.T) {
	req := SelectionRequest{
		Inventory: []domain.ClothingItem{
			{ID: "shirt-1", Category: domain.CategoryShirt, Description: "Striped tee", Color: "navy"},
			{ID: "shoes-1", Category: domain.CategoryShoes, Description: "Sneakers", Color: "white"},
		},
		Weather:     domain.WeatherRainy,
		Gender:      domain.GenderBoy,
		ExcludedIDs: []string{"shirt-1"},
	}

	p := SelectionPrompt(req)
	assert.Contains(t, p, "ID: shirt-1, Cat: Shirt, Desc: Striped tee, Color: navy")
	assert.Contains(t, p, "ID: shoes-1, Cat: Shoes")
	assert.Contains(t, p, "Weather: Rainy")
	assert.Contains(t, p, "Gender: boy")
	assert.Contains(t, p, "Avoid these item IDs so the look feels new: shirt-1")
	assert.Contains(t, p, "maximum 10 words")
}

func TestSelectionPromptWithoutExclusions(t *testing.T) {
	p := SelectionPrompt(SelectionRequest{Weather: domain.WeatherRandom, Gender: domain.GenderGirl})
	assert.NotContains(t, p, "Avoid these item IDs")
	assert.Contains(t, p, "any weather")
}

func TestIllustrationPrompt(t *testing.T) {
	req := IllustrationRequest{
		Items: []domain.ClothingItem{
			{Category: domain.CategoryDress, Description: "Floral sundress", Color: "yellow"},
		},
		Gender:  domain.GenderGirl,
		Weather: domain.WeatherSunny,
		Style:   domain.StyleCartoon,
	}

	p := IllustrationPrompt(req)
	assert.Contains(t, p, StylePreset(domain.StyleCartoon))
	assert.Contains(t, p, "a cute girl avatar")
	assert.Contains(t, p, "- Dress: yellow Floral sundress")
	assert.Contains(t, p, "Weather: Sunny")
}

func TestStylePresetFallsBackToHandDrawn(t *testing.T) {
	assert.Equal(t, StylePreset(domain.StyleHandDrawn), StylePreset("oil-painting"))
	assert.NotEqual(t, StylePreset(domain.StyleHandDrawn), StylePreset(domain.StyleRealistic))
}

func TestGarmentPrompt(t *testing.T) {
	p := GarmentPrompt(domain.CategoryOuterwear, domain.GenderBoy)
	assert.Contains(t, p, "single outerwear for a boy's wardrobe")
}
