package backend

import "github.com/arozhkov/storefront/internal/store/domain"

func price(v int64) *int64 { return &v }

// SeedProducts is the development catalog.
func SeedProducts() []domain.Product {
	return []domain.Product{
		{
			ID:          "854cef69-976d-4c2a-a18c-2aa45046c390",
			Title:       "+1 hour a day",
			Description: "If you're tired of 24 hours, take an extra one.",
			Price:       price(750),
			Category:    domain.CategorySoftSkill,
			Image:       "/5_Dots.svg",
		},
		{
			ID:          "c101ab44-ed99-4a54-990d-47aa2bb4e7d9",
			Title:       "Backend anti-stress",
			Description: "Squeeze it when the deploy goes sideways.",
			Price:       price(1000),
			Category:    domain.CategoryOther,
			Image:       "/Shell.svg",
		},
		{
			ID:          "b06cde61-912f-4663-9751-09956c0eed67",
			Title:       "Quiet corner warrant",
			Description: "Reserves a meeting room nobody can take from you.",
			Price:       price(1450),
			Category:    domain.CategoryAdditional,
			Image:       "/Asterisk_2.svg",
		},
		{
			ID:          "412bcf81-7e75-4e70-bdb9-d3c73c9803b7",
			Title:       "Self-review generator",
			Description: "Writes your performance review while you sleep.",
			Price:       nil,
			Category:    domain.CategoryButton,
			Image:       "/Soft_Flower.svg",
		},
		{
			ID:          "1c521d84-c48d-48fa-8cfb-9d911fa515fd",
			Title:       "Rubber duck, senior grade",
			Description: "Listens to your explanation and nods at the bug.",
			Price:       price(2500),
			Category:    domain.CategoryHardSkill,
			Image:       "/Polygon.svg",
		},
	}
}
