package models

type Brand struct {
	Entity
	Title       string
	Description string
}

type Model struct {
	Entity
	Title   string
	BrandID string

	Brand *Brand
}

type Product struct {
	Entity
	Title       string
	Description string
	Price       float64
	ModelID     string
	ImageKey    *string

	Model *Model
}

type BrandDTO struct {
	EntityDTO
	Title       string `json:"title"`
	Description string `json:"description"`
}

type ModelDTO struct {
	EntityDTO
	Title   string    `json:"title"`
	BrandID string    `json:"brandId"`
	Brand   *BrandDTO `json:"brand,omitempty"`
}

type ProductDTO struct {
	EntityDTO
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	ModelID     string    `json:"modelId"`
	ImageKey    *string   `json:"imageKey,omitempty"`
	Model       *ModelDTO `json:"model,omitempty"`
}

func BrandToDTO(b *Brand) BrandDTO {
	return BrandDTO{EntityDTO: b.Entity.ToDTO(), Title: b.Title, Description: b.Description}
}

func BrandFromDTO(d BrandDTO) *Brand {
	return &Brand{Entity: entityFromDTO(d.EntityDTO), Title: d.Title, Description: d.Description}
}

func ModelToDTO(m *Model) ModelDTO {
	d := ModelDTO{EntityDTO: m.Entity.ToDTO(), Title: m.Title, BrandID: m.BrandID}
	if m.Brand != nil {
		b := BrandToDTO(m.Brand)
		d.Brand = &b
	}
	return d
}

func ModelFromDTO(d ModelDTO) *Model {
	return &Model{Entity: entityFromDTO(d.EntityDTO), Title: d.Title, BrandID: d.BrandID}
}

func ProductToDTO(p *Product) ProductDTO {
	d := ProductDTO{
		EntityDTO:   p.Entity.ToDTO(),
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		ModelID:     p.ModelID,
		ImageKey:    p.ImageKey,
	}
	if p.Model != nil {
		m := ModelToDTO(p.Model)
		d.Model = &m
	}
	return d
}

// ProductFromDTO ignores ImageKey; it is only set by the image upload flow.
func ProductFromDTO(d ProductDTO) *Product {
	return &Product{
		Entity:      entityFromDTO(d.EntityDTO),
		Title:       d.Title,
		Description: d.Description,
		Price:       d.Price,
		ModelID:     d.ModelID,
	}
}
