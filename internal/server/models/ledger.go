package models

import "time"

type Purchase struct {
	Entity
	ProductID   string
	Quantity    int64
	UnitPrice   float64
	Supplier    string
	PurchasedAt time.Time

	Product *Product
}

type Sale struct {
	Entity
	ProductID string
	Quantity  int64
	UnitPrice float64
	Customer  string
	SoldAt    time.Time

	Product *Product
}

// Stock is the on-hand aggregate for one product.
type Stock struct {
	Entity
	ProductID string
	Quantity  int64

	Product *Product
}

type PurchaseDTO struct {
	EntityDTO
	ProductID   string    `json:"productId"`
	Quantity    int64     `json:"quantity"`
	UnitPrice   float64   `json:"unitPrice"`
	Supplier    string    `json:"supplier"`
	PurchasedAt time.Time `json:"purchasedAt"`
}

type SaleDTO struct {
	EntityDTO
	ProductID string    `json:"productId"`
	Quantity  int64     `json:"quantity"`
	UnitPrice float64   `json:"unitPrice"`
	Customer  string    `json:"customer"`
	SoldAt    time.Time `json:"soldAt"`
}

type StockDTO struct {
	EntityDTO
	ProductID string `json:"productId"`
	Quantity  int64  `json:"quantity"`
}

func PurchaseToDTO(p *Purchase) PurchaseDTO {
	return PurchaseDTO{
		EntityDTO:   p.Entity.ToDTO(),
		ProductID:   p.ProductID,
		Quantity:    p.Quantity,
		UnitPrice:   p.UnitPrice,
		Supplier:    p.Supplier,
		PurchasedAt: p.PurchasedAt,
	}
}

func PurchaseFromDTO(d PurchaseDTO) *Purchase {
	return &Purchase{
		Entity:      entityFromDTO(d.EntityDTO),
		ProductID:   d.ProductID,
		Quantity:    d.Quantity,
		UnitPrice:   d.UnitPrice,
		Supplier:    d.Supplier,
		PurchasedAt: d.PurchasedAt,
	}
}

func SaleToDTO(s *Sale) SaleDTO {
	return SaleDTO{
		EntityDTO: s.Entity.ToDTO(),
		ProductID: s.ProductID,
		Quantity:  s.Quantity,
		UnitPrice: s.UnitPrice,
		Customer:  s.Customer,
		SoldAt:    s.SoldAt,
	}
}

func SaleFromDTO(d SaleDTO) *Sale {
	return &Sale{
		Entity:    entityFromDTO(d.EntityDTO),
		ProductID: d.ProductID,
		Quantity:  d.Quantity,
		UnitPrice: d.UnitPrice,
		Customer:  d.Customer,
		SoldAt:    d.SoldAt,
	}
}

func StockToDTO(s *Stock) StockDTO {
	return StockDTO{EntityDTO: s.Entity.ToDTO(), ProductID: s.ProductID, Quantity: s.Quantity}
}

func StockFromDTO(d StockDTO) *Stock {
	return &Stock{Entity: entityFromDTO(d.EntityDTO), ProductID: d.ProductID, Quantity: d.Quantity}
}
