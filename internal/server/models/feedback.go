package models

type Comment struct {
	Entity
	ProductID string
	UserID    string
	Text      string

	Product *Product
}

// Rating is a 1..5 score given by a user to a product.
type Rating struct {
	Entity
	ProductID string
	UserID    string
	Score     int64

	Product *Product
}

type Favorite struct {
	Entity
	ProductID string
	UserID    string

	Product *Product
}

type CommentDTO struct {
	EntityDTO
	ProductID string `json:"productId"`
	UserID    string `json:"userId"`
	Text      string `json:"text"`
}

type RatingDTO struct {
	EntityDTO
	ProductID string `json:"productId"`
	UserID    string `json:"userId"`
	Score     int64  `json:"score"`
}

type FavoriteDTO struct {
	EntityDTO
	ProductID string `json:"productId"`
	UserID    string `json:"userId"`
}

func CommentToDTO(c *Comment) CommentDTO {
	return CommentDTO{EntityDTO: c.Entity.ToDTO(), ProductID: c.ProductID, UserID: c.UserID, Text: c.Text}
}

func CommentFromDTO(d CommentDTO) *Comment {
	return &Comment{Entity: entityFromDTO(d.EntityDTO), ProductID: d.ProductID, UserID: d.UserID, Text: d.Text}
}

func RatingToDTO(r *Rating) RatingDTO {
	return RatingDTO{EntityDTO: r.Entity.ToDTO(), ProductID: r.ProductID, UserID: r.UserID, Score: r.Score}
}

func RatingFromDTO(d RatingDTO) *Rating {
	return &Rating{Entity: entityFromDTO(d.EntityDTO), ProductID: d.ProductID, UserID: d.UserID, Score: d.Score}
}

func FavoriteToDTO(f *Favorite) FavoriteDTO {
	return FavoriteDTO{EntityDTO: f.Entity.ToDTO(), ProductID: f.ProductID, UserID: f.UserID}
}

func FavoriteFromDTO(d FavoriteDTO) *Favorite {
	return &Favorite{Entity: entityFromDTO(d.EntityDTO), ProductID: d.ProductID, UserID: d.UserID}
}
