package repositories

import (
	"fmt"

	"github.com/dmitrijs2005/stockroom/internal/server/models"
	"github.com/dmitrijs2005/stockroom/internal/server/query"
)

func BrandsTable() *Table[*models.Brand] {
	return &Table[*models.Brand]{
		Name:    "brands",
		Columns: []string{"title", "description"},
		New:     func() *models.Brand { return &models.Brand{} },
		Clone:   shallow[models.Brand],
		Values:  func(b *models.Brand) []any { return []any{b.Title, b.Description} },
		Targets: func(b *models.Brand) []any { return []any{&b.Title, &b.Description} },
		Schema: newSchema[*models.Brand]("brands").
			String("Title", "title", func(b *models.Brand) any { return b.Title }).
			String("Description", "description", func(b *models.Brand) any { return b.Description }),
	}
}

func ModelsTable() *Table[*models.Model] {
	brand := func(m *models.Model) *models.Brand { return m.Brand }

	return &Table[*models.Model]{
		Name:    "models",
		Columns: []string{"title", "brand_id"},
		New:     func() *models.Model { return &models.Model{} },
		Clone:   shallow[models.Model],
		Values:  func(m *models.Model) []any { return []any{m.Title, m.BrandID} },
		Targets: func(m *models.Model) []any { return []any{&m.Title, &m.BrandID} },
		Schema: newSchema[*models.Model]("models").
			Join("Brand", "brands", "brand_id").
			String("Title", "title", func(m *models.Model) any { return m.Title }).
			ID("BrandId", "brand_id", func(m *models.Model) any { return m.BrandID }).
			String("Brand.Title", "title", nav(brand, func(b *models.Brand) any { return b.Title })),
	}
}

func ProductsTable() *Table[*models.Product] {
	model := func(p *models.Product) *models.Model { return p.Model }
	brand := func(p *models.Product) *models.Brand {
		if p.Model == nil {
			return nil
		}
		return p.Model.Brand
	}

	return &Table[*models.Product]{
		Name:    "products",
		Columns: []string{"title", "description", "price", "model_id", "image_key"},
		New:     func() *models.Product { return &models.Product{} },
		Clone:   shallow[models.Product],
		Values: func(p *models.Product) []any {
			return []any{p.Title, p.Description, p.Price, p.ModelID, p.ImageKey}
		},
		Targets: func(p *models.Product) []any {
			return []any{&p.Title, &p.Description, &p.Price, &p.ModelID, &p.ImageKey}
		},
		Schema: newSchema[*models.Product]("products").
			Join("Model", "models", "model_id").
			Join("Model.Brand", "brands", "brand_id").
			String("Title", "title", func(p *models.Product) any { return p.Title }).
			String("Description", "description", func(p *models.Product) any { return p.Description }).
			Number("Price", "price", func(p *models.Product) any { return p.Price }).
			ID("ModelId", "model_id", func(p *models.Product) any { return p.ModelID }).
			Nullable("ImageKey", "image_key", query.KindString, func(p *models.Product) any { return p.ImageKey }).
			String("Model.Title", "title", nav(model, func(m *models.Model) any { return m.Title })).
			ID("Model.BrandId", "brand_id", nav(model, func(m *models.Model) any { return m.BrandID })).
			String("Model.Brand.Title", "title", nav(brand, func(b *models.Brand) any { return b.Title })),
	}
}

func PurchasesTable() *Table[*models.Purchase] {
	return &Table[*models.Purchase]{
		Name:    "purchases",
		Columns: []string{"product_id", "quantity", "unit_price", "supplier", "purchased_at"},
		New:     func() *models.Purchase { return &models.Purchase{} },
		Clone:   shallow[models.Purchase],
		Values: func(p *models.Purchase) []any {
			return []any{p.ProductID, p.Quantity, p.UnitPrice, p.Supplier, p.PurchasedAt}
		},
		Targets: func(p *models.Purchase) []any {
			return []any{&p.ProductID, &p.Quantity, &p.UnitPrice, &p.Supplier, &p.PurchasedAt}
		},
		Schema: withProduct(newSchema[*models.Purchase]("purchases"), func(p *models.Purchase) *models.Product { return p.Product }).
			ID("ProductId", "product_id", func(p *models.Purchase) any { return p.ProductID }).
			Number("Quantity", "quantity", func(p *models.Purchase) any { return p.Quantity }).
			Number("UnitPrice", "unit_price", func(p *models.Purchase) any { return p.UnitPrice }).
			String("Supplier", "supplier", func(p *models.Purchase) any { return p.Supplier }).
			Time("PurchasedAt", "purchased_at", func(p *models.Purchase) any { return p.PurchasedAt }),
	}
}

func SalesTable() *Table[*models.Sale] {
	return &Table[*models.Sale]{
		Name:    "sales",
		Columns: []string{"product_id", "quantity", "unit_price", "customer", "sold_at"},
		New:     func() *models.Sale { return &models.Sale{} },
		Clone:   shallow[models.Sale],
		Values: func(s *models.Sale) []any {
			return []any{s.ProductID, s.Quantity, s.UnitPrice, s.Customer, s.SoldAt}
		},
		Targets: func(s *models.Sale) []any {
			return []any{&s.ProductID, &s.Quantity, &s.UnitPrice, &s.Customer, &s.SoldAt}
		},
		Schema: withProduct(newSchema[*models.Sale]("sales"), func(s *models.Sale) *models.Product { return s.Product }).
			ID("ProductId", "product_id", func(s *models.Sale) any { return s.ProductID }).
			Number("Quantity", "quantity", func(s *models.Sale) any { return s.Quantity }).
			Number("UnitPrice", "unit_price", func(s *models.Sale) any { return s.UnitPrice }).
			String("Customer", "customer", func(s *models.Sale) any { return s.Customer }).
			Time("SoldAt", "sold_at", func(s *models.Sale) any { return s.SoldAt }),
	}
}

func StocksTable() *Table[*models.Stock] {
	return &Table[*models.Stock]{
		Name:    "stocks",
		Columns: []string{"product_id", "quantity"},
		New:     func() *models.Stock { return &models.Stock{} },
		Clone:   shallow[models.Stock],
		Values:  func(s *models.Stock) []any { return []any{s.ProductID, s.Quantity} },
		Targets: func(s *models.Stock) []any { return []any{&s.ProductID, &s.Quantity} },
		Schema: withProduct(newSchema[*models.Stock]("stocks"), func(s *models.Stock) *models.Product { return s.Product }).
			ID("ProductId", "product_id", func(s *models.Stock) any { return s.ProductID }).
			Number("Quantity", "quantity", func(s *models.Stock) any { return s.Quantity }),
	}
}

func CommentsTable() *Table[*models.Comment] {
	return &Table[*models.Comment]{
		Name:    "comments",
		Columns: []string{"product_id", "user_id", "text"},
		New:     func() *models.Comment { return &models.Comment{} },
		Clone:   shallow[models.Comment],
		Values:  func(c *models.Comment) []any { return []any{c.ProductID, c.UserID, c.Text} },
		Targets: func(c *models.Comment) []any { return []any{&c.ProductID, &c.UserID, &c.Text} },
		Schema: withProduct(newSchema[*models.Comment]("comments"), func(c *models.Comment) *models.Product { return c.Product }).
			ID("ProductId", "product_id", func(c *models.Comment) any { return c.ProductID }).
			ID("UserId", "user_id", func(c *models.Comment) any { return c.UserID }).
			String("Text", "text", func(c *models.Comment) any { return c.Text }),
	}
}

func RatingsTable() *Table[*models.Rating] {
	return &Table[*models.Rating]{
		Name:    "ratings",
		Columns: []string{"product_id", "user_id", "score"},
		New:     func() *models.Rating { return &models.Rating{} },
		Clone:   shallow[models.Rating],
		Values:  func(r *models.Rating) []any { return []any{r.ProductID, r.UserID, r.Score} },
		Targets: func(r *models.Rating) []any { return []any{&r.ProductID, &r.UserID, &r.Score} },
		Schema: withProduct(newSchema[*models.Rating]("ratings"), func(r *models.Rating) *models.Product { return r.Product }).
			ID("ProductId", "product_id", func(r *models.Rating) any { return r.ProductID }).
			ID("UserId", "user_id", func(r *models.Rating) any { return r.UserID }).
			Number("Score", "score", func(r *models.Rating) any { return r.Score }),
	}
}

func FavoritesTable() *Table[*models.Favorite] {
	return &Table[*models.Favorite]{
		Name:    "favorites",
		Columns: []string{"product_id", "user_id"},
		New:     func() *models.Favorite { return &models.Favorite{} },
		Clone:   shallow[models.Favorite],
		Values:  func(f *models.Favorite) []any { return []any{f.ProductID, f.UserID} },
		Targets: func(f *models.Favorite) []any { return []any{&f.ProductID, &f.UserID} },
		Schema: withProduct(newSchema[*models.Favorite]("favorites"), func(f *models.Favorite) *models.Product { return f.Product }).
			ID("ProductId", "product_id", func(f *models.Favorite) any { return f.ProductID }).
			ID("UserId", "user_id", func(f *models.Favorite) any { return f.UserID }),
	}
}

// UsersTable maps users. The password hash is stored but not queryable.
func UsersTable() *Table[*models.User] {
	return &Table[*models.User]{
		Name:    "users",
		Columns: []string{"username", "email", "display_name", "password_hash", "roles"},
		New:     func() *models.User { return &models.User{} },
		Clone:   shallow[models.User],
		Values: func(u *models.User) []any {
			return []any{u.UserName, u.Email, u.DisplayName, u.PasswordHash, models.JoinRoles(u.Roles)}
		},
		Targets: func(u *models.User) []any {
			return []any{&u.UserName, &u.Email, &u.DisplayName, &u.PasswordHash, (*rolesColumn)(&u.Roles)}
		},
		Schema: newSchema[*models.User]("users").
			String("UserName", "username", func(u *models.User) any { return u.UserName }).
			String("Email", "email", func(u *models.User) any { return u.Email }).
			String("DisplayName", "display_name", func(u *models.User) any { return u.DisplayName }).
			String("Roles", "roles", func(u *models.User) any { return models.JoinRoles(u.Roles) }),
	}
}

// withProduct registers the Product navigation shared by ledger and
// feedback tables.
func withProduct[T models.Record](s *query.Schema[T], product func(T) *models.Product) *query.Schema[T] {
	return s.
		Join("Product", "products", "product_id").
		String("Product.Title", "title", nav(product, func(p *models.Product) any { return p.Title })).
		Number("Product.Price", "price", nav(product, func(p *models.Product) any { return p.Price }))
}

// nav lifts a getter on a navigation target to the root type, yielding nil
// when the navigation is not loaded.
func nav[T any, N any](to func(T) *N, get func(*N) any) func(T) any {
	return func(v T) any {
		n := to(v)
		if n == nil {
			return nil
		}
		return get(n)
	}
}

type rolesColumn []string

func (r *rolesColumn) Scan(src any) error {
	switch s := src.(type) {
	case nil:
		*r = nil
	case string:
		*r = models.SplitRoles(s)
	case []byte:
		*r = models.SplitRoles(string(s))
	default:
		return fmt.Errorf("roles: unsupported type %T", src)
	}
	return nil
}
