package query

import (
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/stockroom/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brand struct {
	Title string
}

type item struct {
	ID       string
	Title    string
	Price    float64
	Qty      int64
	Active   bool
	Released time.Time
	Note     *string
	Brand    *brand
}

func testSchema() *Schema[*item] {
	return NewSchema[*item]("items").
		Join("Brand", "brands", "brand_id").
		ID("Id", "id", func(v *item) any { return v.ID }).
		String("Title", "title", func(v *item) any { return v.Title }).
		Number("Price", "price", func(v *item) any { return v.Price }).
		Number("Qty", "qty", func(v *item) any { return v.Qty }).
		Bool("Active", "active", func(v *item) any { return v.Active }).
		Time("Released", "released", func(v *item) any { return v.Released }).
		Nullable("Note", "note", KindString, func(v *item) any { return v.Note }).
		String("Brand.Title", "title", func(v *item) any {
			if v.Brand == nil {
				return nil
			}
			return v.Brand.Title
		})
}

func strPtr(s string) *string { return &s }

func testItems() []*item {
	jan := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	return []*item{
		{ID: "00000000-0000-0000-0000-000000000001", Title: "Laptop X1", Price: 1200, Qty: 3, Active: true, Released: jan, Brand: &brand{"Acme"}},
		{ID: "00000000-0000-0000-0000-000000000002", Title: "Mouse 100%", Price: 25.5, Qty: 40, Released: jan.AddDate(0, 2, 0), Note: strPtr("clearance")},
		{ID: "00000000-0000-0000-0000-000000000003", Title: "Laptop Z", Price: 900, Qty: 0, Active: true, Released: jan.AddDate(1, 0, 0), Brand: &brand{"Globex"}},
	}
}

func titles(items []*item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Title)
	}
	return out
}

func filter(t *testing.T, expr string) []string {
	t.Helper()
	q, err := testSchema().Parse(expr, "", "")
	require.NoError(t, err)
	var out []*item
	for _, it := range testItems() {
		if q.Match(it) {
			out = append(out, it)
		}
	}
	return titles(out)
}

func TestMatch(t *testing.T) {
	tests := []struct {
		expr string
		want []string
	}{
		{`Price > 100`, []string{"Laptop X1", "Laptop Z"}},
		{`price >= 900 and qty == 0`, []string{"Laptop Z"}},
		{`Title == "Mouse 100%" || Qty = 3`, []string{"Laptop X1", "Mouse 100%"}},
		{`Active`, []string{"Laptop X1", "Laptop Z"}},
		{`!Active`, []string{"Mouse 100%"}},
		{`not (Active && Price < 1000)`, []string{"Laptop X1", "Mouse 100%"}},
		{`Title.StartsWith("Laptop")`, []string{"Laptop X1", "Laptop Z"}},
		{`Title.contains('100%')`, []string{"Mouse 100%"}},
		{`Title.EndsWith("Z")`, []string{"Laptop Z"}},
		{`Note == null`, []string{"Laptop X1", "Laptop Z"}},
		{`Note != null`, []string{"Mouse 100%"}},
		{`Note <> "clearance"`, nil},
		{`Released < "2024-02-01"`, []string{"Laptop X1"}},
		{`Released >= "2024-03-10T00:00:00Z"`, []string{"Mouse 100%", "Laptop Z"}},
		{`Brand.Title == "Acme"`, []string{"Laptop X1"}},
		{`not Brand.Title == "Acme"`, []string{"Mouse 100%", "Laptop Z"}},
		{`1000 > Price`, []string{"Mouse 100%", "Laptop Z"}},
		{`Id == "00000000-0000-0000-0000-000000000002"`, []string{"Mouse 100%"}},
		{`Active == true and Price > Qty`, []string{"Laptop X1", "Laptop Z"}},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got := filter(t, tt.expr)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_ValidationFailures(t *testing.T) {
	tests := []struct {
		name       string
		filter     string
		projection string
		ordering   string
	}{
		{name: "unknown field", filter: `Colour == "red"`},
		{name: "unknown nested field", filter: `Brand.Country == "DE"`},
		{name: "syntax", filter: `Price >`},
		{name: "unbalanced", filter: `(Price > 1`},
		{name: "trailing tokens", filter: `Price > 1 2`},
		{name: "unterminated string", filter: `Title == "abc`},
		{name: "bad character", filter: `Price # 1`},
		{name: "kind mismatch", filter: `Price == "cheap"`},
		{name: "ordering on bool", filter: `Active > false`},
		{name: "null on non-nullable", filter: `Title == null`},
		{name: "null ordering", filter: `Note < null`},
		{name: "bad time", filter: `Released > "yesterday"`},
		{name: "bad id", filter: `Id == "42"`},
		{name: "method on number", filter: `Price.Contains("1")`},
		{name: "unknown method", filter: `Title.Matches("x")`},
		{name: "literal only", filter: `1 == 1`},
		{name: "non bool predicate", filter: `Title`},
		{name: "field vs field kinds", filter: `Title == Price`},
		{name: "projection unknown", projection: `Title, Secret`},
		{name: "projection duplicate", projection: `Title, title`},
		{name: "projection garbage", projection: `Title as`},
		{name: "ordering direction", ordering: `Price sideways`},
		{name: "ordering unknown", ordering: `Weight`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := testSchema().Parse(tt.filter, tt.projection, tt.ordering)
			require.Error(t, err)
			assert.True(t, errors.Is(err, common.ErrorValidation), "got %v", err)
		})
	}
}

func TestParse_EmptyAndBlank(t *testing.T) {
	q, err := testSchema().Parse("  ", " , ,", "")
	require.NoError(t, err)
	assert.True(t, q.IsEmpty())
	assert.False(t, q.HasProjection())
}

func TestProject(t *testing.T) {
	q, err := testSchema().Parse("", "title, , Brand.Title as brand, Note", "")
	require.NoError(t, err)
	require.True(t, q.HasProjection())
	assert.Equal(t, []string{"Title", "brand", "Note"}, q.ProjectionKeys())

	items := testItems()
	assert.Equal(t, map[string]any{"Title": "Laptop X1", "brand": "Acme", "Note": nil}, q.Project(items[0]))
	assert.Equal(t, map[string]any{"Title": "Mouse 100%", "brand": nil, "Note": "clearance"}, q.Project(items[1]))
}

func TestSort(t *testing.T) {
	tests := []struct {
		ordering string
		want     []string
	}{
		{"Price", []string{"Mouse 100%", "Laptop Z", "Laptop X1"}},
		{"price desc", []string{"Laptop X1", "Laptop Z", "Mouse 100%"}},
		{"Active desc, Qty", []string{"Laptop Z", "Laptop X1", "Mouse 100%"}},
		// nil sorts last ascending and first descending
		{"Brand.Title", []string{"Laptop X1", "Laptop Z", "Mouse 100%"}},
		{"Brand.Title DESC", []string{"Mouse 100%", "Laptop Z", "Laptop X1"}},
	}

	for _, tt := range tests {
		t.Run(tt.ordering, func(t *testing.T) {
			q, err := testSchema().Parse("", "", tt.ordering)
			require.NoError(t, err)
			items := testItems()
			q.Sort(items)
			assert.Equal(t, tt.want, titles(items))
		})
	}
}

func TestThenBy(t *testing.T) {
	s := testSchema()
	q, err := s.Parse("", "", "Active")
	require.NoError(t, err)

	q2 := q.ThenBy("Title")
	items := testItems()
	q2.Sort(items)
	assert.Equal(t, []string{"Mouse 100%", "Laptop X1", "Laptop Z"}, titles(items))

	r := q2.SQL(NewBuilder())
	assert.Equal(t, "t.active ASC, t.title ASC", r.OrderBy)
	assert.Equal(t, "t.active ASC", q.SQL(NewBuilder()).OrderBy, "original untouched")

	assert.Panics(t, func() { q.ThenBy("Nope") })
}

func TestSQL(t *testing.T) {
	q, err := testSchema().Parse(
		`(Price > 10 and not Title.Contains("50%_off")) or Note == null or Brand.Title.StartsWith("Ac")`,
		"Title, Brand.Title",
		"Released desc",
	)
	require.NoError(t, err)

	b := NewBuilder(false)
	r := q.SQL(b)

	assert.Equal(t,
		`(((t.price > $2::double precision AND NOT COALESCE(t.title LIKE $3 ESCAPE '\', FALSE)) OR t.note IS NULL) OR j_brand.title LIKE $4 ESCAPE '\')`,
		r.Where)
	assert.Equal(t, []any{false, float64(10), `%50\%\_off%`, "Ac%"}, b.Args)
	assert.Equal(t, []string{"t.title", "j_brand.title"}, r.Select)
	assert.Equal(t, "t.released DESC", r.OrderBy)
	assert.Equal(t, " LEFT JOIN brands j_brand ON j_brand.id = t.brand_id", r.Joins)
}

func TestSQL_TimeAndIDs(t *testing.T) {
	q, err := testSchema().Parse(`Released >= "2024-01-01" && Id.Contains("abc") && Title != Brand.Title`, "", "")
	require.NoError(t, err)

	b := NewBuilder()
	r := q.SQL(b)
	assert.Equal(t, `((t.released >= $1::timestamptz AND t.id::text LIKE $2 ESCAPE '\') AND t.title <> j_brand.title)`, r.Where)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), b.Args[0])
}

func TestSQL_MixedIDAndText(t *testing.T) {
	q, err := testSchema().Parse(`Id == Title || Title != Id`, "", "")
	require.NoError(t, err)

	r := q.SQL(NewBuilder())
	assert.Equal(t, `(t.id::text = t.title OR t.title <> t.id::text)`, r.Where)
}

func TestSQL_Empty(t *testing.T) {
	r := testSchema().NewQuery().SQL(NewBuilder())
	assert.Equal(t, SQL{}, r)
}

func TestNestedJoins(t *testing.T) {
	type leaf struct{ Name string }
	s := NewSchema[*leaf]("products").
		Join("Model", "models", "model_id").
		Join("Model.Brand", "brands", "brand_id").
		String("Model.Brand.Title", "title", func(*leaf) any { return nil })

	q, err := s.Parse(`model.brand.title == "Acme"`, "", "")
	require.NoError(t, err)
	r := q.SQL(NewBuilder())
	assert.Equal(t, " LEFT JOIN models j_model ON j_model.id = t.model_id LEFT JOIN brands j_model_brand ON j_model_brand.id = j_model.brand_id", r.Joins)
	assert.Equal(t, "j_model_brand.title = $1", r.Where)
}

func TestSchemaRegistrationPanics(t *testing.T) {
	assert.Panics(t, func() {
		NewSchema[*item]("items").Join("A.B", "bs", "b_id")
	})
	assert.Panics(t, func() {
		NewSchema[*item]("items").String("Missing.Title", "title", nil)
	})
	assert.Panics(t, func() {
		NewSchema[*item]("items").String("Title", "title", nil).String("title", "title", nil)
	})
}
