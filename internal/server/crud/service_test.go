package crud

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/stockroom/internal/common"
	"github.com/dmitrijs2005/stockroom/internal/server/auth"
	"github.com/dmitrijs2005/stockroom/internal/server/models"
	"github.com/dmitrijs2005/stockroom/internal/server/pagination"
	"github.com/dmitrijs2005/stockroom/internal/server/repositories"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

// ticker returns a clock advancing one second per call.
func ticker() func() time.Time {
	t := start
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func newBrands() *Service[*models.Brand, models.BrandDTO] {
	s := NewService[*models.Brand, models.BrandDTO](
		repositories.NewMemoryGateway(repositories.BrandsTable()), models.BrandToDTO, models.BrandFromDTO)
	s.now = ticker()
	return s
}

func newProducts() *Service[*models.Product, models.ProductDTO] {
	s := NewService[*models.Product, models.ProductDTO](
		repositories.NewMemoryGateway(repositories.ProductsTable()), models.ProductToDTO, models.ProductFromDTO)
	s.now = ticker()
	return s
}

func seedBrands(t *testing.T, s *Service[*models.Brand, models.BrandDTO], titles ...string) []models.BrandDTO {
	t.Helper()
	out := make([]models.BrandDTO, len(titles))
	for i, title := range titles {
		d, err := s.Add(context.Background(), models.BrandDTO{Title: title})
		require.NoError(t, err)
		out[i] = d
	}
	return out
}

func TestAddThenFind_Product(t *testing.T) {
	ctx := context.Background()
	s := newProducts()

	created, err := s.Add(ctx, models.ProductDTO{Title: "Laptop X1", Price: 1299})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := s.Find(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Laptop X1", got.Title)
	assert.False(t, got.IsDeleted)
	assert.False(t, got.IsActive)
	assert.Equal(t, common.SystemActor, got.CreatedBy)
}

func TestAdd_IgnoresClientIdentityAndUsesActor(t *testing.T) {
	ctx := auth.WithUser(context.Background(), &auth.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u-1"}})
	s := newBrands()

	d, err := s.Add(ctx, models.BrandDTO{EntityDTO: models.EntityDTO{ID: "client-id", IsDeleted: true}, Title: "Acme"})
	require.NoError(t, err)
	assert.NotEqual(t, "client-id", d.ID)
	assert.False(t, d.IsDeleted)
	assert.Equal(t, "u-1", d.CreatedBy)
}

func TestFind_NotFound(t *testing.T) {
	_, err := newBrands().Find(context.Background(), uuid.NewString())
	assert.True(t, errors.Is(err, common.ErrorNotFound))
}

func TestDeleteRestore_KeepsActivation(t *testing.T) {
	ctx := context.Background()
	s := newBrands()
	b := seedBrands(t, s, "Acme")[0]

	ok, err := s.Activate(ctx, b.ID)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.Delete(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	deleted, err := s.Find(ctx, b.ID)
	require.NoError(t, err)
	require.NotNil(t, deleted.DeletedAt)

	// deleting twice is a no-op success
	ok, err = s.Delete(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	again, err := s.Find(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, deleted.DeletedAt, again.DeletedAt, "second delete must not restamp")
	assert.Equal(t, deleted.DeletedBy, again.DeletedBy)
	assert.Equal(t, deleted.ModifiedAt, again.ModifiedAt)

	ok, err = s.Restore(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := s.Find(ctx, b.ID)
	require.NoError(t, err)
	assert.False(t, got.IsDeleted)
	assert.True(t, got.IsActive)
	assert.NotNil(t, got.RestoredAt)
	assert.NotNil(t, got.DeletedAt, "deletion history is kept")
}

func TestRestore_NotDeletedIsNotFound(t *testing.T) {
	ctx := context.Background()
	s := newBrands()
	b := seedBrands(t, s, "Acme")[0]

	ok, err := s.Restore(ctx, b.ID)
	assert.False(t, ok)
	assert.True(t, errors.Is(err, common.ErrorNotFound))

	_, err = s.Restore(ctx, uuid.NewString())
	assert.True(t, errors.Is(err, common.ErrorNotFound))
}

func TestActivateDisable_DoNotTouchDeleteState(t *testing.T) {
	ctx := context.Background()
	s := newBrands()
	b := seedBrands(t, s, "Acme")[0]

	_, err := s.Delete(ctx, b.ID)
	require.NoError(t, err)
	before, _ := s.Find(ctx, b.ID)

	_, err = s.Activate(ctx, b.ID)
	require.NoError(t, err)
	_, err = s.Disable(ctx, b.ID)
	require.NoError(t, err)

	after, _ := s.Find(ctx, b.ID)
	assert.Equal(t, before.IsDeleted, after.IsDeleted)
	assert.Equal(t, before.DeletedAt, after.DeletedAt)
	assert.Equal(t, before.DeletedBy, after.DeletedBy)
	assert.False(t, after.IsActive)
	assert.NotNil(t, after.ActivatedAt)
	assert.NotNil(t, after.DisabledAt)
}

func TestListTypes(t *testing.T) {
	ctx := context.Background()
	s := newBrands()
	bs := seedBrands(t, s, "A", "B", "C")

	_, err := s.Delete(ctx, bs[1].ID)
	require.NoError(t, err)

	existed, err := s.List(ctx, repositories.ListExisted)
	require.NoError(t, err)
	deleted, err := s.List(ctx, repositories.ListDeleted)
	require.NoError(t, err)
	all, err := s.List(ctx, repositories.ListAll)
	require.NoError(t, err)

	titles := func(ds []models.BrandDTO) []string {
		var out []string
		for _, d := range ds {
			out = append(out, d.Title)
		}
		return out
	}
	assert.Equal(t, []string{"A", "C"}, titles(existed))
	assert.Equal(t, []string{"B"}, titles(deleted))
	assert.Equal(t, []string{"A", "B", "C"}, titles(all))
}

func TestQuery_RequiresAnExpression(t *testing.T) {
	ctx := context.Background()
	s := newBrands()
	seedBrands(t, s, "Acme", "Bolt")

	_, err := s.Query(ctx, repositories.ListExisted, " ", "", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrorValidation))
	assert.Contains(t, err.Error(), "must supply at least one of filter/projection/ordering")

	_, err = s.QueryPage(ctx, repositories.ListExisted, "", "", "", pagination.Params{Size: 1, Number: 1})
	assert.True(t, errors.Is(err, common.ErrorValidation))

	r, err := s.Query(ctx, repositories.ListExisted, `Title == "Bolt"`, "", "")
	require.NoError(t, err)
	require.Len(t, r.Items, 1)
	assert.Equal(t, "Bolt", r.Items[0].Title)

	r, err = s.Query(ctx, repositories.ListExisted, "", "", "Title desc")
	require.NoError(t, err)
	assert.Equal(t, "Bolt", r.Items[0].Title)

	r, err = s.Query(ctx, repositories.ListExisted, "", "Title as name", "")
	require.NoError(t, err)
	assert.True(t, r.Projected())
	assert.Equal(t, 2, r.Len())
	assert.Contains(t, r.Records[0], "name")
}

func TestQuery_InvalidExpression(t *testing.T) {
	_, err := newBrands().Query(context.Background(), repositories.ListExisted, "Nope == 1", "", "")
	assert.True(t, errors.Is(err, common.ErrorValidation))
}

func TestQueryPage_ConcatenatesToUnpaged(t *testing.T) {
	ctx := context.Background()
	s := newBrands()
	seedBrands(t, s, "e", "a", "d", "b", "c")

	full, err := s.Query(ctx, repositories.ListExisted, "", "", "Title")
	require.NoError(t, err)

	var paged []models.BrandDTO
	for n := 1; n <= 3; n++ {
		p, err := s.QueryPage(ctx, repositories.ListExisted, "", "", "Title", pagination.Params{Size: 2, Number: n})
		require.NoError(t, err)
		assert.Equal(t, 5, p.TotalItems)
		assert.Equal(t, 3, p.TotalPages)
		paged = append(paged, p.Items...)
	}
	assert.Equal(t, full.Items, paged)

	beyond, err := s.QueryPage(ctx, repositories.ListExisted, "", "", "Title", pagination.Params{Size: 2, Number: 9})
	require.NoError(t, err)
	assert.Empty(t, beyond.Items)
	assert.Equal(t, 5, beyond.TotalItems)
}

func TestQueryPage_Projection(t *testing.T) {
	ctx := context.Background()
	s := newBrands()
	seedBrands(t, s, "a", "b", "c")

	p, err := s.QueryPage(ctx, repositories.ListAll, "", "Title", "Title desc", pagination.Params{Size: 2, Number: 1})
	require.NoError(t, err)
	require.Len(t, p.Records, 2)
	assert.Equal(t, "c", p.Records[0]["Title"])

	raw, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":[{"Title":"c"},{"Title":"b"}],"totalItems":3,"totalPages":2}`, string(raw))
}

func TestListPage(t *testing.T) {
	ctx := context.Background()
	s := newBrands()
	seedBrands(t, s, "a", "b", "c")

	p, err := s.ListPage(ctx, repositories.ListExisted, pagination.Params{Size: 2, Number: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, p.TotalItems)
	assert.Equal(t, 2, p.TotalPages)
	require.Len(t, p.Items, 1)
	assert.Equal(t, "c", p.Items[0].Title)
}

func TestFindList(t *testing.T) {
	ctx := context.Background()
	s := newBrands()
	b := seedBrands(t, s, "Acme")[0]

	got, err := s.FindList(ctx, b.ID+", "+uuid.NewString()+",")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, b.ID, got[0].ID)

	_, err = s.FindList(ctx, b.ID+",not-a-uuid")
	assert.True(t, errors.Is(err, common.ErrorValidation))

	_, err = s.FindList(ctx, " , ")
	assert.True(t, errors.Is(err, common.ErrorValidation))
}

func TestUpdate_MergesDomainFields(t *testing.T) {
	ctx := context.Background()
	s := newBrands()
	b := seedBrands(t, s, "Acme")[0]
	_, err := s.Activate(ctx, b.ID)
	require.NoError(t, err)

	upd, err := s.Update(ctx, b.ID, models.BrandDTO{Title: "Acme Corp", Description: "tools"})
	require.NoError(t, err)
	assert.Equal(t, b.ID, upd.ID)
	assert.Equal(t, b.CreatedAt, upd.CreatedAt)
	assert.True(t, upd.IsActive)
	require.NotNil(t, upd.ModifiedBy)
	assert.Equal(t, common.SystemActor, *upd.ModifiedBy)

	got, _ := s.Find(ctx, b.ID)
	assert.Equal(t, "Acme Corp", got.Title)
	assert.Equal(t, "tools", got.Description)

	_, err = s.Update(ctx, uuid.NewString(), models.BrandDTO{Title: "x"})
	assert.True(t, errors.Is(err, common.ErrorNotFound))
}

func TestUpdateMany_IsAtomic(t *testing.T) {
	ctx := context.Background()
	s := newBrands()
	bs := seedBrands(t, s, "A", "B")

	_, err := s.UpdateMany(ctx, []models.BrandDTO{
		{EntityDTO: models.EntityDTO{ID: bs[0].ID}, Title: "A2"},
		{EntityDTO: models.EntityDTO{ID: uuid.NewString()}, Title: "ghost"},
	})
	assert.True(t, errors.Is(err, common.ErrorNotFound))

	got, _ := s.Find(ctx, bs[0].ID)
	assert.Equal(t, "A", got.Title)

	_, err = s.UpdateMany(ctx, []models.BrandDTO{{Title: "no id"}})
	assert.True(t, errors.Is(err, common.ErrorValidation))

	out, err := s.UpdateMany(ctx, []models.BrandDTO{
		{EntityDTO: models.EntityDTO{ID: bs[0].ID}, Title: "A2"},
		{EntityDTO: models.EntityDTO{ID: bs[1].ID}, Title: "B2"},
	})
	require.NoError(t, err)
	assert.Len(t, out, 2)
	got, _ = s.Find(ctx, bs[1].ID)
	assert.Equal(t, "B2", got.Title)
}

func TestUpdate_PreservesImageKey(t *testing.T) {
	ctx := context.Background()
	gw := repositories.NewMemoryGateway(repositories.ProductsTable())
	s := NewService[*models.Product, models.ProductDTO](gw, models.ProductToDTO, models.ProductFromDTO).
		PreserveOnUpdate(func(v, stored *models.Product) { v.ImageKey = stored.ImageKey })

	p, err := s.Add(ctx, models.ProductDTO{Title: "Laptop X1"})
	require.NoError(t, err)

	stored, err := gw.Find(ctx, p.ID)
	require.NoError(t, err)
	key := "products/" + p.ID
	stored.ImageKey = &key
	require.NoError(t, gw.Update(ctx, stored))

	upd, err := s.Update(ctx, p.ID, models.ProductDTO{Title: "Laptop X2"})
	require.NoError(t, err)
	require.NotNil(t, upd.ImageKey)
	assert.Equal(t, key, *upd.ImageKey)
}

func TestManyTransitions(t *testing.T) {
	ctx := context.Background()
	s := newBrands()
	bs := seedBrands(t, s, "A", "B", "C")
	ids := []string{bs[0].ID, bs[1].ID}

	_, err := s.DeleteMany(ctx, append([]string{}, bs[0].ID, uuid.NewString()))
	assert.True(t, errors.Is(err, common.ErrorNotFound))
	got, _ := s.Find(ctx, bs[0].ID)
	assert.False(t, got.IsDeleted)

	ok, err := s.DeleteMany(ctx, ids)
	require.NoError(t, err)
	assert.True(t, ok)
	existed, _ := s.List(ctx, repositories.ListExisted)
	assert.Len(t, existed, 1)

	_, err = s.RestoreMany(ctx, []string{bs[0].ID, bs[2].ID})
	assert.True(t, errors.Is(err, common.ErrorNotFound), "C is not deleted")

	ok, err = s.RestoreMany(ctx, ids)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = s.ActivateMany(ctx, ids)
	require.NoError(t, err)
	_, err = s.DisableMany(ctx, ids[:1])
	require.NoError(t, err)
	a, _ := s.Find(ctx, bs[0].ID)
	b, _ := s.Find(ctx, bs[1].ID)
	assert.False(t, a.IsActive)
	assert.True(t, b.IsActive)
}

func TestHardDelete(t *testing.T) {
	ctx := context.Background()
	s := newBrands()
	bs := seedBrands(t, s, "A", "B", "C")

	ok, err := s.HardDelete(ctx, bs[0].ID)
	require.NoError(t, err)
	assert.True(t, ok)
	_, err = s.Find(ctx, bs[0].ID)
	assert.True(t, errors.Is(err, common.ErrorNotFound))

	_, err = s.HardDelete(ctx, bs[0].ID)
	assert.True(t, errors.Is(err, common.ErrorNotFound))

	ok, err = s.HardDeleteMany(ctx, []string{bs[1].ID, bs[2].ID})
	require.NoError(t, err)
	assert.True(t, ok)
	all, _ := s.List(ctx, repositories.ListAll)
	assert.Empty(t, all)
}

func TestResult_MarshalJSON(t *testing.T) {
	raw, err := json.Marshal(Result[models.BrandDTO]{})
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}

func TestMalformedIDs(t *testing.T) {
	ctx := context.Background()
	s := NewService[*models.Brand, models.BrandDTO](failingGateway{}, models.BrandToDTO, models.BrandFromDTO)

	_, err := s.Find(ctx, "not-a-uuid")
	assert.True(t, errors.Is(err, common.ErrorNotFound), "find: %v", err)

	_, err = s.Update(ctx, "not-a-uuid", models.BrandDTO{Title: "x"})
	assert.True(t, errors.Is(err, common.ErrorNotFound), "update: %v", err)

	_, err = s.UpdateMany(ctx, []models.BrandDTO{{EntityDTO: models.EntityDTO{ID: "nope"}}})
	assert.True(t, errors.Is(err, common.ErrorNotFound), "update many: %v", err)

	for name, op := range map[string]func(context.Context, string) (bool, error){
		"delete": s.Delete, "restore": s.Restore, "activate": s.Activate, "disable": s.Disable, "hard delete": s.HardDelete,
	} {
		_, err := op(ctx, "not-a-uuid")
		assert.True(t, errors.Is(err, common.ErrorNotFound), "%s: %v", name, err)
	}

	_, err = s.DeleteMany(ctx, []string{uuid.NewString(), "not-a-uuid"})
	assert.True(t, errors.Is(err, common.ErrorNotFound))
	_, err = s.HardDeleteMany(ctx, []string{uuid.NewString(), "not-a-uuid"})
	assert.True(t, errors.Is(err, common.ErrorNotFound))
}

// failingGateway stands in for a store that rejects anything it is asked,
// the way Postgres fails on a malformed UUID.
type failingGateway struct {
	repositories.Gateway[*models.Brand]
}

var errStore = errors.New("db error: invalid input syntax for type uuid")

func (failingGateway) Find(context.Context, string) (*models.Brand, error) { return nil, errStore }

func (failingGateway) HardDelete(context.Context, string) error { return errStore }

func (failingGateway) HardDeleteRange(context.Context, []string) error { return errStore }
