package media

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/stockroom/internal/common"
	"github.com/dmitrijs2005/stockroom/internal/logging"
	"github.com/dmitrijs2005/stockroom/internal/server/models"
	"github.com/dmitrijs2005/stockroom/internal/server/repositories"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePresigner struct {
	err error
}

func (f *fakePresigner) PresignPut(ctx context.Context, key string) (string, error) {
	return "put:" + key, f.err
}

func (f *fakePresigner) PresignGet(ctx context.Context, key string) (string, error) {
	return "get:" + key, f.err
}

func seedProduct(t *testing.T, gw repositories.Gateway[*models.Product]) *models.Product {
	t.Helper()
	p := &models.Product{Title: "Laptop X1"}
	p.Stamp(common.SystemActor, p.CreatedAt)
	require.NoError(t, gw.Add(context.Background(), p))
	return p
}

func TestImageService_UploadThenDownload(t *testing.T) {
	ctx := context.Background()
	gw := repositories.NewMemoryGateway(repositories.ProductsTable())
	p := seedProduct(t, gw)
	s := NewImageService(gw, &fakePresigner{}, logging.Nop())

	_, err := s.DownloadURL(ctx, p.ID)
	assert.True(t, errors.Is(err, common.ErrorNotFound))

	up, err := s.UploadURL(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "put:"+up.Key, up.URL)

	stored, err := gw.Find(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ImageKey)
	assert.Equal(t, up.Key, *stored.ImageKey)
	require.NotNil(t, stored.ModifiedBy)
	assert.Equal(t, common.SystemActor, *stored.ModifiedBy)

	u, err := s.DownloadURL(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "get:"+up.Key, u)
}

func TestImageService_Errors(t *testing.T) {
	ctx := context.Background()
	gw := repositories.NewMemoryGateway(repositories.ProductsTable())
	p := seedProduct(t, gw)

	s := NewImageService(gw, &fakePresigner{}, logging.Nop())
	_, err := s.UploadURL(ctx, uuid.NewString())
	assert.True(t, errors.Is(err, common.ErrorNotFound))

	s = NewImageService(gw, &fakePresigner{err: errors.New("s3 down")}, logging.Nop())
	_, err = s.UploadURL(ctx, p.ID)
	require.Error(t, err)
	assert.Equal(t, common.KindInternal, common.KindOf(err))

	stored, _ := gw.Find(ctx, p.ID)
	assert.Nil(t, stored.ImageKey, "failed signing leaves the product untouched")
}
