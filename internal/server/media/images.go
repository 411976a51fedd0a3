package media

import (
	"context"
	"time"

	"github.com/dmitrijs2005/stockroom/internal/common"
	"github.com/dmitrijs2005/stockroom/internal/logging"
	"github.com/dmitrijs2005/stockroom/internal/server/auth"
	"github.com/dmitrijs2005/stockroom/internal/server/models"
	"github.com/dmitrijs2005/stockroom/internal/server/repositories"
)

// Presigner signs upload and download URLs for object keys.
type Presigner interface {
	PresignPut(ctx context.Context, key string) (string, error)
	PresignGet(ctx context.Context, key string) (string, error)
}

// Upload tells the client where to PUT the image bytes.
type Upload struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// ImageService attaches images to products.
type ImageService struct {
	products  repositories.Gateway[*models.Product]
	presigner Presigner
	logger    logging.Logger
	now       func() time.Time
}

func NewImageService(products repositories.Gateway[*models.Product], p Presigner, l logging.Logger) *ImageService {
	return &ImageService{products: products, presigner: p, logger: l, now: time.Now}
}

// UploadURL assigns a new image key to the product and returns a presigned
// PUT URL for it. A previous image is replaced.
func (s *ImageService) UploadURL(ctx context.Context, productID string) (*Upload, error) {
	p, err := s.products.Find(ctx, productID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	key := ProductImageKey(p.ID, now)
	url, err := s.presigner.PresignPut(ctx, key)
	if err != nil {
		s.logger.Error(ctx, "presign put", "product_id", p.ID, "error", err)
		return nil, common.Wrap(err, common.KindInternal, "could not sign upload url")
	}

	p.ImageKey = &key
	p.Touch(auth.ActorFromContext(ctx), now)
	if err := s.products.Update(ctx, p); err != nil {
		return nil, err
	}

	return &Upload{Key: key, URL: url}, nil
}

// DownloadURL returns a presigned GET URL for the product's image.
func (s *ImageService) DownloadURL(ctx context.Context, productID string) (string, error) {
	p, err := s.products.Find(ctx, productID)
	if err != nil {
		return "", err
	}
	if p.ImageKey == nil {
		return "", common.NotFound("product %s has no image", productID)
	}

	url, err := s.presigner.PresignGet(ctx, *p.ImageKey)
	if err != nil {
		s.logger.Error(ctx, "presign get", "product_id", p.ID, "error", err)
		return "", common.Wrap(err, common.KindInternal, "could not sign download url")
	}
	return url, nil
}
