package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/pastryjoy-api/internal/domain/entity"
	repo "github.com/oksasatya/pastryjoy-api/internal/domain/repository"
	"github.com/oksasatya/pastryjoy-api/internal/domain/service"
)

// ImageStore uploads product images and returns their public URL.
type ImageStore interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}

type ProductService struct {
	Repo     repo.ProductRepository
	Recipes  repo.RecipeRepository
	Calc     *service.CostCalculator
	Tx       repo.Transactor
	Currency string
	Logger   *logrus.Logger

	// Optional integrations; nil disables each one.
	Images  ImageStore
	ES      *elasticsearch.Client
	ESIndex string
}

type ProductRecipeLine struct {
	RecipeID uuid.UUID
	Quantity decimal.Decimal
}

type ProductInput struct {
	Name                    string
	ImageURL                string
	FixedCosts              decimal.Decimal
	VariableCostsPercentage decimal.Decimal
	ProfitMarginPercentage  decimal.Decimal
	Recipes                 []ProductRecipeLine
}

func NewProductService(r repo.ProductRepository, recipes repo.RecipeRepository, calc *service.CostCalculator, tx repo.Transactor, currency string, logger *logrus.Logger) *ProductService {
	return &ProductService{Repo: r, Recipes: recipes, Calc: calc, Tx: tx, Currency: currency, Logger: logger}
}

func (s *ProductService) recipeLines(ctx context.Context, in []ProductRecipeLine) ([]entity.ProductRecipe, error) {
	out := make([]entity.ProductRecipe, 0, len(in))
	for i, l := range in {
		ok, err := s.Recipes.Exists(ctx, l.RecipeID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, invalidInput(fmt.Sprintf("recipes[%d].recipe_id", i), "recipe "+l.RecipeID.String()+" does not exist")
		}
		out = append(out, entity.ProductRecipe{RecipeID: l.RecipeID, Quantity: l.Quantity.Round(quantityPlaces)})
	}
	return out, nil
}

func (s *ProductService) apply(ctx context.Context, p *entity.Product, in ProductInput) error {
	fixed, err := entity.NewMoney(in.FixedCosts.Round(2), s.Currency)
	if err != nil {
		return err
	}
	if err := p.Update(in.Name, in.ImageURL, fixed, in.VariableCostsPercentage.Round(2), in.ProfitMarginPercentage.Round(2)); err != nil {
		return err
	}
	lines, err := s.recipeLines(ctx, in.Recipes)
	if err != nil {
		return err
	}
	return p.SetRecipes(lines)
}

func (s *ProductService) Create(ctx context.Context, in ProductInput) (*entity.Product, error) {
	fixed, err := entity.NewMoney(in.FixedCosts.Round(2), s.Currency)
	if err != nil {
		return nil, err
	}
	p, err := entity.NewProduct(in.Name, fixed, in.VariableCostsPercentage.Round(2), in.ProfitMarginPercentage.Round(2))
	if err != nil {
		return nil, err
	}
	err = s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.apply(ctx, p, in); err != nil {
			return err
		}
		return s.Repo.Create(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	s.indexProduct(ctx, p)
	return p, nil
}

func (s *ProductService) Get(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	return s.Repo.GetByID(ctx, id)
}

func (s *ProductService) List(ctx context.Context, q string, page repo.Page) ([]*entity.Product, int64, error) {
	if q = strings.TrimSpace(q); q != "" {
		items, err := s.Repo.SearchByName(ctx, q, page)
		return items, int64(len(items)), err
	}
	items, err := s.Repo.GetAll(ctx, page)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.Repo.Count(ctx)
	return items, total, err
}

// Update replaces the product's fields and recipe lines. An empty ImageURL
// keeps the current image.
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, in ProductInput) (*entity.Product, error) {
	var out *entity.Product
	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		p, err := s.Repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if strings.TrimSpace(in.ImageURL) == "" {
			in.ImageURL = p.ImageURL
		}
		if err := s.apply(ctx, p, in); err != nil {
			return err
		}
		if err := s.Repo.Update(ctx, p); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.indexProduct(ctx, out)
	return out, nil
}

func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.Repo.Delete(ctx, id)
	if errors.Is(err, repo.ErrInvalidReference) {
		return fmt.Errorf("%w: product %s has orders", ErrInUse, id)
	}
	if err != nil {
		return err
	}
	s.unindexProduct(ctx, id)
	return nil
}

// Cost computes the product's cost breakdown from current ingredient prices.
func (s *ProductService) Cost(ctx context.Context, id uuid.UUID) (*entity.Product, entity.ProductCost, error) {
	p, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, entity.ProductCost{}, err
	}
	pc, err := s.Calc.ProductCost(ctx, p)
	if err != nil {
		return nil, entity.ProductCost{}, err
	}
	return p, pc, nil
}

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// UploadImage stores an image for the product and points ImageURL at it.
func (s *ProductService) UploadImage(ctx context.Context, id uuid.UUID, filename, contentType string, r io.Reader) (*entity.Product, error) {
	if s.Images == nil {
		return nil, fmt.Errorf("%w: image storage", ErrNotConfigured)
	}
	ext, ok := allowedImageTypes[strings.ToLower(contentType)]
	if !ok {
		return nil, invalidInput("image", "must be a JPEG, PNG, WebP or GIF image")
	}
	if e := strings.ToLower(filepath.Ext(filename)); e != "" {
		ext = e
	}
	p, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	objectPath := filepath.ToSlash(filepath.Join("products", id.String(), uuid.NewString()+ext))
	url, err := s.Images.Upload(ctx, objectPath, contentType, r)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("product_id", id).Error("image upload failed")
		}
		return nil, fmt.Errorf("upload image: %w", err)
	}
	p.SetImageURL(url)
	if err := s.Repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.indexProduct(ctx, p)
	return p, nil
}
