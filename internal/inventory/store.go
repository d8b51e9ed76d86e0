package inventory

import (
	"context"
	"errors"
	"strings"
	"time"

	"inventario/internal/metrics"
	"inventario/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AllCategories is the category choice that disables the category filter.
const AllCategories = "All"

type Filter struct {
	Search   string
	Category string
}

// Normalize trims the search text and maps the AllCategories sentinel to
// "no category filter".
func (f Filter) Normalize() Filter {
	f.Search = strings.TrimSpace(f.Search)
	f.Category = strings.TrimSpace(f.Category)
	if f.Category == AllCategories {
		f.Category = ""
	}
	return f
}

// ProductInput carries every caller supplied column of a product.
type ProductInput struct {
	Code        string
	Name        string
	Description string
	Category    string
	Quantity    int
	UnitPrice   float64
	Location    string
	Supplier    string
}

func (in ProductInput) product() models.Product {
	return models.Product{
		Code:        in.Code,
		Name:        in.Name,
		Description: in.Description,
		Category:    in.Category,
		Quantity:    in.Quantity,
		UnitPrice:   in.UnitPrice,
		Location:    in.Location,
		Supplier:    in.Supplier,
	}
}

// columns lists every non-id column so that zero values are written too.
func (in ProductInput) columns() map[string]any {
	return map[string]any{
		"code":        in.Code,
		"name":        in.Name,
		"description": in.Description,
		"category":    in.Category,
		"quantity":    in.Quantity,
		"unit_price":  in.UnitPrice,
		"location":    in.Location,
		"supplier":    in.Supplier,
	}
}

type Repository interface {
	List(ctx context.Context, f Filter) ([]models.Product, error)
	Get(ctx context.Context, id uint) (*models.Product, error)
	Create(ctx context.Context, in ProductInput) (*models.Product, error)
	Update(ctx context.Context, id uint, in ProductInput) error
	Delete(ctx context.Context, id uint) error
	DistinctCategories(ctx context.Context) ([]string, error)
}

// Store is the product data access layer. Each method checks out one
// connection for its own use and hands it back before returning.
type Store struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewStore(db *gorm.DB, log *zap.Logger) *Store {
	return &Store{db: db, log: log}
}

var _ Repository = (*Store)(nil)

func (s *Store) do(ctx context.Context, op string, fn func(conn *gorm.DB) error) (err error) {
	defer func(start time.Time) { metrics.ObserveStore(op, start, err) }(time.Now())

	err = s.db.WithContext(ctx).Connection(fn)
	if err == nil {
		return nil
	}
	if IsNotFound(err) {
		return err
	}
	s.log.Error("store operation failed", zap.String("op", op), zap.Error(err))
	return &StorageError{Op: op, Err: err}
}

// search matches name or code case-insensitively. The pattern is escaped by
// likePattern, so user input never acts as a wildcard.
const searchClause = `(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(code) LIKE ? ESCAPE '\')`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

// scope picks one of four fixed statement shapes.
func (f Filter) scope(q *gorm.DB) *gorm.DB {
	switch {
	case f.Search == "" && f.Category == "":
		return q
	case f.Category == "":
		p := likePattern(f.Search)
		return q.Where(searchClause, p, p)
	case f.Search == "":
		return q.Where("category = ?", f.Category)
	default:
		p := likePattern(f.Search)
		return q.Where("category = ? AND "+searchClause, f.Category, p, p)
	}
}

func (s *Store) List(ctx context.Context, f Filter) ([]models.Product, error) {
	f = f.Normalize()
	products := make([]models.Product, 0)
	err := s.do(ctx, "list", func(conn *gorm.DB) error {
		return f.scope(conn.Model(&models.Product{})).Order("id asc").Find(&products).Error
	})
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (s *Store) Get(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	err := s.do(ctx, "get", func(conn *gorm.DB) error {
		err := conn.Take(&p, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{ID: id}
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	p := in.product()
	err := s.do(ctx, "create", func(conn *gorm.DB) error {
		return conn.Create(&p).Error
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Update overwrites every column but id. A missing id is not an error;
// callers that care check with Get first.
func (s *Store) Update(ctx context.Context, id uint, in ProductInput) error {
	return s.do(ctx, "update", func(conn *gorm.DB) error {
		return conn.Model(&models.Product{}).Where("id = ?", id).Updates(in.columns()).Error
	})
}

func (s *Store) Delete(ctx context.Context, id uint) error {
	return s.do(ctx, "delete", func(conn *gorm.DB) error {
		return conn.Delete(&models.Product{}, "id = ?", id).Error
	})
}

// DistinctCategories lists the categories that can be picked as a filter.
// Blank categories are left out: an empty choice means "no filter".
func (s *Store) DistinctCategories(ctx context.Context) ([]string, error) {
	categories := make([]string, 0)
	err := s.do(ctx, "categories", func(conn *gorm.DB) error {
		return conn.Model(&models.Product{}).
			Where("category IS NOT NULL AND category <> ''").
			Distinct().
			Order("category asc").
			Pluck("category", &categories).Error
	})
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// Ping checks that a connection can be opened and used.
func (s *Store) Ping(ctx context.Context) error {
	return s.do(ctx, "ping", func(conn *gorm.DB) error {
		return conn.Exec("SELECT 1").Error
	})
}
