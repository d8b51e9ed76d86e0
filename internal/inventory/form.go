package inventory

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"inventario/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

// FormFields is the order in which product forms are rendered and parsed.
var FormFields = []string{
	"code", "name", "description", "category",
	"quantity", "unit_price", "location", "supplier",
}

// FormValues holds the raw strings of a product form, either as submitted or
// as loaded from a stored product.
type FormValues map[string]string

func formValuesFromProduct(p *models.Product) FormValues {
	return FormValues{
		"code":        p.Code,
		"name":        p.Name,
		"description": p.Description,
		"category":    p.Category,
		"quantity":    strconv.Itoa(p.Quantity),
		"unit_price":  strconv.FormatFloat(p.UnitPrice, 'f', -1, 64),
		"location":    p.Location,
		"supplier":    p.Supplier,
	}
}

// formLookup reads submitted fields from an urlencoded or multipart body and
// tells absent fields apart from empty ones. A multipart body that cannot be
// parsed is a ValidationError.
func formLookup(c *fiber.Ctx) (func(string) (string, bool), error) {
	args := c.Request().PostArgs()
	multipart, err := c.MultipartForm()
	if err != nil && !errors.Is(err, fasthttp.ErrNoMultipartForm) {
		return nil, &ValidationError{Field: "form", Err: fmt.Errorf("%w: %v", errBadForm, err)}
	}
	return func(key string) (string, bool) {
		if args.Has(key) {
			return string(args.Peek(key)), true
		}
		if multipart != nil {
			if v, ok := multipart.Value[key]; ok && len(v) > 0 {
				return v[0], true
			}
		}
		return "", false
	}, nil
}

// ParseProductForm coerces a submitted product form. Every field must be
// present; quantity must be an integer and unit_price a number. Negative
// values are accepted.
func ParseProductForm(lookup func(string) (string, bool)) (ProductInput, FormValues, error) {
	raw := make(FormValues, len(FormFields))
	var missing string
	for _, field := range FormFields {
		v, ok := lookup(field)
		if !ok && missing == "" {
			missing = field
		}
		raw[field] = v
	}
	if missing != "" {
		return ProductInput{}, raw, &ValidationError{Field: missing, Err: errMissing}
	}

	quantity, err := parseQuantity(raw["quantity"])
	if err != nil {
		return ProductInput{}, raw, err
	}
	price, err := parseUnitPrice(raw["unit_price"])
	if err != nil {
		return ProductInput{}, raw, err
	}

	return ProductInput{
		Code:        strings.TrimSpace(raw["code"]),
		Name:        strings.TrimSpace(raw["name"]),
		Description: strings.TrimSpace(raw["description"]),
		Category:    strings.TrimSpace(raw["category"]),
		Quantity:    quantity,
		UnitPrice:   price,
		Location:    strings.TrimSpace(raw["location"]),
		Supplier:    strings.TrimSpace(raw["supplier"]),
	}, raw, nil
}

func parseQuantity(v string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, &ValidationError{Field: "quantity", Value: v, Err: errNotInt}
	}
	return n, nil
}

// parseUnitPrice accepts "2.50" and, when there is no dot, "2,50".
func parseUnitPrice(v string) (float64, error) {
	s := strings.TrimSpace(v)
	if !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &ValidationError{Field: "unit_price", Value: v, Err: errNotNumber}
	}
	return f, nil
}
