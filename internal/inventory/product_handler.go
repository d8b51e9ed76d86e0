package inventory

import (
	"errors"
	"fmt"

	"inventario/internal/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const layout = "layouts/main"

type Handler struct {
	repo Repository
	log  *zap.Logger
}

func NewHandler(repo Repository, log *zap.Logger) *Handler {
	return &Handler{repo: repo, log: log}
}

func (h *Handler) Register(r fiber.Router) {
	r.Get("/", h.ListProductsHandler())
	r.Post("/", h.ListProductsHandler())

	r.Get("/add", h.NewProductFormHandler())
	r.Post("/add", h.CreateProductHandler())

	r.Get("/edit/:id", h.EditProductFormHandler())
	r.Post("/edit/:id", h.UpdateProductHandler())

	r.Get("/delete/:id", h.DeleteProductFormHandler())
	r.Post("/delete/:id", h.DeleteProductHandler())

	r.Get("/export/csv", h.ExportCSVHandler())
	r.Get("/export/excel", h.ExportExcelHandler())
}

// httpError maps store and form errors onto fiber errors.
func httpError(err error) error {
	var (
		nf *NotFoundError
		ve *ValidationError
		se *StorageError
	)
	switch {
	case errors.As(err, &nf):
		return fiber.NewError(fiber.StatusNotFound, "Producto no encontrado")
	case errors.As(err, &ve):
		return fiber.NewError(fiber.StatusBadRequest, ve.Error())
	case errors.As(err, &se):
		if se.Busy() {
			return fiber.NewError(fiber.StatusServiceUnavailable, "La base de datos está ocupada, inténtelo de nuevo")
		}
		return fiber.NewError(fiber.StatusInternalServerError, fmt.Sprintf("Error de almacenamiento (%s)", se.Op))
	}
	return err
}

// productID rejects anything that is not a positive integer the same way a
// missing product is rejected.
func productID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusNotFound, "Producto no encontrado")
	}
	return uint(id), nil
}

func (h *Handler) loadProduct(c *fiber.Ctx) (*models.Product, error) {
	id, err := productID(c)
	if err != nil {
		return nil, err
	}
	p, err := h.repo.Get(c.UserContext(), id)
	if err != nil {
		return nil, httpError(err)
	}
	return p, nil
}

func parseSubmittedForm(c *fiber.Ctx) (ProductInput, FormValues, error) {
	lookup, err := formLookup(c)
	if err != nil {
		return ProductInput{}, FormValues{}, err
	}
	return ParseProductForm(lookup)
}

// renderFormError re-renders a product form with the failure inline.
func (h *Handler) renderFormError(c *fiber.Ctx, view string, data fiber.Map, prefix string, err error) error {
	fe, ok := httpError(err).(*fiber.Error)
	if !ok {
		return err
	}
	data["Error"] = prefix + ": " + fe.Message
	return c.Status(fe.Code).Render(view, data, layout)
}

// GET/POST /
// GET takes the filter from the query string, POST from the submitted form.
func (h *Handler) ListProductsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		f := Filter{Search: c.Query("search_text"), Category: c.Query("category")}
		if c.Method() == fiber.MethodPost {
			f = Filter{Search: c.FormValue("search_text"), Category: c.FormValue("category")}
		}
		f = f.Normalize()

		ctx := c.UserContext()
		products, err := h.repo.List(ctx, f)
		if err != nil {
			return httpError(err)
		}
		categories, err := h.repo.DistinctCategories(ctx)
		if err != nil {
			return httpError(err)
		}

		selected := f.Category
		if selected == "" {
			selected = AllCategories
		}

		summary := Summarize(products)
		return c.Render("index", fiber.Map{
			"Title":      "Inventario",
			"Rows":       summary.Rows,
			"GrandTotal": summary.GrandTotal,
			"Categories": categories,
			"All":        AllCategories,
			"Selected":   selected,
			"Search":     f.Search,
		}, layout)
	}
}

// GET /add
func (h *Handler) NewProductFormHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.Render("add", fiber.Map{
			"Title":  "Agregar producto",
			"Action": "/add",
			"Form":   FormValues{},
		}, layout)
	}
}

// POST /add
func (h *Handler) CreateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		in, raw, err := parseSubmittedForm(c)
		data := fiber.Map{"Title": "Agregar producto", "Action": "/add", "Form": raw}
		if err != nil {
			return h.renderFormError(c, "add", data, "Error al agregar producto", err)
		}

		h.log.Debug("adding product", zap.Any("product", in))
		p, err := h.repo.Create(c.UserContext(), in)
		if err != nil {
			return h.renderFormError(c, "add", data, "Error al agregar producto", err)
		}

		h.log.Info("product created", zap.Uint("id", p.ID), zap.String("code", p.Code))
		return c.Redirect("/", fiber.StatusSeeOther)
	}
}

// GET /edit/:id
func (h *Handler) EditProductFormHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := h.loadProduct(c)
		if err != nil {
			return err
		}
		return c.Render("edit", fiber.Map{
			"Title":   "Editar producto",
			"Action":  fmt.Sprintf("/edit/%d", p.ID),
			"Product": p,
			"Form":    formValuesFromProduct(p),
		}, layout)
	}
}

// POST /edit/:id
func (h *Handler) UpdateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := h.loadProduct(c)
		if err != nil {
			return err
		}

		in, raw, err := parseSubmittedForm(c)
		data := fiber.Map{
			"Title":   "Editar producto",
			"Action":  fmt.Sprintf("/edit/%d", p.ID),
			"Product": p,
			"Form":    raw,
		}
		if err != nil {
			return h.renderFormError(c, "edit", data, "Error al actualizar producto", err)
		}

		if err := h.repo.Update(c.UserContext(), p.ID, in); err != nil {
			return h.renderFormError(c, "edit", data, "Error al actualizar producto", err)
		}

		h.log.Info("product updated", zap.Uint("id", p.ID))
		return c.Redirect("/", fiber.StatusSeeOther)
	}
}

// GET /delete/:id
func (h *Handler) DeleteProductFormHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := h.loadProduct(c)
		if err != nil {
			return err
		}
		return c.Render("delete", fiber.Map{
			"Title":   "Eliminar producto",
			"Product": p,
		}, layout)
	}
}

// POST /delete/:id
func (h *Handler) DeleteProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := h.loadProduct(c)
		if err != nil {
			return err
		}
		if err := h.repo.Delete(c.UserContext(), p.ID); err != nil {
			return httpError(err)
		}

		h.log.Info("product deleted", zap.Uint("id", p.ID))
		return c.Redirect("/", fiber.StatusSeeOther)
	}
}
