package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/assetdesk/console/internal/core/domain"
)

// InventoryHandler serves the bearer-protected views. Every call goes
// through the profile's intercepting client.
type InventoryHandler struct{}

func NewInventoryHandler() *InventoryHandler {
	return &InventoryHandler{}
}

// --- Request / Response types ---

// createAssetRequest and updateAssetRequest differ from domain.AssetInput
// only in tags and convert to it directly.
type createAssetRequest struct {
	Name           *string             `json:"name"           validate:"required,min=1"`
	Category       *int64              `json:"category"       validate:"required,gt=0"`
	Status         *domain.AssetStatus `json:"status"         validate:"required,oneof=AVAILABLE IN_USE MAINTENANCE RETIRED"`
	Department     *int64              `json:"department"     validate:"required,gt=0"`
	PurchaseDate   *string             `json:"purchase_date"  validate:"omitempty,datetime=2006-01-02"`
	Value          *float64            `json:"value"          validate:"omitempty,gte=0"`
	Specifications json.RawMessage     `json:"specifications" swaggertype:"object"`
	Location       *string             `json:"location"`
}

type updateAssetRequest struct {
	Name           *string             `json:"name"           validate:"omitempty,min=1"`
	Category       *int64              `json:"category"       validate:"omitempty,gt=0"`
	Status         *domain.AssetStatus `json:"status"         validate:"omitempty,oneof=AVAILABLE IN_USE MAINTENANCE RETIRED"`
	Department     *int64              `json:"department"     validate:"omitempty,gt=0"`
	PurchaseDate   *string             `json:"purchase_date"  validate:"omitempty,datetime=2006-01-02"`
	Value          *float64            `json:"value"          validate:"omitempty,gte=0"`
	Specifications json.RawMessage     `json:"specifications" swaggertype:"object"`
	Location       *string             `json:"location"`
}

type categoryRequest struct {
	Name        string `json:"name"        validate:"required"`
	Description string `json:"description"`
}

type assetsResponse struct {
	Assets      []domain.Asset      `json:"assets"`
	Count       int                 `json:"count"`
	Page        int                 `json:"page"`
	TotalPages  int                 `json:"totalPages"`
	Categories  []domain.Category   `json:"categories"`
	Departments []domain.Department `json:"departments"`
}

type pageResponse[T any] struct {
	Results    []T `json:"results"`
	Count      int `json:"count"`
	Page       int `json:"page"`
	TotalPages int `json:"totalPages"`
}

type dashboardResponse struct {
	User    *domain.User             `json:"user"`
	Metrics *domain.DashboardMetrics `json:"metrics"`
}

func newPageResponse[T any](p *domain.Page[T], page int) pageResponse[T] {
	results := p.Results
	if results == nil {
		results = []T{}
	}
	return pageResponse[T]{Results: results, Count: p.Count, Page: page, TotalPages: p.TotalPages()}
}

func queryPage(c echo.Context) int {
	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

// --- Views ---

// Dashboard handles GET /dashboard.
//
// @Summary      Dashboard metrics
// @Tags         views
// @Produce      json
// @Success      200  {object}  dashboardResponse
// @Success      303  "Not authenticated, redirected to /login"
// @Failure      502  {object}  ErrorBody
// @Router       /dashboard [get]
func (h *InventoryHandler) Dashboard(c echo.Context) error {
	p, err := ctxProfile(c)
	if err != nil {
		return err
	}
	m, err := p.Inventory.DashboardMetrics(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dashboardResponse{User: p.Session.Snapshot().User, Metrics: m})
}

// Reports handles GET /reports (managers and admins).
//
// @Summary      Reports
// @Tags         views
// @Produce      json
// @Success      200  {object}  domain.DashboardMetrics
// @Success      303  "Redirected to /login or /dashboard"
// @Router       /reports [get]
func (h *InventoryHandler) Reports(c echo.Context) error {
	p, err := ctxProfile(c)
	if err != nil {
		return err
	}
	m, err := p.Inventory.DashboardMetrics(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}

// ListAssets handles GET /assets. The asset page and both lookup tables are
// fetched concurrently.
//
// @Summary      List assets
// @Tags         assets
// @Produce      json
// @Param        page        query     int     false  "Page (1-based)"
// @Param        search      query     string  false  "Free-text search"
// @Param        status      query     string  false  "Status filter"
// @Param        category    query     string  false  "Category id"
// @Param        department  query     string  false  "Department id"
// @Success      200         {object}  assetsResponse
// @Router       /assets [get]
func (h *InventoryHandler) ListAssets(c echo.Context) error {
	p, err := ctxProfile(c)
	if err != nil {
		return err
	}
	filter := domain.AssetFilter{
		Page:       queryPage(c),
		Search:     c.QueryParam("search"),
		Status:     c.QueryParam("status"),
		Category:   c.QueryParam("category"),
		Department: c.QueryParam("department"),
	}

	var (
		assets      *domain.Page[domain.Asset]
		categories  []domain.Category
		departments []domain.Department
	)
	g, ctx := errgroup.WithContext(c.Request().Context())
	g.Go(func() (err error) {
		assets, err = p.Inventory.ListAssets(ctx, filter)
		return err
	})
	g.Go(func() (err error) {
		categories, err = p.Inventory.ListCategories(ctx)
		return err
	})
	g.Go(func() (err error) {
		departments, err = p.Inventory.ListDepartments(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	page := newPageResponse(assets, filter.Page)
	return c.JSON(http.StatusOK, assetsResponse{
		Assets:      page.Results,
		Count:       page.Count,
		Page:        page.Page,
		TotalPages:  page.TotalPages,
		Categories:  categories,
		Departments: departments,
	})
}

// GetAsset handles GET /assets/:id.
//
// @Summary      Get an asset
// @Tags         assets
// @Produce      json
// @Param        id   path      int  true  "Asset id"
// @Success      200  {object}  domain.Asset
// @Failure      404  {object}  ErrorBody
// @Router       /assets/{id} [get]
func (h *InventoryHandler) GetAsset(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	p, err := ctxProfile(c)
	if err != nil {
		return err
	}
	a, err := p.Inventory.GetAsset(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

// CreateAsset handles POST /assets.
//
// @Summary      Create an asset
// @Tags         assets
// @Accept       json
// @Produce      json
// @Param        body  body      createAssetRequest  true  "Asset"
// @Success      201   {object}  domain.Asset
// @Failure      400   {object}  ErrorBody
// @Router       /assets [post]
func (h *InventoryHandler) CreateAsset(c echo.Context) error {
	var req createAssetRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	p, err := ctxProfile(c)
	if err != nil {
		return err
	}
	a, err := p.Inventory.CreateAsset(c.Request().Context(), domain.AssetInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, a)
}

// UpdateAsset handles PATCH /assets/:id. Absent fields are left unchanged.
//
// @Summary      Update an asset
// @Tags         assets
// @Accept       json
// @Produce      json
// @Param        id    path      int                 true  "Asset id"
// @Param        body  body      updateAssetRequest  true  "Fields to change"
// @Success      200   {object}  domain.Asset
// @Failure      400   {object}  ErrorBody
// @Failure      404   {object}  ErrorBody
// @Router       /assets/{id} [patch]
func (h *InventoryHandler) UpdateAsset(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req updateAssetRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	p, err := ctxProfile(c)
	if err != nil {
		return err
	}
	a, err := p.Inventory.UpdateAsset(c.Request().Context(), id, domain.AssetInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

// DeleteAsset handles DELETE /assets/:id.
//
// @Summary      Delete an asset
// @Tags         assets
// @Param        id   path  int  true  "Asset id"
// @Success      204
// @Failure      404  {object}  ErrorBody
// @Router       /assets/{id} [delete]
func (h *InventoryHandler) DeleteAsset(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	p, err := ctxProfile(c)
	if err != nil {
		return err
	}
	if err := p.Inventory.DeleteAsset(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ListCategories handles GET /categories.
//
// @Summary      List categories
// @Tags         categories
// @Produce      json
// @Success      200  {array}  domain.Category
// @Router       /categories [get]
func (h *InventoryHandler) ListCategories(c echo.Context) error {
	p, err := ctxProfile(c)
	if err != nil {
		return err
	}
	cats, err := p.Inventory.ListCategories(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cats)
}

// CreateCategory handles POST /categories.
//
// @Summary      Create a category
// @Tags         categories
// @Accept       json
// @Produce      json
// @Param        body  body      categoryRequest  true  "Category"
// @Success      201   {object}  domain.Category
// @Failure      400   {object}  ErrorBody
// @Router       /categories [post]
func (h *InventoryHandler) CreateCategory(c echo.Context) error {
	var req categoryRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	p, err := ctxProfile(c)
	if err != nil {
		return err
	}
	cat, err := p.Inventory.CreateCategory(c.Request().Context(), domain.CategoryInput{Name: req.Name, Description: req.Description})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, cat)
}

// UpdateCategory handles PATCH /categories/:id.
//
// @Summary      Update a category
// @Tags         categories
// @Accept       json
// @Produce      json
// @Param        id    path      int              true  "Category id"
// @Param        body  body      categoryRequest  true  "Category"
// @Success      200   {object}  domain.Category
// @Failure      400   {object}  ErrorBody
// @Router       /categories/{id} [patch]
func (h *InventoryHandler) UpdateCategory(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req categoryRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	p, err := ctxProfile(c)
	if err != nil {
		return err
	}
	cat, err := p.Inventory.UpdateCategory(c.Request().Context(), id, domain.CategoryInput{Name: req.Name, Description: req.Description})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cat)
}

// DeleteCategory handles DELETE /categories/:id.
//
// @Summary      Delete a category
// @Tags         categories
// @Param        id   path  int  true  "Category id"
// @Success      204
// @Router       /categories/{id} [delete]
func (h *InventoryHandler) DeleteCategory(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	p, err := ctxProfile(c)
	if err != nil {
		return err
	}
	if err := p.Inventory.DeleteCategory(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ListDepartments handles GET /departments.
//
// @Summary      List departments
// @Tags         departments
// @Produce      json
// @Success      200  {array}  domain.Department
// @Router       /departments [get]
func (h *InventoryHandler) ListDepartments(c echo.Context) error {
	p, err := ctxProfile(c)
	if err != nil {
		return err
	}
	deps, err := p.Inventory.ListDepartments(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, deps)
}

// ListRequests handles GET /requests.
//
// @Summary      List asset requests
// @Tags         requests
// @Produce      json
// @Param        page  query     int  false  "Page (1-based)"
// @Success      200   {object}  pageResponse[domain.AssetRequest]
// @Router       /requests [get]
func (h *InventoryHandler) ListRequests(c echo.Context) error {
	p, err := ctxProfile(c)
	if err != nil {
		return err
	}
	page := queryPage(c)
	reqs, err := p.Inventory.ListRequests(c.Request().Context(), page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newPageResponse(reqs, page))
}

// ListUsers handles GET /users (admins only).
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Param        page  query     int  false  "Page (1-based)"
// @Success      200   {object}  pageResponse[domain.User]
// @Success      303   "Redirected to /login or /dashboard"
// @Router       /users [get]
func (h *InventoryHandler) ListUsers(c echo.Context) error {
	p, err := ctxProfile(c)
	if err != nil {
		return err
	}
	page := queryPage(c)
	users, err := p.Inventory.ListUsers(c.Request().Context(), page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newPageResponse(users, page))
}
