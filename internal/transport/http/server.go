package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	"catalog_admin/internal/config"
	"catalog_admin/internal/domain/models"
	"catalog_admin/internal/imagehost"
	"catalog_admin/internal/lib/logger/sl"
	"catalog_admin/internal/lib/slug"
	"catalog_admin/internal/notice"
	"catalog_admin/internal/services/imaging"
	"catalog_admin/internal/services/listing"
	sessionsvc "catalog_admin/internal/services/session"
	"catalog_admin/internal/services/wizard"
	"catalog_admin/internal/transport/http/dto/request"
	"catalog_admin/internal/transport/http/dto/response"
	"catalog_admin/internal/upstream"
)

type Routers struct {
	log      *slog.Logger
	cfg      *config.Config
	sessions *sessionsvc.Service
	registry *Registry
	host     imagehost.Host
	uploads  imaging.Validator
}

func NewRouter(log *slog.Logger, cfg *config.Config, sessions *sessionsvc.Service, registry *Registry, host imagehost.Host) *Routers {
	return &Routers{
		log:      log,
		cfg:      cfg,
		sessions: sessions,
		registry: registry,
		host:     host,
		uploads:  imaging.Validator{MaxSize: cfg.Uploads.MaxSize},
	}
}

const (
	ctxWorkspace = "workspace"
	ctxSID       = "sid"
)

func (r *Routers) anonClient() *upstream.Client {
	return upstream.New(r.log, r.cfg.Upstream.BaseURL, r.cfg.Upstream.Timeout, upstream.StaticToken(""))
}

// buildWorkspace assembles the per-session object graph. The unauthorized
// hook fires inside controller/wizard locks, so the registry drop happens on
// a separate goroutine; closing a controller takes its own mutex.
func (r *Routers) buildWorkspace(sid, token string, user models.User) *Workspace {
	center := notice.NewCenter()
	client := upstream.New(r.log, r.cfg.Upstream.BaseURL, r.cfg.Upstream.Timeout, upstream.StaticToken(token))

	onAuth := func() {
		center.Error(sessionsvc.MsgExpired)
		if err := r.sessions.End(context.Background(), sid); err != nil {
			r.log.Warn("failed to end session", sl.Err(err))
		}
		go r.registry.Drop(sid)
	}

	ws := &Workspace{
		SID:     sid,
		User:    user,
		Notices: center,
		Client:  client,
	}

	ws.Products = listing.NewController(listing.Config[models.Product]{
		Log:            r.log,
		Source:         source[models.Product]{api: client.Products()},
		Notices:        center,
		Resource:       "product",
		Columns:        productColumns(),
		ID:             func(p models.Product) string { return p.ID },
		Label:          func(p models.Product) string { return p.Title },
		PageSize:       r.cfg.Listing.PageSize,
		SearchDebounce: r.cfg.Listing.SearchDebounce,
		OnUnauthorized: onAuth,
	})
	ws.Categories = listing.NewController(listing.Config[models.Category]{
		Log:            r.log,
		Source:         source[models.Category]{api: client.Categories()},
		Notices:        center,
		Resource:       "category",
		Columns:        categoryColumns(),
		ID:             func(c models.Category) string { return c.ID },
		Label:          func(c models.Category) string { return c.Name },
		PageSize:       r.cfg.Listing.PageSize,
		SearchDebounce: r.cfg.Listing.SearchDebounce,
		OnUnauthorized: onAuth,
	})
	ws.Tags = listing.NewController(listing.Config[models.Tag]{
		Log:            r.log,
		Source:         source[models.Tag]{api: client.Tags()},
		Notices:        center,
		Resource:       "tag",
		Columns:        tagColumns(),
		ID:             func(t models.Tag) string { return t.ID },
		Label:          func(t models.Tag) string { return t.Name },
		PageSize:       r.cfg.Listing.PageSize,
		SearchDebounce: r.cfg.Listing.SearchDebounce,
		OnUnauthorized: onAuth,
	})
	ws.Wizard = wizard.New(wizard.Config{
		Log:            r.log,
		Store:          client.Products(),
		Host:           r.host,
		Notices:        center,
		Folder:         r.cfg.Images.Folder,
		OnUnauthorized: onAuth,
	})

	return ws
}

// RequireSession resolves the cookie to a live session and workspace. A
// missing or expired session answers 401 uniformly. The workspace is rebuilt
// on demand so a restarted replica keeps serving redis-backed sessions.
func (r *Routers) RequireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess, err := session.Get(r.cfg.Session.CookieName, c)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, response.ErrSessionExpired)
		}

		sid, _ := sess.Values["sid"].(string)
		if sid == "" {
			return c.JSON(http.StatusUnauthorized, response.ErrSessionExpired)
		}

		stored, err := r.sessions.Current(c.Request().Context(), sid)
		if err != nil {
			r.registry.Drop(sid)
			return c.JSON(http.StatusUnauthorized, response.ErrSessionExpired)
		}

		ws, ok := r.registry.Get(sid)
		if !ok {
			ws = r.buildWorkspace(sid, stored.Token, stored.User)
			r.registry.Put(sid, ws)
		}

		c.Set(ctxWorkspace, ws)
		c.Set(ctxSID, sid)

		return next(c)
	}
}

func workspaceFrom(c echo.Context) *Workspace {
	return c.Get(ctxWorkspace).(*Workspace)
}

// upstreamErr maps an upstream failure onto the HTTP reply. A 401 clears
// the caller's session on the spot.
func (r *Routers) upstreamErr(c echo.Context, err error, fallback string) error {
	if upstream.IsUnauthorized(err) {
		if sid, ok := c.Get(ctxSID).(string); ok {
			if err := r.sessions.End(c.Request().Context(), sid); err != nil {
				r.log.Warn("failed to end session", sl.Err(err))
			}
			r.registry.Drop(sid)
		}
		return c.JSON(http.StatusUnauthorized, response.ErrSessionExpired)
	}

	f := upstream.Normalize(err, fallback)
	status := f.Status
	if status < http.StatusBadRequest {
		status = http.StatusBadGateway
	}
	return c.JSON(status, response.ErrorResponseWithDetails("upstream_error", f.Message))
}

func (r *Routers) Login(c echo.Context) error {
	const op = "http.routers.Login"

	log := r.log.With(slog.String("op", op))

	var req request.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}
	if err := c.Validate(req); err != nil {
		log.Warn("invalid login request", slog.String("email", req.Email))
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	token, user, err := r.anonClient().Auth().Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		log.Warn("login rejected", slog.String("email", req.Email), sl.Err(err))
		f := upstream.Normalize(err, "")
		return c.JSON(http.StatusUnauthorized, response.ErrorResponseWithDetails("authentication_failed", f.Message))
	}

	sid := uuid.NewString()
	if err := r.sessions.Begin(c.Request().Context(), sid, token, user); err != nil {
		log.Error("failed to persist session", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponseWithDetails("internal_error", "Internal server error"))
	}

	sess, err := session.Get(r.cfg.Session.CookieName, c)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, response.ErrorResponseWithDetails("internal_error", "Internal server error"))
	}
	sess.Options.Path = "/"
	sess.Options.HttpOnly = true
	sess.Options.MaxAge = int(r.cfg.Session.TTL.Seconds())
	// the store default is Secure + SameSite=None, which browsers drop
	// over the plain-http deployments local and dev run on
	sess.Options.Secure = r.cfg.Env == "prod"
	sess.Options.SameSite = http.SameSiteLaxMode
	sess.Values["sid"] = sid
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return c.JSON(http.StatusInternalServerError, response.ErrorResponseWithDetails("internal_error", "Internal server error"))
	}

	r.registry.Put(sid, r.buildWorkspace(sid, token, user))

	log.Info("admin signed in", slog.String("user_id", user.ID))

	return c.JSON(http.StatusOK, response.SuccessResponse(user))
}

func (r *Routers) Logout(c echo.Context) error {
	const op = "http.routers.Logout"

	sid := c.Get(ctxSID).(string)
	if err := r.sessions.End(c.Request().Context(), sid); err != nil {
		r.log.Warn("logout cleanup failed", slog.String("op", op), sl.Err(err))
	}
	r.registry.Drop(sid)

	sess, err := session.Get(r.cfg.Session.CookieName, c)
	if err == nil {
		sess.Options.MaxAge = -1
		if err := sess.Save(c.Request(), c.Response()); err != nil {
			r.log.Warn("failed to clear cookie", slog.String("op", op), sl.Err(err))
		}
	}

	return c.JSON(http.StatusOK, response.Response{Status: "success", Message: "Logged out"})
}

// Me revalidates the stored token against the upstream and returns the
// current admin profile.
func (r *Routers) Me(c echo.Context) error {
	ws := workspaceFrom(c)

	user, err := ws.Client.Auth().Me(c.Request().Context())
	if err != nil {
		return r.upstreamErr(c, err, "")
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(user))
}

// Notices drains the session's pending notices in FIFO order.
func (r *Routers) Notices(c echo.Context) error {
	ws := workspaceFrom(c)

	return c.JSON(http.StatusOK, response.SuccessResponse(ws.Notices.Drain()))
}

func (r *Routers) resolveView(c echo.Context) (listView, error) {
	ws := workspaceFrom(c)
	v, ok := ws.View(c.Param("resource"))
	if !ok {
		return nil, c.JSON(http.StatusNotFound, response.ErrUnknownResource)
	}
	return v, nil
}

// View runs the initial load and returns the table snapshot.
func (r *Routers) View(c echo.Context) error {
	v, err := r.resolveView(c)
	if v == nil {
		return err
	}

	v.Load(c.Request().Context())

	return c.JSON(http.StatusOK, response.SuccessResponse(v.StateJSON()))
}

func (r *Routers) SortView(c echo.Context) error {
	v, err := r.resolveView(c)
	if v == nil {
		return err
	}

	var req request.SortRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	v.ToggleSort(c.Request().Context(), req.Key)

	return c.JSON(http.StatusOK, response.SuccessResponse(v.StateJSON()))
}

func (r *Routers) PageView(c echo.Context) error {
	v, err := r.resolveView(c)
	if v == nil {
		return err
	}

	var req request.PageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	ctx := c.Request().Context()
	if req.PageSize > 0 {
		v.SetPageSize(ctx, req.PageSize)
	} else {
		v.SetPage(ctx, req.Page)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(v.StateJSON()))
}

// SearchView feeds the raw input into the debounced search. The reply is
// the pre-settle snapshot; the caller polls the view once the term settles.
func (r *Routers) SearchView(c echo.Context) error {
	v, err := r.resolveView(c)
	if v == nil {
		return err
	}

	var req request.SearchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	v.SetSearch(strings.TrimSpace(req.Term))

	return c.JSON(http.StatusOK, response.SuccessResponse(v.StateJSON()))
}

func (r *Routers) OpenDelete(c echo.Context) error {
	v, err := r.resolveView(c)
	if v == nil {
		return err
	}

	var req request.DeleteOpenRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	if !v.OpenDeleteByID(req.ID) {
		return c.JSON(http.StatusNotFound, response.ErrorResponseWithDetails("unknown_row", "Row is not on the current page"))
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(v.StateJSON()))
}

func (r *Routers) CancelDelete(c echo.Context) error {
	v, err := r.resolveView(c)
	if v == nil {
		return err
	}

	v.CancelDelete()

	return c.JSON(http.StatusOK, response.SuccessResponse(v.StateJSON()))
}

func (r *Routers) ConfirmDelete(c echo.Context) error {
	v, err := r.resolveView(c)
	if v == nil {
		return err
	}

	v.ConfirmDelete(c.Request().Context())

	return c.JSON(http.StatusOK, response.SuccessResponse(v.StateJSON()))
}

func (r *Routers) CreateTag(c echo.Context) error {
	return r.saveTag(c, "")
}

func (r *Routers) UpdateTag(c echo.Context) error {
	return r.saveTag(c, c.Param("id"))
}

func (r *Routers) saveTag(c echo.Context, id string) error {
	ws := workspaceFrom(c)

	var form request.TagForm
	if err := c.Bind(&form); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}
	if err := c.Validate(form); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	// blank value derives from the name, explicit ones must be well-formed
	if form.Value == "" {
		form.Value = slug.Generate(form.Name)
	} else if !slug.Valid(form.Value) {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", "Value may contain lowercase letters, digits and hyphens only"))
	}

	payload := upstream.TagPayload{
		Name:     form.Name,
		Desc:     form.Desc,
		Value:    form.Value,
		IsActive: form.IsActive,
	}

	var (
		tag models.Tag
		msg string
		err error
	)
	if id == "" {
		tag, msg, err = ws.Client.Tags().Create(c.Request().Context(), payload)
	} else {
		tag, msg, err = ws.Client.Tags().Update(c.Request().Context(), id, payload)
	}
	if err != nil {
		return r.upstreamErr(c, err, "Failed to save tag. Please try again.")
	}

	return c.JSON(http.StatusOK, response.Response{Status: "success", Data: tag, Message: msg})
}

func (r *Routers) CreateCategory(c echo.Context) error {
	return r.saveCategory(c, "")
}

func (r *Routers) UpdateCategory(c echo.Context) error {
	return r.saveCategory(c, c.Param("id"))
}

func (r *Routers) saveCategory(c echo.Context, id string) error {
	ws := workspaceFrom(c)

	var form request.CategoryForm
	if err := c.Bind(&form); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}
	if err := c.Validate(form); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	// blank slug derives from the name, explicit ones must be well-formed
	if form.Slug == "" {
		form.Slug = slug.Generate(form.Name)
	} else if !slug.Valid(form.Slug) {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", "Slug may contain lowercase letters, digits and hyphens only"))
	}

	payload := upstream.CategoryPayload{
		Name:      form.Name,
		Desc:      form.Desc,
		Slug:      form.Slug,
		SortOrder: form.SortOrder,
		IsActive:  form.IsActive,
	}

	var (
		category models.Category
		msg      string
		err      error
	)
	if id == "" {
		category, msg, err = ws.Client.Categories().Create(c.Request().Context(), payload)
	} else {
		category, msg, err = ws.Client.Categories().Update(c.Request().Context(), id, payload)
	}
	if err != nil {
		return r.upstreamErr(c, err, "Failed to save category. Please try again.")
	}

	return c.JSON(http.StatusOK, response.Response{Status: "success", Data: category, Message: msg})
}

func (r *Routers) CategoryOptions(c echo.Context) error {
	ws := workspaceFrom(c)

	options, err := ws.Client.Categories().Options(c.Request().Context())
	if err != nil {
		return r.upstreamErr(c, err, "Failed to load categories. Please try again.")
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(options))
}

func (r *Routers) TagOptions(c echo.Context) error {
	ws := workspaceFrom(c)

	options, err := ws.Client.Tags().Options(c.Request().Context())
	if err != nil {
		return r.upstreamErr(c, err, "Failed to load tags. Please try again.")
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(options))
}

func (r *Routers) WizardState(c echo.Context) error {
	ws := workspaceFrom(c)

	return c.JSON(http.StatusOK, response.SuccessResponse(ws.Wizard.Snapshot()))
}

func (r *Routers) WizardStart(c echo.Context) error {
	ws := workspaceFrom(c)

	var req request.WizardStartRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if req.ID == "" {
		ws.Wizard.StartCreate()
		return c.JSON(http.StatusOK, response.SuccessResponse(ws.Wizard.Snapshot()))
	}

	if err := ws.Wizard.StartEdit(c.Request().Context(), req.ID); err != nil {
		return r.upstreamErr(c, err, "Failed to load product. Please try again.")
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(ws.Wizard.Snapshot()))
}

func (r *Routers) WizardBasic(c echo.Context) error {
	const op = "http.routers.WizardBasic"

	ws := workspaceFrom(c)

	form, err := r.parseBasicForm(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	msg, err := ws.Wizard.SubmitBasic(c.Request().Context(), *form)
	if err != nil {
		switch {
		case errors.Is(err, wizard.ErrMainImageRequired):
			return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("main_image_required", "Please upload a main product image before proceeding."))
		case isValidationErr(err):
			return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
		}
		r.log.Error("basic step failed", slog.String("op", op), sl.Err(err))
		return r.upstreamErr(c, err, "Failed to save product. Please try again.")
	}

	return c.JSON(http.StatusOK, response.Response{Status: "success", Data: ws.Wizard.Snapshot(), Message: msg})
}

func (r *Routers) WizardVariantUpload(c echo.Context) error {
	ws := workspaceFrom(c)

	variant := models.Variant(c.Param("variant"))
	if !variant.Valid() {
		return c.JSON(http.StatusNotFound, response.ErrUnknownVariant)
	}

	asset, err := r.formAsset(c, "image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}
	if asset == nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", "Image file is required"))
	}

	img, err := ws.Wizard.AddVariantImage(c.Request().Context(), variant, *asset)
	if err != nil {
		switch {
		case errors.Is(err, wizard.ErrStepLocked):
			return c.JSON(http.StatusConflict, response.ErrWizardLocked)
		case errors.Is(err, wizard.ErrTooManyImages):
			return c.JSON(http.StatusUnprocessableEntity, response.ErrorResponseWithDetails("too_many_images", "You can only upload a maximum of 6 images per variant."))
		}
		return r.upstreamErr(c, err, "Failed to upload image. Please try again.")
	}

	return c.JSON(http.StatusOK, response.Response{Status: "success", Data: img})
}

func (r *Routers) WizardVariantRemove(c echo.Context) error {
	ws := workspaceFrom(c)

	variant := models.Variant(c.Param("variant"))
	if !variant.Valid() {
		return c.JSON(http.StatusNotFound, response.ErrUnknownVariant)
	}

	var ref request.ImageRef
	if err := c.Bind(&ref); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}
	if err := c.Validate(ref); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	if err := ws.Wizard.RemoveVariantImage(c.Request().Context(), variant, ref.PublicID); err != nil {
		switch {
		case errors.Is(err, wizard.ErrStepLocked):
			return c.JSON(http.StatusConflict, response.ErrWizardLocked)
		case errors.Is(err, wizard.ErrUnknownImage):
			return c.JSON(http.StatusNotFound, response.ErrorResponseWithDetails("unknown_image", "No such image in this variant"))
		}
		return r.upstreamErr(c, err, "Failed to delete image. Please try again.")
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(ws.Wizard.Snapshot()))
}

func (r *Routers) WizardVariantPrimary(c echo.Context) error {
	ws := workspaceFrom(c)

	variant := models.Variant(c.Param("variant"))
	if !variant.Valid() {
		return c.JSON(http.StatusNotFound, response.ErrUnknownVariant)
	}

	var ref request.ImageRef
	if err := c.Bind(&ref); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}
	if err := c.Validate(ref); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	if err := ws.Wizard.SetPrimary(variant, ref.PublicID); err != nil {
		switch {
		case errors.Is(err, wizard.ErrStepLocked):
			return c.JSON(http.StatusConflict, response.ErrWizardLocked)
		case errors.Is(err, wizard.ErrUnknownImage):
			return c.JSON(http.StatusNotFound, response.ErrorResponseWithDetails("unknown_image", "No such image in this variant"))
		}
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(ws.Wizard.Snapshot()))
}

func (r *Routers) WizardSubmit(c echo.Context) error {
	ws := workspaceFrom(c)

	msg, err := ws.Wizard.SubmitVariants(c.Request().Context())
	if err != nil {
		if errors.Is(err, wizard.ErrStepLocked) {
			return c.JSON(http.StatusConflict, response.ErrWizardLocked)
		}
		return r.upstreamErr(c, err, "Failed to save product. Please try again.")
	}

	return c.JSON(http.StatusOK, response.Response{Status: "success", Data: ws.Wizard.Snapshot(), Message: msg})
}

func (r *Routers) WizardBack(c echo.Context) error {
	ws := workspaceFrom(c)

	ws.Wizard.Back()

	return c.JSON(http.StatusOK, response.SuccessResponse(ws.Wizard.Snapshot()))
}

func (r *Routers) WizardReset(c echo.Context) error {
	ws := workspaceFrom(c)

	ws.Wizard.Reset()

	return c.JSON(http.StatusOK, response.SuccessResponse(ws.Wizard.Snapshot()))
}

// parseBasicForm reads the multipart step-1 form. Tags arrive as a JSON
// array in a single field, matching the upstream encoding.
func (r *Routers) parseBasicForm(c echo.Context) (*wizard.BasicForm, error) {
	price, err := strconv.ParseFloat(c.FormValue("price"), 64)
	if err != nil {
		return nil, fmt.Errorf("price must be a number")
	}

	discount := 0.0
	if raw := c.FormValue("discount"); raw != "" {
		discount, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("discount must be a number")
		}
	}

	var tags []string
	if raw := c.FormValue("tags"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &tags); err != nil {
			return nil, fmt.Errorf("tags must be a JSON array of strings")
		}
	}

	isActive, _ := strconv.ParseBool(c.FormValue("isActive"))

	form := &wizard.BasicForm{
		Title:          strings.TrimSpace(c.FormValue("title")),
		Desc:           strings.TrimSpace(c.FormValue("desc")),
		Price:          price,
		Discount:       discount,
		Category:       c.FormValue("category"),
		DefaultVariant: models.Variant(c.FormValue("defaultVariant")),
		Tags:           tags,
		IsActive:       isActive,
	}

	asset, err := r.formAsset(c, "image")
	if err != nil {
		return nil, err
	}
	if asset != nil {
		form.Image = &upstream.FileUpload{
			FieldName:   "image",
			Filename:    asset.Filename,
			ContentType: asset.ContentType,
			Data:        asset.Data,
		}
	}

	return form, nil
}

// formAsset extracts and validates an uploaded image, applying the crop
// rectangle when the form carries one. Returns nil when the field is absent.
func (r *Routers) formAsset(c echo.Context, field string) (*imaging.Asset, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, fmt.Errorf("unreadable upload: %w", err)
	}

	contentType := fh.Header.Get("Content-Type")
	if err := r.uploads.ValidateUpload(contentType, fh.Size); err != nil {
		return nil, err
	}

	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("unreadable upload: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("unreadable upload: %w", err)
	}

	sel, displayW, displayH, hasCrop, err := parseCrop(c)
	if err != nil {
		return nil, err
	}
	if !hasCrop {
		return &imaging.Asset{
			Filename:    path.Base(fh.Filename),
			ContentType: contentType,
			Data:        data,
		}, nil
	}

	img, _, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	asset, err := imaging.Crop(img, sel, displayW, displayH)
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

// parseCrop reads the optional crop rectangle and the displayed dimensions
// it is expressed against.
func parseCrop(c echo.Context) (imaging.Rect, int, int, bool, error) {
	if c.FormValue("crop_width") == "" {
		return imaging.Rect{}, 0, 0, false, nil
	}

	floats := map[string]float64{}
	for _, key := range []string{"crop_x", "crop_y", "crop_width", "crop_height"} {
		v, err := strconv.ParseFloat(c.FormValue(key), 64)
		if err != nil {
			return imaging.Rect{}, 0, 0, false, fmt.Errorf("%s must be a number", key)
		}
		floats[key] = v
	}

	displayW, err := strconv.Atoi(c.FormValue("display_width"))
	if err != nil {
		return imaging.Rect{}, 0, 0, false, fmt.Errorf("display_width must be an integer")
	}
	displayH, err := strconv.Atoi(c.FormValue("display_height"))
	if err != nil {
		return imaging.Rect{}, 0, 0, false, fmt.Errorf("display_height must be an integer")
	}

	sel := imaging.Rect{
		X:      floats["crop_x"],
		Y:      floats["crop_y"],
		Width:  floats["crop_width"],
		Height: floats["crop_height"],
	}
	return sel, displayW, displayH, true, nil
}

func isValidationErr(err error) bool {
	var verr validator.ValidationErrors
	return errors.As(err, &verr)
}
