// Package wizard drives the two-step product form: step one is the basic
// product record, step two manages per-variant image collections. The second
// step stays locked until the product exists upstream, so variant uploads
// always have a product ID and SKU to attach to.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-playground/validator/v10"

	"catalog_admin/internal/domain/models"
	"catalog_admin/internal/imagehost"
	"catalog_admin/internal/lib/logger/sl"
	"catalog_admin/internal/notice"
	"catalog_admin/internal/services/imaging"
	"catalog_admin/internal/upstream"
)

var (
	ErrStepLocked        = errors.New("wizard: variant step requires a saved product")
	ErrMainImageRequired = errors.New("wizard: main image required")
	ErrTooManyImages     = errors.New("wizard: variant image limit reached")
	ErrUnknownImage      = errors.New("wizard: image not in collection")
	ErrInvalidVariant    = errors.New("wizard: unknown variant")
)

const (
	msgMainImageRequired = "Please upload a main product image before proceeding."
	msgTooManyImages     = "You can only upload a maximum of 6 images per variant."

	msgLoadFailed   = "Failed to load product. Please try again."
	msgSaveFailed   = "Failed to save product. Please try again."
	msgUploadFailed = "Failed to upload image. Please try again."

	msgSaved = "Product saved successfully."
)

type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

type Step int

const (
	StepBasic    Step = 1
	StepVariants Step = 2
)

// ProductStore is the slice of the upstream API the wizard talks to.
// *upstream.ProductsClient satisfies it.
type ProductStore interface {
	Get(ctx context.Context, id string) (models.Product, error)
	Create(ctx context.Context, payload upstream.ProductPayload) (models.Product, string, error)
	Update(ctx context.Context, id string, payload upstream.ProductPayload) (models.Product, string, error)
	UpdateVariants(ctx context.Context, id string, variants map[models.Variant]models.VariantImageSet) (string, error)
}

// BasicForm carries the step-1 fields. Image is required on create and
// optional on edit, enforced in SubmitBasic rather than by tag.
type BasicForm struct {
	Title          string         `validate:"required"`
	Desc           string         `validate:"required"`
	Price          float64        `validate:"required,gt=0"`
	Discount       float64        `validate:"gte=0,ltefield=Price"`
	Category       string         `validate:"required"`
	DefaultVariant models.Variant `validate:"required"`
	Tags           []string
	IsActive       bool
	Image          *upstream.FileUpload
}

type Config struct {
	Log     *slog.Logger
	Store   ProductStore
	Host    imagehost.Host
	Notices notice.Notifier
	// Folder is the root folder on the image host, e.g. "the-monk".
	Folder string
	// OnUnauthorized fires instead of an error notice when the upstream
	// rejects the session token.
	OnUnauthorized func()
}

// Wizard is one admin's in-progress product form. Not shared between
// sessions; the mutex guards against concurrent requests from the same
// session (double-click submits, parallel uploads).
type Wizard struct {
	log      *slog.Logger
	store    ProductStore
	host     imagehost.Host
	notices  notice.Notifier
	folder   string
	onAuth   func()
	validate *validator.Validate

	mu        sync.Mutex
	mode      Mode
	step      Step
	entityID  string
	sku       string
	product   models.Product
	variants  map[models.Variant]models.VariantImageSet
	lastSaved map[models.Variant]models.VariantImageSet
}

func New(cfg Config) *Wizard {
	w := &Wizard{
		log:      cfg.Log,
		store:    cfg.Store,
		host:     cfg.Host,
		notices:  cfg.Notices,
		folder:   cfg.Folder,
		onAuth:   cfg.OnUnauthorized,
		validate: validator.New(),
	}
	w.resetLocked(ModeCreate)

	return w
}

func (w *Wizard) resetLocked(mode Mode) {
	w.mode = mode
	w.step = StepBasic
	w.entityID = ""
	w.sku = ""
	w.product = models.Product{}
	w.variants = models.NewVariantImages()
	w.lastSaved = models.CloneVariantImages(w.variants)
}

// StartCreate discards any in-progress state and opens a blank create form.
func (w *Wizard) StartCreate() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.resetLocked(ModeCreate)
}

// StartEdit loads an existing product into the form. Both steps are
// available immediately since the product already exists upstream.
func (w *Wizard) StartEdit(ctx context.Context, id string) error {
	const op = "wizard.StartEdit"

	w.mu.Lock()
	defer w.mu.Unlock()

	product, err := w.store.Get(ctx, id)
	if err != nil {
		w.fail(op, err, msgLoadFailed)
		return fmt.Errorf("%s: %w", op, err)
	}

	w.resetLocked(ModeEdit)
	w.adoptLocked(product)

	return nil
}

// adoptLocked installs an upstream product record as the wizard's state.
func (w *Wizard) adoptLocked(product models.Product) {
	w.entityID = product.ID
	w.sku = product.SkuID
	w.product = product
	w.variants = models.NewVariantImages()
	for v, set := range product.Variants {
		if v.Valid() {
			w.variants[v] = set
		}
	}
	w.lastSaved = models.CloneVariantImages(w.variants)
}

// SubmitBasic validates and persists the step-1 form, then advances to the
// variants step. On create the main image is mandatory; a create that
// succeeds upstream switches the wizard into edit mode on the new record.
func (w *Wizard) SubmitBasic(ctx context.Context, form BasicForm) (string, error) {
	const op = "wizard.SubmitBasic"

	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.validate.Struct(form); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if !form.DefaultVariant.Valid() {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidVariant)
	}
	if w.entityID == "" && form.Image == nil {
		w.notices.Error(msgMainImageRequired)
		return "", fmt.Errorf("%s: %w", op, ErrMainImageRequired)
	}

	payload := upstream.ProductPayload{
		Title:          form.Title,
		Desc:           form.Desc,
		Price:          form.Price,
		Discount:       form.Discount,
		Category:       form.Category,
		DefaultVariant: form.DefaultVariant,
		Tags:           form.Tags,
		IsActive:       form.IsActive,
		Image:          form.Image,
	}

	var (
		product models.Product
		msg     string
		err     error
	)
	if w.entityID == "" {
		product, msg, err = w.store.Create(ctx, payload)
	} else {
		product, msg, err = w.store.Update(ctx, w.entityID, payload)
	}
	if err != nil {
		w.fail(op, err, msgSaveFailed)
		return "", fmt.Errorf("%s: %w", op, err)
	}

	created := w.entityID == ""
	if created {
		w.mode = ModeEdit
		w.adoptLocked(product)
	} else {
		w.product = product
		if product.SkuID != "" {
			w.sku = product.SkuID
		}
	}
	w.step = StepVariants

	if msg == "" {
		msg = msgSaved
	}
	w.notices.Success(msg)

	return msg, nil
}

// AddVariantImage uploads a cropped asset to the host and appends it to the
// variant's collection. The size cap is checked before any bytes leave the
// server. The first image of a variant becomes its primary.
func (w *Wizard) AddVariantImage(ctx context.Context, variant models.Variant, asset imaging.Asset) (models.VariantImage, error) {
	const op = "wizard.AddVariantImage"

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.entityID == "" {
		return models.VariantImage{}, fmt.Errorf("%s: %w", op, ErrStepLocked)
	}
	if !variant.Valid() {
		return models.VariantImage{}, fmt.Errorf("%s: %w", op, ErrInvalidVariant)
	}

	set := w.variants[variant]
	if len(set.Images) >= models.MaxImagesPerVariant {
		w.notices.Error(msgTooManyImages)
		return models.VariantImage{}, fmt.Errorf("%s: %w", op, ErrTooManyImages)
	}

	folder := fmt.Sprintf("%s/products/%s/variants/%s", w.folder, w.sku, variant)
	hosted, err := w.host.Upload(ctx, asset.Data, asset.Filename, folder)
	if err != nil {
		w.fail(op, err, msgUploadFailed)
		return models.VariantImage{}, fmt.Errorf("%s: %w", op, err)
	}

	img := models.VariantImage{
		URL:         hosted.URL,
		PublicID:    hosted.PublicID,
		Alt:         hosted.Alt,
		DeleteToken: hosted.DeleteToken,
		Width:       hosted.Width,
		Height:      hosted.Height,
		Format:      hosted.Format,
	}
	set.Add(img)
	w.variants[variant] = set

	return img, nil
}

// RemoveVariantImage drops an image from the collection and deletes the
// hosted asset best effort. A removed primary promotes the first remaining
// image.
func (w *Wizard) RemoveVariantImage(ctx context.Context, variant models.Variant, publicID string) error {
	const op = "wizard.RemoveVariantImage"

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.entityID == "" {
		return fmt.Errorf("%s: %w", op, ErrStepLocked)
	}
	if !variant.Valid() {
		return fmt.Errorf("%s: %w", op, ErrInvalidVariant)
	}

	set := w.variants[variant]
	removed, ok := set.Remove(publicID)
	if !ok {
		return fmt.Errorf("%s: %w", op, ErrUnknownImage)
	}
	w.variants[variant] = set

	if err := w.host.Delete(ctx, removed.PublicID); err != nil {
		w.log.Warn("orphaned hosted image", slog.String("op", op),
			slog.String("public_id", removed.PublicID), sl.Err(err))
	}

	return nil
}

// SetPrimary marks an existing image as the variant's primary.
func (w *Wizard) SetPrimary(variant models.Variant, publicID string) error {
	const op = "wizard.SetPrimary"

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.entityID == "" {
		return fmt.Errorf("%s: %w", op, ErrStepLocked)
	}
	if !variant.Valid() {
		return fmt.Errorf("%s: %w", op, ErrInvalidVariant)
	}

	set := w.variants[variant]
	if !set.SetPrimary(publicID) {
		return fmt.Errorf("%s: %w", op, ErrUnknownImage)
	}
	w.variants[variant] = set

	return nil
}

// SubmitVariants pushes the full variant map upstream. A failed submit rolls
// the collections back to the last server-confirmed state so the form never
// shows variants the backend does not have.
func (w *Wizard) SubmitVariants(ctx context.Context) (string, error) {
	const op = "wizard.SubmitVariants"

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.entityID == "" {
		return "", fmt.Errorf("%s: %w", op, ErrStepLocked)
	}

	msg, err := w.store.UpdateVariants(ctx, w.entityID, w.variants)
	if err != nil {
		w.variants = models.CloneVariantImages(w.lastSaved)
		w.fail(op, err, msgSaveFailed)
		return "", fmt.Errorf("%s: %w", op, err)
	}

	w.lastSaved = models.CloneVariantImages(w.variants)

	if msg == "" {
		msg = msgSaved
	}
	w.notices.Success(msg)

	return msg, nil
}

// Back returns to the basic step without touching any state.
func (w *Wizard) Back() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.step = StepBasic
}

// Reset discards unsaved local edits, restoring the last server-acknowledged
// state. Before the first successful save there is nothing to restore, so the
// wizard returns to a blank create form.
func (w *Wizard) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.entityID == "" {
		w.resetLocked(ModeCreate)
		return
	}
	w.variants = models.CloneVariantImages(w.lastSaved)
}

func (w *Wizard) fail(op string, err error, fallback string) {
	if upstream.IsUnauthorized(err) && w.onAuth != nil {
		w.onAuth()
		return
	}

	f := upstream.Normalize(err, fallback)
	w.log.Error("wizard request failed", slog.String("op", op), sl.Err(err))
	w.notices.Error(f.Message)
}

// State is a copy of the wizard's visible state for rendering.
type State struct {
	Mode         Mode
	Step         Step
	EntityID     string
	Sku          string
	Product      models.Product
	Variants     map[models.Variant]models.VariantImageSet
	VariantsOpen bool
}

func (w *Wizard) Snapshot() State {
	w.mu.Lock()
	defer w.mu.Unlock()

	return State{
		Mode:         w.mode,
		Step:         w.step,
		EntityID:     w.entityID,
		Sku:          w.sku,
		Product:      w.product,
		Variants:     models.CloneVariantImages(w.variants),
		VariantsOpen: w.entityID != "",
	}
}
