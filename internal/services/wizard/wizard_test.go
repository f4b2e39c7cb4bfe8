package wizard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog_admin/internal/domain/models"
	"catalog_admin/internal/imagehost"
	"catalog_admin/internal/notice"
	"catalog_admin/internal/services/imaging"
	"catalog_admin/internal/upstream"
)

type fakeStore struct {
	getFn     func(id string) (models.Product, error)
	createFn  func(p upstream.ProductPayload) (models.Product, string, error)
	updateFn  func(id string, p upstream.ProductPayload) (models.Product, string, error)
	variantFn func(id string, v map[models.Variant]models.VariantImageSet) (string, error)

	variantCalls []map[models.Variant]models.VariantImageSet
}

func (f *fakeStore) Get(_ context.Context, id string) (models.Product, error) {
	if f.getFn != nil {
		return f.getFn(id)
	}
	return models.Product{}, errors.New("no getFn")
}

func (f *fakeStore) Create(_ context.Context, p upstream.ProductPayload) (models.Product, string, error) {
	if f.createFn != nil {
		return f.createFn(p)
	}
	return models.Product{}, "", errors.New("no createFn")
}

func (f *fakeStore) Update(_ context.Context, id string, p upstream.ProductPayload) (models.Product, string, error) {
	if f.updateFn != nil {
		return f.updateFn(id, p)
	}
	return models.Product{}, "", errors.New("no updateFn")
}

func (f *fakeStore) UpdateVariants(_ context.Context, id string, v map[models.Variant]models.VariantImageSet) (string, error) {
	f.variantCalls = append(f.variantCalls, models.CloneVariantImages(v))
	if f.variantFn != nil {
		return f.variantFn(id, v)
	}
	return "", nil
}

type fakeHost struct {
	uploads  []string
	deletes  []string
	uploadFn func(folder string) (imagehost.Hosted, error)
	deleteFn func(id string) error
}

func (f *fakeHost) Upload(_ context.Context, _ []byte, filename, folder string) (imagehost.Hosted, error) {
	f.uploads = append(f.uploads, folder)
	if f.uploadFn != nil {
		return f.uploadFn(folder)
	}
	return imagehost.Hosted{
		URL:      fmt.Sprintf("https://img.test/%s/%s", folder, filename),
		PublicID: fmt.Sprintf("%s/%s-%d", folder, filename, len(f.uploads)),
		Alt:      filename,
	}, nil
}

func (f *fakeHost) Delete(_ context.Context, id string) error {
	f.deletes = append(f.deletes, id)
	if f.deleteFn != nil {
		return f.deleteFn(id)
	}
	return nil
}

func validForm() BasicForm {
	return BasicForm{
		Title:          "Lotus Painting",
		Desc:           "Hand painted",
		Price:          120,
		Discount:       10,
		Category:       "cat-1",
		DefaultVariant: models.VariantSquare,
		Tags:           []string{"art"},
		IsActive:       true,
		Image: &upstream.FileUpload{
			FieldName:   "image",
			Filename:    "main.jpg",
			ContentType: "image/jpeg",
			Data:        []byte("jpeg"),
		},
	}
}

func newWizard(store ProductStore, host imagehost.Host, center *notice.Center) *Wizard {
	return New(Config{
		Log:     slog.Default(),
		Store:   store,
		Host:    host,
		Notices: center,
		Folder:  "the-monk",
	})
}

func TestSubmitBasic_CreateRequiresMainImage(t *testing.T) {
	store := &fakeStore{}
	center := notice.NewCenter()
	w := newWizard(store, &fakeHost{}, center)

	form := validForm()
	form.Image = nil

	_, err := w.SubmitBasic(context.Background(), form)
	require.ErrorIs(t, err, ErrMainImageRequired)

	notices := center.Drain()
	require.Len(t, notices, 1)
	assert.Equal(t, notice.KindError, notices[0].Kind)
	assert.Equal(t, "Please upload a main product image before proceeding.", notices[0].Message)

	assert.Equal(t, StepBasic, w.Snapshot().Step)
}

func TestSubmitBasic_ValidationRejectsDiscountAbovePrice(t *testing.T) {
	w := newWizard(&fakeStore{}, &fakeHost{}, notice.NewCenter())

	form := validForm()
	form.Discount = form.Price + 1

	_, err := w.SubmitBasic(context.Background(), form)
	assert.Error(t, err)
}

func TestSubmitBasic_CreateUnlocksVariantStep(t *testing.T) {
	store := &fakeStore{
		createFn: func(p upstream.ProductPayload) (models.Product, string, error) {
			return models.Product{ID: "p1", SkuID: "SKU-9", Title: p.Title}, "Product created", nil
		},
	}
	center := notice.NewCenter()
	w := newWizard(store, &fakeHost{}, center)

	msg, err := w.SubmitBasic(context.Background(), validForm())
	require.NoError(t, err)
	assert.Equal(t, "Product created", msg)

	st := w.Snapshot()
	assert.Equal(t, StepVariants, st.Step)
	assert.Equal(t, ModeEdit, st.Mode)
	assert.Equal(t, "p1", st.EntityID)
	assert.Equal(t, "SKU-9", st.Sku)
	assert.True(t, st.VariantsOpen)

	notices := center.Drain()
	require.Len(t, notices, 1)
	assert.Equal(t, notice.KindSuccess, notices[0].Kind)
}

func TestSubmitBasic_EditAllowsMissingImage(t *testing.T) {
	store := &fakeStore{
		getFn: func(id string) (models.Product, error) {
			return models.Product{ID: id, SkuID: "SKU-1", Title: "Old"}, nil
		},
		updateFn: func(id string, p upstream.ProductPayload) (models.Product, string, error) {
			assert.Nil(t, p.Image)
			return models.Product{ID: id, SkuID: "SKU-1", Title: p.Title}, "", nil
		},
	}
	center := notice.NewCenter()
	w := newWizard(store, &fakeHost{}, center)
	require.NoError(t, w.StartEdit(context.Background(), "p1"))

	form := validForm()
	form.Image = nil

	msg, err := w.SubmitBasic(context.Background(), form)
	require.NoError(t, err)
	assert.Equal(t, "Product saved successfully.", msg)
}

func TestVariantStep_LockedUntilProductSaved(t *testing.T) {
	w := newWizard(&fakeStore{}, &fakeHost{}, notice.NewCenter())

	_, err := w.AddVariantImage(context.Background(), models.VariantSquare, imaging.Asset{Filename: "a.jpg"})
	assert.ErrorIs(t, err, ErrStepLocked)

	err = w.RemoveVariantImage(context.Background(), models.VariantSquare, "x")
	assert.ErrorIs(t, err, ErrStepLocked)

	err = w.SetPrimary(models.VariantSquare, "x")
	assert.ErrorIs(t, err, ErrStepLocked)

	_, err = w.SubmitVariants(context.Background())
	assert.ErrorIs(t, err, ErrStepLocked)
}

func createProduct(t *testing.T, w *Wizard) {
	t.Helper()

	_, err := w.SubmitBasic(context.Background(), validForm())
	require.NoError(t, err)
}

func TestAddVariantImage_UploadsToVariantFolder(t *testing.T) {
	store := &fakeStore{
		createFn: func(p upstream.ProductPayload) (models.Product, string, error) {
			return models.Product{ID: "p1", SkuID: "SKU-9"}, "", nil
		},
	}
	host := &fakeHost{}
	w := newWizard(store, host, notice.NewCenter())
	createProduct(t, w)

	img, err := w.AddVariantImage(context.Background(), models.VariantVertical, imaging.Asset{Filename: "a.jpg", Data: []byte("x")})
	require.NoError(t, err)

	require.Len(t, host.uploads, 1)
	assert.Equal(t, "the-monk/products/SKU-9/variants/vertical", host.uploads[0])

	st := w.Snapshot()
	set := st.Variants[models.VariantVertical]
	require.Len(t, set.Images, 1)
	assert.Equal(t, img.PublicID, set.Primary)
	assert.True(t, set.CheckInvariant())
}

func TestAddVariantImage_CapCheckedBeforeUpload(t *testing.T) {
	store := &fakeStore{
		createFn: func(p upstream.ProductPayload) (models.Product, string, error) {
			return models.Product{ID: "p1", SkuID: "SKU-9"}, "", nil
		},
	}
	host := &fakeHost{}
	center := notice.NewCenter()
	w := newWizard(store, host, center)
	createProduct(t, w)

	for i := 0; i < models.MaxImagesPerVariant; i++ {
		_, err := w.AddVariantImage(context.Background(), models.VariantSquare, imaging.Asset{Filename: fmt.Sprintf("%d.jpg", i)})
		require.NoError(t, err)
	}
	center.Drain()

	uploadsBefore := len(host.uploads)

	_, err := w.AddVariantImage(context.Background(), models.VariantSquare, imaging.Asset{Filename: "over.jpg"})
	require.ErrorIs(t, err, ErrTooManyImages)

	assert.Equal(t, uploadsBefore, len(host.uploads))

	notices := center.Drain()
	require.Len(t, notices, 1)
	assert.Equal(t, "You can only upload a maximum of 6 images per variant.", notices[0].Message)

	// other variants are unaffected by the full one
	_, err = w.AddVariantImage(context.Background(), models.VariantHorizontal, imaging.Asset{Filename: "h.jpg"})
	assert.NoError(t, err)
}

func TestRemoveVariantImage_PromotesNextPrimary(t *testing.T) {
	store := &fakeStore{
		createFn: func(p upstream.ProductPayload) (models.Product, string, error) {
			return models.Product{ID: "p1", SkuID: "SKU-9"}, "", nil
		},
	}
	host := &fakeHost{}
	w := newWizard(store, host, notice.NewCenter())
	createProduct(t, w)

	first, err := w.AddVariantImage(context.Background(), models.VariantSquare, imaging.Asset{Filename: "a.jpg"})
	require.NoError(t, err)
	second, err := w.AddVariantImage(context.Background(), models.VariantSquare, imaging.Asset{Filename: "b.jpg"})
	require.NoError(t, err)

	require.NoError(t, w.RemoveVariantImage(context.Background(), models.VariantSquare, first.PublicID))

	set := w.Snapshot().Variants[models.VariantSquare]
	require.Len(t, set.Images, 1)
	assert.Equal(t, second.PublicID, set.Primary)
	assert.True(t, set.CheckInvariant())
	assert.Equal(t, []string{first.PublicID}, host.deletes)

	require.NoError(t, w.RemoveVariantImage(context.Background(), models.VariantSquare, second.PublicID))
	set = w.Snapshot().Variants[models.VariantSquare]
	assert.Empty(t, set.Images)
	assert.Empty(t, set.Primary)
}

func TestRemoveVariantImage_HostFailureStillRemoves(t *testing.T) {
	store := &fakeStore{
		createFn: func(p upstream.ProductPayload) (models.Product, string, error) {
			return models.Product{ID: "p1", SkuID: "SKU-9"}, "", nil
		},
	}
	host := &fakeHost{deleteFn: func(string) error { return errors.New("gone already") }}
	w := newWizard(store, host, notice.NewCenter())
	createProduct(t, w)

	img, err := w.AddVariantImage(context.Background(), models.VariantSquare, imaging.Asset{Filename: "a.jpg"})
	require.NoError(t, err)

	require.NoError(t, w.RemoveVariantImage(context.Background(), models.VariantSquare, img.PublicID))
	assert.Empty(t, w.Snapshot().Variants[models.VariantSquare].Images)
}

func TestSetPrimary(t *testing.T) {
	store := &fakeStore{
		createFn: func(p upstream.ProductPayload) (models.Product, string, error) {
			return models.Product{ID: "p1", SkuID: "SKU-9"}, "", nil
		},
	}
	w := newWizard(store, &fakeHost{}, notice.NewCenter())
	createProduct(t, w)

	_, err := w.AddVariantImage(context.Background(), models.VariantSquare, imaging.Asset{Filename: "a.jpg"})
	require.NoError(t, err)
	second, err := w.AddVariantImage(context.Background(), models.VariantSquare, imaging.Asset{Filename: "b.jpg"})
	require.NoError(t, err)

	require.NoError(t, w.SetPrimary(models.VariantSquare, second.PublicID))
	assert.Equal(t, second.PublicID, w.Snapshot().Variants[models.VariantSquare].Primary)

	err = w.SetPrimary(models.VariantSquare, "nope")
	assert.ErrorIs(t, err, ErrUnknownImage)
}

func TestSubmitVariants_FailureRollsBack(t *testing.T) {
	store := &fakeStore{
		createFn: func(p upstream.ProductPayload) (models.Product, string, error) {
			return models.Product{ID: "p1", SkuID: "SKU-9"}, "", nil
		},
	}
	center := notice.NewCenter()
	w := newWizard(store, &fakeHost{}, center)
	createProduct(t, w)

	saved, err := w.AddVariantImage(context.Background(), models.VariantSquare, imaging.Asset{Filename: "a.jpg"})
	require.NoError(t, err)

	_, err = w.SubmitVariants(context.Background())
	require.NoError(t, err)
	center.Drain()

	// a second image that the backend rejects must vanish on rollback
	_, err = w.AddVariantImage(context.Background(), models.VariantSquare, imaging.Asset{Filename: "b.jpg"})
	require.NoError(t, err)

	store.variantFn = func(string, map[models.Variant]models.VariantImageSet) (string, error) {
		return "", &upstream.APIError{Status: http.StatusBadRequest, Message: "variants rejected"}
	}

	_, err = w.SubmitVariants(context.Background())
	require.Error(t, err)

	set := w.Snapshot().Variants[models.VariantSquare]
	require.Len(t, set.Images, 1)
	assert.Equal(t, saved.PublicID, set.Primary)

	notices := center.Drain()
	require.Len(t, notices, 1)
	assert.Equal(t, notice.KindError, notices[0].Kind)
	assert.Equal(t, "variants rejected", notices[0].Message)
}

func TestSubmitVariants_SendsFullMap(t *testing.T) {
	store := &fakeStore{
		createFn: func(p upstream.ProductPayload) (models.Product, string, error) {
			return models.Product{ID: "p1", SkuID: "SKU-9"}, "", nil
		},
	}
	center := notice.NewCenter()
	w := newWizard(store, &fakeHost{}, center)
	createProduct(t, w)
	center.Drain()

	img, err := w.AddVariantImage(context.Background(), models.VariantHorizontal, imaging.Asset{Filename: "a.jpg"})
	require.NoError(t, err)

	msg, err := w.SubmitVariants(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Product saved successfully.", msg)

	require.Len(t, store.variantCalls, 1)
	sent := store.variantCalls[0]
	require.Len(t, sent, len(models.Variants))
	assert.Equal(t, img.PublicID, sent[models.VariantHorizontal].Primary)
	assert.Empty(t, sent[models.VariantSquare].Images)

	notices := center.Drain()
	require.Len(t, notices, 1)
	assert.Equal(t, notice.KindSuccess, notices[0].Kind)
}

func TestStartEdit_LoadsVariantsAndUnlocks(t *testing.T) {
	store := &fakeStore{
		getFn: func(id string) (models.Product, error) {
			return models.Product{
				ID:    id,
				SkuID: "SKU-1",
				Variants: map[models.Variant]models.VariantImageSet{
					models.VariantSquare: {
						Primary: "pid-1",
						Images:  []models.VariantImage{{PublicID: "pid-1", URL: "u"}},
					},
				},
			}, nil
		},
	}
	w := newWizard(store, &fakeHost{}, notice.NewCenter())
	require.NoError(t, w.StartEdit(context.Background(), "p1"))

	st := w.Snapshot()
	assert.Equal(t, ModeEdit, st.Mode)
	assert.Equal(t, StepBasic, st.Step)
	assert.True(t, st.VariantsOpen)
	assert.Equal(t, "pid-1", st.Variants[models.VariantSquare].Primary)
	// map always covers every variant even when upstream omits some
	assert.Len(t, st.Variants, len(models.Variants))
}

func TestStartEdit_LoadFailureNotifies(t *testing.T) {
	store := &fakeStore{
		getFn: func(id string) (models.Product, error) {
			return models.Product{}, &upstream.TransportError{Err: errors.New("timeout")}
		},
	}
	center := notice.NewCenter()
	w := newWizard(store, &fakeHost{}, center)

	err := w.StartEdit(context.Background(), "p1")
	require.Error(t, err)

	notices := center.Drain()
	require.Len(t, notices, 1)
	assert.Equal(t, "Failed to load product. Please try again.", notices[0].Message)
}

func TestUnauthorizedSkipsNoticeAndFiresHook(t *testing.T) {
	store := &fakeStore{
		getFn: func(id string) (models.Product, error) {
			return models.Product{}, &upstream.APIError{Status: http.StatusUnauthorized}
		},
	}
	center := notice.NewCenter()
	fired := false
	w := New(Config{
		Log:            slog.Default(),
		Store:          store,
		Host:           &fakeHost{},
		Notices:        center,
		Folder:         "the-monk",
		OnUnauthorized: func() { fired = true },
	})

	require.Error(t, w.StartEdit(context.Background(), "p1"))
	assert.True(t, fired)
	assert.Empty(t, center.Drain())
}

func TestBackAndReset(t *testing.T) {
	store := &fakeStore{
		createFn: func(p upstream.ProductPayload) (models.Product, string, error) {
			return models.Product{ID: "p1", SkuID: "SKU-9"}, "", nil
		},
	}
	w := newWizard(store, &fakeHost{}, notice.NewCenter())
	createProduct(t, w)

	w.Back()
	st := w.Snapshot()
	assert.Equal(t, StepBasic, st.Step)
	assert.Equal(t, "p1", st.EntityID, "back must not discard the saved product")
	assert.True(t, st.VariantsOpen)

	w.Reset()
	st = w.Snapshot()
	assert.Equal(t, ModeEdit, st.Mode, "reset must not abandon the saved product")
	assert.Equal(t, "p1", st.EntityID)
	assert.True(t, st.VariantsOpen)
}

func TestReset_BeforeFirstSaveClearsForm(t *testing.T) {
	w := newWizard(&fakeStore{}, &fakeHost{}, notice.NewCenter())

	w.Reset()
	st := w.Snapshot()
	assert.Equal(t, ModeCreate, st.Mode)
	assert.Empty(t, st.EntityID)
	assert.False(t, st.VariantsOpen)
}

func TestReset_RestoresLastLoadedRecord(t *testing.T) {
	store := &fakeStore{
		getFn: func(id string) (models.Product, error) {
			return models.Product{
				ID:    id,
				SkuID: "SKU-1",
				Title: "Sunset",
				Variants: map[models.Variant]models.VariantImageSet{
					models.VariantSquare: {
						Primary: "pid-1",
						Images:  []models.VariantImage{{PublicID: "pid-1", URL: "u"}},
					},
				},
			}, nil
		},
	}
	w := newWizard(store, &fakeHost{}, notice.NewCenter())
	require.NoError(t, w.StartEdit(context.Background(), "p1"))

	_, err := w.AddVariantImage(context.Background(), models.VariantSquare, imaging.Asset{Filename: "extra.jpg", Data: []byte("img")})
	require.NoError(t, err)
	require.Len(t, w.Snapshot().Variants[models.VariantSquare].Images, 2)

	w.Reset()
	st := w.Snapshot()
	assert.Equal(t, "p1", st.EntityID)
	assert.Equal(t, "Sunset", st.Product.Title)
	assert.True(t, st.VariantsOpen)
	require.Len(t, st.Variants[models.VariantSquare].Images, 1)
	assert.Equal(t, "pid-1", st.Variants[models.VariantSquare].Primary)
}
