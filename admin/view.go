// Package admin implements the listings admin screen as a headless state
// machine: the collection fetch, the add/edit modal, image previews and the
// role gate. Renderers read its state through accessors and call its
// operations in response to user input.
package admin

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/labstack/gommon/log"

	"estatedesk/model"
	"estatedesk/session"
)

type FetchState int

const (
	FetchIdle FetchState = iota
	FetchLoading
	FetchReady
	FetchError
)

func (s FetchState) String() string {
	switch s {
	case FetchLoading:
		return "loading"
	case FetchReady:
		return "ready"
	case FetchError:
		return "error"
	}
	return "idle"
}

type ModalMode int

const (
	ModalClosed ModalMode = iota
	ModalAdd
	ModalEdit
)

// Field names a draft field, using the wire names.
type Field string

const (
	FieldTitle           Field = "title"
	FieldDescription     Field = "description"
	FieldLocationAddress Field = "location_address"
	FieldPrice           Field = "price"
	FieldPropertyType    Field = "property_type"
	FieldStatus          Field = "status"
)

var (
	// ErrBusy is returned while a save or delete is in flight.
	ErrBusy        = errors.New("a save is already in progress")
	ErrModalClosed = errors.New("no listing is being edited")
	ErrUnmounted   = errors.New("view is unmounted")
)

// ValidationError blocks a submission before anything is sent.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

type Option func(*ListingsView)

func WithConfirmer(c Confirmer) Option {
	return func(v *ListingsView) {
		v.confirm = c
	}
}

func WithPreviews(p PreviewStore) Option {
	return func(v *ListingsView) {
		v.previews = p
	}
}

// ListingsView is the listings table plus its add/edit modal.
//
// Operations block on the network without holding the view lock, so accessors
// stay usable from another goroutine while a request is in flight.
type ListingsView struct {
	api      ListingsAPI
	gate     Capability
	confirm  Confirmer
	previews PreviewStore

	// life is cancelled by Unmount; every request runs under it.
	life   context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	unmounted  bool
	fetchState FetchState
	listings   []model.Listing
	err        string
	modal      ModalMode
	saving     bool
	draft      model.Listing
	image      *ImageFile
	preview    string
}

func NewListingsView(api ListingsAPI, sess session.Session, opts ...Option) *ListingsView {
	life, cancel := context.WithCancel(context.Background())
	v := &ListingsView{
		api:      api,
		gate:     RoleGate{Role: sess.Role()},
		confirm:  denyAll,
		previews: NewMemoryPreviews(),
		life:     life,
		cancel:   cancel,
		listings: []model.Listing{},
		draft:    model.NewDraft(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Mount runs the initial fetch.
func (v *ListingsView) Mount(ctx context.Context) error {
	return v.FetchListings(ctx)
}

// Unmount aborts in-flight requests and releases the live preview. Results
// that arrive afterwards are dropped.
func (v *ListingsView) Unmount() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.unmounted {
		return
	}
	v.unmounted = true
	v.cancel()
	v.clearImageLocked()
}

// scope derives a request context that ends with ctx or with the view.
func (v *ListingsView) scope(ctx context.Context) (context.Context, context.CancelFunc) {
	reqCtx, cancel := context.WithCancel(ctx)
	go func() {
		select {
		case <-v.life.Done():
			cancel()
		case <-reqCtx.Done():
		}
	}()
	return reqCtx, cancel
}

// FetchListings replaces the collection with the server's. On failure the
// current listings stay as they are.
func (v *ListingsView) FetchListings(ctx context.Context) error {
	v.mu.Lock()
	if v.unmounted {
		v.mu.Unlock()
		return ErrUnmounted
	}
	v.fetchState = FetchLoading
	v.err = ""
	v.mu.Unlock()

	reqCtx, cancel := v.scope(ctx)
	defer cancel()
	listings, err := v.api.List(reqCtx)

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.unmounted {
		return ErrUnmounted
	}
	if err != nil {
		v.fetchState = FetchError
		v.err = err.Error()
		return err
	}
	if listings == nil {
		listings = []model.Listing{}
	}
	v.listings = listings
	v.fetchState = FetchReady
	return nil
}

func (v *ListingsView) OpenAddModal() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.saving {
		return ErrBusy
	}
	v.draft = model.NewDraft()
	v.clearImageLocked()
	v.modal = ModalAdd
	return nil
}

// OpenEditModal edits a copy of l; the table keeps showing the original
// until the next fetch.
func (v *ListingsView) OpenEditModal(l model.Listing) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.saving {
		return ErrBusy
	}
	draft := l
	draft.Images = append(model.Images{}, l.Images...)
	v.draft = draft
	v.clearImageLocked()
	v.modal = ModalEdit
	return nil
}

// CloseModal reports whether the modal was closed. It refuses while saving.
func (v *ListingsView) CloseModal() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.saving {
		return false
	}
	v.closeLocked()
	return true
}

// Escape is the keyboard dismissal; same rules as CloseModal.
func (v *ListingsView) Escape() bool {
	return v.CloseModal()
}

func (v *ListingsView) closeLocked() {
	v.modal = ModalClosed
	v.clearImageLocked()
}

// HandleChange merges one field into the draft. The draft is frozen while a
// save is in flight.
func (v *ListingsView) HandleChange(field Field, value interface{}) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.saving {
		return ErrBusy
	}

	switch field {
	case FieldTitle, FieldDescription, FieldLocationAddress:
		s, ok := value.(string)
		if !ok {
			return fieldTypeError(field, value)
		}
		switch field {
		case FieldTitle:
			v.draft.Title = s
		case FieldDescription:
			v.draft.Description = s
		default:
			v.draft.LocationAddress = s
		}
	case FieldPrice:
		price, err := toPrice(value)
		if err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
		v.draft.Price = price
	case FieldPropertyType:
		switch t := value.(type) {
		case model.PropertyType:
			v.draft.PropertyType = t
		case string:
			v.draft.PropertyType = model.PropertyType(t)
		default:
			return fieldTypeError(field, value)
		}
	case FieldStatus:
		switch s := value.(type) {
		case model.Status:
			v.draft.Status = s
		case string:
			v.draft.Status = model.Status(s)
		default:
			return fieldTypeError(field, value)
		}
	default:
		return fmt.Errorf("unknown field %q", field)
	}
	return nil
}

func fieldTypeError(field Field, value interface{}) error {
	return fmt.Errorf("%s: unexpected value of type %T", field, value)
}

// An empty string is 0, as a cleared number input would be.
func toPrice(value interface{}) (float64, error) {
	switch p := value.(type) {
	case float64:
		return p, nil
	case float32:
		return float64(p), nil
	case int:
		return float64(p), nil
	case int64:
		return float64(p), nil
	case string:
		p = strings.TrimSpace(p)
		if p == "" {
			return 0, nil
		}
		return strconv.ParseFloat(p, 64)
	}
	return 0, fmt.Errorf("unexpected value of type %T", value)
}

// SelectImage swaps the pending image. The previous preview is revoked before
// the new one is created.
func (v *ListingsView) SelectImage(f ImageFile) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.modal == ModalClosed {
		return ErrModalClosed
	}
	if v.saving {
		return ErrBusy
	}

	v.clearImageLocked()
	url, err := v.previews.Create(f)
	if err != nil {
		return fmt.Errorf("preview image: %w", err)
	}
	v.image = &f
	v.preview = url
	return nil
}

func (v *ListingsView) clearImageLocked() {
	if v.preview != "" {
		v.previews.Revoke(v.preview)
		v.preview = ""
	}
	v.image = nil
}

// HandleSubmit validates the draft and sends it. On success the collection is
// fetched again once and the modal closes; on failure the modal stays open
// with the draft intact.
func (v *ListingsView) HandleSubmit(ctx context.Context) error {
	v.mu.Lock()
	if v.unmounted {
		v.mu.Unlock()
		return ErrUnmounted
	}
	if v.modal == ModalClosed {
		v.mu.Unlock()
		return ErrModalClosed
	}
	if v.saving {
		v.mu.Unlock()
		return ErrBusy
	}
	if err := v.draft.Validate(); err != nil {
		v.err = err.Error()
		v.mu.Unlock()
		return &ValidationError{Err: err}
	}

	v.saving = true
	v.err = ""
	draft, mode := v.draft, v.modal
	var image *ImageFile
	if v.image != nil {
		f := *v.image
		image = &f
	}
	v.mu.Unlock()

	reqCtx, cancel := v.scope(ctx)
	defer cancel()

	var err error
	if mode == ModalEdit {
		err = v.api.Update(reqCtx, draft, image)
	} else {
		err = v.api.Create(reqCtx, draft, image)
	}

	if done, dropped := v.finishMutation(err); done {
		return dropped
	}

	if err := v.FetchListings(ctx); err != nil && !errors.Is(err, ErrUnmounted) {
		log.Warnf("refetch after save: %v", err)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.saving = false
	if v.unmounted {
		return ErrUnmounted
	}
	v.draft = model.NewDraft()
	v.closeLocked()
	return nil
}

// HandleDelete asks for confirmation and deletes the listing. A second call
// while a save or delete is in flight returns ErrBusy without a request.
func (v *ListingsView) HandleDelete(ctx context.Context, id string) error {
	v.mu.Lock()
	busy := v.saving
	v.mu.Unlock()
	if busy {
		return ErrBusy
	}

	if !v.confirm.Confirm(DeletePrompt) {
		return nil
	}

	v.mu.Lock()
	if v.unmounted {
		v.mu.Unlock()
		return ErrUnmounted
	}
	if v.saving {
		v.mu.Unlock()
		return ErrBusy
	}
	v.saving = true
	v.err = ""
	v.mu.Unlock()

	reqCtx, cancel := v.scope(ctx)
	defer cancel()
	err := v.api.Delete(reqCtx, id)

	if done, dropped := v.finishMutation(err); done {
		return dropped
	}

	if err := v.FetchListings(ctx); err != nil && !errors.Is(err, ErrUnmounted) {
		log.Warnf("refetch after delete: %v", err)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.saving = false
	return nil
}

// finishMutation settles a failed or dropped save/delete. done is false when
// the mutation succeeded and the caller should carry on.
func (v *ListingsView) finishMutation(err error) (done bool, result error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.unmounted {
		v.saving = false
		return true, ErrUnmounted
	}
	if err != nil {
		v.saving = false
		v.err = err.Error()
		log.Errorf("API Error: %s", v.err)
		return true, err
	}
	return false, nil
}

func (v *ListingsView) FetchState() FetchState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.fetchState
}

// IsLoading is true while the collection is being fetched.
func (v *ListingsView) IsLoading() bool {
	return v.FetchState() == FetchLoading
}

// Err is the inline error of the last operation, "" when there is none.
func (v *ListingsView) Err() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.err
}

func (v *ListingsView) Listings() []model.Listing {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]model.Listing(nil), v.listings...)
}

func (v *ListingsView) Modal() ModalMode {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.modal
}

func (v *ListingsView) Saving() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.saving
}

func (v *ListingsView) Draft() model.Listing {
	v.mu.Lock()
	defer v.mu.Unlock()
	d := v.draft
	d.Images = append(model.Images{}, v.draft.Images...)
	return d
}

// SelectedImage is the image picked for upload, if any.
func (v *ListingsView) SelectedImage() (ImageFile, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.image == nil {
		return ImageFile{}, false
	}
	return *v.image, true
}

// CanManage gates the add, edit and delete controls.
func (v *ListingsView) CanManage() bool {
	return v.gate.CanManage()
}
