package property

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/carlosalbertoprojetos/imobiliaria-api/internal/middleware"
	"github.com/carlosalbertoprojetos/imobiliaria-api/internal/response"
	"github.com/carlosalbertoprojetos/imobiliaria-api/internal/storage"
)

// maxUploadMemory bounds how much of a multipart body is held in memory;
// larger uploads spill to temp files.
const maxUploadMemory = 32 << 20

// Handler holds HTTP handlers for property and image endpoints.
type Handler struct {
	svc   *Service
	store storage.Storage
}

// NewHandler creates a new property Handler.
func NewHandler(svc *Service, store storage.Storage) *Handler {
	return &Handler{svc: svc, store: store}
}

// List godoc
//
//	@Summary		List properties
//	@Description	Returns every property record. No pagination, no ownership filter.
//	@Tags			properties
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	response.Envelope{data=[]Property}
//	@Failure		401	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/properties [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	properties, err := h.svc.List(r.Context())
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, properties)
}

// Create godoc
//
//	@Summary		Create a property
//	@Description	Multipart form with title, description (optional), price, address, and image (optional). The caller's bearer token becomes the record owner.
//	@Tags			properties
//	@Accept			mpfd
//	@Produce		json
//	@Security		BearerAuth
//	@Param			title		formData	string	true	"Listing title"
//	@Param			description	formData	string	false	"Listing description"
//	@Param			price		formData	number	true	"Asking price"
//	@Param			address		formData	string	true	"Street address"
//	@Param			image		formData	file	false	"Listing photo"
//	@Success		201	{object}	response.Envelope{data=Property}
//	@Failure		400	{object}	response.Envelope
//	@Failure		401	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/properties [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	owner := middleware.OwnerToken(r.Context())
	if owner == "" {
		response.Unauthorized(w, "unauthorized")
		return
	}

	if err := parseForm(r); err != nil {
		response.BadRequest(w, "invalid form body")
		return
	}

	// Required fields are validated before any persistence or blob write,
	// so a rejected request leaves no partial side effects.
	title := r.PostFormValue("title")
	address := r.PostFormValue("address")
	priceRaw := r.PostFormValue("price")
	if title == "" || address == "" || priceRaw == "" {
		response.BadRequest(w, "title, price and address are required")
		return
	}
	price, err := strconv.ParseFloat(priceRaw, 64)
	if err != nil {
		response.BadRequest(w, "price must be a decimal number")
		return
	}

	in := CreateInput{Title: title, Price: price, Address: address}
	if values, ok := r.PostForm["description"]; ok && len(values) > 0 {
		in.Description = &values[0]
	}

	image, closeImage, err := formImage(r)
	if err != nil {
		response.BadRequest(w, "invalid image upload")
		return
	}
	defer closeImage()
	in.Image = image

	p, err := h.svc.Create(r.Context(), owner, in)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.Created(w, p)
}

// Get godoc
//
//	@Summary		Get a property
//	@Tags			properties
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Property id"
//	@Success		200	{object}	response.Envelope{data=Property}
//	@Failure		401	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/properties/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, ErrNotFound) {
		response.NotFound(w, "property not found")
		return
	}
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, p)
}

// Update godoc
//
//	@Summary		Update a property
//	@Description	Multipart form, all fields optional. A supplied field overwrites the stored value, including explicit empty values; absent fields are untouched. No ownership check is performed.
//	@Tags			properties
//	@Accept			mpfd
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id			path		string	true	"Property id"
//	@Param			title		formData	string	false	"Listing title"
//	@Param			description	formData	string	false	"Listing description"
//	@Param			price		formData	number	false	"Asking price"
//	@Param			address		formData	string	false	"Street address"
//	@Param			image		formData	file	false	"Replacement photo"
//	@Success		200	{object}	response.Envelope{data=Property}
//	@Failure		400	{object}	response.Envelope
//	@Failure		401	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/properties/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		response.BadRequest(w, "invalid form body")
		return
	}

	var in UpdateInput
	if v, ok := formField(r, "title"); ok {
		in.Title = &v
	}
	if v, ok := formField(r, "description"); ok {
		in.Description = &v
	}
	if v, ok := formField(r, "address"); ok {
		in.Address = &v
	}
	if v, ok := formField(r, "price"); ok {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			response.BadRequest(w, "price must be a decimal number")
			return
		}
		in.Price = &price
	}

	image, closeImage, err := formImage(r)
	if err != nil {
		response.BadRequest(w, "invalid image upload")
		return
	}
	defer closeImage()
	in.Image = image

	p, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), in)
	if errors.Is(err, ErrNotFound) {
		response.NotFound(w, "property not found")
		return
	}
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, p)
}

// Delete godoc
//
//	@Summary		Delete a property
//	@Description	Removes the record and its image. Only the owner may delete; deleting an unknown id succeeds so clients can retry safely.
//	@Tags			properties
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Property id"
//	@Success		204
//	@Failure		401	{object}	response.Envelope
//	@Failure		403	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/properties/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	token := middleware.OwnerToken(r.Context())
	if token == "" {
		response.Unauthorized(w, "unauthorized")
		return
	}

	err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"), token)
	if errors.Is(err, ErrForbidden) {
		response.Forbidden(w, "property belongs to another owner")
		return
	}
	if err != nil {
		response.InternalError(w)
		return
	}
	response.NoContent(w)
}

// GetImage godoc
//
//	@Summary		Serve an uploaded image
//	@Description	Returns the raw bytes of a stored image. Public by design: image names are unguessable generated strings.
//	@Tags			uploads
//	@Produce		octet-stream
//	@Param			name	path	string	true	"Blob name"
//	@Success		200	{file}		file
//	@Failure		404	{object}	response.Envelope
//	@Router			/uploads/{name} [get]
func (h *Handler) GetImage(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	rc, err := h.store.Download(r.Context(), name)
	if errors.Is(err, storage.ErrNotFound) {
		response.NotFound(w, "image not found")
		return
	}
	if err != nil {
		response.InternalError(w)
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(path.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = io.Copy(w, rc)
}

// parseForm parses either a multipart or a urlencoded body into r.PostForm.
func parseForm(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		return r.ParseMultipartForm(maxUploadMemory)
	}
	return r.ParseForm()
}

// formField reports a form value and whether the field was supplied at all,
// so an explicit empty value is distinguishable from an absent field.
func formField(r *http.Request, name string) (string, bool) {
	values, ok := r.PostForm[name]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// formImage extracts the optional "image" file from a parsed form. The
// returned close function is a no-op when no file was supplied.
func formImage(r *http.Request) (*ImageUpload, func(), error) {
	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, func() {}, nil
		}
		return nil, func() {}, err
	}
	return &ImageUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Reader:      file,
	}, func() { _ = file.Close() }, nil
}
