package generator

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/roofrecharge/proposal-generator/internal/platform/httpx"
	"github.com/roofrecharge/proposal-generator/internal/proposal"
)

// DefaultMaxUpload bounds the aerial image upload.
const DefaultMaxUpload = 10 << 20

// Form field names with special handling.
const (
	fieldAerialImage = "aerialImage"
	fieldRoofs       = "roofs"
)

// formOverhead is the allowance for the non-file fields of a multipart body.
const formOverhead = 1 << 20

// Handler exposes the proposal API.
type Handler struct {
	service   *Service
	logger    *slog.Logger
	maxUpload int64
}

// NewHandler creates a proposal handler. maxUpload <= 0 selects
// DefaultMaxUpload.
func NewHandler(service *Service, logger *slog.Logger, maxUpload int64) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUpload
	}
	return &Handler{service: service, logger: logger, maxUpload: maxUpload}
}

// MountRoutes registers proposal routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/generate-proposal", h.generate)
	r.Post("/calculate", h.calculate)
	r.Get("/products", h.products)
}

func (h *Handler) generate(w http.ResponseWriter, r *http.Request) {
	req, err := h.decode(w, r)
	if err != nil {
		h.service.metrics.ProposalFailed("decode")
		h.logger.Warn("proposal request rejected", slog.Any("error", err))
		httpx.RespondError(w, httpx.MsgGenerate, err)
		return
	}

	var res *Result
	if strings.EqualFold(r.URL.Query().Get("format"), FormatPDF) {
		res, err = h.service.GeneratePDF(r.Context(), req)
	} else {
		res, err = h.service.Generate(r.Context(), req)
	}
	if err != nil {
		h.logger.Error("generate proposal", slog.Any("error", err))
		httpx.RespondError(w, httpx.MsgGenerate, err)
		return
	}

	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Content-Disposition", attachment(res.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Data)))
	w.Header().Set("X-Proposal-Reference", res.Reference)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Data)
}

func (h *Handler) calculate(w http.ResponseWriter, r *http.Request) {
	req, err := h.decode(w, r)
	if err != nil {
		httpx.RespondStatusError(w, httpx.MsgCalculate, err)
		return
	}
	costs, err := h.service.Calculate(req)
	if err != nil {
		httpx.RespondStatusError(w, httpx.MsgCalculate, err)
		return
	}
	httpx.JSON(w, http.StatusOK, costs)
}

type productView struct {
	Name     string `json:"name"`
	Headline string `json:"headline"`
	Default  bool   `json:"default"`
}

func (h *Handler) products(w http.ResponseWriter, r *http.Request) {
	entries := h.service.Products()
	out := make([]productView, len(entries))
	for i, e := range entries {
		out[i] = productView{Name: e.Name, Headline: e.Headline, Default: i == 0}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"products": out,
		"pdf":      h.service.CanConvert(),
	})
}

// decode reads a JSON, urlencoded or multipart proposal request.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (*proposal.Request, error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		mediaType = ""
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+formOverhead)

	switch mediaType {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(formOverhead); err != nil {
			return nil, bodyError("parse multipart form", err)
		}
		defer func() {
			_ = r.MultipartForm.RemoveAll()
		}()
		req, err := h.decodeForm(r.MultipartForm.Value)
		if err != nil {
			return nil, err
		}
		image, err := h.readUpload(r.MultipartForm.File[fieldAerialImage])
		if err != nil {
			return nil, err
		}
		req.AerialImage = image
		return req, nil
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, bodyError("parse form", err)
		}
		return h.decodeForm(r.PostForm)
	default:
		var req proposal.Request
		if err := httpx.DecodeJSON(r, &req); err != nil {
			if errors.Is(err, io.EOF) {
				return &req, nil
			}
			return nil, bodyError("decode json body", err)
		}
		return &req, nil
	}
}

// decodeForm maps form values onto a Request through the same lenient JSON
// decoding a JSON body gets.
func (h *Handler) decodeForm(values url.Values) (*proposal.Request, error) {
	fields := make(map[string]string, len(values))
	for key, vals := range values {
		if key == fieldRoofs || len(vals) == 0 {
			continue
		}
		fields[key] = vals[0]
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("%w: encode form: %v", httpx.ErrValidation, err)
	}
	var req proposal.Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, fmt.Errorf("%w: decode form: %v", httpx.ErrValidation, err)
	}

	roofs, err := proposal.DecodeRoofsField(values.Get(fieldRoofs))
	if err != nil {
		h.logger.Warn("roofs field ignored", slog.Any("error", err))
	}
	req.RoofList = roofs
	return &req, nil
}

func (h *Handler) readUpload(files []*multipart.FileHeader) (*proposal.Image, error) {
	if len(files) == 0 {
		return nil, nil
	}
	header := files[0]
	if header.Size > h.maxUpload {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit %d", httpx.ErrPayloadTooLarge, fieldAerialImage, header.Size, h.maxUpload)
	}
	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", fieldAerialImage, err)
	}
	defer func() {
		_ = file.Close()
	}()
	data, err := io.ReadAll(io.LimitReader(file, h.maxUpload+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", fieldAerialImage, err)
	}
	if int64(len(data)) > h.maxUpload {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", httpx.ErrPayloadTooLarge, fieldAerialImage, h.maxUpload)
	}
	if len(data) == 0 {
		return nil, nil
	}
	return &proposal.Image{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func bodyError(op string, err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return fmt.Errorf("%w: %s: %v", httpx.ErrPayloadTooLarge, op, err)
	}
	return fmt.Errorf("%w: %s: %v", httpx.ErrValidation, op, err)
}

// attachment builds a Content-Disposition header carrying both an ASCII
// filename and the UTF-8 original.
func attachment(name string) string {
	ascii := proposal.ASCIIFileName(name)
	if ascii == name {
		return fmt.Sprintf(`attachment; filename="%s"`, name)
	}
	return fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`, ascii, url.PathEscape(name))
}
