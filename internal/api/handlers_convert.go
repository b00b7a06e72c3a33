// handlers_convert.go - Export conversion handlers
package api

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/plc-visualizer/plc2yaml/internal/convert"
	"github.com/plc-visualizer/plc2yaml/internal/export"
	"github.com/plc-visualizer/plc2yaml/internal/models"
	"github.com/plc-visualizer/plc2yaml/internal/storage"
	"k8s.io/klog/v2"
)

// Response headers describing a conversion
const (
	HeaderConversionID = "X-Conversion-Id"
	HeaderTagCount     = "X-Tag-Count"
	HeaderDropCount    = "X-Drop-Count"
)

const defaultUploadName = "export.txt"

// ConvertHandlerImpl implements the ConvertHandler and ConversionHandler interfaces
type ConvertHandlerImpl struct {
	store       storage.Store
	converter   *convert.Converter
	encoders    *export.Registry
	recentLimit int
}

// NewConvertHandler creates a new convert handler instance
func NewConvertHandler(store storage.Store, converter *convert.Converter, encoders *export.Registry, recentLimit int) *ConvertHandlerImpl {
	return &ConvertHandlerImpl{
		store:       store,
		converter:   converter,
		encoders:    encoders,
		recentLimit: recentLimit,
	}
}

// inspectResponse is the body of an inspect request
type inspectResponse struct {
	Document *models.Document `json:"document"`
	Report   *models.Report   `json:"report"`
}

// HandleConvert converts an uploaded export, stores it and returns the document
func (h *ConvertHandlerImpl) HandleConvert(c echo.Context) error {
	enc, err := h.encoders.Get(c.QueryParam("format"))
	if err != nil {
		return NewBadRequestError("unsupported format", err)
	}

	name, body, err := h.openUpload(c)
	if err != nil {
		return err
	}
	defer body.Close()

	res, err := h.converter.Convert(body)
	if err != nil {
		return convertError(err)
	}

	info, err := h.store.Save(name, enc, res.Document, res.Report)
	if err != nil {
		return NewInternalError("failed to store conversion", err)
	}
	klog.Infof("Converted %s: %d tags, %d lines skipped (id %s)", name, info.TagCount, info.DropCount, info.ID)

	rc, err := h.store.Open(info.ID)
	if err != nil {
		return storeError(err, info.ID)
	}
	defer rc.Close()

	setConversionHeaders(c, info)
	return c.Stream(http.StatusCreated, info.ContentType, rc)
}

// HandleInspect converts an uploaded export and returns the tags and drop
// report as JSON without storing anything
func (h *ConvertHandlerImpl) HandleInspect(c echo.Context) error {
	_, body, err := h.openUpload(c)
	if err != nil {
		return err
	}
	defer body.Close()

	res, err := h.converter.Convert(body)
	if err != nil {
		return convertError(err)
	}

	return c.JSON(http.StatusOK, inspectResponse{Document: res.Document, Report: res.Report})
}

// HandleListConversions returns the most recent conversions
func (h *ConvertHandlerImpl) HandleListConversions(c echo.Context) error {
	limit := h.recentLimit
	if s := c.QueryParam("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return NewValidationError("limit")
		}
		limit = n
	}

	list, err := h.store.List(limit)
	if err != nil {
		return NewInternalError("failed to list conversions", err)
	}
	return c.JSON(http.StatusOK, list)
}

// HandleGetConversion returns conversion metadata
func (h *ConvertHandlerImpl) HandleGetConversion(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	info, err := h.store.Get(id)
	if err != nil {
		return storeError(err, id)
	}
	return c.JSON(http.StatusOK, info)
}

// HandleGetDocument returns the stored document in the format it was rendered with
func (h *ConvertHandlerImpl) HandleGetDocument(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	info, err := h.store.Get(id)
	if err != nil {
		return storeError(err, id)
	}

	rc, err := h.store.Open(id)
	if err != nil {
		return storeError(err, id)
	}
	defer rc.Close()

	setConversionHeaders(c, info)
	return c.Stream(http.StatusOK, info.ContentType, rc)
}

// HandleDeleteConversion removes a stored conversion
func (h *ConvertHandlerImpl) HandleDeleteConversion(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	if err := h.store.Delete(id); err != nil {
		return storeError(err, id)
	}
	return c.NoContent(http.StatusNoContent)
}

// openUpload returns the export either from a multipart "file" field or
// from the raw request body.
func (h *ConvertHandlerImpl) openUpload(c echo.Context) (string, io.ReadCloser, error) {
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		fh, err := c.FormFile("file")
		if err != nil {
			return "", nil, NewValidationError("file")
		}
		f, err := fh.Open()
		if err != nil {
			return "", nil, NewBadRequestError("failed to open uploaded file", err)
		}
		return fh.Filename, f, nil
	}

	body := c.Request().Body
	if body == nil || body == http.NoBody {
		return "", nil, NewValidationError("file")
	}

	name := c.QueryParam("name")
	if name == "" {
		name = defaultUploadName
	}
	return name, body, nil
}

func setConversionHeaders(c echo.Context, info *models.ConversionInfo) {
	hdr := c.Response().Header()
	hdr.Set(HeaderConversionID, info.ID)
	hdr.Set(HeaderTagCount, strconv.Itoa(info.TagCount))
	hdr.Set(HeaderDropCount, strconv.Itoa(info.DropCount))
}
