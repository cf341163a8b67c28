package httpapi

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dmitrijs2005/userkeeper/internal/server/services"
)

// formValue returns the first submitted value for key, or nil when the field
// was not part of the form at all. An empty submitted value is still a value.
func formValue(c echo.Context, key string) *string {
	form, err := c.MultipartForm()
	if err != nil {
		if v := c.FormValue(key); v != "" {
			return &v
		}
		return nil
	}

	if vals, ok := form.Value[key]; ok && len(vals) > 0 {
		return &vals[0]
	}

	return nil
}

// openAvatar opens the uploaded avatar file if the request attached one.
// The returned file must be closed by the caller once the upload has been
// consumed.
func openAvatar(c echo.Context) (*services.Upload, multipart.File, error) {
	fh, err := c.FormFile("avatar")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil, nil
		}
		return nil, nil, err
	}

	f, err := fh.Open()
	if err != nil {
		return nil, nil, err
	}

	return &services.Upload{Name: fh.Filename, Content: f}, f, nil
}
