package showreel

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/showreel/imagehost"
)

// uploadResponse is the JSON answer to an image upload. The admin script
// fills the target field with URL on success and shows an error toast
// otherwise.
type uploadResponse struct {
	Success bool   `json:"success"`
	URL     string `json:"url,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (a *App) handleImageUpload(c echo.Context) error {
	file, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, uploadResponse{Error: "No image file provided"})
	}
	if file.Size > imagehost.MaxUploadSize {
		return c.JSON(http.StatusBadRequest, uploadResponse{Error: "File too large (max 10MB)"})
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	res, err := a.Images.Upload(c.Request().Context(), file.Filename, src)
	if err != nil || !res.Success {
		a.Logger.Warn("image upload failed", "filename", file.Filename, "error", err)
		return c.JSON(http.StatusUnprocessableEntity, uploadResponse{Error: msgFailed})
	}
	return c.JSON(http.StatusOK, uploadResponse{Success: true, URL: res.URL})
}
