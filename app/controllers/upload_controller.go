package controllers

import (
	"errors"
	"net/http"

	"github.com/vancyferns/near2door/app/services"
	"github.com/vancyferns/near2door/pkg/bind"
	"github.com/vancyferns/near2door/pkg/ctx"
)

type UploadController struct {
	uploads  *services.UploadService
	maxBytes int64
}

func NewUploadController(uploads *services.UploadService, maxBytes int64) *UploadController {
	return &UploadController{uploads: uploads, maxBytes: maxBytes}
}

// Image handles POST /api/upload/image with a multipart "file" field.
func (u *UploadController) Image(c *ctx.Context) {
	file, header, err := bind.File(c.W, c.R, "file", u.maxBytes)
	if errors.Is(err, bind.ErrNoFile) {
		c.Error(http.StatusBadRequest, "No file uploaded")
		return
	}
	if err != nil {
		c.Error(http.StatusBadRequest, err.Error())
		return
	}
	defer file.Close()

	url, err := u.uploads.UploadImage(c.Context(), header.Filename, file)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(map[string]string{"url": url})
}
