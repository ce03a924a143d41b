package controllers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	apperrors "github.com/Mayank561/ECOMMERCE-API/common/errors"
	"github.com/Mayank561/ECOMMERCE-API/services"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MaxUploadSize    = 32 << 20
	MaxGalleryImages = 10
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
			return primitive.IsValidObjectID(fl.Field().String())
		})
	}
}

// bindError turns a binding failure into a validation error naming the
// offending fields.
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.Validation("invalid request body", err)
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fe.Field()+" is required")
		case "objectid":
			parts = append(parts, fe.Field()+" must be a valid id")
		case "max":
			parts = append(parts, fe.Field()+" must be at most "+fe.Param()+" characters")
		case "email":
			parts = append(parts, fe.Field()+" must be a valid email")
		default:
			parts = append(parts, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
		}
	}
	return apperrors.Validation(strings.Join(parts, "; "), err)
}

// parseMultipart limits the request body and parses the multipart form.
func parseMultipart(c *gin.Context) error {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadSize)
	if err := c.Request.ParseMultipartForm(MaxUploadSize); err != nil {
		return apperrors.Validation("invalid multipart form", err)
	}
	return nil
}

// imageFromForm returns the single upload under field, or nil when there is
// none. The caller closes the returned file.
func imageFromForm(c *gin.Context, field string) (*services.ImageFile, multipart.File, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, apperrors.Validation("invalid image upload", err)
	}
	return openImage(fh)
}

// imagesFromForm opens every upload under field. The caller closes the
// returned files.
func imagesFromForm(c *gin.Context, field string) ([]services.ImageFile, []multipart.File, error) {
	form := c.Request.MultipartForm
	if form == nil || len(form.File[field]) == 0 {
		return nil, nil, nil
	}
	headers := form.File[field]
	if len(headers) > MaxGalleryImages {
		return nil, nil, apperrors.Validation(fmt.Sprintf("at most %d images are allowed", MaxGalleryImages), nil)
	}

	images := make([]services.ImageFile, 0, len(headers))
	files := make([]multipart.File, 0, len(headers))
	for _, fh := range headers {
		img, f, err := openImage(fh)
		if err != nil {
			closeAll(files)
			return nil, nil, err
		}
		images = append(images, *img)
		files = append(files, f)
	}
	return images, files, nil
}

func openImage(fh *multipart.FileHeader) (*services.ImageFile, multipart.File, error) {
	contentType := fh.Header.Get("Content-Type")
	if _, ok := services.ImageExtension(contentType); !ok {
		return nil, nil, apperrors.Validation(fmt.Sprintf("invalid image type for file %s. Allowed: png, jpeg, jpg", fh.Filename), nil)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, nil, apperrors.Internal(fmt.Errorf("open upload %s: %w", fh.Filename, err))
	}
	return &services.ImageFile{Name: fh.Filename, ContentType: contentType, Body: f}, f, nil
}

func closeAll(files []multipart.File) {
	for _, f := range files {
		_ = f.Close()
	}
}
