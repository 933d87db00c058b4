package validators

import (
	"io"
	"net/http"

	pkgerrors "github.com/richrisemansion/ebook-pop/pkg/errors"
)

// FileUpload is a fully read multipart file with its sniffed content type.
type FileUpload struct {
	Data        []byte
	ContentType string
	Ext         string
}

var imageExtByType = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// ReadImageUpload reads the named multipart file field, enforcing the size cap
// and rejecting anything that does not sniff as an image. The extension comes
// from the sniffed type, never from the client file name.
func ReadImageUpload(r *http.Request, field string, maxBytes int64) (*FileUpload, error) {
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart body")
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "file field missing")
	}
	defer file.Close()

	if header.Size > maxBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file too large")
	}

	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "reading file")
	}
	if int64(len(data)) > maxBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file too large")
	}
	if len(data) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file is empty")
	}

	contentType := http.DetectContentType(data)
	ext, ok := imageExtByType[contentType]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "only jpeg, png and webp images are accepted")
	}

	return &FileUpload{Data: data, ContentType: contentType, Ext: ext}, nil
}
