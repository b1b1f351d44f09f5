package handler

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/warcamp/platform/internal/domain"
)

// MaxRosterBytes caps a roster upload.
const MaxRosterBytes = 2 << 20

// multipartSlack covers multipart headers around the file part.
const multipartSlack = 64 << 10

// FormFile reads the "file" part of a multipart upload, refusing bodies over limit.
func FormFile(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartSlack)
	if err := r.ParseMultipartForm(limit + multipartSlack); err != nil {
		return nil, domain.ErrValidation("expected a multipart upload of at most " + humanBytes(limit))
	}
	defer r.MultipartForm.RemoveAll()

	f, _, err := r.FormFile("file")
	if err != nil {
		return nil, domain.ErrValidation("missing upload field \"file\"")
	}
	defer f.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, io.LimitReader(f, limit+1)); err != nil {
		return nil, domain.ErrValidation("could not read upload")
	}
	if int64(buf.Len()) > limit {
		return nil, domain.ErrValidation("upload exceeds " + humanBytes(limit))
	}
	return buf.Bytes(), nil
}

func humanBytes(n int64) string {
	if n%(1<<20) == 0 {
		return fmt.Sprintf("%d MB", n>>20)
	}
	return fmt.Sprintf("%d bytes", n)
}
