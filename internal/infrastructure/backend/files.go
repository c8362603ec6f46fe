package backend

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"

	"github.com/carenet/portal/internal/core/ports"
)

// Upload posts f as the multipart field "file" and returns the URL the
// backend answers with. An answer without a URL yields "" and no error.
func (c *Client) Upload(ctx context.Context, f ports.UploadFile) (string, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filepath.Base(f.Name)))
		h.Set("Content-Type", f.ContentType)
		part, err := mw.CreatePart(h)
		if err == nil {
			_, err = io.Copy(part, f.Data)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	var out struct {
		URL string `json:"url"`
	}
	cl := call{op: "file_upload", method: http.MethodPost, path: "/api/files/upload", out: &out}
	if err := c.send(ctx, cl, pr, mw.FormDataContentType()); err != nil {
		pr.CloseWithError(err)
		return "", err
	}
	return out.URL, nil
}
