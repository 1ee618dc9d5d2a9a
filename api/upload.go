package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// File is a pending attachment for a multipart upload.
type File struct {
	Name        string
	ContentType string
	Content     []byte
}

// Key identifies a file within a batch, mirroring how the draft tracks
// per-file progress and results.
func (f File) Key() string {
	return fmt.Sprintf("%s-%d", f.Name, len(f.Content))
}

// Upload posts a single file to path as multipart form data, tagged with the
// chosen target table. progress, when non-nil, receives whole percentages of
// the request body written so far. Uploads are not cancellable beyond the
// passed context once started.
func (c *Client) Upload(ctx context.Context, path string, file File, targetTable string, progress func(pct int)) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", file.Name)
	if err != nil {
		return fmt.Errorf("[Client.Upload] create form file: %w", err)
	}
	if _, err := part.Write(file.Content); err != nil {
		return fmt.Errorf("[Client.Upload] write form file: %w", err)
	}
	if targetTable != "" {
		if err := writer.WriteField("target_table", targetTable); err != nil {
			return fmt.Errorf("[Client.Upload] write target_table: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("[Client.Upload] close writer: %w", err)
	}

	total := buf.Len()
	var body io.Reader = &buf
	if progress != nil {
		body = &progressReader{r: &buf, total: total, report: progress}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("[Client.Upload] new request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.ContentLength = int64(total)

	return c.do(req, nil)
}

// progressReader reports whole-percentage progress as the transport drains
// the request body.
type progressReader struct {
	r      io.Reader
	total  int
	sent   int
	last   int
	report func(pct int)
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	p.sent += n
	if p.total > 0 {
		pct := p.sent * 100 / p.total
		if pct != p.last {
			p.last = pct
			p.report(pct)
		}
	}
	return n, err
}
