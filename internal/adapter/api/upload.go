package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"

	"github.com/printandread/shelf/internal/domain"
)

// uploadPayload is the JSON "data" part of an upload.
type uploadPayload struct {
	SubjectID    int64  `json:"subjectId"`
	MaterialType string `json:"materialType"`
	Title        string `json:"title"`
}

// UploadMaterial posts a multipart form with a JSON "data" part and the
// document as the "file" part. The body is buffered so retries can resend it.
func (c *Client) UploadMaterial(ctx context.Context, req domain.UploadMaterialRequest) (domain.Material, error) {
	if req.File == nil {
		return domain.Material{}, &domain.ValidationError{Field: "file", Message: "is required"}
	}

	body, contentType, err := buildUploadBody(req)
	if err != nil {
		return domain.Material{}, err
	}

	resp, err := c.do(ctx, request{
		op:          "upload_material",
		method:      http.MethodPost,
		path:        "/materials/upload",
		contentType: contentType,
		body:        func() (io.Reader, error) { return bytes.NewReader(body), nil },
	})
	if err != nil {
		return domain.Material{}, err
	}

	var dto MaterialDTO
	if err := json.Unmarshal(resp, &dto); err != nil {
		return domain.Material{}, fmt.Errorf("failed to parse response: %w", err)
	}
	return MapMaterial(dto), nil
}

func buildUploadBody(req domain.UploadMaterialRequest) ([]byte, string, error) {
	data, err := json.Marshal(uploadPayload{
		SubjectID:    req.SubjectID,
		MaterialType: req.MaterialType,
		Title:        req.Title,
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode upload data: %w", err)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("data", string(data)); err != nil {
		return nil, "", fmt.Errorf("failed to write data part: %w", err)
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, req.FileName))
	h.Set("Content-Type", "application/pdf")
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := io.Copy(part, req.File); err != nil {
		return nil, "", fmt.Errorf("failed to read upload file: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish upload body: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
