// Package cloudinary uploads images through Cloudinary's unsigned upload
// endpoint. Unsigned presets need no API secret, so the client is a plain
// multipart POST.
package cloudinary

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/sproutify/sproutify-platform/internal/errors"
)

const defaultBaseURL = "https://api.cloudinary.com/v1_1"

type Client struct {
	httpClient   *http.Client
	baseURL      string
	cloudName    string
	uploadPreset string
}

func NewClient(cloudName, uploadPreset string) *Client {
	return &Client{
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		baseURL:      defaultBaseURL,
		cloudName:    cloudName,
		uploadPreset: uploadPreset,
	}
}

// NewClientWithBaseURL points the client at a different endpoint. Used by
// tests.
func NewClientWithBaseURL(cloudName, uploadPreset, baseURL string) *Client {
	c := NewClient(cloudName, uploadPreset)
	c.baseURL = baseURL

	return c
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	Error     struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload pushes the file and returns its hosted https URL.
func (c *Client) Upload(ctx context.Context, file io.Reader, filename string) (string, error) {

	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)

	go func() {
		part, err := form.CreateFormFile("file", filename)
		if err != nil {
			pw.CloseWithError(err)
			return
		}

		if _, err := io.Copy(part, file); err != nil {
			pw.CloseWithError(err)
			return
		}

		if err := form.WriteField("upload_preset", c.uploadPreset); err != nil {
			pw.CloseWithError(err)
			return
		}

		pw.CloseWithError(form.Close())
	}()

	url := fmt.Sprintf("%s/%s/image/upload", c.baseURL, c.cloudName)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, pr)
	if err != nil {
		return "", errors.InternalError("Failed to build upload request").WithError(err)
	}

	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.ThirdPartyError("Image host unreachable").WithError(err)
	}
	defer resp.Body.Close()

	var body uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", errors.ThirdPartyError("Unreadable image host response").WithError(err)
	}

	if resp.StatusCode >= 400 {
		return "", errors.ThirdPartyError("Image host rejected the upload").
			WithDetail(body.Error.Message)
	}

	return body.SecureURL, nil
}
