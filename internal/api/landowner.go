package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// LandownerEnquiry is the partnership lead-capture form. Attachment is an
// optional land photo or ownership document.
type LandownerEnquiry struct {
	Name           string
	Phone          string
	District       string
	Acreage        string
	Crop           string
	Message        string
	AttachmentName string
	Attachment     io.Reader
}

// SubmitLandownerEnquiry posts the enquiry form as multipart form data.
func (c *Client) SubmitLandownerEnquiry(ctx context.Context, enquiry LandownerEnquiry) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	fields := map[string]string{
		"name":     enquiry.Name,
		"phone":    enquiry.Phone,
		"district": enquiry.District,
		"acreage":  enquiry.Acreage,
		"crop":     enquiry.Crop,
		"message":  enquiry.Message,
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return fmt.Errorf("api: write enquiry field %s: %w", key, err)
		}
	}

	if enquiry.Attachment != nil {
		name := enquiry.AttachmentName
		if name == "" {
			name = "attachment"
		}
		part, err := writer.CreateFormFile("document", name)
		if err != nil {
			return fmt.Errorf("api: create enquiry attachment: %w", err)
		}
		if _, err := io.Copy(part, enquiry.Attachment); err != nil {
			return fmt.Errorf("api: copy enquiry attachment: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return err
	}

	var out struct{ envelope }

	err := c.doJSON(ctx, RequestOpts{
		Method:      http.MethodPost,
		Path:        "/landowner/enquiry",
		RawBody:     &buf,
		ContentType: writer.FormDataContentType(),
	}, &out)
	if err != nil {
		return err
	}
	return out.ok()
}
