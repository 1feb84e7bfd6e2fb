package api

import (
	"context"
	"io"
	"time"

	"github.com/ShotaGhoona/acrique-v1-sub002/pkg/apiclient"
)

// Upload is a design file submitted for an order.
type Upload struct {
	ID          int       `json:"id"`
	FileName    string    `json:"file_name"`
	FileURL     string    `json:"file_url"`
	ContentType string    `json:"content_type"`
	FileSize    int64     `json:"file_size"`
	UploadType  string    `json:"upload_type"`
	OrderID     *int      `json:"order_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateUploadInput streams a file to the API.
type CreateUploadInput struct {
	FileName    string
	ContentType string
	UploadType  string
	Content     io.Reader
}

// RegisterUploadInput records a file that is already stored in the object store.
type RegisterUploadInput struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	FileSize    int64  `json:"file_size"`
	StoragePath string `json:"storage_path"`
	UploadType  string `json:"upload_type"`
}

type uploadList struct {
	Uploads []Upload `json:"uploads"`
}

// UploadAPI is /api/uploads.
type UploadAPI struct {
	client *apiclient.Client
}

func (a *UploadAPI) List(ctx context.Context) ([]Upload, error) {
	out, err := apiclient.Get[uploadList](ctx, a.client, "/api/uploads", nil)
	return out.Uploads, err
}

func (a *UploadAPI) Create(ctx context.Context, in CreateUploadInput) (Upload, error) {
	if in.FileName == "" {
		return Upload{}, apiclient.ValidationError("file name is required")
	}
	uploadType := in.UploadType
	if uploadType == "" {
		uploadType = "design"
	}
	var out Upload
	err := a.client.PostMultipart(ctx, "/api/uploads", map[string]string{"upload_type": uploadType}, apiclient.FilePart{
		FileName:    in.FileName,
		ContentType: in.ContentType,
		Content:     in.Content,
	}, &out)
	return out, err
}

func (a *UploadAPI) Register(ctx context.Context, in RegisterUploadInput) (Upload, error) {
	return apiclient.Post[Upload](ctx, a.client, "/api/uploads/register", in)
}

func (a *UploadAPI) Delete(ctx context.Context, id int) (Message, error) {
	return apiclient.Delete[Message](ctx, a.client, "/api/uploads/"+itoa(id))
}
