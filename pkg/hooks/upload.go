package hooks

import (
	"context"
	"fmt"
	"io"

	"github.com/ShotaGhoona/acrique-v1-sub002/pkg/api"
	"github.com/ShotaGhoona/acrique-v1-sub002/pkg/query"
)

// DesignUpload is one design file submitted from the order upload page.
type DesignUpload struct {
	FileName    string
	ContentType string
	Content     io.Reader
	// OrderID links the upload to an order when positive.
	OrderID int
}

// UseUploadDesign stores a design file and, when OrderID is set, links it to
// the order. With an object store the file goes to the bucket and is then
// registered with the API; otherwise it is posted as a multipart body.
func (h *Hooks) UseUploadDesign() *query.Mutation[DesignUpload, api.Upload] {
	return mutation(h, MutUploadDesign, h.uploadDesign, func(in DesignUpload, _ api.Upload) []query.Key {
		if in.OrderID <= 0 {
			return nil
		}
		return []query.Key{Keys.OrderUploads(in.OrderID)}
	})
}

func (h *Hooks) uploadDesign(ctx context.Context, in DesignUpload) (api.Upload, error) {
	upload, objectPath, err := h.storeDesign(ctx, in)
	if err != nil {
		return api.Upload{}, err
	}
	if in.OrderID <= 0 {
		return upload, nil
	}
	_, err = h.api.Orders.LinkUploads(ctx, api.LinkUploadsInput{OrderID: in.OrderID, UploadIDs: []int{upload.ID}})
	if err != nil {
		h.discardUpload(ctx, upload, objectPath)
		return upload, fmt.Errorf("failed to link upload %d to order %d: %w", upload.ID, in.OrderID, err)
	}
	return upload, nil
}

// discardUpload removes an upload that could not be linked. The upload list
// is invalidated whether or not the removal succeeds, since the upload
// existed on the server.
func (h *Hooks) discardUpload(ctx context.Context, upload api.Upload, objectPath string) {
	cleanupCtx := context.WithoutCancel(ctx)
	if _, err := h.api.Uploads.Delete(cleanupCtx, upload.ID); err != nil {
		h.logger.Error().Err(err).Int("upload_id", upload.ID).Msg("Failed to remove unlinked upload")
	}
	if objectPath != "" {
		if err := h.objects.Delete(cleanupCtx, objectPath); err != nil {
			h.logger.Error().Err(err).Str("object", objectPath).Msg("Failed to remove unlinked design file")
		}
	}
	h.client.Invalidate(cleanupCtx, Keys.Uploads())
}

// storeDesign creates the upload and returns the bucket object backing it,
// if any.
func (h *Hooks) storeDesign(ctx context.Context, in DesignUpload) (api.Upload, string, error) {
	if h.objects == nil {
		upload, err := h.api.Uploads.Create(ctx, api.CreateUploadInput{
			FileName:    in.FileName,
			ContentType: in.ContentType,
			Content:     in.Content,
		})
		return upload, "", err
	}

	obj, err := h.objects.Put(ctx, in.FileName, in.ContentType, in.Content)
	if err != nil {
		return api.Upload{}, "", fmt.Errorf("failed to store design file %q: %w", in.FileName, err)
	}
	upload, err := h.api.Uploads.Register(ctx, api.RegisterUploadInput{
		FileName:    obj.FileName,
		ContentType: obj.ContentType,
		FileSize:    obj.Size,
		StoragePath: obj.Path,
		UploadType:  "design",
	})
	if err != nil {
		if delErr := h.objects.Delete(context.WithoutCancel(ctx), obj.Path); delErr != nil {
			h.logger.Error().Err(delErr).Str("object", obj.Path).Msg("Failed to remove unregistered design file")
		}
		return api.Upload{}, "", err
	}
	return upload, obj.Path, nil
}
