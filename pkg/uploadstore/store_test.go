package uploadstore_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/ShotaGhoona/acrique-v1-sub002/pkg/uploadstore"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockGCSWriter buffers writes; closing it after its context is cancelled
// discards the object the way an aborted upload does.
type mockGCSWriter struct {
	ctx    context.Context
	obj    *mockGCSObject
	buf    bytes.Buffer
	closed bool
}

func (w *mockGCSWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, errors.New("write on closed writer")
	}
	return w.buf.Write(p)
}

func (w *mockGCSWriter) Close() error {
	if w.closed {
		return errors.New("already closed")
	}
	w.closed = true
	if err := w.ctx.Err(); err != nil {
		return err
	}
	w.obj.bucket.commit(w.obj.name, w.obj.contentType, w.buf.Bytes())
	return nil
}

type mockGCSObject struct {
	bucket      *mockGCSBucket
	name        string
	contentType string
}

func (o *mockGCSObject) NewWriter(ctx context.Context, contentType string) uploadstore.GCSWriter {
	o.contentType = contentType
	return &mockGCSWriter{ctx: ctx, obj: o}
}

func (o *mockGCSObject) Delete(_ context.Context) error {
	o.bucket.mu.Lock()
	defer o.bucket.mu.Unlock()
	if _, ok := o.bucket.data[o.name]; !ok {
		return errors.New("object doesn't exist")
	}
	delete(o.bucket.data, o.name)
	return nil
}

type storedObject struct {
	contentType string
	data        []byte
}

type mockGCSBucket struct {
	mu   sync.Mutex
	data map[string]storedObject
}

func (b *mockGCSBucket) Object(name string) uploadstore.GCSObjectHandle {
	return &mockGCSObject{bucket: b, name: name}
}

func (b *mockGCSBucket) commit(name, contentType string, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data[name] = storedObject{contentType: contentType, data: append([]byte(nil), data...)}
}

type mockGCSClient struct {
	bucket *mockGCSBucket
	names  []string
}

func (c *mockGCSClient) Bucket(name string) uploadstore.GCSBucketHandle {
	c.names = append(c.names, name)
	return c.bucket
}

func newMockGCSClient() *mockGCSClient {
	return &mockGCSClient{bucket: &mockGCSBucket{data: map[string]storedObject{}}}
}

func TestNew_Validation(t *testing.T) {
	_, err := uploadstore.New(nil, uploadstore.Config{BucketName: "designs"}, zerolog.Nop())
	assert.Error(t, err)

	_, err = uploadstore.New(newMockGCSClient(), uploadstore.Config{}, zerolog.Nop())
	assert.Error(t, err)
}

func TestGCSStore_Put(t *testing.T) {
	ctx := context.Background()

	t.Run("Stores the file under a dated unique name", func(t *testing.T) {
		// Arrange
		client := newMockGCSClient()
		store, err := uploadstore.New(client, uploadstore.Config{BucketName: "designs", ObjectPrefix: "uploads"}, zerolog.Nop())
		require.NoError(t, err)

		// Act
		obj, err := store.Put(ctx, "Logo.AI", "application/postscript", strings.NewReader("vector-data"))

		// Assert
		require.NoError(t, err)
		assert.Equal(t, []string{"designs"}, client.names)
		assert.True(t, strings.HasPrefix(obj.Path, "uploads/"))
		assert.True(t, strings.HasSuffix(obj.Path, ".ai"))
		assert.Equal(t, int64(len("vector-data")), obj.Size)
		assert.Equal(t, "Logo.AI", obj.FileName)
		stored, ok := client.bucket.data[obj.Path]
		require.True(t, ok)
		assert.Equal(t, "vector-data", string(stored.data))
		assert.Equal(t, "application/postscript", stored.contentType)
	})

	t.Run("Rejects unsupported types before writing", func(t *testing.T) {
		client := newMockGCSClient()
		store, err := uploadstore.New(client, uploadstore.Config{BucketName: "designs"}, zerolog.Nop())
		require.NoError(t, err)

		_, err = store.Put(ctx, "setup.exe", "", strings.NewReader("x"))

		assert.ErrorIs(t, err, uploadstore.ErrUnsupportedType)
		assert.Empty(t, client.names)
	})

	t.Run("Aborts oversized files", func(t *testing.T) {
		// Arrange
		client := newMockGCSClient()
		store, err := uploadstore.New(client, uploadstore.Config{BucketName: "designs", MaxSize: 4}, zerolog.Nop())
		require.NoError(t, err)

		// Act
		_, err = store.Put(ctx, "art.pdf", "application/pdf", strings.NewReader("too large"))

		// Assert
		assert.ErrorIs(t, err, uploadstore.ErrTooLarge)
		assert.Empty(t, client.bucket.data, "an aborted upload must not leave an object")
	})
}

func TestGCSStore_Delete(t *testing.T) {
	// Arrange
	ctx := context.Background()
	client := newMockGCSClient()
	store, err := uploadstore.New(client, uploadstore.Config{BucketName: "designs"}, zerolog.Nop())
	require.NoError(t, err)
	obj, err := store.Put(ctx, "art.png", "image/png", strings.NewReader("png"))
	require.NoError(t, err)

	// Act
	err = store.Delete(ctx, obj.Path)

	// Assert
	require.NoError(t, err)
	assert.Empty(t, client.bucket.data)
	assert.Error(t, store.Delete(ctx, obj.Path))
}
