package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileState(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "catalog_state_test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	tests := []struct {
		name     string
		filename string
		data     []byte
	}{
		{
			name:     "basic catalog round trip",
			filename: "catalog.json",
			data:     []byte(`{"categories": [{"name": "Verduras de Raíz", "ingredients": ["Zanahoria"]}]}`),
		},
		{
			name:     "nested directory is created",
			filename: filepath.Join("nested", "dir", "catalog.json"),
			data:     []byte(`{"categories": []}`),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := NewFileState(filepath.Join(tmpDir, tt.filename))
			ctx := context.Background()

			require.NoError(t, state.Save(ctx, tt.data))

			loaded, err := state.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.data, loaded)
		})
	}

	t.Run("save replaces previous content", func(t *testing.T) {
		state := NewFileState(filepath.Join(tmpDir, "replace.json"))
		require.NoError(t, state.Save(context.Background(), []byte("first")))
		require.NoError(t, state.Save(context.Background(), []byte("second")))

		loaded, err := state.Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "second", string(loaded))

		entries, err := os.ReadDir(tmpDir)
		require.NoError(t, err)
		for _, e := range entries {
			assert.NotContains(t, e.Name(), ".tmp")
		}
	})

	t.Run("load nonexistent catalog", func(t *testing.T) {
		state := NewFileState(filepath.Join(tmpDir, "nonexistent.json"))
		_, err := state.Load(context.Background())
		assert.Error(t, err)
		assert.True(t, os.IsNotExist(err))
		assert.True(t, IsNotFound(err))
	})
}

func TestTestState(t *testing.T) {
	ctx := context.Background()

	t.Run("empty state reports not found until saved", func(t *testing.T) {
		state := NewEmptyTestState()
		_, err := state.Load(ctx)
		assert.True(t, IsNotFound(err))

		require.NoError(t, state.Save(ctx, []byte("{}")))
		data, err := state.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, "{}", string(data))
		assert.Equal(t, 1, state.Saves())
	})

	t.Run("failing state", func(t *testing.T) {
		state := NewTestStateWithError()
		_, err := state.Load(ctx)
		assert.Error(t, err)
		assert.False(t, IsNotFound(err))
		assert.Error(t, state.Save(ctx, []byte("{}")))
	})
}

type fakeS3 struct {
	objects map[string][]byte
	getErr  error
	putErr  error
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	data, ok := f.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*in.Bucket+"/"+*in.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func TestS3State(t *testing.T) {
	ctx := context.Background()

	t.Run("missing key maps to not found", func(t *testing.T) {
		state := NewS3State(&fakeS3{objects: map[string][]byte{}}, "bucket", "catalog.json")
		_, err := state.Load(ctx)
		require.Error(t, err)
		assert.True(t, IsNotFound(err))
	})

	t.Run("save then load", func(t *testing.T) {
		api := &fakeS3{objects: map[string][]byte{}}
		state := NewS3State(api, "bucket", "catalog.json")

		require.NoError(t, state.Save(ctx, []byte(`{"aliases": []}`)))
		data, err := state.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, `{"aliases": []}`, string(data))
	})

	t.Run("transport errors are wrapped", func(t *testing.T) {
		boom := errors.New("boom")
		state := NewS3State(&fakeS3{getErr: boom, putErr: boom}, "bucket", "catalog.json")

		_, err := state.Load(ctx)
		assert.ErrorIs(t, err, boom)
		assert.False(t, IsNotFound(err))
		assert.ErrorIs(t, state.Save(ctx, []byte("{}")), boom)
	})
}
