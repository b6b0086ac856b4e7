package minio_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/slok/scraper/internal/artifact"
	"github.com/slok/scraper/internal/artifact/minio"
)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	args := m.Called(ctx, bucketName)
	return args.Bool(0), args.Error(1)
}

func (m *mockClient) MakeBucket(ctx context.Context, bucketName string, opts miniogo.MakeBucketOptions) error {
	args := m.Called(ctx, bucketName, opts)
	return args.Error(0)
}

func (m *mockClient) FPutObject(ctx context.Context, bucketName, objectName, filePath string, opts miniogo.PutObjectOptions) (miniogo.UploadInfo, error) {
	args := m.Called(ctx, bucketName, objectName, filePath, opts)
	return miniogo.UploadInfo{}, args.Error(0)
}

func TestStoreSave(t *testing.T) {
	tests := map[string]struct {
		mock   func(m *mockClient)
		expRef string
		expErr bool
	}{
		"Saving should upload the file under the task key.": {
			mock: func(m *mockClient) {
				m.On("BucketExists", mock.Anything, "shots").Once().Return(true, nil)
				m.On("FPutObject", mock.Anything, "shots", "task-1/shot.png", "/tmp/x/shot.png", miniogo.PutObjectOptions{ContentType: "image/png"}).Once().Return(nil)
			},
			expRef: "s3://shots/task-1/shot.png",
		},

		"A missing bucket should be created.": {
			mock: func(m *mockClient) {
				m.On("BucketExists", mock.Anything, "shots").Once().Return(false, nil)
				m.On("MakeBucket", mock.Anything, "shots", mock.Anything).Once().Return(nil)
				m.On("FPutObject", mock.Anything, "shots", "task-1/shot.png", mock.Anything, mock.Anything).Once().Return(nil)
			},
			expRef: "s3://shots/task-1/shot.png",
		},

		"An upload failure should fail.": {
			mock: func(m *mockClient) {
				m.On("BucketExists", mock.Anything, "shots").Once().Return(true, nil)
				m.On("FPutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Once().Return(fmt.Errorf("something"))
			},
			expErr: true,
		},

		"A bucket check failure should fail.": {
			mock: func(m *mockClient) {
				m.On("BucketExists", mock.Anything, "shots").Once().Return(false, fmt.Errorf("something"))
			},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			m := &mockClient{}
			test.mock(m)

			s, err := minio.NewStore(minio.StoreConfig{Client: m, Bucket: "shots"})
			require.NoError(err)

			ref, err := s.Save(context.Background(), "task-1", "/tmp/x/shot.png")
			if test.expErr {
				assert.True(errors.Is(err, artifact.ErrArtifact))
			} else {
				require.NoError(err)
				assert.Equal(test.expRef, ref)
			}

			m.AssertExpectations(t)
		})
	}
}

func TestStoreChecksBucketOnce(t *testing.T) {
	m := &mockClient{}
	m.On("BucketExists", mock.Anything, "shots").Once().Return(true, nil)
	m.On("FPutObject", mock.Anything, "shots", mock.Anything, mock.Anything, mock.Anything).Twice().Return(nil)

	s, err := minio.NewStore(minio.StoreConfig{Client: m, Bucket: "shots"})
	require.NoError(t, err)

	_, err = s.Save(context.Background(), "task-1", "/tmp/a.png")
	require.NoError(t, err)
	_, err = s.Save(context.Background(), "task-2", "/tmp/b.png")
	require.NoError(t, err)

	m.AssertExpectations(t)
}

func TestNewStoreRequiresEndpoint(t *testing.T) {
	_, err := minio.NewStore(minio.StoreConfig{})
	assert.Error(t, err)
}
