package services

import (
	"context"
	"errors"
	"mime/multipart"

	"github.com/kendall-kelly/kendalls-studio-api/utils"
	"github.com/sirupsen/logrus"
)

// ImageService validates uploaded images and keeps them in file storage
type ImageService struct {
	storage FileStorage
}

// NewImageService creates an image service over the given storage backend
func NewImageService(storage FileStorage) *ImageService {
	return &ImageService{storage: storage}
}

// UploadImage validates and stores an image file, returning its storage name
func (s *ImageService) UploadImage(ctx context.Context, fileHeader *multipart.FileHeader) (string, error) {
	if err := utils.ValidateImageFile(fileHeader); err != nil {
		var uploadErr *utils.FileUploadError
		if errors.As(err, &uploadErr) {
			return "", badRequest(uploadErr.Code, "%s", uploadErr.Message)
		}
		return "", err
	}

	data, err := utils.ReadUploadedFile(fileHeader)
	if err != nil {
		return "", err
	}

	name, err := s.storage.Store(ctx, data, utils.ImageExtension(fileHeader.Filename))
	if err != nil {
		return "", err
	}

	logrus.WithFields(logrus.Fields{"name": name, "original": fileHeader.Filename}).Info("Image uploaded")
	return name, nil
}

// DeleteImage removes an image from storage. A missing image is not an error.
func (s *ImageService) DeleteImage(ctx context.Context, name string) error {
	if name == "" {
		return nil
	}

	deleted, err := s.storage.Delete(ctx, name)
	if err != nil {
		return err
	}
	if !deleted {
		logrus.WithField("name", name).Warn("Image already gone from storage")
	}
	return nil
}
