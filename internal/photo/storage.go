// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vitrine Contributors

// Package photo stores uploaded images under the uploads directory.
//
// Paths handed out by Storage are relative to that directory and use forward
// slashes, so they can be stored in the database and joined onto the public
// /uploads/ prefix.
package photo

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	// Register the PNG decoder for image.Decode.
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/oops"
	"golang.org/x/image/draw"
)

const (
	// MaxUploadBytes bounds a single uploaded image.
	MaxUploadBytes = 5 << 20
	// ProductPhotoSize is the edge of the square product photos, in pixels.
	ProductPhotoSize = 800
	// ProductPhotoQuality is the JPEG quality of product photos.
	ProductPhotoQuality = 85

	avatarDir  = "usuarios"
	productDir = "produtos"
)

// ErrUnsupportedType is returned for uploads that are not JPEG or PNG.
var ErrUnsupportedType = errors.New("unsupported image type")

// ErrTooLarge is returned for uploads over MaxUploadBytes.
var ErrTooLarge = errors.New("image too large")

// Storage writes images below a root directory.
type Storage struct {
	root string
}

// NewStorage creates root if needed and returns a Storage over it.
func NewStorage(root string) (*Storage, error) {
	if root == "" {
		return nil, oops.Code("PHOTO_INVALID_ROOT").Errorf("uploads directory is required")
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, oops.Code("PHOTO_INVALID_ROOT").With("root", root).Wrap(err)
	}
	return &Storage{root: root}, nil
}

// Root returns the uploads directory.
func (s *Storage) Root() string {
	return s.root
}

// abs maps a stored relative path onto the filesystem, refusing paths that
// escape the root.
func (s *Storage) abs(rel string) (string, error) {
	clean := path.Clean("/" + rel)
	if clean == "/" {
		return "", oops.Code("PHOTO_INVALID_PATH").With("path", rel).Errorf("empty path")
	}
	return filepath.Join(s.root, filepath.FromSlash(clean[1:])), nil
}

// readUpload reads at most MaxUploadBytes and sniffs the content type.
func readUpload(r io.Reader) ([]byte, string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadBytes+1))
	if err != nil {
		return nil, "", oops.Code("PHOTO_READ_FAILED").Wrap(err)
	}
	if len(data) > MaxUploadBytes {
		return nil, "", oops.Code("PHOTO_TOO_LARGE").With("max_bytes", MaxUploadBytes).Wrap(ErrTooLarge)
	}
	var ext string
	switch http.DetectContentType(data) {
	case "image/jpeg":
		ext = "jpg"
	case "image/png":
		ext = "png"
	default:
		return nil, "", oops.Code("PHOTO_UNSUPPORTED_TYPE").Wrap(ErrUnsupportedType)
	}
	return data, ext, nil
}

func (s *Storage) write(rel string, data []byte) error {
	dst, err := s.abs(rel)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return oops.Code("PHOTO_WRITE_FAILED").With("path", rel).Wrap(err)
	}
	if err := os.WriteFile(dst, data, 0o640); err != nil {
		return oops.Code("PHOTO_WRITE_FAILED").With("path", rel).Wrap(err)
	}
	return nil
}

// SaveAvatar stores a JPEG or PNG profile picture for userID as-is and
// returns its relative path.
func (s *Storage) SaveAvatar(userID int64, r io.Reader) (string, error) {
	data, ext, err := readUpload(r)
	if err != nil {
		return "", err
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return "", oops.Code("PHOTO_UNSUPPORTED_TYPE").With("reason", err.Error()).Wrap(ErrUnsupportedType)
	}
	rel := fmt.Sprintf("%s/%d_%s.%s", avatarDir, userID, uuid.NewString(), ext)
	if err := s.write(rel, data); err != nil {
		return "", err
	}
	return rel, nil
}

// ProductDir returns the relative directory holding a product's photos.
func ProductDir(productID int64) string {
	return fmt.Sprintf("%s/%06d", productDir, productID)
}

// nextProductNumber returns one past the highest photo number on disk.
func (s *Storage) nextProductNumber(productID int64) (int, error) {
	dir, err := s.abs(ProductDir(productID))
	if err != nil {
		return 0, err
	}
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return 1, nil
	}
	if err != nil {
		return 0, oops.Code("PHOTO_LIST_FAILED").With("product_id", productID).Wrap(err)
	}
	highest := 0
	for _, e := range entries {
		n, err := strconv.Atoi(strings.TrimSuffix(e.Name(), ".jpg"))
		if err != nil || !strings.HasSuffix(e.Name(), ".jpg") {
			continue
		}
		highest = max(highest, n)
	}
	return highest + 1, nil
}

// SaveProductPhoto crops the image to a centered square, scales it to
// ProductPhotoSize and stores it as the next numbered JPEG of the product.
func (s *Storage) SaveProductPhoto(productID int64, r io.Reader) (string, error) {
	data, _, err := readUpload(r)
	if err != nil {
		return "", err
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", oops.Code("PHOTO_UNSUPPORTED_TYPE").With("reason", err.Error()).Wrap(ErrUnsupportedType)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, SquareThumbnail(src, ProductPhotoSize), &jpeg.Options{Quality: ProductPhotoQuality}); err != nil {
		return "", oops.Code("PHOTO_ENCODE_FAILED").Wrap(err)
	}

	n, err := s.nextProductNumber(productID)
	if err != nil {
		return "", err
	}
	rel := fmt.Sprintf("%s/%03d.jpg", ProductDir(productID), n)
	if err := s.write(rel, buf.Bytes()); err != nil {
		return "", err
	}
	return rel, nil
}

// SquareThumbnail crops the largest centered square out of src and scales it
// to size×size.
func SquareThumbnail(src image.Image, size int) *image.RGBA {
	b := src.Bounds()
	side := min(b.Dx(), b.Dy())
	x0 := b.Min.X + (b.Dx()-side)/2
	y0 := b.Min.Y + (b.Dy()-side)/2
	crop := image.Rect(x0, y0, x0+side, y0+side)

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, crop, draw.Src, nil)
	return dst
}

// Remove deletes a stored file. A missing file is not an error.
func (s *Storage) Remove(rel string) error {
	p, err := s.abs(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return oops.Code("PHOTO_REMOVE_FAILED").With("path", rel).Wrap(err)
	}
	return nil
}

// RemoveProduct deletes every photo of a product.
func (s *Storage) RemoveProduct(productID int64) error {
	p, err := s.abs(ProductDir(productID))
	if err != nil {
		return err
	}
	if err := os.RemoveAll(p); err != nil {
		return oops.Code("PHOTO_REMOVE_FAILED").With("product_id", productID).Wrap(err)
	}
	return nil
}

// ProductPhotos lists the stored photo paths of a product in file order.
func (s *Storage) ProductPhotos(productID int64) ([]string, error) {
	dir, err := s.abs(ProductDir(productID))
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, oops.Code("PHOTO_LIST_FAILED").With("product_id", productID).Wrap(err)
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".jpg") {
			out = append(out, ProductDir(productID)+"/"+e.Name())
		}
	}
	slices.Sort(out)
	return out, nil
}
