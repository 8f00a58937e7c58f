package handlers

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	applog "webshop/internal/log"
)

const maxUploadBytes = 5 << 20

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// UploadHandler stores product images on local disk and serves them back.
type UploadHandler struct {
	Dir string
}

func (h *UploadHandler) Image(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file is required"})
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedImageExts[ext] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unsupported file type"})
	}
	if fh.Size > maxUploadBytes {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file too large (max 5MB)"})
	}

	src, err := fh.Open()
	if err != nil {
		applog.Error(c, "upload.open", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "upload failed"})
	}
	defer src.Close()

	// sniff the real content, extensions lie
	head := make([]byte, 512)
	n, err := src.Read(head)
	if err != nil && err != io.EOF {
		applog.Error(c, "upload.read", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "upload failed"})
	}
	if !strings.HasPrefix(http.DetectContentType(head[:n]), "image/") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file is not an image"})
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		applog.Error(c, "upload.seek", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "upload failed"})
	}

	if err := os.MkdirAll(h.Dir, 0o755); err != nil {
		applog.Error(c, "upload.mkdir", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "upload failed"})
	}

	name := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(h.Dir, name))
	if err != nil {
		applog.Error(c, "upload.create", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "upload failed"})
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		applog.Error(c, "upload.write", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "upload failed"})
	}

	applog.Audit(c, "upload.image", map[string]any{"filename": name, "bytes": fh.Size})
	return c.JSON(fiber.Map{
		"filename": name,
		"url":      "/upload/uploads/" + name,
	})
}

func (h *UploadHandler) Serve(c *fiber.Ctx) error {
	name := c.Params("filename")
	// reject any path component tricks before touching the filesystem
	if name == "" || name != filepath.Base(name) || strings.Contains(name, "..") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid filename"})
	}
	path := filepath.Join(h.Dir, name)
	if _, err := os.Stat(path); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "file not found"})
	}
	return c.SendFile(path)
}
