package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"bitbucket.org/mmagritech/farm_backend/config"
	"bitbucket.org/mmagritech/farm_backend/mobilesync"
	"bitbucket.org/mmagritech/farm_backend/models"
	"bitbucket.org/mmagritech/farm_backend/utils"
)

const maxUploadSizeBytes int64 = 5 * 1024 * 1024

var imageMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// livestockPhotoHandler accepts a multipart photo for an animal the actor
// owns, stores the original plus a thumbnail in GCS, and records the URL on
// the livestock row without moving its sync timestamp.
func livestockPhotoHandler(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		userId, ok := utils.GetUserIdFromContext(ctx)
		if !ok || userId == 0 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		role, _ := utils.GetRoleFromContext(ctx)

		clientId := strings.TrimSpace(c.PostForm("livestockClientId"))
		if !utils.IsValidClientId(clientId) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "livestockClientId is required"})
			return
		}

		db := config.GetDB()
		resolver := mobilesync.NewResolver(db)
		livestockId, farmId, err := resolver.ResolveOwned(ctx, mobilesync.EntityLivestock, clientId)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown livestock"})
			return
		}
		scope, err := mobilesync.BuildScope(ctx, db, mobilesync.Actor{ID: userId, Role: role})
		if err != nil {
			config.LogError(logger, "uploads.go", "livestockPhotoHandler", clientId, nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
			return
		}
		if !scope.HasFarm(farmId) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown livestock"})
			return
		}

		file, header, err := c.Request.FormFile("photo")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "photo file is required"})
			return
		}
		defer file.Close()
		if header.Size > maxUploadSizeBytes {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file size exceeds 5MB limit"})
			return
		}
		mime := header.Header.Get("Content-Type")
		if !imageMimeTypes[mime] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported image type"})
			return
		}

		data, err := io.ReadAll(io.LimitReader(file, maxUploadSizeBytes+1))
		if err != nil || int64(len(data)) > maxUploadSizeBytes {
			c.JSON(http.StatusBadRequest, gin.H{"error": "could not read photo"})
			return
		}

		objectKey := path.Join("livestock", clientId, utils.GenerateUniqueFilename()+".jpg")
		if err := utils.UploadBytesToGCS(ctx, objectKey, data, mime); err != nil {
			config.LogError(logger, "uploads.go", "livestockPhotoHandler", objectKey, nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
			return
		}

		thumbnailKey, err := createThumbnail(ctx, objectKey, data)
		if err != nil {
			// The original landed; a missing thumbnail is not fatal.
			config.LogError(logger, "uploads.go", "livestockPhotoHandler", objectKey, nil, err)
		}

		url := utils.GCSObjectURL(objectKey)
		if err := models.SetLivestockPhoto(ctx, livestockId, url); err != nil {
			config.LogError(logger, "uploads.go", "livestockPhotoHandler", clientId, nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
			return
		}

		resp := gin.H{"photoUrl": url}
		if thumbnailKey != "" {
			resp["thumbnailUrl"] = utils.GCSObjectURL(thumbnailKey)
		}
		c.JSON(http.StatusOK, gin.H{"data": resp})
	}
}

func createThumbnail(ctx context.Context, objectKey string, data []byte) (string, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	thumbnail := imaging.Resize(img, 200, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumbnail, imaging.JPEG); err != nil {
		return "", err
	}

	thumbnailKey := thumbnailObjectKey(objectKey)
	if err := utils.UploadBytesToGCS(ctx, thumbnailKey, buf.Bytes(), "image/jpeg"); err != nil {
		return "", err
	}
	return thumbnailKey, nil
}

func thumbnailObjectKey(objectKey string) string {
	dir := path.Dir(objectKey)
	filename := path.Base(objectKey)
	return path.Join(dir, "thumbnails", filename)
}
