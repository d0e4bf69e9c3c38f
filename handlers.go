package main

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"fuelsnap/pkg/extract"
	"fuelsnap/pkg/pipeline"
)

// extractor is what the handler needs from the pipeline; tests substitute a
// stub.
type extractor interface {
	Extract(ctx context.Context, photos [][]byte) (pipeline.Result, error)
}

type server struct {
	pipe          extractor
	logger        *zap.Logger
	maxPhotos     int
	maxPhotoBytes int64
}

func (s *server) setupRoutes(r *gin.Engine) {
	r.GET("/healthz", s.healthHandler)
	r.POST("/api/extract", s.extractHandler)
}

func (s *server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// fieldResponse layers the presentation band over the raw confidence; the
// consumer renders each field independently editable.
type fieldResponse struct {
	Value      any                    `json:"value"`
	Confidence float64                `json:"confidence"`
	Band       extract.ConfidenceBand `json:"band"`
}

func floatField(f extract.FieldValue[float64]) fieldResponse {
	r := fieldResponse{Confidence: f.Confidence, Band: extract.Band(f.Confidence)}
	if f.Value != nil {
		r.Value = *f.Value
	}
	return r
}

func intField(f extract.FieldValue[int64]) fieldResponse {
	r := fieldResponse{Confidence: f.Confidence, Band: extract.Band(f.Confidence)}
	if f.Value != nil {
		r.Value = *f.Value
	}
	return r
}

// extractHandler accepts 1..maxPhotos images under the multipart field
// "photos" and returns the extracted field set. Partially-null fields are a
// normal response (the consumer offers manual entry); only a request where
// no photo produced any OCR result is an error.
func (s *server) extractHandler(c *gin.Context) {
	reqID := uuid.NewString()

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart form required"})
		return
	}
	files := form.File["photos"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one photo required"})
		return
	}
	if len(files) > s.maxPhotos {
		c.JSON(http.StatusBadRequest, gin.H{"error": "too many photos"})
		return
	}

	photos := make([][]byte, 0, len(files))
	for _, fh := range files {
		if fh.Size > s.maxPhotoBytes {
			c.JSON(http.StatusBadRequest, gin.H{"error": "photo too large"})
			return
		}
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable photo"})
			return
		}
		data, err := io.ReadAll(io.LimitReader(f, s.maxPhotoBytes+1))
		f.Close()
		if err != nil || int64(len(data)) > s.maxPhotoBytes {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable photo"})
			return
		}
		photos = append(photos, data)
	}

	res, err := s.pipe.Extract(c.Request.Context(), photos)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, pipeline.ErrNoResults) || errors.Is(err, pipeline.ErrNoPhotos) {
			status = http.StatusUnprocessableEntity
		}
		s.logger.Warn("extract failed", zap.String("request_id", reqID), zap.Error(err))
		c.JSON(status, gin.H{
			"request_id": reqID,
			"error":      "extraction failed, request clearer photos",
			"warnings":   res.Warnings,
		})
		return
	}

	allNull := res.Pump.Gallons.Value == nil && res.Pump.Total.Value == nil &&
		res.Pump.PricePerGallon.Value == nil && res.Odometer.Miles.Value == nil
	if allNull {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"request_id": reqID,
			"error":      "extraction failed, request clearer photos",
			"warnings":   res.Warnings,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"request_id": reqID,
		"pump": gin.H{
			"gallons":          floatField(res.Pump.Gallons),
			"price_per_gallon": floatField(res.Pump.PricePerGallon),
			"total":            floatField(res.Pump.Total),
		},
		"odometer": gin.H{
			"miles": intField(res.Odometer.Miles),
		},
		"warnings": res.Warnings,
	})
}
