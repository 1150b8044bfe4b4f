// Copyright 2025 TrackForge Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/trackforge/go-video-gen/internal/core/commands"
	"github.com/trackforge/go-video-gen/internal/telemetry"
)

func main() {
	telemetry.SetupLogging()
	slog.Info("Logging initialized")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	config := GetConfig()

	shutdownTelemetry, err := telemetry.SetupOpenTelemetry(ctx, config)
	if err != nil {
		slog.Error("Failed to setup OpenTelemetry", "error", err)
		log.Fatal(err)
	}
	slog.Info("Tracing initialized")

	InitState(ctx)
	slog.Info("Initialized State")

	r := gin.Default()
	r.Use(otelgin.Middleware(config.Application.Name))
	r.Use(cors.Default())

	apiV1 := r.Group("/api/v1")
	{
		VideoRouter(apiV1)
		AudioUpload(apiV1)
		Dashboard(apiV1)
	}

	srv := &http.Server{
		Addr:    ":8080",
		Handler: r,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to listen", "error", err)
		}
	}()
	slog.Info("Server Ready on port 8080")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutdown Server ...")

	// In-flight requests and telemetry get five seconds to drain.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server Shutdown Failed", "error", err)
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		slog.Error("Telemetry Shutdown Failed", "error", err)
	}
	state.cloud.Close()

	log.Println("Server exiting")
}

// VideoRouter sets up the routes for browsing the video catalog.
func VideoRouter(r *gin.RouterGroup) {
	videos := r.Group("/videos")
	{
		videos.GET("", func(c *gin.Context) {
			count, err := strconv.Atoi(c.DefaultQuery("count", "25"))
			if err != nil || count < 1 {
				count = 25
			}
			out, err := state.videoService.List(c, count)
			if err != nil {
				slog.Error("failed to list videos", "error", err)
				c.Status(http.StatusInternalServerError)
				return
			}
			c.JSON(http.StatusOK, out)
		})

		videos.GET("/:id", func(c *gin.Context) {
			id := c.Param("id")
			out, err := state.videoService.Get(c, id)
			if err != nil {
				c.Status(http.StatusNotFound)
				return
			}
			c.JSON(http.StatusOK, out)
		})

		// Mint a short-lived signed URL so the browser can stream the
		// finished video straight from the output bucket.
		videos.GET("/:id/stream", func(c *gin.Context) {
			id := c.Param("id")
			video, err := state.videoService.Get(c, id)
			if err != nil {
				c.JSON(http.StatusNotFound, gin.H{"error": "Video not found"})
				return
			}
			signedURL, err := state.videoService.GenerateSignedURL(c, video.VideoUrl, 15*time.Minute)
			if err != nil {
				slog.Error("failed to sign streaming URL", "video", id, "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not generate streaming URL"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"url": signedURL})
		})
	}
}

// AudioUpload sets up the route that accepts track uploads. Each file lands
// in the audio inbox bucket with its generation options as object metadata,
// which triggers the Pub/Sub notification the pipeline listens for.
func AudioUpload(r *gin.RouterGroup) {
	upload := r.Group("/audio")
	{
		upload.POST("", func(c *gin.Context) {
			form, err := c.MultipartForm()
			if err != nil {
				c.String(http.StatusBadRequest, "get form err: %s", err.Error())
				return
			}
			files := form.File["files"]
			bucket := state.cloud.StorageClient.Bucket(state.config.Storage.AudioInboxBucket)

			for _, file := range files {
				localPath := filepath.Join(os.TempDir(), filepath.Base(file.Filename))
				if err := c.SaveUploadedFile(file, localPath); err != nil {
					c.String(http.StatusBadRequest, "upload file err: %s", err.Error())
					return
				}

				content, err := os.ReadFile(localPath)
				if err != nil {
					slog.Error("failed to read uploaded file", "error", err)
					c.Status(http.StatusInternalServerError)
					return
				}
				wc := bucket.Object(file.Filename).NewWriter(c)
				wc.ContentType = file.Header.Get("Content-Type")
				wc.Metadata = uploadMetadata(c)
				if _, err = wc.Write(content); err != nil {
					c.String(http.StatusInternalServerError, "write file to bucket err: %s", err.Error())
					return
				}
				if err := wc.Close(); err != nil {
					slog.Warn("failed to close bucket handle", "error", err)
				}
				if err := os.Remove(localPath); err != nil {
					slog.Warn("failed to remove file from server", "error", err)
				}
			}
			c.String(http.StatusOK, "Uploaded successfully %d files.", len(files))
		})
	}
}

// uploadMetadata copies the recognized generation options from the upload
// form onto the GCS object, where the trigger reader picks them up.
func uploadMetadata(c *gin.Context) map[string]string {
	meta := make(map[string]string)
	for _, key := range []string{commands.MetaKeyTitle, commands.MetaKeyEffects, commands.MetaKeyThumbnailStyle} {
		if v := c.PostForm(key); v != "" {
			meta[key] = v
		}
	}
	return meta
}

// Dashboard exposes basic catalog statistics.
func Dashboard(r *gin.RouterGroup) {
	stats := r.Group("/stats")
	{
		stats.GET("", func(c *gin.Context) {
			recent, err := state.videoService.List(c, 100)
			if err != nil {
				slog.Error("failed to load stats", "error", err)
				c.Status(http.StatusInternalServerError)
				return
			}
			var totalRender, totalLength float64
			for _, v := range recent {
				totalRender += v.RenderSeconds
				totalLength += v.LengthSeconds
			}
			c.JSON(http.StatusOK, gin.H{
				"recent_count":         len(recent),
				"total_length_seconds": totalLength,
				"total_render_seconds": totalRender,
			})
		})
	}
}
