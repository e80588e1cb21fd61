// Package main is the entry point for the panoview panorama viewer.
package main

import (
	"fmt"
	"os"

	"github.com/sqweek/dialog"
	"go.uber.org/zap"

	"github.com/Faultbox/panoview/internal/config"
	"github.com/Faultbox/panoview/internal/logger"
	"github.com/Faultbox/panoview/internal/viewer"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== panoview ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	path := ""
	if args := config.Args(); len(args) > 0 {
		path = args[0]
	} else {
		path = chooseFile()
	}

	v, err := viewer.New(cfg, logger.Named("viewer"))
	if err != nil {
		logger.Error("failed to create viewer", zap.Error(err))
		os.Exit(1)
	}
	defer v.Close()

	// A missing or unreadable image leaves the placeholder up; files can
	// still be dropped onto the window.
	if path != "" {
		if err := v.Open(path); err != nil {
			logger.Error("failed to open image", zap.Error(err))
		}
	}

	if err := v.Run(); err != nil {
		logger.Error("viewer error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("viewer closed normally")
}

// chooseFile asks for an image with the native file dialog. It returns ""
// when the user cancels.
func chooseFile() string {
	filename, err := dialog.File().
		Filter("Images", "jpg", "jpeg", "png", "gif", "webp", "bmp", "tif", "tiff", "tga").
		Filter("All Files", "*").
		Title("Open Panorama").
		Load()
	if err != nil {
		if err != dialog.ErrCancelled {
			logger.Warn("file dialog failed", zap.Error(err))
		}
		return ""
	}
	return filename
}
