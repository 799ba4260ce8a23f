// QR Wizard - Trackable QR Code Links and Scan Analytics
// Copyright 2026 Soerfi
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soerfi/qr-wizard

package api

import (
	"time"

	"github.com/soerfi/qr-wizard/internal/auth"
	"github.com/soerfi/qr-wizard/internal/config"
	"github.com/soerfi/qr-wizard/internal/database"
	"github.com/soerfi/qr-wizard/internal/geo"
	"github.com/soerfi/qr-wizard/internal/identity"
	"github.com/soerfi/qr-wizard/internal/logging"
	"github.com/soerfi/qr-wizard/internal/middleware"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// Handler holds the dependencies shared by all HTTP handlers.
type Handler struct {
	db     *database.DB
	config *config.Config
	auth   *auth.Service
	geo    geo.Resolver
	hasher *identity.Hasher
	secLog *logging.SecurityLogger

	perfMon   *middleware.PerformanceMonitor
	startTime time.Time
}

// NewHandler creates the handler set. The geo resolver may be a noop
// resolver; it must not be nil.
func NewHandler(db *database.DB, cfg *config.Config, authSvc *auth.Service, resolver geo.Resolver) *Handler {
	return &Handler{
		db:        db,
		config:    cfg,
		auth:      authSvc,
		geo:       resolver,
		hasher:    identity.NewHasher(cfg.Privacy.IPHashSalt),
		secLog:    logging.NewSecurityLogger(),
		perfMon:   middleware.NewPerformanceMonitor(1000, time.Second),
		startTime: time.Now(),
	}
}
