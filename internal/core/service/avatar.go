package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carenet/portal/internal/core/domain"
	"github.com/carenet/portal/internal/core/ports"
	"github.com/carenet/portal/internal/infrastructure/metrics"
)

// DefaultMaxAvatarBytes is the largest avatar accepted for upload.
const DefaultMaxAvatarBytes = 5 << 20

// PreviewPrefix is the route local previews are served under.
const PreviewPrefix = "/previews/"

// Preview is a locally held image shown while its upload is in flight.
type Preview struct {
	ContentType string
	Data        []byte
}

// Previews is the registry of local preview images. Every preview is revoked
// once its upload settles.
type Previews struct {
	mu    sync.RWMutex
	items map[string]Preview
}

func NewPreviews() *Previews {
	return &Previews{items: make(map[string]Preview)}
}

// Create stores data and returns the URL it is served at.
func (p *Previews) Create(contentType string, data []byte) string {
	id := uuid.NewString()
	p.mu.Lock()
	p.items[id] = Preview{ContentType: contentType, Data: data}
	p.mu.Unlock()
	return PreviewPrefix + id
}

func (p *Previews) Get(id string) (Preview, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	pv, ok := p.items[id]
	return pv, ok
}

// Revoke releases the preview behind url.
func (p *Previews) Revoke(url string) {
	p.mu.Lock()
	delete(p.items, strings.TrimPrefix(url, PreviewPrefix))
	p.mu.Unlock()
}

// Len returns the number of live previews.
func (p *Previews) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.items)
}

// avatarHost is a view that owns an avatar field.
type avatarHost interface {
	avatarSlot() *Tentative[string]
	commitAvatar(url string) error
	Report(err error)
	Announce(msg string)
	authFailed(ctx context.Context, err error)
}

// AvatarUploader runs the two-phase avatar change: show a local preview,
// upload, then commit the returned URL or roll back to the previous avatar.
type AvatarUploader struct {
	files    ports.FileGateway
	previews *Previews
	maxBytes int64
	logger   zerolog.Logger
}

func NewAvatarUploader(files ports.FileGateway, previews *Previews, maxBytes int64, logger zerolog.Logger) *AvatarUploader {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxAvatarBytes
	}
	return &AvatarUploader{files: files, previews: previews, maxBytes: maxBytes, logger: logger}
}

var (
	errNotImage = &domain.UploadError{Reason: "type", Message: "Please choose an image file."}
	errTooLarge = &domain.UploadError{Reason: "size", Message: "Image is too large. Max 5 MB."}
	errNoURL    = &domain.UploadError{Reason: "no_url", Message: "Upload response didn't include a URL."}
)

// read checks the file and buffers it so it can back both the preview and
// the upload.
func (u *AvatarUploader) read(f ports.UploadFile) ([]byte, error) {
	if !strings.HasPrefix(strings.ToLower(f.ContentType), "image/") {
		return nil, errNotImage
	}
	if f.Size > u.maxBytes {
		return nil, errTooLarge
	}
	data, err := io.ReadAll(io.LimitReader(f.Data, u.maxBytes+1))
	if err != nil {
		return nil, &domain.UploadError{Reason: "read", Message: "Failed to upload avatar.", Err: err}
	}
	if int64(len(data)) > u.maxBytes {
		return nil, errTooLarge
	}
	return data, nil
}

// Upload replaces the host's avatar with f. The previous avatar stays in
// place on every failure path.
func (u *AvatarUploader) Upload(ctx context.Context, host avatarHost, f ports.UploadFile) (string, error) {
	data, err := u.read(f)
	if err != nil {
		metrics.AvatarUploadsTotal.WithLabelValues("rejected").Inc()
		host.Report(err)
		return "", err
	}

	preview := u.previews.Create(f.ContentType, data)
	defer u.previews.Revoke(preview)

	slot := host.avatarSlot()
	if !slot.Begin(preview) {
		return "", domain.ErrUploadInFlight
	}

	url, err := u.files.Upload(ctx, ports.UploadFile{
		Name:        f.Name,
		ContentType: f.ContentType,
		Size:        int64(len(data)),
		Data:        bytes.NewReader(data),
	})
	if err == nil && url == "" {
		err = errNoURL
	}
	if err != nil {
		slot.Settle()
		outcome := "failed"
		var ue *domain.UploadError
		if !errors.As(err, &ue) {
			err = &domain.UploadError{Reason: "request", Message: "Failed to upload avatar.", Err: err}
		} else if ue.Reason == "no_url" {
			outcome = "no_url"
		}
		metrics.AvatarUploadsTotal.WithLabelValues(outcome).Inc()
		u.logger.Warn().Err(err).Str("file", f.Name).Msg("avatar upload failed")
		host.Report(err)
		host.authFailed(ctx, err)
		return "", err
	}

	if err := host.commitAvatar(url); err != nil {
		slot.Settle()
		return "", fmt.Errorf("commit avatar: %w", err)
	}
	slot.Settle()
	host.Announce(domain.MsgAvatarUpdated)
	metrics.AvatarUploadsTotal.WithLabelValues("ok").Inc()
	u.logger.Info().Str("url", url).Msg("avatar uploaded")
	return url, nil
}
