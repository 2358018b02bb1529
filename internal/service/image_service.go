package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/peerroom-api/internal/models"
	appErrors "github.com/noah-isme/peerroom-api/pkg/errors"
	"github.com/noah-isme/peerroom-api/pkg/jobs"
	"github.com/noah-isme/peerroom-api/pkg/storage"
)

const (
	thumbnailJobType = "room_thumbnail"
	thumbnailSize    = 256
)

var allowedImageExt = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true}

type fileStore interface {
	Save(key string, data []byte) (string, error)
	SaveStream(key string, r io.Reader, limit int64) (int64, error)
	Open(key string) (io.ReadCloser, error)
}

type urlSigner interface {
	Generate(key string) (string, time.Time, error)
	Parse(token string) (string, time.Time, error)
}

type roomImageSetter interface {
	GetRoom(ctx context.Context, id string) (*models.Room, error)
	SetRoomImage(ctx context.Context, id, image string) (*models.Room, error)
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

type thumbnailPayload struct {
	RoomID      string
	OriginalKey string
}

// ImageServiceConfig tunes upload handling. FilesPath prefixes signed download
// links and RoomsPath prefixes the stable room image links.
type ImageServiceConfig struct {
	MaxFileSize int64
	FilesPath   string
	RoomsPath   string
}

// UploadResult describes an accepted upload. OriginalURL is a signed link that
// expires with the signer TTL.
type UploadResult struct {
	RoomID      string `json:"room_id"`
	OriginalKey string `json:"original_key"`
	OriginalURL string `json:"original_url,omitempty"`
	JobID       string `json:"job_id"`
}

// ImageService accepts room images and renders thumbnails on the job queue.
type ImageService struct {
	rooms  roomImageSetter
	files  fileStore
	signer urlSigner
	queue  jobEnqueuer
	logger *zap.Logger
	cfg    ImageServiceConfig
}

// NewImageService constructs the service. The queue may be attached later with SetQueue.
func NewImageService(rooms roomImageSetter, files fileStore, signer urlSigner, logger *zap.Logger, cfg ImageServiceConfig) *ImageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.FilesPath == "" {
		cfg.FilesPath = "/api/v1/files/"
	}
	if cfg.RoomsPath == "" {
		cfg.RoomsPath = "/api/v1/rooms/"
	}
	return &ImageService{rooms: rooms, files: files, signer: signer, logger: logger, cfg: cfg}
}

// SetQueue attaches the queue that runs thumbnail jobs.
func (s *ImageService) SetQueue(queue jobEnqueuer) {
	s.queue = queue
}

// AttachImage stores the original upload and schedules thumbnail generation.
func (s *ImageService) AttachImage(ctx context.Context, roomID, filename string, r io.Reader) (*UploadResult, error) {
	ext := strings.ToLower(path.Ext(filename))
	if !allowedImageExt[ext] {
		return nil, appErrors.Clone(appErrors.ErrUnsupported, "image must be jpg, png or gif")
	}
	if _, err := s.rooms.GetRoom(ctx, roomID); err != nil {
		return nil, err
	}
	key := fmt.Sprintf("rooms/%s/original-%s%s", roomID, uuid.NewString(), ext)
	if _, err := s.files.SaveStream(key, r, s.cfg.MaxFileSize); err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			return nil, appErrors.Clone(appErrors.ErrPayloadTooBig, "image exceeds upload limit")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store image")
	}
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrServiceOffline, "image processing unavailable")
	}
	job := jobs.Job{ID: uuid.NewString(), Key: roomID, Type: thumbnailJobType, Payload: thumbnailPayload{RoomID: roomID, OriginalKey: key}}
	if err := s.queue.Enqueue(job); err != nil {
		if errors.Is(err, jobs.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "an image for this room is already processing")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrServiceOffline.Code, appErrors.ErrServiceOffline.Status, "failed to schedule thumbnail")
	}
	result := &UploadResult{RoomID: roomID, OriginalKey: key, JobID: job.ID}
	if url, err := s.SignedURL(key); err == nil {
		result.OriginalURL = url
	} else {
		s.logger.Warn("unable to sign original upload", zap.String("key", key), zap.Error(err))
	}
	return result, nil
}

// HandleJob is the queue handler producing the thumbnail and updating the room.
func (s *ImageService) HandleJob(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(thumbnailPayload)
	if !ok {
		return fmt.Errorf("unexpected payload for job %s", job.ID)
	}
	src, err := s.files.Open(payload.OriginalKey)
	if err != nil {
		return err
	}
	defer src.Close() //nolint:errcheck

	img, err := imaging.Decode(src, imaging.AutoOrientation(true))
	if err != nil {
		s.logger.Warn("discarding undecodable image", zap.String("room_id", payload.RoomID), zap.Error(err))
		return nil
	}
	thumb := imaging.Fill(img, thumbnailSize, thumbnailSize, imaging.Center, imaging.Lanczos)
	buf := &bytes.Buffer{}
	if err := imaging.Encode(buf, thumb, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return fmt.Errorf("encode thumbnail: %w", err)
	}
	name := "thumb-" + job.ID + ".jpg"
	thumbKey := roomImageKey(payload.RoomID, name)
	if _, err := s.files.Save(thumbKey, buf.Bytes()); err != nil {
		return err
	}
	if _, err := s.rooms.SetRoomImage(ctx, payload.RoomID, s.RoomImageURL(payload.RoomID, name)); err != nil {
		if appErrors.IsCode(err, appErrors.ErrNotFound.Code) {
			s.logger.Info("room removed before thumbnail finished", zap.String("room_id", payload.RoomID))
			return nil
		}
		return err
	}
	s.logger.Info("room thumbnail ready", zap.String("room_id", payload.RoomID), zap.String("key", thumbKey))
	return nil
}

// RoomImageURL is the permanent link a room stores for its thumbnail.
func (s *ImageService) RoomImageURL(roomID, name string) string {
	return s.cfg.RoomsPath + roomID + "/image/" + name
}

// OpenRoomImage opens a thumbnail previously written for roomID. Room image links
// carry no expiry.
func (s *ImageService) OpenRoomImage(ctx context.Context, roomID, name string) (io.ReadCloser, string, error) {
	if !validThumbnailName(name) {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "image not found")
	}
	if _, err := s.rooms.GetRoom(ctx, roomID); err != nil {
		return nil, "", err
	}
	key := roomImageKey(roomID, name)
	f, err := s.files.Open(key)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "image not found")
	}
	return f, key, nil
}

func roomImageKey(roomID, name string) string {
	return fmt.Sprintf("rooms/%s/%s", roomID, name)
}

func validThumbnailName(name string) bool {
	return strings.HasPrefix(name, "thumb-") && path.Ext(name) == ".jpg" && !strings.ContainsAny(name, `/\`) && !strings.Contains(name, "..")
}

// SignedURL returns a download path for a stored file.
func (s *ImageService) SignedURL(key string) (string, error) {
	token, _, err := s.signer.Generate(key)
	if err != nil {
		return "", fmt.Errorf("sign %s: %w", key, err)
	}
	return s.cfg.FilesPath + token, nil
}

// OpenSigned validates token and opens the referenced file.
func (s *ImageService) OpenSigned(token string) (io.ReadCloser, string, error) {
	key, _, err := s.signer.Parse(token)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "file link invalid or expired")
	}
	f, err := s.files.Open(key)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "file not found")
	}
	return f, key, nil
}
