package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"path"
	"strings"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/peerroom-api/internal/models"
	"github.com/noah-isme/peerroom-api/internal/repository"
	appErrors "github.com/noah-isme/peerroom-api/pkg/errors"
	"github.com/noah-isme/peerroom-api/pkg/jobs"
	"github.com/noah-isme/peerroom-api/pkg/storage"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func newTestImageService(t *testing.T, signedURLTTL time.Duration) (*ImageService, *RoomDraftStore, *storage.LocalStorage, *models.Room) {
	t.Helper()
	files, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	roomRepo := repository.NewMemoryRoomRepository()
	rooms := NewRoomDraftStore(roomRepo, repository.NewMemoryDraftRepository(0), nil, nil, nil, nil, RoomStoreConfig{})
	room := &models.Room{Name: "UI/UX Design", Description: "d", Category: "Design"}
	require.NoError(t, roomRepo.Create(context.Background(), room))

	svc := NewImageService(rooms, files, storage.NewSignedURLSigner("secret", signedURLTTL), nil, ImageServiceConfig{MaxFileSize: 1 << 20})
	return svc, rooms, files, room
}

func TestImageServiceGeneratesThumbnail(t *testing.T) {
	svc, rooms, _, room := newTestImageService(t, time.Hour)
	ctx := context.Background()

	var final error
	queue := jobs.NewQueue("thumbnails", svc.HandleJob, jobs.QueueConfig{OnResult: func(_ jobs.Job, err error) { final = err }})
	queue.Start(ctx)
	defer queue.Stop()
	svc.SetQueue(queue)

	result, err := svc.AttachImage(ctx, room.ID, "cover.PNG", bytes.NewReader(pngBytes(t, 400, 300)))
	require.NoError(t, err)
	assert.NotEmpty(t, result.JobID)
	queue.Wait()
	require.NoError(t, final)

	assert.True(t, strings.HasPrefix(result.OriginalURL, "/api/v1/files/"))

	updated, err := rooms.GetRoom(ctx, room.ID)
	require.NoError(t, err)
	prefix := "/api/v1/rooms/" + room.ID + "/image/"
	require.True(t, strings.HasPrefix(updated.Image, prefix))

	rc, key, err := svc.OpenRoomImage(ctx, room.ID, strings.TrimPrefix(updated.Image, prefix))
	require.NoError(t, err)
	defer rc.Close()
	assert.Contains(t, key, "thumb-")
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	thumb, err := imaging.Decode(bytes.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, 256, thumb.Bounds().Dx())
	assert.Equal(t, 256, thumb.Bounds().Dy())
}

func TestImageServiceRejectsBadUploads(t *testing.T) {
	svc, _, _, room := newTestImageService(t, time.Hour)
	ctx := context.Background()

	_, err := svc.AttachImage(ctx, room.ID, "notes.txt", strings.NewReader("x"))
	assert.ErrorIs(t, err, appErrors.ErrUnsupported)

	_, err = svc.AttachImage(ctx, "missing", "a.png", strings.NewReader("x"))
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = svc.AttachImage(ctx, room.ID, "big.png", bytes.NewReader(make([]byte, 2<<20)))
	assert.ErrorIs(t, err, appErrors.ErrPayloadTooBig)

	_, err = svc.AttachImage(ctx, room.ID, "a.png", bytes.NewReader(pngBytes(t, 10, 10)))
	assert.ErrorIs(t, err, appErrors.ErrServiceOffline)

	_, _, err = svc.OpenSigned("garbage")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestImageServiceSkipsUndecodableImages(t *testing.T) {
	svc, rooms, files, room := newTestImageService(t, time.Hour)
	ctx := context.Background()

	_, err := files.Save("rooms/x/original.png", []byte("not an image"))
	require.NoError(t, err)
	err = svc.HandleJob(ctx, jobs.Job{ID: "j1", Payload: thumbnailPayload{RoomID: room.ID, OriginalKey: "rooms/x/original.png"}})
	require.NoError(t, err)

	unchanged, err := rooms.GetRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.Empty(t, unchanged.Image)
}

func TestImageServiceRoomImageOutlivesSignedLinks(t *testing.T) {
	svc, rooms, _, room := newTestImageService(t, time.Nanosecond)
	ctx := context.Background()

	queue := jobs.NewQueue("thumbnails", svc.HandleJob, jobs.QueueConfig{})
	queue.Start(ctx)
	defer queue.Stop()
	svc.SetQueue(queue)

	result, err := svc.AttachImage(ctx, room.ID, "cover.png", bytes.NewReader(pngBytes(t, 64, 64)))
	require.NoError(t, err)
	queue.Wait()
	time.Sleep(10 * time.Millisecond)

	_, _, err = svc.OpenSigned(strings.TrimPrefix(result.OriginalURL, "/api/v1/files/"))
	require.ErrorIs(t, err, appErrors.ErrNotFound)

	updated, err := rooms.GetRoom(ctx, room.ID)
	require.NoError(t, err)
	name := path.Base(updated.Image)
	assert.Equal(t, svc.RoomImageURL(room.ID, name), updated.Image)

	rc, _, err := svc.OpenRoomImage(ctx, room.ID, name)
	require.NoError(t, err)
	rc.Close()
}

func TestImageServiceOpenRoomImageRejectsOtherFiles(t *testing.T) {
	svc, _, files, room := newTestImageService(t, time.Hour)
	ctx := context.Background()

	_, err := files.Save("rooms/"+room.ID+"/original-x.png", pngBytes(t, 4, 4))
	require.NoError(t, err)

	for _, name := range []string{"original-x.png", "thumb-..jpg", "thumb-missing.jpg"} {
		_, _, err := svc.OpenRoomImage(ctx, room.ID, name)
		assert.ErrorIs(t, err, appErrors.ErrNotFound, name)
	}
	_, _, err = svc.OpenRoomImage(ctx, "missing", "thumb-a.jpg")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}
