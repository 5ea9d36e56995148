package reply

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"sync"

	"github.com/waylis/waycli/internal/api"
	"github.com/waylis/waycli/internal/chat"
)

// LocalFile is a file staged for upload.
type LocalFile struct {
	Name     string
	MimeType string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

// LocalFileFromPath stats a file and guesses its mime type from the
// extension.
func LocalFileFromPath(path string) (LocalFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return LocalFile{}, fmt.Errorf("stat file: %w", err)
	}
	if info.IsDir() {
		return LocalFile{}, validationf("%s is a directory", path)
	}
	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return LocalFile{
		Name:     filepath.Base(path),
		MimeType: mimeType,
		Size:     info.Size(),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

// CheckFile pre-checks a single file against the declared limits. It
// never touches the network.
func CheckFile(f LocalFile, limits *chat.FileLimits) error {
	if limits == nil {
		return nil
	}
	if limits.MaxSize > 0 && f.Size > limits.MaxSize {
		return validationf("%s is too large: %s exceeds the %s limit",
			f.Name, chat.FormatBytes(f.Size), chat.FormatBytes(limits.MaxSize))
	}
	if len(limits.MimeTypes) > 0 {
		allowed := false
		for _, m := range limits.MimeTypes {
			if m == f.MimeType {
				allowed = true
				break
			}
		}
		if !allowed {
			return validationf("%s has an unsupported type %s", f.Name, f.MimeType)
		}
	}
	return nil
}

// CheckFiles pre-checks a whole batch before any upload begins: the
// first violating file aborts the batch.
func CheckFiles(files []LocalFile, limits *chat.FilesLimits) error {
	if len(files) == 0 {
		return validationf("pick at least one file first")
	}
	var single *chat.FileLimits
	if limits != nil {
		if limits.MaxAmount > 0 && len(files) > limits.MaxAmount {
			return validationf("pick at most %d files", limits.MaxAmount)
		}
		single = &limits.FileLimits
	}
	for _, f := range files {
		if err := CheckFile(f, single); err != nil {
			return err
		}
	}
	return nil
}

// Uploader uploads staged files through the transport client.
type Uploader struct {
	API *api.Client
}

// UploadFile validates and uploads a single file.
func (u *Uploader) UploadFile(ctx context.Context, f LocalFile, limits *chat.FileLimits) (chat.FileMeta, error) {
	if err := CheckFile(f, limits); err != nil {
		return chat.FileMeta{}, err
	}
	return u.upload(ctx, f)
}

// UploadFiles validates the whole batch up front, then uploads the
// files concurrently and collects their metadata in submission order.
// Any single failure aborts the whole batch: no partial result is
// returned.
func (u *Uploader) UploadFiles(ctx context.Context, files []LocalFile, limits *chat.FilesLimits) ([]chat.FileMeta, error) {
	if err := CheckFiles(files, limits); err != nil {
		return nil, err
	}

	metas := make([]chat.FileMeta, len(files))
	errs := make([]error, len(files))
	var wg sync.WaitGroup
	for i := range files {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			metas[i], errs[i] = u.upload(ctx, files[i])
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return metas, nil
}

func (u *Uploader) upload(ctx context.Context, f LocalFile) (chat.FileMeta, error) {
	r, err := f.Open()
	if err != nil {
		return chat.FileMeta{}, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer r.Close()
	return u.API.UploadFile(ctx, f.Name, f.MimeType, r)
}
