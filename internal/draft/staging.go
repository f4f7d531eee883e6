package draft

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// StagedFile is a locally selected upload that has not reached the
// backend yet. The bytes are spooled under the scratch dir and the
// preview URL points back at that spool file, so the file and its
// preview cannot drift apart.
type StagedFile struct {
	Name    string // original filename from the upload
	Path    string // spool file under the scratch dir
	Preview string // URL the edit form renders for this file
}

func (f StagedFile) release() {
	if f.Path != "" {
		_ = os.Remove(f.Path)
	}
}

// StagingArea tracks one entity's images: references already persisted
// by the backend, and freshly staged spool files. Removals are local
// only; the backend learns about them at submission time through the
// remaining persisted list.
type StagingArea struct {
	persisted []string
	staged    []StagedFile
}

func (a *StagingArea) Persisted() []string  { return a.persisted }
func (a *StagingArea) Staged() []StagedFile { return a.staged }

func (a *StagingArea) setPersisted(refs []string) {
	a.persisted = append([]string(nil), refs...)
}

// Stage replaces the staged batch with a new selection. The previous
// batch's spool files are released; a file picker hands over a whole
// selection, it does not append.
func (a *StagingArea) Stage(files []StagedFile) {
	for _, f := range a.staged {
		f.release()
	}
	a.staged = files
}

func (a *StagingArea) RemovePersisted(i int) error {
	if i < 0 || i >= len(a.persisted) {
		return fmt.Errorf("persisted image %d out of range", i)
	}
	a.persisted = append(a.persisted[:i], a.persisted[i+1:]...)
	return nil
}

func (a *StagingArea) RemoveStaged(i int) error {
	if i < 0 || i >= len(a.staged) {
		return fmt.Errorf("staged image %d out of range", i)
	}
	a.staged[i].release()
	a.staged = append(a.staged[:i], a.staged[i+1:]...)
	return nil
}

func (a *StagingArea) releaseAll() {
	for _, f := range a.staged {
		f.release()
	}
	a.staged = nil
}

// Spool copies uploaded files into the scratch dir and returns staged
// records for them, selection order preserved. On any failure the files
// written so far are released, so a partial selection never leaks.
func Spool(scratchDir string, headers []*multipart.FileHeader) ([]StagedFile, error) {
	if err := os.MkdirAll(scratchDir, 0o755); err != nil {
		return nil, err
	}
	out := make([]StagedFile, 0, len(headers))
	for _, h := range headers {
		name := uuid.NewString() + filepath.Ext(h.Filename)
		dst := filepath.Join(scratchDir, name)
		if err := copyUpload(h, dst); err != nil {
			for _, f := range out {
				f.release()
			}
			return nil, err
		}
		out = append(out, StagedFile{
			Name:    filepath.Base(h.Filename),
			Path:    dst,
			Preview: "/previews/" + name,
		})
	}
	return out, nil
}

// Discard releases spool files that never made it into a draft.
func Discard(files []StagedFile) {
	for _, f := range files {
		f.release()
	}
}

func copyUpload(h *multipart.FileHeader, dst string) error {
	src, err := h.Open()
	if err != nil {
		return err
	}
	defer src.Close()
	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, src); err != nil {
		f.Close()
		_ = os.Remove(dst)
		return err
	}
	return f.Close()
}
