package models

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/AustinKelsay/dicktaint/internal/engine/errs"
	"github.com/AustinKelsay/dicktaint/pkg/logger"
)

const sourceURLTemplate = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/%s"

// Manager owns model download/delete against a models directory. Downloads
// stream to a temp file and rename into place, and the HTTP client forces
// HTTP/1.1 against huggingface.co, which has been observed to send an H2
// GOAWAY mid-stream for large model files.
type Manager struct {
	modelsDir string
	client    *http.Client
}

// NewManager returns a Manager rooted at modelsDir.
func NewManager(modelsDir string) *Manager {
	return &Manager{
		modelsDir: modelsDir,
		client: &http.Client{
			Transport: &http.Transport{
				// Disable HTTP/2 upgrade; large model downloads over h2 have
				// been observed to terminate with a spurious GOAWAY partway
				// through the transfer.
				TLSNextProto: make(map[string]func(authority string, c *tls.Conn) http.RoundTripper),
			},
		},
	}
}

// DownloadProgress is invoked with a 0-100 percentage as a download
// streams.
type DownloadProgress func(pct int)

// Download fetches the model with the given catalog id into modelsDir,
// atomically (temp file + rename) so a crash mid-download never leaves a
// partial model file that ModelCatalog would mistake for installed.
func (m *Manager) Download(ctx context.Context, id string, onProgress DownloadProgress) error {
	desc, ok := ByID(id)
	if !ok {
		return errs.WithDetail(errs.ErrUnknownModel, id, nil)
	}

	if err := os.MkdirAll(m.modelsDir, 0o755); err != nil {
		return errs.DownloadFailed(0, err.Error(), err)
	}

	url := fmt.Sprintf(sourceURLTemplate, desc.FileName)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errs.DownloadFailed(0, err.Error(), err)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return errs.DownloadFailed(0, err.Error(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errs.DownloadFailed(resp.StatusCode, fmt.Sprintf("unexpected status downloading %s", desc.FileName), nil)
	}

	tmp, err := os.CreateTemp(m.modelsDir, ".*.download")
	if err != nil {
		return errs.DownloadFailed(0, err.Error(), err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	pw := &progressWriter{total: resp.ContentLength, onProgress: onProgress}
	if _, err := io.Copy(tmp, io.TeeReader(resp.Body, pw)); err != nil {
		tmp.Close()
		return errs.DownloadFailed(0, err.Error(), err)
	}
	if err := tmp.Close(); err != nil {
		return errs.DownloadFailed(0, err.Error(), err)
	}

	dest := filepath.Join(m.modelsDir, desc.FileName)
	if err := os.Rename(tmpPath, dest); err != nil {
		return errs.DownloadFailed(0, err.Error(), err)
	}

	logger.Info(logger.CategoryModel, "installed model %s -> %s", id, dest)
	return nil
}

// Delete removes an installed model file. Deleting a model that was never
// installed is a no-op.
func (m *Manager) Delete(id string) error {
	desc, ok := ByID(id)
	if !ok {
		return errs.WithDetail(errs.ErrUnknownModel, id, nil)
	}
	path := filepath.Join(m.modelsDir, desc.FileName)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// progressWriter tracks bytes written and reports whole-percent increments
// through the callback.
type progressWriter struct {
	total      int64
	written    int64
	lastPct    int
	onProgress DownloadProgress
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n := len(p)
	pw.written += int64(n)
	if pw.total > 0 && pw.onProgress != nil {
		pct := int(float64(pw.written) / float64(pw.total) * 100)
		if pct != pw.lastPct {
			pw.lastPct = pct
			pw.onProgress(pct)
		}
	}
	return n, nil
}

// FailoverCandidate picks the next-best installed model to select after a
// delete removes the currently selected one: the best-ranked *installed*
// model among the remaining runtime states.
func FailoverCandidate(states []RuntimeState) (string, bool) {
	var best *RuntimeState
	for i := range states {
		if !states[i].Installed {
			continue
		}
		if best == nil || rankLess(*best, states[i]) {
			best = &states[i]
		}
	}
	if best == nil {
		return "", false
	}
	return best.ID, true
}

// rankLess reports whether a ranks below b, so failover picks the strongest
// remaining installed model rather than simply the first one found. The key
// is recommend()'s without its fit level (runnable, then recommended RAM,
// then size, then catalog order), since no device profile is passed here.
func rankLess(a, b RuntimeState) bool {
	if a.LikelyRunnable != b.LikelyRunnable {
		return b.LikelyRunnable
	}
	if a.RecommendedRAMGB != b.RecommendedRAMGB {
		return b.RecommendedRAMGB > a.RecommendedRAMGB
	}
	if a.ApproxSizeGB != b.ApproxSizeGB {
		return b.ApproxSizeGB > a.ApproxSizeGB
	}
	return false
}
