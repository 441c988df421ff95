// Package models manages the Vosk model store: the download catalog, a
// per-user model directory, and the persisted default selection.
package models

import (
	"archive/zip"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Model is one downloadable recognition model.
type Model struct {
	Name        string
	Language    string
	Size        string
	URL         string
	Description string
}

// AvailableModels is the download catalog.
var AvailableModels = []Model{
	{
		Name:        "vosk-model-small-en-us-0.15",
		Language:    "en-US",
		Size:        "40M",
		URL:         "https://alphacephei.com/vosk/models/vosk-model-small-en-us-0.15.zip",
		Description: "Lightweight English model, fast but less accurate",
	},
	{
		Name:        "vosk-model-en-us-0.22",
		Language:    "en-US",
		Size:        "1.8G",
		URL:         "https://alphacephei.com/vosk/models/vosk-model-en-us-0.22.zip",
		Description: "Large English model, slower but more accurate",
	},
	{
		Name:        "vosk-model-en-us-0.22-lgraph",
		Language:    "en-US",
		Size:        "128M",
		URL:         "https://alphacephei.com/vosk/models/vosk-model-en-us-0.22-lgraph.zip",
		Description: "Medium English model, balanced speed and accuracy",
	},
}

// DefaultModelName is used when no default has been persisted.
const DefaultModelName = "vosk-model-small-en-us-0.15"

// modelsDirEnv overrides the model store location.
const modelsDirEnv = "PARLEY_MODELS_DIR"

const defaultMarkerFile = ".default_model"

// GetModelsDir returns the model store directory: $PARLEY_MODELS_DIR if
// set, otherwise ~/.parley/models, the same per-user convention as the
// ~/.parleyrc config file.
func GetModelsDir() (string, error) {
	if dir := os.Getenv(modelsDirEnv); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".parley", "models"), nil
}

// GetDefaultModel returns the persisted default model name, falling back
// to DefaultModelName when none has been set.
func GetDefaultModel() (string, error) {
	dir, err := GetModelsDir()
	if err != nil {
		return DefaultModelName, err
	}

	data, err := os.ReadFile(filepath.Join(dir, defaultMarkerFile))
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultModelName, nil
		}
		return DefaultModelName, err
	}

	if name := strings.TrimSpace(string(data)); name != "" {
		return name, nil
	}
	return DefaultModelName, nil
}

// SetDefaultModel persists name as the default. The name must be in the
// catalog.
func SetDefaultModel(name string) error {
	if FindModel(name) == nil {
		return fmt.Errorf("unknown model: %s", name)
	}

	dir, err := GetModelsDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create models directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, defaultMarkerFile), []byte(name), 0o644); err != nil {
		return fmt.Errorf("failed to save default model: %w", err)
	}
	return nil
}

// IsModelDownloaded reports whether the named model exists in the store.
func IsModelDownloaded(name string) (bool, error) {
	dir, err := GetModelsDir()
	if err != nil {
		return false, err
	}

	info, err := os.Stat(filepath.Join(dir, name))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}

// GetModelPath returns the directory of a downloaded model.
func GetModelPath(name string) (string, error) {
	dir, err := GetModelsDir()
	if err != nil {
		return "", err
	}

	downloaded, err := IsModelDownloaded(name)
	if err != nil {
		return "", err
	}
	if !downloaded {
		return "", fmt.Errorf("model not found: %s", name)
	}
	return filepath.Join(dir, name), nil
}

// FindModel looks up a catalog model by name.
func FindModel(name string) *Model {
	for i := range AvailableModels {
		if AvailableModels[i].Name == name {
			return &AvailableModels[i]
		}
	}
	return nil
}

// progressWriter reports cumulative bytes written through an io.Copy.
type progressWriter struct {
	written  int64
	total    int64
	progress func(downloaded, total int64)
}

func (p *progressWriter) Write(b []byte) (int, error) {
	p.written += int64(len(b))
	if p.progress != nil {
		p.progress(p.written, p.total)
	}
	return len(b), nil
}

// DownloadModel fetches a catalog model's archive into the store and
// extracts it. The optional progress callback receives cumulative and
// total byte counts; total is -1 when the server does not report one.
// The package prints nothing; callers own the terminal.
func DownloadModel(name string, progress func(downloaded, total int64)) error {
	model := FindModel(name)
	if model == nil {
		return fmt.Errorf("unknown model: %s", name)
	}

	dir, err := GetModelsDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create models directory: %w", err)
	}

	zipPath := filepath.Join(dir, name+".zip")
	defer os.Remove(zipPath)

	resp, err := http.Get(model.URL)
	if err != nil {
		return fmt.Errorf("failed to download model: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed with status: %s", resp.Status)
	}

	out, err := os.Create(zipPath)
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}
	pw := &progressWriter{total: resp.ContentLength, progress: progress}
	_, err = io.Copy(io.MultiWriter(out, pw), resp.Body)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("download error: %w", err)
	}

	if err := extractZip(zipPath, dir); err != nil {
		return fmt.Errorf("failed to extract model: %w", err)
	}
	return nil
}

// extractZip unpacks archive into destDir, rejecting entries whose paths
// escape it.
func extractZip(archive, destDir string) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		rel := filepath.Clean(f.Name)
		if rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) || filepath.IsAbs(rel) {
			return fmt.Errorf("illegal archive path: %s", f.Name)
		}
		target := filepath.Join(destDir, rel)

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}

		if err := extractFile(f, target); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(f *zip.File, target string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
	if err != nil {
		return err
	}
	_, err = io.Copy(out, rc)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	return err
}

// ListDownloadedModels lists the model directories present in the store.
func ListDownloadedModels() ([]string, error) {
	dir, err := GetModelsDir()
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read models directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), "vosk-model-") {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}
