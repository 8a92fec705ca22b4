package terminal

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/thetafeed/theta-go/utils"
)

// DefaultDownloadURL always serves the latest stable Terminal build.
const DefaultDownloadURL = "https://download-latest.thetadata.us"

// CredsFileName is the credentials file the jar reads from its working
// directory at startup.
const CredsFileName = "creds.txt"

// Download fetches the latest Terminal distribution and installs it at
// dest.
func Download(ctx context.Context, dest string) error {
	return DownloadFrom(ctx, DefaultDownloadURL, dest)
}

// DownloadFrom fetches a Terminal distribution from url and installs it
// at dest. The jar is written to a temp file and renamed into place, so a
// partial download never replaces a working install.
func DownloadFrom(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("terminal download: %w", err)
	}

	resp, err := utils.BulkHTTPClient().Do(req)
	if err != nil {
		return fmt.Errorf("terminal download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("terminal download returned status %d", resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("terminal download: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".tmp-*")
	if err != nil {
		return fmt.Errorf("terminal download: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("terminal download: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("terminal download: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("terminal download: %w", err)
	}

	if err := os.Rename(tmp.Name(), dest); err != nil {
		return fmt.Errorf("terminal download: %w", err)
	}
	return nil
}

// WriteCreds writes the Terminal credentials file: username on the first
// line, password on the second. The file holds the account password, so
// it is created 0600.
func WriteCreds(dir, username, password string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("write creds: %w", err)
	}
	path := filepath.Join(dir, CredsFileName)
	data := []byte(username + "\n" + password + "\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("write creds: %w", err)
	}
	return path, nil
}
