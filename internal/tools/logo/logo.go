// Package logo provides the built-in static asset tool.
//
// One tool is exported via [NewTools]:
//   - "get_logo": reads the ToonForge logo from the configured assets
//     directory and returns it base64-encoded with its metadata.
//
// The asset is read-only; a missing file and an access-denied condition map
// to the distinct error kinds "file_not_found" and "permission_denied". The
// handler is a total function and safe for concurrent use.
package logo

import (
	"context"
	"encoding/base64"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/MrWong99/toonforge/internal/respond"
	"github.com/MrWong99/toonforge/internal/tools"
)

const (
	// FileName is the asset's file name inside the assets directory.
	FileName = "logo.png"

	displayName = "ToonForge Logo"
	description = "ToonForge logo as base64 encoded PNG"
	mimeType    = "image/png"
)

func makeHandler(log *slog.Logger, f *respond.Formatter, assetsDir string) func(ctx context.Context, args string) (any, error) {
	path := filepath.Join(assetsDir, FileName)
	return func(ctx context.Context, _ string) (any, error) {
		fail := func(kind, message string, cause error) (any, error) {
			log.Error("logo tool failed", "error", kind, "path", path, "cause", cause)
			return f.Format(respond.Error("get_logo", kind, message))
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return fail("file_not_found", "Could not find logo file", err)
		case errors.Is(err, fs.ErrPermission):
			return fail("permission_denied", "Permission denied reading logo file", err)
		case err != nil:
			return fail("read_failed", "Failed to read logo file", err)
		}

		log.Info("logo tool called", "path", path, "size_bytes", len(data))

		return f.Format(respond.Success("get_logo",
			"Successfully retrieved ToonForge logo",
			respond.F("name", displayName),
			respond.F("description", description),
			respond.F("mimeType", mimeType),
			respond.F("data", base64.StdEncoding.EncodeToString(data)),
			respond.F("size_bytes", int64(len(data))),
		))
	}
}

// NewTools returns the asset tools reading from assetsDir, backed by the
// given logger and response formatter.
func NewTools(log *slog.Logger, f *respond.Formatter, assetsDir string) []tools.Tool {
	return []tools.Tool{
		{
			Definition: tools.Definition{
				Name:        "get_logo",
				Description: "Fetch the ToonForge logo as a base64-encoded PNG together with its display name, description, MIME type, and byte size.",
				InputSchema: &jsonschema.Schema{
					Type:       "object",
					Properties: map[string]*jsonschema.Schema{},
				},
			},
			Handler: makeHandler(log, f, assetsDir),
		},
	}
}
