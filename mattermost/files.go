// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mattermost

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/communicator/errcode"
	"github.com/bureau-foundation/communicator/lib/netutil"
)

// UploadFile uploads a file for later attachment to a post. The
// returned FileInfo's ID goes into CreatePostRequest.FileIDs.
func (c *Client) UploadFile(ctx context.Context, channelID, filename string, content io.Reader) (*FileInfo, error) {
	if channelID == "" {
		return nil, errcode.New(errcode.InvalidArgument, "mattermost: UploadFile requires a channel ID")
	}

	var buffer bytes.Buffer
	writer := multipart.NewWriter(&buffer)
	if err := writer.WriteField("channel_id", channelID); err != nil {
		return nil, fmt.Errorf("mattermost: building upload form: %w", err)
	}
	part, err := writer.CreateFormFile("files", filename)
	if err != nil {
		return nil, fmt.Errorf("mattermost: building upload form: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("mattermost: reading upload content: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("mattermost: finishing upload form: %w", err)
	}

	responseBody, _, err := c.doRequestRaw(ctx, http.MethodPost, "/files", writer.FormDataContentType(), &buffer, nil)
	if err != nil {
		return nil, fmt.Errorf("mattermost: upload %q: %w", filename, err)
	}
	defer responseBody.Close()

	var result struct {
		FileInfos []FileInfo `json:"file_infos"`
	}
	if err := netutil.DecodeResponse(responseBody, &result); err != nil {
		return nil, fmt.Errorf("mattermost: parsing upload response: %w", err)
	}
	if len(result.FileInfos) == 0 {
		return nil, errcode.New(errcode.Unknown, "mattermost: upload succeeded but returned no file info")
	}
	return &result.FileInfos[0], nil
}

// DownloadFile streams a file's content into w and returns the number
// of bytes written together with the BLAKE3 digest of the content
// (lowercase hex). Callers persisting files use the digest to detect
// truncated or corrupted transfers on re-download.
func (c *Client) DownloadFile(ctx context.Context, fileID string, w io.Writer) (int64, string, error) {
	body, _, err := c.doRequestRaw(ctx, http.MethodGet, "/files/"+url.PathEscape(fileID), "", nil, nil)
	if err != nil {
		return 0, "", fmt.Errorf("mattermost: download file %q: %w", fileID, err)
	}
	defer body.Close()

	hasher := blake3.New()
	written, err := io.Copy(io.MultiWriter(w, hasher), body)
	if err != nil {
		return written, "", fmt.Errorf("mattermost: download file %q: %w", fileID,
			errcode.Newf(errcode.Network, "stream interrupted after %d bytes: %v", written, err))
	}
	return written, hex.EncodeToString(hasher.Sum(nil)), nil
}

// FileThumbnail streams a file's server-generated thumbnail into w.
func (c *Client) FileThumbnail(ctx context.Context, fileID string, w io.Writer) error {
	body, _, err := c.doRequestRaw(ctx, http.MethodGet, "/files/"+url.PathEscape(fileID)+"/thumbnail", "", nil, nil)
	if err != nil {
		return fmt.Errorf("mattermost: thumbnail for %q: %w", fileID, err)
	}
	defer body.Close()
	if _, err := io.Copy(w, body); err != nil {
		return fmt.Errorf("mattermost: thumbnail for %q: %w", fileID,
			errcode.Newf(errcode.Network, "stream interrupted: %v", err))
	}
	return nil
}

// GetFileInfo fetches a file's metadata without downloading it.
func (c *Client) GetFileInfo(ctx context.Context, fileID string) (*FileInfo, error) {
	var info FileInfo
	if err := c.getJSON(ctx, "/files/"+url.PathEscape(fileID)+"/info", nil, &info); err != nil {
		return nil, fmt.Errorf("mattermost: file info for %q: %w", fileID, err)
	}
	return &info, nil
}
