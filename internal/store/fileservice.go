package store

import (
	"context"
	"fmt"
)

// Handle is the retrieval handle allocated by the blob service for an
// uploaded file. RemoteMD5 is the checksum the service computed over
// the stored bytes.
type Handle struct {
	HID       string `json:"hid"`
	ID        string `json:"id"`
	FileName  string `json:"file_name"`
	RemoteMD5 string `json:"remote_md5"`
	Type      string `json:"type"`
	URL       string `json:"url"`
}

// BlobRef identifies an uploaded blob and its retrieval handle.
type BlobRef struct {
	BlobID string `json:"blob_id"`
	Handle Handle `json:"handle"`
}

// ObjectInfo describes a saved object, mirroring the service's
// object_info tuple fields.
type ObjectInfo struct {
	ObjID       int64  `json:"objid"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	SaveDate    string `json:"save_date"`
	Version     int    `json:"ver"`
	SavedBy     string `json:"saved_by"`
	WorkspaceID int64  `json:"wsid"`
	Workspace   string `json:"workspace"`
	Checksum    string `json:"chsum"`
	Size        int64  `json:"size"`
}

// SaveSpec names a typed object to persist through the generic
// object-save call.
type SaveSpec struct {
	Workspace string `json:"workspace"`
	Type      string `json:"type"`
	Name      string `json:"name"`
	Data      any    `json:"data"`
}

// FileService uploads files to blob storage and saves typed objects.
type FileService struct {
	client *Client
}

// NewFileService creates a file-service client on top of an RPC client.
func NewFileService(client *Client) *FileService {
	return &FileService{client: client}
}

type fileToBlobParams struct {
	FilePath   string `json:"file_path"`
	MakeHandle int    `json:"make_handle"`
}

// FileToBlob uploads the file at path and allocates a retrieval handle.
func (f *FileService) FileToBlob(ctx context.Context, path string) (*BlobRef, error) {
	var ref BlobRef
	err := f.client.Call(ctx, "FileService.file_to_blob",
		fileToBlobParams{FilePath: path, MakeHandle: 1}, &ref)
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

type saveObjectsParams struct {
	Workspace string     `json:"workspace"`
	Objects   []SaveSpec `json:"objects"`
}

// SaveObject persists a typed object and returns its object_info.
func (f *FileService) SaveObject(ctx context.Context, spec SaveSpec) (*ObjectInfo, error) {
	if spec.Data == nil {
		return nil, fmt.Errorf("save object %s: no data", spec.Name)
	}

	var info ObjectInfo
	err := f.client.Call(ctx, "FileService.save_objects",
		saveObjectsParams{Workspace: spec.Workspace, Objects: []SaveSpec{spec}}, &info)
	if err != nil {
		return nil, err
	}
	return &info, nil
}
