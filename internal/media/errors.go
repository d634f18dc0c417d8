package media

import "errors"

var (
	// ErrFileNotFound indicates the upstream provider does not know the file.
	ErrFileNotFound = errors.New("file not found")
	// ErrTransientNetwork indicates a network failure talking to the provider.
	ErrTransientNetwork = errors.New("transient network failure")
	// ErrProviderRejected indicates the provider returned an error payload.
	ErrProviderRejected = errors.New("provider rejected the request")

	// ErrDownloadFailed indicates the payload transfer failed.
	ErrDownloadFailed = errors.New("download failed")
	// ErrDownloadTimeout indicates the payload transfer timed out.
	ErrDownloadTimeout = errors.New("download timed out")
	// ErrWriteFailed indicates the payload could not be written to storage.
	ErrWriteFailed = errors.New("storage write failed")
	// ErrCacheMiss indicates the requested storage key does not exist.
	ErrCacheMiss = errors.New("cache entry not found")
	// ErrPathTraversal indicates a storage key attempted directory traversal.
	ErrPathTraversal = errors.New("path traversal is forbidden")
)
