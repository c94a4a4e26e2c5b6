package parser

import (
	"fmt"
)

// ErrInvalidSignature indicates the file does not start with "LASF"
type ErrInvalidSignature struct {
	Got [4]byte
}

func (e *ErrInvalidSignature) Error() string {
	return fmt.Sprintf("invalid file signature %q (expected \"LASF\")", e.Got[:])
}

// ErrUnsupportedVersion indicates a LAS version other than 1.4
type ErrUnsupportedVersion struct {
	Major, Minor uint8
}

func (e *ErrUnsupportedVersion) Error() string {
	return fmt.Sprintf("unsupported LAS version %d.%d (COPC requires 1.4)", e.Major, e.Minor)
}

// ErrMissingCopcVlr indicates no copc/1 VLR was found at the required position
type ErrMissingCopcVlr struct {
	VlrCount int
}

func (e *ErrMissingCopcVlr) Error() string {
	return fmt.Sprintf("COPC info VLR (copc/1) not found as first VLR (%d VLRs present)", e.VlrCount)
}

// ErrBadVlrLength indicates a VLR payload length that doesn't match the expected fixed size
type ErrBadVlrLength struct {
	UserID   string
	RecordID uint16
	Got      int
	Want     int
}

func (e *ErrBadVlrLength) Error() string {
	return fmt.Sprintf("VLR %s/%d payload is %d bytes (expected %d)",
		e.UserID, e.RecordID, e.Got, e.Want)
}

// ErrBadHierarchyPage indicates a malformed hierarchy page or entry
type ErrBadHierarchyPage struct {
	Key    VoxelKey
	Reason string
}

func (e *ErrBadHierarchyPage) Error() string {
	return fmt.Sprintf("bad hierarchy page %s: %s", e.Key, e.Reason)
}

// ErrUnsupportedFormat indicates a point data record format outside {0, 6, 7, 8}
type ErrUnsupportedFormat struct {
	Format uint8
}

func (e *ErrUnsupportedFormat) Error() string {
	return fmt.Sprintf("unsupported point data record format %d (supported: 0, 6, 7, 8)", e.Format)
}

// ErrDecode indicates a malformed or truncated compressed chunk
type ErrDecode struct {
	Key    VoxelKey
	Reason string
	Err    error
}

func (e *ErrDecode) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode chunk %s: %s: %v", e.Key, e.Reason, e.Err)
	}
	return fmt.Sprintf("decode chunk %s: %s", e.Key, e.Reason)
}

func (e *ErrDecode) Unwrap() error { return e.Err }

// ErrRead indicates an underlying byte-source I/O failure
type ErrRead struct {
	Offset int64
	Err    error
}

func (e *ErrRead) Error() string {
	return fmt.Sprintf("read at offset %d: %v", e.Offset, e.Err)
}

func (e *ErrRead) Unwrap() error { return e.Err }

// ErrInvalidArgument indicates a caller-supplied value outside its legal range
type ErrInvalidArgument struct {
	Name   string
	Reason string
}

func (e *ErrInvalidArgument) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Name, e.Reason)
}
