// CLASSIFICATION: COMMUNITY
// Filename: guard.go v0.1
// Author: Lukas Bower
// Date Modified: 2026-10-17
// License: SPDX-License-Identifier: MIT OR Apache-2.0

package static

import "strings"

// SegmentKind classifies one component of a request path.
type SegmentKind int

const (
	// SegmentOrdinary is any segment that does not start with a dot.
	SegmentOrdinary SegmentKind = iota
	// SegmentCurrent is the inert "." segment.
	SegmentCurrent
	// SegmentTraversal is the ".." segment.
	SegmentTraversal
	// SegmentHidden is any other dot-prefixed segment.
	SegmentHidden
)

func (k SegmentKind) String() string {
	switch k {
	case SegmentOrdinary:
		return "ordinary"
	case SegmentCurrent:
		return "current"
	case SegmentTraversal:
		return "traversal"
	case SegmentHidden:
		return "hidden"
	default:
		return "unknown"
	}
}

// Allowed reports whether a segment of this kind may reach the filesystem.
func (k SegmentKind) Allowed() bool {
	return k == SegmentOrdinary || k == SegmentCurrent
}

// ClassifySegment returns the kind of a single path segment.
func ClassifySegment(seg string) SegmentKind {
	switch {
	case seg == ".":
		return SegmentCurrent
	case seg == "..":
		return SegmentTraversal
	case strings.HasPrefix(seg, "."):
		return SegmentHidden
	default:
		return SegmentOrdinary
	}
}

// Validate decides whether raw may be served. The same rule applies to every
// segment regardless of depth, so "/folder/.env" is rejected exactly like
// "/.secret". An accepted path is returned unmodified.
func Validate(raw string) (string, bool) {
	if _, _, bad := FirstRejected(raw); bad {
		return "", false
	}
	return raw, true
}

// FirstRejected returns the index and text of the first segment of raw that
// is not allowed. ok is false when every segment is allowed.
func FirstRejected(raw string) (idx int, seg string, ok bool) {
	for i, part := range strings.Split(raw, "/") {
		if !ClassifySegment(part).Allowed() {
			return i, part, true
		}
	}
	return -1, "", false
}
