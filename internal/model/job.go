package model

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// SourceKind tags the variant carried by a SourceDescriptor.
type SourceKind string

const (
	SourceInline    SourceKind = "inline"
	SourceReference SourceKind = "reference"
)

// SourceDescriptor is the tagged union carried across the queue boundary:
// either an inline byte payload or a reference string (URL or filesystem path).
type SourceDescriptor struct {
	kind SourceKind
	data []byte
	ref  string
}

// InlineSource wraps raw image bytes.
func InlineSource(data []byte) SourceDescriptor {
	return SourceDescriptor{kind: SourceInline, data: data}
}

// ReferenceSource wraps a URL or filesystem path.
func ReferenceSource(ref string) SourceDescriptor {
	return SourceDescriptor{kind: SourceReference, ref: ref}
}

func (s SourceDescriptor) Kind() SourceKind  { return s.kind }
func (s SourceDescriptor) Bytes() []byte     { return s.data }
func (s SourceDescriptor) Reference() string { return s.ref }

// IsZero reports whether the descriptor carries no source at all.
func (s SourceDescriptor) IsZero() bool {
	return s.kind == ""
}

type sourceJSON struct {
	Kind SourceKind `json:"kind"`
	Data string     `json:"data,omitempty"`
	Ref  string     `json:"ref,omitempty"`
}

// MarshalJSON encodes the union exhaustively over the tag. Inline payloads
// use base64 so arbitrary bytes survive the text transport losslessly.
func (s SourceDescriptor) MarshalJSON() ([]byte, error) {
	switch s.kind {
	case SourceInline:
		return json.Marshal(sourceJSON{
			Kind: SourceInline,
			Data: base64.StdEncoding.EncodeToString(s.data),
		})
	case SourceReference:
		return json.Marshal(sourceJSON{Kind: SourceReference, Ref: s.ref})
	default:
		return nil, fmt.Errorf("%w: source descriptor has no kind", ErrInvalidArgument)
	}
}

func (s *SourceDescriptor) UnmarshalJSON(b []byte) error {
	var raw sourceJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("unmarshal source descriptor: %w", err)
	}

	switch raw.Kind {
	case SourceInline:
		data, err := base64.StdEncoding.DecodeString(raw.Data)
		if err != nil {
			return fmt.Errorf("decode inline source payload: %w", err)
		}
		*s = InlineSource(data)
		return nil
	case SourceReference:
		*s = ReferenceSource(raw.Ref)
		return nil
	default:
		return fmt.Errorf("%w: unknown source kind %q", ErrInvalidArgument, raw.Kind)
	}
}

// Job is the transient queue message linking a task to its source data.
// Jobs are not domain entities; they exist only to cross the queue boundary.
type Job struct {
	TaskID   uuid.UUID        `json:"task_id"`
	Source   SourceDescriptor `json:"source"`
	Filename string           `json:"filename,omitempty"`
}

// NewJob builds a queue message for the given task and source.
func NewJob(taskID uuid.UUID, source SourceDescriptor, filename string) (Job, error) {
	if taskID == uuid.Nil {
		return Job{}, fmt.Errorf("%w: task id is empty", ErrInvalidArgument)
	}
	if source.IsZero() {
		return Job{}, fmt.Errorf("%w: job source is empty", ErrInvalidArgument)
	}

	return Job{TaskID: taskID, Source: source, Filename: filename}, nil
}
