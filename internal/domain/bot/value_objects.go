package bot

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// ID uniquely identifies a bot.
type ID struct {
	value string
}

// NewID creates a new random bot ID.
func NewID() ID {
	return ID{value: uuid.New().String()}
}

// IDFromString parses a bot ID from its string form.
func IDFromString(s string) (ID, error) {
	if s == "" {
		return ID{}, ErrEmptyBotID
	}
	if _, err := uuid.Parse(s); err != nil {
		return ID{}, ErrInvalidBotID
	}
	return ID{value: s}, nil
}

func (id ID) String() string {
	return id.value
}

// IsEmpty returns true if the ID has no value.
func (id ID) IsEmpty() bool {
	return id.value == ""
}

// Equals compares two IDs for equality.
func (id ID) Equals(other ID) bool {
	return id.value == other.value
}

var phoneDigitsRe = regexp.MustCompile(`^\d{10,15}$`)

// Phone represents a validated, digits-only E.164-style phone number.
type Phone struct {
	value string
}

// NewPhone validates and constructs a Phone from a digits-only string.
func NewPhone(raw string) (Phone, error) {
	digits := strings.TrimPrefix(raw, "+")
	if !phoneDigitsRe.MatchString(digits) {
		return Phone{}, ErrInvalidPhone
	}
	return Phone{value: digits}, nil
}

func (p Phone) String() string {
	return p.value
}

func (p Phone) IsEmpty() bool {
	return p.value == ""
}

func (p Phone) Equals(other Phone) bool {
	return p.value == other.value
}

// Status is the runtime state of a bot worker.
type Status int

const (
	StatusOffline Status = iota
	StatusLoading
	StatusOnline
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusOffline:
		return "offline"
	case StatusLoading:
		return "loading"
	case StatusOnline:
		return "online"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

func (s Status) IsValid() bool {
	return s >= StatusOffline && s <= StatusError
}

func StatusFromString(s string) (Status, error) {
	switch strings.ToLower(s) {
	case "offline":
		return StatusOffline, nil
	case "loading":
		return StatusLoading, nil
	case "online":
		return StatusOnline, nil
	case "error":
		return StatusError, nil
	default:
		return StatusOffline, fmt.Errorf("invalid bot status: %s", s)
	}
}

// ApprovalStatus tracks a bot's admission lifecycle.
type ApprovalStatus int

const (
	ApprovalPending ApprovalStatus = iota
	ApprovalApproved
	ApprovalRejected
	ApprovalDormant
)

func (a ApprovalStatus) String() string {
	switch a {
	case ApprovalPending:
		return "pending"
	case ApprovalApproved:
		return "approved"
	case ApprovalRejected:
		return "rejected"
	case ApprovalDormant:
		return "dormant"
	default:
		return "unknown"
	}
}

func (a ApprovalStatus) IsValid() bool {
	return a >= ApprovalPending && a <= ApprovalDormant
}

func ApprovalStatusFromString(s string) (ApprovalStatus, error) {
	switch strings.ToLower(s) {
	case "pending":
		return ApprovalPending, nil
	case "approved":
		return ApprovalApproved, nil
	case "rejected":
		return ApprovalRejected, nil
	case "dormant":
		return ApprovalDormant, nil
	default:
		return ApprovalPending, fmt.Errorf("invalid approval status: %s", s)
	}
}

// TypingMode controls the presence indicator a bot shows while composing a reply.
type TypingMode int

const (
	TypingNone TypingMode = iota
	TypingComposing
	TypingRecording
)

func (t TypingMode) String() string {
	switch t {
	case TypingNone:
		return "none"
	case TypingComposing:
		return "typing"
	case TypingRecording:
		return "recording"
	default:
		return "unknown"
	}
}

func TypingModeFromString(s string) (TypingMode, error) {
	switch strings.ToLower(s) {
	case "none", "":
		return TypingNone, nil
	case "typing":
		return TypingComposing, nil
	case "recording":
		return TypingRecording, nil
	default:
		return TypingNone, fmt.Errorf("invalid typing mode: %s", s)
	}
}

// Features bundles the per-bot behavioral toggles.
type Features struct {
	AutoLike       bool
	AutoReact      bool
	AutoViewStatus bool
	ChatAgent      bool
	Typing         TypingMode
}
