package bot

import "time"

// Bot represents a single WhatsApp-connected fleet worker owned by a tenant.
type Bot struct {
	id             ID
	name           string
	phone          Phone
	credentials    []byte
	tenant         string
	isGuest        bool
	status         Status
	approvalStatus ApprovalStatus
	approvedAt     *time.Time
	expirationMos  int
	features       Features
	messagesSent   int64
	messagesRecv   int64
	createdAt      time.Time
	updatedAt      time.Time
}

// NewBot constructs a pending, offline bot awaiting approval.
func NewBot(name string, phone Phone, credentials []byte, tenant string, isGuest bool, features Features) *Bot {
	now := time.Now()
	return &Bot{
		id:             NewID(),
		name:           name,
		phone:          phone,
		credentials:    credentials,
		tenant:         tenant,
		isGuest:        isGuest,
		status:         StatusOffline,
		approvalStatus: ApprovalPending,
		expirationMos:  0,
		features:       features,
		createdAt:      now,
		updatedAt:      now,
	}
}

// Restore rebuilds a Bot from persisted state.
func Restore(
	id ID, name string, phone Phone, credentials []byte, tenant string, isGuest bool,
	status Status, approvalStatus ApprovalStatus, approvedAt *time.Time, expirationMos int,
	features Features, messagesSent, messagesRecv int64, createdAt, updatedAt time.Time,
) *Bot {
	return &Bot{
		id:             id,
		name:           name,
		phone:          phone,
		credentials:    credentials,
		tenant:         tenant,
		isGuest:        isGuest,
		status:         status,
		approvalStatus: approvalStatus,
		approvedAt:     approvedAt,
		expirationMos:  expirationMos,
		features:       features,
		messagesSent:   messagesSent,
		messagesRecv:   messagesRecv,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

func (b *Bot) ID() ID                          { return b.id }
func (b *Bot) Name() string                    { return b.name }
func (b *Bot) Phone() Phone                    { return b.phone }
func (b *Bot) Credentials() []byte             { return b.credentials }
func (b *Bot) Tenant() string                  { return b.tenant }
func (b *Bot) IsGuest() bool                   { return b.isGuest }
func (b *Bot) Status() Status                  { return b.status }
func (b *Bot) ApprovalStatus() ApprovalStatus   { return b.approvalStatus }
func (b *Bot) ApprovedAt() *time.Time           { return b.approvedAt }
func (b *Bot) ExpirationMonths() int            { return b.expirationMos }
func (b *Bot) Features() Features               { return b.features }
func (b *Bot) MessagesSent() int64              { return b.messagesSent }
func (b *Bot) MessagesReceived() int64          { return b.messagesRecv }
func (b *Bot) CreatedAt() time.Time             { return b.createdAt }
func (b *Bot) UpdatedAt() time.Time             { return b.updatedAt }

// IsApproved reports whether the bot is currently allowed to run.
func (b *Bot) IsApproved() bool {
	return b.approvalStatus == ApprovalApproved
}

// ExpiresAt returns the instant the current approval lapses, if approved.
func (b *Bot) ExpiresAt() (time.Time, bool) {
	if b.approvedAt == nil || b.expirationMos <= 0 {
		return time.Time{}, false
	}
	return b.approvedAt.AddDate(0, b.expirationMos, 0), true
}

// IsExpired reports whether the bot's approval window has lapsed as of now.
func (b *Bot) IsExpired(now time.Time) bool {
	exp, ok := b.ExpiresAt()
	if !ok {
		return false
	}
	return now.After(exp)
}

// Approve grants approval for the given duration in months.
func (b *Bot) Approve(months int) error {
	if months < 1 || months > 12 {
		return NewBadDurationError(months)
	}
	now := time.Now()
	b.approvalStatus = ApprovalApproved
	b.approvedAt = &now
	b.expirationMos = months
	b.updatedAt = now
	return nil
}

// Revoke clears approval and returns the bot to pending with its status set
// to offline.
func (b *Bot) Revoke() {
	b.approvalStatus = ApprovalPending
	b.approvedAt = nil
	b.expirationMos = 0
	b.status = StatusOffline
	b.updatedAt = time.Now()
}

// Reject marks the bot permanently rejected.
func (b *Bot) Reject() {
	b.approvalStatus = ApprovalRejected
	b.status = StatusOffline
	b.updatedAt = time.Now()
}

// Expire transitions an approved bot to dormant once its window has lapsed.
func (b *Bot) Expire() {
	b.approvalStatus = ApprovalDormant
	b.status = StatusOffline
	b.updatedAt = time.Now()
}

// SetStatus updates the worker runtime status.
func (b *Bot) SetStatus(s Status) {
	b.status = s
	b.updatedAt = time.Now()
}

// SetTenant reassigns the bot to a new tenant, used by migration.
func (b *Bot) SetTenant(tenant string) {
	b.tenant = tenant
	b.updatedAt = time.Now()
}

// UpdateCredentials replaces the stored credential blob.
func (b *Bot) UpdateCredentials(credentials []byte) {
	b.credentials = credentials
	b.updatedAt = time.Now()
}

// UpdateFeatures replaces the behavioral toggle set.
func (b *Bot) UpdateFeatures(features Features) {
	b.features = features
	b.updatedAt = time.Now()
}

// RecordSent increments the sent-message counter.
func (b *Bot) RecordSent() {
	b.messagesSent++
	b.updatedAt = time.Now()
}

// RecordReceived increments the received-message counter.
func (b *Bot) RecordReceived() {
	b.messagesRecv++
	b.updatedAt = time.Now()
}

// CanStart reports whether the current approval/status allow starting the worker.
func (b *Bot) CanStart() error {
	switch b.approvalStatus {
	case ApprovalRejected:
		return ErrRejected
	case ApprovalDormant:
		return ErrDormant
	case ApprovalPending:
		return ErrNotApproved
	}
	return nil
}

// Validate checks basic entity invariants.
func (b *Bot) Validate() error {
	if b.name == "" {
		return New(ErrCodeInvalidApproval, "bot name is required")
	}
	if b.phone.IsEmpty() {
		return ErrInvalidPhone
	}
	if b.tenant == "" {
		return New(ErrCodeTenantUnknown, "bot must belong to a tenant")
	}
	return nil
}
