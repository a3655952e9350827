package repositories

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"fastmeet-service/internal/models"
)

var ErrMessageRateLimited = errors.New("message rate limited")

// Chat throttle: at most chatWindowLimit messages per sender per meet inside
// the trailing chatWindowSeconds.
const (
	chatWindowSeconds = 60
	chatWindowLimit   = 2
)

// chatLockClass namespaces the advisory lock taken while counting the
// sender's recent messages.
const chatLockClass = 4217

// MeetMessageRepository abstracts meet chat persistence.
type MeetMessageRepository interface {
	CreateMessage(ctx context.Context, meetID int, senderID int, content string) (models.MeetMessage, error)
	ListMessages(ctx context.Context, meetID int) ([]models.MeetMessage, error)
}

// MeetMessageRepo is a sqlx implementation of MeetMessageRepository.
type MeetMessageRepo struct {
	db *sqlx.DB
}

// NewMeetMessageRepo constructs a MeetMessageRepo.
func NewMeetMessageRepo(db *sqlx.DB) *MeetMessageRepo {
	return &MeetMessageRepo{db: db}
}

// CreateMessage stores a message, rejecting it when the sender's sliding
// window is full. Count and insert run in one transaction under a per-sender
// advisory lock so concurrent sends from multiple devices cannot slip past
// the window.
func (r *MeetMessageRepo) CreateMessage(ctx context.Context, meetID int, senderID int, content string) (models.MeetMessage, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.MeetMessage{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1, $2)`, chatLockClass, senderID); err != nil {
		return models.MeetMessage{}, err
	}

	var recent int
	err = tx.GetContext(ctx, &recent,
		`SELECT COUNT(*) FROM meet_messages
         WHERE meet_id=$1 AND sender_id=$2 AND created_at > NOW() - make_interval(secs => $3)`,
		meetID, senderID, chatWindowSeconds)
	if err != nil {
		return models.MeetMessage{}, err
	}
	if recent >= chatWindowLimit {
		err = ErrMessageRateLimited
		return models.MeetMessage{}, err
	}

	var msg models.MeetMessage
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO meet_messages (meet_id, sender_id, content) VALUES ($1, $2, $3)
         RETURNING id, meet_id, sender_id, content, created_at`,
		meetID, senderID, content,
	).StructScan(&msg)
	if err != nil {
		return models.MeetMessage{}, err
	}

	if err = tx.Commit(); err != nil {
		return models.MeetMessage{}, err
	}
	return msg, nil
}

// ListMessages returns the meet's messages in send order.
func (r *MeetMessageRepo) ListMessages(ctx context.Context, meetID int) ([]models.MeetMessage, error) {
	var msgs []models.MeetMessage
	err := r.db.SelectContext(ctx, &msgs,
		`SELECT id, meet_id, sender_id, content, created_at FROM meet_messages
         WHERE meet_id=$1 ORDER BY created_at ASC`, meetID)
	return msgs, err
}
